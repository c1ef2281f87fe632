package publisher

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// This test requires a running Redis instance
// If Redis is not available, the test will be skipped
func TestRedisPublisher(t *testing.T) {
	ctx := context.Background()
	pub := NewRedisPublisher(ctx, "localhost:6379", 0, "test_promotions", 1, 100)
	defer pub.Close()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   0,
	})
	defer client.Close()

	if _, err := client.Ping(ctx).Result(); err != nil {
		t.Skip("Redis is not available, skipping test")
	}
	defer client.Del(ctx, "test_promotions:0")

	payload := []byte(`{"product_name": "콜라", "sale_price": 2500, "discount_condition": "1+1"}`)
	err := pub.Publish("cu", payload)
	require.NoError(t, err)

	// streamCount 1 pins the message to test_promotions:0
	entries, err := client.XRange(ctx, "test_promotions:0", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.Equal(t, "cu", entries[0].Values["store"])
	encoded, ok := entries[0].Values["promotion"].(string)
	require.True(t, ok)
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)

	// Trim keeps the stream within the configured bound
	for i := 0; i < 5; i++ {
		require.NoError(t, pub.Publish("cu", payload))
	}
	assert.NoError(t, pub.TrimStreams())

	length, err := client.XLen(ctx, "test_promotions:0").Result()
	require.NoError(t, err)
	assert.LessOrEqual(t, length, int64(100))
}
