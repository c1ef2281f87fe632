package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	// Test with default values
	config := LoadConfig()
	assert.Equal(t, "localhost:6379", config.RedisAddr)
	assert.Equal(t, 0, config.RedisDB)
	assert.Equal(t, "promotions", config.RedisStream)
	assert.Equal(t, 4, config.RedisStreamCount)
	assert.Equal(t, 2000, config.RedisStreamMaxLength)
	assert.Equal(t, "localhost:11211", config.MemcacheAddr)
	assert.Equal(t, 21600*time.Second, config.CrawlInterval)
	assert.Equal(t, "db", config.DBDir)
	assert.Equal(t, 100, config.TagChunkSize)
	assert.Equal(t, 30, config.TagConcurrency)
	assert.Equal(t, ":8080", config.ToolAddr)
	assert.Contains(t, config.CUURL, "cu.bgfretail.com")
	assert.Contains(t, config.GS25APIURL, "event-goods-search")
	assert.Contains(t, config.SevenElevenURL, "7-eleven.co.kr")

	// Test with environment variables
	os.Setenv("REDIS_ADDR", "redis.example.com:6379")
	os.Setenv("REDIS_STREAM_COUNT", "2")
	os.Setenv("CRAWL_INTERVAL_SECONDS", "3600")
	os.Setenv("DB_DIR", "/var/promo")
	os.Setenv("CU_URL", "https://example.com/cu")

	config = LoadConfig()
	assert.Equal(t, "redis.example.com:6379", config.RedisAddr)
	assert.Equal(t, 2, config.RedisStreamCount)
	assert.Equal(t, 3600*time.Second, config.CrawlInterval)
	assert.Equal(t, "/var/promo", config.DBDir)
	assert.Equal(t, "https://example.com/cu", config.CUURL)

	// Clean up
	os.Unsetenv("REDIS_ADDR")
	os.Unsetenv("REDIS_STREAM_COUNT")
	os.Unsetenv("CRAWL_INTERVAL_SECONDS")
	os.Unsetenv("DB_DIR")
	os.Unsetenv("CU_URL")
}

func TestValidate(t *testing.T) {
	valid := LoadConfig()
	assert.NoError(t, valid.Validate())

	tooFast := valid
	tooFast.CrawlInterval = 10 * time.Second
	assert.Error(t, tooFast.Validate())

	badStreams := valid
	badStreams.RedisStreamCount = 0
	assert.Error(t, badStreams.Validate())

	badChunk := valid
	badChunk.TagChunkSize = -1
	assert.Error(t, badChunk.Validate())

	noDir := valid
	noDir.DBDir = ""
	assert.Error(t, noDir.Validate())
}
