package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScrapeError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewNetwork("cu", "수집 실패", cause)

	assert.Equal(t, ErrorTypeNetwork, err.Type)
	assert.Equal(t, "cu", err.Store)
	assert.Contains(t, err.Error(), "network")
	assert.Contains(t, err.Error(), "connection refused")
	assert.ErrorIs(t, err, cause)
	assert.False(t, err.Time.IsZero())
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, NewNetwork("cu", "", nil).IsRetryable())
	assert.True(t, NewLLM("tagger", "", nil).IsRetryable())
	assert.False(t, NewParsing("cu", "", nil).IsRetryable())
	assert.False(t, NewStorage("store", "", nil).IsRetryable())
	assert.False(t, NewValidation("tools", "").IsRetryable())
}
