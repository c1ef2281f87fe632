package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNetwork represents network-related errors
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeParsing represents HTML/JSON parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeRateLimit represents rate limiting errors
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeLLM represents generative-model errors
	ErrorTypeLLM ErrorType = "llm"
	// ErrorTypeStorage represents flat-file store errors
	ErrorTypeStorage ErrorType = "storage"
	// ErrorTypePublisher represents publisher-related errors
	ErrorTypePublisher ErrorType = "publisher"
	// ErrorTypeValidation represents validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// ScrapeError represents a pipeline error tied to a retailer source
type ScrapeError struct {
	Type    ErrorType
	Store   string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Store, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Store, e.Message)
}

// Unwrap returns the underlying error
func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is retryable
func (e *ScrapeError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeNetwork, ErrorTypeLLM:
		return true
	default:
		return false
	}
}

// New creates a new ScrapeError
func New(errType ErrorType, store, message string, err error) *ScrapeError {
	return &ScrapeError{
		Type:    errType,
		Store:   store,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewNetwork creates a new network error
func NewNetwork(store, message string, err error) *ScrapeError {
	return New(ErrorTypeNetwork, store, message, err)
}

// NewParsing creates a new parsing error
func NewParsing(store, message string, err error) *ScrapeError {
	return New(ErrorTypeParsing, store, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(store string, duration time.Duration) *ScrapeError {
	message := fmt.Sprintf("rate limited for %v", duration)
	return New(ErrorTypeRateLimit, store, message, nil)
}

// NewLLM creates a new generative-model error
func NewLLM(store, message string, err error) *ScrapeError {
	return New(ErrorTypeLLM, store, message, err)
}

// NewStorage creates a new store error
func NewStorage(store, message string, err error) *ScrapeError {
	return New(ErrorTypeStorage, store, message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(store, message string, err error) *ScrapeError {
	return New(ErrorTypePublisher, store, message, err)
}

// NewValidation creates a new validation error
func NewValidation(store, message string) *ScrapeError {
	return New(ErrorTypeValidation, store, message, nil)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *ScrapeError {
	return New(ErrorTypeConfiguration, "", message, err)
}
