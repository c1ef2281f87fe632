package publisher

// Publisher defines the interface for publishing freshly scraped promotions
type Publisher interface {
	// Publish publishes one promotion payload for a retailer store ID
	Publish(storeID string, message []byte) error

	// TrimStreams trims all streams to the configured maximum length
	TrimStreams() error

	// Close closes the publisher
	Close() error
}
