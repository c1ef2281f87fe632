package scraper

import (
	"context"
	"io"
	"strings"
	"time"

	"sehyeong/promoworker/internal/model"
	"sehyeong/promoworker/services/cache"
)

// emartChunkSize bounds the amount of flyer text handed to the language model
// in a single extraction call.
const emartChunkSize = 2800

// EmartScraper pulls the Emart leaflet page and hands its text to a language
// model for structured extraction. The leaflet has no stable markup, so
// selector scraping does not work there.
type EmartScraper struct {
	BaseScraper
	extractor Extractor
	fetchFunc func(rawURL string) (io.Reader, error)
}

// NewEmartScraper creates a new Emart scraper
func NewEmartScraper(pageURL string, cacheSvc cache.CacheService, extractor Extractor) *EmartScraper {
	e := &EmartScraper{
		BaseScraper: BaseScraper{
			URL:       pageURL,
			Name:      "EmartScraper",
			Store:     StoreEmart,
			CacheKey:  "emart_rate_limited",
			CacheSvc:  cacheSvc,
			BlockTime: 500 * time.Second,
		},
		extractor: extractor,
	}
	e.fetchFunc = e.fetch
	return e
}

// FetchItems downloads the leaflet, flattens it to text and extracts items
// chunk by chunk.
func (e *EmartScraper) FetchItems(ctx context.Context) ([]model.PromotionItem, error) {
	body, err := e.fetchFunc(e.URL)
	if err != nil {
		return nil, err
	}

	doc, err := e.createDocument(body)
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(doc.Find("body").Text())
	if text == "" {
		return nil, nil
	}

	var items []model.PromotionItem
	seen := make(map[string]bool)

	for _, chunk := range splitTextChunks(text, emartChunkSize) {
		select {
		case <-ctx.Done():
			return items, ctx.Err()
		default:
		}

		extracted, err := e.extractor.ExtractItems(ctx, StoreEmart, chunk)
		if err != nil {
			return items, err
		}
		for _, item := range extracted {
			key := item.ProductName + "_" + item.DiscountCondition
			if seen[key] || item.ProductName == "" || item.SalePrice <= 0 {
				continue
			}
			seen[key] = true
			item.Store = StoreEmart
			items = append(items, item)
		}
	}

	return items, nil
}

// splitTextChunks cuts text into chunks of at most max bytes, breaking on
// newlines so product lines stay intact.
func splitTextChunks(text string, max int) []string {
	if len(text) <= max {
		return []string{text}
	}

	var chunks []string
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if b.Len() > 0 && b.Len()+len(line)+1 > max {
			chunks = append(chunks, b.String())
			b.Reset()
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
	}
	if b.Len() > 0 {
		chunks = append(chunks, b.String())
	}
	return chunks
}
