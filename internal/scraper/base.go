package scraper

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"sehyeong/promoworker/helpers"
	"sehyeong/promoworker/services/cache"

	"github.com/PuerkitoBio/goquery"
)

// BaseScraper provides common functionality for all retailer scrapers
type BaseScraper struct {
	URL       string
	Name      string
	Store     string
	CacheKey  string
	CacheSvc  cache.CacheService
	BlockTime time.Duration
}

// GetName returns the scraper's name for logging
func (b *BaseScraper) GetName() string {
	return b.Name
}

// StoreID returns the retailer store ID
func (b *BaseScraper) StoreID() string {
	return b.Store
}

// checkBlocked returns an error while a rate-limit block is active for this source.
func (b *BaseScraper) checkBlocked() error {
	if b.CacheSvc == nil || b.CacheKey == "" {
		return nil
	}
	if _, err := b.CacheSvc.Get(b.CacheKey); err == nil {
		return fmt.Errorf("%s: %d초 동안 더 이상 요청을 보내지 않음", b.CacheKey, b.BlockTime/time.Second)
	}
	return nil
}

// markRateLimited sets the block key when the source answered with a 429.
func (b *BaseScraper) markRateLimited(err error) {
	if b.CacheSvc == nil || b.CacheKey == "" || err == nil {
		return
	}
	if strings.HasPrefix(err.Error(), "rate limited") {
		b.CacheSvc.Set(b.CacheKey, []byte(fmt.Sprintf("%d", b.BlockTime/time.Second)), b.BlockTime)
	}
}

// fetch fetches a URL with rate limiting
func (b *BaseScraper) fetch(rawURL string) (io.Reader, error) {
	if err := b.checkBlocked(); err != nil {
		return nil, err
	}

	body, err := helpers.FetchWithRandomHeaders(rawURL)
	if err != nil {
		b.markRateLimited(err)
		return nil, err
	}
	return body, nil
}

// postForm posts form values with rate limiting
func (b *BaseScraper) postForm(rawURL string, form url.Values) (io.Reader, error) {
	if err := b.checkBlocked(); err != nil {
		return nil, err
	}

	body, err := helpers.PostFormWithRandomHeaders(rawURL, form)
	if err != nil {
		b.markRateLimited(err)
		return nil, err
	}
	return body, nil
}

// createDocument creates a goquery document from a reader
func (b *BaseScraper) createDocument(reader io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, fmt.Errorf("HTML 파싱 오류: %v", err)
	}
	return doc, nil
}
