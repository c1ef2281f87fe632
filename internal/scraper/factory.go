package scraper

import (
	"sehyeong/promoworker/config"
	"sehyeong/promoworker/services/cache"
)

// CreateScrapers builds the scrapers for all configured retailers. Emart
// needs a language model extractor and is skipped when none is wired.
func CreateScrapers(cfg config.Config, cacheSvc cache.CacheService, extractor Extractor) []Scraper {
	scrapers := []Scraper{
		NewCUScraper(cfg.CUURL, cacheSvc),
		NewGS25Scraper(cfg.GS25URL, cfg.GS25APIURL, cacheSvc),
		NewSevenElevenScraper(cfg.SevenElevenURL, cacheSvc),
		NewGSTheFreshScraper(cfg.GSTheFreshURL, cacheSvc),
	}
	if extractor != nil {
		scrapers = append(scrapers, NewEmartScraper(cfg.EmartURL, cacheSvc, extractor))
	}
	return scrapers
}
