package scraper

import (
	"context"

	"sehyeong/promoworker/internal/model"
)

// Store IDs used in file names, cache keys and stream payloads.
const (
	StoreCU          = "cu"
	StoreGS25        = "gs25"
	StoreSevenEleven = "seven_eleven"
	StoreEmart       = "emart"
	StoreGSTheFresh  = "gs_the_fresh"
)

// Scraper interface defines the contract for all retailer scrapers
type Scraper interface {
	// FetchItems retrieves promotion items from a retailer source
	FetchItems(ctx context.Context) ([]model.PromotionItem, error)

	// GetName returns the scraper's name for logging and identification
	GetName() string

	// StoreID returns the retailer store ID for the scraper
	StoreID() string
}

// Extractor turns unstructured flyer text into promotion items. The LLM
// tagging client implements it; flyer-based scrapers depend on this
// interface only.
type Extractor interface {
	ExtractItems(ctx context.Context, storeName, text string) ([]model.PromotionItem, error)
}
