package scraper

import (
	"context"
	"io"
	"strings"
	"time"

	"sehyeong/promoworker/internal/model"
	"sehyeong/promoworker/services/cache"

	"github.com/PuerkitoBio/goquery"
)

// GSTheFreshScraper scrapes the GS The Fresh weekly flyer list. Flyer cards
// carry an original and a sale price; the promotion badge distinguishes
// N+1 deals from plain markdowns.
type GSTheFreshScraper struct {
	BaseScraper
	fetchFunc func(rawURL string) (io.Reader, error)
}

// NewGSTheFreshScraper creates a new GS The Fresh scraper
func NewGSTheFreshScraper(pageURL string, cacheSvc cache.CacheService) *GSTheFreshScraper {
	g := &GSTheFreshScraper{
		BaseScraper: BaseScraper{
			URL:       pageURL,
			Name:      "GSTheFreshScraper",
			Store:     StoreGSTheFresh,
			CacheKey:  "gs_the_fresh_rate_limited",
			CacheSvc:  cacheSvc,
			BlockTime: 500 * time.Second,
		},
	}
	g.fetchFunc = g.fetch
	return g
}

// FetchItems loads the flyer page and parses every product card on it.
func (g *GSTheFreshScraper) FetchItems(ctx context.Context) ([]model.PromotionItem, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	body, err := g.fetchFunc(g.URL)
	if err != nil {
		return nil, err
	}

	doc, err := g.createDocument(body)
	if err != nil {
		return nil, err
	}

	var items []model.PromotionItem
	seen := make(map[string]bool)

	doc.Find("li.prod-item, div.prod-item").Each(func(_ int, s *goquery.Selection) {
		item, ok := g.parseCard(s)
		if !ok {
			return
		}
		key := item.ProductName + "_" + item.DiscountCondition
		if seen[key] {
			return
		}
		seen[key] = true
		items = append(items, item)
	})

	return items, nil
}

func (g *GSTheFreshScraper) parseCard(s *goquery.Selection) (model.PromotionItem, bool) {
	name := strings.TrimSpace(s.Find(".prod-name, .tit").First().Text())
	if name == "" {
		return model.PromotionItem{}, false
	}

	salePrice := ParsePrice(s.Find(".price-sale, .cost strong").First().Text())
	if salePrice <= 0 {
		return model.PromotionItem{}, false
	}
	origPrice := ParsePrice(s.Find(".price-origin, .cost del").First().Text())
	if origPrice <= 0 {
		origPrice = salePrice
	}

	condition := promoCondition(s.Find(".badge, .flag").Text())

	imageURL := ""
	if src, exists := s.Find("img").Attr("src"); exists {
		if strings.HasPrefix(src, "//") {
			src = "https:" + src
		}
		imageURL = src
	}

	var effective, total int
	if condition == CondDiscount {
		// Markdown: the sale price is what one unit costs.
		effective, total = salePrice, salePrice
	} else {
		effective, total = NormalizePromo(salePrice, condition)
	}

	return model.PromotionItem{
		ProductName:        name,
		BasePrice:          origPrice,
		SalePrice:          total,
		EffectiveUnitPrice: effective,
		DiscountCondition:  condition,
		Unit:               "개",
		ImageURL:           imageURL,
		Store:              StoreGSTheFresh,
	}, true
}

// promoCondition classifies a flyer badge. Anything that is not an N+1 deal
// is treated as a plain discount.
func promoCondition(badge string) string {
	switch {
	case strings.Contains(badge, CondOnePlusOne):
		return CondOnePlusOne
	case strings.Contains(badge, CondTwoPlusOne):
		return CondTwoPlusOne
	default:
		return CondDiscount
	}
}
