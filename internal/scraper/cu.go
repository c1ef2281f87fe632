package scraper

import (
	"context"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"sehyeong/promoworker/internal/model"
	"sehyeong/promoworker/services/cache"

	"github.com/PuerkitoBio/goquery"
)

// cuMaxPages caps the pagination loop per event type; the live catalog has
// never exceeded this.
const cuMaxPages = 60

// CUScraper pulls 1+1 and 2+1 promotions from the CU event API, which serves
// paginated HTML fragments through a form POST.
type CUScraper struct {
	BaseScraper
	postFunc func(rawURL string, form url.Values) (io.Reader, error)
}

// NewCUScraper creates a new CU scraper
func NewCUScraper(apiURL string, cacheSvc cache.CacheService) *CUScraper {
	c := &CUScraper{
		BaseScraper: BaseScraper{
			URL:       apiURL,
			Name:      "CUScraper",
			Store:     StoreCU,
			CacheKey:  "cu_rate_limited",
			CacheSvc:  cacheSvc,
			BlockTime: 500 * time.Second,
		},
	}
	c.postFunc = c.postForm
	return c
}

// FetchItems pages through both event types and normalizes each product row.
func (c *CUScraper) FetchItems(ctx context.Context) ([]model.PromotionItem, error) {
	events := []struct {
		code  string
		label string
	}{
		{"23", CondOnePlusOne},
		{"24", CondTwoPlusOne},
	}

	var items []model.PromotionItem
	seen := make(map[string]bool)

	for _, event := range events {
		for page := 1; page <= cuMaxPages; page++ {
			select {
			case <-ctx.Done():
				return items, ctx.Err()
			default:
			}

			form := url.Values{
				"pageIndex":       {strconv.Itoa(page)},
				"searchCondition": {event.code},
				"listType":        {"0"},
			}

			body, err := c.postFunc(c.URL, form)
			if err != nil {
				return items, err
			}

			doc, err := c.createDocument(body)
			if err != nil {
				return items, err
			}

			rows := doc.Find("li.prod_list")
			if rows.Length() == 0 {
				break
			}

			rows.Each(func(_ int, s *goquery.Selection) {
				item, ok := c.parseRow(s, event.label)
				if !ok {
					return
				}
				key := item.ProductName + "_" + event.label
				if seen[key] {
					return
				}
				seen[key] = true
				items = append(items, item)
			})

			// brief pause between fragment requests
			time.Sleep(50 * time.Millisecond)
		}
	}

	return items, nil
}

func (c *CUScraper) parseRow(s *goquery.Selection, label string) (model.PromotionItem, bool) {
	name := strings.TrimSpace(s.Find("div.name").Text())
	if name == "" {
		return model.PromotionItem{}, false
	}

	base := ParsePrice(s.Find("div.price strong").Text())
	if base <= 0 {
		return model.PromotionItem{}, false
	}

	imageURL := ""
	if src, exists := s.Find("img.prod_img").Attr("src"); exists {
		if strings.HasPrefix(src, "//") {
			src = "https:" + src
		}
		imageURL = src
	}

	effective, total := NormalizePromo(base, label)
	return model.PromotionItem{
		ProductName:        name,
		BasePrice:          base,
		SalePrice:          total,
		EffectiveUnitPrice: effective,
		DiscountCondition:  label,
		Unit:               "개",
		ImageURL:           imageURL,
		Store:              StoreCU,
	}, true
}
