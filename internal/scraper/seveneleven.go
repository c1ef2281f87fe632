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

const (
	sevenElevenMaxPages = 50
	sevenElevenOrigin   = "https://www.7-eleven.co.kr"
	sevenElevenNoResult = "검색 결과가 없습니다"
)

// SevenElevenScraper pulls 1+1 and 2+1 promotions from the Seven Eleven
// "list more" endpoint. pTab 1 is 1+1, pTab 2 is 2+1.
type SevenElevenScraper struct {
	BaseScraper
	postFunc func(rawURL string, form url.Values) (io.Reader, error)
}

// NewSevenElevenScraper creates a new Seven Eleven scraper
func NewSevenElevenScraper(apiURL string, cacheSvc cache.CacheService) *SevenElevenScraper {
	s := &SevenElevenScraper{
		BaseScraper: BaseScraper{
			URL:       apiURL,
			Name:      "SevenElevenScraper",
			Store:     StoreSevenEleven,
			CacheKey:  "seven_eleven_rate_limited",
			CacheSvc:  cacheSvc,
			BlockTime: 500 * time.Second,
		},
	}
	s.postFunc = s.postForm
	return s
}

// FetchItems pages through both promotion tabs.
func (s *SevenElevenScraper) FetchItems(ctx context.Context) ([]model.PromotionItem, error) {
	tabs := []struct {
		tab   int
		label string
	}{
		{1, CondOnePlusOne},
		{2, CondTwoPlusOne},
	}

	var items []model.PromotionItem

	for _, t := range tabs {
		for page := 1; page <= sevenElevenMaxPages; page++ {
			select {
			case <-ctx.Done():
				return items, ctx.Err()
			default:
			}

			form := url.Values{
				"intCurrPage": {strconv.Itoa(page)},
				"pTab":        {strconv.Itoa(t.tab)},
			}

			body, err := s.postFunc(s.URL, form)
			if err != nil {
				return items, err
			}

			raw, err := io.ReadAll(body)
			if err != nil {
				return items, err
			}

			html := string(raw)
			if strings.TrimSpace(html) == "" || strings.Contains(html, sevenElevenNoResult) {
				break
			}

			doc, err := s.createDocument(strings.NewReader(html))
			if err != nil {
				return items, err
			}

			rows := doc.Find("li")
			if rows.Length() == 0 {
				break
			}

			added := 0
			rows.Each(func(_ int, sel *goquery.Selection) {
				item, ok := s.parseRow(sel, t.label)
				if !ok {
					return
				}
				items = append(items, item)
				added++
			})
			// A fragment full of decorative li elements means the tab ran out.
			if added == 0 {
				break
			}
		}
	}

	return items, nil
}

func (s *SevenElevenScraper) parseRow(sel *goquery.Selection, label string) (model.PromotionItem, bool) {
	nameSel := sel.Find(".name")
	priceSel := sel.Find(".price")
	if nameSel.Length() == 0 || priceSel.Length() == 0 {
		return model.PromotionItem{}, false
	}

	name := strings.TrimSpace(nameSel.Text())
	base := ParsePrice(priceSel.Text())
	if name == "" || base <= 0 {
		return model.PromotionItem{}, false
	}

	imageURL := ""
	if src, exists := sel.Find("img").Attr("src"); exists {
		imageURL = sevenElevenOrigin + src
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
		Store:              StoreSevenEleven,
	}, true
}
