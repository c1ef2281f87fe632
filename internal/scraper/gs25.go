package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"sehyeong/promoworker/helpers"
	"sehyeong/promoworker/internal/model"
	"sehyeong/promoworker/services/cache"

	"github.com/chromedp/chromedp"
)

const gs25PageSize = 50

// GS25Scraper drives a headless browser against the GS25 event goods page.
// The search endpoint rejects plain HTTP clients, so the CSRF token is pulled
// from the rendered page and the paginated search runs as in-page fetch calls.
type GS25Scraper struct {
	BaseScraper
	PageURL   string
	fetchPage func(ctx context.Context, promoType string, page int) (string, error)
}

// NewGS25Scraper creates a new GS25 scraper
func NewGS25Scraper(pageURL, apiURL string, cacheSvc cache.CacheService) *GS25Scraper {
	return &GS25Scraper{
		BaseScraper: BaseScraper{
			URL:       apiURL,
			Name:      "GS25Scraper",
			Store:     StoreGS25,
			CacheKey:  "gs25_rate_limited",
			CacheSvc:  cacheSvc,
			BlockTime: 500 * time.Second,
		},
		PageURL: pageURL,
	}
}

type gs25Goods struct {
	GoodsNm   string          `json:"goodsNm"`
	AttPrice  json.RawMessage `json:"attPrice"`
	AttFileNm string          `json:"attFileNm"`
}

type gs25Payload struct {
	Results []gs25Goods `json:"results"`
}

// FetchItems opens the event goods page once and pages through both promotion
// types until a short page signals the end.
func (g *GS25Scraper) FetchItems(ctx context.Context) ([]model.PromotionItem, error) {
	if err := g.checkBlocked(); err != nil {
		return nil, err
	}

	fetchPage := g.fetchPage
	if fetchPage == nil {
		browserCtx, cancel := newChromeContext(ctx)
		defer cancel()

		if err := chromedp.Run(browserCtx,
			chromedp.Navigate(g.PageURL),
			chromedp.Sleep(2*time.Second),
		); err != nil {
			return nil, fmt.Errorf("GS25 페이지 로딩 실패: %w", err)
		}

		var html string
		if err := chromedp.Run(browserCtx, chromedp.OuterHTML("html", &html)); err != nil {
			return nil, fmt.Errorf("GS25 페이지 읽기 실패: %w", err)
		}

		token := extractCSRFToken(html)
		if token == "" {
			return nil, fmt.Errorf("GS25 CSRF 토큰을 찾을 수 없음")
		}

		fetchPage = func(ctx context.Context, promoType string, page int) (string, error) {
			return g.searchInPage(browserCtx, token, promoType, page)
		}
	}

	promoTypes := []struct {
		param string
		label string
	}{
		{"ONE_TO_ONE", CondOnePlusOne},
		{"TWO_TO_ONE", CondTwoPlusOne},
	}

	var items []model.PromotionItem

	for _, pt := range promoTypes {
		for page := 1; ; page++ {
			select {
			case <-ctx.Done():
				return items, ctx.Err()
			default:
			}

			raw, err := fetchPage(ctx, pt.param, page)
			if err != nil {
				return items, err
			}

			payload, err := decodeGS25Payload(raw)
			if err != nil {
				return items, err
			}
			if len(payload.Results) == 0 {
				break
			}

			for _, goods := range payload.Results {
				name := strings.TrimSpace(goods.GoodsNm)
				base := ParsePrice(string(goods.AttPrice))
				if name == "" || base <= 0 {
					continue
				}
				effective, total := NormalizePromo(base, pt.label)
				items = append(items, model.PromotionItem{
					ProductName:        name,
					BasePrice:          base,
					SalePrice:          total,
					EffectiveUnitPrice: effective,
					DiscountCondition:  pt.label,
					Unit:               "개",
					ImageURL:           goods.AttFileNm,
					Store:              StoreGS25,
				})
			}

			// A short page is the last one.
			if len(payload.Results) < gs25PageSize {
				break
			}
		}
	}

	return items, nil
}

// searchInPage performs the paginated search request from inside the rendered
// page so the session cookie and CSRF token line up.
func (g *GS25Scraper) searchInPage(browserCtx context.Context, token, promoType string, page int) (string, error) {
	js := fmt.Sprintf(`fetch(%q, {
		method: "POST",
		headers: {"Content-Type": "application/x-www-form-urlencoded; charset=UTF-8"},
		body: "pageNum=%d&pageSize=%d&searchType=&searchWord=&parameterList=%s&CSRFToken=%s"
	}).then(r => r.text())`, g.URL, page, gs25PageSize, promoType, token)

	var out string
	if err := evaluatePromise(browserCtx, js, &out); err != nil {
		return "", fmt.Errorf("GS25 검색 요청 실패 (page %d): %w", page, err)
	}
	return out, nil
}

// decodeGS25Payload handles the endpoint's habit of returning either a JSON
// object or a JSON-encoded string containing one.
func decodeGS25Payload(raw string) (gs25Payload, error) {
	var payload gs25Payload

	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, `"`) {
		var inner string
		if err := json.Unmarshal([]byte(trimmed), &inner); err != nil {
			return payload, fmt.Errorf("GS25 응답 디코딩 실패: %w", err)
		}
		trimmed = inner
	}

	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		return payload, fmt.Errorf("GS25 응답 파싱 실패: %w", err)
	}
	return payload, nil
}

// extractCSRFToken finds the hidden CSRF input on the event goods page.
func extractCSRFToken(html string) string {
	rest, err := helpers.GetSplitPart(html, `name="CSRFToken" value="`, 1)
	if err != nil || !strings.Contains(rest, `"`) {
		return ""
	}
	token, _ := helpers.GetSplitPart(rest, `"`, 0)
	return token
}
