package tagger

import (
	"context"
	"errors"
	"strings"
	"testing"

	"sehyeong/promoworker/internal/model"
	"sehyeong/promoworker/internal/scraper"
	"sehyeong/promoworker/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(complete completionFunc) *Client {
	c := NewClient("test-key", "", 100, 4)
	c.complete = complete
	return c
}

func TestGenerateTagCandidates(t *testing.T) {
	var gotUser string
	client := newTestClient(func(ctx context.Context, system, user string) (string, error) {
		gotUser = user
		return "```json\n{\"category\": [\"음료\", \"라면\"], \"taste\": [\"매운맛\"], \"situation\": [\"야식\"]}\n```", nil
	})

	candidates, err := client.GenerateTagCandidates(context.Background(), []string{"신라면", "바나나우유"})
	require.NoError(t, err)
	assert.Equal(t, []string{"음료", "라면"}, candidates.Category)
	assert.Equal(t, []string{"매운맛"}, candidates.Taste)
	assert.Equal(t, []string{"야식"}, candidates.Situation)
	assert.Contains(t, gotUser, "신라면")
}

func TestGenerateTagCandidatesEmptyInput(t *testing.T) {
	client := newTestClient(func(ctx context.Context, system, user string) (string, error) {
		t.Fatal("no call expected for empty input")
		return "", nil
	})

	candidates, err := client.GenerateTagCandidates(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, candidates.IsEmpty())
}

func TestEnrichStore(t *testing.T) {
	fs, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	items := []model.PromotionItem{
		{ProductName: "바나나우유 240ml", SalePrice: 1700, EffectiveUnitPrice: 850, DiscountCondition: "1+1", Store: "gs25"},
		{ProductName: "이미태깅됨", SalePrice: 1000, DiscountCondition: "할인", Category: "과자", Store: "gs25"},
	}
	require.NoError(t, fs.SaveStore("gs25", items))

	client := newTestClient(func(ctx context.Context, system, user string) (string, error) {
		// Only the untagged product is in the prompt.
		assert.Contains(t, user, "바나나우유 240ml")
		assert.NotContains(t, user, "이미태깅됨")
		return `[{"product_name": "바나나우유 240ml", "category": "유제품", "taste": "달콤한",
			"situation": "간식", "brand": "빙그레", "target": "전연령",
			"unit_value": 240, "unit_type": "ml"}]`, nil
	})

	candidates := model.TagCandidates{Category: []string{"유제품"}, Taste: []string{"달콤한"}, Situation: []string{"간식"}}
	require.NoError(t, client.EnrichStore(context.Background(), fs, "gs25", candidates))

	db, err := fs.LoadPreferTagged("gs25")
	require.NoError(t, err)
	require.Len(t, db.Items, 2)

	milk := db.Items[0]
	assert.Equal(t, "유제품", milk.Category)
	assert.Equal(t, "빙그레", milk.Brand)
	assert.Equal(t, 240, milk.UnitValue)
	assert.Equal(t, "ml", milk.UnitType)
	// 850 won effective for 240ml -> 354 won per 100ml
	assert.Equal(t, 354, milk.PricePerUnit)
	assert.Equal(t, "100ml당", milk.PriceReference)

	// The pre-tagged item is untouched.
	assert.Equal(t, "과자", db.Items[1].Category)
}

func TestEnrichStoreRescrape(t *testing.T) {
	fs, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	// First week's catalog gets tagged.
	require.NoError(t, fs.SaveStore("cu", []model.PromotionItem{
		{ProductName: "지난주상품", SalePrice: 1000, EffectiveUnitPrice: 500, DiscountCondition: "1+1", Store: "cu"},
		{ProductName: "콜라 500ml", SalePrice: 2000, EffectiveUnitPrice: 1000, DiscountCondition: "1+1", Store: "cu"},
	}))

	first := newTestClient(func(ctx context.Context, system, user string) (string, error) {
		return `[{"product_name": "지난주상품", "category": "과자"},
			{"product_name": "콜라 500ml", "category": "음료", "unit_value": 500, "unit_type": "ml"}]`, nil
	})
	require.NoError(t, first.EnrichStore(context.Background(), fs, "cu", model.TagCandidates{}))

	// Next week's scrape replaces the catalog; one product carries over.
	require.NoError(t, fs.SaveStore("cu", []model.PromotionItem{
		{ProductName: "이번주상품", SalePrice: 3000, EffectiveUnitPrice: 1500, DiscountCondition: "1+1", Store: "cu"},
		{ProductName: "콜라 500ml", SalePrice: 2000, EffectiveUnitPrice: 1000, DiscountCondition: "1+1", Store: "cu"},
	}))

	second := newTestClient(func(ctx context.Context, system, user string) (string, error) {
		// Only the new product needs a model call.
		assert.Contains(t, user, "이번주상품")
		assert.NotContains(t, user, "콜라")
		assert.NotContains(t, user, "지난주상품")
		return `[{"product_name": "이번주상품", "category": "라면"}]`, nil
	})
	require.NoError(t, second.EnrichStore(context.Background(), fs, "cu", model.TagCandidates{}))

	db, err := fs.LoadPreferTagged("cu")
	require.NoError(t, err)
	require.Len(t, db.Items, 2)

	byName := make(map[string]model.PromotionItem)
	for _, item := range db.Items {
		byName[item.ProductName] = item
	}

	// Expired items are gone, the new one is tagged.
	assert.NotContains(t, byName, "지난주상품")
	assert.Equal(t, "라면", byName["이번주상품"].Category)

	// The carried-over item kept its tags and unit price.
	cola := byName["콜라 500ml"]
	assert.Equal(t, "음료", cola.Category)
	assert.Equal(t, 500, cola.UnitValue)
	assert.Equal(t, 200, cola.PricePerUnit)
	assert.Equal(t, "100ml당", cola.PriceReference)
}

func TestEnrichStoreNothingToTag(t *testing.T) {
	fs, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	items := []model.PromotionItem{
		{ProductName: "이미태깅됨", SalePrice: 1000, DiscountCondition: "할인", Category: "과자", Store: "cu"},
	}
	require.NoError(t, fs.SaveStore("cu", items))

	client := newTestClient(func(ctx context.Context, system, user string) (string, error) {
		t.Fatal("no call expected when everything is tagged")
		return "", nil
	})

	require.NoError(t, client.EnrichStore(context.Background(), fs, "cu", model.TagCandidates{}))

	// The tagged variant now exists even though nothing changed.
	db, err := fs.LoadPreferTagged("cu")
	require.NoError(t, err)
	assert.Len(t, db.Items, 1)
}

func TestExtractItems(t *testing.T) {
	client := newTestClient(func(ctx context.Context, system, user string) (string, error) {
		return `{"items": [
			{"product_name": "신라면 멀티팩", "base_price": 4500, "sale_price": 3980, "discount_condition": "할인", "unit": "개"},
			{"product_name": "서울우유 1L", "sale_price": 2800, "discount_condition": "1+1"},
			{"product_name": "", "sale_price": 1000, "discount_condition": "할인"}
		]}`, nil
	})

	items, err := client.ExtractItems(context.Background(), scraper.StoreEmart, "전단지 텍스트")
	require.NoError(t, err)
	require.Len(t, items, 2)

	ramen := items[0]
	assert.Equal(t, "신라면 멀티팩", ramen.ProductName)
	assert.Equal(t, 4500, ramen.BasePrice)
	assert.Equal(t, 3980, ramen.SalePrice)
	assert.Equal(t, 3980, ramen.EffectiveUnitPrice)
	assert.Equal(t, scraper.StoreEmart, ramen.Store)

	milk := items[1]
	assert.Equal(t, scraper.CondOnePlusOne, milk.DiscountCondition)
	assert.Equal(t, 1400, milk.EffectiveUnitPrice)
	assert.Equal(t, 2800, milk.SalePrice)
	assert.Equal(t, "개", milk.Unit)
}

func TestExtractItemsModelError(t *testing.T) {
	client := newTestClient(func(ctx context.Context, system, user string) (string, error) {
		return "", errors.New("api down")
	})

	_, err := client.ExtractItems(context.Background(), scraper.StoreEmart, "텍스트")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "api down"))
}
