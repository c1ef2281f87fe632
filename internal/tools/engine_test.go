package tools

import (
	"testing"

	"sehyeong/promoworker/internal/model"
	"sehyeong/promoworker/internal/scraper"
	"sehyeong/promoworker/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedEngine(t *testing.T) *Engine {
	t.Helper()

	fs, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, fs.SaveTagged(scraper.StoreCU, []model.PromotionItem{
		{ProductName: "코카콜라 500ml", SalePrice: 2500, EffectiveUnitPrice: 1250, DiscountCondition: "1+1",
			Category: "음료", Taste: "달콤한", Situation: "야식", UnitValue: 500, UnitType: "ml",
			PricePerUnit: 250, PriceReference: "100ml당", Store: scraper.StoreCU},
		{ProductName: "펩시콜라 500ml", SalePrice: 2000, EffectiveUnitPrice: 1000, DiscountCondition: "1+1",
			Category: "음료", Taste: "달콤한", Situation: "야식", UnitValue: 500, UnitType: "ml",
			PricePerUnit: 200, PriceReference: "100ml당", Store: scraper.StoreCU},
		{ProductName: "신라면 컵", SalePrice: 2400, EffectiveUnitPrice: 800, DiscountCondition: "2+1",
			Category: "라면", Taste: "매운맛", Situation: "야식", Store: scraper.StoreCU},
	}))

	require.NoError(t, fs.SaveTagged(scraper.StoreGS25, []model.PromotionItem{
		{ProductName: "코카콜라 제로 355ml", SalePrice: 2200, EffectiveUnitPrice: 1100, DiscountCondition: "1+1",
			Category: "음료", Taste: "달콤한", Situation: "운동후", UnitValue: 355, UnitType: "ml",
			PricePerUnit: 309, PriceReference: "100ml당", Store: scraper.StoreGS25},
		{ProductName: "진라면 매운맛", SalePrice: 1500, EffectiveUnitPrice: 750, DiscountCondition: "1+1",
			Category: "라면", Taste: "매운맛", Situation: "야식", Store: scraper.StoreGS25},
	}))

	// Seven Eleven only has a raw file, no tags yet.
	require.NoError(t, fs.SaveStore(scraper.StoreSevenEleven, []model.PromotionItem{
		{ProductName: "삼각김밥 참치마요", SalePrice: 1200, EffectiveUnitPrice: 600, DiscountCondition: "1+1",
			Store: scraper.StoreSevenEleven},
	}))

	require.NoError(t, fs.SaveTagCandidates(model.TagCandidates{
		Category:  []string{"음료", "라면"},
		Taste:     []string{"달콤한", "매운맛"},
		Situation: []string{"야식", "운동후"},
	}))

	return NewEngine(fs)
}

func TestFindBestPrice(t *testing.T) {
	engine := seedEngine(t)

	result := engine.FindBestPrice([]string{"콜라"}, "")
	assert.Equal(t, 3, result.TotalFound)
	require.NotNil(t, result.BestDeal)
	require.Len(t, result.AllResults, 3)

	// Equal scores sort cheapest first by comparable price.
	assert.Equal(t, "펩시콜라 500ml", result.BestDeal.ProductName)
	assert.Equal(t, "편의점 CU", result.BestDeal.Store)
	assert.Equal(t, 2000, result.BestDeal.PayPrice)
	assert.Equal(t, 2, result.BestDeal.GetCount)
	assert.Equal(t, 1000, result.BestDeal.PricePerOne)
	assert.Equal(t, "코카콜라 500ml", result.AllResults[1].ProductName)
	assert.Equal(t, "코카콜라 제로 355ml", result.AllResults[2].ProductName)

	// A synonym reranks without excluding anything.
	result = engine.FindBestPrice([]string{"콜라", "제로"}, "")
	assert.Equal(t, "코카콜라 제로 355ml", result.BestDeal.ProductName)

	// The query is echoed back.
	assert.Equal(t, []string{"콜라", "제로"}, result.Query.Keywords)
}

func TestFindBestPricePreferredStore(t *testing.T) {
	engine := seedEngine(t)

	result := engine.FindBestPrice([]string{"콜라"}, "gs25")
	assert.Equal(t, 1, result.TotalFound)
	require.NotNil(t, result.BestDeal)
	assert.Equal(t, "코카콜라 제로 355ml", result.BestDeal.ProductName)
	assert.Equal(t, "gs25", result.Query.Store)
}

func TestFindBestPriceNoMatch(t *testing.T) {
	engine := seedEngine(t)

	result := engine.FindBestPrice([]string{"없는상품"}, "")
	assert.Equal(t, 0, result.TotalFound)
	assert.Nil(t, result.BestDeal)
	assert.Empty(t, result.AllResults)
	assert.Contains(t, result.Error, "없는상품")

	result = engine.FindBestPrice(nil, "")
	assert.NotEmpty(t, result.Error)
}

func TestFindBestValue(t *testing.T) {
	engine := seedEngine(t)

	result := engine.FindBestValue([]string{"콜라"}, "")
	assert.Equal(t, 3, result.TotalFound)
	require.NotNil(t, result.BestValue)

	// Ordered by unit price, cheapest per 100ml first.
	assert.Equal(t, 200, result.BestValue.PricePerUnit)
	assert.Equal(t, "100ml당", result.BestValue.PriceReference)
	assert.Equal(t, 250, result.AllResults[1].PricePerUnit)
	assert.Equal(t, 309, result.AllResults[2].PricePerUnit)

	// Items without a known capacity never appear.
	result = engine.FindBestValue([]string{"라면"}, "")
	assert.Equal(t, 0, result.TotalFound)
	assert.Contains(t, result.Error, "용량")
}

func TestGetAvailableTags(t *testing.T) {
	engine := seedEngine(t)

	listing := engine.GetAvailableTags()
	assert.Equal(t, []string{"음료", "라면"}, listing.Category)
	assert.Equal(t, []string{"달콤한", "매운맛"}, listing.Taste)
	assert.Equal(t, "편의점 세븐일레븐", listing.Stores[scraper.StoreSevenEleven])
}

func TestRecommendSmartSnacks(t *testing.T) {
	engine := seedEngine(t)

	result := engine.RecommendSmartSnacks(nil, nil, []string{"야식"}, []string{"매운맛"}, "")
	require.NotEmpty(t, result.Results)

	// The double match outranks situation-only matches.
	assert.Equal(t, "라면", result.Results[0].Category)

	perStore := make(map[string]int)
	for _, deal := range result.Results {
		perStore[deal.Store]++
		assert.LessOrEqual(t, perStore[deal.Store], recommendPerStoreMax)
	}
	assert.LessOrEqual(t, len(result.Results), recommendLimit)

	// Below the threshold nothing comes back.
	result = engine.RecommendSmartSnacks(nil, nil, []string{"출근길"}, nil, "")
	assert.Empty(t, result.Results)
	assert.Equal(t, 0, result.TotalMatched)
}

func TestRecommendSmartSnacksCategoryFilter(t *testing.T) {
	engine := seedEngine(t)

	result := engine.RecommendSmartSnacks(nil, []string{"라면"}, []string{"야식"}, nil, "")
	require.NotEmpty(t, result.Results)
	for _, deal := range result.Results {
		assert.Equal(t, "라면", deal.Category)
	}
}

func TestCompareCategoryTop3(t *testing.T) {
	engine := seedEngine(t)

	result := engine.CompareCategoryTop3([]string{"라면"}, "", "")
	require.Contains(t, result.Results, "편의점 CU")
	require.Contains(t, result.Results, "편의점 GS25")

	for _, deals := range result.Results {
		assert.LessOrEqual(t, len(deals), comparePerStoreTop)
	}

	cu := result.Results["편의점 CU"]
	require.Len(t, cu, 1)
	assert.Equal(t, "신라면 컵", cu[0].ProductName)
	assert.Equal(t, 3, cu[0].GetCount)

	// An exact category filter excludes everything else.
	result = engine.CompareCategoryTop3([]string{"음료"}, "라면", "")
	for _, deals := range result.Results {
		for _, deal := range deals {
			assert.Equal(t, "라면", deal.Category)
		}
	}
}

func TestInvoke(t *testing.T) {
	engine := seedEngine(t)

	result, err := engine.Invoke("find_best_price", Invocation{Keywords: []string{"콜라"}})
	require.NoError(t, err)
	best, ok := result.(BestPriceResult)
	require.True(t, ok)
	assert.Equal(t, 3, best.TotalFound)

	_, err = engine.Invoke("find_best_price", Invocation{})
	assert.Error(t, err)

	_, err = engine.Invoke("compare_category_top3", Invocation{})
	assert.Error(t, err)

	_, err = engine.Invoke("recommend_smart_snacks", Invocation{})
	assert.Error(t, err)

	_, err = engine.Invoke("no_such_tool", Invocation{})
	assert.Error(t, err)

	result, err = engine.Invoke("get_available_tags", Invocation{})
	require.NoError(t, err)
	listing, ok := result.(TagListing)
	require.True(t, ok)
	assert.NotEmpty(t, listing.Stores)
}

func TestFilterStores(t *testing.T) {
	assert.Equal(t, AllStores, filterStores(""))
	assert.Equal(t, []string{"gs25"}, filterStores("GS 25"))
	assert.Equal(t, []string{"seven_eleven"}, filterStores("seven"))
	assert.Empty(t, filterStores("homeplus"))
}
