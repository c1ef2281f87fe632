package tools

import (
	"fmt"
	"sort"
	"strings"

	"sehyeong/promoworker/helpers"
	"sehyeong/promoworker/internal/model"
	"sehyeong/promoworker/internal/scraper"
	"sehyeong/promoworker/internal/store"
	"sehyeong/promoworker/logger"
)

// Scoring weights and cutoffs for the query tools. The primary keyword
// carries most of the weight so synonyms refine the ordering without
// flooding the result set.
const (
	primaryKeywordScore   = 100
	secondaryKeywordScore = 20
	keywordThreshold      = 50

	recommendKeywordScore   = 15
	recommendSituationScore = 12
	recommendTasteScore     = 12
	recommendThreshold      = 10
	recommendPerStoreMax    = 3
	recommendLimit          = 10

	compareCategoryScore  = 200
	comparePrimaryScore   = 100
	compareSecondaryScore = 30
	compareThreshold      = 100
	comparePerStoreTop    = 3

	resultsLimit     = 10
	missingSortPrice = 99999
)

// QueryEcho repeats the caller's arguments inside the answer so the
// assistant can quote what was actually searched.
type QueryEcho struct {
	Keywords      []string `json:"keywords,omitempty"`
	Categories    []string `json:"categories,omitempty"`
	SituationTags []string `json:"situation_tags,omitempty"`
	TasteTags     []string `json:"taste_tags,omitempty"`
	Category      string   `json:"category,omitempty"`
	Store         string   `json:"store,omitempty"`
}

// Deal is one promotion as reported by the query tools. pay_price is the
// total at the till, get_count how many units that buys, price_per_one the
// effective price of a single unit.
type Deal struct {
	ProductName       string `json:"product_name"`
	Store             string `json:"store"`
	DiscountCondition string `json:"discount_condition"`
	PayPrice          int    `json:"pay_price"`
	GetCount          int    `json:"get_count"`
	PricePerOne       int    `json:"price_per_one"`
	Category          string `json:"category,omitempty"`
	UnitValue         int    `json:"unit_value,omitempty"`
	UnitType          string `json:"unit_type,omitempty"`
	PricePerUnit      int    `json:"price_per_unit,omitempty"`
	PriceReference    string `json:"price_reference,omitempty"`
	ImageURL          string `json:"image_url,omitempty"`
}

// BestPriceResult is the find_best_price answer.
type BestPriceResult struct {
	Query      QueryEcho `json:"query"`
	TotalFound int       `json:"total_found"`
	BestDeal   *Deal     `json:"best_deal,omitempty"`
	AllResults []Deal    `json:"all_results"`
	Error      string    `json:"error,omitempty"`
}

// BestValueResult is the find_best_value answer.
type BestValueResult struct {
	Query      QueryEcho `json:"query"`
	TotalFound int       `json:"total_found"`
	BestValue  *Deal     `json:"best_value,omitempty"`
	AllResults []Deal    `json:"all_results"`
	Error      string    `json:"error,omitempty"`
}

// RecommendResult is the recommend_smart_snacks answer.
type RecommendResult struct {
	Query        QueryEcho `json:"query"`
	TotalMatched int       `json:"total_matched"`
	Results      []Deal    `json:"results"`
}

// CompareResult is the compare_category_top3 answer, keyed by store
// display name.
type CompareResult struct {
	Query   QueryEcho         `json:"query"`
	Results map[string][]Deal `json:"results"`
}

// TagListing is the get_available_tags answer.
type TagListing struct {
	Category  []string          `json:"category"`
	Taste     []string          `json:"taste"`
	Situation []string          `json:"situation"`
	Stores    map[string]string `json:"stores"`
}

// Engine answers product queries over the persisted promotion files. It is
// read-only; a missing retailer file just narrows the answer.
type Engine struct {
	fs  *store.FileStore
	log *logger.Logger
}

// NewEngine creates a query engine over a file store.
func NewEngine(fs *store.FileStore) *Engine {
	return &Engine{fs: fs, log: logger.ForTools()}
}

// loadStores flattens the given retailers' items into one slice, preferring
// the tagged variant per store.
func (e *Engine) loadStores(storeIDs []string) []model.PromotionItem {
	var items []model.PromotionItem
	for _, storeID := range storeIDs {
		db, err := e.fs.LoadPreferTagged(storeID)
		if err != nil {
			e.log.Debug().Str("store", storeID).Err(err).Msg("데이터 파일 없음")
			continue
		}
		for _, item := range db.Items {
			if item.Store == "" {
				item.Store = storeID
			}
			items = append(items, item)
		}
	}
	return items
}

// nameScore scores a product name against normalized keywords. The first
// keyword is the product itself, the rest are synonyms.
func nameScore(name string, terms []string, primary, secondary int) int {
	clean := helpers.NormalizeName(name)
	score := 0
	for i, term := range terms {
		if !strings.Contains(clean, term) {
			continue
		}
		if i == 0 {
			score += primary
		} else {
			score += secondary
		}
	}
	return score
}

// sortPrice is the price used to break score ties, cheapest first. Items
// with no comparable price sort last.
func sortPrice(item model.PromotionItem) int {
	if item.PricePerUnit > 0 {
		return item.PricePerUnit
	}
	if item.EffectiveUnitPrice > 0 {
		return item.EffectiveUnitPrice
	}
	return missingSortPrice
}

type scoredItem struct {
	item  model.PromotionItem
	score int
	price int
}

func sortScored(results []scoredItem) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[i].price < results[j].price
	})
}

func toDeal(item model.PromotionItem) Deal {
	return Deal{
		ProductName:       item.ProductName,
		Store:             DisplayName(item.Store),
		DiscountCondition: item.DiscountCondition,
		PayPrice:          item.SalePrice,
		GetCount:          scraper.GetCount(item.DiscountCondition),
		PricePerOne:       item.EffectiveUnitPrice,
		Category:          item.Category,
		UnitValue:         item.UnitValue,
		UnitType:          item.UnitType,
		PricePerUnit:      item.PricePerUnit,
		PriceReference:    item.PriceReference,
		ImageURL:          item.ImageURL,
	}
}

// FindBestPrice finds the cheapest matching promotion across retailers.
// Matching runs on normalized product names only; tags never dilute a
// straight product search.
func (e *Engine) FindBestPrice(keywords []string, preferredStore string) BestPriceResult {
	terms := normalizeKeywords(keywords)
	result := BestPriceResult{
		Query:      QueryEcho{Keywords: keywords, Store: preferredStore},
		AllResults: []Deal{},
	}
	if len(terms) == 0 {
		result.Error = "키워드를 입력해주세요"
		return result
	}

	var matched []scoredItem
	for _, item := range e.loadStores(filterStores(preferredStore)) {
		score := nameScore(item.ProductName, terms, primaryKeywordScore, secondaryKeywordScore)
		if score >= keywordThreshold {
			matched = append(matched, scoredItem{item: item, score: score, price: sortPrice(item)})
		}
	}

	result.TotalFound = len(matched)
	if len(matched) == 0 {
		result.Error = fmt.Sprintf("'%s'에 대한 행사 정보를 찾지 못했습니다.", keywords[0])
		return result
	}

	sortScored(matched)
	best := toDeal(matched[0].item)
	result.BestDeal = &best
	for _, m := range matched {
		result.AllResults = append(result.AllResults, toDeal(m.item))
		if len(result.AllResults) >= resultsLimit {
			break
		}
	}
	return result
}

// FindBestValue ranks matching promotions by comparable unit price. Only
// items with a known capacity participate.
func (e *Engine) FindBestValue(keywords []string, preferredStore string) BestValueResult {
	terms := normalizeKeywords(keywords)
	result := BestValueResult{
		Query:      QueryEcho{Keywords: keywords, Store: preferredStore},
		AllResults: []Deal{},
	}
	if len(terms) == 0 {
		result.Error = "키워드를 입력해주세요"
		return result
	}

	var matched []scoredItem
	for _, item := range e.loadStores(filterStores(preferredStore)) {
		if item.PricePerUnit <= 0 {
			continue
		}
		score := nameScore(item.ProductName, terms, primaryKeywordScore, secondaryKeywordScore)
		if score >= keywordThreshold {
			matched = append(matched, scoredItem{item: item, score: score, price: item.PricePerUnit})
		}
	}

	result.TotalFound = len(matched)
	if len(matched) == 0 {
		result.Error = fmt.Sprintf("'%s'에 대한 용량 정보가 있는 행사 상품을 찾지 못했습니다.", keywords[0])
		return result
	}

	sortScored(matched)
	best := toDeal(matched[0].item)
	result.BestValue = &best
	for _, m := range matched {
		result.AllResults = append(result.AllResults, toDeal(m.item))
		if len(result.AllResults) >= resultsLimit {
			break
		}
	}
	return result
}

// GetAvailableTags lists the tag vocabulary and the queryable retailers.
func (e *Engine) GetAvailableTags() TagListing {
	candidates, err := e.fs.LoadTagCandidates()
	if err != nil {
		e.log.Warn().Err(err).Msg("태그 후보 읽기 실패")
	}
	return TagListing{
		Category:  candidates.Category,
		Taste:     candidates.Taste,
		Situation: candidates.Situation,
		Stores:    StoreNames,
	}
}

// RecommendSmartSnacks suggests promotions for a mood. Keyword, situation
// and taste matches each add to the score; results are deduplicated by
// product and capped per retailer so one store cannot dominate.
func (e *Engine) RecommendSmartSnacks(keywords, categories, situationTags, tasteTags []string, preferredStore string) RecommendResult {
	result := RecommendResult{
		Query: QueryEcho{
			Keywords:      keywords,
			Categories:    categories,
			SituationTags: situationTags,
			TasteTags:     tasteTags,
			Store:         preferredStore,
		},
		Results: []Deal{},
	}

	items := e.loadStores(filterStores(preferredStore))

	if len(categories) > 0 {
		wanted := make(map[string]bool, len(categories))
		for _, c := range categories {
			wanted[strings.ToLower(strings.TrimSpace(c))] = true
		}
		filtered := items[:0]
		for _, item := range items {
			if wanted[strings.ToLower(item.Category)] {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}

	searchKeywords := lowerTrimmed(keywords)
	searchSituations := lowerTrimmed(situationTags)
	searchTastes := lowerTrimmed(tasteTags)

	var matched []scoredItem
	for _, item := range items {
		name := strings.ToLower(item.ProductName)
		situation := strings.ToLower(item.Situation)
		taste := strings.ToLower(item.Taste)

		score := 0
		for _, kw := range searchKeywords {
			if strings.Contains(name, kw) {
				score += recommendKeywordScore
			}
		}
		for _, sit := range searchSituations {
			if strings.Contains(situation, sit) {
				score += recommendSituationScore
			}
		}
		for _, t := range searchTastes {
			if strings.Contains(taste, t) {
				score += recommendTasteScore
			}
		}
		if score < recommendThreshold {
			continue
		}

		price := sortPrice(item)
		if price == missingSortPrice && item.SalePrice > 0 {
			price = item.SalePrice
		}
		matched = append(matched, scoredItem{item: item, score: score, price: price})
	}

	result.TotalMatched = len(matched)
	sortScored(matched)

	seen := make(map[string]bool)
	perStore := make(map[string]int)
	for _, m := range matched {
		nameKey := helpers.NormalizeName(m.item.ProductName)
		if seen[nameKey] || perStore[m.item.Store] >= recommendPerStoreMax {
			continue
		}
		seen[nameKey] = true
		perStore[m.item.Store]++
		result.Results = append(result.Results, toDeal(m.item))
		if len(result.Results) >= recommendLimit {
			break
		}
	}
	return result
}

// CompareCategoryTop3 returns each retailer's three best-scoring promotions
// so stores can be compared side by side. An exact category filter narrows
// the field; a keyword that equals an item's category earns a large bonus.
func (e *Engine) CompareCategoryTop3(keywords []string, category, preferredStore string) CompareResult {
	result := CompareResult{
		Query:   QueryEcho{Keywords: keywords, Category: category, Store: preferredStore},
		Results: make(map[string][]Deal),
	}

	terms := normalizeKeywords(keywords)
	wantCategory := strings.ToLower(strings.TrimSpace(category))

	byStore := make(map[string][]scoredItem)
	for _, item := range e.loadStores(filterStores(preferredStore)) {
		itemCategory := strings.ToLower(item.Category)
		if wantCategory != "" && itemCategory != wantCategory {
			continue
		}

		score := 0
		for _, term := range terms {
			if term == itemCategory {
				score += compareCategoryScore
				break
			}
		}
		score += nameScore(item.ProductName, terms, comparePrimaryScore, compareSecondaryScore)

		if score < compareThreshold {
			continue
		}
		price := sortPrice(item)
		if price <= 0 || price >= missingSortPrice {
			continue
		}
		byStore[item.Store] = append(byStore[item.Store], scoredItem{item: item, score: score, price: price})
	}

	for storeID, matched := range byStore {
		sortScored(matched)
		if len(matched) > comparePerStoreTop {
			matched = matched[:comparePerStoreTop]
		}
		deals := make([]Deal, 0, len(matched))
		for _, m := range matched {
			deals = append(deals, toDeal(m.item))
		}
		result.Results[DisplayName(storeID)] = deals
	}
	return result
}

func normalizeKeywords(keywords []string) []string {
	var out []string
	for _, kw := range keywords {
		kw = helpers.NormalizeName(kw)
		if kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

func lowerTrimmed(values []string) []string {
	var out []string
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
