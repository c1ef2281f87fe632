package tools

import (
	"fmt"

	"sehyeong/promoworker/pkg/errors"
)

// Descriptor describes one callable tool to the assistant driving the API.
type Descriptor struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Parameters  map[string]string `json:"parameters"`
}

// Invocation carries the arguments of a tool call. Tools ignore fields they
// do not use.
type Invocation struct {
	Keywords       []string `json:"keywords,omitempty" validate:"omitempty,max=20,dive,max=100"`
	Categories     []string `json:"categories,omitempty" validate:"omitempty,max=10,dive,max=50"`
	SituationTags  []string `json:"situation_tags,omitempty" validate:"omitempty,max=10,dive,max=50"`
	TasteTags      []string `json:"taste_tags,omitempty" validate:"omitempty,max=10,dive,max=50"`
	Category       string   `json:"category,omitempty" validate:"omitempty,max=50"`
	PreferredStore string   `json:"preferred_store,omitempty" validate:"omitempty,max=30"`
}

// Registry lists the tools exposed over the API.
var Registry = []Descriptor{
	{
		Name:        "find_best_price",
		Description: "특정 상품의 최저가 매장을 찾습니다. 첫 번째 키워드가 상품명이고 나머지는 동의어/브랜드입니다.",
		Parameters: map[string]string{
			"keywords":        "검색 키워드 + 동의어/브랜드 (필수, 예: [\"코카콜라\", \"콜라\"])",
			"preferred_store": "특정 매장만 검색 (예: \"cu\", \"gs25\", \"seven_eleven\")",
		},
	},
	{
		Name:        "find_best_value",
		Description: "100ml당/100g당 가격 기준으로 용량 대비 가성비가 가장 좋은 행사 상품을 찾습니다.",
		Parameters: map[string]string{
			"keywords":        "검색 키워드 + 동의어/브랜드 (필수)",
			"preferred_store": "특정 매장만 검색",
		},
	},
	{
		Name:        "get_available_tags",
		Description: "검색에 사용할 수 있는 카테고리/맛/상황 태그와 지원 매장 목록을 반환합니다. recommend_smart_snacks, compare_category_top3 호출 전에 먼저 호출하세요.",
		Parameters:  map[string]string{},
	},
	{
		Name:        "recommend_smart_snacks",
		Description: "기분이나 상황에 맞는 행사 상품을 추천합니다. 매장당 최대 3개, 총 10개까지.",
		Parameters: map[string]string{
			"keywords":        "관련 키워드 목록",
			"categories":      "카테고리 필터 (get_available_tags의 category에서 선택)",
			"situation_tags":  "상황 태그 (예: 야식, 운동후)",
			"taste_tags":      "맛 태그 (예: 매운맛, 달콤한)",
			"preferred_store": "선호 매장",
		},
	},
	{
		Name:        "compare_category_top3",
		Description: "카테고리 전체를 매장별로 비교해 각 매장의 상위 3개 행사 상품을 반환합니다.",
		Parameters: map[string]string{
			"keywords":        "검색 키워드 + 동의어 (필수, 예: [\"라면\", \"컵라면\"])",
			"category":        "카테고리 필터 (get_available_tags에서 선택)",
			"preferred_store": "특정 매장만 비교",
		},
	},
}

// Invoke dispatches a tool call by name.
func (e *Engine) Invoke(name string, in Invocation) (interface{}, error) {
	switch name {
	case "find_best_price":
		if len(in.Keywords) == 0 {
			return nil, errors.NewValidation("tools", "keywords는 필수입니다")
		}
		return e.FindBestPrice(in.Keywords, in.PreferredStore), nil
	case "find_best_value":
		if len(in.Keywords) == 0 {
			return nil, errors.NewValidation("tools", "keywords는 필수입니다")
		}
		return e.FindBestValue(in.Keywords, in.PreferredStore), nil
	case "get_available_tags":
		return e.GetAvailableTags(), nil
	case "recommend_smart_snacks":
		if len(in.Keywords) == 0 && len(in.SituationTags) == 0 && len(in.TasteTags) == 0 && len(in.Categories) == 0 {
			return nil, errors.NewValidation("tools", "keywords, categories, situation_tags, taste_tags 중 하나는 필요합니다")
		}
		return e.RecommendSmartSnacks(in.Keywords, in.Categories, in.SituationTags, in.TasteTags, in.PreferredStore), nil
	case "compare_category_top3":
		if len(in.Keywords) == 0 {
			return nil, errors.NewValidation("tools", "keywords는 필수입니다")
		}
		return e.CompareCategoryTop3(in.Keywords, in.Category, in.PreferredStore), nil
	default:
		return nil, errors.NewValidation("tools", fmt.Sprintf("알 수 없는 도구: %s", name))
	}
}
