package tagger

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	openai "github.com/sashabaranov/go-openai"

	"sehyeong/promoworker/helpers"
	"sehyeong/promoworker/internal/model"
	"sehyeong/promoworker/internal/observability"
	"sehyeong/promoworker/internal/scraper"
	"sehyeong/promoworker/internal/store"
	"sehyeong/promoworker/logger"
	"sehyeong/promoworker/pkg/errors"
)

// completionFunc lets tests swap out the real API call.
type completionFunc func(ctx context.Context, system, user string) (string, error)

// Client enriches scraped promotion items with category, taste, situation,
// brand, target and capacity tags, and extracts structured items from
// unstructured flyer text. All calls go through one chat model.
type Client struct {
	model       string
	chunkSize   int
	concurrency int
	complete    completionFunc
	log         *logger.Logger
}

// NewClient creates a tagging client. chunkSize bounds how many product
// names go into one prompt; concurrency bounds parallel in-flight calls.
func NewClient(apiKey, chatModel string, chunkSize, concurrency int) *Client {
	if chatModel == "" {
		chatModel = openai.GPT4oMini
	}
	if chunkSize <= 0 {
		chunkSize = 100
	}
	if concurrency <= 0 {
		concurrency = 30
	}

	llm := openai.NewClient(apiKey)
	c := &Client{
		model:       chatModel,
		chunkSize:   chunkSize,
		concurrency: concurrency,
		log:         logger.ForTagger(),
	}
	c.complete = func(ctx context.Context, system, user string) (string, error) {
		resp, err := llm.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       c.model,
			Temperature: 0.3,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: system},
				{Role: openai.ChatMessageRoleUser, Content: user},
			},
		})
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("응답에 선택지가 없음")
		}
		return resp.Choices[0].Message.Content, nil
	}
	return c
}

const candidateSystemPrompt = `당신은 편의점/마트 상품 분류 전문가입니다. 상품명 목록을 보고
상품들을 분류할 수 있는 태그 후보 목록을 만듭니다. 반드시 JSON 객체 하나만 출력하세요:
{"category": [...], "taste": [...], "situation": [...]}
category는 상품 분류 50개, taste는 맛/식감 표현 50개, situation은 상황/용도 50개.
각 목록은 명확하게 구분되고 겹치지 않는 한국어 태그여야 합니다.`

// GenerateTagCandidates builds the allowed tag vocabulary from a sample of
// product names. The enrichment pass only ever picks tags from this set so
// the catalog stays queryable.
func (c *Client) GenerateTagCandidates(ctx context.Context, names []string) (model.TagCandidates, error) {
	var candidates model.TagCandidates
	if len(names) == 0 {
		return candidates, nil
	}
	if len(names) > 500 {
		names = names[:500]
	}

	observability.LLMRequests.WithLabelValues("candidates").Inc()
	raw, err := c.complete(ctx, candidateSystemPrompt, strings.Join(names, "\n"))
	if err != nil {
		observability.LLMFailures.WithLabelValues("candidates").Inc()
		return candidates, errors.NewLLM("tagger", "태그 후보 생성 실패", err)
	}

	payload, ok := extractFirstJSON(raw)
	if !ok {
		observability.LLMFailures.WithLabelValues("candidates").Inc()
		return candidates, errors.NewParsing("tagger", "태그 후보 응답에서 JSON을 찾을 수 없음", nil)
	}
	if err := json.Unmarshal([]byte(payload), &candidates); err != nil {
		return candidates, errors.NewParsing("tagger", "태그 후보 JSON 파싱 실패", err)
	}
	return candidates, nil
}

// itemTags is one product's enrichment as returned by the model. Loosely
// typed because models drift on field types.
type itemTags struct {
	ProductName string      `json:"product_name"`
	Category    interface{} `json:"category"`
	Taste       interface{} `json:"taste"`
	Situation   interface{} `json:"situation"`
	Brand       interface{} `json:"brand"`
	Target      interface{} `json:"target"`
	UnitValue   interface{} `json:"unit_value"`
	UnitType    interface{} `json:"unit_type"`
}

// EnrichStore tags the latest scrape for a retailer and writes the enriched
// variant. The raw file is the source of truth for what is on promotion, so
// expired items drop out on every run; tags from the previous enriched file
// are carried over by product name so reruns only pay for new products.
func (c *Client) EnrichStore(ctx context.Context, fs *store.FileStore, storeID string, candidates model.TagCandidates) error {
	db, err := fs.LoadStore(storeID)
	if err != nil {
		return err
	}

	prevTags := loadPreviousTags(fs, storeID)

	var untagged []string
	seen := make(map[string]bool)
	for i := range db.Items {
		key := helpers.NormalizeName(db.Items[i].ProductName)
		if prev, ok := prevTags[key]; ok {
			carryTags(&db.Items[i], prev)
		}
		if (db.Items[i].Category != "" && db.Items[i].Category != "미분류") || seen[key] {
			continue
		}
		seen[key] = true
		untagged = append(untagged, db.Items[i].ProductName)
	}

	if len(untagged) == 0 {
		c.log.Debug().Str("store", storeID).Msg("태그할 상품 없음")
		return fs.SaveTagged(storeID, db.Items)
	}

	c.log.Info().Str("store", storeID).Int("count", len(untagged)).Msg("상품 태깅 시작")

	tagsByName, err := c.tagNames(ctx, untagged, candidates)
	if err != nil {
		return err
	}

	for i := range db.Items {
		tags, ok := tagsByName[helpers.NormalizeName(db.Items[i].ProductName)]
		if !ok {
			continue
		}
		applyTags(&db.Items[i], tags)
	}

	return fs.SaveTagged(storeID, db.Items)
}

// loadPreviousTags indexes the last enriched file by normalized product name.
// A missing file just means a first run.
func loadPreviousTags(fs *store.FileStore, storeID string) map[string]model.PromotionItem {
	prevTags := make(map[string]model.PromotionItem)
	prev, err := fs.LoadTagged(storeID)
	if err != nil {
		return prevTags
	}
	for _, item := range prev.Items {
		if item.Category == "" || item.Category == "미분류" {
			continue
		}
		prevTags[helpers.NormalizeName(item.ProductName)] = item
	}
	return prevTags
}

// carryTags copies the tag fields from a previously enriched item onto a
// fresh one and recomputes the comparable unit price against the current
// effective price.
func carryTags(item *model.PromotionItem, prev model.PromotionItem) {
	item.Category = prev.Category
	item.Taste = prev.Taste
	item.Situation = prev.Situation
	item.Brand = prev.Brand
	item.Target = prev.Target
	item.UnitValue = prev.UnitValue
	item.UnitType = prev.UnitType

	effective := item.EffectiveUnitPrice
	if effective <= 0 {
		effective = item.SalePrice
	}
	item.PricePerUnit, item.PriceReference = scraper.UnitPrice(effective, item.UnitValue, item.UnitType)
}

// tagNames fans chunked tagging prompts out across a bounded worker set and
// merges the per-chunk results.
func (c *Client) tagNames(ctx context.Context, names []string, candidates model.TagCandidates) (map[string]itemTags, error) {
	var chunks [][]string
	for start := 0; start < len(names); start += c.chunkSize {
		end := start + c.chunkSize
		if end > len(names) {
			end = len(names)
		}
		chunks = append(chunks, names[start:end])
	}

	results := make(map[string]itemTags)
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, c.concurrency)
	errCh := make(chan error, len(chunks))

	for _, chunk := range chunks {
		wg.Add(1)
		sem <- struct{}{}
		go func(chunk []string) {
			defer wg.Done()
			defer func() { <-sem }()

			tags, err := c.tagChunk(ctx, chunk, candidates)
			if err != nil {
				errCh <- err
				return
			}
			mu.Lock()
			for _, t := range tags {
				// Models drift on whitespace; key on the normalized name.
				results[helpers.NormalizeName(t.ProductName)] = t
			}
			mu.Unlock()
		}(chunk)
	}

	wg.Wait()
	close(errCh)

	// Partial results are still useful; only fail when nothing tagged.
	if err := <-errCh; err != nil && len(results) == 0 {
		return nil, err
	}
	return results, nil
}

func (c *Client) tagChunk(ctx context.Context, names []string, candidates model.TagCandidates) ([]itemTags, error) {
	system := fmt.Sprintf(`당신은 편의점/마트 상품 분류 전문가입니다. 각 상품명에 대해 태그를 붙입니다.
category는 반드시 다음 목록에서만 선택: %s
taste는 반드시 다음 목록에서만 선택: %s
situation은 반드시 다음 목록에서만 선택: %s
brand는 상품명에서 추론한 브랜드명, target은 주요 구매층입니다.
unit_value와 unit_type은 상품명에 용량이 있을 때만 채웁니다 (예: "500ml" -> 500, "ml").
반드시 JSON 배열 하나만 출력하세요. 각 원소:
{"product_name": "...", "category": "...", "taste": "...", "situation": "...", "brand": "...", "target": "...", "unit_value": 0, "unit_type": ""}
product_name은 입력 그대로 되돌려야 합니다.`,
		strings.Join(candidates.Category, ", "),
		strings.Join(candidates.Taste, ", "),
		strings.Join(candidates.Situation, ", "))

	observability.LLMRequests.WithLabelValues("tagging").Inc()
	raw, err := c.complete(ctx, system, strings.Join(names, "\n"))
	if err != nil {
		observability.LLMFailures.WithLabelValues("tagging").Inc()
		return nil, errors.NewLLM("tagger", "태깅 호출 실패", err)
	}

	payload, ok := extractFirstJSON(raw)
	if !ok {
		observability.LLMFailures.WithLabelValues("tagging").Inc()
		return nil, errors.NewParsing("tagger", "태깅 응답에서 JSON을 찾을 수 없음", nil)
	}

	var tags []itemTags
	if err := json.Unmarshal([]byte(payload), &tags); err != nil {
		return nil, errors.NewParsing("tagger", "태깅 JSON 파싱 실패", err)
	}
	return tags, nil
}

// applyTags copies model output onto an item and recomputes the comparable
// unit price when a capacity became known.
func applyTags(item *model.PromotionItem, tags itemTags) {
	item.Category = asString(tags.Category)
	item.Taste = asString(tags.Taste)
	item.Situation = asString(tags.Situation)
	item.Brand = asString(tags.Brand)
	item.Target = asString(tags.Target)
	item.UnitValue = asInt(tags.UnitValue)
	item.UnitType = asString(tags.UnitType)

	effective := item.EffectiveUnitPrice
	if effective <= 0 {
		effective = item.SalePrice
	}
	item.PricePerUnit, item.PriceReference = scraper.UnitPrice(effective, item.UnitValue, item.UnitType)
}

const extractSystemPrompt = `당신은 마트 전단지 분석 전문가입니다. 전단지 텍스트에서 할인 상품을 추출합니다.
반드시 JSON 객체 하나만 출력하세요:
{"items": [{"product_name": "...", "base_price": 0, "sale_price": 0, "discount_condition": "1+1|2+1|할인", "unit": "개"}]}
가격은 정수(원)로만 출력합니다. 상품이 없으면 {"items": []}를 출력합니다.`

// ExtractItems pulls structured promotion items out of flyer text. Prices
// are normalized locally so the model only has to read, not compute.
func (c *Client) ExtractItems(ctx context.Context, storeName, text string) ([]model.PromotionItem, error) {
	observability.LLMRequests.WithLabelValues("extraction").Inc()
	raw, err := c.complete(ctx, extractSystemPrompt, text)
	if err != nil {
		observability.LLMFailures.WithLabelValues("extraction").Inc()
		return nil, errors.NewLLM(storeName, "전단지 추출 호출 실패", err)
	}

	payload, ok := extractFirstJSON(raw)
	if !ok {
		observability.LLMFailures.WithLabelValues("extraction").Inc()
		return nil, errors.NewParsing(storeName, "전단지 추출 응답에서 JSON을 찾을 수 없음", nil)
	}

	var envelope struct {
		Items []model.PromotionItem `json:"items"`
	}
	if err := json.Unmarshal([]byte(payload), &envelope); err != nil {
		return nil, errors.NewParsing(storeName, "전단지 추출 JSON 파싱 실패", err)
	}

	items := envelope.Items[:0]
	for _, item := range envelope.Items {
		item.ProductName = strings.TrimSpace(item.ProductName)
		if item.ProductName == "" || item.SalePrice <= 0 {
			continue
		}
		if item.BasePrice <= 0 {
			item.BasePrice = item.SalePrice
		}
		if item.DiscountCondition == scraper.CondDiscount || item.DiscountCondition == "" {
			item.DiscountCondition = scraper.CondDiscount
			item.EffectiveUnitPrice = item.SalePrice
		} else {
			item.EffectiveUnitPrice, item.SalePrice = scraper.NormalizePromo(item.SalePrice, item.DiscountCondition)
		}
		if item.Unit == "" {
			item.Unit = "개"
		}
		item.Store = storeName
		items = append(items, item)
	}
	return items, nil
}
