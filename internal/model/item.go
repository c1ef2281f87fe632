package model

// PromotionItem represents a single promoted product from one retailer.
// The JSON field names are the on-disk and wire contract; the tagging
// pass only ever adds fields, it never rewrites product_name.
type PromotionItem struct {
	ProductName        string `json:"product_name"`
	BasePrice          int    `json:"base_price,omitempty"`
	SalePrice          int    `json:"sale_price"`
	EffectiveUnitPrice int    `json:"effective_unit_price,omitempty"`
	DiscountCondition  string `json:"discount_condition"`
	Unit               string `json:"unit,omitempty"`
	ImageURL           string `json:"image_url,omitempty"`
	Store              string `json:"store,omitempty"`

	// Enrichment fields, present only in the _with_tags variant
	UnitValue      int    `json:"unit_value,omitempty"`
	UnitType       string `json:"unit_type,omitempty"`
	PricePerUnit   int    `json:"price_per_unit,omitempty"`
	PriceReference string `json:"price_reference,omitempty"`
	Brand          string `json:"brand,omitempty"`
	Category       string `json:"category,omitempty"`
	Taste          string `json:"taste,omitempty"`
	Situation      string `json:"situation,omitempty"`
	Target         string `json:"target,omitempty"`
}

// StoreDB is one retailer's promotion file, rewritten wholesale per run.
type StoreDB struct {
	StoreName   string          `json:"store_name"`
	LastUpdated string          `json:"last_updated"`
	TotalCount  int             `json:"total_count"`
	Items       []PromotionItem `json:"items"`
}

// TagCandidates holds the allowed tag vocabulary the LLM must pick from.
type TagCandidates struct {
	Category  []string `json:"category"`
	Taste     []string `json:"taste"`
	Situation []string `json:"situation"`
}

// IsEmpty reports whether no candidate list has been generated yet.
func (t TagCandidates) IsEmpty() bool {
	return len(t.Category) == 0 && len(t.Taste) == 0 && len(t.Situation) == 0
}
