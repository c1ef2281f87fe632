package tools

import (
	"strings"

	"sehyeong/promoworker/internal/scraper"
)

// StoreNames maps store IDs to the display names shown in answers.
var StoreNames = map[string]string{
	scraper.StoreCU:          "편의점 CU",
	scraper.StoreGS25:        "편의점 GS25",
	scraper.StoreSevenEleven: "편의점 세븐일레븐",
	scraper.StoreEmart:       "이마트",
	scraper.StoreGSTheFresh:  "GS더프레시",
}

// AllStores lists the store IDs the engine queries, in display order.
var AllStores = []string{
	scraper.StoreCU,
	scraper.StoreGS25,
	scraper.StoreSevenEleven,
	scraper.StoreEmart,
	scraper.StoreGSTheFresh,
}

// DisplayName returns the display name for a store ID, falling back to the
// uppercased ID for unknown stores.
func DisplayName(storeID string) string {
	if name, ok := StoreNames[storeID]; ok {
		return name
	}
	return strings.ToUpper(storeID)
}

// filterStores narrows the store list by a substring match on the ID, so
// "cu", "GS 25" and "seven" all resolve.
func filterStores(preferred string) []string {
	if preferred == "" {
		return AllStores
	}
	target := strings.ToLower(strings.ReplaceAll(preferred, " ", ""))
	var out []string
	for _, id := range AllStores {
		if strings.Contains(id, target) {
			out = append(out, id)
		}
	}
	return out
}
