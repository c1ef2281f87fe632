package helpers

import (
	"errors"
	"strings"
)

func GetSplitPart(target string, separate string, index int) (string, error) {
	parts := strings.Split(target, separate)
	if index >= len(parts) {
		return "", errors.New("index out of range")
	}
	return parts[index], nil
}

// NormalizeName lowercases a product name and strips spaces so that
// "코카콜라 제로 500ml" and "코카콜라제로 500ML" match the same key.
func NormalizeName(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", ""))
}
