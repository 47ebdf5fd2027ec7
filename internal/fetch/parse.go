package fetch

import (
	"regexp"
	"strconv"
	"strings"
)

//nolint:gochecknoglobals // Compiled once at package init
var pricePattern = regexp.MustCompile(`[\$€£]?\s*[\d,]+\.?\d*`)

// ParsePrice extracts a price from messy scraped text: "$1,234.56",
// "from $12.99", "123,45". Returns 0 when nothing parseable is found.
func ParsePrice(text string) float64 {
	cleaned := strings.TrimSpace(strings.NewReplacer("\n", "", "\t", "", " ", " ").Replace(text))
	if cleaned == "" {
		return 0
	}
	if match := pricePattern.FindString(cleaned); match != "" {
		cleaned = match
	}
	cleaned = strings.NewReplacer("$", "", "€", "", "£", "", ",", "", " ", "").Replace(cleaned)
	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || price < 0 {
		return 0
	}
	return price
}

// NormalizeCondition maps source-specific condition strings onto the small
// set the ranker understands.
func NormalizeCondition(raw string) string {
	if raw == "" {
		return "Unknown"
	}
	lower := strings.ToLower(raw)
	switch {
	case containsAny(lower, "brand new", "unused", "new"):
		return "New"
	case containsAny(lower, "refurbished", "reconditioned"):
		return "Refurbished"
	case containsAny(lower, "pre-owned", "second hand", "used"):
		return "Used"
	case containsAny(lower, "salvage", "wrecked", "parts only"):
		return "Salvage"
	default:
		return titleWords(lower)
	}
}

func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// CleanURL trims a scraped URL and prefixes a scheme or base when the
// source emitted a bare domain or site-relative path.
func CleanURL(raw, base string) string {
	u := strings.TrimSpace(raw)
	if u == "" {
		return ""
	}
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	if strings.HasPrefix(u, "/") {
		return strings.TrimSuffix(base, "/") + u
	}
	return "https://" + u
}
