// Package query classifies part search queries and extracts the part
// numbers, vehicle context, and keywords that drive connector routing.
package query

import (
	"regexp"
	"sort"
	"strings"
)

const (
	digitChars  = "0123456789"
	letterChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// Part number shapes seen across OEM and aftermarket catalogs.
//
//nolint:gochecknoglobals // Compiled once at package init
var (
	// Alphanumeric with dashes ("12345-ABC", "951-375-042-04").
	dashedPartPattern = regexp.MustCompile(`\b[A-Z0-9]{2,}-[A-Z0-9-]+\b`)
	// Alphanumeric with dots ("123.456", "ABC.123").
	dottedPartPattern = regexp.MustCompile(`\b[A-Z0-9]{2,}\.[A-Z0-9]+\b`)
	// Continuous alphanumeric token. The digit/letter mix requirement is
	// enforced in code since RE2 has no lookahead.
	continuousPartPattern = regexp.MustCompile(`\b[A-Z0-9]{5,15}\b`)

	// Labeled part numbers ("OEM 12345", "Part # ABC123", "#BP1234").
	labeledPartPattern = regexp.MustCompile(`(?:OEM|PART\s*#?|PN|P/N)\s*([A-Z0-9-]{3,15})`)
	hashPartPattern    = regexp.MustCompile(`#\s*([A-Z0-9-]{3,15})`)
)

// NormalizeQuery uppercases a query and collapses whitespace runs so the
// same search always produces the same cache key.
func NormalizeQuery(query string) string {
	return strings.Join(strings.Fields(strings.ToUpper(query)), " ")
}

// NormalizePartNumber uppercases a part number and strips spaces while
// keeping dashes and dots intact.
func NormalizePartNumber(partNumber string) string {
	return strings.ReplaceAll(strings.TrimSpace(strings.ToUpper(partNumber)), " ", "")
}

// ExtractPartNumbers pulls candidate part numbers out of free text.
// Candidates are normalized with NormalizePartNumber and kept only when
// their core (dashes and dots removed) is 3 to 20 characters long.
// The result is de-duplicated and sorted.
func ExtractPartNumbers(text string) []string {
	if text == "" {
		return nil
	}

	upper := strings.ToUpper(text)
	seen := make(map[string]struct{})
	keep := func(raw string) {
		candidate := strings.ReplaceAll(strings.TrimSpace(raw), " ", "")
		core := strings.NewReplacer("-", "", ".", "").Replace(candidate)
		if len(core) < 3 || len(core) > 20 {
			return
		}
		seen[candidate] = struct{}{}
	}

	for _, match := range dashedPartPattern.FindAllString(upper, -1) {
		keep(match)
	}
	for _, match := range dottedPartPattern.FindAllString(upper, -1) {
		keep(match)
	}
	for _, match := range continuousPartPattern.FindAllString(upper, -1) {
		if strings.ContainsAny(match, digitChars) && strings.ContainsAny(match, letterChars) {
			keep(match)
		}
	}
	for _, match := range labeledPartPattern.FindAllStringSubmatch(upper, -1) {
		keep(match[1])
	}
	for _, match := range hashPartPattern.FindAllStringSubmatch(upper, -1) {
		keep(match[1])
	}

	if len(seen) == 0 {
		return nil
	}
	numbers := make([]string, 0, len(seen))
	for pn := range seen {
		numbers = append(numbers, pn)
	}
	sort.Strings(numbers)
	return numbers
}
