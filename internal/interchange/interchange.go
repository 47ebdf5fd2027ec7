// Package interchange expands a part number into its cross-brand
// equivalents by fanning out to independent cross-reference providers and
// merging what they agree on.
package interchange

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/partlogicapp/partlogic-server/internal/domain"
)

// Result is one provider's partial view of a part's cross references.
type Result struct {
	Source string
	// PartNumbers excludes the primary.
	PartNumbers []string
	// Brands maps brand name to the part numbers it makes.
	Brands          map[string][]string
	VehicleHint     string
	PartDescription string
}

// Empty reports whether the provider found nothing usable.
func (r *Result) Empty() bool {
	return len(r.PartNumbers) == 0 && len(r.Brands) == 0
}

// Provider is one independent cross-reference source. Lookup failures are
// tolerated: the expander logs and excludes them from the merge.
type Provider interface {
	Name() string
	Lookup(ctx context.Context, partNumber string) (*Result, error)
}

// Confidence steps by count of providers that returned non-empty data.
// Heuristic behavior-parity constants; tests pin them.
const (
	ConfidenceNone     = 0.0
	ConfidenceOne      = 0.5
	ConfidenceTwo      = 0.7
	ConfidenceMajority = 0.9
)

// Confidence maps a non-empty-provider count onto the step function.
func Confidence(providersWithData int) float64 {
	switch {
	case providersWithData >= 3:
		return ConfidenceMajority
	case providersWithData == 2:
		return ConfidenceTwo
	case providersWithData == 1:
		return ConfidenceOne
	default:
		return ConfidenceNone
	}
}

// Expander fans out to cross-reference providers in parallel and merges
// their results. Provider order is the priority order for first-wins hint
// merging.
type Expander struct {
	providers []Provider
	timeout   time.Duration
	logger    *slog.Logger
}

// NewExpander creates an expander over the given providers. maxProviders
// bounds the fan-out; zero or negative means all providers.
func NewExpander(providers []Provider, maxProviders int, timeout time.Duration, logger *slog.Logger) *Expander {
	if maxProviders > 0 && maxProviders < len(providers) {
		providers = providers[:maxProviders]
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Expander{providers: providers, timeout: timeout, logger: logger}
}

// Expand builds the interchange group for a part-number query. Returns nil
// when the query is not a part-number search, no part number was
// extracted, or every provider failed outright. Providers that answered
// with no data still yield a group, at confidence 0.
//
// On success the merged hints are written back into the analysis, but only
// where the analysis had nothing: an explicit user hint is never
// overridden.
func (e *Expander) Expand(ctx context.Context, analysis *domain.QueryAnalysis) *domain.InterchangeGroup {
	if analysis.QueryType != domain.QueryTypePartNumber || len(analysis.PartNumbers) == 0 {
		return nil
	}
	if len(e.providers) == 0 {
		return nil
	}

	primary := analysis.PartNumbers[0]
	results := e.fanOut(ctx, primary)
	if len(results) == 0 {
		return nil
	}

	group := merge(primary, results)
	writeBack(analysis, group)
	return group
}

// fanOut queries every provider in parallel with a per-provider timeout.
// The returned slice preserves provider priority order; failed providers
// are simply absent.
func (e *Expander) fanOut(ctx context.Context, partNumber string) []*Result {
	slots := make([]*Result, len(e.providers))
	var wg sync.WaitGroup

	for i, p := range e.providers {
		wg.Go(func() {
			lookupCtx, cancel := context.WithTimeout(ctx, e.timeout)
			defer cancel()

			result, err := p.Lookup(lookupCtx, partNumber)
			if err != nil {
				if e.logger != nil {
					e.logger.Warn("cross-reference provider failed",
						"provider", p.Name(), "part_number", partNumber, "error", err)
				}
				return
			}
			slots[i] = result
		})
	}
	wg.Wait()

	results := make([]*Result, 0, len(slots))
	for _, r := range slots {
		if r != nil {
			results = append(results, r)
		}
	}
	return results
}

// merge unions the provider results into one group. Hints are first-wins
// in provider priority order; confidence counts only providers that
// actually returned data.
func merge(primary string, results []*Result) *domain.InterchangeGroup {
	group := &domain.InterchangeGroup{PrimaryPartNumber: primary}

	primaryUpper := strings.ToUpper(primary)
	numbers := make(map[string]string) // upper -> first-seen casing
	brands := make(map[string]map[string]struct{})
	withData := 0

	for _, r := range results {
		group.SourcesConsulted = append(group.SourcesConsulted, r.Source)
		if !r.Empty() {
			withData++
		}

		for _, pn := range r.PartNumbers {
			upper := strings.ToUpper(pn)
			if upper == primaryUpper {
				continue
			}
			if _, ok := numbers[upper]; !ok {
				numbers[upper] = pn
			}
		}

		for brandName, pns := range r.Brands {
			key := strings.ToUpper(strings.TrimSpace(brandName))
			if key == "" {
				continue
			}
			set, ok := brands[key]
			if !ok {
				set = make(map[string]struct{})
				brands[key] = set
			}
			for _, pn := range pns {
				set[pn] = struct{}{}
			}
		}

		if group.VehicleFitment == "" && r.VehicleHint != "" {
			group.VehicleFitment = r.VehicleHint
		}
		if group.PartDescription == "" && r.PartDescription != "" {
			group.PartDescription = r.PartDescription
		}
	}

	group.InterchangeNumbers = make([]string, 0, len(numbers))
	for _, pn := range numbers {
		group.InterchangeNumbers = append(group.InterchangeNumbers, pn)
	}
	sort.Strings(group.InterchangeNumbers)

	group.Brands = make(map[string][]string, len(brands))
	for brandKey, set := range brands {
		pns := make([]string, 0, len(set))
		for pn := range set {
			pns = append(pns, pn)
		}
		sort.Strings(pns)
		group.Brands[titleBrand(brandKey)] = pns
	}

	group.Confidence = Confidence(withData)
	return group
}

// writeBack merges the group into the analysis without clobbering
// anything already set.
func writeBack(analysis *domain.QueryAnalysis, group *domain.InterchangeGroup) {
	if analysis.VehicleHint == "" && group.VehicleFitment != "" {
		analysis.VehicleHint = group.VehicleFitment
	}
	if analysis.PartDescription == "" && group.PartDescription != "" {
		analysis.PartDescription = group.PartDescription
	}

	existing := make(map[string]struct{}, len(analysis.CrossReferences))
	for _, x := range analysis.CrossReferences {
		existing[strings.ToUpper(x)] = struct{}{}
	}
	for _, pn := range group.InterchangeNumbers {
		if _, ok := existing[strings.ToUpper(pn)]; !ok {
			analysis.CrossReferences = append(analysis.CrossReferences, pn)
		}
	}
	sort.Strings(analysis.CrossReferences)

	knownBrands := make(map[string]struct{}, len(analysis.BrandsFound))
	for _, b := range analysis.BrandsFound {
		knownBrands[strings.ToUpper(b)] = struct{}{}
	}
	for b := range group.Brands {
		if _, ok := knownBrands[strings.ToUpper(b)]; !ok {
			analysis.BrandsFound = append(analysis.BrandsFound, b)
		}
	}
	sort.Strings(analysis.BrandsFound)
}

func titleBrand(upper string) string {
	words := strings.Fields(strings.ToLower(upper))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
