// Package router decides which connectors a search fans out to, based on
// the query classification and the source registry.
package router

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/partlogicapp/partlogic-server/internal/domain"
)

// AlwaysConnector is the link-generator identifier that runs on every
// search regardless of registry state.
const AlwaysConnector = "resources"

// connectorByDomain maps registry domains to connector identifiers. A
// registry entry whose domain is not listed here has no connector and is
// skipped.
//
//nolint:gochecknoglobals // Static lookup table
var connectorByDomain = map[string]string{
	"ebay.com":             "ebay",
	"rockauto.com":         "rockauto",
	"fcpeuro.com":          "fcpeuro",
	"ecstuning.com":        "ecstuning",
	"partsouq.com":         "partsouq",
	"amazon.com":           "amazon",
	"partsgeek.com":        "partsgeek",
	"autozone.com":         "autozone",
	"oreillyauto.com":      "oreilly",
	"napaonline.com":       "napa",
	"lkqonline.com":        "lkq",
	"advanceautoparts.com": "advanceauto",
	"row52.com":            "row52",
	"car-part.com":         "carpart",
}

// vehicleCategories are registry categories whose sources only make sense
// for a known vehicle.
//
//nolint:gochecknoglobals // Static lookup table
var vehicleCategories = map[string]struct{}{
	"used_aggregator": {},
	"salvage_yard":    {},
}

// Fallback routing used when the registry cannot be read. Mirrors the
// connectors that work without registry metadata.
//
//nolint:gochecknoglobals // Static fallback tables
var (
	fallbackPartNumber = []string{"ebay", "rockauto", "fcpeuro", "partsouq"}
	fallbackVehicle    = []string{"row52", "carpart"}
)

// Task is one connector invocation the orchestrator should run.
type Task struct {
	Connector string
	// Query is what the connector searches for. Vehicle sources on a
	// part-number search get a synthesized "<vehicle> <part>" query.
	Query string
}

// Skip records a connector that was deliberately not run.
type Skip struct {
	Connector string
	Reason    string
}

// Plan is the routing decision for one search.
type Plan struct {
	Tasks   []Task
	Skipped []Skip
}

// Connectors returns the connector identifiers of every task, in order.
func (p *Plan) Connectors() []string {
	out := make([]string, len(p.Tasks))
	for i, t := range p.Tasks {
		out[i] = t.Connector
	}
	return out
}

// SourceLister is the registry view the router needs.
type SourceLister interface {
	ActiveSources() ([]domain.Source, error)
}

// Router maps an analyzed query onto the connectors that should run.
type Router struct {
	registry SourceLister
	logger   *slog.Logger
}

func New(registry SourceLister, logger *slog.Logger) *Router {
	return &Router{registry: registry, logger: logger}
}

// routingSets are the capability buckets sources fall into. A source with
// no usable capability ends up in unroutable so the plan can report it
// rather than drop it silently.
type routingSets struct {
	partNumber []string
	vehicle    []string
	always     []string
	unroutable []string
}

// Route builds the plan for one analyzed query. The plan is never empty:
// the always-on link generator runs even when the registry is down and the
// query matched nothing else.
func (r *Router) Route(analysis *domain.QueryAnalysis) *Plan {
	sets := r.classify()
	plan := &Plan{}
	query := analysis.OriginalQuery

	addAll := func(names []string, q string) {
		for _, name := range names {
			plan.Tasks = append(plan.Tasks, Task{Connector: name, Query: q})
		}
	}

	for _, name := range sets.unroutable {
		plan.Skipped = append(plan.Skipped, Skip{
			Connector: name,
			Reason:    "source supports neither part-number nor vehicle search",
		})
	}

	if analysis.QueryType == domain.QueryTypePartNumber {
		addAll(sets.partNumber, query)
		addAll(sets.always, query)

		// Vehicle sources search by vehicle, not by number. They only
		// join a part-number search once interchange expansion has told
		// us what the part fits.
		if analysis.VehicleHint != "" && analysis.PartDescription != "" {
			synthesized := analysis.VehicleHint + " " + analysis.PartDescription
			addAll(sets.vehicle, synthesized)
		} else {
			for _, name := range sets.vehicle {
				plan.Skipped = append(plan.Skipped, Skip{
					Connector: name,
					Reason:    "part-number search without vehicle context",
				})
			}
		}
		return plan
	}

	addAll(sets.partNumber, query)
	addAll(sets.vehicle, query)
	addAll(sets.always, query)
	return plan
}

// classify reads the registry into the three routing sets, falling back to
// the static defaults when the registry is unavailable.
func (r *Router) classify() routingSets {
	sets := routingSets{always: []string{AlwaysConnector}}

	sources, err := r.registry.ActiveSources()
	if err != nil {
		if r.logger != nil {
			r.logger.Warn("source registry unavailable, using fallback routing", "error", err)
		}
		sets.partNumber = append(sets.partNumber, fallbackPartNumber...)
		sets.vehicle = append(sets.vehicle, fallbackVehicle...)
		return sets
	}

	type candidate struct {
		name     string
		priority int
	}
	var pnCands, vehCands []candidate
	seen := make(map[string]struct{})

	for _, src := range sources {
		if !src.IsActive() {
			continue
		}
		name, ok := connectorByDomain[NormalizeDomain(src.Domain)]
		if !ok || name == AlwaysConnector {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		if _, vehicle := vehicleCategories[src.Category]; vehicle {
			vehCands = append(vehCands, candidate{name, src.Priority})
		} else if src.SupportsPartNumber {
			pnCands = append(pnCands, candidate{name, src.Priority})
		} else {
			sets.unroutable = append(sets.unroutable, name)
		}
	}

	byPriority := func(cands []candidate) []string {
		sort.SliceStable(cands, func(i, j int) bool {
			return cands[i].priority > cands[j].priority
		})
		out := make([]string, len(cands))
		for i, c := range cands {
			out[i] = c.name
		}
		return out
	}
	sets.partNumber = byPriority(pnCands)
	sets.vehicle = byPriority(vehCands)
	return sets
}

// NormalizeDomain reduces a registry domain or URL to its bare host:
// "https://www.RockAuto.com/en" becomes "rockauto.com".
func NormalizeDomain(raw string) string {
	d := strings.ToLower(strings.TrimSpace(raw))
	for _, prefix := range []string{"https://", "http://"} {
		d = strings.TrimPrefix(d, prefix)
	}
	if idx := strings.IndexAny(d, "/?#"); idx >= 0 {
		d = d[:idx]
	}
	d = strings.TrimPrefix(d, "www.")
	return strings.TrimSuffix(d, ".")
}

// ConnectorFor returns the connector identifier for a registry domain, or
// an error when no connector implements it.
func ConnectorFor(domainName string) (string, error) {
	name, ok := connectorByDomain[NormalizeDomain(domainName)]
	if !ok {
		return "", fmt.Errorf("no connector for domain %q", domainName)
	}
	return name, nil
}
