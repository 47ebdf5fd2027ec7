// Package service assembles the search pipeline: analysis, interchange
// expansion, routing, connector fan-out, result shaping, and the optional
// enrichments (catalog fitment, community, advisor, history).
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"encoding/json/v2"

	"github.com/partlogicapp/partlogic-server/internal/advisor"
	"github.com/partlogicapp/partlogic-server/internal/brand"
	"github.com/partlogicapp/partlogic-server/internal/cache"
	"github.com/partlogicapp/partlogic-server/internal/catalog"
	"github.com/partlogicapp/partlogic-server/internal/community"
	"github.com/partlogicapp/partlogic-server/internal/connector"
	"github.com/partlogicapp/partlogic-server/internal/domain"
	"github.com/partlogicapp/partlogic-server/internal/errors"
	"github.com/partlogicapp/partlogic-server/internal/history"
	"github.com/partlogicapp/partlogic-server/internal/interchange"
	"github.com/partlogicapp/partlogic-server/internal/metrics"
	"github.com/partlogicapp/partlogic-server/internal/orchestrator"
	"github.com/partlogicapp/partlogic-server/internal/query"
	"github.com/partlogicapp/partlogic-server/internal/results"
	"github.com/partlogicapp/partlogic-server/internal/router"
)

const overallCachePrefix = "search:overall:"

// SearchRequest is one search invocation.
type SearchRequest struct {
	Query string
	// Sort is "relevance" (default), "price_asc", "price_desc", or "value".
	Sort string
	// ZipCode localizes used-part aggregators; empty falls back to config.
	ZipCode    string
	MaxResults int
}

// SearchService runs the full pipeline. Everything past the connector
// fan-out is an enrichment: a nil store or client simply switches that
// enrichment off.
type SearchService struct {
	router       *router.Router
	orchestrator *orchestrator.Orchestrator
	expander     *interchange.Expander
	cache        cache.Cache
	history      *history.Store
	catalog      *catalog.Store
	community    *community.Client
	advisor      *advisor.Advisor
	metrics      *metrics.Metrics
	logger       *slog.Logger
	opts         SearchOptions
}

// SearchOptions tunes the search service. Zero values mean defaults.
type SearchOptions struct {
	// OverallTTL is how long whole responses stay cached (default 6h).
	OverallTTL time.Duration
	// MaxResultsPerSource caps listings per connector (default 20).
	MaxResultsPerSource int
	// DefaultZip is used when a request carries no zip code.
	DefaultZip string
}

// SearchDeps are the collaborators of a SearchService. Router and
// Orchestrator are required; the rest may be nil.
type SearchDeps struct {
	Router       *router.Router
	Orchestrator *orchestrator.Orchestrator
	Expander     *interchange.Expander
	Cache        cache.Cache
	History      *history.Store
	Catalog      *catalog.Store
	Community    *community.Client
	Advisor      *advisor.Advisor
	Metrics      *metrics.Metrics
	Logger       *slog.Logger
}

func NewSearchService(deps SearchDeps, opts SearchOptions) *SearchService {
	if opts.OverallTTL <= 0 {
		opts.OverallTTL = 6 * time.Hour
	}
	if opts.MaxResultsPerSource <= 0 {
		opts.MaxResultsPerSource = 20
	}
	if deps.Cache == nil {
		deps.Cache = cache.Noop{}
	}
	return &SearchService{
		router:       deps.Router,
		orchestrator: deps.Orchestrator,
		expander:     deps.Expander,
		cache:        deps.Cache,
		history:      deps.History,
		catalog:      deps.Catalog,
		community:    deps.Community,
		advisor:      deps.Advisor,
		metrics:      deps.Metrics,
		logger:       deps.Logger,
		opts:         opts,
	}
}

// Search runs one query through the whole pipeline. Partial results with
// warnings are the normal failure mode; an error comes back only when the
// request itself is invalid.
func (s *SearchService) Search(ctx context.Context, req SearchRequest) (*domain.SearchResponse, error) {
	rawQuery := strings.TrimSpace(req.Query)
	if rawQuery == "" {
		return nil, errors.Validation("search query is required")
	}
	sortMode := req.Sort
	if sortMode == "" {
		sortMode = "relevance"
	}

	start := time.Now()
	normalized := query.NormalizeQuery(rawQuery)
	cacheKey := overallCachePrefix + normalized

	if cached := s.readOverallCache(ctx, cacheKey); cached != nil {
		s.metrics.CacheHit("overall")
		cached.Cached = true
		s.recordHistory(ctx, cached, nil, sortMode, time.Since(start))
		return cached, nil
	}
	s.metrics.CacheMiss("overall")

	analysis := query.Analyze(rawQuery)
	s.metrics.SearchStarted(string(analysis.QueryType))

	var ig *domain.InterchangeGroup
	if s.expander != nil {
		ig = s.expander.Expand(ctx, &analysis)
	}

	plan := s.router.Route(&analysis)
	opts := connector.Options{
		MaxResults:  req.MaxResults,
		ZipCode:     req.ZipCode,
		PartNumbers: analysis.AllPartNumbers(),
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = s.opts.MaxResultsPerSource
	}
	if opts.ZipCode == "" {
		opts.ZipCode = s.opts.DefaultZip
	}

	// Community lookup is independent of the connectors, so it runs
	// alongside the fan-out.
	var communitySources []domain.CommunitySource
	var wg sync.WaitGroup
	if s.community != nil {
		wg.Go(func() {
			communitySources = s.community.Fetch(ctx, rawQuery, analysis.VehicleHint, analysis.PartDescription)
		})
	}
	connectorResults := s.orchestrator.Run(ctx, plan, opts)
	wg.Wait()

	resp := s.assemble(ctx, rawQuery, sortMode, &analysis, ig, plan, connectorResults, communitySources)

	vehicleID := s.annotateFitments(ctx, &analysis, resp)
	s.recordHistory(ctx, resp, vehicleID, sortMode, time.Since(start))
	s.writeOverallCache(ctx, cacheKey, resp)
	return resp, nil
}

// assemble merges connector results into the response contract: dedup,
// salvage filter, rank, group, brand comparison, intelligence.
func (s *SearchService) assemble(
	ctx context.Context,
	rawQuery, sortMode string,
	analysis *domain.QueryAnalysis,
	ig *domain.InterchangeGroup,
	plan *router.Plan,
	connectorResults []domain.ConnectorResult,
	communitySources []domain.CommunitySource,
) *domain.SearchResponse {
	resp := &domain.SearchResponse{
		Query:                rawQuery,
		ExtractedPartNumbers: analysis.PartNumbers,
		Warnings:             []string{},
	}

	var listings []domain.MarketListing
	var salvage []domain.SalvageHit
	var links []domain.ExternalLink

	for _, result := range connectorResults {
		status := domain.SourceStatus{
			Source:      result.SourceName,
			Status:      result.Status,
			ResultCount: result.Count(),
		}
		if result.Error != "" {
			status.Details = result.Error
			resp.Warnings = append(resp.Warnings, fmt.Sprintf("%s: %s", result.SourceName, result.Error))
		}
		resp.SourcesQueried = append(resp.SourcesQueried, status)

		listings = append(listings, result.MarketListings...)
		salvage = append(salvage, result.SalvageHits...)
		links = append(links, result.ExternalLinks...)
	}
	for _, skip := range plan.Skipped {
		resp.SourcesQueried = append(resp.SourcesQueried, domain.SourceStatus{
			Source:  skip.Connector,
			Status:  domain.StatusSkipped,
			Details: skip.Reason,
		})
	}

	listings = results.DeduplicateListings(listings)
	if ig != nil {
		markInterchangeMatches(listings, ig)
	}
	listings = results.RankListings(listings, rawQuery, sortMode, analysis)

	resp.Results = domain.SearchResults{
		MarketListings: listings,
		SalvageHits:    results.FilterSalvageHits(salvage, analysis),
		ExternalLinks:  results.GroupLinksByCategory(results.DeduplicateLinks(links)),
	}
	resp.GroupedListings = results.SortGroups(results.GroupListings(listings), sortMode)

	comparison := brand.BuildComparison(listings, ig)
	intelligence := &domain.PartIntelligence{
		QueryType:        analysis.QueryType,
		VehicleHint:      analysis.VehicleHint,
		PartDescription:  analysis.PartDescription,
		CrossReferences:  analysis.CrossReferences,
		BrandsFound:      analysis.BrandsFound,
		Interchange:      ig,
		BrandComparison:  comparison,
		Recommendation:   brand.TopPick(comparison),
		CommunitySources: communitySources,
	}
	if advice := s.advisor.Recommend(ctx, advisor.Evidence{
		Query:           rawQuery,
		VehicleHint:     analysis.VehicleHint,
		PartDescription: analysis.PartDescription,
		TopGroups:       resp.GroupedListings,
		BrandComparison: comparison,
		Community:       communitySources,
	}); advice != nil {
		intelligence.Recommendation = advice.Summary
	}
	resp.Intelligence = intelligence
	return resp
}

// annotateFitments resolves the vehicle hint against the canonical catalog
// and stamps confirmed/likely fitment onto listings. Returns the resolved
// vehicle ID for history, or nil. All failures are soft.
func (s *SearchService) annotateFitments(ctx context.Context, analysis *domain.QueryAnalysis, resp *domain.SearchResponse) *int64 {
	if s.catalog == nil || analysis.VehicleHint == "" {
		return nil
	}

	resolved, err := s.catalog.ResolveVehicle(ctx, analysis.VehicleHint, "")
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("vehicle resolution failed", "hint", analysis.VehicleHint, "error", err)
		}
		return nil
	}
	if resolved.VehicleID == nil {
		return nil
	}

	seen := make(map[string]struct{})
	var partNumbers []string
	for _, l := range resp.Results.MarketListings {
		for _, pn := range l.PartNumbers {
			if _, dup := seen[pn]; dup {
				continue
			}
			seen[pn] = struct{}{}
			partNumbers = append(partNumbers, pn)
		}
	}
	statuses, err := s.catalog.CheckFitments(ctx, partNumbers, *resolved.VehicleID)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("fitment check failed", "vehicle_id", *resolved.VehicleID, "error", err)
		}
		return resolved.VehicleID
	}

	for i := range resp.Results.MarketListings {
		l := &resp.Results.MarketListings[i]
		for _, pn := range l.PartNumbers {
			if status, ok := statuses[pn]; ok {
				l.FitmentStatus = status
				break
			}
		}
	}
	return resolved.VehicleID
}

// recordHistory persists the search record and price snapshots. History
// trouble never fails a search.
func (s *SearchService) recordHistory(ctx context.Context, resp *domain.SearchResponse, vehicleID *int64, sortMode string, elapsed time.Duration) {
	if s.history == nil {
		return
	}

	rec := domain.SearchRecord{
		Query:              resp.Query,
		NormalizedQuery:    query.NormalizeQuery(resp.Query),
		Sort:               sortMode,
		MarketListingCount: len(resp.Results.MarketListings),
		SalvageHitCount:    len(resp.Results.SalvageHits),
		ExternalLinkCount:  len(resp.Results.ExternalLinks),
		SourceCount:        len(resp.SourcesQueried),
		Cached:             resp.Cached,
		ResponseTimeMS:     elapsed.Milliseconds(),
		VehicleID:          vehicleID,
	}
	if resp.Intelligence != nil {
		rec.QueryType = resp.Intelligence.QueryType
		rec.VehicleHint = resp.Intelligence.VehicleHint
		rec.PartDescription = resp.Intelligence.PartDescription
		rec.HasInterchange = resp.Intelligence.Interchange != nil
	}
	if _, err := s.history.RecordSearch(ctx, rec); err != nil && s.logger != nil {
		s.logger.Warn("record search history failed", "error", err)
	}

	// Cached responses observed no fresh prices.
	if resp.Cached {
		return
	}
	var snapshots []domain.PriceSnapshot
	for _, group := range resp.GroupedListings {
		for _, offer := range group.Offers {
			snap := domain.PriceSnapshot{
				Query:      rec.NormalizedQuery,
				Source:     offer.Source,
				PartNumber: group.PartNumber,
				Brand:      group.Brand,
				Title:      offer.Title,
				Price:      offer.Price,
				Condition:  offer.Condition,
				URL:        offer.URL,
			}
			if offer.ShippingCost != nil {
				snap.ShippingCost = *offer.ShippingCost
			}
			snapshots = append(snapshots, snap)
		}
	}
	if len(snapshots) == 0 {
		return
	}
	if _, err := s.history.RecordSnapshots(ctx, snapshots); err != nil && s.logger != nil {
		s.logger.Warn("record price snapshots failed", "error", err)
	}
}

// markInterchangeMatches stamps the interchange number each listing
// matched, comparing on normalized part numbers.
func markInterchangeMatches(listings []domain.MarketListing, ig *domain.InterchangeGroup) {
	byNorm := make(map[string]string, len(ig.InterchangeNumbers)+1)
	for _, number := range ig.AllNumbers() {
		byNorm[query.NormalizePartNumber(number)] = number
	}
	for i := range listings {
		for _, pn := range listings[i].PartNumbers {
			if matched, ok := byNorm[query.NormalizePartNumber(pn)]; ok {
				listings[i].MatchedInterchange = matched
				break
			}
		}
	}
}

func (s *SearchService) readOverallCache(ctx context.Context, key string) *domain.SearchResponse {
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("overall cache read failed", "key", key, "error", err)
		}
		return nil
	}
	if data == nil {
		return nil
	}
	var resp domain.SearchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		if s.logger != nil {
			s.logger.Warn("overall cache entry corrupt", "key", key, "error", err)
		}
		return nil
	}
	return &resp
}

func (s *SearchService) writeOverallCache(ctx context.Context, key string, resp *domain.SearchResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.opts.OverallTTL); err != nil && s.logger != nil {
		s.logger.Warn("overall cache write failed", "key", key, "error", err)
	}
}
