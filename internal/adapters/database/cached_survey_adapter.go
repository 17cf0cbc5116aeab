package database

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/offerfunnel/offerfunnel/backend/internal/domain/entities"
	"github.com/offerfunnel/offerfunnel/backend/internal/domain/providers"
	"github.com/offerfunnel/offerfunnel/backend/internal/domain/repositories"
)

// Cache TTLs (in seconds). Aggregates may be up to a minute stale, which is
// acceptable for non-critical dashboard statistics; filter options change
// only on insert so they get a longer window plus explicit invalidation.
const (
	statsTTL         = 60
	filterOptionsTTL = 300
)

const filterOptionsCacheKey = "survey:options"

// CachedSurveyAdapter wraps a SurveyRepository with Redis-backed caching of
// the aggregate and filter-option reads. Raw row listings always hit the
// store, and writes pass straight through.
type CachedSurveyAdapter struct {
	adapter repositories.SurveyRepository
	cache   providers.CacheProvider
}

// NewCachedSurveyAdapter creates a new cached survey adapter
func NewCachedSurveyAdapter(adapter repositories.SurveyRepository, cache providers.CacheProvider) repositories.SurveyRepository {
	return &CachedSurveyAdapter{
		adapter: adapter,
		cache:   cache,
	}
}

// statsCacheKey derives a deterministic key from the filter set. Fields are
// serialized in a fixed order so equal filters always map to the same key.
func statsCacheKey(f entities.DashboardFilters) string {
	internship := ""
	if f.InternshipCount != nil {
		internship = strconv.Itoa(*f.InternshipCount)
	}

	canonical := strings.Join([]string{
		f.Major,
		f.Degree,
		f.SchoolTier,
		f.GPARange,
		f.GraduatingTime,
		f.WhenStartedApplying,
		internship,
		f.NeedsSponsorship,
		f.HasReturnOffer,
	}, "|")

	hash := sha256.Sum256([]byte(canonical))
	return fmt.Sprintf("survey:stats:%s", hex.EncodeToString(hash[:]))
}

// List always reads from the store; the raw response table is not cached.
func (a *CachedSurveyAdapter) List(ctx context.Context, filters entities.DashboardFilters) ([]*entities.SurveyResponse, error) {
	return a.adapter.List(ctx, filters)
}

// Aggregate serves cached statistics when available, falling back to the
// store on any cache miss or failure.
func (a *CachedSurveyAdapter) Aggregate(ctx context.Context, filters entities.DashboardFilters) (*entities.AggregatedStats, error) {
	cacheKey := statsCacheKey(filters)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var stats entities.AggregatedStats
		if err := json.Unmarshal(cached, &stats); err == nil {
			return &stats, nil
		}
		log.Warn().Str("key", cacheKey).Msg("failed to unmarshal cached stats")
	}

	stats, err := a.adapter.Aggregate(ctx, filters)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(stats); err == nil {
		if err := a.cache.Set(ctx, cacheKey, data, statsTTL); err != nil {
			log.Warn().Err(err).Str("key", cacheKey).Msg("failed to cache stats")
		}
	}

	return stats, nil
}

// Create passes through to the store and invalidates the filter-option
// catalog so a newly submitted categorical value shows up promptly.
// Aggregate entries are left to expire within their short TTL.
func (a *CachedSurveyAdapter) Create(ctx context.Context, response *entities.SurveyResponse) (*entities.SurveyResponse, error) {
	stored, err := a.adapter.Create(ctx, response)
	if err != nil {
		return nil, err
	}

	if err := a.cache.Delete(ctx, filterOptionsCacheKey); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate filter options cache")
	}

	return stored, nil
}

// FilterOptions serves the cached catalog when available.
func (a *CachedSurveyAdapter) FilterOptions(ctx context.Context) (*entities.FilterOptions, error) {
	if cached, err := a.cache.Get(ctx, filterOptionsCacheKey); err == nil {
		var options entities.FilterOptions
		if err := json.Unmarshal(cached, &options); err == nil {
			return &options, nil
		}
		log.Warn().Msg("failed to unmarshal cached filter options")
	}

	options, err := a.adapter.FilterOptions(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(options); err == nil {
		if err := a.cache.Set(ctx, filterOptionsCacheKey, data, filterOptionsTTL); err != nil {
			log.Warn().Err(err).Msg("failed to cache filter options")
		}
	}

	return options, nil
}
