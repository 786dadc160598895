package app

import (
	"context"
	"fmt"
	"time"

	"mapping_sentiments/internal/domain"
)

// QueryService is the read side for the API: repository reads fronted by
// the cache.
type QueryService struct {
	repo     domain.ReviewRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.ReviewRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

func (s *QueryService) ListLocations(ctx context.Context) ([]string, error) {
	var out []string
	if ok, _ := s.cache.Get(ctx, "locations", &out); ok {
		return out, nil
	}
	locs, err := s.repo.ListLocations(ctx)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, "locations", locs, int(s.cacheTTL.Seconds()))
	return locs, nil
}

func (s *QueryService) GetSummary(ctx context.Context, locationID string) (domain.LocationSummary, error) {
	key := "summary:" + locationID
	var sum domain.LocationSummary
	if ok, _ := s.cache.Get(ctx, key, &sum); ok {
		return sum, nil
	}
	sum, err := s.repo.GetSummary(ctx, locationID)
	if err != nil {
		return domain.LocationSummary{}, err
	}
	_ = s.cache.Set(ctx, key, sum, int(s.cacheTTL.Seconds()))
	return sum, nil
}

func (s *QueryService) ListReviews(ctx context.Context, locationID string, limit int) ([]domain.CanonicalReview, error) {
	key := fmt.Sprintf("reviews:%s:%d", locationID, limit)
	var out []domain.CanonicalReview
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	rs, err := s.repo.ListReviews(ctx, locationID, limit)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, rs, int(s.cacheTTL.Seconds()))
	return rs, nil
}

func (s *QueryService) FeatureCollection(ctx context.Context) (domain.FeatureCollection, error) {
	var fc domain.FeatureCollection
	if ok, _ := s.cache.Get(ctx, "features", &fc); ok {
		return fc, nil
	}
	fc, err := s.repo.FeatureCollection(ctx)
	if err != nil {
		return domain.FeatureCollection{}, err
	}
	_ = s.cache.Set(ctx, "features", fc, int(s.cacheTTL.Seconds()))
	return fc, nil
}
