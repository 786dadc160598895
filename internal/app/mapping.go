package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"mapping_sentiments/internal/adapters/observability"
	"mapping_sentiments/internal/aggregate"
	"mapping_sentiments/internal/domain"
	"mapping_sentiments/internal/output"
	"mapping_sentiments/internal/tagging"
)

// MappingService runs the sentiment stage: tag each consolidated review,
// aggregate per location and emit the GeoJSON map. Persistence is
// optional; without a repository the artifacts on disk are the output.
type MappingService struct {
	tagger     *tagging.Tagger
	aggregator *aggregate.Aggregator
	writer     *output.Writer
	repo       domain.ReviewRepository // nil when running file-only
}

func NewMappingService(t *tagging.Tagger, a *aggregate.Aggregator, w *output.Writer, repo domain.ReviewRepository) *MappingService {
	return &MappingService{tagger: t, aggregator: a, writer: w, repo: repo}
}

// BuildMap tags, aggregates and writes the feature collection. Oracle
// failures degrade individual results, they never abort the run; only a
// cancelled context or a persistence failure surfaces as an error.
func (s *MappingService) BuildMap(ctx context.Context, reviews []domain.CanonicalReview) (domain.FeatureCollection, error) {
	tagged := s.tagger.TagReviews(ctx, reviews)
	observability.ObserveStage("tag", len(tagged))
	if err := ctx.Err(); err != nil {
		return domain.FeatureCollection{}, err
	}

	summaries := s.aggregator.SummarizeAll(ctx, aggregate.ByLocation(tagged))
	observability.ObserveStage("summarize", len(summaries))

	fc := domain.FeatureCollection{Type: "FeatureCollection", Features: make([]domain.GeoFeature, 0, len(summaries))}
	for _, sum := range summaries {
		fc.Features = append(fc.Features, sum.Feature())
	}
	s.writer.WriteGeoJSON(fc)

	if s.repo != nil {
		if err := s.persist(ctx, reviews, summaries); err != nil {
			return fc, err
		}
	}
	return fc, nil
}

func (s *MappingService) persist(ctx context.Context, reviews []domain.CanonicalReview, summaries []domain.LocationSummary) error {
	for _, sum := range summaries {
		if err := s.repo.UpsertLocation(ctx, sum.LocationID, sum.Centroid); err != nil {
			return err
		}
	}
	if err := s.repo.UpsertReviews(ctx, reviews); err != nil {
		return err
	}
	for _, sum := range summaries {
		if err := s.repo.UpsertSummary(ctx, sum); err != nil {
			return err
		}
	}
	log.Info().Int("locations", len(summaries)).Int("reviews", len(reviews)).Msg("persisted run to mysql")
	return nil
}

// PersistGroups stores the near-duplicate groups when both grouping and
// persistence are enabled.
func (s *MappingService) PersistGroups(ctx context.Context, groups []domain.ReviewGroup) error {
	if s.repo == nil || len(groups) == 0 {
		return nil
	}
	return s.repo.UpsertGroups(ctx, groups)
}
