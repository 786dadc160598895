package domain

import "context"

// SentimentOracle classifies a text and returns the model's raw label
// (e.g. "LABEL_0"). Mapping raw labels onto the three canonical classes
// is the caller's job, so a single adapter serves any label scheme.
type SentimentOracle interface {
	ClassifySentiment(ctx context.Context, text string) (string, error)
}

// KeywordOracle extracts up to limit keyphrases from a text.
type KeywordOracle interface {
	ExtractKeywords(ctx context.Context, text string, limit int) ([]string, error)
}

// SummaryOracle condenses text to at most maxLen and at least minLen
// model-units (tokens for real backends; the caller treats the bounds as
// opaque hints).
type SummaryOracle interface {
	Summarize(ctx context.Context, text string, maxLen, minLen int) (string, error)
}

// ReviewRepository persists the consolidated dataset.
type ReviewRepository interface {
	// Write paths
	UpsertLocation(ctx context.Context, id string, centroid *Coords) error
	UpsertReviews(ctx context.Context, rs []CanonicalReview) error
	UpsertGroups(ctx context.Context, gs []ReviewGroup) error
	UpsertSummary(ctx context.Context, s LocationSummary) error

	// Read paths
	ListLocations(ctx context.Context) ([]string, error)
	GetSummary(ctx context.Context, locationID string) (LocationSummary, error)
	ListReviews(ctx context.Context, locationID string, limit int) ([]CanonicalReview, error)
	FeatureCollection(ctx context.Context) (FeatureCollection, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
