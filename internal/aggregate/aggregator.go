package aggregate

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"mapping_sentiments/internal/adapters/observability"
	"mapping_sentiments/internal/domain"
)

// Placeholder is emitted when no chunk produced any summary output.
const Placeholder = "No meaningful summary could be generated."

type Config struct {
	ChunkSize          int // character budget per summarizer call
	ShortTextThreshold int // chunks below this pass through verbatim
	FinalTextThreshold int // combined text below this skips the second pass
	MaxConcurrent      int // locations aggregated at once
	CallTimeout        time.Duration
}

func (c Config) withDefaults() Config {
	if c.ChunkSize <= 0 {
		c.ChunkSize = 3500
	}
	if c.ShortTextThreshold <= 0 {
		c.ShortTextThreshold = 1000
	}
	if c.FinalTextThreshold <= 0 {
		c.FinalTextThreshold = 500
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = 4
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = 60 * time.Second
	}
	return c
}

// Aggregator turns one location's tagged reviews into a LocationSummary:
// sentiment tallies, the overall verdict, merged keyword sets, a
// two-level chunked summary and the coordinate centroid.
type Aggregator struct {
	summarizer domain.SummaryOracle
	cfg        Config
}

func New(s domain.SummaryOracle, cfg Config) *Aggregator {
	return &Aggregator{summarizer: s, cfg: cfg.withDefaults()}
}

// Overall applies the fixed-priority verdict rule: positive wins ties
// against negative; negative needs a strict majority over positive and at
// least parity with neutral; everything else is neutral.
func Overall(pos, neg, neu int) domain.Sentiment {
	switch {
	case pos >= neg && pos >= neu:
		return domain.SentimentPositive
	case neg > pos && neg >= neu:
		return domain.SentimentNegative
	default:
		return domain.SentimentNeutral
	}
}

// MergeKeywords unions keyword lists, deduplicates and sorts lexically.
func MergeKeywords(lists ...[]string) []string {
	set := make(map[string]struct{})
	for _, l := range lists {
		for _, kw := range l {
			set[kw] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for kw := range set {
		out = append(out, kw)
	}
	sort.Strings(out)
	return out
}

// Summarize builds the full LocationSummary for one location. The
// two-level summarization inside a location is strictly sequential: the
// second pass needs every first-pass output.
func (a *Aggregator) Summarize(ctx context.Context, locationID string, members []domain.TaggedReview) domain.LocationSummary {
	s := domain.LocationSummary{LocationID: locationID, ReviewCount: len(members)}

	var posKW, negKW [][]string
	comments := make([]string, 0, len(members))
	var latSum, lonSum float64
	var latN, lonN int
	for _, m := range members {
		comments = append(comments, m.Comment)
		switch m.Sentiment {
		case domain.SentimentPositive:
			s.Positive++
		case domain.SentimentNegative:
			s.Negative++
		default:
			s.Neutral++
		}
		posKW = append(posKW, m.PositiveKeywords)
		negKW = append(negKW, m.NegativeKeywords)
		if m.Latitude != nil {
			latSum += *m.Latitude
			latN++
		}
		if m.Longitude != nil {
			lonSum += *m.Longitude
			lonN++
		}
	}

	s.OverallSentiment = Overall(s.Positive, s.Negative, s.Neutral)
	s.PositiveKeywords = MergeKeywords(posKW...)
	s.NegativeKeywords = MergeKeywords(negKW...)
	if latN > 0 && lonN > 0 {
		s.Centroid = &domain.Coords{Lat: latSum / float64(latN), Lon: lonSum / float64(lonN)}
	}
	s.Summary = a.summarizeBlob(ctx, strings.Join(comments, " "))
	return s
}

// summarizeBlob is the hierarchical chunk-then-combine policy. Chunks
// below the short-text threshold pass through verbatim; a failed chunk is
// skipped; a failed final pass falls back to the combined text.
func (a *Aggregator) summarizeBlob(ctx context.Context, blob string) string {
	var parts []string
	for _, chunk := range SplitChunks(blob, a.cfg.ChunkSize) {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		if len(chunk) < a.cfg.ShortTextThreshold {
			parts = append(parts, strings.TrimSpace(chunk))
			continue
		}
		maxLen := min(150, len(chunk)/3)
		minLen := max(10, min(20, maxLen-5))
		out, err := a.callSummarizer(ctx, chunk, maxLen, minLen)
		if err != nil {
			observability.ObserveOracle("summary", "fallback")
			log.Warn().Err(err).Int("chunk_len", len(chunk)).Msg("chunk summarization failed, skipping chunk")
			continue
		}
		observability.ObserveOracle("summary", "ok")
		parts = append(parts, out)
	}

	combined := strings.Join(parts, " ")
	if combined == "" {
		return Placeholder
	}
	if len(combined) < a.cfg.FinalTextThreshold {
		return combined
	}

	maxLen := min(120, len(combined)/3)
	minLen := max(10, min(20, maxLen-5))
	out, err := a.callSummarizer(ctx, combined, maxLen, minLen)
	if err != nil {
		observability.ObserveOracle("summary", "fallback")
		log.Warn().Err(err).Msg("final summarization failed, using combined chunk summaries")
		return combined
	}
	observability.ObserveOracle("summary", "ok")
	return out
}

func (a *Aggregator) callSummarizer(ctx context.Context, text string, maxLen, minLen int) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, a.cfg.CallTimeout)
	defer cancel()
	return a.summarizer.Summarize(cctx, text, maxLen, minLen)
}

// ByLocation indexes tagged reviews by source location.
func ByLocation(reviews []domain.TaggedReview) map[string][]domain.TaggedReview {
	out := make(map[string][]domain.TaggedReview)
	for _, r := range reviews {
		out[r.SourceLocation] = append(out[r.SourceLocation], r)
	}
	return out
}

// SummarizeAll aggregates every location concurrently (locations are
// independent) and returns summaries in location-id order.
func (a *Aggregator) SummarizeAll(ctx context.Context, byLocation map[string][]domain.TaggedReview) []domain.LocationSummary {
	ids := make([]string, 0, len(byLocation))
	for id := range byLocation {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]domain.LocationSummary, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.MaxConcurrent)
	for i, id := range ids {
		g.Go(func() error {
			out[i] = a.Summarize(gctx, id, byLocation[id])
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; degraded results land in the summaries
	return out
}
