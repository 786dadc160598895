package tagging

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"mapping_sentiments/internal/adapters/observability"
	"mapping_sentiments/internal/domain"
)

// Config controls how raw oracle output is folded into the three
// canonical classes and how hard we lean on the inference service.
type Config struct {
	PositiveLabel string        // raw label mapped to positive
	NegativeLabel string        // raw label mapped to negative
	InputCeiling  int           // max chars submitted per sentiment call
	KeywordLimit  int           // max keyphrases per review
	Workers       int           // max in-flight oracle calls
	CallTimeout   time.Duration // per-call deadline
	CacheTTL      time.Duration
}

func (c Config) withDefaults() Config {
	if c.PositiveLabel == "" {
		c.PositiveLabel = "LABEL_2"
	}
	if c.NegativeLabel == "" {
		c.NegativeLabel = "LABEL_0"
	}
	if c.InputCeiling <= 0 {
		c.InputCeiling = 512
	}
	if c.KeywordLimit <= 0 {
		c.KeywordLimit = 5
	}
	if c.Workers <= 0 {
		c.Workers = 8
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = 30 * time.Second
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = time.Hour
	}
	return c
}

// Tagger runs per-review sentiment classification and keyword extraction
// against external oracles. Oracle failures never propagate: every call
// site decides an explicit fallback (neutral / empty) and counts it.
type Tagger struct {
	sentiment domain.SentimentOracle
	keywords  domain.KeywordOracle
	cache     domain.Cache // optional; short-circuits repeated identical text
	cfg       Config
}

func New(s domain.SentimentOracle, k domain.KeywordOracle, cache domain.Cache, cfg Config) *Tagger {
	return &Tagger{sentiment: s, keywords: k, cache: cache, cfg: cfg.withDefaults()}
}

// ClassifySentiment maps a comment to positive/negative/neutral.
// Blank text is neutral without an oracle call; the text is truncated to
// the oracle's input ceiling; any oracle failure degrades to neutral.
func (t *Tagger) ClassifySentiment(ctx context.Context, text string) domain.Sentiment {
	if strings.TrimSpace(text) == "" {
		return domain.SentimentNeutral
	}
	cleaned := truncate(text, t.cfg.InputCeiling)

	key := "sent:" + hashKey(cleaned)
	if t.cache != nil {
		var cached domain.Sentiment
		if ok, _ := t.cache.Get(ctx, key, &cached); ok {
			return cached
		}
	}

	cctx, cancel := context.WithTimeout(ctx, t.cfg.CallTimeout)
	defer cancel()
	label, err := t.sentiment.ClassifySentiment(cctx, cleaned)
	if err != nil {
		observability.ObserveOracle("sentiment", "fallback")
		log.Warn().Err(err).Msg("sentiment oracle failed, defaulting to neutral")
		return domain.SentimentNeutral
	}
	observability.ObserveOracle("sentiment", "ok")

	out := t.mapLabel(label)
	if t.cache != nil {
		_ = t.cache.Set(ctx, key, out, int(t.cfg.CacheTTL.Seconds()))
	}
	return out
}

func (t *Tagger) mapLabel(label string) domain.Sentiment {
	switch label {
	case t.cfg.PositiveLabel:
		return domain.SentimentPositive
	case t.cfg.NegativeLabel:
		return domain.SentimentNegative
	default:
		return domain.SentimentNeutral
	}
}

// ExtractKeywords returns up to the configured number of keyphrases.
// Blank text and oracle failures both yield an empty list.
func (t *Tagger) ExtractKeywords(ctx context.Context, text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	cctx, cancel := context.WithTimeout(ctx, t.cfg.CallTimeout)
	defer cancel()
	kws, err := t.keywords.ExtractKeywords(cctx, text, t.cfg.KeywordLimit)
	if err != nil {
		observability.ObserveOracle("keywords", "fallback")
		log.Warn().Err(err).Msg("keyword oracle failed, returning no keywords")
		return nil
	}
	observability.ObserveOracle("keywords", "ok")
	if len(kws) > t.cfg.KeywordLimit {
		kws = kws[:t.cfg.KeywordLimit]
	}
	return kws
}

// ClassifyKeywords tags each keyphrase independently and partitions into
// positive and negative lists; neutral keywords are dropped.
func (t *Tagger) ClassifyKeywords(ctx context.Context, keywords []string) (pos, neg []string) {
	for _, kw := range keywords {
		switch t.ClassifySentiment(ctx, kw) {
		case domain.SentimentPositive:
			pos = append(pos, kw)
		case domain.SentimentNegative:
			neg = append(neg, kw)
		}
	}
	return pos, neg
}

// TagReviews tags every review with a bounded worker pool. Reviews have
// no cross-review ordering dependency; output order matches input order.
func (t *Tagger) TagReviews(ctx context.Context, reviews []domain.CanonicalReview) []domain.TaggedReview {
	out := make([]domain.TaggedReview, len(reviews))
	sem := semaphore.NewWeighted(int64(t.cfg.Workers))
	var wg sync.WaitGroup

	for i := range reviews {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			// context gone: tag the rest as neutral so the batch still completes
			for j := i; j < len(reviews); j++ {
				out[j] = neutralTagged(reviews[j])
			}
			break
		}
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			defer sem.Release(1)
			out[idx] = t.tagOne(ctx, reviews[idx])
		}(i)
	}

	wg.Wait()
	return out
}

func (t *Tagger) tagOne(ctx context.Context, r domain.CanonicalReview) domain.TaggedReview {
	tr := domain.TaggedReview{CanonicalReview: r}
	tr.Sentiment = t.ClassifySentiment(ctx, r.Comment)
	tr.Keywords = t.ExtractKeywords(ctx, r.Comment)
	tr.PositiveKeywords, tr.NegativeKeywords = t.ClassifyKeywords(ctx, tr.Keywords)
	return tr
}

func neutralTagged(r domain.CanonicalReview) domain.TaggedReview {
	return domain.TaggedReview{CanonicalReview: r, Sentiment: domain.SentimentNeutral}
}

// truncate cuts at a byte budget without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && s[n]&0xC0 == 0x80 {
		n--
	}
	return s[:n]
}

func hashKey(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
