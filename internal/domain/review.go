package domain

// RawReviewRecord is one row as read from a per-location capture, before
// any normalization. Fields are whatever the capture happened to contain;
// missing values come through as zero values.
type RawReviewRecord struct {
	Name           string
	Comment        string
	Rating         string
	Date           string
	Latitude       *float64
	Longitude      *float64
	SourceLocation string
	SourceFile     string
}

// CanonicalReview is a review after text/number normalization, ready for
// comparison and aggregation. NormComment is a pure function of Comment.
type CanonicalReview struct {
	Name           string   `json:"name"`
	Comment        string   `json:"comment"`
	Rating         *float64 `json:"rating"`
	Date           string   `json:"date"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	SourceLocation string   `json:"source_location"`
	SourceFile     string   `json:"source_file"`
	NormName       string   `json:"-"`
	NormComment    string   `json:"-"`
}

// Sentiment is one of the three canonical classes every oracle label is
// folded into.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// TaggedReview pairs a canonical review with its per-review inference
// results.
type TaggedReview struct {
	CanonicalReview
	Sentiment        Sentiment
	Keywords         []string
	PositiveKeywords []string
	NegativeKeywords []string
}
