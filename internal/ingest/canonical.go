package ingest

import (
	"strings"

	"mapping_sentiments/internal/domain"
	"mapping_sentiments/internal/normalize"
)

// Canonicalize turns raw capture records into canonical reviews. Order is
// preserved; no records are dropped here, rows with unusable fields just
// carry zero values forward.
func Canonicalize(raws []domain.RawReviewRecord) []domain.CanonicalReview {
	out := make([]domain.CanonicalReview, 0, len(raws))
	for _, r := range raws {
		cr := domain.CanonicalReview{
			Name:           strings.TrimSpace(r.Name),
			Comment:        r.Comment,
			Date:           strings.TrimSpace(r.Date),
			Latitude:       r.Latitude,
			Longitude:      r.Longitude,
			SourceLocation: r.SourceLocation,
			SourceFile:     r.SourceFile,
		}
		if f, ok := normalize.RatingToFloat(r.Rating); ok {
			cr.Rating = &f
		}
		cr.NormName = normalize.Normalize(cr.Name)
		cr.NormComment = normalize.Normalize(cr.Comment)
		out = append(out, cr)
	}
	return out
}
