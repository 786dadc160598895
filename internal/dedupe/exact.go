package dedupe

import "mapping_sentiments/internal/domain"

// DropExact removes records whose (normalized name, normalized comment,
// date) triple repeats, keeping the first occurrence in input order.
// Cheap O(n) hash pass run before the fuzzy grouper.
func DropExact(in []domain.CanonicalReview) []domain.CanonicalReview {
	type key struct{ name, comment, date string }
	seen := make(map[key]struct{}, len(in))
	out := make([]domain.CanonicalReview, 0, len(in))
	for _, r := range in {
		k := key{r.NormName, r.NormComment, r.Date}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}
