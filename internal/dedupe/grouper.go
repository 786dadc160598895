package dedupe

import (
	"sort"

	"mapping_sentiments/internal/domain"
	"mapping_sentiments/internal/similarity"
)

// DefaultThreshold is the similarity cutoff below which two comments are
// considered distinct reviews.
const DefaultThreshold = 0.85

// Grouper clusters near-duplicate reviews in a single online pass. Each
// incoming review is scored against every live group's representative in
// creation order and joins the first group at or above the threshold;
// otherwise it opens a new singleton group. The representative is always
// the longest normalized comment seen so far, which keeps match quality
// up as truncated variants arrive.
//
// Assignment is order-dependent and not pairwise-transitive. The grouper
// must run as one sequential pass: each review compares against
// representatives that earlier reviews may have just promoted.
type Grouper struct {
	threshold float64
	groups    []*liveGroup
}

type liveGroup struct {
	rep     string
	members []domain.CanonicalReview
}

func NewGrouper(threshold float64) *Grouper {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Grouper{threshold: threshold}
}

// Add places one review. Empty representatives never match, so
// empty-comment reviews each land in their own group.
func (g *Grouper) Add(r domain.CanonicalReview) {
	for _, lg := range g.groups {
		if lg.rep == "" {
			continue
		}
		if similarity.Ratio(lg.rep, r.NormComment) >= g.threshold {
			lg.members = append(lg.members, r)
			if len(r.NormComment) > len(lg.rep) {
				lg.rep = r.NormComment
			}
			return
		}
	}
	g.groups = append(g.groups, &liveGroup{rep: r.NormComment, members: []domain.CanonicalReview{r}})
}

// Groups closes the grouper and builds the per-group aggregates:
// representative = longest raw comment, sorted distinct source locations,
// mean of parseable ratings (nil when none).
func (g *Grouper) Groups() []domain.ReviewGroup {
	out := make([]domain.ReviewGroup, 0, len(g.groups))
	for i, lg := range g.groups {
		grp := domain.ReviewGroup{
			ID:          int64(i + 1),
			Occurrences: len(lg.members),
			Members:     lg.members,
		}
		locs := make(map[string]struct{})
		for _, m := range lg.members {
			if len(m.Comment) > len(grp.RepresentativeComment) {
				grp.RepresentativeComment = m.Comment
			}
			if m.SourceLocation != "" {
				locs[m.SourceLocation] = struct{}{}
			}
			if m.Rating != nil {
				grp.Ratings = append(grp.Ratings, *m.Rating)
			}
		}
		if len(lg.members) > 0 {
			grp.SampleName = lg.members[0].Name
		}
		grp.LocationsMerged = make([]string, 0, len(locs))
		for l := range locs {
			grp.LocationsMerged = append(grp.LocationsMerged, l)
		}
		sort.Strings(grp.LocationsMerged)
		if len(grp.Ratings) > 0 {
			sum := 0.0
			for _, v := range grp.Ratings {
				sum += v
			}
			avg := sum / float64(len(grp.Ratings))
			grp.AvgRating = &avg
		}
		out = append(out, grp)
	}
	return out
}

// Group runs a full pass over reviews in order.
func Group(reviews []domain.CanonicalReview, threshold float64) []domain.ReviewGroup {
	g := NewGrouper(threshold)
	for _, r := range reviews {
		g.Add(r)
	}
	return g.Groups()
}
