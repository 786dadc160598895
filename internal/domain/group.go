package domain

// ReviewGroup is a cluster of near-duplicate reviews gathered from
// independent captures. Members matched the group's representative at the
// time they were inserted; membership is not pairwise-transitive.
type ReviewGroup struct {
	ID                    int64             `json:"group_id"`
	RepresentativeComment string            `json:"representative_comment"`
	SampleName            string            `json:"sample_name"`
	Occurrences           int               `json:"occurrences"`
	LocationsMerged       []string          `json:"locations_merged"`
	AvgRating             *float64          `json:"avg_rating"`
	Ratings               []float64         `json:"ratings_list"`
	Members               []CanonicalReview `json:"-"`
}
