package domain

// Coords is a WGS84 point.
type Coords struct{ Lat, Lon float64 }

// LocationSummary is the per-location aggregate: sentiment tallies, the
// overall verdict, merged keyword sets and the hierarchical summary.
// Recomputed from scratch each run.
type LocationSummary struct {
	LocationID       string
	Centroid         *Coords
	Positive         int
	Negative         int
	Neutral          int
	OverallSentiment Sentiment
	Summary          string
	PositiveKeywords []string
	NegativeKeywords []string
	ReviewCount      int
}

// GeoFeature is the output projection of a LocationSummary: one GeoJSON
// Feature with Point geometry. Geometry is nil when no member review
// carried coordinates.
type GeoFeature struct {
	Type       string            `json:"type"`
	Properties FeatureProperties `json:"properties"`
	Geometry   *PointGeometry    `json:"geometry"`
}

type FeatureProperties struct {
	Location         string    `json:"location"`
	Summary          string    `json:"summary"`
	OverallSentiment Sentiment `json:"overall_sentiment"`
	Positive         int       `json:"positive"`
	Negative         int       `json:"negative"`
	Neutral          int       `json:"neutral"`
	PositiveKeywords []string  `json:"positive_keywords"`
	NegativeKeywords []string  `json:"negative_keywords"`
}

type PointGeometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"` // [lon, lat]
}

// FeatureCollection is the final geospatial output, one feature per
// location.
type FeatureCollection struct {
	Type     string       `json:"type"`
	Features []GeoFeature `json:"features"`
}

// Feature projects a summary into its GeoJSON form.
func (s LocationSummary) Feature() GeoFeature {
	f := GeoFeature{
		Type: "Feature",
		Properties: FeatureProperties{
			Location:         s.LocationID,
			Summary:          s.Summary,
			OverallSentiment: s.OverallSentiment,
			Positive:         s.Positive,
			Negative:         s.Negative,
			Neutral:          s.Neutral,
			PositiveKeywords: s.PositiveKeywords,
			NegativeKeywords: s.NegativeKeywords,
		},
	}
	if s.Centroid != nil {
		f.Geometry = &PointGeometry{
			Type:        "Point",
			Coordinates: [2]float64{s.Centroid.Lon, s.Centroid.Lat},
		}
	}
	return f
}
