package mysql

import (
	"context"
	"crypto/sha1"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"strings"

	"mapping_sentiments/internal/domain"
)

func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertLocation(ctx context.Context, id string, centroid *domain.Coords) error {
	var lat, lon any
	if centroid != nil {
		lat, lon = centroid.Lat, centroid.Lon
	}
	_, err := r.db.ExecContext(ctx, upsertLocationSQL, id, lat, lon)
	return err
}

func (r *Repo) UpsertReviews(ctx context.Context, rs []domain.CanonicalReview) error {
	if len(rs) == 0 {
		return nil
	}
	values := make([]string, 0, len(rs))
	args := make([]any, 0, len(rs)*9)
	for _, rv := range rs {
		values = append(values, "(?,?,?,?,?,?,?,?,?)")
		args = append(args,
			rv.SourceLocation,
			rv.SourceFile,
			rv.Name,
			rv.Comment,
			valF64(rv.Rating),
			rv.Date,
			valF64(rv.Latitude),
			valF64(rv.Longitude),
			dedupeKey(rv),
		)
	}
	sqlStr := insertReviewsPrefix + strings.Join(values, ",") + insertReviewsOnDup
	_, err := r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

// dedupeKey hashes the exact-duplicate identity so the unique index stays
// within MySQL key length limits regardless of comment size.
func dedupeKey(rv domain.CanonicalReview) string {
	h := sha1.Sum([]byte(rv.NormName + "\x00" + rv.NormComment + "\x00" + rv.Date))
	return hex.EncodeToString(h[:])
}

func (r *Repo) UpsertGroups(ctx context.Context, gs []domain.ReviewGroup) error {
	if len(gs) == 0 {
		return nil
	}
	values := make([]string, 0, len(gs))
	args := make([]any, 0, len(gs)*7)
	for _, g := range gs {
		locs, _ := json.Marshal(g.LocationsMerged)
		ratings, _ := json.Marshal(g.Ratings)
		values = append(values, "(?,?,?,?,?,?,?)")
		args = append(args,
			g.ID,
			g.RepresentativeComment,
			g.SampleName,
			g.Occurrences,
			string(locs),
			valF64(g.AvgRating),
			string(ratings),
		)
	}
	sqlStr := insertGroupsPrefix + strings.Join(values, ",") + insertGroupsOnDup
	_, err := r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *Repo) UpsertSummary(ctx context.Context, s domain.LocationSummary) error {
	var lat, lon any
	if s.Centroid != nil {
		lat, lon = s.Centroid.Lat, s.Centroid.Lon
	}
	posKw, _ := json.Marshal(s.PositiveKeywords)
	negKw, _ := json.Marshal(s.NegativeKeywords)
	_, err := r.db.ExecContext(ctx, upsertSummarySQL,
		s.LocationID,
		lat, lon,
		s.Positive, s.Negative, s.Neutral,
		string(s.OverallSentiment),
		s.Summary,
		string(posKw), string(negKw),
		s.ReviewCount,
	)
	return err
}

func (r *Repo) ListLocations(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM locations ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *Repo) GetSummary(ctx context.Context, locationID string) (domain.LocationSummary, error) {
	row := r.db.QueryRowContext(ctx, getSummarySQL, locationID)
	s, err := scanSummary(row.Scan)
	if err == sql.ErrNoRows {
		return domain.LocationSummary{}, domain.ErrNotFound
	}
	return s, err
}

func (r *Repo) ListReviews(ctx context.Context, locationID string, limit int) ([]domain.CanonicalReview, error) {
	rows, err := r.db.QueryContext(ctx, listReviewsSQL, locationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CanonicalReview
	for rows.Next() {
		var rv domain.CanonicalReview
		var (
			name, comment, date sql.NullString
			rating, lat, lon    sql.NullFloat64
		)
		if err := rows.Scan(&rv.SourceLocation, &rv.SourceFile, &name, &comment, &rating, &date, &lat, &lon); err != nil {
			return nil, err
		}
		if name.Valid {
			rv.Name = name.String
		}
		if comment.Valid {
			rv.Comment = comment.String
		}
		if date.Valid {
			rv.Date = date.String
		}
		if rating.Valid {
			f := rating.Float64
			rv.Rating = &f
		}
		if lat.Valid {
			f := lat.Float64
			rv.Latitude = &f
		}
		if lon.Valid {
			f := lon.Float64
			rv.Longitude = &f
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (r *Repo) FeatureCollection(ctx context.Context) (domain.FeatureCollection, error) {
	rows, err := r.db.QueryContext(ctx, listSummariesSQL)
	if err != nil {
		return domain.FeatureCollection{}, err
	}
	defer rows.Close()

	fc := domain.FeatureCollection{Type: "FeatureCollection", Features: []domain.GeoFeature{}}
	for rows.Next() {
		s, err := scanSummary(rows.Scan)
		if err != nil {
			return domain.FeatureCollection{}, err
		}
		fc.Features = append(fc.Features, s.Feature())
	}
	return fc, rows.Err()
}

func scanSummary(scan func(...any) error) (domain.LocationSummary, error) {
	var s domain.LocationSummary
	var (
		lat, lon     sql.NullFloat64
		overall      string
		posKw, negKw []byte
	)
	if err := scan(
		&s.LocationID,
		&lat, &lon,
		&s.Positive, &s.Negative, &s.Neutral,
		&overall,
		&s.Summary,
		&posKw, &negKw,
		&s.ReviewCount,
	); err != nil {
		return domain.LocationSummary{}, err
	}
	if lat.Valid && lon.Valid {
		s.Centroid = &domain.Coords{Lat: lat.Float64, Lon: lon.Float64}
	}
	s.OverallSentiment = domain.Sentiment(overall)
	_ = json.Unmarshal(posKw, &s.PositiveKeywords)
	_ = json.Unmarshal(negKw, &s.NegativeKeywords)
	return s, nil
}
