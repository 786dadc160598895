// Package output writes the pipeline artifacts: combined review files,
// grouped review files and the GeoJSON feature collection. Individual
// write failures are logged, never fatal, so one locked file does not
// throw away a whole run's oracle spend.
package output

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"mapping_sentiments/internal/domain"
)

const (
	CombinedJSON = "all_reviews_combined.json"
	CombinedCSV  = "all_reviews_combined.csv"
	GroupsJSON   = "all_reviews_groups.json"
	GeoJSONFile  = "sentiment_map.geojson"
)

type Writer struct{ dir string }

func New(dir string) *Writer { return &Writer{dir: dir} }

// WriteCombined writes the deduped canonical rows as JSON and CSV.
func (w *Writer) WriteCombined(reviews []domain.CanonicalReview) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		log.Error().Err(err).Str("dir", w.dir).Msg("cannot create output folder")
		return
	}
	w.writeJSON(CombinedJSON, reviews)
	w.writeCSV(CombinedCSV, reviews)
}

// WriteGroups writes the near-duplicate group aggregates.
func (w *Writer) WriteGroups(groups []domain.ReviewGroup) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		log.Error().Err(err).Str("dir", w.dir).Msg("cannot create output folder")
		return
	}
	w.writeJSON(GroupsJSON, groups)
}

// WriteGeoJSON writes the per-location sentiment map.
func (w *Writer) WriteGeoJSON(fc domain.FeatureCollection) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		log.Error().Err(err).Str("dir", w.dir).Msg("cannot create output folder")
		return
	}
	w.writeJSON(GeoJSONFile, fc)
}

func (w *Writer) writeJSON(name string, v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Error().Err(err).Str("file", name).Msg("failed to encode output")
		return
	}
	path := w.resolve(name, b)
	if path != "" {
		log.Info().Str("path", path).Msg("saved output")
	}
}

func (w *Writer) writeCSV(name string, reviews []domain.CanonicalReview) {
	var sb strings.Builder
	cw := csv.NewWriter(&sb)
	_ = cw.Write([]string{"name", "comment", "rating", "date", "latitude", "longitude", "source_location", "source_file"})
	for _, r := range reviews {
		_ = cw.Write([]string{
			r.Name, r.Comment, fmtFloat(r.Rating), r.Date,
			fmtFloat(r.Latitude), fmtFloat(r.Longitude),
			r.SourceLocation, r.SourceFile,
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		log.Error().Err(err).Str("file", name).Msg("failed to encode output")
		return
	}
	path := w.resolve(name, []byte(sb.String()))
	if path != "" {
		log.Info().Str("path", path).Msg("saved output")
	}
}

// resolve writes bytes to dir/name; on a permission error it retries once
// under a timestamped filename (the file is often held open by a viewer).
// Returns the path actually written, or "" on failure.
func (w *Writer) resolve(name string, b []byte) string {
	path := filepath.Join(w.dir, name)
	err := os.WriteFile(path, b, 0o644)
	if err == nil {
		return path
	}
	if errors.Is(err, os.ErrPermission) {
		stamp := time.Now().Format("20060102_150405")
		ext := filepath.Ext(name)
		alt := filepath.Join(w.dir, fmt.Sprintf("%s_%s%s", strings.TrimSuffix(name, ext), stamp, ext))
		if err2 := os.WriteFile(alt, b, 0o644); err2 == nil {
			log.Warn().Str("path", alt).Msg("wrote to alternate path after permission error")
			return alt
		}
	}
	log.Error().Err(err).Str("file", name).Msg("failed to write output")
	return ""
}

func fmtFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}
