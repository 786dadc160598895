// Package ingest reads per-location capture files into raw review
// records. Each subfolder of the input directory is one source location;
// the first CSV or JSON file found inside it is that location's capture.
package ingest

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"mapping_sentiments/internal/domain"
)

// ---- column alias registry ----

var columnAliases = map[string][]string{
	"name":      {"name", "reviewer", "author"},
	"comment":   {"comment", "review", "text"},
	"rating":    {"rating", "stars"},
	"date":      {"date", "time"},
	"latitude":  {"latitude", "lat"},
	"longitude": {"longitude", "lon", "lng"},
}

type Ingestor struct{ dir string }

func New(dir string) *Ingestor { return &Ingestor{dir: dir} }

// ReadAll walks the location folders in name order and returns every raw
// record with its source provenance attached. A missing input directory
// or an empty one is not an error; it yields zero records.
func (i *Ingestor) ReadAll() ([]domain.RawReviewRecord, int, error) {
	entries, err := os.ReadDir(i.dir)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn().Str("dir", i.dir).Msg("no locations input folder found")
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("read input dir: %w", err)
	}

	var out []domain.RawReviewRecord
	files := 0
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, loc := range names {
		locPath := filepath.Join(i.dir, loc)
		file, recs, err := readLocationDir(locPath, loc)
		if err != nil {
			log.Warn().Err(err).Str("location", loc).Msg("skipping unreadable location capture")
			continue
		}
		if file == "" {
			log.Warn().Str("location", loc).Msg("no data file found in location folder")
			continue
		}
		files++
		out = append(out, recs...)
	}
	return out, files, nil
}

// readLocationDir reads the first usable capture file: CSV preferred,
// JSON as fallback.
func readLocationDir(dir, loc string) (string, []domain.RawReviewRecord, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return "", nil, err
	}
	var csvFile, jsonFile string
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".csv":
			if csvFile == "" {
				csvFile = e.Name()
			}
		case ".json":
			if jsonFile == "" {
				jsonFile = e.Name()
			}
		}
	}

	if csvFile != "" {
		recs, err := readCSV(filepath.Join(dir, csvFile), loc, csvFile)
		if err == nil {
			return csvFile, recs, nil
		}
		log.Warn().Err(err).Str("file", csvFile).Msg("csv capture unreadable, trying json")
	}
	if jsonFile != "" {
		recs, err := readJSON(filepath.Join(dir, jsonFile), loc, jsonFile)
		if err != nil {
			return "", nil, err
		}
		return jsonFile, recs, nil
	}
	return "", nil, nil
}

// ---- CSV ----

func readCSV(path, loc, file string) ([]domain.RawReviewRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // malformed rows are dropped below, not fatal
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	// header -> column index, lowercased
	idx := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	col := func(key string) int {
		for _, alias := range columnAliases[key] {
			if i, ok := idx[alias]; ok {
				return i
			}
		}
		return -1
	}
	nameI, commentI := col("name"), col("comment")
	ratingI, dateI := col("rating"), col("date")
	latI, lonI := col("latitude"), col("longitude")

	field := func(row []string, i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return row[i]
	}

	out := make([]domain.RawReviewRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		out = append(out, domain.RawReviewRecord{
			Name:           field(row, nameI),
			Comment:        field(row, commentI),
			Rating:         field(row, ratingI),
			Date:           field(row, dateI),
			Latitude:       parseCoord(field(row, latI)),
			Longitude:      parseCoord(field(row, lonI)),
			SourceLocation: loc,
			SourceFile:     file,
		})
	}
	return out, nil
}

// ---- JSON ----

func readJSON(path, loc, file string) ([]domain.RawReviewRecord, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Either {"location": ..., "reviews": [...]} or a bare array.
	var payload any
	if err := json.Unmarshal(b, &payload); err != nil {
		return nil, err
	}
	var items []any
	switch v := payload.(type) {
	case map[string]any:
		arr, ok := v["reviews"].([]any)
		if !ok {
			return nil, fmt.Errorf("json capture %s has no reviews array", file)
		}
		items = arr
	case []any:
		items = v
	default:
		return nil, fmt.Errorf("json capture %s has unexpected shape", file)
	}

	out := make([]domain.RawReviewRecord, 0, len(items))
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue // wrong-shape row, dropped silently
		}
		lower := make(map[string]any, len(m))
		for k, v := range m {
			lower[strings.ToLower(k)] = v
		}
		out = append(out, domain.RawReviewRecord{
			Name:           aliasStr(lower, "name"),
			Comment:        aliasStr(lower, "comment"),
			Rating:         aliasStr(lower, "rating"),
			Date:           aliasStr(lower, "date"),
			Latitude:       aliasCoord(lower, "latitude"),
			Longitude:      aliasCoord(lower, "longitude"),
			SourceLocation: loc,
			SourceFile:     file,
		})
	}
	return out, nil
}

// aliasStr returns the first non-empty alias value, stringified.
func aliasStr(m map[string]any, key string) string {
	for _, alias := range columnAliases[key] {
		switch v := m[alias].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

func aliasCoord(m map[string]any, key string) *float64 {
	for _, alias := range columnAliases[key] {
		switch v := m[alias].(type) {
		case float64:
			f := v
			return &f
		case string:
			if p := parseCoord(v); p != nil {
				return p
			}
		}
	}
	return nil
}

func parseCoord(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}
