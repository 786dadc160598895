package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"mapping_sentiments/internal/domain"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestReadAll_CSVWithAliasHeaders(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "downtown_cafe", "reviews.csv"),
		"Reviewer,Review,Stars,Time,Lat,Lng\n"+
			"Alice,Great coffee,4.5,2024-01-02,33.1,-97.2\n"+
			"Bob,Too loud,2 stars,2024-01-03,,\n")

	recs, files, err := New(dir).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if files != 1 {
		t.Fatalf("files = %d, want 1", files)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	r := recs[0]
	if r.Name != "Alice" || r.Comment != "Great coffee" || r.Rating != "4.5" {
		t.Fatalf("alias columns not mapped: %+v", r)
	}
	if r.SourceLocation != "downtown_cafe" || r.SourceFile != "reviews.csv" {
		t.Fatalf("provenance missing: %+v", r)
	}
	if r.Latitude == nil || *r.Latitude != 33.1 || r.Longitude == nil || *r.Longitude != -97.2 {
		t.Fatalf("coords not parsed: %+v", r)
	}
	if recs[1].Latitude != nil {
		t.Fatalf("blank coord should be nil")
	}
}

func TestReadAll_JSONPayloadAndBareArray(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pier", "capture.json"),
		`{"location":"pier","reviews":[{"author":"Cara","text":"Lovely views","rating":5,"date":"2024-02-01","lat":30.5,"lon":-87.1}]}`)
	writeFile(t, filepath.Join(dir, "museum", "capture.json"),
		`[{"name":"Dan","comment":"Dusty exhibits","rating":"2"}, 42, {"comment":"ok"}]`)

	recs, files, err := New(dir).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if files != 2 {
		t.Fatalf("files = %d, want 2", files)
	}
	// folders are walked in sorted order: museum before pier
	if len(recs) != 3 {
		t.Fatalf("got %d records, want 3 (non-object rows dropped)", len(recs))
	}
	if recs[0].Name != "Dan" || recs[0].Rating != "2" {
		t.Fatalf("bare array record wrong: %+v", recs[0])
	}
	p := recs[2]
	if p.Name != "Cara" || p.Comment != "Lovely views" || p.Rating != "5" {
		t.Fatalf("payload record wrong: %+v", p)
	}
	if p.Latitude == nil || *p.Latitude != 30.5 {
		t.Fatalf("numeric coord not read: %+v", p)
	}
}

func TestReadAll_MissingDirIsEmpty(t *testing.T) {
	recs, files, err := New(filepath.Join(t.TempDir(), "nope")).ReadAll()
	if err != nil {
		t.Fatalf("missing dir should not error: %v", err)
	}
	if len(recs) != 0 || files != 0 {
		t.Fatalf("expected empty result, got %d recs %d files", len(recs), files)
	}
}

func TestReadAll_FolderWithoutDataFileSkipped(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "empty_spot", "notes.txt"), "nothing here")
	writeFile(t, filepath.Join(dir, "real_spot", "r.csv"), "name,comment\nEve,fine\n")

	recs, files, err := New(dir).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if files != 1 || len(recs) != 1 {
		t.Fatalf("want 1 file / 1 record, got %d / %d", files, len(recs))
	}
}

func TestCanonicalize(t *testing.T) {
	lat := 33.5
	raws := []domain.RawReviewRecord{
		{Name: "  Alice  ", Comment: "Great, Coffee!!", Rating: "4.5 stars", Date: " 2024-01-02 ", Latitude: &lat, SourceLocation: "cafe", SourceFile: "r.csv"},
		{Name: "Bob", Comment: "ok", Rating: "unrated"},
	}

	out := Canonicalize(raws)
	if len(out) != 2 {
		t.Fatalf("got %d, want 2", len(out))
	}
	a := out[0]
	if a.Name != "Alice" || a.Date != "2024-01-02" {
		t.Fatalf("fields not trimmed: %+v", a)
	}
	if a.Rating == nil || *a.Rating != 4.5 {
		t.Fatalf("rating not parsed from first token: %v", a.Rating)
	}
	if a.NormName != "alice" || a.NormComment != "great coffee" {
		t.Fatalf("normalization wrong: %q %q", a.NormName, a.NormComment)
	}
	if a.Latitude == nil || *a.Latitude != 33.5 || a.SourceLocation != "cafe" {
		t.Fatalf("passthrough fields lost: %+v", a)
	}
	if out[1].Rating != nil {
		t.Fatalf("unparseable rating should be nil, got %v", *out[1].Rating)
	}
}
