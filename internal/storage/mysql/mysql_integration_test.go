//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"mapping_sentiments/internal/domain"
	mysqlrepo "mapping_sentiments/internal/storage/mysql"
)

func pfloat(f float64) *float64 { return &f }

func mustEnv(t *testing.T, k string) string {
	t.Helper()
	v := os.Getenv(k)
	if v == "" {
		t.Fatalf("%s not set; export it (e.g. MIGRATIONS_DIR=/path/to/sql)", k)
	}
	return v
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := mustEnv(t, "MIGRATIONS_DIR")

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func TestRepo_MySQL_UpsertAndQuery(t *testing.T) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}

	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=mapsent",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "mapsent")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)

	repo := mysqlrepo.New(db)
	ctx := context.Background()

	if err := repo.UpsertLocation(ctx, "downtown_cafe", &domain.Coords{Lat: 33.1, Lon: -97.2}); err != nil {
		t.Fatalf("UpsertLocation: %v", err)
	}

	r1 := domain.CanonicalReview{
		Name: "Alice", Comment: "Great coffee", Rating: pfloat(4.5), Date: "2024-01-02",
		Latitude: pfloat(33.1), Longitude: pfloat(-97.2),
		SourceLocation: "downtown_cafe", SourceFile: "reviews.csv",
		NormName: "alice", NormComment: "great coffee",
	}
	r2 := domain.CanonicalReview{
		Name: "Bob", Comment: "Too loud", Date: "2024-01-03",
		SourceLocation: "downtown_cafe", SourceFile: "reviews.csv",
		NormName: "bob", NormComment: "too loud",
	}
	if err := repo.UpsertReviews(ctx, []domain.CanonicalReview{r1, r2}); err != nil {
		t.Fatalf("UpsertReviews: %v", err)
	}
	// idempotence: re-running the same batch must not add rows
	if err := repo.UpsertReviews(ctx, []domain.CanonicalReview{r1, r2}); err != nil {
		t.Fatalf("UpsertReviews (again): %v", err)
	}

	if err := repo.UpsertGroups(ctx, []domain.ReviewGroup{{
		ID: 1, RepresentativeComment: "Great coffee", SampleName: "Alice",
		Occurrences: 1, LocationsMerged: []string{"downtown_cafe"},
		AvgRating: pfloat(4.5), Ratings: []float64{4.5},
	}}); err != nil {
		t.Fatalf("UpsertGroups: %v", err)
	}

	sum := domain.LocationSummary{
		LocationID: "downtown_cafe",
		Centroid:   &domain.Coords{Lat: 33.1, Lon: -97.2},
		Positive:   1, Neutral: 1,
		OverallSentiment: domain.SentimentPositive,
		Summary:          "people like the coffee",
		PositiveKeywords: []string{"coffee"},
		ReviewCount:      2,
	}
	if err := repo.UpsertSummary(ctx, sum); err != nil {
		t.Fatalf("UpsertSummary: %v", err)
	}

	locs, err := repo.ListLocations(ctx)
	if err != nil || len(locs) != 1 || locs[0] != "downtown_cafe" {
		t.Fatalf("ListLocations: %v %v", locs, err)
	}

	got, err := repo.GetSummary(ctx, "downtown_cafe")
	if err != nil {
		t.Fatalf("GetSummary: %v", err)
	}
	if got.OverallSentiment != domain.SentimentPositive || got.ReviewCount != 2 {
		t.Fatalf("unexpected summary: %+v", got)
	}
	if got.Centroid == nil || got.Centroid.Lat != 33.1 {
		t.Fatalf("centroid lost: %+v", got.Centroid)
	}
	if len(got.PositiveKeywords) != 1 || got.PositiveKeywords[0] != "coffee" {
		t.Fatalf("keywords lost: %+v", got.PositiveKeywords)
	}

	if _, err := repo.GetSummary(ctx, "nowhere"); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	revs, err := repo.ListReviews(ctx, "downtown_cafe", 10)
	if err != nil {
		t.Fatalf("ListReviews: %v", err)
	}
	if len(revs) != 2 {
		t.Fatalf("got %d reviews, want 2 (dedupe key must hold)", len(revs))
	}

	fc, err := repo.FeatureCollection(ctx)
	if err != nil {
		t.Fatalf("FeatureCollection: %v", err)
	}
	if fc.Type != "FeatureCollection" || len(fc.Features) != 1 {
		t.Fatalf("unexpected collection: %+v", fc)
	}
	if g := fc.Features[0].Geometry; g == nil || g.Coordinates[0] != -97.2 {
		t.Fatalf("geometry wrong: %+v", fc.Features[0].Geometry)
	}
}
