//go:build integration || !unit

package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	httpserver "mapping_sentiments/internal/adapters/http_server"
	redisad "mapping_sentiments/internal/adapters/redis"
	"mapping_sentiments/internal/app"
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

// Full read-path wiring: MySQL in docker, miniredis for the cache, the
// real chi server and handlers on top.
func TestHTTP_EndToEnd_SummaryAndFeatures(t *testing.T) {
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

	// Seed one consolidated location
	if err := repo.UpsertLocation(ctx, "downtown_cafe", &domain.Coords{Lat: 33.1, Lon: -97.2}); err != nil {
		t.Fatalf("UpsertLocation: %v", err)
	}
	if err := repo.UpsertReviews(ctx, []domain.CanonicalReview{{
		Name: "Alice", Comment: "Great coffee", Rating: pfloat(4.5), Date: "2024-01-02",
		SourceLocation: "downtown_cafe", SourceFile: "reviews.csv",
		NormName: "alice", NormComment: "great coffee",
	}}); err != nil {
		t.Fatalf("UpsertReviews: %v", err)
	}
	if err := repo.UpsertSummary(ctx, domain.LocationSummary{
		LocationID:       "downtown_cafe",
		Centroid:         &domain.Coords{Lat: 33.1, Lon: -97.2},
		Positive:         1,
		OverallSentiment: domain.SentimentPositive,
		Summary:          "people like the coffee",
		PositiveKeywords: []string{"coffee"},
		ReviewCount:      1,
	}); err != nil {
		t.Fatalf("UpsertSummary: %v", err)
	}

	mr := miniredis.RunT(t)
	cache := redisad.New(mr.Addr(), "", 0)
	q := app.NewQueryService(repo, cache, time.Minute)

	srv := httpserver.New()
	srv.MountHandlers(&httpserver.Handlers{Q: q})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	// summary endpoint
	res, err := http.Get(ts.URL + "/v1/locations/downtown_cafe/summary")
	if err != nil {
		t.Fatalf("GET summary: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("summary status %d", res.StatusCode)
	}
	var sum domain.LocationSummary
	if err := json.NewDecoder(res.Body).Decode(&sum); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if sum.OverallSentiment != domain.SentimentPositive || sum.ReviewCount != 1 {
		t.Fatalf("unexpected summary: %+v", sum)
	}

	// feature collection endpoint
	res2, err := http.Get(ts.URL + "/v1/features")
	if err != nil {
		t.Fatalf("GET features: %v", err)
	}
	defer res2.Body.Close()
	if ct := res2.Header.Get("Content-Type"); ct != "application/geo+json" {
		t.Fatalf("features content type %q", ct)
	}
	var fc domain.FeatureCollection
	if err := json.NewDecoder(res2.Body).Decode(&fc); err != nil {
		t.Fatalf("decode features: %v", err)
	}
	if len(fc.Features) != 1 || fc.Features[0].Properties.Location != "downtown_cafe" {
		t.Fatalf("unexpected features: %+v", fc)
	}
	if g := fc.Features[0].Geometry; g == nil || g.Coordinates[0] != -97.2 || g.Coordinates[1] != 33.1 {
		t.Fatalf("geometry wrong: %+v", fc.Features[0].Geometry)
	}

	// second summary read must be served from the cache
	if err := db.Close(); err == nil {
		res3, err := http.Get(ts.URL + "/v1/locations/downtown_cafe/summary")
		if err != nil {
			t.Fatalf("GET cached summary: %v", err)
		}
		defer res3.Body.Close()
		if res3.StatusCode != http.StatusOK {
			t.Fatalf("cached summary status %d", res3.StatusCode)
		}
	}
}
