package inference_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"mapping_sentiments/internal/adapters/inference"
)

func TestClassifySentiment_RetriesThenSuccess(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&hits, 1) {
		case 1, 2:
			// two transient failures
			w.WriteHeader(500)
		default:
			w.WriteHeader(200)
			_ = json.NewEncoder(w).Encode(map[string]any{"label": "LABEL_2"})
		}
	}))
	defer ts.Close()

	cl, err := inference.New(ts.URL, "test-key", 100) // high RPS for tests
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	label, err := cl.ClassifySentiment(ctx, "great place")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if label != "LABEL_2" {
		t.Fatalf("unexpected label: %q", label)
	}
	if atomic.LoadInt32(&hits) < 3 {
		t.Fatalf("expected at least 3 calls due to retries, got %d", hits)
	}
}

func TestClassifySentiment_404(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	cl, err := inference.New(ts.URL, "test-key", 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err = cl.ClassifySentiment(ctx, "text")
	if !errors.Is(err, inference.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSummarize_PassesBounds(t *testing.T) {
	var got struct {
		Text      string `json:"text"`
		MaxLength int    `json:"max_length"`
		MinLength int    `json:"min_length"`
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/summary" {
			w.WriteHeader(404)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(map[string]any{"summary_text": "short version"})
	}))
	defer ts.Close()

	cl, _ := inference.New(ts.URL, "", 100)
	out, err := cl.Summarize(context.Background(), "a long text", 150, 20)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out != "short version" {
		t.Fatalf("unexpected summary: %q", out)
	}
	if got.MaxLength != 150 || got.MinLength != 20 || got.Text != "a long text" {
		t.Fatalf("request payload wrong: %+v", got)
	}
}

func TestExtractKeywords(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"keywords": []string{"clean rooms", "friendly staff"}})
	}))
	defer ts.Close()

	cl, _ := inference.New(ts.URL, "", 100)
	kws, err := cl.ExtractKeywords(context.Background(), "text", 5)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(kws) != 2 || kws[0] != "clean rooms" {
		t.Fatalf("unexpected keywords: %v", kws)
	}
}
