package redisad_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	redisad "mapping_sentiments/internal/adapters/redis"
	"mapping_sentiments/internal/domain"
)

func TestCacheRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redisad.New(mr.Addr(), "", 0)
	ctx := context.Background()

	var out domain.Sentiment
	ok, err := cache.Get(ctx, "sent:abc", &out)
	if err != nil || ok {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}

	if err := cache.Set(ctx, "sent:abc", domain.SentimentPositive, 60); err != nil {
		t.Fatalf("Set: %v", err)
	}
	ok, err = cache.Get(ctx, "sent:abc", &out)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if out != domain.SentimentPositive {
		t.Fatalf("got %v, want positive", out)
	}

	if err := cache.Del(ctx, "sent:abc"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if ok, _ := cache.Get(ctx, "sent:abc", &out); ok {
		t.Fatalf("expected miss after delete")
	}
}
