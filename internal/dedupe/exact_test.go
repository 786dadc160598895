package dedupe_test

import (
	"reflect"
	"testing"

	"mapping_sentiments/internal/dedupe"
	"mapping_sentiments/internal/domain"
	"mapping_sentiments/internal/normalize"
)

func canon(name, comment, date, loc string) domain.CanonicalReview {
	return domain.CanonicalReview{
		Name:           name,
		Comment:        comment,
		Date:           date,
		SourceLocation: loc,
		NormName:       normalize.Normalize(name),
		NormComment:    normalize.Normalize(comment),
	}
}

func TestDropExactKeepsFirstOccurrence(t *testing.T) {
	in := []domain.CanonicalReview{
		canon("Ana", "Great food!", "a week ago", "parkA"),
		canon("ana", "great food", "a week ago", "parkB"), // same triple once normalized
		canon("Bob", "Great food!", "a week ago", "parkA"),
	}
	out := dedupe.DropExact(in)
	if len(out) != 2 {
		t.Fatalf("got %d survivors, want 2", len(out))
	}
	if out[0].SourceLocation != "parkA" || out[0].Name != "Ana" {
		t.Fatalf("first occurrence not kept: %+v", out[0])
	}
	if out[1].Name != "Bob" {
		t.Fatalf("survivor order broken: %+v", out[1])
	}
}

func TestDropExactIdempotent(t *testing.T) {
	in := []domain.CanonicalReview{
		canon("Ana", "Great food!", "a week ago", "parkA"),
		canon("Ana", "Great food!", "a week ago", "parkB"),
		canon("Cid", "Quiet and clean", "yesterday", "parkA"),
	}
	once := dedupe.DropExact(in)
	twice := dedupe.DropExact(once)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("DropExact not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestDropExactEmptyInput(t *testing.T) {
	if out := dedupe.DropExact(nil); len(out) != 0 {
		t.Fatalf("expected empty output, got %+v", out)
	}
}
