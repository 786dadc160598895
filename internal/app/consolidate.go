package app

import (
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"

	"mapping_sentiments/internal/adapters/observability"
	"mapping_sentiments/internal/dedupe"
	"mapping_sentiments/internal/domain"
	"mapping_sentiments/internal/ingest"
	"mapping_sentiments/internal/output"
)

// ConsolidateService runs the merge stage: read every per-location
// capture, canonicalize, drop exact duplicates, optionally group
// near-duplicates, and write the combined artifacts.
type ConsolidateService struct {
	ingestor *ingest.Ingestor
	writer   *output.Writer
}

func NewConsolidateService(in *ingest.Ingestor, w *output.Writer) *ConsolidateService {
	return &ConsolidateService{ingestor: in, writer: w}
}

// ConsolidateResult is what the merge stage hands downstream (and prints).
type ConsolidateResult struct {
	Reviews []domain.CanonicalReview
	Groups  []domain.ReviewGroup
	RawRows int
	Files   int
}

// Consolidate is the whole merge stage. group enables near-duplicate
// clustering at the given similarity threshold. A run over zero input
// files is a clean no-op with a diagnostic, not an error.
func (s *ConsolidateService) Consolidate(group bool, threshold float64) (ConsolidateResult, error) {
	raws, files, err := s.ingestor.ReadAll()
	if err != nil {
		return ConsolidateResult{}, err
	}
	if len(raws) == 0 {
		log.Warn().Msg("no reviews found in any location folder, nothing to do")
		return ConsolidateResult{Files: files}, nil
	}
	observability.ObserveStage("ingest", len(raws))

	canon := ingest.Canonicalize(raws)
	deduped := dedupe.DropExact(canon)
	observability.ObserveStage("dedupe", len(deduped))
	log.Info().Int("before", len(canon)).Int("after", len(deduped)).Msg("removed exact duplicates")

	res := ConsolidateResult{Reviews: deduped, RawRows: len(raws), Files: files}
	s.writer.WriteCombined(deduped)

	if group {
		res.Groups = dedupe.Group(deduped, threshold)
		observability.ObserveStage("group", len(res.Groups))
		s.writer.WriteGroups(res.Groups)
	}

	printSummary(res)
	return res, nil
}

// printSummary mirrors the operator-facing recap at the end of a merge
// run. Stdout on purpose; the structured log carries the same numbers.
func printSummary(res ConsolidateResult) {
	fmt.Println("\n--- Merge Summary ---")
	fmt.Println("Files read:", res.Files)
	fmt.Println("Total raw reviews found:", res.RawRows)
	fmt.Printf("Removed exact duplicates: %d -> %d\n", res.RawRows, len(res.Reviews))
	if res.Groups != nil {
		fmt.Println("Unique review groups after dedupe:", len(res.Groups))
	}
	fmt.Println("Avg rating (where available):", avgRatingStr(res.Reviews))
}

func avgRatingStr(reviews []domain.CanonicalReview) string {
	var sum float64
	var n int
	for _, r := range reviews {
		if r.Rating != nil {
			sum += *r.Rating
			n++
		}
	}
	if n == 0 {
		return "N/A"
	}
	return strconv.FormatFloat(sum/float64(n), 'f', 3, 64)
}
