package main

import (
	"context"
	"database/sql"
	"flag"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"mapping_sentiments/internal/adapters/inference"
	"mapping_sentiments/internal/adapters/observability"
	openaiad "mapping_sentiments/internal/adapters/openai"
	redisad "mapping_sentiments/internal/adapters/redis"
	"mapping_sentiments/internal/aggregate"
	"mapping_sentiments/internal/app"
	"mapping_sentiments/internal/domain"
	"mapping_sentiments/internal/ingest"
	"mapping_sentiments/internal/output"
	"mapping_sentiments/internal/shared"
	mysqlrepo "mapping_sentiments/internal/storage/mysql"
	"mapping_sentiments/internal/tagging"
)

func main() {
	_ = godotenv.Load()
	cfg := shared.Load()

	group := flag.Bool("group", cfg.GroupReviews, "cluster near-duplicate reviews")
	threshold := flag.Float64("threshold", cfg.SimThreshold, "similarity threshold for grouping")
	input := flag.String("input", cfg.InputDir, "folder holding per-location capture folders")
	out := flag.String("out", cfg.OutputDir, "folder for merged artifacts")
	skipMap := flag.Bool("skip-map", false, "stop after consolidation, no oracle calls")
	flag.Parse()

	log.Logger = observability.NewLogger(cfg.AppEnv)
	observability.Serve()

	ctx := context.Background()
	writer := output.New(*out)

	consolidate := app.NewConsolidateService(ingest.New(*input), writer)
	res, err := consolidate.Consolidate(*group, *threshold)
	if err != nil {
		log.Fatal().Err(err).Msg("consolidation failed")
	}
	if len(res.Reviews) == 0 || *skipMap {
		return
	}

	sentiment, keywords, summarizer := buildOracles(cfg)

	var cache domain.Cache
	if cfg.RedisAddr != "" {
		cache = redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	}

	tagger := tagging.New(sentiment, keywords, cache, tagging.Config{
		PositiveLabel: cfg.PositiveLabel,
		NegativeLabel: cfg.NegativeLabel,
		InputCeiling:  cfg.InputCeiling,
		KeywordLimit:  cfg.KeywordLimit,
		Workers:       cfg.TagWorkers,
		CacheTTL:      cfg.CacheTTL,
	})
	agg := aggregate.New(summarizer, aggregate.Config{
		ChunkSize:          cfg.ChunkSize,
		ShortTextThreshold: cfg.ShortThreshold,
		FinalTextThreshold: cfg.FinalThreshold,
		MaxConcurrent:      cfg.SummaryWorkers,
	})

	var repo domain.ReviewRepository
	if cfg.MySQLDSN != "" {
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		if err := db.Ping(); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		repo = mysqlrepo.New(db)
		log.Info().Msg("database connection ok")
	}

	mapping := app.NewMappingService(tagger, agg, writer, repo)

	start := time.Now()
	fc, err := mapping.BuildMap(ctx, res.Reviews)
	if err != nil {
		log.Fatal().Err(err).Msg("map build failed")
	}
	if err := mapping.PersistGroups(ctx, res.Groups); err != nil {
		log.Error().Err(err).Msg("group persistence failed")
	}
	log.Info().
		Int("features", len(fc.Features)).
		Dur("took", time.Since(start)).
		Msg("sentiment map completed")
}

func buildOracles(cfg shared.Config) (domain.SentimentOracle, domain.KeywordOracle, domain.SummaryOracle) {
	if cfg.OracleProvider == "openai" {
		c := openaiad.New(cfg.OpenAIKey, cfg.OpenAIModel)
		return c, c, c
	}
	c, err := inference.New(cfg.InferenceBase, cfg.InferenceKey, cfg.InferenceRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize inference client")
	}
	return c, c, c
}
