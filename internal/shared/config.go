package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	// Oracle backend: "http" talks to the model-serving sidecar,
	// "openai" uses chat completions.
	OracleProvider string
	InferenceBase  string
	InferenceKey   string
	InferenceRPS   int
	OpenAIKey      string
	OpenAIModel    string

	// Pipeline knobs.
	InputDir       string
	OutputDir      string
	GroupReviews   bool
	SimThreshold   float64
	PositiveLabel  string
	NegativeLabel  string
	InputCeiling   int
	KeywordLimit   int
	TagWorkers     int
	SummaryWorkers int
	ChunkSize      int
	ShortThreshold int
	FinalThreshold int
	CacheTTL       time.Duration
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	atof := func(k string, def float64) float64 {
		if v := os.Getenv(k); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f
			}
		}
		return def
	}
	abool := func(k string, def bool) bool {
		if v := os.Getenv(k); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				return b
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", ""),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisDB:     atoi("REDIS_DB", 0),
		RedisPass:   env("REDIS_PASSWORD", ""),

		OracleProvider: env("ORACLE_PROVIDER", "http"),
		InferenceBase:  env("INFERENCE_BASE_URL", "http://localhost:8000"),
		InferenceKey:   env("INFERENCE_API_KEY", ""),
		InferenceRPS:   atoi("INFERENCE_RPS", 5),
		OpenAIKey:      env("OPENAI_API_KEY", ""),
		OpenAIModel:    env("OPENAI_MODEL", ""),

		InputDir:       env("INPUT_DIR", "ScrapingOutput"),
		OutputDir:      env("OUTPUT_DIR", "ScrapingOutput"),
		GroupReviews:   abool("GROUP_REVIEWS", false),
		SimThreshold:   atof("SIMILARITY_THRESHOLD", 0.85),
		PositiveLabel:  env("POSITIVE_LABEL", "LABEL_2"),
		NegativeLabel:  env("NEGATIVE_LABEL", "LABEL_0"),
		InputCeiling:   atoi("SENTIMENT_INPUT_CEILING", 512),
		KeywordLimit:   atoi("KEYWORD_LIMIT", 5),
		TagWorkers:     atoi("TAG_WORKERS", 8),
		SummaryWorkers: atoi("SUMMARY_WORKERS", 4),
		ChunkSize:      atoi("SUMMARY_CHUNK_SIZE", 3500),
		ShortThreshold: atoi("SUMMARY_SHORT_THRESHOLD", 1000),
		FinalThreshold: atoi("SUMMARY_FINAL_THRESHOLD", 500),
		CacheTTL:       time.Duration(atoi("CACHE_TTL_SECONDS", 3600)) * time.Second,
	}
	if c.OracleProvider == "openai" && c.OpenAIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
