package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	MetricsPort string
	LogLevel    string

	FipeBaseURL    string
	FitmentBaseURL string
	FitmentKey     string
	SerpBaseURL    string
	SerpKey        string

	DatabaseURL string
	RedisURL    string
	AMQPURL     string
	LeadQueue   string

	SearchTimeout time.Duration
	LookupTimeout time.Duration
	FipeCacheTTL  time.Duration
	FipeCacheSize int
	PartCacheTTL  time.Duration
	PartCacheSize int
}

func Load() *Config {
	// Carrega .env da raiz do projeto
	_ = godotenv.Load("../../.env")
	// Se não encontrar, tenta no diretório atual
	_ = godotenv.Load()
	return &Config{
		Port:        getEnv("PORT", "8080"),
		MetricsPort: getEnv("METRICS_PORT", "9090"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		FipeBaseURL:    getEnv("FIPE_BASE_URL", "https://parallelum.com.br/fipe/api/v1/carros/marcas"),
		FitmentBaseURL: getEnv("FITMENT_BASE_URL", "https://api.wheel-size.com/v2"),
		FitmentKey:     os.Getenv("FITMENT_API_KEY"),
		SerpBaseURL:    getEnv("SERP_BASE_URL", "https://serpapi.com"),
		SerpKey:        os.Getenv("SERPAPI_KEY"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		AMQPURL:     os.Getenv("AMQP_URL"),
		LeadQueue:   getEnv("LEAD_QUEUE", "leads"),

		SearchTimeout: getDuration("SEARCH_TIMEOUT", 20*time.Second),
		LookupTimeout: getDuration("LOOKUP_TIMEOUT", 15*time.Second),
		// Valor de referência muda com a tabela mensal; preço de peça é
		// mais caro de recalcular e muda devagar.
		FipeCacheTTL:  getDuration("FIPE_CACHE_TTL", time.Hour),
		FipeCacheSize: getInt("FIPE_CACHE_SIZE", 100),
		PartCacheTTL:  getDuration("PART_CACHE_TTL", 24*time.Hour),
		PartCacheSize: getInt("PART_CACHE_SIZE", 500),
	}
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func getDuration(k string, d time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if t, err := time.ParseDuration(v); err == nil {
			return t
		}
	}
	return d
}
