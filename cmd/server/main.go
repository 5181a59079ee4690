package main

import (
	"context"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"avaliacar/internal/aggregate"
	"avaliacar/internal/cache"
	"avaliacar/internal/config"
	"avaliacar/internal/fipe"
	"avaliacar/internal/fitment"
	"avaliacar/internal/logger"
	"avaliacar/internal/observability"
	"avaliacar/internal/queue"
	"avaliacar/internal/repository"
	"avaliacar/internal/rest"
	"avaliacar/internal/search"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)
	observability.Register()

	fipeCache := cache.NewMemory(cfg.FipeCacheSize, cfg.FipeCacheTTL)

	// Com Redis configurado o cache de peças é compartilhado entre
	// instâncias; sem ele, fica em memória local.
	var partCache cache.Cache = cache.NewMemory(cfg.PartCacheSize, cfg.PartCacheTTL)
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Error("REDIS_URL inválida", "err", err)
			os.Exit(1)
		}
		partCache = cache.NewRedis(redis.NewClient(opt), "peca:", cfg.PartCacheTTL, log)
		log.Info("cache de peças no redis")
	}

	fipeClient := fipe.NewClient(cfg.FipeBaseURL, fipeCache, log)
	fipeClient.HTTP.Timeout = cfg.LookupTimeout

	resolver := fitment.NewResolver(cfg.FitmentBaseURL, cfg.FitmentKey, partCache, log)
	resolver.HTTP.Timeout = cfg.LookupTimeout

	var searcher search.Searcher
	if cfg.SerpKey != "" {
		searcher = search.NewSerpClient(cfg.SerpBaseURL, cfg.SerpKey)
	} else {
		log.Warn("SERPAPI_KEY ausente, usando busca do Mercado Livre")
		searcher = search.NewMercadoLivreClient()
	}

	agg := aggregate.NewAggregator(searcher, resolver, partCache, log)
	agg.Timeout = cfg.SearchTimeout
	svc := aggregate.NewService(fipeClient, agg, log)

	var repo *repository.AvaliacaoRepository
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			log.Error("não foi possível conectar ao banco de dados", "err", err)
			os.Exit(1)
		}
		defer pool.Close()
		repo = &repository.AvaliacaoRepository{DB: pool}
	} else {
		log.Warn("DATABASE_URL ausente, avaliações e leads não serão gravados")
	}

	var leads *queue.LeadPublisher
	if cfg.AMQPURL != "" {
		var err error
		leads, err = queue.NewLeadPublisher(cfg.AMQPURL, cfg.LeadQueue)
		if err != nil {
			log.Error("não foi possível conectar ao rabbitmq", "err", err)
			os.Exit(1)
		}
		defer leads.Close()
	}

	router := rest.NewRouter(&rest.Handlers{
		Fipe:    fipeClient,
		Service: svc,
		Repo:    repo,
		Leads:   leads,
		Log:     log,
	})

	log.Info("servidor ouvindo", "porta", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Error("servidor encerrou", "err", err)
		os.Exit(1)
	}
}
