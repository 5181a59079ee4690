package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	BuscasTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buscas_total",
			Help: "Total de buscas de preço por resultado (ok, vazio, erro)",
		},
		[]string{"resultado"},
	)

	CacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_total",
			Help: "Hits e misses por cache",
		},
		[]string{"cache", "resultado"},
	)

	ProviderLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provider_latency_seconds",
			Help:    "Latência das chamadas aos provedores externos",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	AvaliacoesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "avaliacoes_total",
			Help: "Total de avaliações concluídas",
		},
	)
)

func Register() {
	prometheus.MustRegister(BuscasTotal, CacheTotal, ProviderLatency, AvaliacoesTotal)
}
