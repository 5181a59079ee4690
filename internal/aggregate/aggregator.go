// Package aggregate orquestra a busca de preço das peças: monta as
// palavras-chave, dispara as buscas em paralelo, filtra anúncios e
// calcula o preço representativo de cada peça.
package aggregate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"avaliacar/internal/cache"
	"avaliacar/internal/model"
	"avaliacar/internal/observability"
	"avaliacar/internal/search"
)

const (
	// maxListings limita quantos anúncios entram na média e no relatório.
	maxListings = 3

	erroSemResultado   = "nenhum resultado encontrado"
	erroSemPrecoValido = "nenhum preço válido nos anúncios"
)

// TireResolver é o que o agregador precisa do resolvedor de medida.
type TireResolver interface {
	Resolve(ctx context.Context, v model.Vehicle) (model.TireSpec, error)
}

type Aggregator struct {
	Searcher search.Searcher
	Resolver TireResolver // opcional; sem ele pneu é tratado como peça comum
	Cache    cache.Cache
	Log      *slog.Logger
	Timeout  time.Duration
}

func NewAggregator(s search.Searcher, r TireResolver, c cache.Cache, log *slog.Logger) *Aggregator {
	if log == nil {
		log = slog.Default()
	}
	return &Aggregator{
		Searcher: s,
		Resolver: r,
		Cache:    c,
		Log:      log,
		Timeout:  20 * time.Second,
	}
}

// Aggregate busca o preço de todas as peças e soma o desconto total.
// As buscas das peças correm em paralelo; a falha de uma não derruba as
// outras, e o relatório final sai na ordem em que as peças foram pedidas.
func (a *Aggregator) Aggregate(ctx context.Context, v model.Vehicle, labels []string) model.AggregationResult {
	// A medida de pneu é resolvida uma vez por requisição, não por peça.
	var tire *model.TireSpec
	if a.Resolver != nil && anyTire(labels) {
		spec, err := a.Resolver.Resolve(ctx, v)
		if err != nil {
			a.Log.Warn("medida de pneu desconhecida, busca segue com o rótulo original",
				"marca", v.Marca, "modelo", v.Modelo, "err", err)
		} else {
			tire = &spec
		}
	}

	reports := make([]model.PartReport, len(labels))
	var wg sync.WaitGroup
	for i, label := range labels {
		wg.Add(1)
		go func(i int, label string) {
			defer wg.Done()
			reports[i] = a.processPart(ctx, v, tire, label)
		}(i, label)
	}
	wg.Wait()

	total := 0.0
	for _, r := range reports {
		if r.Price != nil {
			total += *r.Price
		}
	}

	return model.AggregationResult{
		Parts:          reports,
		TotalDeduction: round2(total),
	}
}

func (a *Aggregator) processPart(ctx context.Context, v model.Vehicle, tire *model.TireSpec, label string) model.PartReport {
	req := parsePart(label)

	key := partCacheKey(v, label)
	if cached, ok := a.Cache.Get(ctx, key); ok {
		observability.CacheTotal.WithLabelValues("peca", "hit").Inc()
		var report model.PartReport
		if err := json.Unmarshal([]byte(cached), &report); err == nil {
			return report
		}
	}
	observability.CacheTotal.WithLabelValues("peca", "miss").Inc()

	sized := req.Tire && tire != nil

	// Desce a escada de palavras-chave até a primeira que traz anúncio.
	var candidates []model.Candidate
	var lastErr error
	for _, kw := range buildKeywords(req, v, tire) {
		found, err := a.searchOnce(ctx, kw)
		if err != nil {
			lastErr = err
			continue
		}
		if len(found) > 0 {
			candidates = found
			break
		}
	}

	if len(candidates) == 0 {
		if lastErr != nil {
			a.Log.Warn("busca de peça falhou", "peca", label, "err", lastErr)
			observability.BuscasTotal.WithLabelValues("erro").Inc()
		} else {
			observability.BuscasTotal.WithLabelValues("vazio").Inc()
		}
		return model.PartReport{Part: label, Quantity: req.Quantity, Error: erroSemResultado}
	}

	// Com a medida exata na palavra-chave o filtro de título só atrapalha;
	// para o resto, título sem a peça e o modelo é anúncio de outra coisa.
	var kept []model.Candidate
	for _, c := range candidates {
		if !sized && !relevantTitle(c.Title, label, v) {
			continue
		}
		if c.Price == nil {
			continue
		}
		kept = append(kept, c)
	}

	if len(kept) == 0 {
		observability.BuscasTotal.WithLabelValues("vazio").Inc()
		return model.PartReport{Part: label, Quantity: req.Quantity, Error: erroSemPrecoValido}
	}

	if len(kept) > maxListings {
		kept = kept[:maxListings]
	}

	sum := 0.0
	listings := make([]model.Listing, 0, len(kept))
	for _, c := range kept {
		sum += *c.Price
		listings = append(listings, model.Listing{
			Title:     c.Title,
			PriceText: c.PriceText,
			Link:      c.Link,
			Image:     c.Image,
		})
	}

	price := sum / float64(len(kept))
	if req.Tire {
		price *= float64(req.Quantity)
	}
	price = round2(price)

	report := model.PartReport{
		Part:     label,
		Quantity: req.Quantity,
		Price:    &price,
		Listings: listings,
	}

	observability.BuscasTotal.WithLabelValues("ok").Inc()
	if b, err := json.Marshal(report); err == nil {
		a.Cache.Put(ctx, key, string(b))
	}
	return report
}

// searchOnce roda uma tentativa de busca com teto de tempo próprio, para
// que um provedor travado não segure o lote inteiro.
func (a *Aggregator) searchOnce(ctx context.Context, keyword string) ([]model.Candidate, error) {
	timeout := a.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return a.Searcher.Search(ctx, keyword)
}

func partCacheKey(v model.Vehicle, label string) string {
	return fmt.Sprintf("peca:%s:%s:%d:%s",
		strings.ToLower(v.Marca), strings.ToLower(v.Modelo), v.Ano, strings.ToLower(label))
}

func anyTire(labels []string) bool {
	for _, l := range labels {
		if parsePart(l).Tire {
			return true
		}
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
