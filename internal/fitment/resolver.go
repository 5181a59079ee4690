// Package fitment resolve a medida original de pneu de um veículo
// consultando um provedor externo de fitment (wheel-size).
package fitment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"avaliacar/internal/cache"
	"avaliacar/internal/match"
	"avaliacar/internal/model"
	"avaliacar/internal/observability"
)

// ErrNotFound cobre qualquer falha de resolução: rede, resposta sem
// versões, versão sem pneu de fábrica. O chamador trata como "medida
// desconhecida" e nunca deve inventar uma.
var ErrNotFound = errors.New("fitment: medida de pneu não encontrada")

type searchResponse struct {
	Data []trim `json:"data"`
}

type trim struct {
	Name   string     `json:"trim"`
	Wheels []wheelSet `json:"wheels"`
}

type wheelSet struct {
	IsStock bool     `json:"is_stock"`
	Front   tireData `json:"front"`
}

type tireData struct {
	Width  int `json:"tire_width"`
	Aspect int `json:"tire_aspect_ratio"`
	Rim    int `json:"rim_diameter"`
}

type Resolver struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
	Cache   cache.Cache
	Log     *slog.Logger
}

func NewResolver(baseURL, apiKey string, c cache.Cache, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 60 * time.Second},
		Cache:   c,
		Log:     log,
	}
}

// Resolve devolve a medida de pneu de fábrica para marca/modelo/ano.
// versao, quando presente, desempata entre as versões listadas. Só o
// sucesso vai para o cache.
func (r *Resolver) Resolve(ctx context.Context, v model.Vehicle) (model.TireSpec, error) {
	key := fmt.Sprintf("pneu:%s:%s:%d", Slugify(v.Marca), Slugify(v.Modelo), v.Ano)
	if cached, ok := r.Cache.Get(ctx, key); ok {
		observability.CacheTotal.WithLabelValues("pneu", "hit").Inc()
		var spec model.TireSpec
		if err := json.Unmarshal([]byte(cached), &spec); err == nil {
			return spec, nil
		}
	}
	observability.CacheTotal.WithLabelValues("pneu", "miss").Inc()

	trims, err := r.search(ctx, v)
	if err != nil {
		r.Log.Warn("consulta de fitment falhou", "marca", v.Marca, "modelo", v.Modelo, "err", err)
		return model.TireSpec{}, ErrNotFound
	}
	if len(trims) == 0 {
		return model.TireSpec{}, ErrNotFound
	}

	chosen := pickTrim(trims, v.Versao)

	spec, ok := stockTire(chosen)
	if !ok {
		return model.TireSpec{}, ErrNotFound
	}

	if b, err := json.Marshal(spec); err == nil {
		r.Cache.Put(ctx, key, string(b))
	}
	return spec, nil
}

func (r *Resolver) search(ctx context.Context, v model.Vehicle) ([]trim, error) {
	start := time.Now()
	defer func() {
		observability.ProviderLatency.WithLabelValues("fitment").Observe(time.Since(start).Seconds())
	}()

	q := url.Values{}
	q.Set("make", Slugify(v.Marca))
	q.Set("model", Slugify(v.Modelo))
	q.Set("year", fmt.Sprintf("%d", v.Ano))
	if r.APIKey != "" {
		q.Set("user_key", r.APIKey)
	}
	endpoint := fmt.Sprintf("%s/search/by_model/?%s", r.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fitment status %d", resp.StatusCode)
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return result.Data, nil
}

// pickTrim escolhe a versão: igualdade exata com o hint, depois maior
// sobreposição de palavras, e sem hint (ou sem pontuação) a primeira da
// lista na ordem do provedor.
func pickTrim(trims []trim, hint string) trim {
	if strings.TrimSpace(hint) == "" {
		return trims[0]
	}
	names := make([]string, len(trims))
	for i, t := range trims {
		names[i] = t.Name
	}
	idx, _, ok := match.Best(hint, names)
	if !ok {
		return trims[0]
	}
	return trims[idx]
}

// stockTire procura a primeira configuração de fábrica com as três
// dimensões presentes.
func stockTire(t trim) (model.TireSpec, bool) {
	for _, w := range t.Wheels {
		if !w.IsStock {
			continue
		}
		f := w.Front
		if f.Width <= 0 || f.Aspect <= 0 || f.Rim <= 0 {
			continue
		}
		return model.TireSpec{
			Width:  f.Width,
			Aspect: f.Aspect,
			Rim:    f.Rim,
			Medida: fmt.Sprintf("%d/%d R%d", f.Width, f.Aspect, f.Rim),
		}, true
	}
	return model.TireSpec{}, false
}

var accents = strings.NewReplacer(
	"á", "a", "à", "a", "ã", "a", "â", "a", "ä", "a",
	"é", "e", "ê", "e", "è", "e", "ë", "e",
	"í", "i", "ì", "i", "î", "i", "ï", "i",
	"ó", "o", "õ", "o", "ô", "o", "ò", "o", "ö", "o",
	"ú", "u", "ù", "u", "û", "u", "ü", "u",
	"ç", "c", "ñ", "n",
)

// Slugify normaliza um nome para uso em URL: minúsculas, sem acento,
// sequências não alfanuméricas viram um único "-".
func Slugify(s string) string {
	s = accents.Replace(strings.ToLower(strings.TrimSpace(s)))

	var sb strings.Builder
	lastDash := true // evita "-" no início
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				sb.WriteRune('-')
				lastDash = true
			}
		}
	}
	return strings.TrimRight(sb.String(), "-")
}
