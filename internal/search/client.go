// Package search consulta provedores de busca de produtos e devolve
// anúncios candidatos para o cálculo de preço de peças.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"avaliacar/internal/model"
	"avaliacar/internal/observability"
	"avaliacar/internal/preco"
)

// pageSize limita quantos anúncios cada busca devolve.
const pageSize = 5

// Searcher é o contrato consumido pelo agregador. Implementações são
// stateless e seguras para chamadas concorrentes.
type Searcher interface {
	Search(ctx context.Context, keyword string) ([]model.Candidate, error)
}

// SerpClient busca no Google Shopping via SerpAPI.
type SerpClient struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func NewSerpClient(baseURL, apiKey string) *SerpClient {
	return &SerpClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 60 * time.Second},
	}
}

type serpResponse struct {
	ShoppingResults []serpItem `json:"shopping_results"`
}

type serpItem struct {
	Title     string `json:"title"`
	Price     string `json:"price"`
	Link      string `json:"link"`
	Thumbnail string `json:"thumbnail"`
	Source    string `json:"source"`
}

func (c *SerpClient) Search(ctx context.Context, keyword string) ([]model.Candidate, error) {
	start := time.Now()
	defer func() {
		observability.ProviderLatency.WithLabelValues("serpapi").Observe(time.Since(start).Seconds())
	}()

	q := url.Values{}
	q.Set("engine", "google_shopping")
	q.Set("q", keyword)
	q.Set("gl", "br")
	q.Set("hl", "pt-br")
	q.Set("api_key", c.APIKey)
	endpoint := fmt.Sprintf("%s/search.json?%s", c.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch results for %q: %w", keyword, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serpapi status %d", resp.StatusCode)
	}

	var result serpResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	items := result.ShoppingResults
	if len(items) > pageSize {
		items = items[:pageSize]
	}

	candidates := make([]model.Candidate, 0, len(items))
	for _, it := range items {
		cand := model.Candidate{
			Title:     it.Title,
			PriceText: it.Price,
			Link:      it.Link,
			Image:     it.Thumbnail,
			Source:    it.Source,
		}
		if v, ok := preco.Parse(it.Price); ok {
			cand.Price = &v
		}
		candidates = append(candidates, cand)
	}
	return candidates, nil
}
