package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"avaliacar/internal/model"
	"avaliacar/internal/observability"
	"avaliacar/internal/preco"
)

// MercadoLivreClient raspa a página de busca do Mercado Livre. É o
// provedor usado quando não há chave de API de busca configurada.
type MercadoLivreClient struct {
	BaseURL string
	HTTP    *http.Client
}

func NewMercadoLivreClient() *MercadoLivreClient {
	return &MercadoLivreClient{
		BaseURL: "https://lista.mercadolivre.com.br",
		HTTP:    &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *MercadoLivreClient) Search(ctx context.Context, keyword string) ([]model.Candidate, error) {
	start := time.Now()
	defer func() {
		observability.ProviderLatency.WithLabelValues("mercadolivre").Observe(time.Since(start).Seconds())
	}()

	endpoint := fmt.Sprintf("%s/%s", strings.TrimRight(c.BaseURL, "/"), url.PathEscape(keyword))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mercadolivre status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse search page: %w", err)
	}

	var candidates []model.Candidate
	doc.Find("li.ui-search-layout__item").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		title := strings.TrimSpace(s.Find(".poly-component__title").First().Text())
		if title == "" {
			return true
		}

		link, _ := s.Find("a").First().Attr("href")

		// Preço vem quebrado em parte inteira e centavos.
		frac := strings.TrimSpace(s.Find(".andes-money-amount__fraction").First().Text())
		cents := strings.TrimSpace(s.Find(".andes-money-amount__cents").First().Text())
		priceText := frac
		if cents != "" {
			priceText = frac + "," + cents
		}

		img, ok := s.Find("img").First().Attr("data-src")
		if !ok {
			img, _ = s.Find("img").First().Attr("src")
		}

		cand := model.Candidate{
			Title:     title,
			PriceText: priceText,
			Link:      link,
			Image:     img,
			Source:    "mercadolivre",
		}
		if v, ok := preco.Parse(priceText); ok {
			cand.Price = &v
		}
		candidates = append(candidates, cand)

		return len(candidates) < pageSize
	})

	return candidates, nil
}
