// Package fipe consulta o valor de referência do veículo na tabela FIPE
// via a API pública da parallelum.
package fipe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"avaliacar/internal/cache"
	"avaliacar/internal/observability"
	"avaliacar/internal/preco"
)

// ErrNotFound indica marca, modelo ou ano sem correspondência na tabela.
var ErrNotFound = errors.New("fipe: veículo não encontrado")

type Marca struct {
	Codigo string `json:"codigo"`
	Nome   string `json:"nome"`
}

type Modelo struct {
	Codigo json.Number `json:"codigo"`
	Nome   string      `json:"nome"`
}

type Ano struct {
	Codigo string `json:"codigo"`
	Nome   string `json:"nome"`
}

type modelosResponse struct {
	Modelos []Modelo `json:"modelos"`
	Anos    []Ano    `json:"anos"`
}

type valorResponse struct {
	Valor     string `json:"Valor"`
	Marca     string `json:"Marca"`
	Modelo    string `json:"Modelo"`
	AnoModelo int    `json:"AnoModelo"`
}

// Valor é o resultado de uma consulta resolvida: o texto original da
// tabela ("R$ 51.234,00") e o número já interpretado.
type Valor struct {
	Texto  string  `json:"valor"`
	Numero float64 `json:"numero"`
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
	Cache   cache.Cache
	Log     *slog.Logger
}

func NewClient(baseURL string, c cache.Cache, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 60 * time.Second},
		Cache:   c,
		Log:     log,
	}
}

// Marcas lista todas as marcas de carro da tabela.
func (c *Client) Marcas(ctx context.Context) ([]Marca, error) {
	var marcas []Marca
	if err := c.getJSON(ctx, c.BaseURL, &marcas); err != nil {
		return nil, err
	}
	return marcas, nil
}

// Modelos lista os modelos de uma marca.
func (c *Client) Modelos(ctx context.Context, marcaID string) ([]Modelo, error) {
	var resp modelosResponse
	url := fmt.Sprintf("%s/%s/modelos", c.BaseURL, marcaID)
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return nil, err
	}
	return resp.Modelos, nil
}

// Anos lista os códigos de ano disponíveis para um modelo (ex: "2022-1").
func (c *Client) Anos(ctx context.Context, marcaID, modeloID string) ([]Ano, error) {
	var anos []Ano
	url := fmt.Sprintf("%s/%s/modelos/%s/anos", c.BaseURL, marcaID, modeloID)
	if err := c.getJSON(ctx, url, &anos); err != nil {
		return nil, err
	}
	return anos, nil
}

// Consultar resolve marca por nome exato (ignorando caixa), modelo por
// substring e ano pelo ano-modelo, e retorna o valor da tabela. Resultados
// ficam no cache de referência por uma janela curta.
func (c *Client) Consultar(ctx context.Context, marca, modelo string, ano int) (Valor, error) {
	key := fmt.Sprintf("fipe:%s:%s:%d", strings.ToLower(marca), strings.ToLower(modelo), ano)
	if cached, ok := c.Cache.Get(ctx, key); ok {
		observability.CacheTotal.WithLabelValues("fipe", "hit").Inc()
		var v Valor
		if err := json.Unmarshal([]byte(cached), &v); err == nil {
			return v, nil
		}
	}
	observability.CacheTotal.WithLabelValues("fipe", "miss").Inc()

	marcas, err := c.Marcas(ctx)
	if err != nil {
		return Valor{}, err
	}
	marcaID := ""
	for _, m := range marcas {
		if strings.EqualFold(m.Nome, marca) {
			marcaID = m.Codigo
			break
		}
	}
	if marcaID == "" {
		return Valor{}, fmt.Errorf("marca %q: %w", marca, ErrNotFound)
	}

	modelos, err := c.Modelos(ctx, marcaID)
	if err != nil {
		return Valor{}, err
	}
	modeloID := ""
	for _, m := range modelos {
		if strings.Contains(strings.ToLower(m.Nome), strings.ToLower(modelo)) {
			modeloID = m.Codigo.String()
			break
		}
	}
	if modeloID == "" {
		return Valor{}, fmt.Errorf("modelo %q: %w", modelo, ErrNotFound)
	}

	anos, err := c.Anos(ctx, marcaID, modeloID)
	if err != nil {
		return Valor{}, err
	}
	anoCodigo := ""
	prefix := strconv.Itoa(ano)
	for _, a := range anos {
		if strings.HasPrefix(a.Codigo, prefix) {
			anoCodigo = a.Codigo
			break
		}
	}
	if anoCodigo == "" {
		return Valor{}, fmt.Errorf("ano %d: %w", ano, ErrNotFound)
	}

	var vr valorResponse
	url := fmt.Sprintf("%s/%s/modelos/%s/anos/%s", c.BaseURL, marcaID, modeloID, anoCodigo)
	if err := c.getJSON(ctx, url, &vr); err != nil {
		return Valor{}, err
	}

	num, ok := preco.Parse(vr.Valor)
	if vr.Valor == "" || !ok {
		return Valor{}, fmt.Errorf("valor FIPE ausente: %w", ErrNotFound)
	}

	c.Log.Debug("valor FIPE resolvido",
		"marca", marcaID, "modelo", modeloID, "ano", anoCodigo, "valor", vr.Valor)

	v := Valor{Texto: vr.Valor, Numero: num}
	if b, err := json.Marshal(v); err == nil {
		c.Cache.Put(ctx, key, string(b))
	}
	return v, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	start := time.Now()
	defer func() {
		observability.ProviderLatency.WithLabelValues("fipe").Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request for %s: %w", url, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("FIPE status %d for %s", resp.StatusCode, url)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", url, err)
	}
	return nil
}
