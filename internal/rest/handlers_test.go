package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"avaliacar/internal/aggregate"
	"avaliacar/internal/cache"
	"avaliacar/internal/fipe"
	"avaliacar/internal/logger"
	"avaliacar/internal/model"
)

type stubSearcher struct {
	results map[string][]model.Candidate
}

func (s *stubSearcher) Search(_ context.Context, keyword string) ([]model.Candidate, error) {
	return s.results[keyword], nil
}

func newFipeServer() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/":
			w.Write([]byte(`[{"codigo":"21","nome":"Fiat"}]`))
		case "/21/modelos":
			w.Write([]byte(`{"modelos":[{"codigo":4828,"nome":"ARGO DRIVE 1.0"}]}`))
		case "/21/modelos/4828/anos":
			w.Write([]byte(`[{"codigo":"2022-1","nome":"2022 Gasolina"}]`))
		case "/21/modelos/4828/anos/2022-1":
			w.Write([]byte(`{"Valor":"R$ 70.000,00","Marca":"Fiat","Modelo":"ARGO DRIVE 1.0","AnoModelo":2022}`))
		default:
			http.NotFound(w, r)
		}
	})
	return httptest.NewServer(mux)
}

func newTestRouter(t *testing.T) (http.Handler, *httptest.Server) {
	t.Helper()

	fipeSrv := newFipeServer()
	log := logger.New("error")

	preco := 500.0
	searcher := &stubSearcher{results: map[string][]model.Candidate{
		"pastilha de freio Fiat Argo 2022": {
			{Title: "Pastilha de Freio Argo", PriceText: "R$ 500,00", Price: &preco, Link: "https://ex/1"},
		},
	}}

	fipeClient := fipe.NewClient(fipeSrv.URL, cache.NewMemory(10, time.Hour), log)
	agg := aggregate.NewAggregator(searcher, nil, cache.NewMemory(10, time.Hour), log)
	svc := aggregate.NewService(fipeClient, agg, log)

	router := NewRouter(&Handlers{Fipe: fipeClient, Service: svc, Log: log})
	return router, fipeSrv
}

func TestHandleAvaliacao(t *testing.T) {
	router, fipeSrv := newTestRouter(t)
	defer fipeSrv.Close()

	body := `{"marca":"Fiat","modelo":"Argo","ano":2022,"pecas":["pastilha de freio"]}`
	req := httptest.NewRequest(http.MethodPost, "/avaliacao", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp avaliacaoResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("resposta não é JSON: %v", err)
	}
	if resp.ReferenceValue != 70000 || resp.Estimate != 69500 {
		t.Fatalf("resposta = %+v, esperado 70000 - 500 = 69500", resp.Valuation)
	}
	if len(resp.Deductions.Parts) != 1 || resp.Deductions.Parts[0].Price == nil {
		t.Fatalf("relatório de peças inesperado: %+v", resp.Deductions)
	}
}

func TestHandleAvaliacaoValidacao(t *testing.T) {
	router, fipeSrv := newTestRouter(t)
	defer fipeSrv.Close()

	cases := []string{
		`{"marca":"Fiat","modelo":"Argo","ano":2022,"pecas":[]}`,
		`{"modelo":"Argo","ano":2022,"pecas":["farol"]}`,
		`não é json`,
	}
	for _, body := range cases {
		req := httptest.NewRequest(http.MethodPost, "/avaliacao", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, esperado 400", body, rec.Code)
		}
	}
}

func TestHandleFipeNaoEncontrado(t *testing.T) {
	router, fipeSrv := newTestRouter(t)
	defer fipeSrv.Close()

	req := httptest.NewRequest(http.MethodGet, "/fipe?marca=Lada&modelo=Niva&ano=1990", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, esperado 404", rec.Code)
	}
}

func TestHandleMarcas(t *testing.T) {
	router, fipeSrv := newTestRouter(t)
	defer fipeSrv.Close()

	req := httptest.NewRequest(http.MethodGet, "/marcas", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var marcas []fipe.Marca
	if err := json.Unmarshal(rec.Body.Bytes(), &marcas); err != nil || len(marcas) != 1 {
		t.Fatalf("marcas = %s (err %v)", rec.Body.String(), err)
	}
}
