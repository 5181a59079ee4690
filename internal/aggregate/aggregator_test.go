package aggregate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"avaliacar/internal/cache"
	"avaliacar/internal/fipe"
	"avaliacar/internal/model"
)

type fakeSearcher struct {
	mu      sync.Mutex
	calls   []string
	results map[string][]model.Candidate
	err     error
}

func (f *fakeSearcher) Search(_ context.Context, keyword string) ([]model.Candidate, error) {
	f.mu.Lock()
	f.calls = append(f.calls, keyword)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.results[keyword], nil
}

func (f *fakeSearcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeResolver struct {
	spec model.TireSpec
	err  error
}

func (f *fakeResolver) Resolve(_ context.Context, _ model.Vehicle) (model.TireSpec, error) {
	return f.spec, f.err
}

func cand(title, priceText string, price float64) model.Candidate {
	c := model.Candidate{Title: title, PriceText: priceText, Link: "https://ex/" + title}
	if price > 0 {
		c.Price = &price
	}
	return c
}

var argo = model.Vehicle{Marca: "Fiat", Modelo: "Argo", Ano: 2022}

func newTestAggregator(s *fakeSearcher, r TireResolver) *Aggregator {
	return NewAggregator(s, r, cache.NewMemory(50, time.Hour), nil)
}

func TestAggregatePastilha(t *testing.T) {
	s := &fakeSearcher{results: map[string][]model.Candidate{
		"pastilha de freio Fiat Argo 2022": {
			cand("Pastilha de Freio Fiat Argo", "R$ 100,00", 100),
			cand("Pastilha Freio Argo 1.0", "R$ 120,00", 120),
			cand("Jogo Pastilha Argo Drive", "R$ 140,00", 140),
		},
	}}
	a := newTestAggregator(s, nil)

	res := a.Aggregate(context.Background(), argo, []string{"pastilha de freio"})

	if len(res.Parts) != 1 {
		t.Fatalf("len(Parts) = %d", len(res.Parts))
	}
	r := res.Parts[0]
	if r.Error != "" || r.Price == nil {
		t.Fatalf("report = %+v, esperado preço sem erro", r)
	}
	if *r.Price != 120 || res.TotalDeduction != 120 {
		t.Fatalf("preço = %v, total = %v, esperado 120/120", *r.Price, res.TotalDeduction)
	}
	if len(r.Listings) != 3 {
		t.Fatalf("listings = %d, esperado 3", len(r.Listings))
	}
}

func TestAggregateFalhaParcial(t *testing.T) {
	s := &fakeSearcher{results: map[string][]model.Candidate{
		"pastilha de freio Fiat Argo 2022": {
			cand("Pastilha de Freio Argo", "R$ 100,00", 100),
		},
	}}
	a := newTestAggregator(s, nil)

	res := a.Aggregate(context.Background(), argo, []string{"pastilha de freio", "retrovisor"})

	if len(res.Parts) != 2 {
		t.Fatalf("len(Parts) = %d", len(res.Parts))
	}
	if res.Parts[0].Part != "pastilha de freio" || res.Parts[1].Part != "retrovisor" {
		t.Fatalf("ordem dos relatórios não bate com a entrada: %+v", res.Parts)
	}
	if res.Parts[0].Price == nil || res.Parts[0].Error != "" {
		t.Fatalf("primeira peça deveria ter preço: %+v", res.Parts[0])
	}
	if res.Parts[1].Price != nil || res.Parts[1].Error == "" {
		t.Fatalf("segunda peça deveria ter erro: %+v", res.Parts[1])
	}
	if res.TotalDeduction != 100 {
		t.Fatalf("total = %v, esperado 100 (parte com erro contribui 0)", res.TotalDeduction)
	}
}

func TestAggregateErroDeRedeNaoDerrubaLote(t *testing.T) {
	s := &fakeSearcher{err: errors.New("timeout")}
	a := newTestAggregator(s, nil)

	res := a.Aggregate(context.Background(), argo, []string{"pastilha de freio", "farol"})

	if len(res.Parts) != 2 {
		t.Fatalf("len(Parts) = %d", len(res.Parts))
	}
	for _, r := range res.Parts {
		if r.Error == "" || r.Price != nil {
			t.Fatalf("toda peça deveria reportar erro: %+v", r)
		}
	}
	if res.TotalDeduction != 0 {
		t.Fatalf("total = %v, esperado 0", res.TotalDeduction)
	}
}

func TestAggregateKitPneusUsaMedidaExata(t *testing.T) {
	s := &fakeSearcher{results: map[string][]model.Candidate{
		"kit pneus 185/60 R15": {
			cand("Kit 4 Pneus 185/60 R15", "R$ 1.200,00", 1200),
		},
	}}
	r := &fakeResolver{spec: model.TireSpec{Width: 185, Aspect: 60, Rim: 15, Medida: "185/60 R15"}}
	a := newTestAggregator(s, r)

	res := a.Aggregate(context.Background(), argo, []string{"kit pneus"})

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.calls) != 1 || s.calls[0] != "kit pneus 185/60 R15" {
		t.Fatalf("keywords usadas = %v, esperado exatamente [kit pneus 185/60 R15]", s.calls)
	}
	if res.Parts[0].Price == nil {
		t.Fatalf("report = %+v", res.Parts[0])
	}
}

func TestAggregateQuantidadeDePneus(t *testing.T) {
	s := &fakeSearcher{results: map[string][]model.Candidate{
		"4 pneus 185/60 R15": {
			cand("Pneu 185/60 R15 Aro 15", "R$ 300,00", 300),
			cand("Pneu 185/60R15 88H", "R$ 350,00", 350),
			cand("Pneu Aro 15 185/60", "R$ 400,00", 400),
			cand("Pneu extra que não entra na média", "R$ 900,00", 900),
		},
	}}
	r := &fakeResolver{spec: model.TireSpec{Width: 185, Aspect: 60, Rim: 15, Medida: "185/60 R15"}}
	a := newTestAggregator(s, r)

	res := a.Aggregate(context.Background(), argo, []string{"4 pneus"})

	rep := res.Parts[0]
	if rep.Price == nil {
		t.Fatalf("report = %+v", rep)
	}
	// média dos 3 primeiros (350) vezes a quantidade 4
	if *rep.Price != 1400 {
		t.Fatalf("preço = %v, esperado 1400", *rep.Price)
	}
	if rep.Quantity != 4 {
		t.Fatalf("quantidade = %d, esperado 4", rep.Quantity)
	}
	if len(rep.Listings) != 3 {
		t.Fatalf("listings = %d, esperado no máximo 3", len(rep.Listings))
	}
}

func TestAggregateMedidaDesconhecidaCaiNoRotulo(t *testing.T) {
	s := &fakeSearcher{results: map[string][]model.Candidate{
		"kit pneus Fiat Argo 2022": {
			cand("Kit Pneus para Fiat Argo Aro 15", "R$ 1.300,00", 1300),
		},
	}}
	r := &fakeResolver{err: errors.New("provedor fora")}
	a := newTestAggregator(s, r)

	res := a.Aggregate(context.Background(), argo, []string{"kit pneus"})

	if res.Parts[0].Price == nil {
		t.Fatalf("report = %+v, falha do resolvedor deveria degradar para o rótulo original", res.Parts[0])
	}
}

func TestAggregateFiltroDeRelevancia(t *testing.T) {
	s := &fakeSearcher{results: map[string][]model.Candidate{
		"pastilha de freio Fiat Argo 2022": {
			cand("Pastilha de Freio Gol G5", "R$ 80,00", 80),
			cand("Pastilha de Freio Argo", "R$ 120,00", 120),
			cand("Tapete de Borracha Argo", "R$ 90,00", 90),
		},
	}}
	a := newTestAggregator(s, nil)

	res := a.Aggregate(context.Background(), argo, []string{"pastilha de freio"})

	rep := res.Parts[0]
	if rep.Price == nil || *rep.Price != 120 {
		t.Fatalf("preço = %v, só o anúncio com peça e modelo deveria sobrar", rep.Price)
	}
	if len(rep.Listings) != 1 {
		t.Fatalf("listings = %d, esperado 1", len(rep.Listings))
	}
}

func TestAggregateEscadaDeFallback(t *testing.T) {
	s := &fakeSearcher{results: map[string][]model.Candidate{
		// nada na keyword mais específica; só na segunda
		"pastilhas Argo": {
			cand("Pastilhas de Freio Argo", "R$ 110,00", 110),
		},
	}}
	a := newTestAggregator(s, nil)

	res := a.Aggregate(context.Background(), argo, []string{"pastilhas"})

	if res.Parts[0].Price == nil || *res.Parts[0].Price != 110 {
		t.Fatalf("report = %+v, fallback deveria ter achado resultado", res.Parts[0])
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.calls) < 2 {
		t.Fatalf("calls = %v, a primeira keyword vazia deveria levar à próxima", s.calls)
	}
}

func TestAggregateIdempotenteDentroDoTTL(t *testing.T) {
	s := &fakeSearcher{results: map[string][]model.Candidate{
		"pastilha de freio Fiat Argo 2022": {
			cand("Pastilha de Freio Argo", "R$ 100,00", 100),
		},
	}}
	a := newTestAggregator(s, nil)
	ctx := context.Background()

	first := a.Aggregate(ctx, argo, []string{"pastilha de freio"})
	antes := s.callCount()

	second := a.Aggregate(ctx, argo, []string{"pastilha de freio"})
	if s.callCount() != antes {
		t.Fatalf("segunda agregação dentro do TTL não deveria ir à rede")
	}
	if *first.Parts[0].Price != *second.Parts[0].Price ||
		first.TotalDeduction != second.TotalDeduction {
		t.Fatalf("resultados divergem: %+v vs %+v", first, second)
	}
}

func TestAggregatePrecoSemParse(t *testing.T) {
	s := &fakeSearcher{results: map[string][]model.Candidate{
		"pastilha de freio Fiat Argo 2022": {
			cand("Pastilha de Freio Argo", "sob consulta", 0),
		},
	}}
	a := newTestAggregator(s, nil)

	res := a.Aggregate(context.Background(), argo, []string{"pastilha de freio"})

	rep := res.Parts[0]
	if rep.Price != nil || rep.Error == "" {
		t.Fatalf("report = %+v, anúncio sem preço interpretável deveria virar erro", rep)
	}
}

type fakeFipe struct {
	valor fipe.Valor
	err   error
}

func (f *fakeFipe) Consultar(_ context.Context, _, _ string, _ int) (fipe.Valor, error) {
	return f.valor, f.err
}

func TestAvaliar(t *testing.T) {
	s := &fakeSearcher{results: map[string][]model.Candidate{
		"pastilha de freio Fiat Argo 2022": {
			cand("Pastilha de Freio Argo", "R$ 500,00", 500),
		},
	}}
	svc := NewService(
		&fakeFipe{valor: fipe.Valor{Texto: "R$ 70.000,00", Numero: 70000}},
		newTestAggregator(s, nil),
		nil,
	)

	v, err := svc.Avaliar(context.Background(), argo, []string{"pastilha de freio"})
	if err != nil {
		t.Fatalf("Avaliar: %v", err)
	}
	if v.ReferenceValue != 70000 || v.Estimate != 69500 {
		t.Fatalf("valuation = %+v, esperado 70000 - 500 = 69500", v)
	}
}

func TestAvaliarSemReferencia(t *testing.T) {
	svc := NewService(
		&fakeFipe{err: fipe.ErrNotFound},
		newTestAggregator(&fakeSearcher{}, nil),
		nil,
	)

	if _, err := svc.Avaliar(context.Background(), argo, nil); err == nil {
		t.Fatal("sem valor de referência a avaliação deveria falhar")
	}
}
