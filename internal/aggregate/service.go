package aggregate

import (
	"context"
	"fmt"
	"log/slog"

	"avaliacar/internal/fipe"
	"avaliacar/internal/model"
	"avaliacar/internal/observability"
)

// ReferenceClient é o que o serviço precisa da consulta FIPE.
type ReferenceClient interface {
	Consultar(ctx context.Context, marca, modelo string, ano int) (fipe.Valor, error)
}

// Service compõe a avaliação completa: valor de referência do veículo
// menos o custo estimado das peças apontadas na vistoria.
type Service struct {
	Fipe ReferenceClient
	Agg  *Aggregator
	Log  *slog.Logger
}

func NewService(ref ReferenceClient, agg *Aggregator, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{Fipe: ref, Agg: agg, Log: log}
}

// Avaliar calcula o valor estimado de revenda. Sem valor de referência
// não há avaliação; falhas nas peças individuais viram campos de erro no
// relatório e descontam 0.
func (s *Service) Avaliar(ctx context.Context, v model.Vehicle, parts []string) (model.Valuation, error) {
	ref, err := s.Fipe.Consultar(ctx, v.Marca, v.Modelo, v.Ano)
	if err != nil {
		return model.Valuation{}, fmt.Errorf("consulta de valor de referência: %w", err)
	}

	deductions := s.Agg.Aggregate(ctx, v, parts)

	estimate := ref.Numero - deductions.TotalDeduction
	if estimate < 0 {
		estimate = 0
	}

	observability.AvaliacoesTotal.Inc()
	s.Log.Info("avaliação concluída",
		"marca", v.Marca, "modelo", v.Modelo, "ano", v.Ano,
		"referencia", ref.Numero, "descontos", deductions.TotalDeduction)

	return model.Valuation{
		Vehicle:        v,
		ReferenceText:  ref.Texto,
		ReferenceValue: ref.Numero,
		Deductions:     deductions,
		Estimate:       round2(estimate),
	}, nil
}
