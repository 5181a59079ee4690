package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"avaliacar/internal/model"
)

// AvaliacaoRepository grava o histórico de avaliações e os leads deixados
// pelos usuários. O serviço funciona sem banco: com repositório nil nada
// é gravado.
type AvaliacaoRepository struct {
	DB *pgxpool.Pool
}

// SaveAvaliacao grava uma avaliação concluída. O relatório de peças vai
// como JSON para não engessar o esquema a cada ajuste no formato.
func (r *AvaliacaoRepository) SaveAvaliacao(ctx context.Context, v model.Valuation) (string, error) {
	id := uuid.New().String()

	pecas, err := json.Marshal(v.Deductions.Parts)
	if err != nil {
		return "", fmt.Errorf("failed to marshal part reports: %w", err)
	}

	_, err = r.DB.Exec(ctx, `
		INSERT INTO avaliacoes
		(id, marca, modelo, ano, versao, valor_referencia, total_descontos, valor_estimado, pecas)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, id, v.Vehicle.Marca, v.Vehicle.Modelo, v.Vehicle.Ano, v.Vehicle.Versao,
		v.ReferenceValue, v.Deductions.TotalDeduction, v.Estimate, pecas)
	if err != nil {
		return "", fmt.Errorf("failed to insert avaliacao: %w", err)
	}

	return id, nil
}

// SaveLead grava o contato do usuário interessado em vender o veículo.
func (r *AvaliacaoRepository) SaveLead(ctx context.Context, l model.Lead) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO leads
		(id, nome, email, telefone, marca, modelo, ano, valor_estimado)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, l.ID, l.Nome, l.Email, l.Telefone,
		l.Vehicle.Marca, l.Vehicle.Modelo, l.Vehicle.Ano, l.Estimate)
	if err != nil {
		return fmt.Errorf("failed to insert lead: %w", err)
	}
	return nil
}

// ListLeads retorna os leads mais recentes, para o painel interno.
func (r *AvaliacaoRepository) ListLeads(ctx context.Context, limit int) ([]model.Lead, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.DB.Query(ctx, `
		SELECT id, nome, email, telefone, marca, modelo, ano, valor_estimado
		FROM leads
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leads: %w", err)
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		var l model.Lead
		if err := rows.Scan(&l.ID, &l.Nome, &l.Email, &l.Telefone,
			&l.Vehicle.Marca, &l.Vehicle.Modelo, &l.Vehicle.Ano, &l.Estimate); err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}
