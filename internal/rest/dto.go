package rest

import "avaliacar/internal/model"

type avaliacaoRequest struct {
	Marca  string   `json:"marca"`
	Modelo string   `json:"modelo"`
	Ano    int      `json:"ano"`
	Versao string   `json:"versao,omitempty"`
	Pecas  []string `json:"pecas"`
}

func (r avaliacaoRequest) vehicle() model.Vehicle {
	return model.Vehicle{Marca: r.Marca, Modelo: r.Modelo, Ano: r.Ano, Versao: r.Versao}
}

type avaliacaoResponse struct {
	ID string `json:"id,omitempty"`
	model.Valuation
}

type leadRequest struct {
	Nome     string  `json:"nome"`
	Email    string  `json:"email"`
	Telefone string  `json:"telefone,omitempty"`
	Marca    string  `json:"marca"`
	Modelo   string  `json:"modelo"`
	Ano      int     `json:"ano"`
	Estimate float64 `json:"valor_estimado"`
}

type errorResponse struct {
	Error string `json:"error"`
}
