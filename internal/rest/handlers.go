// Package rest expõe a API HTTP do serviço de avaliação.
package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"avaliacar/internal/aggregate"
	"avaliacar/internal/fipe"
	"avaliacar/internal/model"
	"avaliacar/internal/queue"
	"avaliacar/internal/repository"
)

type Handlers struct {
	Fipe    *fipe.Client
	Service *aggregate.Service
	Repo    *repository.AvaliacaoRepository // opcional
	Leads   *queue.LeadPublisher           // opcional
	Log     *slog.Logger
}

func NewRouter(h *Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLogger(h.Log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/marcas", h.handleMarcas)
	r.Get("/modelos/{marcaID}", h.handleModelos)
	r.Get("/anos/{marcaID}/{modeloID}", h.handleAnos)
	r.Get("/fipe", h.handleFipe)

	r.Post("/avaliacao", h.handleAvaliacao)
	r.Post("/lead", h.handleLead)

	return r
}

func (h *Handlers) handleMarcas(w http.ResponseWriter, r *http.Request) {
	marcas, err := h.Fipe.Marcas(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "erro ao obter marcas")
		return
	}
	writeJSON(w, http.StatusOK, marcas)
}

func (h *Handlers) handleModelos(w http.ResponseWriter, r *http.Request) {
	modelos, err := h.Fipe.Modelos(r.Context(), chi.URLParam(r, "marcaID"))
	if err != nil {
		writeError(w, http.StatusBadGateway, "erro ao obter modelos")
		return
	}
	writeJSON(w, http.StatusOK, modelos)
}

func (h *Handlers) handleAnos(w http.ResponseWriter, r *http.Request) {
	anos, err := h.Fipe.Anos(r.Context(), chi.URLParam(r, "marcaID"), chi.URLParam(r, "modeloID"))
	if err != nil {
		writeError(w, http.StatusBadGateway, "erro ao obter anos")
		return
	}
	writeJSON(w, http.StatusOK, anos)
}

func (h *Handlers) handleFipe(w http.ResponseWriter, r *http.Request) {
	marca := r.URL.Query().Get("marca")
	modelo := r.URL.Query().Get("modelo")
	ano, _ := strconv.Atoi(r.URL.Query().Get("ano"))
	if marca == "" || modelo == "" || ano == 0 {
		writeError(w, http.StatusBadRequest, "informe marca, modelo e ano")
		return
	}

	valor, err := h.Fipe.Consultar(r.Context(), marca, modelo, ano)
	if err != nil {
		if errors.Is(err, fipe.ErrNotFound) {
			writeError(w, http.StatusNotFound, "veículo não encontrado na tabela")
			return
		}
		writeError(w, http.StatusBadGateway, "erro ao consultar FIPE")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"valor_fipe": valor.Texto})
}

func (h *Handlers) handleAvaliacao(w http.ResponseWriter, r *http.Request) {
	var req avaliacaoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "corpo inválido")
		return
	}
	if req.Marca == "" || req.Modelo == "" || req.Ano == 0 {
		writeError(w, http.StatusBadRequest, "informe marca, modelo e ano")
		return
	}
	if len(req.Pecas) == 0 {
		writeError(w, http.StatusBadRequest, "informe ao menos uma peça")
		return
	}

	valuation, err := h.Service.Avaliar(r.Context(), req.vehicle(), req.Pecas)
	if err != nil {
		if errors.Is(err, fipe.ErrNotFound) {
			writeError(w, http.StatusNotFound, "veículo não encontrado na tabela")
			return
		}
		h.Log.Error("avaliação falhou", "err", err)
		writeError(w, http.StatusBadGateway, "erro ao calcular avaliação")
		return
	}

	resp := avaliacaoResponse{Valuation: valuation}
	if h.Repo != nil {
		id, err := h.Repo.SaveAvaliacao(r.Context(), valuation)
		if err != nil {
			// O usuário ainda recebe a avaliação; só perdemos o histórico.
			h.Log.Error("falha ao gravar avaliação", "err", err)
		} else {
			resp.ID = id
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) handleLead(w http.ResponseWriter, r *http.Request) {
	var req leadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "corpo inválido")
		return
	}
	if req.Nome == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "informe nome e email")
		return
	}

	lead := model.Lead{
		ID:       uuid.New().String(),
		Nome:     req.Nome,
		Email:    req.Email,
		Telefone: req.Telefone,
		Vehicle:  model.Vehicle{Marca: req.Marca, Modelo: req.Modelo, Ano: req.Ano},
		Estimate: req.Estimate,
	}

	if h.Repo != nil {
		if err := h.Repo.SaveLead(r.Context(), lead); err != nil {
			h.Log.Error("falha ao gravar lead", "err", err)
			writeError(w, http.StatusInternalServerError, "erro ao registrar contato")
			return
		}
	}
	if h.Leads != nil {
		if err := h.Leads.Publish(r.Context(), lead); err != nil {
			h.Log.Error("falha ao publicar lead", "id", lead.ID, "err", err)
		}
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": lead.ID})
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Error: msg})
}
