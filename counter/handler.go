package counter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"counter-service/counter/application"
	"counter-service/counter/domain"
)

// Handler traduz verbos e rotas HTTP em chamadas no núcleo do serviço.
// Ele não contém regra de negócio: parsing, status e corpo JSON apenas.
type Handler struct {
	stats     *application.StatsService
	countries *application.Validator
	store     domain.CounterStore

	healthTimeout time.Duration
}

func NewHandler(stats *application.StatsService, countries *application.Validator, store domain.CounterStore) *Handler {
	return &Handler{
		stats:         stats,
		countries:     countries,
		store:         store,
		healthTimeout: 2 * time.Second,
	}
}

// Routes monta o mux do serviço.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/visits/{code}", h.recordVisit)
	mux.HandleFunc("GET /api/stats", h.getStats)
	mux.HandleFunc("DELETE /api/stats", h.clearAll)
	mux.HandleFunc("DELETE /api/stats/{code}", h.clearOne)
	mux.HandleFunc("GET /api/countries", h.listCountries)
	mux.HandleFunc("GET /api/countries/search", h.searchCountries)
	mux.HandleFunc("GET /api/countries/{code}", h.validateCountry)
	mux.HandleFunc("GET /healthz", h.health)
	return mux
}

func (h *Handler) recordVisit(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	count, err := h.stats.RecordVisit(r.Context(), code)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"country": strings.ToLower(strings.TrimSpace(code)),
		"count":   count,
	})
}

func (h *Handler) getStats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.stats.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stats": counts})
}

func (h *Handler) clearAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.stats.ClearAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"removed": n})
}

func (h *Handler) clearOne(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	removed, err := h.stats.ClearOne(r.Context(), code)
	if err != nil {
		writeError(w, err)
		return
	}
	// remoção de chave ausente não é erro: a operação é idempotente
	writeJSON(w, http.StatusOK, map[string]any{
		"country": strings.ToLower(strings.TrimSpace(code)),
		"removed": removed,
	})
}

func (h *Handler) validateCountry(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	v, err := h.countries.Validate(r.Context(), code)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"code":  strings.ToUpper(strings.TrimSpace(code)),
		"valid": v.Valid,
		"name":  v.Name,
	})
}

func (h *Handler) listCountries(w http.ResponseWriter, r *http.Request) {
	all, err := h.countries.Countries(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"countries": all})
}

func (h *Handler) searchCountries(w http.ResponseWriter, r *http.Request) {
	found, err := h.countries.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"countries": found})
}

// health reflete a saúde da conexão com o backend de contadores.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.healthTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unhealthy"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError mapeia os erros sentinela do domain para status HTTP.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidCountryCode):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{"error": err.Error()})
}
