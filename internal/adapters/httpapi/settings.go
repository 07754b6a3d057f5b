package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Guilhem-Bonnet/streamplan/internal/app"
	"github.com/Guilhem-Bonnet/streamplan/internal/httpjson"
)

// Settings: réglages modifiables à chaud. Non persistés.
type Settings struct {
	MaxConcurrent int `json:"max_concurrent"`
}

type SettingsHandler struct {
	planner *app.PlannerService
}

func NewSettingsHandler(planner *app.PlannerService) *SettingsHandler {
	return &SettingsHandler{planner: planner}
}

func (h *SettingsHandler) Routes(r chi.Router) {
	r.Get("/settings", h.get)
	r.Put("/settings", h.put)
	// Variante avec slash final (utile selon reverse-proxy / clients).
	r.Get("/settings/", h.get)
	r.Put("/settings/", h.put)
}

func (h *SettingsHandler) get(w http.ResponseWriter, r *http.Request) {
	httpjson.Write(w, http.StatusOK, Settings{MaxConcurrent: h.planner.MaxConcurrent()})
}

func (h *SettingsHandler) put(w http.ResponseWriter, r *http.Request) {
	var s Settings
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if s.MaxConcurrent <= 0 {
		httpjson.WriteError(w, http.StatusBadRequest, "max_concurrent must be >= 1")
		return
	}
	h.planner.SetMaxConcurrent(s.MaxConcurrent)
	httpjson.Write(w, http.StatusOK, Settings{MaxConcurrent: h.planner.MaxConcurrent()})
}
