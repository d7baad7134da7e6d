package entitlement

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/tally/internal/entitlement"
	"github.com/MrJamesThe3rd/tally/internal/http/auth"
)

type Handler struct {
	svc *entitlement.Service
	now func() time.Time
}

func NewHandler(svc *entitlement.Service, now func() time.Time) *Handler {
	return &Handler{svc: svc, now: now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/status", h.status)
	r.Post("/usage", h.recordUsage)
}

type statusResponse struct {
	CanImport bool       `json:"can_import"`
	Remaining int        `json:"remaining"`
	Limit     int        `json:"limit"`
	Plan      string     `json:"plan"`
	Used      int        `json:"used"`
	PeriodEnd *time.Time `json:"period_end,omitempty"`
}

type usageResponse struct {
	Allowed   bool `json:"allowed"`
	Remaining int  `json:"remaining"`
}

// toStatusResponse renders st as returned by the status endpoint.
func toStatusResponse(st entitlement.Status) statusResponse {
	return statusResponse{
		CanImport: st.CanImport,
		Remaining: st.Remaining,
		Limit:     st.Limit,
		Plan:      st.Plan.String(),
		Used:      st.Used,
		PeriodEnd: st.PeriodEnd,
	}
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, entitlement.ErrStorageUnavailable) {
		slog.Error("storage unavailable", "error", err)
		http.Error(w, "storage unavailable", http.StatusServiceUnavailable)

		return
	}

	slog.Error("failed to handle entitlement request", "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	st, err := h.svc.CheckStatus(r.Context(), userID, h.now())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, toStatusResponse(st))
}

// recordUsage accounts for an import completed outside the import endpoint.
func (h *Handler) recordUsage(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	usage, err := h.svc.RecordImport(r.Context(), userID, h.now())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, usageResponse{Allowed: usage.Allowed, Remaining: usage.Remaining})
}
