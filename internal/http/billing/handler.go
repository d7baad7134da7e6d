package billing

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/tally/internal/billing"
	"github.com/MrJamesThe3rd/tally/internal/entitlement"
	"github.com/MrJamesThe3rd/tally/internal/http/auth"
)

const maxPayload = 64 << 10

type Handler struct {
	svc       *billing.Service
	secret    string
	tolerance time.Duration
	now       func() time.Time
}

func NewHandler(svc *billing.Service, secret string, tolerance time.Duration, now func() time.Time) *Handler {
	return &Handler{svc: svc, secret: secret, tolerance: tolerance, now: now}
}

// WebhookRoutes are called by the billing provider and carry no user token.
func (h *Handler) WebhookRoutes(r chi.Router) {
	r.Post("/webhook", h.webhook)
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/confirm-subscription", h.confirm)
}

func (h *Handler) webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayload))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
			return
		}

		http.Error(w, "failed to read body", http.StatusBadRequest)

		return
	}

	if err := billing.VerifySignature(payload, r.Header.Get(billing.SignatureHeader), h.secret, h.tolerance); err != nil {
		slog.Warn("rejected billing webhook", "error", err)
		http.Error(w, "invalid signature", http.StatusBadRequest)

		return
	}

	ev, err := billing.ParseEvent(payload)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	slog.Info("billing event received", "event_id", ev.ID, "type", ev.Type)

	if err := h.svc.HandleEvent(r.Context(), ev, h.now()); err != nil {
		slog.Error("failed to handle billing event", "event_id", ev.ID, "type", ev.Type, "error", err)
		http.Error(w, "webhook handler failed", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(map[string]bool{"received": true}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type confirmRequest struct {
	SessionID string `json:"session_id"`
}

type confirmResponse struct {
	Plan string `json:"plan"`
}

func (h *Handler) confirm(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.SessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}

	plan, err := h.svc.ConfirmCheckout(r.Context(), userID, req.SessionID, h.now())
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrSessionMismatch):
			http.Error(w, "session does not belong to this user", http.StatusForbidden)
		case errors.Is(err, billing.ErrNoSubscription), errors.Is(err, billing.ErrUnknownPrice):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, entitlement.ErrStorageUnavailable):
			slog.Error("storage unavailable", "error", err)
			http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
		default:
			slog.Error("failed to confirm subscription", "error", err)
			http.Error(w, "failed to confirm subscription", http.StatusInternalServerError)
		}

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(confirmResponse{Plan: plan.String()}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
