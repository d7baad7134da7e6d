package entries

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/category"
	"github.com/MrJamesThe3rd/tally/internal/http/auth"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/recurring"
)

type Handler struct {
	svc       *ledger.Service
	projector *recurring.Projector
	series    *recurring.Series
	now       func() time.Time
}

func NewHandler(svc *ledger.Service, projector *recurring.Projector, series *recurring.Series, now func() time.Time) *Handler {
	return &Handler{svc: svc, projector: projector, series: series, now: now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Delete("/", h.deleteMonth)
	r.Get("/totals", h.totals)
	r.Post("/reconcile", h.reconcile)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		http.Error(w, "entry not found", http.StatusNotFound)
	case errors.Is(err, ledger.ErrInvalidEntry):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ledger.ErrStorageUnavailable):
		slog.Error("storage unavailable", "error", err)
		http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
	default:
		slog.Error("failed to handle entries request", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// parseFilter reads ?month=YYYY-MM, or start_date/end_date, plus ?confirmed.
func parseFilter(r *http.Request) (ledger.ListFilter, error) {
	q := r.URL.Query()

	var filter ledger.ListFilter

	if month := q.Get("month"); month != "" {
		start, end, err := ledger.MonthRange(month)
		if err != nil {
			return filter, err
		}

		filter.StartDate, filter.EndDate = start, end
	}

	if s := q.Get("start_date"); s != "" {
		if _, err := ledger.ParseDate(s); err != nil {
			return filter, err
		}

		filter.StartDate = s
	}

	if s := q.Get("end_date"); s != "" {
		if _, err := ledger.ParseDate(s); err != nil {
			return filter, err
		}

		filter.EndDate = s
	}

	switch q.Get("confirmed") {
	case "true":
		filter.Confirmed = new(true)
	case "false":
		filter.Confirmed = new(false)
	}

	return filter, nil
}

// list reconciles recurring series before listing so projected occurrences
// are visible.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if _, err := h.projector.Reconcile(r.Context(), userID, h.now()); err != nil {
		writeError(w, err)
		return
	}

	entries, err := h.svc.List(r.Context(), userID, filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponseList(entries))
}

type createEntryRequest struct {
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Confirmed   bool            `json:"confirmed"`
	Recurring   *recurrenceDTO  `json:"recurring,omitempty"`
}

type createSeriesResponse struct {
	IDs []uuid.UUID `json:"ids"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	var req createEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	params := ledger.CreateParams{
		Date:        req.Date,
		Description: req.Description,
		Amount:      req.Amount,
		Category:    categoryID(req.Category),
		Confirmed:   req.Confirmed,
		Recurring:   req.Recurring.recurrence(),
	}

	if params.Recurring != nil {
		if params.Recurring.AnchorDay == 0 {
			if d, err := ledger.ParseDate(params.Date); err == nil {
				params.Recurring.AnchorDay = recurring.AnchorFor(params.Recurring.Frequency, d)
			}
		}

		ids, err := h.series.CreateSeries(r.Context(), userID, params, h.now())
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, createSeriesResponse{IDs: ids})

		return
	}

	e, err := h.svc.Create(r.Context(), userID, params)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(e))
}

// categoryID stores known categories by id; free-form labels are kept as sent.
func categoryID(value string) string {
	if c, ok := category.Resolve(value); ok {
		return c.ID
	}

	return value
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	e, err := h.svc.Get(r.Context(), userID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(e))
}

type updateEntryRequest struct {
	Date        *string          `json:"date,omitempty"`
	Description *string          `json:"description,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Confirmed   *bool            `json:"confirmed,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	e, err := h.svc.Get(r.Context(), userID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	if req.Date != nil {
		e.Date = *req.Date
	}

	if req.Description != nil {
		e.Description = *req.Description
	}

	if req.Amount != nil {
		e.Amount = *req.Amount
	}

	if req.Category != nil {
		e.Category = categoryID(*req.Category)
	}

	if req.Confirmed != nil {
		e.Confirmed = *req.Confirmed
	}

	if err := h.svc.Update(r.Context(), e); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(e))
}

type deleteResponse struct {
	Deleted int `json:"deleted"`
}

// delete removes one entry. For recurring entries ?scope=series removes the
// whole series; the default removes the occurrence and remembers its date.
func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	scope := r.URL.Query().Get("scope")
	if scope != "" && scope != "occurrence" && scope != "series" {
		http.Error(w, "scope must be occurrence or series", http.StatusBadRequest)
		return
	}

	e, err := h.svc.Get(r.Context(), userID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	switch {
	case !e.IsRecurring():
		err = h.svc.Delete(r.Context(), userID, id)
	case scope == "series":
		var n int

		n, err = h.series.DeleteSeries(r.Context(), userID, e)
		if err == nil {
			writeJSON(w, http.StatusOK, deleteResponse{Deleted: n})
			return
		}
	default:
		err = h.series.DeleteOccurrence(r.Context(), userID, e)
	}

	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, deleteResponse{Deleted: 1})
}

func (h *Handler) deleteMonth(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	month := r.URL.Query().Get("month")
	if month == "" {
		http.Error(w, "month query parameter is required", http.StatusBadRequest)
		return
	}

	n, err := h.svc.DeleteMonth(r.Context(), userID, month)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, deleteResponse{Deleted: n})
}

func (h *Handler) totals(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, err)
		return
	}

	totals, err := h.svc.CategoryTotals(r.Context(), userID, filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTotals(totals))
}

type reconcileResponse struct {
	Inserted int `json:"inserted"`
}

func (h *Handler) reconcile(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	n, err := h.projector.Reconcile(r.Context(), userID, h.now())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reconcileResponse{Inserted: n})
}
