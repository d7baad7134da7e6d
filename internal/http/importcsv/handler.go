package importcsv

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/entitlement"
	"github.com/MrJamesThe3rd/tally/internal/http/auth"
	"github.com/MrJamesThe3rd/tally/internal/importer"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/matching"
)

type Handler struct {
	importSvc      *importer.Service
	ledgerSvc      *ledger.Service
	matchSvc       *matching.Service
	entitlementSvc *entitlement.Service
	now            func() time.Time
}

func NewHandler(
	importSvc *importer.Service,
	ledgerSvc *ledger.Service,
	matchSvc *matching.Service,
	entitlementSvc *entitlement.Service,
	now func() time.Time,
) *Handler {
	return &Handler{
		importSvc:      importSvc,
		ledgerSvc:      ledgerSvc,
		matchSvc:       matchSvc,
		entitlementSvc: entitlementSvc,
		now:            now,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/profiles", h.profiles)
	r.Post("/", h.importCSV)
	r.Post("/confirm", h.confirmImport)
}

type entryResponse struct {
	ID          uuid.UUID       `json:"id"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Confirmed   bool            `json:"confirmed"`
}

type usageResponse struct {
	Allowed   bool `json:"allowed"`
	Remaining int  `json:"remaining"`
}

type importSuccessResponse struct {
	Imported int             `json:"imported"`
	Entries  []entryResponse `json:"entries"`
	Usage    usageResponse   `json:"usage"`
}

type createParamsDTO struct {
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
}

type conflictDTO struct {
	Incoming createParamsDTO `json:"incoming"`
	Existing entryResponse   `json:"existing"`
}

type importConflictResponse struct {
	New       []createParamsDTO `json:"new"`
	Conflicts []conflictDTO     `json:"conflicts"`
}

type confirmRequest struct {
	Params []createParamsDTO `json:"params"`
}

func (h *Handler) profiles(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, importer.ProfileNames())
}

// importCSV parses an uploaded statement into unconfirmed entries. Imports
// are gated by the caller's entitlement and count against it once stored.
func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	if !h.allowImport(w, r, userID) {
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	params, err := h.importSvc.Import(file, importer.Options{
		Profile: r.FormValue("profile"),
		Charset: r.FormValue("charset"),
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if len(params) == 0 {
		http.Error(w, "no entries found in statement", http.StatusUnprocessableEntity)
		return
	}

	if err := h.matchSvc.Categorize(r.Context(), userID, params); err != nil {
		slog.Warn("failed to categorize import", "error", err)
	}

	result, err := h.ledgerSvc.ImportBatch(r.Context(), userID, params)
	if err != nil {
		writeError(w, err)
		return
	}

	if len(result.Conflicts) > 0 {
		resp := importConflictResponse{
			New:       make([]createParamsDTO, 0, len(result.New)),
			Conflicts: make([]conflictDTO, 0, len(result.Conflicts)),
		}
		for _, p := range result.New {
			resp.New = append(resp.New, toParamsDTO(p))
		}

		for _, c := range result.Conflicts {
			resp.Conflicts = append(resp.Conflicts, conflictDTO{
				Incoming: toParamsDTO(c.Incoming),
				Existing: toEntryResponse(c.Existing),
			})
		}

		writeJSON(w, http.StatusConflict, resp)

		return
	}

	h.respondImported(w, r, userID, result.Imported)
}

// allowImport writes the rejection and reports false when the user's plan
// does not permit another import.
func (h *Handler) allowImport(w http.ResponseWriter, r *http.Request, userID string) bool {
	st, err := h.entitlementSvc.CheckStatus(r.Context(), userID, h.now())
	if err != nil {
		writeError(w, err)
		return false
	}

	if !st.CanImport {
		http.Error(w, "import limit reached for the current plan", http.StatusPaymentRequired)
		return false
	}

	return true
}

// confirmImport stores entries the user kept after resolving conflicts. It is
// gated and counted like a direct import.
func (h *Handler) confirmImport(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if len(req.Params) == 0 {
		http.Error(w, "no entries to import", http.StatusUnprocessableEntity)
		return
	}

	if !h.allowImport(w, r, userID) {
		return
	}

	params := make([]ledger.CreateParams, 0, len(req.Params))
	for _, p := range req.Params {
		params = append(params, ledger.CreateParams{
			Date:        p.Date,
			Description: p.Description,
			Amount:      p.Amount,
			Category:    p.Category,
		})
	}

	entries, err := h.ledgerSvc.CreateBatch(r.Context(), userID, params)
	if err != nil {
		writeError(w, err)
		return
	}

	h.respondImported(w, r, userID, entries)
}

// respondImported records the import against the user's plan. Usage failures
// are logged; the entries are already stored.
func (h *Handler) respondImported(w http.ResponseWriter, r *http.Request, userID string, entries []*ledger.Entry) {
	resp := toSuccessResponse(entries)

	usage, err := h.entitlementSvc.RecordImport(r.Context(), userID, h.now())
	if err != nil {
		slog.Error("failed to record import usage", "user_id", userID, "error", err)
	} else {
		resp.Usage = usageResponse{Allowed: usage.Allowed, Remaining: usage.Remaining}
	}

	writeJSON(w, http.StatusCreated, resp)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrInvalidEntry):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ledger.ErrStorageUnavailable), errors.Is(err, entitlement.ErrStorageUnavailable):
		slog.Error("storage unavailable", "error", err)
		http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
	default:
		slog.Error("failed to import statement", "error", err)
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

func toSuccessResponse(entries []*ledger.Entry) importSuccessResponse {
	responses := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, toEntryResponse(e))
	}

	return importSuccessResponse{
		Imported: len(entries),
		Entries:  responses,
	}
}

func toEntryResponse(e *ledger.Entry) entryResponse {
	return entryResponse{
		ID:          e.ID,
		Date:        e.Date,
		Description: e.Description,
		Amount:      e.Amount,
		Category:    e.Category,
		Confirmed:   e.Confirmed,
	}
}

func toParamsDTO(p ledger.CreateParams) createParamsDTO {
	return createParamsDTO{
		Date:        p.Date,
		Description: p.Description,
		Amount:      p.Amount,
		Category:    p.Category,
	}
}
