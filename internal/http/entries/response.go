package entries

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/ledger"
)

type recurrenceDTO struct {
	Frequency     ledger.Frequency `json:"frequency"`
	AnchorDay     int              `json:"anchor_day"`
	SeriesEndDate string           `json:"series_end_date,omitempty"`
}

type entryResponse struct {
	ID          uuid.UUID       `json:"id"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Confirmed   bool            `json:"confirmed"`
	Recurring   *recurrenceDTO  `json:"recurring,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   *time.Time      `json:"updated_at,omitempty"`
}

type totalResponse struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

func toRecurrenceDTO(r *ledger.Recurrence) *recurrenceDTO {
	if r == nil {
		return nil
	}

	return &recurrenceDTO{Frequency: r.Frequency, AnchorDay: r.AnchorDay, SeriesEndDate: r.SeriesEndDate}
}

func (d *recurrenceDTO) recurrence() *ledger.Recurrence {
	if d == nil {
		return nil
	}

	return &ledger.Recurrence{Frequency: d.Frequency, AnchorDay: d.AnchorDay, SeriesEndDate: d.SeriesEndDate}
}

func toResponse(e *ledger.Entry) entryResponse {
	return entryResponse{
		ID:          e.ID,
		Date:        e.Date,
		Description: e.Description,
		Amount:      e.Amount,
		Category:    e.Category,
		Confirmed:   e.Confirmed,
		Recurring:   toRecurrenceDTO(e.Recurring),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toResponseList(entries []*ledger.Entry) []entryResponse {
	resp := make([]entryResponse, len(entries))
	for i, e := range entries {
		resp[i] = toResponse(e)
	}

	return resp
}

func toTotals(totals []ledger.CategoryTotal) []totalResponse {
	resp := make([]totalResponse, len(totals))
	for i, t := range totals {
		resp[i] = totalResponse{Category: t.Category, Total: t.Total}
	}

	return resp
}
