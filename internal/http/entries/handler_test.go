package entries_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/tally/internal/http/auth"
	"github.com/MrJamesThe3rd/tally/internal/http/entries"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/recurring"
)

const userID = "user-1"

var now = time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)

type deps struct {
	repo       *ledger.MockRepository
	store      *recurring.MockEntryStore
	tombstones *recurring.MockTombstoneStore
	router     http.Handler
}

func setup(t *testing.T) *deps {
	t.Helper()

	ctrl := gomock.NewController(t)
	d := &deps{
		repo:       ledger.NewMockRepository(ctrl),
		store:      recurring.NewMockEntryStore(ctrl),
		tombstones: recurring.NewMockTombstoneStore(ctrl),
	}

	h := entries.NewHandler(
		ledger.NewService(d.repo),
		recurring.NewProjector(d.store, d.tombstones, nil),
		recurring.NewSeries(d.store, d.tombstones),
		func() time.Time { return now },
	)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
		})
	})
	r.Route("/entries", h.Routes)
	d.router = r

	return d
}

func (d *deps) do(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	d.router.ServeHTTP(rec, req)

	return rec
}

func rentEntry(date string) *ledger.Entry {
	return &ledger.Entry{
		ID:          uuid.New(),
		UserID:      userID,
		Date:        date,
		Description: "Rent",
		Amount:      decimal.NewFromInt(-1200),
		Category:    "rent-mortgage",
		Confirmed:   true,
		Recurring:   &ledger.Recurrence{Frequency: ledger.FrequencyMonthly, AnchorDay: 15},
	}
}

func TestHandler_ListReconcilesFirst(t *testing.T) {
	d := setup(t)

	stored := []*ledger.Entry{rentEntry("2026-01-15")}

	gomock.InOrder(
		d.store.EXPECT().ListEntries(gomock.Any(), userID, ledger.ListFilter{}).Return(stored, nil),
		d.tombstones.EXPECT().DeletedDates(gomock.Any(), userID).Return(nil, nil),
		d.store.EXPECT().CreateEntry(gomock.Any(), gomock.Any()).DoAndReturn(func(_ any, e *ledger.Entry) error {
			assert.Equal(t, "2026-02-15", e.Date)
			return nil
		}),
		d.repo.EXPECT().
			ListEntries(gomock.Any(), userID, ledger.ListFilter{StartDate: "2026-02-01", EndDate: "2026-02-28"}).
			Return([]*ledger.Entry{rentEntry("2026-02-15")}, nil),
	)

	rec := d.do(http.MethodGet, "/entries?month=2026-02", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "2026-02-15", got[0]["date"])
	assert.Equal(t, "-1200", got[0]["amount"])
	assert.Equal(t, "monthly", got[0]["recurring"].(map[string]any)["frequency"])
}

func TestHandler_ListStorageUnavailable(t *testing.T) {
	d := setup(t)

	d.store.EXPECT().ListEntries(gomock.Any(), userID, gomock.Any()).Return(nil, errors.New("connection reset"))

	rec := d.do(http.MethodGet, "/entries", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandler_ListBadMonth(t *testing.T) {
	d := setup(t)

	rec := d.do(http.MethodGet, "/entries?month=Feb", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_CreateOneOff(t *testing.T) {
	d := setup(t)

	d.repo.EXPECT().CreateEntry(gomock.Any(), gomock.Any()).DoAndReturn(func(_ any, e *ledger.Entry) error {
		assert.Equal(t, "coffee-shops", e.Category)
		assert.Nil(t, e.Recurring)
		e.ID = uuid.New()

		return nil
	})

	rec := d.do(http.MethodPost, "/entries",
		`{"date":"2026-02-09","description":"Latte","amount":"-4.50","category":"Coffee Shops","confirmed":true}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestHandler_CreateSeries(t *testing.T) {
	d := setup(t)

	d.store.EXPECT().CreateEntries(gomock.Any(), gomock.Any()).DoAndReturn(func(_ any, es []*ledger.Entry) error {
		require.Len(t, es, 2)
		assert.Equal(t, 15, es[0].Recurring.AnchorDay)

		for _, e := range es {
			e.ID = uuid.New()
		}

		return nil
	})

	rec := d.do(http.MethodPost, "/entries",
		`{"date":"2026-01-15","description":"Rent","amount":"-1200","category":"rent-mortgage",
		  "recurring":{"frequency":"monthly"}}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var got struct {
		IDs []uuid.UUID `json:"ids"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got.IDs, 2)
}

func TestHandler_CreateInvalid(t *testing.T) {
	d := setup(t)

	rec := d.do(http.MethodPost, "/entries", `{"date":"yesterday","description":"x","amount":"1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = d.do(http.MethodPost, "/entries", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Delete(t *testing.T) {
	t.Run("OneOff", func(t *testing.T) {
		d := setup(t)

		e := rentEntry("2026-02-01")
		e.Recurring = nil

		d.repo.EXPECT().GetEntry(gomock.Any(), userID, e.ID).Return(e, nil)
		d.repo.EXPECT().DeleteEntry(gomock.Any(), userID, e.ID).Return(nil)

		rec := d.do(http.MethodDelete, "/entries/"+e.ID.String(), "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"deleted":1}`, rec.Body.String())
	})

	t.Run("Occurrence", func(t *testing.T) {
		d := setup(t)

		e := rentEntry("2026-02-15")

		d.repo.EXPECT().GetEntry(gomock.Any(), userID, e.ID).Return(e, nil)
		d.tombstones.EXPECT().AddDeletedDate(gomock.Any(), userID, e.SeriesKey(), "2026-02-15").Return(nil)
		d.store.EXPECT().DeleteEntry(gomock.Any(), userID, e.ID).Return(nil)

		rec := d.do(http.MethodDelete, "/entries/"+e.ID.String()+"?scope=occurrence", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Series", func(t *testing.T) {
		d := setup(t)

		a, b := rentEntry("2026-01-15"), rentEntry("2026-02-15")

		d.repo.EXPECT().GetEntry(gomock.Any(), userID, a.ID).Return(a, nil)
		d.store.EXPECT().ListEntries(gomock.Any(), userID, ledger.ListFilter{}).Return([]*ledger.Entry{a, b}, nil)
		d.store.EXPECT().DeleteEntry(gomock.Any(), userID, gomock.Any()).Return(nil).Times(2)

		rec := d.do(http.MethodDelete, "/entries/"+a.ID.String()+"?scope=series", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"deleted":2}`, rec.Body.String())
	})

	t.Run("BadScope", func(t *testing.T) {
		d := setup(t)

		rec := d.do(http.MethodDelete, "/entries/"+uuid.NewString()+"?scope=all", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("NotFound", func(t *testing.T) {
		d := setup(t)

		id := uuid.New()
		d.repo.EXPECT().GetEntry(gomock.Any(), userID, id).Return(nil, ledger.ErrNotFound)

		rec := d.do(http.MethodDelete, "/entries/"+id.String(), "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandler_Update(t *testing.T) {
	d := setup(t)

	e := rentEntry("2026-02-15")
	e.Confirmed = false

	d.repo.EXPECT().GetEntry(gomock.Any(), userID, e.ID).Return(e, nil)
	d.repo.EXPECT().UpdateEntry(gomock.Any(), gomock.Any()).DoAndReturn(func(_ any, got *ledger.Entry) error {
		assert.True(t, got.Confirmed)
		assert.Equal(t, "Rent (flat)", got.Description)

		return nil
	})

	rec := d.do(http.MethodPatch, "/entries/"+e.ID.String(), `{"confirmed":true,"description":"Rent (flat)"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_DeleteMonth(t *testing.T) {
	d := setup(t)

	a, b := rentEntry("2026-02-01"), rentEntry("2026-02-15")

	d.repo.EXPECT().
		ListEntries(gomock.Any(), userID, ledger.ListFilter{StartDate: "2026-02-01", EndDate: "2026-02-28"}).
		Return([]*ledger.Entry{a, b}, nil)
	d.repo.EXPECT().DeleteEntry(gomock.Any(), userID, gomock.Any()).Return(nil).Times(2)

	rec := d.do(http.MethodDelete, "/entries?month=2026-02", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deleted":2}`, rec.Body.String())

	rec = d.do(http.MethodDelete, "/entries", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Totals(t *testing.T) {
	d := setup(t)

	coffee := rentEntry("2026-02-03")
	coffee.Category = "coffee-shops"
	coffee.Amount = decimal.RequireFromString("-4.5")

	d.repo.EXPECT().ListEntries(gomock.Any(), userID, gomock.Any()).Return([]*ledger.Entry{coffee, rentEntry("2026-02-15")}, nil)

	rec := d.do(http.MethodGet, "/entries/totals?month=2026-02", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"category":"rent-mortgage","total":"1200"},{"category":"coffee-shops","total":"4.5"}]`, rec.Body.String())
}

func TestHandler_Reconcile(t *testing.T) {
	d := setup(t)

	d.store.EXPECT().ListEntries(gomock.Any(), userID, ledger.ListFilter{}).Return(nil, nil)
	d.tombstones.EXPECT().DeletedDates(gomock.Any(), userID).Return(nil, nil)

	rec := d.do(http.MethodPost, "/entries/reconcile", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"inserted":0}`, rec.Body.String())
}
