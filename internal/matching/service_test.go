package matching_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/matching"
)

func TestService_Learn(t *testing.T) {
	tests := []struct {
		name      string
		category  string
		setupMock func(m *matching.MockRepository)
		wantID    string
		wantErr   error
	}{
		{
			name:     "ByName",
			category: "Coffee Shops",
			setupMock: func(m *matching.MockRepository) {
				m.EXPECT().CreateRule(gomock.Any(), "user-1", "STARBUCKS", "coffee-shops").Return(nil)
			},
			wantID: "coffee-shops",
		},
		{
			name:     "LegacyAlias",
			category: "housing",
			setupMock: func(m *matching.MockRepository) {
				m.EXPECT().CreateRule(gomock.Any(), "user-1", "STARBUCKS", "rent-mortgage").Return(nil)
			},
			wantID: "rent-mortgage",
		},
		{
			name:     "Unknown",
			category: "yachts",
			wantErr:  matching.ErrUnknownCategory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := matching.NewMockRepository(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			c, err := matching.NewService(repo).Learn(context.Background(), "user-1", " STARBUCKS ", tt.category)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantID, c.ID)
		})
	}
}

func TestService_Categorize(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := matching.NewMockRepository(ctrl)

	params := []ledger.CreateParams{
		{Description: "STARBUCKS #123"},
		{Description: "ACME PAYROLL", Category: "income"},
		{Description: "UNKNOWN MERCHANT"},
	}

	repo.EXPECT().FindMatch(gomock.Any(), "user-1", "STARBUCKS #123").Return("coffee-shops", nil)
	repo.EXPECT().FindMatch(gomock.Any(), "user-1", "UNKNOWN MERCHANT").Return("", nil)

	require.NoError(t, matching.NewService(repo).Categorize(context.Background(), "user-1", params))
	assert.Equal(t, "coffee-shops", params[0].Category)
	assert.Equal(t, "income", params[1].Category)
	assert.Equal(t, "other", params[2].Category)
}

func TestService_Categorize_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := matching.NewMockRepository(ctrl)

	repo.EXPECT().FindMatch(gomock.Any(), "user-1", gomock.Any()).Return("", errors.New("db error"))

	err := matching.NewService(repo).Categorize(context.Background(), "user-1", []ledger.CreateParams{{Description: "X"}})
	assert.Error(t, err)
}
