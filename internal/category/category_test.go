package category_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/tally/internal/category"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		wantID string
		wantOK bool
	}{
		{name: "ByID", value: "groceries", wantID: "groceries", wantOK: true},
		{name: "ByIDUpperCase", value: " Gas-Fuel ", wantID: "gas-fuel", wantOK: true},
		{name: "ByName", value: "rent & mortgage", wantID: "rent-mortgage", wantOK: true},
		{name: "Legacy", value: "Food and Grocery", wantID: "groceries", wantOK: true},
		{name: "LegacyTransportation", value: "transportation", wantID: "gas-fuel", wantOK: true},
		{name: "Unknown", value: "crypto"},
		{name: "Empty", value: "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := category.Resolve(tt.value)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, c.ID)
		})
	}
}

func TestDefaults_ReturnsCopy(t *testing.T) {
	d := category.Defaults()
	d[0].Name = "changed"

	c, ok := category.ByID(d[0].ID)
	assert.True(t, ok)
	assert.NotEqual(t, "changed", c.Name)
	assert.Len(t, category.Names(), len(d))
}
