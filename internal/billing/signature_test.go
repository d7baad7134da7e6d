package billing_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/tally/internal/billing"
)

func TestVerifySignature(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)
	now := time.Now()
	valid := billing.SignPayload(payload, "whsec_test", now)
	ts, sig, _ := strings.Cut(valid, ",")

	tests := []struct {
		name      string
		payload   []byte
		header    string
		secret    string
		tolerance time.Duration
		wantErr   bool
	}{
		{name: "Valid", payload: payload, header: valid, secret: "whsec_test", tolerance: 5 * time.Minute},
		{
			name: "WithinTolerance", payload: payload, secret: "whsec_test", tolerance: 5 * time.Minute,
			header: billing.SignPayload(payload, "whsec_test", now.Add(-4*time.Minute)),
		},
		{
			name: "SecondSignatureMatches", payload: payload, secret: "whsec_test", tolerance: 5 * time.Minute,
			header: ts + ",v1=deadbeef," + sig,
		},
		{
			name: "ToleranceDisabled", payload: payload, secret: "whsec_test",
			header: billing.SignPayload(payload, "whsec_test", now.Add(-time.Hour)),
		},
		{
			name: "Expired", payload: payload, secret: "whsec_test", tolerance: 5 * time.Minute, wantErr: true,
			header: billing.SignPayload(payload, "whsec_test", now.Add(-6*time.Minute)),
		},
		{name: "WrongSecret", payload: payload, header: valid, secret: "whsec_other", tolerance: 5 * time.Minute, wantErr: true},
		{name: "TamperedPayload", payload: []byte(`{"id":"evt_2"}`), header: valid, secret: "whsec_test", tolerance: 5 * time.Minute, wantErr: true},
		{name: "MissingTimestamp", payload: payload, header: sig, secret: "whsec_test", tolerance: 5 * time.Minute, wantErr: true},
		{name: "Empty", payload: payload, header: "", secret: "whsec_test", tolerance: 5 * time.Minute, wantErr: true},
		{name: "NoSecret", payload: payload, header: valid, secret: "", tolerance: 5 * time.Minute, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := billing.VerifySignature(tt.payload, tt.header, tt.secret, tt.tolerance)
			if tt.wantErr {
				assert.ErrorIs(t, err, billing.ErrInvalidSignature)
				return
			}

			assert.NoError(t, err)
		})
	}
}
