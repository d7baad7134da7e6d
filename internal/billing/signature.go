package billing

import (
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v81/webhook"
)

var ErrInvalidSignature = errors.New("invalid webhook signature")

// SignatureHeader is the header carrying the webhook signature.
const SignatureHeader = "Stripe-Signature"

// VerifySignature checks the signature header against the raw payload. A zero
// tolerance disables the timestamp check.
func VerifySignature(payload []byte, header, secret string, tolerance time.Duration) error {
	if secret == "" {
		return fmt.Errorf("%w: no secret configured", ErrInvalidSignature)
	}

	var err error
	if tolerance > 0 {
		err = webhook.ValidatePayloadWithTolerance(payload, header, secret, tolerance)
	} else {
		err = webhook.ValidatePayloadIgnoringTolerance(payload, header, secret)
	}

	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	return nil
}

// SignPayload builds a signature header for payload, as the provider would.
func SignPayload(payload []byte, secret string, at time.Time) string {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: at,
	})

	return signed.Header
}
