package entitlement

import "errors"

var (
	ErrNotFound           = errors.New("entitlement record not found")
	ErrInvalidPlan        = errors.New("invalid plan")
	ErrStorageUnavailable = errors.New("storage unavailable")
)
