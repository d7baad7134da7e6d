package ledger

import "errors"

var (
	ErrNotFound           = errors.New("entry not found")
	ErrInvalidEntry       = errors.New("invalid entry")
	ErrStorageUnavailable = errors.New("storage unavailable")
)
