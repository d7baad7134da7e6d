package importer

import (
	"errors"
	"io"

	"github.com/MrJamesThe3rd/tally/internal/ledger"
)

var (
	ErrUnknownProfile = errors.New("unknown statement profile")
	ErrNoProfileMatch = errors.New("no statement profile matches the file header")
)

// Options selects how a statement is read. Empty fields mean auto-detect.
type Options struct {
	Profile string
	Charset string
}

type Importer interface {
	Parse(r io.Reader, opts Options) ([]ledger.CreateParams, error)
}
