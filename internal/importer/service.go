package importer

import (
	"io"

	"github.com/MrJamesThe3rd/tally/internal/ledger"
)

type Service struct {
	importer Importer
}

func NewService() *Service {
	return &Service{importer: NewParser()}
}

// Import parses a statement. An empty profile auto-detects the layout from
// the header row.
func (s *Service) Import(r io.Reader, opts Options) ([]ledger.CreateParams, error) {
	return s.importer.Parse(r, opts)
}
