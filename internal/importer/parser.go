package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/category"
	enc "github.com/MrJamesThe3rd/tally/internal/encoding"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
)

var delimiters = []rune{';', ',', '\t', '|'}

// Parser reads bank CSV exports into unconfirmed ledger entries. The header
// row may be preceded by any amount of preamble; the first row matching a
// profile's columns is taken as the header.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader, opts Options) ([]ledger.CreateParams, error) {
	var forced *Profile

	if opts.Profile != "" {
		prof, ok := lookupProfile(opts.Profile)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownProfile, opts.Profile)
		}

		forced = prof
	}

	utf8r, err := enc.NewUTF8Reader(r, opts.Charset)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read statement: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = detectDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	profile, cols, headerIdx := detectProfile(rows, forced)
	if profile == nil {
		if len(rows) == 1 {
			return nil, nil
		}

		return nil, ErrNoProfileMatch
	}

	return parseRows(profile, cols, rows[headerIdx+1:], headerIdx+1)
}

// detectDelimiter picks the candidate separator that appears most often on the
// first lines of the file.
func detectDelimiter(data []byte) rune {
	counts := make(map[rune]int, len(delimiters))
	sc := bufio.NewScanner(bytes.NewReader(data))

	for i := 0; i < 20 && sc.Scan(); i++ {
		line := sc.Text()
		for _, d := range delimiters {
			counts[d] += strings.Count(line, string(d))
		}
	}

	best := ','
	for _, d := range delimiters {
		if counts[d] > counts[best] {
			best = d
		}
	}

	return best
}

// colIndex maps lower-cased column names to their index in the row.
type colIndex map[string]int

func (c colIndex) get(name string) int {
	if name == "" {
		return -1
	}

	if i, ok := c[normalize(name)]; ok {
		return i
	}

	return -1
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// detectProfile scans rows for a header matching forced, or any known profile
// when forced is nil. It returns the profile, the column index and the
// header row index.
func detectProfile(rows [][]string, forced *Profile) (*Profile, colIndex, int) {
	candidates := profiles
	if forced != nil {
		candidates = []Profile{*forced}
	}

	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			if name := normalize(cell); name != "" {
				if _, dup := cols[name]; !dup {
					cols[name] = i
				}
			}
		}

		for i := range candidates {
			if matchesProfile(&candidates[i], cols) {
				return &candidates[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if cols.get(name) < 0 {
			return false
		}
	}

	return true
}

// parseRows extracts entries from data rows. Rows without a parseable date or
// a non-zero amount are footers or totals and are skipped.
// headerRowNum is the 0-based index of the header in the file.
func parseRows(p *Profile, cols colIndex, rows [][]string, headerRowNum int) ([]ledger.CreateParams, error) {
	dateIdx := cols.get(p.DateCol)
	descIdx := cols.get(p.DescCol)
	catIdx := cols.get(p.CategoryCol)

	var out []ledger.CreateParams

	for i, row := range rows {
		rowNum := headerRowNum + i + 2

		date, ok := parseDate(p, cellValue(row, dateIdx))
		if !ok {
			continue
		}

		desc := cellValue(row, descIdx)
		if desc == "" {
			return nil, fmt.Errorf("row %d: missing description", rowNum)
		}

		amount, ok := rowAmount(p, cols, row)
		if !ok {
			continue
		}

		out = append(out, ledger.CreateParams{
			Date:        date,
			Description: desc,
			Amount:      amount,
			Category:    resolveCategory(cellValue(row, catIdx)),
		})
	}

	return out, nil
}

func parseDate(p *Profile, s string) (string, bool) {
	if s == "" {
		return "", false
	}

	for _, layout := range p.DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return ledger.FormatDate(t), true
		}
	}

	return "", false
}

func rowAmount(p *Profile, cols colIndex, row []string) (decimal.Decimal, bool) {
	switch p.AmountMode {
	case amountSingle:
		return cellAmount(row, cols.get(p.AmountCol), p.Decimal)
	case amountSplit:
		if d, ok := cellAmount(row, cols.get(p.DebitCol), p.Decimal); ok {
			return d.Abs().Neg(), true
		}

		if d, ok := cellAmount(row, cols.get(p.CreditCol), p.Decimal); ok {
			return d.Abs(), true
		}
	}

	return decimal.Zero, false
}

func cellAmount(row []string, idx int, sep rune) (decimal.Decimal, bool) {
	s := cellValue(row, idx)
	if s == "" {
		return decimal.Zero, false
	}

	d, err := parseAmount(s, sep)
	if err != nil || d.IsZero() {
		return decimal.Zero, false
	}

	return d, true
}

// resolveCategory maps a bank-supplied category onto a known one. Unknown
// values are dropped so the caller can categorize the entry itself.
func resolveCategory(value string) string {
	if value == "" {
		return ""
	}

	if c, ok := category.Resolve(value); ok {
		return c.ID
	}

	return ""
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
