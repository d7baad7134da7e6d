package importer

import "strings"

// amountMode determines how amounts are extracted from a row.
type amountMode int

const (
	// amountSingle is one signed column, e.g. "Amount" holding "-10.00".
	amountSingle amountMode = iota
	// amountSplit is separate debit and credit columns.
	amountSplit
)

// Profile describes the column layout of a bank CSV export. Column names are
// matched case-insensitively.
type Profile struct {
	Name        string
	DateCol     string
	DescCol     string
	AmountMode  amountMode
	AmountCol   string // amountSingle
	DebitCol    string // amountSplit
	CreditCol   string // amountSplit
	CategoryCol string // optional
	DateLayouts []string
	// Decimal is the decimal separator; zero infers it per cell.
	Decimal rune
}

func (p *Profile) requiredCols() []string {
	cols := []string{p.DateCol, p.DescCol}

	switch p.AmountMode {
	case amountSingle:
		cols = append(cols, p.AmountCol)
	case amountSplit:
		cols = append(cols, p.DebitCol, p.CreditCol)
	}

	return cols
}

var isoLayouts = []string{"2006-01-02", "01/02/2006", "1/2/2006", "2006/01/02"}

var euLayouts = []string{"02-01-2006", "02/01/2006", "02.01.2006", "2006-01-02"}

// profiles is tried in order during auto-detection; more specific layouts come
// first so they are not shadowed by the generic ones.
var profiles = []Profile{
	{
		Name:        "cgd-card",
		DateCol:     "Data",
		DescCol:     "Descrição",
		AmountMode:  amountSplit,
		DebitCol:    "Débito",
		CreditCol:   "Crédito",
		DateLayouts: euLayouts,
		Decimal:     ',',
	},
	{
		Name:        "cgd-statement",
		DateCol:     "Data mov.",
		DescCol:     "Descrição",
		AmountMode:  amountSingle,
		AmountCol:   "Movimento",
		DateLayouts: euLayouts,
		Decimal:     ',',
	},
	{
		Name:        "cgd-account",
		DateCol:     "Data mov.",
		DescCol:     "Descrição",
		AmountMode:  amountSingle,
		AmountCol:   "Montante",
		DateLayouts: euLayouts,
		Decimal:     ',',
	},
	{
		Name:        "card",
		DateCol:     "Transaction Date",
		DescCol:     "Description",
		AmountMode:  amountSingle,
		AmountCol:   "Amount",
		CategoryCol: "Category",
		DateLayouts: isoLayouts,
		Decimal:     '.',
	},
	{
		Name:        "split",
		DateCol:     "Date",
		DescCol:     "Description",
		AmountMode:  amountSplit,
		DebitCol:    "Debit",
		CreditCol:   "Credit",
		CategoryCol: "Category",
		DateLayouts: isoLayouts,
	},
	{
		Name:        "generic",
		DateCol:     "Date",
		DescCol:     "Description",
		AmountMode:  amountSingle,
		AmountCol:   "Amount",
		CategoryCol: "Category",
		DateLayouts: isoLayouts,
	},
}

// ProfileNames lists the supported profiles in detection order.
func ProfileNames() []string {
	names := make([]string, len(profiles))
	for i := range profiles {
		names[i] = profiles[i].Name
	}

	return names
}

func lookupProfile(name string) (*Profile, bool) {
	for i := range profiles {
		if strings.EqualFold(profiles[i].Name, name) {
			return &profiles[i], true
		}
	}

	return nil, false
}
