package importer_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/MrJamesThe3rd/tally/internal/importer"
)

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func parse(t *testing.T, csv string, opts importer.Options) []ledgerRow {
	t.Helper()

	params, err := importer.NewParser().Parse(strings.NewReader(csv), opts)
	require.NoError(t, err)

	rows := make([]ledgerRow, len(params))
	for i, p := range params {
		assert.False(t, p.Confirmed)
		assert.Nil(t, p.Recurring)

		rows[i] = ledgerRow{Date: p.Date, Description: p.Description, Amount: p.Amount.String(), Category: p.Category}
	}

	return rows
}

type ledgerRow struct {
	Date        string
	Description string
	Amount      string
	Category    string
}

func TestParser_CGDAccount(t *testing.T) {
	csv := `Consultar saldos e movimentos à ordem - 31-01-2026;"=""0000"""
Nome cliente;JOHN DOE
NIF;"=""123"""

Dados da conta
Conta;0000 - EUR - Conta Extracto
Saldo contabilístico;1.000,00 EUR

Data mov.;Data-valor;Descrição;Montante;Saldo contabilístico após movimento
30-01-2026;30-01-2026;INSTITUTO GESTAO FINA;-588,74;48.825,46
09-01-2026;09-01-2026;TFI Wise;8.608,52;52.532,78
`

	assert.Equal(t, []ledgerRow{
		{Date: "2026-01-30", Description: "INSTITUTO GESTAO FINA", Amount: "-588.74"},
		{Date: "2026-01-09", Description: "TFI Wise", Amount: "8608.52"},
	}, parse(t, csv, importer.Options{}))
}

func TestParser_CGDCard(t *testing.T) {
	csv := `Data;Descrição;Débito;Crédito
12-02-2026;PINGO DOCE;23,45;
14-02-2026;REEMBOLSO;;5,00
`

	assert.Equal(t, []ledgerRow{
		{Date: "2026-02-12", Description: "PINGO DOCE", Amount: "-23.45"},
		{Date: "2026-02-14", Description: "REEMBOLSO", Amount: "5"},
	}, parse(t, csv, importer.Options{}))
}

func TestParser_Generic(t *testing.T) {
	csv := `date,description,amount,category
2026-02-01,Whole Foods,"-1,234.50",Groceries
02/03/2026,Paycheck,2500.00,
2026-02-04,Mystery,-3.00,Not A Category
`

	assert.Equal(t, []ledgerRow{
		{Date: "2026-02-01", Description: "Whole Foods", Amount: "-1234.5", Category: "groceries"},
		{Date: "2026-02-03", Description: "Paycheck", Amount: "2500"},
		{Date: "2026-02-04", Description: "Mystery", Amount: "-3"},
	}, parse(t, csv, importer.Options{}))
}

func TestParser_CardExport(t *testing.T) {
	csv := "Transaction Date\tPost Date\tDescription\tCategory\tAmount\n" +
		"02/05/2026\t02/06/2026\tSTARBUCKS\tCoffee Shops\t($4.75)\n"

	assert.Equal(t, []ledgerRow{
		{Date: "2026-02-05", Description: "STARBUCKS", Amount: "-4.75", Category: "coffee-shops"},
	}, parse(t, csv, importer.Options{}))
}

func TestParser_SplitColumns(t *testing.T) {
	csv := `Date|Description|Debit|Credit
2026-02-01|Rent|1200.00|
2026-02-02|Refund||15.10
`

	assert.Equal(t, []ledgerRow{
		{Date: "2026-02-01", Description: "Rent", Amount: "-1200"},
		{Date: "2026-02-02", Description: "Refund", Amount: "15.1"},
	}, parse(t, csv, importer.Options{}))
}

func TestParser_ForcedProfile(t *testing.T) {
	csv := `Date,Description,Amount
2026-02-01,Coffee,-3.50
`

	rows := parse(t, csv, importer.Options{Profile: "generic"})
	assert.Len(t, rows, 1)

	_, err := importer.NewParser().Parse(strings.NewReader(csv), importer.Options{Profile: "cgd-account"})
	assert.ErrorIs(t, err, importer.ErrNoProfileMatch)

	_, err = importer.NewParser().Parse(strings.NewReader(csv), importer.Options{Profile: "nope"})
	assert.ErrorIs(t, err, importer.ErrUnknownProfile)
}

func TestParser_Latin1Encoding(t *testing.T) {
	utf8CSV := "Data mov.;Descrição;Montante\n30-01-2026;CAFÉ CENTRAL;-10,00\n"

	latin1Bytes, err := charmap.Windows1252.NewEncoder().Bytes([]byte(utf8CSV))
	require.NoError(t, err)

	params, err := importer.NewParser().Parse(bytes.NewReader(latin1Bytes), importer.Options{})
	require.NoError(t, err)
	require.Len(t, params, 1)

	assert.Equal(t, "CAFÉ CENTRAL", params[0].Description)
}

func TestParser_DifferentColumnOrder(t *testing.T) {
	csv := `Random;MetaData
Montante;Descrição;Data mov.;Ignored
-10,00;TEST_ORDER;30-01-2026;XXX
`

	assert.Equal(t, []ledgerRow{
		{Date: "2026-01-30", Description: "TEST_ORDER", Amount: "-10"},
	}, parse(t, csv, importer.Options{}))
}

func TestParser_EmptyFile(t *testing.T) {
	assert.Empty(t, parse(t, "", importer.Options{}))
}

func TestParser_HeaderOnly(t *testing.T) {
	assert.Empty(t, parse(t, `Data mov.;Data-valor;Descrição;Montante`, importer.Options{}))
}

func TestParser_NoMatchingHeader(t *testing.T) {
	_, err := importer.NewParser().Parse(strings.NewReader("foo,bar\n1,2\n"), importer.Options{})
	assert.ErrorIs(t, err, importer.ErrNoProfileMatch)
}

func TestParser_MissingDescription(t *testing.T) {
	csv := `Data mov.;Descrição;Montante
30-01-2026;;-10,00
`

	_, err := importer.NewParser().Parse(strings.NewReader(csv), importer.Options{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "description")
}

func TestParser_LargeAmounts(t *testing.T) {
	csv := `Data mov.;Descrição;Montante
30-01-2026;BIG TRANSFER;-1.234.567,89
`

	params, err := importer.NewParser().Parse(strings.NewReader(csv), importer.Options{})
	require.NoError(t, err)
	require.Len(t, params, 1)

	assert.True(t, amount("-1234567.89").Equal(params[0].Amount))
}

func TestParser_SkipsFooterRows(t *testing.T) {
	csv := `Data mov.;Descrição;Montante
30-01-2026;TEST;-10,00
Totais;;;;
31-01-2026;ZERO;0,00
`

	assert.Len(t, parse(t, csv, importer.Options{}), 1)
}

func TestProfileNames(t *testing.T) {
	names := importer.ProfileNames()
	assert.Contains(t, names, "generic")
	assert.Contains(t, names, "cgd-account")
}
