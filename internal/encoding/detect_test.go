package encoding_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/korean"

	"github.com/MrJamesThe3rd/tally/internal/encoding"
)

func readAll(t *testing.T, d *encoding.Decoded) string {
	t.Helper()

	got, err := io.ReadAll(d)
	require.NoError(t, err)

	return string(got)
}

func TestNewUTF8Reader_UTF8Passthrough(t *testing.T) {
	input := "Date,Description,Amount\n2026-01-30,Café Olé,-12.50\n"

	d, err := encoding.NewUTF8Reader(bytes.NewReader([]byte(input)), "")
	require.NoError(t, err)
	assert.Equal(t, encoding.UTF8, d.Charset)
	assert.Equal(t, input, readAll(t, d))
}

func TestNewUTF8Reader_Latin1(t *testing.T) {
	// Windows-1252: é = 0xE9
	latin1 := []byte{'C', 'a', 'f', 0xE9, ',', '-', '3', '\n'}

	d, err := encoding.NewUTF8Reader(bytes.NewReader(latin1), "")
	require.NoError(t, err)
	assert.Equal(t, "Café,-3\n", readAll(t, d))
}

func TestNewUTF8Reader_UTF8BOM(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Description,Amount\n")...)

	d, err := encoding.NewUTF8Reader(bytes.NewReader(input), "")
	require.NoError(t, err)
	assert.Equal(t, "Description,Amount\n", readAll(t, d))
}

func TestNewUTF8Reader_UTF16LEBOM(t *testing.T) {
	// "Hi\n" in UTF-16 LE with BOM.
	input := []byte{0xFF, 0xFE, 'H', 0x00, 'i', 0x00, '\n', 0x00}

	d, err := encoding.NewUTF8Reader(bytes.NewReader(input), "")
	require.NoError(t, err)
	assert.Equal(t, encoding.UTF16LE, d.Charset)
	assert.Equal(t, "Hi\n", readAll(t, d))
}

func TestNewUTF8Reader_EUCKRHint(t *testing.T) {
	utf8Text := "날짜,내용,금액\n2026-01-30,스타벅스,-4500\n"

	euckr, err := korean.EUCKR.NewEncoder().Bytes([]byte(utf8Text))
	require.NoError(t, err)

	d, err := encoding.NewUTF8Reader(bytes.NewReader(euckr), "EUC-KR")
	require.NoError(t, err)
	assert.Equal(t, "euc-kr", d.Charset)
	assert.Equal(t, utf8Text, readAll(t, d))
}

func TestNewUTF8Reader_UnknownHint(t *testing.T) {
	_, err := encoding.NewUTF8Reader(bytes.NewReader(nil), "klingon")
	assert.Error(t, err)
}

func TestNewUTF8Reader_Empty(t *testing.T) {
	d, err := encoding.NewUTF8Reader(bytes.NewReader(nil), "")
	require.NoError(t, err)
	assert.Empty(t, readAll(t, d))
}
