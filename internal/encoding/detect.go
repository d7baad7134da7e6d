package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	UTF8        = "UTF-8"
	UTF16LE     = "UTF-16LE"
	UTF16BE     = "UTF-16BE"
	Windows1252 = "windows-1252"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// decoders maps charset names, as reported by chardet or sent by clients, to
// their decoders.
var decoders = map[string]encoding.Encoding{
	"iso-8859-1":   charmap.Windows1252,
	"windows-1252": charmap.Windows1252,
	"iso-8859-9":   charmap.ISO8859_9,
	"iso-8859-15":  charmap.ISO8859_15,
	"euc-kr":       korean.EUCKR,
	"cp949":        korean.EUCKR,
}

// Decoded is a statement stream converted to UTF-8.
type Decoded struct {
	io.Reader
	Charset string
}

// NewUTF8Reader decodes r to UTF-8.
//
// A non-empty hint names the source charset and skips detection. Otherwise:
//  1. BOM (UTF-8 stripped, UTF-16 LE/BE decoded)
//  2. valid UTF-8 passes through
//  3. chardet heuristics
//  4. Windows-1252
func NewUTF8Reader(r io.Reader, hint string) (*Decoded, error) {
	br := bufio.NewReader(r)

	if hint != "" {
		return fromHint(br, hint)
	}

	buf, err := br.Peek(4096)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("peek: %w", err)
	}

	switch {
	case bytes.HasPrefix(buf, bomUTF8):
		_, _ = br.Discard(len(bomUTF8))
		return &Decoded{Reader: br, Charset: UTF8}, nil
	case bytes.HasPrefix(buf, bomUTF16LE):
		return decode(br, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), UTF16LE), nil
	case bytes.HasPrefix(buf, bomUTF16BE):
		return decode(br, unicode.UTF16(unicode.BigEndian, unicode.UseBOM), UTF16BE), nil
	case utf8.Valid(buf):
		return &Decoded{Reader: br, Charset: UTF8}, nil
	}

	result, err := chardet.NewTextDetector().DetectBest(buf)
	if err == nil {
		if result.Charset == UTF8 {
			return &Decoded{Reader: br, Charset: UTF8}, nil
		}

		if enc, ok := decoders[strings.ToLower(result.Charset)]; ok {
			return decode(br, enc, result.Charset), nil
		}
	}

	return decode(br, charmap.Windows1252, Windows1252), nil
}

func fromHint(br *bufio.Reader, hint string) (*Decoded, error) {
	name := strings.ToLower(strings.TrimSpace(hint))
	if name == "utf-8" || name == "utf8" {
		return &Decoded{Reader: br, Charset: UTF8}, nil
	}

	enc, ok := decoders[name]
	if !ok {
		return nil, fmt.Errorf("unsupported charset %q", hint)
	}

	return decode(br, enc, name), nil
}

func decode(r io.Reader, enc encoding.Encoding, charset string) *Decoded {
	return &Decoded{Reader: transform.NewReader(r, enc.NewDecoder()), Charset: charset}
}
