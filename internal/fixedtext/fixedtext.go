// Package fixedtext decodes length-prefixed, fixed-capacity text fields (Pascal short strings).
// Byte 0 holds the logical length L; bytes 1..L hold text in a single-byte code page; the rest of the
// capacity is padding and is never read.
package fixedtext

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"

	"poolsim/internal/fault"
)

// CodePage is a single-byte character set.
type CodePage struct {
	Name    string
	charmap *charmap.Charmap
}

// DefaultCodePage is the code page of the plant database.
const DefaultCodePage = "cp1251"

// legacy aliases for names the IANA index does not know.
var aliases = map[string]string{
	"cp1251": "windows-1251",
	"cp1252": "windows-1252",
	"cp866":  "IBM866",
	"cp437":  "IBM437",
	"koi8r":  "KOI8-R",
	"latin1": "ISO-8859-1",
}

// LookupCodePage resolves an IANA name or a legacy cpNNNN alias.
func LookupCodePage(name string) (CodePage, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = DefaultCodePage
	}
	iana := key
	if a, ok := aliases[key]; ok {
		iana = a
	}

	enc, err := ianaindex.IANA.Encoding(iana)
	if err != nil {
		return CodePage{}, fault.Wrap(fault.KindConfig, "codepage "+name, err)
	}
	cm, ok := enc.(*charmap.Charmap)
	if !ok || cm == nil {
		return CodePage{}, fault.New(fault.KindConfig, "codepage "+name, "not a single-byte code page")
	}
	return CodePage{Name: key, charmap: cm}, nil
}

// MustCodePage is LookupCodePage for names known at compile time.
func MustCodePage(name string) CodePage {
	cp, err := LookupCodePage(name)
	if err != nil {
		panic(err)
	}
	return cp
}

// Decode returns the first L payload bytes of field as a string.
func Decode(field []byte, cp CodePage) (string, error) {
	if len(field) == 0 {
		return "", fault.New(fault.KindFormat, "text", "empty field")
	}
	n := int(field[0])
	if n > len(field)-1 {
		return "", fault.New(fault.KindFormat, "text", "length %d exceeds capacity %d", n, len(field)-1)
	}
	if cp.charmap == nil {
		return "", fault.New(fault.KindConfig, "text", "no code page")
	}

	var b strings.Builder
	b.Grow(n)
	for i, c := range field[1 : n+1] {
		r := cp.charmap.DecodeByte(c)
		if r == utf8.RuneError {
			return "", fault.New(fault.KindDecodeText, "text", "byte 0x%02X at %d undefined in %s", c, i+1, cp.Name)
		}
		b.WriteRune(r)
	}
	return b.String(), nil
}

// Encode writes s into a capacity-byte field, zero-padded.
func Encode(s string, capacity int, cp CodePage) ([]byte, error) {
	if capacity < 1 || capacity > 256 {
		return nil, fault.New(fault.KindFormat, "text", "capacity %d out of range", capacity)
	}
	if cp.charmap == nil {
		return nil, fault.New(fault.KindConfig, "text", "no code page")
	}
	out := make([]byte, capacity)
	n := 0
	for _, r := range s {
		if n == capacity-1 {
			return nil, fault.New(fault.KindFormat, "text", "%q longer than %d", s, capacity-1)
		}
		c, ok := cp.charmap.EncodeRune(r)
		if !ok {
			return nil, fault.New(fault.KindFormat, "text", "rune %q not in %s", r, cp.Name)
		}
		n++
		out[n] = c
	}
	out[0] = byte(n)
	return out, nil
}

// String implements fmt.Stringer.
func (cp CodePage) String() string {
	return fmt.Sprintf("codepage(%s)", cp.Name)
}
