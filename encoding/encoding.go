// Package encoding maps encoding names, as they appear in an XML
// declaration, onto golang.org/x/text/encoding implementations. It
// exists for diagnostics: the parser only ever accepts UTF-8, but a
// document declaring a real, recognized encoding should be rejected as
// "unsupported encoding" rather than "unknown name". The x/text package
// names clash with the stdlib, so they are hidden behind this package.
package encoding

import (
	"strings"

	enc "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
)

// UTF8 is the sole encoding the parser accepts. Callers compare the
// result of Load against this.
var UTF8 = unicode.UTF8

// Load resolves an encoding name, case-insensitively, to its
// implementation. It returns nil for names it does not recognize.
func Load(name string) enc.Encoding {
	switch strings.ToLower(name) {
	case "utf8", "utf-8":
		return unicode.UTF8
	case "utf-16", "utf16":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case "utf-16be":
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	case "utf-16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	case "iso-8859-1", "latin1", "windows1252":
		return charmap.Windows1252
	case "iso-8859-2":
		return charmap.ISO8859_2
	case "iso-8859-5":
		return charmap.ISO8859_5
	case "iso-8859-15":
		return charmap.ISO8859_15
	case "koi8r":
		return charmap.KOI8R
	case "windows1251":
		return charmap.Windows1251
	case "shift_jis", "shift-jis", "shiftjis", "cp932":
		return japanese.ShiftJIS
	case "euc-jp":
		return japanese.EUCJP
	case "iso-2022-jp":
		return japanese.ISO2022JP
	}
	return nil
}
