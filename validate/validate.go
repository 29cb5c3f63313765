// Package validate classifies strings and characters against the Name,
// NCName and character-data productions of the XML 1.0 grammar. The
// predicates are pure and hold no state, so the parser, code generators
// and unrelated callers can share them without synchronization.
//
// The codepoint tables below are transcribed directly from XML 1.0
// §2.2 (Char), §2.3 [4]/[4a] (NameStartChar/NameChar) and Namespaces in
// XML 1.0 (NCName = Name minus the colon).
package validate

import (
	"errors"
	"fmt"
)

// ErrEmptyName is returned when a Name or NCName has no characters.
var ErrEmptyName = errors.New("Name must have at least one character")

// InvalidCharError reports the first character that put a string outside
// its production.
type InvalidCharError struct {
	Rune rune
}

func (e InvalidCharError) Error() string {
	return fmt.Sprintf("character U+%04X is not allowed", e.Rune)
}

type runeRange struct {
	lo, hi rune
}

var nameStartRanges = []runeRange{
	{':', ':'},
	{'A', 'Z'},
	{'_', '_'},
	{'a', 'z'},
	{0xC0, 0xD6},
	{0xD8, 0xF6},
	{0xF8, 0x2FF},
	{0x370, 0x37D},
	{0x37F, 0x1FFF},
	{0x200C, 0x200D},
	{0x2070, 0x218F},
	{0x2C00, 0x2FEF},
	{0x3001, 0xD7FF},
	{0xF900, 0xFDCF},
	{0xFDF0, 0xFFFD},
	{0x10000, 0xEFFFF},
}

var nameRanges = []runeRange{
	{'-', '-'},
	{'.', '.'},
	{'0', '9'},
	{':', ':'},
	{'A', 'Z'},
	{'_', '_'},
	{'a', 'z'},
	{0xB7, 0xB7},
	{0xC0, 0xD6},
	{0xD8, 0xF6},
	{0xF8, 0x2FF},
	{0x300, 0x36F},
	{0x370, 0x37D},
	{0x37F, 0x1FFF},
	{0x200C, 0x200D},
	{0x203F, 0x2040},
	{0x2070, 0x218F},
	{0x2C00, 0x2FEF},
	{0x3001, 0xD7FF},
	{0xF900, 0xFDCF},
	{0xFDF0, 0xFFFD},
	{0x10000, 0xEFFFF},
}

func inRanges(c rune, rs []runeRange) bool {
	for _, r := range rs {
		if r.lo <= c && c <= r.hi {
			return true
		}
	}
	return false
}

// IsNameStartChar reports whether c may begin an XML Name.
func IsNameStartChar(c rune) bool {
	return inRanges(c, nameStartRanges)
}

// IsNameChar reports whether c may continue an XML Name.
func IsNameChar(c rune) bool {
	return inRanges(c, nameRanges)
}

// IsNCNameStartChar reports whether c may begin an NCName. NCName forbids
// the colon that Name permits, since the colon separates prefix from
// local name.
func IsNCNameStartChar(c rune) bool {
	return c != ':' && inRanges(c, nameStartRanges)
}

// IsNCNameChar reports whether c may continue an NCName.
func IsNCNameChar(c rune) bool {
	return c != ':' && inRanges(c, nameRanges)
}

// IsChar reports whether c is a valid XML 1.0 Char: tab, line feed,
// carriage return, or any scalar value outside the control and
// permanently-unassigned exclusions. Character data and attribute values
// may contain exactly these.
func IsChar(c rune) bool {
	switch {
	case c == 0x09 || c == 0x0A || c == 0x0D:
		return true
	case c >= 0x20 && c <= 0xD7FF:
		return true
	case c >= 0xE000 && c <= 0xFFFD:
		return true
	case c >= 0x10000 && c <= 0x10FFFF:
		return true
	}
	return false
}

// ValidateName checks s against the Name production.
func ValidateName(s string) error {
	first := true
	for _, c := range s {
		if first {
			if !IsNameStartChar(c) {
				return InvalidCharError{Rune: c}
			}
			first = false
			continue
		}
		if !IsNameChar(c) {
			return InvalidCharError{Rune: c}
		}
	}
	if first {
		return ErrEmptyName
	}
	return nil
}

// ValidateNCName checks s against the NCName production.
func ValidateNCName(s string) error {
	first := true
	for _, c := range s {
		if first {
			if !IsNCNameStartChar(c) {
				return InvalidCharError{Rune: c}
			}
			first = false
			continue
		}
		if !IsNCNameChar(c) {
			return InvalidCharError{Rune: c}
		}
	}
	if first {
		return ErrEmptyName
	}
	return nil
}

// ValidateCData checks that every character of s is a valid XML Char.
// "CData" here means validated character data, not the CDATA
// marked-section syntax.
func ValidateCData(s string) error {
	for _, c := range s {
		if !IsChar(c) {
			return InvalidCharError{Rune: c}
		}
	}
	return nil
}
