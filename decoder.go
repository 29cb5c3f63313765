package strictxml

import (
	"fmt"

	"github.com/lestrrat-go/strictxml/internal/bufq"
)

// position is a snapshot of the decode position, used for diagnostics.
type position struct {
	offset int // bytes consumed from the stream
	line   int // 1-based
	column int // 1-based, counted in codepoints
}

// decoder incrementally decodes the byte queue into Unicode scalar
// values. It only ever consumes complete UTF-8 sequences: if the queue
// ends mid-sequence the partial bytes stay in the queue for the next
// feed, which is what makes arbitrary chunk boundaries safe. Invalid
// sequences (overlong encodings, surrogate halves, out-of-range values)
// are rejected outright; there is no replacement-character fallback.
type decoder struct {
	q   *bufq.Queue
	pos position

	// byte offset where content begins: 0, or the width of a skipped BOM
	docStart int
}

// errNeedMore signals that no complete codepoint (or token) can be formed
// from the currently buffered bytes. It never escapes the package.
var errNeedMore = fmt.Errorf("need more input")

func newDecoder(q *bufq.Queue) *decoder {
	return &decoder{
		q:   q,
		pos: position{line: 1, column: 1},
	}
}

// first-byte classes for strict UTF-8: number of continuation bytes and
// the tightened bounds on the first continuation byte that exclude
// overlong encodings, surrogates and values above U+10FFFF
type acceptRange struct {
	size   int
	lo, hi byte
}

func acceptOf(b0 byte) (acceptRange, bool) {
	switch {
	case b0 < 0x80:
		return acceptRange{size: 1}, true
	case b0 < 0xC2:
		// 0x80..0xBF are stray continuations, 0xC0/0xC1 overlong
		return acceptRange{}, false
	case b0 < 0xE0:
		return acceptRange{size: 2, lo: 0x80, hi: 0xBF}, true
	case b0 == 0xE0:
		return acceptRange{size: 3, lo: 0xA0, hi: 0xBF}, true
	case b0 < 0xED:
		return acceptRange{size: 3, lo: 0x80, hi: 0xBF}, true
	case b0 == 0xED:
		// excludes surrogates U+D800..U+DFFF
		return acceptRange{size: 3, lo: 0x80, hi: 0x9F}, true
	case b0 < 0xF0:
		return acceptRange{size: 3, lo: 0x80, hi: 0xBF}, true
	case b0 == 0xF0:
		return acceptRange{size: 4, lo: 0x90, hi: 0xBF}, true
	case b0 < 0xF4:
		return acceptRange{size: 4, lo: 0x80, hi: 0xBF}, true
	case b0 == 0xF4:
		// excludes values above U+10FFFF
		return acceptRange{size: 4, lo: 0x80, hi: 0x8F}, true
	}
	return acceptRange{}, false
}

// next decodes and consumes one codepoint. It returns errNeedMore when
// the queue holds no complete sequence, and a wrapped ErrInvalidEncoding
// at the first byte that cannot begin or continue a valid sequence.
func (d *decoder) next() (rune, error) {
	buf := d.q.Unread()
	if len(buf) == 0 {
		return 0, errNeedMore
	}

	b0 := buf[0]
	acc, ok := acceptOf(b0)
	if !ok {
		return 0, errorAt(fmt.Errorf("%w: 0x%02x", ErrInvalidEncoding, b0), d.pos)
	}
	if acc.size == 1 {
		d.advance(rune(b0), 1)
		return rune(b0), nil
	}
	if len(buf) < 2 {
		return 0, errNeedMore
	}
	if buf[1] < acc.lo || buf[1] > acc.hi {
		return 0, errorAt(fmt.Errorf("%w: 0x%02x", ErrInvalidEncoding, buf[1]), d.pos)
	}
	r := rune(b0 & (0xFF >> (acc.size + 1)))
	r = r<<6 | rune(buf[1]&0x3F)
	for i := 2; i < acc.size; i++ {
		if len(buf) <= i {
			return 0, errNeedMore
		}
		if buf[i]&0xC0 != 0x80 {
			return 0, errorAt(fmt.Errorf("%w: 0x%02x", ErrInvalidEncoding, buf[i]), d.pos)
		}
		r = r<<6 | rune(buf[i]&0x3F)
	}
	d.advance(r, acc.size)
	return r, nil
}

func (d *decoder) advance(r rune, size int) {
	d.q.Consume(size)
	d.pos.offset += size
	if r == '\n' {
		d.pos.line++
		d.pos.column = 1
	} else {
		d.pos.column++
	}
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// skipBOM drops a leading UTF-8 byte order mark. It reports errNeedMore
// while the buffered prefix is still compatible with a BOM, so a chunk
// boundary inside the mark is handled like any other.
func (d *decoder) skipBOM() error {
	buf := d.q.Unread()
	for i := range utf8BOM {
		if len(buf) <= i {
			return errNeedMore
		}
		if buf[i] != utf8BOM[i] {
			return nil
		}
	}
	d.q.Consume(len(utf8BOM))
	d.pos.offset += len(utf8BOM)
	d.docStart = d.pos.offset
	return nil
}

// pending reports whether consumed input ends with a dangling partial
// sequence, which at end-of-input is a truncation error.
func (d *decoder) pending() bool {
	return d.q.Len() > 0
}
