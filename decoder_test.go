package strictxml

import (
	"testing"

	"github.com/lestrrat-go/strictxml/internal/bufq"
	"github.com/stretchr/testify/require"
)

func newTestDecoder(input string) *decoder {
	q := bufq.New()
	q.Append([]byte(input))
	return newDecoder(q)
}

func TestDecoderScalars(t *testing.T) {
	d := newTestDecoder("aéあ\U0001F600")
	for _, expected := range []rune{'a', 'é', 'あ', '\U0001F600'} {
		r, err := d.next()
		require.NoError(t, err, "decode should succeed")
		require.Equal(t, expected, r)
	}
	_, err := d.next()
	require.Equal(t, errNeedMore, err, "exhausted input reports errNeedMore")
}

func TestDecoderRejects(t *testing.T) {
	inputs := map[string]string{
		"stray continuation": "\x80",
		"overlong two-byte":  "\xc0\xaf",
		"overlong C1":        "\xc1\x81",
		"overlong three":     "\xe0\x80\x80",
		"surrogate low":      "\xed\xa0\x80",
		"surrogate high":     "\xed\xbf\xbf",
		"overlong four":      "\xf0\x80\x80\x80",
		"above U+10FFFF":     "\xf4\x90\x80\x80",
		"F5 first byte":      "\xf5\x80\x80\x80",
		"bad continuation":   "\xe3\x28\x81",
	}
	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			d := newTestDecoder(input)
			_, err := d.next()
			require.ErrorIs(t, err, ErrInvalidEncoding)
		})
	}
}

func TestDecoderIncomplete(t *testing.T) {
	// every strict prefix of a 4-byte sequence is "need more", not
	// "invalid"
	full := "\xf0\x9f\x98\x80"
	for i := 1; i < len(full); i++ {
		d := newTestDecoder(full[:i])
		_, err := d.next()
		require.Equal(t, errNeedMore, err, "prefix of %d bytes", i)
		require.True(t, d.pending(), "partial bytes stay queued")
	}

	// completing the sequence decodes it
	d := newTestDecoder(full[:2])
	_, err := d.next()
	require.Equal(t, errNeedMore, err)
	d.q.Append([]byte(full[2:]))
	r, err := d.next()
	require.NoError(t, err, "decode should succeed once completed")
	require.Equal(t, '\U0001F600', r)
}

func TestDecoderPosition(t *testing.T) {
	d := newTestDecoder("a\nあb")
	require.Equal(t, position{offset: 0, line: 1, column: 1}, d.pos)

	_, _ = d.next() // a
	require.Equal(t, position{offset: 1, line: 1, column: 2}, d.pos)

	_, _ = d.next() // \n
	require.Equal(t, position{offset: 2, line: 2, column: 1}, d.pos)

	_, _ = d.next() // あ: three bytes, one column
	require.Equal(t, position{offset: 5, line: 2, column: 2}, d.pos)

	_, _ = d.next() // b
	require.Equal(t, position{offset: 6, line: 2, column: 3}, d.pos)
}

func TestDecoderBOM(t *testing.T) {
	t.Run("present", func(t *testing.T) {
		d := newTestDecoder("\xef\xbb\xbfx")
		require.NoError(t, d.skipBOM())
		require.Equal(t, 3, d.docStart)
		r, err := d.next()
		require.NoError(t, err, "decode should succeed")
		require.Equal(t, 'x', r)
	})

	t.Run("absent", func(t *testing.T) {
		d := newTestDecoder("xyz")
		require.NoError(t, d.skipBOM())
		require.Equal(t, 0, d.docStart)
		r, err := d.next()
		require.NoError(t, err, "decode should succeed")
		require.Equal(t, 'x', r)
	})

	t.Run("split", func(t *testing.T) {
		d := newTestDecoder("\xef")
		require.Equal(t, errNeedMore, d.skipBOM())
		d.q.Append([]byte("\xbb\xbfx"))
		require.NoError(t, d.skipBOM())
		r, err := d.next()
		require.NoError(t, err, "decode should succeed")
		require.Equal(t, 'x', r)
	})

	t.Run("lookalike prefix", func(t *testing.T) {
		// 0xEF 0xBB 0xBD is a real codepoint, not a BOM
		d := newTestDecoder("\xef\xbb\xbd")
		require.NoError(t, d.skipBOM())
		r, err := d.next()
		require.NoError(t, err, "decode should succeed")
		require.Equal(t, rune(0xFEFD), r)
	})
}
