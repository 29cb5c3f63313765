package strictxml

import (
	"testing"

	"github.com/lestrrat-go/strictxml/internal/bufq"
	"github.com/stretchr/testify/require"
)

type testLexer struct {
	q   *bufq.Queue
	lex *lexer
}

func newTestLexer(input string) *testLexer {
	q := bufq.New()
	q.Append([]byte(input))
	return &testLexer{q: q, lex: newLexer(newDecoder(q))}
}

// drain collects tokens until the lexer asks for more input or fails.
func (tl *testLexer) drain() ([]token, error) {
	var toks []token
	for {
		tok, err := tl.lex.next()
		if err == errNeedMore {
			return toks, nil
		}
		if err != nil {
			return toks, err
		}
		toks = append(toks, tok)
	}
}

func kinds(toks []token) []tokenKind {
	out := make([]tokenKind, 0, len(toks))
	for _, tok := range toks {
		out = append(out, tok.kind)
	}
	return out
}

func TestLexTokenSequence(t *testing.T) {
	tl := newTestLexer(`<a href="x">hi</a>`)
	toks, err := tl.drain()
	require.NoError(t, err, "lex should succeed")
	require.Equal(t, []tokenKind{
		tokStartTagOpen,
		tokAttrName,
		tokAttrValue,
		tokTagClose,
		tokText, // flushed by the '<' of the end tag
		tokEndTagOpen,
		tokTagClose,
	}, kinds(toks))
	require.Equal(t, "hi", toks[4].text)
}

func TestLexTrailingTextHeld(t *testing.T) {
	tl := newTestLexer(`<a>hi`)
	toks, err := tl.drain()
	require.NoError(t, err, "lex should suspend cleanly")
	require.Equal(t, []tokenKind{tokStartTagOpen, tokTagClose}, kinds(toks))

	// the trailing run is still held: more input could extend it
	require.Equal(t, "hi", string(tl.lex.scratch))
	tl.lex.flushText()
	toks, err = tl.drain()
	require.NoError(t, err, "flush should surface the text token")
	require.Equal(t, []tokenKind{tokText}, kinds(toks))
	require.Equal(t, "hi", toks[0].text)
}

func TestLexSelfClose(t *testing.T) {
	tl := newTestLexer(`<a b='1'/>`)
	toks, err := tl.drain()
	require.NoError(t, err, "lex should succeed")
	require.Equal(t, []tokenKind{
		tokStartTagOpen,
		tokAttrName,
		tokAttrValue,
		tokSelfClose,
	}, kinds(toks))
	require.Equal(t, "a", string(toks[0].name))
	require.Equal(t, "b", string(toks[1].name))
	require.Equal(t, "1", toks[2].text)
}

func TestLexResumesMidToken(t *testing.T) {
	tl := newTestLexer(`<elem at`)
	toks, err := tl.drain()
	require.NoError(t, err, "lex should suspend cleanly")
	require.Equal(t, []tokenKind{tokStartTagOpen}, kinds(toks))

	tl.q.Append([]byte(`tr="v">`))
	toks, err = tl.drain()
	require.NoError(t, err, "lex should resume")
	require.Equal(t, []tokenKind{tokAttrName, tokAttrValue, tokTagClose}, kinds(toks))
	require.Equal(t, "attr", string(toks[0].name))
}

func TestLexDeclaration(t *testing.T) {
	tl := newTestLexer(`<?xml version="1.0" encoding="UTF-8" standalone="no"?>`)
	toks, err := tl.drain()
	require.NoError(t, err, "lex should succeed")
	require.Equal(t, []tokenKind{tokXMLDecl}, kinds(toks))

	decl := toks[0].decl
	require.Equal(t, "1.0", decl.Version)
	require.Equal(t, "UTF-8", decl.Encoding)
	require.Equal(t, StandaloneNo, decl.Standalone)
}

func TestLexWhitespaceTolerance(t *testing.T) {
	tl := newTestLexer("<a\n\tb\r\n=\t'1'\n></a\n>")
	toks, err := tl.drain()
	require.NoError(t, err, "whitespace inside tags is insignificant")
	require.Equal(t, []tokenKind{
		tokStartTagOpen,
		tokAttrName,
		tokAttrValue,
		tokTagClose,
		tokEndTagOpen,
		tokTagClose,
	}, kinds(toks))
}

func TestLexErrors(t *testing.T) {
	inputs := map[string]struct {
		input string
		err   error
	}{
		"bare ampersand":          {`<a>& x</a>`, ErrUndeclaredEntity},
		"missing equals":          {`<a b"1">`, ErrEqualSignRequired},
		"unquoted value":          {`<a b=1>`, ErrQuoteRequired},
		"lone slash":              {`<a / >`, ErrIllegalChar},
		"bad name start":          {`<1a>`, ErrIllegalChar},
		"control char in text":    {"<a>\x01</a>", ErrIllegalChar},
		"control char in value":   {"<a b=\"\x01\"/>", ErrIllegalChar},
		"comment":                 {`<!-- hi -->`, ErrForbiddenConstruct},
		"doctype":                 {`<!DOCTYPE a>`, ErrForbiddenConstruct},
		"cdata":                   {`<![CDATA[x]]>`, ErrForbiddenConstruct},
		"cdata end in text":       {`<a>]]></a>`, ErrMisplacedCDataEnd},
		"decl version not first":  {`<?xml encoding="UTF-8"?>`, ErrMalformedDeclaration},
		"decl garbage":            {`<?xml version="1.0" ??>`, ErrMalformedDeclaration},
		"decl missing whitespace": {`<?xml?>`, ErrMalformedDeclaration},
	}
	for name, tc := range inputs {
		t.Run(name, func(t *testing.T) {
			tl := newTestLexer(tc.input)
			_, err := tl.drain()
			require.ErrorIs(t, err, tc.err)
		})
	}
}

func TestLexTextChunking(t *testing.T) {
	big := make([]byte, maxTextChunk+100)
	for i := range big {
		big[i] = 'x'
	}
	tl := newTestLexer("<a>" + string(big) + "</a>")
	toks, err := tl.drain()
	require.NoError(t, err, "lex should succeed")

	// the run exceeds maxTextChunk, so it arrives as more than one
	// token; the parser is responsible for coalescing
	var total int
	var texts int
	for _, tok := range toks {
		if tok.kind == tokText {
			texts++
			total += len(tok.text)
		}
	}
	require.GreaterOrEqual(t, texts, 2)
	require.Equal(t, len(big), total)
}

func TestLexCDataEndRunAcrossChunks(t *testing.T) {
	// the "]]" run is lexer state, so a flush boundary inside it must
	// not hide the violation
	tl := newTestLexer("<a>]")
	_, err := tl.drain()
	require.NoError(t, err, "prefix should lex cleanly")

	tl.q.Append([]byte("]"))
	_, err = tl.drain()
	require.NoError(t, err, "still no violation")

	tl.q.Append([]byte(">"))
	_, err = tl.drain()
	require.ErrorIs(t, err, ErrMisplacedCDataEnd)
}

func TestLexReferencePositions(t *testing.T) {
	tl := newTestLexer(`<a>&#x3042;x</a>`)
	toks, err := tl.drain()
	require.NoError(t, err, "lex should succeed")
	// StartTagOpen, TagClose, then the text is flushed by '<' of the
	// end tag
	require.Equal(t, []tokenKind{
		tokStartTagOpen,
		tokTagClose,
		tokText,
		tokEndTagOpen,
		tokTagClose,
	}, kinds(toks))
	require.Equal(t, "あx", toks[2].text)
	require.Equal(t, 3, toks[2].pos.offset, "text starts at the reference's ampersand")
}
