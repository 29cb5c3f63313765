package strictxml

import (
	"fmt"
	"strconv"

	"github.com/lestrrat-go/pdebug"
	"github.com/lestrrat-go/strictxml/validate"
)

// lexMode is the lexical mode, the lexer's half of the saved
// continuation that makes mid-token suspension across feed boundaries
// possible. The other half is the scratch accumulators below.
type lexMode int

const (
	lmContent lexMode = iota // character data between tags
	lmMarkup                 // consumed '<'
	lmBang                   // consumed '<!'
	lmPI                     // consumed '<?', matching the decl intro
	lmDeclSpace              // consumed '<?xml', whitespace required
	lmDecl                   // inside declaration, between pseudo-attributes
	lmDeclName               // pseudo-attribute name
	lmDeclEq                 // pseudo-attribute '='
	lmDeclQuote              // pseudo-attribute opening quote
	lmDeclValue              // pseudo-attribute value
	lmDeclMaybeEnd           // consumed '?', expecting '>'
	lmStartTagName
	lmEndTagName
	lmEndTagTail // after end tag name, whitespace then '>'
	lmInTag      // inside a start tag, between attributes
	lmMaybeSelfClose
	lmAttrName
	lmAttrEq
	lmAttrQuote
	lmAttrValue
	lmRef // inside '&'...';'
)

// pseudo-attribute progression within the XML declaration
const (
	declWantVersion = iota
	declWantEncoding
	declWantStandalone
	declWantEnd
)

type lexer struct {
	dec  *decoder
	mode lexMode

	// tokens produced but not yet handed to the parser; a single
	// codepoint can finish more than one token (`>` after a name)
	queue []token

	scratch []rune   // current name/value/text accumulation
	tokPos  position // start of the token being accumulated
	tagPos  position // position of the current '<'
	curPos  position // position of the codepoint being processed

	quote     rune // active value delimiter
	crPending bool // consumed '\r', maybe folding a following '\n'
	cdEnd     int  // length of the current literal "]]" run in text

	refBuf     []rune
	refReturn  lexMode
	refNumeric bool
	refHex     bool

	piIdx int // progress through "xml" after '<?'

	decl     *XMLDecl
	declStep int
	declName []rune
	declPos  position
}

func newLexer(dec *decoder) *lexer {
	return &lexer{dec: dec}
}

// next returns the next complete token. It returns errNeedMore when the
// buffered input ends mid-token; all lexical state is retained so the
// next call resumes exactly where this one stopped.
func (l *lexer) next() (token, error) {
	for {
		if len(l.queue) > 0 {
			tok := l.queue[0]
			copy(l.queue, l.queue[1:])
			l.queue = l.queue[:len(l.queue)-1]
			if pdebug.Enabled {
				pdebug.Printf("lexer: emit %s at line %d column %d", tok.kind, tok.pos.line, tok.pos.column)
			}
			return tok, nil
		}
		l.curPos = l.dec.pos
		r, err := l.dec.next()
		if err != nil {
			return token{}, err
		}
		if err := l.step(r); err != nil {
			return token{}, err
		}
	}
}

func (l *lexer) emit(tok token) {
	l.queue = append(l.queue, tok)
}

// flushText queues the accumulated character data, if any, as a text
// token.
func (l *lexer) flushText() {
	if len(l.scratch) == 0 {
		return
	}
	l.emit(token{kind: tokText, text: string(l.scratch), pos: l.tokPos})
	l.scratch = l.scratch[:0]
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}

func (l *lexer) step(r rune) error {
	switch l.mode {
	case lmContent:
		return l.stepContent(r)
	case lmMarkup:
		return l.stepMarkup(r)
	case lmBang:
		switch r {
		case '-':
			return l.errorf("%w: comments", ErrForbiddenConstruct)
		case '[':
			return l.errorf("%w: CDATA sections", ErrForbiddenConstruct)
		default:
			return l.errorf("%w: markup declarations", ErrForbiddenConstruct)
		}
	case lmPI:
		if l.piIdx < 3 && r == rune("xml"[l.piIdx]) {
			l.piIdx++
			if l.piIdx == 3 {
				l.mode = lmDeclSpace
			}
			return nil
		}
		return l.errorf("%w: processing instructions", ErrForbiddenConstruct)
	case lmDeclSpace:
		if isSpace(r) {
			l.decl = &XMLDecl{}
			l.declStep = declWantVersion
			l.declPos = l.tagPos
			l.mode = lmDecl
			return nil
		}
		if validate.IsNameChar(r) {
			// a target that merely starts with "xml"
			return l.errorf("%w: processing instructions", ErrForbiddenConstruct)
		}
		return l.errorf("%w: whitespace required after '<?xml'", ErrMalformedDeclaration)
	case lmDecl:
		return l.stepDecl(r)
	case lmDeclName:
		return l.stepDeclName(r)
	case lmDeclEq:
		if isSpace(r) {
			return nil
		}
		if r == '=' {
			l.mode = lmDeclQuote
			return nil
		}
		return l.errorf("%w: '=' expected", ErrMalformedDeclaration)
	case lmDeclQuote:
		if isSpace(r) {
			return nil
		}
		if r == '"' || r == '\'' {
			l.quote = r
			l.scratch = l.scratch[:0]
			l.mode = lmDeclValue
			return nil
		}
		return l.errorf("%w: quoted value expected", ErrMalformedDeclaration)
	case lmDeclValue:
		return l.stepDeclValue(r)
	case lmDeclMaybeEnd:
		if r != '>' {
			return l.errorf("%w: '>' expected after '?'", ErrMalformedDeclaration)
		}
		if l.declStep == declWantVersion {
			return l.errorf("%w: version is required", ErrMalformedDeclaration)
		}
		l.emit(token{kind: tokXMLDecl, decl: l.decl, pos: l.declPos})
		l.decl = nil
		l.mode = lmContent
		return nil
	case lmStartTagName:
		return l.stepName(r, tokStartTagOpen, lmInTag)
	case lmEndTagName:
		return l.stepName(r, tokEndTagOpen, lmEndTagTail)
	case lmEndTagTail:
		if isSpace(r) {
			return nil
		}
		if r == '>' {
			l.emit(token{kind: tokTagClose, pos: l.curPos})
			l.mode = lmContent
			return nil
		}
		return l.errorf("%w: %q in end tag", ErrIllegalChar, r)
	case lmInTag:
		return l.stepInTag(r)
	case lmMaybeSelfClose:
		if r != '>' {
			return l.errorf("%w: %q after '/' ('>' expected)", ErrIllegalChar, r)
		}
		l.emit(token{kind: tokSelfClose, pos: l.curPos})
		l.mode = lmContent
		return nil
	case lmAttrName:
		return l.stepAttrName(r)
	case lmAttrEq:
		if isSpace(r) {
			return nil
		}
		if r == '=' {
			l.mode = lmAttrQuote
			return nil
		}
		return l.errorAtf(l.curPos, "%w", ErrEqualSignRequired)
	case lmAttrQuote:
		if isSpace(r) {
			return nil
		}
		if r == '"' || r == '\'' {
			l.quote = r
			l.scratch = l.scratch[:0]
			l.tokPos = l.curPos
			l.crPending = false
			l.mode = lmAttrValue
			return nil
		}
		return l.errorAtf(l.curPos, "%w", ErrQuoteRequired)
	case lmAttrValue:
		return l.stepAttrValue(r)
	case lmRef:
		return l.stepRef(r)
	}
	panic("strictxml: unreachable lexer mode")
}

func (l *lexer) stepContent(r rune) error {
	if l.crPending {
		l.crPending = false
		if r == '\n' {
			return nil // \r\n already folded to \n
		}
	}
	switch r {
	case '<':
		l.flushText()
		l.tagPos = l.curPos
		l.cdEnd = 0
		l.mode = lmMarkup
		return nil
	case '&':
		l.startRef(lmContent)
		return nil
	case '\r':
		l.appendText('\n')
		l.crPending = true
		return nil
	case ']':
		l.cdEnd++
		l.appendText(r)
		return nil
	case '>':
		if l.cdEnd >= 2 {
			return l.errorf("%w", ErrMisplacedCDataEnd)
		}
		l.appendText(r)
		return nil
	}
	if !validate.IsChar(r) {
		return l.errorf("%w: U+%04X in character data", ErrIllegalChar, r)
	}
	l.cdEnd = 0
	l.appendText(r)
	return nil
}

func (l *lexer) appendText(r rune) {
	if len(l.scratch) == 0 {
		l.tokPos = l.curPos
	}
	if r != ']' {
		l.cdEnd = 0
	}
	l.scratch = append(l.scratch, r)
	if len(l.scratch) >= maxTextChunk {
		l.flushText()
	}
}

func (l *lexer) stepMarkup(r rune) error {
	switch {
	case r == '/':
		l.scratch = l.scratch[:0]
		l.mode = lmEndTagName
		return nil
	case r == '?':
		if l.tagPos.offset != l.dec.docStart {
			// only the leading declaration is permitted
			return l.errorf("%w: processing instructions", ErrForbiddenConstruct)
		}
		l.piIdx = 0
		l.mode = lmPI
		return nil
	case r == '!':
		l.mode = lmBang
		return nil
	case validate.IsNameStartChar(r):
		l.scratch = append(l.scratch[:0], r)
		l.mode = lmStartTagName
		return nil
	}
	return l.errorf("%w: %q after '<' (element name expected)", ErrIllegalChar, r)
}

// stepName accumulates an element name for a start or end tag and, on
// the terminating codepoint, emits the name token plus whatever the
// terminator itself implies.
func (l *lexer) stepName(r rune, kind tokenKind, spaceMode lexMode) error {
	if len(l.scratch) == 0 {
		if !validate.IsNameStartChar(r) {
			return l.errorf("%w: %q (element name expected)", ErrIllegalChar, r)
		}
		l.scratch = append(l.scratch, r)
		return nil
	}
	if validate.IsNameChar(r) {
		if len(l.scratch) >= MaxNameLength {
			return l.errorf("%w", ErrNameTooLong)
		}
		l.scratch = append(l.scratch, r)
		return nil
	}

	name := validate.Name(string(l.scratch))
	l.scratch = l.scratch[:0]
	l.emit(token{kind: kind, name: name, pos: l.tagPos})

	switch {
	case isSpace(r):
		l.mode = spaceMode
	case r == '>':
		l.emit(token{kind: tokTagClose, pos: l.curPos})
		l.mode = lmContent
	case r == '/' && kind == tokStartTagOpen:
		l.mode = lmMaybeSelfClose
	default:
		return l.errorf("%w: %q in tag", ErrIllegalChar, r)
	}
	return nil
}

func (l *lexer) stepInTag(r rune) error {
	switch {
	case isSpace(r):
		return nil
	case r == '>':
		l.emit(token{kind: tokTagClose, pos: l.curPos})
		l.mode = lmContent
		return nil
	case r == '/':
		l.mode = lmMaybeSelfClose
		return nil
	case validate.IsNameStartChar(r):
		l.scratch = append(l.scratch[:0], r)
		l.tokPos = l.curPos
		l.mode = lmAttrName
		return nil
	}
	return l.errorf("%w: %q in tag (attribute name expected)", ErrIllegalChar, r)
}

func (l *lexer) stepAttrName(r rune) error {
	if validate.IsNameChar(r) {
		if len(l.scratch) >= MaxNameLength {
			return l.errorf("%w", ErrNameTooLong)
		}
		l.scratch = append(l.scratch, r)
		return nil
	}
	name := validate.Name(string(l.scratch))
	l.scratch = l.scratch[:0]
	l.emit(token{kind: tokAttrName, name: name, pos: l.tokPos})
	switch {
	case r == '=':
		l.mode = lmAttrQuote
	case isSpace(r):
		l.mode = lmAttrEq
	default:
		return l.errorAtf(l.curPos, "%w", ErrEqualSignRequired)
	}
	return nil
}

func (l *lexer) stepAttrValue(r rune) error {
	if l.crPending {
		l.crPending = false
		if r == '\n' {
			return nil // \r\n folds to a single space
		}
	}
	switch r {
	case l.quote:
		l.emit(token{kind: tokAttrValue, text: string(l.scratch), pos: l.tokPos})
		l.scratch = l.scratch[:0]
		l.mode = lmInTag
		return nil
	case '&':
		l.startRef(lmAttrValue)
		return nil
	case '<':
		return l.errorf("%w: '<' in attribute value", ErrIllegalChar)
	case '\r':
		l.scratch = append(l.scratch, ' ')
		l.crPending = true
		return nil
	case '\t', '\n':
		// attribute value normalization, XML 1.0 §3.3.3
		l.scratch = append(l.scratch, ' ')
		return nil
	}
	if !validate.IsChar(r) {
		return l.errorf("%w: U+%04X in attribute value", ErrIllegalChar, r)
	}
	l.scratch = append(l.scratch, r)
	return nil
}

func (l *lexer) stepDecl(r rune) error {
	switch {
	case isSpace(r):
		return nil
	case r == '?':
		l.mode = lmDeclMaybeEnd
		return nil
	case r >= 'a' && r <= 'z':
		l.declName = append(l.declName[:0], r)
		l.mode = lmDeclName
		return nil
	}
	return l.errorf("%w: %q in declaration", ErrMalformedDeclaration, r)
}

func (l *lexer) stepDeclName(r rune) error {
	if r >= 'a' && r <= 'z' {
		if len(l.declName) > len("standalone") {
			return l.errorf("%w: unknown pseudo-attribute", ErrMalformedDeclaration)
		}
		l.declName = append(l.declName, r)
		return nil
	}
	switch {
	case r == '=':
		l.mode = lmDeclQuote
	case isSpace(r):
		l.mode = lmDeclEq
	default:
		return l.errorf("%w: %q in declaration", ErrMalformedDeclaration, r)
	}
	return l.checkDeclName()
}

// checkDeclName enforces the fixed pseudo-attribute order:
// version, then optional encoding, then optional standalone.
func (l *lexer) checkDeclName() error {
	name := string(l.declName)
	switch name {
	case "version":
		if l.declStep != declWantVersion {
			return l.errorf("%w: 'version' must come first and only once", ErrMalformedDeclaration)
		}
	case "encoding":
		if l.declStep != declWantEncoding {
			return l.errorf("%w: misplaced 'encoding'", ErrMalformedDeclaration)
		}
	case "standalone":
		if l.declStep != declWantEncoding && l.declStep != declWantStandalone {
			return l.errorf("%w: misplaced 'standalone'", ErrMalformedDeclaration)
		}
	default:
		return l.errorf("%w: unknown pseudo-attribute %q", ErrMalformedDeclaration, name)
	}
	return nil
}

func (l *lexer) stepDeclValue(r rune) error {
	if r == l.quote {
		val := string(l.scratch)
		l.scratch = l.scratch[:0]
		return l.finishDeclValue(val)
	}
	if r == '<' || r == '&' || !validate.IsChar(r) {
		return l.errorf("%w: %q in declaration value", ErrMalformedDeclaration, r)
	}
	l.scratch = append(l.scratch, r)
	return nil
}

func (l *lexer) finishDeclValue(val string) error {
	l.mode = lmDecl
	switch string(l.declName) {
	case "version":
		if val != "1.0" {
			return l.errorf("%w: version must be \"1.0\", got %q", ErrMalformedDeclaration, val)
		}
		l.decl.Version = val
		l.declStep = declWantEncoding
	case "encoding":
		if val == "" {
			return l.errorf("%w: empty encoding name", ErrMalformedDeclaration)
		}
		l.decl.Encoding = val
		l.declStep = declWantStandalone
	case "standalone":
		switch val {
		case "yes":
			l.decl.Standalone = StandaloneYes
		case "no":
			l.decl.Standalone = StandaloneNo
		default:
			return l.errorf("%w: standalone must be \"yes\" or \"no\", got %q", ErrMalformedDeclaration, val)
		}
		l.declStep = declWantEnd
	}
	return nil
}

func (l *lexer) startRef(ret lexMode) {
	if ret == lmContent && len(l.scratch) == 0 {
		l.tokPos = l.curPos
	}
	l.refBuf = l.refBuf[:0]
	l.refReturn = ret
	l.refNumeric = false
	l.refHex = false
	l.cdEnd = 0
	l.mode = lmRef
}

func (l *lexer) stepRef(r rune) error {
	if r == ';' {
		return l.finishRef()
	}
	if len(l.refBuf) >= maxRefLength {
		return l.errorf("%w", ErrNameTooLong)
	}
	switch {
	case len(l.refBuf) == 0 && r == '#':
		l.refNumeric = true
	case l.refNumeric && len(l.refBuf) == 1 && r == 'x' && !l.refHex:
		l.refHex = true
	case l.refNumeric:
		if !isRefDigit(r, l.refHex) {
			return l.errorf("%w: %q in character reference", ErrInvalidCharRef, r)
		}
	default:
		if !validate.IsNameChar(r) {
			return l.errorf("%w: %q in entity reference", ErrUndeclaredEntity, r)
		}
	}
	l.refBuf = append(l.refBuf, r)
	return nil
}

func isRefDigit(r rune, hex bool) bool {
	if r >= '0' && r <= '9' {
		return true
	}
	if !hex {
		return false
	}
	return (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func (l *lexer) finishRef() error {
	var out rune
	if l.refNumeric {
		digits := string(l.refBuf[1:]) // strip '#'
		base := 10
		if l.refHex {
			digits = digits[1:] // strip 'x'
			base = 16
		}
		if digits == "" {
			return l.errorf("%w: empty character reference", ErrInvalidCharRef)
		}
		v, err := strconv.ParseUint(digits, base, 32)
		if err != nil || !validate.IsChar(rune(v)) {
			return l.errorf("%w: &#%s;", ErrInvalidCharRef, string(l.refBuf[1:]))
		}
		out = rune(v)
	} else {
		switch string(l.refBuf) {
		case "lt":
			out = '<'
		case "gt":
			out = '>'
		case "amp":
			out = '&'
		case "apos":
			out = '\''
		case "quot":
			out = '"'
		default:
			return l.errorf("%w: &%s;", ErrUndeclaredEntity, string(l.refBuf))
		}
	}

	l.mode = l.refReturn
	switch l.refReturn {
	case lmContent:
		l.scratch = append(l.scratch, out)
		if len(l.scratch) >= maxTextChunk {
			l.flushText()
		}
	case lmAttrValue:
		l.scratch = append(l.scratch, out)
	}
	return nil
}

// errorf wraps a lexical error with the position of the codepoint that
// triggered it.
func (l *lexer) errorf(format string, args ...interface{}) error {
	return errorAt(fmt.Errorf(format, args...), l.curPos)
}

func (l *lexer) errorAtf(pos position, format string, args ...interface{}) error {
	return errorAt(fmt.Errorf(format, args...), pos)
}
