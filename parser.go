package strictxml

import (
	"fmt"

	"github.com/lestrrat-go/pdebug"
	"github.com/lestrrat-go/strictxml/encoding"
	"github.com/lestrrat-go/strictxml/internal/bufq"
	"github.com/lestrrat-go/strictxml/internal/stack"
	"github.com/lestrrat-go/strictxml/validate"
)

// openElement is one entry on the element stack: the resolved name of a
// start tag whose end tag has not been seen yet.
type openElement struct {
	name QName
	pos  position
}

// Parser is a push-fed streaming parser. Feed it input in chunks of any
// size with Feed, signal the end with FeedEOF, and collect events with
// DrainEvents after any number of feeds. A Parser is not safe for
// concurrent use.
//
// Every failure is terminal: once any method has returned a parse
// error, the instance is poisoned and returns that same error forever.
type Parser struct {
	q   *bufq.Queue
	dec *decoder
	lex *lexer
	res *resolver

	state     parserState
	storedErr error
	eofSeen   bool
	eofFlush  bool // lexer flushed after FeedEOF
	bomDone   bool

	elems   stack.Stack[*openElement]
	pending []Event

	textBuf []byte

	// start/end tag under assembly
	tagName  validate.Name
	tagPos   position
	tagAttrs []rawAttr
	attrName validate.Name
	attrPos  position
	inStart  bool
	inEnd    bool
}

// New creates a Parser ready to accept the first chunk of a document.
func New() *Parser {
	p := &Parser{}
	p.init()
	return p
}

func (p *Parser) init() {
	q := bufq.New()
	p.q = q
	p.dec = newDecoder(q)
	p.lex = newLexer(p.dec)
	p.res = newResolver()
	p.state = psInitial
}

// Reset returns the parser to its initial state so it can parse another
// document. Buffered input from the previous document is discarded.
func (p *Parser) Reset() {
	if p.q != nil {
		p.q.Release()
	}
	res := p.res
	res.reset()
	p.init()
	p.res = res // keep the interned names

	p.storedErr = nil
	p.eofSeen = false
	p.eofFlush = false
	p.bomDone = false
	p.elems = p.elems[:0]
	p.pending = p.pending[:0]
	p.textBuf = p.textBuf[:0]
	p.tagAttrs = p.tagAttrs[:0]
	p.inStart = false
	p.inEnd = false
}

// Feed appends a chunk of document bytes. Chunk boundaries are
// arbitrary; they may fall inside a codepoint, a token, or anywhere
// else. Feed panics if called after FeedEOF.
func (p *Parser) Feed(data []byte) error {
	if p.eofSeen {
		panic("strictxml: Feed called after FeedEOF")
	}
	if p.storedErr != nil {
		return p.storedErr
	}
	p.q.Reclaim()
	p.q.Append(data)
	return nil
}

// FeedEOF declares the input complete. It is idempotent. The final
// events (and end-of-input diagnostics such as an unclosed root) are
// produced by the next DrainEvents call.
func (p *Parser) FeedEOF() {
	p.eofSeen = true
}

// DrainEvents delivers every event that the input fed so far fully
// determines, calling fn once per event in document order. It returns
// true once EndOfDocument has been delivered. A false return with a nil
// error means more input is required.
//
// A parse error poisons the parser and is returned by every subsequent
// call. An error returned by fn stops delivery and is returned as-is,
// without poisoning; events delivered before it remain valid.
func (p *Parser) DrainEvents(fn func(Event) error) (bool, error) {
	if pdebug.Enabled {
		g := pdebug.Marker("Parser.DrainEvents")
		defer g.End()
	}
	if p.storedErr != nil {
		return false, p.storedErr
	}
	if p.state == psEOF {
		return true, nil
	}

	for {
		ev, err := p.nextEvent()
		switch err {
		case nil:
		case errNeedMore:
			return false, nil
		default:
			p.storedErr = err
			p.state = psError
			return false, err
		}
		if err := fn(ev); err != nil {
			return false, err
		}
		if ev.Type() == EndOfDocumentEvent {
			return true, nil
		}
	}
}

// nextEvent runs the token loop until an event is produced, more input
// is required (errNeedMore), or the document fails.
func (p *Parser) nextEvent() (Event, error) {
	for {
		if len(p.pending) > 0 {
			ev := p.pending[0]
			copy(p.pending, p.pending[1:])
			p.pending[len(p.pending)-1] = nil
			p.pending = p.pending[:len(p.pending)-1]
			return ev, nil
		}

		if !p.bomDone {
			switch err := p.dec.skipBOM(); err {
			case nil:
				p.bomDone = true
			case errNeedMore:
				if !p.eofSeen {
					return nil, errNeedMore
				}
				// partial BOM at EOF is either a truncated
				// sequence or an empty document; fall through
				p.bomDone = true
			default:
				return nil, err
			}
		}

		tok, err := p.lex.next()
		switch err {
		case nil:
		case errNeedMore:
			if !p.eofSeen {
				return nil, errNeedMore
			}
			if ev, err := p.finishEOF(); ev != nil || err != nil {
				return ev, err
			}
			continue // flushed trailing text, go pick it up
		default:
			return nil, err
		}

		if err := p.handleToken(tok); err != nil {
			return nil, err
		}
	}
}

// finishEOF runs the end-of-input checks. It returns (nil, nil) when it
// flushed pending lexer output that the token loop should now consume.
func (p *Parser) finishEOF() (Event, error) {
	if p.dec.pending() {
		return nil, errorAt(ErrTruncatedEncoding, p.dec.pos)
	}
	if p.lex.mode != lmContent {
		return nil, errorAt(fmt.Errorf("%w: input ended inside markup", ErrTruncatedDocument), p.dec.pos)
	}
	if !p.eofFlush {
		p.eofFlush = true
		if len(p.lex.scratch) > 0 {
			p.lex.flushText()
			return nil, nil
		}
	}

	if n := p.elems.Len(); n > 0 {
		top, _ := p.elems.Peek()
		return nil, errorAt(fmt.Errorf("%w: <%s> has no end tag", ErrUnclosedRoot, top.name), p.dec.pos)
	}

	switch p.state {
	case psText:
		// cannot happen with the element stack empty, but keep the
		// switch exhaustive
		fallthrough
	case psInitial, psAfterDecl, psProlog:
		return nil, errorAt(fmt.Errorf("%w: no root element", ErrTruncatedDocument), p.dec.pos)
	case psEpilog:
		p.state = psEOF
		return &EndOfDocument{}, nil
	}
	return nil, errorAt(ErrTruncatedDocument, p.dec.pos)
}

func (p *Parser) handleToken(tok token) error {
	if pdebug.Enabled {
		pdebug.Printf("parser: %s token in state %s", tok.kind, p.state)
	}

	switch tok.kind {
	case tokXMLDecl:
		return p.handleDecl(tok)
	case tokText:
		return p.handleText(tok)
	case tokStartTagOpen:
		if p.state == psEpilog {
			return errorAt(fmt.Errorf("%w: second root element <%s>", ErrTrailingContent, tok.name), tok.pos)
		}
		p.flushText()
		p.tagName = tok.name
		p.tagPos = tok.pos
		p.tagAttrs = p.tagAttrs[:0]
		p.inStart = true
		return nil
	case tokEndTagOpen:
		p.flushText()
		p.tagName = tok.name
		p.tagPos = tok.pos
		p.inEnd = true
		return nil
	case tokAttrName:
		p.attrName = tok.name
		p.attrPos = tok.pos
		return nil
	case tokAttrValue:
		p.tagAttrs = append(p.tagAttrs, rawAttr{
			name:  p.attrName,
			value: validate.CData(tok.text),
			pos:   p.attrPos,
		})
		return nil
	case tokTagClose:
		if p.inStart {
			return p.finishStartTag(false)
		}
		return p.finishEndTag()
	case tokSelfClose:
		return p.finishStartTag(true)
	}
	return errorAt(fmt.Errorf("%w: %s in state %s", ErrUnexpectedToken, tok.kind, p.state), tok.pos)
}

func (p *Parser) handleDecl(tok token) error {
	if p.state != psInitial {
		return errorAt(fmt.Errorf("%w: XML declaration after content", ErrUnexpectedToken), tok.pos)
	}
	decl := tok.decl
	if decl.Encoding != "" {
		enc := encoding.Load(decl.Encoding)
		switch {
		case enc == nil:
			return errorAt(fmt.Errorf("%w: unknown encoding %q", ErrMalformedDeclaration, decl.Encoding), tok.pos)
		case enc != encoding.UTF8:
			return errorAt(fmt.Errorf("%w: encoding %q (only UTF-8 is accepted)", ErrForbiddenConstruct, decl.Encoding), tok.pos)
		}
	}
	p.state = psAfterDecl
	p.pending = append(p.pending, decl)
	return nil
}

func (p *Parser) handleText(tok token) error {
	switch p.state {
	case psInitial, psAfterDecl, psProlog:
		if !isWhitespace(tok.text) {
			return errorAt(fmt.Errorf("%w: character data before root element", ErrUnexpectedToken), tok.pos)
		}
		p.state = psProlog
		return nil
	case psElement, psText:
		p.textBuf = append(p.textBuf, tok.text...)
		p.state = psText
		return nil
	case psEpilog:
		if !isWhitespace(tok.text) {
			return errorAt(fmt.Errorf("%w", ErrTrailingContent), tok.pos)
		}
		return nil
	}
	return errorAt(fmt.Errorf("%w: text in state %s", ErrUnexpectedToken, p.state), tok.pos)
}

// flushText turns the coalesced text buffer into a single Text event.
func (p *Parser) flushText() {
	if len(p.textBuf) == 0 {
		return
	}
	p.pending = append(p.pending, &Text{Data: validate.CData(p.textBuf)})
	p.textBuf = p.textBuf[:0]
	if p.state == psText {
		p.state = psElement
	}
}

func (p *Parser) finishStartTag(selfClosing bool) error {
	p.inStart = false
	name, attrs, err := p.res.startTag(p.tagName, p.tagAttrs, p.tagPos)
	if err != nil {
		return err
	}
	p.pending = append(p.pending, &StartElement{Name: name, Attr: attrs})

	if selfClosing {
		// immediate start+end pair; the scope dies with it
		p.res.scopes.Pop()
		p.pending = append(p.pending, &EndElement{Name: name})
		if p.elems.Len() == 0 {
			p.state = psEpilog
		} else {
			p.state = psElement
		}
		return nil
	}

	p.elems.Push(&openElement{name: name, pos: p.tagPos})
	p.state = psElement
	return nil
}

func (p *Parser) finishEndTag() error {
	p.inEnd = false
	if p.elems.Len() == 0 {
		return errorAt(fmt.Errorf("%w: </%s>", ErrUnexpectedEndTag, p.tagName), p.tagPos)
	}
	name, err := p.res.endTag(p.tagName, p.tagPos)
	if err != nil {
		return err
	}
	top, _ := p.elems.Pop()
	if top.name.URI != name.URI || top.name.Local != name.Local {
		return errorAt(fmt.Errorf("%w: <%s> closed by </%s>", ErrMismatchedEndTag, top.name, p.tagName), p.tagPos)
	}
	p.pending = append(p.pending, &EndElement{Name: name})
	if p.elems.Len() == 0 {
		p.state = psEpilog
	} else {
		p.state = psElement
	}
	return nil
}

func isWhitespace(s string) bool {
	for _, r := range s {
		if !isSpace(r) {
			return false
		}
	}
	return true
}
