package strictxml

import (
	"github.com/lestrrat-go/strictxml/validate"
)

// EventType discriminates the closed set of structural events.
type EventType int

const (
	XMLDeclEvent EventType = iota + 1
	StartElementEvent
	EndElementEvent
	TextEvent
	EndOfDocumentEvent
)

func (t EventType) String() string {
	switch t {
	case XMLDeclEvent:
		return "XMLDecl"
	case StartElementEvent:
		return "StartElement"
	case EndElementEvent:
		return "EndElement"
	case TextEvent:
		return "Text"
	case EndOfDocumentEvent:
		return "EndOfDocument"
	}
	return "Unknown"
}

// Event is one unit of parser output. The set of implementations is
// closed; consumers are expected to switch exhaustively over the
// concrete types (or Type). Events are immutable once produced, and
// ownership transfers to the caller.
type Event interface {
	Type() EventType
	event()
}

// Standalone is the tri-state standalone pseudo-attribute of the XML
// declaration.
type Standalone int

const (
	StandaloneNone Standalone = iota // not present
	StandaloneYes
	StandaloneNo
)

func (s Standalone) String() string {
	switch s {
	case StandaloneYes:
		return "yes"
	case StandaloneNo:
		return "no"
	}
	return ""
}

// QName is a qualified name after namespace resolution. URI is empty
// when the name is in no namespace.
type QName struct {
	Prefix validate.NCName
	Local  validate.NCName
	URI    string
}

// String renders the name as it appeared in the document.
func (q QName) String() string {
	if q.Prefix != "" {
		return string(q.Prefix) + ":" + string(q.Local)
	}
	return string(q.Local)
}

// Attribute is a resolved attribute. Namespace declarations (xmlns,
// xmlns:*) never appear as attributes.
type Attribute struct {
	Name  QName
	Value validate.CData
}

// XMLDecl is the optional leading XML declaration.
type XMLDecl struct {
	Version    string
	Encoding   string // empty if not declared
	Standalone Standalone
}

func (*XMLDecl) Type() EventType { return XMLDeclEvent }
func (*XMLDecl) event()          {}

// StartElement marks an element start tag (or the start half of a
// self-closing tag). Attr is in document order.
type StartElement struct {
	Name QName
	Attr []Attribute
}

func (*StartElement) Type() EventType { return StartElementEvent }
func (*StartElement) event()          {}

// EndElement marks an element end tag (or the end half of a
// self-closing tag). Name resolves identically to the matching start
// tag's.
type EndElement struct {
	Name QName
}

func (*EndElement) Type() EventType { return EndElementEvent }
func (*EndElement) event()          {}

// Text is a run of character data. Adjacent runs are coalesced: the
// parser never emits two consecutive Text events.
type Text struct {
	Data validate.CData
}

func (*Text) Type() EventType { return TextEvent }
func (*Text) event()          {}

// EndOfDocument confirms the document ended well-formed. It is the last
// event of every successful parse.
type EndOfDocument struct{}

func (*EndOfDocument) Type() EventType { return EndOfDocumentEvent }
func (*EndOfDocument) event()          {}
