package strictxml

import "errors"

// Hard limits. These bound the memory a single token may pin; they are
// not configuration.
const (
	// MaxNameLength bounds element, attribute and entity names.
	MaxNameLength = 50000
	// longest predefined entity is 4 bytes, longest valid decimal
	// reference is 7, hexadecimal 6
	maxRefLength = 8
	// text runs longer than this are flushed as partial tokens and
	// coalesced again by the parser
	maxTextChunk = 8192
)

// XMLNamespace is the namespace URI the xml prefix is permanently bound
// to.
const XMLNamespace = "http://www.w3.org/XML/1998/namespace"

var (
	// decoder
	ErrInvalidEncoding   = errors.New("invalid UTF-8 sequence")
	ErrTruncatedEncoding = errors.New("input ended inside a UTF-8 sequence")

	// lexer
	ErrForbiddenConstruct    = errors.New("construct not permitted in restricted XML")
	ErrMalformedDeclaration  = errors.New("malformed XML declaration")
	ErrIllegalChar           = errors.New("character not allowed here")
	ErrEqualSignRequired     = errors.New("'=' was required here")
	ErrQuoteRequired         = errors.New("attribute value must be quoted")
	ErrUndeclaredEntity      = errors.New("use of undeclared entity")
	ErrInvalidCharRef        = errors.New("character reference expands to invalid character")
	ErrMisplacedCDataEnd     = errors.New("']]>' not allowed in character data")
	ErrNameTooLong           = errors.New("name or reference is too long")

	// namespace resolver
	ErrUndeclaredPrefix     = errors.New("use of undeclared namespace prefix")
	ErrDuplicateAttribute   = errors.New("duplicate attribute")
	ErrMismatchedEndTag     = errors.New("start and end tag do not match")
	ErrUnexpectedEndTag     = errors.New("end tag without matching start tag")
	ErrInvalidQName         = errors.New("invalid qualified name")
	ErrReservedPrefix       = errors.New("reserved namespace prefix")
	ErrReservedNamespaceURI = errors.New("reserved namespace name")
	ErrEmptyNamespaceURI    = errors.New("namespace URI must not be empty")

	// state machine / driver
	ErrUnexpectedToken   = errors.New("token not allowed in this state")
	ErrUnclosedRoot      = errors.New("input ended with elements still open")
	ErrTrailingContent   = errors.New("content after root element")
	ErrTruncatedDocument = errors.New("input ended before document was complete")
)

// parserState is the sole source of truth for what input is currently
// legal.
type parserState int

const (
	psError parserState = iota - 1
	psInitial
	psAfterDecl
	psProlog
	psElement
	psText
	psEpilog
	psEOF
)

func (s parserState) String() string {
	switch s {
	case psError:
		return "Error"
	case psInitial:
		return "Initial"
	case psAfterDecl:
		return "AfterDeclaration"
	case psProlog:
		return "InProlog"
	case psElement:
		return "InElement"
	case psText:
		return "InText"
	case psEpilog:
		return "AfterRoot"
	case psEOF:
		return "Eof"
	}
	return "Unknown"
}
