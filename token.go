package strictxml

import "github.com/lestrrat-go/strictxml/validate"

// tokenKind discriminates the restricted set of lexical tokens.
type tokenKind int

const (
	tokXMLDecl tokenKind = iota + 1
	tokStartTagOpen
	tokEndTagOpen
	tokTagClose
	tokSelfClose
	tokAttrName
	tokAttrValue
	tokText
)

func (k tokenKind) String() string {
	switch k {
	case tokXMLDecl:
		return "XML declaration"
	case tokStartTagOpen:
		return "'<'"
	case tokEndTagOpen:
		return "'</'"
	case tokTagClose:
		return "'>'"
	case tokSelfClose:
		return "'/>'"
	case tokAttrName:
		return "attribute name"
	case tokAttrValue:
		return "attribute value"
	case tokText:
		return "text"
	}
	return "unknown token"
}

// token is one lexical token plus the position of its first byte.
// Tokens are consumed by the parser within one step and never retained.
type token struct {
	kind tokenKind
	name validate.Name // StartTagOpen, EndTagOpen, AttrName
	text string        // AttrValue, Text (references already expanded)
	decl *XMLDecl      // XMLDecl
	pos  position
}
