package strictxml

import (
	"fmt"
	"strings"

	"github.com/google/triemap"
	"github.com/lestrrat-go/strictxml/internal/orderedmap"
	"github.com/lestrrat-go/strictxml/internal/stack"
	"github.com/lestrrat-go/strictxml/validate"
)

// xmlnsNamespace is the namespace name reserved for the declaration
// mechanism itself. It can never be declared, under any prefix.
const xmlnsNamespace = "http://www.w3.org/2000/xmlns/"

const (
	xmlPrefix   = validate.NCName("xml")
	xmlnsPrefix = validate.NCName("xmlns")
)

// rawAttr is an attribute as lexed, before namespace resolution.
type rawAttr struct {
	name  validate.Name
	value validate.CData
	pos   position
}

// nsScope holds the namespace declarations introduced by a single start
// tag. Lookup falls through to the scopes below it on the stack.
type nsScope struct {
	defaultSet bool   // this scope declares (or undeclares) the default namespace
	defaultURI string // empty means "no default namespace"
	decls      map[validate.NCName]string
}

// splitName is a qualified name split at its colon, cached per raw name.
type splitName struct {
	prefix validate.NCName
	local  validate.NCName
}

// resolver layers namespace scopes over the element stack and turns raw
// qualified names into (namespace URI, local name) pairs.
type resolver struct {
	scopes stack.Stack[*nsScope]

	// split names are interned: deep documents repeat the same handful
	// of qualified names over and over
	names triemap.RuneSliceMap

	// scratch for duplicate detection, keyed by resolved identity
	attrs *orderedmap.Map[attrKey, Attribute]
}

type attrKey struct {
	uri   string
	local validate.NCName
}

func newResolver() *resolver {
	return &resolver{
		attrs: orderedmap.New[attrKey, Attribute](),
	}
}

func (rs *resolver) reset() {
	rs.scopes = rs.scopes[:0]
}

// split returns the cached prefix/local split of name, validating the
// qualified-name shape on first sight: at most one colon, with non-empty
// NCNames on both sides.
func (rs *resolver) split(name validate.Name, pos position) (*splitName, error) {
	runes := []rune(string(name))
	if v, ok := rs.names.Get(runes); ok {
		return v.(*splitName), nil
	}

	var sn *splitName
	if i := strings.IndexByte(string(name), ':'); i < 0 {
		sn = &splitName{local: validate.NCName(name)}
	} else {
		prefix, local := string(name)[:i], string(name)[i+1:]
		if prefix == "" || local == "" || strings.IndexByte(local, ':') >= 0 {
			return nil, errorAt(fmt.Errorf("%w: %q", ErrInvalidQName, name), pos)
		}
		sn = &splitName{
			prefix: validate.NCName(prefix),
			local:  validate.NCName(local),
		}
	}
	rs.names.Put(runes, sn)
	return sn, nil
}

// lookup resolves prefix against the scope stack. The xml prefix is
// permanently bound and needs no declaration.
func (rs *resolver) lookup(prefix validate.NCName) (string, bool) {
	if prefix == xmlPrefix {
		return XMLNamespace, true
	}
	for i := rs.scopes.Len() - 1; i >= 0; i-- {
		if uri, ok := rs.scopes.At(i).decls[prefix]; ok {
			return uri, true
		}
	}
	return "", false
}

// lookupDefault returns the default namespace URI in effect, which is
// empty when no default namespace applies.
func (rs *resolver) lookupDefault() string {
	for i := rs.scopes.Len() - 1; i >= 0; i-- {
		if sc := rs.scopes.At(i); sc.defaultSet {
			return sc.defaultURI
		}
	}
	return ""
}

// declare records one xmlns / xmlns:prefix attribute into scope.
func (rs *resolver) declare(scope *nsScope, sn *splitName, value validate.CData, pos position) error {
	uri := string(value)
	if uri == xmlnsNamespace {
		return errorAt(fmt.Errorf("%w: %q", ErrReservedNamespaceURI, uri), pos)
	}

	if sn.prefix == "" {
		// default namespace declaration; empty value undeclares it
		if uri == XMLNamespace {
			return errorAt(fmt.Errorf("%w: %q cannot be the default namespace", ErrReservedNamespaceURI, uri), pos)
		}
		if scope.defaultSet {
			return errorAt(fmt.Errorf("%w: xmlns", ErrDuplicateAttribute), pos)
		}
		scope.defaultSet = true
		scope.defaultURI = uri
		return nil
	}

	switch sn.local {
	case xmlnsPrefix:
		return errorAt(fmt.Errorf("%w: xmlns cannot be declared", ErrReservedPrefix), pos)
	case xmlPrefix:
		if uri != XMLNamespace {
			return errorAt(fmt.Errorf("%w: xml is bound to %q", ErrReservedPrefix, XMLNamespace), pos)
		}
	default:
		if uri == XMLNamespace {
			return errorAt(fmt.Errorf("%w: %q is reserved for the xml prefix", ErrReservedNamespaceURI, uri), pos)
		}
		if uri == "" {
			return errorAt(fmt.Errorf("%w: xmlns:%s", ErrEmptyNamespaceURI, sn.local), pos)
		}
	}

	if scope.decls == nil {
		scope.decls = make(map[validate.NCName]string)
	}
	if _, ok := scope.decls[sn.local]; ok {
		return errorAt(fmt.Errorf("%w: xmlns:%s", ErrDuplicateAttribute, sn.local), pos)
	}
	scope.decls[sn.local] = uri
	return nil
}

// startTag builds the scope introduced by a start tag and resolves the
// element name and every ordinary attribute against it. Namespace
// declarations take effect on the element that carries them, so they are
// collected before anything is resolved, and they are not reported as
// attributes.
func (rs *resolver) startTag(raw validate.Name, attrs []rawAttr, pos position) (QName, []Attribute, error) {
	scope := &nsScope{}
	for _, a := range attrs {
		sn, err := rs.split(a.name, a.pos)
		if err != nil {
			return QName{}, nil, err
		}
		if sn.prefix == xmlnsPrefix || (sn.prefix == "" && sn.local == xmlnsPrefix) {
			if err := rs.declare(scope, sn, a.value, a.pos); err != nil {
				return QName{}, nil, err
			}
		}
	}
	rs.scopes.Push(scope)

	name, err := rs.resolveElement(raw, pos)
	if err != nil {
		return QName{}, nil, err
	}

	rs.attrs.Reset()
	for _, a := range attrs {
		sn, _ := rs.split(a.name, a.pos) // cached, cannot fail
		if sn.prefix == xmlnsPrefix || (sn.prefix == "" && sn.local == xmlnsPrefix) {
			continue
		}

		// the default namespace never applies to attribute names
		var uri string
		if sn.prefix != "" {
			var ok bool
			uri, ok = rs.lookup(sn.prefix)
			if !ok {
				return QName{}, nil, errorAt(fmt.Errorf("%w: %s", ErrUndeclaredPrefix, sn.prefix), a.pos)
			}
		}

		attr := Attribute{
			Name:  QName{Prefix: sn.prefix, Local: sn.local, URI: uri},
			Value: a.value,
		}
		if err := rs.attrs.Set(attrKey{uri: uri, local: sn.local}, attr); err != nil {
			return QName{}, nil, errorAt(fmt.Errorf("%w: %s", ErrDuplicateAttribute, a.name), a.pos)
		}
	}

	var out []Attribute
	if rs.attrs.Len() > 0 {
		out = make([]Attribute, 0, rs.attrs.Len())
		for _, attr := range rs.attrs.Range() {
			out = append(out, attr)
		}
	}
	return name, out, nil
}

// endTag resolves the end tag's name in the scope its start tag
// introduced, then pops that scope.
func (rs *resolver) endTag(raw validate.Name, pos position) (QName, error) {
	name, err := rs.resolveElement(raw, pos)
	if err != nil {
		return QName{}, err
	}
	rs.scopes.Pop()
	return name, nil
}

func (rs *resolver) resolveElement(raw validate.Name, pos position) (QName, error) {
	sn, err := rs.split(raw, pos)
	if err != nil {
		return QName{}, err
	}
	if sn.prefix == "" && sn.local == xmlnsPrefix {
		return QName{}, errorAt(fmt.Errorf("%w: xmlns cannot name an element", ErrReservedPrefix), pos)
	}

	var uri string
	if sn.prefix == "" {
		uri = rs.lookupDefault()
	} else {
		var ok bool
		uri, ok = rs.lookup(sn.prefix)
		if !ok {
			return QName{}, errorAt(fmt.Errorf("%w: %s", ErrUndeclaredPrefix, sn.prefix), pos)
		}
	}
	return QName{Prefix: sn.prefix, Local: sn.local, URI: uri}, nil
}
