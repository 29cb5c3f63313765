package strictxml

import (
	"fmt"
	"io"
	"strings"

	"github.com/lestrrat-go/strictxml/validate"
)

// Dumper serializes an event stream back into markup. The output is
// itself within the restricted subset, so feeding it back through the
// parser yields an equivalent stream (modulo whitespace normalization
// already performed on attribute values).
type Dumper struct{}

func (d *Dumper) writeString(out io.Writer, content string) error {
	_, err := io.WriteString(out, content)
	return err
}

// DumpEvents writes every event in sequence. The stream is expected to
// be one the parser produced, in particular properly nested.
func (d *Dumper) DumpEvents(out io.Writer, events []Event) error {
	for _, ev := range events {
		if err := d.DumpEvent(out, ev); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dumper) DumpEvent(out io.Writer, ev Event) error {
	switch ev := ev.(type) {
	case *XMLDecl:
		return d.dumpDecl(out, ev)
	case *StartElement:
		return d.dumpStartElement(out, ev)
	case *EndElement:
		return d.writeString(out, "</"+ev.Name.String()+">")
	case *Text:
		return d.writeString(out, escapeText(string(ev.Data)))
	case *EndOfDocument:
		return nil
	}
	return fmt.Errorf("strictxml: cannot dump event type %T", ev)
}

func (d *Dumper) dumpDecl(out io.Writer, decl *XMLDecl) error {
	if err := d.writeString(out, `<?xml version="`+decl.Version+`"`); err != nil {
		return err
	}
	if decl.Encoding != "" {
		if err := d.writeString(out, ` encoding="`+decl.Encoding+`"`); err != nil {
			return err
		}
	}
	if decl.Standalone != StandaloneNone {
		if err := d.writeString(out, ` standalone="`+decl.Standalone.String()+`"`); err != nil {
			return err
		}
	}
	return d.writeString(out, "?>\n")
}

func (d *Dumper) dumpStartElement(out io.Writer, ev *StartElement) error {
	if err := d.writeString(out, "<"+ev.Name.String()); err != nil {
		return err
	}
	// namespace declarations are not attributes, so they have to be
	// reconstructed for the output to resolve the same way
	for _, ns := range declsFor(ev) {
		if err := d.writeString(out, " "+ns); err != nil {
			return err
		}
	}
	for _, attr := range ev.Attr {
		s := fmt.Sprintf(" %s=\"%s\"", attr.Name, escapeAttr(string(attr.Value)))
		if err := d.writeString(out, s); err != nil {
			return err
		}
	}
	return d.writeString(out, ">")
}

// declsFor synthesizes the xmlns declarations a start tag needs so that
// its own name and its attributes' names resolve to their recorded
// URIs. Redeclaring on every element is redundant but harmless.
func declsFor(ev *StartElement) []string {
	var decls []string
	seen := map[validate.NCName]struct{}{}
	add := func(name QName) {
		if name.URI == "" || name.Prefix == xmlPrefix || name.Prefix == "" {
			return
		}
		if _, ok := seen[name.Prefix]; !ok {
			seen[name.Prefix] = struct{}{}
			decls = append(decls, fmt.Sprintf("xmlns:%s=\"%s\"", name.Prefix, escapeAttr(name.URI)))
		}
	}
	// the default namespace applies to element names only, and an empty
	// URI must still be written out as xmlns="": dropping it would let a
	// nested undeclaration re-resolve into an ancestor's default
	if ev.Name.Prefix == "" {
		decls = append(decls, fmt.Sprintf("xmlns=\"%s\"", escapeAttr(ev.Name.URI)))
	} else {
		add(ev.Name)
	}
	for _, attr := range ev.Attr {
		add(attr.Name)
	}
	return decls
}

var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	`"`, "&quot;",
)

func escapeText(s string) string {
	return textEscaper.Replace(s)
}

func escapeAttr(s string) string {
	return attrEscaper.Replace(s)
}
