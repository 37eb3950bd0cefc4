package railml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

const xmlNamespace = "http://www.w3.org/XML/1998/namespace"

// element is a decoded XML element with its source position
type element struct {
	name     xml.Name
	attrs    []xml.Attr
	children []*element
	text     string
	parent   *element
	line     int
	col      int
}

// decodeTree reads the whole document into an element tree
func decodeTree(data []byte) (*element, error) {
	d := xml.NewDecoder(bytes.NewReader(data))
	d.CharsetReader = charsetReader

	var root, cur *element
	var text strings.Builder
	for {
		line, col := d.InputPos()
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			line, col = d.InputPos()
			return nil, &ParseError{Line: line, Column: col, Err: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &element{
				name:   t.Name,
				attrs:  append([]xml.Attr(nil), t.Attr...),
				parent: cur,
				line:   line,
				col:    col,
			}
			switch {
			case cur != nil:
				cur.text += text.String()
				cur.children = append(cur.children, el)
			case root == nil:
				root = el
			default:
				return nil, &ParseError{Line: line, Column: col, Expected: "end of document",
					Err: fmt.Errorf("second root element %s after %s", t.Name.Local, root.local())}
			}
			text.Reset()
			cur = el
		case xml.EndElement:
			if cur == nil {
				return nil, &ParseError{Line: line, Column: col, Err: fmt.Errorf("unexpected end element %s", t.Name.Local)}
			}
			cur.text += text.String()
			text.Reset()
			cur = cur.parent
		case xml.CharData:
			if cur != nil {
				text.Write(t)
			}
		}
	}
	if root == nil {
		return nil, &ParseError{Expected: "root element", Err: io.ErrUnexpectedEOF}
	}
	return root, nil
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(label) {
	case "iso-8859-1", "latin1", "latin-1":
		return charmap.ISO8859_1.NewDecoder().Reader(input), nil
	case "iso-8859-15":
		return charmap.ISO8859_15.NewDecoder().Reader(input), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder().Reader(input), nil
	}
	return nil, fmt.Errorf("unsupported charset %q", label)
}

func (e *element) local() string {
	return e.name.Local
}

// attr looks an attribute up by local name, so xml:lang and lang both answer "lang"
func (e *element) attr(local string) (string, bool) {
	for _, a := range e.attrs {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

func (e *element) attrOr(local, fallback string) string {
	if v, ok := e.attr(local); ok {
		return v
	}
	return fallback
}

func (e *element) str(local string) string {
	v, _ := e.attr(local)
	return v
}

func (e *element) child(local string) *element {
	for _, c := range e.children {
		if c.name.Local == local {
			return c
		}
	}
	return nil
}

func (e *element) childrenNamed(local string) []*element {
	var out []*element
	for _, c := range e.children {
		if c.name.Local == local {
			out = append(out, c)
		}
	}
	return out
}

func (e *element) trimmedText() string {
	return strings.TrimSpace(e.text)
}

// path renders the element's ancestry, naming ids where present
func (e *element) path() string {
	var parts []string
	for n := e; n != nil; n = n.parent {
		p := n.name.Local
		if id, ok := n.attr("id"); ok {
			p += "[" + id + "]"
		}
		parts = append(parts, p)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return "/" + strings.Join(parts, "/")
}

// raw converts the subtree into a RawElement. Names keep the prefix they were
// written with, and namespaces bound above the subtree are declared again on
// its root so the element can be written back on its own.
func (e *element) raw(container string) RawElement {
	var decls []Attr
	r := e.rawWithin(e, &decls)
	r.Container = container
	if len(decls) > 0 {
		r.Attrs = append(decls, r.Attrs...)
	}
	return r
}

func (e *element) rawWithin(top *element, decls *[]Attr) RawElement {
	r := RawElement{
		Name: e.qualify(e.name, false, top, decls),
		Text: e.trimmedText(),
		Line: e.line,
	}
	for _, a := range e.attrs {
		if isDeclaration(a.Name) {
			if _, ok := versionFromNamespace(a.Value); ok {
				continue
			}
		}
		r.Attrs = append(r.Attrs, Attr{Name: e.qualify(a.Name, true, top, decls), Value: a.Value})
	}
	for _, c := range e.children {
		r.Children = append(r.Children, c.rawWithin(top, decls))
	}
	return r
}

// qualify renders a decoded name as prefix:local. Names in a railML namespace
// stay unprefixed since the writer declares its own default namespace.
func (e *element) qualify(name xml.Name, attr bool, top *element, decls *[]Attr) string {
	switch name.Space {
	case "":
		return name.Local
	case "xmlns":
		return "xmlns:" + name.Local
	case xmlNamespace:
		return "xml:" + name.Local
	}
	if _, ok := versionFromNamespace(name.Space); ok {
		return name.Local
	}

	prefix, at, ok := e.binding(name.Space, attr)
	if !ok {
		// the decoder leaves unbound prefixes in Space
		return name.Space + ":" + name.Local
	}
	if !at.within(top) {
		declare(decls, prefix, name.Space)
	}
	if prefix == "" {
		return name.Local
	}
	return prefix + ":" + name.Local
}

// binding finds the nearest declaration of uri; attributes never take the default namespace
func (e *element) binding(uri string, attr bool) (string, *element, bool) {
	for n := e; n != nil; n = n.parent {
		for _, a := range n.attrs {
			if a.Value != uri {
				continue
			}
			switch {
			case a.Name.Space == "xmlns":
				return a.Name.Local, n, true
			case !attr && isDeclaration(a.Name):
				return "", n, true
			}
		}
	}
	return "", nil, false
}

// within reports whether e is top or one of its descendants
func (e *element) within(top *element) bool {
	for n := e; n != nil; n = n.parent {
		if n == top {
			return true
		}
	}
	return false
}

func isDeclaration(n xml.Name) bool {
	return n.Space == "xmlns" || (n.Space == "" && n.Local == "xmlns")
}

func declare(decls *[]Attr, prefix, uri string) {
	name := "xmlns"
	if prefix != "" {
		name += ":" + prefix
	}
	for _, d := range *decls {
		if d.Name == name {
			return
		}
	}
	*decls = append(*decls, Attr{Name: name, Value: uri})
}
