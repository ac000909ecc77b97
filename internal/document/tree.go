package document

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
)

// Element is a node of a parsed XML document. Only element structure,
// attributes and directly contained character data are kept.
type Element struct {
	Name     string
	Attrs    []xml.Attr // document order
	Text     string     // trimmed character data directly inside the element
	Children []*Element
}

// ParseTree reads an XML document and returns its root element.
func ParseTree(r io.Reader) (*Element, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = true
	dec.CharsetReader = charsetReader

	var root *Element
	var stack []*Element
	var text []strings.Builder

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{Name: t.Name.Local}
			for _, a := range t.Attr {
				// Namespace declarations are not data.
				if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
					continue
				}
				el.Attrs = append(el.Attrs, a)
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("xml: multiple root elements")
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			}
			stack = append(stack, el)
			text = append(text, strings.Builder{})

		case xml.EndElement:
			top := stack[len(stack)-1]
			top.Text = strings.TrimSpace(text[len(text)-1].String())
			stack = stack[:len(stack)-1]
			text = text[:len(text)-1]

		case xml.CharData:
			if len(text) > 0 {
				text[len(text)-1].Write(t)
			}
		}
	}

	if root == nil {
		return nil, fmt.Errorf("xml: no root element")
	}
	return root, nil
}

// FindAll returns every descendant element named name in document order.
// The receiver itself is not included.
func (e *Element) FindAll(name string) []*Element {
	var out []*Element
	var walk func(*Element)
	walk = func(n *Element) {
		for _, c := range n.Children {
			if c.Name == name {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(e)
	return out
}

// Find returns the first descendant named name, or nil.
func (e *Element) Find(name string) *Element {
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
		if found := c.Find(name); found != nil {
			return found
		}
	}
	return nil
}

// Attr returns the value of the named attribute and whether it exists.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// charsetReader decodes documents declaring a non-UTF-8 encoding, such as
// the ISO-8859-1 files older simulator builds write.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", label, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported encoding %q", label)
	}
	return enc.NewDecoder().Reader(input), nil
}
