// Package xmldoc decodes the documentation-comment XML export that compilers
// emit next to an assembly into a small immutable node tree.
//
// Only structure is checked: the root must carry an assembly name and a
// members list. Element vocabulary inside a member is left to the renderer.
package xmldoc

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeMalformed = "XMLDOC_MALFORMED"
	textCodeRead      = "XMLDOC_READ_FAILED"
)

var (
	ErrMissingAssembly = errors.New("xmldoc: missing assembly node")
	ErrMissingMembers  = errors.New("xmldoc: missing members node")
	ErrEmptyDocument   = errors.New("xmldoc: document has no root element")
)

// Document is a parsed documentation export.
type Document struct {
	Root *Node
}

// Load reads and parses the export at path.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryCommand, fmt.Sprintf("open documentation file %s", path)).
			WithTextCode(textCodeRead)
	}
	defer f.Close()
	doc, err := Parse(f)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Parse decodes r into a Document. Comments, processing instructions and
// directives are discarded; text and elements keep their source order.
func Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = true
	var (
		root  *Node
		stack []*Node
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, malformed(err, "decode documentation xml")
		}
		switch t := tok.(type) {
		case xml.StartElement:
			node := &Node{Name: t.Name.Local}
			for _, a := range t.Attr {
				node.Attrs = append(node.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, malformed(fmt.Errorf("second root element <%s>", t.Name.Local), "decode documentation xml")
				}
				root = node
			} else {
				parent := stack[len(stack)-1]
				parent.Content = append(parent.Content, node)
			}
			stack = append(stack, node)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			parent := stack[len(stack)-1]
			parent.Content = append(parent.Content, &Node{Data: string(t)})
		}
	}
	if root == nil {
		return nil, malformed(ErrEmptyDocument, "decode documentation xml")
	}
	return &Document{Root: root}, nil
}

// AssemblyName returns the display name under assembly/name.
func (d *Document) AssemblyName() (string, error) {
	if d == nil || d.Root == nil {
		return "", malformed(ErrEmptyDocument, "read assembly")
	}
	asm := d.Root.Child("assembly")
	if asm == nil {
		return "", malformed(ErrMissingAssembly, "read assembly")
	}
	name := asm.Child("name")
	if name == nil {
		return "", malformed(ErrMissingAssembly, "assembly node has no name")
	}
	return strings.TrimSpace(name.Text()), nil
}

// Members returns the member nodes in document order.
func (d *Document) Members() ([]*Node, error) {
	if d == nil || d.Root == nil {
		return nil, malformed(ErrEmptyDocument, "read members")
	}
	members := d.Root.Child("members")
	if members == nil {
		return nil, malformed(ErrMissingMembers, "read members")
	}
	return members.Children("member"), nil
}

func malformed(err error, msg string) error {
	return goerrors.Wrap(err, goerrors.CategoryValidation, msg+": "+err.Error()).
		WithTextCode(textCodeMalformed)
}
