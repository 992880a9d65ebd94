package xmldoc

import "strings"

// Attr is a single attribute with its namespace prefix dropped.
type Attr struct {
	Name  string
	Value string
}

// Node is either an element (Name set) or a run of character data (Name
// empty, Data set).
type Node struct {
	Name    string
	Attrs   []Attr
	Content []*Node
	Data    string
}

// IsText reports whether n is character data.
func (n *Node) IsText() bool {
	return n != nil && n.Name == ""
}

// Attr returns the value of the named attribute, or "".
func (n *Node) Attr(name string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value
		}
	}
	return ""
}

// HasAttr reports whether the attribute is present, even if empty.
func (n *Node) HasAttr(name string) bool {
	if n == nil {
		return false
	}
	for _, a := range n.Attrs {
		if a.Name == name {
			return true
		}
	}
	return false
}

// Child returns the first element child with the given name.
func (n *Node) Child(name string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Content {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Children returns every element child with the given name.
func (n *Node) Children(name string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Content {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Text concatenates all character data beneath n.
func (n *Node) Text() string {
	if n == nil {
		return ""
	}
	if n.IsText() {
		return n.Data
	}
	var b strings.Builder
	n.appendText(&b)
	return b.String()
}

func (n *Node) appendText(b *strings.Builder) {
	for _, c := range n.Content {
		if c.IsText() {
			b.WriteString(c.Data)
			continue
		}
		c.appendText(b)
	}
}
