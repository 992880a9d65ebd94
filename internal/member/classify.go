// Package member turns documentation identifiers into classified entries and
// implements the grouping, completion and ordering rules shared by the
// table of contents and the rendered body.
package member

import "strings"

// Kind is the documented symbol category derived from an identifier prefix.
type Kind int

const (
	NotSupported Kind = iota
	Type
	Constructor
	Method
	Property
	Field
	Event
)

// Kind ranks within a type section. Type always leads.
var kindRank = map[Kind]int{
	Type:        0,
	Constructor: 1,
	Method:      2,
	Property:    3,
	Field:       4,
	Event:       5,
}

// Rank returns the sort rank of k within a type section.
func (k Kind) Rank() int {
	if r, ok := kindRank[k]; ok {
		return r
	}
	return len(kindRank)
}

// String returns the lowercase label used in headings.
func (k Kind) String() string {
	switch k {
	case Type:
		return "type"
	case Constructor:
		return "constructor"
	case Method:
		return "method"
	case Property:
		return "property"
	case Field:
		return "field"
	case Event:
		return "event"
	default:
		return "unsupported"
	}
}

const (
	ctorName       = "#ctor"
	staticCtorName = "#cctor"
)

// Classify parses a documentation identifier such as "M:A.Foo.Bar(System.Int32)"
// into its kind, owning type and simple member name. The parameter list and
// conversion return suffix are not part of the member name; see SplitParams.
func Classify(identifier string) (Kind, string, string) {
	if len(identifier) < 3 || identifier[1] != ':' {
		return NotSupported, "", ""
	}
	rest := identifier[2:]
	var kind Kind
	switch identifier[0] {
	case 'T':
		if !validQualifiedName(rest) {
			return NotSupported, "", ""
		}
		return Type, rest, ""
	case 'M':
		kind = Method
	case 'P':
		kind = Property
	case 'F':
		kind = Field
	case 'E':
		kind = Event
	default:
		return NotSupported, "", ""
	}
	head, _ := SplitParams(rest)
	dot := strings.LastIndexByte(head, '.')
	if dot <= 0 || dot == len(head)-1 {
		return NotSupported, "", ""
	}
	typeName, memberName := head[:dot], head[dot+1:]
	if !validQualifiedName(typeName) {
		return NotSupported, "", ""
	}
	if kind == Method && (memberName == ctorName || memberName == staticCtorName) {
		kind = Constructor
	}
	return kind, typeName, memberName
}

// SplitParams separates "A.Foo.Bar(System.Int32)~System.String" into the
// qualified name and the raw parameter list without parentheses. Parameterless
// members return an empty list.
func SplitParams(qualified string) (string, string) {
	head := qualified
	if i := strings.IndexByte(head, '~'); i >= 0 {
		head = head[:i]
	}
	open := strings.IndexByte(head, '(')
	if open < 0 {
		return head, ""
	}
	params := head[open+1:]
	params = strings.TrimSuffix(params, ")")
	return head[:open], params
}

func validQualifiedName(name string) bool {
	if name == "" || strings.ContainsAny(name, "() \t\n") {
		return false
	}
	for _, seg := range strings.Split(name, ".") {
		if seg == "" {
			return false
		}
	}
	return true
}
