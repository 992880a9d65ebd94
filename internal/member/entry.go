package member

import (
	"strings"

	"github.com/agentflare-ai/go-xmldocmd/internal/logging"
	"github.com/agentflare-ai/go-xmldocmd/internal/xmldoc"
)

// Entry is one documented symbol. Entries are values; the pipeline never
// mutates an entry after construction.
type Entry struct {
	ID         string
	Kind       Kind
	TypeName   string
	MemberName string
	Params     string
	Doc        *xmldoc.Node
}

// NewEntry classifies a <member> node.
func NewEntry(node *xmldoc.Node) Entry {
	id := strings.TrimSpace(node.Attr("name"))
	kind, typeName, memberName := Classify(id)
	e := Entry{
		ID:         id,
		Kind:       kind,
		TypeName:   typeName,
		MemberName: memberName,
		Doc:        node,
	}
	if kind != NotSupported && kind != Type {
		_, e.Params = SplitParams(id[2:])
	}
	return e
}

// Placeholder returns the synthesized type entry for a type that only has
// member-level documentation.
func Placeholder(typeName string) Entry {
	return Entry{
		ID:       "T:" + typeName,
		Kind:     Type,
		TypeName: typeName,
	}
}

// Synthesized reports whether e was created by Complete rather than read
// from the document.
func (e Entry) Synthesized() bool {
	return e.Doc == nil
}

// Namespace is the owning type's qualified name without its last segment.
func (e Entry) Namespace() string {
	if i := strings.LastIndexByte(e.TypeName, '.'); i >= 0 {
		return e.TypeName[:i]
	}
	return ""
}

// TypeShortName is the last segment of TypeName.
func (e Entry) TypeShortName() string {
	if i := strings.LastIndexByte(e.TypeName, '.'); i >= 0 {
		return e.TypeName[i+1:]
	}
	return e.TypeName
}

// ParamTypes splits Params on top-level commas.
func (e Entry) ParamTypes() []string {
	return splitTopLevel(e.Params)
}

func splitTopLevel(list string) []string {
	if strings.TrimSpace(list) == "" {
		return nil
	}
	var (
		out   []string
		depth int
		start int
	)
	for i := 0; i < len(list); i++ {
		switch list[i] {
		case '{', '[', '(':
			depth++
		case '}', ']', ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(list[start:i]))
				start = i + 1
			}
		}
	}
	return append(out, strings.TrimSpace(list[start:]))
}

// Discover classifies every member node and drops unsupported identifiers.
func Discover(nodes []*xmldoc.Node, logger logging.Logger) []Entry {
	if logger == nil {
		logger = logging.NoOp()
	}
	entries := make([]Entry, 0, len(nodes))
	for _, node := range nodes {
		e := NewEntry(node)
		if e.Kind == NotSupported {
			logger.Debug("skipping unsupported member", "id", e.ID)
			continue
		}
		entries = append(entries, e)
	}
	return entries
}
