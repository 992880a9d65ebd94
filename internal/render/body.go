package render

import (
	"strings"

	"github.com/agentflare-ai/go-xmldocmd/internal/member"
	"github.com/agentflare-ai/go-xmldocmd/internal/xmldoc"
)

const inheritedSummary = "*Inherit from parent.*"

// sections renders the documentation body in a fixed order. Sections without
// content are skipped.
func (u *MemberUnit) sections() []string {
	var blocks []string
	add := func(title, body string) {
		if body = strings.TrimSpace(body); body != "" {
			blocks = append(blocks, "##### "+title, body)
		}
	}
	if u.Entry.Kind == member.Type {
		add("Namespace", escapeMarkdown(u.Entry.Namespace()))
	}
	doc := u.Entry.Doc
	if doc == nil {
		return blocks
	}
	add("Summary", u.summary(doc))
	add("Value", u.childMarkdown(doc, "value"))
	add("Returns", u.childMarkdown(doc, "returns"))
	add("Parameters", u.parameters(doc))
	add("Generic Types", u.namedTable(doc.Children("typeparam")))
	add("Exceptions", u.exceptions(doc))
	add("Remarks", u.childMarkdown(doc, "remarks"))
	add("Example", u.childMarkdown(doc, "example"))
	add("See Also", u.seeAlso(doc))
	return blocks
}

func (u *MemberUnit) summary(doc *xmldoc.Node) string {
	if s := u.childMarkdown(doc, "summary"); s != "" {
		return s
	}
	if doc.Child("inheritdoc") != nil {
		return inheritedSummary
	}
	return ""
}

func (u *MemberUnit) childMarkdown(doc *xmldoc.Node, name string) string {
	var parts []string
	for _, c := range doc.Children(name) {
		if s := markdown(u.index, c.Content); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}

// parameters pairs each <param> with the type at the same position in the
// identifier's parameter list.
func (u *MemberUnit) parameters(doc *xmldoc.Node) string {
	params := doc.Children("param")
	if len(params) == 0 {
		return ""
	}
	types := u.Entry.ParamTypes()
	w := newWriter(u.index)
	rows := [][]string{
		{"Name", "Type", "Description"},
		{"----", "----", "-----------"},
	}
	for i, p := range params {
		typ := ""
		if i < len(types) {
			typ = w.typeReference(types[i])
		}
		rows = append(rows, []string{
			escapeCell(escapeMarkdown(p.Attr("name"))),
			escapeCell(typ),
			escapeCell(inlineMarkdown(u.index, p.Content)),
		})
	}
	return tableMarkdown(rows)
}

func (u *MemberUnit) namedTable(nodes []*xmldoc.Node) string {
	if len(nodes) == 0 {
		return ""
	}
	rows := [][]string{
		{"Name", "Description"},
		{"----", "-----------"},
	}
	for _, n := range nodes {
		rows = append(rows, []string{
			escapeCell(escapeMarkdown(n.Attr("name"))),
			escapeCell(inlineMarkdown(u.index, n.Content)),
		})
	}
	return tableMarkdown(rows)
}

func (u *MemberUnit) exceptions(doc *xmldoc.Node) string {
	nodes := doc.Children("exception")
	if len(nodes) == 0 {
		return ""
	}
	w := newWriter(u.index)
	rows := [][]string{
		{"Name", "Description"},
		{"----", "-----------"},
	}
	for _, n := range nodes {
		name := n.Attr("cref")
		if name != "" {
			name = w.crefLink(name, "")
		}
		rows = append(rows, []string{
			escapeCell(name),
			escapeCell(inlineMarkdown(u.index, n.Content)),
		})
	}
	return tableMarkdown(rows)
}

func (u *MemberUnit) seeAlso(doc *xmldoc.Node) string {
	w := newWriter(u.index)
	var lines []string
	for _, n := range doc.Children("seealso") {
		if ref := w.reference(n); ref != "" {
			lines = append(lines, "- "+ref)
		}
	}
	return strings.Join(lines, "\n")
}
