package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agentflare-ai/go-xmldocmd/internal/member"
	"github.com/agentflare-ai/go-xmldocmd/internal/xmldoc"
)

const (
	codeLanguage    = "csharp"
	frameworkAPIURL = "https://learn.microsoft.com/dotnet/api/"
)

// markdownWriter converts doc-comment markup into Markdown paragraphs.
// Inline content accumulates in cur; block content (code, lists) and
// paragraph breaks flush it.
type markdownWriter struct {
	index  *Index
	blocks []string
	cur    strings.Builder
}

func newWriter(index *Index) *markdownWriter {
	return &markdownWriter{index: index}
}

// markdown renders nodes as one Markdown fragment.
func markdown(index *Index, nodes []*xmldoc.Node) string {
	w := newWriter(index)
	w.nodes(nodes)
	return w.String()
}

// inlineMarkdown renders nodes on a single line, for table cells and
// emphasis.
func inlineMarkdown(index *Index, nodes []*xmldoc.Node) string {
	w := newWriter(index)
	w.nodes(nodes)
	w.flush()
	return strings.Join(w.blocks, " ")
}

func (w *markdownWriter) String() string {
	w.flush()
	return strings.Join(w.blocks, "\n\n")
}

func (w *markdownWriter) text(s string) {
	s = escapeMarkdown(collapseSpace(s))
	if s == "" {
		return
	}
	if strings.HasPrefix(s, " ") && (w.cur.Len() == 0 || strings.HasSuffix(w.cur.String(), " ")) {
		s = s[1:]
	}
	w.cur.WriteString(s)
}

func (w *markdownWriter) inline(s string) {
	w.cur.WriteString(s)
}

func (w *markdownWriter) flush() {
	p := strings.TrimSpace(w.cur.String())
	w.cur.Reset()
	if p != "" {
		w.blocks = append(w.blocks, p)
	}
}

func (w *markdownWriter) block(s string) {
	w.flush()
	if s != "" {
		w.blocks = append(w.blocks, s)
	}
}

func (w *markdownWriter) nodes(nodes []*xmldoc.Node) {
	for _, n := range nodes {
		w.node(n)
	}
}

func (w *markdownWriter) node(n *xmldoc.Node) {
	if n.IsText() {
		w.text(n.Data)
		return
	}
	switch n.Name {
	case "para", "p":
		w.flush()
		w.nodes(n.Content)
		w.flush()
	case "c":
		w.inline(codeSpan(collapseSpace(n.Text())))
	case "code":
		lang := n.Attr("lang")
		if lang == "" {
			lang = n.Attr("language")
		}
		if lang == "" {
			lang = codeLanguage
		}
		if code := codeText(n.Text()); code != "" {
			w.block(fence(code, lang))
		}
	case "see", "seealso":
		w.inline(w.reference(n))
	case "paramref", "typeparamref":
		w.inline(codeSpan(n.Attr("name")))
	case "br":
		w.inline("<br>")
	case "b", "strong":
		if s := inlineMarkdown(w.index, n.Content); s != "" {
			w.inline("**" + s + "**")
		}
	case "i", "em":
		if s := inlineMarkdown(w.index, n.Content); s != "" {
			w.inline("_" + s + "_")
		}
	case "a":
		href := n.Attr("href")
		label := inlineMarkdown(w.index, n.Content)
		if href == "" {
			w.inline(label)
			break
		}
		if label == "" {
			label = escapeMarkdown(href)
		}
		w.inline(fmt.Sprintf("[%s](%s)", label, href))
	case "list":
		w.block(w.list(n))
	case "inheritdoc", "include":
	default:
		w.nodes(n.Content)
	}
}

// reference renders see/seealso: cref targets link into the document when
// rendered there, framework types link to the API browser, everything else
// falls back to a code span.
func (w *markdownWriter) reference(n *xmldoc.Node) string {
	label := inlineMarkdown(w.index, n.Content)
	if href := n.Attr("href"); href != "" {
		if label == "" {
			label = escapeMarkdown(href)
		}
		return fmt.Sprintf("[%s](%s)", label, href)
	}
	if word := n.Attr("langword"); word != "" {
		return codeSpan(word)
	}
	cref := n.Attr("cref")
	if cref == "" {
		return label
	}
	return w.crefLink(cref, label)
}

// crefLink links cref with label, or with the short cref form when label is
// empty. Unresolvable references keep an explicit label as plain text.
func (w *markdownWriter) crefLink(cref, label string) string {
	text := label
	if text == "" {
		text = escapeMarkdown(crefLabel(cref))
	}
	if anchor, ok := w.index.Lookup(cref); ok {
		return fmt.Sprintf("[%s](#%s '%s')", text, anchor, escapeTitle(crefQualified(cref)))
	}
	if url := frameworkURL(cref); url != "" {
		return fmt.Sprintf("[%s](%s '%s')", text, url, escapeTitle(crefQualified(cref)))
	}
	if label != "" {
		return label
	}
	return codeSpan(crefLabel(cref))
}

// typeReference renders a parameter type taken from an identifier's
// parameter list.
func (w *markdownWriter) typeReference(typeName string) string {
	name := strings.TrimSuffix(typeName, "@")
	if name == "" {
		return ""
	}
	return w.crefLink("T:"+name, escapeMarkdown(name))
}

func (w *markdownWriter) list(n *xmldoc.Node) string {
	kind := strings.ToLower(n.Attr("type"))
	if kind == "table" {
		return w.table(n)
	}
	var lines []string
	for i, item := range n.Children("item") {
		marker := "-"
		if kind == "number" {
			marker = strconv.Itoa(i+1) + "."
		}
		lines = append(lines, marker+" "+w.listItem(item))
	}
	return strings.Join(lines, "\n")
}

func (w *markdownWriter) listItem(item *xmldoc.Node) string {
	term, desc := item.Child("term"), item.Child("description")
	switch {
	case term != nil && desc != nil:
		return "**" + inlineMarkdown(w.index, term.Content) + "**: " + inlineMarkdown(w.index, desc.Content)
	case desc != nil:
		return inlineMarkdown(w.index, desc.Content)
	case term != nil:
		return inlineMarkdown(w.index, term.Content)
	default:
		return inlineMarkdown(w.index, item.Content)
	}
}

func (w *markdownWriter) table(n *xmldoc.Node) string {
	header := []string{"Term", "Description"}
	if lh := n.Child("listheader"); lh != nil {
		header = w.row(lh)
	}
	rows := [][]string{header, {"----", "-----------"}}
	for _, item := range n.Children("item") {
		rows = append(rows, w.row(item))
	}
	return tableMarkdown(rows)
}

func (w *markdownWriter) row(item *xmldoc.Node) []string {
	cell := func(name string) string {
		if c := item.Child(name); c != nil {
			return escapeCell(inlineMarkdown(w.index, c.Content))
		}
		return ""
	}
	return []string{cell("term"), cell("description")}
}

func tableMarkdown(rows [][]string) string {
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, "| "+strings.Join(r, " | ")+" |")
	}
	return strings.Join(lines, "\n")
}

func crefQualified(cref string) string {
	if len(cref) > 2 && cref[1] == ':' {
		return cref[2:]
	}
	return cref
}

// crefLabel is the short display form: the type name for types and
// Type.Member for members.
func crefLabel(cref string) string {
	qualified := crefQualified(cref)
	head, _ := member.SplitParams(qualified)
	segs := strings.Split(head, ".")
	if strings.HasPrefix(cref, "T:") || len(segs) < 2 {
		return segs[len(segs)-1]
	}
	return segs[len(segs)-2] + "." + segs[len(segs)-1]
}

func frameworkURL(cref string) string {
	qualified := crefQualified(cref)
	head, _ := member.SplitParams(qualified)
	if !strings.HasPrefix(head, "System.") && !strings.HasPrefix(head, "Microsoft.") {
		return ""
	}
	if strings.ContainsAny(head, "{}[]*@#") {
		return ""
	}
	return frameworkAPIURL + strings.ToLower(strings.ReplaceAll(head, "`", "-"))
}
