// Package render turns classified documentation entries into Markdown.
//
// A document is a sequence of units; each unit renders to one or more
// Markdown blocks and Join glues every block together. Anchors for all
// member units are assigned before anything renders, so cross references and
// the table of contents can point forward.
package render

import (
	"fmt"
	"strings"

	"github.com/agentflare-ai/go-xmldocmd/internal/member"
)

// Unit is one renderable part of the document. The set is closed:
// AssemblyUnit, MemberUnit and TableOfContents.
type Unit interface {
	RenderBlocks() []string
	unit()
}

// AssemblyUnit is the top-level heading naming the assembly.
type AssemblyUnit struct {
	Name string
}

func (AssemblyUnit) unit() {}

func (u AssemblyUnit) RenderBlocks() []string {
	return []string{fmt.Sprintf("<a name='%s'></a>\n# %s", AssemblyAnchor, escapeMarkdown(u.Name))}
}

// MemberUnit renders one entry: an anchored heading followed by the
// documentation sections.
type MemberUnit struct {
	Entry  member.Entry
	Anchor string
	index  *Index
}

func (*MemberUnit) unit() {}

// NewMemberUnits wraps ordered entries, assigning every anchor up front on a
// shared index.
func NewMemberUnits(entries []member.Entry) []*MemberUnit {
	index := NewIndex()
	units := make([]*MemberUnit, 0, len(entries))
	for _, e := range entries {
		units = append(units, &MemberUnit{
			Entry:  e,
			Anchor: index.Assign(e.ID),
			index:  index,
		})
	}
	return units
}

// Title is the heading text: the short type name for types, the member name
// with its parameter names for methods and indexers.
func (u *MemberUnit) Title() string {
	e := u.Entry
	if e.Kind == member.Type {
		return e.TypeShortName()
	}
	names := paramNames(u)
	if e.Kind == member.Method || e.Kind == member.Constructor || len(names) > 0 {
		return e.MemberName + "(" + strings.Join(names, ",") + ")"
	}
	return e.MemberName
}

// QualifiedName is the tooltip shown on links to the unit.
func (u *MemberUnit) QualifiedName() string {
	if u.Entry.Kind == member.Type {
		return u.Entry.TypeName
	}
	return u.Entry.TypeName + "." + u.Entry.MemberName
}

func paramNames(u *MemberUnit) []string {
	var names []string
	if !u.Entry.Synthesized() {
		for _, p := range u.Entry.Doc.Children("param") {
			names = append(names, p.Attr("name"))
		}
	}
	if len(names) > 0 {
		return names
	}
	for _, t := range u.Entry.ParamTypes() {
		head, _ := member.SplitParams(t)
		if i := strings.LastIndexByte(head, '.'); i >= 0 {
			head = head[i+1:]
		}
		names = append(names, head)
	}
	return names
}

func (u *MemberUnit) RenderBlocks() []string {
	level := "###"
	if u.Entry.Kind == member.Type {
		level = "##"
	}
	heading := fmt.Sprintf("<a name='%s'></a>\n%s %s `%s`", u.Anchor, level, escapeMarkdown(u.Title()), u.Entry.Kind)
	return append([]string{heading}, u.sections()...)
}

// TableOfContents lists every type with its members nested beneath.
type TableOfContents struct {
	Members []*MemberUnit
}

func (TableOfContents) unit() {}

// NewTableOfContents builds the contents over units already in body order.
func NewTableOfContents(units []*MemberUnit) TableOfContents {
	return TableOfContents{Members: units}
}

func (t TableOfContents) RenderBlocks() []string {
	blocks := []string{fmt.Sprintf("<a name='%s'></a>\n## Contents", ContentsAnchor)}
	if len(t.Members) == 0 {
		return blocks
	}
	lines := make([]string, 0, len(t.Members))
	for _, u := range t.Members {
		indent := "  "
		if u.Entry.Kind == member.Type {
			indent = ""
		}
		lines = append(lines, fmt.Sprintf("%s- [%s](#%s '%s')", indent, escapeMarkdown(u.Title()), u.Anchor, escapeTitle(u.QualifiedName())))
	}
	return append(blocks, strings.Join(lines, "\n"))
}

// Join renders units in order, separating blocks with a blank line and
// ending with a single newline.
func Join(units []Unit) string {
	var blocks []string
	for _, u := range units {
		for _, b := range u.RenderBlocks() {
			b = strings.TrimRight(b, " \t\n")
			if b != "" {
				blocks = append(blocks, b)
			}
		}
	}
	return strings.Join(blocks, "\n\n") + "\n"
}
