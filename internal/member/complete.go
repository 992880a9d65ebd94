package member

import (
	"cmp"
	"slices"
)

// Group is the set of entries sharing one TypeName.
type Group struct {
	TypeName string
	Entries  []Entry
}

// GroupByType partitions entries by TypeName in first-seen order.
func GroupByType(entries []Entry) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, e := range entries {
		i, ok := index[e.TypeName]
		if !ok {
			i = len(groups)
			index[e.TypeName] = i
			groups = append(groups, Group{TypeName: e.TypeName})
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}
	return groups
}

// Complete guarantees exactly one Type entry per TypeName. Groups without
// one get a Placeholder in front. An identifier documented more than once
// keeps its first entry.
func Complete(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, g := range GroupByType(entries) {
		hasType := slices.ContainsFunc(g.Entries, func(e Entry) bool { return e.Kind == Type })
		if !hasType {
			out = append(out, Placeholder(g.TypeName))
		}
		for _, e := range g.Entries {
			if seen[e.ID] {
				continue
			}
			seen[e.ID] = true
			out = append(out, e)
		}
	}
	return out
}

// Compare orders entries by TypeName, kind rank, then MemberName. It is the
// only ordering used for both the body and the table of contents.
func Compare(a, b Entry) int {
	if c := cmp.Compare(a.TypeName, b.TypeName); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Kind.Rank(), b.Kind.Rank()); c != 0 {
		return c
	}
	return cmp.Compare(a.MemberName, b.MemberName)
}

// Sort orders entries in place with Compare. Equal entries (overloads) keep
// their relative order.
func Sort(entries []Entry) {
	slices.SortStableFunc(entries, Compare)
}
