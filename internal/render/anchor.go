package render

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/goliatone/go-slug"
)

// Reserved anchors for the fixed units.
const (
	ContentsAnchor = "contents"
	AssemblyAnchor = "assembly"
)

// Anchor derives the link target for a documentation identifier. Body
// headings and table-of-contents links both go through Index.Assign, which
// calls Anchor, so the two can never disagree.
func Anchor(id string) string {
	normalized, err := slug.Normalize(id)
	if err != nil || normalized == "" {
		return fallbackAnchor(id)
	}
	return normalized
}

func fallbackAnchor(id string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(id) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "member"
	}
	return out
}

// Index maps documentation identifiers to unique anchors.
type Index struct {
	byID map[string]string
	used map[string]bool
}

// NewIndex returns an Index with the fixed unit anchors reserved.
func NewIndex() *Index {
	return &Index{
		byID: make(map[string]string),
		used: map[string]bool{ContentsAnchor: true, AssemblyAnchor: true},
	}
}

// Assign returns the anchor for id, allocating one on first use. Collisions
// between distinct identifiers get a numeric suffix in assignment order.
func (x *Index) Assign(id string) string {
	if a, ok := x.byID[id]; ok {
		return a
	}
	base := Anchor(id)
	a := base
	for n := 1; x.used[a]; n++ {
		a = base + "-" + strconv.Itoa(n)
	}
	x.byID[id] = a
	x.used[a] = true
	return a
}

// Lookup returns the anchor previously assigned to id.
func (x *Index) Lookup(id string) (string, bool) {
	if x == nil {
		return "", false
	}
	a, ok := x.byID[id]
	return a, ok
}
