package render

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

const textCodeDanglingLink = "MARKDOWN_DANGLING_LINK"

// ErrDanglingLink is the cause reported by Verify.
var ErrDanglingLink = errors.New("link target missing")

var anchorPattern = regexp.MustCompile(`<a\s+name=['"]([^'"]+)['"]`)

// Verify parses rendered Markdown and checks that every in-document link
// points at an anchor the document declares.
func Verify(markdown string) error {
	src := []byte(markdown)
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	doc := md.Parser().Parse(text.NewReader(src))

	anchors := make(map[string]bool)
	var targets []string
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Link:
			if dest := string(node.Destination); strings.HasPrefix(dest, "#") {
				targets = append(targets, dest[1:])
			}
		case *ast.RawHTML:
			for i := 0; i < node.Segments.Len(); i++ {
				seg := node.Segments.At(i)
				collectAnchors(anchors, seg.Value(src))
			}
		case *ast.HTMLBlock:
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				line := lines.At(i)
				collectAnchors(anchors, line.Value(src))
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return err
	}

	missing := make(map[string]bool)
	for _, t := range targets {
		if !anchors[t] {
			missing[t] = true
		}
	}
	if len(missing) == 0 {
		return nil
	}
	names := make([]string, 0, len(missing))
	for m := range missing {
		names = append(names, m)
	}
	sort.Strings(names)
	return goerrors.Wrap(ErrDanglingLink, goerrors.CategoryValidation,
		fmt.Sprintf("markdown links point at missing anchors: %s", strings.Join(names, ", "))).
		WithTextCode(textCodeDanglingLink)
}

func collectAnchors(into map[string]bool, raw []byte) {
	for _, m := range anchorPattern.FindAllSubmatch(raw, -1) {
		into[string(m[1])] = true
	}
}
