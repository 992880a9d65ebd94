package convert

import (
	"bytes"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/agentflare-ai/go-xmldocmd/internal/logging"
	"github.com/agentflare-ai/go-xmldocmd/internal/member"
	"github.com/agentflare-ai/go-xmldocmd/internal/render"
	"github.com/agentflare-ai/go-xmldocmd/internal/xmldoc"
)

// scenario is one testdata/*.txtar archive. Sections:
//
//	input.xml  documentation export
//	oracle     "Type.Name true|false" per line; absent means no oracle
//	contains   lines that must appear in the output
//	absent     lines that must not appear
//	count      "text<TAB>n": text appears exactly n times
//	order      lines that must appear in this order
//	error      substring of the expected error; no output is checked
type scenario struct {
	input    string
	oracle   member.Oracle
	contains []string
	absent   []string
	count    map[string]int
	order    []string
	err      string
}

func loadScenario(t *testing.T, path string) scenario {
	t.Helper()
	ar, err := txtar.ParseFile(path)
	require.NoError(t, err)
	var sc scenario
	for _, f := range ar.Files {
		data := string(f.Data)
		switch f.Name {
		case "input.xml":
			sc.input = data
		case "oracle":
			oracle := member.StaticOracle{}
			for _, line := range lines(data) {
				name, value, ok := strings.Cut(line, " ")
				require.True(t, ok, "oracle line %q", line)
				public, err := strconv.ParseBool(value)
				require.NoError(t, err)
				oracle[name] = public
			}
			sc.oracle = oracle
		case "contains":
			sc.contains = lines(data)
		case "absent":
			sc.absent = lines(data)
		case "count":
			sc.count = make(map[string]int)
			for _, line := range lines(data) {
				text, n, ok := strings.Cut(line, "\t")
				require.True(t, ok, "count line %q", line)
				want, err := strconv.Atoi(n)
				require.NoError(t, err)
				sc.count[text] = want
			}
		case "order":
			sc.order = lines(data)
		case "error":
			sc.err = strings.TrimSpace(data)
		default:
			t.Fatalf("%s: unknown section %q", path, f.Name)
		}
	}
	require.NotEmpty(t, sc.input, "%s has no input.xml", path)
	return sc
}

func lines(data string) []string {
	var out []string
	for _, line := range strings.Split(data, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

func TestScenarios(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.txtar"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), ".txtar")
		t.Run(name, func(t *testing.T) {
			sc := loadScenario(t, path)
			doc, err := xmldoc.Parse(strings.NewReader(sc.input))
			require.NoError(t, err)

			out, err := ToMarkdown(doc, sc.oracle)
			if sc.err != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), sc.err)
				assert.Empty(t, out)
				return
			}
			require.NoError(t, err)

			for _, want := range sc.contains {
				assert.Contains(t, out, want)
			}
			for _, unwanted := range sc.absent {
				assert.NotContains(t, out, unwanted)
			}
			for text, want := range sc.count {
				assert.Equal(t, want, strings.Count(out, text), "occurrences of %q", text)
			}
			last := -1
			for _, want := range sc.order {
				idx := strings.Index(out, want)
				require.Greater(t, idx, last, "%q out of order", want)
				last = idx
			}
			require.NoError(t, render.Verify(out))
		})
	}
}

const sampleXML = `<doc>
  <assembly><name>Sample</name></assembly>
  <members>
    <member name="M:Sample.Widget.Spin"><summary>Spins.</summary></member>
    <member name="T:Sample.Widget"><summary>A widget.</summary></member>
    <member name="F:Sample.Widget.Count"/>
    <member name="T:Sample.Gadget"/>
    <member name="Q:Sample.Nothing"/>
  </members>
</doc>`

func parse(t *testing.T, src string) *xmldoc.Document {
	t.Helper()
	doc, err := xmldoc.Parse(strings.NewReader(src))
	require.NoError(t, err)
	return doc
}

func TestConvertLayout(t *testing.T) {
	out, err := New().Convert(parse(t, sampleXML))
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(out, "<a name='contents'></a>\n## Contents\n\n"))
	assert.True(t, strings.HasSuffix(out, "\n"))
	assert.False(t, strings.HasSuffix(out, "\n\n"))

	order := []string{
		"## Contents",
		"# Sample",
		"## Gadget `type`",
		"## Widget `type`",
		"### Spin() `method`",
		"### Count `field`",
	}
	last := -1
	for _, want := range order {
		idx := strings.Index(out, want)
		require.Greater(t, idx, last, want)
		last = idx
	}
	assert.NotContains(t, out, "Nothing")
}

func TestConvertIsDeterministic(t *testing.T) {
	doc := parse(t, sampleXML)
	first, err := ToMarkdown(doc, nil)
	require.NoError(t, err)
	second, err := ToMarkdown(doc, nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestUnitsSequence(t *testing.T) {
	units, err := New().Units(parse(t, sampleXML))
	require.NoError(t, err)
	require.Len(t, units, 2+4)

	_, ok := units[0].(render.TableOfContents)
	assert.True(t, ok, "first unit is the table of contents")
	asm, ok := units[1].(render.AssemblyUnit)
	require.True(t, ok, "second unit is the assembly")
	assert.Equal(t, "Sample", asm.Name)
	for _, u := range units[2:] {
		_, ok := u.(*render.MemberUnit)
		assert.True(t, ok)
	}
}

func TestConvertStructuralErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		err  error
	}{
		{"no assembly", `<doc><members/></doc>`, xmldoc.ErrMissingAssembly},
		{"no members", `<doc><assembly><name>A</name></assembly></doc>`, xmldoc.ErrMissingMembers},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := New().Convert(parse(t, tt.src))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.err)
			assert.True(t, goerrors.IsCategory(err, goerrors.CategoryValidation))
			assert.Empty(t, out)
		})
	}
}

func TestConvertEmptyMembers(t *testing.T) {
	out, err := New().Convert(parse(t, `<doc><assembly><name>Empty</name></assembly><members/></doc>`))
	require.NoError(t, err)
	assert.Equal(t, "<a name='contents'></a>\n## Contents\n\n<a name='assembly'></a>\n# Empty\n", out)
}

func TestConvertUnknownTypeIsValidationError(t *testing.T) {
	oracle := member.StaticOracle{"Sample.Widget": true}
	_, err := New(WithOracle(oracle)).Convert(parse(t, sampleXML))
	require.Error(t, err)
	assert.ErrorIs(t, err, member.ErrTypeNotFound)
	assert.True(t, goerrors.IsCategory(err, goerrors.CategoryValidation))
	assert.Contains(t, err.Error(), "Sample.Gadget")
}

func TestConvertLogsSummary(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewConsole(&buf, logging.LevelDebug)
	oracle := member.StaticOracle{"Sample.Widget": true, "Sample.Gadget": false}

	_, err := New(WithOracle(oracle), WithLogger(logger)).Convert(parse(t, sampleXML))
	require.NoError(t, err)

	logs := buf.String()
	assert.Contains(t, logs, "DEBUG skipping unsupported member")
	assert.Contains(t, logs, "id=Q:Sample.Nothing")
	assert.Contains(t, logs, "INFO converted documentation")
	assert.Contains(t, logs, "assembly=Sample")
	assert.Contains(t, logs, "hidden=1")
	assert.Contains(t, logs, "unsupported=1")
	assert.Contains(t, logs, "units=3")
}
