package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentflare-ai/go-xmldocmd/internal/member"
	"github.com/agentflare-ai/go-xmldocmd/internal/xmldoc"
)

const richXML = `<doc>
  <assembly><name>Sample</name></assembly>
  <members>
    <member name="T:A.Bar">
      <summary>The bar.</summary>
    </member>
    <member name="M:A.Bar.Run(System.Int32,System.String)">
      <summary>
        Runs with <paramref name="count"/> against <see cref="T:A.Bar"/>,
        a <see cref="T:System.String"/> and <see cref="T:Other.Thing"/>.
        Returns <see langword="null"/> on <c>cancel</c>.
        <para>Second paragraph with <see href="https://example.com">a link</see>.</para>
      </summary>
      <param name="count">How many | times.</param>
      <param name="label">The label.</param>
      <returns>The <b>result</b>.</returns>
      <exception cref="T:System.ArgumentException">When bad.</exception>
      <remarks>
        <list type="bullet">
          <item><description>one</description></item>
          <item><term>two</term><description>second</description></item>
        </list>
      </remarks>
      <example>
        <code>
            var bar = new Bar();
              bar.Run(1, "x");
        </code>
      </example>
      <seealso cref="M:A.Foo.Go"/>
    </member>
    <member name="M:A.Foo.Go">
      <inheritdoc/>
    </member>
    <member name="T:A.List` + "`" + `1">
      <typeparam name="T">Element type.</typeparam>
    </member>
  </members>
</doc>`

func buildUnits(t *testing.T, src string) []*MemberUnit {
	t.Helper()
	doc, err := xmldoc.Parse(strings.NewReader(src))
	require.NoError(t, err)
	nodes, err := doc.Members()
	require.NoError(t, err)
	entries := member.Complete(member.Discover(nodes, nil))
	member.Sort(entries)
	return NewMemberUnits(entries)
}

func unitByID(t *testing.T, units []*MemberUnit, id string) *MemberUnit {
	t.Helper()
	for _, u := range units {
		if u.Entry.ID == id {
			return u
		}
	}
	t.Fatalf("no unit %s", id)
	return nil
}

func TestMemberUnitRendersSections(t *testing.T) {
	units := buildUnits(t, richXML)
	bar := unitByID(t, units, "T:A.Bar")
	run := unitByID(t, units, "M:A.Bar.Run(System.Int32,System.String)")
	goUnit := unitByID(t, units, "M:A.Foo.Go")

	assert.Equal(t, "Run(count,label)", run.Title())
	out := strings.Join(run.RenderBlocks(), "\n\n")

	assert.Contains(t, out, "<a name='"+run.Anchor+"'></a>\n### Run(count,label) `method`")
	assert.Contains(t, out, "##### Summary\n\nRuns with `count` against [Bar](#"+bar.Anchor+" 'A.Bar'), a [String](https://learn.microsoft.com/dotnet/api/system.string 'System.String') and `Thing`. Returns `null` on `cancel`.")
	assert.Contains(t, out, "\n\nSecond paragraph with [a link](https://example.com).")
	assert.Contains(t, out, "##### Returns\n\nThe **result**.")
	assert.Contains(t, out, "| count | [System.Int32](https://learn.microsoft.com/dotnet/api/system.int32 'System.Int32') | How many \\| times. |")
	assert.Contains(t, out, "| label | [System.String](https://learn.microsoft.com/dotnet/api/system.string 'System.String') | The label. |")
	assert.Contains(t, out, "| [ArgumentException](https://learn.microsoft.com/dotnet/api/system.argumentexception 'System.ArgumentException') | When bad. |")
	assert.Contains(t, out, "##### Remarks\n\n- one\n- **two**: second")
	assert.Contains(t, out, "##### Example\n\n```csharp\nvar bar = new Bar();\n  bar.Run(1, \"x\");\n```")
	assert.Contains(t, out, "##### See Also\n\n- [Foo.Go](#"+goUnit.Anchor+" 'A.Foo.Go')")

	sectionOrder := []string{"##### Summary", "##### Returns", "##### Parameters", "##### Exceptions", "##### Remarks", "##### Example", "##### See Also"}
	last := -1
	for _, s := range sectionOrder {
		idx := strings.Index(out, s)
		require.Greater(t, idx, last, s)
		last = idx
	}

	goOut := strings.Join(goUnit.RenderBlocks(), "\n\n")
	assert.Contains(t, goOut, "### Go() `method`")
	assert.Contains(t, goOut, "##### Summary\n\n*Inherit from parent.*")
}

func TestSynthesizedTypeHasHeadingOnly(t *testing.T) {
	units := buildUnits(t, richXML)
	foo := unitByID(t, units, "T:A.Foo")
	require.True(t, foo.Entry.Synthesized())
	assert.Equal(t, []string{
		"<a name='" + foo.Anchor + "'></a>\n## Foo `type`",
		"##### Namespace",
		"A",
	}, foo.RenderBlocks())
}

func TestGenericTypeTitleIsEscaped(t *testing.T) {
	units := buildUnits(t, richXML)
	list := unitByID(t, units, "T:A.List`1")
	out := strings.Join(list.RenderBlocks(), "\n\n")
	assert.Contains(t, out, "## List\\`1 `type`")
	assert.Contains(t, out, "##### Generic Types\n\n| Name | Description |\n| ---- | ----------- |\n| T | Element type. |")
}

func TestTableOfContentsMatchesBody(t *testing.T) {
	units := buildUnits(t, richXML)
	toc := NewTableOfContents(units).RenderBlocks()
	require.Len(t, toc, 2)
	assert.Equal(t, "<a name='contents'></a>\n## Contents", toc[0])

	lines := strings.Split(toc[1], "\n")
	require.Len(t, lines, len(units))
	for i, u := range units {
		assert.Contains(t, lines[i], "](#"+u.Anchor+" '")
		if u.Entry.Kind == member.Type {
			assert.True(t, strings.HasPrefix(lines[i], "- ["), lines[i])
		} else {
			assert.True(t, strings.HasPrefix(lines[i], "  - ["), lines[i])
		}
		assert.Contains(t, u.RenderBlocks()[0], "<a name='"+u.Anchor+"'></a>")
	}
}

func TestEmptyTableOfContents(t *testing.T) {
	assert.Equal(t, []string{"<a name='contents'></a>\n## Contents"}, NewTableOfContents(nil).RenderBlocks())
}

func TestJoin(t *testing.T) {
	units := buildUnits(t, richXML)
	all := []Unit{NewTableOfContents(units), AssemblyUnit{Name: "Sample"}}
	for _, u := range units {
		all = append(all, u)
	}
	out := Join(all)
	assert.True(t, strings.HasSuffix(out, "\n"))
	assert.False(t, strings.HasSuffix(out, "\n\n"))
	assert.NotContains(t, out, "\n\n\n")
	assert.Less(t, strings.Index(out, "## Contents"), strings.Index(out, "# Sample"))
	assert.Equal(t, out, Join(all))
	require.NoError(t, Verify(out))
}

func TestIndex(t *testing.T) {
	x := NewIndex()
	a := x.Assign("T:A.Foo")
	assert.Equal(t, a, x.Assign("T:A.Foo"))
	got, ok := x.Lookup("T:A.Foo")
	assert.True(t, ok)
	assert.Equal(t, a, got)
	_, ok = x.Lookup("T:A.Missing")
	assert.False(t, ok)

	assert.Equal(t, "contents-1", x.Assign("contents"))
	assert.Equal(t, "assembly-1", x.Assign("assembly"))
}

func TestFallbackAnchor(t *testing.T) {
	assert.Equal(t, "m-a-foo-ctor-system-int32", fallbackAnchor("M:A.Foo.#ctor(System.Int32)"))
	assert.Equal(t, "t-a-list-1", fallbackAnchor("T:A.List`1"))
	assert.Equal(t, "member", fallbackAnchor("###"))
	assert.NotEmpty(t, Anchor("T:A.Foo"))
}

func TestVerifyReportsDanglingLinks(t *testing.T) {
	err := Verify("<a name='here'></a>\n# Title\n\n- [ok](#here)\n- [bad](#nowhere 'x')\n- [web](https://example.com)\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nowhere")
	assert.NotContains(t, err.Error(), "here,")

	assert.NoError(t, Verify("<a name='here'></a>\n# Title\n\n[ok](#here)\n"))
}

func TestInlineMarkup(t *testing.T) {
	doc, err := xmldoc.Parse(strings.NewReader(`<summary>
		Use <i>care</i>.<br/>Next   line with <typeparamref name="T"/>.
		<list type="number"><item><description>a</description></item><item><description>b</description></item></list>
		<list type="table">
			<listheader><term>Key</term><description>Meaning</description></listheader>
			<item><term>x</term><description>y</description></item>
		</list>
		<a href="https://example.org">site</a>
	</summary>`))
	require.NoError(t, err)
	out := markdown(NewIndex(), doc.Root.Content)
	assert.Equal(t, "Use _care_.<br>Next line with `T`.\n\n"+
		"1. a\n2. b\n\n"+
		"| Key | Meaning |\n| ---- | ----------- |\n| x | y |\n\n"+
		"[site](https://example.org)", out)
}

func TestProseIsEscaped(t *testing.T) {
	doc, err := xmldoc.Parse(strings.NewReader(`<summary>Returns a List&lt;T&gt; of *items* in [snake_case] form, see <c>a_b</c>.</summary>`))
	require.NoError(t, err)
	out := markdown(NewIndex(), doc.Root.Content)
	assert.Equal(t, `Returns a List\<T\> of \*items\* in \[snake\_case\] form, see `+"`a_b`.", out)
	require.NoError(t, Verify(out))
}
