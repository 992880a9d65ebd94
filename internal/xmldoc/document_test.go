package xmldoc

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleXML = `<?xml version="1.0"?>
<doc>
    <assembly>
        <name>Sample.Lib</name>
    </assembly>
    <members>
        <!-- comments are dropped -->
        <member name="T:Sample.Lib.Widget">
            <summary>A <c>Widget</c> &amp; friends.</summary>
        </member>
        <member name="M:Sample.Lib.Widget.Spin(System.Int32)">
            <param name="turns">How many.</param>
        </member>
    </members>
</doc>`

func TestParseBuildsTree(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleXML))
	require.NoError(t, err)

	name, err := doc.AssemblyName()
	require.NoError(t, err)
	assert.Equal(t, "Sample.Lib", name)

	members, err := doc.Members()
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "T:Sample.Lib.Widget", members[0].Attr("name"))
	assert.Equal(t, "M:Sample.Lib.Widget.Spin(System.Int32)", members[1].Attr("name"))

	summary := members[0].Child("summary")
	require.NotNil(t, summary)
	assert.Equal(t, "A Widget & friends.", summary.Text())
	require.Len(t, summary.Content, 3)
	assert.True(t, summary.Content[0].IsText())
	assert.Equal(t, "c", summary.Content[1].Name)

	param := members[1].Child("param")
	assert.Equal(t, "turns", param.Attr("name"))
	assert.True(t, param.HasAttr("name"))
	assert.False(t, param.HasAttr("cref"))
}

func TestParseRejectsMalformedXML(t *testing.T) {
	_, err := Parse(strings.NewReader(`<doc><members></doc>`))
	require.Error(t, err)
	assert.True(t, goerrors.IsCategory(err, goerrors.CategoryValidation))
}

func TestParseRejectsEmptyInput(t *testing.T) {
	_, err := Parse(strings.NewReader(``))
	require.Error(t, err)
}

func TestMissingStructureIsFatal(t *testing.T) {
	doc, err := Parse(strings.NewReader(`<doc><members/></doc>`))
	require.NoError(t, err)
	_, err = doc.AssemblyName()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assembly")

	doc, err = Parse(strings.NewReader(`<doc><assembly><name>X</name></assembly></doc>`))
	require.NoError(t, err)
	_, err = doc.Members()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "members")
	assert.True(t, goerrors.IsCategory(err, goerrors.CategoryValidation))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Sample.Lib.xml")
	require.NoError(t, os.WriteFile(path, []byte(sampleXML), 0o644))

	doc, err := Load(path)
	require.NoError(t, err)
	members, err := doc.Members()
	require.NoError(t, err)
	assert.Len(t, members, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.xml"))
	require.Error(t, err)
	assert.True(t, goerrors.IsCategory(err, goerrors.CategoryCommand))
}
