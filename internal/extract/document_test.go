package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html lang="en">
<head>
  <title>Widget Guide | Acme</title>
  <meta name="description" content="Everything about widgets.">
  <meta name="author" content="Jane Doe">
  <meta property="article:published_time" content="2024-01-10">
  <link rel="canonical" href="https://acme.example/widgets">
  <script type="application/ld+json">{"@context":"https://schema.org","@graph":[{"@type":"Article","headline":"Widgets"},{"@type":["Organization","Brand"],"name":"Acme"}]}</script>
  <script type="application/ld+json">{not json</script>
  <style>.x { color: red }</style>
</head>
<body>
  <h1>Widget Guide</h1>
  <p>A widget is a small mechanical device. Widgets are used everywhere.</p>
  <h2>How widgets work</h2>
  <p>Widgets convert energy into motion.</p>
  <ul><li>Fast</li><li>Cheap</li></ul>
  <ol><li>Install the widget.</li></ol>
  <table><tr><td>Size</td><td>10cm</td></tr></table>
  <h3>Details</h3>
  <p>See the <a href="https://nist.gov/widgets" rel="nofollow">NIST page</a> for <strong>more</strong>.</p>
  <div itemscope itemtype="https://schema.org/Product"><span>Widget X</span></div>
  <div typeof="schema:HowTo"></div>
  <time datetime="2024-02-01">Feb 1</time>
  <img src="a.png" alt="A widget"><img src="b.png">
  <script>var ignored = "script text";</script>
</body>
</html>`

func TestParse_HTML(t *testing.T) {
	d := Parse(samplePage)
	require.True(t, d.IsHTML)

	assert.Equal(t, "Widget Guide | Acme", d.Title)
	assert.Equal(t, "Everything about widgets.", d.MetaDescription)
	assert.Equal(t, "en", d.Lang)
	assert.Equal(t, "https://acme.example/widgets", d.Canonical)
	assert.Equal(t, "2024-01-10", d.Meta["article:published_time"])

	require.Len(t, d.Headings, 3)
	assert.Equal(t, Heading{Level: 1, Text: "Widget Guide"}, d.Headings[0])
	assert.Equal(t, 2, d.Headings[1].Level)
	assert.Equal(t, 3, d.Headings[2].Level)
	assert.Equal(t, 1, d.HeadingCount(1))
	assert.Equal(t, "How widgets work", d.FirstHeading(2))

	assert.Len(t, d.Paragraphs, 3)
	assert.Equal(t, 1, d.OrderedLists)
	assert.Equal(t, 1, d.UnorderedLists)
	assert.Equal(t, 3, d.ListItems)
	assert.Equal(t, 1, d.Tables)
	assert.Equal(t, 1, d.BoldCount)
	assert.Equal(t, []string{"2024-02-01"}, d.Times)

	require.Len(t, d.Images, 2)
	assert.True(t, d.Images[0].HasAlt)
	assert.False(t, d.Images[1].HasAlt)

	require.Len(t, d.Links, 1)
	assert.Equal(t, "https://nist.gov/widgets", d.Links[0].Href)
	assert.Equal(t, "nofollow", d.Links[0].Rel)

	assert.Equal(t, 1, d.MalformedJSONLD)
	types := d.SchemaTypes()
	assert.Equal(t, []string{"Article", "Organization", "Brand"}, types.JSONLD)
	assert.Equal(t, []string{"Product"}, types.Microdata)
	assert.Equal(t, []string{"HowTo"}, types.RDFa)
	assert.True(t, d.HasSchemaType("faqpage", "organization"))
	assert.Equal(t, []any{"Acme"}, d.JSONLDField("name"))

	assert.Contains(t, d.AuthorHints, "meta:Jane Doe")
	assert.NotContains(t, d.Text, "script text")
	assert.NotContains(t, d.Text, "color: red")
	assert.Contains(t, d.Text, "Widget Guide\n")

	assert.Contains(t, d.Sentences, "A widget is a small mechanical device.")
	assert.Greater(t, d.WordCount(), 10)
}

func TestParse_Sections(t *testing.T) {
	d := Parse(`<p>Intro text here.</p><h2>First</h2><p>One.</p><p>Two.</p><h2>Second</h2><ul><li>Item</li></ul>`)

	require.Len(t, d.Sections, 3)
	assert.Equal(t, Section{Heading: "", Level: 0, Body: "Intro text here."}, d.Sections[0])
	assert.Equal(t, Section{Heading: "First", Level: 2, Body: "One.\nTwo."}, d.Sections[1])
	assert.Equal(t, Section{Heading: "Second", Level: 2, Body: "Item"}, d.Sections[2])
}

func TestParse_NestedBlocksCountedOnce(t *testing.T) {
	d := Parse(`<blockquote><p>Quoted paragraph text.</p></blockquote>`)

	assert.Equal(t, []string{"Quoted paragraph text."}, d.Blocks)
	assert.Equal(t, 1, d.Blockquotes)
}

func TestParse_PlainText(t *testing.T) {
	content := "# Title\n\nFirst paragraph line one\nline two.\n\n## Part\n\n- alpha\n- beta\n\n1. one\n2. two\n\n| a | b |\n|---|---|\n\nClosing **bold** words."
	d := Parse(content)

	require.False(t, d.IsHTML)
	require.Len(t, d.Headings, 2)
	assert.Equal(t, Heading{Level: 1, Text: "Title"}, d.Headings[0])
	assert.Equal(t, Heading{Level: 2, Text: "Part"}, d.Headings[1])
	assert.Equal(t, []string{"First paragraph line one line two.", "Closing **bold** words."}, d.Paragraphs)
	assert.Equal(t, 1, d.UnorderedLists)
	assert.Equal(t, 1, d.OrderedLists)
	assert.Equal(t, 4, d.ListItems)
	assert.Equal(t, 1, d.Tables)
	assert.Equal(t, 1, d.BoldCount)
	require.Len(t, d.Sections, 2)
	assert.Equal(t, "alpha\nbeta\none\ntwo\nClosing **bold** words.", d.Sections[1].Body)
}

func TestParse_Empty(t *testing.T) {
	d := Parse("")

	assert.Empty(t, d.Headings)
	assert.Empty(t, d.Sentences)
	assert.Equal(t, 0, d.WordCount())
	assert.False(t, d.SchemaTypes().Any())
}

func TestLastSegment(t *testing.T) {
	assert.Equal(t, "Article", lastSegment("https://schema.org/Article"))
	assert.Equal(t, "Article", lastSegment("http://schema.org/Article/"))
	assert.Equal(t, "Article", lastSegment("schema:Article"))
	assert.Equal(t, "Thing", lastSegment("Thing"))
}
