package pillars

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var goodLLMSTxt = "# Example\n\n> Example builds widgets for teams of every size and publishes guides about them.\n\n" +
	"## Docs\n\n- [Quickstart](https://example.com/quickstart): install and configure widgets\n" +
	"- [API](https://example.com/api): the reference for every widget endpoint\n" +
	"- [FAQ](https://example.com/faq): answers to common questions\n"

func TestLLMSTxtQuality(t *testing.T) {
	require.GreaterOrEqual(t, len(goodLLMSTxt), 200)
	assert.Equal(t, 100, LLMSTxtQuality(LLMSTxtChecks(goodLLMSTxt)))
	assert.Equal(t, 20, LLMSTxtQuality(LLMSTxtChecks("# Only a title")))
	assert.Equal(t, 45, LLMSTxtQuality(LLMSTxtChecks("# T\n- [a](b)")))
	assert.Equal(t, 0, LLMSTxtQuality(LLMSTxtChecks("")))
}

func TestMachineReadability_Full(t *testing.T) {
	fetcher := &stubFetcher{responses: map[string]*FetchedText{
		"https://example.com/llms.txt": {StatusCode: 200, Body: goodLLMSTxt},
	}}
	content := `<html lang="en"><head><title>T</title><meta name="description" content="d">
<link rel="canonical" href="https://example.com/p">
<script type="application/ld+json">{"@type":["Article","Organization"]}</script></head><body></body></html>`

	res := NewMachineReadability(Network{Fetcher: fetcher}).Score(context.Background(), content, &Context{URL: "https://example.com/p"})

	// 4 structured data + 3 valuable types + 2 metadata + 6 llms.txt
	assert.Equal(t, 15.0, res.Score)
	llms := res.Evidence.Map("llms_txt")
	assert.Equal(t, 100, llms.Int("quality"))
	assert.Equal(t, true, llms.Bool("found"))
}

func TestMachineReadability_NoURL(t *testing.T) {
	content := `<div itemscope itemtype="https://schema.org/Product"></div>`
	res := NewMachineReadability(Network{}).Score(context.Background(), content, nil)

	// 4 structured data + 2 for one valuable type
	assert.Equal(t, 6.0, res.Score)
	assert.Equal(t, "no URL provided", res.Evidence.Map("llms_txt").String("reason"))
}

func TestMachineReadability_MalformedJSONLDIgnored(t *testing.T) {
	content := `<script type="application/ld+json">{"@type": "Article",</script><p>x</p>`
	res := NewMachineReadability(Network{}).Score(context.Background(), content, nil)

	assert.Equal(t, 0.0, res.Score)
	assert.Equal(t, false, res.Evidence["has_structured_data"])
	assert.Equal(t, 1, res.Evidence["malformed_json_ld"])
}

func TestMachineReadability_HTMLRejected(t *testing.T) {
	fetcher := &stubFetcher{responses: map[string]*FetchedText{
		"https://example.com/llms.txt": {StatusCode: 200, Body: "<!DOCTYPE html><html><body># Not really</body></html>"},
	}}
	res := NewMachineReadability(Network{Fetcher: fetcher}).Score(context.Background(), "", &Context{URL: "https://example.com/"})

	llms := res.Evidence.Map("llms_txt")
	assert.True(t, llms.Bool("looks_like_html"))
	assert.Equal(t, 0, llms.Int("quality"))
}

func TestMachineReadability_PartialLLMSTxt(t *testing.T) {
	body := "# Example\n> Short description\n" + strings.Repeat("filler text ", 5)
	fetcher := &stubFetcher{responses: map[string]*FetchedText{"https://example.com/llms.txt": {StatusCode: 200, Body: body}}}
	res := NewMachineReadability(Network{Fetcher: fetcher}).Score(context.Background(), "", &Context{URL: "https://example.com/"})

	llms := res.Evidence.Map("llms_txt")
	assert.Equal(t, 40, llms.Int("quality"))
	assert.Equal(t, 2.4, res.Score)
}
