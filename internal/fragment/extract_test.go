package fragment

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractFragment(t *testing.T) {
	tests := []struct {
		name  string
		html  string
		start string
		end   string
		max   int
		want  string
	}{
		{"between markers", "a<x>BODY</x>b", "<x>", "</x>", 0, "BODY"},
		{"start missing", "abc", "<x>", "</x>", 0, ""},
		{"end missing", "a<x>BODY", "<x>", "</x>", 0, ""},
		{"no end uses maxLen", "prefix::0123456789", "prefix::", "", 4, "0123"},
		{"no end, maxLen exceeds remaining", "prefix::01", "prefix::", "", 50, "01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractFragment(tt.html, tt.start, tt.end, tt.max)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractScriptContent(t *testing.T) {
	html := `<html><script id="app-data">{"a":1}</script><script>var marker_blob = 42;</script></html>`

	assert.Equal(t, `{"a":1}`, ExtractScriptContent(html, "app-data"))
	assert.Equal(t, "var marker_blob = 42;", ExtractScriptContent(html, "marker_blob"))
	assert.Equal(t, "", ExtractScriptContent(html, "nonexistent"))
}

func TestExtractMetaTags(t *testing.T) {
	html := `<html><head><title>My Page</title>
	<meta property="og:title" content="OG Title">
	<meta property="og:description" content="OG Desc">
	<meta property="og:image" content="https://example.com/img.jpg">
	<meta property="og:url" content="https://example.com/p/1">
	</head></html>`

	tags := ExtractMetaTags(html)
	assert.Equal(t, "My Page", tags.Title)
	assert.Equal(t, "OG Title", tags.OGTitle)
	assert.Equal(t, "OG Desc", tags.OGDescription)
	assert.Equal(t, "https://example.com/img.jpg", tags.OGImage)
	assert.Equal(t, "https://example.com/p/1", tags.OGURL)
}

func TestExtractMetaTags_Missing(t *testing.T) {
	tags := ExtractMetaTags("<html></html>")
	assert.Empty(t, tags.Title)
	assert.Empty(t, tags.OGTitle)
}

func TestExtractAll(t *testing.T) {
	text := `id=1 id=2 id=3`
	got := ExtractAll(text, regexp.MustCompile(`id=(\d+)`), -1)
	assert.Equal(t, []string{"1", "2", "3"}, got)
}

func TestExtractAll_Limit(t *testing.T) {
	text := `id=1 id=2 id=3`
	got := ExtractAll(text, regexp.MustCompile(`id=(\d+)`), 2)
	assert.Equal(t, []string{"1", "2"}, got)
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		marker string
		want   string
	}{
		{
			"no marker",
			`noise {"a":1,"b":{"c":2}} trailing`,
			"",
			`{"a":1,"b":{"c":2}}`,
		},
		{
			"with marker",
			`window.__DATA__ = {"x":1}; more`,
			"window.__DATA__ = ",
			`{"x":1}`,
		},
		{
			"string with brace",
			`{"text":"a } b","n":1}`,
			"",
			`{"text":"a } b","n":1}`,
		},
		{
			"escaped quote in string",
			`{"text":"a \" } b","n":1}`,
			"",
			`{"text":"a \" } b","n":1}`,
		},
		{
			"marker not found",
			`{"a":1}`,
			"missing",
			"",
		},
		{
			"unbalanced",
			`{"a":1`,
			"",
			"",
		},
		{
			"no object",
			`plain text`,
			"",
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSON(tt.text, tt.marker))
		})
	}
}
