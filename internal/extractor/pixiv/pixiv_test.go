package pixiv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediagate/mediagate/internal/extractor"
)

type fakeFetcher struct {
	responses map[string]fakeResp
}

type fakeResp struct {
	body   string
	status int
}

func (f *fakeFetcher) FetchText(ctx context.Context, url string, headers map[string]string) (string, int, error) {
	r, ok := f.responses[url]
	if !ok {
		return "", 404, nil
	}
	return r.body, r.status, nil
}

func TestExtractor_Match(t *testing.T) {
	e := New(&fakeFetcher{})
	assert.True(t, e.Match("https://www.pixiv.net/en/artworks/12345"))
	assert.True(t, e.Match("https://www.pixiv.net/artworks/12345"))
	assert.False(t, e.Match("https://example.com/artworks/12345"))
}

func TestExtractor_Extract_SinglePage(t *testing.T) {
	illust := `{"error":false,"body":{"title":"Art","description":"desc","userName":"artist",
		"userId":"9","createDate":"2024-01-01","pageCount":1,"likeCount":5,"viewCount":50,
		"urls":{"original":"https://i.pximg.net/img/1.png"}}}`

	e := New(&fakeFetcher{responses: map[string]fakeResp{
		"https://www.pixiv.net/ajax/illust/12345": {body: illust, status: 200},
	}})

	result, errv := e.Extract(context.Background(), "https://www.pixiv.net/en/artworks/12345", extractor.Options{})
	require.Nil(t, errv)
	require.NotNil(t, result)
	assert.Equal(t, "Art", result.Title)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "https://i.pximg.net/img/1.png", result.Items[0].Sources[0].URL)
}

func TestExtractor_Extract_MultiPage(t *testing.T) {
	illust := `{"error":false,"body":{"title":"Art","pageCount":2,
		"urls":{"original":"https://i.pximg.net/img/1.png"}}}`
	pages := `{"body":[{"urls":{"original":"https://i.pximg.net/img/1.png"}},
		{"urls":{"original":"https://i.pximg.net/img/2.png"}}]}`

	e := New(&fakeFetcher{responses: map[string]fakeResp{
		"https://www.pixiv.net/ajax/illust/12345":       {body: illust, status: 200},
		"https://www.pixiv.net/ajax/illust/12345/pages": {body: pages, status: 200},
	}})

	result, errv := e.Extract(context.Background(), "https://www.pixiv.net/artworks/12345", extractor.Options{})
	require.Nil(t, errv)
	require.Len(t, result.Items, 2)
}

func TestExtractor_Extract_Deleted(t *testing.T) {
	illust := `{"error":true,"message":"work has been deleted"}`
	e := New(&fakeFetcher{responses: map[string]fakeResp{
		"https://www.pixiv.net/ajax/illust/12345": {body: illust, status: 200},
	}})

	_, errv := e.Extract(context.Background(), "https://www.pixiv.net/artworks/12345", extractor.Options{})
	require.NotNil(t, errv)
	assert.Equal(t, extractor.CodeDeletedContent, errv.ErrCode)
}
