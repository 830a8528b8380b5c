package twitter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediagate/mediagate/internal/extractor"
)

type fakeFetcher struct {
	responses map[string]fakeResp
	resolved  map[string]string
}

type fakeResp struct {
	body   string
	status int
}

func (f *fakeFetcher) FetchText(ctx context.Context, url string, headers map[string]string) (string, int, error) {
	for k, r := range f.responses {
		if len(url) >= len(k) && url[:len(k)] == k {
			return r.body, r.status, nil
		}
	}
	return "", 404, nil
}

func (f *fakeFetcher) ResolveURL(ctx context.Context, url string) (string, error) {
	if r, ok := f.resolved[url]; ok {
		return r, nil
	}
	return url, nil
}

func TestExtractor_Match(t *testing.T) {
	e := New(&fakeFetcher{}, "")
	assert.True(t, e.Match("https://twitter.com/user/status/12345"))
	assert.True(t, e.Match("https://x.com/user/status/12345"))
	assert.True(t, e.Match("https://t.co/abc123"))
	assert.False(t, e.Match("https://example.com/status/1"))
}

func TestExtractor_Extract_Video(t *testing.T) {
	tweet := `{"id_str":"123","text":"look at this","user":{"screen_name":"u","name":"User"},
		"created_at":"now","favorite_count":5,
		"video":{"poster":"https://p.jpg","variants":[
			{"type":"video/mp4","src":"https://cdn/low.mp4","bitrate":100},
			{"type":"video/mp4","src":"https://cdn/high.mp4","bitrate":900}]}}`

	e := New(&fakeFetcher{responses: map[string]fakeResp{
		"https://cdn.syndication.twimg.com/tweet-result": {body: tweet, status: 200},
	}}, "")

	result, errv := e.Extract(context.Background(), "https://twitter.com/u/status/123", extractor.Options{})
	require.Nil(t, errv)
	require.Len(t, result.Items, 1)
	require.Len(t, result.Items[0].Sources, 2)
	assert.Equal(t, 900, result.Items[0].Sources[0].Bitrate)
}

func TestExtractor_Extract_Photos(t *testing.T) {
	tweet := `{"id_str":"123","text":"pics","user":{"screen_name":"u","name":"User"},
		"photos":[{"url":"https://pbs/a.jpg?name=small"},{"url":"https://pbs/b.jpg"}]}`

	e := New(&fakeFetcher{responses: map[string]fakeResp{
		"https://cdn.syndication.twimg.com/tweet-result": {body: tweet, status: 200},
	}}, "")

	result, errv := e.Extract(context.Background(), "https://twitter.com/u/status/123", extractor.Options{})
	require.Nil(t, errv)
	require.Len(t, result.Items, 2)
	assert.Contains(t, result.Items[0].Sources[0].URL, "name=orig")
	assert.Contains(t, result.Items[1].Sources[0].URL, "name=orig")
}

func TestExtractor_Extract_Deleted(t *testing.T) {
	e := New(&fakeFetcher{responses: map[string]fakeResp{
		"https://cdn.syndication.twimg.com/tweet-result": {status: 404},
	}}, "")

	_, errv := e.Extract(context.Background(), "https://twitter.com/u/status/123", extractor.Options{})
	require.NotNil(t, errv)
	assert.Equal(t, extractor.CodeDeletedContent, errv.ErrCode)
}

func TestUpgradeToOrig(t *testing.T) {
	assert.Equal(t, "https://pbs/a.jpg?name=orig", upgradeToOrig("https://pbs/a.jpg?name=small"))
	assert.Equal(t, "https://pbs/a.jpg?name=orig", upgradeToOrig("https://pbs/a.jpg"))
}
