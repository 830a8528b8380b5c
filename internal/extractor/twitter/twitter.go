// Package twitter implements the Twitter/X native extractor. Tier A queries
// the public syndication endpoint; Tier B/C query the GraphQL TweetResultByRestId
// endpoint with a ct0-derived CSRF header and a well-known public bearer
// token. Retweets and quote-tweets with no media of their own are unwrapped
// to the referenced tweet's media.
package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/mediagate/mediagate/internal/extractor"
)

// publicBearer is Twitter/X's long-standing public web-client bearer token,
// used for unauthenticated (Tier A escalation) and authenticated GraphQL
// calls alike — it identifies the client, not the user.
const publicBearer = "AAAAAAAAAAAAAAAAAAAAANRILgAAAAAAnNwIzUejRCOuH5E6I8xnZz4puTs%3D1Zv7ttfk8LF81IUq16cHjhLTvJu4FA33AGWWjCpTnA"

var (
	statusPattern = regexp.MustCompile(`(?i)^https?://(?:www\.|mobile\.)?(?:twitter\.com|x\.com)/\w+/status/(\d+)`)
	tcoPattern    = regexp.MustCompile(`(?i)^https?://t\.co/\w+`)
)

// Fetcher is the narrowed httpclient dependency.
type Fetcher interface {
	FetchText(ctx context.Context, url string, headers map[string]string) (string, int, error)
	ResolveURL(ctx context.Context, url string) (string, error)
}

// Extractor implements extractor.Extractor for Twitter/X status URLs.
type Extractor struct {
	fetcher      Fetcher
	serverCookie string
}

// New creates a Twitter extractor. serverCookie, if non-empty, is the
// process-owned Tier B credential loaded from TWITTER_COOKIE.
func New(fetcher Fetcher, serverCookie string) *Extractor {
	return &Extractor{fetcher: fetcher, serverCookie: serverCookie}
}

func (e *Extractor) Platform() string { return "twitter" }
func (e *Extractor) Patterns() []*regexp.Regexp {
	return []*regexp.Regexp{statusPattern, tcoPattern}
}
func (e *Extractor) Match(u string) bool {
	return statusPattern.MatchString(u) || tcoPattern.MatchString(u)
}

type syndicationResponse struct {
	IDStr string `json:"id_str"`
	Text  string `json:"text"`
	User  struct {
		ScreenName string `json:"screen_name"`
		Name       string `json:"name"`
	} `json:"user"`
	CreatedAt     string `json:"created_at"`
	FavoriteCount int64  `json:"favorite_count"`
	ConversationCount int64 `json:"conversation_count"`
	Photos []struct {
		URL string `json:"url"`
	} `json:"photos"`
	Video *struct {
		Variants []struct {
			Type    string `json:"type"`
			Src     string `json:"src"`
			Bitrate int    `json:"bitrate"`
		} `json:"variants"`
		Poster string `json:"poster"`
	} `json:"video"`
	QuotedTweet *syndicationResponse `json:"quoted_tweet"`
}

// Extract resolves t.co short links, then runs the tier escalation
// (syndication → GraphQL) described in the platform spec.
func (e *Extractor) Extract(ctx context.Context, targetURL string, opts extractor.Options) (*extractor.Result, *extractor.Error) {
	resolved := targetURL
	if tcoPattern.MatchString(targetURL) {
		r, err := e.fetcher.ResolveURL(ctx, targetURL)
		if err == nil && r != "" {
			resolved = r
		}
	}

	m := statusPattern.FindStringSubmatch(resolved)
	if m == nil {
		return nil, extractor.NewError(extractor.CodeInvalidURL, "not a twitter/x status url")
	}
	tweetID := m[1]

	cookie := opts.Cookie
	cookieSource := extractor.CookieNone
	if cookie != "" {
		cookieSource = extractor.CookieClient
	}

	var (
		tweet *syndicationResponse
		gwErr *extractor.Error
	)

	if cookie == "" {
		tweet, gwErr = e.fetchSyndication(ctx, tweetID)
	} else {
		tweet, gwErr = e.fetchGraphQL(ctx, tweetID, cookie)
	}

	if gwErr != nil {
		if cookie == "" && shouldEscalate(gwErr) && e.serverCookie != "" {
			tweet, gwErr = e.fetchGraphQL(ctx, tweetID, e.serverCookie)
			cookieSource = extractor.CookieServer
		}
		if gwErr != nil {
			return nil, gwErr
		}
	}

	result, items := normalizeTweet(tweet, resolved)
	result.CookieSource = cookieSource
	result.UsedCookie = cookieSource != extractor.CookieNone

	if len(items) == 0 && tweet.QuotedTweet != nil {
		quotedResult, quotedItems := normalizeTweet(tweet.QuotedTweet, resolved)
		if len(quotedItems) > 0 {
			result.Author = quotedResult.Author
			result.AuthorUsername = quotedResult.AuthorUsername
			result.UploadDate = quotedResult.UploadDate
			result.Stats = quotedResult.Stats
			result.Description = result.Description + " (media from quoted/retweeted post)"
			items = quotedItems
		}
	}

	if len(items) == 0 {
		return nil, extractor.NewError(extractor.CodeNoMediaFound, "tweet has no media")
	}

	result.Items = items
	return result, nil
}

func shouldEscalate(e *extractor.Error) bool {
	switch e.ErrCode {
	case extractor.CodePrivateContent, extractor.CodeLoginRequired, extractor.CodeNoMediaFound:
		return true
	}
	return false
}

func (e *Extractor) fetchSyndication(ctx context.Context, tweetID string) (*syndicationResponse, *extractor.Error) {
	url := fmt.Sprintf("https://cdn.syndication.twimg.com/tweet-result?id=%s&token=0", tweetID)
	body, status, err := e.fetcher.FetchText(ctx, url, nil)
	if err != nil {
		return nil, extractor.NewError(extractor.CodeFetchFailed, err.Error())
	}
	switch status {
	case 404:
		return nil, extractor.NewError(extractor.CodeDeletedContent, "tweet not found")
	case 401, 403:
		return nil, extractor.NewError(extractor.CodeLoginRequired, "tweet requires login")
	}
	if status != 200 {
		return nil, extractor.NewError(extractor.CodeUpstreamError, fmt.Sprintf("syndication status %d", status))
	}

	var tweet syndicationResponse
	if err := json.Unmarshal([]byte(body), &tweet); err != nil {
		return nil, extractor.NewError(extractor.CodeExtractionFailed, "could not parse syndication response")
	}
	if tweet.IDStr == "" {
		return nil, extractor.NewError(extractor.CodeNoMediaFound, "empty syndication response")
	}
	return &tweet, nil
}

func (e *Extractor) fetchGraphQL(ctx context.Context, tweetID, cookie string) (*syndicationResponse, *extractor.Error) {
	csrf := extractor.CSRFTokenFromCookie(cookie, "ct0")
	headers := map[string]string{
		"Cookie":         cookie,
		"Authorization":  "Bearer " + publicBearer,
		"X-Csrf-Token":   csrf,
		"Content-Type":   "application/json",
	}

	url := fmt.Sprintf("https://x.com/i/api/graphql/TweetResultByRestId?variables=%s",
		fmt.Sprintf(`{"tweetId":"%s"}`, tweetID))

	body, status, err := e.fetcher.FetchText(ctx, url, headers)
	if err != nil {
		return nil, extractor.NewError(extractor.CodeFetchFailed, err.Error())
	}
	switch status {
	case 401, 403:
		return nil, extractor.NewError(extractor.CodeUnauthorized, "graphql authentication rejected")
	case 429:
		return nil, extractor.NewError(extractor.CodeRateLimited, "graphql rate limited")
	}
	if status != 200 {
		return nil, extractor.NewError(extractor.CodeUpstreamError, fmt.Sprintf("graphql status %d", status))
	}

	var tweet syndicationResponse
	if err := json.Unmarshal([]byte(body), &tweet); err != nil {
		return nil, extractor.NewError(extractor.CodeExtractionFailed, "could not parse graphql response")
	}
	if tweet.IDStr == "" {
		return nil, extractor.NewError(extractor.CodeNoMediaFound, "empty graphql response")
	}
	return &tweet, nil
}

func normalizeTweet(tweet *syndicationResponse, sourceURL string) (*extractor.Result, []extractor.MediaItem) {
	result := &extractor.Result{
		Success:        true,
		Platform:       "twitter",
		SourceURL:      sourceURL,
		ID:             tweet.IDStr,
		Description:    tweet.Text,
		Author:         tweet.User.Name,
		AuthorUsername: tweet.User.ScreenName,
		UploadDate:     tweet.CreatedAt,
		Stats: &extractor.Stats{
			Likes:    tweet.FavoriteCount,
			Comments: tweet.ConversationCount,
		},
	}

	var items []extractor.MediaItem

	if tweet.Video != nil {
		result.ContentType = extractor.ContentVideo
		variants := make([]extractor.MediaSource, 0, len(tweet.Video.Variants))
		for _, v := range tweet.Video.Variants {
			if v.Type != "video/mp4" {
				continue
			}
			variants = append(variants, extractor.MediaSource{
				Quality:  fmt.Sprintf("%dbps", v.Bitrate),
				URL:      v.Src,
				Bitrate:  v.Bitrate,
				HasAudio: true,
				Format:   extractor.FormatProgressive,
			})
		}
		sort.Slice(variants, func(i, j int) bool { return variants[i].Bitrate > variants[j].Bitrate })
		if len(variants) > 0 {
			items = append(items, extractor.MediaItem{
				Index:     0,
				Type:      extractor.ContentVideo,
				Thumbnail: tweet.Video.Poster,
				Sources:   variants,
			})
		}
	} else if len(tweet.Photos) > 0 {
		result.ContentType = extractor.ContentImage
		for i, p := range tweet.Photos {
			items = append(items, extractor.MediaItem{
				Index: i,
				Type:  extractor.ContentImage,
				Sources: []extractor.MediaSource{{
					Quality: "orig",
					URL:     upgradeToOrig(p.URL),
				}},
			})
		}
	}

	return result, items
}

// upgradeToOrig appends/replaces Twitter's image size query param with
// "name=orig", the highest-fidelity size the CDN serves.
func upgradeToOrig(u string) string {
	if strings.Contains(u, "name=") {
		return regexp.MustCompile(`name=\w+`).ReplaceAllString(u, "name=orig")
	}
	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}
	return u + sep + "name=orig"
}
