// Package facebook implements the Facebook native extractor. Content type
// is detected from the URL path; short links are resolved first. Video
// extraction (also used for stories) scans the whole page for four keys in
// order: browser_native_hd_url, browser_native_sd_url,
// playable_url_quality_hd, playable_url. The video id is read but does not
// narrow the search to a block around it, and no generic progressive URL is
// tried after those four. Image extraction locates the all_subattachments
// block. A mobile (iPad) user agent is preferred
// for the initial fetch since Facebook serves a lighter, easier to scan
// markup to it.
package facebook

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/mediagate/mediagate/internal/extractor"
	"github.com/mediagate/mediagate/internal/fragment"
)

// MobileUserAgent is preferred for the initial fetch; Facebook's mobile
// markup embeds the same inline JSON with noticeably less chrome around it.
const MobileUserAgent = "Mozilla/5.0 (iPad; CPU OS 16_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.0 Mobile/15E148 Safari/604.1"

type contentKind int

const (
	kindUnknown contentKind = iota
	kindStory
	kindReel
	kindVideo
	kindWatch
	kindPost
	kindShare
	kindGroupPost
)

var (
	shortLinkPattern = regexp.MustCompile(`(?i)^https?://(?:fb\.watch/|fb\.me/|(?:www\.)?facebook\.com/share/|l\.facebook\.com/l\.php)`)
	mainPattern      = regexp.MustCompile(`(?i)^https?://(?:www\.|m\.|web\.)?facebook\.com/`)

	pathKinds = []struct {
		pattern *regexp.Regexp
		kind    contentKind
	}{
		{regexp.MustCompile(`/stories/`), kindStory},
		{regexp.MustCompile(`/reel/`), kindReel},
		{regexp.MustCompile(`/videos/`), kindVideo},
		{regexp.MustCompile(`/watch/?\?`), kindWatch},
		{regexp.MustCompile(`/share/[vrp]/`), kindShare},
		{regexp.MustCompile(`/groups/`), kindGroupPost},
		{regexp.MustCompile(`/posts/`), kindPost},
	}

	tombstoneMarkers = []string{
		"content isn't available", "this content isn't available",
		"page not found", "this page isn't available",
		"you must log in", "log in to continue",
	}

	videoIDPattern = regexp.MustCompile(`"video_id":"(\d+)"`)
	playableURL    = regexp.MustCompile(`"playable_url(?:_quality_hd)?":"([^"]+)"`)
	playableURLHD  = regexp.MustCompile(`"playable_url_quality_hd":"([^"]+)"`)
	browserNativeHD = regexp.MustCompile(`"browser_native_hd_url":"([^"]+)"`)
	browserNativeSD = regexp.MustCompile(`"browser_native_sd_url":"([^"]+)"`)
	subattachmentsBlock = regexp.MustCompile(`"all_subattachments":\{.*?"count":\d+`)
	imageURIPattern = regexp.MustCompile(`"uri":"(https:[^"]+\.(?:jpg|jpeg|png|webp)[^"]*)"`)
	titleFallback   = regexp.MustCompile(`"title":\{"text":"([^"]*)"\}`)
)

// Fetcher is the narrowed httpclient dependency.
type Fetcher interface {
	FetchText(ctx context.Context, url string, headers map[string]string) (string, int, error)
	ResolveURL(ctx context.Context, url string) (string, error)
}

// Extractor implements extractor.Extractor for Facebook URLs.
type Extractor struct {
	fetcher      Fetcher
	serverCookie string
}

// New creates a Facebook extractor. serverCookie is the process-owned Tier
// B credential (FACEBOOK_COOKIE).
func New(fetcher Fetcher, serverCookie string) *Extractor {
	return &Extractor{fetcher: fetcher, serverCookie: serverCookie}
}

func (e *Extractor) Platform() string { return "facebook" }
func (e *Extractor) Patterns() []*regexp.Regexp {
	return []*regexp.Regexp{mainPattern, shortLinkPattern}
}
func (e *Extractor) Match(u string) bool {
	return mainPattern.MatchString(u) || shortLinkPattern.MatchString(u)
}

func detectKind(u string) contentKind {
	for _, pk := range pathKinds {
		if pk.pattern.MatchString(u) {
			return pk.kind
		}
	}
	return kindUnknown
}

// Extract resolves short links, fetches the target page, and runs the
// content-issue filter before extracting media by content kind.
func (e *Extractor) Extract(ctx context.Context, targetURL string, opts extractor.Options) (*extractor.Result, *extractor.Error) {
	if !e.Match(targetURL) {
		return nil, extractor.NewError(extractor.CodeInvalidURL, "not a facebook url")
	}

	resolved := targetURL
	if shortLinkPattern.MatchString(targetURL) {
		r, err := e.fetcher.ResolveURL(ctx, targetURL)
		if err == nil && r != "" {
			resolved = r
		}
	}

	kind := detectKind(resolved)
	if kind == kindUnknown {
		kind = kindPost
	}

	cookie := opts.Cookie
	cookieSource := extractor.CookieNone
	if cookie != "" {
		cookieSource = extractor.CookieClient
	} else if kind == kindStory && e.serverCookie != "" {
		cookie = e.serverCookie
		cookieSource = extractor.CookieServer
	}

	headers := map[string]string{"User-Agent": MobileUserAgent}
	if cookie != "" {
		headers["Cookie"] = cookie
	}

	body, status, err := e.fetcher.FetchText(ctx, resolved, headers)
	if err != nil {
		return nil, extractor.NewError(extractor.CodeFetchFailed, err.Error())
	}
	if status == 404 {
		return nil, extractor.NewError(extractor.CodeDeletedContent, "page not found")
	}
	if status != 200 {
		return nil, extractor.NewError(extractor.CodeUpstreamError, fmt.Sprintf("facebook status %d", status))
	}

	if issue := detectContentIssue(body); issue != nil {
		escalated := false
		if issue.ErrCode == extractor.CodeLoginRequired && cookie == "" && e.serverCookie != "" {
			headers["Cookie"] = e.serverCookie
			retryBody, retryStatus, retryErr := e.fetcher.FetchText(ctx, resolved, headers)
			if retryErr == nil && retryStatus == 200 && detectContentIssue(retryBody) == nil {
				body = retryBody
				cookieSource = extractor.CookieServer
				escalated = true
			}
		}
		if !escalated {
			return nil, issue
		}
	}

	decoded := fragment.DecodeHTMLEntities(body)

	result := &extractor.Result{
		Success:      true,
		Platform:     "facebook",
		SourceURL:    resolved,
		CookieSource: cookieSource,
		UsedCookie:   cookieSource != extractor.CookieNone,
	}
	extractEngagement(decoded, result)
	if result.Title == "" {
		if m := titleFallback.FindStringSubmatch(decoded); len(m) == 2 {
			result.Title = m[1]
		}
	}

	var items []extractor.MediaItem
	var gwErr *extractor.Error

	switch kind {
	case kindStory, kindReel, kindVideo, kindWatch:
		result.ContentType = extractor.ContentVideo
		items, gwErr = extractVideo(decoded)
	default:
		result.ContentType = extractor.ContentImage
		items, gwErr = extractImages(decoded)
	}

	if gwErr != nil {
		return nil, gwErr
	}
	if len(items) == 0 {
		return nil, extractor.NewError(extractor.CodeNoMediaFound, "no media found")
	}

	result.Items = items
	return result, nil
}

func detectContentIssue(body string) *extractor.Error {
	lower := strings.ToLower(body)
	if !fragment.HasBoundary(lower, tombstoneMarkers) {
		return nil
	}

	switch {
	case strings.Contains(lower, "log in to continue") || strings.Contains(lower, "you must log in"):
		return extractor.NewError(extractor.CodeLoginRequired, "facebook requires login")
	case strings.Contains(lower, "page not found") || strings.Contains(lower, "isn't available"):
		return extractor.NewError(extractor.CodeDeletedContent, "content not found")
	}
	return nil
}

func extractVideo(html string) ([]extractor.MediaItem, *extractor.Error) {
	idMatch := videoIDPattern.FindStringSubmatch(html)
	videoID := ""
	if idMatch != nil {
		videoID = idMatch[1]
	}

	item := extractor.MediaItem{Index: 0, Type: extractor.ContentVideo, Format: extractor.FormatProgressive}

	if m := browserNativeHD.FindStringSubmatch(html); len(m) == 2 {
		item.Sources = append(item.Sources, extractor.MediaSource{Quality: "hd", URL: unescapeSlashes(m[1]), HasAudio: true})
	}
	if m := browserNativeSD.FindStringSubmatch(html); len(m) == 2 {
		item.Sources = append(item.Sources, extractor.MediaSource{Quality: "sd", URL: unescapeSlashes(m[1]), HasAudio: true})
	}
	if m := playableURLHD.FindStringSubmatch(html); len(m) == 2 {
		item.Sources = append(item.Sources, extractor.MediaSource{Quality: "playable_hd", URL: unescapeSlashes(m[1]), HasAudio: true})
	}
	if m := playableURL.FindStringSubmatch(html); len(m) == 2 {
		item.Sources = append(item.Sources, extractor.MediaSource{Quality: "playable_sd", URL: unescapeSlashes(m[1]), HasAudio: true})
	}

	if len(item.Sources) == 0 {
		return nil, nil
	}

	_ = videoID
	return []extractor.MediaItem{item}, nil
}

func extractImages(html string) ([]extractor.MediaItem, *extractor.Error) {
	block := html
	if loc := subattachmentsBlock.FindStringIndex(html); loc != nil {
		block = html[loc[0]:]
	}

	urls := imageURIPattern.FindAllStringSubmatch(block, -1)
	var items []extractor.MediaItem
	for i, m := range urls {
		items = append(items, extractor.MediaItem{
			Index: i,
			Type:  extractor.ContentImage,
			Sources: []extractor.MediaSource{{
				Quality: "original",
				URL:     unescapeSlashes(m[1]),
			}},
		})
	}
	return items, nil
}

func extractEngagement(html string, result *extractor.Result) {
	stats := &extractor.Stats{}
	stats.Shares = extractCount(html, `"share_count":\{"count":(\d+)`)
	stats.Comments = extractCount(html, `"comment_count":\{.*?"total_count":(\d+)`)
	stats.Views = extractCount(html, `"video_view_count":(\d+)`)

	reactionTotal := extractCount(html, `"reaction_count":\{"count":(\d+)`)
	stats.Likes = reactionTotal

	if stats.Likes > 0 || stats.Comments > 0 || stats.Shares > 0 || stats.Views > 0 {
		result.Stats = stats
	}
}

func extractCount(html, pattern string) int64 {
	m := regexp.MustCompile(pattern).FindStringSubmatch(html)
	if len(m) != 2 {
		return 0
	}
	var n int64
	_, err := fmt.Sscanf(m[1], "%d", &n)
	if err != nil {
		return 0
	}
	return n
}

func unescapeSlashes(s string) string {
	return strings.ReplaceAll(s, `\/`, "/")
}
