// Package instagram implements the Instagram native extractor. Tier A
// issues a public GraphQL query; Tier B/C invoke the internal
// media/{id}/info API with an X-CSRFToken derived from the cookie.
// Carousel child order is preserved.
package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/mediagate/mediagate/internal/extractor"
)

var shortcodePattern = regexp.MustCompile(`(?i)instagram\.com/(?:[^/]+/)?(?:p|reel|tv)/([A-Za-z0-9_-]+)`)

// Fetcher is the narrowed httpclient dependency.
type Fetcher interface {
	FetchText(ctx context.Context, url string, headers map[string]string) (string, int, error)
}

// Extractor implements extractor.Extractor for Instagram post/reel/tv URLs.
type Extractor struct {
	fetcher      Fetcher
	serverCookie string
}

// New creates an Instagram extractor. serverCookie is the process-owned
// Tier B credential (INSTAGRAM_COOKIE), used when no client cookie is
// supplied and a private-content error forces Tier B escalation.
func New(fetcher Fetcher, serverCookie string) *Extractor {
	return &Extractor{fetcher: fetcher, serverCookie: serverCookie}
}

func (e *Extractor) Platform() string           { return "instagram" }
func (e *Extractor) Patterns() []*regexp.Regexp { return []*regexp.Regexp{shortcodePattern} }
func (e *Extractor) Match(u string) bool        { return shortcodePattern.MatchString(u) }

type igItem struct {
	ID           string `json:"id"`
	MediaType    int    `json:"media_type"`
	Caption      *struct {
		Text string `json:"text"`
	} `json:"caption"`
	User struct {
		Username string `json:"username"`
		FullName string `json:"full_name"`
	} `json:"user"`
	TakenAt      int64 `json:"taken_at"`
	LikeCount    int64 `json:"like_count"`
	CommentCount int64 `json:"comment_count"`
	ImageVersions2 *struct {
		Candidates []struct {
			URL string `json:"url"`
		} `json:"candidates"`
	} `json:"image_versions2"`
	VideoVersions []struct {
		URL    string `json:"url"`
		Width  int    `json:"width"`
		Height int    `json:"height"`
	} `json:"video_versions"`
	CarouselMedia []igItem `json:"carousel_media"`
}

type igInfoResponse struct {
	Items  []igItem `json:"items"`
	Status string   `json:"status"`
	Message string  `json:"message"`
}

const (
	mediaTypeImage    = 1
	mediaTypeVideo    = 2
	mediaTypeCarousel = 8
)

// Extract resolves the shortcode to a numeric media id and runs the tier
// escalation (GraphQL guest → internal media info API).
func (e *Extractor) Extract(ctx context.Context, targetURL string, opts extractor.Options) (*extractor.Result, *extractor.Error) {
	m := shortcodePattern.FindStringSubmatch(targetURL)
	if m == nil {
		return nil, extractor.NewError(extractor.CodeInvalidURL, "not an instagram post/reel/tv url")
	}
	shortcode := m[1]

	mediaID, ok := shortcodeToMediaID(shortcode)
	if !ok {
		return nil, extractor.NewError(extractor.CodeInvalidURL, "invalid shortcode")
	}

	isPrivateURL := false // only post/reel/tv paths match; private-looking paths (e.g. /stories/) are not handled, so no URL starts at Tier B here

	cookie := opts.Cookie
	cookieSource := extractor.CookieNone
	if cookie != "" {
		cookieSource = extractor.CookieClient
	} else if isPrivateURL && e.serverCookie != "" {
		cookie = e.serverCookie
		cookieSource = extractor.CookieServer
	}

	var (
		item  *igItem
		gwErr *extractor.Error
	)

	if cookie == "" {
		item, gwErr = e.fetchGraphQL(ctx, shortcode)
	} else {
		item, gwErr = e.fetchMediaInfo(ctx, mediaID.String(), cookie)
	}

	if gwErr != nil && cookie == "" && shouldEscalate(gwErr) && e.serverCookie != "" {
		item, gwErr = e.fetchMediaInfo(ctx, mediaID.String(), e.serverCookie)
		cookieSource = extractor.CookieServer
	}
	if gwErr != nil {
		return nil, gwErr
	}

	result, items := normalizeItem(item, targetURL)
	if len(items) == 0 {
		return nil, extractor.NewError(extractor.CodeNoMediaFound, "no media found in instagram response")
	}

	result.CookieSource = cookieSource
	result.UsedCookie = cookieSource != extractor.CookieNone
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

func (e *Extractor) fetchGraphQL(ctx context.Context, shortcode string) (*igItem, *extractor.Error) {
	url := fmt.Sprintf("https://www.instagram.com/graphql/query/?query_hash=%s&variables=%s",
		"2b0673e0dc4580674a88d426fe00ea90",
		fmt.Sprintf(`{"shortcode":"%s"}`, shortcode))

	body, status, err := e.fetcher.FetchText(ctx, url, map[string]string{"X-IG-App-ID": "936619743392459"})
	if err != nil {
		return nil, extractor.NewError(extractor.CodeFetchFailed, err.Error())
	}
	switch status {
	case 404:
		return nil, extractor.NewError(extractor.CodeDeletedContent, "post not found")
	case 401, 403:
		return nil, extractor.NewError(extractor.CodePrivateContent, "post requires authentication")
	}
	if status != 200 {
		return nil, extractor.NewError(extractor.CodeUpstreamError, fmt.Sprintf("graphql status %d", status))
	}

	var resp struct {
		Data struct {
			ShortcodeMedia *igItem `json:"shortcode_media"`
		} `json:"data"`
	}
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return nil, extractor.NewError(extractor.CodeExtractionFailed, "could not parse graphql response")
	}
	if resp.Data.ShortcodeMedia == nil {
		return nil, extractor.NewError(extractor.CodeNoMediaFound, "empty graphql response")
	}
	return resp.Data.ShortcodeMedia, nil
}

func (e *Extractor) fetchMediaInfo(ctx context.Context, mediaID, cookie string) (*igItem, *extractor.Error) {
	csrf := extractor.CSRFTokenFromCookie(cookie, "csrftoken")
	headers := map[string]string{
		"Cookie":         cookie,
		"X-CSRFToken":    csrf,
		"X-IG-App-ID":    "936619743392459",
	}

	url := fmt.Sprintf("https://i.instagram.com/api/v1/media/%s/info/", mediaID)
	body, status, err := e.fetcher.FetchText(ctx, url, headers)
	if err != nil {
		return nil, extractor.NewError(extractor.CodeFetchFailed, err.Error())
	}
	switch status {
	case 404:
		return nil, extractor.NewError(extractor.CodeDeletedContent, "post not found")
	case 401, 403:
		return nil, extractor.NewError(extractor.CodeLoginRequired, "login required")
	}
	if status != 200 {
		return nil, extractor.NewError(extractor.CodeUpstreamError, fmt.Sprintf("media info status %d", status))
	}

	var resp igInfoResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return nil, extractor.NewError(extractor.CodeExtractionFailed, "could not parse media info response")
	}
	if len(resp.Items) == 0 {
		return nil, extractor.NewError(extractor.CodeNoMediaFound, "empty media info response")
	}
	return &resp.Items[0], nil
}

func normalizeItem(item *igItem, sourceURL string) (*extractor.Result, []extractor.MediaItem) {
	result := &extractor.Result{
		Success:        true,
		Platform:       "instagram",
		SourceURL:      sourceURL,
		ID:             item.ID,
		Author:         item.User.FullName,
		AuthorUsername: item.User.Username,
		Stats: &extractor.Stats{
			Likes:    item.LikeCount,
			Comments: item.CommentCount,
		},
	}
	if item.Caption != nil {
		result.Description = item.Caption.Text
	}

	var items []extractor.MediaItem

	switch item.MediaType {
	case mediaTypeCarousel:
		result.ContentType = extractor.ContentImage
		for i, child := range item.CarouselMedia {
			items = append(items, mediaItemFromChild(i, &child))
			if child.MediaType == mediaTypeVideo {
				result.ContentType = extractor.ContentVideo
			}
		}
	case mediaTypeVideo:
		result.ContentType = extractor.ContentVideo
		items = append(items, mediaItemFromChild(0, item))
	default:
		result.ContentType = extractor.ContentImage
		items = append(items, mediaItemFromChild(0, item))
	}

	return result, items
}

func mediaItemFromChild(index int, item *igItem) extractor.MediaItem {
	mi := extractor.MediaItem{Index: index}

	if item.MediaType == mediaTypeVideo && len(item.VideoVersions) > 0 {
		mi.Type = extractor.ContentVideo
		for _, v := range item.VideoVersions {
			mi.Sources = append(mi.Sources, extractor.MediaSource{
				Quality:    fmt.Sprintf("%dx%d", v.Width, v.Height),
				URL:        v.URL,
				Resolution: fmt.Sprintf("%dx%d", v.Width, v.Height),
				HasAudio:   true,
				Format:     extractor.FormatProgressive,
			})
		}
		return mi
	}

	mi.Type = extractor.ContentImage
	if item.ImageVersions2 != nil && len(item.ImageVersions2.Candidates) > 0 {
		mi.Sources = append(mi.Sources, extractor.MediaSource{
			Quality: "original",
			URL:     item.ImageVersions2.Candidates[0].URL,
		})
	}
	return mi
}
