// Package pixiv implements the Pixiv native extractor: scoped JSON
// extraction for (possibly multi-page) artwork. Sources carry no header of
// their own; the delivery proxy adds the Referer Pixiv's CDN requires for
// pximg.net hosts (see delivery.UpstreamHeaders).
package pixiv

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/mediagate/mediagate/internal/extractor"
	"github.com/mediagate/mediagate/internal/fragment"
)

// Referer is the header every Pixiv-sourced delivery must present; the CDN
// rejects requests without it.
const Referer = "https://www.pixiv.net/"

var (
	urlPattern = regexp.MustCompile(`(?i)^https?://(?:www\.)?pixiv\.net/(?:en/)?artworks/(\d+)`)
	ajaxPages  = "https://www.pixiv.net/ajax/illust/%s/pages"
	ajaxIllust = "https://www.pixiv.net/ajax/illust/%s"
)

// Extractor implements extractor.Extractor for Pixiv artwork URLs.
type Extractor struct {
	fetcher Fetcher
}

// Fetcher is the narrowed httpclient dependency this extractor needs.
type Fetcher interface {
	FetchText(ctx context.Context, url string, headers map[string]string) (string, int, error)
}

// New creates a Pixiv extractor.
func New(fetcher Fetcher) *Extractor {
	return &Extractor{fetcher: fetcher}
}

func (e *Extractor) Platform() string           { return "pixiv" }
func (e *Extractor) Patterns() []*regexp.Regexp { return []*regexp.Regexp{urlPattern} }
func (e *Extractor) Match(u string) bool        { return urlPattern.MatchString(u) }

type illustPage struct {
	Urls struct {
		Original string `json:"original"`
		Regular  string `json:"regular"`
		Small    string `json:"small"`
	} `json:"urls"`
}

type illustResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	Body    struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		UserName    string `json:"userName"`
		UserID      string `json:"userId"`
		CreateDate  string `json:"createDate"`
		PageCount   int    `json:"pageCount"`
		LikeCount   int64  `json:"likeCount"`
		BookmarkCount int64 `json:"bookmarkCount"`
		ViewCount   int64  `json:"viewCount"`
		Urls        struct {
			Original string `json:"original"`
		} `json:"urls"`
	} `json:"body"`
}

// Extract fetches the illust metadata and, for multi-page works, the page
// list, then normalizes them into a Result.
func (e *Extractor) Extract(ctx context.Context, targetURL string, opts extractor.Options) (*extractor.Result, *extractor.Error) {
	m := urlPattern.FindStringSubmatch(targetURL)
	if m == nil {
		return nil, extractor.NewError(extractor.CodeInvalidURL, "not a pixiv artwork url")
	}
	illustID := m[1]

	headers := map[string]string{"Referer": Referer}

	body, status, err := e.fetcher.FetchText(ctx, fmt.Sprintf(ajaxIllust, illustID), headers)
	if err != nil {
		return nil, extractor.NewError(extractor.CodeFetchFailed, err.Error())
	}
	if status != 200 {
		return nil, extractor.NewError(extractor.CodeUpstreamError, fmt.Sprintf("pixiv ajax status %d", status))
	}

	var meta illustResponse
	if err := json.Unmarshal([]byte(body), &meta); err != nil {
		return nil, extractor.NewError(extractor.CodeExtractionFailed, "could not parse illust metadata: "+err.Error())
	}
	if meta.Error {
		return nil, extractor.NewError(extractor.CodeDeletedContent, meta.Message)
	}

	result := &extractor.Result{
		Success:        true,
		Platform:       "pixiv",
		ContentType:    extractor.ContentImage,
		SourceURL:      targetURL,
		ID:             illustID,
		Title:          fragment.DecodeHTMLEntities(meta.Body.Title),
		Description:    fragment.DecodeHTMLEntities(meta.Body.Description),
		Author:         meta.Body.UserName,
		AuthorUsername: meta.Body.UserID,
		UploadDate:     meta.Body.CreateDate,
		Stats: &extractor.Stats{
			Likes: meta.Body.LikeCount,
			Views: meta.Body.ViewCount,
		},
		CookieSource: extractor.CookieNone,
	}

	pageURLs := []string{}
	if meta.Body.PageCount > 1 {
		pagesBody, pagesStatus, err := e.fetcher.FetchText(ctx, fmt.Sprintf(ajaxPages, illustID), headers)
		if err == nil && pagesStatus == 200 {
			var pages struct {
				Body []illustPage `json:"body"`
			}
			if json.Unmarshal([]byte(pagesBody), &pages) == nil {
				for _, p := range pages.Body {
					if p.Urls.Original != "" {
						pageURLs = append(pageURLs, p.Urls.Original)
					}
				}
			}
		}
	}
	if len(pageURLs) == 0 && meta.Body.Urls.Original != "" {
		pageURLs = append(pageURLs, meta.Body.Urls.Original)
	}
	if len(pageURLs) == 0 {
		return nil, extractor.NewError(extractor.CodeNoMediaFound, "no page urls found")
	}

	for i, u := range pageURLs {
		result.Items = append(result.Items, extractor.MediaItem{
			Index: i,
			Type:  extractor.ContentImage,
			Sources: []extractor.MediaSource{{
				Quality: "original",
				URL:     u,
			}},
		})
	}

	return result, nil
}
