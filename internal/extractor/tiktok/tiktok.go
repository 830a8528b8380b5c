// Package tiktok implements the TikTok/Douyin native extractor: a single
// call to an external helper API, no credentials required, returning either
// watermark-free video variants or a photo-post slideshow.
package tiktok

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"

	"github.com/mediagate/mediagate/internal/extractor"
)

var urlPattern = regexp.MustCompile(`(?i)^https?://(?:www\.|vm\.|vt\.|m\.)?(?:tiktok\.com|douyin\.com)/`)

// Extractor implements extractor.Extractor for TikTok and Douyin URLs.
type Extractor struct {
	fetcher   Fetcher
	helperAPI string
}

// Fetcher is the subset of internal/httpclient's Client this extractor
// needs, narrowed to allow test fakes.
type Fetcher interface {
	FetchText(ctx context.Context, url string, headers map[string]string) (string, int, error)
}

// New creates a TikTok extractor that queries helperAPI (the hybrid
// video-data endpoint, e.g. "http://127.0.0.1:3035/api/hybrid/video_data")
// for every matched URL.
func New(fetcher Fetcher, helperAPI string) *Extractor {
	return &Extractor{fetcher: fetcher, helperAPI: helperAPI}
}

func (e *Extractor) Platform() string           { return "tiktok" }
func (e *Extractor) Patterns() []*regexp.Regexp { return []*regexp.Regexp{urlPattern} }
func (e *Extractor) Match(u string) bool        { return urlPattern.MatchString(u) }

type helperResponse struct {
	Data struct {
		AwemeID string `json:"aweme_id"`
		Desc    string `json:"desc"`
		Type    string `json:"type"`
		Author  struct {
			Nickname    string `json:"nickname"`
			UID         string `json:"uid"`
			AvatarThumb struct {
				URLList []string `json:"url_list"`
			} `json:"avatar_thumb"`
		} `json:"author"`
		Statistics struct {
			DiggCount    int64 `json:"digg_count"`
			CommentCount int64 `json:"comment_count"`
			RepostCount  int64 `json:"repost_count"`
			PlayCount    int64 `json:"play_count"`
		} `json:"statistics"`
		CoverData struct {
			Cover struct {
				URLList []string `json:"url_list"`
			} `json:"cover"`
		} `json:"cover_data"`
		VideoData struct {
			NwmVideoURL     string `json:"nwm_video_url"`
			NwmVideoURLHQ   string `json:"nwm_video_url_HQ"`
			WmVideoURL      string `json:"wm_video_url"`
			WmVideoURLHQ    string `json:"wm_video_url_HQ"`
		} `json:"video_data"`
		ImageData struct {
			NoWatermarkImageList []string `json:"no_watermark_image_list"`
		} `json:"image_data"`
	} `json:"data"`
}

// Extract queries the helper API and normalizes its response into a Result.
func (e *Extractor) Extract(ctx context.Context, targetURL string, opts extractor.Options) (*extractor.Result, *extractor.Error) {
	if !e.Match(targetURL) {
		return nil, extractor.NewError(extractor.CodeInvalidURL, "not a tiktok/douyin url")
	}

	apiURL := fmt.Sprintf("%s?url=%s&minimal=true", e.helperAPI, url.QueryEscape(targetURL))

	body, status, err := e.fetcher.FetchText(ctx, apiURL, nil)
	if err != nil {
		return nil, extractor.NewError(extractor.CodeFetchFailed, err.Error())
	}
	if status != 200 {
		return nil, extractor.NewError(extractor.CodeUpstreamError, fmt.Sprintf("helper api status %d", status))
	}

	var resp helperResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return nil, extractor.NewError(extractor.CodeExtractionFailed, "could not parse helper response: "+err.Error())
	}

	if resp.Data.AwemeID == "" {
		return nil, extractor.NewError(extractor.CodeNoMediaFound, "helper api returned no data")
	}

	result := &extractor.Result{
		Success:        true,
		Platform:       "tiktok",
		SourceURL:      targetURL,
		ID:             resp.Data.AwemeID,
		Title:          resp.Data.Desc,
		Description:    resp.Data.Desc,
		Author:         resp.Data.Author.Nickname,
		AuthorUsername: resp.Data.Author.UID,
		Stats: &extractor.Stats{
			Likes:    resp.Data.Statistics.DiggCount,
			Comments: resp.Data.Statistics.CommentCount,
			Shares:   resp.Data.Statistics.RepostCount,
			Views:    resp.Data.Statistics.PlayCount,
		},
		CookieSource: extractor.CookieNone,
	}

	var thumbnail string
	if len(resp.Data.CoverData.Cover.URLList) > 0 {
		thumbnail = resp.Data.CoverData.Cover.URLList[0]
	}

	if resp.Data.Type == "image" {
		result.ContentType = extractor.ContentImage
		if len(resp.Data.ImageData.NoWatermarkImageList) == 0 {
			return nil, extractor.NewError(extractor.CodeNoMediaFound, "no slideshow images in helper response")
		}
		item := extractor.MediaItem{Index: 0, Type: extractor.ContentImage, Thumbnail: thumbnail}
		for _, imgURL := range resp.Data.ImageData.NoWatermarkImageList {
			item.Sources = append(item.Sources, extractor.MediaSource{Quality: "original", URL: imgURL})
		}
		result.Items = []extractor.MediaItem{item}
		return result, nil
	}

	result.ContentType = extractor.ContentVideo
	item := extractor.MediaItem{Index: 0, Type: extractor.ContentVideo, Thumbnail: thumbnail, Format: extractor.FormatProgressive}
	addVariant(&item, "hd", resp.Data.VideoData.NwmVideoURLHQ)
	addVariant(&item, "sd", resp.Data.VideoData.NwmVideoURL)
	addVariant(&item, "watermark_hd", resp.Data.VideoData.WmVideoURLHQ)
	addVariant(&item, "watermark_sd", resp.Data.VideoData.WmVideoURL)

	if len(item.Sources) == 0 {
		return nil, extractor.NewError(extractor.CodeNoMediaFound, "no video variants in helper response")
	}

	result.Items = []extractor.MediaItem{item}
	return result, nil
}

func addVariant(item *extractor.MediaItem, quality, u string) {
	if u == "" {
		return
	}
	item.Sources = append(item.Sources, extractor.MediaSource{
		Quality:  quality,
		URL:      u,
		HasAudio: true,
		Format:   extractor.FormatProgressive,
	})
}
