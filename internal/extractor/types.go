// Package extractor implements the URL-to-media extraction pipeline: the
// platform registry (C3), the native per-platform scanners (C4), and the
// wrapper bridge to the sibling extractor service (C5).
package extractor

import (
	"context"
	"regexp"
)

// ContentType classifies a MediaItem.
type ContentType string

const (
	ContentVideo ContentType = "video"
	ContentImage ContentType = "image"
	ContentAudio ContentType = "audio"
)

// MediaFormat describes the delivery shape of a MediaSource.
type MediaFormat string

const (
	FormatHLS         MediaFormat = "hls"
	FormatDASH        MediaFormat = "dash"
	FormatProgressive MediaFormat = "progressive"
)

// SizeConfidence records how a MediaSource's size was determined. The
// normalizer (C6) must never claim SizeExact unless it derived the value
// from an explicit, unambiguous byte count.
type SizeConfidence string

const (
	SizeExact     SizeConfidence = "exact"
	SizeEstimated SizeConfidence = "estimated"
	SizeUnknown   SizeConfidence = "unknown"
)

// CookieSource records which authentication tier produced a result.
type CookieSource string

const (
	CookieNone   CookieSource = "none"
	CookieServer CookieSource = "server"
	CookieClient CookieSource = "client"
)

// MediaSource is one downloadable representation of a media item.
type MediaSource struct {
	Quality     string         `json:"quality"`
	URL         string         `json:"url"`
	Resolution  string         `json:"resolution,omitempty"`
	MIME        string         `json:"mime,omitempty"`
	Extension   string         `json:"extension,omitempty"`
	Size        int64          `json:"size,omitempty"`
	SizeConf    SizeConfidence `json:"-"`
	Bitrate     int            `json:"bitrate,omitempty"`
	Filename    string         `json:"filename,omitempty"`
	Hash        string         `json:"hash,omitempty"`
	Codec       string         `json:"codec,omitempty"`
	HasAudio    bool           `json:"hasAudio,omitempty"`
	NeedsMerge  bool           `json:"needsMerge,omitempty"`
	NeedsProxy  bool           `json:"needsProxy,omitempty"`
	Format      MediaFormat    `json:"format,omitempty"`
	// AudioURL carries the paired DASH audio track (BiliBili-style) for
	// sources that NeedsMerge; not part of the public JSON contract.
	AudioURL string `json:"-"`
}

// MediaItem groups an ordered sequence of sources representing one logical
// piece of media (one video, one image, one carousel slide).
type MediaItem struct {
	Index         int           `json:"index"`
	Type          ContentType   `json:"type"`
	Thumbnail     string        `json:"thumbnail,omitempty"`
	ThumbnailHash string        `json:"thumbnailHash,omitempty"`
	Format        MediaFormat   `json:"format,omitempty"`
	Sources       []MediaSource `json:"sources"`
}

// Stats carries engagement counters, all optional since platforms expose
// different subsets.
type Stats struct {
	Views    int64 `json:"views,omitempty"`
	Likes    int64 `json:"likes,omitempty"`
	Comments int64 `json:"comments,omitempty"`
	Shares   int64 `json:"shares,omitempty"`
}

// ResponseMeta accompanies every envelope, success or failure, so a caller
// can always measure latency and understand how the request was authorized.
type ResponseMeta struct {
	ResponseTimeMs int64  `json:"responseTime"`
	AccessMode     string `json:"accessMode"`
	PublicContent  bool   `json:"publicContent"`
}

// Result is the success shape of an extraction.
type Result struct {
	Success        bool         `json:"success"`
	Platform       string       `json:"platform"`
	ContentType    ContentType  `json:"contentType"`
	SourceURL      string       `json:"sourceUrl,omitempty"`
	Title          string       `json:"title,omitempty"`
	Author         string       `json:"author,omitempty"`
	AuthorUsername string       `json:"authorUsername,omitempty"`
	ID             string       `json:"id,omitempty"`
	Description    string       `json:"description,omitempty"`
	UploadDate     string       `json:"uploadDate,omitempty"`
	Stats          *Stats       `json:"stats,omitempty"`
	Items          []MediaItem  `json:"items"`
	Meta           ResponseMeta `json:"meta"`
	UsedCookie     bool         `json:"usedCookie"`
	CookieSource   CookieSource `json:"cookieSource"`
	IsNsfw         bool         `json:"isNsfw,omitempty"`
}

// Options carries per-request extraction inputs.
type Options struct {
	// Cookie is the Tier-C client-supplied credential, in any of the three
	// accepted shapes (Netscape, JSON export, or raw name=value; pairs).
	// The /extract handler normalizes it with ParseCookie (cookie.go, P6)
	// before it reaches an extractor.
	Cookie string
}

// Extractor is the capability set every platform scanner and the wrapper
// bridge implement. A registry of values satisfying this interface replaces
// a class hierarchy (see Design Notes, spec Non-goals: no inheritance).
type Extractor interface {
	Platform() string
	Patterns() []*regexp.Regexp
	Match(url string) bool
	Extract(ctx context.Context, url string, opts Options) (*Result, *Error)
}
