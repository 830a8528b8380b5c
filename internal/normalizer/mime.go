// Package normalizer implements the C6 result normalizer: MIME/size
// analysis, filename synthesis, URL-registry insertion, and the response
// envelope fields every successful extraction gets before it reaches the
// client.
package normalizer

import (
	"path"
	"strings"
)

// MimeInfo is the per-source analysis spec.md §4.6 requires.
type MimeInfo struct {
	MIME       string
	Extension  string
	Kind       string // "video", "audio", "image"
	Streaming  bool   // HLS/DASH manifest, not a single file
	Playlist   bool   // m3u8/mpd manifest specifically
	Container  string // "mp4", "webm", "jpg", ...
	Confidence string // "high", "medium", "low"
}

type mimeEntry struct {
	extension string
	kind      string
	container string
	streaming bool
	playlist  bool
}

// mimeTable maps well-known MIME types to their extension/kind/container.
// Both AnalyzeMime (Content-Type known) and extensionTable (URL-only) draw
// from this single source of truth so the two directions never disagree.
var mimeTable = map[string]mimeEntry{
	"video/mp4":               {extension: "mp4", kind: "video", container: "mp4"},
	"video/webm":              {extension: "webm", kind: "video", container: "webm"},
	"video/quicktime":         {extension: "mov", kind: "video", container: "mov"},
	"video/x-matroska":        {extension: "mkv", kind: "video", container: "mkv"},
	"video/mp2t":              {extension: "ts", kind: "video", container: "ts"},
	"application/vnd.apple.mpegurl": {extension: "m3u8", kind: "video", container: "hls", streaming: true, playlist: true},
	"application/x-mpegurl":   {extension: "m3u8", kind: "video", container: "hls", streaming: true, playlist: true},
	"application/dash+xml":    {extension: "mpd", kind: "video", container: "dash", streaming: true, playlist: true},
	"audio/mpeg":               {extension: "mp3", kind: "audio", container: "mp3"},
	"audio/mp4":                {extension: "m4a", kind: "audio", container: "m4a"},
	"audio/aac":                {extension: "aac", kind: "audio", container: "aac"},
	"audio/ogg":                {extension: "ogg", kind: "audio", container: "ogg"},
	"audio/wav":                {extension: "wav", kind: "audio", container: "wav"},
	"image/jpeg":               {extension: "jpg", kind: "image", container: "jpg"},
	"image/png":                {extension: "png", kind: "image", container: "png"},
	"image/webp":               {extension: "webp", kind: "image", container: "webp"},
	"image/gif":                {extension: "gif", kind: "image", container: "gif"},
}

// extensionTable is the reverse lookup used when only the URL path is
// available (medium confidence): extension -> canonical MIME type.
var extensionTable = buildExtensionTable()

func buildExtensionTable() map[string]string {
	t := make(map[string]string, len(mimeTable))
	for mime, entry := range mimeTable {
		if _, exists := t[entry.extension]; !exists {
			t[entry.extension] = mime
		}
	}
	return t
}

// AnalyzeMime computes MimeInfo from an explicit upstream Content-Type
// (highest confidence), falling back to the URL's extension (medium), and
// finally to an empty, low-confidence result. contentType may include
// parameters ("video/mp4; charset=binary"); only the type/subtype is used.
func AnalyzeMime(contentType, sourceURL string) MimeInfo {
	if ct := stripParams(contentType); ct != "" {
		if entry, ok := mimeTable[ct]; ok {
			return MimeInfo{
				MIME:       ct,
				Extension:  entry.extension,
				Kind:       entry.kind,
				Streaming:  entry.streaming,
				Playlist:   entry.playlist,
				Container:  entry.container,
				Confidence: "high",
			}
		}
		// Unknown but explicit Content-Type: still trust the stated type,
		// just without a matching table entry to enrich it.
		return MimeInfo{MIME: ct, Confidence: "high"}
	}

	if ext := extensionFromURL(sourceURL); ext != "" {
		if mime, ok := extensionTable[ext]; ok {
			entry := mimeTable[mime]
			return MimeInfo{
				MIME:       mime,
				Extension:  entry.extension,
				Kind:       entry.kind,
				Streaming:  entry.streaming,
				Playlist:   entry.playlist,
				Container:  entry.container,
				Confidence: "medium",
			}
		}
	}

	return MimeInfo{Confidence: "low"}
}

func stripParams(contentType string) string {
	ct := strings.TrimSpace(contentType)
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

func extensionFromURL(sourceURL string) string {
	u := sourceURL
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	ext := strings.TrimPrefix(path.Ext(u), ".")
	return strings.ToLower(ext)
}
