package delivery

import (
	"net/http"
	"net/url"

	"github.com/mediagate/mediagate/internal/extractor"
	"github.com/mediagate/mediagate/internal/muxer"
)

// ServeHLSStream handles GET /hls-stream?url=[&audioUrl=]&type=audio|video:
// spawns an ffmpeg subprocess that reads the upstream HLS/DASH source(s)
// and pipes a live-transcoded fragmented-MP4 or MP3 stream directly to the
// response.
func (h *Handler) ServeHLSStream(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	videoURL := q.Get("url")
	audioURL := q.Get("audioUrl")
	kind := q.Get("type")

	if videoURL == "" {
		writeError(w, extractor.NewError(extractor.CodeMissingParameter, "url is required"))
		return
	}

	parsed, err := url.Parse(videoURL)
	if err != nil {
		writeError(w, extractor.NewError(extractor.CodeInvalidURL, err.Error()))
		return
	}
	videoHeaders := UpstreamHeaders(parsed.Hostname())

	var opts muxer.BuildOptions
	var muxKind muxer.Kind
	var contentType string

	switch {
	case kind == "audio":
		muxKind = muxer.KindHLSAudioOnly
		contentType = "audio/mpeg"
		opts = muxer.BuildOptions{VideoURL: videoURL, VideoHeaders: videoHeaders}
	case audioURL != "":
		audioParsed, err := url.Parse(audioURL)
		if err != nil {
			writeError(w, extractor.NewError(extractor.CodeInvalidURL, err.Error()))
			return
		}
		muxKind = muxer.KindDASHVideoAudio
		contentType = "video/mp4"
		opts = muxer.BuildOptions{
			VideoURL:     videoURL,
			AudioURL:     audioURL,
			VideoHeaders: videoHeaders,
			AudioHeaders: UpstreamHeaders(audioParsed.Hostname()),
		}
	default:
		muxKind = muxer.KindHLSVideo
		contentType = "video/mp4"
		opts = muxer.BuildOptions{VideoURL: videoURL, VideoHeaders: videoHeaders}
	}

	binary, err := muxer.Discover(h.muxerBinary)
	if err != nil {
		writeError(w, extractor.NewError(extractor.CodeFFmpegNotAvailable, err.Error()))
		return
	}

	args := muxer.BuildArgs(muxKind, opts)
	result := streamMuxerOutput(r.Context(), w, h.logger, binary, args, contentType, h.muxerMaxDuration)
	if result.bytesWritten == 0 && result.err != nil {
		writeError(w, gatewayErrorFor(result.err))
		return
	}
	if result.err != nil {
		h.logger.Debug("hls-stream muxer exited non-zero after streaming began", "error", result.err)
	}
}
