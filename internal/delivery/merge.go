package delivery

import (
	"net/http"
	"net/url"

	"github.com/mediagate/mediagate/internal/extractor"
	"github.com/mediagate/mediagate/internal/muxer"
)

// ServeMerge handles GET /merge?videoUrl=&audioUrl=[&copyAudio=1&filename=]:
// a single muxer invocation combining two upstreams into fragmented MP4. If
// copyAudio=1, an audio stream-copy is attempted first; on a failure before
// any bytes reached the client, the muxer is respawned once with an AAC
// transcode instead — once bytes are forwarded, the response is committed
// and no retry is possible.
func (h *Handler) ServeMerge(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	videoURL := q.Get("videoUrl")
	audioURL := q.Get("audioUrl")
	if videoURL == "" || audioURL == "" {
		writeError(w, extractor.NewError(extractor.CodeMissingParameter, "videoUrl and audioUrl are required"))
		return
	}

	videoParsed, err := url.Parse(videoURL)
	if err != nil {
		writeError(w, extractor.NewError(extractor.CodeInvalidURL, err.Error()))
		return
	}
	audioParsed, err := url.Parse(audioURL)
	if err != nil {
		writeError(w, extractor.NewError(extractor.CodeInvalidURL, err.Error()))
		return
	}

	opts := muxer.BuildOptions{
		VideoURL:     videoURL,
		AudioURL:     audioURL,
		VideoHeaders: UpstreamHeaders(videoParsed.Hostname()),
		AudioHeaders: UpstreamHeaders(audioParsed.Hostname()),
	}

	binary, err := muxer.Discover(h.muxerBinary)
	if err != nil {
		writeError(w, extractor.NewError(extractor.CodeFFmpegNotAvailable, err.Error()))
		return
	}

	if filename := q.Get("filename"); filename != "" {
		setContentDisposition(w, filename)
	}

	copyAudio := q.Get("copyAudio") == "1"
	if copyAudio {
		opts.CopyAudio = true
		result := streamMuxerOutput(r.Context(), w, h.logger, binary, muxer.BuildArgs(muxer.KindMerge, opts), "video/mp4", h.muxerMaxDuration)
		if result.bytesWritten > 0 {
			if result.err != nil {
				h.logger.Debug("merge muxer exited non-zero after streaming began", "error", result.err)
			}
			return
		}
		h.logger.Debug("merge copy-audio attempt failed before any bytes were written, retrying with transcode", "error", result.err)
		opts.CopyAudio = false
	}

	result := streamMuxerOutput(r.Context(), w, h.logger, binary, muxer.BuildArgs(muxer.KindMerge, opts), "video/mp4", h.muxerMaxDuration)
	if result.bytesWritten == 0 && result.err != nil {
		writeError(w, extractor.NewError(extractor.CodeMergeFailed, result.err.Error()))
		return
	}
	if result.err != nil {
		h.logger.Debug("merge muxer exited non-zero after streaming began", "error", result.err)
	}
}
