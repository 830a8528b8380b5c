package muxer

import "strings"

// Kind distinguishes the five argument-vector shapes the delivery proxy's
// hls-stream and merge endpoints need. Each maps to one ffmpeg invocation
// shape from spec.md's delivery-proxy contract.
type Kind int

const (
	// KindHLSAudioOnly transcodes an HLS audio-only source to MP3 192kbps.
	KindHLSAudioOnly Kind = iota
	// KindHLSVideo copies video, transcodes audio to AAC 128kbps, emits
	// fragmented MP4.
	KindHLSVideo
	// KindDASHVideoAudio muxes a BiliBili-style DASH video stream with a
	// separate audio stream URL into fragmented MP4.
	KindDASHVideoAudio
	// KindDASHAudioOnly transcodes a DASH audio-only source to MP3.
	KindDASHAudioOnly
	// KindMerge combines a video URL and an audio URL into fragmented MP4,
	// optionally copying the audio codec instead of transcoding it.
	KindMerge
)

const (
	fragMovflags = "frag_keyframe+empty_moov+default_base_moof"
	aacBitrate   = "128k"
	mp3Bitrate   = "192k"
)

// headerFlag builds ffmpeg's "-headers" input option: a single CRLF-joined
// block of "Key: value" lines, applied to the input that follows it on the
// command line.
func headerFlag(headers map[string]string) []string {
	if len(headers) == 0 {
		return nil
	}
	var b strings.Builder
	for k, v := range headers {
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(v)
		b.WriteString("\r\n")
	}
	return []string{"-headers", b.String()}
}

// BuildOptions carries the input URL(s) and per-input headers BuildArgs
// uses; output always goes to stdout (pipe:1). VideoHeaders applies to the
// primary (video, or sole) input; AudioHeaders applies to the secondary
// audio input when one is present.
type BuildOptions struct {
	VideoURL      string
	AudioURL      string
	VideoHeaders  map[string]string
	AudioHeaders  map[string]string
	CopyAudio     bool
	LogLevel      string // defaults to "warning"
}

// BuildArgs returns the full argv (excluding argv[0], the binary path) for
// the given invocation kind.
func BuildArgs(kind Kind, opts BuildOptions) []string {
	logLevel := opts.LogLevel
	if logLevel == "" {
		logLevel = "warning"
	}

	args := []string{"-hide_banner", "-loglevel", logLevel, "-y"}

	switch kind {
	case KindHLSAudioOnly, KindDASHAudioOnly:
		args = append(args, headerFlag(opts.VideoHeaders)...)
		args = append(args, "-i", opts.VideoURL)
		args = append(args, "-vn", "-c:a", "libmp3lame", "-b:a", mp3Bitrate)
		args = append(args, "-f", "mp3", "pipe:1")

	case KindHLSVideo:
		args = append(args, headerFlag(opts.VideoHeaders)...)
		args = append(args, "-i", opts.VideoURL)
		args = append(args, "-c:v", "copy", "-c:a", "aac", "-b:a", aacBitrate)
		args = append(args, "-f", "mp4", "-movflags", fragMovflags, "pipe:1")

	case KindDASHVideoAudio:
		args = append(args, headerFlag(opts.VideoHeaders)...)
		args = append(args, "-i", opts.VideoURL)
		args = append(args, headerFlag(opts.AudioHeaders)...)
		args = append(args, "-i", opts.AudioURL)
		args = append(args, "-map", "0:v:0", "-map", "1:a:0")
		args = append(args, "-c:v", "copy", "-c:a", "aac", "-b:a", aacBitrate)
		args = append(args, "-f", "mp4", "-movflags", fragMovflags, "pipe:1")

	case KindMerge:
		args = append(args, headerFlag(opts.VideoHeaders)...)
		args = append(args, "-i", opts.VideoURL)
		args = append(args, headerFlag(opts.AudioHeaders)...)
		args = append(args, "-i", opts.AudioURL)
		args = append(args, "-map", "0:v:0", "-map", "1:a:0")
		audioCodec := "aac"
		if opts.CopyAudio {
			audioCodec = "copy"
		}
		args = append(args, "-c:v", "copy", "-c:a", audioCodec)
		if audioCodec == "aac" {
			args = append(args, "-b:a", aacBitrate)
		}
		args = append(args, "-f", "mp4", "-movflags", fragMovflags, "pipe:1")
	}

	return args
}
