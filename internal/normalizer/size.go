package normalizer

import (
	"strconv"
	"strings"

	"github.com/mediagate/mediagate/internal/extractor"
)

// SizeAnalysis is the honest-reporting result of §4.6's size rule: the
// normalizer never claims a size it cannot justify.
type SizeAnalysis struct {
	Size       int64
	Confidence extractor.SizeConfidence
}

// AnalyzeSize derives a source's byte size from the strongest evidence
// available, in priority order:
//  1. An explicit Content-Length header: exact.
//  2. A Content-Range total ("bytes 0-999/5000"): exact.
//  3. A bitrate (bits/sec) * duration (sec) estimate, but only for a
//     non-streaming container — HLS/DASH never get an estimated size
//     because a manifest's total byte count isn't derivable from its
//     bandwidth attribute alone.
//
// Anything else returns SizeUnknown and Size 0; callers must omit `size`
// from the wire response rather than serialize a zero.
func AnalyzeSize(contentLength string, contentRange string, bitrateBps int, durationSeconds float64, streaming bool) SizeAnalysis {
	if n, ok := parseContentLength(contentLength); ok {
		return SizeAnalysis{Size: n, Confidence: extractor.SizeExact}
	}
	if n, ok := parseContentRangeTotal(contentRange); ok {
		return SizeAnalysis{Size: n, Confidence: extractor.SizeExact}
	}
	if !streaming && bitrateBps > 0 && durationSeconds > 0 {
		estimated := int64(float64(bitrateBps) / 8 * durationSeconds)
		return SizeAnalysis{Size: estimated, Confidence: extractor.SizeEstimated}
	}
	return SizeAnalysis{Confidence: extractor.SizeUnknown}
}

func parseContentLength(v string) (int64, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// parseContentRangeTotal extracts the total from "bytes start-end/total";
// an unknown total ("bytes 0-999/*") is not usable evidence.
func parseContentRangeTotal(v string) (int64, bool) {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "bytes ") {
		return 0, false
	}
	i := strings.LastIndex(v, "/")
	if i < 0 || i == len(v)-1 {
		return 0, false
	}
	total := v[i+1:]
	if total == "*" {
		return 0, false
	}
	n, err := strconv.ParseInt(total, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// ApplyToSource writes a size analysis onto a MediaSource, leaving Size
// unset (zero, and excluded from JSON via omitempty) when the confidence is
// unknown.
func ApplyToSource(src *extractor.MediaSource, analysis SizeAnalysis) {
	src.SizeConf = analysis.Confidence
	if analysis.Confidence == extractor.SizeUnknown {
		src.Size = 0
		return
	}
	src.Size = analysis.Size
}
