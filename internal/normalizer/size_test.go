package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mediagate/mediagate/internal/extractor"
)

func TestAnalyzeSize_ContentLengthExact(t *testing.T) {
	a := AnalyzeSize("12345", "", 0, 0, false)
	assert.Equal(t, int64(12345), a.Size)
	assert.Equal(t, extractor.SizeExact, a.Confidence)
}

func TestAnalyzeSize_ContentRangeExact(t *testing.T) {
	a := AnalyzeSize("", "bytes 0-999/5000", 0, 0, false)
	assert.Equal(t, int64(5000), a.Size)
	assert.Equal(t, extractor.SizeExact, a.Confidence)
}

func TestAnalyzeSize_ContentRangeUnknownTotal(t *testing.T) {
	a := AnalyzeSize("", "bytes 0-999/*", 0, 0, false)
	assert.Equal(t, extractor.SizeUnknown, a.Confidence)
}

func TestAnalyzeSize_BitrateEstimate(t *testing.T) {
	a := AnalyzeSize("", "", 8_000_000, 10, false)
	assert.Equal(t, int64(10_000_000), a.Size)
	assert.Equal(t, extractor.SizeEstimated, a.Confidence)
}

func TestAnalyzeSize_StreamingNeverEstimated(t *testing.T) {
	a := AnalyzeSize("", "", 8_000_000, 10, true)
	assert.Equal(t, extractor.SizeUnknown, a.Confidence)
	assert.Equal(t, int64(0), a.Size)
}

func TestAnalyzeSize_NoEvidenceUnknown(t *testing.T) {
	a := AnalyzeSize("", "", 0, 0, false)
	assert.Equal(t, extractor.SizeUnknown, a.Confidence)
}

func TestApplyToSource_OmitsSizeWhenUnknown(t *testing.T) {
	src := &extractor.MediaSource{Size: 999}
	ApplyToSource(src, SizeAnalysis{Confidence: extractor.SizeUnknown})
	assert.Equal(t, int64(0), src.Size)
	assert.Equal(t, extractor.SizeUnknown, src.SizeConf)
}
