package normalizer

import (
	"time"

	"github.com/mediagate/mediagate/internal/extractor"
)

// Registry is the narrow C7 dependency the normalizer needs: insert a URL,
// get back its 16-hex fingerprint. internal/urlregistry.Registry satisfies
// this directly.
type Registry interface {
	Add(url string) string
}

// SourceInput carries the per-MediaSource evidence the normalizer needs
// beyond what's already on the MediaSource value (Content-Type/-Length/
// -Range come from the upstream response, not the extractor's Result).
type SourceInput struct {
	ContentType     string
	ContentLength   string
	ContentRange    string
	BitrateBps      int
	DurationSeconds float64
}

// Normalize runs MIME analysis, size analysis, filename synthesis, and URL
// registration over every source of every item in result, and stamps the
// response envelope's meta fields. started is the extraction's start time,
// used to compute meta.responseTime.
func Normalize(result *extractor.Result, sourceInputs map[string]SourceInput, registry Registry, accessMode string, started time.Time) {
	itemCount := len(result.Items)

	for i := range result.Items {
		item := &result.Items[i]

		if item.Thumbnail != "" {
			item.ThumbnailHash = registry.Add(item.Thumbnail)
		}

		for j := range item.Sources {
			src := &item.Sources[j]
			input := sourceInputs[src.URL]

			mime := AnalyzeMime(input.ContentType, src.URL)
			if src.MIME == "" {
				src.MIME = mime.MIME
			}
			if src.Extension == "" {
				src.Extension = mime.Extension
			}

			streaming := mime.Streaming || src.Format == extractor.FormatHLS || src.Format == extractor.FormatDASH
			sizeAnalysis := AnalyzeSize(input.ContentLength, input.ContentRange, input.BitrateBps, input.DurationSeconds, streaming)
			ApplyToSource(src, sizeAnalysis)

			if src.Filename == "" {
				src.Filename = SynthesizeFilename(result.Author, string(item.Type), result.Title, item.Index, itemCount, src.Quality, src.Extension)
			}

			src.Hash = registry.Add(src.URL)
		}
	}

	result.Meta = extractor.ResponseMeta{
		ResponseTimeMs: time.Since(started).Milliseconds(),
		AccessMode:     accessMode,
		PublicContent:  !result.UsedCookie,
	}
}
