package delivery

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/mediagate/mediagate/internal/extractor"
	"github.com/mediagate/mediagate/internal/muxer"
)

// muxerRunResult distinguishes "failed before any byte reached the client"
// (still recoverable — headers haven't been sent, a retry or an error
// envelope is still possible) from "failed after streaming began" (the
// response is committed; all that's left is to close the connection).
type muxerRunResult struct {
	bytesWritten int64
	err          error
}

// streamMuxerOutput starts an ffmpeg subprocess and relays its stdout to w,
// deferring the response status/headers until the first chunk of output
// arrives so a subprocess that dies immediately can still surface as a
// proper CONVERSION_FAILED envelope instead of a half-written 200.
func streamMuxerOutput(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, binary string, args []string, contentType string, maxDuration time.Duration) muxerRunResult {
	runCtx := ctx
	if maxDuration > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, maxDuration)
		defer cancel()
	}

	proc := muxer.New(binary, args, logger)
	stdout, err := proc.Start(runCtx)
	if err != nil {
		return muxerRunResult{err: err}
	}

	buf := make([]byte, 32*1024)
	n, readErr := stdout.Read(buf)
	if n == 0 {
		waitErr := proc.Wait()
		if waitErr == nil {
			waitErr = readErr
		}
		return muxerRunResult{err: waitErr}
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Accept-Ranges", "none")
	w.Header().Set("Transfer-Encoding", "chunked")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	written := int64(0)
	wn, writeErr := w.Write(buf[:n])
	written += int64(wn)
	if flusher != nil {
		flusher.Flush()
	}

	if writeErr == nil && readErr == nil {
		for {
			n, readErr := stdout.Read(buf)
			if n > 0 {
				wn, writeErr := w.Write(buf[:n])
				written += int64(wn)
				if flusher != nil {
					flusher.Flush()
				}
				if writeErr != nil {
					break
				}
			}
			if readErr != nil {
				break
			}
		}
	}

	waitErr := proc.Wait()
	return muxerRunResult{bytesWritten: written, err: waitErr}
}

// gatewayErrorFor maps a muxer failure into the wire error code the spec
// assigns delivery failures.
func gatewayErrorFor(err error) *extractor.Error {
	if err == nil {
		return extractor.NewError(extractor.CodeConversionFailed, "muxer produced no output")
	}
	return extractor.NewError(extractor.CodeConversionFailed, err.Error())
}
