package delivery

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/mediagate/mediagate/internal/util"
	"github.com/mediagate/mediagate/pkg/ulidgen"
)

// ytDlpBinaryEnv names the override environment variable for the yt-dlp
// executable, matching internal/util.FindBinary's envVar convention.
const ytDlpBinaryEnv = "MEDIAGATE_YTDLP_BINARY"

// tryYouTubeFastPath attempts to materialize watchURL to a local MP4 via
// yt-dlp and stream the resulting file, returning true if it handled the
// response (success or a terminal failure already reported to the
// client). Returning false tells the caller to fall through to the
// generic proxy code path, per spec.md's "/download" fast-path contract.
func (h *Handler) tryYouTubeFastPath(w http.ResponseWriter, r *http.Request, watchURL string) bool {
	binary, err := util.FindBinary("yt-dlp", ytDlpBinaryEnv)
	if err != nil {
		h.logger.Debug("yt-dlp not available, falling back to generic proxy", "error", err)
		return false
	}

	tempDir, err := os.MkdirTemp("", "mediagate-ytfp-"+ulidgen.New())
	if err != nil {
		h.logger.Error("creating youtube fast-path temp dir failed", "error", err)
		return false
	}
	defer os.RemoveAll(tempDir)

	outputTemplate := filepath.Join(tempDir, "media.%(ext)s")
	cmd := exec.CommandContext(r.Context(), binary,
		"-f", "mp4/best[ext=mp4]/best",
		"--no-playlist",
		"-o", outputTemplate,
		watchURL,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		h.logger.Debug("yt-dlp fast path failed, falling back to generic proxy",
			slog.String("error", err.Error()), slog.String("output", string(out)))
		return false
	}

	matches, err := filepath.Glob(filepath.Join(tempDir, "media.*"))
	if err != nil || len(matches) == 0 {
		h.logger.Debug("yt-dlp produced no output file, falling back to generic proxy")
		return false
	}

	file, err := os.Open(matches[0])
	if err != nil {
		h.logger.Debug("opening yt-dlp output failed, falling back to generic proxy", "error", err)
		return false
	}
	defer file.Close()

	w.Header().Set("Content-Type", "video/mp4")
	if info, err := file.Stat(); err == nil {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", info.Size()))
	}
	w.WriteHeader(http.StatusOK)
	copyStream(w, file, h.logger, watchURL)
	return true
}
