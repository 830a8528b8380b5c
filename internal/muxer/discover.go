// Package muxer wraps the external ffmpeg binary the delivery proxy spawns
// for hls-stream and merge requests. Binary discovery follows the same
// env-var/local/PATH search order as internal/util.FindBinary, just walked
// over an explicit candidate list first since ffmpeg is commonly installed
// at a fixed path rather than a project-local one.
package muxer

import (
	"fmt"
	"os"

	"github.com/mediagate/mediagate/internal/util"
)

// candidatePaths are tried, in order, before falling back to PATH lookup.
var candidatePaths = []string{
	"/usr/bin/ffmpeg",
	"/usr/local/bin/ffmpeg",
}

// Discover locates the ffmpeg binary to spawn. configured, if non-empty,
// is tried first (the delivery.muxer_binary config value); then the fixed
// candidate paths; then PATH via internal/util.FindBinary.
func Discover(configured string) (string, error) {
	if configured != "" {
		if isExecutable(configured) {
			return configured, nil
		}
		return "", fmt.Errorf("configured muxer binary %q is not executable", configured)
	}

	for _, path := range candidatePaths {
		if isExecutable(path) {
			return path, nil
		}
	}

	path, err := util.FindBinary("ffmpeg", "MEDIAGATE_FFMPEG_BINARY")
	if err != nil {
		return "", fmt.Errorf("ffmpeg not found: %w", err)
	}
	return path, nil
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode()&0111 != 0
}
