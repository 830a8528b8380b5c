package handlers

import (
	_ "embed"
	"net/http"
)

//go:embed changelog.md
var changelogMarkdown string

// ChangelogHandler serves the embedded changelog as plain text. It is a
// public route: no API key or origin is required to read it.
type ChangelogHandler struct{}

// NewChangelogHandler creates a new changelog handler.
func NewChangelogHandler() *ChangelogHandler {
	return &ChangelogHandler{}
}

func (h *ChangelogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(changelogMarkdown))
}
