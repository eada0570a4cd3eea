package handlers

import (
	"net/http"
	"os"
	"path"

	"pdn-thumbnailer/internal/filesystem"
	"pdn-thumbnailer/internal/logging"
	"pdn-thumbnailer/internal/scan"
)

// DocumentList is the response of ListDocuments.
type DocumentList struct {
	Path      string          `json:"path"`
	Documents []scan.Document `json:"documents"`
}

// ListDocuments returns the documents below the directory named by the
// optional path query parameter, relative to the document directory.
func (h *Handlers) ListDocuments(w http.ResponseWriter, r *http.Request) {
	rel := r.URL.Query().Get("path")

	dir, err := filesystem.ResolvePath(h.documentDir, rel)
	if err != nil {
		writeJSONError(w, "Invalid path", http.StatusBadRequest)
		return
	}

	docs, err := scan.NewWalker(dir, scan.DefaultConfig()).Walk(r.Context())
	if err != nil {
		switch {
		case r.Context().Err() != nil:
			logging.Debug("Document listing abandoned by client: %v", err)
		case os.IsNotExist(err):
			writeJSONError(w, "Directory not found", http.StatusNotFound)
		case os.IsPermission(err):
			writeJSONError(w, "Access denied", http.StatusForbidden)
		default:
			writeJSONError(w, "Not a directory", http.StatusBadRequest)
		}
		return
	}

	// Paths in the response are relative to the document directory
	prefix := mustRel(h.documentDir, dir)
	for i := range docs {
		if prefix != "." {
			docs[i].RelPath = path.Join(prefix, docs[i].RelPath)
		}
	}
	if docs == nil {
		docs = []scan.Document{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, DocumentList{Path: prefix, Documents: docs})
}
