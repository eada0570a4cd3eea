package handlers

import (
	"net/http"

	"pdn-thumbnailer/internal/extract"
	"pdn-thumbnailer/internal/logging"
	"pdn-thumbnailer/internal/pdnheader"
	"pdn-thumbnailer/internal/transcoder"
)

// InfoResponse describes a document's header.
type InfoResponse struct {
	Path         string               `json:"path"`
	FileSize     int64                `json:"fileSize"`
	HeaderBytes  int                  `json:"headerBytes"`
	Thumbnail    ThumbnailInfo        `json:"thumbnail"`
	Image        *pdnheader.ImageInfo `json:"image,omitempty"`
	BodyEncoding pdnheader.BodyFormat `json:"bodyEncoding"`
}

// ThumbnailInfo describes the embedded preview without decoding it.
type ThumbnailInfo struct {
	Format          pdnheader.Format `json:"format"`
	EncodedBytes    int              `json:"encodedBytes"`
	MaxDecodedBytes int              `json:"maxDecodedBytes"`
}

// GetInfo returns what the document header says about the file.
func (h *Handlers) GetInfo(w http.ResponseWriter, r *http.Request) {
	fullPath, info, ok := h.resolveDocument(w, r)
	if !ok {
		return
	}

	doc, err := h.extractor.Inspect(fullPath)
	if err != nil {
		kind := extract.KindOf(err)
		status := statusForKind(kind)
		if status >= http.StatusInternalServerError {
			logging.Error("Header inspection failed: %v", err)
		}
		writeJSONErrorKind(w, "Failed to read document header", kind.Label(), status)
		return
	}

	response := InfoResponse{
		Path:        mustRel(h.documentDir, fullPath),
		FileSize:    info.Size(),
		HeaderBytes: len(doc.Header),
		Thumbnail: ThumbnailInfo{
			Format:          doc.Thumbnail.Format,
			EncodedBytes:    len(doc.Thumbnail.Payload),
			MaxDecodedBytes: transcoder.RequiredDecodeLength(len(doc.Thumbnail.Payload)),
		},
		Image:        doc.Info,
		BodyEncoding: doc.BodyFormat,
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, response)
}
