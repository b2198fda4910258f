package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/shapeboard/shapeboard/internal/engine"
	"github.com/shapeboard/shapeboard/internal/typeid"
)

const (
	maxBodySize = 1 << 20 // 1MB

	// MaxRadius is the largest radius accepted for export.
	MaxRadius = 1 << 20
)

type Handler struct {
	maxSize    int
	maxCircles int
}

// NewHandler creates an export handler refusing images wider or taller than
// maxSize and snapshots holding more than maxCircles circles.
func NewHandler(maxSize, maxCircles int) *Handler {
	return &Handler{maxSize: maxSize, maxCircles: maxCircles}
}

// ExportPNG handles POST /export/png. The body is a board snapshot; the
// response is the rendered board with the selection highlighted.
func (h *Handler) ExportPNG(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	var snap engine.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid snapshot"})
		return
	}

	if snap.Width == 0 {
		snap.Width = engine.DefaultWidth
	}
	if snap.Height == 0 {
		snap.Height = engine.DefaultHeight
	}
	if snap.Width < 0 || snap.Height < 0 || snap.Width > h.maxSize || snap.Height > h.maxSize {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("size must be between 1 and %d", h.maxSize),
		})
		return
	}

	if len(snap.Circles) > h.maxCircles {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("at most %d circles can be exported", h.maxCircles),
		})
		return
	}
	for i, c := range snap.Circles {
		if c.Radius > MaxRadius {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": fmt.Sprintf("circle %d: radius must be at most %d", i, MaxRadius),
			})
			return
		}
	}

	eng := engine.NewEngine()
	if err := eng.LoadSnapshot(snap); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	var buf bytes.Buffer
	if err := EncodePNG(&buf, eng.Commands(), snap.Width, snap.Height); err != nil {
		if errors.Is(err, ErrInvalidSize) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		slog.Error("export png", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	exportID := typeid.NewExportID()
	slog.Info("board exported", "export", exportID, "circles", eng.Board().Len(), "bytes", buf.Len())

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.png"`, exportID))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
