package export

import (
	"encoding/json"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shapeboard/shapeboard/internal/board"
	"github.com/shapeboard/shapeboard/internal/engine"
)

func post(h *Handler, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/export/png", strings.NewReader(body))
	h.ExportPNG(rec, req)
	return rec
}

func TestExportPNG(t *testing.T) {
	h := NewHandler(1024, 100)

	rec := post(h, `{
		"width": 120, "height": 80,
		"circles": [
			{"id": "circle_a", "x": 30, "y": 40, "radius": 20, "color": "#00ff00"},
			{"id": "circle_b", "x": 90, "y": 40, "radius": 20, "color": "#00ff00"}
		],
		"selected": 1
	}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="exp_`)

	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 120, img.Bounds().Dx())
	assert.Equal(t, lime, color.RGBAModel.Convert(img.At(30, 40)))
	assert.Equal(t, red, color.RGBAModel.Convert(img.At(90, 40)), "selected circle is highlighted")
}

func TestExportPNGDefaultsSize(t *testing.T) {
	rec := post(NewHandler(4096, 100), `{"circles": []}`)
	require.Equal(t, http.StatusOK, rec.Code)

	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 800, img.Bounds().Dx())
	assert.Equal(t, 600, img.Bounds().Dy())
}

func TestExportPNGRejectsBadInput(t *testing.T) {
	h := NewHandler(100, 100)

	assert.Equal(t, http.StatusBadRequest, post(h, `{`).Code)
	assert.Equal(t, http.StatusBadRequest, post(h, `{"width": 101, "height": 10}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(h, `{"width": -1, "height": 10}`).Code)
}

func TestExportPNGRejectsInvalidRadius(t *testing.T) {
	h := NewHandler(100, 100)

	rec := post(h, `{"circles": [{"x": 10, "y": 10, "radius": -6}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "radius must be positive")

	rec = post(h, `{"circles": [{"x": 10, "y": 10, "radius": 1e23}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "radius must be at most")
}

func TestExportPNGCapsCircleCount(t *testing.T) {
	h := NewHandler(100, 3)

	snapshot := func(n int) string {
		snap := engine.Snapshot{Width: 10, Height: 10}
		for i := 0; i < n; i++ {
			snap.Circles = append(snap.Circles, board.Circle{X: 5, Y: 5, Radius: 1, Color: "#000000"})
		}
		data, err := json.Marshal(snap)
		require.NoError(t, err)
		return string(data)
	}

	assert.Equal(t, http.StatusOK, post(h, snapshot(3)).Code)

	rec := post(h, snapshot(4))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "at most 3 circles")
}
