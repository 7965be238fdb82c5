package handlers

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"drawing-prompter/internal/canvas"
	"drawing-prompter/internal/libraries"
	"drawing-prompter/internal/theme"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type event struct {
	Type libraries.WebSocketMessageType `json:"type"`
	Data json.RawMessage                `json:"data"`
}

type canvasRig struct {
	f       *fixture
	hub     *libraries.Hub
	handler *CanvasHandler
	client  *libraries.Client
}

func newCanvasRig(t *testing.T) *canvasRig {
	t.Helper()
	f := newFixture(t)
	hub := libraries.NewHub(zerolog.Nop())
	go hub.Run()

	h := NewCanvasHandler(f.themes, f.gallery, 20, zerolog.Nop())
	h.now = func() time.Time { return time.UnixMilli(1700000000000) }

	client := &libraries.Client{ID: uuid.NewString(), Send: make(chan []byte, 64)}
	hub.Register <- client
	return &canvasRig{f: f, hub: hub, handler: h, client: client}
}

func (r *canvasRig) open(t *testing.T, params map[string]string) {
	t.Helper()
	require.NoError(t, r.handler.OpenCanvas(r.hub, r.client, params))
	require.Equal(t, libraries.WebSocketMessageTypeState, r.next(t).Type)
}

func (r *canvasRig) send(t *testing.T, typ libraries.WebSocketMessageType, data any) {
	t.Helper()
	raw := map[string]any{"type": typ}
	if data != nil {
		raw["data"] = data
	}
	b, err := json.Marshal(raw)
	require.NoError(t, err)
	msg, err := libraries.ParseWebSocketMessage(b)
	require.NoError(t, err)
	r.handler.ProcessCanvasMessage(r.hub, r.client, msg)
}

func (r *canvasRig) next(t *testing.T) event {
	t.Helper()
	select {
	case b := <-r.client.Send:
		var e event
		require.NoError(t, json.Unmarshal(b, &e))
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("no message from canvas")
		return event{}
	}
}

func (r *canvasRig) state(t *testing.T) canvas.SessionState {
	t.Helper()
	e := r.next(t)
	require.Equal(t, libraries.WebSocketMessageTypeState, e.Type, string(e.Data))
	var st canvas.SessionState
	require.NoError(t, json.Unmarshal(e.Data, &st))
	return st
}

func (r *canvasRig) stroke(t *testing.T, x0, y0, x1, y1 float64) canvas.SessionState {
	t.Helper()
	r.send(t, libraries.WebSocketMessageTypePointerDown, map[string]float64{"x": x0, "y": y0})
	r.send(t, libraries.WebSocketMessageTypePointerMove, map[string]float64{"x": x1, "y": y1})
	r.send(t, libraries.WebSocketMessageTypePointerUp, nil)
	return r.state(t)
}

func TestCanvasOpenRejectsBadParams(t *testing.T) {
	r := newCanvasRig(t)
	for _, params := range []map[string]string{
		{"width": "50", "height": "400"},
		{"width": "abc", "height": "400"},
		{"dpr": "-1"},
		{"dpr": "x"},
		{"dpr": "1e6"},
		{"dpr": "NaN"},
		{"theme": "theme-nope"},
		{"theme": "theme-matrix"},
	} {
		require.Error(t, r.handler.OpenCanvas(r.hub, r.client, params), "%v", params)
	}
	require.ErrorIs(t, r.handler.OpenCanvas(r.hub, r.client, map[string]string{"theme": "theme-matrix"}), theme.ErrThemeLocked)
	require.ErrorIs(t, r.handler.OpenCanvas(r.hub, r.client, map[string]string{"dpr": "1e6"}), canvas.ErrInvalidSize)
	require.Equal(t, 0, r.handler.OpenSessions())
}

func TestCanvasOpenWithUnlockedTheme(t *testing.T) {
	r := newCanvasRig(t)
	_, err := r.f.themes.Unlock(context.Background(), "theme-matrix", "2.0")
	require.NoError(t, err)

	r.open(t, map[string]string{"theme": "theme-matrix"})
	require.Equal(t, 1, r.handler.OpenSessions())
}

func TestCanvasFitIsCapped(t *testing.T) {
	r := newCanvasRig(t)
	r.open(t, nil)

	r.send(t, libraries.WebSocketMessageTypeFit, map[string]float64{"width": 1e8, "height": 1e8})
	st := r.state(t)
	require.Equal(t, canvas.MaxWidth, st.Width)
	require.Equal(t, canvas.MaxHeight, st.Height)
}

func TestCanvasStrokeUndoRedo(t *testing.T) {
	r := newCanvasRig(t)
	r.open(t, map[string]string{"width": "200", "height": "150", "dpr": "1"})
	require.Equal(t, 1, r.handler.OpenSessions())

	st := r.stroke(t, 10, 10, 100, 100)
	require.Equal(t, 1, st.CurrentStep)
	require.True(t, st.CanUndo)

	r.send(t, libraries.WebSocketMessageTypeUndo, nil)
	st = r.state(t)
	require.Equal(t, 0, st.CurrentStep)
	require.True(t, st.CanRedo)

	r.send(t, libraries.WebSocketMessageTypeRedo, nil)
	st = r.state(t)
	require.Equal(t, 1, st.CurrentStep)
	require.False(t, st.CanRedo)

	r.send(t, libraries.WebSocketMessageTypeClear, nil)
	require.Equal(t, 2, r.state(t).CurrentStep)

	r.handler.CloseCanvas(r.client)
	require.Equal(t, 0, r.handler.OpenSessions())
}

func TestCanvasResizeMessages(t *testing.T) {
	r := newCanvasRig(t)
	r.open(t, map[string]string{"dpr": "2"})
	r.stroke(t, 1, 1, 5, 5)

	r.send(t, libraries.WebSocketMessageTypeResize, map[string]string{"width": "800", "height": "600"})
	st := r.state(t)
	require.Equal(t, 800, st.Width)
	require.Equal(t, 1600, st.BufferWidth)
	require.Equal(t, 0, st.CurrentStep)
	require.Equal(t, 1, st.Len)

	r.send(t, libraries.WebSocketMessageTypeResize, map[string]string{"width": "90", "height": "600"})
	require.Equal(t, libraries.WebSocketMessageTypeError, r.next(t).Type)
	require.Equal(t, 800, r.state(t).Width, "rejected size leaves the canvas alone")

	r.send(t, libraries.WebSocketMessageTypePreset, map[string]string{"name": "small"})
	require.Equal(t, 400, r.state(t).Width)

	r.send(t, libraries.WebSocketMessageTypeFit, map[string]float64{"width": 320, "height": 240})
	require.Equal(t, 240, r.state(t).Height)
}

func TestCanvasToolAndInvalidMessages(t *testing.T) {
	r := newCanvasRig(t)
	r.open(t, nil)

	r.send(t, libraries.WebSocketMessageTypeTool, map[string]string{"tool": "eraser"})
	require.Equal(t, canvas.ToolEraser, r.state(t).Tool)

	r.send(t, libraries.WebSocketMessageTypeTool, map[string]string{"tool": "spray"})
	require.Equal(t, libraries.WebSocketMessageTypeError, r.next(t).Type)
	require.Equal(t, canvas.ToolEraser, r.state(t).Tool)

	r.send(t, libraries.WebSocketMessageTypeColor, map[string]string{"color": "#ff0000"})
	r.send(t, libraries.WebSocketMessageTypeWidth, map[string]float64{"width": 12})

	r.send(t, libraries.WebSocketMessageTypePointerDown, nil)
	e := r.next(t)
	require.Equal(t, libraries.WebSocketMessageTypeError, e.Type)
	require.Contains(t, string(e.Data), "data is required")
	r.state(t)

	r.send(t, "spin", nil)
	require.Equal(t, libraries.WebSocketMessageTypeError, r.next(t).Type)
}

func TestCanvasThemeMessageRespectsLocks(t *testing.T) {
	r := newCanvasRig(t)
	r.open(t, map[string]string{"theme": "theme-dark"})

	r.send(t, libraries.WebSocketMessageTypeTheme, map[string]string{"id": "theme-matrix"})
	require.Equal(t, libraries.WebSocketMessageTypeError, r.next(t).Type)
	r.state(t)

	r.send(t, libraries.WebSocketMessageTypeTheme, map[string]string{"id": "theme-dark"})
	current, err := r.f.themes.Current(context.Background())
	require.NoError(t, err)
	require.Equal(t, "theme-dark", current.ID)
}

func TestCanvasExport(t *testing.T) {
	r := newCanvasRig(t)
	r.open(t, map[string]string{"width": "200", "height": "150"})
	r.send(t, libraries.WebSocketMessageTypeExport, nil)

	e := r.next(t)
	require.Equal(t, libraries.WebSocketMessageTypeExport, e.Type)
	var p libraries.ExportPayload
	require.NoError(t, json.Unmarshal(e.Data, &p))
	require.Equal(t, "dibujo_1700000000000.png", p.Filename)
	require.True(t, strings.HasPrefix(p.DataURL, "data:image/png;base64,"))
}

func TestCanvasSaveAndLoadDrawing(t *testing.T) {
	r := newCanvasRig(t)
	r.open(t, map[string]string{"width": "200", "height": "150"})
	r.stroke(t, 10, 10, 150, 100)

	r.send(t, libraries.WebSocketMessageTypeSaveDrawing, map[string]any{"prompt": map[string]string{"title": "Gato"}})
	e := r.next(t)
	require.Equal(t, libraries.WebSocketMessageTypeDrawingSaved, e.Type)
	var saved DrawingSavedPayload
	require.NoError(t, json.Unmarshal(e.Data, &saved))
	require.Equal(t, 200, saved.Drawing.Width)
	require.JSONEq(t, `{"title":"Gato"}`, string(saved.Drawing.Prompt))

	e = r.next(t)
	require.Equal(t, libraries.WebSocketMessageTypeGalleryUpdated, e.Type)
	var upd libraries.GalleryUpdatedPayload
	require.NoError(t, json.Unmarshal(e.Data, &upd))
	require.Equal(t, libraries.GalleryUpdatedPayload{Action: GalleryActionSaved, ID: saved.Drawing.UUID.String()}, upd)

	list, err := r.f.gallery.ListDrawings(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)

	r.send(t, libraries.WebSocketMessageTypeClear, nil)
	require.Equal(t, 2, r.state(t).CurrentStep)

	r.send(t, libraries.WebSocketMessageTypeLoadDrawing, map[string]string{"id": saved.Drawing.UUID.String()})
	st := r.state(t)
	require.Equal(t, 3, st.CurrentStep)
	require.True(t, st.CanUndo)

	r.send(t, libraries.WebSocketMessageTypeLoadDrawing, map[string]string{"id": uuid.NewString()})
	require.Equal(t, libraries.WebSocketMessageTypeError, r.next(t).Type)
	require.Equal(t, 3, r.state(t).CurrentStep)
}

func TestCanvasMessageWithoutSession(t *testing.T) {
	r := newCanvasRig(t)
	r.send(t, libraries.WebSocketMessageTypeUndo, nil)
	e := r.next(t)
	require.Equal(t, libraries.WebSocketMessageTypeError, e.Type)
	require.Contains(t, string(e.Data), ErrCanvasNotOpen.Error())
}
