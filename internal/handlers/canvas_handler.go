package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"drawing-prompter/internal/canvas"
	"drawing-prompter/internal/libraries"
	"drawing-prompter/internal/models"
	"drawing-prompter/internal/repo"
	"drawing-prompter/internal/theme"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const storeTimeout = 10 * time.Second

var (
	ErrCanvasNotOpen  = errors.New("canvas session not open")
	ErrMissingPayload = errors.New("message data is required")
	ErrUnknownMessage = errors.New("unknown message type")
)

// ThemeSelector is the part of the theme registry a canvas needs.
type ThemeSelector interface {
	Current(ctx context.Context) (theme.Theme, error)
	Usable(ctx context.Context, id string) (theme.Theme, error)
	Apply(ctx context.Context, id string) (theme.Theme, error)
}

// DrawingSavedPayload answers a save_drawing message.
type DrawingSavedPayload struct {
	Drawing models.Drawing `json:"drawing"`
}

// CanvasHandler owns one drawing session per websocket connection. Each
// session is only touched from its connection's read loop; the mutex guards
// the map, not the sessions.
type CanvasHandler struct {
	mu       sync.Mutex
	sessions map[string]*canvas.Session

	themes     ThemeSelector
	gallery    repo.GalleryRepoInterface
	maxHistory int
	newSurface func(w, h int) canvas.Painter
	now        func() time.Time
	logger     zerolog.Logger
}

func NewCanvasHandler(themes ThemeSelector, gallery repo.GalleryRepoInterface, maxHistory int, logger zerolog.Logger) *CanvasHandler {
	return &CanvasHandler{
		sessions:   make(map[string]*canvas.Session),
		themes:     themes,
		gallery:    gallery,
		maxHistory: maxHistory,
		now:        time.Now,
		logger:     logger,
	}
}

// OpenSessions reports how many canvases are live.
func (h *CanvasHandler) OpenSessions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

func (h *CanvasHandler) session(id string) *canvas.Session {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sessions[id]
}

func (h *CanvasHandler) OpenCanvas(hub *libraries.Hub, client *libraries.Client, params map[string]string) error {
	size := canvas.OriginalSize
	if params["width"] != "" || params["height"] != "" {
		parsed, err := canvas.ParseSize(params["width"], params["height"])
		if err != nil {
			return err
		}
		size = parsed
	}

	dpr := 1.0
	if raw := params["dpr"]; raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("invalid device pixel ratio %q", raw)
		}
		if err := canvas.ValidateDevicePixelRatio(v); err != nil {
			return err
		}
		dpr = v
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	var (
		t   theme.Theme
		err error
	)
	if id := params["theme"]; id != "" {
		t, err = h.themes.Usable(ctx, id)
	} else {
		t, err = h.themes.Current(ctx)
	}
	if err != nil {
		return err
	}

	s, err := canvas.NewSession(canvas.Options{
		Size:             size,
		DevicePixelRatio: dpr,
		MaxHistory:       h.maxHistory,
		Background:       t.BackgroundColor(),
		NewSurface:       h.newSurface,
	})
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.sessions[client.ID] = s
	h.mu.Unlock()

	h.logger.Debug().Str("client", client.ID).Int("width", size.Width).Int("height", size.Height).Str("theme", t.ID).Msg("canvas opened")
	hub.SendEvent(client, libraries.WebSocketMessageTypeState, s.State())
	return nil
}

func (h *CanvasHandler) CloseCanvas(client *libraries.Client) {
	h.mu.Lock()
	delete(h.sessions, client.ID)
	h.mu.Unlock()
	h.logger.Debug().Str("client", client.ID).Msg("canvas closed")
}

func (h *CanvasHandler) ProcessCanvasMessage(hub *libraries.Hub, client *libraries.Client, message *libraries.WebSocketMessage) {
	s := h.session(client.ID)
	if s == nil {
		hub.SendErrorMessage(client, ErrCanvasNotOpen.Error())
		return
	}

	sendState, err := h.apply(hub, client, s, message)
	if err != nil {
		h.logger.Debug().Err(err).Str("client", client.ID).Str("type", string(message.Type)).Msg("canvas message failed")
		hub.SendErrorMessage(client, err.Error())
	}
	// State follows every change, and every failure so the client can resync.
	if sendState || err != nil {
		hub.SendEvent(client, libraries.WebSocketMessageTypeState, s.State())
	}
}

func payload[T any](message *libraries.WebSocketMessage) (*T, error) {
	p, ok := message.Data.(*T)
	if !ok || p == nil {
		return nil, fmt.Errorf("%w for %s", ErrMissingPayload, message.Type)
	}
	return p, nil
}

// apply runs one message against the session and reports whether the
// client should receive the new state.
func (h *CanvasHandler) apply(hub *libraries.Hub, client *libraries.Client, s *canvas.Session, message *libraries.WebSocketMessage) (bool, error) {
	switch message.Type {
	case libraries.WebSocketMessageTypePointerDown:
		p, err := payload[libraries.PointerPayload](message)
		if err != nil {
			return false, err
		}
		s.PointerDown(p.X, p.Y)
		return false, nil

	case libraries.WebSocketMessageTypePointerMove:
		p, err := payload[libraries.PointerPayload](message)
		if err != nil {
			return false, err
		}
		return false, s.PointerMove(p.X, p.Y)

	case libraries.WebSocketMessageTypePointerUp:
		return true, s.PointerUp()

	case libraries.WebSocketMessageTypePointerLeave:
		return true, s.PointerLeave()

	case libraries.WebSocketMessageTypeTool:
		p, err := payload[libraries.ToolPayload](message)
		if err != nil {
			return false, err
		}
		return true, s.SetTool(canvas.Tool(p.Tool))

	case libraries.WebSocketMessageTypeColor:
		p, err := payload[libraries.ColorPayload](message)
		if err != nil {
			return false, err
		}
		return false, s.SetColorHex(p.Color)

	case libraries.WebSocketMessageTypeWidth:
		p, err := payload[libraries.WidthPayload](message)
		if err != nil {
			return false, err
		}
		return false, s.SetBrushWidth(p.Width)

	case libraries.WebSocketMessageTypeTheme:
		p, err := payload[libraries.ThemePayload](message)
		if err != nil {
			return false, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		t, err := h.themes.Apply(ctx, p.ID)
		if err != nil {
			return false, err
		}
		s.SetBackground(t.BackgroundColor())
		return false, nil

	case libraries.WebSocketMessageTypeUndo:
		_, err := s.Undo()
		return true, err

	case libraries.WebSocketMessageTypeRedo:
		_, err := s.Redo()
		return true, err

	case libraries.WebSocketMessageTypeClear:
		return true, s.Clear()

	case libraries.WebSocketMessageTypeResize:
		p, err := payload[libraries.ResizePayload](message)
		if err != nil {
			return false, err
		}
		return true, s.ApplyUserSize(p.Width, p.Height)

	case libraries.WebSocketMessageTypePreset:
		p, err := payload[libraries.PresetPayload](message)
		if err != nil {
			return false, err
		}
		return true, s.ApplyPreset(p.Name)

	case libraries.WebSocketMessageTypeFit:
		p, err := payload[libraries.FitPayload](message)
		if err != nil {
			return false, err
		}
		return true, s.Fit(p.Width, p.Height)

	case libraries.WebSocketMessageTypeLoadDrawing:
		p, err := payload[libraries.DrawingPayload](message)
		if err != nil {
			return false, err
		}
		id, err := uuid.Parse(p.ID)
		if err != nil {
			return false, fmt.Errorf("invalid drawing id %q", p.ID)
		}
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		data, err := h.gallery.GetDrawingImage(ctx, id)
		if err != nil {
			return false, err
		}
		return true, s.LoadImageBytes(data)

	case libraries.WebSocketMessageTypeExport:
		data, err := s.ExportPNG()
		if err != nil {
			return false, err
		}
		hub.SendEvent(client, libraries.WebSocketMessageTypeExport, &libraries.ExportPayload{
			DataURL:  canvas.PNGDataURL(data),
			Filename: canvas.DownloadFilename(h.now()),
		})
		return false, nil

	case libraries.WebSocketMessageTypeSaveDrawing:
		var prompt []byte
		if message.Data != nil {
			p, err := payload[libraries.SaveDrawingPayload](message)
			if err != nil {
				return false, err
			}
			prompt = p.Prompt
		}
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		drawing, err := saveToGallery(ctx, h.gallery, s.Image(), prompt)
		if err != nil {
			return false, err
		}
		hub.SendEvent(client, libraries.WebSocketMessageTypeDrawingSaved, &DrawingSavedPayload{Drawing: drawing})
		hub.BroadcastGalleryUpdated(GalleryActionSaved, drawing.UUID.String())
		return false, nil
	}
	return false, fmt.Errorf("%w: %s", ErrUnknownMessage, message.Type)
}
