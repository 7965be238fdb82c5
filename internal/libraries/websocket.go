package libraries

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type WebSocketMessageType string

const (
	WebSocketMessageTypePing  WebSocketMessageType = "ping"
	WebSocketMessageTypePong  WebSocketMessageType = "pong"
	WebSocketMessageTypeError WebSocketMessageType = "error"

	// client -> server
	WebSocketMessageTypePointerDown  WebSocketMessageType = "pointer_down"
	WebSocketMessageTypePointerMove  WebSocketMessageType = "pointer_move"
	WebSocketMessageTypePointerUp    WebSocketMessageType = "pointer_up"
	WebSocketMessageTypePointerLeave WebSocketMessageType = "pointer_leave"
	WebSocketMessageTypeTool         WebSocketMessageType = "tool"
	WebSocketMessageTypeColor        WebSocketMessageType = "color"
	WebSocketMessageTypeWidth        WebSocketMessageType = "width"
	WebSocketMessageTypeTheme        WebSocketMessageType = "theme"
	WebSocketMessageTypeUndo         WebSocketMessageType = "undo"
	WebSocketMessageTypeRedo         WebSocketMessageType = "redo"
	WebSocketMessageTypeClear        WebSocketMessageType = "clear"
	WebSocketMessageTypeResize       WebSocketMessageType = "resize"
	WebSocketMessageTypePreset       WebSocketMessageType = "preset"
	WebSocketMessageTypeFit          WebSocketMessageType = "fit"
	WebSocketMessageTypeLoadDrawing  WebSocketMessageType = "load_drawing"
	WebSocketMessageTypeExport       WebSocketMessageType = "export"
	WebSocketMessageTypeSaveDrawing  WebSocketMessageType = "save_drawing"

	// server -> client
	WebSocketMessageTypeState          WebSocketMessageType = "state"
	WebSocketMessageTypeDrawingSaved   WebSocketMessageType = "drawing_saved"
	WebSocketMessageTypeGalleryUpdated WebSocketMessageType = "gallery_updated"
)

type Client struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte

	mu     sync.Mutex
	closed bool
}

// enqueue drops the message if the client is gone or its buffer is full.
func (c *Client) enqueue(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

// Hub tracks connected canvas clients. Its registry is owned by Run.
type Hub struct {
	Clients    map[string]*Client
	Register   chan *Client
	Unregister chan *Client
	Broadcast  chan []byte
	logger     zerolog.Logger
}

type WebSocketMessage struct {
	Type WebSocketMessageType `json:"type"`
	Data interface{}          `json:"data,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type PointerPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type ToolPayload struct {
	Tool string `json:"tool"`
}

type ColorPayload struct {
	Color string `json:"color"`
}

type WidthPayload struct {
	Width float64 `json:"width"`
}

type ThemePayload struct {
	ID string `json:"id"`
}

// ResizePayload carries the dimensions exactly as typed by the user.
type ResizePayload struct {
	Width  string `json:"width"`
	Height string `json:"height"`
}

type PresetPayload struct {
	Name string `json:"name"`
}

type FitPayload struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type DrawingPayload struct {
	ID string `json:"id"`
}

type SaveDrawingPayload struct {
	Prompt json.RawMessage `json:"prompt,omitempty"`
}

type ExportPayload struct {
	DataURL  string `json:"data_url"`
	Filename string `json:"filename"`
}

type GalleryUpdatedPayload struct {
	Action string `json:"action"`
	ID     string `json:"id"`
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		Clients:    make(map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Broadcast:  make(chan []byte),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.Clients[client.ID] = client
			h.logger.Debug().Str("client", client.ID).Int("clients", len(h.Clients)).Msg("client registered")
		case client := <-h.Unregister:
			if _, exists := h.Clients[client.ID]; exists {
				delete(h.Clients, client.ID)
				client.close()
				h.logger.Debug().Str("client", client.ID).Int("clients", len(h.Clients)).Msg("client unregistered")
			}
		case message := <-h.Broadcast:
			for _, client := range h.Clients {
				client.enqueue(message)
			}
		}
	}
}

func (h *Hub) BroadcastMessage(message []byte) {
	h.Broadcast <- message
}

func (h *Hub) SendMessage(client *Client, message []byte) {
	if !client.enqueue(message) {
		h.logger.Warn().Str("client", client.ID).Msg("dropped message for slow or closed client")
	}
}

// SendEvent marshals and sends one typed message to a client.
func (h *Hub) SendEvent(client *Client, eventType WebSocketMessageType, data interface{}) {
	b, err := json.Marshal(WebSocketMessage{Type: eventType, Data: data})
	if err != nil {
		h.logger.Error().Err(err).Str("type", string(eventType)).Msg("failed to marshal message")
		return
	}
	h.SendMessage(client, b)
}

// SendErrorMessage sends a standardized error message to a client
func (h *Hub) SendErrorMessage(client *Client, errorMsg string) {
	h.SendEvent(client, WebSocketMessageTypeError, &ErrorPayload{Message: errorMsg})
}

// BroadcastGalleryUpdated tells every connected client the gallery changed.
func (h *Hub) BroadcastGalleryUpdated(action, id string) {
	b, err := json.Marshal(WebSocketMessage{
		Type: WebSocketMessageTypeGalleryUpdated,
		Data: &GalleryUpdatedPayload{Action: action, ID: id},
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to marshal gallery update")
		return
	}
	h.BroadcastMessage(b)
}

func decodePayload[T any](raw json.RawMessage) (*T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// ParseWebSocketMessage parses incoming websocket message and returns the message structure
func ParseWebSocketMessage(msg []byte) (*WebSocketMessage, error) {
	var rawMessage struct {
		Type WebSocketMessageType `json:"type"`
		Data json.RawMessage      `json:"data,omitempty"`
	}
	if err := json.Unmarshal(msg, &rawMessage); err != nil {
		return nil, err
	}
	if rawMessage.Type == "" {
		return nil, fmt.Errorf("message type is required")
	}

	message := &WebSocketMessage{Type: rawMessage.Type}
	if len(rawMessage.Data) == 0 || string(rawMessage.Data) == "null" {
		return message, nil
	}

	var err error
	switch rawMessage.Type {
	case WebSocketMessageTypePointerDown, WebSocketMessageTypePointerMove:
		message.Data, err = decodePayload[PointerPayload](rawMessage.Data)
	case WebSocketMessageTypeTool:
		message.Data, err = decodePayload[ToolPayload](rawMessage.Data)
	case WebSocketMessageTypeColor:
		message.Data, err = decodePayload[ColorPayload](rawMessage.Data)
	case WebSocketMessageTypeWidth:
		message.Data, err = decodePayload[WidthPayload](rawMessage.Data)
	case WebSocketMessageTypeTheme:
		message.Data, err = decodePayload[ThemePayload](rawMessage.Data)
	case WebSocketMessageTypeResize:
		message.Data, err = decodePayload[ResizePayload](rawMessage.Data)
	case WebSocketMessageTypePreset:
		message.Data, err = decodePayload[PresetPayload](rawMessage.Data)
	case WebSocketMessageTypeFit:
		message.Data, err = decodePayload[FitPayload](rawMessage.Data)
	case WebSocketMessageTypeLoadDrawing:
		message.Data, err = decodePayload[DrawingPayload](rawMessage.Data)
	case WebSocketMessageTypeSaveDrawing:
		message.Data, err = decodePayload[SaveDrawingPayload](rawMessage.Data)
	default:
		var data interface{}
		err = json.Unmarshal(rawMessage.Data, &data)
		message.Data = data
	}
	if err != nil {
		return nil, err
	}
	return message, nil
}

// CanvasProcessor owns the per-connection drawing sessions.
type CanvasProcessor interface {
	// OpenCanvas prepares the session of a new connection.
	OpenCanvas(hub *Hub, client *Client, params map[string]string) error
	// ProcessCanvasMessage handles one message. It runs on the connection's
	// read loop, so a session never sees two messages at once.
	ProcessCanvasMessage(hub *Hub, client *Client, message *WebSocketMessage)
	CloseCanvas(client *Client)
}

// CanvasQueryParams are forwarded from the upgrade request to OpenCanvas.
var CanvasQueryParams = []string{"theme", "width", "height", "dpr"}

// UpgradeRequired rejects plain HTTP requests on the websocket route.
func UpgradeRequired(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

func WebSocketHandler(hub *Hub, processor CanvasProcessor) fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		client := &Client{
			ID:   uuid.NewString(),
			Conn: conn,
			Send: make(chan []byte, 256),
		}
		log := hub.logger.With().Str("client", client.ID).Logger()

		hub.Register <- client

		// Write loop. It drains Send until the hub closes it on unregister.
		written := make(chan struct{})
		go func() {
			defer close(written)
			defer conn.Close()
			for msg := range client.Send {
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					log.Debug().Err(err).Msg("write error")
					return
				}
			}
		}()
		defer func() {
			hub.Unregister <- client
			<-written
		}()

		params := make(map[string]string, len(CanvasQueryParams))
		for _, key := range CanvasQueryParams {
			params[key] = conn.Query(key)
		}
		if err := processor.OpenCanvas(hub, client, params); err != nil {
			hub.SendErrorMessage(client, err.Error())
			return
		}
		defer processor.CloseCanvas(client)

		// Read loop
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				log.Debug().Err(err).Msg("read error")
				break
			}

			message, err := ParseWebSocketMessage(msg)
			if err != nil {
				hub.SendErrorMessage(client, "Invalid JSON format")
				continue
			}

			if message.Type == WebSocketMessageTypePing {
				hub.SendEvent(client, WebSocketMessageTypePong, nil)
				continue
			}
			processMessage(hub, processor, client, message, log)
		}
	})
}

// processMessage hands one message to the processor. A panic is reported
// to the client as an error and the connection stays open.
func processMessage(hub *Hub, processor CanvasProcessor, client *Client, message *WebSocketMessage, log zerolog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("type", string(message.Type)).Msg("canvas message failed")
			hub.SendErrorMessage(client, "Internal error")
		}
	}()
	processor.ProcessCanvasMessage(hub, client, message)
}
