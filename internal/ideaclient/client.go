// Package ideaclient is the caller behind the "get ideas" control: it
// validates the preferences, guards against concurrent requests, calls the
// suggestions endpoint and turns every outcome into a renderable view.
package ideaclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"drawing-prompter/internal/models"
)

var (
	ErrRequestInFlight = errors.New("a suggestions request is already in flight")
	ErrNoSelection     = errors.New("no color or material selected")
)

const (
	LabelIdle = "✨ Obtener 3 ideas"
	LabelBusy = "⏳ Buscando..."

	MsgNoSelection   = "Por favor selecciona al menos 1 color o material"
	MsgNoSuggestions = "No se encontraron sugerencias. Intenta cambiar tus preferencias."
)

// ButtonState is the state of the request control.
type ButtonState struct {
	Enabled bool   `json:"enabled"`
	Label   string `json:"label"`
}

var (
	idleButton = ButtonState{Enabled: true, Label: LabelIdle}
	busyButton = ButtonState{Enabled: false, Label: LabelBusy}
)

type Client struct {
	endpoint string
	http     *http.Client
	renderer *Renderer

	mu       sync.Mutex
	busy     bool
	onButton func(ButtonState)
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithButtonListener is called whenever the control changes state.
func WithButtonListener(fn func(ButtonState)) Option {
	return func(c *Client) { c.onButton = fn }
}

// New returns a client for the suggestions endpoint, e.g.
// "http://localhost:3000/api/suggestions".
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 30 * time.Second},
		renderer: NewRenderer(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Renderer() *Renderer { return c.renderer }

func (c *Client) Button() ButtonState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return busyButton
	}
	return idleButton
}

// Request asks for suggestions. It fails fast with ErrRequestInFlight while
// another request is outstanding and with ErrNoSelection when neither a
// color nor a material was chosen; neither case reaches the endpoint.
// Transport and status failures are not returned as errors: they produce an
// error view, and the control is always back to idle when Request returns.
func (c *Client) Request(ctx context.Context, prefs models.Preferences) (View, error) {
	if !c.acquire() {
		return View{}, ErrRequestInFlight
	}
	defer c.release()

	if !prefs.HasSelection() {
		return View{Kind: ViewValidation, Message: MsgNoSelection}, ErrNoSelection
	}

	suggestions, err := c.fetch(ctx, prefs)
	if err != nil {
		return c.renderer.Error(err), nil
	}
	return c.renderer.Suggestions(suggestions), nil
}

func (c *Client) acquire() bool {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return false
	}
	c.busy = true
	fn := c.onButton
	c.mu.Unlock()
	if fn != nil {
		fn(busyButton)
	}
	return true
}

func (c *Client) release() {
	c.mu.Lock()
	c.busy = false
	fn := c.onButton
	c.mu.Unlock()
	if fn != nil {
		fn(idleButton)
	}
}

func (c *Client) fetch(ctx context.Context, prefs models.Preferences) ([]models.Suggestion, error) {
	body, err := json.Marshal(models.SuggestionRequest{Answers: prefs})
	if err != nil {
		return nil, fmt.Errorf("encode preferences: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("Error HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	var out models.SuggestionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode suggestions: %w", err)
	}
	return out.Suggestions, nil
}
