// Package theme holds the theme catalog and the per-user unlock and
// selection state, persisted in the local store.
package theme

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"slices"
	"sync"

	"github.com/gogpu/gg"
)

const (
	// Original is the default theme.
	Original = "original"

	currentKey  = "currentTheme"
	unlockedKey = "unlockedThemes"
)

var (
	ErrUnknownTheme  = errors.New("unknown theme")
	ErrThemeLocked   = errors.New("theme is locked")
	ErrWrongPassword = errors.New("wrong password")
)

type Theme struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Color      string `json:"color"`
	Background string `json:"background"`
	Free       bool   `json:"free"`
	Password   string `json:"-"`
}

// BackgroundColor is the canvas background, which is also what the eraser
// paints with.
func (t Theme) BackgroundColor() color.RGBA {
	return color.RGBAModel.Convert(gg.Hex(t.Background).Color()).(color.RGBA)
}

var catalog = []Theme{
	{ID: Original, Name: "Original", Color: "#6366f1", Background: "#FFFFFF", Free: true},
	{ID: "theme-dark", Name: "Modo Noche", Color: "#1f2937", Background: "#1f2937", Free: true},
	{ID: "theme-ocean", Name: "Ocean", Color: "#0ea5e9", Background: "#082f49", Password: "agua"},
	{ID: "theme-retro", Name: "Retro 80s", Color: "#f472b6", Background: "#1e1b4b", Password: "1980"},
	{ID: "theme-forest", Name: "Bosque", Color: "#22c55e", Background: "#064e3b", Password: "arbol"},
	{ID: "theme-royal", Name: "Royal", Color: "#9333ea", Background: "#2e1065", Password: "reina"},
	{ID: "theme-matrix", Name: "Matrix", Color: "#00ff00", Background: "#000000", Password: "2.0"},
	{ID: "theme-hacker", Name: "Hacker", Color: "#00cc00", Background: "#000000", Password: "root"},
	{ID: "theme-candy", Name: "Candy", Color: "#ec4899", Background: "#fff1f2", Password: "dulce"},
}

// Catalog returns every theme in display order.
func Catalog() []Theme {
	return slices.Clone(catalog)
}

func Lookup(id string) (Theme, error) {
	for _, t := range catalog {
		if t.ID == id {
			return t, nil
		}
	}
	return Theme{}, fmt.Errorf("%w: %q", ErrUnknownTheme, id)
}

// KV is the slice of the local store the registry needs.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	GetJSON(ctx context.Context, key string, v any) (bool, error)
	SetJSON(ctx context.Context, key string, v any) error
}

// View is a theme as shown in the picker.
type View struct {
	Theme
	Locked bool `json:"locked"`
	Active bool `json:"active"`
}

type Registry struct {
	mu    sync.Mutex
	store KV
}

func NewRegistry(store KV) *Registry {
	return &Registry{store: store}
}

func (r *Registry) List(ctx context.Context) ([]View, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	unlocked, err := r.unlocked(ctx)
	if err != nil {
		return nil, err
	}
	current, err := r.currentID(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]View, 0, len(catalog))
	for _, t := range catalog {
		out = append(out, View{
			Theme:  t,
			Locked: !t.Free && !slices.Contains(unlocked, t.ID),
			Active: t.ID == current,
		})
	}
	return out, nil
}

// Current returns the selected theme, or Original when none is saved or the
// saved one no longer exists.
func (r *Registry) Current(ctx context.Context) (Theme, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, err := r.currentID(ctx)
	if err != nil {
		return Theme{}, err
	}
	t, err := Lookup(id)
	if err != nil {
		return Lookup(Original)
	}
	return t, nil
}

// Usable returns the theme if it is free or already unlocked, without
// selecting it.
func (r *Registry) Usable(ctx context.Context, id string) (Theme, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.usable(ctx, id)
}

// Apply selects a free or already unlocked theme.
func (r *Registry) Apply(ctx context.Context, id string) (Theme, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, err := r.usable(ctx, id)
	if err != nil {
		return Theme{}, err
	}
	if err := r.store.Set(ctx, currentKey, t.ID); err != nil {
		return Theme{}, err
	}
	return t, nil
}

// Unlock checks the password, remembers the unlock and applies the theme.
func (r *Registry) Unlock(ctx context.Context, id, password string) (Theme, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, err := Lookup(id)
	if err != nil {
		return Theme{}, err
	}
	if !t.Free {
		if password != t.Password {
			return Theme{}, ErrWrongPassword
		}
		unlocked, err := r.unlocked(ctx)
		if err != nil {
			return Theme{}, err
		}
		if !slices.Contains(unlocked, t.ID) {
			if err := r.store.SetJSON(ctx, unlockedKey, append(unlocked, t.ID)); err != nil {
				return Theme{}, err
			}
		}
	}
	if err := r.store.Set(ctx, currentKey, t.ID); err != nil {
		return Theme{}, err
	}
	return t, nil
}

// ResetLocks locks every theme again. If the current theme is not free the
// selection reverts to Original. It reports whether that happened.
func (r *Registry) ResetLocks(ctx context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.Remove(ctx, unlockedKey); err != nil {
		return false, err
	}
	id, err := r.currentID(ctx)
	if err != nil {
		return false, err
	}
	if t, err := Lookup(id); err == nil && !t.Free {
		return true, r.store.Set(ctx, currentKey, Original)
	}
	return false, nil
}

func (r *Registry) usable(ctx context.Context, id string) (Theme, error) {
	t, err := Lookup(id)
	if err != nil {
		return Theme{}, err
	}
	if t.Free {
		return t, nil
	}
	unlocked, err := r.unlocked(ctx)
	if err != nil {
		return Theme{}, err
	}
	if !slices.Contains(unlocked, t.ID) {
		return Theme{}, fmt.Errorf("%w: %s", ErrThemeLocked, t.ID)
	}
	return t, nil
}

func (r *Registry) unlocked(ctx context.Context) ([]string, error) {
	var ids []string
	if _, err := r.store.GetJSON(ctx, unlockedKey, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *Registry) currentID(ctx context.Context) (string, error) {
	id, ok, err := r.store.Get(ctx, currentKey)
	if err != nil {
		return "", err
	}
	if !ok || id == "" {
		return Original, nil
	}
	return id, nil
}
