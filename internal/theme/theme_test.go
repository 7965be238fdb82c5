package theme

import (
	"context"
	"image/color"
	"testing"

	"drawing-prompter/internal/localstore"

	"github.com/stretchr/testify/require"
)

func newRegistry(t *testing.T) *Registry {
	t.Helper()
	store, err := localstore.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewRegistry(store)
}

func TestCatalog(t *testing.T) {
	themes := Catalog()
	require.Len(t, themes, 9)
	require.Equal(t, Original, themes[0].ID)

	dark, err := Lookup("theme-dark")
	require.NoError(t, err)
	require.Equal(t, color.RGBA{R: 0x1f, G: 0x29, B: 0x37, A: 0xff}, dark.BackgroundColor())

	orig, _ := Lookup(Original)
	require.Equal(t, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, orig.BackgroundColor())

	_, err = Lookup("theme-neon")
	require.ErrorIs(t, err, ErrUnknownTheme)
}

func TestDefaultsToOriginal(t *testing.T) {
	ctx := context.Background()
	r := newRegistry(t)

	cur, err := r.Current(ctx)
	require.NoError(t, err)
	require.Equal(t, Original, cur.ID)

	views, err := r.List(ctx)
	require.NoError(t, err)
	for _, v := range views {
		require.Equal(t, !v.Free, v.Locked, v.ID)
		require.Equal(t, v.ID == Original, v.Active, v.ID)
	}
}

func TestApplyLockedThemeFails(t *testing.T) {
	ctx := context.Background()
	r := newRegistry(t)

	_, err := r.Apply(ctx, "theme-ocean")
	require.ErrorIs(t, err, ErrThemeLocked)

	_, err = r.Apply(ctx, "theme-dark")
	require.NoError(t, err)
	cur, _ := r.Current(ctx)
	require.Equal(t, "theme-dark", cur.ID)
}

func TestUsableDoesNotSelect(t *testing.T) {
	ctx := context.Background()
	r := newRegistry(t)

	_, err := r.Usable(ctx, "theme-matrix")
	require.ErrorIs(t, err, ErrThemeLocked)
	_, err = r.Usable(ctx, "theme-nope")
	require.ErrorIs(t, err, ErrUnknownTheme)

	got, err := r.Usable(ctx, "theme-dark")
	require.NoError(t, err)
	require.Equal(t, "theme-dark", got.ID)

	_, err = r.Unlock(ctx, "theme-matrix", "2.0")
	require.NoError(t, err)
	_, err = r.Apply(ctx, Original)
	require.NoError(t, err)

	got, err = r.Usable(ctx, "theme-matrix")
	require.NoError(t, err)
	require.Equal(t, "theme-matrix", got.ID)
	cur, err := r.Current(ctx)
	require.NoError(t, err)
	require.Equal(t, Original, cur.ID)
}

func TestUnlock(t *testing.T) {
	ctx := context.Background()
	r := newRegistry(t)

	_, err := r.Unlock(ctx, "theme-retro", "1981")
	require.ErrorIs(t, err, ErrWrongPassword)
	cur, _ := r.Current(ctx)
	require.Equal(t, Original, cur.ID)

	th, err := r.Unlock(ctx, "theme-retro", "1980")
	require.NoError(t, err)
	require.Equal(t, "#1e1b4b", th.Background)
	cur, _ = r.Current(ctx)
	require.Equal(t, "theme-retro", cur.ID)

	// Unlocked themes stay applicable without the password.
	_, err = r.Apply(ctx, Original)
	require.NoError(t, err)
	_, err = r.Apply(ctx, "theme-retro")
	require.NoError(t, err)

	// Unlocking twice does not duplicate the entry.
	_, err = r.Unlock(ctx, "theme-retro", "1980")
	require.NoError(t, err)
	views, err := r.List(ctx)
	require.NoError(t, err)
	locked := 0
	for _, v := range views {
		if v.Locked {
			locked++
		}
	}
	require.Equal(t, 6, locked)
}

func TestResetLocksRevertsLockedTheme(t *testing.T) {
	ctx := context.Background()
	r := newRegistry(t)

	_, err := r.Unlock(ctx, "theme-candy", "dulce")
	require.NoError(t, err)

	reverted, err := r.ResetLocks(ctx)
	require.NoError(t, err)
	require.True(t, reverted)
	cur, _ := r.Current(ctx)
	require.Equal(t, Original, cur.ID)

	_, err = r.Apply(ctx, "theme-candy")
	require.ErrorIs(t, err, ErrThemeLocked)
}

func TestResetLocksKeepsFreeTheme(t *testing.T) {
	ctx := context.Background()
	r := newRegistry(t)

	_, err := r.Apply(ctx, "theme-dark")
	require.NoError(t, err)
	reverted, err := r.ResetLocks(ctx)
	require.NoError(t, err)
	require.False(t, reverted)
	cur, _ := r.Current(ctx)
	require.Equal(t, "theme-dark", cur.ID)
}
