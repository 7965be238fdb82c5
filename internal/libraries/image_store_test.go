package libraries

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiskImageStore(t *testing.T) {
	ctx := context.Background()
	s, err := NewDiskImageStore(t.TempDir() + "/images")
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, "a.png", []byte{1, 2, 3}))
	got, err := s.Get(ctx, "a.png")
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, got)

	require.NoError(t, s.Delete(ctx, "a.png"))
	require.NoError(t, s.Delete(ctx, "a.png"), "deleting twice is fine")
	_, err = s.Get(ctx, "a.png")
	require.ErrorIs(t, err, ErrImageNotFound)

	require.Error(t, s.Put(ctx, "../escape.png", nil))
	require.Error(t, s.Put(ctx, "", nil))
}
