package worlds

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/holoverse/presence/internal/domain"
)

func openTestCatalog(t *testing.T) *SQLiteRegistry {
	t.Helper()
	r, err := OpenSQLite(filepath.Join(t.TempDir(), "worlds.db"))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestSQLiteRoundTrip(t *testing.T) {
	r := openTestCatalog(t)
	ctx := context.Background()

	world := domain.World{
		ID: "w1", Name: "Neon Plaza", Theme: "cyber", IsPublic: true,
		PriceCents: 0, MaxParticipants: 32, CreatorID: "creator",
		ModeratorIDs: map[domain.UserID]struct{}{"mod-a": {}, "mod-b": {}},
	}
	require.NoError(t, r.Upsert(ctx, world))

	got, err := r.Get(ctx, "w1")
	require.NoError(t, err)
	require.Equal(t, domain.WorldName("Neon Plaza"), got.Name)
	require.Equal(t, uint32(32), got.MaxParticipants)
	require.True(t, got.IsPublic)
	require.True(t, got.Privileged("mod-a"))
	require.True(t, got.Privileged("mod-b"))
	require.False(t, got.Privileged("visitor"))
}

func TestSQLiteUpdateInPlace(t *testing.T) {
	r := openTestCatalog(t)
	ctx := context.Background()

	world := domain.World{ID: "w1", Name: "Plaza", IsPublic: true, MaxParticipants: 8, CreatorID: "c"}
	require.NoError(t, r.Upsert(ctx, world))

	world.PriceCents = 500
	world.IsPublic = false
	require.NoError(t, r.Upsert(ctx, world))

	got, err := r.Get(ctx, "w1")
	require.NoError(t, err)
	require.Equal(t, uint32(500), got.PriceCents)
	require.False(t, got.IsPublic)
	require.True(t, got.Gated())
}

func TestSQLiteNotFound(t *testing.T) {
	r := openTestCatalog(t)
	_, err := r.Get(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteRejectsInvalidWorld(t *testing.T) {
	r := openTestCatalog(t)
	err := r.Upsert(context.Background(), domain.World{ID: "w1", Name: "X", MaxParticipants: 0, CreatorID: "c"})
	require.ErrorIs(t, err, domain.ErrZeroCapacity)
}
