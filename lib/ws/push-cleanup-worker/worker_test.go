package pushcleanupworker

import (
	"bpm-backend/lib/bpm-store/memstore"
	"bpm-backend/lib/utils/clock"
	dbmodels "bpm-backend/models/db"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHandle(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	clock.NowFunc = func() time.Time { return now }
	defer func() { clock.NowFunc = time.Now }()

	store := memstore.New().Stores().PushData
	old := dbmodels.PushData{UserID: "u1", Title: "old"}
	old.CreatedAt = now.Add(-15 * 24 * time.Hour)
	require.NoError(t, store.Create(old))
	fresh := dbmodels.PushData{UserID: "u1", Title: "fresh"}
	fresh.CreatedAt = now.Add(-time.Hour)
	require.NoError(t, store.Create(fresh))

	worker := newImpl(store, 14*24*time.Hour)

	t.Run("cancelled context does nothing", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		worker.handle(ctx)
		list, err := store.List("u1")
		require.NoError(t, err)
		require.Len(t, list, 2)
	})
	t.Run("removes expired only", func(t *testing.T) {
		worker.handle(context.Background())
		list, err := store.List("u1")
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.Equal(t, "fresh", list[0].Title)
	})
}
