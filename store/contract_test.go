/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seednode/satyasatyam/game"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func sampleRoom(id string) *game.Room {
	r := game.NewRoom(id, game.Settings{RequireNames: true}, "host", game.Deal(nil), epoch)
	r.Players[game.Slot1] = &game.Player{Name: "Asha", UserID: "host"}
	r.Identities["host"] = game.Slot1
	r.Scores["Asha"] = 0
	return r
}

// testContract exercises the behaviour every game.Store must share.
func testContract(t *testing.T, st game.Store) {
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		r := sampleRoom("CREATE1")
		require.NoError(t, st.Create(ctx, r))
		assert.Equal(t, int64(1), r.Version)

		err := st.Create(ctx, sampleRoom("CREATE1"))
		assert.ErrorIs(t, err, game.ErrRoomExists)
	})

	t.Run("Load", func(t *testing.T) {
		r := sampleRoom("LOAD1")
		require.NoError(t, st.Create(ctx, r))

		got, err := st.Load(ctx, "LOAD1")
		require.NoError(t, err)
		if diff := cmp.Diff(r, got); diff != "" {
			t.Errorf("loaded room mismatch (-want +got):\n%s", diff)
		}

		_, err = st.Load(ctx, "MISSING")
		assert.ErrorIs(t, err, game.ErrRoomNotFound)
	})

	t.Run("LoadReturnsCopy", func(t *testing.T) {
		require.NoError(t, st.Create(ctx, sampleRoom("COPY1")))

		got, err := st.Load(ctx, "COPY1")
		require.NoError(t, err)
		got.Players[game.Slot1].Name = "changed"

		again, err := st.Load(ctx, "COPY1")
		require.NoError(t, err)
		assert.Equal(t, "Asha", again.Players[game.Slot1].Name)
	})

	t.Run("SaveAdvancesVersion", func(t *testing.T) {
		require.NoError(t, st.Create(ctx, sampleRoom("SAVE1")))

		r, err := st.Load(ctx, "SAVE1")
		require.NoError(t, err)
		r.Phase = game.PhaseEnded
		r.UpdatedAt = epoch.Add(time.Minute)
		require.NoError(t, st.Save(ctx, r))
		assert.Equal(t, int64(2), r.Version)

		got, err := st.Load(ctx, "SAVE1")
		require.NoError(t, err)
		assert.Equal(t, int64(2), got.Version)
		assert.Equal(t, game.PhaseEnded, got.Phase)
	})

	t.Run("SaveRejectsStaleVersion", func(t *testing.T) {
		require.NoError(t, st.Create(ctx, sampleRoom("STALE1")))

		first, err := st.Load(ctx, "STALE1")
		require.NoError(t, err)
		second, err := st.Load(ctx, "STALE1")
		require.NoError(t, err)

		first.Scores["Asha"] = 12
		require.NoError(t, st.Save(ctx, first))

		second.Phase = game.PhaseEnded
		assert.ErrorIs(t, st.Save(ctx, second), game.ErrVersionConflict)

		got, err := st.Load(ctx, "STALE1")
		require.NoError(t, err)
		assert.Equal(t, 12, got.Scores["Asha"])
		assert.Equal(t, game.PhaseJoining, got.Phase)
	})

	t.Run("SaveMissing", func(t *testing.T) {
		r := sampleRoom("GHOST1")
		r.Version = 1
		assert.ErrorIs(t, st.Save(ctx, r), game.ErrRoomNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, st.Create(ctx, sampleRoom("DELETE1")))

		require.NoError(t, st.Delete(ctx, "DELETE1"))
		_, err := st.Load(ctx, "DELETE1")
		assert.ErrorIs(t, err, game.ErrRoomNotFound)

		assert.ErrorIs(t, st.Delete(ctx, "DELETE1"), game.ErrRoomNotFound)
	})

	t.Run("Reap", func(t *testing.T) {
		reaper, ok := st.(game.Reaper)
		require.True(t, ok)

		old := sampleRoom("OLD1")
		old.UpdatedAt = epoch.Add(-48 * time.Hour)
		require.NoError(t, st.Create(ctx, old))

		fresh := sampleRoom("FRESH1")
		fresh.UpdatedAt = time.Now().Add(time.Hour)
		require.NoError(t, st.Create(ctx, fresh))

		n, err := reaper.Reap(ctx, epoch.Add(-24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		_, err = st.Load(ctx, "OLD1")
		assert.ErrorIs(t, err, game.ErrRoomNotFound)
		_, err = st.Load(ctx, "FRESH1")
		assert.NoError(t, err)
	})
}
