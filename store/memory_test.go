/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package store_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seednode/satyasatyam/store"
)

func TestMemory(t *testing.T) {
	testContract(t, store.NewMemory())
}

func TestMemory_ConcurrentSaves(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	require.NoError(t, st.Create(ctx, sampleRoom("RACE1")))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := st.Load(ctx, "RACE1")
			if !assert.NoError(t, err) {
				return
			}
			r.Scores[fmt.Sprintf("p%d", i)] = i
			if st.Save(ctx, r) == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	got, err := st.Load(ctx, "RACE1")
	require.NoError(t, err)

	// Every successful save advanced the version exactly once.
	assert.Equal(t, int64(1+wins), got.Version)
	assert.GreaterOrEqual(t, wins, 1)
	assert.Equal(t, 1, st.Len())
	// Each winner loaded the document the previous winner saved, so no
	// successful write was dropped.
	assert.Len(t, got.Scores, 1+wins)
}
