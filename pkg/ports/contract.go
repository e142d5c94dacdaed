package ports

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/aretw0/launchtree/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunResultCacheContract runs a suite of tests to verify that a ResultCache implementation
// adheres to the defined interface contract.
func RunResultCacheContract(t *testing.T, cache ResultCache) {
	ctx := context.Background()
	key := "contract-test-" + time.Now().Format("20060102150405")
	modTime := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	newEntry := func(doc string) *domain.CacheEntry {
		return &domain.CacheEntry{
			Document: json.RawMessage(doc),
			Sources: []domain.SourceStamp{
				{Path: "/opt/ros/share/demo/launch/demo.launch.xml", Size: 512, ModTime: modTime},
			},
			Environment: []domain.EnvLookup{
				{Name: "ROBOT", Value: "alpha", Set: true},
				{Name: "UNSET"},
			},
			Diagnostics: []domain.Diagnostic{
				{Family: "IncludeLaunchDescription", Depth: 2, Message: "fragment not found"},
			},
			CreatedAt: modTime,
		}
	}

	t.Run("Put and Get", func(t *testing.T) {
		entry := newEntry(`{"type":"IncludeLaunchDescription","children":[]}`)
		require.NoError(t, cache.Put(ctx, key, entry), "Put should not return error")

		loaded, err := cache.Get(ctx, key)
		require.NoError(t, err, "Get should not return error")
		assert.JSONEq(t, string(entry.Document), string(loaded.Document))
		require.Len(t, loaded.Sources, 1)
		assert.Equal(t, entry.Sources[0].Path, loaded.Sources[0].Path)
		assert.Equal(t, entry.Sources[0].Size, loaded.Sources[0].Size)
		assert.True(t, entry.Sources[0].ModTime.Equal(loaded.Sources[0].ModTime))
		assert.Equal(t, entry.Environment, loaded.Environment)
		assert.Equal(t, entry.Diagnostics, loaded.Diagnostics)
	})

	t.Run("Put Replaces", func(t *testing.T) {
		require.NoError(t, cache.Put(ctx, key, newEntry(`{"type":"Node","children":[]}`)))

		loaded, err := cache.Get(ctx, key)
		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"Node","children":[]}`, string(loaded.Document))
	})

	t.Run("Get Missing", func(t *testing.T) {
		_, err := cache.Get(ctx, "missing-"+key)
		assert.ErrorIs(t, err, domain.ErrCacheMiss)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, cache.Put(ctx, key, newEntry(`{}`)))

		require.NoError(t, cache.Delete(ctx, key), "Delete should not return error")

		_, err := cache.Get(ctx, key)
		assert.ErrorIs(t, err, domain.ErrCacheMiss, "Get after Delete should return ErrCacheMiss")

		assert.NoError(t, cache.Delete(ctx, key), "Deleting a missing key should not fail")
	})
}
