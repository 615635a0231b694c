package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboard(t *testing.T) {
	env := newTestEnv(t)
	uploader := env.registerUser(t, "uploader")
	rater := env.registerUser(t, "rater")

	a := env.uploadResource(t, uploader, "a", nil)
	b := env.uploadResource(t, uploader, "b", nil)
	env.uploadResource(t, uploader, "c", nil)

	_, err := env.ratings.Rate(context.Background(), b.ID, rater.ID, 5, "")
	require.NoError(t, err)
	_, err = env.ratings.Rate(context.Background(), a.ID, rater.ID, 2, "")
	require.NoError(t, err)

	_, err = env.resources.Download(context.Background(), a.ID)
	require.NoError(t, err)

	t.Run("top rated returns the whole catalog when smaller than n", func(t *testing.T) {
		entries, err := env.dashboard.TopRated(context.Background(), 5)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, "b", entries[0].Title)
		assert.Equal(t, 5.0, entries[0].Rating)
		assert.Equal(t, "a", entries[1].Title)
	})

	t.Run("most downloaded", func(t *testing.T) {
		entries, err := env.dashboard.MostDownloaded(context.Background(), 0)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, "a", entries[0].Title)
		assert.Equal(t, int64(1), entries[0].Downloads)
	})

	t.Run("custom n truncates", func(t *testing.T) {
		entries, err := env.dashboard.TopRated(context.Background(), 2)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})
}
