package bootstrap

import (
	"context"
	"testing"

	"photogram/internal/config"
	"photogram/internal/models"
	"photogram/internal/seed"
	"photogram/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedIfEmpty(t *testing.T) {
	ctx := context.Background()
	opts := seed.Options{NumUsers: 3, SkipBcrypt: true}

	t.Run("skips outside development", func(t *testing.T) {
		db := testutil.NewTestDB(t)
		require.NoError(t, SeedIfEmpty(ctx, &config.Config{Env: "production"}, db, opts))
		var n int64
		require.NoError(t, db.Model(&models.User{}).Count(&n).Error)
		assert.Zero(t, n)
	})

	t.Run("seeds an empty development database once", func(t *testing.T) {
		db := testutil.NewTestDB(t)
		cfg := &config.Config{Env: "development"}
		require.NoError(t, SeedIfEmpty(ctx, cfg, db, opts))
		require.NoError(t, SeedIfEmpty(ctx, cfg, db, opts))

		var n int64
		require.NoError(t, db.Model(&models.User{}).Count(&n).Error)
		assert.EqualValues(t, 3, n)
	})
}
