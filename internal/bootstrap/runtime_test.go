package bootstrap

import (
	"context"
	"testing"

	"jobcrm/internal/config"
	"jobcrm/internal/models"
	"jobcrm/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedDemo_DevelopmentOnly(t *testing.T) {
	ctx := context.Background()

	db := testutil.NewTestDB(t)
	require.NoError(t, seedDemo(ctx, &config.Config{Env: "production"}, db))
	var n int64
	require.NoError(t, db.Model(&models.Profile{}).Count(&n).Error)
	assert.Zero(t, n)

	require.NoError(t, seedDemo(ctx, &config.Config{Env: "Development"}, db))
	require.NoError(t, db.Model(&models.Profile{}).Count(&n).Error)
	assert.Equal(t, int64(2), n)
}

func TestRuntimeClose_Nil(t *testing.T) {
	var rt *Runtime
	assert.NoError(t, rt.Close(context.Background()))
}
