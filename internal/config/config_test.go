package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("VOXEL_CONFIG", "")
	t.Setenv("VOXEL_SEED", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.World.ViewRadius)
	assert.Equal(t, 4, cfg.World.MaxSchedulePerCall)
	assert.Equal(t, 10, cfg.World.MaxUploadsPerFrame)
	assert.Equal(t, 2*time.Second, cfg.World.ShutdownTimeout)
	assert.InDelta(t, 0.05, cfg.Terrain.Frequency, 1e-9)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	t.Setenv("VOXEL_SEED", "")
	dir := t.TempDir()
	path := filepath.Join(dir, "sandbox.yaml")
	content := `
world:
  seed: 42
  view_radius: 5
  shutdown_timeout: 500ms
terrain:
  max_height: 30
  trees: false
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(42), cfg.World.Seed)
	assert.Equal(t, 5, cfg.World.ViewRadius)
	assert.Equal(t, 500*time.Millisecond, cfg.World.ShutdownTimeout)
	assert.Equal(t, 30, cfg.Terrain.MaxHeight)
	assert.False(t, cfg.Terrain.Trees)
	assert.Equal(t, 4, cfg.World.MaxSchedulePerCall, "незаданные поля остаются по умолчанию")
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadSeedFromEnv(t *testing.T) {
	t.Setenv("VOXEL_CONFIG", "")
	t.Setenv("VOXEL_SEED", "777")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, int64(777), cfg.World.Seed)

	t.Setenv("VOXEL_SEED", "not-a-number")
	_, err = Load("")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.World.ViewRadius = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = Default()
	cfg.Terrain.MinHeight = 40
	cfg.Terrain.MaxHeight = 30
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = Default()
	cfg.World.MaxUploadsPerFrame = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = Default()
	cfg.Terrain.MaxHeight = 125
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig, "дереву не хватит места по высоте")
}

func TestDebugPortFallback(t *testing.T) {
	d := DebugConfig{}
	t.Setenv("VOXEL_DEBUG_PORT", "")
	assert.Equal(t, 2112, d.GetDebugPort())

	t.Setenv("VOXEL_DEBUG_PORT", "9100")
	assert.Equal(t, 9100, d.GetDebugPort())

	d.Port = 8000
	assert.Equal(t, 8000, d.GetDebugPort())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
