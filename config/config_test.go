package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, 600, cfg.Window.Height)
	assert.Equal(t, 500, cfg.Particles.Count)
	assert.Equal(t, float32(0.08), cfg.Particles.SpringStrength)
	assert.Equal(t, float32(0.85), cfg.Particles.Damping)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swarm.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
watch_path = "layout.json"

[window]
width = 1280
height = 720

[particles]
count = 2000
spring_strength = 0.05

[overlay]
font_path = "/usr/share/fonts/some.ttf"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1280, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height)
	assert.Equal(t, 2000, cfg.Particles.Count)
	assert.Equal(t, float32(0.05), cfg.Particles.SpringStrength)
	assert.Equal(t, float32(0.85), cfg.Particles.Damping, "unset fields keep defaults")
	assert.Equal(t, "layout.json", cfg.WatchPath)
	assert.Equal(t, "/usr/share/fonts/some.ttf", cfg.Overlay.FontPath)
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte(`window = [`), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsNonPositiveCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zero.toml")
	require.NoError(t, os.WriteFile(path, []byte("[particles]\ncount = 0\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}
