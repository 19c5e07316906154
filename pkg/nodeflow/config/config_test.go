package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/randalmurphal/nodeflow/pkg/nodeflow/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() config.Config {
	return config.New(map[string]any{
		"name":    "orders",
		"enabled": true,
		"retries": 3,
		"ratio":   2.5,
		"whole":   float64(8),
		"timeout": "1m30s",
		"grace":   2,
		"workflow": map[string]any{
			"limits": map[string]any{"max": 9},
		},
		"flat.key": "exact",
	})
}

func TestAccessors(t *testing.T) {
	cfg := sample()

	assert.Equal(t, "orders", cfg.String("name", "x"))
	assert.Equal(t, "x", cfg.String("retries", "x"), "wrong type")
	assert.Equal(t, "x", cfg.String("nope", "x"))

	assert.True(t, cfg.Bool("enabled", false))
	assert.True(t, cfg.Bool("name", true), "wrong type")

	assert.Equal(t, 3, cfg.Int("retries", 0))
	assert.Equal(t, 8, cfg.Int("whole", 0))
	assert.Equal(t, -1, cfg.Int("ratio", -1), "fractional float")

	assert.Equal(t, 90*time.Second, cfg.Duration("timeout", 0))
	assert.Equal(t, 2*time.Second, cfg.Duration("grace", 0))
	assert.Equal(t, 2500*time.Millisecond, cfg.Duration("ratio", 0))
	assert.Equal(t, time.Minute, cfg.Duration("name", time.Minute), "unparseable")
}

func TestDottedKeys(t *testing.T) {
	cfg := sample()

	assert.Equal(t, 9, cfg.Int("workflow.limits.max", 0))
	assert.Equal(t, 9, cfg.Sub("workflow").Int("limits.max", 0))
	assert.Equal(t, "exact", cfg.String("flat.key", ""))
	assert.True(t, cfg.Has("workflow.limits"))
	assert.False(t, cfg.Has("workflow.limits.min"))
	assert.False(t, cfg.Has("name.inner"), "scalar has no children")
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		format  config.Format
		wantErr bool
	}{
		{"yaml", "workflow:\n  max_iterations: 4\n", config.YAML, false},
		{"json", `{"workflow":{"max_iterations":4}}`, config.JSON, false},
		{"bad yaml", "workflow: [", config.YAML, true},
		{"json array", `[1,2]`, config.JSON, true},
		{"unknown format", "", config.Format("toml"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.Parse([]byte(tt.data), tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 4, cfg.Int("workflow.max_iterations", 0))
		})
	}

	t.Run("empty input", func(t *testing.T) {
		for _, f := range []config.Format{config.YAML, config.JSON} {
			cfg, err := config.Parse(nil, f)
			require.NoError(t, err)
			assert.False(t, cfg.Has("anything"))
		}
	})
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
		return p
	}

	cfg, err := config.FromFile(write("a.yml", "log_level: debug\n"))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.String("log_level", ""))

	_, err = config.FromFile(write("a.toml", "x = 1"))
	assert.ErrorContains(t, err, "unsupported extension")

	_, err = config.FromFile(write("bad.json", "{"))
	assert.ErrorContains(t, err, "bad.json")

	_, err = config.FromFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
