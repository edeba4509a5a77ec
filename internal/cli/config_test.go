package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/matzehuels/cardimposer/pkg/errors"
)

// isolateConfig points config discovery at empty directories.
func isolateConfig(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	t.Chdir(t.TempDir())
	return home
}

func TestLoadConfigDefaults(t *testing.T) {
	isolateConfig(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, log.InfoLevel, cfg.Level())
}

func TestLoadConfigFile(t *testing.T) {
	home := isolateConfig(t)
	dir := filepath.Join(home, appName)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "impose.toml"), []byte(`
log_level = "debug"
dpi = 600

[cache]
backend = "redis"
redis_url = "redis://localhost:6379/1"

[server]
addr = ":9090"
read_timeout = "5s"
`), 0o644))

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, log.DebugLevel, cfg.Level())
	assert.Equal(t, 600, cfg.DPI)
	assert.Equal(t, CacheRedis, cfg.Cache.Backend)
	assert.Equal(t, "redis://localhost:6379/1", cfg.Cache.RedisURL)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.WriteTimeout, "unset keys keep defaults")
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	isolateConfig(t)
	path := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("dpi = 600\n[cache]\nbackend = \"none\"\n"), 0o644))
	t.Setenv("IMPOSE_DPI", "150")
	t.Setenv("IMPOSE_CACHE_DIR", "/var/cache/impose")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 150, cfg.DPI)
	assert.Equal(t, CacheNone, cfg.Cache.Backend)
	assert.Equal(t, "/var/cache/impose", cfg.Cache.Dir)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
	}{
		{name: "bad level", content: `log_level = "loud"`},
		{name: "dpi too low", content: `dpi = 10`},
		{name: "redis without url", content: "[cache]\nbackend = \"redis\""},
		{name: "unknown backend", content: "[cache]\nbackend = \"s3\""},
		{name: "malformed toml", content: `dpi = `},
		{name: "env out of range", content: ``, env: map[string]string{"IMPOSE_CONCURRENCY": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateConfig(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := filepath.Join(t.TempDir(), "impose.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := LoadConfig(path)
			require.Error(t, err)
			assert.True(t, errs.Is(err, errs.ErrCodeInvalidInput), "got %v", err)
		})
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	isolateConfig(t)
	_, err := LoadConfig("does-not-exist.toml")
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidInput), "got %v", err)
}
