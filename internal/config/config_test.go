package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600))
	return dir
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	dir := writeConfig(t, `
database:
  dsn: postgres://u:p@localhost:5432/tpi
crawl:
  request_delay: 50ms
  max_items: 10
`)
	cfg, err := LoadConfigFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, "postgres://u:p@localhost:5432/tpi", cfg.Database.DSN)
	assert.Equal(t, 50*time.Millisecond, cfg.Crawl.RequestDelay)
	assert.Equal(t, 10, cfg.Crawl.MaxItems)
	assert.Equal(t, 10, cfg.Crawl.MaxConsecutiveErrors)
	assert.Equal(t, 700*time.Millisecond, cfg.Crawl.InnerSettleDelay)
	assert.Equal(t, "Europe/Paris", cfg.News.Timezone)
	assert.Equal(t, "0 * * * * *", cfg.Schedule.News)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadConfigEnvOverridesSecrets(t *testing.T) {
	dir := writeConfig(t, `
browser:
  email: yaml@example.com
  password: from-yaml
`)
	t.Setenv("TPI_EMAIL", "env@example.com")
	t.Setenv("TPI_PASSWORD", "from-env")
	t.Setenv("DATABASE_DSN", "postgres://env/db")

	cfg, err := LoadConfigFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, "env@example.com", cfg.Browser.Email)
	assert.Equal(t, "from-env", cfg.Browser.Password)
	assert.Equal(t, "postgres://env/db", cfg.Database.DSN)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfigFrom(t.TempDir())
	assert.Error(t, err)
}

func TestLoadConfigDefaultRequestDelay(t *testing.T) {
	cfg, err := LoadConfigFrom(writeConfig(t, "server:\n  port: 9090\n"))
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, cfg.Crawl.RequestDelay)
}

func TestLoadConfigRejectsUnboundedCrawl(t *testing.T) {
	for _, content := range []string{
		"crawl:\n  max_consecutive_errors: 0\n",
		"crawl:\n  max_consecutive_errors: -3\n",
		"crawl:\n  request_delay: -1s\n",
		"crawl:\n  max_items: -1\n",
	} {
		_, err := LoadConfigFrom(writeConfig(t, content))
		assert.Error(t, err, content)
	}
}
