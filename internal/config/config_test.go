package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestLoader(t *testing.T) *Loader {
	t.Helper()
	l := NewLoader()
	l.SetEnvFiles()
	return l
}

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := newTestLoader(t).Load()
	require.NoError(t, err)
	require.Equal(t, "3000", cfg.Port)
	require.Equal(t, "local", cfg.Gallery.Backend)
	require.Equal(t, 50, cfg.Gallery.MaxEntries)
	require.Equal(t, 20, cfg.Canvas.MaxHistory)
	require.Equal(t, 5*time.Second, cfg.Scraper.Timeout)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("GALLERY_MAX_ENTRIES", "0")
	t.Setenv("SCRAPER_TIMEOUT", "2s")
	t.Setenv("SCRAPER_SOURCES", "https://a.example,https://b.example")
	t.Setenv("GEMINI_API_KEY", "k")
	t.Setenv("LLM_PROVIDER", "gemini")

	cfg, err := newTestLoader(t).Load()
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, 0, cfg.Gallery.MaxEntries)
	require.Equal(t, 2*time.Second, cfg.Scraper.Timeout)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Scraper.Sources)
	require.Equal(t, "gemini", cfg.LLM.Provider)
	require.Equal(t, "k", cfg.LLM.GeminiAPIKey)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "4000"
gallery:
  max_entries: 10
canvas:
  max_history: 5
`), 0o600))

	l := NewLoader()
	l.SetEnvFiles()
	l.SetConfigFile(path)
	cfg, err := l.Load()
	require.NoError(t, err)
	require.Equal(t, path, l.ConfigFileUsed())
	require.Equal(t, "4000", cfg.Port)
	require.Equal(t, 10, cfg.Gallery.MaxEntries)
	require.Equal(t, 5, cfg.Canvas.MaxHistory)
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PUBLIC_DIR=site\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("PUBLIC_DIR") })

	l := newTestLoader(t)
	l.SetEnvFiles(path)
	cfg, err := l.Load()
	require.NoError(t, err)
	require.Equal(t, "site", cfg.PublicDir)
}

func TestValidate(t *testing.T) {
	for name, mutate := range map[string]func(*Config){
		"log level":        func(c *Config) { c.Log.Level = "trace" },
		"log format":       func(c *Config) { c.Log.Format = "xml" },
		"gallery backend":  func(c *Config) { c.Gallery.Backend = "mongo" },
		"postgres no dsn":  func(c *Config) { c.Gallery.Backend = "postgres" },
		"negative max":     func(c *Config) { c.Gallery.MaxEntries = -1 },
		"image store":      func(c *Config) { c.Image.Store = "s3" },
		"gcs no bucket":    func(c *Config) { c.Image.Store = "gcs" },
		"scraper mode":     func(c *Config) { c.Scraper.Mode = "ftp" },
		"scraper timeout":  func(c *Config) { c.Scraper.Timeout = 0 },
		"llm provider":     func(c *Config) { c.LLM.Provider = "vertex" },
		"gemini no key":    func(c *Config) { c.LLM.Provider = "gemini" },
		"prompt count":     func(c *Config) { c.LLM.PromptCount = 0 },
		"negative history": func(c *Config) { c.Canvas.MaxHistory = -1 },
	} {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
