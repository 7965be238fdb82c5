package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full server configuration. Every key can be set from the
// environment by upper-casing it and replacing dots with underscores, so
// gallery.max_entries is GALLERY_MAX_ENTRIES.
type Config struct {
	Port       string           `mapstructure:"port"`
	PublicDir  string           `mapstructure:"public_dir"`
	DBURL      string           `mapstructure:"db_url"`
	Log        LogConfig        `mapstructure:"log"`
	LocalStore LocalStoreConfig `mapstructure:"local_store"`
	Gallery    GalleryConfig    `mapstructure:"gallery"`
	Image      ImageConfig      `mapstructure:"image"`
	GCP        GCPConfig        `mapstructure:"gcp"`
	Canvas     CanvasConfig     `mapstructure:"canvas"`
	Scraper    ScraperConfig    `mapstructure:"scraper"`
	LLM        LLMConfig        `mapstructure:"llm"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type LocalStoreConfig struct {
	Path string `mapstructure:"path"`
}

type GalleryConfig struct {
	// Backend is local or postgres.
	Backend       string `mapstructure:"backend"`
	MaxEntries    int    `mapstructure:"max_entries"`
	RunMigrations bool   `mapstructure:"run_migrations"`
}

type ImageConfig struct {
	// Store is disk or gcs.
	Store     string `mapstructure:"store"`
	Dir       string `mapstructure:"dir"`
	GCSBucket string `mapstructure:"gcs_bucket"`
	GCSPrefix string `mapstructure:"gcs_prefix"`
}

type GCPConfig struct {
	ServiceAccountCredentials string `mapstructure:"service_account_credentials"`
	ProjectID                 string `mapstructure:"project_id"`
}

type CanvasConfig struct {
	MaxHistory int `mapstructure:"max_history"`
}

type ScraperConfig struct {
	// Mode is http or browser.
	Mode       string        `mapstructure:"mode"`
	Sources    []string      `mapstructure:"sources"`
	Timeout    time.Duration `mapstructure:"timeout"`
	BrowserURL string        `mapstructure:"browser_url"`
}

type LLMConfig struct {
	// Provider is empty, langchain or gemini.
	Provider      string `mapstructure:"provider"`
	PromptCount   int    `mapstructure:"prompt_count"`
	OpenAIModel   string `mapstructure:"openai_model"`
	OpenAIBaseURL string `mapstructure:"openai_base_url"`
	OpenAIAPIKey  string `mapstructure:"openai_api_key"`
	GeminiAPIKey  string `mapstructure:"gemini_api_key"`
	GeminiModelID string `mapstructure:"gemini_model_id"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		Port:       "3000",
		PublicDir:  "public",
		Log:        LogConfig{Level: "info", Format: "console"},
		LocalStore: LocalStoreConfig{Path: "data/local.db"},
		Gallery:    GalleryConfig{Backend: "local", MaxEntries: 50},
		Image:      ImageConfig{Store: "disk", Dir: "temp/images", GCSPrefix: "drawings"},
		Canvas:     CanvasConfig{MaxHistory: 20},
		Scraper:    ScraperConfig{Mode: "http", Timeout: 5 * time.Second},
		LLM: LLMConfig{
			PromptCount:   10,
			OpenAIModel:   "gpt-4.1",
			GeminiModelID: "gemini-2.5-flash",
		},
	}
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return errors.New("port is required")
	}

	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be one of console, json")
	}

	switch c.Gallery.Backend {
	case "local":
		if c.LocalStore.Path == "" {
			return errors.New("local_store.path is required")
		}
	case "postgres":
		if c.DBURL == "" {
			return errors.New("db_url is required for the postgres gallery backend")
		}
	default:
		return fmt.Errorf("gallery.backend must be local or postgres")
	}
	if c.Gallery.MaxEntries < 0 {
		return errors.New("gallery.max_entries must be zero or greater")
	}

	switch c.Image.Store {
	case "disk":
		if c.Image.Dir == "" {
			return errors.New("image.dir is required for the disk image store")
		}
	case "gcs":
		if c.Image.GCSBucket == "" {
			return errors.New("image.gcs_bucket is required for the gcs image store")
		}
		if c.GCP.ServiceAccountCredentials == "" {
			return errors.New("gcp.service_account_credentials is required for the gcs image store")
		}
	default:
		return fmt.Errorf("image.store must be disk or gcs")
	}

	if c.Canvas.MaxHistory < 0 {
		return errors.New("canvas.max_history must be zero or greater")
	}

	switch c.Scraper.Mode {
	case "http", "browser":
	default:
		return fmt.Errorf("scraper.mode must be http or browser")
	}
	if c.Scraper.Timeout <= 0 {
		return errors.New("scraper.timeout must be positive")
	}

	switch c.LLM.Provider {
	case "":
	case "langchain":
	case "gemini":
		if c.LLM.GeminiAPIKey == "" {
			return errors.New("llm.gemini_api_key is required for the gemini provider")
		}
	default:
		return fmt.Errorf("llm.provider must be empty, langchain or gemini")
	}
	if c.LLM.PromptCount < 1 {
		return errors.New("llm.prompt_count must be at least 1")
	}
	return nil
}

// Loader reads the configuration from defaults, an optional config file and
// the environment, in increasing order of precedence.
type Loader struct {
	v          *viper.Viper
	configFile string
	envFiles   []string
	envSet     bool
}

func NewLoader() *Loader {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	return &Loader{v: v}
}

// SetConfigFile uses an explicit config file instead of ./config.yaml.
func (l *Loader) SetConfigFile(path string) {
	l.configFile = path
}

// SetEnvFiles overrides the dotenv files loaded before reading the
// environment. The default is .env in the working directory.
func (l *Loader) SetEnvFiles(files ...string) {
	l.envFiles = files
	l.envSet = true
}

func (l *Loader) Load() (*Config, error) {
	l.loadEnvFiles()

	cfg := DefaultConfig()
	l.setDefaults(cfg)

	if err := l.loadConfigFile(); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()
	bindProviderEnvVars(l.v)

	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ConfigFileUsed returns the config file that was loaded, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// loadEnvFiles never overrides variables that are already set. A missing
// .env is normal in production.
func (l *Loader) loadEnvFiles() {
	files := l.envFiles
	if !l.envSet {
		files = []string{".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

func (l *Loader) loadConfigFile() error {
	if l.configFile != "" {
		l.v.SetConfigFile(l.configFile)
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}

func (l *Loader) setDefaults(cfg *Config) {
	v := l.v

	v.SetDefault("port", cfg.Port)
	v.SetDefault("public_dir", cfg.PublicDir)
	v.SetDefault("db_url", cfg.DBURL)

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)

	v.SetDefault("local_store.path", cfg.LocalStore.Path)

	v.SetDefault("gallery.backend", cfg.Gallery.Backend)
	v.SetDefault("gallery.max_entries", cfg.Gallery.MaxEntries)
	v.SetDefault("gallery.run_migrations", cfg.Gallery.RunMigrations)

	v.SetDefault("image.store", cfg.Image.Store)
	v.SetDefault("image.dir", cfg.Image.Dir)
	v.SetDefault("image.gcs_bucket", cfg.Image.GCSBucket)
	v.SetDefault("image.gcs_prefix", cfg.Image.GCSPrefix)

	v.SetDefault("gcp.service_account_credentials", cfg.GCP.ServiceAccountCredentials)
	v.SetDefault("gcp.project_id", cfg.GCP.ProjectID)

	v.SetDefault("canvas.max_history", cfg.Canvas.MaxHistory)

	v.SetDefault("scraper.mode", cfg.Scraper.Mode)
	v.SetDefault("scraper.sources", cfg.Scraper.Sources)
	v.SetDefault("scraper.timeout", cfg.Scraper.Timeout)
	v.SetDefault("scraper.browser_url", cfg.Scraper.BrowserURL)

	v.SetDefault("llm.provider", cfg.LLM.Provider)
	v.SetDefault("llm.prompt_count", cfg.LLM.PromptCount)
	v.SetDefault("llm.openai_model", cfg.LLM.OpenAIModel)
	v.SetDefault("llm.openai_base_url", cfg.LLM.OpenAIBaseURL)
	v.SetDefault("llm.openai_api_key", cfg.LLM.OpenAIAPIKey)
	v.SetDefault("llm.gemini_api_key", cfg.LLM.GeminiAPIKey)
	v.SetDefault("llm.gemini_model_id", cfg.LLM.GeminiModelID)
}

// Load reads the configuration with the default search paths.
func Load() (*Config, error) {
	return NewLoader().Load()
}

// bindProviderEnvVars accepts the variable names the provider SDKs use.
func bindProviderEnvVars(v *viper.Viper) {
	_ = v.BindEnv("llm.openai_api_key", "LLM_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("llm.gemini_api_key", "LLM_GEMINI_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("gcp.project_id", "GCP_PROJECT_ID", "GOOGLE_CLOUD_PROJECT_ID")
}
