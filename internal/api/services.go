package api

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"drawing-prompter/internal/config"
	"drawing-prompter/internal/libraries"
	llmHandlers "drawing-prompter/internal/llm_handlers"
	"drawing-prompter/internal/localstore"
	"drawing-prompter/internal/logging"
	"drawing-prompter/internal/prompter/catalog"
	"drawing-prompter/internal/prompter/ideas"
	"drawing-prompter/internal/prompter/scraper"
	"drawing-prompter/internal/repo"
	"drawing-prompter/internal/theme"

	"gorm.io/gorm"
)

// Services is everything the routes need, built once from the config.
type Services struct {
	Config    *config.Config
	Store     *localstore.Store
	DB        *gorm.DB
	Images    libraries.ImageStore
	Gallery   repo.GalleryRepoInterface
	Themes    *theme.Registry
	Generator *ideas.Generator
	Hub       *libraries.Hub

	closers []func() error
}

func NewServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	s := &Services{Config: cfg}
	if err := s.init(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Services) init(ctx context.Context) error {
	cfg := s.Config

	if dir := filepath.Dir(cfg.LocalStore.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create local store directory: %w", err)
		}
	}
	store, err := localstore.Open(cfg.LocalStore.Path)
	if err != nil {
		return err
	}
	s.Store = store
	s.closers = append(s.closers, store.Close)
	s.Themes = theme.NewRegistry(store)

	switch cfg.Image.Store {
	case "gcs":
		clients, err := libraries.NewClients(ctx, cfg.GCP.ServiceAccountCredentials, cfg.GCP.ProjectID)
		if err != nil {
			return fmt.Errorf("failed to init gcp clients: %w", err)
		}
		s.closers = append(s.closers, func() error { clients.Close(); return nil })
		s.Images = libraries.NewGCSImageStore(clients.GCS, cfg.Image.GCSBucket, cfg.Image.GCSPrefix)
	default:
		images, err := libraries.NewDiskImageStore(cfg.Image.Dir)
		if err != nil {
			return err
		}
		s.Images = images
	}

	switch cfg.Gallery.Backend {
	case "postgres":
		db, err := config.ConnectDB(cfg.DBURL)
		if err != nil {
			return err
		}
		s.DB = db
		s.closers = append(s.closers, func() error { return config.CloseDB(db) })
		if err := config.MigrateAllModels(db, cfg.Gallery.RunMigrations); err != nil {
			return err
		}
		s.Gallery = repo.NewGalleryRepository(db, s.Images, cfg.Gallery.MaxEntries)
	default:
		s.Gallery = repo.NewLocalGalleryRepository(store, s.Images, cfg.Gallery.MaxEntries)
	}

	gen, closeGen, err := NewGenerator(ctx, cfg)
	if err != nil {
		return err
	}
	s.Generator = gen
	s.closers = append(s.closers, closeGen)

	s.Hub = libraries.NewHub(logging.Component("hub"))
	go s.Hub.Run()
	return nil
}

// Close releases everything in reverse order of creation.
func (s *Services) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

// NewGenerator builds the suggestion generator with the web scraper and,
// when configured, the language model as prompt sources. The returned func
// releases the headless browser, if one was used.
func NewGenerator(ctx context.Context, cfg *config.Config, extra ...ideas.PromptSource) (*ideas.Generator, func() error, error) {
	closeFn := func() error { return nil }

	var fetcher scraper.Fetcher
	switch cfg.Scraper.Mode {
	case "browser":
		rf := &scraper.RodFetcher{ControlURL: cfg.Scraper.BrowserURL, Timeout: cfg.Scraper.Timeout}
		fetcher = rf
		closeFn = rf.Close
	default:
		fetcher = scraper.NewHTTPFetcher(cfg.Scraper.Timeout)
	}
	sources := []ideas.PromptSource{
		scraper.New(fetcher, cfg.Scraper.Sources, logging.Component("scraper")),
	}

	client, err := llmHandlers.NewLLMClient(ctx, llmHandlers.Config{
		Provider: llmHandlers.Provider(cfg.LLM.Provider),
		LangChain: llmHandlers.LangChainConfig{
			Model:   cfg.LLM.OpenAIModel,
			BaseURL: cfg.LLM.OpenAIBaseURL,
			APIKey:  cfg.LLM.OpenAIAPIKey,
		},
		Gemini: llmHandlers.GeminiConfig{
			APIKey:  cfg.LLM.GeminiAPIKey,
			ModelID: cfg.LLM.GeminiModelID,
		},
	})
	if err != nil {
		_ = closeFn()
		return nil, nil, fmt.Errorf("failed to init llm client: %w", err)
	}
	if client != nil {
		sources = append(sources, llmHandlers.NewPromptSource(client, cfg.LLM.PromptCount, logging.Component("llm")))
	}
	sources = append(sources, extra...)

	return ideas.NewGenerator(catalog.Default(), logging.Component("ideas"), sources...), closeFn, nil
}
