// Package container wires the application together: sheet adapters, the
// inference client, session storage, the transform service, and the web UI,
// all built once from configuration.
package container

import (
	"fmt"
	"log"

	"tablecast/adapters/inference"
	"tablecast/adapters/inference/offline"
	"tablecast/adapters/sheet"
	"tablecast/ai"
	"tablecast/app"
	"tablecast/internal/config"
	"tablecast/internal/session"
	"tablecast/internal/usage"
	"tablecast/ports"
	"tablecast/ui"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Spreadsheet adapters
	Reader *sheet.Reader
	Writer *sheet.Writer

	// State and metering
	Sessions *session.Store
	Meter    *usage.Meter

	// Inference
	Analyzer *ai.Client

	// Application and UI
	Service *app.TransformService
	Web     *ui.App
}

// New builds the dependency graph from configuration
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config: cfg,
		Reader: sheet.NewReader(),
		Writer: sheet.NewWriter(),
		Meter:  usage.NewMeter(),
	}

	c.Analyzer = ai.New(c.generator(), c.Meter, ai.Config{
		Temperature:     cfg.Inference.Temperature,
		MaxOutputTokens: cfg.Inference.MaxOutputTokens,
	})

	c.Sessions = session.NewStore(cfg.Server.SessionTTL)
	c.Service = app.NewTransformService(c.Reader, c.Writer, c.Analyzer, c.Sessions)

	web, err := ui.NewApp(c.Service, c.Analyzer, c.Meter, ui.Config{
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize web UI: %w", err)
	}
	c.Web = web

	log.Printf("[Container] Initialized - provider=%s, configured=%v, log_level=%s",
		cfg.Inference.Provider, cfg.Inference.IsConfigured(), cfg.Logging.Level)
	return c, nil
}

// generator picks the text generator for the configured provider. A gemini
// provider without an API key yields nil: the client then answers every
// call with a configuration diagnostic instead of dialing out.
func (c *Container) generator() ports.TextGenerator {
	switch c.Config.Inference.Provider {
	case config.ProviderOffline:
		return offline.NewMatcher()
	case config.ProviderGemini:
		if c.Config.Inference.APIKey == "" {
			log.Printf("[Container] GEMINI_API_KEY not set - analysis will answer with diagnostics")
			return nil
		}
		return inference.NewGeminiClient(inference.GeminiConfig{
			APIKey:  c.Config.Inference.APIKey,
			Model:   c.Config.Inference.Model,
			BaseURL: c.Config.Inference.BaseURL,
			Timeout: c.Config.Inference.Timeout,
		})
	default:
		// config.Load rejects unknown provider names before we get here
		return nil
	}
}

// Close releases background resources. Safe to call once.
func (c *Container) Close() {
	if c.Sessions != nil {
		c.Sessions.Close()
	}
	log.Printf("[Container] Shut down")
}
