package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/diogo/cookieschat/internal/api"
	"github.com/diogo/cookieschat/internal/chat"
	"github.com/diogo/cookieschat/internal/config"
)

// runtime is everything a command needs to talk to the model
type runtime struct {
	cfg       config.Config
	modelName string
	gen       api.Generator
	session   *chat.Session
}

// Close waits for the pending reply and releases the backend
func (r *runtime) Close() error {
	r.session.Wait()
	return r.gen.Close()
}

// loadConfig reads the configuration and applies the command line overrides
func loadConfig() (config.Config, error) {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return cfg, err
	}
	if modelFlag != "" {
		cfg.Model = modelFlag
	}
	if backendFlag != "" {
		cfg.Backend = backendFlag
	}
	return cfg, nil
}

// newRuntime resolves the API key and creates the session. A missing key is
// returned before any backend is built.
func newRuntime(ctx context.Context, cfg config.Config, opts ...chat.Option) (*runtime, error) {
	apiKey, err := config.RequireAPIKey(cfg)
	if err != nil {
		return nil, err
	}

	gen, err := deps.NewGenerator(ctx, cfg.Backend, apiKey, cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	opts = append([]chat.Option{
		chat.WithModelName(cfg.Model),
		chat.WithFallbackMessage(cfg.FallbackMessage),
	}, opts...)
	session := chat.NewSession(gen, opts...)

	log.Debug().
		Str("session", session.ID()).
		Str("model", cfg.Model).
		Str("backend", cfg.Backend).
		Msg("session created")

	return &runtime{
		cfg:       cfg,
		modelName: cfg.Model,
		gen:       gen,
		session:   session,
	}, nil
}
