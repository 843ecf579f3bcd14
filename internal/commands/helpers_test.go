package commands

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog/log"

	"github.com/diogo/cookieschat/internal/api"
	"github.com/diogo/cookieschat/internal/config"
	"github.com/diogo/cookieschat/internal/models"
)

// fakeGenerator answers every prompt with reply, or fails with err
type fakeGenerator struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
	closed  bool
}

func (g *fakeGenerator) Generate(_ context.Context, _ []models.Message, prompt string) (*models.Reply, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return nil, g.err
	}
	return &models.Reply{Candidates: []models.Candidate{{Text: g.reply}}}, nil
}

func (g *fakeGenerator) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	return nil
}

// generatorCall records the arguments NewGenerator was called with
type generatorCall struct {
	backend string
	apiKey  string
	model   string
}

// testEnv swaps the package dependencies for in-memory ones
type testEnv struct {
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	calls  []generatorCall
}

func testConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.APIKey = "test-key-1234"
	cfg.LogLevel = "error"
	cfg.Markdown.Style = "notty"
	return cfg
}

func setupTestDeps(t *testing.T, cfg config.Config, gen api.Generator) *testEnv {
	t.Helper()

	env := &testEnv{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}
	oldDeps, oldLogger := deps, log.Logger

	deps = &Dependencies{
		LoadConfig: func() (config.Config, error) { return cfg, nil },
		NewGenerator: func(_ context.Context, backend, apiKey, model string) (api.Generator, error) {
			env.calls = append(env.calls, generatorCall{backend: backend, apiKey: apiKey, model: model})
			return gen, nil
		},
		Stdin:      strings.NewReader(""),
		Stdout:     env.stdout,
		Stderr:     env.stderr,
		StdinPiped: func() bool { return false },
		StdoutTTY:  func() bool { return false },
	}

	t.Cleanup(func() {
		deps = oldDeps
		log.Logger = oldLogger
		modelFlag, backendFlag, outputFlag, fileFlag = "", "", "", ""
		rawFlag = false
		addrFlag, metricsFlag = "", false
		_ = rootCmd.Flags().Set("version", "false")
	})
	return env
}
