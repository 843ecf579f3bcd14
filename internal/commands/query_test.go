package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/diogo/cookieschat/internal/chat"
	apierrors "github.com/diogo/cookieschat/internal/errors"
)

func TestRunQuery_PrintsReplyMarkup(t *testing.T) {
	gen := &fakeGenerator{reply: "Tenemos **chispas** y\n*avena*"}
	env := setupTestDeps(t, testConfig(), gen)

	if err := runQuery(context.Background(), "  ¿Qué galletas hay?  ", false); err != nil {
		t.Fatalf("runQuery() error: %v", err)
	}

	want := "Tenemos <b>chispas</b> y<br><li>avena</li>\n"
	if got := env.stdout.String(); got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
	if len(gen.prompts) != 1 || gen.prompts[0] != "¿Qué galletas hay?" {
		t.Errorf("prompts = %q", gen.prompts)
	}
	if !gen.closed {
		t.Error("generator should be closed after the query")
	}
}

func TestRunQuery_FallbackFails(t *testing.T) {
	gen := &fakeGenerator{err: apierrors.NewUsageLimitError("gemini-2.5-pro")}
	env := setupTestDeps(t, testConfig(), gen)

	err := runQuery(context.Background(), "hola", false)
	if !errors.Is(err, ErrFallbackReply) {
		t.Fatalf("runQuery() error = %v, want ErrFallbackReply", err)
	}
	if !strings.Contains(env.stdout.String(), chat.DefaultFallbackMessage) {
		t.Errorf("stdout = %q, want the fallback message", env.stdout.String())
	}
}

func TestRunQuery_CustomFallback(t *testing.T) {
	cfg := testConfig()
	cfg.FallbackMessage = "Sin galletas por ahora."
	env := setupTestDeps(t, cfg, &fakeGenerator{err: errors.New("boom")})

	_ = runQuery(context.Background(), "hola", false)
	if got := env.stdout.String(); got != "Sin galletas por ahora.\n" {
		t.Errorf("stdout = %q", got)
	}
}

func TestRunQuery_MissingAPIKey(t *testing.T) {
	cfg := testConfig()
	cfg.APIKey = ""
	cfg.LegacyAPIKey = ""
	env := setupTestDeps(t, cfg, &fakeGenerator{})

	err := runQuery(context.Background(), "hola", false)
	if !apierrors.IsConfigurationError(err) {
		t.Fatalf("runQuery() error = %v, want ConfigurationError", err)
	}
	if len(env.calls) != 0 {
		t.Error("no backend should be built without an API key")
	}
}

func TestRunQuery_EmptyPrompt(t *testing.T) {
	env := setupTestDeps(t, testConfig(), &fakeGenerator{})

	if err := runQuery(context.Background(), "   \n", false); err == nil {
		t.Fatal("expected an error for an empty prompt")
	}
	if len(env.calls) != 0 {
		t.Error("empty prompts must not reach the backend")
	}
}

func TestRunQuery_FlagOverrides(t *testing.T) {
	env := setupTestDeps(t, testConfig(), &fakeGenerator{reply: "ok"})
	modelFlag = "gemini-2.5-flash"
	backendFlag = "sdk"

	if err := runQuery(context.Background(), "hola", false); err != nil {
		t.Fatalf("runQuery() error: %v", err)
	}

	want := generatorCall{backend: "sdk", apiKey: "test-key-1234", model: "gemini-2.5-flash"}
	if len(env.calls) != 1 || env.calls[0] != want {
		t.Errorf("NewGenerator calls = %+v, want %+v", env.calls, want)
	}
}

func TestRunQuery_OutputFile(t *testing.T) {
	tests := []struct {
		name string
		raw  bool
		want string
	}{
		{name: "markdown", raw: false, want: "**Hola**"},
		{name: "raw markup", raw: true, want: "<b>Hola</b>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestDeps(t, testConfig(), &fakeGenerator{reply: "**Hola**"})
			outputFlag = filepath.Join(t.TempDir(), "reply.md")
			rawFlag = tt.raw

			if err := runQuery(context.Background(), "hola", tt.raw); err != nil {
				t.Fatalf("runQuery() error: %v", err)
			}

			data, err := os.ReadFile(outputFlag)
			if err != nil {
				t.Fatalf("ReadFile() error: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("file = %q, want %q", data, tt.want)
			}
			if env.stdout.Len() != 0 {
				t.Errorf("stdout should be empty when writing to a file, got %q", env.stdout.String())
			}
		})
	}
}

func TestRunQuery_Decorated(t *testing.T) {
	env := setupTestDeps(t, testConfig(), &fakeGenerator{reply: "**Hola**"})
	deps.StdoutTTY = func() bool { return true }

	if err := runQuery(context.Background(), "hola", false); err != nil {
		t.Fatalf("runQuery() error: %v", err)
	}

	out := env.stdout.String()
	if !strings.Contains(out, "Gemini") || !strings.Contains(out, "Hola") {
		t.Errorf("decorated output = %q", out)
	}
	if strings.Contains(out, "<b>") {
		t.Error("decorated output should render the markup")
	}
	if !strings.Contains(env.stderr.String(), "Listo") {
		t.Errorf("spinner should report success, stderr = %q", env.stderr.String())
	}
}

func TestOutcomeRecorder(t *testing.T) {
	r := &outcomeRecorder{}
	if r.Failed() {
		t.Error("fresh recorder should not report a failure")
	}
	r.Settled(time.Second, "network")
	if !r.Failed() {
		t.Error("settled with a kind is a failure")
	}
	r.Settled(time.Second, "")
	if r.Failed() {
		t.Error("a later success clears the failure")
	}
}

func TestFormatErrorMessage(t *testing.T) {
	if got := formatErrorMessage(nil, "ctx"); got != "" {
		t.Fatalf("expected empty for nil error, got %s", got)
	}

	tests := []struct {
		name     string
		err      error
		contains []string
	}{
		{
			name:     "configuration",
			err:      apierrors.NewConfigurationError("api_key", "GEMINI_API_KEY is not set", apierrors.ErrMissingAPIKey),
			contains: []string{"GEMINI_API_KEY", "Hint"},
		},
		{
			name:     "api error",
			err:      apierrors.NewAPIErrorWithBody(500, "/models/x:generateContent", "failure", "body"),
			contains: []string{"HTTP Status: 500", "Endpoint: /models/x:generateContent"},
		},
		{
			name:     "fallback",
			err:      ErrFallbackReply,
			contains: []string{"no reply", "COOKIESCHAT_LOG_LEVEL"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := formatErrorMessage(tt.err, "Error")
			for _, want := range tt.contains {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q: %s", want, out)
				}
			}
		})
	}
}

func TestSpinnerLifecycle(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner(&buf, "Horneando")
	s.start()
	time.Sleep(120 * time.Millisecond)
	s.stopWithSuccess("done")
	// A second stop must not panic
	s.stopOnce()

	if !strings.Contains(buf.String(), "done") {
		t.Errorf("output = %q", buf.String())
	}

	s = newSpinner(&buf, "Horneando")
	s.start()
	s.stopWithError()
}
