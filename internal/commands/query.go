package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/cookieschat/internal/chat"
	"github.com/diogo/cookieschat/internal/config"
	apierrors "github.com/diogo/cookieschat/internal/errors"
	"github.com/diogo/cookieschat/internal/logging"
	"github.com/diogo/cookieschat/internal/markup"
	"github.com/diogo/cookieschat/internal/models"
	"github.com/diogo/cookieschat/internal/render"
)

// ErrFallbackReply is returned when the model could not answer
var ErrFallbackReply = errors.New("no reply from the model")

// Gradient colors for animation
var gradientColors = []lipgloss.Color{
	lipgloss.Color("#e76f51"), // Terracotta
	lipgloss.Color("#f4a261"), // Sandy
	lipgloss.Color("#e9c46a"), // Butter
	lipgloss.Color("#d4a373"), // Dough
	lipgloss.Color("#bc6c25"), // Caramel
	lipgloss.Color("#7f5539"), // Chocolate
}

var (
	colorText     = lipgloss.Color("#f1e3d3")
	colorTextDim  = lipgloss.Color("#8d7664")
	colorTextMute = lipgloss.Color("#5c4331")
	colorSuccess  = lipgloss.Color("#9ece6a")
	colorPrimary  = lipgloss.Color("#f4a261")
	colorError    = lipgloss.Color("#f7768e")
)

// Styles matching the chat TUI
var (
	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	assistantBubbleStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Foreground(colorText).
				Padding(0, 1).
				MarginTop(1).
				MarginBottom(1)
)

// spinner handles the animated loading indicator
type spinner struct {
	out     io.Writer
	message string
	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	frame   int
	stopped bool // Flag to prevent double-close
}

// newSpinner creates a new animated spinner writing to out
func newSpinner(out io.Writer, message string) *spinner {
	return &spinner{
		out:     out,
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// start begins the animation
func (s *spinner) start() {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		// Hide cursor
		fmt.Fprint(s.out, "\033[?25l")

		for {
			select {
			case <-s.stop:
				// Clear line and show cursor
				fmt.Fprint(s.out, "\r\033[K\033[?25h")
				return
			case <-ticker.C:
				s.mu.Lock()
				s.render()
				s.frame++
				s.mu.Unlock()
			}
		}
	}()
}

// render draws the current animation frame
func (s *spinner) render() {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

	spinColor := gradientColors[s.frame%len(gradientColors)]
	spinnerChar := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[s.frame%len(chars)])

	// Crumbs trail behind the cookie
	var crumbs strings.Builder
	numCrumbs := (s.frame / 3) % 4
	for i := 0; i < 3; i++ {
		if i < numCrumbs {
			crumbColor := gradientColors[(s.frame+i)%len(gradientColors)]
			crumbs.WriteString(lipgloss.NewStyle().Foreground(crumbColor).Render("●"))
		} else {
			crumbs.WriteString(lipgloss.NewStyle().Foreground(colorTextMute).Render("○"))
		}
	}

	msg := lipgloss.NewStyle().Foreground(colorText).Render(s.message)
	fmt.Fprintf(s.out, "\r\033[K%s 🍪 %s %s", spinnerChar, msg, crumbs.String())
}

// stopOnce safely closes the stop channel only once
func (s *spinner) stopOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		close(s.stop)
		s.stopped = true
	}
}

// stopWithSuccess stops the spinner and shows success message
func (s *spinner) stopWithSuccess(message string) {
	s.stopOnce()
	<-s.done

	checkmark := lipgloss.NewStyle().Foreground(colorSuccess).Bold(true).Render("✓")
	msg := lipgloss.NewStyle().Foreground(colorSuccess).Render(message)
	fmt.Fprintf(s.out, "%s %s\n", checkmark, msg)
}

// stopWithError stops the spinner without a message
func (s *spinner) stopWithError() {
	s.stopOnce()
	<-s.done
}

// runQuery submits a single prompt and prints the reply.
// If rawOutput is true, only the reply markup is printed without decoration.
func runQuery(ctx context.Context, prompt string, rawOutput bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return fmt.Errorf("prompt cannot be empty")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Plain output when stdout is piped
	decorated := !rawOutput && deps.StdoutTTY()
	logging.Setup(deps.Stderr, cfg.LogLevel, true)

	outcome := &outcomeRecorder{}
	rt, err := newRuntime(ctx, cfg, chat.WithRecorder(outcome))
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	var spin *spinner
	if decorated {
		spin = newSpinner(deps.Stderr, "Horneando respuesta")
		spin.start()
	}

	startTime := time.Now()
	if err := rt.session.Submit(ctx, prompt); err != nil {
		if spin != nil {
			spin.stopWithError()
		}
		return err
	}
	elapsed := time.Since(startTime)

	reply := lastModelMessage(rt.session.Messages())
	failed := outcome.Failed()

	if spin != nil {
		if failed {
			spin.stopWithError()
		} else {
			spin.stopWithSuccess(fmt.Sprintf("Listo (%s)", elapsed.Round(time.Millisecond)))
		}
	}

	if err := writeReply(reply.Text, cfg.Markdown, decorated, cfg.CopyToClipboard && !failed); err != nil {
		return err
	}

	if failed {
		return ErrFallbackReply
	}
	return nil
}

// writeReply prints or saves text according to the output flags
func writeReply(text string, md config.MarkdownConfig, decorated, copyReply bool) error {
	if copyReply {
		if err := clipboard.WriteAll(markup.ToMarkdown(text)); err != nil {
			fmt.Fprintln(deps.Stderr, lipgloss.NewStyle().Foreground(colorError).Render(
				fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err),
			))
		} else {
			fmt.Fprintln(deps.Stderr, lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ Copied to clipboard"))
		}
	}

	// Output to file if specified
	if outputFlag != "" {
		content := text
		if !rawFlag {
			content = markup.ToMarkdown(text)
		}
		if err := os.WriteFile(outputFlag, []byte(content), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if decorated {
			fmt.Fprintln(deps.Stderr, lipgloss.NewStyle().Foreground(colorSuccess).Render(
				fmt.Sprintf("✓ Reply saved to %s", outputFlag),
			))
		}
		return nil
	}

	if !decorated {
		fmt.Fprintln(deps.Stdout, text)
		return nil
	}

	bubbleWidth := getTerminalWidth() - 4
	if bubbleWidth < 40 {
		bubbleWidth = 40
	}
	if bubbleWidth > 120 {
		bubbleWidth = 120
	}

	opts := render.OptionsFromConfig(md, bubbleWidth-4)

	fmt.Fprintln(deps.Stdout, assistantLabelStyle.Render("🍪 Gemini"))
	fmt.Fprintln(deps.Stdout, assistantBubbleStyle.Width(bubbleWidth).Render(render.ReplyOrPlain(text, opts)))
	return nil
}

// outcomeRecorder remembers how the last turn settled
type outcomeRecorder struct {
	mu   sync.Mutex
	kind string
}

func (r *outcomeRecorder) Accepted() {}

func (r *outcomeRecorder) RejectedSubmission(string) {}

func (r *outcomeRecorder) Settled(_ time.Duration, kind string) {
	r.mu.Lock()
	r.kind = kind
	r.mu.Unlock()
}

// Failed reports whether the last turn was answered with the fallback message
func (r *outcomeRecorder) Failed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.kind != ""
}

// lastModelMessage returns the newest model message
func lastModelMessage(messages []models.Message) models.Message {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == models.RoleModel {
			return messages[i]
		}
	}
	return models.Message{}
}

// formatErrorMessage formats an error with additional context from structured errors
func formatErrorMessage(err error, context string) string {
	if err == nil {
		return ""
	}

	errorStyle := lipgloss.NewStyle().Foreground(colorError)
	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	var sb strings.Builder
	sb.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s: %v", context, err)))

	if status := apierrors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}

	if endpoint := apierrors.GetEndpoint(err); endpoint != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  Endpoint: %s", endpoint)))
	}

	switch {
	case apierrors.IsConfigurationError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: export GEMINI_API_KEY or run 'cookieschat config set api_key <key>'"))
	case errors.Is(err, ErrFallbackReply):
		sb.WriteString(dimStyle.Render("\n  Hint: run with COOKIESCHAT_LOG_LEVEL=debug to see the cause"))
	}

	return sb.String()
}
