// Package chat holds the conversation of a single chat session and drives
// one generation request at a time.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/diogo/cookieschat/internal/api"
	apierrors "github.com/diogo/cookieschat/internal/errors"
	"github.com/diogo/cookieschat/internal/markup"
	"github.com/diogo/cookieschat/internal/models"
)

// DefaultFallbackMessage is shown in place of a reply when generation fails
const DefaultFallbackMessage = "Ups, algo salió mal. Intenta de nuevo."

// Submissions that are ignored
var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrBusy         = errors.New("a reply is still pending")
)

// Recorder receives submission lifecycle events. metrics.Metrics implements it.
type Recorder interface {
	Accepted()
	RejectedSubmission(reason string)
	Settled(d time.Duration, kind string)
}

type nopRecorder struct{}

func (nopRecorder) Accepted()                     {}
func (nopRecorder) RejectedSubmission(string)     {}
func (nopRecorder) Settled(time.Duration, string) {}

// Event is a snapshot of the session taken after a state change
type Event struct {
	Messages []models.Message `json:"messages"`
	Busy     bool             `json:"busy"`
	Draft    string           `json:"draft"`
}

// Session is an in-memory conversation with the generation service.
// It is safe for concurrent use.
type Session struct {
	id        string
	gen       api.Generator
	model     string
	fallback  string
	recorder  Recorder
	sendLimit time.Duration

	mu       sync.Mutex
	messages []models.Message
	history  []models.Message // settled exchanges with raw model text
	busy     bool
	draft    string
	subs     map[int]chan Event
	nextSub  int
	inflight sync.WaitGroup
}

// Option configures a Session
type Option func(*Session)

// WithFallbackMessage replaces the text shown when generation fails
func WithFallbackMessage(text string) Option {
	return func(s *Session) {
		if strings.TrimSpace(text) != "" {
			s.fallback = text
		}
	}
}

// WithRecorder reports submissions to r
func WithRecorder(r Recorder) Option {
	return func(s *Session) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithModelName labels log lines and errors with the model in use
func WithModelName(model string) Option {
	return func(s *Session) {
		s.model = model
	}
}

// WithTimeout bounds each generation request. Zero leaves the bound to the transport.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.sendLimit = d
	}
}

// NewSession creates an empty session that talks to gen
func NewSession(gen api.Generator, opts ...Option) *Session {
	s := &Session{
		id:       uuid.NewString(),
		gen:      gen,
		fallback: DefaultFallbackMessage,
		recorder: nopRecorder{},
		subs:     make(map[int]chan Event),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the session identifier used in logs
func (s *Session) ID() string {
	return s.id
}

// FallbackMessage returns the text appended when a turn fails
func (s *Session) FallbackMessage() string {
	return s.fallback
}

// Messages returns a copy of the conversation
func (s *Session) Messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Message(nil), s.messages...)
}

// Busy reports whether a reply is pending
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Draft returns the current input draft
func (s *Session) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// SetDraft replaces the input draft
func (s *Session) SetDraft(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == text {
		return
	}
	s.draft = text
	s.publishLocked()
}

// Snapshot returns the current state
func (s *Session) Snapshot() Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Submit appends text as a user turn and waits for the reply. It returns
// ErrEmptyMessage or ErrBusy when the submission is ignored and nil
// otherwise: generation failures are answered with the fallback message.
func (s *Session) Submit(ctx context.Context, text string) error {
	done, err := s.Start(ctx, text)
	if err != nil {
		return err
	}
	<-done
	return nil
}

// SubmitDraft submits the current draft
func (s *Session) SubmitDraft(ctx context.Context) error {
	return s.Submit(ctx, s.Draft())
}

// Start accepts a submission and runs the generation request in the
// background. The returned channel is closed once the reply (or fallback)
// has been appended. Cancelling ctx after Start returns has no effect.
func (s *Session) Start(ctx context.Context, text string) (<-chan struct{}, error) {
	if strings.TrimSpace(text) == "" {
		s.recorder.RejectedSubmission("empty")
		return nil, ErrEmptyMessage
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		s.recorder.RejectedSubmission("busy")
		log.Debug().Str("session", s.id).Msg("submission ignored while busy")
		return nil, ErrBusy
	}
	s.busy = true
	s.messages = append(s.messages, models.NewUserMessage(text))
	s.draft = ""
	history := append([]models.Message(nil), s.history...)
	s.inflight.Add(1)
	s.publishLocked()
	s.mu.Unlock()

	s.recorder.Accepted()

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer s.inflight.Done()
		s.generate(context.WithoutCancel(ctx), history, text)
	}()

	return done, nil
}

// generate performs the remote call and settles the turn
func (s *Session) generate(ctx context.Context, history []models.Message, text string) {
	if s.sendLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.sendLimit)
		defer cancel()
	}

	started := time.Now()
	reply, err := s.gen.Generate(ctx, history, text)
	elapsed := time.Since(started)

	var raw string
	if err == nil {
		raw = reply.Text()
		if raw == "" {
			err = apierrors.ErrNoContent
		}
	}

	if err != nil {
		genErr := apierrors.NewGenerationError(s.model, err)
		kind := apierrors.Kind(err)
		event := log.Error().
			Err(genErr).
			Str("session", s.id).
			Str("kind", kind).
			Dur("elapsed", elapsed)
		if status := apierrors.GetHTTPStatus(err); status > 0 {
			event = event.Int("status", status)
		}
		event.Msg("generation failed")

		s.settle(models.NewModelMessage(s.fallback), nil)
		s.recorder.Settled(elapsed, kind)
		return
	}

	log.Debug().
		Str("session", s.id).
		Str("model", reply.Model).
		Dur("elapsed", elapsed).
		Int("chars", len(raw)).
		Msg("reply received")

	s.settle(
		models.NewModelMessage(markup.Format(raw)),
		[]models.Message{models.NewUserMessage(text), models.NewModelMessage(raw)},
	)
	s.recorder.Settled(elapsed, "")
}

// settle appends the model message, extends the provider history and clears busy
func (s *Session) settle(msg models.Message, exchange []models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	s.history = append(s.history, exchange...)
	s.busy = false
	s.publishLocked()
}

// Wait blocks until no generation request is in flight
func (s *Session) Wait() {
	s.inflight.Wait()
}

// Subscribe returns a channel that receives a snapshot after every state
// change, starting with the current state. Slow readers only see the most
// recent snapshot. The returned function unsubscribes and closes the channel.
func (s *Session) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 1)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.snapshotLocked()
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

func (s *Session) snapshotLocked() Event {
	return Event{
		Messages: append([]models.Message(nil), s.messages...),
		Busy:     s.busy,
		Draft:    s.draft,
	}
}

// publishLocked hands a snapshot to every subscriber without blocking
func (s *Session) publishLocked() {
	if len(s.subs) == 0 {
		return
	}
	ev := s.snapshotLocked()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
			continue
		default:
		}
		// Replace the stale snapshot
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- ev:
		default:
		}
	}
}
