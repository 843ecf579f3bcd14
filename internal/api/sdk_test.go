package api

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"

	apierrors "github.com/diogo/cookieschat/internal/errors"
	"github.com/diogo/cookieschat/internal/models"
)

func TestToSafetySettings(t *testing.T) {
	got := toSafetySettings(models.DefaultGenerationSettings().SafetySettings)
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	for _, s := range got {
		if s.Threshold != genai.HarmBlockMediumAndAbove {
			t.Errorf("threshold for %v = %v", s.Category, s.Threshold)
		}
	}

	unknown := []models.SafetySetting{{Category: "HARM_CATEGORY_UNKNOWN", Threshold: models.BlockNone}}
	if got := toSafetySettings(unknown); len(got) != 0 {
		t.Errorf("unknown category should be skipped, got %d", len(got))
	}
}

func TestApplySettings(t *testing.T) {
	model := &genai.GenerativeModel{}
	applySettings(model, models.DefaultGenerationSettings())

	if model.Temperature == nil || *model.Temperature != 1 {
		t.Error("temperature not applied")
	}
	if model.TopK == nil || *model.TopK != 64 {
		t.Error("topK not applied")
	}
	if model.MaxOutputTokens == nil || *model.MaxOutputTokens != 8192 {
		t.Error("maxOutputTokens not applied")
	}
	if model.ResponseMIMEType != "text/plain" {
		t.Errorf("ResponseMIMEType = %q", model.ResponseMIMEType)
	}
	if len(model.SafetySettings) != 4 {
		t.Errorf("SafetySettings = %d", len(model.SafetySettings))
	}
}

func TestToContents(t *testing.T) {
	history := []models.Message{models.NewUserMessage("a"), models.NewModelMessage("b")}
	got, err := toContents(history)
	if err != nil {
		t.Fatalf("toContents() error: %v", err)
	}
	if len(got) != 2 || got[0].Role != "user" || got[1].Role != "model" {
		t.Fatalf("unexpected contents: %+v", got)
	}
	if text, ok := got[1].Parts[0].(genai.Text); !ok || string(text) != "b" {
		t.Errorf("part = %#v", got[1].Parts[0])
	}

	if _, err := toContents([]models.Message{{Role: "tool"}}); err == nil {
		t.Error("expected error for invalid role")
	}
}

func TestReplyFromResponse(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content:      &genai.Content{Parts: []genai.Part{genai.Text("uno "), genai.Text("dos")}},
				FinishReason: genai.FinishReasonStop,
			},
		},
	}

	reply, err := replyFromResponse(resp, "m")
	if err != nil {
		t.Fatalf("replyFromResponse() error: %v", err)
	}
	if reply.Text() != "uno dos" {
		t.Errorf("Text() = %q", reply.Text())
	}
	if reply.ChosenCandidate().FinishReason != "STOP" {
		t.Errorf("FinishReason = %q", reply.ChosenCandidate().FinishReason)
	}

	if _, err := replyFromResponse(&genai.GenerateContentResponse{}, "m"); !errors.Is(err, apierrors.ErrInvalidResponse) {
		t.Errorf("expected parse error, got %v", err)
	}

	empty := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: &genai.Content{}}}}
	if _, err := replyFromResponse(empty, "m"); !errors.Is(err, apierrors.ErrInvalidResponse) {
		t.Errorf("expected parse error for empty candidate, got %v", err)
	}
}

func TestMapSDKError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind string
	}{
		{
			name: "blocked candidate",
			err:  &genai.BlockedError{Candidate: &genai.Candidate{FinishReason: genai.FinishReasonSafety}},
			kind: "blocked",
		},
		{
			name: "quota",
			err:  fmt.Errorf("wrapped: %w", &googleapi.Error{Code: 429, Message: "quota"}),
			kind: "rate_limit",
		},
		{
			name: "invalid key",
			err:  &googleapi.Error{Code: 400, Message: "bad key", Body: `{"reason":"API_KEY_INVALID"}`},
			kind: "auth",
		},
		{
			name: "server error",
			err:  &googleapi.Error{Code: 500, Message: "boom"},
			kind: "api",
		},
		{
			name: "canceled",
			err:  context.Canceled,
			kind: "network",
		},
		{
			name: "other",
			err:  errors.New("mystery"),
			kind: "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := apierrors.Kind(mapSDKError(tt.err, "ep")); got != tt.kind {
				t.Errorf("Kind() = %q, want %q", got, tt.kind)
			}
		})
	}
}

func TestNewSDKClient_EmptyKey(t *testing.T) {
	if _, err := NewSDKClient(context.Background(), ""); !apierrors.IsConfigurationError(err) {
		t.Errorf("expected ConfigurationError, got %v", err)
	}
}
