package api

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	apierrors "github.com/diogo/cookieschat/internal/errors"
	"github.com/diogo/cookieschat/internal/models"
)

// SDKClient generates replies through the official Go SDK
type SDKClient struct {
	client   *genai.Client
	model    string
	settings models.GenerationSettings
	mu       sync.RWMutex
	closed   bool
}

// SDKOption configures an SDKClient
type SDKOption func(*SDKClient)

// WithSDKModel sets the model for the SDK client
func WithSDKModel(model string) SDKOption {
	return func(c *SDKClient) {
		if model != "" {
			c.model = model
		}
	}
}

// WithSDKSettings replaces the generation settings
func WithSDKSettings(settings models.GenerationSettings) SDKOption {
	return func(c *SDKClient) {
		c.settings = settings
	}
}

// NewSDKClient creates a client backed by the genai package
func NewSDKClient(ctx context.Context, apiKey string, opts ...SDKOption) (*SDKClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, apierrors.NewConfigurationError("api_key", "API key is empty", apierrors.ErrMissingAPIKey)
	}

	c := &SDKClient{
		model:    models.DefaultModel,
		settings: models.DefaultGenerationSettings(),
	}
	for _, opt := range opts {
		opt(c)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	c.client = client

	return c, nil
}

// GetModel returns the model name
func (c *SDKClient) GetModel() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model
}

// Generate sends the prior history plus prompt and returns the model's reply
func (c *SDKClient) Generate(ctx context.Context, history []models.Message, prompt string) (*models.Reply, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("prompt cannot be empty")
	}

	c.mu.RLock()
	closed := c.closed
	c.mu.RUnlock()
	if closed {
		return nil, fmt.Errorf("client is closed")
	}

	modelName := c.GetModel()
	model := c.client.GenerativeModel(modelName)
	applySettings(model, c.settings)

	contents, err := toContents(history)
	if err != nil {
		return nil, err
	}

	cs := model.StartChat()
	cs.History = contents

	resp, err := cs.SendMessage(ctx, genai.Text(prompt))
	if err != nil {
		return nil, mapSDKError(err, models.GenerateEndpoint(modelName))
	}

	return replyFromResponse(resp, modelName)
}

// Close releases the underlying connection
func (c *SDKClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.client.Close()
}

// applySettings copies the generation settings onto model
func applySettings(model *genai.GenerativeModel, settings models.GenerationSettings) {
	model.SetTemperature(settings.Temperature)
	model.SetTopP(settings.TopP)
	model.SetTopK(settings.TopK)
	model.SetMaxOutputTokens(settings.MaxOutputTokens)
	model.ResponseMIMEType = settings.ResponseMIMEType
	model.SafetySettings = toSafetySettings(settings.SafetySettings)
}

var harmCategories = map[models.HarmCategory]genai.HarmCategory{
	models.HarmCategoryHarassment:       genai.HarmCategoryHarassment,
	models.HarmCategoryHateSpeech:       genai.HarmCategoryHateSpeech,
	models.HarmCategorySexuallyExplicit: genai.HarmCategorySexuallyExplicit,
	models.HarmCategoryDangerousContent: genai.HarmCategoryDangerousContent,
}

var harmThresholds = map[models.HarmBlockThreshold]genai.HarmBlockThreshold{
	models.BlockLowAndAbove:    genai.HarmBlockLowAndAbove,
	models.BlockMediumAndAbove: genai.HarmBlockMediumAndAbove,
	models.BlockOnlyHigh:       genai.HarmBlockOnlyHigh,
	models.BlockNone:           genai.HarmBlockNone,
}

// toSafetySettings converts settings, skipping entries the SDK cannot express
func toSafetySettings(settings []models.SafetySetting) []*genai.SafetySetting {
	out := make([]*genai.SafetySetting, 0, len(settings))
	for _, s := range settings {
		category, ok := harmCategories[s.Category]
		if !ok {
			continue
		}
		threshold, ok := harmThresholds[s.Threshold]
		if !ok {
			continue
		}
		out = append(out, &genai.SafetySetting{Category: category, Threshold: threshold})
	}
	return out
}

// toContents converts the conversation history into SDK contents
func toContents(history []models.Message) ([]*genai.Content, error) {
	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		if !msg.Role.Valid() {
			return nil, fmt.Errorf("invalid role %q in history", msg.Role)
		}
		contents = append(contents, &genai.Content{
			Role:  string(msg.Role),
			Parts: []genai.Part{genai.Text(msg.Text)},
		})
	}
	return contents, nil
}

var finishReasons = map[genai.FinishReason]string{
	genai.FinishReasonStop:       "STOP",
	genai.FinishReasonMaxTokens:  "MAX_TOKENS",
	genai.FinishReasonSafety:     "SAFETY",
	genai.FinishReasonRecitation: "RECITATION",
	genai.FinishReasonOther:      "OTHER",
}

// replyFromResponse collects the text parts of every candidate
func replyFromResponse(resp *genai.GenerateContentResponse, modelName string) (*models.Reply, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, apierrors.NewParseError("no candidates in response", PathCandidates)
	}

	var candidates []models.Candidate
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		var sb strings.Builder
		for _, p := range cand.Content.Parts {
			if text, ok := p.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
		if sb.Len() == 0 {
			continue
		}
		candidates = append(candidates, models.Candidate{
			Text:         sb.String(),
			FinishReason: finishReasons[cand.FinishReason],
		})
	}

	if len(candidates) == 0 {
		return nil, apierrors.NewParseError("candidates carry no text", PathCandParts)
	}

	return &models.Reply{Model: modelName, Candidates: candidates}, nil
}

// mapSDKError converts SDK and transport errors into the local error types
func mapSDKError(err error, endpoint string) error {
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		reason := "SAFETY"
		if blocked.PromptFeedback != nil {
			reason = blocked.PromptFeedback.BlockReason.String()
		} else if blocked.Candidate != nil {
			if name, ok := finishReasons[blocked.Candidate.FinishReason]; ok {
				reason = name
			}
		}
		return apierrors.NewBlockedError(reason)
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch {
		case gerr.Code == 429:
			return apierrors.NewUsageLimitError(gerr.Message)
		case gerr.Code == 504:
			return apierrors.NewTimeoutError(gerr.Message)
		case strings.Contains(gerr.Body, "API_KEY_INVALID"):
			return apierrors.NewAuthError(gerr.Message)
		}
		return apierrors.NewAPIErrorWithBody(gerr.Code, endpoint, gerr.Message, truncate(gerr.Body, maxErrorBody))
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return apierrors.NewNetworkErrorWithEndpoint("generate content", endpoint, err)
	}

	return err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
