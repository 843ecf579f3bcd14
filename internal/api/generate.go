package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/cookieschat/internal/errors"
	"github.com/diogo/cookieschat/internal/models"
)

const (
	// maxErrorBody limits how much of a failed response is kept for diagnostics
	maxErrorBody = 4096
	// maxResponseBody limits how much of a successful response is read
	maxResponseBody = 8 << 20
)

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature      float32 `json:"temperature"`
	TopP             float32 `json:"topP"`
	TopK             int32   `json:"topK"`
	MaxOutputTokens  int32   `json:"maxOutputTokens"`
	ResponseMIMEType string  `json:"responseMimeType,omitempty"`
}

type generateRequest struct {
	Contents         []content              `json:"contents"`
	GenerationConfig generationConfig       `json:"generationConfig"`
	SafetySettings   []models.SafetySetting `json:"safetySettings,omitempty"`
}

// Generate sends the prior history plus prompt and returns the model's reply
func (c *Client) Generate(ctx context.Context, history []models.Message, prompt string) (*models.Reply, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("prompt cannot be empty")
	}
	if c.IsClosed() {
		return nil, fmt.Errorf("client is closed")
	}

	model := c.GetModel()
	endpoint := c.endpoint(model)

	payload, err := buildPayload(history, prompt, c.settings)
	if err != nil {
		return nil, fmt.Errorf("failed to build payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, apierrors.NewNetworkErrorWithEndpoint("generate content", endpoint, ctxErr)
		}
		return nil, apierrors.NewNetworkErrorWithEndpoint("generate content", endpoint, err)
	}
	defer func() {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	if resp.StatusCode != http.StatusOK {
		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, handleErrorResponse(resp.StatusCode, endpoint, errorBody)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, apierrors.NewNetworkErrorWithEndpoint("read response", endpoint, err)
	}

	return parseResponse(body, model)
}

// buildPayload creates the generateContent request body
func buildPayload(history []models.Message, prompt string, settings models.GenerationSettings) ([]byte, error) {
	contents := make([]content, 0, len(history)+1)
	for _, msg := range history {
		if !msg.Role.Valid() {
			return nil, fmt.Errorf("invalid role %q in history", msg.Role)
		}
		contents = append(contents, content{
			Role:  string(msg.Role),
			Parts: []part{{Text: msg.Text}},
		})
	}
	contents = append(contents, content{
		Role:  string(models.RoleUser),
		Parts: []part{{Text: prompt}},
	})

	return json.Marshal(generateRequest{
		Contents: contents,
		GenerationConfig: generationConfig{
			Temperature:      settings.Temperature,
			TopP:             settings.TopP,
			TopK:             settings.TopK,
			MaxOutputTokens:  settings.MaxOutputTokens,
			ResponseMIMEType: settings.ResponseMIMEType,
		},
		SafetySettings: settings.SafetySettings,
	})
}

// parseResponse extracts the candidates from a generateContent response
func parseResponse(body []byte, modelName string) (*models.Reply, error) {
	if !gjson.ValidBytes(body) {
		return nil, apierrors.NewParseError("response is not valid JSON", "")
	}

	parsed := gjson.ParseBytes(body)

	if reason := parsed.Get(PathPromptBlock); reason.Exists() && reason.String() != "" {
		return nil, apierrors.NewBlockedError(reason.String())
	}

	if version := parsed.Get(PathModelVersion).String(); version != "" {
		modelName = version
	}

	candidatesResult := parsed.Get(PathCandidates)
	if !candidatesResult.IsArray() || len(candidatesResult.Array()) == 0 {
		return nil, apierrors.NewParseError("no candidates in response", PathCandidates)
	}

	var candidates []models.Candidate
	var blockedReason string
	candidatesResult.ForEach(func(_, cand gjson.Result) bool {
		var sb strings.Builder
		for _, text := range cand.Get(PathCandParts).Array() {
			sb.WriteString(text.String())
		}
		finish := cand.Get(PathCandFinish).String()

		if sb.Len() == 0 {
			if blockedFinishReasons[finish] && blockedReason == "" {
				blockedReason = finish
			}
			return true
		}

		candidates = append(candidates, models.Candidate{
			Text:         sb.String(),
			FinishReason: finish,
		})
		return true
	})

	if len(candidates) == 0 {
		if blockedReason != "" {
			return nil, apierrors.NewBlockedError(blockedReason)
		}
		return nil, apierrors.NewParseError("candidates carry no text", PathCandParts)
	}

	return &models.Reply{
		Model:      modelName,
		Candidates: candidates,
		Chosen:     0,
	}, nil
}

// handleErrorResponse maps a non-200 response onto the error types
func handleErrorResponse(status int, endpoint string, body []byte) error {
	parsed := gjson.ParseBytes(body)
	message := parsed.Get(PathErrorMessage).String()
	if message == "" {
		message = "generate content failed"
	}

	switch {
	case status == http.StatusTooManyRequests:
		return apierrors.NewUsageLimitError(message)
	case parsed.Get(PathErrorKeyReason).Exists():
		return apierrors.NewAuthError(message)
	case status == http.StatusGatewayTimeout:
		return apierrors.NewTimeoutError(message)
	}

	apiErr := apierrors.NewAPIErrorWithBody(status, endpoint, message, string(body))
	apiErr.Status = parsed.Get(PathErrorStatus).String()
	return apiErr
}
