package api

import (
	"context"
	"fmt"

	apierrors "github.com/diogo/cookieschat/internal/errors"
	"github.com/diogo/cookieschat/internal/models"
)

// Generator is the generation service a chat session talks to. It receives
// the prior turns plus the new user turn and returns the model's reply.
type Generator interface {
	Generate(ctx context.Context, history []models.Message, prompt string) (*models.Reply, error)
	Close() error
}

// Backend names accepted by NewGenerator
const (
	BackendREST = "rest"
	BackendSDK  = "sdk"
)

// NewGenerator builds the generator for backend
func NewGenerator(ctx context.Context, backend, apiKey, model string) (Generator, error) {
	switch backend {
	case BackendREST, "":
		client, err := NewClient(apiKey, WithModel(model))
		if err != nil {
			return nil, err
		}
		return client, nil
	case BackendSDK:
		client, err := NewSDKClient(ctx, apiKey, WithSDKModel(model))
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, apierrors.NewConfigurationError("backend", fmt.Sprintf("unknown backend %q", backend), nil)
	}
}
