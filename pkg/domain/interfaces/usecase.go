package interfaces

import (
	"context"
	"net/http"

	"github.com/m-mizutani/ci-preview/pkg/domain/model"
)

// EventAuthenticator turns a raw webhook request into an authenticated event
type EventAuthenticator interface {
	Authenticate(ctx context.Context, body []byte, header http.Header) (*model.WebhookEvent, error)
}

// WebhookUseCase defines the interface for webhook event processing
type WebhookUseCase interface {
	// ProcessEvent processes an authenticated webhook event
	ProcessEvent(ctx context.Context, event *model.WebhookEvent) error
}
