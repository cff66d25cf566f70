package http_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	controller "github.com/m-mizutani/ci-preview/pkg/controller/http"
	"github.com/m-mizutani/ci-preview/pkg/domain/model"
	"github.com/m-mizutani/ci-preview/pkg/domain/types"
)

type mockAuthenticator struct {
	authenticateFunc func(ctx context.Context, body []byte, header http.Header) (*model.WebhookEvent, error)
}

func (m *mockAuthenticator) Authenticate(ctx context.Context, body []byte, header http.Header) (*model.WebhookEvent, error) {
	if m.authenticateFunc != nil {
		return m.authenticateFunc(ctx, body, header)
	}
	return &model.WebhookEvent{ID: "delivery-1", Type: model.EventTypePush}, nil
}

type mockWebhookUseCase struct {
	processEventFunc func(ctx context.Context, event *model.WebhookEvent) error
	events           []*model.WebhookEvent
}

func (m *mockWebhookUseCase) ProcessEvent(ctx context.Context, event *model.WebhookEvent) error {
	m.events = append(m.events, event)
	if m.processEventFunc != nil {
		return m.processEventFunc(ctx, event)
	}
	return nil
}

func newServer(t *testing.T, auth *mockAuthenticator, uc *mockWebhookUseCase) http.Handler {
	t.Helper()
	server, err := controller.NewServer(context.Background(), auth, uc)
	gt.NoError(t, err)
	return server.Handler
}

func postWebhook(handler http.Handler, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, controller.WebhookPath, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Event", "push")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestWebhookHandler_Success(t *testing.T) {
	var gotBody []byte
	var gotEvent string
	auth := &mockAuthenticator{
		authenticateFunc: func(ctx context.Context, body []byte, header http.Header) (*model.WebhookEvent, error) {
			gotBody = body
			gotEvent = header.Get("X-GitHub-Event")
			return &model.WebhookEvent{ID: "delivery-1", Type: model.EventTypePush}, nil
		},
	}
	uc := &mockWebhookUseCase{}

	w := postWebhook(newServer(t, auth, uc), []byte(`{"ref":"refs/heads/main"}`))

	gt.Equal(t, w.Code, http.StatusOK)
	gt.Equal(t, w.Body.String(), "ok")
	gt.Equal(t, string(gotBody), `{"ref":"refs/heads/main"}`)
	gt.Equal(t, gotEvent, "push")
	gt.A(t, uc.events).Length(1)
	gt.Equal(t, uc.events[0].ID, "delivery-1")
}

func TestWebhookHandler_Errors(t *testing.T) {
	tests := []struct {
		name        string
		authErr     error
		processErr  error
		wantMessage string
		wantProcess bool
	}{
		{
			name:        "invalid signature",
			authErr:     goerr.Wrap(types.ErrInvalidSignature, "signature mismatch"),
			wantMessage: "invalid signature",
		},
		{
			name:        "unknown event type",
			authErr:     goerr.Wrap(types.ErrInvalidHeader, "unknown event type"),
			wantMessage: "X-GitHub-Event header is invalid",
		},
		{
			name:        "run correlation miss",
			processErr:  goerr.Wrap(types.ErrCannotFindMessage, "no message recorded for run"),
			wantMessage: "cannot find message",
			wantProcess: true,
		},
		{
			name:        "multi line error is flattened",
			processErr:  errors.New("first line\nsecond line"),
			wantMessage: "first line second line",
			wantProcess: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &mockAuthenticator{}
			if tt.authErr != nil {
				auth.authenticateFunc = func(ctx context.Context, body []byte, header http.Header) (*model.WebhookEvent, error) {
					return nil, tt.authErr
				}
			}
			uc := &mockWebhookUseCase{
				processEventFunc: func(ctx context.Context, event *model.WebhookEvent) error {
					return tt.processErr
				},
			}

			w := postWebhook(newServer(t, auth, uc), []byte(`{}`))

			gt.Equal(t, w.Code, http.StatusBadRequest)
			gt.String(t, w.Body.String()).Contains(tt.wantMessage)
			gt.False(t, strings.Contains(w.Body.String(), "\n"))
			gt.Equal(t, len(uc.events) == 1, tt.wantProcess)
		})
	}
}

func TestWebhookHandler_BodyTooLarge(t *testing.T) {
	uc := &mockWebhookUseCase{}
	handler := newServer(t, &mockAuthenticator{}, uc)

	w := postWebhook(handler, bytes.Repeat([]byte("a"), controller.MaxBodySize+1))

	gt.Equal(t, w.Code, http.StatusBadRequest)
	gt.A(t, uc.events).Length(0)
}

func TestWebhookHandler_MethodNotAllowed(t *testing.T) {
	handler := newServer(t, &mockAuthenticator{}, &mockWebhookUseCase{})

	req := httptest.NewRequest(http.MethodGet, controller.WebhookPath, nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	gt.Equal(t, w.Code, http.StatusMethodNotAllowed)
}
