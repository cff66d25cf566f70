package http

import (
	"context"
	"io"
	"net/http"

	"github.com/m-mizutani/ci-preview/pkg/domain/interfaces"
	"github.com/m-mizutani/ci-preview/pkg/domain/types"
	"github.com/m-mizutani/ci-preview/pkg/utils/errs"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// MaxBodySize is the largest webhook payload accepted
const MaxBodySize = 25 << 20

// WebhookHandler handles GitHub webhooks
type WebhookHandler struct {
	auth      interfaces.EventAuthenticator
	webhookUC interfaces.WebhookUseCase
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(auth interfaces.EventAuthenticator, webhookUC interfaces.WebhookUseCase) *WebhookHandler {
	return &WebhookHandler{
		auth:      auth,
		webhookUC: webhookUC,
	}
}

// Handle processes webhook requests. Any failure is answered with 400
// and a single line describing it.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := ctxlog.From(ctx)

	// Read payload
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodySize+1))
	if err != nil {
		logger.Warn("Failed to read request body", "error", err)
		writeError(w, goerr.Wrap(types.ErrInvalidBody, "failed to read request body", goerr.V("cause", err.Error())), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if len(body) > MaxBodySize {
		writeError(w, goerr.Wrap(types.ErrInvalidBody, "request body too large", goerr.V("limit", MaxBodySize)), http.StatusBadRequest)
		return
	}

	// Authenticate delivery
	event, err := h.auth.Authenticate(ctx, body, r.Header)
	if err != nil {
		h.report(ctx, "Rejected webhook delivery", err)
		writeError(w, err, http.StatusBadRequest)
		return
	}

	logger = logger.With("delivery", event.ID, "event", event.Type)
	ctx = ctxlog.With(ctx, logger)

	// Process event via UseCase
	if err := h.webhookUC.ProcessEvent(ctx, event); err != nil {
		h.report(ctx, "Failed to process webhook event", err)
		writeError(w, err, http.StatusBadRequest)
		return
	}

	// Success response
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok")); err != nil {
		logger.Error("Failed to write success response", "error", err)
	}
}

func (h *WebhookHandler) report(ctx context.Context, msg string, err error) {
	if types.IsClientError(err) {
		ctxlog.From(ctx).Warn(msg, "error", err)
		return
	}
	errs.Handle(ctx, msg, err)
}
