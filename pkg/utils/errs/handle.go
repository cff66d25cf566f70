// Package errs reports errors that are handled but should not go unnoticed.
package errs

import (
	"context"
	"errors"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// Handle logs err and sends it to Sentry when a Sentry client is configured
func Handle(ctx context.Context, msg string, err error) {
	if err == nil {
		return
	}

	ctxlog.From(ctx).Error(msg, "error", err)

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	if hub.Client() == nil {
		return
	}

	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("handler", msg)
		var gerr *goerr.Error
		if errors.As(err, &gerr) {
			scope.SetContext("values", sentry.Context(gerr.Values()))
		}
		hub.CaptureException(err)
	})
}
