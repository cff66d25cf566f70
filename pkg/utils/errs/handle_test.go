package errs_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/m-mizutani/ci-preview/pkg/utils/errs"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
)

func TestHandle(t *testing.T) {
	t.Run("logs error with values", func(t *testing.T) {
		var buf bytes.Buffer
		ctx := ctxlog.With(context.Background(), slog.New(slog.NewTextHandler(&buf, nil)))

		errs.Handle(ctx, "failed to edit message", goerr.New("boom", goerr.V("run_id", 42)))

		out := buf.String()
		gt.True(t, strings.Contains(out, "failed to edit message"))
		gt.True(t, strings.Contains(out, "boom"))
	})

	t.Run("nil error is ignored", func(t *testing.T) {
		var buf bytes.Buffer
		ctx := ctxlog.With(context.Background(), slog.New(slog.NewTextHandler(&buf, nil)))

		errs.Handle(ctx, "nothing", nil)
		gt.Equal(t, buf.String(), "")
	})
}
