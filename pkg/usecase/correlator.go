package usecase

import (
	"context"

	"github.com/m-mizutani/ci-preview/pkg/domain/interfaces"
	"github.com/m-mizutani/ci-preview/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// RunCorrelator maps a workflow run to the message announcing it. An
// entry is recorded when the run starts and forgotten when it completes.
type RunCorrelator struct {
	store interfaces.KVStore[types.MessageID]
}

// NewRunCorrelator creates a RunCorrelator on top of a time-bounded store
func NewRunCorrelator(store interfaces.KVStore[types.MessageID]) *RunCorrelator {
	return &RunCorrelator{store: store}
}

// Record associates runID with the message announcing it
func (c *RunCorrelator) Record(ctx context.Context, runID types.RunID, messageID types.MessageID) error {
	if err := c.store.Put(ctx, runID.String(), messageID); err != nil {
		return goerr.Wrap(err, "failed to record run correlation",
			goerr.V("run_id", runID),
			goerr.V("message_id", messageID),
		)
	}
	return nil
}

// Resolve returns the message recorded for runID
func (c *RunCorrelator) Resolve(ctx context.Context, runID types.RunID) (types.MessageID, bool, error) {
	id, ok, err := c.store.Get(ctx, runID.String())
	if err != nil {
		return "", false, goerr.Wrap(err, "failed to resolve run correlation", goerr.V("run_id", runID))
	}
	return id, ok, nil
}

// Forget removes the correlation of runID
func (c *RunCorrelator) Forget(ctx context.Context, runID types.RunID) error {
	if err := c.store.Delete(ctx, runID.String()); err != nil {
		return goerr.Wrap(err, "failed to forget run correlation", goerr.V("run_id", runID))
	}
	return nil
}
