package cli

import (
	"context"

	"github.com/m-mizutani/ci-preview/pkg/cli/config"
	"github.com/m-mizutani/ci-preview/pkg/domain/interfaces"
	"github.com/m-mizutani/ci-preview/pkg/domain/model"
	"github.com/m-mizutani/ci-preview/pkg/domain/types"
	firestoreinfra "github.com/m-mizutani/ci-preview/pkg/infra/firestore"
	"github.com/m-mizutani/ci-preview/pkg/infra/memory"
	"github.com/m-mizutani/ctxlog"
)

type stores struct {
	commits interfaces.KVStore[[]model.CommitRecord]
	runs    interfaces.KVStore[types.MessageID]
	close   func()
}

// newStores selects the Firestore backend when configured, otherwise
// in-memory stores with background sweepers bound to ctx
func newStores(ctx context.Context, cacheCfg *config.Cache, firestoreCfg *config.Firestore) (*stores, error) {
	logger := ctxlog.From(ctx)

	if firestoreCfg.Enabled() {
		client, err := firestoreinfra.NewClient(ctx, firestoreCfg.ProjectID, firestoreCfg.DatabaseID)
		if err != nil {
			return nil, err
		}

		logger.Info("Using Firestore cache",
			"project_id", firestoreCfg.ProjectID,
			"database_id", firestoreCfg.DatabaseID,
			"ttl", cacheCfg.TTL(),
		)

		return &stores{
			commits: firestoreinfra.New[[]model.CommitRecord](client, firestoreCfg.Collection("commits"), cacheCfg.TTL()),
			runs:    firestoreinfra.New[types.MessageID](client, firestoreCfg.Collection("runs"), cacheCfg.TTL()),
			close: func() {
				if err := client.Close(); err != nil {
					logger.Warn("Failed to close firestore client", "error", err)
				}
			},
		}, nil
	}

	commits := memory.New[[]model.CommitRecord](cacheCfg.TTL())
	runs := memory.New[types.MessageID](cacheCfg.TTL())

	sweepCtx, cancel := context.WithCancel(ctx)
	commitsDone := commits.StartSweeper(sweepCtx, "commit-cache-sweeper", cacheCfg.SweepInterval)
	runsDone := runs.StartSweeper(sweepCtx, "run-correlation-sweeper", cacheCfg.SweepInterval)

	logger.Info("Using in-memory cache", "ttl", cacheCfg.TTL(), "sweep_interval", cacheCfg.SweepInterval)

	return &stores{
		commits: commits,
		runs:    runs,
		close: func() {
			cancel()
			<-commitsDone
			<-runsDone
		},
	}, nil
}
