package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/ci-preview/pkg/cli/config"
	githubcontroller "github.com/m-mizutani/ci-preview/pkg/controller/github"
	controller "github.com/m-mizutani/ci-preview/pkg/controller/http"
	"github.com/m-mizutani/ci-preview/pkg/infra/repoauth"
	"github.com/m-mizutani/ci-preview/pkg/usecase"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		serverCfg    config.Server
		cacheCfg     config.Cache
		emojiCfg     config.Emoji
		githubCfg    config.GitHub
		slackCfg     config.Slack
		repoCfg      config.RepoConfig
		sentryCfg    config.Sentry
		firestoreCfg config.Firestore
	)

	var flags []cli.Flag
	flags = append(flags, serverCfg.Flags()...)
	flags = append(flags, cacheCfg.Flags()...)
	flags = append(flags, emojiCfg.Flags()...)
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)
	flags = append(flags, firestoreCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting ci-preview server",
				slog.String("addr", serverCfg.Addr()),
				slog.String("config", repoCfg.Path),
				slog.Any("github", githubCfg),
				slog.Any("slack", slackCfg),
			)

			flush, err := sentryCfg.Configure()
			if err != nil {
				return err
			}
			defer flush()

			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			// Load repository configuration and follow changes
			repoConfigs, err := repoauth.New(repoCfg.Path)
			if err != nil {
				return err
			}
			watchDone, err := repoConfigs.Watch(ctx)
			if err != nil {
				return err
			}

			// Create clients
			githubClient, err := githubCfg.NewClient()
			if err != nil {
				return err
			}
			slackClient, err := slackCfg.NewClient(cacheCfg.TTL())
			if err != nil {
				return err
			}

			caches, err := newStores(ctx, &cacheCfg, &firestoreCfg)
			if err != nil {
				return err
			}
			defer caches.close()

			// Create use cases
			auth := githubcontroller.NewAuthenticator(repoConfigs, githubClient)
			composer := usecase.NewComposer(githubClient, slackClient, emojiCfg.Emojis())
			webhookUC := usecase.NewWebhook(
				usecase.NewCommitCache(caches.commits),
				usecase.NewRunCorrelator(caches.runs),
				composer,
				slackClient,
			)

			// Create HTTP server with options
			server, err := controller.NewServer(
				ctx,
				auth,
				webhookUC,
				controller.WithAddr(serverCfg.Addr()),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr()))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					serverErr <- err
				}
			}()

			// Wait for interrupt signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			case err := <-serverErr:
				return goerr.Wrap(err, "HTTP server failed", goerr.V("addr", serverCfg.Addr()))
			}

			// Graceful shutdown
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			cancel()
			<-watchDone

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
