package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/ci-preview/pkg/cli/config"
	"github.com/m-mizutani/ci-preview/pkg/domain/interfaces"
	"github.com/m-mizutani/ci-preview/pkg/domain/model"
	"github.com/m-mizutani/ci-preview/pkg/infra/repoauth"
	"github.com/m-mizutani/ci-preview/pkg/usecase"
)

var (
	okMark   = color.New(color.FgGreen).Sprint("✔")
	ngMark   = color.New(color.FgRed).Sprint("✘")
	keyColor = color.New(color.FgCyan)
)

func cmdCheck() *cli.Command {
	var (
		repoCfg   config.RepoConfig
		githubCfg config.GitHub
		repo      string
		ref       string
	)

	flags := append(repoCfg.Flags(), githubCfg.Flags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:        "repo",
			Usage:       "Also validate .ci-preview.yml of this repository (owner/name)",
			Destination: &repo,
		},
		&cli.StringFlag{
			Name:        "ref",
			Usage:       "Branch or commit to read .ci-preview.yml from. Defaults to the default branch",
			Destination: &ref,
		},
	)

	return &cli.Command{
		Name:  "check",
		Usage: "Validate the repository configuration and a repository's preview settings",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			w := io.Writer(os.Stdout)

			entries, err := repoauth.Load(repoCfg.Path)
			if err != nil {
				fmt.Fprintf(w, "%s %s\n", ngMark, repoCfg.Path)
				return err
			}
			writeRepoConfig(w, repoCfg.Path, entries)

			if repo == "" {
				return nil
			}

			owner, name, ok := strings.Cut(repo, "/")
			if !ok || owner == "" || name == "" {
				return goerr.New("repo must be in owner/name form", goerr.V("repo", repo))
			}

			client, err := githubCfg.NewClient()
			if err != nil {
				return err
			}

			return checkPreviewSettings(ctx, w, client, owner, name, ref)
		},
	}
}

func writeRepoConfig(w io.Writer, path string, entries map[string]*model.RepoAuth) {
	fmt.Fprintf(w, "%s %s: %d repositories\n", okMark, path, len(entries))

	urls := make([]string, 0, len(entries))
	for url := range entries {
		urls = append(urls, url)
	}
	sort.Strings(urls)

	for _, url := range urls {
		entry := entries[url]
		fmt.Fprintf(w, "  %s\n", keyColor.Sprint(url))
		fmt.Fprintf(w, "    channel: %s\n", entry.ChannelID)
		fmt.Fprintf(w, "    secret:  %s\n", redact(entry.WebhookSecret))
	}
}

func checkPreviewSettings(ctx context.Context, w io.Writer, client interfaces.RepoClient, owner, name, ref string) error {
	target := fmt.Sprintf("%s/%s@%s", owner, name, refOrDefault(ref))

	data, err := client.FetchFileAtRef(ctx, owner, name, model.PreviewSettingsPath, ref)
	if err != nil {
		fmt.Fprintf(w, "%s %s %s\n", ngMark, target, model.PreviewSettingsPath)
		return err
	}
	if data == nil {
		fmt.Fprintf(w, "%s %s %s\n", ngMark, target, model.PreviewSettingsPath)
		return goerr.New("preview settings file not found", goerr.V("target", target))
	}

	settings, err := model.ParsePreviewSettings(data)
	if err != nil {
		fmt.Fprintf(w, "%s %s %s\n", ngMark, target, model.PreviewSettingsPath)
		return err
	}
	fmt.Fprintf(w, "%s %s %s\n", okMark, target, model.PreviewSettingsPath)
	fmt.Fprintf(w, "    minecraft_version: %s\n", settings.MinecraftVersion)
	fmt.Fprintf(w, "    workflows:         %s\n", strings.Join(settings.Workflows, ", "))
	fmt.Fprintf(w, "    buttons:           %s\n", strings.Join(settings.ButtonIDs(), ", "))

	// Resolve the version the same way a notification does
	composer := usecase.NewComposer(client, nil, model.Emojis{})
	version, err := composer.ResolveVersion(ctx, &usecase.ComposeInput{
		Event: &model.WebhookEvent{
			Repository: &github.Repository{
				Name:  github.Ptr(name),
				Owner: &github.User{Login: github.Ptr(owner)},
			},
			Branch: ref,
		},
		Run:      &github.WorkflowRun{RunNumber: github.Ptr(0)},
		Settings: settings,
	})
	if err != nil {
		fmt.Fprintf(w, "%s version from %s\n", ngMark, settings.ModVersion.Path)
		return err
	}
	fmt.Fprintf(w, "%s version from %s: %s\n", okMark, settings.ModVersion.Path, version.Formatted)

	return nil
}

func refOrDefault(ref string) string {
	if ref == "" {
		return "(default branch)"
	}
	return ref
}

func redact(secret string) string {
	return fmt.Sprintf("******** (%d chars)", len(secret))
}
