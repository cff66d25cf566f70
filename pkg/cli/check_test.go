package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/ci-preview/pkg/domain/model"
)

type mockRepoClient struct {
	files map[string]string
	refs  []string
}

func (m *mockRepoClient) FetchFileAtRef(ctx context.Context, owner, repo, path, ref string) ([]byte, error) {
	m.refs = append(m.refs, ref)
	content, ok := m.files[path]
	if !ok {
		return nil, nil
	}
	return []byte(content), nil
}

func (m *mockRepoClient) ListWorkflowJobs(ctx context.Context, owner, repo string, runID int64) ([]*github.WorkflowJob, error) {
	return nil, nil
}

const previewYAML = `
minecraft_version: 1.20.1
workflows:
  - .github/workflows/build.yml
mod_version:
  path: gradle.properties
  regex: 'mod_version=(\S+)'
  group: 1
  format: '${mod_version}+${minecraft_version}'
buttons:
  modrinth:
    style: link
    url: https://modrinth.com/mod/example/version/${version}
`

func init() {
	color.NoColor = true
}

func TestWriteRepoConfig(t *testing.T) {
	var buf bytes.Buffer
	writeRepoConfig(&buf, "config.yml", map[string]*model.RepoAuth{
		"https://github.com/example/mod": {
			RepositoryURL: "https://github.com/example/mod",
			WebhookSecret: "super-secret-value",
			ChannelID:     "C0001",
		},
	})

	out := buf.String()
	gt.String(t, out).Contains("config.yml: 1 repositories")
	gt.String(t, out).Contains("https://github.com/example/mod")
	gt.String(t, out).Contains("channel: C0001")
	gt.String(t, out).Contains("(18 chars)")
	gt.False(t, strings.Contains(out, "super-secret-value"))
}

func TestCheckPreviewSettings(t *testing.T) {
	t.Run("valid settings", func(t *testing.T) {
		client := &mockRepoClient{files: map[string]string{
			model.PreviewSettingsPath: previewYAML,
			"gradle.properties":       "mod_version=2.0.0\n",
		}}

		var buf bytes.Buffer
		err := checkPreviewSettings(context.Background(), &buf, client, "example", "mod", "main")
		gt.NoError(t, err)

		out := buf.String()
		gt.String(t, out).Contains("example/mod@main")
		gt.String(t, out).Contains("workflows:         .github/workflows/build.yml")
		gt.String(t, out).Contains("buttons:           modrinth")
		gt.String(t, out).Contains("version from gradle.properties: 2.0.0+1.20.1")
		gt.Equal(t, client.refs, []string{"main", "main"})
	})

	t.Run("settings missing", func(t *testing.T) {
		client := &mockRepoClient{files: map[string]string{}}

		var buf bytes.Buffer
		err := checkPreviewSettings(context.Background(), &buf, client, "example", "mod", "")
		gt.Error(t, err)
		gt.String(t, buf.String()).Contains("(default branch)")
	})

	t.Run("version not found", func(t *testing.T) {
		client := &mockRepoClient{files: map[string]string{
			model.PreviewSettingsPath: previewYAML,
		}}

		var buf bytes.Buffer
		err := checkPreviewSettings(context.Background(), &buf, client, "example", "mod", "main")
		gt.Error(t, err)
		gt.String(t, buf.String()).Contains("version from gradle.properties")
	})
}
