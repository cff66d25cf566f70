package model

import (
	"slices"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"
)

// PreviewSettingsPath is the file read from the repository at the triggering ref
const PreviewSettingsPath = ".ci-preview.yml"

// PreviewSettings is the per-repository notification setting. It is
// fetched for every event and lives only while that event is processed.
type PreviewSettings struct {
	MinecraftVersion string                `yaml:"minecraft_version"`
	Workflows        []string              `yaml:"workflows"`
	ModVersion       VersionRule           `yaml:"mod_version"`
	Buttons          map[string]ButtonSpec `yaml:"buttons"`
}

// VersionRule describes how to scrape a version string from a file
type VersionRule struct {
	Path   string  `yaml:"path"`
	Regex  string  `yaml:"regex"`
	Group  int     `yaml:"group"`
	Format *string `yaml:"format,omitempty"`
}

// ButtonStyle is the visual style of a button
type ButtonStyle string

const (
	ButtonStylePrimary   ButtonStyle = "primary"
	ButtonStyleSecondary ButtonStyle = "secondary"
	ButtonStyleSuccess   ButtonStyle = "success"
	ButtonStyleDanger    ButtonStyle = "danger"
	ButtonStyleLink      ButtonStyle = "link"
)

// Valid reports whether s is a known style
func (s ButtonStyle) Valid() bool {
	switch s {
	case ButtonStylePrimary, ButtonStyleSecondary, ButtonStyleSuccess, ButtonStyleDanger, ButtonStyleLink:
		return true
	default:
		return false
	}
}

// ButtonSpec is a button declared in the repository settings
type ButtonSpec struct {
	Style    ButtonStyle `yaml:"style"`
	URL      *string     `yaml:"url,omitempty"`
	Label    *string     `yaml:"label,omitempty"`
	Emoji    *string     `yaml:"emoji,omitempty"`
	Disabled bool        `yaml:"disabled"`
}

// ParsePreviewSettings decodes and validates a .ci-preview.yml document
func ParsePreviewSettings(data []byte) (*PreviewSettings, error) {
	var settings PreviewSettings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, goerr.Wrap(err, "failed to parse preview settings")
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Validate checks required fields and button styles
func (x *PreviewSettings) Validate() error {
	if x.ModVersion.Path == "" {
		return goerr.New("mod_version.path is required")
	}
	if x.ModVersion.Regex == "" {
		return goerr.New("mod_version.regex is required")
	}
	if x.ModVersion.Group < 0 {
		return goerr.New("mod_version.group must not be negative", goerr.V("group", x.ModVersion.Group))
	}
	for id, button := range x.Buttons {
		if !button.Style.Valid() {
			return goerr.New("unknown button style", goerr.V("button", id), goerr.V("style", button.Style))
		}
	}
	return nil
}

// Tracks reports whether the workflow file at path is opted into notifications
func (x *PreviewSettings) Tracks(path string) bool {
	return slices.Contains(x.Workflows, path)
}

// ButtonIDs returns configured button ids in a stable order
func (x *PreviewSettings) ButtonIDs() []string {
	ids := make([]string, 0, len(x.Buttons))
	for id := range x.Buttons {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
