package source

// snapshot.go - read-only architecture snapshot exchanged between sources
// and the model builder, plus its YAML file form.

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Snapshot is a complete copy of one source's architecture data.
// Slice order is declaration order and is preserved into the output.
type Snapshot struct {
	Workspace     WorkspaceRecord      `yaml:"workspace"`
	Teams         []TeamRecord         `yaml:"teams,omitempty"`
	Platforms     []PlatformRecord     `yaml:"platforms,omitempty"`
	Relationships []RelationshipRecord `yaml:"relationships,omitempty"`
	Views         *ViewsRecord         `yaml:"views,omitempty"`
}

// WorkspaceRecord names the generated workspace. Empty fields fall back to
// settings.
type WorkspaceRecord struct {
	Name        string `yaml:"name,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// TeamRecord is one team.
type TeamRecord struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Category    string `yaml:"category,omitempty"`
}

// PlatformRecord is one platform and its applications.
type PlatformRecord struct {
	ID           string              `yaml:"id"`
	Name         string              `yaml:"name"`
	Description  string              `yaml:"description,omitempty"`
	ViewKey      string              `yaml:"view_key,omitempty"`
	Applications []ApplicationRecord `yaml:"applications,omitempty"`
}

// ApplicationRecord is one application inside a platform.
type ApplicationRecord struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Technology  string `yaml:"technology,omitempty"`
}

// RelationshipRecord is one directed edge between declared ids.
type RelationshipRecord struct {
	ID            string `yaml:"id"`
	SourceID      string `yaml:"source"`
	DestinationID string `yaml:"destination"`
	Label         string `yaml:"label"`
	Technology    string `yaml:"technology,omitempty"`
	Style         string `yaml:"style,omitempty"`
}

// ViewsRecord lets a source restrict which platforms get views and whether
// a landscape view is emitted. Nil means "use settings".
type ViewsRecord struct {
	Landscape bool     `yaml:"landscape"`
	Platforms []string `yaml:"platforms,omitempty"`
}

// ReadFile loads a YAML snapshot from path.
func ReadFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	var s Snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	return &s, nil
}

// Marshal renders s as YAML.
func Marshal(s *Snapshot) ([]byte, error) {
	out, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return out, nil
}

// WriteFile writes s to path as YAML, creating parent directories.
func WriteFile(path string, s *Snapshot) error {
	data, err := Marshal(s)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// file provider
// ---------------------------------------------------------------------------

// FileProvider reads a snapshot previously written by "c4c4 snapshot" or
// authored by hand. A relative path is read from Root.
type FileProvider struct {
	Root string
}

func (FileProvider) Name() string { return "file" }

func (FileProvider) Configure() []ConfigQuestion {
	return []ConfigQuestion{
		{Key: "path", Prompt: "Snapshot YAML path", Type: "text", Default: "model.yaml"},
	}
}

func (p FileProvider) Fetch(ctx context.Context, config map[string]string) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := config["path"]
	if path == "" {
		return nil, fmt.Errorf("file source: missing %q config key", "path")
	}
	if !filepath.IsAbs(path) && p.Root != "" {
		path = filepath.Join(p.Root, path)
	}
	return ReadFile(path)
}
