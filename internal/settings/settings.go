// Package settings loads c4c4 configuration from <root>/.c4c4/settings.yaml.
//
// Layering, lowest to highest: built-in defaults, the settings file,
// <root>/.env, then process environment variables.
//
// Layout:
//
//	<root>/.c4c4/settings.yaml   # workspace, output, source and views
//	<root>/.env                  # optional secrets, e.g. LEANIX_API_TOKEN
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/synchrotron/c4c4/internal/dsl"
	"github.com/synchrotron/c4c4/internal/leanix"
	"github.com/synchrotron/c4c4/internal/model"
	"github.com/synchrotron/c4c4/internal/source"
)

const (
	Dir  = ".c4c4"
	File = "settings.yaml"

	DefaultOutput = "dsl/c4-core-workspace.dsl"
	DefaultSource = "static"
)

// Environment variables that override the settings file.
const (
	EnvOutput     = "C4C4_OUTPUT"
	EnvSource     = "C4C4_SOURCE"
	EnvAPIToken   = "LEANIX_API_TOKEN"
	EnvGraphQLURL = "LEANIX_GRAPHQL_URL"
	EnvPlatformID = "LEANIX_PLATFORM_ID"
)

// Settings holds c4c4 configuration.
type Settings struct {
	Workspace Workspace `yaml:"workspace"`
	Output    string    `yaml:"output" validate:"required"`
	Source    string    `yaml:"source" validate:"required"`
	// Sources maps a source name to its configuration keys.
	Sources map[string]map[string]string `yaml:"sources,omitempty"`
	Quotes  string                       `yaml:"quotes,omitempty" validate:"omitempty,oneof=escape reject"`
	Views   Views                        `yaml:"views"`
}

// Workspace names the generated document.
type Workspace struct {
	Name        string `yaml:"name" validate:"required"`
	Description string `yaml:"description"`
}

// Views configures the views block of the generated document.
type Views struct {
	Terminology Terminology `yaml:"terminology"`
	Theme       string      `yaml:"theme" validate:"omitempty,url"`
	Logo        string      `yaml:"logo" validate:"omitempty,url"`
	FontName    string      `yaml:"font_name" validate:"required_with=FontURL"`
	FontURL     string      `yaml:"font_url" validate:"omitempty,url"`
	Landscape   bool        `yaml:"landscape"`
	// Platforms limits per-platform views; empty means all platforms.
	Platforms []string `yaml:"platforms,omitempty" validate:"dive,required"`
}

// Terminology renames the person, softwareSystem and container kinds.
type Terminology struct {
	Team        string `yaml:"team"`
	Platform    string `yaml:"platform"`
	Application string `yaml:"application"`
}

// Path returns the settings file path under root.
func Path(root string) string {
	return filepath.Join(root, Dir, File)
}

// Default returns the Channel 4 Core defaults.
func Default() *Settings {
	vc := dsl.DefaultViewConfig()
	return &Settings{
		Workspace: Workspace{Name: "Channel 4 Core", Description: "Base Line Model"},
		Output:    DefaultOutput,
		Source:    DefaultSource,
		Quotes:    string(dsl.QuoteEscape),
		Views: Views{
			Terminology: Terminology{Team: "Team", Platform: "Platform", Application: "Application"},
			Theme:       vc.ThemeURL,
			Logo:        vc.LogoURL,
			FontName:    vc.FontName,
			FontURL:     vc.FontURL,
		},
	}
}

// Load reads settings for root. A missing settings file or .env is not an
// error; defaults apply. The result has been validated.
func Load(root string) (*Settings, error) {
	s := Default()

	path := Path(root)
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", path, err)
		}
	}

	dotenv, err := readDotenv(filepath.Join(root, ".env"))
	if err != nil {
		return nil, err
	}
	s.applyEnv(func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return dotenv[key]
	})

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// readDotenv parses a .env file without touching the process environment.
func readDotenv(path string) (map[string]string, error) {
	env, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return env, nil
}

func (s *Settings) applyEnv(getenv func(string) string) {
	if v := getenv(EnvOutput); v != "" {
		s.Output = v
	}
	if v := getenv(EnvSource); v != "" {
		s.Source = v
	}
	for env, key := range map[string]string{
		EnvAPIToken:   leanix.KeyAPIToken,
		EnvGraphQLURL: leanix.KeyGraphQLURL,
		EnvPlatformID: leanix.KeyPlatformID,
	} {
		if v := getenv(env); v != "" {
			s.setSourceKey("leanix", key, v)
		}
	}
}

func (s *Settings) setSourceKey(name, key, value string) {
	if s.Sources == nil {
		s.Sources = map[string]map[string]string{}
	}
	if s.Sources[name] == nil {
		s.Sources[name] = map[string]string{}
	}
	s.Sources[name][key] = value
}

// SourceConfig returns a copy of the configuration for the named source.
func (s *Settings) SourceConfig(name string) map[string]string {
	out := map[string]string{}
	for k, v := range s.Sources[name] {
		out[k] = v
	}
	return out
}

// QuotePolicy returns the configured quoting policy.
func (s *Settings) QuotePolicy() (dsl.QuotePolicy, error) {
	return dsl.ParseQuotePolicy(s.Quotes)
}

// ViewConfig converts the views section for the serializer. Empty
// terminology labels are omitted. A source's view scope, when given,
// turns on the landscape view if it asks for one and picks the platforms
// unless settings already list them.
func (s *Settings) ViewConfig(scope *source.ViewsRecord) dsl.ViewConfig {
	vc := dsl.DefaultViewConfig()
	vc.Terminology = nil
	for _, t := range []dsl.Term{
		{Kind: model.KindTeam, Label: s.Views.Terminology.Team},
		{Kind: model.KindPlatform, Label: s.Views.Terminology.Platform},
		{Kind: model.KindApplication, Label: s.Views.Terminology.Application},
	} {
		if t.Label != "" {
			vc.Terminology = append(vc.Terminology, t)
		}
	}
	vc.ThemeURL = s.Views.Theme
	vc.LogoURL = s.Views.Logo
	vc.FontName = s.Views.FontName
	vc.FontURL = s.Views.FontURL
	vc.Landscape = s.Views.Landscape
	if len(s.Views.Platforms) > 0 {
		vc.Platforms = append([]string(nil), s.Views.Platforms...)
	}
	if scope != nil {
		vc.Landscape = vc.Landscape || scope.Landscape
		if vc.Platforms == nil && len(scope.Platforms) > 0 {
			vc.Platforms = append([]string(nil), scope.Platforms...)
		}
	}
	return vc
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks field constraints and reports every failure.
func (s *Settings) Validate() error {
	err := validate.Struct(s)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, formatFieldError(e))
	}
	return fmt.Errorf("invalid settings: %s", strings.Join(msgs, "; "))
}

func formatFieldError(e validator.FieldError) string {
	field := strings.TrimPrefix(e.Namespace(), "Settings.")
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "required_with":
		return fmt.Sprintf("%s is required when %s is set", field, e.Param())
	case "url":
		return fmt.Sprintf("%s must be a URL", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, e.Tag())
	}
}

// Write creates <root>/.c4c4/settings.yaml and errors if it already exists.
func Write(root string, s *Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	path := Path(root)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("settings already exist at %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
