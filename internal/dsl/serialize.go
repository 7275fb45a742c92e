// Package dsl renders an architecture model as a Structurizr DSL workspace.
//
// Output is a pure function of the model and the view configuration:
// elements are written in declaration order and nothing iterates a map, so
// the same model always produces byte-identical text. Rendering happens
// entirely in memory; WriteFile then replaces the target atomically.
package dsl

import (
	"fmt"
	"strings"

	"github.com/synchrotron/c4c4/internal/model"
)

const indentUnit = "    "

// Serializer renders models under one view configuration and quote policy.
type Serializer struct {
	Views  ViewConfig
	Quotes QuotePolicy
}

// New returns a serializer with the given configuration.
func New(views ViewConfig, quotes QuotePolicy) *Serializer {
	return &Serializer{Views: views, Quotes: quotes}
}

// writer accumulates indented lines and remembers the first error so the
// render functions can stay linear.
type writer struct {
	b      strings.Builder
	quotes QuotePolicy
	err    error
}

func (w *writer) line(depth int, parts ...string) {
	w.b.WriteString(strings.Repeat(indentUnit, depth))
	w.b.WriteString(strings.Join(parts, " "))
	w.b.WriteString("\n")
}

func (w *writer) blank() { w.b.WriteString("\n") }

// q quotes value, recording the first failure.
func (w *writer) q(field, value string) string {
	if w.err != nil {
		return ""
	}
	s, err := quote(w.quotes, field, value)
	if err != nil {
		w.err = err
	}
	return s
}

func (w *writer) ident(field, id string) string {
	if w.err == nil {
		w.err = checkIdent(field, id)
	}
	return id
}

func (w *writer) bare(field, value string) string {
	if w.err != nil {
		return ""
	}
	s, err := bare(field, value)
	if err != nil {
		w.err = err
	}
	return s
}

// Serialize renders m. It fails with ErrSerialization on the first value
// that cannot be represented; no partial output is returned.
func (s *Serializer) Serialize(m *model.Model) ([]byte, error) {
	w := &writer{quotes: s.Quotes}

	w.line(0, "workspace", w.q("workspace name", m.Name), w.q("workspace description", m.Description), "{")
	w.blank()
	w.line(1, "!identifiers", "flat")
	w.blank()
	w.line(1, "model", "{")
	s.writeModel(w, m)
	w.line(1, "}")
	w.blank()
	w.line(1, "views", "{")
	if err := s.writeViews(w, m); err != nil {
		return nil, err
	}
	w.line(1, "}")
	w.line(0, "}")

	if w.err != nil {
		return nil, w.err
	}
	return []byte(w.b.String()), nil
}

// ---------------------------------------------------------------------------
// model block
// ---------------------------------------------------------------------------

func (s *Serializer) writeModel(w *writer, m *model.Model) {
	if len(m.Archetypes) > 0 {
		w.blank()
		w.line(2, "archetypes", "{")
		for _, a := range m.Archetypes {
			w.line(3, w.ident("archetype alias", a.Alias), "=", string(a.Kind))
		}
		w.line(2, "}")
	}

	if len(m.Teams) > 0 {
		w.blank()
		banner(w, "TEAMS")
		for _, t := range m.Teams {
			field := fmt.Sprintf("team %q", t.ID)
			parts := []string{
				w.ident(field+" id", t.ID), "=", "person",
				w.q(field+" name", t.Name),
				w.q(field+" description", t.Description),
			}
			if t.Category != "" {
				parts = append(parts, w.q(field+" category", t.Category))
			}
			w.line(2, parts...)
		}
	}

	for _, p := range m.Platforms {
		w.blank()
		field := fmt.Sprintf("platform %q", p.ID)
		head := []string{
			w.ident(field+" id", p.ID), "=", "softwareSystem",
			w.q(field+" name", p.Name),
			w.q(field+" description", p.Description),
		}
		if len(p.Applications) == 0 {
			w.line(2, head...)
			continue
		}
		banner(w, strings.ToUpper(p.Name))
		w.line(2, append(head, "{")...)
		for _, a := range p.Applications {
			af := fmt.Sprintf("application %q", a.ID)
			parts := []string{
				w.ident(af+" id", a.ID), "=", "container",
				w.q(af+" name", a.Name),
				w.q(af+" description", a.Description),
			}
			if a.Technology != "" {
				parts = append(parts, w.q(af+" technology", a.Technology))
			}
			w.line(3, parts...)
		}
		w.line(2, "}")
	}

	if len(m.Relationships) > 0 {
		w.blank()
		banner(w, "RELATIONSHIPS")
		for _, r := range m.Relationships {
			w.line(2, relationshipLine(w, r)...)
		}
	}
}

// relationshipLine renders "id = src -> dst "label" ["tech" ["style"]]".
// An empty technology is written as "" when a style follows it.
func relationshipLine(w *writer, r *model.Relationship) []string {
	field := fmt.Sprintf("relationship %q", r.ID)
	parts := []string{
		w.ident(field+" id", r.ID), "=",
		w.ident(field+" source", r.SourceID), "->",
		w.ident(field+" destination", r.DestinationID),
		w.q(field+" label", r.Label),
	}
	if r.Technology != "" || r.Style != "" {
		parts = append(parts, w.q(field+" technology", r.Technology))
	}
	if r.Style != "" {
		parts = append(parts, w.q(field+" style", r.Style))
	}
	return parts
}

// banner writes a block comment heading. "*/" inside title would close
// the comment early and is broken apart.
func banner(w *writer, title string) {
	title = strings.ReplaceAll(title, "*/", "* /")
	const rule = "============================================================"
	w.line(2, "/*", rule)
	w.line(2, "  ", title)
	w.line(2, "  ", rule, "*/")
	w.blank()
}

// ---------------------------------------------------------------------------
// views block
// ---------------------------------------------------------------------------

func (s *Serializer) writeViews(w *writer, m *model.Model) error {
	v := s.Views

	if len(v.Terminology) > 0 {
		w.blank()
		w.line(2, "terminology", "{")
		for _, t := range v.Terminology {
			w.line(3, string(t.Kind), w.q("terminology "+string(t.Kind), t.Label))
		}
		w.line(2, "}")
	}

	if v.ThemeURL != "" {
		w.blank()
		w.line(2, "themes", w.bare("theme url", v.ThemeURL))
	}

	if v.LogoURL != "" || v.FontURL != "" {
		w.blank()
		w.line(2, "branding", "{")
		if v.LogoURL != "" {
			w.line(3, "logo", w.bare("logo url", v.LogoURL))
		}
		if v.FontURL != "" {
			w.line(3, "font", w.q("font name", v.FontName), w.bare("font url", v.FontURL))
		}
		w.line(2, "}")
	}

	keys := viewKeys{}
	if v.Landscape {
		key := v.LandscapeKey
		if key == "" {
			key = "SystemLandscape"
		}
		if err := keys.add("landscape key", key); err != nil {
			return err
		}
		w.blank()
		view(w, []string{"systemLandscape", w.q("landscape key", key)})
	}

	platforms, err := scopedPlatforms(m, v.Platforms)
	if err != nil {
		return err
	}
	for _, p := range platforms {
		key := p.ViewKey
		if key == "" {
			key = p.ID
		}
		field := fmt.Sprintf("platform %q view key", p.ID)
		if err := keys.add(field, key+"Context"); err != nil {
			return err
		}
		w.blank()
		view(w, []string{"systemContext", p.ID, w.q(field, key+"Context")})
		if len(p.Applications) > 0 {
			if err := keys.add(field, key+"Containers"); err != nil {
				return err
			}
			w.blank()
			view(w, []string{"container", p.ID, w.q(field, key+"Containers")})
		}
	}
	return nil
}

// viewKeys tracks emitted view keys; Structurizr rejects a repeat.
type viewKeys map[string]bool

func (k viewKeys) add(field, key string) error {
	if k[key] {
		return &SerializationError{Field: field, Value: key, Reason: "duplicate view key"}
	}
	k[key] = true
	return nil
}

func view(w *writer, head []string) {
	w.line(2, append(head, "{")...)
	w.line(3, "include", "*")
	w.line(3, "autoLayout")
	w.line(2, "}")
}

// scopedPlatforms returns the platforms that get views, in model order.
func scopedPlatforms(m *model.Model, scope []string) ([]*model.Platform, error) {
	if scope == nil {
		return m.Platforms, nil
	}
	want := make(map[string]bool, len(scope))
	for _, id := range scope {
		if m.Platform(id) == nil {
			return nil, &SerializationError{Field: "view scope", Value: id, Reason: "not a declared platform"}
		}
		want[id] = true
	}
	var out []*model.Platform
	for _, p := range m.Platforms {
		if want[p.ID] {
			out = append(out, p)
		}
	}
	return out, nil
}
