package model

import (
	"fmt"

	"github.com/synchrotron/c4c4/internal/source"
)

// FromSnapshot builds a model from s: teams first, then each platform
// followed by its applications, then relationships. The first failing
// declaration aborts the build. name and description are used when the
// snapshot leaves its workspace fields empty.
func FromSnapshot(s *source.Snapshot, name, description string) (*Model, error) {
	if s.Workspace.Name != "" {
		name = s.Workspace.Name
	}
	if s.Workspace.Description != "" {
		description = s.Workspace.Description
	}
	m := New(name, description)

	for _, t := range s.Teams {
		if _, err := m.AddTeam(t.ID, t.Name, t.Description, t.Category); err != nil {
			return nil, fmt.Errorf("team %q: %w", t.Name, err)
		}
	}
	for _, p := range s.Platforms {
		plat, err := m.AddPlatform(p.ID, p.Name, p.Description)
		if err != nil {
			return nil, fmt.Errorf("platform %q: %w", p.Name, err)
		}
		if p.ViewKey != "" {
			plat.ViewKey = p.ViewKey
		}
		for _, a := range p.Applications {
			if _, err := m.AddApplication(p.ID, a.ID, a.Name, a.Description, a.Technology); err != nil {
				return nil, fmt.Errorf("application %q: %w", a.Name, err)
			}
		}
	}
	for _, r := range s.Relationships {
		if _, err := m.AddRelationship(r.ID, r.SourceID, r.DestinationID, r.Label, r.Technology, r.Style); err != nil {
			return nil, fmt.Errorf("relationship %q: %w", r.ID, err)
		}
	}
	return m, nil
}
