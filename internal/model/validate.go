package model

import "fmt"

// Warning is a non-fatal finding reported by Validate.
type Warning struct {
	Check   string // "duplicate-name" | "duplicate-relationship"
	Subject string // id the warning is about
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Check, w.Message)
}

// Report is the outcome of Validate.
type Report struct {
	Warnings []Warning
	Proceed  bool
}

// Validate re-checks the model before serialization. Dangling relationship
// endpoints and orphaned applications are structural failures: Validate
// returns the report with Proceed=false and a *ValidationError. Duplicate
// application names within a platform and repeated relationships between
// the same endpoints are only warned about. Checks run in declaration
// order, so the report is deterministic.
func Validate(m *Model) (*Report, error) {
	rep := &Report{}
	var issues []string

	for _, p := range m.Platforms {
		seen := make(map[string]string, len(p.Applications))
		for _, a := range p.Applications {
			if issue := checkOwner(m, p, a); issue != "" {
				issues = append(issues, issue)
			}
			if first, ok := seen[a.Name]; ok {
				rep.Warnings = append(rep.Warnings, Warning{
					Check:   "duplicate-name",
					Subject: a.ID,
					Message: fmt.Sprintf("platform %q has applications %q and %q both named %q", p.ID, first, a.ID, a.Name),
				})
				continue
			}
			seen[a.Name] = a.ID
		}
	}

	type edge struct{ src, dst, label string }
	edges := make(map[edge]string, len(m.Relationships))
	for _, r := range m.Relationships {
		for _, end := range []string{r.SourceID, r.DestinationID} {
			e, err := m.registry.Resolve(end)
			if err != nil {
				issues = append(issues, fmt.Sprintf("relationship %q references undeclared element %q", r.ID, end))
				continue
			}
			if e.Kind == KindRelationship {
				issues = append(issues, fmt.Sprintf("relationship %q references relationship %q", r.ID, end))
			}
		}
		k := edge{r.SourceID, r.DestinationID, r.Label}
		if first, ok := edges[k]; ok {
			rep.Warnings = append(rep.Warnings, Warning{
				Check:   "duplicate-relationship",
				Subject: r.ID,
				Message: fmt.Sprintf("%q repeats %q (%s -> %s %q)", r.ID, first, r.SourceID, r.DestinationID, r.Label),
			})
			continue
		}
		edges[k] = r.ID
	}

	if len(issues) > 0 {
		return rep, &ValidationError{Issues: issues}
	}
	rep.Proceed = true
	return rep, nil
}

// checkOwner verifies that a is registered, owned by p, and that p is the
// platform registered under a.PlatformID.
func checkOwner(m *Model, p *Platform, a *Application) string {
	e, err := m.registry.Resolve(a.ID)
	if err != nil || e.Kind != KindApplication || e.Application != a {
		return fmt.Sprintf("application %q in platform %q is not registered", a.ID, p.ID)
	}
	if a.PlatformID != p.ID {
		return fmt.Sprintf("application %q is listed in platform %q but owned by %q", a.ID, p.ID, a.PlatformID)
	}
	owner := m.Platform(a.PlatformID)
	if owner != p {
		return fmt.Sprintf("application %q is orphaned: platform %q is not declared", a.ID, a.PlatformID)
	}
	return ""
}
