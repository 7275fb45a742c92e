package model

// model.go - architecture model graph and its builder operations.
//
// A Model accumulates teams, platforms (with nested applications) and
// relationships in declaration order. Every Add* call registers its id in
// the shared Registry first, so the flat-namespace and reference rules are
// enforced at the point of the offending call. The Model is the only
// mutator of its registry and is not safe for concurrent use.

// ---------------------------------------------------------------------------
// Element types
// ---------------------------------------------------------------------------

// Team is an organisational group that uses applications (DSL "person").
type Team struct {
	ID          string
	Name        string
	Description string
	Category    string // optional tag, e.g. "Business Unit"
}

// Platform groups related applications (DSL "softwareSystem").
type Platform struct {
	ID           string
	Name         string
	Description  string
	ViewKey      string // prefix for generated view keys; defaults to ID
	Applications []*Application
}

// Application is a deployable unit owned by one platform (DSL "container").
type Application struct {
	ID          string
	PlatformID  string
	Name        string
	Description string
	Technology  string
}

// Relationship is a directed, labelled edge between two declared elements.
type Relationship struct {
	ID            string
	SourceID      string
	DestinationID string
	Label         string
	Technology    string // optional
	Style         string // optional tag, e.g. "Integration"
}

// Archetype maps a semantic alias to a primitive element kind.
type Archetype struct {
	Alias string
	Kind  Kind
}

// ---------------------------------------------------------------------------
// Model
// ---------------------------------------------------------------------------

// Model is the in-memory architecture graph for one generation run.
type Model struct {
	Name          string
	Description   string
	Archetypes    []Archetype
	Teams         []*Team
	Platforms     []*Platform
	Relationships []*Relationship

	registry *Registry
}

// New returns an empty model seeded with the "application = container"
// archetype.
func New(name, description string) *Model {
	return &Model{
		Name:        name,
		Description: description,
		Archetypes:  []Archetype{{Alias: "application", Kind: KindApplication}},
		registry:    NewRegistry(),
	}
}

// Registry exposes the model's identifier registry for lookups.
func (m *Model) Registry() *Registry { return m.registry }

// AddArchetype appends an alias mapping. Archetypes are metadata only and
// do not take part in the identifier namespace.
func (m *Model) AddArchetype(alias string, kind Kind) {
	m.Archetypes = append(m.Archetypes, Archetype{Alias: alias, Kind: kind})
}

// AddTeam registers a team.
func (m *Model) AddTeam(id, name, description, category string) (*Team, error) {
	e, err := m.registry.Register(id, KindTeam)
	if err != nil {
		return nil, err
	}
	t := &Team{ID: id, Name: name, Description: description, Category: category}
	e.Team = t
	m.Teams = append(m.Teams, t)
	return t, nil
}

// AddPlatform registers a platform with an empty application list.
func (m *Model) AddPlatform(id, name, description string) (*Platform, error) {
	e, err := m.registry.Register(id, KindPlatform)
	if err != nil {
		return nil, err
	}
	p := &Platform{ID: id, Name: name, Description: description, ViewKey: id}
	e.Platform = p
	m.Platforms = append(m.Platforms, p)
	return p, nil
}

// AddApplication registers an application and appends it to its platform.
// platformID must already be declared as a platform.
func (m *Model) AddApplication(platformID, id, name, description, technology string) (*Application, error) {
	owner, err := m.registry.Resolve(platformID)
	if err != nil {
		return nil, err
	}
	if owner.Kind != KindPlatform {
		return nil, unknownf(platformID, "declared as %s, not a platform", owner.Kind)
	}
	e, err := m.registry.Register(id, KindApplication)
	if err != nil {
		return nil, err
	}
	a := &Application{
		ID:          id,
		PlatformID:  platformID,
		Name:        name,
		Description: description,
		Technology:  technology,
	}
	e.Application = a
	owner.Platform.Applications = append(owner.Platform.Applications, a)
	return a, nil
}

// AddRelationship registers a directed edge. Both endpoints must already be
// declared elements; source and destination may be the same element. The
// relationship id is registered only after both endpoints resolve.
func (m *Model) AddRelationship(id, sourceID, destID, label, technology, style string) (*Relationship, error) {
	for _, end := range []string{sourceID, destID} {
		e, err := m.registry.Resolve(end)
		if err != nil {
			return nil, err
		}
		if e.Kind == KindRelationship {
			return nil, unknownf(end, "relationship endpoints must be elements, not relationships")
		}
	}
	e, err := m.registry.Register(id, KindRelationship)
	if err != nil {
		return nil, err
	}
	r := &Relationship{
		ID:            id,
		SourceID:      sourceID,
		DestinationID: destID,
		Label:         label,
		Technology:    technology,
		Style:         style,
	}
	e.Relationship = r
	m.Relationships = append(m.Relationships, r)
	return r, nil
}

// Platform returns the platform declared as id, or nil.
func (m *Model) Platform(id string) *Platform {
	e, err := m.registry.Resolve(id)
	if err != nil || e.Kind != KindPlatform {
		return nil
	}
	return e.Platform
}

// ApplicationCount returns the number of applications across all platforms.
func (m *Model) ApplicationCount() int {
	n := 0
	for _, p := range m.Platforms {
		n += len(p.Applications)
	}
	return n
}
