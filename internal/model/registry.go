package model

// registry.go - flat identifier namespace shared by every element kind.
//
// Teams, platforms, applications and relationships all draw their ids from
// one table, so "ebs" can name at most one thing in a workspace regardless
// of what kind of thing it is. Entries are never removed.

// Kind is the primitive element kind an identifier is registered under.
// Values match the Structurizr DSL keywords.
type Kind string

const (
	KindTeam         Kind = "person"
	KindPlatform     Kind = "softwareSystem"
	KindApplication  Kind = "container"
	KindRelationship Kind = "relationship"
)

// Entry is one registered identifier. Exactly one of the record pointers
// is set, matching Kind.
type Entry struct {
	ID           string
	Kind         Kind
	Team         *Team
	Platform     *Platform
	Application  *Application
	Relationship *Relationship
}

// Registry maps identifiers to their records in registration order.
type Registry struct {
	entries map[string]*Entry
	order   []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*Entry)}
}

// Register records id under kind. It fails with ErrDuplicateIdentifier if
// id is already taken by any kind, and with ErrValidation if id is empty.
func (r *Registry) Register(id string, kind Kind) (*Entry, error) {
	if id == "" {
		return nil, &IdentifierError{Kind: ErrValidation, ID: id, Msg: "identifier must not be empty"}
	}
	if prev, ok := r.entries[id]; ok {
		return nil, duplicatef(id, "already declared as %s", prev.Kind)
	}
	e := &Entry{ID: id, Kind: kind}
	r.entries[id] = e
	r.order = append(r.order, id)
	return e, nil
}

// Resolve returns the entry for id or ErrUnknownIdentifier.
func (r *Registry) Resolve(id string) (*Entry, error) {
	e, ok := r.entries[id]
	if !ok {
		return nil, unknownf(id, "not declared")
	}
	return e, nil
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.entries[id]
	return ok
}

// IDs returns every registered identifier in registration order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered identifiers.
func (r *Registry) Len() int { return len(r.order) }
