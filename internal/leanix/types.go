package leanix

// FactSheet is the subset of a LeanIX fact sheet the mapper reads. The
// relation fields are only populated for the fact sheet types that carry
// them.
type FactSheet struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Acronym     string `json:"acronym"`

	Applications Relation `json:"relTechPlatformToApplication"`
	UserGroups   Relation `json:"relApplicationToUserGroup"`
	Providers    Relation `json:"relInterfaceToProviderApplication"`
	Consumers    Relation `json:"relInterfaceToConsumerApplication"`
}

// Relation is a GraphQL connection of related fact sheets.
type Relation struct {
	Edges []RelationEdge `json:"edges"`
}

// RelationEdge wraps one related fact sheet.
type RelationEdge struct {
	Node struct {
		FactSheet *FactSheet `json:"factSheet"`
	} `json:"node"`
}

// FactSheets returns the non-nil related fact sheets in edge order.
func (r Relation) FactSheets() []*FactSheet {
	out := make([]*FactSheet, 0, len(r.Edges))
	for _, e := range r.Edges {
		if e.Node.FactSheet != nil {
			out = append(out, e.Node.FactSheet)
		}
	}
	return out
}

// Label returns DisplayName, falling back to Name.
func (f *FactSheet) Label() string {
	if f.DisplayName != "" {
		return f.DisplayName
	}
	return f.Name
}

// ShortName returns Name, falling back to DisplayName.
func (f *FactSheet) ShortName() string {
	if f.Name != "" {
		return f.Name
	}
	return f.DisplayName
}
