package leanix

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/tools/txtar"

	"github.com/synchrotron/c4c4/internal/model"
	"github.com/synchrotron/c4c4/internal/source"
)

// loadFixture reads testdata/finance.txtar into a platform and interfaces.
func loadFixture(t *testing.T) (*FactSheet, []FactSheet) {
	t.Helper()
	ar, err := txtar.ParseFile("testdata/finance.txtar")
	require.NoError(t, err)

	var platform FactSheet
	var interfaces []FactSheet
	for _, f := range ar.Files {
		switch f.Name {
		case "platform.json":
			require.NoError(t, json.Unmarshal(f.Data, &platform))
		case "interfaces.json":
			require.NoError(t, json.Unmarshal(f.Data, &interfaces))
		}
	}
	require.NotEmpty(t, platform.ID)
	require.Len(t, interfaces, 3)
	return &platform, interfaces
}

func TestMapFinancePlatform(t *testing.T) {
	platform, interfaces := loadFixture(t)
	m := NewMapper(zap.NewNop())

	snap, err := m.Map(platform, interfaces)
	require.NoError(t, err)

	assert.Equal(t, workspaceDescription, snap.Workspace.Description)
	assert.Empty(t, snap.Workspace.Name)
	require.NotNil(t, snap.Views)
	assert.Equal(t, []string{"fsp"}, snap.Views.Platforms)
	assert.False(t, snap.Views.Landscape)

	require.Len(t, snap.Platforms, 1)
	plat := snap.Platforms[0]
	assert.Equal(t, "fsp", plat.ID)
	assert.Equal(t, "Finance Systems Platform", plat.Name)
	assert.Equal(t, "Finance platform apps", plat.Description)
	assert.Equal(t, []source.ApplicationRecord{
		{ID: "sap", Name: "SAP", Description: "ERP", Technology: "Application"},
		{ID: "coup", Name: "Coupa", Technology: "Application"},
		{ID: "sapX", Name: "Payroll", Description: "Pays people", Technology: "Application"},
	}, plat.Applications)

	assert.Equal(t, []source.TeamRecord{
		{ID: "fin", Name: "Finance", Description: "Finance users"},
		{ID: "po", Name: "Procurement Ops"},
	}, snap.Teams)

	assert.Equal(t, []source.RelationshipRecord{
		{ID: "finToSap", SourceID: "fin", DestinationID: "sap", Label: "Uses"},
		{ID: "finToCoup", SourceID: "fin", DestinationID: "coup", Label: "Uses"},
		{ID: "poToCoup", SourceID: "po", DestinationID: "coup", Label: "Uses"},
		{ID: "inv", SourceID: "sap", DestinationID: "coup", Label: "Invoices", Technology: "TBC", Style: "Integration"},
		{ID: "inv2", SourceID: "sap", DestinationID: "sapX", Label: "Invoices", Technology: "TBC", Style: "Integration"},
		{ID: "orde", SourceID: "coup", DestinationID: "sap", Label: "Orders", Technology: "TBC", Style: "Integration"},
	}, snap.Relationships)

	assert.Equal(t, []MissingAcronym{
		{Type: "Application", Name: "Coupa", ID: "a-2", TempAcronym: "COUP"},
		{Type: "Interface", Name: "Orders", ID: "i-3", TempAcronym: "ORDE"},
		{Type: "Organisation", Name: "Procurement Ops", ID: "g-2", TempAcronym: "PO"},
	}, m.Missing)
	assert.Equal(t, []DuplicateAcronym{
		{Type: "Application", Name: "Payroll", Original: "sap", Modified: "sapX"},
	}, m.Duplicates)
}

func TestMapOutputBuildsAndValidates(t *testing.T) {
	platform, interfaces := loadFixture(t)
	snap, err := NewMapper(nil).Map(platform, interfaces)
	require.NoError(t, err)

	m, err := model.FromSnapshot(snap, "Channel 4 Core", "")
	require.NoError(t, err)
	assert.Equal(t, workspaceDescription, m.Description)

	rep, err := model.Validate(m)
	require.NoError(t, err)
	assert.True(t, rep.Proceed)
	assert.Empty(t, rep.Warnings)
}

func TestMapResetsReports(t *testing.T) {
	platform, interfaces := loadFixture(t)
	m := NewMapper(nil)
	_, err := m.Map(platform, interfaces)
	require.NoError(t, err)

	_, err = m.Map(&FactSheet{ID: "p", Name: "Solo", Acronym: "SOLO"}, nil)
	require.NoError(t, err)
	assert.Empty(t, m.Missing)
	assert.Empty(t, m.Duplicates)
}

func TestMapPlatformDefaults(t *testing.T) {
	snap, err := NewMapper(nil).Map(&FactSheet{ID: "p", Name: "people platform"}, nil)
	require.NoError(t, err)

	plat := snap.Platforms[0]
	assert.Equal(t, "pp", plat.ID)
	assert.Equal(t, "people platform", plat.Name)
	assert.Equal(t, "Platform from LeanIX", plat.Description)
	assert.Empty(t, plat.Applications)
	assert.Empty(t, snap.Relationships)
}

func TestMapNilPlatform(t *testing.T) {
	_, err := NewMapper(nil).Map(nil, nil)
	assert.Error(t, err)
}

func TestMapSanitizesAcronyms(t *testing.T) {
	platform := &FactSheet{ID: "p", Name: "Platform", Acronym: " F.S P "}
	platform.Applications.Edges = []RelationEdge{edge(&FactSheet{ID: "a", Name: "App", Acronym: "???"})}

	m := NewMapper(nil)
	snap, err := m.Map(platform, nil)
	require.NoError(t, err)

	assert.Equal(t, "fsp", snap.Platforms[0].ID)
	// Nothing usable in "???", so a temporary acronym is generated.
	assert.Equal(t, "app", snap.Platforms[0].Applications[0].ID)
	require.Len(t, m.Missing, 1)
	assert.Equal(t, "APP", m.Missing[0].TempAcronym)
}

func TestMapDuplicateChain(t *testing.T) {
	platform := &FactSheet{ID: "p", Name: "Platform", Acronym: "abc"}
	platform.Applications.Edges = []RelationEdge{
		edge(&FactSheet{ID: "a1", Name: "One", Acronym: "abc"}),
		edge(&FactSheet{ID: "a2", Name: "Two", Acronym: "ABC"}),
	}

	m := NewMapper(nil)
	snap, err := m.Map(platform, nil)
	require.NoError(t, err)

	apps := snap.Platforms[0].Applications
	assert.Equal(t, "abcX", apps[0].ID)
	assert.Equal(t, "abcXX", apps[1].ID)
	require.Len(t, m.Duplicates, 2)
	assert.Equal(t, "abc", m.Duplicates[1].Original)
	assert.Equal(t, "abcXX", m.Duplicates[1].Modified)
}

func TestTempAcronym(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Finance Systems Platform", "FSP"},
		{"a b c d e", "ABCD"},
		{"Coupa", "COUP"},
		{"Sap", "SAP"},
		{"hr", "HR"},
		{"hr-ops team", "HT"},
		{"Procurement (Ops)", "PO"},
		{"!!!", "TMP"},
		{"", "TMP"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tempAcronym(tt.name))
		})
	}
}

func TestCleanDescription(t *testing.T) {
	assert.Equal(t, "", cleanDescription(""))
	assert.Equal(t, "a b c", cleanDescription("  a\n b\t\tc \r\n"))

	exact := strings.Repeat("x", 100)
	assert.Equal(t, exact, cleanDescription(exact))

	long := cleanDescription(strings.Repeat("y", 150))
	assert.Len(t, long, 100)
	assert.True(t, strings.HasSuffix(long, "yyy..."))

	// Truncation counts characters, not bytes.
	wide := cleanDescription(strings.Repeat("é", 120))
	assert.Equal(t, strings.Repeat("é", 97)+"...", wide)
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Sap", capitalize("sap"))
	assert.Equal(t, "X", capitalize("x"))
	assert.Equal(t, "", capitalize(""))
}

func edge(fs *FactSheet) RelationEdge {
	var e RelationEdge
	e.Node.FactSheet = fs
	return e
}
