package dsl

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"
	"gopkg.in/yaml.v3"

	"github.com/synchrotron/c4c4/internal/model"
	"github.com/synchrotron/c4c4/internal/source"
)

func testViews() ViewConfig {
	v := DefaultViewConfig()
	v.ThemeURL = "https://example.com/theme.json"
	v.LogoURL = "https://example.com/logo.png"
	v.FontName = "Sans"
	v.FontURL = "https://example.com/sans.ttf"
	v.Landscape = true
	return v
}

// roundTripModel builds t1 -> a1 "Uses" with a1 inside p1.
func roundTripModel(t *testing.T) *model.Model {
	t.Helper()
	m := model.New("Test", "Test workspace")
	_, err := m.AddTeam("t1", "Team One", "First team", "")
	require.NoError(t, err)
	_, err = m.AddPlatform("p1", "Platform One", "First platform")
	require.NoError(t, err)
	_, err = m.AddApplication("p1", "a1", "App One", "First app", "SaaS")
	require.NoError(t, err)
	_, err = m.AddRelationship("r1", "t1", "a1", "Uses", "", "")
	require.NoError(t, err)
	return m
}

func archiveFile(t *testing.T, a *txtar.Archive, name string) []byte {
	t.Helper()
	for _, f := range a.Files {
		if f.Name == name {
			return f.Data
		}
	}
	t.Fatalf("archive has no file %q", name)
	return nil
}

func TestSerializeGolden(t *testing.T) {
	a, err := txtar.ParseFile(filepath.Join("testdata", "workspace.txtar"))
	require.NoError(t, err)

	var snap source.Snapshot
	require.NoError(t, yaml.Unmarshal(archiveFile(t, a, "model.yaml"), &snap))

	m, err := model.FromSnapshot(&snap, "", "")
	require.NoError(t, err)

	got, err := New(testViews(), QuoteEscape).Serialize(m)
	require.NoError(t, err)
	assert.Equal(t, string(archiveFile(t, a, "workspace.dsl")), string(got))
}

func TestSerializeDeterministic(t *testing.T) {
	s := New(testViews(), QuoteEscape)
	first, err := s.Serialize(roundTripModel(t))
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := s.Serialize(roundTripModel(t))
		require.NoError(t, err)
		require.True(t, bytes.Equal(first, again), "run %d differs", i)
	}
}

func TestSerializeRoundTripOrder(t *testing.T) {
	out, err := New(testViews(), QuoteEscape).Serialize(roundTripModel(t))
	require.NoError(t, err)
	doc := string(out)

	team := strings.Index(doc, `t1 = person "Team One"`)
	platform := strings.Index(doc, `p1 = softwareSystem "Platform One"`)
	app := strings.Index(doc, `a1 = container "App One"`)
	rel := strings.Index(doc, `r1 = t1 -> a1 "Uses"`)
	for name, idx := range map[string]int{"team": team, "platform": platform, "app": app, "rel": rel} {
		require.GreaterOrEqual(t, idx, 0, "%s declaration missing", name)
	}
	assert.Less(t, team, platform)
	assert.Less(t, platform, app)
	assert.Less(t, app, rel)
}

// TestApplicationNestedInOwner checks that an application sits between its
// platform's opening line and the next platform's declaration.
func TestApplicationNestedInOwner(t *testing.T) {
	m := model.New("w", "")
	_, err := m.AddPlatform("fsp", "Finance System Platform", "")
	require.NoError(t, err)
	_, err = m.AddPlatform("hrp", "People Platform", "")
	require.NoError(t, err)
	_, err = m.AddApplication("hrp", "hnd", "Handle", "", "SaaS")
	require.NoError(t, err)
	_, err = m.AddApplication("fsp", "ebs", "Oracle e-Business Suite", "", "Hosted App")
	require.NoError(t, err)

	out, err := New(ViewConfig{}, QuoteEscape).Serialize(m)
	require.NoError(t, err)
	doc := string(out)

	fsp := strings.Index(doc, "fsp = softwareSystem")
	ebs := strings.Index(doc, "ebs = container")
	hrp := strings.Index(doc, "hrp = softwareSystem")
	hnd := strings.Index(doc, "hnd = container")
	assert.True(t, fsp < ebs && ebs < hrp && hrp < hnd, "unexpected nesting:\n%s", doc)
}

func TestSerializeSelfLoop(t *testing.T) {
	m := roundTripModel(t)
	_, err := m.AddRelationship("loop", "a1", "a1", "Reconciles", "", "")
	require.NoError(t, err)

	out, err := New(testViews(), QuoteEscape).Serialize(m)
	require.NoError(t, err)
	assert.Contains(t, string(out), `loop = a1 -> a1 "Reconciles"`)
}

func TestSerializeViewScope(t *testing.T) {
	m := roundTripModel(t)
	_, err := m.AddPlatform("p2", "Platform Two", "")
	require.NoError(t, err)
	m.Platform("p1").ViewKey = "PlatformOne"

	v := testViews()
	v.Platforms = []string{"p1"}
	out, err := New(v, QuoteEscape).Serialize(m)
	require.NoError(t, err)
	doc := string(out)
	assert.Contains(t, doc, `systemContext p1 "PlatformOneContext"`)
	assert.Contains(t, doc, `container p1 "PlatformOneContainers"`)
	assert.NotContains(t, doc, "systemContext p2")

	v.Platforms = []string{"nope"}
	_, err = New(v, QuoteEscape).Serialize(m)
	assert.ErrorIs(t, err, ErrSerialization)
}

func TestSerializeDuplicateViewKey(t *testing.T) {
	m := roundTripModel(t)
	_, err := m.AddPlatform("p2", "Platform Two", "")
	require.NoError(t, err)
	m.Platform("p1").ViewKey = "Core"
	m.Platform("p2").ViewKey = "Core"

	_, err = New(testViews(), QuoteEscape).Serialize(m)
	var serr *SerializationError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "duplicate view key", serr.Reason)
	assert.Equal(t, "CoreContext", serr.Value)
	assert.Contains(t, serr.Field, `"p2"`)

	// One platform's key may also collide with another's default (its id).
	m.Platform("p1").ViewKey = ""
	m.Platform("p2").ViewKey = "p1"
	_, err = New(testViews(), QuoteEscape).Serialize(m)
	assert.ErrorIs(t, err, ErrSerialization)

	m.Platform("p2").ViewKey = "PlatformTwo"
	_, err = New(testViews(), QuoteEscape).Serialize(m)
	assert.NoError(t, err)
}

// ---------------------------------------------------------------------------
// quoting policy, tested both ways
// ---------------------------------------------------------------------------

const quotedDescription = `Handles "approved" invoices in C:\finance`

func TestQuoteEscapeRoundTrip(t *testing.T) {
	m := roundTripModel(t)
	m.Teams[0].Description = quotedDescription

	out, err := New(testViews(), QuoteEscape).Serialize(m)
	require.NoError(t, err)

	var teamLine string
	for _, l := range strings.Split(string(out), "\n") {
		if strings.HasPrefix(strings.TrimSpace(l), "t1 = person") {
			teamLine = l
		}
	}
	require.NotEmpty(t, teamLine)
	assert.Contains(t, teamLine, `\"approved\"`)

	toks, err := Tokenize(teamLine, QuoteEscape)
	require.NoError(t, err)
	require.Len(t, toks, 5)
	assert.Equal(t, Token{Text: "Team One", Quoted: true}, toks[3])
	assert.Equal(t, Token{Text: quotedDescription, Quoted: true}, toks[4])
}

func TestQuoteRejectPolicy(t *testing.T) {
	m := roundTripModel(t)
	m.Teams[0].Description = quotedDescription

	_, err := New(testViews(), QuoteReject).Serialize(m)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSerialization))
	var se *SerializationError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, `team "t1" description`, se.Field)
}

func TestQuoteRejectAllowsPlainValues(t *testing.T) {
	out, err := New(testViews(), QuoteReject).Serialize(roundTripModel(t))
	require.NoError(t, err)

	toks, err := Tokenize(`        r1 = t1 -> a1 "Uses"`, QuoteReject)
	require.NoError(t, err)
	assert.Equal(t, []Token{{Text: "r1"}, {Text: "="}, {Text: "t1"}, {Text: "->"}, {Text: "a1"}, {Text: "Uses", Quoted: true}}, toks)
	assert.Contains(t, string(out), `r1 = t1 -> a1 "Uses"`)
}

func TestControlCharactersRejected(t *testing.T) {
	for _, policy := range []QuotePolicy{QuoteEscape, QuoteReject} {
		m := roundTripModel(t)
		m.Platforms[0].Applications[0].Description = "line one\nline two"
		_, err := New(testViews(), policy).Serialize(m)
		assert.ErrorIs(t, err, ErrSerialization, "policy %s", policy)
	}
}

func TestInvalidIdentifierRejected(t *testing.T) {
	m := model.New("w", "")
	_, err := m.AddTeam("bad id", "Team", "", "")
	require.NoError(t, err)
	_, err = New(ViewConfig{}, QuoteEscape).Serialize(m)
	assert.ErrorIs(t, err, ErrSerialization)
}

func TestBareTokenRejected(t *testing.T) {
	v := testViews()
	v.ThemeURL = "https://example.com/my theme.json"
	_, err := New(v, QuoteEscape).Serialize(roundTripModel(t))
	assert.ErrorIs(t, err, ErrSerialization)
}

func TestTokenizeUnterminated(t *testing.T) {
	_, err := Tokenize(`a = person "open`, QuoteEscape)
	assert.Error(t, err)
}

func TestParseQuotePolicy(t *testing.T) {
	p, err := ParseQuotePolicy("")
	require.NoError(t, err)
	assert.Equal(t, QuoteEscape, p)
	p, err = ParseQuotePolicy("reject")
	require.NoError(t, err)
	assert.Equal(t, QuoteReject, p)
	_, err = ParseQuotePolicy("drop")
	assert.Error(t, err)
}
