package leanix

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/synchrotron/c4c4/internal/source"
)

const (
	workspaceDescription = "Base Line Model - Generated from LeanIX"
	defaultPlatformDesc  = "Platform from LeanIX"
	applicationTech      = "Application"
	interfaceTech        = "TBC"
	interfaceStyle       = "Integration"
	usesLabel            = "Uses"
	maxDescription       = 100
)

var (
	nameJunk  = regexp.MustCompile(`[^a-zA-Z0-9\s-]`)
	identJunk = regexp.MustCompile(`[^a-z0-9_-]`)
)

// MissingAcronym records an element whose identifier was generated because
// LeanIX has no acronym for it.
type MissingAcronym struct {
	Type        string
	Name        string
	ID          string
	TempAcronym string
}

// DuplicateAcronym records an identifier that was suffixed with X to make
// it unique.
type DuplicateAcronym struct {
	Type     string
	Name     string
	Original string
	Modified string
}

// Mapper turns LeanIX fact sheets into a snapshot. The acronym reports
// are reset on every Map call.
type Mapper struct {
	Missing    []MissingAcronym
	Duplicates []DuplicateAcronym

	log  *zap.Logger
	used map[string]bool
}

// NewMapper returns a mapper that logs acronym problems to log.
func NewMapper(log *zap.Logger) *Mapper {
	if log == nil {
		log = zap.NewNop()
	}
	return &Mapper{log: log}
}

type mappedApp struct {
	id string
	fs *FactSheet
}

// Map builds a snapshot of one platform: its applications, the user groups
// using them as teams, and interfaces between its own applications.
// Interfaces touching applications outside the platform are ignored.
func (m *Mapper) Map(platform *FactSheet, interfaces []FactSheet) (*source.Snapshot, error) {
	if platform == nil {
		return nil, errors.New("leanix: map: nil platform")
	}
	m.Missing = nil
	m.Duplicates = nil
	m.used = map[string]bool{}

	platName := platform.Label()
	platID := m.unique(m.identifier(platName, "Platform", platform.Acronym, platform.ID), platName, "Platform")
	platDesc := cleanDescription(platform.Description)
	if platDesc == "" {
		platDesc = defaultPlatformDesc
	}
	plat := source.PlatformRecord{ID: platID, Name: platName, Description: platDesc}

	// LeanIX id -> model id
	apps := map[string]string{}
	var ordered []mappedApp
	for _, app := range platform.Applications.FactSheets() {
		label := app.Label()
		id := m.unique(m.identifier(label, "Application", app.Acronym, app.ID), label, "Application")
		apps[app.ID] = id
		ordered = append(ordered, mappedApp{id: id, fs: app})
		plat.Applications = append(plat.Applications, source.ApplicationRecord{
			ID:          id,
			Name:        app.ShortName(),
			Description: cleanDescription(app.Description),
			Technology:  applicationTech,
		})
	}

	integrations := m.integrations(interfaces, apps)

	snap := &source.Snapshot{
		Workspace: source.WorkspaceRecord{Description: workspaceDescription},
		Platforms: []source.PlatformRecord{plat},
		Views:     &source.ViewsRecord{Platforms: []string{platID}},
	}

	// User groups are identified after interfaces so interface ids keep
	// their acronyms when both collide.
	teams := map[string]string{}
	for _, app := range ordered {
		for _, org := range app.fs.UserGroups.FactSheets() {
			teamID, ok := teams[org.ID]
			if !ok {
				label := org.Label()
				teamID = m.unique(m.identifier(label, "Organisation", org.Acronym, org.ID), label, "Organisation")
				teams[org.ID] = teamID
				snap.Teams = append(snap.Teams, source.TeamRecord{
					ID:          teamID,
					Name:        org.ShortName(),
					Description: cleanDescription(org.Description),
				})
			}
			relID := teamID + "To" + capitalize(app.id)
			relID = m.unique(relID, org.ShortName()+" uses "+app.fs.ShortName(), "Relationship")
			snap.Relationships = append(snap.Relationships, source.RelationshipRecord{
				ID:            relID,
				SourceID:      teamID,
				DestinationID: app.id,
				Label:         usesLabel,
			})
		}
	}
	snap.Relationships = append(snap.Relationships, integrations...)

	m.report()
	return snap, nil
}

// integrations maps each interface to one relationship per provider x
// consumer pair inside apps. The first pair takes the interface id, later
// pairs get a numeric suffix starting at 2.
func (m *Mapper) integrations(interfaces []FactSheet, apps map[string]string) []source.RelationshipRecord {
	var out []source.RelationshipRecord
	for i := range interfaces {
		iface := &interfaces[i]
		label := iface.Label()
		if label == "" {
			label = interfaceStyle
		}
		name := iface.ShortName()
		if name == "" {
			name = label
		}

		var base string
		count := 0
		for _, prov := range iface.Providers.FactSheets() {
			src, ok := apps[prov.ID]
			if !ok {
				continue
			}
			for _, cons := range iface.Consumers.FactSheets() {
				dst, ok := apps[cons.ID]
				if !ok {
					continue
				}
				if count == 0 {
					base = m.identifier(label, "Interface", iface.Acronym, iface.ID)
				}
				id := base
				if count > 0 {
					id = base + strconv.Itoa(count+1)
				}
				count++
				id = m.unique(id, label+" (relationship "+strconv.Itoa(count)+")", "Interface")
				out = append(out, source.RelationshipRecord{
					ID:            id,
					SourceID:      src,
					DestinationID: dst,
					Label:         name,
					Technology:    interfaceTech,
					Style:         interfaceStyle,
				})
			}
		}
	}
	return out
}

// identifier returns the lower-cased acronym, or a generated temporary
// acronym when it is blank or has no identifier characters.
func (m *Mapper) identifier(name, kind, acronym, leanixID string) string {
	if id := identJunk.ReplaceAllString(strings.ToLower(strings.TrimSpace(acronym)), ""); id != "" {
		return id
	}
	tmp := tempAcronym(name)
	m.Missing = append(m.Missing, MissingAcronym{Type: kind, Name: name, ID: leanixID, TempAcronym: tmp})
	return identJunk.ReplaceAllString(strings.ToLower(tmp), "")
}

// unique appends X to id until it is unused, recording any change.
func (m *Mapper) unique(id, name, kind string) string {
	if id == "" {
		id = "tmp"
	}
	if !m.used[id] {
		m.used[id] = true
		return id
	}
	orig := id
	for m.used[id] {
		id += "X"
	}
	m.used[id] = true
	m.Duplicates = append(m.Duplicates, DuplicateAcronym{Type: kind, Name: name, Original: orig, Modified: id})
	return id
}

func (m *Mapper) report() {
	for _, a := range m.Missing {
		m.log.Warn("leanix.missing_acronym",
			zap.String("type", a.Type),
			zap.String("name", a.Name),
			zap.String("leanix_id", a.ID),
			zap.String("temp_acronym", a.TempAcronym))
	}
	for _, d := range m.Duplicates {
		m.log.Warn("leanix.duplicate_acronym",
			zap.String("type", d.Type),
			zap.String("name", d.Name),
			zap.String("original", d.Original),
			zap.String("modified", d.Modified))
	}
}

// tempAcronym derives an upper-case acronym from a display name: initials
// of a multi-word name (at most 4), otherwise the first 4 characters of a
// word of 4 or more, else its first 3. Names with no usable characters
// give TMP.
func tempAcronym(name string) string {
	words := strings.Fields(nameJunk.ReplaceAllString(name, ""))
	switch len(words) {
	case 0:
		return "TMP"
	case 1:
		w := words[0]
		if len(w) >= 4 {
			return strings.ToUpper(w[:4])
		}
		return strings.ToUpper(w)
	}
	var b strings.Builder
	for _, w := range words {
		b.WriteString(strings.ToUpper(w[:1]))
		if b.Len() == 4 {
			break
		}
	}
	return b.String()
}

// cleanDescription collapses whitespace to single spaces and truncates to
// maxDescription characters.
func cleanDescription(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= maxDescription {
		return s
	}
	r := []rune(s)
	return string(r[:maxDescription-3]) + "..."
}

func capitalize(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}
