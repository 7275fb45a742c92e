package dsl

import "github.com/synchrotron/c4c4/internal/model"

// Term renames a primitive kind in rendered diagrams.
type Term struct {
	Kind  model.Kind
	Label string
}

// ViewConfig is the static configuration of the views block. It is passed
// explicitly to the Serializer; nothing here is read from globals.
type ViewConfig struct {
	Terminology []Term
	ThemeURL    string
	LogoURL     string
	FontName    string
	FontURL     string

	// Landscape adds a systemLandscape view keyed LandscapeKey.
	Landscape    bool
	LandscapeKey string

	// Platforms restricts per-platform views to these ids. Nil means every
	// platform gets views. Views follow model order, not this order.
	Platforms []string
}

const assetBase = "https://raw.githubusercontent.com/synchrotron/c4c4/main/assets/"

// DefaultViewConfig returns the Channel 4 terminology and branding.
func DefaultViewConfig() ViewConfig {
	return ViewConfig{
		Terminology: []Term{
			{Kind: model.KindTeam, Label: "Team"},
			{Kind: model.KindPlatform, Label: "Platform"},
			{Kind: model.KindApplication, Label: "Application"},
		},
		ThemeURL:     assetBase + "c4-default-theme.json",
		LogoURL:      assetBase + "4-logo-black.png",
		FontName:     "4Text",
		FontURL:      assetBase + "4Text-Regular.ttf",
		LandscapeKey: "SystemLandscape",
	}
}
