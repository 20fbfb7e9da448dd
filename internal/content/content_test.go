package content

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsComplete(t *testing.T) {
	doc := Default()

	assert.Equal(t, 1, doc.Meta.Version)
	assert.False(t, doc.Meta.UpdatedAt.IsZero())
	assert.NotEmpty(t, doc.Home.Tagline)
	assert.NotEmpty(t, doc.About.Skills)
	assert.NotEmpty(t, doc.Portfolio)
	assert.NotEmpty(t, doc.Writings)
	assert.NotEmpty(t, doc.Contact.Email)
}

func TestMergeFillsMissingSectionsFromDefault(t *testing.T) {
	base := Default()

	// A persisted document from an older deployment that predates the
	// writings section.
	loaded := SiteContent{
		Meta: Meta{Version: 7},
		Home: HomeContent{Tagline: "custom tagline", Description: "custom description"},
	}

	merged := Merge(base, loaded)

	assert.Equal(t, 7, merged.Meta.Version)
	assert.Equal(t, "custom tagline", merged.Home.Tagline)
	assert.Equal(t, base.Writings, merged.Writings)
	assert.Equal(t, base.Portfolio, merged.Portfolio)
	assert.Equal(t, base.About, merged.About)
	assert.Equal(t, base.Contact, merged.Contact)
}

func TestMergeKeepsLoadedSections(t *testing.T) {
	base := Default()
	loaded := base
	loaded.Meta.Version = 3
	loaded.Portfolio = []Project{{ID: 9, Title: "Only Project", Category: "Apps"}}
	loaded.Contact = ContactContent{Email: "other@example.com"}

	merged := Merge(base, loaded)

	require.Len(t, merged.Portfolio, 1)
	assert.Equal(t, "Only Project", merged.Portfolio[0].Title)
	assert.Equal(t, "other@example.com", merged.Contact.Email)
	assert.Empty(t, merged.Contact.Phone)
}

func TestMergeDropsLegacyBackground(t *testing.T) {
	raw := []byte(`{
		"meta": {"version": 2, "updatedAt": "2024-01-01T00:00:00Z"},
		"home": {"tagline": "t", "description": "d", "background": "old.jpg"}
	}`)

	var loaded SiteContent
	require.NoError(t, json.Unmarshal(raw, &loaded))
	require.Equal(t, "old.jpg", loaded.Home.Background)

	merged := Merge(Default(), loaded)
	assert.Empty(t, merged.Home.Background)

	encoded, err := json.Marshal(merged)
	require.NoError(t, err)
	assert.NotContains(t, string(encoded), "background")
}

func TestMergeEmptyLoadedYieldsDefault(t *testing.T) {
	base := Default()
	merged := Merge(base, SiteContent{})

	assert.Equal(t, base.Meta.Version, merged.Meta.Version)
	assert.Equal(t, base.Home, merged.Home)
	assert.Equal(t, base.Writings, merged.Writings)
}
