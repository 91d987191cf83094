// Package media translates provider-specific media payload shapes into the
// canonical MediaDocument. Translation only: no deduplication beyond exact
// URL repeats, no scoring, and malformed entries are dropped, never fatal.
package media

import (
	"strings"

	"github.com/gamedex/gd-indexer/internal/domain"
)

// RawEntry is the role-tagged shape: one flat array of typed media objects
// with a provider-supplied role (PlayStation Store).
type RawEntry struct {
	URL       string `json:"url"`
	Type      string `json:"type"`
	Role      string `json:"role"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// Grouped is the field-grouped shape: separate cover/screenshot/artwork/
// video collections where the role is implied by the field name (Steam,
// IGDB).
type Grouped struct {
	CoverURL    string
	Screenshots []string
	Artworks    []string
	Videos      []GroupedVideo
}

// GroupedVideo is one trailer entry in the grouped shape
type GroupedVideo struct {
	URL       string
	Type      string
	Thumbnail string
}

// FromRoleTagged builds a MediaDocument from a role-tagged media array.
// Entries without a URL are dropped.
func FromRoleTagged(entries []RawEntry) domain.MediaDocument {
	var doc domain.MediaDocument
	seen := make(map[string]struct{}, len(entries))

	for _, e := range entries {
		url := strings.TrimSpace(e.URL)
		if url == "" {
			continue
		}
		if _, dup := seen[url]; dup {
			continue
		}
		seen[url] = struct{}{}

		if isVideo(e.Type, e.Role) {
			doc.Videos = append(doc.Videos, domain.MediaVideo{
				URL:       url,
				Type:      strings.ToLower(e.Type),
				Role:      domain.MediaRoleTrailer,
				Thumbnail: e.Thumbnail,
			})
			continue
		}

		doc.Images = append(doc.Images, domain.MediaImage{
			URL:  url,
			Type: strings.ToLower(e.Type),
			Role: imageRole(e.Role),
		})
	}
	return doc
}

// FromGrouped builds a MediaDocument from field-grouped media collections.
func FromGrouped(g Grouped) domain.MediaDocument {
	var doc domain.MediaDocument
	seen := make(map[string]struct{})

	addImage := func(url string, role domain.MediaRole) {
		url = strings.TrimSpace(url)
		if url == "" {
			return
		}
		if _, dup := seen[url]; dup {
			return
		}
		seen[url] = struct{}{}
		doc.Images = append(doc.Images, domain.MediaImage{URL: url, Role: role})
	}

	addImage(g.CoverURL, domain.MediaRoleCover)
	for _, s := range g.Screenshots {
		addImage(s, domain.MediaRoleScreenshot)
	}
	for _, a := range g.Artworks {
		addImage(a, domain.MediaRoleArtwork)
	}

	for _, v := range g.Videos {
		url := strings.TrimSpace(v.URL)
		if url == "" {
			continue
		}
		if _, dup := seen[url]; dup {
			continue
		}
		seen[url] = struct{}{}
		doc.Videos = append(doc.Videos, domain.MediaVideo{
			URL:       url,
			Type:      strings.ToLower(v.Type),
			Role:      domain.MediaRoleTrailer,
			Thumbnail: v.Thumbnail,
		})
	}
	return doc
}

func isVideo(mediaType, role string) bool {
	t := strings.ToLower(mediaType)
	r := strings.ToLower(role)
	return strings.Contains(t, "video") ||
		strings.Contains(r, "trailer") ||
		strings.Contains(r, "preview")
}

// imageRole infers the canonical role from a provider role label. Labels
// we cannot place default to artwork rather than being dropped; the
// extractor's contract is shape translation, not filtering.
func imageRole(role string) domain.MediaRole {
	r := strings.ToLower(role)
	switch {
	case strings.Contains(r, "screenshot"), strings.Contains(r, "thumb"):
		return domain.MediaRoleScreenshot
	case strings.Contains(r, "cover"), strings.Contains(r, "master"), strings.Contains(r, "portrait"):
		return domain.MediaRoleCover
	default:
		return domain.MediaRoleArtwork
	}
}
