// Package igdb reads catalog metadata from an IGDB NDJSON dump file.
// The dump is loaded into memory once on first use; there is no network
// access and no regional pricing, so FetchPrice always reports absence.
package igdb

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gamedex/gd-indexer/internal/adapter"
	"github.com/gamedex/gd-indexer/internal/domain"
	"github.com/gamedex/gd-indexer/internal/logger"
	"github.com/gamedex/gd-indexer/internal/media"
	"github.com/gamedex/gd-indexer/internal/normalize"
	"github.com/gamedex/gd-indexer/internal/providers"
	"go.uber.org/zap"
)

// maxLineBytes bounds one NDJSON row; dump rows with full media lists
// run well under this
const maxLineBytes = 10 * 1024 * 1024

// DumpReader implements the provider client over a local NDJSON dump
type DumpReader struct {
	path string
	json adapter.JSON

	loadOnce sync.Once
	loadErr  error
	ids      []string          // dump order, for stable paging
	rows     map[string][]byte // raw row bytes keyed by game ID
}

// NewDumpReader creates a dump-backed client. The file is not opened
// until the first Discover or FetchItem call.
func NewDumpReader(path string, json adapter.JSON) providers.Client {
	return &DumpReader{path: path, json: json}
}

// Key returns the provider identity
func (r *DumpReader) Key() domain.Provider {
	return domain.ProviderIGDB
}

type dumpRow struct {
	ID               json.Number     `json:"id"`
	Name             string          `json:"name"`
	Slug             string          `json:"slug"`
	Summary          string          `json:"summary"`
	FirstReleaseDate int64           `json:"first_release_date"`
	Rating           float64         `json:"rating"`
	RatingCount      int64           `json:"rating_count"`
	TotalRating      float64         `json:"total_rating"`
	TotalRatingCount int64           `json:"total_rating_count"`
	AlternativeNames []namedRef      `json:"alternative_names"`
	Platforms        json.RawMessage `json:"platforms"`
	Genres           json.RawMessage `json:"genres"`
	Cover            *struct {
		URL     string `json:"url"`
		ImageID string `json:"image_id"`
	} `json:"cover"`
	Screenshots []struct {
		URL     string `json:"url"`
		ImageID string `json:"image_id"`
	} `json:"screenshots"`
	Videos []struct {
		VideoID string `json:"video_id"`
		Name    string `json:"name"`
	} `json:"videos"`
	InvolvedCompanies []struct {
		Developer bool `json:"developer"`
		Publisher bool `json:"publisher"`
		Company   struct {
			Name string `json:"name"`
		} `json:"company"`
	} `json:"involved_companies"`
}

type namedRef struct {
	Name string `json:"name"`
}

// Discover pages through the dump in file order. The region argument is
// ignored; the dump is region-free.
func (r *DumpReader) Discover(_ context.Context, _ string, page, size int) ([]string, error) {
	if err := r.load(); err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, fmt.Errorf("page size must be positive, got %d", size)
	}
	start := page * size
	if start >= len(r.ids) {
		return []string{}, nil
	}
	end := start + size
	if end > len(r.ids) {
		end = len(r.ids)
	}
	ids := make([]string, end-start)
	copy(ids, r.ids[start:end])
	return ids, nil
}

// FetchItem decodes one dump row into a catalog item
func (r *DumpReader) FetchItem(_ context.Context, id, region string) (*domain.CatalogItem, error) {
	if err := r.load(); err != nil {
		return nil, err
	}
	raw, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrNotFoundInRegion
	}

	var row dumpRow
	if err := r.json.Unmarshal(raw, &row); err != nil {
		return nil, fmt.Errorf("failed to decode dump row %s: %w", id, domain.ErrMalformedPayload)
	}
	if strings.TrimSpace(row.Name) == "" {
		return nil, fmt.Errorf("dump row %s has no name: %w", id, domain.ErrMalformedPayload)
	}

	item := &domain.CatalogItem{
		Provider:     domain.ProviderIGDB,
		ExternalID:   id,
		Name:         row.Name,
		Platforms:    normalize.Platforms(decodeNames(r.json, row.Platforms)),
		Genres:       normalize.Genres(decodeNames(r.json, row.Genres)),
		Description:  row.Summary,
		ProviderSlug: row.Slug,
		Media:        row.mediaDocument(),
		Region:       region,
	}
	for _, alt := range row.AlternativeNames {
		if alt.Name != "" {
			item.AlternateNames = append(item.AlternateNames, alt.Name)
		}
	}
	for _, ic := range row.InvolvedCompanies {
		switch {
		case ic.Developer && item.Developer == "":
			item.Developer = ic.Company.Name
		case ic.Publisher && item.Publisher == "":
			item.Publisher = ic.Company.Name
		}
	}
	if row.FirstReleaseDate > 0 {
		t := time.Unix(row.FirstReleaseDate, 0).UTC()
		item.ReleaseDate = &t
	}
	rating, count := row.Rating, row.RatingCount
	if rating == 0 {
		rating, count = row.TotalRating, row.TotalRatingCount
	}
	if rating > 0 {
		item.Rating = &rating
		item.RatingCount = &count
	}

	var rawDoc map[string]any
	if err := r.json.Unmarshal(raw, &rawDoc); err == nil {
		item.Raw = rawDoc
	}

	return item, nil
}

// FetchPrice always fails: the dump carries no pricing data
func (r *DumpReader) FetchPrice(_ context.Context, _, _ string) (*domain.PriceQuote, error) {
	return nil, domain.ErrNotFoundInRegion
}

func (r *DumpReader) load() error {
	r.loadOnce.Do(func() {
		f, err := os.Open(r.path)
		if err != nil {
			r.loadErr = fmt.Errorf("failed to open dump: %w", err)
			return
		}
		defer f.Close()

		r.rows = make(map[string][]byte)
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

		line := 0
		for scanner.Scan() {
			line++
			raw := strings.TrimSpace(scanner.Text())
			if raw == "" {
				continue
			}
			var head struct {
				ID json.Number `json:"id"`
			}
			if err := r.json.Unmarshal([]byte(raw), &head); err != nil || head.ID.String() == "" {
				logger.Warn("skipping malformed dump line",
					zap.String("path", r.path),
					zap.Int("line", line))
				continue
			}
			id := head.ID.String()
			if _, dup := r.rows[id]; !dup {
				r.ids = append(r.ids, id)
			}
			r.rows[id] = []byte(raw)
		}
		if err := scanner.Err(); err != nil {
			r.loadErr = fmt.Errorf("failed to read dump: %w", err)
			return
		}

		logger.Info("IGDB dump loaded",
			zap.String("path", r.path),
			zap.Int("games", len(r.ids)))
	})
	return r.loadErr
}

// decodeNames accepts both expanded ([{"name":...}]) and plain-string
// encodings of a reference list
func decodeNames(j adapter.JSON, raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var refs []namedRef
	if err := j.Unmarshal(raw, &refs); err == nil {
		names := make([]string, 0, len(refs))
		for _, ref := range refs {
			if ref.Name != "" {
				names = append(names, ref.Name)
			}
		}
		return names
	}
	var plain []string
	if err := j.Unmarshal(raw, &plain); err == nil {
		return plain
	}
	return nil
}

func (row *dumpRow) mediaDocument() domain.MediaDocument {
	g := media.Grouped{}
	if row.Cover != nil {
		g.CoverURL = imageURL(row.Cover.URL, row.Cover.ImageID, "t_cover_big")
	}
	for _, s := range row.Screenshots {
		if u := imageURL(s.URL, s.ImageID, "t_screenshot_big"); u != "" {
			g.Screenshots = append(g.Screenshots, u)
		}
	}
	for _, v := range row.Videos {
		if v.VideoID == "" {
			continue
		}
		g.Videos = append(g.Videos, media.GroupedVideo{
			URL:  "https://www.youtube.com/watch?v=" + v.VideoID,
			Type: "youtube",
		})
	}
	return media.FromGrouped(g)
}

// imageURL resolves an image reference. Dump URLs are protocol-relative;
// rows that only carry an image_id get the CDN path built for them.
func imageURL(url, imageID, size string) string {
	switch {
	case strings.HasPrefix(url, "//"):
		return "https:" + url
	case url != "":
		return url
	case imageID != "":
		return fmt.Sprintf("https://images.igdb.com/igdb/image/upload/%s/%s.jpg", size, imageID)
	}
	return ""
}
