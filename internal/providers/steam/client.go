// Package steam fetches catalog and pricing data from the Steam
// storefront appdetails API. The storefront has no browsable catalog
// endpoint, so discovery walks a configured app ID universe.
package steam

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gamedex/gd-indexer/internal/adapter"
	"github.com/gamedex/gd-indexer/internal/domain"
	"github.com/gamedex/gd-indexer/internal/media"
	"github.com/gamedex/gd-indexer/internal/normalize"
	"github.com/gamedex/gd-indexer/internal/providers"
	"github.com/gamedex/gd-indexer/internal/ratelimit"
)

const releaseDateLayout = "2 Jan, 2006"

// SteamClient implements the provider client against the storefront API
type SteamClient struct {
	httpClient     adapter.HTTPClient
	rateLimitProxy ratelimit.Proxy
	apiURL         string
	appIDs         []string
	json           adapter.JSON
}

// NewClient creates a new Steam storefront client. appIDs is the
// discovery universe; metadata and price fetches accept any app ID.
func NewClient(httpClient adapter.HTTPClient, rateLimitProxy ratelimit.Proxy, apiURL string, appIDs []string, json adapter.JSON) providers.Client {
	return &SteamClient{
		httpClient:     httpClient,
		rateLimitProxy: rateLimitProxy,
		apiURL:         apiURL,
		appIDs:         appIDs,
		json:           json,
	}
}

// Key returns the provider identity
func (c *SteamClient) Key() domain.Provider {
	return domain.ProviderSteam
}

type appDetailsWrapper struct {
	Success bool     `json:"success"`
	Data    *appData `json:"data"`
}

type appData struct {
	Name             string         `json:"name"`
	ShortDescription string         `json:"short_description"`
	IsFree           bool           `json:"is_free"`
	HeaderImage      string         `json:"header_image"`
	Background       string         `json:"background"`
	PriceOverview    *priceOverview `json:"price_overview"`
	Developers       []string       `json:"developers"`
	Publishers       []string       `json:"publishers"`
	Platforms        struct {
		Windows bool `json:"windows"`
		Mac     bool `json:"mac"`
		Linux   bool `json:"linux"`
	} `json:"platforms"`
	Genres []struct {
		Description string `json:"description"`
	} `json:"genres"`
	Metacritic *struct {
		Score float64 `json:"score"`
	} `json:"metacritic"`
	Recommendations *struct {
		Total int64 `json:"total"`
	} `json:"recommendations"`
	ReleaseDate struct {
		ComingSoon bool   `json:"coming_soon"`
		Date       string `json:"date"`
	} `json:"release_date"`
	Screenshots []struct {
		PathFull string `json:"path_full"`
	} `json:"screenshots"`
	Movies []struct {
		Name      string `json:"name"`
		Thumbnail string `json:"thumbnail"`
		MP4       struct {
			Max string `json:"max"`
		} `json:"mp4"`
	} `json:"movies"`
}

type priceOverview struct {
	Currency string `json:"currency"`
	Initial  int64  `json:"initial"`
	Final    int64  `json:"final"`
}

// Discover pages through the configured app ID universe. The window is
// region-independent; regional availability surfaces on FetchItem.
func (c *SteamClient) Discover(_ context.Context, _ string, page, size int) ([]string, error) {
	if size <= 0 {
		return nil, fmt.Errorf("page size must be positive, got %d", size)
	}
	start := page * size
	if start >= len(c.appIDs) {
		return []string{}, nil
	}
	end := start + size
	if end > len(c.appIDs) {
		end = len(c.appIDs)
	}
	ids := make([]string, end-start)
	copy(ids, c.appIDs[start:end])
	return ids, nil
}

// FetchItem retrieves full app details for the requested region
func (c *SteamClient) FetchItem(ctx context.Context, id, region string) (*domain.CatalogItem, error) {
	body, err := c.appDetails(ctx, id, region, "")
	if err != nil {
		return nil, fmt.Errorf("appdetails request failed: %w", err)
	}

	data, raw, err := c.decodeWrapper(body, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(data.Name) == "" {
		return nil, fmt.Errorf("app %s has no name: %w", id, domain.ErrMalformedPayload)
	}

	item := &domain.CatalogItem{
		Provider:    domain.ProviderSteam,
		ExternalID:  id,
		Name:        data.Name,
		Platforms:   normalize.Platforms(data.platformNames()),
		Genres:      normalize.Genres(data.genreNames()),
		Developer:   strings.Join(data.Developers, ", "),
		Publisher:   strings.Join(data.Publishers, ", "),
		ReleaseDate: data.releaseDate(),
		Description: data.ShortDescription,
		Media:       data.mediaDocument(),
		Price:       data.priceQuote(id, region),
		Region:      region,
		Raw:         raw,
	}
	if data.Metacritic != nil && data.Metacritic.Score > 0 {
		score := data.Metacritic.Score
		item.Rating = &score
	}
	if data.Recommendations != nil && data.Recommendations.Total > 0 {
		total := data.Recommendations.Total
		item.RatingCount = &total
	}

	return item, nil
}

// FetchPrice retrieves only the price overview for one app. Filtered
// responses are much smaller than full appdetails.
func (c *SteamClient) FetchPrice(ctx context.Context, id, region string) (*domain.PriceQuote, error) {
	body, err := c.appDetails(ctx, id, region, "price_overview,basic")
	if err != nil {
		return nil, fmt.Errorf("appdetails price request failed: %w", err)
	}

	data, _, err := c.decodeWrapper(body, id)
	if err != nil {
		return nil, err
	}

	quote := data.priceQuote(id, region)
	if quote == nil {
		return nil, domain.ErrNoPriceData
	}
	return quote, nil
}

func (c *SteamClient) appDetails(ctx context.Context, id, region, filters string) ([]byte, error) {
	q := url.Values{}
	q.Set("appids", id)
	q.Set("cc", strings.ToLower(domain.RegionCountry(region)))
	q.Set("l", "en")
	if filters != "" {
		q.Set("filters", filters)
	}
	fullURL := fmt.Sprintf("%s/appdetails?%s", c.apiURL, q.Encode())

	return ratelimit.Request(ctx, c.rateLimitProxy, domain.ProviderSteam, func(ctx context.Context) ([]byte, error) {
		return c.httpClient.GetBytes(ctx, fullURL, nil)
	})
}

// decodeWrapper unwraps the appid-keyed response envelope. success:false
// means the app is not listed in the requested region.
func (c *SteamClient) decodeWrapper(body []byte, id string) (*appData, map[string]any, error) {
	var resp map[string]appDetailsWrapper
	if err := c.json.Unmarshal(body, &resp); err != nil {
		return nil, nil, fmt.Errorf("failed to decode appdetails: %w", err)
	}
	entry, ok := resp[id]
	if !ok || !entry.Success || entry.Data == nil {
		return nil, nil, domain.ErrNotFoundInRegion
	}

	var raw map[string]any
	if err := c.json.Unmarshal(body, &raw); err == nil {
		if inner, ok := raw[id].(map[string]any); ok {
			raw = inner
		}
	}
	return entry.Data, raw, nil
}

func (d *appData) platformNames() []string {
	var names []string
	if d.Platforms.Windows {
		names = append(names, "PC")
	}
	if d.Platforms.Mac {
		names = append(names, "Mac")
	}
	if d.Platforms.Linux {
		names = append(names, "Linux")
	}
	return names
}

func (d *appData) genreNames() []string {
	names := make([]string, 0, len(d.Genres))
	for _, g := range d.Genres {
		names = append(names, g.Description)
	}
	return names
}

func (d *appData) releaseDate() *time.Time {
	if d.ReleaseDate.ComingSoon || d.ReleaseDate.Date == "" {
		return nil
	}
	t, err := time.Parse(releaseDateLayout, d.ReleaseDate.Date)
	if err != nil {
		return nil
	}
	return &t
}

func (d *appData) mediaDocument() domain.MediaDocument {
	g := media.Grouped{CoverURL: d.HeaderImage}
	if d.Background != "" {
		g.Artworks = []string{d.Background}
	}
	for _, s := range d.Screenshots {
		g.Screenshots = append(g.Screenshots, s.PathFull)
	}
	for _, m := range d.Movies {
		if m.MP4.Max == "" {
			continue
		}
		g.Videos = append(g.Videos, media.GroupedVideo{
			URL:       m.MP4.Max,
			Type:      "video/mp4",
			Thumbnail: m.Thumbnail,
		})
	}
	return media.FromGrouped(g)
}

// priceQuote maps the price overview to a quote. Free apps carry no
// overview, so the currency falls back to the region default.
func (d *appData) priceQuote(id, region string) *domain.PriceQuote {
	storeURL := fmt.Sprintf("https://store.steampowered.com/app/%s", id)

	if d.PriceOverview != nil && d.PriceOverview.Currency != "" {
		amount := d.PriceOverview.Final
		return &domain.PriceQuote{
			Currency:    d.PriceOverview.Currency,
			AmountMinor: &amount,
			Free:        d.IsFree && amount == 0,
			URL:         storeURL,
		}
	}
	if d.IsFree {
		var zero int64
		return &domain.PriceQuote{
			Currency:    domain.RegionCurrency(region),
			AmountMinor: &zero,
			Free:        true,
			URL:         storeURL,
		}
	}
	return nil
}
