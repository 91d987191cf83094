// Package playstation fetches catalog and pricing data from the
// PlayStation Store GraphQL API. All operations are persisted queries
// issued as GETs; the store region is selected with a locale override
// header.
package playstation

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

const (
	opCategoryGrid  = "categoryGridRetrieve"
	opProductDetail = "productRetrieve"
	opProductPrice  = "productRetrieveForCtasWithPrice"

	// Persisted query hashes captured from the web store. These rotate
	// with store deployments; refresh them when ops start failing.
	hashCategoryGrid  = "4ce7d410a4db2c8b635a48c1dcec375906ff63b19dadd87e073f8fd0c0481d35"
	hashProductDetail = "a128042177bd93dd831164103aabd8e2172cba66bd4e25fa0de28617cf2b4fbd"
	hashProductPrice  = "8872b0419dcab2fea572330da72a45a9d0f783c8a63cc8c7b1f373c39abbc4a9"

	// defaultCategoryID is the "All Games" category grid
	defaultCategoryID = "44d8bb20-653e-431e-8ad0-c0a365f68d2f"
)

// PlayStationClient implements the provider client against the store's
// GraphQL endpoint
type PlayStationClient struct {
	httpClient     adapter.HTTPClient
	rateLimitProxy ratelimit.Proxy
	apiURL         string
	userAgent      string
	json           adapter.JSON
}

// NewClient creates a new PlayStation Store client
func NewClient(httpClient adapter.HTTPClient, rateLimitProxy ratelimit.Proxy, apiURL, userAgent string, json adapter.JSON) providers.Client {
	return &PlayStationClient{
		httpClient:     httpClient,
		rateLimitProxy: rateLimitProxy,
		apiURL:         apiURL,
		userAgent:      userAgent,
		json:           json,
	}
}

// Key returns the provider identity
func (c *PlayStationClient) Key() domain.Provider {
	return domain.ProviderPlayStation
}

type categoryGridResponse struct {
	Data struct {
		CategoryGridRetrieve *struct {
			Products []struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"products"`
		} `json:"categoryGridRetrieve"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type productResponse struct {
	Data struct {
		ProductRetrieve *productNode `json:"productRetrieve"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type productNode struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Platforms     []string `json:"platforms"`
	ReleaseDate   string   `json:"releaseDate"`
	PublisherName string   `json:"publisherName"`
	Genres        []struct {
		Value string `json:"value"`
	} `json:"localizedGenres"`
	StarRating *struct {
		AverageRating     float64 `json:"averageRating"`
		TotalRatingsCount int64   `json:"totalRatingsCount"`
	} `json:"starRating"`
	Media   []media.RawEntry `json:"media"`
	WebCTAs []webCTA         `json:"webctas"`
}

type webCTA struct {
	Type  string    `json:"type"`
	Price *ctaPrice `json:"price"`
}

type ctaPrice struct {
	BasePriceValue  int64  `json:"basePriceValue"`
	DiscountedValue int64  `json:"discountedValue"`
	CurrencyCode    string `json:"currencyCode"`
	IsFree          bool   `json:"isFree"`
}

// Discover lists product IDs from the all-games category grid
func (c *PlayStationClient) Discover(ctx context.Context, region string, page, size int) ([]string, error) {
	variables := map[string]any{
		"id": defaultCategoryID,
		"pageArgs": map[string]int{
			"size":   size,
			"offset": page * size,
		},
		"sortBy": map[string]any{
			"name":        "productReleaseDate",
			"isAscending": false,
		},
	}

	body, err := c.opGet(ctx, opCategoryGrid, hashCategoryGrid, region, variables)
	if err != nil {
		return nil, fmt.Errorf("category grid request failed: %w", err)
	}

	var resp categoryGridResponse
	if err := c.json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode category grid: %w", err)
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("category grid returned errors: %s", resp.Errors[0].Message)
	}
	if resp.Data.CategoryGridRetrieve == nil {
		return nil, fmt.Errorf("category grid returned no data: %w", domain.ErrMalformedPayload)
	}

	ids := make([]string, 0, len(resp.Data.CategoryGridRetrieve.Products))
	for _, p := range resp.Data.CategoryGridRetrieve.Products {
		if p.ID != "" {
			ids = append(ids, p.ID)
		}
	}
	return ids, nil
}

// FetchItem retrieves product metadata, including the embedded price CTA
// for the requested region
func (c *PlayStationClient) FetchItem(ctx context.Context, id, region string) (*domain.CatalogItem, error) {
	body, err := c.opGet(ctx, opProductDetail, hashProductDetail, region, map[string]any{"productId": id})
	if err != nil {
		return nil, fmt.Errorf("product retrieve failed: %w", err)
	}

	var resp productResponse
	if err := c.json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode product: %w", err)
	}
	product := resp.Data.ProductRetrieve
	if product == nil {
		return nil, domain.ErrNotFoundInRegion
	}
	if strings.TrimSpace(product.Name) == "" {
		return nil, fmt.Errorf("product %s has no name: %w", id, domain.ErrMalformedPayload)
	}

	genres := make([]string, 0, len(product.Genres))
	for _, g := range product.Genres {
		genres = append(genres, g.Value)
	}

	item := &domain.CatalogItem{
		Provider:    domain.ProviderPlayStation,
		ExternalID:  id,
		Name:        product.Name,
		Platforms:   normalize.Platforms(product.Platforms),
		Genres:      normalize.Genres(genres),
		Publisher:   product.PublisherName,
		ReleaseDate: parseReleaseDate(product.ReleaseDate),
		Media:       media.FromRoleTagged(product.Media),
		Price:       quoteFromCTAs(product.WebCTAs, id, region),
		Region:      region,
	}
	if product.StarRating != nil && product.StarRating.TotalRatingsCount > 0 {
		rating := product.StarRating.AverageRating
		count := product.StarRating.TotalRatingsCount
		item.Rating = &rating
		item.RatingCount = &count
	}

	var raw map[string]any
	if err := c.json.Unmarshal(body, &raw); err == nil {
		item.Raw = raw
	}

	return item, nil
}

// FetchPrice retrieves only the price CTAs for one product
func (c *PlayStationClient) FetchPrice(ctx context.Context, id, region string) (*domain.PriceQuote, error) {
	body, err := c.opGet(ctx, opProductPrice, hashProductPrice, region, map[string]any{"productId": id})
	if err != nil {
		return nil, fmt.Errorf("price retrieve failed: %w", err)
	}

	var resp productResponse
	if err := c.json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode price response: %w", err)
	}
	if resp.Data.ProductRetrieve == nil {
		return nil, domain.ErrNotFoundInRegion
	}

	quote := quoteFromCTAs(resp.Data.ProductRetrieve.WebCTAs, id, region)
	if quote == nil {
		return nil, domain.ErrNoPriceData
	}
	return quote, nil
}

// opGet issues one persisted-query GET
func (c *PlayStationClient) opGet(ctx context.Context, operation, hash, region string, variables any) ([]byte, error) {
	vars, err := c.json.Marshal(variables)
	if err != nil {
		return nil, fmt.Errorf("failed to encode variables: %w", err)
	}
	ext, err := c.json.Marshal(map[string]any{
		"persistedQuery": map[string]any{"version": 1, "sha256Hash": hash},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode extensions: %w", err)
	}

	q := url.Values{}
	q.Set("operationName", operation)
	q.Set("variables", string(vars))
	q.Set("extensions", string(ext))
	fullURL := fmt.Sprintf("%s/op?%s", c.apiURL, q.Encode())

	headers := map[string]string{
		"accept":                      "application/json",
		"x-psn-store-locale-override": Locale(region),
		"user-agent":                  c.userAgent,
	}

	return ratelimit.Request(ctx, c.rateLimitProxy, domain.ProviderPlayStation, func(ctx context.Context) ([]byte, error) {
		return c.httpClient.GetBytes(ctx, fullURL, headers)
	})
}

// quoteFromCTAs extracts the purchase price from the CTA list, preferring
// the cart CTA when several carry prices
func quoteFromCTAs(ctas []webCTA, id, region string) *domain.PriceQuote {
	var price *ctaPrice
	for _, cta := range ctas {
		if cta.Price == nil {
			continue
		}
		if strings.EqualFold(cta.Type, "ADD_TO_CART") {
			price = cta.Price
			break
		}
		if price == nil {
			price = cta.Price
		}
	}
	if price == nil || price.CurrencyCode == "" {
		return nil
	}

	amount := price.DiscountedValue
	if amount == 0 && !price.IsFree {
		amount = price.BasePriceValue
	}
	if amount == 0 && !price.IsFree {
		return nil
	}

	return &domain.PriceQuote{
		Currency:    price.CurrencyCode,
		AmountMinor: &amount,
		Free:        price.IsFree,
		URL:         fmt.Sprintf("https://store.playstation.com/%s/product/%s", strings.ToLower(Locale(region)), id),
	}
}

func parseReleaseDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil
	}
	return &t
}

// Locale converts a region key to the ll-CC locale the store expects.
// Bare country codes get an English language part.
func Locale(region string) string {
	r := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(region)), "_", "-")
	parts := strings.SplitN(r, "-", 2)
	if len(parts) == 2 && parts[0] != "" {
		return parts[0] + "-" + strings.ToUpper(parts[1])
	}
	return "en-" + strings.ToUpper(r)
}
