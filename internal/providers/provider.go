// Package providers defines the shared surface every upstream catalog
// source implements. Network providers go through the rate-limit proxy;
// the dump reader does not.
package providers

import (
	"context"

	"github.com/gamedex/gd-indexer/internal/domain"
)

// Client defines the interface for provider operations to enable mocking
//
//go:generate mockgen -source=provider.go -destination=../mocks/provider_client.go -package=mocks -mock_names=Client=MockProviderClient
type Client interface {
	// Key returns the provider identity used in storage keys
	Key() domain.Provider

	// Discover lists the external IDs on one catalog page in a region.
	// An empty page means the catalog is exhausted.
	Discover(ctx context.Context, region string, page, size int) ([]string, error)

	// FetchItem retrieves normalized metadata for one listing. Items not
	// listed in the region return domain.ErrNotFoundInRegion.
	FetchItem(ctx context.Context, id, region string) (*domain.CatalogItem, error)

	// FetchPrice retrieves only the price quote for one listing in a region
	FetchPrice(ctx context.Context, id, region string) (*domain.PriceQuote, error)
}
