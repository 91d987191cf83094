// Package resolver maps provider display titles onto canonical product and
// title rows. Concurrent workers racing on the same title are reconciled
// through the store's unique-constraint create, with a bounded retry here.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/gamedex/gd-indexer/internal/domain"
	"github.com/gamedex/gd-indexer/internal/logger"
	"github.com/gamedex/gd-indexer/internal/normalize"
	"github.com/gamedex/gd-indexer/internal/store"
	"github.com/gamedex/gd-indexer/internal/store/schema"
)

// maxAttempts bounds the create/refetch retry loop. Conflicts are only
// possible while another worker holds the same normalized title, so one
// retry almost always settles it.
const maxAttempts = 3

// Outcome tags how a resolution concluded
type Outcome string

const (
	// OutcomeCreated means this call created the product and title rows
	OutcomeCreated Outcome = "created"
	// OutcomeFoundExisting means the rows already existed
	OutcomeFoundExisting Outcome = "found_existing"
)

// Resolution is the result of resolving one display title
type Resolution struct {
	Title   *schema.VideoGameTitle
	Outcome Outcome
}

// TitleStore is the subset of the store the resolver needs
type TitleStore interface {
	GetTitleByNormalizedTitle(ctx context.Context, normalizedTitle string) (*schema.VideoGameTitle, error)
	GetTitleByAlternateName(ctx context.Context, normalizedName string) (*schema.VideoGameTitle, error)
	EnsureProductTitle(ctx context.Context, input store.EnsureProductTitleInput) (*schema.VideoGameTitle, bool, error)
	AddAlternateName(ctx context.Context, productID int64, name, normalizedName string) error
}

// Resolver resolves display titles to canonical title rows
type Resolver struct {
	store TitleStore
}

// New creates a resolver backed by the given store
func New(s TitleStore) *Resolver {
	return &Resolver{store: s}
}

// Resolve maps a display title to its canonical title row. Lookup order:
// the title's normalized key against known titles, then the provider's
// alternate-name hints against known titles, then title and hints against
// the alternate-names side table, and only then a create. A match through
// any alias keeps every new spelling as an alternate name, so later runs
// of other providers resolve through it too. A display title that
// normalizes to nothing is rejected as malformed.
func (r *Resolver) Resolve(ctx context.Context, displayTitle string, alternateNames []string) (*Resolution, error) {
	normalized := normalize.Title(displayTitle)
	if normalized == "" {
		return nil, fmt.Errorf("title %q normalizes to empty: %w", displayTitle, domain.ErrMalformedPayload)
	}

	title, err := r.store.GetTitleByNormalizedTitle(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if title == nil {
		title, err = r.lookupByAlias(ctx, normalized, alternateNames)
		if err != nil {
			return nil, err
		}
	}
	if title != nil {
		r.saveAlternates(ctx, title, displayTitle, alternateNames)
		return &Resolution{Title: title, Outcome: OutcomeFoundExisting}, nil
	}

	input := store.EnsureProductTitleInput{
		DisplayTitle:    displayTitle,
		NormalizedTitle: normalized,
		Slug:            normalize.Slug(displayTitle),
		Type:            schema.ProductTypeVideoGame,
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		title, created, err := r.store.EnsureProductTitle(ctx, input)
		if err != nil {
			if errors.Is(err, domain.ErrResolutionConflict) {
				lastErr = err
				logger.DebugCtx(ctx, "Title resolution conflict, retrying",
					zap.String("normalized_title", normalized),
					zap.Int("attempt", attempt))
				continue
			}
			return nil, err
		}

		outcome := OutcomeFoundExisting
		if created {
			outcome = OutcomeCreated
		}
		r.saveAlternates(ctx, title, displayTitle, alternateNames)

		return &Resolution{Title: title, Outcome: outcome}, nil
	}

	return nil, fmt.Errorf("resolving %q after %d attempts: %w (last: %v)",
		displayTitle, maxAttempts, domain.ErrResolutionFailed, lastErr)
}

// lookupByAlias tries the provider's alternate-name hints against known
// titles, then the display title and hints against the alternate-names
// side table. The display title's own normalized key was already checked
// by the caller.
func (r *Resolver) lookupByAlias(ctx context.Context, normalized string, alternateNames []string) (*schema.VideoGameTitle, error) {
	keys := []string{normalized}
	seen := map[string]bool{normalized: true}
	for _, alt := range alternateNames {
		key := normalize.Title(alt)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		keys = append(keys, key)

		title, err := r.store.GetTitleByNormalizedTitle(ctx, key)
		if err != nil {
			return nil, err
		}
		if title != nil {
			return title, nil
		}
	}

	for _, key := range keys {
		title, err := r.store.GetTitleByAlternateName(ctx, key)
		if err != nil {
			return nil, err
		}
		if title != nil {
			return title, nil
		}
	}
	return nil, nil
}

// saveAlternates keeps every spelling that differs from the canonical title
// as an alternate name, keyed by the same normalized form lookups match on.
// Failures degrade to warnings; the title row is already resolved.
func (r *Resolver) saveAlternates(ctx context.Context, title *schema.VideoGameTitle, displayTitle string, alternateNames []string) {
	seen := map[string]bool{title.Title: true}
	for _, name := range append([]string{displayTitle}, alternateNames...) {
		if seen[name] {
			continue
		}
		seen[name] = true

		key := normalize.Title(name)
		if key == "" {
			continue
		}
		if err := r.store.AddAlternateName(ctx, title.ProductID, name, key); err != nil {
			logger.WarnCtx(ctx, "Failed to record alternate name",
				zap.String("name", name),
				zap.Int64("product_id", title.ProductID),
				zap.Error(err))
		}
	}
}
