// Package ingest drives one provider ingestion pass: discovery, per-item
// metadata resolution and persistence, and multi-region price fan-out.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/gowebpki/jcs"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/gamedex/gd-indexer/internal/adapter"
	"github.com/gamedex/gd-indexer/internal/domain"
	"github.com/gamedex/gd-indexer/internal/logger"
	"github.com/gamedex/gd-indexer/internal/pricing"
	"github.com/gamedex/gd-indexer/internal/providers"
	"github.com/gamedex/gd-indexer/internal/resolver"
	"github.com/gamedex/gd-indexer/internal/store"
	"github.com/gamedex/gd-indexer/internal/store/schema"
)

const (
	defaultPageSize  = 50
	maxFanOutWorkers = 4

	stageFetch   = "fetch"
	stageResolve = "resolve"
	stagePersist = "persist"
)

// RunOptions configures one ingestion run
type RunOptions struct {
	Provider domain.Provider
	// Regions in priority order; the first is the discovery and metadata
	// primary, the rest get price-only fetches
	Regions []string
	// MaxPages bounds discovery; zero or negative means run to exhaustion
	MaxPages int
	PageSize int
	// Concurrency bounds the per-item price fan-out pool
	Concurrency int
	// QueueSize bounds the fan-out pool's task queue; zero leaves it
	// unbounded
	QueueSize int
}

// Orchestrator runs ingestion passes over registered provider clients
type Orchestrator struct {
	store    store.Store
	resolver *resolver.Resolver
	prices   *pricing.Writer
	clients  map[domain.Provider]providers.Client
	clock    adapter.Clock
	json     adapter.JSON
}

// New creates an orchestrator over the given provider clients
func New(s store.Store, r *resolver.Resolver, w *pricing.Writer, clients []providers.Client, clock adapter.Clock, json adapter.JSON) *Orchestrator {
	byKey := make(map[domain.Provider]providers.Client, len(clients))
	for _, c := range clients {
		byKey[c.Key()] = c
	}
	return &Orchestrator{
		store:    s,
		resolver: r,
		prices:   w,
		clients:  byKey,
		clock:    clock,
		json:     json,
	}
}

type itemOutcome struct {
	created       bool
	updated       bool
	pricesWritten int
}

// Run executes one ingestion pass. The returned error is non-nil only
// when discovery itself fails or the context is canceled; item-level
// failures are collected in the report.
func (o *Orchestrator) Run(ctx context.Context, opts RunOptions) (*domain.RunReport, error) {
	client, ok := o.clients[opts.Provider]
	if !ok {
		return nil, fmt.Errorf("no client registered for provider '%s'", opts.Provider)
	}
	if len(opts.Regions) == 0 {
		return nil, errors.New("at least one region is required")
	}
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = len(opts.Regions) - 1
		if opts.Concurrency > maxFanOutWorkers {
			opts.Concurrency = maxFanOutWorkers
		}
		if opts.Concurrency < 1 {
			opts.Concurrency = 1
		}
	}

	if err := o.store.EnsureSource(ctx, opts.Provider, domain.RetailerLabel(opts.Provider)); err != nil {
		return nil, fmt.Errorf("failed to ensure source row: %w", err)
	}

	startedAt := o.clock.Now()
	run := &schema.IngestRun{
		ID:        ulid.MustNewDefault(startedAt).String(),
		Provider:  opts.Provider,
		Regions:   opts.Regions,
		Status:    schema.RunStatusRunning,
		StartedAt: startedAt,
	}
	if err := o.store.CreateIngestRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to create ingest run: %w", err)
	}

	logger.InfoCtx(ctx, "Ingest run started",
		zap.String("run_id", run.ID),
		zap.String("provider", string(opts.Provider)),
		zap.Strings("regions", opts.Regions))

	report := &domain.RunReport{
		RunID:     run.ID,
		Provider:  opts.Provider,
		StartedAt: startedAt,
	}

	var poolOpts []pond.Option
	if opts.QueueSize > 0 {
		poolOpts = append(poolOpts, pond.WithQueueSize(opts.QueueSize))
	}
	pool := pond.NewResultPool[int](opts.Concurrency, poolOpts...)
	defer pool.Stop()

	runErr := o.runPages(ctx, client, pool, opts, report)

	report.FinishedAt = o.clock.Now()
	status := schema.RunStatusCompleted
	if runErr != nil {
		status = schema.RunStatusFailed
	}

	finish := store.FinishIngestRunInput{
		Status:              status,
		Created:             int64(report.Created),
		Updated:             int64(report.Updated),
		Skipped:             int64(report.Skipped),
		PriceRecordsWritten: int64(report.PriceRecordsWritten),
		ErrorCount:          int64(len(report.Errors)),
		FinishedAt:          report.FinishedAt,
	}
	if runErr != nil {
		finish.LastError = runErr.Error()
	} else if n := len(report.Errors); n > 0 {
		finish.LastError = report.Errors[n-1].Err
	}
	// Finishing the audit row must survive cancellation
	finishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := o.store.FinishIngestRun(finishCtx, run.ID, finish); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("run_id", run.ID))
	}
	if err := o.store.TouchSource(finishCtx, opts.Provider, report.FinishedAt); err != nil {
		logger.WarnCtx(ctx, "Failed to touch source row",
			zap.String("provider", string(opts.Provider)), zap.Error(err))
	}

	logger.InfoCtx(ctx, "Ingest run finished",
		zap.String("run_id", run.ID),
		zap.String("status", string(status)),
		zap.Int("created", report.Created),
		zap.Int("updated", report.Updated),
		zap.Int("skipped", report.Skipped),
		zap.Int("prices_written", report.PriceRecordsWritten),
		zap.Int("errors", len(report.Errors)))

	return report, runErr
}

// runPages walks discovery pages in the primary region and processes each
// item in order
func (o *Orchestrator) runPages(ctx context.Context, client providers.Client, pool pond.ResultPool[int], opts RunOptions, report *domain.RunReport) error {
	primary := opts.Regions[0]

	for page := 0; opts.MaxPages <= 0 || page < opts.MaxPages; page++ {
		ids, err := client.Discover(ctx, primary, page, opts.PageSize)
		if err != nil {
			return fmt.Errorf("discovery failed on page %d: %w", page, err)
		}
		if len(ids) == 0 {
			return nil
		}

		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("run canceled: %w", err)
			}

			outcome, err := o.processItem(ctx, client, pool, opts, id)
			if err != nil {
				report.Skipped++
				report.Errors = append(report.Errors, itemError(id, err))
				logger.WarnCtx(ctx, "Item failed",
					zap.String("provider", string(opts.Provider)),
					zap.String("item_id", id),
					zap.Error(err))
				continue
			}
			switch {
			case outcome.created:
				report.Created++
			case outcome.updated:
				report.Updated++
			}
			report.PriceRecordsWritten += outcome.pricesWritten
		}
	}
	return nil
}

// processItem ingests one catalog item: metadata, identity, persistence,
// prices
func (o *Orchestrator) processItem(ctx context.Context, client providers.Client, pool pond.ResultPool[int], opts RunOptions, id string) (*itemOutcome, error) {
	item, err := o.fetchItem(ctx, client, opts.Regions, id)
	if err != nil {
		return nil, err
	}

	resolution, err := o.resolver.Resolve(ctx, item.Name, item.AlternateNames)
	if err != nil {
		return nil, &stageError{stage: stageResolve, err: err}
	}

	game, created, err := o.store.UpsertVideoGame(ctx, store.UpsertVideoGameInput{
		TitleID:      resolution.Title.ID,
		Provider:     item.Provider,
		ExternalID:   item.ExternalID,
		Name:         item.Name,
		Platforms:    item.Platforms,
		Genres:       item.Genres,
		ReleaseDate:  item.ReleaseDate,
		Developer:    item.Developer,
		Publisher:    item.Publisher,
		Rating:       item.Rating,
		RatingCount:  item.RatingCount,
		Description:  item.Description,
		ProviderSlug: item.ProviderSlug,
		Media:        item.Media,
	})
	if err != nil {
		return nil, &stageError{stage: stagePersist, err: err}
	}
	if created {
		if err := o.store.IncrementSourceItems(ctx, item.Provider, 1); err != nil {
			logger.WarnCtx(ctx, "Failed to increment source items",
				zap.String("provider", string(item.Provider)), zap.Error(err))
		}
	}

	o.saveTitleSource(ctx, resolution.Title.ID, item)

	outcome := &itemOutcome{created: created, updated: !created}
	outcome.pricesWritten = o.writePrices(ctx, client, pool, opts, game.ID, item)
	return outcome, nil
}

// fetchItem tries the configured regions in priority order until one has
// the item listed
func (o *Orchestrator) fetchItem(ctx context.Context, client providers.Client, regions []string, id string) (*domain.CatalogItem, error) {
	var lastErr error
	for _, region := range regions {
		item, err := client.FetchItem(ctx, id, region)
		if err == nil {
			return item, nil
		}
		lastErr = err
		if errors.Is(err, domain.ErrNotFoundInRegion) {
			continue
		}
		logger.DebugCtx(ctx, "Metadata fetch failed, trying next region",
			zap.String("item_id", id),
			zap.String("region", region),
			zap.Error(err))
	}
	return nil, &stageError{stage: stageFetch, err: fmt.Errorf("no region served item: %w", lastErr)}
}

// saveTitleSource retains the raw payload per (title, provider), gated by
// the canonicalized payload hash. Failures degrade to a warning; the
// listing itself is already persisted.
func (o *Orchestrator) saveTitleSource(ctx context.Context, titleID int64, item *domain.CatalogItem) {
	if len(item.Raw) == 0 {
		return
	}
	raw, err := o.json.Marshal(item.Raw)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to encode raw payload", zap.Error(err))
		return
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to canonicalize raw payload", zap.Error(err))
		return
	}
	digest := sha256.Sum256(canonical)

	written, err := o.store.UpsertTitleSource(ctx, store.UpsertTitleSourceInput{
		TitleID:     titleID,
		Provider:    item.Provider,
		Payload:     datatypes.JSON(canonical),
		PayloadHash: hex.EncodeToString(digest[:]),
		FetchedAt:   o.clock.Now(),
	})
	if err != nil {
		logger.WarnCtx(ctx, "Failed to save title source payload",
			zap.Int64("title_id", titleID),
			zap.String("provider", string(item.Provider)),
			zap.Error(err))
		return
	}
	if !written {
		logger.DebugCtx(ctx, "Title source payload unchanged",
			zap.Int64("title_id", titleID),
			zap.String("provider", string(item.Provider)))
	}
}

// writePrices records the embedded quote from the metadata region, then
// fans out price-only fetches for the remaining regions. Region failures
// never fail the item.
func (o *Orchestrator) writePrices(ctx context.Context, client providers.Client, pool pond.ResultPool[int], opts RunOptions, gameID int64, item *domain.CatalogItem) int {
	written := 0
	if item.Price != nil {
		ok, err := o.prices.Upsert(ctx, pricing.PriceObservation{
			VideoGameID: gameID,
			Provider:    item.Provider,
			Region:      item.Region,
			Quote:       item.Price,
		})
		if err != nil {
			logger.WarnCtx(ctx, "Failed to write embedded price",
				zap.Int64("video_game_id", gameID),
				zap.String("region", item.Region),
				zap.Error(err))
		} else if ok {
			written++
		}
	}

	tasks := make([]pond.Result[int], 0, len(opts.Regions))
	for _, region := range opts.Regions {
		if region == item.Region {
			continue
		}
		tasks = append(tasks, pool.SubmitErr(func() (int, error) {
			return o.fetchAndWritePrice(ctx, client, gameID, item, region)
		}))
	}
	for _, task := range tasks {
		n, err := task.Wait()
		if err != nil {
			logger.WarnCtx(ctx, "Price fan-out task failed",
				zap.Int64("video_game_id", gameID),
				zap.Error(err))
			continue
		}
		written += n
	}
	return written
}

func (o *Orchestrator) fetchAndWritePrice(ctx context.Context, client providers.Client, gameID int64, item *domain.CatalogItem, region string) (int, error) {
	quote, err := client.FetchPrice(ctx, item.ExternalID, region)
	if err != nil {
		if errors.Is(err, domain.ErrNotFoundInRegion) || errors.Is(err, domain.ErrNoPriceData) {
			logger.DebugCtx(ctx, "No price in region",
				zap.String("item_id", item.ExternalID),
				zap.String("region", region))
			return 0, nil
		}
		return 0, fmt.Errorf("price fetch for region %s: %w", region, err)
	}

	ok, err := o.prices.Upsert(ctx, pricing.PriceObservation{
		VideoGameID: gameID,
		Provider:    item.Provider,
		Region:      region,
		Quote:       quote,
	})
	if err != nil {
		return 0, fmt.Errorf("price write for region %s: %w", region, err)
	}
	if !ok {
		return 0, nil
	}
	return 1, nil
}

// stageError tags an item failure with the pipeline stage it happened in
type stageError struct {
	stage string
	err   error
}

func (e *stageError) Error() string {
	return fmt.Sprintf("%s: %v", e.stage, e.err)
}

func (e *stageError) Unwrap() error {
	return e.err
}

func itemError(id string, err error) domain.ItemError {
	var se *stageError
	stage := "ingest"
	if errors.As(err, &se) {
		stage = se.stage
	}
	return domain.ItemError{ItemID: id, Stage: stage, Err: err.Error()}
}
