package composer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// AssetState is the lifecycle stage of a cache entry.
type AssetState uint8

const (
	AssetMissing AssetState = iota // no entry for the key
	AssetLoading                   // decode in flight
	AssetReady                     // bitmap available
	AssetFailed                    // decode failed; never retried
)

func (s AssetState) String() string {
	switch s {
	case AssetMissing:
		return "missing"
	case AssetLoading:
		return "loading"
	case AssetReady:
		return "ready"
	case AssetFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// AssetEntry is the memoized result for one source key.
type AssetEntry struct {
	SourceKey string
	Image     image.Image
	// LoadedAt is a monotonic marker: the n-th entry to settle gets n.
	LoadedAt uint64
	State    AssetState
	Err      error
}

// AssetLoader reads and decodes the bitmap for a source key. Load is called
// from a background goroutine and must not touch editor state.
type AssetLoader interface {
	Load(ctx context.Context, key string) (image.Image, error)
}

// AssetLoaderFunc adapts a function to AssetLoader.
type AssetLoaderFunc func(ctx context.Context, key string) (image.Image, error)

// Load implements AssetLoader.
func (f AssetLoaderFunc) Load(ctx context.Context, key string) (image.Image, error) {
	return f(ctx, key)
}

// AssetCacheOptions configures NewAssetCache. Zero values select defaults.
type AssetCacheOptions struct {
	// Loader decodes sources. Defaults to a FileLoader rooted at ".".
	Loader AssetLoader
	// MaxConcurrent bounds simultaneous decodes. Defaults to 4.
	MaxConcurrent int
	Logger        *zap.Logger
	Metrics       *Metrics
}

const defaultMaxConcurrentDecodes = 4

type assetResult struct {
	key string
	img image.Image
	err error
}

// AssetCache loads bitmaps asynchronously and memoizes them by source key.
// Entries are created once and never evicted. A key that fails to decode
// is poisoned: it stays AssetFailed and is never retried. A load cut short
// by cancellation leaves no entry behind.
//
// All methods except Close must be called from the loop that renders;
// decodes run on background goroutines and hand their results back
// through Pump.
type AssetCache struct {
	entries  map[string]*AssetEntry
	results  chan assetResult
	inflight int
	marker   uint64

	loader  AssetLoader
	sem     *semaphore.Weighted
	limit   int
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	closing sync.Once

	listeners []func(key string, err error)
	log       *zap.Logger
	metrics   *Metrics
}

// NewAssetCache creates an empty cache.
func NewAssetCache(opts AssetCacheOptions) *AssetCache {
	if opts.Loader == nil {
		opts.Loader = NewFileLoader(".")
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = defaultMaxConcurrentDecodes
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &AssetCache{
		entries: make(map[string]*AssetEntry),
		results: make(chan assetResult, 64),
		loader:  opts.Loader,
		sem:     semaphore.NewWeighted(int64(opts.MaxConcurrent)),
		limit:   opts.MaxConcurrent,
		ctx:     ctx,
		cancel:  cancel,
		log:     opts.Logger,
		metrics: opts.Metrics,
	}
}

// OnLoaded registers fn to run on the loop after an entry settles. err is
// nil on success and wraps ErrAssetDecodeFailure otherwise.
func (c *AssetCache) OnLoaded(fn func(key string, err error)) {
	c.listeners = append(c.listeners, fn)
}

// EnsureLoaded starts decoding key unless an entry already exists in any
// state. It never blocks.
func (c *AssetCache) EnsureLoaded(key string) {
	if _, ok := c.entries[key]; ok {
		return
	}
	if c.ctx.Err() != nil {
		return
	}
	c.entries[key] = &AssetEntry{SourceKey: key, State: AssetLoading}
	c.inflight++
	c.wg.Add(1)
	go c.load(key)
}

func (c *AssetCache) load(key string) {
	defer c.wg.Done()
	if err := c.sem.Acquire(c.ctx, 1); err != nil {
		return
	}
	img, err := c.loader.Load(c.ctx, key)
	c.sem.Release(1)

	select {
	case c.results <- assetResult{key: key, img: img, err: err}:
	case <-c.ctx.Done():
	}
}

// Get returns the decoded bitmap for key if it is ready.
func (c *AssetCache) Get(key string) (image.Image, bool) {
	e, ok := c.entries[key]
	if !ok || e.State != AssetReady {
		return nil, false
	}
	return e.Image, true
}

// State returns the lifecycle stage for key.
func (c *AssetCache) State(key string) AssetState {
	if e, ok := c.entries[key]; ok {
		return e.State
	}
	return AssetMissing
}

// Err returns the memoized failure for key, if any.
func (c *AssetCache) Err(key string) error {
	if e, ok := c.entries[key]; ok {
		return e.Err
	}
	return nil
}

// Entry returns a copy of the entry for key.
func (c *AssetCache) Entry(key string) (AssetEntry, bool) {
	e, ok := c.entries[key]
	if !ok {
		return AssetEntry{}, false
	}
	return *e, true
}

// Len returns the number of entries in any state.
func (c *AssetCache) Len() int { return len(c.entries) }

// Pending returns the number of decodes that have not been pumped yet.
func (c *AssetCache) Pending() int { return c.inflight }

// Pump applies every finished decode without blocking and returns how many
// entries settled.
func (c *AssetCache) Pump() int {
	n := 0
	for {
		select {
		case r := <-c.results:
			c.apply(r)
			n++
		default:
			return n
		}
	}
}

// Await blocks until every in-flight decode has settled or ctx is done.
func (c *AssetCache) Await(ctx context.Context) error {
	for c.inflight > 0 {
		select {
		case r := <-c.results:
			c.apply(r)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Preload decodes every missing key and blocks until all have settled.
// Failures are memoized as usual and reported joined in the returned error.
func (c *AssetCache) Preload(ctx context.Context, keys ...string) error {
	var todo []string
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if _, ok := c.entries[k]; ok || seen[k] {
			continue
		}
		seen[k] = true
		todo = append(todo, k)
	}
	if len(todo) == 0 {
		return c.Await(ctx)
	}

	out := make([]assetResult, len(todo))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.limit)
	for i, key := range todo {
		c.entries[key] = &AssetEntry{SourceKey: key, State: AssetLoading}
		g.Go(func() error {
			img, err := c.loader.Load(gctx, key)
			out[i] = assetResult{key: key, img: img, err: err}
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, r := range out {
		c.settle(r)
		if e, ok := c.entries[r.key]; !ok {
			errs = append(errs, fmt.Errorf("%s: %w", r.key, r.err))
		} else if e.Err != nil {
			errs = append(errs, e.Err)
		}
	}
	if err := c.Await(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Close cancels in-flight decodes and waits for their goroutines. Results
// that arrive afterwards are dropped.
func (c *AssetCache) Close() {
	c.closing.Do(func() {
		c.cancel()
		c.wg.Wait()
	})
}

func (c *AssetCache) apply(r assetResult) {
	c.inflight--
	c.settle(r)
}

func (c *AssetCache) settle(r assetResult) {
	e, ok := c.entries[r.key]
	if !ok || e.State != AssetLoading {
		return
	}
	if errors.Is(r.err, context.Canceled) || errors.Is(r.err, context.DeadlineExceeded) {
		// An interrupted load says nothing about the source; forget it so
		// the next EnsureLoaded starts over.
		delete(c.entries, r.key)
		c.log.Debug("asset load interrupted", zap.String("source", r.key), zap.Error(r.err))
		return
	}
	c.marker++
	e.LoadedAt = c.marker

	switch {
	case r.err != nil:
		e.State = AssetFailed
		e.Err = fmt.Errorf("%w: %s: %w", ErrAssetDecodeFailure, r.key, r.err)
	case r.img == nil:
		e.State = AssetFailed
		e.Err = fmt.Errorf("%w: %s: loader returned no image", ErrAssetDecodeFailure, r.key)
	default:
		e.State = AssetReady
		e.Image = r.img
	}

	if e.Err != nil {
		c.log.Warn("asset failed", zap.String("source", r.key), zap.Error(e.Err))
		c.metrics.assetLoaded(false)
	} else {
		b := e.Image.Bounds()
		c.log.Debug("asset ready", zap.String("source", r.key),
			zap.Int("width", b.Dx()), zap.Int("height", b.Dy()))
		c.metrics.assetLoaded(true)
	}

	for _, fn := range c.listeners {
		fn(r.key, e.Err)
	}
}
