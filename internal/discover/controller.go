// Package discover owns the movie discovery state: the search query, its
// debounced value, the result lists and the fetch status.
package discover

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/marco/movieFinder/internal/catalog"
	"github.com/marco/movieFinder/internal/debounce"
)

// FetchFailedMessage is shown when the all-movies request fails.
const FetchFailedMessage = "Failed fetching movies. Please try again!"

const (
	DefaultDebounceDelay = 500 * time.Millisecond
	DefaultTrendingSize  = 5
)

// Fetcher returns the movies for a query. *catalog.Client implements it.
type Fetcher interface {
	FetchMovies(ctx context.Context, query string) ([]catalog.Movie, error)
}

// Options configures a Controller.
type Options struct {
	Fetcher       Fetcher
	DebounceDelay time.Duration
	TrendingSize  int
	Logger        *slog.Logger
	// OnChange receives a snapshot after every state change. It is called
	// without the controller lock held, from any goroutine including the one
	// calling SetQuery, so it must not block.
	OnChange func(Snapshot)
}

// Controller coordinates query input, debouncing and the two fetch
// operations triggered by each debounced query.
type Controller struct {
	fetcher      Fetcher
	trendingSize int
	logger       *slog.Logger
	onChange     func(Snapshot)
	debouncer    *debounce.Debouncer[string]

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu             sync.Mutex
	query          string
	debounced      string
	started        bool
	movies         []catalog.Movie
	trending       []catalog.Movie
	status         Status
	errorMessage   string
	generation     uint64
	version        uint64
	cancelInFlight context.CancelFunc
	closed         bool
}

// New creates a Controller. Call Start to issue the initial fetch.
func New(opts Options) (*Controller, error) {
	if opts.Fetcher == nil {
		return nil, errors.New("discover: fetcher is required")
	}
	if opts.DebounceDelay <= 0 {
		opts.DebounceDelay = DefaultDebounceDelay
	}
	if opts.TrendingSize <= 0 {
		opts.TrendingSize = DefaultTrendingSize
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		fetcher:      opts.Fetcher,
		trendingSize: opts.TrendingSize,
		logger:       opts.Logger,
		onChange:     opts.OnChange,
		ctx:          ctx,
		cancel:       cancel,
	}
	c.debouncer = debounce.New(opts.DebounceDelay, c.applyDebounced)
	return c, nil
}

// Start dispatches the current debounced query. Subsequent calls are no-ops.
func (c *Controller) Start() {
	c.mu.Lock()
	if c.started || c.closed {
		c.mu.Unlock()
		return
	}
	c.started = true
	launch := c.dispatchLocked()
	c.mu.Unlock()

	launch()
}

// SetQuery records the raw input text and schedules the debounced update.
func (c *Controller) SetQuery(text string) {
	c.mu.Lock()
	if c.closed || c.query == text {
		c.mu.Unlock()
		return
	}
	c.query = text
	snap := c.changedLocked()
	c.mu.Unlock()

	c.notify(snap)
	c.debouncer.Trigger(text)
}

// Refresh re-dispatches the current debounced query.
func (c *Controller) Refresh() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	launch := c.dispatchLocked()
	c.mu.Unlock()

	launch()
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Close stops the debouncer, cancels in-flight fetches and waits for them to
// finish. No notifications are delivered after Close returns.
func (c *Controller) Close() {
	c.debouncer.Stop()

	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}

func (c *Controller) applyDebounced(text string) {
	c.mu.Lock()
	if c.closed || text == c.debounced {
		c.mu.Unlock()
		return
	}
	c.debounced = text
	launch := c.dispatchLocked()
	c.mu.Unlock()

	launch()
}

// dispatchLocked starts a new generation for the debounced query: the
// previous one is cancelled and both operations are marked loading. The
// returned func must be called after c.mu is released; it notifies and runs
// both fetches concurrently.
func (c *Controller) dispatchLocked() func() {
	if c.cancelInFlight != nil {
		c.cancelInFlight()
	}
	ctx, cancel := context.WithCancel(c.ctx)
	c.cancelInFlight = cancel
	c.generation++
	gen := c.generation
	query := c.debounced
	c.status = Status{AllMovies: Loading, Trending: Loading}
	c.errorMessage = ""
	c.wg.Add(3)
	snap := c.changedLocked()

	return func() {
		dispatchID := uuid.NewString()
		c.logger.Debug("dispatching catalog fetch",
			"dispatch_id", dispatchID,
			"generation", gen,
			"query", query,
		)
		c.notify(snap)
		c.wg.Done()

		go func() {
			defer c.wg.Done()
			movies, err := c.fetcher.FetchMovies(ctx, query)
			c.completeAllMovies(gen, dispatchID, movies, err)
		}()
		go func() {
			defer c.wg.Done()
			movies, err := c.fetcher.FetchMovies(ctx, query)
			c.completeTrending(gen, dispatchID, movies, err)
		}()
	}
}

func (c *Controller) completeAllMovies(gen uint64, dispatchID string, movies []catalog.Movie, err error) {
	c.mu.Lock()
	if c.closed || gen != c.generation {
		c.mu.Unlock()
		c.logger.Debug("discarding stale movies response", "dispatch_id", dispatchID, "generation", gen)
		return
	}

	if err != nil {
		c.movies = nil
		c.status.AllMovies = Failed
		c.errorMessage = errorMessageFor(err)
	} else {
		c.movies = movies
		c.status.AllMovies = Succeeded
	}
	snap := c.changedLocked()
	c.mu.Unlock()

	if err != nil {
		c.logger.Error("error fetching movies", "dispatch_id", dispatchID, "error", err)
	} else {
		c.logger.Info("movies fetched", "dispatch_id", dispatchID, "count", len(movies))
	}
	c.notify(snap)
}

func (c *Controller) completeTrending(gen uint64, dispatchID string, movies []catalog.Movie, err error) {
	c.mu.Lock()
	if c.closed || gen != c.generation {
		c.mu.Unlock()
		c.logger.Debug("discarding stale trending response", "dispatch_id", dispatchID, "generation", gen)
		return
	}

	// Trending failures keep the previous list and are not surfaced.
	if err != nil {
		c.status.Trending = Failed
	} else {
		c.trending = TopN(movies, c.trendingSize)
		c.status.Trending = Succeeded
	}
	snap := c.changedLocked()
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("error fetching trending movies", "dispatch_id", dispatchID, "error", err)
	}
	c.notify(snap)
}

func errorMessageFor(err error) string {
	var logical *catalog.LogicalFailureError
	if errors.As(err, &logical) && logical.Message != "" {
		return logical.Message
	}
	return FetchFailedMessage
}

// TopN returns a copy of the first n movies, preserving order.
func TopN(movies []catalog.Movie, n int) []catalog.Movie {
	if n > len(movies) {
		n = len(movies)
	}
	out := make([]catalog.Movie, n)
	copy(out, movies[:n])
	return out
}

// changedLocked bumps the version and returns the new snapshot.
func (c *Controller) changedLocked() Snapshot {
	c.version++
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		Version:        c.version,
		Query:          c.query,
		DebouncedQuery: c.debounced,
		Movies:         append([]catalog.Movie(nil), c.movies...),
		Trending:       append([]catalog.Movie(nil), c.trending...),
		Status:         c.status,
		ErrorMessage:   c.errorMessage,
	}
}

func (c *Controller) notify(snap Snapshot) {
	if c.onChange != nil {
		c.onChange(snap)
	}
}
