package gallery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wrouesnel/vscode-extension-downloader/internal/model"
)

// Backoff defaults for retryable page failures.
const (
	// DefaultBackoffBase is the wait before the first retry; each further
	// retry of the same page doubles it.
	DefaultBackoffBase = 1 * time.Second

	// DefaultBackoffMax caps the exponential backoff growth.
	DefaultBackoffMax = 60 * time.Second
)

// PageQuerier issues one page request against the gallery. *Client is the
// production implementation; tests substitute fakes.
type PageQuerier interface {
	QueryPage(ctx context.Context, page int) (*QueryResponse, error)
}

// Crawler drives sequential paginated queries against the gallery and
// accumulates every (publisher, extension, version) it sees into an Index.
//
// Design decision: The index is created inside Run and returned, rather
// than accumulated on the Crawler or in package state. The accumulator has
// a single owner threaded through the crawl loop, so a Crawler can be
// reused and there is no ambient mutable state to reset between runs.
type Crawler struct {
	// client issues the page requests.
	client PageQuerier

	// logger receives per-page progress and retry events.
	logger *slog.Logger

	// backoffBase is the wait before the first retry of a page.
	backoffBase time.Duration

	// backoffMax caps the exponential backoff.
	backoffMax time.Duration

	// maxAttempts bounds consecutive retries of a single page.
	// 0 means retry without bound, matching the endpoint's usual behavior
	// of recovering once its circuit breaker closes.
	maxAttempts int

	// sleep waits between retries. Injectable so tests can observe backoff
	// durations without sleeping.
	sleep func(ctx context.Context, d time.Duration) error
}

// CrawlerOption configures a Crawler.
type CrawlerOption func(*Crawler)

// WithLogger sets the logger for crawl progress and retry events.
func WithLogger(logger *slog.Logger) CrawlerOption {
	return func(c *Crawler) {
		c.logger = logger
	}
}

// WithBackoff sets the base and maximum retry backoff durations.
func WithBackoff(base, maxWait time.Duration) CrawlerOption {
	return func(c *Crawler) {
		c.backoffBase = base
		c.backoffMax = maxWait
	}
}

// WithMaxAttempts bounds consecutive retries of a single page.
// 0 retries without bound.
func WithMaxAttempts(n int) CrawlerOption {
	return func(c *Crawler) {
		c.maxAttempts = n
	}
}

// NewCrawler creates a Crawler that queries pages through client.
func NewCrawler(client PageQuerier, opts ...CrawlerOption) *Crawler {
	c := &Crawler{
		client:      client,
		logger:      slog.Default(),
		backoffBase: DefaultBackoffBase,
		backoffMax:  DefaultBackoffMax,
		sleep:       sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run crawls the gallery from page 1 until exhaustion and returns the
// accumulated index.
//
// Pages advance by one after each successful request. The crawl terminates
// when a response carries no results field or an empty extension list.
// Retryable failures (circuit breaker rejections, transport errors) replay
// the same page after an exponential backoff; the attempt counter resets
// whenever a page succeeds. Any other failure stops the crawl and is
// returned.
func (c *Crawler) Run(ctx context.Context) (*model.Index, error) {
	index := model.NewIndex()
	page := 1
	attempt := 0

	for {
		c.logger.Debug("querying for extensions", "page", page)

		resp, err := c.client.QueryPage(ctx, page)
		if err != nil {
			if classify(err) != dispositionRetry {
				return nil, err
			}
			wait := c.backoffFor(attempt)
			attempt++
			if c.maxAttempts > 0 && attempt > c.maxAttempts {
				return nil, fmt.Errorf("gallery: giving up on page %d after %d attempts: %w", page, attempt, err)
			}
			c.logger.Warn("transient gallery failure, backing off",
				"page", page,
				"attempt", attempt,
				"wait", wait,
				"error", err,
			)
			if err := c.sleep(ctx, wait); err != nil {
				return nil, err
			}
			continue
		}
		attempt = 0

		extensions, ok := resp.Extensions()
		if !ok {
			c.logger.Info("no results field in response, finished iterating extensions", "page", page)
			break
		}
		if len(extensions) == 0 {
			c.logger.Info("no extensions received, ending iteration", "page", page)
			break
		}

		c.logger.Info("got results", "page", page, "receivedExtensions", len(extensions))

		for _, extension := range extensions {
			for _, version := range extension.Versions {
				index.Add(extension.Publisher.PublisherName, extension.ExtensionName, version.Version)
			}
		}
		page++
	}

	c.logger.Info("crawl complete", "publishers", index.PublisherCount())
	return index, nil
}

// backoffFor returns the wait before retry number attempt (0-based):
// min(base * 2^attempt, max).
func (c *Crawler) backoffFor(attempt int) time.Duration {
	// Beyond 30 doublings the shift would overflow; the cap applies long
	// before that for any sane configuration.
	if attempt > 30 {
		return c.backoffMax
	}
	wait := c.backoffBase << uint(attempt)
	if wait > c.backoffMax {
		wait = c.backoffMax
	}
	return wait
}

// sleepContext waits for d or until ctx is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
