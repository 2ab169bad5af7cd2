package gallery

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"
	"time"
)

// fakeQuerier serves scripted page results for crawler tests.
// Each call pops the next step regardless of the requested page, so a
// retried page consumes the next scripted step.
type fakeQuerier struct {
	steps []fakeStep
	calls []int
}

type fakeStep struct {
	resp *QueryResponse
	err  error
}

func (f *fakeQuerier) QueryPage(_ context.Context, page int) (*QueryResponse, error) {
	f.calls = append(f.calls, page)
	if len(f.steps) == 0 {
		return &QueryResponse{}, nil
	}
	step := f.steps[0]
	f.steps = f.steps[1:]
	return step.resp, step.err
}

// pageWith builds a one-group response containing the given extensions.
func pageWith(extensions ...Extension) *QueryResponse {
	groups := []ResultGroup{{Extensions: extensions}}
	return &QueryResponse{Results: &groups}
}

// emptyPage builds a response whose extension list is empty.
func emptyPage() *QueryResponse {
	return pageWith()
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestCrawlerTermination tests the two end-of-data conditions.
func TestCrawlerTermination(t *testing.T) {
	t.Parallel()

	t.Run("stops after empty extension list keeping first page data", func(t *testing.T) {
		t.Parallel()

		querier := &fakeQuerier{steps: []fakeStep{
			{resp: pageWith(Extension{
				Publisher:     Publisher{PublisherName: "rebornix"},
				ExtensionName: "Ruby",
				Versions:      []ExtensionVersion{{Version: "0.22.3"}, {Version: "0.22.2"}},
			})},
			{resp: emptyPage()},
		}}

		crawler := NewCrawler(querier, WithLogger(quietLogger()))
		index, err := crawler.Run(context.Background())
		if err != nil {
			t.Fatalf("crawl failed: %v", err)
		}

		if want := []int{1, 2}; !reflect.DeepEqual(querier.calls, want) {
			t.Errorf("expected exactly page requests %v, got %v", want, querier.calls)
		}
		if got := index.Versions("rebornix", "Ruby"); !reflect.DeepEqual(got, []string{"0.22.3", "0.22.2"}) {
			t.Errorf("unexpected versions in index: %v", got)
		}
		if index.PublisherCount() != 1 {
			t.Errorf("expected 1 publisher, got %d", index.PublisherCount())
		}
	})

	t.Run("stops when results field is missing", func(t *testing.T) {
		t.Parallel()

		querier := &fakeQuerier{steps: []fakeStep{
			{resp: pageWith(Extension{
				Publisher:     Publisher{PublisherName: "acme"},
				ExtensionName: "tool",
				Versions:      []ExtensionVersion{{Version: "1.0.0"}},
			})},
			{resp: &QueryResponse{}},
		}}

		crawler := NewCrawler(querier, WithLogger(quietLogger()))
		index, err := crawler.Run(context.Background())
		if err != nil {
			t.Fatalf("crawl failed: %v", err)
		}
		if len(querier.calls) != 2 {
			t.Errorf("expected 2 page requests, got %d", len(querier.calls))
		}
		if index.PublisherCount() != 1 {
			t.Errorf("expected 1 publisher, got %d", index.PublisherCount())
		}
	})
}

// TestCrawlerRetry tests backoff behavior and failure classification in
// the crawl loop.
func TestCrawlerRetry(t *testing.T) {
	t.Parallel()

	t.Run("retries the same page with exponential backoff", func(t *testing.T) {
		t.Parallel()

		transient := &EndpointError{StatusCode: 429, TypeKey: circuitBreakerTypeKey}
		querier := &fakeQuerier{steps: []fakeStep{
			{err: transient},
			{err: transient},
			{err: transient},
			{resp: emptyPage()},
		}}

		crawler := NewCrawler(querier, WithLogger(quietLogger()))
		var waits []time.Duration
		crawler.sleep = func(_ context.Context, d time.Duration) error {
			waits = append(waits, d)
			return nil
		}

		if _, err := crawler.Run(context.Background()); err != nil {
			t.Fatalf("crawl failed: %v", err)
		}

		wantWaits := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
		if !reflect.DeepEqual(waits, wantWaits) {
			t.Errorf("expected waits %v, got %v", wantWaits, waits)
		}
		if want := []int{1, 1, 1, 1}; !reflect.DeepEqual(querier.calls, want) {
			t.Errorf("expected same-page retries %v, got %v", want, querier.calls)
		}
	})

	t.Run("attempt counter resets after success", func(t *testing.T) {
		t.Parallel()

		transient := &EndpointError{StatusCode: 429, TypeKey: circuitBreakerTypeKey}
		page := pageWith(Extension{
			Publisher:     Publisher{PublisherName: "acme"},
			ExtensionName: "tool",
			Versions:      []ExtensionVersion{{Version: "1.0.0"}},
		})
		querier := &fakeQuerier{steps: []fakeStep{
			{err: transient},
			{err: transient},
			{resp: page},
			{err: transient},
			{resp: emptyPage()},
		}}

		crawler := NewCrawler(querier, WithLogger(quietLogger()))
		var waits []time.Duration
		crawler.sleep = func(_ context.Context, d time.Duration) error {
			waits = append(waits, d)
			return nil
		}

		if _, err := crawler.Run(context.Background()); err != nil {
			t.Fatalf("crawl failed: %v", err)
		}

		// The failure after the successful page starts from the base wait.
		wantWaits := []time.Duration{1 * time.Second, 2 * time.Second, 1 * time.Second}
		if !reflect.DeepEqual(waits, wantWaits) {
			t.Errorf("expected waits %v, got %v", wantWaits, waits)
		}
	})

	t.Run("unrecognized structured error stops the crawl", func(t *testing.T) {
		t.Parallel()

		fatal := &EndpointError{StatusCode: 400, TypeKey: "InvalidRequestException"}
		querier := &fakeQuerier{steps: []fakeStep{{err: fatal}}}

		crawler := NewCrawler(querier, WithLogger(quietLogger()))
		_, err := crawler.Run(context.Background())
		if err == nil {
			t.Fatal("expected crawl to fail")
		}
		var endpointErr *EndpointError
		if !errors.As(err, &endpointErr) {
			t.Fatalf("expected *EndpointError surfaced, got %T: %v", err, err)
		}
		if len(querier.calls) != 1 {
			t.Errorf("expected 1 page request, got %d", len(querier.calls))
		}
	})

	t.Run("max attempts bound stops retrying", func(t *testing.T) {
		t.Parallel()

		transient := errors.New("connection reset")
		querier := &fakeQuerier{steps: []fakeStep{
			{err: transient},
			{err: transient},
			{err: transient},
		}}

		crawler := NewCrawler(querier, WithLogger(quietLogger()), WithMaxAttempts(2))
		crawler.sleep = func(context.Context, time.Duration) error { return nil }

		_, err := crawler.Run(context.Background())
		if err == nil {
			t.Fatal("expected crawl to fail after exhausting attempts")
		}
		if !errors.Is(err, transient) {
			t.Errorf("expected underlying error surfaced, got %v", err)
		}
		if len(querier.calls) != 3 {
			t.Errorf("expected 3 page requests (1 + 2 retries), got %d", len(querier.calls))
		}
	})

	t.Run("cancelled context stops the retry sleep", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		querier := &fakeQuerier{steps: []fakeStep{{err: errors.New("timeout")}}}
		crawler := NewCrawler(querier, WithLogger(quietLogger()))

		_, err := crawler.Run(ctx)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

// TestBackoffFor tests the backoff growth curve and its cap.
func TestBackoffFor(t *testing.T) {
	t.Parallel()

	crawler := NewCrawler(nil, WithLogger(quietLogger()))

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 32 * time.Second},
		{6, 60 * time.Second},
		{7, 60 * time.Second},
		{40, 60 * time.Second},
	}

	for _, tt := range tests {
		if got := crawler.backoffFor(tt.attempt); got != tt.want {
			t.Errorf("backoffFor(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}
