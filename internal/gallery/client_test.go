package gallery

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestClientQueryPage tests request construction and response decoding
// against a fake gallery.
func TestClientQueryPage(t *testing.T) {
	t.Parallel()

	t.Run("decodes a result page", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			if got := r.URL.Query().Get("api-version"); got != DefaultAPIVersion {
				t.Errorf("expected api-version %s, got %s", DefaultAPIVersion, got)
			}

			var q Query
			if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
				t.Errorf("failed to decode query payload: %v", err)
			}

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"results": [
					{
						"extensions": [
							{
								"publisher": {"publisherName": "rebornix"},
								"extensionName": "Ruby",
								"versions": [{"version": "0.22.3"}, {"version": "0.22.2"}]
							}
						]
					}
				]
			}`))
		}))
		defer srv.Close()

		client := NewClient(WithEndpoint(srv.URL))
		resp, err := client.QueryPage(context.Background(), 1)
		if err != nil {
			t.Fatalf("query failed: %v", err)
		}

		extensions, ok := resp.Extensions()
		if !ok {
			t.Fatal("expected results field to be present")
		}
		if len(extensions) != 1 {
			t.Fatalf("expected 1 extension, got %d", len(extensions))
		}
		ext := extensions[0]
		if ext.Publisher.PublisherName != "rebornix" || ext.ExtensionName != "Ruby" {
			t.Errorf("unexpected extension record: %+v", ext)
		}
		if len(ext.Versions) != 2 || ext.Versions[0].Version != "0.22.3" {
			t.Errorf("unexpected versions: %+v", ext.Versions)
		}
	})

	t.Run("missing results field signals end of data", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		client := NewClient(WithEndpoint(srv.URL))
		resp, err := client.QueryPage(context.Background(), 1)
		if err != nil {
			t.Fatalf("query failed: %v", err)
		}
		if _, ok := resp.Extensions(); ok {
			t.Error("expected ok=false for response without results field")
		}
	})

	t.Run("structured error body becomes EndpointError", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"typeKey": "CircuitBreakerExceededExecutionLimitException", "message": "slow down"}`))
		}))
		defer srv.Close()

		client := NewClient(WithEndpoint(srv.URL))
		_, err := client.QueryPage(context.Background(), 2)
		if err == nil {
			t.Fatal("expected error for non-success status")
		}

		var endpointErr *EndpointError
		if !errors.As(err, &endpointErr) {
			t.Fatalf("expected *EndpointError, got %T: %v", err, err)
		}
		if !endpointErr.IsCircuitBreaker() {
			t.Errorf("expected circuit breaker classification, got typeKey %q", endpointErr.TypeKey)
		}
		if endpointErr.StatusCode != http.StatusTooManyRequests {
			t.Errorf("expected status 429, got %d", endpointErr.StatusCode)
		}
	})

	t.Run("undecodable error body keeps empty typeKey", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`<html>bad gateway</html>`))
		}))
		defer srv.Close()

		client := NewClient(WithEndpoint(srv.URL))
		_, err := client.QueryPage(context.Background(), 1)

		var endpointErr *EndpointError
		if !errors.As(err, &endpointErr) {
			t.Fatalf("expected *EndpointError, got %T: %v", err, err)
		}
		if endpointErr.TypeKey != "" {
			t.Errorf("expected empty typeKey, got %q", endpointErr.TypeKey)
		}
	})
}

// TestClassify tests the retry/fatal classification of page failures.
func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want disposition
	}{
		{
			name: "circuit breaker error retries",
			err:  &EndpointError{StatusCode: 429, TypeKey: circuitBreakerTypeKey},
			want: dispositionRetry,
		},
		{
			name: "other structured error is fatal",
			err:  &EndpointError{StatusCode: 400, TypeKey: "InvalidRequestException"},
			want: dispositionFatal,
		},
		{
			name: "undecodable error body is fatal",
			err:  &EndpointError{StatusCode: 502},
			want: dispositionFatal,
		},
		{
			name: "transport failure retries",
			err:  errors.New("connection refused"),
			want: dispositionRetry,
		},
		{
			name: "context cancellation is fatal",
			err:  context.Canceled,
			want: dispositionFatal,
		},
		{
			name: "malformed success body is fatal",
			err:  &json.SyntaxError{},
			want: dispositionFatal,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := classify(tt.err); got != tt.want {
				t.Errorf("classify(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
