package gallery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Default endpoint parameters for the Visual Studio Marketplace gallery.
const (
	// DefaultEndpoint is the gallery search endpoint.
	DefaultEndpoint = "https://marketplace.visualstudio.com/_apis/public/gallery/extensionquery"

	// DefaultAPIVersion is the api-version query parameter the gallery
	// expects on every request.
	DefaultAPIVersion = "5.1-preview.1"

	// defaultTimeout bounds a single page request. The gallery normally
	// answers in a few seconds; anything slower is treated as a transport
	// failure and retried by the crawler.
	defaultTimeout = 60 * time.Second

	// maxErrorBodySize limits how much of an error response body is read
	// when decoding the structured error payload.
	maxErrorBodySize = 1 * 1024 * 1024 // 1MB
)

// QueryResponse is one page of extensionquery results.
//
// Results is a pointer so a response without a results field can be told
// apart from one with an empty result set: the gallery signals end-of-data
// by omitting the field entirely.
type QueryResponse struct {
	Results *[]ResultGroup `json:"results"`
}

// ResultGroup is one group of a query response. The gallery returns the
// extension list in the first group.
type ResultGroup struct {
	Extensions []Extension `json:"extensions"`
}

// Extension is one extension record of a query response.
type Extension struct {
	Publisher     Publisher          `json:"publisher"`
	ExtensionName string             `json:"extensionName"`
	Versions      []ExtensionVersion `json:"versions"`
}

// Publisher identifies the publisher of an extension.
type Publisher struct {
	PublisherName string `json:"publisherName"`
}

// ExtensionVersion is one published version of an extension. The gallery
// sends more fields per version; only the version string is needed here.
type ExtensionVersion struct {
	Version string `json:"version"`
}

// Extensions returns the extension records of the response's first result
// group. ok is false when the response carried no results field, which the
// gallery uses to signal the end of pagination.
func (r *QueryResponse) Extensions() (extensions []Extension, ok bool) {
	if r.Results == nil {
		return nil, false
	}
	if len(*r.Results) == 0 {
		return nil, true
	}
	return (*r.Results)[0].Extensions, true
}

// Client issues extensionquery requests against a gallery endpoint.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiVersion string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithEndpoint overrides the gallery search endpoint URL.
func WithEndpoint(endpoint string) ClientOption {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

// WithAPIVersion overrides the api-version query parameter.
func WithAPIVersion(version string) ClientOption {
	return func(c *Client) {
		c.apiVersion = version
	}
}

// WithHTTPClient replaces the underlying HTTP client. Useful for tests and
// for callers that need custom transport configuration.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a gallery client for the default marketplace endpoint.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		endpoint:   DefaultEndpoint,
		apiVersion: DefaultAPIVersion,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// QueryPage posts the query for the given 1-based page and decodes the
// response. A non-success HTTP status is returned as an *EndpointError
// carrying the decoded structured error body; transport failures are
// returned as-is. Both are classified by the crawler's retry loop.
func (c *Client) QueryPage(ctx context.Context, page int) (*QueryResponse, error) {
	payload, err := json.Marshal(NewPageQuery(page))
	if err != nil {
		return nil, fmt.Errorf("gallery: encode query for page %d: %w", page, err)
	}

	endpoint := c.endpoint + "?" + url.Values{"api-version": {c.apiVersion}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("gallery: build request for page %d: %w", page, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gallery: query page %d: %w", page, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Read-only body

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.decodeError(resp, page)
	}

	var qr QueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&qr); err != nil {
		return nil, fmt.Errorf("gallery: decode page %d response: %w", page, err)
	}
	return &qr, nil
}

// decodeError reads a non-success response body as the gallery's
// structured error payload. An undecodable body still yields an
// *EndpointError, with an empty typeKey, so the crawler treats it as a
// non-retryable structured failure rather than a transport blip.
func (c *Client) decodeError(resp *http.Response, page int) error {
	endpointErr := &EndpointError{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	if err == nil {
		// Decode errors leave TypeKey empty, which classifies as fatal.
		_ = json.Unmarshal(body, endpointErr) //nolint:errcheck // Intentional best-effort decode
	}

	return fmt.Errorf("gallery: query page %d failed: %w", page, endpointErr)
}
