package openfda

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/giygas/openfda-gateway/logging"
	"github.com/giygas/openfda-gateway/metrics"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"
)

const (
	DefaultHost = "api.fda.gov"
	BasePath    = "/drug/label.json"
	UserAgent   = "http-client"

	maxBodyBytes = 32 << 20

	operationFetch   = "fetch"
	operationSearch  = "searchDrugs"
	operationCompany = "searchCompanies"
	operationList    = "listDrugs"
)

var (
	// ErrUpstreamUnreachable wraps any failure to get a response from the API
	ErrUpstreamUnreachable = errors.New("openfda: upstream unreachable")
	// ErrMalformedResponse wraps a response body that is not the expected JSON
	ErrMalformedResponse = errors.New("openfda: malformed upstream response")
)

// Client issues GET requests against the drug-label endpoint. A Client has
// no mutable state and is safe to share between requests.
type Client struct {
	// Scheme and Host locate the API; Scheme defaults to https
	Scheme string
	Host   string
	// EscapeTerms query-escapes values interpolated into the search
	// expression. Off reproduces the legacy verbatim interpolation, where a
	// value containing & or " corrupts the query.
	EscapeTerms bool

	httpClient *http.Client
}

// NewClient builds a client for host. timeout 0 means no timeout.
func NewClient(host string, timeout time.Duration, escapeTerms bool) *Client {
	if host == "" {
		host = DefaultHost
	}
	return &Client{
		Scheme:      "https",
		Host:        host,
		EscapeTerms: escapeTerms,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// WithHTTPClient replaces the underlying http.Client, mostly for tests
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// Target builds the request target: BasePath, plus "?query" when query is set
func Target(query string) string {
	if query == "" {
		return BasePath
	}
	return BasePath + "?" + query
}

// SearchDrugsQuery is search=active_ingredient:"<ingredient>"[&limit=<limit>]
func (c *Client) SearchDrugsQuery(ingredient, limit string) string {
	return c.withLimit(`search=active_ingredient:"`+c.term(ingredient)+`"`, limit)
}

// SearchCompaniesQuery is search=openfda.manufacturer_name:"<company>"[&limit=<limit>]
func (c *Client) SearchCompaniesQuery(company, limit string) string {
	return c.withLimit(`search=openfda.manufacturer_name:"`+c.term(company)+`"`, limit)
}

// ListDrugsQuery is limit=<limit>, or empty when no limit is given
func (c *Client) ListDrugsQuery(limit string) string {
	if limit == "" {
		return ""
	}
	return "limit=" + c.term(limit)
}

func (c *Client) withLimit(query, limit string) string {
	if limit == "" {
		return query
	}
	return query + "&limit=" + c.term(limit)
}

func (c *Client) term(value string) string {
	if c.EscapeTerms {
		return url.QueryEscape(value)
	}
	return value
}

// SearchDrugs returns labels whose active ingredient matches ingredient
func (c *Client) SearchDrugs(ctx context.Context, ingredient, limit string) ([]DrugRecord, error) {
	return c.fetch(ctx, operationSearch, c.SearchDrugsQuery(ingredient, limit))
}

// SearchCompanies returns labels whose manufacturer matches company
func (c *Client) SearchCompanies(ctx context.Context, company, limit string) ([]DrugRecord, error) {
	return c.fetch(ctx, operationCompany, c.SearchCompaniesQuery(company, limit))
}

// ListDrugs returns the first labels of the unfiltered listing
func (c *Client) ListDrugs(ctx context.Context, limit string) ([]DrugRecord, error) {
	return c.fetch(ctx, operationList, c.ListDrugsQuery(limit))
}

// Fetch sends an already encoded query and returns the "results" array, or
// an empty slice when the response has none. The HTTP status is logged but
// not interpreted: an error payload without results is simply empty.
func (c *Client) Fetch(ctx context.Context, query string) ([]DrugRecord, error) {
	return c.fetch(ctx, operationFetch, query)
}

func (c *Client) fetch(ctx context.Context, operation, query string) ([]DrugRecord, error) {
	scheme := c.Scheme
	if scheme == "" {
		scheme = "https"
	}
	target := Target(query)
	rawURL := scheme + "://" + c.Host + target

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid request target %q: %v", ErrUpstreamUnreachable, target, err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID(ctx))

	logging.Debug("Fetching from openFDA", "operation", operation, "target", target)

	start := time.Now()
	resp, err := c.client().Do(req)
	if err != nil {
		metrics.ObserveUpstream(operation, 0, time.Since(start))
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnreachable, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Warn("Failed to close upstream response body", "error", err)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	metrics.ObserveUpstream(operation, resp.StatusCode, time.Since(start))
	logging.Info("openFDA response", "operation", operation, "status", resp.StatusCode, "bytes", len(body))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrUpstreamUnreachable, err)
	}

	return decodeResults(body)
}

func (c *Client) client() *http.Client {
	if c.httpClient == nil {
		return http.DefaultClient
	}
	return c.httpClient
}

// requestID forwards chi's inbound request id, or mints one for calls made
// outside a request (the probe).
func requestID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}

// decodeResults decodes the response body and extracts "results". Bodies
// that are not valid UTF-8 are read as ISO-8859-1 first.
func decodeResults(body []byte) ([]DrugRecord, error) {
	if !utf8.Valid(body) {
		decoded, err := io.ReadAll(charmap.ISO8859_1.NewDecoder().Reader(bytes.NewReader(body)))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		body = decoded
	}

	var payload struct {
		Results *[]DrugRecord `json:"results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if payload.Results == nil {
		return []DrugRecord{}, nil
	}

	records := *payload.Results
	for i, r := range records {
		if r == nil {
			return nil, fmt.Errorf("%w: result %d is not an object", ErrMalformedResponse, i)
		}
	}
	return records, nil
}
