// Package vizier is a typed client for the VizieR TAP service. It sends
// synchronous ADQL queries and decodes the JSON envelope into caller-chosen
// records.
//
// A row is decoded into a struct by exact, case-sensitive column name. The
// column is the `vizier:"name"` tag, else the `json:"name"` tag, else the field
// name. Pointer, slice, map and interface fields are optional, as are fields
// tagged `vizier:",optional"`. A missing or null column leaves them empty. Any
// other field is required. Columns without a matching field are ignored.
//
//	type Star struct {
//		Recno int      `vizier:"recno"`
//		Bmag  float64  `vizier:"Bmag"`
//		BV    *float64 `vizier:"B-V"`
//	}
//
//	res, err := vizier.Query[Star](ctx, vizier.Default(), `SELECT TOP 10 * FROM "I/261/fonac"`)
package vizier

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tapvizier/vizier-go/pkg/httpclient"
)

// DefaultTAPURL is the public VizieR TAP synchronous endpoint.
const DefaultTAPURL = "http://tapvizier.u-strasbg.fr/TAPVizieR/tap/sync"

const requestIDHeader = "X-Request-Id"

// Client issues queries against one TAP endpoint. It holds no per-call state
// and is safe for concurrent use.
type Client struct {
	endpoint string
	http     httpclient.Client
	method   string
	headers  map[string]string
	log      Logger
	tel      *telemetry
}

// Default returns a client for DefaultTAPURL.
func Default(opts ...Option) *Client {
	return New(DefaultTAPURL, opts...)
}

// New returns a client for endpoint. The URL is stored verbatim.
func New(endpoint string, opts ...Option) *Client {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	hc := o.httpClient
	if hc == nil {
		hc = httpclient.NewRestyClient(o.timeout)
	}

	headers := make(map[string]string, len(o.headers))
	for k, v := range o.headers {
		headers[k] = v
	}

	return &Client{
		endpoint: endpoint,
		http:     hc,
		method:   o.method,
		headers:  headers,
		log:      ensureLogger(o.log),
		tel:      newTelemetry(o.tracerProvider, o.meterProvider),
	}
}

// Endpoint returns the configured endpoint URL.
func (c *Client) Endpoint() string { return c.endpoint }

// QueryRows runs adql and returns rows in the dynamic form.
func (c *Client) QueryRows(ctx context.Context, adql string) (*Result[Row], error) {
	return Query[Row](ctx, c, adql)
}

// requestParams builds the TAP synchronous query parameters.
func requestParams(adql string) map[string]string {
	return map[string]string{
		"REQUEST": "doQuery",
		"LANG":    "ADQL",
		"FORMAT":  "json",
		"QUERY":   adql,
	}
}

// fetch performs the round trip and returns the body of a 2xx response.
func (c *Client) fetch(ctx context.Context, adql, requestID string) ([]byte, int, error) {
	headers := make(map[string]string, len(c.headers)+1)
	for k, v := range c.headers {
		headers[k] = v
	}
	headers[requestIDHeader] = requestID

	params := requestParams(adql)

	var (
		resp httpclient.Response
		err  error
	)
	if c.method == http.MethodPost {
		resp, err = c.http.PostForm(ctx, c.endpoint, params, headers)
	} else {
		resp, err = c.http.Get(ctx, c.endpoint, params, headers)
	}
	if err != nil {
		return nil, 0, &TransportError{Endpoint: c.endpoint, Err: err}
	}

	status := resp.StatusCode()
	if status < 200 || status > 299 {
		statusErr := &HTTPStatusError{StatusCode: status, Body: resp.Body()}
		if h := resp.Header(); h != nil {
			statusErr.ContentType = h.Get("Content-Type")
		}
		return nil, status, statusErr
	}
	return resp.Body(), status, nil
}

// run is the single implementation behind Query and QueryAsync.
func run[T any](ctx context.Context, c *Client, adql string) (res *Result[T], err error) {
	if strings.TrimSpace(adql) == "" {
		return nil, ErrEmptyQuery
	}
	if ctx == nil {
		ctx = context.Background()
	}

	requestID := uuid.NewString()
	started := time.Now()
	ctx, span := c.tel.start(ctx, c.endpoint, c.method, requestID)

	c.log.DebugObj("tap query started", "query_meta", map[string]any{
		"request_id": requestID,
		"endpoint":   c.endpoint,
		"method":     c.method,
		"query":      adql,
	})

	var status int
	defer func() {
		c.tel.finish(ctx, span, started, status, res.Len(), err)
		if err != nil {
			c.log.WarnObj("tap query failed", "query_error", map[string]any{
				"request_id": requestID,
				"endpoint":   c.endpoint,
				"status":     status,
				"error_kind": errorKind(err),
				"error":      err.Error(),
			})
			return
		}
		c.log.DebugObj("tap query completed", "query_result", map[string]any{
			"request_id": requestID,
			"status":     status,
			"rows":       res.Len(),
			"elapsed_ms": time.Since(started).Milliseconds(),
		})
	}()

	var body []byte
	body, status, err = c.fetch(ctx, adql, requestID)
	if err != nil {
		return nil, err
	}
	return Decode[T](body)
}
