package httpclient

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// RestyClient adapts resty.Client to the httpclient.Client interface.
type RestyClient struct {
	client *resty.Client
}

var _ Client = (*RestyClient)(nil)

// NewRestyClient creates a new RestyClient with the specified timeout.
// A zero timeout leaves requests unbounded.
func NewRestyClient(timeout time.Duration) *RestyClient {
	return &RestyClient{client: newRestyBaseClient(timeout)}
}

// NewRestyClientFrom wraps an existing *http.Client, keeping its transport and timeout.
// Cookies are only kept when hc carries its own jar.
func NewRestyClientFrom(hc *http.Client) *RestyClient {
	if hc == nil {
		hc = &http.Client{}
	}
	return &RestyClient{client: resty.NewWithClient(hc)}
}

// newRestyBaseClient creates a new resty.Client with the specified timeout.
// resty installs a cookie jar by default; it is removed so calls share no session.
func newRestyBaseClient(timeout time.Duration) *resty.Client {
	c := resty.New().SetCookieJar(nil)
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return c
}

// Get performs an HTTP GET request with params encoded into the query string.
func (r *RestyClient) Get(ctx context.Context, url string, params, headers map[string]string) (Response, error) {
	req := r.request(ctx, headers)
	if len(params) > 0 {
		req.SetQueryParams(params)
	}
	resp, err := req.Get(url)
	if err != nil {
		return nil, err
	}
	return &restyResponseAdapter{resp: resp}, nil
}

// PostForm performs an HTTP POST request with params sent as a urlencoded form.
func (r *RestyClient) PostForm(ctx context.Context, url string, params, headers map[string]string) (Response, error) {
	req := r.request(ctx, headers)
	req.SetFormData(params)
	resp, err := req.Post(url)
	if err != nil {
		return nil, err
	}
	return &restyResponseAdapter{resp: resp}, nil
}

func (r *RestyClient) request(ctx context.Context, headers map[string]string) *resty.Request {
	req := r.client.R().SetContext(ctx)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}
	return req
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte        { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int     { return r.resp.StatusCode() }
func (r *restyResponseAdapter) Header() http.Header { return r.resp.Header() }
