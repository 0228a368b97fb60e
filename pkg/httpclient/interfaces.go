package httpclient

import (
	"context"
	"net/http"
)

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
	Header() http.Header
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
// Get sends params as the URL query string, PostForm sends them as an
// application/x-www-form-urlencoded body.
type Client interface {
	Get(ctx context.Context, url string, params, headers map[string]string) (Response, error)
	PostForm(ctx context.Context, url string, params, headers map[string]string) (Response, error)
}
