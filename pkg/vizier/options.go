package vizier

import (
	"net/http"
	"strings"
	"time"

	"github.com/tapvizier/vizier-go/pkg/httpclient"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Option configures a Client.
type Option func(*options)

type options struct {
	httpClient     httpclient.Client
	timeout        time.Duration
	method         string
	headers        map[string]string
	log            Logger
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

func defaultOptions() *options {
	return &options{
		method:  http.MethodGet,
		headers: make(map[string]string),
	}
}

// WithHTTPClient replaces the transport. WithTimeout is ignored when set.
func WithHTTPClient(client httpclient.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithTimeout bounds each request. The default is no timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = timeout
	}
}

// WithMethod selects GET (query string) or POST (form body). Other values are ignored.
func WithMethod(method string) Option {
	return func(o *options) {
		switch m := strings.ToUpper(strings.TrimSpace(method)); m {
		case http.MethodGet, http.MethodPost:
			o.method = m
		}
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(o *options) {
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if key == "" || value == "" {
			return
		}
		o.headers[key] = value
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return WithHeader("User-Agent", ua)
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithTracerProvider sets the tracer provider. The global provider is used otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tracerProvider = tp
	}
}

// WithMeterProvider sets the meter provider. The global provider is used otherwise.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = mp
	}
}
