package httpclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Options configures a RestyClient.
type Options struct {
	BaseURL            string
	Timeout            time.Duration
	InsecureSkipVerify bool
	// MaxConnsPerHost bounds the underlying transport; zero means unlimited.
	MaxConnsPerHost int
}

// RestyClient adapts resty.Client to the httpclient.Client interface.
type RestyClient struct {
	client    *resty.Client
	transport *http.Transport
}

// NewRestyClient creates a new RestyClient from opts.
func NewRestyClient(opts Options) *RestyClient {
	transport := newTransport(opts)
	c := newRestyBaseClient(opts.Timeout)
	c.SetTransport(transport)
	if opts.BaseURL != "" {
		c.SetBaseURL(opts.BaseURL)
	}
	return &RestyClient{client: c, transport: transport}
}

// NewRestyHTTPClient exposes a configured resty.Client for callers needing custom verbs.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	return newRestyBaseClient(timeout)
}

// newRestyBaseClient creates a new resty.Client with the specified timeout.
func newRestyBaseClient(timeout time.Duration) *resty.Client {
	c := resty.New()
	c.SetTimeout(timeout)
	return c
}

func newTransport(opts Options) *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.TLSClientConfig = &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: opts.InsecureSkipVerify, //nolint:gosec // opt-in for self-signed lab servers
	}
	if opts.MaxConnsPerHost > 0 {
		t.MaxConnsPerHost = opts.MaxConnsPerHost
		t.MaxIdleConnsPerHost = opts.MaxConnsPerHost
	}
	return t
}

// Do performs the request described by req and reads the full response body.
func (r *RestyClient) Do(ctx context.Context, req Request) (Response, error) {
	if r == nil || r.client == nil {
		return nil, fmt.Errorf("resty client is not initialized")
	}
	rr := r.client.R().SetContext(ctx)
	if len(req.Headers) > 0 {
		rr.SetHeaders(req.Headers)
	}
	if req.Body != nil {
		rr.SetBody(req.Body)
	}
	resp, err := rr.Execute(req.Method, req.URL)
	if err != nil {
		return nil, err
	}
	return &restyResponseAdapter{resp: resp}, nil
}

// Close drops any idle connections held by the transport.
func (r *RestyClient) Close() {
	if r == nil || r.transport == nil {
		return
	}
	r.transport.CloseIdleConnections()
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte    { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int { return r.resp.StatusCode() }
