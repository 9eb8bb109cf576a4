package pulp

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/pulp-tools/pic/pkg/httpclient"
)

// newTLSSession starts a TLS test server and returns a connected session
// pointing at it.
func newTLSSession(t *testing.T, h http.HandlerFunc, opts ...Option) *Session {
	t.Helper()
	srv := httptest.NewTLSServer(h)
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parse server url: %v", err)
	}
	host, portStr, err := net.SplitHostPort(u.Host)
	if err != nil {
		t.Fatalf("split host: %v", err)
	}
	port, _ := strconv.Atoi(portStr)

	settings := DefaultSettings()
	settings.Host = host
	settings.Port = port
	settings.InsecureSkipVerify = true

	s := NewSession(settings, opts...)
	if err := s.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

type fakeResponse struct {
	status int
	body   []byte
}

func (f fakeResponse) Body() []byte    { return f.body }
func (f fakeResponse) StatusCode() int { return f.status }

// fakeClient records requests and returns a canned response.
type fakeClient struct {
	calls  []httpclient.Request
	resp   fakeResponse
	err    error
	closed int
}

func (f *fakeClient) Do(_ context.Context, req httpclient.Request) (httpclient.Response, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeClient) Close() { f.closed++ }

func fakeDialer(clients ...*fakeClient) (Dialer, *int) {
	dials := 0
	return func(Settings) (httpclient.Client, error) {
		c := clients[dials%len(clients)]
		dials++
		return c, nil
	}, &dials
}
