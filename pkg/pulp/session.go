// Package pulp is a small client for the Pulp REST API. A Session holds one
// authenticated HTTPS transport; the verb helpers and repository operations
// are thin wrappers over Session.Request.
package pulp

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/pulp-tools/pic/pkg/httpclient"
)

// Dialer builds the transport used by a session.
type Dialer func(s Settings) (httpclient.Client, error)

// Option customises a Session.
type Option func(*Session)

// WithDialer replaces the default resty transport.
func WithDialer(d Dialer) Option {
	return func(s *Session) {
		if d != nil {
			s.dial = d
		}
	}
}

// WithObserver registers observers notified after each exchange.
func WithObserver(obs ...Observer) Option {
	return func(s *Session) {
		for _, o := range obs {
			if o != nil {
				s.observers = append(s.observers, o)
			}
		}
	}
}

// Session is safe for concurrent use; requests are serialized because the
// session owns a single connection.
type Session struct {
	mu        sync.Mutex
	settings  Settings
	client    httpclient.Client
	dial      Dialer
	observers []Observer
	now       func() time.Time
}

// NewSession returns an unconnected session.
func NewSession(settings Settings, opts ...Option) *Session {
	s := &Session{
		settings: normalizeSettings(settings),
		dial:     DialResty,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DialResty is the default Dialer: an HTTPS resty client limited to one
// connection to the configured host.
func DialResty(s Settings) (httpclient.Client, error) {
	return httpclient.NewRestyClient(httpclient.Options{
		BaseURL:            s.BaseURL(),
		Timeout:            s.Timeout,
		InsecureSkipVerify: s.InsecureSkipVerify,
		MaxConnsPerHost:    1,
	}), nil
}

// Settings returns the session's normalized settings.
func (s *Session) Settings() Settings { return s.settings }

// Connect establishes a new transport. An existing transport is closed
// before it is replaced.
func (s *Session) Connect() error {
	client, err := s.dial(s.settings)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", s.settings.BaseURL(), err)
	}
	s.mu.Lock()
	prev := s.client
	s.client = client
	s.mu.Unlock()
	if prev != nil {
		prev.Close()
	}
	return nil
}

// Connected reports whether Connect has been called.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client != nil
}

// Close releases the transport. Later requests fail with ErrNotConnected.
func (s *Session) Close() {
	s.mu.Lock()
	prev := s.client
	s.client = nil
	s.mu.Unlock()
	if prev != nil {
		prev.Close()
	}
}

// Request sends method to path (relative to the path prefix) with an
// optional body. Statuses above 299 return a *RequestError that carries the
// result.
func (s *Session) Request(ctx context.Context, method, path string, body Body) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	res, ex, err := s.roundTrip(ctx, method, path, body)
	if ex != nil {
		for _, o := range s.observers {
			o.Observe(ctx, *ex)
		}
	}
	return res, err
}

func (s *Session) roundTrip(ctx context.Context, method, path string, body Body) (Result, *Exchange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		return Result{}, nil, ErrNotConnected
	}

	payload, err := body.encode()
	if err != nil {
		return Result{}, nil, err
	}

	headers := map[string]string{
		"Authorization": s.settings.AuthHeader(),
		"Accept":        "application/json",
	}
	if payload != nil {
		headers["Content-Type"] = "application/json"
	}

	full := s.settings.PathPrefix + path
	start := s.now()
	resp, err := s.client.Do(ctx, httpclient.Request{
		Method:  method,
		URL:     full,
		Headers: headers,
		Body:    payload,
	})
	ex := &Exchange{Method: method, Path: full, At: start}
	if err != nil {
		ex.Duration = s.now().Sub(start)
		ex.Err = fmt.Errorf("%s %s: %w", method, full, err)
		return Result{}, ex, ex.Err
	}

	res := newResult(resp.StatusCode(), resp.Body())
	ex.Status = res.Status()
	ex.Duration = s.now().Sub(start)
	if res.Status() > 299 {
		ex.Err = &RequestError{Status: res.Status(), Body: res}
		return res, ex, ex.Err
	}
	return res, ex, nil
}

// Get issues a GET with params flattened into the query string.
func (s *Session) Get(ctx context.Context, path string, params Params) (Result, error) {
	return s.Request(ctx, http.MethodGet, withQuery(path, params), NoBody())
}

// Put issues a PUT; body is required.
func (s *Session) Put(ctx context.Context, path string, body Body) (Result, error) {
	if !body.Present() && s.Connected() {
		return Result{}, fmt.Errorf("PUT %s: body is required", path)
	}
	return s.Request(ctx, http.MethodPut, path, body)
}

// Post issues a POST; body may be NoBody().
func (s *Session) Post(ctx context.Context, path string, body Body) (Result, error) {
	return s.Request(ctx, http.MethodPost, path, body)
}

// Delete issues a DELETE without a body.
func (s *Session) Delete(ctx context.Context, path string) (Result, error) {
	return s.Request(ctx, http.MethodDelete, path, NoBody())
}
