package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/pulp-tools/pic/internal/config"
)

type recorded struct {
	Method  string
	Path    string
	Query   string
	RawBody string
	Body    map[string]any
}

type fakePulp struct {
	mu       sync.Mutex
	requests []recorded
}

func (f *fakePulp) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := recorded{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery}
	if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
		rec.RawBody = string(raw)
		_ = json.Unmarshal(raw, &rec.Body)
	}
	f.mu.Lock()
	f.requests = append(f.requests, rec)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/pulp/api/repositories/":
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusCreated)
		}
		_, _ = w.Write([]byte(`[{"id":"zoo"}]`))
	case "/pulp/api/repositories/zoo/":
		_, _ = w.Write([]byte(`{"name":"Zoo","arch":"noarch","id":"zoo"}`))
	case "/pulp/api/plain/":
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("not json"))
	default:
		http.Error(w, `{"error_message":"missing"}`, http.StatusNotFound)
	}
}

func (f *fakePulp) last(t *testing.T) recorded {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		t.Fatalf("server received no requests")
	}
	return f.requests[len(f.requests)-1]
}

func (f *fakePulp) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func newServer(t *testing.T) (*fakePulp, *config.Config) {
	t.Helper()
	fake := &fakePulp{}
	srv := httptest.NewTLSServer(fake)
	t.Cleanup(srv.Close)

	u, _ := url.Parse(srv.URL)
	host, portStr, _ := net.SplitHostPort(u.Host)
	port, _ := strconv.Atoi(portStr)
	return fake, &config.Config{
		AppName:               "pic",
		Host:                  host,
		Port:                  port,
		PathPrefix:            "/pulp/api",
		User:                  "admin",
		Password:              "admin",
		TimeoutSeconds:        5,
		InsecureSkipVerify:    true,
		JournalType:           "none",
		JournalTTLSeconds:     3600,
		JournalCleanupSeconds: 3600,
		Output:                config.OutputJSON,
	}
}

func execute(cfg *config.Config, args ...string) (string, error) {
	cmd := NewRootCommand(cfg, nil)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestNoSubcommandIsUsageError(t *testing.T) {
	_, cfg := newServer(t)
	_, err := execute(cfg)
	if ExitCode(err) != ExitUsage {
		t.Fatalf("exit code = %d, err = %v", ExitCode(err), err)
	}
	var stderr bytes.Buffer
	Report(&stderr, err)
	if !strings.Contains(stderr.String(), "needs a subcommand") {
		t.Fatalf("unexpected report %q", stderr.String())
	}
}

func TestUsageErrors(t *testing.T) {
	fake, cfg := newServer(t)
	cases := [][]string{
		{"bogus"},
		{"repos", "bogus"},
		{"repos", "get"},
		{"repos", "update", "zoo"},
		{"repos", "create", "zoo", "--field", "novalue"},
		{"put", "/repositories/zoo/"},
		{"post", "/repositories/", "--data", "{broken"},
		{"post", "/repositories/", "--data", `"scalar"`},
		{"get", "/repositories/", "--param", "=x"},
		{"repos", "list", "--port", "abc"},
		{"repos", "list", "--output", "xml"},
		{"journal", "--limit", "0"},
		{"repos", "create", "zoo", "--field", "id=other"},
		{"repos", "create", "zoo", "--name", "Zoo", "--field", "name=Other"},
	}
	for _, args := range cases {
		_, err := execute(cfg, args...)
		if ExitCode(err) != ExitUsage {
			t.Fatalf("%v: exit code = %d, err = %v", args, ExitCode(err), err)
		}
	}
	if fake.count() != 0 {
		t.Fatalf("usage errors must not reach the server, got %d requests", fake.count())
	}
}

func TestReposGetPrettyPrintsInServerOrder(t *testing.T) {
	fake, cfg := newServer(t)
	out, err := execute(cfg, "repos", "get", "zoo")
	if err != nil {
		t.Fatalf("repos get: %v", err)
	}
	if got := fake.last(t); got.Method != http.MethodGet || got.Path != "/pulp/api/repositories/zoo/" {
		t.Fatalf("unexpected request %+v", got)
	}
	if !strings.Contains(out, "\n  \"name\": \"Zoo\"") {
		t.Fatalf("output not indented: %q", out)
	}
	if strings.Index(out, `"name"`) > strings.Index(out, `"arch"`) || strings.Index(out, `"arch"`) > strings.Index(out, `"id"`) {
		t.Fatalf("key order changed: %q", out)
	}
}

func TestReposCreateSendsFields(t *testing.T) {
	fake, cfg := newServer(t)
	_, err := execute(cfg, "repos", "create", "zoo",
		"--arch", "x86_64",
		"--field", `notes={"team":"infra"}`,
		"--field", "count=3",
		"--field", "label=plain text",
	)
	if err != nil {
		t.Fatalf("repos create: %v", err)
	}
	got := fake.last(t)
	if got.Method != http.MethodPost || got.Path != "/pulp/api/repositories/" {
		t.Fatalf("unexpected request %+v", got)
	}
	body := got.Body
	if body["id"] != "zoo" || body["name"] != "zoo" || body["arch"] != "x86_64" {
		t.Fatalf("required fields wrong: %v", body)
	}
	if notes, ok := body["notes"].(map[string]any); !ok || notes["team"] != "infra" {
		t.Fatalf("JSON field not decoded: %v", body["notes"])
	}
	if body["count"] != float64(3) || body["label"] != "plain text" {
		t.Fatalf("scalar fields wrong: %v", body)
	}
}

func TestReposCommandsHitEndpoints(t *testing.T) {
	fake, cfg := newServer(t)
	cases := []struct {
		args   []string
		method string
		path   string
	}{
		{[]string{"repos", "list"}, http.MethodGet, "/pulp/api/repositories/"},
		{[]string{"repos", "update", "zoo", "--field", "name=Zoo"}, http.MethodPut, "/pulp/api/repositories/zoo/"},
		{[]string{"repos", "delete", "zoo"}, http.MethodDelete, "/pulp/api/repositories/zoo/"},
		{[]string{"delete", "/repositories/zoo/"}, http.MethodDelete, "/pulp/api/repositories/zoo/"},
		{[]string{"put", "/repositories/zoo/", "--data", `{"name":"Zoo"}`}, http.MethodPut, "/pulp/api/repositories/zoo/"},
		{[]string{"post", "/repositories/"}, http.MethodPost, "/pulp/api/repositories/"},
	}
	for _, tc := range cases {
		if _, err := execute(cfg, tc.args...); err != nil {
			t.Fatalf("%v: %v", tc.args, err)
		}
		if got := fake.last(t); got.Method != tc.method || got.Path != tc.path {
			t.Fatalf("%v: got %s %s", tc.args, got.Method, got.Path)
		}
	}
	if body := fake.last(t).Body; body != nil {
		t.Fatalf("post without --data should send no body, got %v", body)
	}
}

func TestGetSendsSortedParams(t *testing.T) {
	fake, cfg := newServer(t)
	if _, err := execute(cfg, "get", "/repositories/", "--param", "b=x y", "--param", "a=1", "--param", "a=2"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got := fake.last(t).Query; got != "a=1&a=2&b=x+y" {
		t.Fatalf("query = %q", got)
	}
}

func TestRequestErrorReport(t *testing.T) {
	_, cfg := newServer(t)
	_, err := execute(cfg, "repos", "get", "nope")
	if ExitCode(err) != ExitFailure {
		t.Fatalf("exit code = %d, err = %v", ExitCode(err), err)
	}
	var stderr bytes.Buffer
	Report(&stderr, err)
	if stderr.String() != "server response: 404\nmissing\n" {
		t.Fatalf("report = %q", stderr.String())
	}
}

func TestOutputFormats(t *testing.T) {
	_, cfg := newServer(t)

	out, err := execute(cfg, "repos", "get", "zoo", "-o", "yaml")
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if !strings.Contains(out, "name: Zoo\n") || !strings.Contains(out, "arch: noarch\n") {
		t.Fatalf("yaml output = %q", out)
	}

	out, err = execute(cfg, "repos", "get", "zoo", "--output", "raw")
	if err != nil {
		t.Fatalf("raw: %v", err)
	}
	if out != "{\"name\":\"Zoo\",\"arch\":\"noarch\",\"id\":\"zoo\"}\n" {
		t.Fatalf("raw output = %q", out)
	}

	out, err = execute(cfg, "get", "/plain/")
	if err != nil {
		t.Fatalf("plain: %v", err)
	}
	if out != "not json\n" {
		t.Fatalf("non-JSON body should print as text, got %q", out)
	}
}

func TestJournalListsRecordedRequests(t *testing.T) {
	_, cfg := newServer(t)
	cfg.JournalType = "bbolt"
	cfg.JournalPath = filepath.Join(t.TempDir(), "journal.db")

	if _, err := execute(cfg, "repos", "list"); err != nil {
		t.Fatalf("repos list: %v", err)
	}
	if _, err := execute(cfg, "repos", "get", "nope"); err == nil {
		t.Fatalf("expected 404")
	}

	out, err := execute(cfg, "journal", "--limit", "5")
	if err != nil {
		t.Fatalf("journal: %v", err)
	}
	var entries []map[string]any
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode journal output %q: %v", out, err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0]["status"] != float64(404) || entries[1]["path"] != "/pulp/api/repositories/" {
		t.Fatalf("unexpected entries %v", entries)
	}

	out, err = execute(cfg, "journal", "-o", "raw", "--limit", "1")
	if err != nil {
		t.Fatalf("journal raw: %v", err)
	}
	if lines := strings.Split(strings.TrimSpace(out), "\n"); len(lines) != 1 || !strings.Contains(lines[0], "/pulp/api/repositories/nope/") {
		t.Fatalf("raw journal = %q", out)
	}
}

func TestParseFields(t *testing.T) {
	got, err := parseFields([]string{"a=1", "b=true", "c=[1,2]", "d=hello", "e=", "f=a=b"})
	if err != nil {
		t.Fatalf("parseFields: %v", err)
	}
	if got["a"] != json.Number("1") || got["b"] != true || got["d"] != "hello" || got["e"] != "" || got["f"] != "a=b" {
		t.Fatalf("unexpected fields %v", got)
	}
	if list, ok := got["c"].([]any); !ok || len(list) != 2 {
		t.Fatalf("c = %v", got["c"])
	}
}

func TestReposCreateLiftsNameAndArchFields(t *testing.T) {
	fake, cfg := newServer(t)
	if _, err := execute(cfg, "repos", "create", "zoo", "--field", "name=Zoo", "--field", "arch=x86_64", "--field", "feed=https://example.com/"); err != nil {
		t.Fatalf("repos create: %v", err)
	}
	body := fake.last(t).Body
	if body["name"] != "Zoo" || body["arch"] != "x86_64" || body["feed"] != "https://example.com/" {
		t.Fatalf("name/arch fields not applied: %v", body)
	}
}

func TestLargeNumbersAreSentUnchanged(t *testing.T) {
	fake, cfg := newServer(t)
	if _, err := execute(cfg, "post", "/repositories/", "--data", `{"id":"zoo","big":9007199254740993,"ratio":0.10}`); err != nil {
		t.Fatalf("post: %v", err)
	}
	raw := fake.last(t).RawBody
	if !strings.Contains(raw, `"big":9007199254740993`) || !strings.Contains(raw, `"ratio":0.10`) {
		t.Fatalf("numbers changed on the wire: %s", raw)
	}

	if _, err := execute(cfg, "repos", "update", "zoo", "--field", "n=12345678901234567"); err != nil {
		t.Fatalf("repos update: %v", err)
	}
	if raw := fake.last(t).RawBody; !strings.Contains(raw, `"n":12345678901234567`) {
		t.Fatalf("field number changed on the wire: %s", raw)
	}
}
