package pulp

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestRequestErrorReason(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{name: "json error field", body: `{"error_message":"Repository [foo] does not exist","http_status":404}`, want: "Repository [foo] does not exist"},
		{name: "json without known field", body: `{"x":1}`, want: `{"x":1}`},
		{name: "html title", body: "<html><head><title>404 Not   Found</title></head><body>nope</body></html>", want: "404 Not Found"},
		{name: "html heading", body: "<html><body><h1>Internal Server Error</h1></body></html>", want: "Internal Server Error"},
		{name: "text", body: "  plain failure \n", want: "plain failure"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := &RequestError{Status: 404, Body: newResult(404, []byte(tc.body))}
			if got := err.Reason(); got != tc.want {
				t.Fatalf("Reason() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRequestErrorMessage(t *testing.T) {
	err := &RequestError{Status: 500, Body: newResult(500, []byte("boom"))}
	if err.Error() != "server response: 500\nboom" {
		t.Fatalf("Error() = %q", err.Error())
	}
}

func TestReasonIsClipped(t *testing.T) {
	long := strings.Repeat("x", maxReasonLen+10)
	err := &RequestError{Status: 500, Body: newResult(500, []byte(long))}
	if got := err.Reason(); len(got) != maxReasonLen+3 {
		t.Fatalf("len(Reason()) = %d", len(got))
	}
}

func TestReasonClipKeepsRunesWhole(t *testing.T) {
	// "é" is two bytes, so an odd byte budget lands inside a rune.
	long := "x" + strings.Repeat("é", maxReasonLen)
	err := &RequestError{Status: 500, Body: newResult(500, []byte(long))}
	got := err.Reason()
	if !utf8.ValidString(got) {
		t.Fatalf("Reason() is not valid UTF-8: %q", got[len(got)-8:])
	}
	if !strings.HasSuffix(got, "...") || len(got) > maxReasonLen+3 {
		t.Fatalf("len(Reason()) = %d", len(got))
	}
}

func TestSettingsHelpers(t *testing.T) {
	s := normalizeSettings(Settings{Host: " pulp.example.com ", PathPrefix: "/pulp/api/", User: "u", Password: "p"})
	if s.BaseURL() != "https://pulp.example.com:443" {
		t.Fatalf("BaseURL = %q", s.BaseURL())
	}
	if s.PathPrefix != "/pulp/api" {
		t.Fatalf("PathPrefix = %q", s.PathPrefix)
	}
	if s.AuthHeader() != "Basic dTpw" {
		t.Fatalf("AuthHeader = %q", s.AuthHeader())
	}
	if strings.Contains(s.String(), "p)") || strings.Contains(s.String(), ":p") {
		t.Fatalf("String leaks password: %q", s.String())
	}
}
