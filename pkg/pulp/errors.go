package pulp

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// ErrNotConnected is returned by every request made before Connect.
var ErrNotConnected = errors.New("pulp: not connected, call Connect before making requests")

// RequestError reports a response with a status code above 299.
type RequestError struct {
	Status int
	Body   Result
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("server response: %d\n%s", e.Status, e.Body.Text())
}

const maxReasonLen = 512

// Reason is a one-line summary of the failure body: the "error" field of a
// JSON body, the title of an HTML page, or the trimmed text otherwise.
func (e *RequestError) Reason() string {
	if e == nil {
		return ""
	}
	if e.Body.Kind() == Decoded {
		for _, key := range []string{"error_message", "error", "detail", "message"} {
			if v := e.Body.Get(key); v.Exists() && v.String() != "" {
				return clip(v.String())
			}
		}
		return clip(strings.TrimSpace(e.Body.Text()))
	}
	if reason := htmlReason(e.Body.Bytes()); reason != "" {
		return clip(reason)
	}
	return clip(strings.TrimSpace(e.Body.Text()))
}

func htmlReason(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '<' {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(trimmed))
	if err != nil {
		return ""
	}
	for _, sel := range []string{"title", "h1"} {
		if text := strings.TrimSpace(doc.Find(sel).First().Text()); text != "" {
			return strings.Join(strings.Fields(text), " ")
		}
	}
	return ""
}

// clip cuts s to at most maxReasonLen bytes on a rune boundary.
func clip(s string) string {
	if len(s) <= maxReasonLen {
		return s
	}
	cut := maxReasonLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
