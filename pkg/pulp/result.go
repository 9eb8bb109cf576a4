package pulp

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Kind tells which shape a response body took.
type Kind int

const (
	// Raw bodies did not parse as JSON and are kept as text.
	Raw Kind = iota
	// Decoded bodies parsed as JSON.
	Decoded
)

func (k Kind) String() string {
	if k == Decoded {
		return "decoded"
	}
	return "raw"
}

// Result is a response status plus its body, decoded when possible.
type Result struct {
	status int
	kind   Kind
	value  any
	raw    []byte
}

func newResult(status int, body []byte) Result {
	res := Result{status: status, kind: Raw, raw: body}
	var v any
	if err := json.Unmarshal(body, &v); err == nil {
		res.kind = Decoded
		res.value = v
	}
	return res
}

// Status is the HTTP status code.
func (r Result) Status() int { return r.status }

// Kind reports whether the body was decoded.
func (r Result) Kind() Kind { return r.kind }

// Decoded returns the decoded structure; ok is false for raw bodies.
func (r Result) Decoded() (v any, ok bool) {
	if r.kind != Decoded {
		return nil, false
	}
	return r.value, true
}

// Text returns the body exactly as received.
func (r Result) Text() string { return string(r.raw) }

// Bytes returns the body exactly as received.
func (r Result) Bytes() []byte { return r.raw }

// Value returns the decoded structure, or the raw text when decoding failed.
func (r Result) Value() any {
	if r.kind == Decoded {
		return r.value
	}
	return r.Text()
}

// Get looks up a gjson path (for example "0.id" or "#.id") in a decoded body.
// Raw bodies never match.
func (r Result) Get(path string) gjson.Result {
	if r.kind != Decoded {
		return gjson.Result{}
	}
	return gjson.GetBytes(r.raw, path)
}
