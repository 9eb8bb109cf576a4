package pulp

import (
	"encoding/json"
	"fmt"
)

type bodyKind int

const (
	bodyAbsent bodyKind = iota
	bodyObject
	bodyArray
)

// Body is a request payload: absent, a JSON object or a JSON array.
// The zero value is absent.
type Body struct {
	kind   bodyKind
	object map[string]any
	array  []any
}

// NoBody returns an absent body.
func NoBody() Body { return Body{} }

// Object wraps a mapping as a request body. A nil map encodes as {}.
func Object(m map[string]any) Body {
	return Body{kind: bodyObject, object: m}
}

// Array wraps a sequence as a request body. A nil slice encodes as [].
func Array(items []any) Body {
	return Body{kind: bodyArray, array: items}
}

// Present reports whether the body carries a payload.
func (b Body) Present() bool { return b.kind != bodyAbsent }

func (b Body) encode() ([]byte, error) {
	var v any
	switch b.kind {
	case bodyAbsent:
		return nil, nil
	case bodyObject:
		if b.object == nil {
			v = map[string]any{}
		} else {
			v = b.object
		}
	case bodyArray:
		if b.array == nil {
			v = []any{}
		} else {
			v = b.array
		}
	default:
		return nil, fmt.Errorf("unknown body kind %d", b.kind)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return raw, nil
}
