package pulp

import (
	"reflect"
	"testing"

	"pgregory.net/rapid"
)

func TestBodyEncode(t *testing.T) {
	cases := []struct {
		name string
		body Body
		want string
		nil  bool
	}{
		{name: "absent", body: NoBody(), nil: true},
		{name: "zero value", body: Body{}, nil: true},
		{name: "nil object", body: Object(nil), want: `{}`},
		{name: "nil array", body: Array(nil), want: `[]`},
		{name: "object", body: Object(map[string]any{"id": "foo"}), want: `{"id":"foo"}`},
		{name: "array", body: Array([]any{"a", 1}), want: `["a",1]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := tc.body.encode()
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			if tc.nil {
				if raw != nil {
					t.Fatalf("expected nil payload, got %q", raw)
				}
				return
			}
			if string(raw) != tc.want {
				t.Fatalf("encode = %s, want %s", raw, tc.want)
			}
		})
	}
}

func TestBodyEncodeRejectsUnsupportedValues(t *testing.T) {
	if _, err := Object(map[string]any{"ch": make(chan int)}).encode(); err == nil {
		t.Fatalf("expected encode error")
	}
}

var printableGen = rapid.StringMatching(`[ -~]{0,8}`)

func jsonValueGen(depth int) *rapid.Generator[any] {
	scalars := []*rapid.Generator[any]{
		rapid.Map(printableGen, func(s string) any { return s }),
		rapid.Map(rapid.Bool(), func(b bool) any { return b }),
		rapid.Map(rapid.IntRange(-1<<20, 1<<20), func(i int) any { return float64(i) }),
	}
	if depth <= 0 {
		return rapid.OneOf(scalars...)
	}
	nested := append(scalars,
		rapid.Map(rapid.SliceOfN(jsonValueGen(depth-1), 0, 3), func(s []any) any { return s }),
		rapid.Map(rapid.MapOfN(printableGen, jsonValueGen(depth-1), 0, 3), func(m map[string]any) any { return m }),
	)
	return rapid.OneOf(nested...)
}

func TestBodyEncodeDecodeRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var body Body
		var want any
		if rapid.Bool().Draw(t, "object") {
			m := rapid.MapOfN(printableGen, jsonValueGen(2), 0, 4).Draw(t, "map")
			body, want = Object(m), m
		} else {
			s := rapid.SliceOfN(jsonValueGen(2), 0, 4).Draw(t, "slice")
			body, want = Array(s), s
		}

		raw, err := body.encode()
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		res := newResult(200, raw)
		got, ok := res.Decoded()
		if !ok {
			t.Fatalf("encoded body did not decode: %s", raw)
		}
		if !reflect.DeepEqual(normalize(got), normalize(want)) {
			t.Fatalf("round trip mismatch:\n got %#v\nwant %#v", got, want)
		}
	})
}

// normalize maps empty containers to a canonical form so nil and empty
// compare equal.
func normalize(v any) any {
	switch vv := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(vv))
		for k, item := range vv {
			out[k] = normalize(item)
		}
		return out
	case []any:
		out := make([]any, 0, len(vv))
		for _, item := range vv {
			out = append(out, normalize(item))
		}
		return out
	default:
		return v
	}
}

func TestNewResultShapes(t *testing.T) {
	res := newResult(200, []byte(`{"a":[1,2]}`))
	if res.Kind() != Decoded || res.Get("a.1").Int() != 2 {
		t.Fatalf("unexpected decoded result %+v", res)
	}

	res = newResult(204, nil)
	if res.Kind() != Raw || res.Text() != "" {
		t.Fatalf("empty body should be raw text")
	}

	res = newResult(200, []byte(`{"a":1} trailing`))
	if res.Kind() != Raw {
		t.Fatalf("trailing data must not decode")
	}
	if _, ok := res.Decoded(); ok {
		t.Fatalf("Decoded should report false for raw bodies")
	}
}
