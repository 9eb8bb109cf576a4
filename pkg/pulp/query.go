package pulp

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strings"
)

// Params are query parameters. A value is either a scalar or a sequence
// (any slice or array, []byte excepted); every element of a sequence becomes its own
// key=value pair and a scalar is treated as a one-element sequence.
type Params map[string]any

// Encode flattens the parameters into a query string with keys in sorted
// order. It returns "" when there are no parameters.
func (p Params) Encode() string {
	if len(p) == 0 {
		return ""
	}
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		ek := url.QueryEscape(k)
		for _, v := range values(p[k]) {
			pairs = append(pairs, ek+"="+url.QueryEscape(v))
		}
	}
	return strings.Join(pairs, "&")
}

func values(v any) []string {
	switch vv := v.(type) {
	case nil:
		return []string{""}
	case string:
		return []string{vv}
	case []string:
		return vv
	case []byte:
		return []string{string(vv)}
	case fmt.Stringer:
		return []string{vv.String()}
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]string, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out = append(out, fmt.Sprint(rv.Index(i).Interface()))
		}
		return out
	default:
		return []string{fmt.Sprint(v)}
	}
}

// withQuery appends the encoded params to path. No "?" is added when there
// is nothing to append.
func withQuery(path string, params Params) string {
	q := params.Encode()
	if q == "" {
		return path
	}
	return path + "?" + q
}
