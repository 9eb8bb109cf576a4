package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pulp-tools/pic/internal/config"
	"github.com/pulp-tools/pic/pkg/pulp"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"gopkg.in/yaml.v3"
)

// renderResult prints a response body in the requested format. Raw bodies
// are always printed as received.
func renderResult(w io.Writer, res pulp.Result, format string) error {
	if len(res.Bytes()) == 0 {
		return nil
	}
	value, decoded := res.Decoded()
	if !decoded || format == config.OutputRaw {
		return writeText(w, res.Text())
	}
	if format == config.OutputYAML {
		return renderYAML(w, value)
	}
	// Pretty keeps the server's key order.
	_, err := w.Write(pretty.Pretty(res.Bytes()))
	return err
}

func renderValue(w io.Writer, v any, format string) error {
	if format == config.OutputYAML {
		return renderYAML(w, v)
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return writeText(w, string(out))
}

func renderYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode yaml output: %w", err)
	}
	return enc.Close()
}

func writeText(w io.Writer, s string) error {
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	_, err := io.WriteString(w, s)
	return err
}

// decodeJSON decodes raw keeping numbers as json.Number, so values are sent
// back to the server exactly as typed.
func decodeJSON(raw string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// parseBody turns a --data argument into a request body. Only JSON objects
// and arrays are accepted.
func parseBody(data string) (pulp.Body, error) {
	data = strings.TrimSpace(data)
	if data == "" {
		return pulp.NoBody(), nil
	}
	if !gjson.Valid(data) {
		return pulp.Body{}, usageErrorf("--data is not valid JSON")
	}
	parsed := gjson.Parse(data)
	if !parsed.IsObject() && !parsed.IsArray() {
		return pulp.Body{}, usageErrorf("--data must be a JSON object or array")
	}
	v, err := decodeJSON(data)
	if err != nil {
		return pulp.Body{}, usageErrorf("--data: %v", err)
	}
	if parsed.IsObject() {
		m, _ := v.(map[string]any)
		return pulp.Object(m), nil
	}
	items, _ := v.([]any)
	return pulp.Array(items), nil
}

// parseFields turns repeated key=value flags into a map. Values that are
// valid JSON are decoded, anything else is kept as a string.
func parseFields(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, err := splitPair(pair, "--field")
		if err != nil {
			return nil, err
		}
		if gjson.Valid(raw) {
			if v, err := decodeJSON(raw); err == nil {
				out[key] = v
				continue
			}
		}
		out[key] = raw
	}
	return out, nil
}

// parseParams turns repeated key=value flags into query parameters. A key
// given more than once becomes a list.
func parseParams(pairs []string) (pulp.Params, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(pulp.Params, len(pairs))
	for _, pair := range pairs {
		key, val, err := splitPair(pair, "--param")
		if err != nil {
			return nil, err
		}
		switch prev := out[key].(type) {
		case nil:
			out[key] = val
		case string:
			out[key] = []string{prev, val}
		case []string:
			out[key] = append(prev, val)
		}
	}
	return out, nil
}

func splitPair(pair, flag string) (string, string, error) {
	key, val, ok := strings.Cut(pair, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", usageErrorf("%s %q must look like key=value", flag, pair)
	}
	return key, val, nil
}
