package printer

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Normalize converts a raw inbound payload of unknown shape into a
// best-effort Reading. The broker delivers anything from a bare number to
// a JSON object wrapping a further-encoded "payload" string, with field
// names in English or Portuguese. Malformed input never errors; every
// failure path degrades to an absent field.
//
// Resolution order:
//  1. bare numeric text is taken directly as distance
//  2. otherwise the text is parsed as JSON; parse failure means no data
//  3. a one-level "payload" envelope is unwrapped (string payloads are
//     re-parsed; unwrap failure falls back to the outer object)
//  4. distance is read from "distance", else "distancia"; status and
//     timestamp are taken verbatim when present
func Normalize(raw []byte) Reading {
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return Reading{}
	}

	if d := parseFinite(text); d != nil {
		return Reading{Distance: d}
	}

	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return Reading{}
	}

	return NormalizeValue(v)
}

// NormalizeValue normalizes an already-decoded JSON value. Used directly
// for polling-response entries, which arrive pre-parsed.
func NormalizeValue(v any) Reading {
	switch t := v.(type) {
	case float64:
		return Reading{Distance: finite(t)}
	case string:
		// A JSON string literal may itself encode a number or object.
		if d := parseFinite(strings.TrimSpace(t)); d != nil {
			return Reading{Distance: d}
		}
		var inner any
		if err := json.Unmarshal([]byte(t), &inner); err != nil {
			return Reading{}
		}
		if m, ok := inner.(map[string]any); ok {
			return extractFields(unwrapEnvelope(m))
		}
		return Reading{}
	case map[string]any:
		return extractFields(unwrapEnvelope(t))
	default:
		return Reading{}
	}
}

// unwrapEnvelope removes one level of broker nesting. The "payload" field
// may be a further JSON-encoded string or an already-structured value; a
// failed inner parse falls back to the outer object.
func unwrapEnvelope(m map[string]any) any {
	p, ok := m["payload"]
	if !ok || isEmpty(p) {
		return m
	}

	if s, ok := p.(string); ok {
		var inner any
		if err := json.Unmarshal([]byte(s), &inner); err != nil {
			return m
		}
		return inner
	}

	return p
}

// extractFields reads the canonical fields from the working value. Only
// objects carry fields; anything else yields an empty Reading.
func extractFields(v any) Reading {
	m, ok := v.(map[string]any)
	if !ok {
		return Reading{}
	}

	var r Reading

	if dv, ok := m["distance"]; ok {
		r.Distance = toFinite(dv)
	} else if dv, ok := m["distancia"]; ok {
		r.Distance = toFinite(dv)
	}

	if s, ok := m["status"].(string); ok && s != "" {
		r.Status = s
	}
	if ts, ok := m["timestamp"].(string); ok && ts != "" {
		r.Timestamp = ts
	}
	if name, ok := m["name"].(string); ok && name != "" {
		r.Name = name
	}
	if pv, ok := m["progress"]; ok {
		r.Progress = toFinite(pv)
	}

	return r
}

// toFinite coerces a decoded JSON value to a finite float. Strings are
// parsed; anything non-numeric or non-finite is treated as absent.
func toFinite(v any) *float64 {
	switch t := v.(type) {
	case float64:
		return finite(t)
	case string:
		return parseFinite(strings.TrimSpace(t))
	default:
		return nil
	}
}

func parseFinite(s string) *float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return finite(f)
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// isEmpty reports whether an envelope value carries no content worth
// unwrapping (mirrors the broker convention of empty payload fields).
func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case float64:
		return t == 0
	default:
		return false
	}
}
