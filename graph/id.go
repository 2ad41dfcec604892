package graph

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// NodeID derives the deterministic, content-addressable ID for a node
// type and its properties. The ID format is
// {nodeType}:{base64url(sha256(canonical)[:12])} where canonical is
// "type:prop1=val1|prop2=val2" over the sorted identifying properties.
//
// The same type and identifying content always produce the same ID; this
// is the invariant that makes graph persistence an upsert rather than an
// insert, and therefore safe to re-run.
func NodeID(t NodeType, props map[string]any) (string, error) {
	required, err := IdentifyingProperties(t)
	if err != nil {
		return "", err
	}
	if _, err := ValidateProperties(t, props); err != nil {
		return "", err
	}

	pairs := make([]string, 0, len(required))
	for _, name := range required {
		normalized, err := normalizeValue(props[name])
		if err != nil {
			return "", fmt.Errorf("failed to normalize property %q: %w", name, err)
		}
		pairs = append(pairs, fmt.Sprintf("%s=%s", name, normalized))
	}

	canonical := fmt.Sprintf("%s:%s", t, strings.Join(pairs, "|"))
	hash := sha256.Sum256([]byte(canonical))
	return fmt.Sprintf("%s:%s", t, base64.RawURLEncoding.EncodeToString(hash[:12])), nil
}

// normalizeValue converts a property value to a canonical string:
// strings are lowercased and trimmed, integers and bools printed
// directly, floats fixed to six decimals, anything else JSON-encoded.
func normalizeValue(val any) (string, error) {
	switch v := val.(type) {
	case nil:
		return "null", nil
	case string:
		return strings.ToLower(strings.TrimSpace(v)), nil
	case int:
		return fmt.Sprintf("%d", v), nil
	case int32:
		return fmt.Sprintf("%d", v), nil
	case int64:
		return fmt.Sprintf("%d", v), nil
	case float32:
		return fmt.Sprintf("%.6f", v), nil
	case float64:
		return fmt.Sprintf("%.6f", v), nil
	case bool:
		return fmt.Sprintf("%t", v), nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("failed to marshal value to JSON: %w", err)
		}
		return string(data), nil
	}
}
