// Package savon models the mappings handed to the Clear Books SOAP client and
// the key-tolerant accessor used to read caller-supplied attributes.
package savon

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingField is returned by Fetch when a required key is absent.
var ErrMissingField = errors.New("missing field")

// Hash is a request payload. Keys starting with "@" become XML attributes of
// the enclosing element, other keys become child elements. A []Hash value
// repeats its element once per item.
type Hash map[string]any

// AttrPrefix marks a key as an XML attribute.
const AttrPrefix = "@"

// Attr returns the attribute key for name.
func Attr(name string) string {
	return AttrPrefix + name
}

// IsAttr reports whether key names an attribute.
func IsAttr(key string) bool {
	return strings.HasPrefix(key, AttrPrefix)
}

// Lookup reads key from data. Besides the exact key it accepts the
// lowerCamelCase spelling ("accounting_date" -> "accountingDate") and a
// ":"-prefixed spelling. A nil value counts as absent.
func Lookup(data map[string]any, key string) (any, bool) {
	if data == nil {
		return nil, false
	}
	for _, k := range spellings(key) {
		if v, ok := data[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// Has reports whether data carries key under any accepted spelling.
func Has(data map[string]any, key string) bool {
	_, ok := Lookup(data, key)
	return ok
}

// Fetch returns the value for a required key.
func Fetch(data map[string]any, key string) (any, error) {
	v, ok := Lookup(data, key)
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, ErrMissingField)
	}
	return v, nil
}

// Value returns the value for an optional key, or nil.
func Value(data map[string]any, key string) any {
	v, _ := Lookup(data, key)
	return v
}

func spellings(key string) []string {
	keys := []string{key}
	if camel := lowerCamel(key); camel != key {
		keys = append(keys, camel)
	}
	if !strings.HasPrefix(key, ":") {
		keys = append(keys, ":"+key)
	}
	return keys
}

// lowerCamel converts snake_case to lowerCamelCase. Keys without underscores
// are returned unchanged.
func lowerCamel(key string) string {
	if !strings.Contains(key, "_") {
		return key
	}
	parts := strings.Split(key, "_")
	var b strings.Builder
	b.WriteString(parts[0])
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}
