package savon

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"sort"
	"strings"

	"github.com/cleared-dev/clearbooks/internal/coerce"
)

// MarshalXML renders h the way the SOAP client lays out a request body.
// Element names are converted to lowerCamelCase ("statement_lines" becomes
// "statementLines"); attribute names are sent as written. Attributes and
// child elements are emitted in key order.
func MarshalXML(h Hash, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	enc.Indent("", indent)

	for _, key := range sortedKeys(h) {
		if IsAttr(key) {
			return nil, fmt.Errorf("attribute %q outside an element", key)
		}
		if err := encodeValue(enc, key, h[key]); err != nil {
			return nil, err
		}
	}
	if err := enc.Flush(); err != nil {
		return nil, fmt.Errorf("flushing XML: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeValue(enc *xml.Encoder, name string, v any) error {
	name = lowerCamel(name)
	switch val := v.(type) {
	case Hash:
		return encodeHash(enc, name, val)
	case map[string]any:
		return encodeHash(enc, name, Hash(val))
	case []Hash:
		for _, item := range val {
			if err := encodeHash(enc, name, item); err != nil {
				return err
			}
		}
		return nil
	case []any:
		for _, item := range val {
			if err := encodeValue(enc, name, item); err != nil {
				return err
			}
		}
		return nil
	default:
		start := xml.StartElement{Name: xml.Name{Local: name}}
		if err := enc.EncodeToken(start); err != nil {
			return fmt.Errorf("encoding <%s>: %w", name, err)
		}
		if s := coerce.String(val); s != "" {
			if err := enc.EncodeToken(xml.CharData(s)); err != nil {
				return fmt.Errorf("encoding <%s> text: %w", name, err)
			}
		}
		if err := enc.EncodeToken(start.End()); err != nil {
			return fmt.Errorf("encoding </%s>: %w", name, err)
		}
		return nil
	}
}

func encodeHash(enc *xml.Encoder, name string, h Hash) error {
	start := xml.StartElement{Name: xml.Name{Local: lowerCamel(name)}}
	keys := sortedKeys(h)
	for _, key := range keys {
		if !IsAttr(key) {
			continue
		}
		start.Attr = append(start.Attr, xml.Attr{
			Name:  xml.Name{Local: strings.TrimPrefix(key, AttrPrefix)},
			Value: coerce.String(h[key]),
		})
	}

	if err := enc.EncodeToken(start); err != nil {
		return fmt.Errorf("encoding <%s>: %w", name, err)
	}
	for _, key := range keys {
		if IsAttr(key) {
			continue
		}
		if err := encodeValue(enc, key, h[key]); err != nil {
			return err
		}
	}
	if err := enc.EncodeToken(start.End()); err != nil {
		return fmt.Errorf("encoding </%s>: %w", name, err)
	}
	return nil
}

func sortedKeys(h Hash) []string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
