package strapi

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// Shape identifies the record layout a response used.
type Shape uint8

const (
	// ShapeFlat is the v5 layout: fields sit next to id.
	ShapeFlat Shape = iota
	// ShapeAttributes is the v4 layout: fields sit under "attributes".
	ShapeAttributes
)

func (s Shape) String() string {
	if s == ShapeAttributes {
		return "attributes"
	}
	return "flat"
}

var errEnvelopeData = errors.New("envelope data must be an object, an array or null")

// Envelope is a decoded {data, meta} response.
type Envelope struct {
	Data   []Record
	Single bool
	Null   bool
	Meta   map[string]any
}

// First returns the first record, or false for an empty or null envelope.
func (e *Envelope) First() (Record, bool) {
	if e == nil || len(e.Data) == 0 {
		return Record{}, false
	}
	return e.Data[0], true
}

// Record is one content entry with its layout resolved.
type Record struct {
	ID         int64
	DocumentID string
	Shape      Shape
	Fields     map[string]any
}

// DecodeEnvelope parses a Strapi response body. Numbers stay json.Number so
// ids and ratings survive without float rounding.
func DecodeEnvelope(body []byte) (*Envelope, error) {
	var raw map[string]any
	if err := decodeNumbers(body, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errEnvelopeData
	}
	env := &Envelope{}
	if meta, ok := raw["meta"].(map[string]any); ok {
		env.Meta = meta
	}

	switch data := raw["data"].(type) {
	case nil:
		env.Null = true
	case map[string]any:
		env.Single = true
		env.Data = []Record{NewRecord(data)}
	case []any:
		env.Data = make([]Record, 0, len(data))
		for i, item := range data {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("data[%d]: expected object, got %T", i, item)
			}
			env.Data = append(env.Data, NewRecord(obj))
		}
	default:
		return nil, errEnvelopeData
	}
	return env, nil
}

func decodeNumbers(raw []byte, target any) error {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	return decoder.Decode(target)
}

// NewRecord normalises a raw entry. An "attributes" object selects
// ShapeAttributes; anything else is treated as flat.
func NewRecord(obj map[string]any) Record {
	rec := Record{Shape: ShapeFlat}
	if id, ok := toInt(obj["id"]); ok {
		rec.ID = id
	}
	if doc, ok := obj["documentId"].(string); ok {
		rec.DocumentID = doc
	}

	if attrs, ok := obj["attributes"].(map[string]any); ok {
		rec.Shape = ShapeAttributes
		rec.Fields = attrs
		if rec.DocumentID == "" {
			if doc, ok := attrs["documentId"].(string); ok {
				rec.DocumentID = doc
			}
		}
		return rec
	}

	rec.Fields = make(map[string]any, len(obj))
	for key, value := range obj {
		if key == "id" || key == "documentId" {
			continue
		}
		rec.Fields[key] = value
	}
	return rec
}

// HasID reports whether the entry carried a positive numeric id.
func (r Record) HasID() bool { return r.ID > 0 }

// Value returns the raw field value.
func (r Record) Value(key string) (any, bool) {
	v, ok := r.Fields[key]
	return v, ok && v != nil
}

// String returns a string field. Numbers are formatted; other types miss.
func (r Record) String(key string) (string, bool) {
	switch v := r.Fields[key].(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	default:
		return "", false
	}
}

// StringOr returns the string field, or fallback when it is absent or empty.
func (r Record) StringOr(key, fallback string) string {
	if v, ok := r.String(key); ok && v != "" {
		return v
	}
	return fallback
}

// Int returns an integer field. Numeric strings are accepted.
func (r Record) Int(key string) (int64, bool) {
	return toInt(r.Fields[key])
}

// Bool returns a boolean field. "true"/"false" strings are accepted.
func (r Record) Bool(key string) (bool, bool) {
	switch v := r.Fields[key].(type) {
	case bool:
		return v, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		return parsed, err == nil
	default:
		return false, false
	}
}

// Time parses an RFC 3339 timestamp field.
func (r Record) Time(key string) (time.Time, bool) {
	v, ok := r.Fields[key].(string)
	if !ok || v == "" {
		return time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// List returns an array field.
func (r Record) List(key string) ([]any, bool) {
	v, ok := Unwrap(r.Fields[key]).([]any)
	return v, ok
}

// Relation returns a related entry. Both {data:{...}} wrappers and inline
// objects are accepted.
func (r Record) Relation(key string) (Record, bool) {
	obj, ok := Unwrap(r.Fields[key]).(map[string]any)
	if !ok {
		return Record{}, false
	}
	return NewRecord(obj), true
}

// Unwrap strips a v4 {data: ...} relation wrapper.
func Unwrap(value any) any {
	obj, ok := value.(map[string]any)
	if !ok || len(obj) != 1 {
		return value
	}
	if data, ok := obj["data"]; ok {
		return data
	}
	return value
}

func toInt(value any) (int64, bool) {
	switch v := value.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, true
		}
		if f, err := v.Float64(); err == nil {
			return int64(f), true
		}
		return 0, false
	case float64:
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}
