package query

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
)

// Key identifies a cache slot. Keys are compared by value: two keys with the
// same ordered tokens share a slot. Map tokens compare independent of key
// order.
type Key []any

// NewKey builds a Key from parts.
func NewKey(parts ...any) Key {
	return Key(parts)
}

// Hash returns the canonical encoding used for equality.
func (k Key) Hash() string {
	return strings.Join(k.tokens(), "\x1f")
}

// String renders the key as a JSON array for logs.
func (k Key) String() string {
	return "[" + strings.Join(k.tokens(), ",") + "]"
}

// Root returns the first token as a string, or "".
func (k Key) Root() string {
	if len(k) == 0 {
		return ""
	}
	if s, ok := k[0].(string); ok {
		return s
	}
	return encodeToken(k[0])
}

// Equal reports whether k and other address the same slot.
func (k Key) Equal(other Key) bool {
	return len(k) == len(other) && k.HasPrefix(other)
}

// HasPrefix reports whether prefix matches the leading tokens of k. An empty
// prefix matches every key.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if encodeToken(k[i]) != encodeToken(prefix[i]) {
			return false
		}
	}
	return true
}

func (k Key) tokens() []string {
	out := make([]string, len(k))
	for i, part := range k {
		out[i] = encodeToken(part)
	}
	return out
}

func encodeToken(part any) string {
	raw, err := json.Marshal(part)
	if err != nil {
		return fmt.Sprintf("%q", fmt.Sprint(part))
	}
	return string(raw)
}
