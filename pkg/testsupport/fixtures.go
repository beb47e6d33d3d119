package testsupport

import (
	"os"
	"testing"

	"github.com/goccy/go-json"
)

// LoadFixture reads a fixture file or fails the test.
func LoadFixture(t testing.TB, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("load fixture %s: %v", path, err)
	}
	return data
}

// LoadGolden decodes a JSON golden file into v.
func LoadGolden(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// Normalize round-trips v through JSON so values built in Go compare equal
// to values decoded from golden files.
func Normalize(t testing.TB, v any) any {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return out
}

// Envelope builds a CMS list response body around records.
func Envelope(records ...map[string]any) map[string]any {
	data := make([]any, len(records))
	for i, record := range records {
		data[i] = record
	}
	return map[string]any{
		"data": data,
		"meta": map[string]any{"pagination": map[string]any{"total": len(records)}},
	}
}
