package strapi

import (
	"net/url"
	"strings"
)

// MediaURL resolves a media reference to a URL. It accepts a plain string,
// a v4 {data:{attributes:{url}}} relation, a v5 {url} object, or a list of
// either (the first entry wins). Relative paths are prefixed with base.
func MediaURL(base string, value any) string {
	switch v := Unwrap(value).(type) {
	case nil:
		return ""
	case string:
		return absolute(base, v)
	case []any:
		if len(v) == 0 {
			return ""
		}
		return MediaURL(base, v[0])
	case map[string]any:
		if attrs, ok := v["attributes"].(map[string]any); ok {
			if u, ok := attrs["url"].(string); ok {
				return absolute(base, u)
			}
		}
		if u, ok := v["url"].(string); ok {
			return absolute(base, u)
		}
		return ""
	default:
		return ""
	}
}

func absolute(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if parsed, err := url.Parse(ref); err == nil && parsed.Scheme != "" {
		return ref
	}
	if strings.HasPrefix(ref, "//") {
		return ref
	}
	if !strings.HasPrefix(ref, "/") {
		ref = "/" + ref
	}
	return strings.TrimRight(base, "/") + ref
}
