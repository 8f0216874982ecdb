// Package attrs reads values back out of slog-style key/value argument lists,
// so one attribute list can feed both a log line and an audit event.
package attrs

// ExtractString returns the string value stored under key in a
// [key1, value1, key2, value2, ...] slice. Missing keys and non-string values
// yield "".
func ExtractString(attrs []any, key string) string {
	for i := 0; i+1 < len(attrs); i += 2 {
		k, ok := attrs[i].(string)
		if !ok || k != key {
			continue
		}
		if v, ok := attrs[i+1].(string); ok {
			return v
		}
	}
	return ""
}
