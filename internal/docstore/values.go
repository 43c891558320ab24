package docstore

import "time"

// TimeFormat is the canonical encoding for timestamps stored in
// document fields.
const TimeFormat = time.RFC3339Nano

// ServerTimestampValue marks a field to be replaced with the store's
// commit time. It never appears in a delivered snapshot.
type ServerTimestampValue struct{}

// ServerTimestamp returns the server-timestamp placeholder.
func ServerTimestamp() ServerTimestampValue {
	return ServerTimestampValue{}
}

// IncrementValue marks a numeric field to be incremented atomically at
// commit time. Missing or non-numeric existing values count as zero.
type IncrementValue struct {
	By int64
}

// Increment returns an atomic increment-by-n placeholder.
func Increment(n int64) IncrementValue {
	return IncrementValue{By: n}
}

// FormatTime encodes a timestamp for storage in a document field.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

// ParseTime decodes a stored timestamp field. Returns false when the
// value is absent or not a timestamp string.
func ParseTime(value any) (time.Time, bool) {
	s, ok := value.(string)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(TimeFormat, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// AsInt64 coerces a document field to an integer. Handles the numeric
// types that survive JSON round-trips.
func AsInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		if v != float64(int64(v)) {
			return 0, false
		}
		return int64(v), true
	default:
		return 0, false
	}
}

// ResolveWrite applies incoming fields over existing document data,
// resolving transform values against it at the given commit time. When
// merge is false the existing data is ignored except for increment
// bases. The inputs are not modified.
func ResolveWrite(existing, incoming map[string]any, merge bool, now time.Time) map[string]any {
	var out map[string]any
	if merge && existing != nil {
		out = cloneMap(existing)
	} else {
		out = make(map[string]any, len(incoming))
	}
	applyFields(out, existing, incoming, now)
	return out
}

func applyFields(out, existing, incoming map[string]any, now time.Time) {
	for key, value := range incoming {
		switch v := value.(type) {
		case ServerTimestampValue:
			out[key] = FormatTime(now)
		case IncrementValue:
			base := int64(0)
			if existing != nil {
				if current, ok := AsInt64(existing[key]); ok {
					base = current
				}
			}
			out[key] = base + v.By
		case map[string]any:
			var existingChild map[string]any
			if existing != nil {
				existingChild, _ = existing[key].(map[string]any)
			}
			outChild, _ := out[key].(map[string]any)
			if outChild == nil {
				outChild = make(map[string]any, len(v))
			} else {
				outChild = cloneMap(outChild)
			}
			applyFields(outChild, existingChild, v, now)
			out[key] = outChild
		default:
			out[key] = value
		}
	}
}

func cloneMap(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for key, value := range src {
		if child, ok := value.(map[string]any); ok {
			out[key] = cloneMap(child)
			continue
		}
		if list, ok := value.([]any); ok {
			cloned := make([]any, len(list))
			for i, elem := range list {
				if childMap, ok := elem.(map[string]any); ok {
					cloned[i] = cloneMap(childMap)
				} else {
					cloned[i] = elem
				}
			}
			out[key] = cloned
			continue
		}
		out[key] = value
	}
	return out
}

// CloneData deep-copies document data so callers can hold snapshots
// without aliasing store-owned state.
func CloneData(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}
	return cloneMap(data)
}
