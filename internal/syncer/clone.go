package syncer

import "time"

// maxCloneDepth breaks pathological nesting and cyclic structures
// instead of recursing forever.
const maxCloneDepth = 32

// cloneData deep-copies a document payload so tracked state never
// aliases caller-owned maps. Values outside the storable vocabulary
// (maps, slices, scalars, time.Time) are dropped, mirroring how a
// serialize-roundtrip clone silently discards non-serializable fields.
func cloneData(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}
	out, _ := cloneValue(data, 0)
	cloned, _ := out.(map[string]any)
	return cloned
}

func cloneValue(value any, depth int) (any, bool) {
	if depth > maxCloneDepth {
		return nil, false
	}

	switch v := value.(type) {
	case nil, bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return v, true
	case time.Time:
		return v, true
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, elem := range v {
			if cloned, ok := cloneValue(elem, depth+1); ok {
				out[key] = cloned
			}
		}
		return out, true
	case []any:
		out := make([]any, 0, len(v))
		for _, elem := range v {
			if cloned, ok := cloneValue(elem, depth+1); ok {
				out = append(out, cloned)
			}
		}
		return out, true
	default:
		return nil, false
	}
}
