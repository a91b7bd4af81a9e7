package schema

// StripNulls removes explicit nulls recursively: object keys holding null are
// dropped, null array elements removed. "Optional" means absent, never null,
// so this runs on every model response before validation. Idempotent.
func StripNulls(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if v == nil {
			continue
		}
		out[k] = stripValue(v)
	}
	return out
}

func stripValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return StripNulls(t)
	case []any:
		out := make([]any, 0, len(t))
		for _, el := range t {
			if el == nil {
				continue
			}
			out = append(out, stripValue(el))
		}
		return out
	default:
		return v
	}
}
