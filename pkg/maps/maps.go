// Package maps carries the document-update helpers shared by the catalog
// services: partial-update payloads drop their nil members and nested
// attribute bags collapse into mongo dot-path keys.
package maps

// StripNil returns a copy of the map with nil values removed, descending
// into nested maps. Empty nested maps are dropped entirely.
func StripNil(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		switch nested := v.(type) {
		case nil:
			continue
		case map[string]any:
			cleaned := StripNil(nested)
			if len(cleaned) > 0 {
				out[k] = cleaned
			}
		default:
			out[k] = v
		}
	}
	return out
}

// Flatten converts nested maps into dot-path keys, e.g.
// {"attributes": {"color": "red"}} becomes {"attributes.color": "red"}.
// Slices are treated as leaves.
func Flatten(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	flattenInto(out, "", in)
	return out
}

func flattenInto(out map[string]any, prefix string, in map[string]any) {
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok {
			flattenInto(out, key, nested)
			continue
		}
		out[key] = v
	}
}
