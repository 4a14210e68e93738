// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package document

import "reflect"

// Missing marks the absent side of a one-sided diff entry.
const Missing = "missing"

// Diff recursively compares two document trees and returns a flat report
// of divergent paths. For keys present in both sides as nested maps the
// comparison recurses, accumulating the path. For keys present in both
// as leaves with unequal values the report holds the pair [a-value,
// b-value] under "<path> <key>". A key present on only one side is
// reported under "key <path> <key>" against Missing — but only when its
// value is truthy: empty strings, empty containers, zeros, false and nil
// are not divergence, they are the omission marker.
//
// Diff is read-only and symmetric up to the order of the reported value
// pairs.
func Diff(a, b map[string]any, path string) map[string][2]any {
	diffs := make(map[string][2]any)

	for key, av := range a {
		bv, ok := b[key]
		if !ok {
			if Truthy(av) {
				diffs["key "+path+" "+key] = [2]any{av, Missing}
			}
			continue
		}
		am, aIsMap := av.(map[string]any)
		bm, bIsMap := bv.(map[string]any)
		if aIsMap && bIsMap {
			for p, pair := range Diff(am, bm, path+" "+key) {
				diffs[p] = pair
			}
			continue
		}
		if !reflect.DeepEqual(av, bv) {
			diffs[path+" "+key] = [2]any{av, bv}
		}
	}

	for key, bv := range b {
		if _, ok := a[key]; !ok && Truthy(bv) {
			diffs["key "+path+" "+key] = [2]any{Missing, bv}
		}
	}

	return diffs
}

// Truthy reports whether a value counts as data for diff purposes.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case bool:
		return x
	case int:
		return x != 0
	case int64:
		return x != 0
	case float64:
		return x != 0
	case map[string]any:
		return len(x) > 0
	case []any:
		return len(x) > 0
	case []string:
		return len(x) > 0
	default:
		return true
	}
}
