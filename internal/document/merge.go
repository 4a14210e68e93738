// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package document implements the reconciliation primitives for persisted
// project documents: a recursive merge that never loses data already in
// the destination tree, and a recursive structural diff for offline
// comparison of two extraction passes.
//
// Documents are plain nested map[string]any trees. Absent values are
// omitted from the tree entirely; omission, not an explicit null, is the
// persisted "no data" marker.
package document

// Merge merges src into dst and returns dst. Keys present in both as
// nested maps are merged recursively. Keys present in both as leaves keep
// the dst value — a leaf already in dst is never overwritten or removed.
// Keys only in src are copied into dst.
//
// Merge mutates dst. It is idempotent: merging the same src twice leaves
// dst unchanged after the first call. Merging a src that is a subset of
// dst is a no-op. This is the policy that preserves edits made directly
// on the stored document between extraction runs.
func Merge(dst, src map[string]any) map[string]any {
	for key, sv := range src {
		dv, ok := dst[key]
		if !ok {
			dst[key] = sv
			continue
		}
		dm, dIsMap := dv.(map[string]any)
		sm, sIsMap := sv.(map[string]any)
		if dIsMap && sIsMap {
			Merge(dm, sm)
		}
		// Leaf present in dst: kept as-is.
	}
	return dst
}
