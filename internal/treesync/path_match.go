package treesync

import "strings"

// Path comparisons are segment-based and separator-agnostic so that
// watcher-reported paths (native separators) and tree-model paths
// (slash-normalized) compare equal. Under a case-insensitive policy,
// folding applies uniformly to every segment of both paths.

// splitSegments normalizes a path into its non-empty segments.
func splitSegments(path string) []string {
	path = strings.ReplaceAll(path, "\\", "/")
	parts := strings.Split(path, "/")
	segments := parts[:0]
	for _, p := range parts {
		if p != "" && p != "." {
			segments = append(segments, p)
		}
	}
	return segments
}

func equalSegment(a, b string, ignoreCase bool) bool {
	if ignoreCase {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// EqualPaths reports whether two paths have identical normalized segment
// sequences under the given casing policy.
func EqualPaths(a, b string, ignoreCase bool) bool {
	sa := splitSegments(a)
	sb := splitSegments(b)
	if len(sa) != len(sb) {
		return false
	}
	for i := range sa {
		if !equalSegment(sa[i], sb[i], ignoreCase) {
			return false
		}
	}
	return true
}

// IsAncestorOrSelf reports whether ancestor's segments are a prefix of
// target's segments, or the two paths are equal.
func IsAncestorOrSelf(ancestor, target string, ignoreCase bool) bool {
	sa := splitSegments(ancestor)
	st := splitSegments(target)
	if len(sa) > len(st) {
		return false
	}
	for i := range sa {
		if !equalSegment(sa[i], st[i], ignoreCase) {
			return false
		}
	}
	return true
}

// foldPath returns a canonical lookup key for a path under the casing
// policy. Keys for paths that differ only in case (or separators) collide
// on a case-insensitive filesystem.
func foldPath(path string, ignoreCase bool) string {
	key := strings.Join(splitSegments(path), "/")
	if ignoreCase {
		key = strings.ToLower(key)
	}
	return key
}

// parentPath returns the path one segment up, or "" for a root-level path.
func parentPath(path string) string {
	segments := splitSegments(path)
	if len(segments) <= 1 {
		return ""
	}
	return strings.Join(segments[:len(segments)-1], "/")
}
