package knowledge

import "strings"

// Tag is a key with an optional value.
type Tag struct {
	Key   string `json:"key"`
	Value string `json:"value,omitempty"`
}

// String returns the canonical form: "key" or "key:value".
func (t Tag) String() string {
	if t.Value == "" {
		return t.Key
	}
	return t.Key + ":" + t.Value
}

// ParseTag splits a canonical tag string back into key and optional value.
func ParseTag(s string) Tag {
	key, value, _ := strings.Cut(s, ":")
	return Tag{Key: key, Value: value}
}

// MergeTags unions two tag sets by key; tags already present keep their
// value, later duplicates are dropped.
func MergeTags(base, extra []Tag) []Tag {
	seen := make(map[string]bool, len(base)+len(extra))
	merged := make([]Tag, 0, len(base)+len(extra))
	for _, t := range base {
		if seen[t.Key] {
			continue
		}
		seen[t.Key] = true
		merged = append(merged, t)
	}
	for _, t := range extra {
		if seen[t.Key] {
			continue
		}
		seen[t.Key] = true
		merged = append(merged, t)
	}
	return merged
}
