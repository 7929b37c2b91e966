package domain

import (
	"encoding/json"
	"sort"
	"strings"

	pstrings "carebridge/pkg/platform/strings"
)

// Tags is a normalized set of string tags used for care types and schedule
// shifts. Upstream systems store these inconsistently (native arrays,
// JSON-encoded text, comma-separated text); everything is normalized into
// this one type at the store boundary so scoring never branches on storage
// representation.
type Tags []string

// NormalizeTags builds a Tags set from raw values: lowercased, trimmed,
// deduplicated, sorted. Empty values are dropped.
func NormalizeTags(raw []string) Tags {
	out := Tags(pstrings.DedupeAndTrimLower(raw))
	sort.Strings(out)
	return out
}

// ParseTags accepts any of the storage shapes tags arrive in: a JSON array
// string, a comma-separated string, or a single bare tag.
func ParseTags(raw string) Tags {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if strings.HasPrefix(raw, "[") {
		var arr []string
		if err := json.Unmarshal([]byte(raw), &arr); err == nil {
			return NormalizeTags(arr)
		}
	}
	return NormalizeTags(strings.Split(raw, ","))
}

// IsEmpty reports whether the set has no tags.
func (t Tags) IsEmpty() bool { return len(t) == 0 }

// Contains reports whether the set includes the given tag.
func (t Tags) Contains(tag string) bool {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for _, v := range t {
		if v == tag {
			return true
		}
	}
	return false
}

// ContainsAny reports whether the set includes any of the given tags.
func (t Tags) ContainsAny(tags ...string) bool {
	for _, tag := range tags {
		if t.Contains(tag) {
			return true
		}
	}
	return false
}

// CoverageOf returns the fraction of required tags present in this set,
// in [0, 1]. A zero-length required set yields 0 coverage; callers decide
// what absence of requirements means.
func (t Tags) CoverageOf(required Tags) float64 {
	if len(required) == 0 {
		return 0
	}
	matched := 0
	for _, tag := range required {
		if t.Contains(tag) {
			matched++
		}
	}
	return float64(matched) / float64(len(required))
}
