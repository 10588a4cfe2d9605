package auth

import (
	"encoding/json"
	"sort"
	"strings"
)

// PermisoList holds permission tags exactly as they arrived. The persisted
// form is a comma-joined string while tokens usually carry a JSON array;
// both decode into this type without loss. Callers that need to compare
// tags must go through NormalizePermisos, never parse elements themselves.
type PermisoList []string

// UnmarshalJSON accepts either a JSON array of strings or a single
// comma-separated string.
func (p *PermisoList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*p = list
		return nil
	}
	var csv string
	if err := json.Unmarshal(data, &csv); err != nil {
		return err
	}
	if strings.TrimSpace(csv) == "" {
		*p = nil
		return nil
	}
	*p = PermisoList{csv}
	return nil
}

// MarshalJSON always emits the array form, with nil rendered as [].
func (p PermisoList) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(p))
}

// NormalizePermisos reduces raw permission tags to a canonical set: every
// element is split on commas, trimmed and lower-cased; empties are dropped.
// This is the single place where the CSV and array representations converge.
func NormalizePermisos(raw []string) map[string]struct{} {
	set := make(map[string]struct{}, len(raw))
	for _, elem := range raw {
		for _, tag := range strings.Split(elem, ",") {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag == "" {
				continue
			}
			set[tag] = struct{}{}
		}
	}
	return set
}

// JoinPermisos renders a tag list in the comma-joined persisted form.
func JoinPermisos(raw []string) string {
	tags := make([]string, 0, len(raw))
	for tag := range NormalizePermisos(raw) {
		tags = append(tags, tag)
	}
	// map iteration order is random; keep the stored form stable
	sort.Strings(tags)
	return strings.Join(tags, ",")
}
