package order

import "strings"

// ReconcileTags computes the resulting tag set from a current set plus
// add/remove deltas: (current − removes) ∪ adds. First-occurrence order of
// current is preserved, followed by adds in given order; duplicates and
// empty strings are filtered. Membership, not order, is semantically
// meaningful - order is kept stable only for display.
func ReconcileTags(current, adds, removes []string) []string {
	removed := make(map[string]struct{}, len(removes))
	for _, tag := range removes {
		removed[tag] = struct{}{}
	}

	seen := make(map[string]struct{}, len(current)+len(adds))
	result := make([]string, 0, len(current)+len(adds))

	appendTag := func(tag string) {
		if tag == "" {
			return
		}
		if _, ok := seen[tag]; ok {
			return
		}
		seen[tag] = struct{}{}
		result = append(result, tag)
	}

	for _, tag := range current {
		if _, ok := removed[tag]; ok {
			continue
		}
		appendTag(tag)
	}
	for _, tag := range adds {
		appendTag(tag)
	}

	return result
}

// ParseTags splits a stored comma-joined tag column into a slice.
// A nil column or blank entries yield no tags.
func ParseTags(tags *string) []string {
	if tags == nil || *tags == "" {
		return nil
	}
	parts := strings.Split(*tags, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		tag := strings.TrimSpace(part)
		if tag != "" {
			result = append(result, tag)
		}
	}
	return result
}

// JoinTags converts a tag slice to its persisted representation.
// An empty set is stored as NULL, never as an empty string.
func JoinTags(tags []string) *string {
	filtered := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag != "" {
			filtered = append(filtered, tag)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	joined := strings.Join(filtered, ",")
	return &joined
}
