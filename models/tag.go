package models

// Tag is a label aggregated over articles. Count only exists in this view.
type Tag struct {
	Label
	Count int `json:"count"`
}

// AggregateTags counts label occurrences across articles. Each article counts
// once per label name; the first occurrence's color and description are kept.
// Output order is the order in which label names were first seen.
func AggregateTags(articles []Issue) []Tag {
	index := make(map[string]int)
	tags := make([]Tag, 0)

	for _, a := range articles {
		seen := make(map[string]bool, len(a.Labels))
		for _, l := range a.Labels {
			if seen[l.Name] {
				continue
			}
			seen[l.Name] = true

			if i, ok := index[l.Name]; ok {
				tags[i].Count++
				continue
			}
			index[l.Name] = len(tags)
			tags = append(tags, Tag{Label: l, Count: 1})
		}
	}

	return tags
}
