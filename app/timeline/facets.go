package timeline

import (
	"slices"
)

// CollectFacets scans an item set once and returns the distinct group slugs
// and the distinct, flattened tag slugs, each sorted lexicographically so the
// filter UI ordering is deterministic. Facets are a pure function of the
// current items and are recomputed whenever the item set is replaced.
func CollectFacets(items []Item) Facets {
	groupSet := make(map[string]struct{})
	tagSet := make(map[string]struct{})

	for _, item := range items {
		groupSet[item.GroupSlug] = struct{}{}
		for _, slug := range item.TagSlugs {
			tagSet[slug] = struct{}{}
		}
	}

	facets := Facets{
		Groups: make([]string, 0, len(groupSet)),
		Tags:   make([]string, 0, len(tagSet)),
	}
	for slug := range groupSet {
		facets.Groups = append(facets.Groups, slug)
	}
	for slug := range tagSet {
		facets.Tags = append(facets.Tags, slug)
	}
	slices.Sort(facets.Groups)
	slices.Sort(facets.Tags)

	return facets
}
