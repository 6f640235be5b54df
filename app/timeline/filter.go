package timeline

import (
	"slices"
	"sync"
)

// TagMode selects how multiple active tags combine.
type TagMode string

const (
	// TagModeAny keeps items carrying at least one active tag.
	TagModeAny TagMode = "any"
	// TagModeAll keeps only items carrying every active tag.
	TagModeAll TagMode = "all"
)

// ValidTagMode reports whether s is a recognized tag-combination mode.
func ValidTagMode(s string) bool {
	return TagMode(s) == TagModeAny || TagMode(s) == TagModeAll
}

// FilterState is the current filter selection for one timeline. Slugs are the
// shared vocabulary with the filter UI; display labels never appear here.
// The zero-ish initial state (no active slugs, mode any) filters nothing.
type FilterState struct {
	ActiveGroupSlugs []string `json:"active_groups"`
	ActiveTagSlugs   []string `json:"active_tags"`
	TagMode          TagMode  `json:"tag_mode"`
}

// NewFilterState returns the unfiltered initial state.
func NewFilterState() FilterState {
	return FilterState{
		ActiveGroupSlugs: []string{},
		ActiveTagSlugs:   []string{},
		TagMode:          TagModeAny,
	}
}

// Evaluate decides visibility of a single item under the given filter state.
// Pure, no side effects; the display surface calls it per item on every
// refresh. Group membership is checked first and short-circuits the tag
// condition when it fails.
func Evaluate(item Item, state FilterState) bool {
	hasGroups := len(state.ActiveGroupSlugs) > 0
	hasTags := len(state.ActiveTagSlugs) > 0

	if !hasGroups && !hasTags {
		return true
	}

	if hasGroups && !slices.Contains(state.ActiveGroupSlugs, item.GroupSlug) {
		return false
	}
	if !hasTags {
		return true
	}

	if state.TagMode == TagModeAll {
		for _, slug := range state.ActiveTagSlugs {
			if !slices.Contains(item.TagSlugs, slug) {
				return false
			}
		}
		return true
	}

	for _, slug := range state.ActiveTagSlugs {
		if slices.Contains(item.TagSlugs, slug) {
			return true
		}
	}
	return false
}

// FilterItems applies Evaluate over a whole item set, returning the visible
// subset in input order.
func FilterItems(items []Item, state FilterState) []Item {
	visible := make([]Item, 0, len(items))
	for _, item := range items {
		if Evaluate(item, state) {
			visible = append(visible, item)
		}
	}
	return visible
}

// FilterStore holds the mutable per-timeline filter states. UI-triggered
// mutations and predicate evaluations run on concurrent HTTP handlers, so
// access is serialized; each read hands out a snapshot copy.
type FilterStore struct {
	mu     sync.RWMutex
	states map[string]FilterState
}

func NewFilterStore() *FilterStore {
	return &FilterStore{
		states: make(map[string]FilterState),
	}
}

// Get returns a snapshot of the filter state for a timeline, creating the
// initial unfiltered state on first access.
func (s *FilterStore) Get(timelineName string) FilterState {
	s.mu.RLock()
	state, ok := s.states[timelineName]
	s.mu.RUnlock()
	if !ok {
		return NewFilterState()
	}
	return cloneState(state)
}

// Set replaces the filter state for a timeline.
func (s *FilterStore) Set(timelineName string, state FilterState) {
	if state.TagMode == "" {
		state.TagMode = TagModeAny
	}
	s.mu.Lock()
	s.states[timelineName] = cloneState(state)
	s.mu.Unlock()
}

// Reset drops a timeline's state back to the unfiltered initial state.
func (s *FilterStore) Reset(timelineName string) {
	s.mu.Lock()
	delete(s.states, timelineName)
	s.mu.Unlock()
}

func cloneState(state FilterState) FilterState {
	return FilterState{
		ActiveGroupSlugs: slices.Clone(state.ActiveGroupSlugs),
		ActiveTagSlugs:   slices.Clone(state.ActiveTagSlugs),
		TagMode:          state.TagMode,
	}
}
