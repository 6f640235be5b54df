package timeline

import (
	"testing"
)

func TestSlugify_TrimsAndCollapses(t *testing.T) {
	if got := Slugify(" a b "); got != "a_b" {
		t.Errorf("Expected \"a_b\", got %q", got)
	}
}

func TestSlugify_Apostrophe(t *testing.T) {
	if got := Slugify("Let's make a slug"); got != "Let_s_make_a_slug" {
		t.Errorf("Expected \"Let_s_make_a_slug\", got %q", got)
	}
}

func TestSlugify_PunctuationRuns(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"a, b", "a_b"},
		{"a...b", "a_b"},
		{"tag#1", "tag_1"},
		{"50% off!", "50_off_"},
		{"plain", "plain"},
		{"", ""},
	}

	for _, c := range cases {
		if got := Slugify(c.input); got != c.expected {
			t.Errorf("Slugify(%q): expected %q, got %q", c.input, c.expected, got)
		}
	}
}

func TestSlugify_Idempotent(t *testing.T) {
	inputs := []string{"My Group", "a_b", "Let's make a slug", "  spaced out  "}

	for _, input := range inputs {
		once := Slugify(input)
		twice := Slugify(once)
		if once != twice {
			t.Errorf("Slugify not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}

func TestSlugify_CollisionsAreTextual(t *testing.T) {
	// "My Group" and "my   group" differ in case and run length, so their
	// slugs must not collide on semantic similarity alone.
	a := Slugify("My Group")
	b := Slugify("my   group")
	if a == b {
		t.Errorf("Expected distinct slugs for distinct label text, both got %q", a)
	}
	if a != "My_Group" {
		t.Errorf("Expected \"My_Group\", got %q", a)
	}
	if b != "my_group" {
		t.Errorf("Expected \"my_group\", got %q", b)
	}
}
