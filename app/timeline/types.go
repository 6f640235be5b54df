package timeline

import (
	"fmt"
	"time"
)

// Row is a single spreadsheet row keyed by column name. A missing key and an
// empty cell both mean "no value"; different rows may carry different columns.
type Row map[string]string

// Recognized column names. The tag column is configurable per timeline.
const (
	ColYear           = "Year"
	ColMonth          = "Month"
	ColDay            = "Day"
	ColTime           = "Time"
	ColHeadline       = "Headline"
	ColText           = "Text"
	ColMedia          = "Media"
	ColMediaCredit    = "Media Credit"
	ColMediaCaption   = "Media Caption"
	ColMediaThumbnail = "Media Thumbnail"
	ColType           = "Type"
	ColGroup          = "Group"
	ColLink           = "Link"
	ColDisplayDate    = "Display Date"
	ColBackground     = "Background"

	EndColPrefix = "End "

	DefaultTagColumn = "Tags"
)

// TypeTitle marks a row that holds the timeline's out-of-band title entry
// instead of a dated item.
const TypeTitle = "title"

// UngroupedSlug is the group slug assigned to items without a group.
const UngroupedSlug = "Ungrouped"

// Media describes the media attachment of an item. All fields optional.
type Media struct {
	URL       string `json:"url,omitempty"`
	Credit    string `json:"credit,omitempty"`
	Caption   string `json:"caption,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// Item is the canonical timeline unit handed to the display surface.
// Start is always present on a visible item; End is present only for ranges
// and is strictly after Start.
type Item struct {
	Start       *Instant `json:"start"`
	End         *Instant `json:"end,omitempty"`
	Duration    int64    `json:"duration"` // milliseconds, 0 for point items
	Headline    string   `json:"headline"`
	Text        string   `json:"text"`
	Link        string   `json:"link,omitempty"`
	DisplayDate string   `json:"display_date"`
	Media       Media    `json:"media"`
	Type        string   `json:"type,omitempty"`
	Group       string   `json:"group,omitempty"`
	GroupSlug   string   `json:"group_slug"`
	Tags        []string `json:"tags,omitempty"`
	TagSlugs    []string `json:"tag_slugs,omitempty"`
	Background  string   `json:"background,omitempty"`
}

// Facets are the distinct, lexicographically sorted slug sets derived from an
// item set. They drive the filter UI options.
type Facets struct {
	Groups []string `json:"groups"`
	Tags   []string `json:"tags"`
}

// Diagnostic records a recovered per-row validation failure, identified by the
// row's headline for operator visibility.
type Diagnostic struct {
	Headline string
	Field    string // "start" or "end"
	Err      *ValidationError
}

// Instant is a point in calendar time plus the precision actually supplied:
// year only, year+month, year+month+day, or a full date with time of day.
// The flags are tracked explicitly because a deliberate 00:00 is otherwise
// indistinguishable from "no time given".
type Instant struct {
	Time     time.Time
	HasYear  bool
	HasMonth bool
	HasDay   bool
	HasTime  bool
}

// UnixMilli returns the instant as milliseconds since the Unix epoch, the
// unit item durations are expressed in.
func (in *Instant) UnixMilli() int64 {
	return in.Time.UnixMilli()
}

// Precision encodes the supplied-field flags as a compact "ymdt" string for
// persistence.
func (in *Instant) Precision() string {
	var p []byte
	if in.HasYear {
		p = append(p, 'y')
	}
	if in.HasMonth {
		p = append(p, 'm')
	}
	if in.HasDay {
		p = append(p, 'd')
	}
	if in.HasTime {
		p = append(p, 't')
	}
	return string(p)
}

// ApplyPrecision restores the supplied-field flags from a Precision string.
func (in *Instant) ApplyPrecision(p string) {
	in.HasYear = false
	in.HasMonth = false
	in.HasDay = false
	in.HasTime = false
	for i := 0; i < len(p); i++ {
		switch p[i] {
		case 'y':
			in.HasYear = true
		case 'm':
			in.HasMonth = true
		case 'd':
			in.HasDay = true
		case 't':
			in.HasTime = true
		}
	}
}

// ISO renders the instant as an ISO 8601 string with a sign-preserving,
// zero-padded year. The standard library refuses to format years outside
// [0, 9999], which BCE instants need.
func (in *Instant) ISO() string {
	t := in.Time
	return PadYear(t.Year(), 4) + t.Format("-01-02T15:04:05Z")
}

// ParseISO parses a string produced by ISO back into an instant (without
// precision flags; see ApplyPrecision).
func ParseISO(s string) (*Instant, error) {
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	t, err := time.Parse("2006-01-02T15:04:05Z", s)
	if err != nil {
		return nil, err
	}
	if neg {
		t = time.Date(-t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
	}
	return &Instant{Time: t}, nil
}

// MarshalJSON emits the ISO rendering so BCE years survive serialization.
func (in *Instant) MarshalJSON() ([]byte, error) {
	return []byte(`"` + in.ISO() + `"`), nil
}

// UnmarshalJSON parses the ISO rendering.
func (in *Instant) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid instant value: %s", s)
	}
	parsed, err := ParseISO(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	in.Time = parsed.Time
	return nil
}
