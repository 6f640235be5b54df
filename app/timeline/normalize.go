package timeline

import (
	"fmt"
	"strings"
)

// Options controls row normalization. TagColumn defaults to "Tags".
type Options struct {
	TagColumn string
}

// Result is the outcome of a pipeline run over a materialized row set.
type Result struct {
	Items       []Item
	Title       *Item
	Facets      Facets
	Diagnostics []Diagnostic
}

// BuildItems runs the full normalization pipeline over a fully concatenated
// row set: date resolution, item assembly, the degenerate-range rule, display
// date synthesis and facet indexing. Date validation failures are recovered
// per row (the instant resolves to absent) and reported as diagnostics; a row
// is only dropped entirely when its start stays absent, unless it is the
// timeline's title row, which is diverted to Result.Title (first one wins).
func BuildItems(rows []Row, opts Options) Result {
	tagColumn := opts.TagColumn
	if tagColumn == "" {
		tagColumn = DefaultTagColumn
	}

	var result Result
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}

		start, startErr := ResolveDateParts(row, ColYear, ColMonth, ColDay, ColTime)
		if startErr != nil {
			result.Diagnostics = append(result.Diagnostics, Diagnostic{
				Headline: row[ColHeadline],
				Field:    "start",
				Err:      startErr,
			})
		}

		end, endErr := ResolveDateParts(row,
			EndColPrefix+ColYear, EndColPrefix+ColMonth, EndColPrefix+ColDay, EndColPrefix+ColTime)
		if endErr != nil {
			result.Diagnostics = append(result.Diagnostics, Diagnostic{
				Headline: row[ColHeadline],
				Field:    "end",
				Err:      endErr,
			})
		}

		item := assembleItem(row, start, end, tagColumn)

		if item.Start != nil {
			result.Items = append(result.Items, item)
		} else if item.Type == TypeTitle && result.Title == nil {
			title := item
			result.Title = &title
		}
	}

	result.Facets = CollectFacets(result.Items)
	return result
}

func assembleItem(row Row, start, end *Instant, tagColumn string) Item {
	item := Item{
		Start:    start,
		End:      end,
		Headline: row[ColHeadline],
		Text:     row[ColText],
		Link:     row[ColLink],
		Media: Media{
			URL:       row[ColMedia],
			Credit:    row[ColMediaCredit],
			Caption:   row[ColMediaCaption],
			Thumbnail: row[ColMediaThumbnail],
		},
		Type:  row[ColType],
		Group: row[ColGroup],
	}

	// A range that ends at or before its start renders as a single point.
	if item.Start != nil && item.End != nil && item.End.UnixMilli() <= item.Start.UnixMilli() {
		item.End = nil
	}

	if item.End != nil {
		item.Duration = item.End.UnixMilli() - item.Start.UnixMilli()
	}

	if display, ok := cellValue(row, ColDisplayDate); ok {
		item.DisplayDate = display
	} else {
		item.DisplayDate = formatDisplayDate(item.Start, item.End)
	}

	if item.Group != "" {
		item.GroupSlug = Slugify(item.Group)
	} else {
		item.GroupSlug = UngroupedSlug
	}

	if raw, ok := cellValue(row, tagColumn); ok {
		parts := strings.Split(raw, ",")
		tags := make([]string, 0, len(parts))
		slugs := make([]string, 0, len(parts))
		for _, part := range parts {
			tag := strings.TrimSpace(part)
			tags = append(tags, tag)
			slugs = append(slugs, Slugify(tag))
		}
		item.Tags = tags
		item.TagSlugs = slugs
	}

	if background := row[ColBackground]; background != "" {
		if strings.HasPrefix(background, "http") {
			item.Background = "url(" + background + ")"
		} else {
			item.Background = background
		}
	}

	return item
}

// formatDisplayDate synthesizes a display date from the start instant and,
// when present, the end instant, using only the granularity each field was
// actually supplied with: "September 9, 1987 at 12:30 - June 6, 2019".
func formatDisplayDate(start, end *Instant) string {
	if start == nil {
		return ""
	}
	display := appendDate("", start, false)
	if end != nil {
		display = appendDate(display, end, true)
	}
	return display
}

func appendDate(display string, in *Instant, isEnd bool) string {
	if isEnd {
		display += " - "
	}
	if in.HasMonth {
		display += in.Time.Month().String() + " "
	}
	if in.HasDay {
		display += fmt.Sprintf("%d, ", in.Time.Day())
	}
	if in.HasYear {
		display += fmt.Sprintf("%d", in.Time.Year())
	}
	if in.HasTime {
		display += fmt.Sprintf(" at %d:%02d", in.Time.Hour(), in.Time.Minute())
	}
	return display
}
