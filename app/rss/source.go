package rss

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/mmcdole/gofeed"

	"github.com/fabtime/fabtime/app/timeline"
)

// Source turns a syndication feed into spreadsheet-shaped rows so feed
// entries flow through the same normalization pipeline as sheet data.
type Source struct {
	gofeedParser *gofeed.Parser
}

func NewSource() *Source {
	return &Source{
		gofeedParser: gofeed.NewParser(),
	}
}

// Run parses the raw feed document and returns its title alongside one row
// per entry. Entries without a publication date become undated rows and are
// dropped later by the pipeline.
func (s *Source) Run(data []byte) (string, []timeline.Row, error) {
	feed, err := s.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return "", nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	rows := make([]timeline.Row, 0, len(feed.Items))
	for _, item := range feed.Items {
		rows = append(rows, s.rowFromItem(item))
	}

	return feed.Title, rows, nil
}

func (s *Source) rowFromItem(item *gofeed.Item) timeline.Row {
	row := timeline.Row{
		timeline.ColHeadline: item.Title,
		timeline.ColText:     item.Description,
		timeline.ColLink:     item.Link,
	}

	if item.Content != "" {
		row[timeline.ColText] = item.Content
	}

	if item.PublishedParsed != nil {
		published := item.PublishedParsed.UTC()
		row[timeline.ColYear] = strconv.Itoa(published.Year())
		row[timeline.ColMonth] = strconv.Itoa(int(published.Month()))
		row[timeline.ColDay] = strconv.Itoa(published.Day())
		row[timeline.ColTime] = fmt.Sprintf("%d:%02d", published.Hour(), published.Minute())
	}

	if len(item.Categories) > 0 {
		tags := ""
		for i, category := range item.Categories {
			if i > 0 {
				tags += ","
			}
			tags += category
		}
		row[timeline.DefaultTagColumn] = tags
	}

	if len(item.Enclosures) > 0 && item.Enclosures[0] != nil {
		row[timeline.ColMedia] = item.Enclosures[0].URL
	} else if item.Image != nil {
		row[timeline.ColMedia] = item.Image.URL
	}

	return row
}
