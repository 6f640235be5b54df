package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/fabtime/fabtime/app/timeline"
)

const defaultBaseURL = "https://sheets.googleapis.com/v4/spreadsheets"

// valueRange mirrors the values endpoint response shape.
type valueRange struct {
	Range  string     `json:"range"`
	Values [][]string `json:"values"`
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	userAgent  string
}

func NewClient(httpClient *http.Client, apiKey string, userAgent string) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		userAgent:  userAgent,
	}
}

// FetchRows retrieves every populated cell of the sheet and zips each data
// row against the header row. Cells beyond a short row resolve to absent.
func (c *Client) FetchRows(ctx context.Context, sheetID string) ([]timeline.Row, error) {
	vr, err := c.fetchValues(ctx, sheetID, "A:ZZZ")
	if err != nil {
		return nil, err
	}

	if len(vr.Values) < 2 {
		return nil, nil
	}

	header := vr.Values[0]
	rows := make([]timeline.Row, 0, len(vr.Values)-1)
	for _, cells := range vr.Values[1:] {
		row := timeline.Row{}
		for i, name := range header {
			name = strings.TrimSpace(name)
			if name == "" || i >= len(cells) {
				continue
			}
			row[name] = cells[i]
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// FetchSheetList reads a master list sheet whose first column holds sheet
// IDs or full spreadsheet URLs, one per row, skipping the header row.
func (c *Client) FetchSheetList(ctx context.Context, listSheetID string) ([]string, error) {
	vr, err := c.fetchValues(ctx, listSheetID, "A:A")
	if err != nil {
		return nil, err
	}

	var ids []string
	for i, cells := range vr.Values {
		if i == 0 || len(cells) == 0 {
			continue
		}
		id := ExtractSheetID(strings.TrimSpace(cells[0]))
		if id != "" {
			ids = append(ids, id)
		}
	}

	return ids, nil
}

func (c *Client) fetchValues(ctx context.Context, sheetID, cellRange string) (*valueRange, error) {
	endpoint := fmt.Sprintf("%s/%s/values/%s?key=%s",
		c.baseURL, url.PathEscape(sheetID), url.PathEscape(cellRange), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sheet: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var vr valueRange
	if err := json.Unmarshal(data, &vr); err != nil {
		return nil, fmt.Errorf("failed to parse sheet response: %w", err)
	}

	return &vr, nil
}

// ExtractSheetID accepts either a bare spreadsheet ID or a full
// docs.google.com URL and returns the ID.
func ExtractSheetID(value string) string {
	if !strings.Contains(value, "/") {
		return value
	}

	marker := "/spreadsheets/d/"
	idx := strings.Index(value, marker)
	if idx == -1 {
		return ""
	}

	rest := value[idx+len(marker):]
	if end := strings.IndexAny(rest, "/?#"); end != -1 {
		rest = rest[:end]
	}

	return rest
}
