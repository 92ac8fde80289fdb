package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dugout/internal/auth"
	"dugout/internal/models"
)

// readRange covers date, time, location, home field and the four
// volunteer columns, starting under the header row.
const readRange = "A2:H"

var roleColumns = map[models.Role]string{
	models.RoleSnacks:     "E",
	models.RoleLivestream: "F",
	models.RoleScoreboard: "G",
	models.RolePitchCount: "H",
}

// dateLayouts are the date formats the roster sheet is maintained in.
// Both the correlator and the write-back row lookup parse through
// ParseDate so an accepted row is always writable.
var dateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"01/02/2006",
	"1-2-2006",
	"2006/01/02",
}

// ParseDate parses a roster date cell.
func ParseDate(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if d, err := time.ParseInLocation(layout, trimmed, time.Local); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

// Row is one roster line as it appears in the sheet. Date and Time stay
// raw here; the correlator owns per-row failure handling.
type Row struct {
	SheetRow   int
	Date       string
	Time       string
	Location   string
	HomeField  string
	Snacks     string
	Livestream string
	Scoreboard string
	PitchCount string
}

// Assignments maps the filled volunteer columns by role.
func (r Row) Assignments() map[models.Role]string {
	out := make(map[models.Role]string)
	for role, val := range map[models.Role]string{
		models.RoleSnacks:     r.Snacks,
		models.RoleLivestream: r.Livestream,
		models.RoleScoreboard: r.Scoreboard,
		models.RolePitchCount: r.PitchCount,
	} {
		if v := strings.TrimSpace(val); v != "" {
			out[role] = v
		}
	}
	return out
}

type valuesResponse struct {
	Values [][]string `json:"values"`
}

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sheets API error (%d): %s", e.Status, e.Body)
}

// Client reads the roster range and writes volunteer assignments back.
// Writes require the service account; the API key path is read-only.
type Client struct {
	host          string
	spreadsheetID string
	apiKey        string
	account       *auth.ServiceAccount
	httpClient    *http.Client
}

func NewClient(httpClient *http.Client, host, spreadsheetID, apiKey string, account *auth.ServiceAccount) *Client {
	if host == "" {
		host = "https://sheets.googleapis.com/v4"
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		host:          strings.TrimRight(host, "/"),
		spreadsheetID: spreadsheetID,
		apiKey:        apiKey,
		account:       account,
		httpClient:    httpClient,
	}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body []byte) ([]byte, error) {
	if query == nil {
		query = url.Values{}
	}
	if c.account == nil && c.apiKey != "" {
		query.Set("key", c.apiKey)
	}
	fullURL := c.host + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.account != nil {
		token, err := c.account.Token(ctx)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode, Body: string(respBody)}
	}
	return respBody, nil
}

// FetchRows returns the roster rows in sheet order. Blank date cells are
// dropped here; everything else is passed through for the correlator to
// judge.
func (c *Client) FetchRows(ctx context.Context) ([]Row, error) {
	path := fmt.Sprintf("/spreadsheets/%s/values/%s",
		url.PathEscape(c.spreadsheetID), url.PathEscape(readRange))
	body, err := c.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	var vr valuesResponse
	if err := json.Unmarshal(body, &vr); err != nil {
		return nil, fmt.Errorf("parse sheet values: %w", err)
	}

	cell := func(row []string, i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	rows := make([]Row, 0, len(vr.Values))
	for i, raw := range vr.Values {
		if cell(raw, 0) == "" {
			continue
		}
		rows = append(rows, Row{
			SheetRow:   i + 2,
			Date:       cell(raw, 0),
			Time:       cell(raw, 1),
			Location:   cell(raw, 2),
			HomeField:  cell(raw, 3),
			Snacks:     cell(raw, 4),
			Livestream: cell(raw, 5),
			Scoreboard: cell(raw, 6),
			PitchCount: cell(raw, 7),
		})
	}
	return rows, nil
}

// UpdateAssignment writes a volunteer name into the role column for the
// row matching the given date. Last writer wins; an existing name is
// simply replaced.
func (c *Client) UpdateAssignment(ctx context.Context, date time.Time, role models.Role, person string) error {
	if c.account == nil {
		return fmt.Errorf("sheet writes require service account credentials")
	}
	column, ok := roleColumns[role]
	if !ok {
		return fmt.Errorf("no sheet column for role %q", role)
	}

	rows, err := c.FetchRows(ctx)
	if err != nil {
		return err
	}
	sheetRow := findRowByDate(rows, date)
	if sheetRow == 0 {
		return fmt.Errorf("no roster row for %s", date.Format("2006-01-02"))
	}

	cellRange := fmt.Sprintf("%s%d", column, sheetRow)
	return c.writeCell(ctx, cellRange, person)
}

// findRowByDate locates the sheet row for a calendar day. Cells are
// parsed with the same layouts the read path accepts, so any row that
// produced an event can also take a write.
func findRowByDate(rows []Row, date time.Time) int {
	for _, r := range rows {
		d, err := ParseDate(r.Date)
		if err != nil {
			continue
		}
		if d.Year() == date.Year() && d.Month() == date.Month() && d.Day() == date.Day() {
			return r.SheetRow
		}
	}
	return 0
}

func (c *Client) writeCell(ctx context.Context, cellRange, person string) error {
	payload, err := json.Marshal(map[string]any{"values": [][]string{{person}}})
	if err != nil {
		return err
	}
	path := fmt.Sprintf("/spreadsheets/%s/values/%s",
		url.PathEscape(c.spreadsheetID), url.PathEscape(cellRange))
	query := url.Values{}
	query.Set("valueInputOption", "RAW")
	_, err = c.do(ctx, http.MethodPut, path, query, payload)
	return err
}
