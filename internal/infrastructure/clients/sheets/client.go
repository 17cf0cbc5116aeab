package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/offerfunnel/offerfunnel/backend/pkg/config"
)

const defaultBaseURL = "https://sheets.googleapis.com/v4"

// Client fetches rows from the Google Sheets values API. Only the read
// surface needed by the one-shot importer is implemented.
type Client interface {
	FetchRows(ctx context.Context) ([][]string, error)
}

// HTTPClient is the API-key-authenticated implementation of Client.
type HTTPClient struct {
	baseURL    string
	sheetID    string
	apiKey     string
	valueRange string
	httpClient *http.Client
}

type valuesResponse struct {
	Range  string          `json:"range"`
	Values [][]interface{} `json:"values"`
}

// NewClient creates a new Sheets client from config.
func NewClient(cfg *config.SheetsConfig) (*HTTPClient, error) {
	if cfg.SheetID == "" || cfg.APIKey == "" {
		return nil, fmt.Errorf("SHEETS_ID and SHEETS_API_KEY must be set")
	}
	return &HTTPClient{
		baseURL:    defaultBaseURL,
		sheetID:    cfg.SheetID,
		apiKey:     cfg.APIKey,
		valueRange: cfg.Range,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// NewClientWithBaseURL creates a client against a custom endpoint, used in tests.
func NewClientWithBaseURL(cfg *config.SheetsConfig, baseURL string) (*HTTPClient, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	client.baseURL = baseURL
	return client, nil
}

// FetchRows retrieves the configured range. Every cell is returned as its
// formatted string value; rows may be ragged when trailing cells are blank.
func (c *HTTPClient) FetchRows(ctx context.Context) ([][]string, error) {
	endpoint := fmt.Sprintf(
		"%s/spreadsheets/%s/values/%s?key=%s",
		c.baseURL,
		url.PathEscape(c.sheetID),
		url.PathEscape(c.valueRange),
		url.QueryEscape(c.apiKey),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("sheets api returned status %d", resp.StatusCode)
	}

	var payload valuesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(payload.Values))
	for _, raw := range payload.Values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			row[i] = fmt.Sprint(cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
