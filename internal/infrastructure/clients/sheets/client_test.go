package sheets_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offerfunnel/offerfunnel/backend/internal/infrastructure/clients/sheets"
	"github.com/offerfunnel/offerfunnel/backend/pkg/config"
)

func testConfig() *config.SheetsConfig {
	return &config.SheetsConfig{
		SheetID: "sheet-1",
		APIKey:  "key-1",
		Range:   "'Public Data'!A2:O",
	}
}

func TestFetchRows_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key-1", r.URL.Query().Get("key"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"range": "'Public Data'!A2:O",
			"values": [
				["1/15/2024 10:00:00", "100", "10", "5", "2", "1"],
				["1/16/2024 11:00:00", "50", "0"]
			]
		}`))
	}))
	defer server.Close()

	client, err := sheets.NewClientWithBaseURL(testConfig(), server.URL)
	require.NoError(t, err)

	rows, err := client.FetchRows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "100", rows[0][1])
	// ragged rows keep their short length
	assert.Len(t, rows[1], 3)
}

func TestFetchRows_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client, err := sheets.NewClientWithBaseURL(testConfig(), server.URL)
	require.NoError(t, err)

	_, err = client.FetchRows(context.Background())
	assert.Error(t, err)
}

func TestNewClient_MissingCredentials(t *testing.T) {
	_, err := sheets.NewClient(&config.SheetsConfig{Range: "'Public Data'!A2:O"})
	assert.Error(t, err)
}
