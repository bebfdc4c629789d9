package censusapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "test-key"

func testClient(baseURL string) *Client {
	return &Client{
		key:        testKey,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestClient_DownloadCounties_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2023/acs/acs5", r.URL.Path)
		assert.Equal(t, "NAME,B01003_001E", r.URL.Query().Get("get"))
		assert.Equal(t, "county:*", r.URL.Query().Get("for"))
		assert.Equal(t, "state:01,06", r.URL.Query().Get("in"))
		assert.Equal(t, testKey, r.URL.Query().Get("key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			["NAME","B01003_001E","state","county"],
			["Autauga County, Alabama","58805","01","001"],
			["Missing County, Alabama",null,"01","003"]
		]`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	rows, err := c.DownloadCounties(context.Background(), "acs/acs5", 2023, []string{"NAME", "B01003_001E"}, []string{"01", "06"})
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"NAME", "B01003_001E", "state", "county"}, rows[0])
	assert.Equal(t, []string{"Autauga County, Alabama", "58805", "01", "001"}, rows[1])
	// null estimates become empty cells.
	assert.Equal(t, "", rows[2][1])
}

func TestClient_DownloadCounties_NumericCells(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[["NAME","DP04_0001E","state","county"],["X",21530,"01","001"]]`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	rows, err := c.DownloadCounties(context.Background(), "acs/acs5/profile", 2023, []string{"NAME", "DP04_0001E"}, []string{"01"})
	require.NoError(t, err)
	assert.Equal(t, "21530", rows[1][1])
}

func TestClient_DownloadStates_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2010/acs/acs5", r.URL.Path)
		assert.Equal(t, "state:*", r.URL.Query().Get("for"))
		assert.Empty(t, r.URL.Query().Get("in"))

		_, _ = w.Write([]byte(`[["NAME","state"],["Alabama","01"],["Alaska","02"]]`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	rows, err := c.DownloadStates(context.Background(), "acs/acs5", 2010, []string{"NAME"})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Alabama", "01"}, rows[1])
}

func TestClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("error: unknown variable"))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.DownloadStates(context.Background(), "acs/acs5", 2010, []string{"BOGUS"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "unknown variable")
}

func TestClient_EmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.DownloadStates(context.Background(), "acs/acs5", 2010, []string{"NAME"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.httpClient.Timeout = 50 * time.Millisecond

	_, err := c.DownloadStates(context.Background(), "acs/acs5", 2010, []string{"NAME"})
	require.Error(t, err)
}

func TestClient_KeylessRequestOmitsKeyParam(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present := r.URL.Query()["key"]
		assert.False(t, present)
		_, _ = w.Write([]byte(`[["NAME","state"],["Alabama","01"]]`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.key = ""

	_, err := c.DownloadStates(context.Background(), "acs/acs5", 2010, []string{"NAME"})
	require.NoError(t, err)
}
