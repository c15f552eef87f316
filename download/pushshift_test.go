package download

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthsBefore(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	months := monthsBefore(now, 3)
	require.Equal(t, []string{"2024-03", "2024-02", "2024-01"}, months)

	assert.Empty(t, monthsBefore(now, 0))
	assert.Len(t, monthsBefore(now, 24), 24)
}

func TestDownloadMonth_FallsBackAcrossExtensions(t *testing.T) {
	var requested []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = append(requested, r.URL.Path)
		if strings.HasSuffix(r.URL.Path, ".gz") {
			w.Write([]byte("dump bytes"))
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	dataDir := t.TempDir()
	downloader, err := NewDownloader(dataDir, server.URL+"/")
	require.NoError(t, err)

	path, err := downloader.DownloadMonth("2024-01")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, "RS_2024-01.json.gz"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "dump bytes", string(data))

	require.Equal(t, []string{
		"/RS_2024-01.json.zst",
		"/RS_2024-01.json.xz",
		"/RS_2024-01.json.gz",
	}, requested)
}

func TestDownloadMonth_ReusesExistingFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected when the file is already present")
	}))
	defer server.Close()

	dataDir := t.TempDir()
	existing := filepath.Join(dataDir, "RS_2024-01.json.zst")
	require.NoError(t, os.WriteFile(existing, []byte("already here"), 0644))

	downloader, err := NewDownloader(dataDir, server.URL+"/")
	require.NoError(t, err)

	path, err := downloader.DownloadMonth("2024-01")
	require.NoError(t, err)
	assert.Equal(t, existing, path)
}

func TestDownloadMonth_AllExtensionsMissing(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	downloader, err := NewDownloader(t.TempDir(), server.URL+"/")
	require.NoError(t, err)

	_, err = downloader.DownloadMonth("1999-01")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1999-01")

	// Failed attempts must not leave partial files behind.
	entries, err := os.ReadDir(downloader.DataDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
