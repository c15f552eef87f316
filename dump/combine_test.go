package dump

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLines(t *testing.T, path string, lines ...string) string {
	t.Helper()
	var content string
	for _, line := range lines {
		content += line + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestCombineFiltered_PreservesOrder(t *testing.T) {
	dir := t.TempDir()
	a := writeLines(t, filepath.Join(dir, "a.jsonl"),
		`{"id":"1","subreddit":"golang"}`,
		`{"id":"2","subreddit":"golang"}`)
	b := writeLines(t, filepath.Join(dir, "b.jsonl"),
		`{"id":"3","subreddit":"golang"}`)

	outPath := filepath.Join(dir, "combined.jsonl")
	total, err := CombineFiltered([]string{a, b}, outPath, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	records, err := LoadFiltered(outPath, 0)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "1", records[0]["id"])
	assert.Equal(t, "2", records[1]["id"])
	assert.Equal(t, "3", records[2]["id"])
}

func TestCombineFiltered_CapAndMissingInput(t *testing.T) {
	dir := t.TempDir()
	a := writeLines(t, filepath.Join(dir, "a.jsonl"),
		`{"id":"1"}`, `{"id":"2"}`, `{"id":"3"}`)

	outPath := filepath.Join(dir, "combined.jsonl")
	total, err := CombineFiltered([]string{filepath.Join(dir, "missing.jsonl"), a}, outPath, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestLoadFiltered_SkipsMalformedAndCaps(t *testing.T) {
	dir := t.TempDir()
	path := writeLines(t, filepath.Join(dir, "f.jsonl"),
		`{"id":"1"}`,
		`broken line`,
		`{"id":"2"}`,
		`{"id":"3"}`)

	records, err := LoadFiltered(path, 0)
	require.NoError(t, err)
	assert.Len(t, records, 3)

	capped, err := LoadFiltered(path, 2)
	require.NoError(t, err)
	assert.Len(t, capped, 2)
}

func TestPostsForSubreddit_CaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	path := writeLines(t, filepath.Join(dir, "f.jsonl"),
		`{"id":"1","subreddit":"AntiWork"}`,
		`{"id":"2","subreddit":"golang"}`,
		`{"id":"3","subreddit":"antiwork"}`)

	records, err := PostsForSubreddit(path, "ANTIWORK", 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "1", records[0]["id"])
	assert.Equal(t, "3", records[1]["id"])
}

func TestSortByCreatedDesc(t *testing.T) {
	records := []map[string]any{
		{"id": "old", "created_utc": float64(100)},
		{"id": "missing"},
		{"id": "new", "created_utc": float64(300)},
		{"id": "mid", "created_utc": float64(200)},
	}

	SortByCreatedDesc(records)

	assert.Equal(t, "new", records[0]["id"])
	assert.Equal(t, "mid", records[1]["id"])
	assert.Equal(t, "old", records[2]["id"])
	assert.Equal(t, "missing", records[3]["id"])
}
