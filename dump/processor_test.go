package dump

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hollowlog/reddit-harvester/posts"
)

func targets(names ...string) map[string]struct{} {
	return lowerSet(names)
}

func TestFilterStream_MalformedLinesAreSkipped(t *testing.T) {
	input := strings.Join([]string{
		`not json at all`,
		`{"truncated": `,
		`[1, 2, 3]`,
		`{"id":"ok","subreddit":"golang"}`,
	}, "\n")

	var out bytes.Buffer
	count, err := NewProcessor().FilterStream(strings.NewReader(input), &out, targets("golang"))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, len(nonEmptyLines(out.String())))
}

func TestFilterStream_NonMatchingSubredditEmitsNothing(t *testing.T) {
	input := `{"id":"a","subreddit":"programming"}` + "\n" +
		`{"id":"b"}` + "\n" +
		`{"id":"c","subreddit":42}` + "\n"

	var out bytes.Buffer
	count, err := NewProcessor().FilterStream(strings.NewReader(input), &out, targets("golang"))
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Empty(t, out.String())
}

func TestFilterStream_CaseInsensitiveMatchProjectsWithNulls(t *testing.T) {
	input := `{"id":"a1","subreddit":"AntiWork","title":"t"}` + "\n"

	var out bytes.Buffer
	count, err := NewProcessor().FilterStream(strings.NewReader(input), &out, targets("antiwork"))
	require.NoError(t, err)
	require.Equal(t, 1, count)

	lines := nonEmptyLines(out.String())
	require.Len(t, lines, 1)

	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &record))

	// Exactly the recognized subset, nothing else.
	require.Len(t, record, len(posts.RecognizedFields))
	assert.Equal(t, "a1", record["id"])
	assert.Equal(t, "t", record["title"])
	assert.Equal(t, "AntiWork", record["subreddit"])
	for _, field := range posts.RecognizedFields {
		value, present := record[field]
		require.True(t, present, "missing field %q", field)
		if field == "id" || field == "title" || field == "subreddit" {
			continue
		}
		assert.Nil(t, value, "field %q should be null", field)
	}
}

func TestFilterStream_UnrecognizedFieldsAreDropped(t *testing.T) {
	input := `{"id":"x","subreddit":"golang","media_embed":{"a":1},"gilded":2}` + "\n"

	var out bytes.Buffer
	_, err := NewProcessor().FilterStream(strings.NewReader(input), &out, targets("golang"))
	require.NoError(t, err)

	var record map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &record))
	assert.NotContains(t, record, "media_embed")
	assert.NotContains(t, record, "gilded")
}

func TestFilterStream_EmptyInput(t *testing.T) {
	var out bytes.Buffer
	count, err := NewProcessor().FilterStream(strings.NewReader(""), &out, targets("golang"))
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Empty(t, out.Bytes())
}

func TestFilterStream_Idempotent(t *testing.T) {
	input := `{"id":"1","subreddit":"golang","score":10}` + "\n" +
		`{"id":"2","subreddit":"Golang","title":"hi","over_18":false}` + "\n" +
		`garbage` + "\n" +
		`{"id":"3","subreddit":"rust"}` + "\n"

	var first, second bytes.Buffer
	_, err := NewProcessor().FilterStream(strings.NewReader(input), &first, targets("golang"))
	require.NoError(t, err)
	_, err = NewProcessor().FilterStream(strings.NewReader(input), &second, targets("golang"))
	require.NoError(t, err)

	assert.Equal(t, first.Bytes(), second.Bytes())

	// Input order survives.
	lines := nonEmptyLines(first.String())
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"id":"1"`)
	assert.Contains(t, lines[1], `"id":"2"`)
}

func TestFilterStream_SelfOnly(t *testing.T) {
	input := `{"id":"1","subreddit":"golang","is_self":true}` + "\n" +
		`{"id":"2","subreddit":"golang","is_self":false}` + "\n" +
		`{"id":"3","subreddit":"golang"}` + "\n"

	processor := NewProcessor()
	processor.SelfOnly = true

	var out bytes.Buffer
	count, err := processor.FilterStream(strings.NewReader(input), &out, targets("golang"))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Contains(t, out.String(), `"id":"1"`)
}

func TestFilterStream_MaxPostsStopsThePass(t *testing.T) {
	var input strings.Builder
	for i := 0; i < 10; i++ {
		input.WriteString(`{"id":"p","subreddit":"golang"}` + "\n")
	}

	processor := NewProcessor()
	processor.MaxPosts = 3

	var out bytes.Buffer
	count, err := processor.FilterStream(strings.NewReader(input.String()), &out, targets("golang"))
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Len(t, nonEmptyLines(out.String()), 3)
}

func TestFilterStream_MultipleTargets(t *testing.T) {
	input := `{"id":"1","subreddit":"golang"}` + "\n" +
		`{"id":"2","subreddit":"Depression"}` + "\n" +
		`{"id":"3","subreddit":"rust"}` + "\n"

	var out bytes.Buffer
	count, err := NewProcessor().FilterStream(strings.NewReader(input), &out, targets("golang", "depression"))
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestFilterFile_WritesOutputFile(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "RS_2024-01.json")
	outPath := filepath.Join(dir, "filtered.jsonl")

	content := `{"id":"1","subreddit":"antiwork","is_self":true}` + "\n" +
		`{"id":"2","subreddit":"other"}` + "\n"
	require.NoError(t, os.WriteFile(inPath, []byte(content), 0644))

	count, err := NewProcessor().FilterFile(inPath, []string{"antiwork"}, outPath)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Len(t, nonEmptyLines(string(data)), 1)
}

func TestProcessDumps_MissingFileIsSkipped(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "RS_2024-02.json")
	require.NoError(t, os.WriteFile(inPath, []byte(`{"id":"1","subreddit":"golang"}`+"\n"), 0644))

	outDir := filepath.Join(dir, "filtered")
	results, err := NewProcessor().ProcessDumps(
		[]string{inPath, filepath.Join(dir, "RS_1999-01.json")},
		[]string{"golang"}, outDir)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, 1, results["RS_2024-02.json"])

	_, err = os.Stat(filepath.Join(outDir, "filtered_RS_2024-02.jsonl"))
	assert.NoError(t, err)
}

func TestStem(t *testing.T) {
	assert.Equal(t, "RS_2024-01", stem("/data/RS_2024-01.json.gz"))
	assert.Equal(t, "RS_2024-01", stem("RS_2024-01.json"))
	assert.Equal(t, "RS_2024-01", stem("RS_2024-01.json.zst"))
}

func nonEmptyLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
