package posts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/hollowlog/reddit-harvester/headers"
)

type fakePage struct {
	After    string
	Children []Post
}

func listingJSON(page fakePage) []byte {
	listing := Listing{Kind: "Listing"}
	listing.Data.After = page.After
	for _, post := range page.Children {
		listing.Data.Children = append(listing.Data.Children, struct {
			Kind string `json:"kind"`
			Data Post   `json:"data"`
		}{Kind: "t3", Data: post})
	}
	data, _ := json.Marshal(listing)
	return data
}

// testFetcher points a fetcher at a local server with rate limiting disabled.
func testFetcher(t *testing.T, serverURL string, pageSize int) *Fetcher {
	t.Helper()
	f := NewFetcher(&headers.RedditHeaders{UserAgent: "test-agent", Host: serverURL}, pageSize)
	f.limiter = rate.NewLimiter(rate.Inf, 1)
	return f
}

func TestSubredditPosts_PagesThroughAfterCursor(t *testing.T) {
	pages := map[string]fakePage{
		"": {After: "t3_b", Children: []Post{
			{ID: "a", Title: "first"},
			{ID: "b", Title: "second"},
		}},
		"t3_b": {After: "", Children: []Post{
			{ID: "c", Title: "third"},
		}},
	}

	var gotPaths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPaths = append(gotPaths, r.URL.Path)
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Write(listingJSON(pages[r.URL.Query().Get("after")]))
	}))
	defer server.Close()

	fetcher := testFetcher(t, server.URL, 100)
	result, err := fetcher.SubredditPosts(context.Background(), "golang", "new", "", 10)
	require.NoError(t, err)

	require.Len(t, result, 3)
	assert.Equal(t, "a", result[0].ID)
	assert.Equal(t, "c", result[2].ID)
	assert.Equal(t, []string{"/r/golang/new.json", "/r/golang/new.json"}, gotPaths)
}

func TestSubredditPosts_StopsAtLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(listingJSON(fakePage{After: "t3_x", Children: []Post{
			{ID: "1"}, {ID: "2"}, {ID: "3"},
		}}))
	}))
	defer server.Close()

	fetcher := testFetcher(t, server.URL, 100)
	result, err := fetcher.SubredditPosts(context.Background(), "golang", "new", "", 2)
	require.NoError(t, err)
	assert.Len(t, result, 2)
}

func TestSubredditPosts_InvalidSortFallsBackToNew(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write(listingJSON(fakePage{}))
	}))
	defer server.Close()

	fetcher := testFetcher(t, server.URL, 25)
	_, err := fetcher.SubredditPosts(context.Background(), "golang", "controversial", "", 5)
	require.NoError(t, err)
	assert.Equal(t, "/r/golang/new.json", gotPath)
}

func TestSubredditPosts_TopCarriesTimeFilter(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write(listingJSON(fakePage{}))
	}))
	defer server.Close()

	fetcher := testFetcher(t, server.URL, 50)
	_, err := fetcher.SubredditPosts(context.Background(), "golang", "top", "year", 5)
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "t=year")
	assert.Contains(t, gotQuery, "limit=50")
}

func TestDoWithRetry_RecoversFromServerErrors(t *testing.T) {
	restore := retryBaseDelay
	retryBaseDelay = time.Millisecond
	defer func() { retryBaseDelay = restore }()

	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write(listingJSON(fakePage{Children: []Post{{ID: "ok"}}}))
	}))
	defer server.Close()

	fetcher := testFetcher(t, server.URL, 100)
	result, err := fetcher.SubredditPosts(context.Background(), "golang", "new", "", 5)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, 3, attempts)
}

func TestDoWithRetry_GivesUpAfterMaxRetries(t *testing.T) {
	restore := retryBaseDelay
	retryBaseDelay = time.Millisecond
	defer func() { retryBaseDelay = restore }()

	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	fetcher := testFetcher(t, server.URL, 100)
	_, err := fetcher.SubredditPosts(context.Background(), "golang", "new", "", 5)
	require.Error(t, err)
	assert.Equal(t, maxRetries+1, attempts)
	assert.Contains(t, err.Error(), "status code 500")
}

func TestPostsByTimeframe_CutoffDedupAndOrder(t *testing.T) {
	now := float64(time.Now().Unix())
	old := now - 400*24*60*60

	pages := map[string]fakePage{
		"": {After: "t3_next", Children: []Post{
			{ID: "a", CreatedUTC: now - 100, IsSelf: true},
			{ID: "b", CreatedUTC: now - 50, IsSelf: true},
			{ID: "a", CreatedUTC: now - 100, IsSelf: true},
		}},
		"t3_next": {After: "t3_more", Children: []Post{
			{ID: "c", CreatedUTC: now - 200, IsSelf: false},
			{ID: "stale", CreatedUTC: old, IsSelf: true},
			{ID: "never", CreatedUTC: now, IsSelf: true},
		}},
	}

	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write(listingJSON(pages[r.URL.Query().Get("after")]))
	}))
	defer server.Close()

	fetcher := testFetcher(t, server.URL, 100)
	result, err := fetcher.PostsByTimeframe(context.Background(), "golang", 1, 100, true)
	require.NoError(t, err)

	// Duplicate a dropped, non-self c dropped, stale ends the scan before
	// the third page is ever requested.
	require.Len(t, result, 2)
	assert.Equal(t, "b", result[0].ID)
	assert.Equal(t, "a", result[1].ID)
	assert.Equal(t, 2, requests)
}

func TestPostsByTimeframe_KeepsLinkPostsWhenSelfOnlyOff(t *testing.T) {
	now := float64(time.Now().Unix())
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(listingJSON(fakePage{Children: []Post{
			{ID: "link", CreatedUTC: now - 10, IsSelf: false},
			{ID: "self", CreatedUTC: now - 20, IsSelf: true},
		}}))
	}))
	defer server.Close()

	fetcher := testFetcher(t, server.URL, 100)
	result, err := fetcher.PostsByTimeframe(context.Background(), "golang", 6, 100, false)
	require.NoError(t, err)
	assert.Len(t, result, 2)
}

func TestPostsByTimeframe_MaxPostsCap(t *testing.T) {
	now := float64(time.Now().Unix())
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := fakePage{After: "t3_more"}
		for i := 0; i < 10; i++ {
			page.Children = append(page.Children, Post{
				ID:         fmt.Sprintf("%s-%d", r.URL.Query().Get("after"), i),
				CreatedUTC: now - float64(i),
				IsSelf:     true,
			})
		}
		w.Write(listingJSON(page))
	}))
	defer server.Close()

	fetcher := testFetcher(t, server.URL, 10)
	result, err := fetcher.PostsByTimeframe(context.Background(), "golang", 12, 15, true)
	require.NoError(t, err)
	assert.Len(t, result, 15)
}

func TestPostRecord_CoversRecognizedFields(t *testing.T) {
	distinguished := "moderator"
	post := Post{ID: "x", Distinguished: &distinguished}

	record := post.Record()
	require.Len(t, record, len(RecognizedFields))
	for _, field := range RecognizedFields {
		_, ok := record[field]
		assert.True(t, ok, "missing field %q", field)
	}
	assert.Equal(t, "moderator", record["distinguished"])

	plain := Post{ID: "y"}.Record()
	assert.Nil(t, plain["distinguished"])
}
