package posts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/hollowlog/reddit-harvester/headers"
	"github.com/hollowlog/reddit-harvester/logger"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/time/rate"
)

const (
	maxRetries = 3
)

// Shrunk in tests to keep retry cases fast.
var retryBaseDelay = 1 * time.Second

// Fetcher pages through subreddit listings with a shared rate limiter.
type Fetcher struct {
	headers  *headers.RedditHeaders
	client   *http.Client
	limiter  *rate.Limiter
	pageSize int
}

func NewFetcher(redditHeaders *headers.RedditHeaders, pageSize int) *Fetcher {
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 100
	}
	return &Fetcher{
		headers:  redditHeaders,
		client:   &http.Client{Timeout: 30 * time.Second},
		limiter:  rate.NewLimiter(rate.Every(time.Second), 1),
		pageSize: pageSize,
	}
}

// SubredditPosts fetches up to limit posts from one listing. sortBy is one of
// new, hot, top, rising; timeFilter only applies to top.
func (f *Fetcher) SubredditPosts(ctx context.Context, subreddit, sortBy, timeFilter string, limit int) ([]Post, error) {
	switch sortBy {
	case "new", "hot", "top", "rising":
	default:
		sortBy = "new"
	}

	var all []Post
	after := ""

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(fmt.Sprintf("Fetching r/%s", subreddit)),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(15),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionFullWidth(),
	)
	defer bar.Finish()

	for len(all) < limit {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %v", err)
		}

		listing, nextAfter, err := f.fetchPage(ctx, subreddit, sortBy, timeFilter, after)
		if err != nil {
			return all, err
		}

		for _, child := range listing.Data.Children {
			all = append(all, child.Data)
			if len(all) >= limit {
				break
			}
		}
		bar.Add(len(listing.Data.Children))

		if nextAfter == "" || len(listing.Data.Children) == 0 {
			break
		}
		after = nextAfter
	}

	return all, nil
}

func (f *Fetcher) fetchPage(ctx context.Context, subreddit, sortBy, timeFilter, after string) (Listing, string, error) {
	reqURL := fmt.Sprintf("%s/r/%s/%s.json?limit=%d&raw_json=1", f.headers.BaseURL(), subreddit, sortBy, f.pageSize)
	if after != "" {
		reqURL += "&after=" + after
	}
	if sortBy == "top" && timeFilter != "" {
		reqURL += "&t=" + timeFilter
	}

	resp, err := f.doWithRetry(ctx, reqURL)
	if err != nil {
		return Listing{}, "", err
	}
	defer resp.Body.Close()

	var listing Listing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return Listing{}, "", err
	}

	return listing, listing.Data.After, nil
}

// doWithRetry applies a bounded retry with exponential backoff. After the
// retries run out the caller abandons that subreddit for the run.
func (f *Fetcher) doWithRetry(ctx context.Context, reqURL string) (*http.Response, error) {
	delay := retryBaseDelay
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			logger.Logger.Printf("Attempt %d failed for %s: %v, retrying in %v", attempt, reqURL, lastErr, delay)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
		if err != nil {
			return nil, err
		}
		f.headers.AddHeadersToRequest(req)

		resp, err := f.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("listing request failed with status code %d", resp.StatusCode)
			continue
		}
		return resp, nil
	}

	return nil, fmt.Errorf("request failed after %d retries: %w", maxRetries, lastErr)
}

// PostsByTimeframe collects self-posts newer than the lookback cutoff,
// deduplicated by id, newest first, capped at maxPosts. The cutoff uses
// 30-day months to match the dump month window.
func (f *Fetcher) PostsByTimeframe(ctx context.Context, subreddit string, monthsBack, maxPosts int, selfOnly bool) ([]Post, error) {
	cutoff := float64(time.Now().Add(-time.Duration(monthsBack) * 30 * 24 * time.Hour).Unix())

	logger.Logger.Printf("Fetching posts from r/%s from the last %d months", subreddit, monthsBack)

	var collected []Post
	seen := make(map[string]bool)
	after := ""

	for len(collected) < maxPosts {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %v", err)
		}

		listing, nextAfter, err := f.fetchPage(ctx, subreddit, "new", "", after)
		if err != nil {
			return collected, err
		}
		if len(listing.Data.Children) == 0 {
			break
		}

		pastCutoff := false
		for _, child := range listing.Data.Children {
			post := child.Data
			if post.CreatedUTC < cutoff {
				pastCutoff = true
				break
			}
			if selfOnly && !post.IsSelf {
				continue
			}
			if seen[post.ID] {
				continue
			}
			seen[post.ID] = true
			collected = append(collected, post)
			if len(collected) >= maxPosts {
				break
			}
		}

		if pastCutoff || nextAfter == "" {
			break
		}
		after = nextAfter
	}

	sort.Slice(collected, func(i, j int) bool {
		return collected[i].CreatedUTC > collected[j].CreatedUTC
	})

	logger.Logger.Printf("Final count for r/%s: %d posts", subreddit, len(collected))
	return collected, nil
}
