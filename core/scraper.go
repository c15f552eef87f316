package core

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/hollowlog/reddit-harvester/config"
	"github.com/hollowlog/reddit-harvester/export"
	"github.com/hollowlog/reddit-harvester/logger"
	"github.com/hollowlog/reddit-harvester/posts"
)

// ListingSource is what the scraper needs from the API client. Satisfied by
// posts.Fetcher.
type ListingSource interface {
	PostsByTimeframe(ctx context.Context, subreddit string, monthsBack, maxPosts int, selfOnly bool) ([]posts.Post, error)
}

// Scraper walks the configured subreddits sequentially and writes artifacts
// as each finishes.
type Scraper struct {
	cfg      *config.Config
	source   ListingSource
	exporter *export.Exporter
	// Delay between subreddits, to stay friendly with upstream rate limits.
	Delay time.Duration
}

func NewScraper(cfg *config.Config, source ListingSource, exporter *export.Exporter) *Scraper {
	return &Scraper{
		cfg:      cfg,
		source:   source,
		exporter: exporter,
		Delay:    2 * time.Second,
	}
}

// ScrapeSubreddit collects one subreddit's posts. An upstream failure after
// retries abandons this subreddit for the run and returns whatever came back.
func (s *Scraper) ScrapeSubreddit(ctx context.Context, subreddit string) []map[string]any {
	logger.Logger.Printf("Starting to scrape r/%s (target: %d posts)", subreddit, s.cfg.Options.PostsPerSubreddit)

	fetched, err := s.source.PostsByTimeframe(ctx, subreddit,
		s.cfg.Options.MonthsBack, s.cfg.Options.PostsPerSubreddit, s.cfg.Options.SelfPostsOnly)
	if err != nil {
		logger.Logger.Printf("Error scraping r/%s, abandoning for this run: %v", subreddit, err)
	}

	records := make([]map[string]any, 0, len(fetched))
	for _, post := range fetched {
		records = append(records, post.Record())
	}
	return records
}

// ScrapeAll runs the whole configured scrape: per-subreddit JSON and CSV as
// each subreddit completes, then the combined file and summary report.
func (s *Scraper) ScrapeAll(ctx context.Context) (map[string][]map[string]any, error) {
	subreddits := s.cfg.Options.Subreddits
	logger.Logger.Printf("Starting to scrape %d subreddits, target %d posts each, last %d months",
		len(subreddits), s.cfg.Options.PostsPerSubreddit, s.cfg.Options.MonthsBack)

	bar := progressbar.NewOptions(len(subreddits),
		progressbar.OptionSetDescription("Scraping subreddits"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(15),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowCount(),
	)

	allPosts := make(map[string][]map[string]any, len(subreddits))
	for i, subreddit := range subreddits {
		records := s.ScrapeSubreddit(ctx, subreddit)
		allPosts[subreddit] = records

		if len(records) > 0 {
			if _, err := s.exporter.SaveJSON(subreddit, records); err != nil {
				logger.Logger.Printf("Error saving JSON for r/%s: %v", subreddit, err)
			}
			if _, err := s.exporter.SaveCSV(subreddit, records); err != nil {
				logger.Logger.Printf("Error saving CSV for r/%s: %v", subreddit, err)
			}
		}

		bar.Add(1)

		if i < len(subreddits)-1 {
			select {
			case <-ctx.Done():
				return allPosts, ctx.Err()
			case <-time.After(s.Delay):
			}
		}
	}
	bar.Finish()

	if _, err := s.exporter.SaveCombined(allPosts); err != nil {
		return allPosts, fmt.Errorf("failed to save combined data: %w", err)
	}
	if _, err := s.exporter.WriteSummary(allPosts); err != nil {
		return allPosts, fmt.Errorf("failed to write summary report: %w", err)
	}

	return allPosts, nil
}

// PrintSummary writes the per-subreddit breakdown to stdout after a run.
func PrintSummary(allPosts map[string][]map[string]any, outputDir string) {
	total := 0
	for _, records := range allPosts {
		total += len(records)
	}

	fmt.Println()
	fmt.Println("============================================================")
	fmt.Println("REDDIT SCRAPING SUMMARY")
	fmt.Println("============================================================")
	fmt.Printf("Total subreddits scraped: %d\n", len(allPosts))
	fmt.Printf("Total posts collected: %d\n", total)
	fmt.Printf("Output directory: %s\n", outputDir)
	fmt.Println("\nPer subreddit breakdown:")
	fmt.Println("----------------------------------------")
	for subreddit, records := range allPosts {
		fmt.Printf("r/%-20s %6d posts\n", subreddit, len(records))
	}
	fmt.Println("============================================================")
}
