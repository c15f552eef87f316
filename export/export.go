package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/hollowlog/reddit-harvester/logger"
	"github.com/hollowlog/reddit-harvester/posts"
)

const timestampFormat = "20060102_150405"

// Exporter writes the final corpus artifacts under one output directory.
type Exporter struct {
	OutputDir string
}

func NewExporter(outputDir string) (*Exporter, error) {
	if err := os.MkdirAll(outputDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Exporter{OutputDir: outputDir}, nil
}

type metadata struct {
	Subreddit  string `json:"subreddit"`
	TotalPosts int    `json:"total_posts"`
	ScrapedAt  string `json:"scraped_at"`
	DateRange  string `json:"date_range"`
}

type subredditFile struct {
	Metadata metadata         `json:"metadata"`
	Posts    []map[string]any `json:"posts"`
}

// SaveJSON writes one subreddit's posts with a metadata envelope and returns
// the file path.
func (e *Exporter) SaveJSON(subreddit string, records []map[string]any) (string, error) {
	filename := fmt.Sprintf("%s_posts_%s.json", subreddit, time.Now().Format(timestampFormat))
	path := filepath.Join(e.OutputDir, filename)

	data := subredditFile{
		Metadata: metadata{
			Subreddit:  subreddit,
			TotalPosts: len(records),
			ScrapedAt:  time.Now().Format(time.RFC3339),
			DateRange:  dateRange(records),
		},
		Posts: records,
	}

	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, encoded, 0644); err != nil {
		return "", err
	}

	logger.Logger.Printf("Saved %d posts to %s", len(records), path)
	return path, nil
}

// SaveCSV writes one subreddit's posts as CSV behind #-comment metadata
// lines, columns in the recognized field order.
func (e *Exporter) SaveCSV(subreddit string, records []map[string]any) (string, error) {
	filename := fmt.Sprintf("%s_posts_%s.csv", subreddit, time.Now().Format(timestampFormat))
	path := filepath.Join(e.OutputDir, filename)

	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	fmt.Fprintf(file, "# Subreddit: %s\n", subreddit)
	fmt.Fprintf(file, "# Total posts: %d\n", len(records))
	fmt.Fprintf(file, "# Scraped at: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(file, "# Date range: %s\n", dateRange(records))

	writer := csv.NewWriter(file)
	if err := writer.Write(posts.RecognizedFields); err != nil {
		return "", err
	}
	for _, record := range records {
		row := make([]string, len(posts.RecognizedFields))
		for i, field := range posts.RecognizedFields {
			row[i] = csvValue(record[field])
		}
		if err := writer.Write(row); err != nil {
			return "", err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}

	logger.Logger.Printf("Saved %d posts to %s", len(records), path)
	return path, nil
}

type combinedMetadata struct {
	TotalSubreddits int                       `json:"total_subreddits"`
	TotalPosts      int                       `json:"total_posts"`
	ScrapedAt       string                    `json:"scraped_at"`
	SubredditStats  map[string]subredditStats `json:"subreddit_stats"`
}

type subredditStats struct {
	PostCount int    `json:"post_count"`
	DateRange string `json:"date_range"`
}

type combinedFile struct {
	Metadata         combinedMetadata            `json:"metadata"`
	PostsBySubreddit map[string][]map[string]any `json:"posts_by_subreddit"`
}

// SaveCombined writes the whole corpus keyed by subreddit.
func (e *Exporter) SaveCombined(allPosts map[string][]map[string]any) (string, error) {
	filename := fmt.Sprintf("all_subreddits_posts_%s.json", time.Now().Format(timestampFormat))
	path := filepath.Join(e.OutputDir, filename)

	stats := make(map[string]subredditStats, len(allPosts))
	total := 0
	for subreddit, records := range allPosts {
		stats[subreddit] = subredditStats{
			PostCount: len(records),
			DateRange: dateRange(records),
		}
		total += len(records)
	}

	data := combinedFile{
		Metadata: combinedMetadata{
			TotalSubreddits: len(allPosts),
			TotalPosts:      total,
			ScrapedAt:       time.Now().Format(time.RFC3339),
			SubredditStats:  stats,
		},
		PostsBySubreddit: allPosts,
	}

	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, encoded, 0644); err != nil {
		return "", err
	}

	logger.Logger.Printf("Saved combined data with %s posts from %d subreddits to %s",
		humanize.Comma(int64(total)), len(allPosts), path)
	return path, nil
}

// WriteSummary produces the plain-text run report.
func (e *Exporter) WriteSummary(allPosts map[string][]map[string]any) (string, error) {
	filename := fmt.Sprintf("scraping_summary_%s.txt", time.Now().Format(timestampFormat))
	path := filepath.Join(e.OutputDir, filename)

	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	fmt.Fprintf(file, "REDDIT SCRAPING SUMMARY REPORT\n")
	fmt.Fprintf(file, "==================================================\n\n")
	fmt.Fprintf(file, "Generated at: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))

	subreddits := make([]string, 0, len(allPosts))
	for subreddit := range allPosts {
		subreddits = append(subreddits, subreddit)
	}
	sort.Strings(subreddits)

	total := 0
	for _, subreddit := range subreddits {
		records := allPosts[subreddit]
		fmt.Fprintf(file, "Subreddit: r/%s\n", subreddit)
		fmt.Fprintf(file, "  Posts collected: %d\n", len(records))
		fmt.Fprintf(file, "  Date range: %s\n", dateRange(records))
		fmt.Fprintf(file, "  Average score: %.2f\n", averageNumber(records, "score"))
		fmt.Fprintf(file, "  Average comments: %.2f\n\n", averageNumber(records, "num_comments"))
		total += len(records)
	}

	fmt.Fprintf(file, "TOTAL POSTS COLLECTED: %d\n", total)
	fmt.Fprintf(file, "TOTAL SUBREDDITS: %d\n", len(subreddits))

	logger.Logger.Printf("Created summary report: %s", path)
	return path, nil
}

func dateRange(records []map[string]any) string {
	if len(records) == 0 {
		return "No posts"
	}

	earliest, latest := 0.0, 0.0
	first := true
	for _, record := range records {
		ts, ok := numberField(record, "created_utc")
		if !ok {
			continue
		}
		if first {
			earliest, latest = ts, ts
			first = false
			continue
		}
		if ts < earliest {
			earliest = ts
		}
		if ts > latest {
			latest = ts
		}
	}
	if first {
		return "No posts"
	}

	return fmt.Sprintf("%s to %s",
		time.Unix(int64(earliest), 0).UTC().Format("2006-01-02"),
		time.Unix(int64(latest), 0).UTC().Format("2006-01-02"))
}

func averageNumber(records []map[string]any, field string) float64 {
	if len(records) == 0 {
		return 0
	}
	sum := 0.0
	count := 0
	for _, record := range records {
		if v, ok := numberField(record, field); ok {
			sum += v
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

func numberField(record map[string]any, field string) (float64, bool) {
	switch v := record[field].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func csvValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case json.Number:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
