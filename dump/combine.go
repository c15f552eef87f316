package dump

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/hollowlog/reddit-harvester/logger"
)

// CombineFiltered concatenates filtered JSONL files into outPath, preserving
// input order, with an optional overall cap. Missing inputs are skipped.
func CombineFiltered(filteredFiles []string, outPath string, maxPosts int) (int, error) {
	out, err := os.Create(outPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create combined file: %w", err)
	}
	defer out.Close()

	writer := bufio.NewWriter(out)
	total := 0

	for _, path := range filteredFiles {
		if maxPosts > 0 && total >= maxPosts {
			break
		}
		file, err := os.Open(path)
		if err != nil {
			continue
		}

		logger.Logger.Printf("Combining %s", path)

		scanner := bufio.NewScanner(file)
		scanner.Buffer(make([]byte, 64*1024), maxLineSize)
		for scanner.Scan() {
			if maxPosts > 0 && total >= maxPosts {
				break
			}
			writer.Write(scanner.Bytes())
			writer.WriteByte('\n')
			total++
		}
		err = scanner.Err()
		file.Close()
		if err != nil {
			return total, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	if err := writer.Flush(); err != nil {
		return total, err
	}

	logger.Logger.Printf("Combined %d posts into %s", total, outPath)
	return total, nil
}

// LoadFiltered reads records back from a filtered JSONL file, skipping
// malformed lines. maxPosts of zero loads everything.
func LoadFiltered(path string, maxPosts int) ([]map[string]any, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var records []map[string]any
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	for scanner.Scan() {
		if maxPosts > 0 && len(records) >= maxPosts {
			break
		}
		var record map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			continue
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return records, err
	}

	logger.Logger.Printf("Loaded %d posts from %s", len(records), path)
	return records, nil
}

// PostsForSubreddit selects one subreddit's records from a filtered file,
// case-insensitively, capped at maxPosts.
func PostsForSubreddit(path, subreddit string, maxPosts int) ([]map[string]any, error) {
	records, err := LoadFiltered(path, 0)
	if err != nil {
		return nil, err
	}

	target := strings.ToLower(subreddit)
	var matched []map[string]any
	for _, record := range records {
		name, _ := record["subreddit"].(string)
		if strings.ToLower(name) != target {
			continue
		}
		matched = append(matched, record)
		if maxPosts > 0 && len(matched) >= maxPosts {
			break
		}
	}

	logger.Logger.Printf("Found %d posts for r/%s", len(matched), subreddit)
	return matched, nil
}

// SortByCreatedDesc orders records newest first. Records without a usable
// created_utc sort last.
func SortByCreatedDesc(records []map[string]any) {
	sort.SliceStable(records, func(i, j int) bool {
		return createdUTC(records[i]) > createdUTC(records[j])
	})
}

func createdUTC(record map[string]any) float64 {
	switch v := record["created_utc"].(type) {
	case float64:
		return v
	case json.Number:
		f, _ := v.Float64()
		return f
	default:
		return 0
	}
}
