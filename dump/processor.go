package dump

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hollowlog/reddit-harvester/logger"
	"github.com/hollowlog/reddit-harvester/posts"
)

const (
	// Pushshift lines can run well past bufio's default token size.
	maxLineSize  = 16 * 1024 * 1024
	logEveryLine = 100000
)

// Processor filters dump streams down to the recognized field subset.
type Processor struct {
	// SelfOnly drops records whose is_self flag is not true. The corpus
	// pipeline turns this on; the bare filter keeps every subreddit match.
	SelfOnly bool
	// MaxPosts stops a pass after this many extracted records. Zero means
	// unlimited.
	MaxPosts int
}

func NewProcessor() *Processor {
	return &Processor{}
}

// FilterStream reads line-delimited JSON from r and writes one reduced record
// per matching post to w. Malformed lines are skipped, never fatal. Returns
// the number of records written.
func (p *Processor) FilterStream(r io.Reader, w io.Writer, targets map[string]struct{}) (int, error) {
	extracted := 0
	lineNum := 0

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	for scanner.Scan() {
		lineNum++
		if lineNum%logEveryLine == 0 {
			logger.Logger.Printf("Processed %d lines, extracted %d posts", lineNum, extracted)
		}

		var data map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &data); err != nil {
			continue
		}

		subreddit, _ := data["subreddit"].(string)
		if _, ok := targets[strings.ToLower(subreddit)]; !ok {
			continue
		}
		if p.SelfOnly {
			if isSelf, _ := data["is_self"].(bool); !isSelf {
				continue
			}
		}

		line, err := json.Marshal(projectRecord(data))
		if err != nil {
			continue
		}
		if _, err := w.Write(append(line, '\n')); err != nil {
			return extracted, fmt.Errorf("failed to write filtered post: %w", err)
		}

		extracted++
		if p.MaxPosts > 0 && extracted >= p.MaxPosts {
			break
		}
	}

	if err := scanner.Err(); err != nil {
		return extracted, fmt.Errorf("failed to read dump stream: %w", err)
	}
	return extracted, nil
}

// projectRecord keeps exactly the recognized fields, absent ones as null.
// Marshaling the map yields sorted keys, so repeated runs are byte-identical.
func projectRecord(data map[string]any) map[string]any {
	filtered := make(map[string]any, len(posts.RecognizedFields))
	for _, field := range posts.RecognizedFields {
		if value, ok := data[field]; ok {
			filtered[field] = value
		} else {
			filtered[field] = nil
		}
	}
	return filtered
}

// FilterFile filters one dump file into outPath and returns the number of
// posts extracted.
func (p *Processor) FilterFile(path string, targetSubreddits []string, outPath string) (int, error) {
	targets := lowerSet(targetSubreddits)

	logger.Logger.Printf("Filtering %s for subreddits: %v", path, targetSubreddits)

	in, err := OpenDumpFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open dump file: %w", err)
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	buffered := bufio.NewWriter(out)
	count, err := p.FilterStream(in, buffered, targets)
	if err != nil {
		return count, err
	}
	if err := buffered.Flush(); err != nil {
		return count, err
	}

	logger.Logger.Printf("Extracted %d posts from %s", count, path)
	return count, nil
}

// ProcessDumps filters every dump file into outDir, one filtered_<name>.jsonl
// per input. A failing file is logged and counted as zero, the rest of the
// run keeps going.
func (p *Processor) ProcessDumps(dumpFiles []string, targetSubreddits []string, outDir string) (map[string]int, error) {
	if err := os.MkdirAll(outDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	results := make(map[string]int)
	for _, dumpFile := range dumpFiles {
		if _, err := os.Stat(dumpFile); err != nil {
			logger.Logger.Printf("Dump file not found: %s", dumpFile)
			continue
		}

		outPath := filepath.Join(outDir, "filtered_"+stem(dumpFile)+".jsonl")
		count, err := p.FilterFile(dumpFile, targetSubreddits, outPath)
		if err != nil {
			logger.Logger.Printf("Error processing %s: %v", dumpFile, err)
			results[filepath.Base(dumpFile)] = 0
			continue
		}
		results[filepath.Base(dumpFile)] = count
	}

	return results, nil
}

// stem strips all extensions, so RS_2024-01.json.gz becomes RS_2024-01.
func stem(path string) string {
	name := filepath.Base(path)
	for {
		ext := filepath.Ext(name)
		if ext == "" {
			return name
		}
		name = strings.TrimSuffix(name, ext)
	}
}

func lowerSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[strings.ToLower(name)] = struct{}{}
	}
	return set
}
