package core

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/hollowlog/reddit-harvester/config"
	"github.com/hollowlog/reddit-harvester/download"
	"github.com/hollowlog/reddit-harvester/dump"
	"github.com/hollowlog/reddit-harvester/export"
	"github.com/hollowlog/reddit-harvester/logger"
)

// DumpPipeline drives the offline path: download (or reuse) monthly dumps,
// filter them down to the configured subreddits, then combine and export.
type DumpPipeline struct {
	cfg       *config.Config
	processor *dump.Processor
	exporter  *export.Exporter
}

func NewDumpPipeline(cfg *config.Config, exporter *export.Exporter) *DumpPipeline {
	processor := dump.NewProcessor()
	processor.SelfOnly = cfg.Options.SelfPostsOnly

	return &DumpPipeline{
		cfg:       cfg,
		processor: processor,
		exporter:  exporter,
	}
}

// FilteredDir is where per-month filtered JSONL files land.
func (p *DumpPipeline) FilteredDir() string {
	return filepath.Join(p.cfg.Dumps.DataDir, "filtered")
}

// DownloadDumps fetches the lookback window's monthly dumps. A month that
// cannot be downloaded is logged and skipped.
func (p *DumpPipeline) DownloadDumps() ([]string, error) {
	downloader, err := download.NewDownloader(p.cfg.Dumps.DataDir, p.cfg.Dumps.BaseURL)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, month := range download.AvailableMonths(p.cfg.Options.MonthsBack) {
		path, err := downloader.DownloadMonth(month)
		if err != nil {
			logger.Logger.Printf("Skipping month %s: %v", month, err)
			continue
		}
		paths = append(paths, path)
		time.Sleep(2 * time.Second)
	}
	return paths, nil
}

// FilterLocalDumps filters every dump file already present in the data
// directory and returns extraction counts per file.
func (p *DumpPipeline) FilterLocalDumps() (map[string]int, error) {
	dumpFiles, err := p.findDumpFiles()
	if err != nil {
		return nil, err
	}
	if len(dumpFiles) == 0 {
		return nil, fmt.Errorf("no dump files found in %s", p.cfg.Dumps.DataDir)
	}

	return p.processor.ProcessDumps(dumpFiles, p.cfg.Options.Subreddits, p.FilteredDir())
}

func (p *DumpPipeline) findDumpFiles() ([]string, error) {
	var files []string
	for _, pattern := range []string{"RS_*.json", "RS_*.json.gz", "RS_*.json.xz", "RS_*.json.zst"} {
		matches, err := filepath.Glob(filepath.Join(p.cfg.Dumps.DataDir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// CombineAndExport merges the filtered per-month files and writes the final
// corpus artifacts.
func (p *DumpPipeline) CombineAndExport() (map[string][]map[string]any, error) {
	filtered, err := filepath.Glob(filepath.Join(p.FilteredDir(), "filtered_*.jsonl"))
	if err != nil {
		return nil, err
	}
	if len(filtered) == 0 {
		return nil, fmt.Errorf("no filtered files found in %s, run the dump filter first", p.FilteredDir())
	}
	sort.Strings(filtered)

	combinedPath := filepath.Join(p.FilteredDir(),
		fmt.Sprintf("combined_%s.jsonl", time.Now().Format("20060102_150405")))
	if _, err := dump.CombineFiltered(filtered, combinedPath, 0); err != nil {
		return nil, fmt.Errorf("failed to combine filtered files: %w", err)
	}

	allPosts := make(map[string][]map[string]any, len(p.cfg.Options.Subreddits))
	for _, subreddit := range p.cfg.Options.Subreddits {
		records, err := dump.PostsForSubreddit(combinedPath, subreddit, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to load posts for r/%s: %w", subreddit, err)
		}

		dump.SortByCreatedDesc(records)
		if len(records) > p.cfg.Options.PostsPerSubreddit {
			records = records[:p.cfg.Options.PostsPerSubreddit]
		}
		allPosts[subreddit] = records

		if len(records) > 0 {
			if _, err := p.exporter.SaveJSON(subreddit, records); err != nil {
				logger.Logger.Printf("Error saving JSON for r/%s: %v", subreddit, err)
			}
			if _, err := p.exporter.SaveCSV(subreddit, records); err != nil {
				logger.Logger.Printf("Error saving CSV for r/%s: %v", subreddit, err)
			}
		}
	}

	if _, err := p.exporter.SaveCombined(allPosts); err != nil {
		return allPosts, fmt.Errorf("failed to save combined data: %w", err)
	}
	if _, err := p.exporter.WriteSummary(allPosts); err != nil {
		return allPosts, fmt.Errorf("failed to write summary report: %w", err)
	}

	return allPosts, nil
}

// EnsureDirs creates the directories a run needs up front so a half-finished
// run still leaves a predictable layout behind.
func (p *DumpPipeline) EnsureDirs() error {
	for _, dir := range []string{p.cfg.Dumps.DataDir, p.FilteredDir()} {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return err
		}
	}
	return nil
}
