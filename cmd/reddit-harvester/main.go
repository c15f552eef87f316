package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hollowlog/reddit-harvester/auth"
	"github.com/hollowlog/reddit-harvester/cmd"
	"github.com/hollowlog/reddit-harvester/config"
	"github.com/hollowlog/reddit-harvester/core"
	"github.com/hollowlog/reddit-harvester/export"
	"github.com/hollowlog/reddit-harvester/logger"
	"github.com/hollowlog/reddit-harvester/posts"
	"github.com/hollowlog/reddit-harvester/ui"
	"github.com/hollowlog/reddit-harvester/updater"

	tea "github.com/charmbracelet/bubbletea"
)

const version = "v0.3.1"

func main() {
	flags, subcommand := cmd.ParseFlags()

	if flags.Version {
		fmt.Printf("Reddit Harvester version %s\n", version)
		return
	}

	if subcommand == "update" {
		if err := updater.CheckForUpdate(version); err != nil {
			fmt.Printf("Error updating: %v\n", err)
			os.Exit(1)
		}
		return
	}

	configPath := config.GetConfigPath()
	if err := config.EnsureConfigExists(configPath); err != nil {
		log.Fatal(err)
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Could not load config at %s: %v\n", configPath, err)
		fmt.Println("Edit the config file and re-run.")
		os.Exit(1)
	}

	if err := logger.InitLogger(cfg); err != nil {
		log.Fatal(err)
	}
	logger.Logger.Printf("Starting Reddit Harvester version %s", version)

	if flags.Limit > 0 {
		cfg.Options.PostsPerSubreddit = flags.Limit
		logger.Logger.Printf("Overriding config: setting post limit to %d", flags.Limit)
	}

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signalChan
		fmt.Println("Received interrupt signal. Shutting down...")
		os.Exit(0)
	}()

	exporter, err := export.NewExporter(cfg.Options.SaveLocation)
	if err != nil {
		logger.Logger.Fatal(err)
	}

	redditHeaders, err := auth.Login(cfg)
	if err != nil {
		logger.Logger.Fatal(err)
	}

	fetcher := posts.NewFetcher(redditHeaders, cfg.Options.PageSize)
	scraper := core.NewScraper(cfg, fetcher, exporter)
	pipeline := core.NewDumpPipeline(cfg, exporter)

	isCliMode := flags.Subreddit != "" || flags.ScrapeAll || flags.Download || flags.FilterDumps || flags.Combine

	if isCliMode {
		runCLIMode(flags, cfg, scraper, pipeline)
		return
	}

	var updateAvailable bool
	var latestVersion string
	if available, latestVer, err := updater.CheckUpdateAvailable(version); err == nil && available {
		updateAvailable = available
		latestVersion = latestVer
	}

	model := ui.NewMainModel(cfg, scraper, pipeline, version)
	model.UpdateAvailable = updateAvailable
	model.LatestVersion = latestVersion
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		logger.Logger.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func runCLIMode(flags cmd.Flags, cfg *config.Config, scraper *core.Scraper, pipeline *core.DumpPipeline) {
	ctx := context.Background()

	if flags.Subreddit != "" {
		name := config.NormalizeSubreddit(flags.Subreddit)
		if !config.IsValidSubredditName(name) {
			fmt.Printf("Invalid subreddit name: %s\n", flags.Subreddit)
			os.Exit(1)
		}
		cfg.Options.Subreddits = []string{name}
		flags.ScrapeAll = true
	}

	if flags.ScrapeAll {
		allPosts, err := scraper.ScrapeAll(ctx)
		if err != nil {
			logger.Logger.Printf("Error scraping subreddits: %v", err)
			fmt.Printf("Scrape failed: %v\n", err)
			os.Exit(1)
		}
		core.PrintSummary(allPosts, cfg.Options.SaveLocation)
	}

	if flags.Download {
		paths, err := pipeline.DownloadDumps()
		if err != nil {
			logger.Logger.Printf("Error downloading dumps: %v", err)
			fmt.Printf("Dump download failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Downloaded or reused %d dump files in %s\n", len(paths), cfg.Dumps.DataDir)
	}

	if flags.FilterDumps {
		results, err := pipeline.FilterLocalDumps()
		if err != nil {
			logger.Logger.Printf("Error filtering dumps: %v", err)
			fmt.Printf("Dump filter failed: %v\n", err)
			os.Exit(1)
		}
		total := 0
		for name, count := range results {
			fmt.Printf("%-40s %8d posts\n", name, count)
			total += count
		}
		fmt.Printf("Extracted %d posts into %s\n", total, pipeline.FilteredDir())
	}

	if flags.Combine {
		allPosts, err := pipeline.CombineAndExport()
		if err != nil {
			logger.Logger.Printf("Error combining filtered posts: %v", err)
			fmt.Printf("Combine failed: %v\n", err)
			os.Exit(1)
		}
		core.PrintSummary(allPosts, cfg.Options.SaveLocation)
	}
}
