package cmd

import (
	"flag"
)

type Flags struct {
	Subreddit   string
	ScrapeAll   bool
	Download    bool
	FilterDumps bool
	Combine     bool
	Limit       int
	Version     bool
}

func ParseFlags() (Flags, string) {
	flags := Flags{}

	flag.StringVar(&flags.Subreddit, "s", "", "Scrape a single subreddit")
	flag.StringVar(&flags.Subreddit, "subreddit", "", "Scrape a single subreddit")
	flag.BoolVar(&flags.ScrapeAll, "scrape", false, "Scrape all configured subreddits from the Reddit API")
	flag.BoolVar(&flags.Download, "download-dumps", false, "Download Pushshift dump archives for the lookback window")
	flag.BoolVar(&flags.FilterDumps, "filter-dumps", false, "Filter local dump files by the configured subreddits")
	flag.BoolVar(&flags.Combine, "combine", false, "Combine filtered dump files and export the corpus artifacts")
	flag.IntVar(&flags.Limit, "limit", 0, "Override posts_per_subreddit for this run")
	flag.BoolVar(&flags.Version, "v", false, "Display version information")
	flag.BoolVar(&flags.Version, "version", false, "Display version information")

	flag.Parse()

	args := flag.Args()
	var subcommand string
	if len(args) > 0 {
		subcommand = args[0]
	}

	return flags, subcommand
}
