package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hollowlog/reddit-harvester/logger"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func loadingTickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(time.Time) tea.Msg {
		return loadingTickMsg{}
	})
}

func (m *MainModel) startScrape() tea.Cmd {
	return func() tea.Msg {
		allPosts, err := m.scraper.ScrapeAll(context.Background())
		if err != nil {
			logger.Logger.Printf("Error scraping subreddits: %v", err)
			return runCompleteMsg{What: "Scrape", Error: err}
		}

		total := 0
		for _, records := range allPosts {
			total += len(records)
		}
		summary := fmt.Sprintf("Collected %d posts from %d subreddits.", total, len(allPosts))
		return runCompleteMsg{What: "Scrape", Summary: summary}
	}
}

func (m *MainModel) startDumpDownload() tea.Cmd {
	return func() tea.Msg {
		paths, err := m.pipeline.DownloadDumps()
		if err != nil {
			logger.Logger.Printf("Error downloading dumps: %v", err)
			return runCompleteMsg{What: "Dump download", Error: err}
		}
		summary := fmt.Sprintf("Downloaded or reused %d dump files.", len(paths))
		return runCompleteMsg{What: "Dump download", Summary: summary}
	}
}

func (m *MainModel) startDumpFilter() tea.Cmd {
	return func() tea.Msg {
		results, err := m.pipeline.FilterLocalDumps()
		if err != nil {
			logger.Logger.Printf("Error filtering dumps: %v", err)
			return runCompleteMsg{What: "Dump filter", Error: err}
		}

		total := 0
		for _, count := range results {
			total += count
		}
		summary := fmt.Sprintf("Extracted %d posts from %d dump files.", total, len(results))
		return runCompleteMsg{What: "Dump filter", Summary: summary}
	}
}

func (m *MainModel) startCombine() tea.Cmd {
	return func() tea.Msg {
		allPosts, err := m.pipeline.CombineAndExport()
		if err != nil {
			logger.Logger.Printf("Error combining filtered posts: %v", err)
			return runCompleteMsg{What: "Combine", Error: err}
		}

		total := 0
		for _, records := range allPosts {
			total += len(records)
		}
		summary := fmt.Sprintf("Exported %d posts across %d subreddits.", total, len(allPosts))
		return runCompleteMsg{What: "Combine", Summary: summary}
	}
}

func (m *MainModel) RenderRunning() string {
	var sb strings.Builder

	dots := strings.Repeat(".", m.loadingDots%4)
	message := lipgloss.NewStyle().Foreground(lipgloss.Color("#a6e3a1")).
		Render(m.runningWhat + dots)
	sb.WriteString(message + "\n\n")
	sb.WriteString("Progress details are on stderr; logs go to the .logs directory.\n")

	helpView := m.help.View(m.keys)
	sb.WriteString("\n" + helpView)

	return sb.String()
}

func (m *MainModel) RenderCompletion() string {
	var sb strings.Builder

	sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("#89dceb")).Render(m.message) + "\n\n")
	sb.WriteString("Press esc to return to the menu or ctrl+c to quit.\n")

	return sb.String()
}
