package ui

import (
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/hollowlog/reddit-harvester/config"
	"github.com/hollowlog/reddit-harvester/logger"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HandleMainMenuUpdate handles updates when in the MainMenuState
func (m *MainModel) HandleMainMenuUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quit = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			m.cursorPos = (m.cursorPos - 1 + len(m.options)) % len(m.options)
		case key.Matches(msg, m.keys.Down):
			m.cursorPos = (m.cursorPos + 1) % len(m.options)
		case key.Matches(msg, m.keys.Select):
			m.selected = m.options[m.cursorPos]
			return m.handleMainMenuSelection()
		}
	}
	return m, nil
}

// handleMainMenuSelection processes the selected option in the main menu
func (m *MainModel) handleMainMenuSelection() (tea.Model, tea.Cmd) {
	switch m.selected {
	case "Scrape subreddits from the Reddit API":
		m.state = RunningState
		m.runningWhat = "Scraping configured subreddits"
		m.loadingDots = 0
		return m, tea.Batch(m.startScrape(), loadingTickCmd())
	case "Download Pushshift dump archives":
		m.state = RunningState
		m.runningWhat = "Downloading dump archives"
		m.loadingDots = 0
		return m, tea.Batch(m.startDumpDownload(), loadingTickCmd())
	case "Filter local dump files":
		m.state = RunningState
		m.runningWhat = "Filtering local dump files"
		m.loadingDots = 0
		return m, tea.Batch(m.startDumpFilter(), loadingTickCmd())
	case "Combine and export filtered posts":
		m.state = RunningState
		m.runningWhat = "Combining and exporting filtered posts"
		m.loadingDots = 0
		return m, tea.Batch(m.startCombine(), loadingTickCmd())
	case "Edit config.toml file":
		configPath := config.GetConfigPath()
		if err := config.EnsureConfigExists(configPath); err != nil {
			logger.Logger.Printf("Error ensuring config exists: %v", err)
			return m, nil
		}
		return m, tea.ExecProcess(exec.Command(m.getEditor(), configPath), func(err error) tea.Msg {
			if err != nil {
				logger.Logger.Printf("Error editing config: %v", err)
			}
			return editConfigFinishedMsg{}
		})
	case "Quit":
		m.quit = true
		return m, tea.Quit
	}
	return m, nil
}

// RenderMainMenu renders the main menu view
func (m *MainModel) RenderMainMenu() string {
	var sb strings.Builder

	configPath := config.GetConfigPath()
	styledConfigPath := lipgloss.NewStyle().Foreground(lipgloss.Color("#f5c2e7")).Render(configPath)
	welcomeMessage := "Config path: " + styledConfigPath + "\n" + "Welcome to Reddit Harvester " + m.version
	if m.UpdateAvailable {
		updateMsg := " (Update " + m.LatestVersion + " available)"
		welcomeMessage += lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8")).Render(updateMsg)
	}
	styledWelcomeMessage := lipgloss.NewStyle().Foreground(lipgloss.Color("#a6e3a1")).Render(welcomeMessage)
	sb.WriteString(styledWelcomeMessage + "\n")

	subreddits := lipgloss.NewStyle().Foreground(lipgloss.Color("#89b4fa")).
		Render(strings.Join(m.cfg.Options.Subreddits, ", "))
	sb.WriteString("Configured subreddits: " + subreddits + "\n\n")

	sb.WriteString("What would you like to do? " + "\n")

	for i, opt := range m.options {
		if i == m.cursorPos {
			sb.WriteString("> " + lipgloss.NewStyle().Foreground(lipgloss.Color("#89dceb")).Render(opt) + "\n")
		} else {
			sb.WriteString("  " + opt + "\n")
		}
	}

	helpView := m.help.View(m.keys)
	sb.WriteString("\n" + helpView)

	return sb.String()
}

func (m *MainModel) getEditor() string {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		if runtime.GOOS == "windows" {
			editor = "notepad"
		} else {
			editor = "vim"
		}
	}
	return editor
}
