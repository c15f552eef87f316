package ui

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/hollowlog/reddit-harvester/config"
	"github.com/hollowlog/reddit-harvester/core"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type AppState int

const (
	MainMenuState AppState = iota
	RunningState
	CompletionState
)

type MainModel struct {
	version     string
	quit        bool
	cursorPos   int
	selected    string
	options     []string
	state       AppState
	keys        keyMap
	help        help.Model
	width       int
	height      int
	message     string
	runningWhat string
	loadingDots int

	cfg      *config.Config
	scraper  *core.Scraper
	pipeline *core.DumpPipeline

	UpdateAvailable bool
	LatestVersion   string
}

type runCompleteMsg struct {
	What    string
	Summary string
	Error   error
}

type loadingTickMsg struct{}

type editConfigFinishedMsg struct{}

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Help   key.Binding
	Quit   key.Binding
	Back   key.Binding
	Select key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Select, k.Back},
		{k.Help, k.Quit},
	}
}

var defaultKeyMap = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "move up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "move down"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "toggle help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back to menu"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select"),
	),
}

func NewMainModel(cfg *config.Config, scraper *core.Scraper, pipeline *core.DumpPipeline, version string) *MainModel {
	return &MainModel{
		version: version,
		options: []string{
			"Scrape subreddits from the Reddit API",
			"Download Pushshift dump archives",
			"Filter local dump files",
			"Combine and export filtered posts",
			"Edit config.toml file",
			"Quit",
		},
		cursorPos: 0,
		keys:      defaultKeyMap,
		help:      help.New(),
		state:     MainMenuState,
		cfg:       cfg,
		scraper:   scraper,
		pipeline:  pipeline,
	}
}

func (m *MainModel) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		func() tea.Msg {
			c := make(chan os.Signal, 1)
			signal.Notify(c, os.Interrupt, syscall.SIGTERM)
			go func() {
				<-c
				os.Exit(0)
			}()
			return nil
		},
	)
}

func (m *MainModel) Reset() {
	m.cursorPos = 0
	m.selected = ""
	m.state = MainMenuState
}
