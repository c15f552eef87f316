package ui

import (
	"github.com/hollowlog/reddit-harvester/logger"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m *MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case loadingTickMsg:
		if m.state == RunningState {
			m.loadingDots++
			return m, loadingTickCmd()
		}
		return m, nil
	case runCompleteMsg:
		if msg.Error != nil {
			m.message = msg.What + " failed: " + msg.Error.Error()
		} else {
			m.message = msg.What + " finished. " + msg.Summary
		}
		m.state = CompletionState
		return m, nil
	case editConfigFinishedMsg:
		m.state = MainMenuState
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Quit):
			m.quit = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Back):
			if m.state == CompletionState {
				m.Reset()
				return m, nil
			}
		}
		switch m.state {
		case MainMenuState:
			return m.HandleMainMenuUpdate(msg)
		case RunningState, CompletionState:
			return m, nil
		default:
			logger.Logger.Printf("Unhandled state: %v", m.state)
			return m, nil
		}
	}
	return m, nil
}

func (m *MainModel) View() string {
	switch m.state {
	case MainMenuState:
		return m.RenderMainMenu()
	case RunningState:
		return m.RenderRunning()
	case CompletionState:
		return m.RenderCompletion()
	default:
		return "Unknown state"
	}
}
