package cli

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// confirmModel is a minimal yes/no prompt. Destructive actions (reset,
// overwriting the working graph on import or draw) go through it before
// any state mutation happens.
type confirmModel struct {
	question  string
	confirmed bool
	answered  bool
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch strings.ToLower(key.String()) {
		case "y":
			m.confirmed = true
			m.answered = true
			return m, tea.Quit
		case "n", "q", "esc", "ctrl+c":
			m.answered = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.answered {
		return ""
	}
	return StyleWarning.Render(iconWarning) + " " + m.question + " " + StyleDim.Render("[y/N]") + " "
}

// confirm asks the user a yes/no question. A --yes flag bypasses it.
func confirm(question string, assumeYes bool) (bool, error) {
	if assumeYes {
		return true, nil
	}
	final, err := tea.NewProgram(confirmModel{question: question}).Run()
	if err != nil {
		return false, err
	}
	m, ok := final.(confirmModel)
	return ok && m.confirmed, nil
}
