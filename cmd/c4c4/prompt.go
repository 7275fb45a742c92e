package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/synchrotron/c4c4/internal/source"
)

// promptTheme styles the init prompts.
type promptTheme struct {
	Label   lipgloss.Style
	Default lipgloss.Style
	Help    lipgloss.Style
}

func defaultPromptTheme() promptTheme {
	return promptTheme{
		Label:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		Default: lipgloss.NewStyle().Faint(true),
		Help:    lipgloss.NewStyle().Faint(true),
	}
}

// promptModel is a bubbletea model that asks one question at a time.
// An empty answer takes the question's default.
type promptModel struct {
	questions []source.ConfigQuestion
	idx       int
	inputs    []textinput.Model
	done      bool
	theme     promptTheme
}

func newPromptModel(questions []source.ConfigQuestion) promptModel {
	inputs := make([]textinput.Model, len(questions))
	for i, q := range questions {
		ti := textinput.New()
		ti.Placeholder = q.Default
		ti.CharLimit = 512
		if q.Type == "secret" {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		inputs[i] = ti
	}
	m := promptModel{
		questions: questions,
		inputs:    inputs,
		theme:     defaultPromptTheme(),
	}
	if len(inputs) > 0 {
		m.inputs[0].Focus()
	}
	return m
}

func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if len(m.inputs) == 0 {
		m.done = true
		return m, tea.Quit
	}
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.idx < len(m.inputs)-1 {
				m.inputs[m.idx].Blur()
				m.idx++
				m.inputs[m.idx].Focus()
				return m, textinput.Blink
			}
			m.done = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.inputs[m.idx], cmd = m.inputs[m.idx].Update(msg)
	return m, cmd
}

func (m promptModel) View() string {
	if m.done || len(m.questions) == 0 {
		return ""
	}
	q := m.questions[m.idx]
	var b strings.Builder
	b.WriteString(m.theme.Label.Render(q.Prompt))
	if q.Default != "" && q.Type != "secret" {
		b.WriteString(" " + m.theme.Default.Render("["+q.Default+"]"))
	}
	fmt.Fprintf(&b, ": %s\n", m.inputs[m.idx].View())
	b.WriteString(m.theme.Help.Render(fmt.Sprintf("(%d/%d) enter to continue, esc to cancel", m.idx+1, len(m.questions))))
	b.WriteString("\n")
	return b.String()
}

// answers returns trimmed values keyed by ConfigQuestion.Key, with
// defaults filled in for empty inputs.
func (m promptModel) answers() map[string]string {
	out := make(map[string]string, len(m.questions))
	for i, q := range m.questions {
		v := strings.TrimSpace(m.inputs[i].Value())
		if v == "" {
			v = q.Default
		}
		out[q.Key] = v
	}
	return out
}

// promptQuestions runs the TUI and returns answers keyed by ConfigQuestion.Key.
func promptQuestions(questions []source.ConfigQuestion) (map[string]string, error) {
	if len(questions) == 0 {
		return map[string]string{}, nil
	}
	p := tea.NewProgram(newPromptModel(questions))
	result, err := p.Run()
	if err != nil {
		return nil, err
	}
	final, ok := result.(promptModel)
	if !ok || !final.done {
		return nil, fmt.Errorf("prompt cancelled")
	}
	return final.answers(), nil
}
