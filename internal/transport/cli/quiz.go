// Package cli is the terminal verification flow: the operator types in an
// employee record by hand, answers the generated questions and gets a
// pass/fail summary. Grading feeds the same learning loop as the web flow.
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sandevgo/verifid/internal/config"
	"github.com/sandevgo/verifid/internal/core"
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	correctStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	wrongStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// QuestionEngine is the part of the engine the quiz needs.
type QuestionEngine interface {
	Ask(ctx context.Context, userID string, record core.Record, k int) []core.Question
	GradeAndLearn(ctx context.Context, userID, field, template, answer string, correctValues []string) core.GradedAnswer
}

type recordField struct {
	name     string
	required bool
}

func recordFields() []recordField {
	return []recordField{
		{name: core.FieldEmployeeName, required: true},
		{name: core.FieldEmployeeID, required: true},
		{name: "Phone Number"},
		{name: "Project Name"},
		{name: "Designation"},
		{name: "Date of Joining"},
		{name: "Date of Birth"},
		{name: "Email"},
		{name: "Manager Name"},
		{name: "Laptop ID"},
		{name: "Location"},
	}
}

type Quiz struct {
	cfg    *config.AppConfig
	engine QuestionEngine
}

func NewQuiz(cfg *config.AppConfig, engine QuestionEngine) *Quiz {
	return &Quiz{cfg: cfg, engine: engine}
}

func (q *Quiz) Run(ctx context.Context) error {
	p := tea.NewProgram(newModel(ctx, q.cfg, q.engine))
	_, err := p.Run()
	return err
}

type phase int

const (
	phaseRecord phase = iota
	phaseQuestions
	phaseSummary
)

type model struct {
	ctx    context.Context
	cfg    *config.AppConfig
	engine QuestionEngine

	phase  phase
	input  textinput.Model
	fields []recordField
	idx    int

	record    core.Record
	questions []core.Question
	results   []core.GradedAnswer
	quitting  bool
}

func newModel(ctx context.Context, cfg *config.AppConfig, engine QuestionEngine) model {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 128

	return model{
		ctx:    ctx,
		cfg:    cfg,
		engine: engine,
		input:  ti,
		fields: recordFields(),
		record: make(core.Record),
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			return m.submit()
		default:
			if m.phase == phaseSummary {
				m.quitting = true
				return m, tea.Quit
			}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) submit() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.input.Value())

	switch m.phase {
	case phaseRecord:
		field := m.fields[m.idx]
		if value == "" && field.required {
			return m, nil
		}
		m.record[field.name] = value
		m.input.SetValue("")
		m.idx++
		if m.idx < len(m.fields) {
			return m, nil
		}
		return m.startQuestions()

	case phaseQuestions:
		if value == "" {
			return m, nil
		}
		q := m.questions[m.idx]
		graded := m.engine.GradeAndLearn(m.ctx, m.record.UserID(), q.Field, q.Template, value,
			[]string{m.record[q.Field]})
		m.results = append(m.results, graded)
		m.input.SetValue("")
		m.idx++
		if m.idx < len(m.questions) {
			return m, nil
		}
		m.phase = phaseSummary
		return m, nil
	}

	m.quitting = true
	return m, tea.Quit
}

func (m model) startQuestions() (tea.Model, tea.Cmd) {
	m.questions = m.engine.Ask(m.ctx, m.record.UserID(), m.record, m.cfg.QuestionCount)
	m.idx = 0
	if len(m.questions) == 0 {
		m.phase = phaseSummary
		return m, nil
	}
	m.phase = phaseQuestions
	return m, nil
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	switch m.phase {
	case phaseRecord:
		field := m.fields[m.idx]
		sb.WriteString(titleStyle.Render("Enter employee details") + "\n\n")
		label := field.name
		if !field.required {
			label += " " + hintStyle.Render("(optional)")
		}
		sb.WriteString(promptStyle.Render(label) + "\n")
		sb.WriteString(m.input.View() + "\n")
		sb.WriteString(hintStyle.Render("enter to continue, esc to quit"))

	case phaseQuestions:
		q := m.questions[m.idx]
		sb.WriteString(titleStyle.Render(fmt.Sprintf("Hi %s! Please answer the following:", m.record.DisplayName())) + "\n\n")
		sb.WriteString(promptStyle.Render(fmt.Sprintf("Q%d: %s", m.idx+1, q.Text)) + "\n")
		sb.WriteString(m.input.View() + "\n")
		sb.WriteString(hintStyle.Render(fmt.Sprintf("question %d of %d", m.idx+1, len(m.questions))))

	case phaseSummary:
		sb.WriteString(m.summary())
	}
	return sb.String()
}

func (m model) summary() string {
	if len(m.questions) == 0 {
		return wrongStyle.Render("Not enough data to generate questions.") + "\n" +
			hintStyle.Render("press any key to exit")
	}

	var sb strings.Builder
	passed := true
	for i, res := range m.results {
		mark := correctStyle.Render("correct")
		if !res.Correct {
			mark = wrongStyle.Render("incorrect")
			passed = false
		}
		sb.WriteString(fmt.Sprintf("Q%d: %s [%s]\n", i+1, res.Question, mark))
	}
	sb.WriteString("\n")
	if passed {
		sb.WriteString(titleStyle.Render("Verification passed"))
	} else {
		sb.WriteString(wrongStyle.Render("Verification failed"))
	}
	sb.WriteString("\n" + hintStyle.Render("press any key to exit"))
	return sb.String()
}
