package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/padup/padup/internal/api"
)

// KYCDecision is a reviewer's verdict on one submission.
type KYCDecision struct {
	ID     string
	Status string // api.KYCApproved or api.KYCRejected
}

type reviewKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Open    key.Binding
	Back    key.Binding
	Approve key.Binding
	Reject  key.Binding
	Quit    key.Binding
}

var reviewKeys = reviewKeyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Open:    key.NewBinding(key.WithKeys("enter", "right", "l"), key.WithHelp("enter", "details")),
	Back:    key.NewBinding(key.WithKeys("left", "h", "esc"), key.WithHelp("esc", "back")),
	Approve: key.NewBinding(key.WithKeys("a", "A"), key.WithHelp("a", "approve")),
	Reject:  key.NewBinding(key.WithKeys("r", "R"), key.WithHelp("r", "reject")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "done")),
}

// kycReviewModel lists submissions and collects approve/reject verdicts.
// Verdicts are applied by the caller after the screen closes.
type kycReviewModel struct {
	records   []api.KYCRecord
	cursor    int
	detail    bool
	decisions map[string]string
	order     []string
	done      bool
	styles    Styles
}

func newKYCReviewModel(records []api.KYCRecord, styles Styles) kycReviewModel {
	return kycReviewModel{records: records, decisions: map[string]string{}, styles: styles}
}

func (m kycReviewModel) Init() tea.Cmd {
	return nil
}

func (m kycReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, reviewKeys.Quit):
		m.done = true
		return m, tea.Quit
	case key.Matches(keyMsg, reviewKeys.Up):
		if !m.detail && m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, reviewKeys.Down):
		if !m.detail && m.cursor < len(m.records)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, reviewKeys.Open):
		if len(m.records) > 0 {
			m.detail = true
		}
	case key.Matches(keyMsg, reviewKeys.Back):
		m.detail = false
	case key.Matches(keyMsg, reviewKeys.Approve):
		m.decide(api.KYCApproved)
	case key.Matches(keyMsg, reviewKeys.Reject):
		m.decide(api.KYCRejected)
	}
	return m, nil
}

func (m *kycReviewModel) decide(status string) {
	if len(m.records) == 0 {
		return
	}
	id := m.records[m.cursor].ID.String()
	if _, seen := m.decisions[id]; !seen {
		m.order = append(m.order, id)
	}
	m.decisions[id] = status
}

// Decisions returns verdicts in the order they were first made.
func (m kycReviewModel) Decisions() []KYCDecision {
	out := make([]KYCDecision, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, KYCDecision{ID: id, Status: m.decisions[id]})
	}
	return out
}

func (m kycReviewModel) View() string {
	if m.done {
		return ""
	}
	s := m.styles
	var b strings.Builder

	b.WriteString(s.Title.Render("KYC Review"))
	b.WriteString("\n\n")
	b.WriteString(s.Subtitle.Render(fmt.Sprintf("Submissions: %d | Decided: %d", len(m.records), len(m.order))))
	b.WriteString("\n\n")

	if len(m.records) == 0 {
		b.WriteString(s.Muted.Render("  No submissions"))
		b.WriteString("\n")
	} else if !m.detail {
		for i, rec := range m.records {
			style, cursor := s.Item, "  "
			if i == m.cursor {
				style, cursor = s.Selected, "→ "
			}
			line := fmt.Sprintf("%s[%s] %s | %s | %s", cursor, rec.ID, rec.FullName, rec.Email, m.statusOf(rec))
			b.WriteString(style.Render(line))
			b.WriteString("\n")
		}
	} else {
		rec := m.records[m.cursor]
		details := []struct{ key, value string }{
			{"ID", rec.ID.String()},
			{"Name", rec.FullName},
			{"Email", rec.Email},
			{"Phone", rec.Phone},
			{"Bank", rec.BankName},
			{"Account", rec.AccountNumber},
			{"Status", m.statusOf(rec)},
		}
		for _, d := range details {
			b.WriteString("  ")
			b.WriteString(s.Key.Render(fmt.Sprintf("%-10s:", d.key)))
			b.WriteString(" ")
			b.WriteString(s.Value.Render(d.value))
			b.WriteString("\n")
		}
	}

	help := "↑/↓: navigate | enter: details | a: approve | r: reject | q: done"
	if m.detail {
		help = "esc: back | a: approve | r: reject | q: done"
	}
	b.WriteString(s.Help.Render(help))
	return b.String()
}

// statusOf shows a pending verdict in place of the stored status.
func (m kycReviewModel) statusOf(rec api.KYCRecord) string {
	if status, ok := m.decisions[rec.ID.String()]; ok {
		return status + " (pending)"
	}
	return rec.Status
}

// RunKYCReview opens the review screen and returns the verdicts made.
func RunKYCReview(records []api.KYCRecord, styles Styles) ([]KYCDecision, error) {
	if len(records) == 0 {
		return nil, nil
	}

	program := tea.NewProgram(newKYCReviewModel(records, styles))
	finalModel, err := program.Run()
	if err != nil {
		return nil, fmt.Errorf("running KYC review UI: %w", err)
	}

	m, ok := finalModel.(kycReviewModel)
	if !ok {
		return nil, fmt.Errorf("unexpected model type: %T", finalModel)
	}
	return m.Decisions(), nil
}
