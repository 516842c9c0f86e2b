package tui

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/padup/padup/internal/api"
)

var browseKeys = struct {
	Up, Down, Open, Back, Book, Quit key.Binding
}{
	Up:   reviewKeys.Up,
	Down: reviewKeys.Down,
	Open: reviewKeys.Open,
	Back: reviewKeys.Back,
	Book: key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "book")),
	Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// browseModel pages through listings. Choosing "book" ends the session with
// that listing selected.
type browseModel struct {
	props    []api.Property
	cursor   int
	detail   bool
	selected *api.Property
	quitting bool
	styles   Styles
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, browseKeys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(keyMsg, browseKeys.Up):
		if !m.detail && m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, browseKeys.Down):
		if !m.detail && m.cursor < len(m.props)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, browseKeys.Open):
		if len(m.props) > 0 {
			m.detail = true
		}
	case key.Matches(keyMsg, browseKeys.Back):
		m.detail = false
	case key.Matches(keyMsg, browseKeys.Book):
		if len(m.props) > 0 {
			p := m.props[m.cursor]
			m.selected = &p
			m.quitting = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m browseModel) View() string {
	if m.quitting {
		return ""
	}
	s := m.styles
	var b strings.Builder

	b.WriteString(s.Title.Render("Shortlets"))
	b.WriteString("\n\n")

	if len(m.props) == 0 {
		b.WriteString(s.Muted.Render("  No shortlets found"))
		b.WriteString("\n")
	} else if !m.detail {
		for i, p := range m.props {
			style, cursor := s.Item, "  "
			if i == m.cursor {
				style, cursor = s.Selected, "→ "
			}
			line := fmt.Sprintf("%s%s | %s | ₦%s/night", cursor, p.Name, p.Location, FormatPrice(p.Price.Float()))
			b.WriteString(style.Render(line))
			b.WriteString("\n")
		}
	} else {
		p := m.props[m.cursor]
		b.WriteString(s.Subtitle.Render(p.Name))
		b.WriteString("\n\n")
		details := []struct{ key, value string }{
			{"Address", p.Address},
			{"Location", p.Location},
			{"Price", "₦" + FormatPrice(p.Price.Float()) + " per night"},
			{"Type", p.PropertyType},
			{"Bedrooms", fmt.Sprintf("%g", p.Bedrooms.Float())},
			{"Bathrooms", fmt.Sprintf("%g", p.Bathrooms.Float())},
			{"Max guests", fmt.Sprintf("%g", p.MaxGuests.Float())},
			{"Photo", p.Cover()},
		}
		for _, d := range details {
			if d.value == "" {
				continue
			}
			b.WriteString("  ")
			b.WriteString(s.Key.Render(fmt.Sprintf("%-11s:", d.key)))
			b.WriteString(" ")
			b.WriteString(s.Value.Render(d.value))
			b.WriteString("\n")
		}
		if p.Description != "" {
			b.WriteString("\n  ")
			b.WriteString(s.Value.Render(p.Description))
			b.WriteString("\n")
		}
	}

	help := "↑/↓: navigate | enter: details | b: book | q: quit"
	if m.detail {
		help = "esc: back | b: book | q: quit"
	}
	b.WriteString(s.Help.Render(help))
	return b.String()
}

// Browse opens the listing browser. It returns the listing chosen for
// booking, or nil when the user quit.
func Browse(props []api.Property, styles Styles) (*api.Property, error) {
	if len(props) == 0 {
		return nil, nil
	}

	program := tea.NewProgram(browseModel{props: props, styles: styles}, tea.WithAltScreen())
	finalModel, err := program.Run()
	if err != nil {
		return nil, fmt.Errorf("running shortlet browser: %w", err)
	}

	m, ok := finalModel.(browseModel)
	if !ok {
		return nil, fmt.Errorf("unexpected model type: %T", finalModel)
	}
	return m.selected, nil
}

// FormatPrice renders an amount with thousands separators and no decimals
// for whole numbers: 45000 -> "45,000", 1234.5 -> "1,234.50".
func FormatPrice(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	cents := int64(math.Round(v * 100))
	whole, frac := cents/100, cents%100

	digits := strconv.FormatInt(whole, 10)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if frac > 0 {
		fmt.Fprintf(&b, ".%02d", frac)
	}
	return b.String()
}
