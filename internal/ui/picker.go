package ui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrNoCandidates is returned when there is nothing to pick from.
var ErrNoCandidates = errors.New("no signature candidates")

// signaturePicker is the Bubble Tea model for choosing one of several text
// signatures that share a selector.
type signaturePicker struct {
	selector   string
	candidates []string
	cursor     int
	chosen     int // -1 until enter
	quitting   bool
}

func newSignaturePicker(selector string, candidates []string) signaturePicker {
	return signaturePicker{selector: selector, candidates: candidates, chosen: -1}
}

func (m signaturePicker) Init() tea.Cmd { return nil }

func (m signaturePicker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.candidates)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.chosen = m.cursor
		return m, tea.Quit
	}
	return m, nil
}

func (m signaturePicker) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(StyleTitle.Render(fmt.Sprintf("  %d signatures match %s", len(m.candidates), m.selector)) + "\n\n")

	for i, sig := range m.candidates {
		prefix := "    "
		if i == m.cursor {
			prefix = "  ▸ "
		}
		line := prefix + StyleValue.Render(sig)
		if i == 0 {
			line += "  " + StyleMeta.Render("(registry default)")
		}
		if i == m.cursor {
			sb.WriteString(StyleSelected.Render(line) + "\n")
		} else {
			sb.WriteString(line + "\n")
		}
	}

	sb.WriteString("\n")
	sb.WriteString(StyleMeta.Render("  [ ↑↓ / jk ] navigate   [ Enter ] decode with signature   [ q ] cancel") + "\n")
	return sb.String()
}

// PickSignature lets the user choose among candidates for selector.
// Returns ("", nil) if the user cancels. A single candidate is returned
// without starting the TUI.
func PickSignature(selector string, candidates []string) (string, error) {
	switch len(candidates) {
	case 0:
		return "", ErrNoCandidates
	case 1:
		return candidates[0], nil
	}

	p := tea.NewProgram(newSignaturePicker(selector, candidates), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("signature picker: %w", err)
	}

	fm := final.(signaturePicker)
	if fm.quitting || fm.chosen < 0 {
		return "", nil
	}
	return fm.candidates[fm.chosen], nil
}
