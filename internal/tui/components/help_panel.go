package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mrsinham/clinicdesk/internal/tui/help"
)

// minHelpWidth keeps the border and padding from eating the whole panel.
const minHelpWidth = 24

var (
	helpPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(1, 2)

	helpTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("63")).
			Bold(true)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	helpDetailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))
)

// HelpPanel explains the focused wizard input and, when the input is invalid, why.
type HelpPanel struct {
	field   string
	problem string
	width   int
	height  int
}

// NewHelpPanel creates a help panel with no field focused
func NewHelpPanel() *HelpPanel {
	return &HelpPanel{
		width:  60,
		height: 10,
	}
}

// SetField focuses the panel on a form key of help.Texts. Moving to another field
// drops the previous field's problem.
func (h *HelpPanel) SetField(field string) {
	if field != h.field {
		h.problem = ""
	}
	h.field = field
}

// SetProblem shows msg as the validation error of the focused field; "" clears it.
func (h *HelpPanel) SetProblem(msg string) {
	h.problem = msg
}

// SetSize updates panel dimensions, never below minHelpWidth
func (h *HelpPanel) SetSize(width, height int) {
	h.width = max(width, minHelpWidth)
	h.height = height
}

// View renders the help panel
func (h *HelpPanel) View() string {
	style := helpPanelStyle.Width(h.width - 4)

	text, ok := help.Texts[h.field]
	if !ok {
		return style.Render(helpDetailStyle.Render("Move to a field to see what it expects"))
	}

	var sb strings.Builder
	sb.WriteString(helpTitleStyle.Render(text.Title))
	sb.WriteString("\n\n")
	sb.WriteString(helpDescStyle.Render(text.Description))
	if text.Details != "" {
		sb.WriteString("\n\n")
		sb.WriteString(helpDetailStyle.Render(text.Details))
	}
	if h.problem != "" {
		sb.WriteString("\n\n")
		sb.WriteString(ErrorStyle.Render("✗ " + h.problem))
	}

	return style.Render(sb.String())
}
