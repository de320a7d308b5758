package components

import "github.com/charmbracelet/lipgloss"

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			MarginBottom(1)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	MutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	HintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	SectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	ActiveSectionStyle = SectionStyle.
				BorderForeground(lipgloss.Color("63"))
)

// StepIndicator renders "Medicines › Diagnosis › Preview" with the current step highlighted.
func StepIndicator(steps []string, current int) string {
	parts := make([]string, len(steps))
	for i, s := range steps {
		if i == current {
			parts[i] = TitleStyle.UnsetMarginBottom().Render(s)
		} else {
			parts[i] = MutedStyle.Render(s)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, joinWith(parts, MutedStyle.Render(" › "))...)
}

func joinWith(parts []string, sep string) []string {
	out := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			out = append(out, sep)
		}
		out = append(out, p)
	}
	return out
}
