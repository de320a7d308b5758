package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mrsinham/clinicdesk/internal/tui/components"
	"github.com/mrsinham/clinicdesk/internal/wizard"
)

var previewLabelStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("244")).
	Width(16)

func previewRow(label, value string) string {
	if value == "" {
		value = components.MutedStyle.Render("-")
	}
	return previewLabelStyle.Render(label) + value
}

// renderPreview lays out the read-only summary of step 3.
func renderPreview(p wizard.Preview, width int) string {
	var sb strings.Builder

	sb.WriteString(previewRow("Patient", p.PatientName))
	sb.WriteString("\n")
	sb.WriteString(previewRow("Prescription", fmt.Sprintf("#%d (%s)", p.PrescriptionID, p.Status)))
	sb.WriteString("\n")
	sb.WriteString(previewRow("Note", p.Note))
	sb.WriteString("\n\n")

	sb.WriteString(components.TitleStyle.Render("Medicines"))
	sb.WriteString("\n")
	for i, m := range p.Medicines {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, summarize(m)))
		if m.Note != "" {
			sb.WriteString(components.MutedStyle.Render("   " + m.Note))
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\n")

	sb.WriteString(components.TitleStyle.Render("Diagnosis"))
	sb.WriteString("\n")
	sb.WriteString(previewRow("Symptoms", p.Diagnosis.Symptoms))
	sb.WriteString("\n")
	sb.WriteString(previewRow("Diagnosis", p.Diagnosis.Diagnosis))
	sb.WriteString("\n")
	sb.WriteString(previewRow("Doctor note", p.Diagnosis.DoctorNote))
	sb.WriteString("\n")
	sb.WriteString(previewRow("Patient note", p.Diagnosis.PatientNote))

	return components.SectionStyle.Width(sectionWidth(width)).Render(sb.String())
}
