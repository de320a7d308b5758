package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/mrsinham/clinicdesk/internal/clinicapi"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Width(22)
)

func renderTable(w io.Writer, headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("Nothing to show."))
		return
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	fmt.Fprintln(w, t.Render())
}

func appointmentRows(list []clinicapi.Appointment) [][]string {
	rows := make([][]string, 0, len(list))
	for _, a := range list {
		rows = append(rows, []string{
			fmt.Sprint(a.ID),
			a.ReservationDate,
			a.ReservationHour,
			a.PatientName(),
			a.AppointmentType,
			a.Status,
		})
	}
	return rows
}

var appointmentHeaders = []string{"ID", "Date", "Hour", "Patient", "Type", "Status"}

func patientRows(list []clinicapi.Patient) [][]string {
	rows := make([][]string, 0, len(list))
	for _, p := range list {
		rows = append(rows, []string{
			fmt.Sprint(p.ID),
			p.Name(),
			p.Gender,
			p.Age.String(),
			p.Phone,
			p.Email,
		})
	}
	return rows
}

var patientHeaders = []string{"ID", "Name", "Gender", "Age", "Phone", "Email"}

// renderDocument prints a pass-through backend document as YAML with sorted keys.
func renderDocument(w io.Writer, doc clinicapi.Document) error {
	data, err := yaml.Marshal(map[string]any(doc))
	if err != nil {
		return fmt.Errorf("render document: %w", err)
	}
	_, err = w.Write(data)
	return err
}

type field struct{ label, value string }

func renderFields(w io.Writer, fields []field) {
	for _, f := range fields {
		value := f.value
		if value == "" {
			value = mutedStyle.Render("-")
		}
		fmt.Fprintln(w, labelStyle.Render(f.label)+value)
	}
}
