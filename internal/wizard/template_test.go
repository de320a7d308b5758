package wizard

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mrsinham/clinicdesk/internal/clinicapi"
	"gopkg.in/yaml.v3"
)

const sinusitisTemplate = `
name: Sinusitis
note: Finish the full course
medicines:
  - name: Amoxicillin
    dose: "500"
    frequency: Three times a day
    strength: 500mg
    until: For 7 days
    when_to_take: After meals
  - name: Paracetamol
    dose: "1000"
    frequency: As needed (PRN)
    strength: 500mg
    until: For 3 days
    when_to_take: With food
    note: Max 4g per day
`

func writeTemplate(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "template.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write template: %v", err)
	}
	return path
}

func TestLoadTemplate(t *testing.T) {
	tmpl, err := LoadTemplate(writeTemplate(t, sinusitisTemplate))
	if err != nil {
		t.Fatalf("LoadTemplate failed: %v", err)
	}

	if tmpl.Name != "Sinusitis" {
		t.Errorf("Expected name Sinusitis, got %s", tmpl.Name)
	}
	if len(tmpl.Medicines) != 2 {
		t.Fatalf("Expected 2 medicines, got %d", len(tmpl.Medicines))
	}
	if tmpl.Medicines[0].WhenToTake != "After meals" {
		t.Errorf("Expected when_to_take After meals, got %s", tmpl.Medicines[0].WhenToTake)
	}
	if tmpl.Medicines[1].Note != "Max 4g per day" {
		t.Errorf("Expected note, got %q", tmpl.Medicines[1].Note)
	}
}

func TestLoadTemplate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid yaml", "medicines: [unclosed"},
		{"no medicines", "name: empty\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadTemplate(writeTemplate(t, tt.content)); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := LoadTemplate(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSaveTemplate_RoundTrip(t *testing.T) {
	tmpl, err := LoadTemplate(writeTemplate(t, sinusitisTemplate))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := SaveTemplate(tmpl, path); err != nil {
		t.Fatalf("SaveTemplate failed: %v", err)
	}
	again, err := LoadTemplate(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(again.Medicines) != 2 || again.Medicines[1] != tmpl.Medicines[1] {
		t.Errorf("round trip changed medicines: %+v", again.Medicines)
	}
}

func TestApplyTemplate(t *testing.T) {
	s, backend, _ := openSession(t)
	tmpl, err := LoadTemplate(writeTemplate(t, sinusitisTemplate))
	if err != nil {
		t.Fatal(err)
	}

	n, err := s.ApplyTemplate(tmpl)
	if err != nil {
		t.Fatalf("ApplyTemplate failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 sections filled, got %d", n)
	}

	sections := s.Sections()
	if len(sections) != 2 {
		t.Fatalf("Expected 2 sections, got %d", len(sections))
	}
	for _, sec := range sections {
		if sec.Saved {
			t.Error("template sections must not be saved")
		}
		if !s.CanSaveSection(sec.ID) {
			t.Errorf("%s should be savable, errors: %v", sec.Label, sec.Errors)
		}
	}
	if sections[1].Label != "Medicine 2" || sections[1].Fields.Name != "Paracetamol" {
		t.Errorf("unexpected second section: %+v", sections[1])
	}
	if s.Note() != "Finish the full course" {
		t.Errorf("Expected template note, got %q", s.Note())
	}
	if backend.count("AddMedicine") != 0 {
		t.Error("applying a template must not save anything")
	}
}

func TestApplyTemplate_SkipsSavedSections(t *testing.T) {
	s, _, _ := openSession(t)
	first := s.Sections()[0].ID
	fillAmoxicillin(s, first)
	if err := s.SaveSection(ctx, first); err != nil {
		t.Fatal(err)
	}
	s.SetPrescriptionNote("keep me")

	n, err := s.ApplyTemplate(&Template{Note: "ignored", Medicines: []clinicapi.Medicine{{Name: "Ibuprofen"}}})
	if err != nil || n != 1 {
		t.Fatalf("ApplyTemplate = %d, %v", n, err)
	}
	sections := s.Sections()
	if len(sections) != 2 || sections[1].Fields.Name != "Ibuprofen" {
		t.Errorf("expected a new section, got %+v", sections)
	}
	if _, bad := sections[1].Errors[FieldDose]; !bad {
		t.Error("missing template fields must be flagged")
	}
	if s.Note() != "keep me" {
		t.Errorf("existing note must be kept, got %q", s.Note())
	}
}

func TestApplyTemplate_OnlyOnMedicinesStep(t *testing.T) {
	s, _, _ := openSession(t)
	toDiagnosis(t, s)
	if _, err := s.ApplyTemplate(&Template{}); err == nil {
		t.Error("expected error outside the medicines step")
	}
}

func TestExportPreview(t *testing.T) {
	s, _, _ := openSession(t)
	s.SetPrescriptionNote("Take with food")
	second, _ := s.AddSection()
	s.SetField(second, FieldName, "Unsaved")
	toDiagnosis(t, s)
	s.SetDiagnosis(fluDiagnosis())

	path := filepath.Join(t.TempDir(), "preview.yaml")
	if err := s.ExportPreview(path); err != nil {
		t.Fatalf("ExportPreview failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var p Preview
	if err := yaml.Unmarshal(data, &p); err != nil {
		t.Fatalf("invalid yaml: %v", err)
	}
	if p.PrescriptionID != 7 || p.PatientID != 42 || p.Status != "completed" {
		t.Errorf("unexpected header: %+v", p)
	}
	if len(p.Medicines) != 1 || p.Medicines[0].Name != "Amoxicillin" {
		t.Errorf("expected only saved medicines, got %+v", p.Medicines)
	}
	if p.Diagnosis != fluDiagnosis() {
		t.Errorf("unexpected diagnosis: %+v", p.Diagnosis)
	}
	if strings.Contains(string(data), "prescription_id: 0") {
		t.Error("medicine ids must not be exported")
	}
}
