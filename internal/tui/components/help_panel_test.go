package components

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHelpPanel_UnknownField(t *testing.T) {
	h := NewHelpPanel()
	h.SetField("nope")
	assert.Contains(t, h.View(), "Move to a field")
}

func TestHelpPanel_ShowsFieldHelp(t *testing.T) {
	h := NewHelpPanel()
	h.SetSize(80, 12)
	h.SetField("name")
	view := h.View()
	assert.Contains(t, view, "MEDICINE NAME")
	assert.Contains(t, view, "Amoxicillin")
}

func TestHelpPanel_Problem(t *testing.T) {
	h := NewHelpPanel()
	h.SetSize(80, 12)
	h.SetField("dose")
	h.SetProblem("Dose is required")
	assert.Contains(t, h.View(), "Dose is required")

	h.SetField("dose")
	assert.Contains(t, h.View(), "Dose is required", "same field keeps its problem")

	h.SetField("name")
	assert.NotContains(t, h.View(), "Dose is required")
}

func TestHelpPanel_MinWidth(t *testing.T) {
	h := NewHelpPanel()
	h.SetSize(3, 5)
	assert.Equal(t, minHelpWidth, h.width)
}
