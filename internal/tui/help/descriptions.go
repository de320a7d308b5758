package help

// HelpText contains information about a field
type HelpText struct {
	Title       string
	Description string
	Details     string
}

// Texts contains help for every wizard input, keyed by form field key
var Texts = map[string]HelpText{
	"name": {
		Title:       "MEDICINE NAME",
		Description: "Commercial or generic name of the medicine.",
		Details:     "Examples: Amoxicillin, Paracetamol, Ibuprofen",
	},
	"dose": {
		Title:       "DOSE",
		Description: "Amount per intake, in milligrams.",
		Details:     "A non-negative number. The unit is added when the medicine is saved (500 becomes 500 mg).",
	},
	"frequency": {
		Title:       "FREQUENCY",
		Description: "How often the medicine is taken.",
		Details: `Suggestions: Once a day, Twice a day, Three times a day,
Every 8 hours, As needed (PRN). Free text is accepted.`,
	},
	"strength": {
		Title:       "STRENGTH",
		Description: "Concentration of the product.",
		Details:     "Examples: 500mg, 250mg/5ml, 1%",
	},
	"until": {
		Title:       "UNTIL",
		Description: "How long the treatment lasts.",
		Details:     "Suggestions: For 7 days, For 2 weeks, Until next appointment",
	},
	"whenToTake": {
		Title:       "WHEN TO TAKE",
		Description: "Timing relative to meals or time of day.",
		Details:     "Suggestions: Before meals, After meals, At bedtime",
	},
	"note": {
		Title:       "MEDICINE NOTE",
		Description: "Optional instruction for this medicine only.",
	},
	"prescriptionNote": {
		Title:       "PRESCRIPTION NOTE",
		Description: "Note printed with the whole prescription.",
		Details:     "Sent when the prescription is completed. Going back and completing again replaces it.",
	},
	"symptoms": {
		Title:       "SYMPTOMS",
		Description: "What the patient reports.",
	},
	"diagnosis": {
		Title:       "DIAGNOSIS",
		Description: "Your assessment for this visit.",
	},
	"doctorNote": {
		Title:       "DOCTOR NOTE",
		Description: "Clinical note kept in the patient record.",
	},
	"patientNote": {
		Title:       "PATIENT NOTE",
		Description: "Optional advice shown to the patient.",
	},
}
