package wizard

// Suggestions offered by the medicine form. Free text is accepted as well.
var (
	FrequencyOptions = []string{
		"Once a day",
		"Twice a day",
		"Three times a day",
		"Every 4 hours",
		"Every 6 hours",
		"Every 8 hours",
		"As needed (PRN)",
		"Weekly",
		"Monthly",
	}

	UntilOptions = []string{
		"For 3 days",
		"For 7 days",
		"For 10 days",
		"For 2 weeks",
		"For 1 month",
		"Indefinitely",
		"Until next appointment",
	}

	WhenToTakeOptions = []string{
		"Morning",
		"Afternoon",
		"Evening",
		"At bedtime",
		"Before meals",
		"After meals",
		"With food",
		"On an empty stomach",
	}
)

// Options returns the suggestions for field f, nil when the field is free text only.
func Options(f Field) []string {
	switch f {
	case FieldFrequency:
		return FrequencyOptions
	case FieldUntil:
		return UntilOptions
	case FieldWhenToTake:
		return WhenToTakeOptions
	}
	return nil
}
