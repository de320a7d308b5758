package sandbox

import (
	"context"
	"os"
	"testing"

	"github.com/mrsinham/clinicdesk/internal/clinicapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStore runs the behaviour every Store must have.
func testStore(t *testing.T, s Store) {
	ctx := context.Background()

	p, err := s.CreatePrescription(ctx, 42)
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	assert.Equal(t, clinicapi.StatusDraft, p.Status)
	assert.Zero(t, p.MedicineCount)

	_, err = s.GetPrescription(ctx, p.ID+100000)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.AddMedicine(ctx, clinicapi.Medicine{Name: "X", PrescriptionID: p.ID + 100000})
	assert.ErrorIs(t, err, ErrNotFound)

	for _, name := range []string{"Amoxicillin", "Ibuprofen"} {
		m, err := s.AddMedicine(ctx, clinicapi.Medicine{
			Name: name, Dose: "500 mg", Frequency: "Twice a day", Strength: "500mg",
			Until: "For 7 days", WhenToTake: "After meals", PrescriptionID: p.ID,
		})
		require.NoError(t, err)
		assert.NotZero(t, m.ID)
	}
	meds, err := s.Medicines(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, meds, 2)
	assert.Equal(t, "Amoxicillin", meds[0].Name)

	done, err := s.CompletePrescription(ctx, p.ID, "first")
	require.NoError(t, err)
	assert.Equal(t, clinicapi.StatusCompleted, done.Status)
	assert.Equal(t, 2, done.MedicineCount)
	done, err = s.CompletePrescription(ctx, p.ID, "second")
	require.NoError(t, err)
	assert.Equal(t, "second", done.Note)

	_, err = s.CompletePrescription(ctx, p.ID+100000, "x")
	assert.ErrorIs(t, err, ErrNotFound)

	info, err := s.AddMedicalInfo(ctx, clinicapi.MedicalInfo{
		PrescriptionID: p.ID, AppointmentID: 777, Symptoms: "Fever", Diagnosis: "Flu", DoctorNote: "Rest",
	})
	require.NoError(t, err)
	assert.NotZero(t, info.ID)

	got, err := s.MedicalInfoByAppointment(ctx, 777)
	require.NoError(t, err)
	assert.Equal(t, "Flu", got.Diagnosis)
	assert.Equal(t, p.ID, got.PrescriptionID)

	_, err = s.MedicalInfoByAppointment(ctx, 778)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestPGStore(t *testing.T) {
	url := os.Getenv("SANDBOX_DATABASE_URL")
	if url == "" {
		t.Skip("SANDBOX_DATABASE_URL not set")
	}
	ctx := context.Background()

	pool, err := NewPool(ctx, url, 4, 1)
	require.NoError(t, err)
	defer pool.Close()

	s := NewPGStore(pool)
	require.NoError(t, s.EnsureSchema(ctx))
	require.NoError(t, s.EnsureSchema(ctx), "schema must be re-runnable")
	testStore(t, s)
}
