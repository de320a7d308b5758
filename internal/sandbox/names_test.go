package sandbox

import (
	"math/rand/v2"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePatient(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 0))

	for i := 0; i < 200; i++ {
		p := GeneratePatient(int64(1000+i), "male", fixtureDay, rng)
		require.NotEmpty(t, p.FirstName)
		require.NotEmpty(t, p.LastName)
		assert.Equal(t, "male", p.Gender)
		assert.Contains(t, p.Email, "@example.com")
		assert.Len(t, p.Phone, 11)

		age, err := strconv.Atoi(p.Age.String())
		require.NoError(t, err)
		assert.GreaterOrEqual(t, age, 0)
		assert.LessOrEqual(t, age, 91)

		birth, err := time.Parse("2006-01-02", p.BirthDate)
		require.NoError(t, err)
		assert.True(t, birth.Before(fixtureDay))
	}
}

func TestGeneratePatient_UnknownGender(t *testing.T) {
	p := GeneratePatient(1, "", fixtureDay, rand.New(rand.NewPCG(1, 0)))
	assert.Equal(t, "female", p.Gender)
}

func TestAddPatients(t *testing.T) {
	f := NewFixtures(fixtureDay)
	f.AddPatients(20, 42, fixtureDay)

	list, total := f.Patients(1, 100)
	assert.Equal(t, 26, total)
	assert.Equal(t, int64(48), list[6].ID, "ids continue after the seeded patients")
	assert.Equal(t, int64(67), list[25].ID)

	again := NewFixtures(fixtureDay)
	again.AddPatients(20, 42, fixtureDay)
	other, _ := again.Patients(1, 100)
	assert.Equal(t, list, other, "same seed, same patients")

	p, ok := f.Patient(67)
	require.True(t, ok)
	assert.Equal(t, list[25], p)
}
