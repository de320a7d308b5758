package sandbox

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/mrsinham/clinicdesk/internal/clinicapi"
)

// EnglishNameProbability is the share of generated patients given an English name.
const EnglishNameProbability = 0.20

var (
	maleFirstNames = []string{
		"Ahmed", "Mohamed", "Mahmoud", "Mostafa", "Khaled", "Tarek", "Hassan", "Hussein",
		"Amr", "Sherif", "Hany", "Walid", "Sameh", "Ramy", "Karim", "Omar",
		"Youssef", "Ibrahim", "Adel", "Nabil", "Samir", "Fadi", "Ziad", "Bassem",
		"Hatem", "Ayman", "Ashraf", "Alaa", "Mazen", "Nader", "Rami", "Tamer",
	}
	femaleFirstNames = []string{
		"Fatma", "Aya", "Mariam", "Nour", "Salma", "Hana", "Rania", "Dina",
		"Mona", "Heba", "Yasmin", "Reem", "Laila", "Amira", "Nada", "Sara",
		"Malak", "Farida", "Jana", "Habiba", "Lina", "Rana", "Noha", "Ghada",
		"Shaimaa", "Doaa", "Asmaa", "Esraa", "Mai", "Noura", "Hala", "Samar",
	}
	lastNames = []string{
		"Haddad", "Mansour", "Farouk", "Saleh", "Khalil", "Aziz", "Hamdy", "Fawzy",
		"Ghanem", "Nasser", "Soliman", "Shafik", "Zaki", "Rizk", "Badawi", "Hegazy",
		"Abdelrahman", "Sabry", "Mekky", "Darwish", "Lotfy", "Ramadan", "Shawky", "Youssef",
		"Ezzat", "Gaber", "Samy", "Taha", "Mourad", "Hafez", "Salem", "Fahmy",
	}

	englishMaleFirstNames   = []string{"James", "John", "Michael", "David", "Daniel", "Thomas", "Adam", "Ryan"}
	englishFemaleFirstNames = []string{"Emily", "Sarah", "Laura", "Emma", "Hannah", "Grace", "Chloe", "Julia"}
	englishLastNames        = []string{"Smith", "Brown", "Taylor", "Wilson", "Clark", "Walker", "Wright", "Turner"}
)

// GeneratePatient builds a plausible patient with the given id. Gender is "male" or
// "female"; anything else is treated as "female". Birth dates fall 1 to 90 years
// before now.
func GeneratePatient(id int64, gender string, now time.Time, rng *rand.Rand) clinicapi.Patient {
	english := rng.Float64() < EnglishNameProbability

	var first, last string
	switch {
	case english && gender == "male":
		first = englishMaleFirstNames[rng.IntN(len(englishMaleFirstNames))]
	case english:
		first = englishFemaleFirstNames[rng.IntN(len(englishFemaleFirstNames))]
	case gender == "male":
		first = maleFirstNames[rng.IntN(len(maleFirstNames))]
	default:
		first = femaleFirstNames[rng.IntN(len(femaleFirstNames))]
	}
	if english {
		last = englishLastNames[rng.IntN(len(englishLastNames))]
	} else {
		last = lastNames[rng.IntN(len(lastNames))]
	}
	if gender != "male" {
		gender = "female"
	}

	birth := now.AddDate(-(1 + rng.IntN(90)), 0, -rng.IntN(365))
	age := now.Year() - birth.Year()
	if now.YearDay() < birth.YearDay() {
		age--
	}

	return clinicapi.Patient{
		ID:        id,
		FirstName: first,
		LastName:  last,
		Email:     fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(first), strings.ToLower(last), id),
		Phone:     fmt.Sprintf("010%08d", rng.IntN(100000000)),
		Gender:    gender,
		BirthDate: birth.Format("2006-01-02"),
		Age:       clinicapi.FlexString(fmt.Sprint(age)),
	}
}

// AddPatients appends n generated patients after the seeded ones. The same seed
// yields the same patients.
func (f *Fixtures) AddPatients(n int, seed uint64, now time.Time) {
	rng := rand.New(rand.NewPCG(seed, 0))

	f.mu.Lock()
	defer f.mu.Unlock()
	next := int64(0)
	for _, p := range f.patients {
		if p.ID > next {
			next = p.ID
		}
	}
	for i := 0; i < n; i++ {
		next++
		gender := "female"
		if rng.IntN(2) == 0 {
			gender = "male"
		}
		f.patients = append(f.patients, GeneratePatient(next, gender, now, rng))
	}
}
