package wizard

import (
	"errors"
	"testing"

	"github.com/mrsinham/clinicdesk/internal/clinicapi"
)

// inBackground runs fn on its own goroutine and returns its result channel.
func inBackground(fn func() error) <-chan error {
	done := make(chan error, 1)
	go func() { done <- fn() }()
	return done
}

func reopen(t *testing.T, s *Session, backend *fakeBackend) {
	t.Helper()
	backend.setNextID(8)
	if err := s.Open(ctx, Patient{ID: 43, Name: "Youssef Mansour", AppointmentID: 116}); err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
}

func TestCancel_WhileOpening(t *testing.T) {
	s, backend, notices := newTestSession(7)
	g := backend.hold("AddPrescription")

	done := inBackground(func() error {
		return s.Open(ctx, Patient{ID: 42, AppointmentID: 9})
	})
	<-g.entered
	s.Cancel()
	close(g.release)

	if err := <-done; !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
	if s.IsOpen() {
		t.Error("a cancelled wizard must stay closed")
	}
	if cur := s.State().Current; cur != nil {
		t.Errorf("expected no current prescription, got %+v", cur)
	}
	if len(*notices) != 0 {
		t.Errorf("expected no notices, got %+v", *notices)
	}
}

func TestCancel_WhileCompleting(t *testing.T) {
	s, backend, _ := openSession(t)
	id := s.Sections()[0].ID
	fillAmoxicillin(s, id)
	if err := s.SaveSection(ctx, id); err != nil {
		t.Fatalf("SaveSection failed: %v", err)
	}

	g := backend.hold("CompletePrescription")
	done := inBackground(func() error { return s.Next(ctx) })
	<-g.entered
	s.Cancel()
	reopen(t, s, backend)
	close(g.release)

	if err := <-done; !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
	if s.Step() != StepMedicines {
		t.Errorf("the new wizard must stay on step 1, got %v", s.Step())
	}
	if saved := s.SavedSections(); len(saved) != 0 {
		t.Errorf("expected no saved sections, got %d", len(saved))
	}
	cur := s.State().Current
	if cur == nil || cur.ID != 8 || cur.Status != clinicapi.StatusDraft {
		t.Errorf("expected draft prescription 8, got %+v", cur)
	}
	if !s.IsOpen() || s.Patient().ID != 43 {
		t.Errorf("the new wizard must stay open for patient 43")
	}
}

func TestCancel_WhileSavingSection(t *testing.T) {
	s, backend, _ := openSession(t)
	id := s.Sections()[0].ID
	fillAmoxicillin(s, id)

	g := backend.hold("AddMedicine")
	done := inBackground(func() error { return s.SaveSection(ctx, id) })
	<-g.entered
	s.Cancel()
	reopen(t, s, backend)
	close(g.release)

	if err := <-done; !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
	st := s.State()
	if st.Current == nil || st.Current.ID != 8 {
		t.Fatalf("expected prescription 8, got %+v", st.Current)
	}
	if len(st.Medicines) != 0 {
		t.Errorf("a medicine of prescription 7 leaked into prescription 8: %+v", st.Medicines)
	}
	if s.CanAdvance() {
		t.Error("Next must stay disabled without a saved section")
	}
	if err := s.Next(ctx); !errors.Is(err, ErrStepLocked) {
		t.Errorf("expected ErrStepLocked, got %v", err)
	}
	if backend.count("CompletePrescription") != 0 {
		t.Error("no completion may be sent for prescription 8")
	}
	if sections := s.Sections(); len(sections) != 1 || sections[0].Saving || sections[0].Saved {
		t.Errorf("unexpected sections: %+v", sections)
	}
}

func TestCancel_WhileSavingDiagnosis(t *testing.T) {
	s, backend, _ := openSession(t)
	toDiagnosis(t, s)
	s.SetDiagnosis(fluDiagnosis())

	g := backend.hold("AddMedicalInfo")
	done := inBackground(func() error { return s.SaveDiagnosis(ctx) })
	<-g.entered
	s.Cancel()
	reopen(t, s, backend)
	close(g.release)

	if err := <-done; !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
	if !s.IsOpen() {
		t.Error("the late diagnosis result closed the new wizard")
	}
	if cur := s.State().Current; cur == nil || cur.ID != 8 {
		t.Errorf("expected prescription 8, got %+v", cur)
	}
}
