// Package prescription holds the server-synchronized state of one prescription wizard
// session: the current prescription, its saved line items, per-action loading flags and
// the last error.
package prescription

import (
	"context"
	"fmt"
	"sync"

	"github.com/mrsinham/clinicdesk/internal/clinicapi"
	"github.com/rs/zerolog"
)

// Backend is the part of the clinic API the container talks to.
type Backend interface {
	AddPrescription(ctx context.Context, patientID int64) (*clinicapi.Prescription, error)
	AddMedicine(ctx context.Context, m clinicapi.Medicine) (*clinicapi.Medicine, error)
	CompletePrescription(ctx context.Context, id int64, note string) (*clinicapi.Prescription, error)
	AddMedicalInfo(ctx context.Context, info clinicapi.MedicalInfo) (*clinicapi.MedicalInfo, error)
}

// State is a point-in-time copy of the container.
type State struct {
	Current   *clinicapi.Prescription
	Medicines []clinicapi.Medicine
	Error     string

	PrescriptionLoading bool
	MedicineLoading     bool
	CompletionLoading   bool
	MedicalInfoLoading  bool
}

// Loading reports whether any action is in flight.
func (s State) Loading() bool {
	return s.PrescriptionLoading || s.MedicineLoading || s.CompletionLoading || s.MedicalInfoLoading
}

func (s State) clone() State {
	out := s
	if s.Current != nil {
		p := *s.Current
		out.Current = &p
	}
	out.Medicines = append([]clinicapi.Medicine(nil), s.Medicines...)
	return out
}

// Store is the prescription container. Create one per wizard session.
type Store struct {
	backend Backend
	logger  zerolog.Logger

	mu        sync.Mutex
	state     State
	observers []func(State)
	// epoch changes whenever the current prescription is cleared; results of calls
	// started in an earlier epoch are dropped.
	epoch uint64
}

// NewStore creates an empty container backed by backend.
func NewStore(backend Backend, logger zerolog.Logger) *Store {
	return &Store{
		backend: backend,
		logger:  logger.With().Str("component", "prescription").Logger(),
	}
}

// OnChange registers fn to be called with a snapshot after every mutation.
func (s *Store) OnChange(fn func(State)) {
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// snapshotEpoch returns a copy of the state and the epoch it belongs to.
func (s *Store) snapshotEpoch() (State, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone(), s.epoch
}

// update applies fn under the lock and notifies observers outside of it.
func (s *Store) update(fn func(st *State)) {
	s.mu.Lock()
	fn(&s.state)
	snap := s.state.clone()
	observers := make([]func(State), len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	for _, o := range observers {
		o(snap)
	}
}

// loadingFlag selects the flag an action owns.
type loadingFlag func(st *State) *bool

var (
	prescriptionFlag loadingFlag = func(st *State) *bool { return &st.PrescriptionLoading }
	medicineFlag     loadingFlag = func(st *State) *bool { return &st.MedicineLoading }
	completionFlag   loadingFlag = func(st *State) *bool { return &st.CompletionLoading }
	medicalInfoFlag  loadingFlag = func(st *State) *bool { return &st.MedicalInfoLoading }
)

func (s *Store) begin(flag loadingFlag) {
	s.update(func(st *State) {
		*flag(st) = true
		st.Error = ""
	})
}

// fail clears the flag and records err as the user-facing message, unless the container
// was cleared since epoch.
func (s *Store) fail(flag loadingFlag, epoch uint64, action string, err error) {
	s.logger.Warn().Err(err).Str("action", action).Msg("action failed")
	s.update(func(st *State) {
		*flag(st) = false
		if s.epoch == epoch {
			st.Error = clinicapi.Message(err)
		}
	})
}

func (s *Store) dropped(action string) {
	s.logger.Debug().Str("action", action).Msg("result dropped, container cleared meanwhile")
}

// failPrecondition records a precondition failure without touching any loading flag.
func (s *Store) failPrecondition(action, reason string) {
	err := fmt.Errorf("%s: %w: %s", action, clinicapi.ErrPrecondition, reason)
	s.logger.Warn().Err(err).Str("action", action).Msg("action rejected")
	s.update(func(st *State) { st.Error = err.Error() })
}

// CreatePrescription creates a draft prescription for the patient and makes it current.
// On failure the current prescription stays unset.
func (s *Store) CreatePrescription(ctx context.Context, patientID int64) (*clinicapi.Prescription, bool) {
	_, epoch := s.snapshotEpoch()
	s.begin(prescriptionFlag)

	p, err := s.backend.AddPrescription(ctx, patientID)
	if err != nil {
		s.fail(prescriptionFlag, epoch, "create prescription", err)
		return nil, false
	}
	if p.Status == "" {
		p.Status = clinicapi.StatusDraft
	}

	out := *p
	stale := false
	s.update(func(st *State) {
		st.PrescriptionLoading = false
		if s.epoch != epoch {
			stale = true
			return
		}
		st.Current = p
	})
	if stale {
		s.dropped("create prescription")
		return nil, false
	}
	s.logger.Info().Int64("prescription_id", p.ID).Int64("patient_id", patientID).Msg("prescription created")
	return &out, true
}

// AddMedicineToPrescription saves a line item against the current prescription and
// appends the result. Previously saved items are kept whatever the outcome.
func (s *Store) AddMedicineToPrescription(ctx context.Context, item clinicapi.Medicine) (*clinicapi.Medicine, bool) {
	snap, epoch := s.snapshotEpoch()
	cur := snap.Current
	if cur == nil || cur.ID == 0 {
		s.failPrecondition("add medicine", "no current prescription")
		return nil, false
	}
	item.PrescriptionID = cur.ID

	s.begin(medicineFlag)
	m, err := s.backend.AddMedicine(ctx, item)
	if err != nil {
		s.fail(medicineFlag, epoch, "add medicine", err)
		return nil, false
	}

	out := *m
	stale := false
	s.update(func(st *State) {
		st.MedicineLoading = false
		if s.epoch != epoch || st.Current == nil || st.Current.ID != cur.ID {
			stale = true
			return
		}
		st.Medicines = append(st.Medicines, *m)
	})
	if stale {
		s.dropped("add medicine")
		return nil, false
	}
	s.logger.Info().Int64("prescription_id", cur.ID).Str("medicine", m.Name).Msg("medicine added")
	return &out, true
}

// CompletePrescriptionAction marks prescription id completed with note. Each call
// overwrites the previous note.
func (s *Store) CompletePrescriptionAction(ctx context.Context, id int64, note string) (*clinicapi.Prescription, bool) {
	snap, epoch := s.snapshotEpoch()
	switch {
	case snap.Current == nil || snap.Current.ID != id:
		s.failPrecondition("complete prescription", fmt.Sprintf("prescription %d is not current", id))
		return nil, false
	case len(snap.Medicines) == 0:
		s.failPrecondition("complete prescription", "no medicine saved")
		return nil, false
	}

	s.begin(completionFlag)
	p, err := s.backend.CompletePrescription(ctx, id, note)
	if err != nil {
		s.fail(completionFlag, epoch, "complete prescription", err)
		return nil, false
	}

	stale := false
	s.update(func(st *State) {
		st.CompletionLoading = false
		if s.epoch != epoch || st.Current == nil || st.Current.ID != id {
			stale = true
			return
		}
		st.Current.Note = note
		st.Current.Status = clinicapi.StatusCompleted
	})
	if stale {
		s.dropped("complete prescription")
		return nil, false
	}
	s.logger.Info().Int64("prescription_id", id).Msg("prescription completed")
	out := *p
	out.Note = note
	out.Status = clinicapi.StatusCompleted
	return &out, true
}

// AddMedicalInfo creates the diagnosis record of the current, completed prescription.
// A zero PrescriptionID is filled from the current prescription.
func (s *Store) AddMedicalInfo(ctx context.Context, info clinicapi.MedicalInfo) (*clinicapi.MedicalInfo, bool) {
	snap, epoch := s.snapshotEpoch()
	cur := snap.Current
	if info.PrescriptionID == 0 && cur != nil {
		info.PrescriptionID = cur.ID
	}
	switch {
	case cur == nil || cur.ID != info.PrescriptionID:
		s.failPrecondition("add medical info", "no current prescription")
		return nil, false
	case cur.Status != clinicapi.StatusCompleted:
		s.failPrecondition("add medical info", "prescription is not completed")
		return nil, false
	case info.AppointmentID <= 0:
		s.failPrecondition("add medical info", "no appointment")
		return nil, false
	}

	s.begin(medicalInfoFlag)
	out, err := s.backend.AddMedicalInfo(ctx, info)
	if err != nil {
		s.fail(medicalInfoFlag, epoch, "add medical info", err)
		return nil, false
	}

	stale := false
	s.update(func(st *State) {
		st.MedicalInfoLoading = false
		stale = s.epoch != epoch
	})
	if stale {
		s.dropped("add medical info")
		return nil, false
	}
	s.logger.Info().
		Int64("prescription_id", info.PrescriptionID).
		Int64("appointment_id", info.AppointmentID).
		Msg("medical info added")
	return out, true
}

// ClearCurrentPrescription forgets the prescription, its medicines and the error. Nothing
// is deleted on the backend.
func (s *Store) ClearCurrentPrescription() {
	s.update(func(st *State) {
		s.epoch++
		st.Current = nil
		st.Medicines = nil
		st.Error = ""
	})
}

// ClearError drops the last error message.
func (s *Store) ClearError() {
	s.update(func(st *State) { st.Error = "" })
}

// Reset returns the container to its initial state, loading flags included.
func (s *Store) Reset() {
	s.update(func(st *State) {
		s.epoch++
		*st = State{}
	})
}
