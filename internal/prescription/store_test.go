package prescription

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/mrsinham/clinicdesk/internal/clinicapi"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) AddPrescription(ctx context.Context, patientID int64) (*clinicapi.Prescription, error) {
	args := m.Called(ctx, patientID)
	if p := args.Get(0); p != nil {
		return p.(*clinicapi.Prescription), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBackend) AddMedicine(ctx context.Context, med clinicapi.Medicine) (*clinicapi.Medicine, error) {
	args := m.Called(ctx, med)
	if p := args.Get(0); p != nil {
		return p.(*clinicapi.Medicine), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBackend) CompletePrescription(ctx context.Context, id int64, note string) (*clinicapi.Prescription, error) {
	args := m.Called(ctx, id, note)
	if p := args.Get(0); p != nil {
		return p.(*clinicapi.Prescription), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBackend) AddMedicalInfo(ctx context.Context, info clinicapi.MedicalInfo) (*clinicapi.MedicalInfo, error) {
	args := m.Called(ctx, info)
	if p := args.Get(0); p != nil {
		return p.(*clinicapi.MedicalInfo), args.Error(1)
	}
	return nil, args.Error(1)
}

var errNetwork = &clinicapi.NetworkError{Method: "POST", Path: "/api/doctor/addMedicine", Err: errors.New("connection refused")}

func amoxicillin() clinicapi.Medicine {
	return clinicapi.Medicine{
		Name:       "Amoxicillin",
		Dose:       "500",
		Frequency:  "Three times a day",
		Strength:   "500mg",
		Until:      "For 7 days",
		WhenToTake: "After meals",
	}
}

func newStoreWithPrescription(t *testing.T, backend *mockBackend) *Store {
	t.Helper()
	backend.On("AddPrescription", mock.Anything, int64(42)).
		Return(&clinicapi.Prescription{ID: 7, PatientID: 42}, nil).Once()
	s := NewStore(backend, zerolog.Nop())
	_, ok := s.CreatePrescription(context.Background(), 42)
	require.True(t, ok)
	return s
}

func TestCreatePrescription(t *testing.T) {
	backend := &mockBackend{}
	s := newStoreWithPrescription(t, backend)

	st := s.Snapshot()
	require.NotNil(t, st.Current)
	assert.Equal(t, int64(7), st.Current.ID)
	assert.Equal(t, clinicapi.StatusDraft, st.Current.Status)
	assert.False(t, st.PrescriptionLoading)
	assert.Empty(t, st.Error)
	backend.AssertExpectations(t)
}

func TestCreatePrescription_Failure(t *testing.T) {
	backend := &mockBackend{}
	backend.On("AddPrescription", mock.Anything, int64(42)).
		Return(nil, &clinicapi.ValidationError{Status: 422, Message: "patient not found"})
	s := NewStore(backend, zerolog.Nop())

	p, ok := s.CreatePrescription(context.Background(), 42)
	assert.False(t, ok)
	assert.Nil(t, p)

	st := s.Snapshot()
	assert.Nil(t, st.Current)
	assert.Equal(t, "patient not found", st.Error)
	assert.False(t, st.PrescriptionLoading)
}

func TestAddMedicine_StampsPrescriptionAndAppends(t *testing.T) {
	backend := &mockBackend{}
	s := newStoreWithPrescription(t, backend)

	want := amoxicillin()
	want.PrescriptionID = 7
	saved := want
	saved.ID = 1
	backend.On("AddMedicine", mock.Anything, want).Return(&saved, nil).Once()

	m, ok := s.AddMedicineToPrescription(context.Background(), amoxicillin())
	require.True(t, ok)
	assert.Equal(t, int64(1), m.ID)

	st := s.Snapshot()
	require.Len(t, st.Medicines, 1)
	assert.Equal(t, int64(7), st.Medicines[0].PrescriptionID)
	assert.False(t, st.MedicineLoading)
	backend.AssertExpectations(t)
}

func TestAddMedicine_WithoutPrescription(t *testing.T) {
	backend := &mockBackend{}
	s := NewStore(backend, zerolog.Nop())

	_, ok := s.AddMedicineToPrescription(context.Background(), amoxicillin())
	assert.False(t, ok)
	assert.Contains(t, s.Snapshot().Error, clinicapi.ErrPrecondition.Error())
	backend.AssertNotCalled(t, "AddMedicine", mock.Anything, mock.Anything)
}

func TestAddMedicine_FailureKeepsEarlierItems(t *testing.T) {
	backend := &mockBackend{}
	s := newStoreWithPrescription(t, backend)

	first := amoxicillin()
	first.PrescriptionID = 7
	backend.On("AddMedicine", mock.Anything, first).Return(&first, nil).Once()
	_, ok := s.AddMedicineToPrescription(context.Background(), amoxicillin())
	require.True(t, ok)

	second := clinicapi.Medicine{Name: "Ibuprofen", PrescriptionID: 7}
	backend.On("AddMedicine", mock.Anything, second).Return(nil, errNetwork).Once()
	_, ok = s.AddMedicineToPrescription(context.Background(), clinicapi.Medicine{Name: "Ibuprofen"})
	assert.False(t, ok)

	st := s.Snapshot()
	assert.Len(t, st.Medicines, 1)
	assert.NotEmpty(t, st.Error)
	assert.False(t, st.MedicineLoading)
}

func TestComplete_LastWriteWins(t *testing.T) {
	backend := &mockBackend{}
	s := newStoreWithPrescription(t, backend)

	med := amoxicillin()
	med.PrescriptionID = 7
	backend.On("AddMedicine", mock.Anything, med).Return(&med, nil)
	_, ok := s.AddMedicineToPrescription(context.Background(), amoxicillin())
	require.True(t, ok)

	backend.On("CompletePrescription", mock.Anything, int64(7), "first").
		Return(&clinicapi.Prescription{ID: 7}, nil).Once()
	backend.On("CompletePrescription", mock.Anything, int64(7), "second").
		Return(&clinicapi.Prescription{ID: 7}, nil).Once()

	_, ok = s.CompletePrescriptionAction(context.Background(), 7, "first")
	require.True(t, ok)
	p, ok := s.CompletePrescriptionAction(context.Background(), 7, "second")
	require.True(t, ok)
	assert.Equal(t, "second", p.Note)

	st := s.Snapshot()
	assert.Equal(t, "second", st.Current.Note)
	assert.Equal(t, clinicapi.StatusCompleted, st.Current.Status)
	backend.AssertExpectations(t)
}

func TestComplete_RequiresMedicine(t *testing.T) {
	backend := &mockBackend{}
	s := newStoreWithPrescription(t, backend)

	_, ok := s.CompletePrescriptionAction(context.Background(), 7, "note")
	assert.False(t, ok)
	assert.NotEmpty(t, s.Snapshot().Error)
	backend.AssertNotCalled(t, "CompletePrescription", mock.Anything, mock.Anything, mock.Anything)
}

func TestComplete_FailureKeepsDraft(t *testing.T) {
	backend := &mockBackend{}
	s := newStoreWithPrescription(t, backend)

	med := amoxicillin()
	med.PrescriptionID = 7
	backend.On("AddMedicine", mock.Anything, med).Return(&med, nil)
	s.AddMedicineToPrescription(context.Background(), amoxicillin())

	backend.On("CompletePrescription", mock.Anything, int64(7), "note").Return(nil, errNetwork)
	_, ok := s.CompletePrescriptionAction(context.Background(), 7, "note")
	assert.False(t, ok)

	st := s.Snapshot()
	assert.Equal(t, clinicapi.StatusDraft, st.Current.Status)
	assert.False(t, st.CompletionLoading)
	assert.Contains(t, st.Error, "Network error")
}

func TestAddMedicalInfo(t *testing.T) {
	backend := &mockBackend{}
	s := newStoreWithPrescription(t, backend)

	info := clinicapi.MedicalInfo{AppointmentID: 9, Symptoms: "fever", Diagnosis: "flu", DoctorNote: "rest advised"}

	_, ok := s.AddMedicalInfo(context.Background(), info)
	assert.False(t, ok, "draft prescription must be rejected")

	med := amoxicillin()
	med.PrescriptionID = 7
	backend.On("AddMedicine", mock.Anything, med).Return(&med, nil)
	backend.On("CompletePrescription", mock.Anything, int64(7), "").Return(&clinicapi.Prescription{ID: 7}, nil)
	s.AddMedicineToPrescription(context.Background(), amoxicillin())
	s.CompletePrescriptionAction(context.Background(), 7, "")

	sent := info
	sent.PrescriptionID = 7
	backend.On("AddMedicalInfo", mock.Anything, sent).Return(&sent, nil).Once()

	out, ok := s.AddMedicalInfo(context.Background(), info)
	require.True(t, ok)
	assert.Equal(t, int64(7), out.PrescriptionID)
	assert.Empty(t, s.Snapshot().Error)
	backend.AssertExpectations(t)
}

func TestAddMedicalInfo_RequiresAppointment(t *testing.T) {
	backend := &mockBackend{}
	s := newStoreWithPrescription(t, backend)
	s.update(func(st *State) { st.Current.Status = clinicapi.StatusCompleted })

	_, ok := s.AddMedicalInfo(context.Background(), clinicapi.MedicalInfo{Diagnosis: "flu"})
	assert.False(t, ok)
	backend.AssertNotCalled(t, "AddMedicalInfo", mock.Anything, mock.Anything)
}

func TestClearAndReset(t *testing.T) {
	backend := &mockBackend{}
	s := newStoreWithPrescription(t, backend)
	s.update(func(st *State) {
		st.Error = "boom"
		st.MedicineLoading = true
		st.Medicines = []clinicapi.Medicine{amoxicillin()}
	})

	s.ClearCurrentPrescription()
	st := s.Snapshot()
	assert.Nil(t, st.Current)
	assert.Empty(t, st.Medicines)
	assert.Empty(t, st.Error)
	assert.True(t, st.MedicineLoading, "clearing keeps loading flags")

	s.Reset()
	assert.Equal(t, State{}, s.Snapshot())
}

func TestLoadingFlagsAreIndependent(t *testing.T) {
	backend := &mockBackend{}
	s := newStoreWithPrescription(t, backend)

	release := make(chan struct{})
	started := make(chan struct{})
	med := amoxicillin()
	med.PrescriptionID = 7
	backend.On("AddMedicine", mock.Anything, med).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(&med, nil)
	backend.On("CompletePrescription", mock.Anything, int64(7), "n").Return(nil, errNetwork)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.AddMedicineToPrescription(context.Background(), amoxicillin())
	}()
	<-started

	// fails on the precondition, the medicine is still in flight
	s.CompletePrescriptionAction(context.Background(), 7, "n")
	st := s.Snapshot()
	assert.True(t, st.MedicineLoading)
	assert.False(t, st.CompletionLoading)

	close(release)
	wg.Wait()
	assert.False(t, s.Snapshot().MedicineLoading)
}

func TestOnChange(t *testing.T) {
	backend := &mockBackend{}
	backend.On("AddPrescription", mock.Anything, int64(42)).Return(&clinicapi.Prescription{ID: 7}, nil)
	s := NewStore(backend, zerolog.Nop())

	var seen []State
	s.OnChange(func(st State) { seen = append(seen, st) })
	s.CreatePrescription(context.Background(), 42)

	require.Len(t, seen, 2)
	assert.True(t, seen[0].PrescriptionLoading)
	assert.False(t, seen[1].PrescriptionLoading)
	assert.Equal(t, int64(7), seen[1].Current.ID)
}

// gate makes a mocked call block until released.
type gate struct {
	entered chan struct{}
	release chan struct{}
}

func newGate() *gate {
	return &gate{entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gate) wait(mock.Arguments) {
	close(g.entered)
	<-g.release
}

func TestCreatePrescription_ClearedWhileInFlight(t *testing.T) {
	backend := &mockBackend{}
	g := newGate()
	backend.On("AddPrescription", mock.Anything, int64(42)).
		Run(g.wait).
		Return(&clinicapi.Prescription{ID: 7, PatientID: 42}, nil).Once()
	s := NewStore(backend, zerolog.Nop())

	done := make(chan bool)
	go func() {
		_, ok := s.CreatePrescription(context.Background(), 42)
		done <- ok
	}()
	<-g.entered
	s.ClearCurrentPrescription()
	close(g.release)

	assert.False(t, <-done)
	st := s.Snapshot()
	assert.Nil(t, st.Current)
	assert.False(t, st.PrescriptionLoading)
	assert.Empty(t, st.Error)
}

func TestAddMedicine_ClearedWhileInFlight(t *testing.T) {
	backend := &mockBackend{}
	s := newStoreWithPrescription(t, backend)

	g := newGate()
	med := amoxicillin()
	med.PrescriptionID = 7
	backend.On("AddMedicine", mock.Anything, med).Run(g.wait).Return(&med, nil).Once()
	backend.On("AddPrescription", mock.Anything, int64(43)).
		Return(&clinicapi.Prescription{ID: 8, PatientID: 43}, nil).Once()

	done := make(chan bool)
	go func() {
		_, ok := s.AddMedicineToPrescription(context.Background(), amoxicillin())
		done <- ok
	}()
	<-g.entered
	s.ClearCurrentPrescription()
	_, ok := s.CreatePrescription(context.Background(), 43)
	require.True(t, ok)
	close(g.release)

	assert.False(t, <-done, "the medicine belongs to prescription 7")
	st := s.Snapshot()
	require.NotNil(t, st.Current)
	assert.Equal(t, int64(8), st.Current.ID)
	assert.Empty(t, st.Medicines)
	assert.False(t, st.MedicineLoading)

	_, ok = s.CompletePrescriptionAction(context.Background(), 8, "")
	assert.False(t, ok)
	assert.Contains(t, s.Snapshot().Error, "no medicine saved")
	backend.AssertNotCalled(t, "CompletePrescription", mock.Anything, mock.Anything, mock.Anything)
}

func TestComplete_ClearedWhileInFlight(t *testing.T) {
	backend := &mockBackend{}
	s := newStoreWithPrescription(t, backend)

	med := amoxicillin()
	med.PrescriptionID = 7
	backend.On("AddMedicine", mock.Anything, med).Return(&med, nil).Once()
	_, ok := s.AddMedicineToPrescription(context.Background(), amoxicillin())
	require.True(t, ok)

	g := newGate()
	backend.On("CompletePrescription", mock.Anything, int64(7), "done").
		Run(g.wait).
		Return(&clinicapi.Prescription{ID: 7}, nil).Once()
	backend.On("AddPrescription", mock.Anything, int64(43)).
		Return(&clinicapi.Prescription{ID: 8, PatientID: 43}, nil).Once()

	done := make(chan bool)
	go func() {
		_, ok := s.CompletePrescriptionAction(context.Background(), 7, "done")
		done <- ok
	}()
	<-g.entered
	s.ClearCurrentPrescription()
	_, ok = s.CreatePrescription(context.Background(), 43)
	require.True(t, ok)
	close(g.release)

	assert.False(t, <-done)
	st := s.Snapshot()
	require.NotNil(t, st.Current)
	assert.Equal(t, clinicapi.StatusDraft, st.Current.Status)
	assert.Empty(t, st.Current.Note)
	assert.False(t, st.CompletionLoading)
}

func TestFailure_ClearedWhileInFlightKeepsNoError(t *testing.T) {
	backend := &mockBackend{}
	s := newStoreWithPrescription(t, backend)

	g := newGate()
	med := amoxicillin()
	med.PrescriptionID = 7
	backend.On("AddMedicine", mock.Anything, med).Run(g.wait).Return(nil, errNetwork).Once()

	done := make(chan bool)
	go func() {
		_, ok := s.AddMedicineToPrescription(context.Background(), amoxicillin())
		done <- ok
	}()
	<-g.entered
	s.ClearCurrentPrescription()
	close(g.release)

	assert.False(t, <-done)
	assert.Empty(t, s.Snapshot().Error)
}
