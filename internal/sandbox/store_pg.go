package sandbox

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mrsinham/clinicdesk/internal/clinicapi"
)

// Schema is the DDL of the postgres store. It is safe to run repeatedly.
const Schema = `
CREATE TABLE IF NOT EXISTS prescriptions (
    id           BIGSERIAL PRIMARY KEY,
    patient_id   BIGINT NOT NULL,
    note         TEXT NOT NULL DEFAULT '',
    status       TEXT NOT NULL DEFAULT 'draft',
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    completed_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS prescription_medicines (
    id              BIGSERIAL PRIMARY KEY,
    prescription_id BIGINT NOT NULL REFERENCES prescriptions (id),
    name            TEXT NOT NULL,
    dose            TEXT NOT NULL,
    frequency       TEXT NOT NULL,
    strength        TEXT NOT NULL,
    until           TEXT NOT NULL,
    when_to_take    TEXT NOT NULL,
    note            TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS medical_infos (
    id              BIGSERIAL PRIMARY KEY,
    prescription_id BIGINT NOT NULL REFERENCES prescriptions (id),
    appointment_id  BIGINT NOT NULL,
    symptoms        TEXT NOT NULL,
    diagnosis       TEXT NOT NULL,
    doctor_note     TEXT NOT NULL,
    patient_note    TEXT NOT NULL DEFAULT '',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_medical_infos_appointment ON medical_infos (appointment_id);
`

// pgConn is the subset of *pgxpool.Pool the store needs.
type pgConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGStore is the postgres implementation of Store.
type PGStore struct {
	db pgConn
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{db: pool}
}

// NewPool opens and pings a connection pool.
func NewPool(ctx context.Context, databaseURL string, maxConns, minConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	cfg.MaxConns = maxConns
	cfg.MinConns = minConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// EnsureSchema creates the tables when they are missing.
func (s *PGStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

const selectPrescription = `SELECT p.id, p.patient_id, p.note, p.status,
    (SELECT count(*) FROM prescription_medicines m WHERE m.prescription_id = p.id)
FROM prescriptions p`

func scanPrescription(row pgx.Row) (Prescription, error) {
	var p Prescription
	err := row.Scan(&p.ID, &p.PatientID, &p.Note, &p.Status, &p.MedicineCount)
	return p, err
}

func (s *PGStore) CreatePrescription(ctx context.Context, patientID int64) (Prescription, error) {
	const query = `INSERT INTO prescriptions (patient_id) VALUES ($1)
RETURNING id, patient_id, note, status, 0`
	p, err := scanPrescription(s.db.QueryRow(ctx, query, patientID))
	if err != nil {
		return Prescription{}, fmt.Errorf("create prescription: %w", err)
	}
	return p, nil
}

func (s *PGStore) GetPrescription(ctx context.Context, id int64) (Prescription, error) {
	p, err := scanPrescription(s.db.QueryRow(ctx, selectPrescription+` WHERE p.id = $1`, id))
	if err != nil {
		return Prescription{}, fmt.Errorf("get prescription %d: %w", id, notFound(err))
	}
	return p, nil
}

func (s *PGStore) AddMedicine(ctx context.Context, m clinicapi.Medicine) (clinicapi.Medicine, error) {
	if _, err := s.GetPrescription(ctx, m.PrescriptionID); err != nil {
		return clinicapi.Medicine{}, err
	}
	const query = `INSERT INTO prescription_medicines
    (prescription_id, name, dose, frequency, strength, until, when_to_take, note)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id`
	err := s.db.QueryRow(ctx, query,
		m.PrescriptionID, m.Name, m.Dose, m.Frequency, m.Strength, m.Until, m.WhenToTake, m.Note,
	).Scan(&m.ID)
	if err != nil {
		return clinicapi.Medicine{}, fmt.Errorf("add medicine: %w", err)
	}
	return m, nil
}

func (s *PGStore) Medicines(ctx context.Context, prescriptionID int64) ([]clinicapi.Medicine, error) {
	const query = `SELECT id, prescription_id, name, dose, frequency, strength, until, when_to_take, note
FROM prescription_medicines WHERE prescription_id = $1 ORDER BY id`
	rows, err := s.db.Query(ctx, query, prescriptionID)
	if err != nil {
		return nil, fmt.Errorf("list medicines: %w", err)
	}
	defer rows.Close()

	var out []clinicapi.Medicine
	for rows.Next() {
		var m clinicapi.Medicine
		if err := rows.Scan(&m.ID, &m.PrescriptionID, &m.Name, &m.Dose, &m.Frequency, &m.Strength, &m.Until, &m.WhenToTake, &m.Note); err != nil {
			return nil, fmt.Errorf("scan medicine: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *PGStore) CompletePrescription(ctx context.Context, id int64, note string) (Prescription, error) {
	const query = `UPDATE prescriptions SET note = $2, status = 'completed', completed_at = now()
WHERE id = $1`
	tag, err := s.db.Exec(ctx, query, id, note)
	if err != nil {
		return Prescription{}, fmt.Errorf("complete prescription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Prescription{}, fmt.Errorf("complete prescription %d: %w", id, ErrNotFound)
	}
	return s.GetPrescription(ctx, id)
}

func (s *PGStore) AddMedicalInfo(ctx context.Context, info clinicapi.MedicalInfo) (clinicapi.MedicalInfo, error) {
	const query = `INSERT INTO medical_infos
    (prescription_id, appointment_id, symptoms, diagnosis, doctor_note, patient_note)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id`
	err := s.db.QueryRow(ctx, query,
		info.PrescriptionID, info.AppointmentID, info.Symptoms, info.Diagnosis, info.DoctorNote, info.PatientNote,
	).Scan(&info.ID)
	if err != nil {
		return clinicapi.MedicalInfo{}, fmt.Errorf("add medical info: %w", err)
	}
	return info, nil
}

func (s *PGStore) MedicalInfoByAppointment(ctx context.Context, appointmentID int64) (clinicapi.MedicalInfo, error) {
	const query = `SELECT id, prescription_id, appointment_id, symptoms, diagnosis, doctor_note, patient_note
FROM medical_infos WHERE appointment_id = $1 ORDER BY id DESC LIMIT 1`
	var info clinicapi.MedicalInfo
	err := s.db.QueryRow(ctx, query, appointmentID).Scan(
		&info.ID, &info.PrescriptionID, &info.AppointmentID, &info.Symptoms, &info.Diagnosis, &info.DoctorNote, &info.PatientNote,
	)
	if err != nil {
		return clinicapi.MedicalInfo{}, fmt.Errorf("medical info for appointment %d: %w", appointmentID, notFound(err))
	}
	return info, nil
}
