package directory

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const patientCols = `id, patient_id, name, age, gender, doctor_username, visits, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return &PersistenceError{Op: "begin create patient", Err: err}
	}
	defer tx.Rollback(ctx)

	// Single-row counter bumped under its row lock. This replaces a
	// count-then-insert pattern, which can hand the same sequence number
	// to two concurrent creates.
	var seq int64
	err = tx.QueryRow(ctx,
		`UPDATE patient_counter SET value = value + 1 WHERE id = 1 RETURNING value`,
	).Scan(&seq)
	if err != nil {
		return &PersistenceError{Op: "next patient sequence", Err: err}
	}

	now := time.Now().UTC()
	p.ID = uuid.New()
	p.PatientID = FormatPatientID(now.Year(), seq)
	if p.Visits == nil {
		p.Visits = []Visit{}
	}
	p.CreatedAt = now
	p.UpdatedAt = now

	visitsJSON, err := json.Marshal(p.Visits)
	if err != nil {
		return &PersistenceError{Op: "encode visits", Err: err}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO patient (id, patient_id, name, age, gender, doctor_username, visits, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		p.ID, p.PatientID, p.Name, p.Age, p.Gender, p.DoctorUsername, visitsJSON, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return &PersistenceError{Op: "insert patient", Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return &PersistenceError{Op: "commit create patient", Err: err}
	}
	return nil
}

func (r *repoPG) AppendVisit(ctx context.Context, patientID string, v Visit) (*Patient, error) {
	visitJSON, err := json.Marshal(v)
	if err != nil {
		return nil, &PersistenceError{Op: "encode visit", Err: err}
	}

	// Atomic push against the stored document. Concurrent appends to the
	// same patient serialize on the row lock, so neither update is lost.
	row := r.pool.QueryRow(ctx, `
		UPDATE patient
		SET visits = visits || $2::jsonb, updated_at = NOW()
		WHERE patient_id = $1
		RETURNING `+patientCols,
		patientID, visitJSON,
	)
	p, err := scanPatient(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{PatientID: patientID}
		}
		return nil, &PersistenceError{Op: "append visit", Err: err}
	}
	return p, nil
}

func (r *repoPG) GetByPatientID(ctx context.Context, patientID string) (*Patient, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+patientCols+` FROM patient WHERE patient_id = $1`, patientID)
	p, err := scanPatient(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{PatientID: patientID}
		}
		return nil, &PersistenceError{Op: "get patient", Err: err}
	}
	return p, nil
}

func (r *repoPG) ListByDoctor(ctx context.Context, doctorUsername string) ([]*Patient, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+patientCols+` FROM patient WHERE doctor_username = $1 ORDER BY created_at`, doctorUsername)
	if err != nil {
		return nil, &PersistenceError{Op: "list patients", Err: err}
	}
	defer rows.Close()

	var patients []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, &PersistenceError{Op: "scan patient", Err: err}
		}
		patients = append(patients, p)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "iterate patients", Err: err}
	}
	return patients, nil
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	var visitsJSON []byte
	err := row.Scan(
		&p.ID, &p.PatientID, &p.Name, &p.Age, &p.Gender, &p.DoctorUsername,
		&visitsJSON, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(visitsJSON, &p.Visits); err != nil {
		return nil, err
	}
	if p.Visits == nil {
		p.Visits = []Visit{}
	}
	return &p, nil
}
