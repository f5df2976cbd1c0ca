package directory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

// -- Mock Repository --

type mockRepo struct {
	patients map[string]*Patient
	seq      int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{patients: make(map[string]*Patient)}
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	m.seq++
	now := time.Now().UTC()
	p.ID = uuid.New()
	p.PatientID = FormatPatientID(now.Year(), m.seq)
	p.CreatedAt = now
	p.UpdatedAt = now
	m.patients[p.PatientID] = p
	return nil
}

func (m *mockRepo) AppendVisit(_ context.Context, patientID string, v Visit) (*Patient, error) {
	p, ok := m.patients[patientID]
	if !ok {
		return nil, &NotFoundError{PatientID: patientID}
	}
	p.Visits = append(p.Visits, v)
	p.UpdatedAt = v.CreatedAt
	return p, nil
}

func (m *mockRepo) GetByPatientID(_ context.Context, patientID string) (*Patient, error) {
	p, ok := m.patients[patientID]
	if !ok {
		return nil, &NotFoundError{PatientID: patientID}
	}
	return p, nil
}

func (m *mockRepo) ListByDoctor(_ context.Context, doctorUsername string) ([]*Patient, error) {
	var result []*Patient
	for _, p := range m.patients {
		if p.DoctorUsername == doctorUsername {
			result = append(result, p)
		}
	}
	return result, nil
}

func newTestService() *Service {
	return NewService(newMockRepo())
}

func validInput() CreatePatientInput {
	return CreatePatientInput{
		Name:           "Asha Rao",
		Age:            "34",
		Gender:         "Female",
		DoctorUsername: "dr.mehta",
	}
}

func rx(tablet string) Prescription {
	return Prescription{Tablet: tablet, Morning: true, Duration: "5", Dosage: "500mg"}
}

// -- Tests --

func TestCreatePatient(t *testing.T) {
	svc := newTestService()

	p, err := svc.CreatePatient(context.Background(), validInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "Asha Rao" || p.Age != 34 || p.Gender != GenderFemale {
		t.Errorf("demographics not captured: %+v", p)
	}
	if len(p.Visits) != 0 {
		t.Errorf("expected empty visits, got %d", len(p.Visits))
	}

	want := FormatPatientID(time.Now().UTC().Year(), 1)
	if p.PatientID != want {
		t.Errorf("expected patient id %s, got %s", want, p.PatientID)
	}
}

func TestCreatePatient_SequenceIncrements(t *testing.T) {
	svc := newTestService()

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		p, err := svc.CreatePatient(context.Background(), validInput())
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		if seen[p.PatientID] {
			t.Fatalf("duplicate patient id %s", p.PatientID)
		}
		seen[p.PatientID] = true
	}

	year := time.Now().UTC().Year()
	if !seen[FormatPatientID(year, 5)] {
		t.Errorf("expected fifth id %s to be assigned", FormatPatientID(year, 5))
	}
}

func TestCreatePatient_Validation(t *testing.T) {
	svc := newTestService()

	cases := []struct {
		name  string
		amend func(*CreatePatientInput)
	}{
		{"missing name", func(in *CreatePatientInput) { in.Name = "  " }},
		{"missing doctor", func(in *CreatePatientInput) { in.DoctorUsername = "" }},
		{"missing age", func(in *CreatePatientInput) { in.Age = "" }},
		{"non-numeric age", func(in *CreatePatientInput) { in.Age = "forty" }},
		{"zero age", func(in *CreatePatientInput) { in.Age = "0" }},
		{"negative age", func(in *CreatePatientInput) { in.Age = "-3" }},
		{"unknown gender", func(in *CreatePatientInput) { in.Gender = "unknown" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.amend(&in)
			_, err := svc.CreatePatient(context.Background(), in)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestAppendVisit(t *testing.T) {
	svc := newTestService()
	p, _ := svc.CreatePatient(context.Background(), validInput())

	updated, err := svc.AppendVisit(context.Background(), p.PatientID, "fever and cough", []Prescription{rx("Paracetamol")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(updated.Visits) != 1 {
		t.Fatalf("expected 1 visit, got %d", len(updated.Visits))
	}
	v := updated.Visits[0]
	if v.Symptoms != "fever and cough" {
		t.Errorf("symptoms not stored: %q", v.Symptoms)
	}
	if v.CreatedAt.IsZero() {
		t.Error("expected server-assigned createdAt")
	}
}

func TestAppendVisit_OrderPreserving(t *testing.T) {
	svc := newTestService()
	p, _ := svc.CreatePatient(context.Background(), validInput())

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		tick := base.Add(time.Duration(i) * time.Hour)
		svc.now = func() time.Time { return tick }
		if _, err := svc.AppendVisit(context.Background(), p.PatientID, "checkup", []Prescription{rx("Ibuprofen")}); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	got, _ := svc.GetPatient(context.Background(), p.PatientID)
	if len(got.Visits) != 4 {
		t.Fatalf("expected 4 visits, got %d", len(got.Visits))
	}
	for i := 1; i < len(got.Visits); i++ {
		if got.Visits[i].CreatedAt.Before(got.Visits[i-1].CreatedAt) {
			t.Errorf("visit %d created before visit %d", i, i-1)
		}
	}
}

func TestAppendVisit_Validation(t *testing.T) {
	svc := newTestService()
	p, _ := svc.CreatePatient(context.Background(), validInput())

	cases := []struct {
		name          string
		symptoms      string
		prescriptions []Prescription
	}{
		{"empty symptoms", "", []Prescription{rx("Paracetamol")}},
		{"whitespace symptoms", "   ", []Prescription{rx("Paracetamol")}},
		{"no prescriptions", "fever", nil},
		{"prescription without tablet", "fever", []Prescription{rx("")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AppendVisit(context.Background(), p.PatientID, tc.symptoms, tc.prescriptions)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}

	got, _ := svc.GetPatient(context.Background(), p.PatientID)
	if len(got.Visits) != 0 {
		t.Errorf("rejected visits must not persist, found %d", len(got.Visits))
	}
}

func TestAppendVisit_UnknownPatient(t *testing.T) {
	svc := newTestService()

	_, err := svc.AppendVisit(context.Background(), "DOC-2026-999", "fever", []Prescription{rx("Paracetamol")})
	var nfe *NotFoundError
	if !errors.As(err, &nfe) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestGetPatient_RoundTrip(t *testing.T) {
	svc := newTestService()
	created, _ := svc.CreatePatient(context.Background(), validInput())

	got, err := svc.GetPatient(context.Background(), created.PatientID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.PatientID != created.PatientID || got.Name != created.Name ||
		got.Age != created.Age || got.Gender != created.Gender ||
		got.DoctorUsername != created.DoctorUsername {
		t.Errorf("round trip mismatch: created %+v, got %+v", created, got)
	}
	if len(got.Visits) != 0 {
		t.Errorf("expected empty visits array, got %d", len(got.Visits))
	}
}

func TestListByDoctor_IncludesEmptyPatients(t *testing.T) {
	svc := newTestService()
	p1, _ := svc.CreatePatient(context.Background(), validInput())
	svc.CreatePatient(context.Background(), validInput())
	svc.AppendVisit(context.Background(), p1.PatientID, "fever", []Prescription{rx("Paracetamol")})

	patients, err := svc.ListByDoctor(context.Background(), "dr.mehta")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(patients) != 2 {
		t.Errorf("expected both patients regardless of visit count, got %d", len(patients))
	}
}
