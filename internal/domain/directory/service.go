package directory

import (
	"context"
	"strconv"
	"strings"
	"time"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// CreatePatientInput carries the registration form. Age arrives as a
// string on the wire and must parse as a positive integer.
type CreatePatientInput struct {
	Name           string `json:"name"`
	Age            string `json:"age"`
	Gender         string `json:"gender"`
	DoctorUsername string `json:"doctorUsername"`
}

func (s *Service) CreatePatient(ctx context.Context, in CreatePatientInput) (*Patient, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, validationErrorf("name is required")
	}
	if strings.TrimSpace(in.DoctorUsername) == "" {
		return nil, validationErrorf("doctorUsername is required")
	}
	age, err := strconv.Atoi(strings.TrimSpace(in.Age))
	if err != nil || age <= 0 {
		return nil, validationErrorf("age must be a positive integer")
	}
	gender := Gender(strings.TrimSpace(in.Gender))
	if !gender.Valid() {
		return nil, validationErrorf("gender must be Male, Female or Other")
	}

	p := &Patient{
		Name:           strings.TrimSpace(in.Name),
		Age:            age,
		Gender:         gender,
		DoctorUsername: strings.TrimSpace(in.DoctorUsername),
		Visits:         []Visit{},
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// AppendVisit validates and appends one visit to the patient's history.
// The visit timestamp is assigned server-side, never client-supplied.
func (s *Service) AppendVisit(ctx context.Context, patientID, symptoms string, prescriptions []Prescription) (*Patient, error) {
	if strings.TrimSpace(patientID) == "" {
		return nil, validationErrorf("patientId is required")
	}
	if strings.TrimSpace(symptoms) == "" {
		return nil, validationErrorf("symptoms are required")
	}
	if len(prescriptions) == 0 {
		return nil, validationErrorf("at least one prescription is required")
	}
	for i, rx := range prescriptions {
		if strings.TrimSpace(rx.Tablet) == "" {
			return nil, validationErrorf("prescription %d is missing a tablet name", i+1)
		}
	}

	v := Visit{
		Symptoms:      symptoms,
		Prescriptions: prescriptions,
		CreatedAt:     s.now().UTC(),
	}
	return s.repo.AppendVisit(ctx, patientID, v)
}

func (s *Service) GetPatient(ctx context.Context, patientID string) (*Patient, error) {
	return s.repo.GetByPatientID(ctx, patientID)
}

func (s *Service) ListByDoctor(ctx context.Context, doctorUsername string) ([]*Patient, error) {
	return s.repo.ListByDoctor(ctx, doctorUsername)
}
