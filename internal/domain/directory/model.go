package directory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Gender is the demographic gender captured at registration.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// Valid reports whether g is one of the known gender values.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// Patient maps to the patient table. Visits are persisted as an embedded
// ordered JSONB array, oldest first; there is no separate visit table.
type Patient struct {
	ID             uuid.UUID `db:"id" json:"id"`
	PatientID      string    `db:"patient_id" json:"patientId"`
	Name           string    `db:"name" json:"name"`
	Age            int       `db:"age" json:"age"`
	Gender         Gender    `db:"gender" json:"gender"`
	DoctorUsername string    `db:"doctor_username" json:"doctorUsername"`
	Visits         []Visit   `db:"visits" json:"visits"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Visit is one clinical encounter embedded under a patient. Visits are
// append-only and immutable once written.
type Visit struct {
	Symptoms      string         `json:"symptoms"`
	Prescriptions []Prescription `json:"prescriptions"`
	CreatedAt     time.Time      `json:"createdAt"`
}

// Prescription is a single medication line within a visit. All three
// schedule flags false is valid and means "no scheduled time".
type Prescription struct {
	Tablet   string `json:"tablet"`
	Morning  bool   `json:"morning"`
	Evening  bool   `json:"evening"`
	Night    bool   `json:"night"`
	Duration string `json:"duration"`
	Dosage   string `json:"dosage"`
}

// LastVisit returns the most recent visit, or nil for a patient with no
// visit history. Visits are insertion-ordered so the last element wins.
func (p *Patient) LastVisit() *Visit {
	if len(p.Visits) == 0 {
		return nil
	}
	return &p.Visits[len(p.Visits)-1]
}

// FormatPatientID renders the clinic-wide identifier for a given creation
// year and global sequence number: DOC-<year>-<seq>, seq zero-padded to at
// least three digits and growing beyond when the counter exceeds 999.
func FormatPatientID(year int, seq int64) string {
	return fmt.Sprintf("DOC-%d-%03d", year, seq)
}
