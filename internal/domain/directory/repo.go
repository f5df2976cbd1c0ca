package directory

import "context"

// Repository is the persistence boundary for the patient directory.
type Repository interface {
	// Create assigns the next global sequence number, formats the
	// patient identifier and inserts the record. The counter bump and
	// the insert share one transaction so concurrent creates can never
	// collide on a sequence number.
	Create(ctx context.Context, p *Patient) error

	// AppendVisit atomically pushes a visit onto the end of the stored
	// visits array and returns the updated patient. Returns
	// *NotFoundError when no patient has that id.
	AppendVisit(ctx context.Context, patientID string, v Visit) (*Patient, error)

	GetByPatientID(ctx context.Context, patientID string) (*Patient, error)

	// ListByDoctor returns all patients owned by the doctor in creation
	// order, including patients with no visits. Zero-visit filtering is
	// a read-side concern and happens in the stats package.
	ListByDoctor(ctx context.Context, doctorUsername string) ([]*Patient, error)
}
