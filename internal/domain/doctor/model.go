package doctor

import (
	"time"

	"github.com/google/uuid"
)

// Doctor maps to the doctor table. Doctors are provisioned once and not
// mutated in normal operation; the password hash never leaves the server.
type Doctor struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	DisplayName  string    `db:"display_name" json:"doctorName"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
