package staff

import (
	"time"

	"github.com/google/uuid"
)

// Doctor is an entry in the hospital's doctor directory. The consultation
// fee is billed when a consultation for this doctor is recorded.
type Doctor struct {
	ID              uuid.UUID `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	Department      string    `db:"department" json:"department"`
	ConsultationFee float64   `db:"consultation_fee" json:"consultation_fee"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// Account is a staff login credential. The password hash never leaves the
// server.
type Account struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Name         string    `db:"name" json:"name"`
	Role         string    `db:"role" json:"role"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
