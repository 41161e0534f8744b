package models

import "time"

type UserRole string

const (
	RoleOrganizer UserRole = "ORGANIZER"
	RoleReferee   UserRole = "REFEREE"
)

func (r UserRole) Valid() bool {
	return r == RoleOrganizer || r == RoleReferee
}

type User struct {
	ID           int       `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         UserRole  `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Principal is the authenticated identity attached to every mutating call.
// Credential verification happens at the transport boundary; the core only
// ever sees the resulting (user, role) pair.
type Principal struct {
	UserID int      `json:"user_id"`
	Role   UserRole `json:"role"`
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
