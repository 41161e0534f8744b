package models

import "time"

type Player struct {
	ID           int       `json:"id" db:"id"`
	TeamID       int       `json:"team_id" db:"team_id"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	JerseyNumber *int      `json:"jersey_number,omitempty" db:"jersey_number"`
	Position     *string   `json:"position,omitempty" db:"position"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
