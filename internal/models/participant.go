// internal/models/participant.go
package models

import "time"

type Role string

const (
	RoleCreator    Role = "creator"
	RoleInvestor   Role = "investor"
	RoleProduction Role = "production"
)

// Participant is a marketplace account: a pitch creator, an investor, or a
// production company.
type Participant struct {
	ID           string     `json:"id"`
	Role         Role       `json:"role"`
	Name         string     `json:"name"`
	CompanyName  string     `json:"companyName,omitempty"`
	LastActiveAt *time.Time `json:"lastActiveAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}
