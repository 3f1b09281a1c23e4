// Package models defines the client-side data models of the MediaBot client.
package models

import "time"

// Role is the access level the backend assigns to an account.
type Role string

const (
	RoleClient     Role = "client"
	RoleTeamTester Role = "team_tester"
)

// Valid reports whether r is one of the roles the backend issues.
func (r Role) Valid() bool {
	return r == RoleClient || r == RoleTeamTester
}

// User is the account description returned by the login endpoint.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	BusinessID   string `json:"business_id"`
	BusinessName string `json:"business_name"`
	Role         Role   `json:"role"`
	CreatedAt    string `json:"created_at"`
	Status       string `json:"status"`
}

// AuthRecord is the locally persisted session bundle. At most one exists
// per profile.
type AuthRecord struct {
	Token      string
	Email      string
	TenantID   string
	TenantName string
	Role       Role

	// ExpiresAt is set locally at save time and never reconciled with the
	// server-side token lifetime.
	ExpiresAt time.Time
}

// User rebuilds the account view from the stored record. Fields the record
// does not carry (id, creation time) are left empty.
func (r AuthRecord) User() User {
	return User{
		Email:        r.Email,
		BusinessID:   r.TenantID,
		BusinessName: r.TenantName,
		Role:         r.Role,
		Status:       "active",
	}
}
