package domain

import "time"

// Role distinguishes the two kinds of actors.
type Role string

const (
	RoleDriver    Role = "driver"
	RoleRequester Role = "requester"
)

// ProfileStatus represents whether an account may act.
type ProfileStatus string

const (
	ProfileStatusActive   ProfileStatus = "active"
	ProfileStatusInactive ProfileStatus = "inactive"
)

// Profile is the identity record of a driver or requester.
type Profile struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	City      string
	Role      Role
	Status    ProfileStatus
	CreatedAt time.Time
}

// IsActive reports whether the profile may perform mutating operations.
func (p *Profile) IsActive() bool {
	return p.Status == ProfileStatusActive
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   string
	Role Role
}

// Actor returns the caller identity carried by p.
func (p *Profile) Actor() Actor {
	return Actor{ID: p.ID, Role: p.Role}
}
