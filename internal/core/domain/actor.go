package domain

import "time"

// Role distinguishes the two sides of the marketplace.
type Role string

const (
	RoleProducer Role = "producer"
	RoleConsumer Role = "consumer"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleProducer || r == RoleConsumer
}

// Actor models a registered marketplace participant.
//
// The session token itself is never stored; TokenHash holds its digest so a
// leaked store cannot be replayed as credentials.
type Actor struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Role        Role      `json:"role"`
	TokenHash   string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IdentityKey is the uniqueness key of an actor: display name and role.
func IdentityKey(displayName string, role Role) string {
	return string(role) + "\x00" + displayName
}
