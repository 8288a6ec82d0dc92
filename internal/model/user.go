package model

import "time"

// Role is the single role an actor holds.
type Role string

const (
	RoleClient         Role = "CLIENT"
	RoleServiceCompany Role = "SERVICE"
	RoleManager        Role = "MANAGER"
)

// Roles lists every role in a stable order.
func Roles() []Role {
	return []Role{RoleClient, RoleServiceCompany, RoleManager}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleServiceCompany, RoleManager:
		return true
	}
	return false
}

// User is an authenticated actor: a client, a service company or a manager.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;size:150;not null"`
	FirstName    string `gorm:"size:150"`
	PasswordHash string `gorm:"size:255;not null"`
	Role         Role   `gorm:"size:20;not null;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
