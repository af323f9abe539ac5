package models

import "time"

type Role string

const (
	RoleOwner      Role = "owner"
	RoleSupervisor Role = "supervisor"
	RoleMaitre     Role = "maitre"
	RoleWaiter     Role = "waiter"
	RoleChef       Role = "chef"
	RoleBartender  Role = "bartender"
)

// SupervisorRoles receive payment-completion and new-delivery notices.
var SupervisorRoles = []Role{RoleOwner, RoleSupervisor}

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleSupervisor, RoleMaitre, RoleWaiter, RoleChef, RoleBartender:
		return true
	}
	return false
}

// User is a staff account.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"type:varchar(255);not null" json:"-"`
	Role      Role      `gorm:"type:varchar(20);not null;index" json:"role"`
	Enabled   bool      `gorm:"not null;default:true" json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
