package services

import "github.com/yeremiapane/comanda-app/models"

// Actor identifies who is performing an operation. Controllers build it
// from JWT claims; anything ambient ("current user") stops at this type.
type Actor struct {
	ID   uint
	Role models.Role
}

func (a Actor) isAny(roles ...models.Role) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// CanManageOrders covers confirm/reject/deliver/pay and bill handling.
func (a Actor) CanManageOrders() bool {
	return a.isAny(models.RoleWaiter, models.RoleOwner, models.RoleSupervisor)
}

// CanAssignTables covers wait-list attention and table assignment.
func (a Actor) CanAssignTables() bool {
	return a.isAny(models.RoleMaitre, models.RoleWaiter, models.RoleOwner, models.RoleSupervisor)
}

// CanWorkSector reports whether the actor staffs the given sector.
func (a Actor) CanWorkSector(s models.Sector) bool {
	if a.isAny(models.RoleOwner, models.RoleSupervisor) {
		return true
	}
	if s == models.SectorBar {
		return a.Role == models.RoleBartender
	}
	return a.Role == models.RoleChef
}

// CanManageReservations covers confirming/rejecting reservations. The
// maitre runs the door, so they decide alongside owner/supervisor.
func (a Actor) CanManageReservations() bool {
	return a.isAny(models.RoleMaitre, models.RoleOwner, models.RoleSupervisor)
}
