package service

import "martilhaven-backend/internal/domain"

func canManageProperty(actor domain.Actor, p *domain.Property) bool {
	if actor.Role.Privileged() {
		return true
	}
	return actor.Role == domain.RoleOwner && p.OwnerID != "" && p.OwnerID == actor.ID
}

func canSeeBooking(actor domain.Actor, b *domain.Booking, p *domain.Property) bool {
	if b.GuestID != "" && b.GuestID == actor.ID {
		return true
	}
	return canManageProperty(actor, p)
}
