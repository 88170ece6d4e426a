package services

import "eventhub/internal/domain"

// requireAdmin rejects anonymous callers with ErrUnauthenticated and non-admins with ErrForbidden.
// It runs before any lookup so a missing resource stays hidden from non-admins.
func requireAdmin(actor *domain.Actor) error {
	if actor == nil {
		return domain.ErrUnauthenticated
	}
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	return nil
}

// authorizeRead applies the read rules: public events are open, private and paid need a user.
func authorizeRead(actor *domain.Actor, variant domain.Variant) error {
	if variant != domain.VariantPublic && actor == nil {
		return domain.ErrUnauthenticated
	}
	return nil
}
