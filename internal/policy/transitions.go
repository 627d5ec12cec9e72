package policy

import "martilhaven-backend/internal/domain"

var bookingTransitions = map[domain.BookingStatus][]domain.BookingStatus{
	domain.BookingStatusPending:   {domain.BookingStatusConfirmed, domain.BookingStatusCancelled},
	domain.BookingStatusConfirmed: {domain.BookingStatusCompleted, domain.BookingStatusCancelled},
	domain.BookingStatusCompleted: nil,
	domain.BookingStatusCancelled: nil,
}

var operationTransitions = map[domain.OperationStatus][]domain.OperationStatus{
	domain.OperationStatusActive:    {domain.OperationStatusCompleted},
	domain.OperationStatusCompleted: nil,
}

var propertyTransitions = map[domain.PropertyStatus][]domain.PropertyStatus{
	domain.PropertyStatusPending:  {domain.PropertyStatusApproved, domain.PropertyStatusRejected},
	domain.PropertyStatusApproved: {domain.PropertyStatusRejected},
	domain.PropertyStatusRejected: {domain.PropertyStatusApproved},
}

var forkliftTransitions = map[domain.ForkliftStatus][]domain.ForkliftStatus{
	domain.ForkliftStatusOperational: {domain.ForkliftStatusMaintenance, domain.ForkliftStatusStopped},
	domain.ForkliftStatusMaintenance: {domain.ForkliftStatusOperational, domain.ForkliftStatusStopped},
	domain.ForkliftStatusStopped:     {domain.ForkliftStatusOperational, domain.ForkliftStatusMaintenance},
}

func NextBookingStatuses(from domain.BookingStatus) []domain.BookingStatus {
	return clone(bookingTransitions[from])
}

func NextOperationStatuses(from domain.OperationStatus) []domain.OperationStatus {
	return clone(operationTransitions[from])
}

func NextPropertyStatuses(from domain.PropertyStatus) []domain.PropertyStatus {
	return clone(propertyTransitions[from])
}

func NextForkliftStatuses(from domain.ForkliftStatus) []domain.ForkliftStatus {
	return clone(forkliftTransitions[from])
}

func CanTransitionBooking(from, to domain.BookingStatus) bool {
	return allowed(bookingTransitions, from, to)
}

func CanTransitionOperation(from, to domain.OperationStatus) bool {
	return allowed(operationTransitions, from, to)
}

func CanTransitionProperty(from, to domain.PropertyStatus) bool {
	return allowed(propertyTransitions, from, to)
}

func CanTransitionForklift(from, to domain.ForkliftStatus) bool {
	return allowed(forkliftTransitions, from, to)
}

// BookingHolds reports whether a booking in status s still blocks its property.
func BookingHolds(s domain.BookingStatus) bool {
	return s == domain.BookingStatusPending || s == domain.BookingStatusConfirmed
}

func OperationHolds(s domain.OperationStatus) bool {
	return s == domain.OperationStatusActive
}

func allowed[S comparable](graph map[S][]S, from, to S) bool {
	for _, next := range graph[from] {
		if next == to {
			return true
		}
	}
	return false
}

func clone[S any](in []S) []S {
	if len(in) == 0 {
		return []S{}
	}
	out := make([]S, len(in))
	copy(out, in)
	return out
}
