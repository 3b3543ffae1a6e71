package services

import "marketplace-service/models"

// Order lifecycle:
//
//	pending → confirmed → in_preparation → in_transit → delivered
//
// with "cancelled" reachable from any non-terminal state. An administrator
// may set any enumerated status from a non-terminal state, including
// skipping steps; the owning user may only cancel, and only while the
// order is still pending.

var orderStatuses = []string{
	models.StatusPending,
	models.StatusConfirmed,
	models.StatusInPreparation,
	models.StatusInTransit,
	models.StatusDelivered,
	models.StatusCancelled,
}

// ValidOrderStatuses returns the enumerated lifecycle states.
func ValidOrderStatuses() []string {
	out := make([]string, len(orderStatuses))
	copy(out, orderStatuses)
	return out
}

func IsValidStatus(status string) bool {
	for _, s := range orderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func IsTerminalStatus(status string) bool {
	return status == models.StatusDelivered || status == models.StatusCancelled
}

// CanAdminTransition reports whether an administrator may move an order
// from one status to another. Strict linear progression is deliberately
// not enforced for administrators.
func CanAdminTransition(from, to string) bool {
	return IsValidStatus(to) && !IsTerminalStatus(from)
}

// CanOwnerCancel reports whether the owning user may cancel an order in
// the given state.
func CanOwnerCancel(from string) bool {
	return from == models.StatusPending
}
