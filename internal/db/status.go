package db

// BookingStatus is persisted as a string.
type BookingStatus string

const (
	StatusPending   BookingStatus = "PENDING"
	StatusConfirmed BookingStatus = "CONFIRMED"
	StatusCancelled BookingStatus = "CANCELLED"
	StatusCompleted BookingStatus = "COMPLETED"
)

// allowedTransitions is the booking lifecycle as a directed graph.
// CANCELLED and COMPLETED are terminal.
var allowedTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCancelled, StatusCompleted},
	StatusCancelled: {},
	StatusCompleted: {},
}

// CanTransition reports whether from -> to is an allowed lifecycle edge.
func CanTransition(from, to BookingStatus) bool {
	allowed, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

func ValidStatus(s BookingStatus) bool {
	_, ok := allowedTransitions[s]
	return ok
}
