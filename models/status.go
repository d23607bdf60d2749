package models

// Order status values. The literal casing matches what the storefront writes:
// orders start life as "Ordered" and the delivery side effects key off
// "delivered".
const (
	StatusOrdered    = "Ordered"
	StatusProcessing = "Processing"
	StatusShipped    = "Shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "Cancelled"
)

// allowedTransitions is the closed transition table. Cancelled is reachable
// from any non-terminal state; delivered and Cancelled are terminal.
var allowedTransitions = map[string][]string{
	StatusOrdered:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered, StatusCancelled},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// IsValidStatus reports whether s is a known status value.
func IsValidStatus(s string) bool {
	_, ok := allowedTransitions[s]
	return ok
}

// CanTransition reports whether an order may move from one status to the next.
func CanTransition(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminalStatus reports whether no further transitions are allowed from s.
func IsTerminalStatus(s string) bool {
	next, ok := allowedTransitions[s]
	return ok && len(next) == 0
}
