package order

import "github.com/drogueria/backoffice/internal/model"

// transitions defines valid state transitions. No state leads back to pending.
var transitions = map[model.OrderState][]model.OrderState{
	model.OrderStatePending:    {model.OrderStateProcessing, model.OrderStateCancelled},
	model.OrderStateProcessing: {model.OrderStateDelivered, model.OrderStateCancelled},
	model.OrderStateDelivered:  {}, // Terminal state
	model.OrderStateCancelled:  {}, // Terminal state
}

// AllowedTransitions returns the states reachable from the given state.
// Unknown and terminal states yield an empty set.
func AllowedTransitions(from model.OrderState) []model.OrderState {
	allowed, ok := transitions[from]
	if !ok {
		return []model.OrderState{}
	}
	result := make([]model.OrderState, len(allowed))
	copy(result, allowed)
	return result
}

// IsTransitionAllowed checks if moving from one state to another is legal.
func IsTransitionAllowed(from, to model.OrderState) bool {
	for _, a := range transitions[from] {
		if a == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the state accepts no further transitions.
func IsTerminal(s model.OrderState) bool {
	allowed, ok := transitions[s]
	return ok && len(allowed) == 0
}
