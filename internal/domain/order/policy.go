package order

import (
	"fmt"

	"github.com/drogueria/backoffice/internal/model"
)

// Policy decides which transitions an acting user may request.
// Staff may request anything the table allows. Customers may only cancel
// their own orders, and only from the configured source states.
type Policy struct {
	customerCancellable map[model.OrderState]bool
}

// DefaultPolicy lets customers cancel only pending orders.
func DefaultPolicy() *Policy {
	p, _ := NewPolicy([]model.OrderState{model.OrderStatePending})
	return p
}

// NewPolicy creates a policy. Every state must allow cancellation in the table.
func NewPolicy(customerCancellable []model.OrderState) (*Policy, error) {
	p := &Policy{customerCancellable: make(map[model.OrderState]bool, len(customerCancellable))}
	for _, s := range customerCancellable {
		if !IsTransitionAllowed(s, model.OrderStateCancelled) {
			return nil, fmt.Errorf("%w: %q cannot be cancelled", ErrInvalidPolicy, s)
		}
		p.customerCancellable[s] = true
	}
	return p, nil
}

// CustomerMayCancelFrom reports whether a customer may cancel from the state.
func (p *Policy) CustomerMayCancelFrom(s model.OrderState) bool {
	return p.customerCancellable[s]
}

// Check validates a request in order: role, table, then the customer
// source-state rule, then the order reference.
func (p *Policy) Check(user model.ActingUser, ord *model.Order, target model.OrderState) *TransitionError {
	if ord == nil {
		return newTransitionError(KindInvalidReference, nil, target, "no order was given")
	}

	customer := !user.Role.IsStaff()
	if customer {
		if target != model.OrderStateCancelled {
			return newTransitionError(KindUnauthorized, ord, target, "customers may only cancel orders")
		}
		if !ord.OwnedBy(user.ID) {
			return newTransitionError(KindUnauthorized, ord, target, "customers may only cancel their own orders")
		}
	}

	if !IsTransitionAllowed(ord.State, target) {
		reason := fmt.Sprintf("cannot move from %s to %s", ord.State, target)
		if IsTerminal(ord.State) {
			reason = fmt.Sprintf("the order is already %s", ord.State)
		}
		return newTransitionError(KindIllegalTransition, ord, target, reason)
	}

	if customer && !p.CustomerMayCancelFrom(ord.State) {
		return newTransitionError(KindUnauthorized, ord, target,
			fmt.Sprintf("customers cannot cancel an order that is %s", ord.State))
	}

	if ord.ID == "" {
		return newTransitionError(KindInvalidReference, ord, target, "the order has no identifier")
	}
	return nil
}

// AllowedFor returns the targets the user may request for the order.
func (p *Policy) AllowedFor(user model.ActingUser, ord *model.Order) []model.OrderState {
	if ord == nil {
		return []model.OrderState{}
	}
	if user.Role.IsStaff() {
		return AllowedTransitions(ord.State)
	}
	if ord.OwnedBy(user.ID) && p.CustomerMayCancelFrom(ord.State) {
		return []model.OrderState{model.OrderStateCancelled}
	}
	return []model.OrderState{}
}
