package order

import (
	"testing"

	"github.com/drogueria/backoffice/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	employee = model.ActingUser{ID: "e1", Role: model.RoleEmployee}
	admin    = model.ActingUser{ID: "a1", Role: model.RoleAdmin}
	owner    = model.ActingUser{ID: "c1", Role: model.RoleCustomer}
	stranger = model.ActingUser{ID: "c2", Role: model.RoleCustomer}
)

func pendingOrder(id string) *model.Order {
	return &model.Order{
		ID:         id,
		CustomerID: "c1",
		State:      model.OrderStatePending,
		LineItems:  []model.LineItem{{ProductID: "p1", Quantity: 2, UnitPrice: 1500}},
		History:    []model.HistoryEntry{{To: model.OrderStatePending}},
	}
}

func TestPolicy_Check(t *testing.T) {
	p := DefaultPolicy()

	processing := pendingOrder("o1")
	processing.State = model.OrderStateProcessing

	delivered := pendingOrder("o1")
	delivered.State = model.OrderStateDelivered

	noID := pendingOrder("")

	tests := []struct {
		name   string
		user   model.ActingUser
		order  *model.Order
		target model.OrderState
		want   ErrorKind
	}{
		{"employee moves pending to processing", employee, pendingOrder("o1"), model.OrderStateProcessing, ""},
		{"admin delivers processing order", admin, processing, model.OrderStateDelivered, ""},
		{"owner cancels pending order", owner, pendingOrder("o1"), model.OrderStateCancelled, ""},
		{"stranger cancels pending order", stranger, pendingOrder("o1"), model.OrderStateCancelled, KindUnauthorized},
		{"owner cannot process", owner, pendingOrder("o1"), model.OrderStateProcessing, KindUnauthorized},
		{"owner cannot cancel processing by default", owner, processing, model.OrderStateCancelled, KindUnauthorized},
		{"employee cannot cancel delivered", employee, delivered, model.OrderStateCancelled, KindIllegalTransition},
		{"owner cannot cancel delivered", owner, delivered, model.OrderStateCancelled, KindIllegalTransition},
		{"self transition is illegal", employee, pendingOrder("o1"), model.OrderStatePending, KindIllegalTransition},
		{"skipping processing is illegal", admin, pendingOrder("o1"), model.OrderStateDelivered, KindIllegalTransition},
		{"missing id", employee, noID, model.OrderStateProcessing, KindInvalidReference},
		{"nil order", employee, nil, model.OrderStateProcessing, KindInvalidReference},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			te := p.Check(tt.user, tt.order, tt.target)
			if tt.want == "" {
				assert.Nil(t, te)
				return
			}
			require.NotNil(t, te)
			assert.Equal(t, tt.want, te.Kind)
			assert.NotEmpty(t, te.Reason)
			assert.False(t, te.RequiresReload())
		})
	}
}

func TestPolicy_ConfiguredCustomerCancel(t *testing.T) {
	p, err := NewPolicy([]model.OrderState{model.OrderStatePending, model.OrderStateProcessing})
	require.NoError(t, err)

	processing := pendingOrder("o1")
	processing.State = model.OrderStateProcessing

	assert.Nil(t, p.Check(owner, processing, model.OrderStateCancelled))
	assert.Equal(t, []model.OrderState{model.OrderStateCancelled}, p.AllowedFor(owner, processing))
}

func TestNewPolicy_RejectsTerminalStates(t *testing.T) {
	_, err := NewPolicy([]model.OrderState{model.OrderStateDelivered})
	assert.ErrorIs(t, err, ErrInvalidPolicy)
}

func TestPolicy_AllowedFor(t *testing.T) {
	p := DefaultPolicy()

	assert.Equal(t, []model.OrderState{model.OrderStateProcessing, model.OrderStateCancelled}, p.AllowedFor(employee, pendingOrder("o1")))
	assert.Equal(t, []model.OrderState{model.OrderStateCancelled}, p.AllowedFor(owner, pendingOrder("o1")))
	assert.Empty(t, p.AllowedFor(stranger, pendingOrder("o1")))
	assert.Empty(t, p.AllowedFor(admin, nil))

	delivered := pendingOrder("o1")
	delivered.State = model.OrderStateDelivered
	assert.Empty(t, p.AllowedFor(admin, delivered))
}
