package order

import (
	"testing"

	"github.com/drogueria/backoffice/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowedTransitions(t *testing.T) {
	tests := []struct {
		from model.OrderState
		want []model.OrderState
	}{
		{model.OrderStatePending, []model.OrderState{model.OrderStateProcessing, model.OrderStateCancelled}},
		{model.OrderStateProcessing, []model.OrderState{model.OrderStateDelivered, model.OrderStateCancelled}},
		{model.OrderStateDelivered, []model.OrderState{}},
		{model.OrderStateCancelled, []model.OrderState{}},
		{model.OrderState("shipped"), []model.OrderState{}},
		{model.OrderState(""), []model.OrderState{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			assert.Equal(t, tt.want, AllowedTransitions(tt.from))
		})
	}
}

func TestAllowedTransitions_ReturnsCopy(t *testing.T) {
	got := AllowedTransitions(model.OrderStatePending)
	require.Len(t, got, 2)
	got[0] = model.OrderStateDelivered

	assert.Equal(t, model.OrderStateProcessing, AllowedTransitions(model.OrderStatePending)[0])
}

func TestIsTransitionAllowed(t *testing.T) {
	t.Run("matches the table for every pair", func(t *testing.T) {
		for _, from := range model.OrderStates() {
			allowed := AllowedTransitions(from)
			for _, to := range model.OrderStates() {
				assert.Equal(t, contains(allowed, to), IsTransitionAllowed(from, to), "%s -> %s", from, to)
			}
		}
	})

	t.Run("self transitions are illegal", func(t *testing.T) {
		for _, s := range model.OrderStates() {
			assert.False(t, IsTransitionAllowed(s, s))
		}
	})

	t.Run("nothing returns to pending", func(t *testing.T) {
		for _, s := range model.OrderStates() {
			assert.False(t, IsTransitionAllowed(s, model.OrderStatePending))
		}
	})
}

func TestTransitionTable_Terminates(t *testing.T) {
	// Every walk through the table reaches a terminal state within
	// as many steps as there are states.
	var walk func(s model.OrderState, depth int)
	walk = func(s model.OrderState, depth int) {
		require.LessOrEqual(t, depth, len(model.OrderStates()), "cycle through %s", s)
		next := AllowedTransitions(s)
		if len(next) == 0 {
			assert.True(t, IsTerminal(s))
			return
		}
		for _, n := range next {
			walk(n, depth+1)
		}
	}
	walk(model.OrderStatePending, 0)
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(model.OrderStateDelivered))
	assert.True(t, IsTerminal(model.OrderStateCancelled))
	assert.False(t, IsTerminal(model.OrderStatePending))
	assert.False(t, IsTerminal(model.OrderStateProcessing))
	assert.False(t, IsTerminal(model.OrderState("unknown")))
}

func contains(states []model.OrderState, s model.OrderState) bool {
	for _, x := range states {
		if x == s {
			return true
		}
	}
	return false
}
