package model

// ListResponse wraps a collection in the API envelope.
type ListResponse[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
}

// NewListResponse creates a list response.
func NewListResponse[T any](data []T) *ListResponse[T] {
	if data == nil {
		data = []T{}
	}
	return &ListResponse[T]{Data: data, Total: len(data)}
}

// TransitionOptions lists what the acting user may do with an order.
type TransitionOptions struct {
	OrderID string       `json:"order_id"`
	State   OrderState   `json:"state"`
	Allowed []OrderState `json:"allowed"`
}

// TransitionRequest is the body of a state change request.
type TransitionRequest struct {
	Target  OrderState `json:"target" binding:"required"`
	Comment string     `json:"comment"`
}
