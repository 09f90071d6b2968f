package model

// Role is the normalized role of the acting user.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
	RoleCustomer Role = "customer"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// IsStaff reports whether the role may operate on every order.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleEmployee
}

// ActingUser identifies who requests an operation.
type ActingUser struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// Session is the loosely structured user snapshot cached by the client
// at login. It is read-only to the core.
type Session map[string]any
