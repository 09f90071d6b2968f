package access

import (
	"testing"

	"github.com/drogueria/backoffice/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRole(t *testing.T) {
	tests := []struct {
		name    string
		session model.Session
		want    model.Role
	}{
		{"nil session", nil, model.RoleCustomer},
		{"empty session", model.Session{}, model.RoleCustomer},
		{"plain admin", model.Session{"rol": "Administrador"}, model.RoleAdmin},
		{"english role key", model.Session{"role": "employee"}, model.RoleEmployee},
		{"padded and mixed case", model.Session{"rol": "  EMPLEADO  "}, model.RoleEmployee},
		{"seller", model.Session{"rol": "vendedor"}, model.RoleEmployee},
		{"customer", model.Session{"rol": "cliente"}, model.RoleCustomer},
		{"nested role object", model.Session{"rol_nuevo": map[string]any{"nombre": "empleado"}}, model.RoleEmployee},
		{"nested role string", model.Session{"rol_nuevo": "admin"}, model.RoleAdmin},
		{"current role", model.Session{"rol_actual": "empleado"}, model.RoleEmployee},
		{"groups", model.Session{"groups": []any{"ventas", "Empleados"}}, model.RoleEmployee},
		{"string groups", model.Session{"groups": []string{"admins"}}, model.RoleAdmin},
		{"superuser flag", model.Session{"rol": "cliente", "is_superuser": true}, model.RoleAdmin},
		{"staff flag", model.Session{"is_staff": "true"}, model.RoleAdmin},
		{"false flags", model.Session{"is_staff": false, "is_superuser": "no"}, model.RoleCustomer},
		{"blank role falls through to nested", model.Session{"rol": " ", "rol_nuevo": map[string]any{"name": "Employee"}}, model.RoleEmployee},
		{"wrong types", model.Session{"rol": 42, "rol_nuevo": []int{1}, "groups": "admin"}, model.RoleCustomer},
		{"unknown role", model.Session{"rol": "proveedor"}, model.RoleCustomer},
		{"garbage token", model.Session{"token": "not-a-jwt"}, model.RoleCustomer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveRole(tt.session))
		})
	}
}

func TestResolveRole_TokenFallback(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_rol": "empleado", "user_id": 7})
	signed, err := token.SignedString([]byte("any-secret"))
	require.NoError(t, err)

	t.Run("claims used when session has no role", func(t *testing.T) {
		assert.Equal(t, model.RoleEmployee, ResolveRole(model.Session{"token": signed}))
		assert.Equal(t, model.RoleEmployee, ResolveRole(model.Session{"access": "Bearer " + signed}))
	})

	t.Run("session role wins over claims", func(t *testing.T) {
		assert.Equal(t, model.RoleCustomer, ResolveRole(model.Session{"rol": "cliente", "token": signed}))
	})
}

func TestActingUserFrom(t *testing.T) {
	tests := []struct {
		name    string
		session model.Session
		want    model.ActingUser
	}{
		{"json number id", model.Session{"id": float64(12), "rol": "cliente"}, model.ActingUser{ID: "12", Role: model.RoleCustomer}},
		{"string pk", model.Session{"pk": "abc", "rol": "admin"}, model.ActingUser{ID: "abc", Role: model.RoleAdmin}},
		{"user_id", model.Session{"user_id": 5, "rol": "empleado"}, model.ActingUser{ID: "5", Role: model.RoleEmployee}},
		{"no id", model.Session{}, model.ActingUser{Role: model.RoleCustomer}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ActingUserFrom(tt.session))
		})
	}
}
