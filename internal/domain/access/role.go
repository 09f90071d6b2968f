package access

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/drogueria/backoffice/internal/model"
	"github.com/golang-jwt/jwt/v5"
)

// Session keys consulted for the role, in priority order.
var (
	roleStringKeys  = []string{"rol", "role"}
	roleObjectKeys  = []string{"rol_nuevo", "role"}
	currentRoleKeys = []string{"rol_actual", "current_role"}
	tokenClaimKeys  = []string{"rol", "role", "user_rol"}
	userIDKeys      = []string{"id", "pk", "user_id"}
)

// ResolveRole derives the normalized role from a session snapshot.
// Malformed or missing data resolves to the customer role.
func ResolveRole(session model.Session) (role model.Role) {
	defer func() {
		if recover() != nil {
			role = model.RoleCustomer
		}
	}()

	if session == nil {
		return model.RoleCustomer
	}

	raw := rawRole(session)
	if raw == "" {
		raw = tokenRole(session)
	}
	return normalize(raw, truthy(session["is_superuser"]) || truthy(session["is_staff"]))
}

// ActingUserFrom builds the acting user for a session snapshot.
func ActingUserFrom(session model.Session) model.ActingUser {
	return model.ActingUser{
		ID:   userID(session),
		Role: ResolveRole(session),
	}
}

func rawRole(s model.Session) string {
	for _, k := range roleStringKeys {
		if v, ok := s[k].(string); ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	for _, k := range roleObjectKeys {
		switch v := s[k].(type) {
		case map[string]any:
			for _, nk := range []string{"nombre", "name"} {
				if name, ok := v[nk].(string); ok && strings.TrimSpace(name) != "" {
					return name
				}
			}
		case string:
			if strings.TrimSpace(v) != "" {
				return v
			}
		}
	}
	for _, k := range currentRoleKeys {
		if v, ok := s[k].(string); ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	if groups := groupNames(s["groups"]); len(groups) > 0 {
		return strings.Join(groups, " ")
	}
	return ""
}

func groupNames(v any) []string {
	var out []string
	switch g := v.(type) {
	case []string:
		out = append(out, g...)
	case []any:
		for _, item := range g {
			switch x := item.(type) {
			case string:
				out = append(out, x)
			case map[string]any:
				if name, ok := x["name"].(string); ok {
					out = append(out, name)
				}
			}
		}
	}
	return out
}

// tokenRole reads role claims from the session's access token. The token
// is not verified here; the backend remains the authority on every call.
func tokenRole(s model.Session) string {
	raw, _ := s["token"].(string)
	if raw == "" {
		raw, _ = s["access"].(string)
	}
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))
	if raw == "" {
		return ""
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return ""
	}
	for _, k := range tokenClaimKeys {
		if v, ok := claims[k].(string); ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func normalize(raw string, privileged bool) model.Role {
	role := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case privileged, strings.Contains(role, "admin"):
		return model.RoleAdmin
	case strings.Contains(role, "empleado"),
		strings.Contains(role, "employee"),
		strings.Contains(role, "vendedor"),
		strings.Contains(role, "staff"):
		return model.RoleEmployee
	default:
		return model.RoleCustomer
	}
}

func truthy(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		ok, err := strconv.ParseBool(b)
		return err == nil && ok
	case float64:
		return b != 0
	}
	return false
}

func userID(s model.Session) string {
	for _, k := range userIDKeys {
		switch v := s[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			return strconv.Itoa(v)
		case int64:
			return strconv.FormatInt(v, 10)
		case fmt.Stringer:
			return v.String()
		}
	}
	return ""
}
