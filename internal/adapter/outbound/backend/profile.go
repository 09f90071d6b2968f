package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/drogueria/backoffice/internal/model"
	"github.com/drogueria/backoffice/internal/port/outbound"
	"github.com/drogueria/backoffice/internal/utils/requestctx"
)

// profileService implements outbound.ProfileServicePort over the REST backend.
type profileService struct {
	client *Client
}

// NewProfileService creates a profile service adapter.
func NewProfileService(client *Client) outbound.ProfileServicePort {
	return &profileService{client: client}
}

// Compile-time interface check
var _ outbound.ProfileServicePort = (*profileService)(nil)

// GetProfile always acts as the caller. Service credentials are never used
// to vouch for a user.
func (s *profileService) GetProfile(ctx context.Context) (model.Session, error) {
	if requestctx.AuthToken(ctx) == "" || requestctx.UsesServiceCredentials(ctx) {
		return nil, &outbound.ServiceError{Op: "get_profile", Message: "no caller token", Err: outbound.ErrSessionExpired}
	}
	body, err := s.client.do(ctx, "get_profile", http.MethodGet, s.client.resolve(s.client.cfg.ProfilePath, nil), nil)
	if err != nil {
		return nil, err
	}

	var profile model.Session
	if len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, &profile); err != nil {
			return nil, &outbound.ServiceError{Op: "get_profile", Message: "decode profile", Err: fmt.Errorf("%w: %v", outbound.ErrUnavailable, err)}
		}
	}
	if profile == nil {
		return nil, &outbound.ServiceError{Op: "get_profile", Message: "empty profile", Err: outbound.ErrUnavailable}
	}
	return profile, nil
}
