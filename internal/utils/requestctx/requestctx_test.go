package requestctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Empty(t, RequestID(context.Background()))
	assert.Empty(t, RequestID(nil)) //nolint:staticcheck
}

func TestAuthToken(t *testing.T) {
	ctx := WithAuthToken(WithRequestID(context.Background(), "req-1"), "tok")
	assert.Equal(t, "tok", AuthToken(ctx))
	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Empty(t, AuthToken(context.Background()))
}

func TestServiceCredentials(t *testing.T) {
	ctx := WithAuthToken(context.Background(), "tok")
	assert.False(t, UsesServiceCredentials(ctx))

	svc := WithServiceCredentials(ctx)
	assert.True(t, UsesServiceCredentials(svc))
	assert.Equal(t, "tok", AuthToken(svc))
	assert.True(t, UsesServiceCredentials(context.WithoutCancel(svc)))
	assert.False(t, UsesServiceCredentials(nil)) //nolint:staticcheck
}
