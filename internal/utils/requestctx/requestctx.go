package requestctx

import "context"

type ctxKey int

const (
	requestIDKey ctxKey = iota
	authTokenKey
	serviceCredentialsKey
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestID(ctx context.Context) string {
	return stringValue(ctx, requestIDKey)
}

// WithAuthToken stores the caller's bearer token so outbound calls act on
// the caller's behalf.
func WithAuthToken(ctx context.Context, token string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, authTokenKey, token)
}

// AuthToken returns the caller's bearer token, if any.
func AuthToken(ctx context.Context) string {
	return stringValue(ctx, authTokenKey)
}

// WithServiceCredentials marks work done on behalf of the service itself,
// such as the scheduled refresh. Outbound calls then use the service token
// and ignore any caller token carried by ctx.
func WithServiceCredentials(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, serviceCredentialsKey, true)
}

// UsesServiceCredentials reports whether ctx was marked by WithServiceCredentials.
func UsesServiceCredentials(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	v, _ := ctx.Value(serviceCredentialsKey).(bool)
	return v
}

func stringValue(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}
	if v := ctx.Value(key); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
