package httpclient

import (
	"net"
	"net/http"

	"github.com/drogueria/backoffice/internal/infra/config"
	"github.com/drogueria/backoffice/internal/utils/requestctx"
)

// UserAgent identifies this service to the backend.
const UserAgent = "drogueria-backoffice/1.0"

// New creates a new HTTP client with the given configuration. Outgoing
// requests carry the caller's request ID.
func New(cfg config.HTTPClientConfig) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.DialTimeout,
			KeepAlive: cfg.KeepAlive,
		}).DialContext,
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		MaxConnsPerHost:     cfg.MaxConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		TLSHandshakeTimeout: cfg.TLSHandshakeTimeout,
		ForceAttemptHTTP2:   true,
	}

	return &http.Client{
		Transport: &tracingTransport{next: transport},
		Timeout:   cfg.ResponseTimeout,
	}
}

// tracingTransport stamps request metadata onto outgoing requests.
type tracingTransport struct {
	next http.RoundTripper
}

func (t *tracingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	id := requestctx.RequestID(req.Context())
	if id == "" && req.Header.Get("User-Agent") != "" {
		return t.next.RoundTrip(req)
	}

	// RoundTrippers must not modify the caller's request.
	clone := req.Clone(req.Context())
	if clone.Header.Get("User-Agent") == "" {
		clone.Header.Set("User-Agent", UserAgent)
	}
	if id != "" && clone.Header.Get("X-Request-ID") == "" {
		clone.Header.Set("X-Request-ID", id)
	}
	return t.next.RoundTrip(clone)
}
