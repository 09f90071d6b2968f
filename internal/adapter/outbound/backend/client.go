// Package backend adapts the pharmacy REST backend to the outbound ports.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/drogueria/backoffice/internal/port/outbound"
	"github.com/drogueria/backoffice/internal/utils/requestctx"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const maxBodyBytes = 8 << 20

// errServerStatus marks a 5xx response so the breaker counts it.
var errServerStatus = errors.New("server error status")

// RequestRecorder receives per-request measurements.
type RequestRecorder interface {
	RecordBackendRequest(operation string, status int, duration time.Duration)
}

// Config describes the backend endpoints.
type Config struct {
	BaseURL       string
	ServiceToken  string
	OrdersPath    string
	InventoryPath string
	ProfilePath   string
	PageSize      int
	MaxPages      int
	Ordering      string
}

// BreakerConfig configures the circuit breaker guarding the backend.
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// response is a fully read backend response.
type response struct {
	status int
	body   []byte
}

// Client performs authenticated JSON requests against the backend.
type Client struct {
	http     *http.Client
	base     *url.URL
	cfg      Config
	breaker  *gobreaker.CircuitBreaker[*response]
	recorder RequestRecorder
	logger   *zap.Logger
}

// NewClient creates a backend client.
func NewClient(httpClient *http.Client, cfg Config, bc BreakerConfig, recorder RequestRecorder, logger *zap.Logger) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid backend base url %q", cfg.BaseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 50
	}
	if cfg.ProfilePath == "" {
		cfg.ProfilePath = "usuarios/perfil/"
	}
	threshold := bc.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	c := &Client{
		http:     httpClient,
		base:     base,
		cfg:      cfg,
		recorder: recorder,
		logger:   logger.Named("backend"),
	}

	settings := gobreaker.Settings{
		Name:        "backend",
		MaxRequests: bc.MaxRequests,
		Interval:    bc.Interval,
		Timeout:     bc.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// Client errors and caller cancellations say nothing about backend health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}
	c.breaker = gobreaker.NewCircuitBreaker[*response](settings)
	return c, nil
}

// BreakerState returns the current breaker state.
func (c *Client) BreakerState() gobreaker.State {
	return c.breaker.State()
}

// resolve builds an absolute URL from a path relative to the base URL.
func (c *Client) resolve(path string, query url.Values) string {
	u := *c.base
	u.Path = c.base.Path + strings.TrimLeft(path, "/")
	u.RawQuery = query.Encode()
	return u.String()
}

// sameOrigin reports whether a pagination link points at the backend.
func (c *Client) sameOrigin(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme == c.base.Scheme && u.Host == c.base.Host
}

// do sends a request and maps any failure onto the outbound error classes.
// The response body is returned for 2xx statuses only.
func (c *Client) do(ctx context.Context, op, method, rawURL string, payload any) ([]byte, error) {
	var body []byte
	if payload != nil {
		var err error
		if body, err = json.Marshal(payload); err != nil {
			return nil, &outbound.ServiceError{Op: op, Message: "encode request", Err: fmt.Errorf("%w: %v", outbound.ErrRejected, err)}
		}
	}

	start := time.Now()
	resp, err := c.breaker.Execute(func() (*response, error) {
		return c.send(ctx, method, rawURL, body)
	})
	status := 0
	if resp != nil {
		status = resp.status
	}
	if c.recorder != nil {
		c.recorder.RecordBackendRequest(op, status, time.Since(start))
	}

	if err != nil && !errors.Is(err, errServerStatus) {
		msg := err.Error()
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			msg = "backend temporarily unavailable"
		}
		c.logger.Warn("backend request failed",
			zap.String("op", op),
			zap.String("method", method),
			zap.String("request_id", requestctx.RequestID(ctx)),
			zap.Error(err))
		return nil, &outbound.ServiceError{Op: op, Message: msg, Err: fmt.Errorf("%w: %w", outbound.ErrUnavailable, err)}
	}

	if status >= 200 && status < 300 {
		c.logger.Debug("backend request",
			zap.String("op", op),
			zap.String("method", method),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)))
		return resp.body, nil
	}

	serr := &outbound.ServiceError{Op: op, StatusCode: status, Message: errorMessage(resp.body), Err: classifyStatus(status)}
	c.logger.Info("backend request rejected",
		zap.String("op", op),
		zap.String("method", method),
		zap.Int("status", status),
		zap.String("message", serr.Message))
	return nil, serr
}

func (c *Client) send(ctx context.Context, method, rawURL string, body []byte) (*response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	httpResp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	resp := &response{status: httpResp.StatusCode, body: data}
	if httpResp.StatusCode >= 500 {
		return resp, errServerStatus
	}
	return resp, nil
}

// token returns the service token for service work and the caller's token
// otherwise. A request without a caller token is sent unauthenticated.
func (c *Client) token(ctx context.Context) string {
	if requestctx.UsesServiceCredentials(ctx) {
		return c.cfg.ServiceToken
	}
	return requestctx.AuthToken(ctx)
}

// classifyStatus maps a non-2xx status onto an outbound error class.
func classifyStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized:
		return outbound.ErrSessionExpired
	case status == http.StatusForbidden:
		return outbound.ErrForbidden
	case status == http.StatusNotFound:
		return outbound.ErrNotFound
	case status == http.StatusBadRequest, status == http.StatusConflict, status == http.StatusUnprocessableEntity:
		return outbound.ErrRejected
	default:
		return outbound.ErrUnavailable
	}
}
