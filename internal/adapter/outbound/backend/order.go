package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/drogueria/backoffice/internal/model"
	"github.com/drogueria/backoffice/internal/port/outbound"
	"go.uber.org/zap"
)

// orderService implements outbound.OrderServicePort over the REST backend.
type orderService struct {
	client *Client
}

// NewOrderService creates an order service adapter.
func NewOrderService(client *Client) outbound.OrderServicePort {
	return &orderService{client: client}
}

// Compile-time interface check
var _ outbound.OrderServicePort = (*orderService)(nil)

func (s *orderService) ListOrders(ctx context.Context, filter model.OrderFilter) ([]*model.Order, error) {
	query := url.Values{}
	query.Set("page_size", strconv.Itoa(s.client.cfg.PageSize))
	if s.client.cfg.Ordering != "" {
		query.Set("ordering", s.client.cfg.Ordering)
	}
	if len(filter.States) > 0 {
		query.Set("estado", encodeStates(filter.States))
	}

	var orders []*model.Order
	err := s.client.paginate(ctx, "list_orders", s.client.resolve(s.client.cfg.OrdersPath, query), func(item json.RawMessage) error {
		var w wireOrder
		if err := json.Unmarshal(item, &w); err != nil {
			return err
		}
		o := w.toModel()
		if o.ID == "" {
			s.client.logger.Debug("skipping order without id")
			return nil
		}
		if len(filter.States) > 0 && !containsState(filter.States, o.State) {
			return nil
		}
		orders = append(orders, o)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *orderService) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	if strings.TrimSpace(id) == "" {
		return nil, &outbound.ServiceError{Op: "get_order", Message: "empty order id", Err: outbound.ErrNotFound}
	}
	body, err := s.client.do(ctx, "get_order", http.MethodGet, s.orderURL(id), nil)
	if err != nil {
		return nil, err
	}
	return decodeOrder("get_order", body)
}

func (s *orderService) PatchState(ctx context.Context, id string, patch model.StatePatch) (*model.Order, error) {
	if strings.TrimSpace(id) == "" {
		return nil, &outbound.ServiceError{Op: "patch_state", Message: "empty order id", Err: outbound.ErrNotFound}
	}
	body, err := s.client.do(ctx, "patch_state", http.MethodPatch, s.orderURL(id), encodePatch(patch))
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		// 204 or empty body: the caller keeps its own record.
		return nil, nil
	}
	o, err := decodeOrder("patch_state", body)
	if err != nil {
		s.client.logger.Warn("undecodable patch response", zap.String("order_id", id), zap.Error(err))
		return nil, nil
	}
	return o, nil
}

func (s *orderService) orderURL(id string) string {
	path := strings.TrimRight(s.client.cfg.OrdersPath, "/") + "/" + url.PathEscape(id) + "/"
	return s.client.resolve(path, nil)
}

func decodeOrder(op string, body []byte) (*model.Order, error) {
	var w wireOrder
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, &outbound.ServiceError{Op: op, Message: "decode order", Err: fmt.Errorf("%w: %v", outbound.ErrUnavailable, err)}
	}
	o := w.toModel()
	if o.ID == "" {
		return nil, &outbound.ServiceError{Op: op, Message: "order without id", Err: outbound.ErrUnavailable}
	}
	return o, nil
}

func containsState(states []model.OrderState, s model.OrderState) bool {
	for _, v := range states {
		if v == s {
			return true
		}
	}
	return false
}

// paginate walks a listing, following next links on the same origin up to
// the configured page limit. A listing that cannot be read to the end
// fails with ErrTruncated so callers never mistake a prefix for the whole.
func (c *Client) paginate(ctx context.Context, op, first string, visit func(json.RawMessage) error) error {
	next := first
	for pageNo := 1; next != ""; pageNo++ {
		if pageNo > c.cfg.MaxPages {
			c.logger.Warn("pagination limit reached", zap.String("op", op), zap.Int("max_pages", c.cfg.MaxPages))
			return &outbound.ServiceError{
				Op:      op,
				Message: fmt.Sprintf("listing has more than %d pages", c.cfg.MaxPages),
				Err:     outbound.ErrTruncated,
			}
		}
		body, err := c.do(ctx, op, http.MethodGet, next, nil)
		if err != nil {
			return err
		}
		p, err := decodePage(body)
		if err != nil {
			return &outbound.ServiceError{Op: op, Message: "decode listing", Err: fmt.Errorf("%w: %v", outbound.ErrUnavailable, err)}
		}
		for _, item := range p.items {
			if err := visit(item); err != nil {
				c.logger.Warn("skipping undecodable item", zap.String("op", op), zap.Error(err))
			}
		}
		next = p.next
		if next != "" && !c.sameOrigin(next) {
			c.logger.Warn("refusing foreign pagination link", zap.String("op", op), zap.String("next", next))
			return &outbound.ServiceError{
				Op:      op,
				Message: "pagination link points outside the backend",
				Err:     outbound.ErrTruncated,
			}
		}
	}
	return nil
}
