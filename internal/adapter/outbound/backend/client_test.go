package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/drogueria/backoffice/internal/model"
	"github.com/drogueria/backoffice/internal/port/outbound"
	"github.com/drogueria/backoffice/internal/utils/requestctx"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRecorder struct {
	calls []string
}

func (r *fakeRecorder) RecordBackendRequest(operation string, status int, _ time.Duration) {
	r.calls = append(r.calls, fmt.Sprintf("%s:%d", operation, status))
}

func newTestClient(t *testing.T, srv *httptest.Server, threshold uint32) (*Client, *fakeRecorder) {
	t.Helper()
	rec := &fakeRecorder{}
	client, err := NewClient(srv.Client(), Config{
		BaseURL:       srv.URL + "/api",
		ServiceToken:  "svc-token",
		OrdersPath:    "pedidos/pedidos/",
		InventoryPath: "inventario/medicamentos/",
		PageSize:      2,
		MaxPages:      3,
		Ordering:      "-fecha_creacion",
	}, BreakerConfig{FailureThreshold: threshold, Timeout: time.Minute}, rec, zap.NewNop())
	require.NoError(t, err)
	return client, rec
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	_, err := NewClient(nil, Config{BaseURL: "not a url"}, BreakerConfig{}, nil, nil)
	assert.Error(t, err)
	_, err = NewClient(nil, Config{BaseURL: ""}, BreakerConfig{}, nil, nil)
	assert.Error(t, err)
}

func TestOrderService_ListOrders_Pagination(t *testing.T) {
	var srvURL string
	var auth []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = append(auth, r.Header.Get("Authorization"))
		assert.Equal(t, "/api/pedidos/pedidos/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("page") {
		case "":
			assert.Equal(t, "-fecha_creacion", r.URL.Query().Get("ordering"))
			assert.Equal(t, "2", r.URL.Query().Get("page_size"))
			fmt.Fprintf(w, `{"count":3,"next":"%s/api/pedidos/pedidos/?page=2","results":[{"id":1,"estado":"pendiente"},{"id":2,"estado":"entregado"}]}`, srvURL)
		case "2":
			fmt.Fprint(w, `{"next":null,"results":[{"id":3,"estado":"procesado"},{"estado":"pendiente"}]}`)
		}
	}))
	defer srv.Close()
	srvURL = srv.URL

	client, rec := newTestClient(t, srv, 5)
	svc := NewOrderService(client)

	ctx := requestctx.WithAuthToken(context.Background(), "user-token")
	orders, err := svc.ListOrders(ctx, model.OrderFilter{})
	require.NoError(t, err)

	require.Len(t, orders, 3, "orders without id are skipped")
	assert.Equal(t, "1", orders[0].ID)
	assert.Equal(t, model.OrderStateDelivered, orders[1].State)
	assert.Equal(t, model.OrderStateProcessing, orders[2].State)
	assert.Equal(t, []string{"Bearer user-token", "Bearer user-token"}, auth)
	assert.Equal(t, []string{"list_orders:200", "list_orders:200"}, rec.calls)
}

func TestOrderService_ListOrders_StateFilter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "pendiente,procesado", r.URL.Query().Get("estado"))
		// The backend may ignore the filter; the adapter filters again.
		fmt.Fprint(w, `[{"id":1,"estado":"pendiente"},{"id":2,"estado":"cancelado"},{"id":3,"estado":"procesado"}]`)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv, 5)
	orders, err := NewOrderService(client).ListOrders(context.Background(), model.OrderFilter{
		States: []model.OrderState{model.OrderStatePending, model.OrderStateProcessing},
	})
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "1", orders[0].ID)
	assert.Equal(t, "3", orders[1].ID)
}

func TestOrderService_ListOrders_PageLimitAndForeignLinks(t *testing.T) {
	t.Run("fails past max pages", func(t *testing.T) {
		var hits atomic.Int32
		var srvURL string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			n := hits.Add(1)
			fmt.Fprintf(w, `{"next":"%s/api/pedidos/pedidos/?page=%d","results":[{"id":%d,"estado":"pendiente"}]}`, srvURL, n+1, n)
		}))
		defer srv.Close()
		srvURL = srv.URL

		client, _ := newTestClient(t, srv, 5)
		orders, err := NewOrderService(client).ListOrders(context.Background(), model.OrderFilter{})
		assert.ErrorIs(t, err, outbound.ErrTruncated)
		assert.Nil(t, orders)
		assert.Equal(t, int32(3), hits.Load())
	})

	t.Run("last page within the limit succeeds", func(t *testing.T) {
		var hits atomic.Int32
		var srvURL string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			n := hits.Add(1)
			if n == 3 {
				fmt.Fprint(w, `{"next":null,"results":[{"id":3,"estado":"pendiente"}]}`)
				return
			}
			fmt.Fprintf(w, `{"next":"%s/api/pedidos/pedidos/?page=%d","results":[{"id":%d,"estado":"pendiente"}]}`, srvURL, n+1, n)
		}))
		defer srv.Close()
		srvURL = srv.URL

		client, _ := newTestClient(t, srv, 5)
		orders, err := NewOrderService(client).ListOrders(context.Background(), model.OrderFilter{})
		require.NoError(t, err)
		assert.Len(t, orders, 3)
	})

	t.Run("refuses links to other hosts", func(t *testing.T) {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			fmt.Fprint(w, `{"next":"http://elsewhere.example/?page=2","results":[{"id":1,"estado":"pendiente"}]}`)
		}))
		defer srv.Close()

		client, _ := newTestClient(t, srv, 5)
		_, err := NewOrderService(client).ListOrders(context.Background(), model.OrderFilter{})
		assert.ErrorIs(t, err, outbound.ErrTruncated)
		assert.Equal(t, int32(1), hits.Load())
	})

	t.Run("inventory listing is truncated the same way", func(t *testing.T) {
		var srvURL string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `{"next":"%s/api/inventario/medicamentos/?page=2","results":[{"id":1,"nombre":"Gasa"}]}`, srvURL)
		}))
		defer srv.Close()
		srvURL = srv.URL

		client, _ := newTestClient(t, srv, 5)
		_, err := NewInventoryService(client).Snapshot(context.Background())
		assert.ErrorIs(t, err, outbound.ErrTruncated)
	})
}

func TestClient_Credentials(t *testing.T) {
	var auth []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = append(auth, r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"id":9,"estado":"pendiente"}`)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv, 5)
	svc := NewOrderService(client)

	_, err := svc.GetOrder(requestctx.WithAuthToken(context.Background(), "user-token"), "9")
	require.NoError(t, err)
	_, err = svc.GetOrder(context.Background(), "9")
	require.NoError(t, err)
	_, err = svc.GetOrder(requestctx.WithServiceCredentials(context.Background()), "9")
	require.NoError(t, err)
	service := requestctx.WithServiceCredentials(requestctx.WithAuthToken(context.Background(), "user-token"))
	_, err = svc.GetOrder(service, "9")
	require.NoError(t, err)

	assert.Equal(t, []string{"Bearer user-token", "", "Bearer svc-token", "Bearer svc-token"}, auth,
		"the service token is only sent for service work")
}

func TestProfileService_GetProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/usuarios/perfil/", r.URL.Path)
		switch r.Header.Get("Authorization") {
		case "Bearer staff-token":
			fmt.Fprint(w, `{"id":5,"username":"ana","rol":"empleado","is_staff":false}`)
		case "Bearer stale-token":
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"detail":"Token inválido"}`)
		default:
			fmt.Fprint(w, `null`)
		}
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv, 5)
	svc := NewProfileService(client)

	profile, err := svc.GetProfile(requestctx.WithAuthToken(context.Background(), "staff-token"))
	require.NoError(t, err)
	assert.Equal(t, "empleado", profile["rol"])
	assert.Equal(t, float64(5), profile["id"])

	_, err = svc.GetProfile(requestctx.WithAuthToken(context.Background(), "stale-token"))
	assert.ErrorIs(t, err, outbound.ErrSessionExpired)

	_, err = svc.GetProfile(requestctx.WithAuthToken(context.Background(), "odd-token"))
	assert.ErrorIs(t, err, outbound.ErrUnavailable)

	_, err = svc.GetProfile(context.Background())
	assert.ErrorIs(t, err, outbound.ErrSessionExpired)

	_, err = svc.GetProfile(requestctx.WithServiceCredentials(requestctx.WithAuthToken(context.Background(), "staff-token")))
	assert.ErrorIs(t, err, outbound.ErrSessionExpired, "service credentials never vouch for a user")
}

func TestOrderService_GetOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		if r.URL.Path != "/api/pedidos/pedidos/9/" {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"detail":"No encontrado."}`)
			return
		}
		fmt.Fprint(w, `{"id":9,"usuario_id":4,"estado":"pendiente","total":"20.00"}`)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv, 5)
	svc := NewOrderService(client)

	o, err := svc.GetOrder(context.Background(), "9")
	require.NoError(t, err)
	assert.Equal(t, "9", o.ID)
	assert.Equal(t, "4", o.CustomerID)
	assert.Equal(t, int64(2000), o.Total)

	_, err = svc.GetOrder(context.Background(), "10")
	assert.ErrorIs(t, err, outbound.ErrNotFound)
	var serr *outbound.ServiceError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusNotFound, serr.StatusCode)
	assert.Equal(t, "No encontrado.", serr.Message)

	_, err = svc.GetOrder(context.Background(), " ")
	assert.ErrorIs(t, err, outbound.ErrNotFound)
}

func TestOrderService_PatchState(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/pedidos/pedidos/5/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		fmt.Fprint(w, `{"id":5,"estado":"procesado","historial":[{"estado_anterior":"pendiente","estado_nuevo":"procesado","fecha":"2024-06-10T12:00:00Z"}]}`)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv, 5)
	ts := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	o, err := NewOrderService(client).PatchState(context.Background(), "5", model.StatePatch{
		State:     model.OrderStateProcessing,
		Timestamp: ts,
	})
	require.NoError(t, err)
	require.NotNil(t, o)
	assert.Equal(t, model.OrderStateProcessing, o.State)
	assert.Len(t, o.History, 1)

	assert.Equal(t, map[string]any{
		"estado":              "procesado",
		"comentario":          "Estado cambiado a procesado",
		"fecha_actualizacion": "2024-06-10T12:00:00Z",
	}, got)
}

func TestOrderService_PatchState_EmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv, 5)
	o, err := NewOrderService(client).PatchState(context.Background(), "5", model.StatePatch{State: model.OrderStateCancelled})
	require.NoError(t, err)
	assert.Nil(t, o)
}

func TestClient_StatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    error
		message string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"detail":"Token expirado"}`, outbound.ErrSessionExpired, "Token expirado"},
		{"forbidden", http.StatusForbidden, `{"detail":"Sin permiso"}`, outbound.ErrForbidden, "Sin permiso"},
		{"not found", http.StatusNotFound, ``, outbound.ErrNotFound, ""},
		{"bad request", http.StatusBadRequest, `{"estado":["Transición inválida"]}`, outbound.ErrRejected, "estado: Transición inválida"},
		{"unprocessable", http.StatusUnprocessableEntity, `{"error":"no"}`, outbound.ErrRejected, "no"},
		{"server error", http.StatusInternalServerError, `oops`, outbound.ErrUnavailable, "oops"},
		{"bad gateway", http.StatusBadGateway, ``, outbound.ErrUnavailable, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			client, _ := newTestClient(t, srv, 5)
			_, err := NewOrderService(client).PatchState(context.Background(), "1", model.StatePatch{State: model.OrderStateDelivered})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var serr *outbound.ServiceError
			require.ErrorAs(t, err, &serr)
			assert.Equal(t, tt.status, serr.StatusCode)
			assert.Equal(t, tt.message, serr.Message)
			assert.Equal(t, "patch_state", serr.Op)
		})
	}
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client, rec := newTestClient(t, srv, 5)
	srv.Close()

	_, err := NewOrderService(client).GetOrder(context.Background(), "1")
	require.Error(t, err)
	assert.ErrorIs(t, err, outbound.ErrUnavailable)
	assert.Equal(t, []string{"get_order:0"}, rec.calls)
}

func TestClient_BreakerTripsOnServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv, 2)
	svc := NewOrderService(client)

	for i := 0; i < 2; i++ {
		_, err := svc.GetOrder(context.Background(), "1")
		assert.ErrorIs(t, err, outbound.ErrUnavailable)
	}
	assert.Equal(t, gobreaker.StateOpen, client.BreakerState())

	_, err := svc.GetOrder(context.Background(), "1")
	assert.ErrorIs(t, err, outbound.ErrUnavailable)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(2), hits.Load(), "open breaker must not reach the backend")
}

func TestClient_ClientErrorsDoNotTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv, 2)
	svc := NewOrderService(client)
	for i := 0; i < 4; i++ {
		_, err := svc.PatchState(context.Background(), "1", model.StatePatch{State: model.OrderStateDelivered})
		assert.ErrorIs(t, err, outbound.ErrRejected)
	}
	assert.Equal(t, gobreaker.StateClosed, client.BreakerState())
}

func TestInventoryService_Snapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/inventario/medicamentos/", r.URL.Path)
		fmt.Fprint(w, `{"data":[
			{"id":1,"nombre":"Ibuprofeno","stock_actual":3,"stock_minimo":5,"fecha_vencimiento":"2025-01-31"},
			{"id":2,"nombre":"Gasa","stock_actual":40,"stock_minimo":5,"fecha_vencimiento":null},
			{"nombre":"Sin id"}
		]}`)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv, 5)
	records, err := NewInventoryService(client).Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Ibuprofeno", records[0].Name)
	require.NotNil(t, records[0].ExpirationDate)
	assert.Nil(t, records[1].ExpirationDate)
}

func TestInventoryService_SnapshotFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv, 5)
	_, err := NewInventoryService(client).Snapshot(context.Background())
	assert.ErrorIs(t, err, outbound.ErrForbidden)
}

func TestClient_DeadlineStaysVisible(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client, _ := newTestClient(t, srv, 5)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewOrderService(client).GetOrder(ctx, "1")
	assert.ErrorIs(t, err, outbound.ErrUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
