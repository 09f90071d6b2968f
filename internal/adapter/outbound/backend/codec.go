package backend

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/drogueria/backoffice/internal/model"
)

// Backend state names. The UI also used en_proceso for processing.
var (
	wireToState = map[string]model.OrderState{
		"pendiente":  model.OrderStatePending,
		"pending":    model.OrderStatePending,
		"procesado":  model.OrderStateProcessing,
		"en_proceso": model.OrderStateProcessing,
		"processing": model.OrderStateProcessing,
		"entregado":  model.OrderStateDelivered,
		"delivered":  model.OrderStateDelivered,
		"cancelado":  model.OrderStateCancelled,
		"cancelled":  model.OrderStateCancelled,
		"canceled":   model.OrderStateCancelled,
	}
	stateToWire = map[model.OrderState]string{
		model.OrderStatePending:    "pendiente",
		model.OrderStateProcessing: "procesado",
		model.OrderStateDelivered:  "entregado",
		model.OrderStateCancelled:  "cancelado",
	}
)

// creationState marks the history entry written when an order is created.
const creationState = "creado"

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

var errUnknownShape = errors.New("unrecognized response shape")

// decodeState maps a backend state name onto the canonical state.
// Unknown names pass through lower-cased so the table rejects them.
func decodeState(raw string) model.OrderState {
	key := strings.ToLower(strings.TrimSpace(raw))
	if s, ok := wireToState[key]; ok {
		return s
	}
	if key == creationState {
		return ""
	}
	return model.OrderState(key)
}

// encodeState maps a canonical state onto the backend name.
func encodeState(s model.OrderState) string {
	if w, ok := stateToWire[s]; ok {
		return w
	}
	return string(s)
}

func encodeStates(states []model.OrderState) string {
	out := make([]string, len(states))
	for i, s := range states {
		out[i] = encodeState(s)
	}
	return strings.Join(out, ",")
}

// parseTime accepts the timestamp layouts the backend emits. Unparseable
// values yield the zero time.
func parseTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

// parseDate reads a calendar date, or nil when missing or malformed.
func parseDate(raw string) *time.Time {
	t := parseTime(raw)
	if t.IsZero() {
		return nil
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number: %w", err)
	}
	*f = flexString(n.String())
	return nil
}

// flexInt accepts a JSON number or numeric string.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}
	if s == "" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(string(s), 64)
	if err != nil {
		return fmt.Errorf("invalid integer %q: %w", s, err)
	}
	*f = flexInt(int(v))
	return nil
}

// money is a decimal amount decoded into minor units.
type money int64

func (m *money) UnmarshalJSON(data []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}
	if s == "" {
		*m = 0
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(string(s), ",", ""), 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", s, err)
	}
	*m = money(math.Round(v * 100))
	return nil
}

// reference is either a bare id or an object carrying one.
type reference struct {
	ID     string
	Name   string
	UserID string
}

func (r *reference) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var obj struct {
			ID        flexString `json:"id"`
			Nombre    string     `json:"nombre"`
			Name      string     `json:"name"`
			Usuario   *reference `json:"usuario"`
			UsuarioID flexString `json:"usuario_id"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		r.ID = string(obj.ID)
		r.Name = firstNonEmpty(obj.Nombre, obj.Name)
		r.UserID = string(obj.UsuarioID)
		if r.UserID == "" && obj.Usuario != nil {
			r.UserID = obj.Usuario.ID
		}
		return nil
	}
	var id flexString
	if err := id.UnmarshalJSON(data); err != nil {
		return err
	}
	r.ID = string(id)
	return nil
}

type wireDetail struct {
	Medicamento    reference `json:"medicamento"`
	Producto       reference `json:"producto"`
	Nombre         string    `json:"nombre_medicamento"`
	Cantidad       flexInt   `json:"cantidad"`
	PrecioUnitario money     `json:"precio_unitario"`
}

type wireHistory struct {
	EstadoAnterior string    `json:"estado_anterior"`
	EstadoNuevo    string    `json:"estado_nuevo"`
	Usuario        reference `json:"usuario"`
	Fecha          string    `json:"fecha"`
	Comentario     string    `json:"comentario"`
}

type wireOrder struct {
	ID                 flexString    `json:"id"`
	Cliente            reference     `json:"cliente"`
	UsuarioID          flexString    `json:"usuario_id"`
	Estado             string        `json:"estado"`
	State              string        `json:"state"`
	Detalles           []wireDetail  `json:"detalles"`
	Historial          []wireHistory `json:"historial"`
	FechaCreacion      string        `json:"fecha_creacion"`
	FechaActualizacion string        `json:"fecha_actualizacion"`
	Total              money         `json:"total"`
}

func (w *wireOrder) toModel() *model.Order {
	o := &model.Order{
		ID:         string(w.ID),
		CustomerID: firstNonEmpty(string(w.UsuarioID), w.Cliente.UserID, w.Cliente.ID),
		State:      decodeState(firstNonEmpty(w.Estado, w.State)),
		Total:      int64(w.Total),
		CreatedAt:  parseTime(w.FechaCreacion),
		UpdatedAt:  parseTime(w.FechaActualizacion),
		LineItems:  make([]model.LineItem, 0, len(w.Detalles)),
		History:    make([]model.HistoryEntry, 0, len(w.Historial)),
	}

	for _, d := range w.Detalles {
		product := d.Medicamento
		if product.ID == "" {
			product = d.Producto
		}
		o.LineItems = append(o.LineItems, model.LineItem{
			ProductID: product.ID,
			Name:      firstNonEmpty(product.Name, d.Nombre),
			Quantity:  int(d.Cantidad),
			UnitPrice: int64(d.PrecioUnitario),
		})
	}

	for _, h := range w.Historial {
		o.History = append(o.History, model.HistoryEntry{
			From:      decodeState(h.EstadoAnterior),
			To:        decodeState(h.EstadoNuevo),
			Actor:     firstNonEmpty(h.Usuario.ID, h.Usuario.Name),
			Timestamp: parseTime(h.Fecha),
			Comment:   h.Comentario,
		})
	}
	// The backend lists history newest first.
	sort.SliceStable(o.History, func(i, j int) bool {
		return o.History[i].Timestamp.Before(o.History[j].Timestamp)
	})

	if o.Total == 0 {
		o.Total = o.ComputedTotal()
	}
	return o
}

type wireInventory struct {
	ID               flexString `json:"id"`
	Nombre           string     `json:"nombre"`
	Name             string     `json:"name"`
	StockActual      *flexInt   `json:"stock_actual"`
	CurrentStock     *flexInt   `json:"current_stock"`
	Stock            *flexInt   `json:"stock"`
	StockMinimo      *flexInt   `json:"stock_minimo"`
	MinimumStock     *flexInt   `json:"minimum_stock"`
	FechaVencimiento string     `json:"fecha_vencimiento"`
	ExpirationDate   string     `json:"expiration_date"`
	Lote             string     `json:"lote"`
	Lot              string     `json:"lot"`
}

func (w *wireInventory) toModel() *model.InventoryRecord {
	return &model.InventoryRecord{
		ID:             string(w.ID),
		Name:           firstNonEmpty(w.Nombre, w.Name),
		CurrentStock:   firstInt(w.StockActual, w.CurrentStock, w.Stock),
		MinimumStock:   firstInt(w.StockMinimo, w.MinimumStock),
		ExpirationDate: parseDate(firstNonEmpty(w.FechaVencimiento, w.ExpirationDate)),
		Lot:            firstNonEmpty(w.Lote, w.Lot),
	}
}

type wirePatch struct {
	Estado             string `json:"estado"`
	Comentario         string `json:"comentario"`
	FechaActualizacion string `json:"fecha_actualizacion"`
}

func encodePatch(p model.StatePatch) wirePatch {
	state := encodeState(p.State)
	comment := strings.TrimSpace(p.Comment)
	if comment == "" {
		comment = "Estado cambiado a " + state
	}
	return wirePatch{
		Estado:             state,
		Comentario:         comment,
		FechaActualizacion: p.Timestamp.UTC().Format(time.RFC3339),
	}
}

// page is one decoded listing page.
type page struct {
	items []json.RawMessage
	next  string
}

// decodePage normalizes a bare array, a {results} or {data} envelope, or
// a single object into a list of raw items.
func decodePage(body []byte) (page, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return page{}, nil
	}

	switch body[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(body, &items); err != nil {
			return page{}, err
		}
		return page{items: items}, nil
	case '{':
		var env map[string]json.RawMessage
		if err := json.Unmarshal(body, &env); err != nil {
			return page{}, err
		}
		var p page
		if raw, ok := env["next"]; ok {
			_ = json.Unmarshal(raw, &p.next)
		}
		for _, key := range []string{"results", "data"} {
			raw, ok := env[key]
			if !ok {
				continue
			}
			if bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
				nested, err := decodePage(raw)
				if err != nil {
					return page{}, err
				}
				if p.next == "" {
					p.next = nested.next
				}
				p.items = nested.items
				return p, nil
			}
			if err := json.Unmarshal(raw, &p.items); err != nil {
				return page{}, err
			}
			return p, nil
		}
		if _, ok := env["id"]; ok {
			return page{items: []json.RawMessage{body}}, nil
		}
	}
	return page{}, errUnknownShape
}

// errorMessage extracts a readable message from an error body.
func errorMessage(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return ""
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		text := string(body)
		if len(text) > 200 {
			text = text[:200]
		}
		return text
	}

	switch v := payload.(type) {
	case string:
		return v
	case []any:
		return joinMessages(v)
	case map[string]any:
		for _, key := range []string{"detail", "error", "message"} {
			if s, ok := v[key].(string); ok && s != "" {
				return s
			}
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			msg := ""
			switch fv := v[k].(type) {
			case string:
				msg = fv
			case []any:
				msg = joinMessages(fv)
			}
			if msg == "" {
				continue
			}
			if k == "non_field_errors" {
				parts = append(parts, msg)
			} else {
				parts = append(parts, k+": "+msg)
			}
		}
		return strings.Join(parts, "; ")
	}
	return ""
}

func joinMessages(items []any) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstInt(values ...*flexInt) int {
	for _, v := range values {
		if v != nil {
			return int(*v)
		}
	}
	return 0
}
