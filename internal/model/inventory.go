package model

import (
	"encoding/json"
	"time"
)

// InventoryRecord is one stocked product as reported by the backend.
type InventoryRecord struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	CurrentStock   int        `json:"current_stock"`
	MinimumStock   int        `json:"minimum_stock"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
	Lot            string     `json:"lot,omitempty"`
}

// AlertFlag is a single derived inventory signal.
type AlertFlag uint8

const (
	AlertLowStock AlertFlag = 1 << iota
	AlertNearExpiry
	AlertExpired
)

var alertFlagNames = map[AlertFlag]string{
	AlertLowStock:   "low_stock",
	AlertNearExpiry: "near_expiry",
	AlertExpired:    "expired",
}

// AlertFlags returns every flag in display order.
func AlertFlags() []AlertFlag {
	return []AlertFlag{AlertLowStock, AlertNearExpiry, AlertExpired}
}

// String returns the wire name of the flag.
func (f AlertFlag) String() string {
	if name, ok := alertFlagNames[f]; ok {
		return name
	}
	return "unknown"
}

// AlertSet is a set of alert flags.
type AlertSet uint8

// Has reports whether the flag is in the set.
func (s AlertSet) Has(f AlertFlag) bool {
	return s&AlertSet(f) != 0
}

// With returns the set with the flag added.
func (s AlertSet) With(f AlertFlag) AlertSet {
	return s | AlertSet(f)
}

// Empty reports whether no flag is set.
func (s AlertSet) Empty() bool {
	return s == 0
}

// Flags lists the flags in the set.
func (s AlertSet) Flags() []AlertFlag {
	flags := make([]AlertFlag, 0, 3)
	for _, f := range AlertFlags() {
		if s.Has(f) {
			flags = append(flags, f)
		}
	}
	return flags
}

// Names lists the wire names of the flags in the set.
func (s AlertSet) Names() []string {
	flags := s.Flags()
	names := make([]string, len(flags))
	for i, f := range flags {
		names[i] = f.String()
	}
	return names
}

// MarshalJSON encodes the set as a list of flag names.
func (s AlertSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Names())
}

// UnmarshalJSON decodes a list of flag names, ignoring unknown names.
func (s *AlertSet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	var set AlertSet
	for _, name := range names {
		for f, n := range alertFlagNames {
			if n == name {
				set = set.With(f)
			}
		}
	}
	*s = set
	return nil
}

// InventoryBadge pairs a record with its current alerts.
type InventoryBadge struct {
	Record *InventoryRecord `json:"record"`
	Alerts AlertSet         `json:"alerts"`
}
