package inventory

import (
	"sort"
	"time"

	"github.com/drogueria/backoffice/internal/model"
)

// Thresholds parameterizes one evaluation pass.
type Thresholds struct {
	// HorizonDays is how many days ahead an expiration counts as near.
	HorizonDays int
}

// Evaluate computes the alert set of every record, keyed by record id.
// Dates are compared as calendar days in now's location.
func Evaluate(records []*model.InventoryRecord, now time.Time, th Thresholds) map[string]model.AlertSet {
	out := make(map[string]model.AlertSet, len(records))
	today := civilDate(now, now.Location())
	horizon := max(th.HorizonDays, 0)
	limit := today.AddDate(0, 0, horizon)

	for _, r := range records {
		if r == nil {
			continue
		}
		out[r.ID] = evaluateOne(r, today, limit, now.Location())
	}
	return out
}

func evaluateOne(r *model.InventoryRecord, today, limit time.Time, loc *time.Location) model.AlertSet {
	var set model.AlertSet
	if max(r.CurrentStock, 0) <= max(r.MinimumStock, 0) {
		set = set.With(model.AlertLowStock)
	}
	if r.ExpirationDate == nil || r.ExpirationDate.IsZero() {
		return set
	}

	exp := civilDate(*r.ExpirationDate, loc)
	switch {
	case exp.Before(today):
		set = set.With(model.AlertExpired)
	case !exp.After(limit):
		set = set.With(model.AlertNearExpiry)
	}
	return set
}

// civilDate truncates t to midnight of its calendar day in loc. A date
// that carries no time zone keeps its own calendar day.
func civilDate(t time.Time, loc *time.Location) time.Time {
	if t.Location() != time.UTC || loc == time.UTC {
		t = t.In(loc)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// CountByFlag tallies the evaluated sets.
func CountByFlag(alerts map[string]model.AlertSet) model.AlertCounts {
	var c model.AlertCounts
	for _, set := range alerts {
		if set.Empty() {
			continue
		}
		c.ItemsFlagged++
		if set.Has(model.AlertLowStock) {
			c.LowStock++
		}
		if set.Has(model.AlertNearExpiry) {
			c.NearExpiry++
		}
		if set.Has(model.AlertExpired) {
			c.Expired++
		}
	}
	return c
}

// Badges returns the flagged records with their alerts, most urgent first:
// expired, then near expiry by date, then low stock by name.
func Badges(records []*model.InventoryRecord, alerts map[string]model.AlertSet) []model.InventoryBadge {
	badges := make([]model.InventoryBadge, 0)
	for _, r := range records {
		if r == nil {
			continue
		}
		set := alerts[r.ID]
		if set.Empty() {
			continue
		}
		badges = append(badges, model.InventoryBadge{Record: r, Alerts: set})
	}

	sort.SliceStable(badges, func(i, j int) bool {
		a, b := badges[i], badges[j]
		if ra, rb := urgency(a.Alerts), urgency(b.Alerts); ra != rb {
			return ra < rb
		}
		if ea, eb := a.Record.ExpirationDate, b.Record.ExpirationDate; ea != nil && eb != nil && !ea.Equal(*eb) {
			return ea.Before(*eb)
		}
		return a.Record.Name < b.Record.Name
	})
	return badges
}

func urgency(s model.AlertSet) int {
	switch {
	case s.Has(model.AlertExpired):
		return 0
	case s.Has(model.AlertNearExpiry):
		return 1
	default:
		return 2
	}
}
