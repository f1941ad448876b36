package engine

import (
	"time"

	"greenshift/backend/services/optimiser-service/internal/models"
)

// Row is one cell of a usage curve.
type Row struct {
	Timestamp      time.Time
	ConsumptionKWh float64
	Cost           float64
}

// UsageCurve is an ordered usage/cost timeline keyed by UTC-normalised
// timestamp. Simulation steps never mutate a curve in place: each step
// clones first, so earlier curves stay valid for inspection.
type UsageCurve struct {
	order  []time.Time
	rows   map[int64]Row
	costed bool
}

func newUsageCurve(capacity int, costed bool) *UsageCurve {
	return &UsageCurve{
		order:  make([]time.Time, 0, capacity),
		rows:   make(map[int64]Row, capacity),
		costed: costed,
	}
}

// RawCurve builds an un-costed curve straight from readings, for consumers
// that only need the consumption timeline. TotalCost and report mapping
// refuse such curves.
func RawCurve(readings []models.Reading) *UsageCurve {
	curve := newUsageCurve(len(readings), false)
	for _, r := range readings {
		ts := r.Timestamp.UTC()
		curve.put(Row{Timestamp: ts, ConsumptionKWh: r.ConsumptionKWh})
	}
	return curve
}

// Len returns the number of rows.
func (c *UsageCurve) Len() int {
	if c == nil {
		return 0
	}
	return len(c.order)
}

// At looks up the row keyed by the given instant, normalised to UTC.
func (c *UsageCurve) At(t time.Time) (Row, bool) {
	if c == nil {
		return Row{}, false
	}
	row, ok := c.rows[t.UnixNano()]
	return row, ok
}

// Rows returns the rows in curve order. The slice is a copy.
func (c *UsageCurve) Rows() []Row {
	if c == nil {
		return nil
	}
	rows := make([]Row, 0, len(c.order))
	for _, ts := range c.order {
		rows = append(rows, c.rows[ts.UnixNano()])
	}
	return rows
}

// put inserts or overwrites the row for its timestamp. An overwritten row
// keeps its original position. Reports whether an existing row was replaced.
func (c *UsageCurve) put(row Row) bool {
	key := row.Timestamp.UnixNano()
	if _, exists := c.rows[key]; exists {
		c.rows[key] = row
		return true
	}
	c.order = append(c.order, row.Timestamp)
	c.rows[key] = row
	return false
}

// clone returns a fresh copy sharing nothing with the receiver.
func (c *UsageCurve) clone() *UsageCurve {
	next := newUsageCurve(len(c.order), c.costed)
	next.order = append(next.order, c.order...)
	for key, row := range c.rows {
		next.rows[key] = row
	}
	return next
}
