package engine

import (
	"time"

	"go.uber.org/zap"

	"greenshift/backend/services/optimiser-service/internal/models"
)

// slotEnergyKWh is one slot's worth of the device's average draw.
func (e *Engine) slotEnergyKWh(device models.Device) float64 {
	return device.AverageDrawKW * e.slot.Hours()
}

// SubtractLoad removes one slot of the device's draw from the curve at the
// given instant and reprices that cell only. Consumption floors at zero. A
// timestamp absent from the curve is a no-op: the input curve is returned
// unchanged with a warning, since clients may shift against a sparse curve.
func (e *Engine) SubtractLoad(curve *UsageCurve, device models.Device, at time.Time) *UsageCurve {
	at = at.UTC()
	row, ok := curve.At(at)
	if !ok {
		e.logger.Warn("timestamp not in usage curve, no subtraction performed",
			zap.Time("timestamp", at),
			zap.Int64("device_id", device.ID),
		)
		return curve
	}

	consumption := row.ConsumptionKWh - e.slotEnergyKWh(device)
	if consumption < 0 {
		consumption = 0
	}

	next := curve.clone()
	row.Timestamp = at
	row.ConsumptionKWh = consumption
	row.Cost = e.rates.CostOf(consumption, at)
	next.put(row)
	return next
}

// AddLoad adds one slot of the device's draw to the curve at the given
// instant and reprices that cell only. Same missing-timestamp no-op policy
// as SubtractLoad; no floor is needed since consumption only grows.
func (e *Engine) AddLoad(curve *UsageCurve, device models.Device, at time.Time) *UsageCurve {
	at = at.UTC()
	row, ok := curve.At(at)
	if !ok {
		e.logger.Warn("timestamp not in usage curve, no addition performed",
			zap.Time("timestamp", at),
			zap.Int64("device_id", device.ID),
		)
		return curve
	}

	consumption := row.ConsumptionKWh + e.slotEnergyKWh(device)

	next := curve.clone()
	row.Timestamp = at
	row.ConsumptionKWh = consumption
	row.Cost = e.rates.CostOf(consumption, at)
	next.put(row)
	return next
}
