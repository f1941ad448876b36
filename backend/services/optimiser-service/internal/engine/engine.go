package engine

import (
	"math"
	"time"

	"go.uber.org/zap"

	"greenshift/backend/services/optimiser-service/internal/models"
)

// Defaults match half-hourly UK smart-meter data with a 16:00-19:00 peak
// window. Both are configurable because they are assumptions of one data
// source, not laws of the domain.
const (
	DefaultPeakStartHour = 16
	DefaultPeakEndHour   = 19
	DefaultSlotDuration  = 30 * time.Minute
)

// Option configures an Engine.
type Option func(*Engine)

// WithPeakWindow overrides the daily peak window, in clock hours
// [startHour, endHour).
func WithPeakWindow(startHour, endHour int) Option {
	return func(e *Engine) {
		e.peakStart = startHour
		e.peakEnd = endHour
	}
}

// WithSlotDuration overrides the reading slot granularity.
func WithSlotDuration(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.slot = d
		}
	}
}

// WithLogger attaches a logger for warnings and progress.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Engine simulates the cost impact of shifting a shiftable device's load
// between time slots. One instance is built per scenario request from
// already-fetched context; it holds no shared state and is discarded after
// producing its report.
type Engine struct {
	property models.Property
	tariff   models.Tariff
	readings []models.Reading

	rates     *RateModel
	peakStart int
	peakEnd   int
	slot      time.Duration
	logger    *zap.Logger

	baseline     *UsageCurve
	scenario     *UsageCurve
	baselineCost float64
	scenarioCost float64
}

// New builds an engine over the supplied context.
func New(property models.Property, tariff models.Tariff, readings []models.Reading, opts ...Option) *Engine {
	e := &Engine{
		property:  property,
		tariff:    tariff,
		readings:  readings,
		peakStart: DefaultPeakStartHour,
		peakEnd:   DefaultPeakEndHour,
		slot:      DefaultSlotDuration,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.rates = NewRateModel(tariff, e.peakStart, e.peakEnd)
	return e
}

// RunScenario chains validation, baseline construction, the two shift steps
// and cost aggregation into a final savings report.
func (e *Engine) RunScenario(req models.ShiftRequest) (*models.OptimisationReport, error) {
	device, err := e.validateShift(req.DeviceID)
	if err != nil {
		return nil, err
	}

	e.baseline = e.BuildCurve(e.readings)
	e.baselineCost, err = e.TotalCost(e.baseline)
	if err != nil {
		return nil, err
	}

	// Order matters: the energy moves from A to B, so the addition applies
	// to the subtracted curve, not to the baseline.
	subtracted := e.SubtractLoad(e.baseline, device, req.OriginalTimestamp)
	e.scenario = e.AddLoad(subtracted, device, req.NewTimestamp)

	e.scenarioCost, err = e.TotalCost(e.scenario)
	if err != nil {
		return nil, err
	}

	savings, err := e.finalSavings(e.baselineCost, e.scenarioCost)
	if err != nil {
		return nil, err
	}

	return e.toReport(savings)
}

// BaselineCurve returns the unmodified as-recorded curve from the last run.
func (e *Engine) BaselineCurve() *UsageCurve { return e.baseline }

// ScenarioCurve returns the post-shift curve from the last run.
func (e *Engine) ScenarioCurve() *UsageCurve { return e.scenario }

// validateShift resolves the device within the property and checks it may
// be shifted.
func (e *Engine) validateShift(deviceID int64) (models.Device, error) {
	device, ok := e.property.DeviceByID(deviceID)
	if !ok {
		return models.Device{}, newError(KindNotFound, "device %d not found in property %d", deviceID, e.property.ID)
	}
	if !device.IsShiftable {
		return models.Device{}, newError(KindInvalidOperation, "device %q is not shiftable", device.Name)
	}
	return device, nil
}

// BuildCurve converts raw readings into a cost-annotated curve keyed by
// UTC-normalised timestamp, so lookups from UTC-normalised request
// timestamps match exactly. Empty input yields an empty curve. A duplicate
// timestamp overwrites the earlier row (last write wins) and is logged as a
// data-quality concern.
func (e *Engine) BuildCurve(readings []models.Reading) *UsageCurve {
	curve := newUsageCurve(len(readings), true)
	if len(readings) == 0 {
		e.logger.Warn("no readings supplied for usage curve")
		return curve
	}

	for _, r := range readings {
		ts := r.Timestamp.UTC()
		row := Row{
			Timestamp:      ts,
			ConsumptionKWh: r.ConsumptionKWh,
			Cost:           e.rates.CostOf(r.ConsumptionKWh, ts),
		}
		if replaced := curve.put(row); replaced {
			e.logger.Warn("duplicate reading timestamp, last write wins",
				zap.Time("timestamp", ts),
				zap.String("mpan_id", r.MpanID),
			)
		}
	}
	return curve
}

// TotalCost sums cost across the curve. An empty curve totals zero. A curve
// without cost annotations signals a calling bug.
func (e *Engine) TotalCost(curve *UsageCurve) (float64, error) {
	if curve.Len() == 0 {
		return 0, nil
	}
	if !curve.costed {
		return 0, newError(KindInternal, "usage curve is missing cost annotations")
	}

	var total float64
	for _, row := range curve.Rows() {
		total += row.Cost
	}
	return total, nil
}

// finalSavings rounds the cost delta to currency granularity.
func (e *Engine) finalSavings(baselineCost, scenarioCost float64) (float64, error) {
	if !isFinite(baselineCost) || !isFinite(scenarioCost) {
		return 0, newError(KindInvalidInput, "cost values must be finite numbers")
	}

	savings := math.Round((baselineCost-scenarioCost)*100) / 100
	e.logger.Info("calculated final savings",
		zap.Float64("savings", savings),
		zap.Float64("baseline_cost", baselineCost),
		zap.Float64("scenario_cost", scenarioCost),
	)
	return savings, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
