package models

import "time"

// ShiftRequest is a proposed single-device load shift: move one slot of the
// device's draw from the original timestamp to the new one.
type ShiftRequest struct {
	DeviceID          int64     `json:"device_id"`
	OriginalTimestamp time.Time `json:"original_timestamp"`
	NewTimestamp      time.Time `json:"new_timestamp"`
}

// UsageDataPoint is one row of a predicted usage curve.
type UsageDataPoint struct {
	Timestamp      time.Time `json:"timestamp"`
	ConsumptionKWh float64   `json:"kwh_consumption"`
	Cost           float64   `json:"kwh_cost"`
}

// OptimisationReport is the outcome of a scenario simulation.
type OptimisationReport struct {
	EstimatedSavings    float64          `json:"estimated_savings"`
	BaselineCost        float64          `json:"baseline_cost"`
	ScenarioCost        float64          `json:"scenario_cost"`
	PredictedUsageCurve []UsageDataPoint `json:"predicted_usage_curve"`
}
