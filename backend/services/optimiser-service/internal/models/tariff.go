package models

// Tariff is a time-of-use energy plan. RateSchedule maps band names
// ("peak", "off_peak") to a rate in pence per kWh.
type Tariff struct {
	ID                 int64              `db:"id" json:"tariff_id"`
	Provider           string             `db:"provider" json:"provider"`
	PaymentType        string             `db:"payment_type" json:"payment_type"`
	Region             string             `db:"region" json:"region"`
	StandingChargePerDay float64          `db:"standing_charge_pd" json:"standing_charge_pd"`
	CarbonScore        int                `db:"carbon_score" json:"carbon_score"`
	RateSchedule       map[string]float64 `db:"rate_schedule" json:"rate_schedule"`
}
