package models

import "time"

// Reading types recorded against a usage log entry.
const (
	ReadingTypeActual    = "A"
	ReadingTypeSimulated = "S"
)

// Reading is a single half-hourly smart-meter consumption sample.
type Reading struct {
	Timestamp      time.Time `db:"ts" json:"timestamp"`
	MpanID         string    `db:"mpan_id" json:"mpan_id"`
	ConsumptionKWh float64   `db:"kwh_consumption" json:"kwh_consumption"`
	ReadingType    string    `db:"reading_type" json:"reading_type"`
}
