package engine

import (
	"go.uber.org/zap"

	"greenshift/backend/services/optimiser-service/internal/models"
)

// toReport packages the run's metrics and the scenario curve into the final
// report.
func (e *Engine) toReport(savings float64) (*models.OptimisationReport, error) {
	points, err := curvePoints(e.scenario)
	if err != nil {
		return nil, err
	}

	e.logger.Info("structured optimisation report", zap.Int("data_points", len(points)))
	return &models.OptimisationReport{
		EstimatedSavings:    savings,
		BaselineCost:        e.baselineCost,
		ScenarioCost:        e.scenarioCost,
		PredictedUsageCurve: points,
	}, nil
}

// curvePoints maps a curve into an ordered data point sequence, preserving
// curve order. An empty curve maps to an empty sequence.
func curvePoints(curve *UsageCurve) ([]models.UsageDataPoint, error) {
	if curve.Len() == 0 {
		return []models.UsageDataPoint{}, nil
	}
	if !curve.costed {
		return nil, newError(KindInternal, "usage curve is missing cost annotations")
	}

	points := make([]models.UsageDataPoint, 0, curve.Len())
	for _, row := range curve.Rows() {
		points = append(points, models.UsageDataPoint{
			Timestamp:      row.Timestamp,
			ConsumptionKWh: row.ConsumptionKWh,
			Cost:           row.Cost,
		})
	}
	return points, nil
}
