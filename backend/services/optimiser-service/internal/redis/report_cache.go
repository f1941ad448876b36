package rediscache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"greenshift/backend/services/optimiser-service/internal/models"
)

// ReportCache keeps recent optimisation reports in redis. Scenario runs are
// deterministic over their inputs, so a cached report is valid until the
// underlying readings change; a short TTL bounds that staleness.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReportCache returns redis-backed cache.
func NewReportCache(client *redis.Client, ttl time.Duration) *ReportCache {
	return &ReportCache{client: client, ttl: ttl}
}

func (c *ReportCache) key(mpanID string, req models.ShiftRequest) string {
	return fmt.Sprintf("optimiser:report:%s:%d:%d:%d",
		mpanID, req.DeviceID, req.OriginalTimestamp.UTC().Unix(), req.NewTimestamp.UTC().Unix())
}

// Save caches a report for the given meter and shift request.
func (c *ReportCache) Save(ctx context.Context, mpanID string, req models.ShiftRequest, report *models.OptimisationReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(mpanID, req), data, c.ttl).Err()
}

// Get returns a cached report, or redis.Nil when absent.
func (c *ReportCache) Get(ctx context.Context, mpanID string, req models.ShiftRequest) (*models.OptimisationReport, error) {
	result, err := c.client.Get(ctx, c.key(mpanID, req)).Result()
	if err != nil {
		return nil, err
	}
	var report models.OptimisationReport
	if err := json.Unmarshal([]byte(result), &report); err != nil {
		return nil, err
	}
	return &report, nil
}
