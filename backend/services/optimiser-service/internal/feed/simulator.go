package feed

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"greenshift/backend/services/optimiser-service/internal/models"
)

// Broadcaster delivers a feed message to all subscribers.
type Broadcaster interface {
	Broadcast(msg []byte)
}

// Config controls the synthetic meter feed.
type Config struct {
	MpanID       string
	Tick         time.Duration // wall-clock interval between emissions
	SlotDuration time.Duration // simulated time advanced per emission
	BaseLoadKW   float64
	Seed         int64 // 0 seeds from the clock
}

// Simulator emits synthetic half-hourly readings over the hub, standing in
// for a live smart-meter feed. The simulated clock advances one slot per
// tick regardless of wall-clock speed.
type Simulator struct {
	cfg    Config
	hub    Broadcaster
	logger *zap.Logger
	clock  time.Time
	rng    *rand.Rand
}

// NewSimulator builds a simulator starting at the current slot boundary.
func NewSimulator(cfg Config, hub Broadcaster, logger *zap.Logger) *Simulator {
	if cfg.Tick <= 0 {
		cfg.Tick = 5 * time.Second
	}
	if cfg.SlotDuration <= 0 {
		cfg.SlotDuration = 30 * time.Minute
	}
	if cfg.BaseLoadKW <= 0 {
		cfg.BaseLoadKW = 0.8
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulator{
		cfg:    cfg,
		hub:    hub,
		logger: logger,
		clock:  time.Now().UTC().Truncate(cfg.SlotDuration),
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Run emits readings until the context is cancelled.
func (s *Simulator) Run(ctx context.Context) {
	s.logger.Info("starting realtime feed simulator",
		zap.String("mpan_id", s.cfg.MpanID),
		zap.Duration("tick", s.cfg.Tick),
	)

	ticker := time.NewTicker(s.cfg.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("stopping realtime feed simulator")
			return
		case <-ticker.C:
			s.emit(s.Step())
		}
	}
}

// Step advances the simulated clock one slot and produces the next reading.
func (s *Simulator) Step() models.Reading {
	s.clock = s.clock.Add(s.cfg.SlotDuration)

	consumption := s.cfg.BaseLoadKW * s.cfg.SlotDuration.Hours() * s.demandFactor(s.clock)
	return models.Reading{
		Timestamp:      s.clock,
		MpanID:         s.cfg.MpanID,
		ConsumptionKWh: consumption,
		ReadingType:    models.ReadingTypeSimulated,
	}
}

// demandFactor shapes consumption over the day: low overnight, a small
// morning bump, a strong evening peak. Jitter keeps the feed from looking
// perfectly periodic.
func (s *Simulator) demandFactor(t time.Time) float64 {
	var factor float64
	switch hour := t.Hour(); {
	case hour >= 0 && hour < 6:
		factor = 0.3
	case hour >= 7 && hour < 10:
		factor = 1.1
	case hour >= 16 && hour < 20:
		factor = 1.6
	default:
		factor = 0.7
	}
	return factor * (0.85 + 0.3*s.rng.Float64())
}

func (s *Simulator) emit(reading models.Reading) {
	payload, err := json.Marshal(reading)
	if err != nil {
		s.logger.Error("failed to encode feed reading", zap.Error(err))
		return
	}
	s.hub.Broadcast(payload)
}
