package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"greenshift/backend/services/optimiser-service/internal/engine"
	"greenshift/backend/services/optimiser-service/internal/models"
	"greenshift/backend/services/optimiser-service/internal/repository"
)

var (
	// ErrNoProperties is returned when the caller owns no properties.
	ErrNoProperties = errors.New("optimiser: no properties found for user")
	// ErrRoleUnassigned is returned for users whose role is still pending.
	ErrRoleUnassigned = errors.New("optimiser: user role not yet assigned")
	// ErrDeviceNotFound is returned when no property of the caller owns the
	// requested device.
	ErrDeviceNotFound = errors.New("optimiser: device not found in user's properties")
)

// PropertyStore defines property storage used by the service.
type PropertyStore interface {
	Create(ctx context.Context, property *models.Property) error
	GetByID(ctx context.Context, id int64) (*models.Property, error)
	ListByPortfolio(ctx context.Context, portfolioID int64) ([]models.Property, error)
	AddDevice(ctx context.Context, propertyID int64, device *models.Device) error
}

// TariffStore defines tariff storage used by the service.
type TariffStore interface {
	GetByID(ctx context.Context, id int64) (*models.Tariff, error)
}

// UsageStore defines usage log storage used by the service.
type UsageStore interface {
	InsertBatch(ctx context.Context, readings []models.Reading) error
	ListByMeter(ctx context.Context, mpanID string, start, end time.Time) ([]models.Reading, error)
}

// ReportCache defines the optional report cache.
type ReportCache interface {
	Get(ctx context.Context, mpanID string, req models.ShiftRequest) (*models.OptimisationReport, error)
	Save(ctx context.Context, mpanID string, req models.ShiftRequest, report *models.OptimisationReport) error
}

// Settings carries the engine knobs surfaced through service configuration.
type Settings struct {
	PeakStartHour int
	PeakEndHour   int
	SlotDuration  time.Duration
	WindowDays    int
}

// OptimiserService resolves a caller's context and runs scenario
// simulations. One engine instance is built per request; the service itself
// holds no per-request state.
type OptimiserService struct {
	properties PropertyStore
	tariffs    TariffStore
	usage      UsageStore
	cache      ReportCache
	settings   Settings
	logger     *zap.Logger
}

// NewOptimiserService builds service. cache may be nil to disable caching.
func NewOptimiserService(properties PropertyStore, tariffs TariffStore, usage UsageStore, cache ReportCache, settings Settings, logger *zap.Logger) *OptimiserService {
	if settings.PeakStartHour == 0 && settings.PeakEndHour == 0 {
		settings.PeakStartHour = engine.DefaultPeakStartHour
		settings.PeakEndHour = engine.DefaultPeakEndHour
	}
	if settings.SlotDuration <= 0 {
		settings.SlotDuration = engine.DefaultSlotDuration
	}
	if settings.WindowDays <= 0 {
		settings.WindowDays = 7
	}
	return &OptimiserService{
		properties: properties,
		tariffs:    tariffs,
		usage:      usage,
		cache:      cache,
		settings:   settings,
		logger:     logger,
	}
}

// UserContext returns the caller's properties and the tariffs they
// reference.
func (s *OptimiserService) UserContext(ctx context.Context, principal models.Principal) ([]models.Property, map[int64]models.Tariff, error) {
	properties, err := s.propertiesFor(ctx, principal)
	if err != nil {
		return nil, nil, err
	}

	tariffs := make(map[int64]models.Tariff)
	for _, property := range properties {
		if _, ok := tariffs[property.TariffID]; ok {
			continue
		}
		tariff, err := s.tariffs.GetByID(ctx, property.TariffID)
		if err != nil {
			return nil, nil, fmt.Errorf("optimiser: tariff %d for property %d: %w", property.TariffID, property.ID, err)
		}
		tariffs[tariff.ID] = *tariff
	}
	return properties, tariffs, nil
}

// RunScenario resolves the property owning the requested device, gathers
// its tariff and readings window, and runs the load-shift simulation.
func (s *OptimiserService) RunScenario(ctx context.Context, principal models.Principal, req models.ShiftRequest) (*models.OptimisationReport, error) {
	properties, err := s.propertiesFor(ctx, principal)
	if err != nil {
		return nil, err
	}

	var target *models.Property
	for i := range properties {
		if _, ok := properties[i].DeviceByID(req.DeviceID); ok {
			target = &properties[i]
			break
		}
	}
	if target == nil {
		return nil, ErrDeviceNotFound
	}

	tariff, err := s.tariffs.GetByID(ctx, target.TariffID)
	if err != nil {
		return nil, fmt.Errorf("optimiser: tariff %d for property %d: %w", target.TariffID, target.ID, err)
	}

	if s.cache != nil {
		if report, err := s.cache.Get(ctx, target.MpanID, req); err == nil {
			s.logger.Debug("optimisation report served from cache",
				zap.String("mpan_id", target.MpanID),
				zap.Int64("device_id", req.DeviceID),
			)
			return report, nil
		}
	}

	start, end := s.readingsWindow(req)
	readings, err := s.usage.ListByMeter(ctx, target.MpanID, start, end)
	if err != nil {
		return nil, fmt.Errorf("optimiser: load readings for %s: %w", target.MpanID, err)
	}

	eng := engine.New(*target, *tariff, readings,
		engine.WithPeakWindow(s.settings.PeakStartHour, s.settings.PeakEndHour),
		engine.WithSlotDuration(s.settings.SlotDuration),
		engine.WithLogger(s.logger),
	)
	report, err := eng.RunScenario(req)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Save(ctx, target.MpanID, req, report); err != nil {
			s.logger.Warn("failed to cache optimisation report", zap.Error(err))
		}
	}

	s.logger.Info("scenario simulation complete",
		zap.Int64("device_id", req.DeviceID),
		zap.Float64("estimated_savings", report.EstimatedSavings),
	)
	return report, nil
}

// CreateProperty registers a new metered property with its devices. A
// property manager's properties always land in their own portfolio,
// whatever the request claims.
func (s *OptimiserService) CreateProperty(ctx context.Context, principal models.Principal, property *models.Property) error {
	switch principal.Role {
	case models.RoleHomeowner:
		property.PortfolioID = nil
	case models.RolePropertyManager:
		portfolioID := principal.PortfolioID
		property.PortfolioID = &portfolioID
	default:
		return ErrRoleUnassigned
	}

	if _, err := s.tariffs.GetByID(ctx, property.TariffID); err != nil {
		return fmt.Errorf("resolving tariff %d: %w", property.TariffID, err)
	}
	if err := s.properties.Create(ctx, property); err != nil {
		return err
	}

	s.logger.Info("property created",
		zap.Int64("property_id", property.ID),
		zap.Int64("user_id", principal.UserID),
		zap.String("mpan_id", property.MpanID),
	)
	return nil
}

// AddDevice attaches a device to a property after checking the caller owns
// that property.
func (s *OptimiserService) AddDevice(ctx context.Context, principal models.Principal, propertyID int64, device *models.Device) error {
	if err := s.authoriseProperty(ctx, principal, propertyID); err != nil {
		return err
	}
	return s.properties.AddDevice(ctx, propertyID, device)
}

// AddUsageLogs stores a batch of readings for a meter the caller owns.
func (s *OptimiserService) AddUsageLogs(ctx context.Context, principal models.Principal, readings []models.Reading) error {
	if len(readings) == 0 {
		return nil
	}

	owned, err := s.ownedMeters(ctx, principal)
	if err != nil {
		return err
	}
	for _, reading := range readings {
		if !owned[reading.MpanID] {
			return ErrNoProperties
		}
	}
	return s.usage.InsertBatch(ctx, readings)
}

// UsageLogs returns readings for a meter the caller owns within [start, end).
func (s *OptimiserService) UsageLogs(ctx context.Context, principal models.Principal, mpanID string, start, end time.Time) ([]models.Reading, error) {
	owned, err := s.ownedMeters(ctx, principal)
	if err != nil {
		return nil, err
	}
	if !owned[mpanID] {
		return nil, ErrNoProperties
	}
	return s.usage.ListByMeter(ctx, mpanID, start, end)
}

// propertiesFor resolves the property set visible to the principal. A
// homeowner sees their single property, a property manager their portfolio.
func (s *OptimiserService) propertiesFor(ctx context.Context, principal models.Principal) ([]models.Property, error) {
	switch principal.Role {
	case models.RoleHomeowner:
		property, err := s.properties.GetByID(ctx, principal.PropertyID)
		if err != nil {
			if errors.Is(err, repository.ErrPropertyNotFound) {
				return nil, ErrNoProperties
			}
			return nil, err
		}
		return []models.Property{*property}, nil
	case models.RolePropertyManager:
		properties, err := s.properties.ListByPortfolio(ctx, principal.PortfolioID)
		if err != nil {
			return nil, err
		}
		if len(properties) == 0 {
			return nil, ErrNoProperties
		}
		return properties, nil
	default:
		return nil, ErrRoleUnassigned
	}
}

func (s *OptimiserService) authoriseProperty(ctx context.Context, principal models.Principal, propertyID int64) error {
	properties, err := s.propertiesFor(ctx, principal)
	if err != nil {
		return err
	}
	for _, property := range properties {
		if property.ID == propertyID {
			return nil
		}
	}
	return ErrNoProperties
}

func (s *OptimiserService) ownedMeters(ctx context.Context, principal models.Principal) (map[string]bool, error) {
	properties, err := s.propertiesFor(ctx, principal)
	if err != nil {
		return nil, err
	}
	owned := make(map[string]bool, len(properties))
	for _, property := range properties {
		owned[property.MpanID] = true
	}
	return owned, nil
}

// readingsWindow brackets the shift timestamps with the configured margin,
// so the engine sees enough of the curve without loading the whole series.
func (s *OptimiserService) readingsWindow(req models.ShiftRequest) (time.Time, time.Time) {
	start := req.OriginalTimestamp
	end := req.NewTimestamp
	if end.Before(start) {
		start, end = end, start
	}
	margin := time.Duration(s.settings.WindowDays) * 24 * time.Hour
	return start.UTC().Add(-margin), end.UTC().Add(margin)
}
