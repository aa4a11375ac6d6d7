package units

import (
	"context"
	"fmt"
	"strings"

	glog "github.com/goliatone/go-logger/glog"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

const (
	// UnknownUnitLabel is returned, and cached, when the directory cannot
	// resolve a vehicle id. Resolver failures never propagate to callers.
	UnknownUnitLabel = "Unit Unknown"

	unitCacheKeyPrefix   = "fleet-alerts::unit_label::v1"
	driverCacheKeyPrefix = "fleet-alerts::driver_name::v1"
)

// Directory is the external system of record for vehicle and driver labels.
type Directory interface {
	UnitLabel(ctx context.Context, vehicleID int64) (string, error)
	DriverName(ctx context.Context, driverID int64) (string, error)
}

// Resolver caches directory lookups for the lifetime of the process. Misses
// populate lazily; sentinel labels are cached too so a dead directory costs
// one lookup per id, not one per event.
type Resolver struct {
	directory Directory
	cache     repositorycache.CacheService
	logger    glog.Logger
}

func NewResolver(directory Directory, cacheService repositorycache.CacheService, logger glog.Logger) (*Resolver, error) {
	if cacheService == nil {
		return nil, fmt.Errorf("units: cache service is required")
	}
	return &Resolver{
		directory: directory,
		cache:     cacheService,
		logger:    glog.Ensure(logger),
	}, nil
}

func (r *Resolver) Resolve(ctx context.Context, vehicleID int64) string {
	if r == nil || r.cache == nil {
		return UnknownUnitLabel
	}
	key := fmt.Sprintf("%s::%d", unitCacheKeyPrefix, vehicleID)
	label, err := repositorycache.GetOrFetch(ctx, r.cache, key, func(ctx context.Context) (string, error) {
		return r.fetchUnitLabel(ctx, vehicleID), nil
	})
	if err != nil {
		r.logger.Warn("unit label cache lookup failed", "vehicle_id", vehicleID, "error", err.Error())
		return UnknownUnitLabel
	}
	return label
}

func (r *Resolver) ResolveDriver(ctx context.Context, driverID int64) string {
	fallback := fmt.Sprintf("Driver #%d", driverID)
	if r == nil || r.cache == nil {
		return fallback
	}
	key := fmt.Sprintf("%s::%d", driverCacheKeyPrefix, driverID)
	name, err := repositorycache.GetOrFetch(ctx, r.cache, key, func(ctx context.Context) (string, error) {
		return r.fetchDriverName(ctx, driverID, fallback), nil
	})
	if err != nil {
		r.logger.Warn("driver name cache lookup failed", "driver_id", driverID, "error", err.Error())
		return fallback
	}
	return name
}

func (r *Resolver) fetchUnitLabel(ctx context.Context, vehicleID int64) string {
	if r.directory == nil {
		return UnknownUnitLabel
	}
	label, err := r.directory.UnitLabel(ctx, vehicleID)
	if err != nil {
		r.logger.Warn("unit directory lookup failed", "vehicle_id", vehicleID, "error", err.Error())
		return UnknownUnitLabel
	}
	if strings.TrimSpace(label) == "" {
		return UnknownUnitLabel
	}
	return strings.TrimSpace(label)
}

func (r *Resolver) fetchDriverName(ctx context.Context, driverID int64, fallback string) string {
	if r.directory == nil {
		return fallback
	}
	name, err := r.directory.DriverName(ctx, driverID)
	if err != nil {
		r.logger.Warn("driver directory lookup failed", "driver_id", driverID, "error", err.Error())
		return fallback
	}
	if strings.TrimSpace(name) == "" {
		return fallback
	}
	return strings.TrimSpace(name)
}
