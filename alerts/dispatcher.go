package alerts

import (
	"context"
	"fmt"
	"strings"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/fleet-alerts/core"
	"github.com/goliatone/fleet-alerts/telemetry"
)

// KphToMph converts provider speeds, which arrive in kph, to the mph values
// shown in alert messages.
const KphToMph = 0.621371

// SuppressionThresholdMph is the minimum over-limit speed, in mph, that
// warrants an alert. Anything strictly below it is noise and is suppressed.
const SuppressionThresholdMph = 5.0

func ToMph(kph float64) float64 {
	return kph * KphToMph
}

// ShouldSuppress reports whether a speeding event falls below the alert
// threshold after unit conversion.
func ShouldSuppress(event telemetry.SpeedingEvent) bool {
	return ToMph(event.MaxOverSpeedKph) < SuppressionThresholdMph
}

// Dispatcher turns decoded telemetry events into alert messages. It resolves
// display labels through the unit resolver and applies the suppression rule;
// delivery itself is owned by the Scheduler.
type Dispatcher struct {
	resolver core.UnitResolver
	logger   glog.Logger
}

func NewDispatcher(resolver core.UnitResolver, logger glog.Logger) *Dispatcher {
	return &Dispatcher{
		resolver: resolver,
		logger:   glog.Ensure(logger),
	}
}

// SpeedingAlert formats one speeding alert. The second return is false when
// the event is suppressed and nothing should be sent.
func (d *Dispatcher) SpeedingAlert(ctx context.Context, event telemetry.SpeedingEvent, mapLink *string) (string, bool) {
	if d == nil {
		return "", false
	}
	if ShouldSuppress(event) {
		d.logger.Info("speeding alert suppressed",
			"event_id", event.ID,
			"vehicle_id", event.VehicleID,
			"over_mph", ToMph(event.MaxOverSpeedKph),
		)
		return "", false
	}
	unit := d.unitLabel(ctx, event.VehicleID)
	driver := d.driverName(ctx, event.DriverID)
	return FormatSpeeding(unit, driver, event, mapLink), true
}

// SafetyAlert formats one safety alert. Safety events are never suppressed.
func (d *Dispatcher) SafetyAlert(ctx context.Context, event telemetry.SafetyEvent, subtype string, mapLink *string) string {
	if d == nil {
		return ""
	}
	unit := d.unitLabel(ctx, event.VehicleID)
	driver := ""
	if event.DriverID != nil {
		driver = d.driverName(ctx, *event.DriverID)
	}
	return FormatSafety(unit, driver, subtype, mapLink)
}

// FormatSpeeding builds the speeding alert text. Pure and idempotent: the
// same inputs always produce the same message.
func FormatSpeeding(unit string, driver string, event telemetry.SpeedingEvent, mapLink *string) string {
	var b strings.Builder
	b.WriteString("🚨 Speeding Alert\n")
	fmt.Fprintf(&b, "Unit: %s\n", unit)
	fmt.Fprintf(&b, "Driver: %s\n", driver)
	fmt.Fprintf(&b, "Speed: %.1f mph (limit %.1f mph)\n",
		ToMph(event.MaxVehicleSpeedKph), ToMph(event.MaxPostedSpeedLimitKph))
	fmt.Fprintf(&b, "Over limit: +%.1f mph", ToMph(event.MaxOverSpeedKph))
	if mapLink != nil && *mapLink != "" {
		fmt.Fprintf(&b, "\nMap: %s", *mapLink)
	}
	return b.String()
}

// FormatSafety builds the safety alert text. Driver is omitted when the
// provider did not include one.
func FormatSafety(unit string, driver string, subtype string, mapLink *string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⚠️ %s Alert\n", SubtypeLabel(subtype))
	fmt.Fprintf(&b, "Unit: %s", unit)
	if driver != "" {
		fmt.Fprintf(&b, "\nDriver: %s", driver)
	}
	if mapLink != nil && *mapLink != "" {
		fmt.Fprintf(&b, "\nMap: %s", *mapLink)
	}
	return b.String()
}

// SubtypeLabel is the human-readable heading for a stored safety subtype.
func SubtypeLabel(subtype string) string {
	switch strings.TrimSpace(subtype) {
	case core.EventTypeHardBrake:
		return "Hard Brake"
	case core.EventTypeAcceleration:
		return "Acceleration"
	case core.EventTypeCornering:
		return "Cornering"
	default:
		return "Safety"
	}
}

func (d *Dispatcher) unitLabel(ctx context.Context, vehicleID int64) string {
	if d.resolver == nil {
		return fmt.Sprintf("Unknown (ID: %d)", vehicleID)
	}
	label := strings.TrimSpace(d.resolver.Resolve(ctx, vehicleID))
	if label == "" {
		return fmt.Sprintf("Unknown (ID: %d)", vehicleID)
	}
	return label
}

func (d *Dispatcher) driverName(ctx context.Context, driverID int64) string {
	if d.resolver == nil {
		return fmt.Sprintf("Driver #%d", driverID)
	}
	name := strings.TrimSpace(d.resolver.ResolveDriver(ctx, driverID))
	if name == "" {
		return fmt.Sprintf("Driver #%d", driverID)
	}
	return name
}
