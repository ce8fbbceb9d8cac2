package fraud

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"time"

	"github.com/mindhaven/trustengine/internal/alerts"
	"github.com/mindhaven/trustengine/internal/behavior"
	"github.com/mindhaven/trustengine/internal/idgen"
	"github.com/mindhaven/trustengine/internal/metrics"
	"github.com/mindhaven/trustengine/internal/traces"
	"github.com/mindhaven/trustengine/internal/trust"
)

// TrustControl is the slice of the trust service the detector needs.
type TrustControl interface {
	ListLowConfidence(ctx context.Context, maxConfidence float64, minVerifications int) ([]*trust.Record, error)
	ForceSuspicious(ctx context.Context, userID string) error
}

// AlertPublisher pushes freshly generated alerts to live subscribers.
// Publishing is fire-and-forget; persistence does not depend on it.
type AlertPublisher interface {
	PublishAlert(alert *alerts.Alert)
}

// Detector runs the batch fraud scan.
type Detector struct {
	events     behavior.Store
	trust      TrustControl
	alerts     alerts.Store
	thresholds Thresholds
	publisher  AlertPublisher
	logger     *slog.Logger
	now        func() time.Time
}

// NewDetector creates a fraud detector.
func NewDetector(events behavior.Store, trustCtl TrustControl, alertStore alerts.Store, thresholds Thresholds, logger *slog.Logger) *Detector {
	return &Detector{
		events:     events,
		trust:      trustCtl,
		alerts:     alertStore,
		thresholds: thresholds,
		logger:     logger,
		now:        time.Now,
	}
}

// WithPublisher attaches a live alert feed.
func (d *Detector) WithPublisher(p AlertPublisher) *Detector {
	d.publisher = p
	return d
}

// RunOnce executes one full scan. Each check runs independently: a
// check that fails to read its inputs is logged and skipped, the rest
// still run. Alerts are inserted in a single batch at the end.
func (d *Detector) RunOnce(ctx context.Context) (*ScanSummary, error) {
	scanID := idgen.WithPrefix("scan_")
	started := d.now()

	ctx, span := traces.StartSpan(ctx, "fraud.RunOnce", traces.ScanID(scanID))
	defer span.End()

	summary := &ScanSummary{ScanID: scanID, StartedAt: started}
	var batch []*alerts.Alert

	if found, err := d.checkLocationMismatch(ctx, scanID); err != nil {
		d.logger.Warn("location mismatch check failed", "scan_id", scanID, "error", err)
	} else {
		summary.LocationMismatches = len(found)
		batch = append(batch, found...)
	}

	if found, err := d.checkRapidLocationChanges(ctx, scanID); err != nil {
		d.logger.Warn("rapid location check failed", "scan_id", scanID, "error", err)
	} else {
		summary.RapidLocationChanges = len(found)
		batch = append(batch, found...)
	}

	if found, err := d.checkSignupVolume(ctx, scanID); err != nil {
		d.logger.Warn("signup volume check failed", "scan_id", scanID, "error", err)
	} else {
		summary.SignupVolumeAlerts = len(found)
		batch = append(batch, found...)
	}

	if found, err := d.checkLowTrust(ctx, scanID); err != nil {
		d.logger.Warn("low trust check failed", "scan_id", scanID, "error", err)
	} else {
		summary.LowTrustAlerts = len(found)
		batch = append(batch, found...)
	}

	summary.AlertsGenerated = len(batch)

	if len(batch) > 0 {
		if err := d.alerts.InsertBatch(ctx, batch); err != nil {
			// Trust downgrades already happened and are not reverted;
			// the next scan will regenerate these alerts.
			summary.InsertFailed = true
			d.logger.Error("alert batch insert failed",
				"scan_id", scanID, "alerts", len(batch), "error", err)
		}
	}

	if !summary.InsertFailed {
		for _, a := range batch {
			metrics.AlertsGeneratedTotal.WithLabelValues(a.AlertType, string(a.Severity)).Inc()
			if d.publisher != nil {
				d.publisher.PublishAlert(a)
			}
		}
	}

	summary.DurationMS = d.now().Sub(started).Milliseconds()
	metrics.FraudScanDuration.Observe(float64(summary.DurationMS) / 1000)
	outcome := "ok"
	if summary.InsertFailed {
		outcome = "insert_failed"
	}
	metrics.FraudScansTotal.WithLabelValues(outcome).Inc()

	d.logger.Info("fraud scan completed",
		"scan_id", scanID,
		"alerts_generated", summary.AlertsGenerated,
		"location_mismatches", summary.LocationMismatches,
		"rapid_location_changes", summary.RapidLocationChanges,
		"signup_volume_alerts", summary.SignupVolumeAlerts,
		"low_trust_alerts", summary.LowTrustAlerts,
		"insert_failed", summary.InsertFailed,
		"duration_ms", summary.DurationMS,
	)
	return summary, nil
}

// checkLocationMismatch flags every recent event whose claimed country
// differs from the edge-detected one. One medium alert per event.
func (d *Detector) checkLocationMismatch(ctx context.Context, scanID string) ([]*alerts.Alert, error) {
	since := d.now().Add(-d.thresholds.MismatchWindow)
	events, err := d.events.EventsSince(ctx, since)
	if err != nil {
		return nil, err
	}

	var found []*alerts.Alert
	for _, ev := range events {
		if ev.CountryClaimed == "" || ev.CountryDetected == "" {
			continue
		}
		if ev.CountryClaimed == ev.CountryDetected {
			continue
		}
		found = append(found, d.newAlert(scanID, ev.UserID, alerts.TypeLocationMismatch, alerts.SeverityMedium,
			"Claimed country does not match detected location",
			map[string]any{
				"event_id":         ev.ID,
				"country_claimed":  ev.CountryClaimed,
				"country_detected": ev.CountryDetected,
				"ip_address":       ev.IPAddress,
			}))
	}
	return found, nil
}

// checkRapidLocationChanges flags users claiming several distinct
// countries within a short window. One high alert per user, and the
// user is downgraded on the spot.
func (d *Detector) checkRapidLocationChanges(ctx context.Context, scanID string) ([]*alerts.Alert, error) {
	since := d.now().Add(-d.thresholds.RapidWindow)
	events, err := d.events.EventsSince(ctx, since)
	if err != nil {
		return nil, err
	}

	countries := make(map[string]map[string]bool)
	for _, ev := range events {
		if ev.CountryClaimed == "" {
			continue
		}
		if countries[ev.UserID] == nil {
			countries[ev.UserID] = make(map[string]bool)
		}
		countries[ev.UserID][ev.CountryClaimed] = true
	}

	var found []*alerts.Alert
	for userID, set := range countries {
		if len(set) < d.thresholds.RapidCountryThreshold {
			continue
		}
		locations := make([]string, 0, len(set))
		for c := range set {
			locations = append(locations, c)
		}
		sort.Strings(locations)

		found = append(found, d.newAlert(scanID, userID, alerts.TypeRapidLocation, alerts.SeverityHigh,
			"Multiple distinct countries claimed in a short window",
			map[string]any{
				"locations":      locations,
				"window_minutes": int(d.thresholds.RapidWindow.Minutes()),
			}))
		d.forceSuspicious(ctx, userID, alerts.TypeRapidLocation)
	}
	return found, nil
}

// checkSignupVolume flags countries with an unusual signup burst. These
// are platform-wide alerts, not tied to a user, so nobody is downgraded.
func (d *Detector) checkSignupVolume(ctx context.Context, scanID string) ([]*alerts.Alert, error) {
	since := d.now().Add(-d.thresholds.SignupWindow)
	events, err := d.events.EventsByTypeSince(ctx, behavior.EventSignup, since)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, ev := range events {
		if ev.CountryClaimed == "" {
			continue
		}
		counts[ev.CountryClaimed]++
	}

	var found []*alerts.Alert
	for country, n := range counts {
		if n <= d.thresholds.SignupVolumeThreshold {
			continue
		}
		found = append(found, d.newAlert(scanID, alerts.SystemUserID, alerts.TypeSignupVolume, alerts.SeverityMedium,
			"Unusual signup volume from one country",
			map[string]any{
				"country":      country,
				"signup_count": n,
			}))
	}
	return found, nil
}

// checkLowTrust flags users whose confidence stayed low despite repeated
// verification attempts. One high alert per user, with a downgrade.
func (d *Detector) checkLowTrust(ctx context.Context, scanID string) ([]*alerts.Alert, error) {
	records, err := d.trust.ListLowConfidence(ctx, d.thresholds.LowTrustConfidence, d.thresholds.LowTrustVerifications)
	if err != nil {
		return nil, err
	}

	var found []*alerts.Alert
	for _, rec := range records {
		found = append(found, d.newAlert(scanID, rec.UserID, alerts.TypeLowTrust, alerts.SeverityHigh,
			"Confidence remains low despite repeated verifications",
			map[string]any{
				"confidence":         rec.Confidence,
				"verification_count": rec.VerificationCount,
				"level":              string(rec.Level),
			}))
		d.forceSuspicious(ctx, rec.UserID, alerts.TypeLowTrust)
	}
	return found, nil
}

func (d *Detector) forceSuspicious(ctx context.Context, userID, alertType string) {
	if userID == alerts.SystemUserID {
		return
	}
	if err := d.trust.ForceSuspicious(ctx, userID); err != nil {
		d.logger.Warn("trust downgrade failed",
			"user_id", userID, "alert_type", alertType, "error", err)
	}
}

func (d *Detector) newAlert(scanID, userID, alertType string, severity alerts.Severity, description string, evidence map[string]any) *alerts.Alert {
	raw, err := json.Marshal(evidence)
	if err != nil {
		d.logger.Warn("evidence marshal failed", "alert_type", alertType, "error", err)
		raw = nil
	}
	return &alerts.Alert{
		ID:          idgen.WithPrefix("alert_"),
		UserID:      userID,
		AlertType:   alertType,
		Severity:    severity,
		Description: description,
		Evidence:    raw,
		Status:      alerts.StatusPending,
		ScanID:      scanID,
		CreatedAt:   d.now(),
	}
}
