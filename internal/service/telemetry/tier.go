package telemetry

import "github.com/cmlabs-hris/workforce-backend-go/internal/domain/telemetry"

// ProductivityTier maps a 0-100 focus score to its band.
func ProductivityTier(score float64) telemetry.Tier {
	switch {
	case score >= 80:
		return telemetry.TierHigh
	case score >= 60:
		return telemetry.TierMedium
	case score >= 40:
		return telemetry.TierLow
	default:
		return telemetry.TierVeryLow
	}
}
