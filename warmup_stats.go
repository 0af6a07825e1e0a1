package csiview

import (
	"time"

	"github.com/visiona/csiview/internal/warmup"
)

// CalculateFPSStats calculates FPS statistics from frame timestamps
//
// This is a public wrapper around internal/warmup.CalculateFPSStats; the
// canonical implementation lives in internal/warmup/stats.go.
//
// Stability threshold:
//   - FPS: stddev < 15% of mean FPS
//   - Jitter: mean jitter < 20% of expected interval
//
// Example: 30 FPS mean → stable if stddev < 4.5 AND jitter < 0.007s
func CalculateFPSStats(frameTimes []time.Time, totalDuration time.Duration) *WarmupStats {
	internalStats := warmup.CalculateFPSStats(frameTimes, totalDuration)

	return &WarmupStats{
		FramesReceived: internalStats.FramesReceived,
		Duration:       internalStats.Duration,
		FPSMean:        internalStats.FPSMean,
		FPSStdDev:      internalStats.FPSStdDev,
		FPSMin:         internalStats.FPSMin,
		FPSMax:         internalStats.FPSMax,
		IsStable:       internalStats.IsStable,
		JitterMean:     internalStats.JitterMean,
		JitterStdDev:   internalStats.JitterStdDev,
		JitterMax:      internalStats.JitterMax,
	}
}
