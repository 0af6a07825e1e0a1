package csiview

import (
	"context"
	"time"
)

// CaptureProvider defines the contract for headless frame acquisition
//
// Implementations must guarantee:
//   - Start() returns immediately (non-blocking)
//   - Start() returns a channel that stays open until Stop() or a pipeline
//     failure; there is no reconnection — every failure ends the stream
//   - Stop() is idempotent (safe to call multiple times)
//   - Stats() is thread-safe (can be called from any goroutine)
//   - Warmup() measures FPS stability (optional but recommended)
type CaptureProvider interface {
	// Start initializes the capture graph and returns a read-only channel of
	// frames.
	//
	// This method returns immediately. Frames start arriving asynchronously
	// once the pipeline reaches PLAYING state. Frames are sent using a
	// non-blocking pattern - if the channel buffer is full, frames are
	// dropped rather than queued to maintain low latency.
	//
	// Returns an error if the pipeline cannot be created or started.
	Start(ctx context.Context) (<-chan Frame, error)

	// Stop gracefully shuts down the stream.
	//
	// Cancels the internal context, waits briefly for goroutines to finish,
	// sets the pipeline to NULL and closes the frame channel exactly once.
	// Safe to call multiple times.
	Stop() error

	// Stats returns current capture statistics.
	//
	// Thread-safe; counters are updated atomically during operation.
	Stats() CaptureStats

	// Warmup measures capture FPS stability over a specified duration.
	//
	// Blocks for the entire duration while consuming frames, then returns
	// FPS and jitter statistics. Returns an error if the stream is not
	// running, fewer than 2 frames arrived, or the measured rate is
	// unstable.
	Warmup(ctx context.Context, duration time.Duration) (*WarmupStats, error)
}
