package csiview

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"

	"github.com/visiona/csiview/internal/argus"
)

// ArgusStream implements CaptureProvider using a GStreamer element pipeline
// over the nvargus CSI capture stack.
//
// There is no reconnection layer: a pipeline error or end-of-stream ends the
// capture session and closes the frame channel. Every failure is a reason to
// stop, not recover.
type ArgusStream struct {
	cfg CaptureConfig

	// GStreamer pipeline elements
	elements *argus.PipelineElements

	// Frame output
	frames chan Frame
	mu     sync.RWMutex

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Statistics (atomic for thread-safety)
	frameCount    uint64
	framesDropped uint64
	bytesRead     uint64
	started       time.Time
	lastFrameAt   atomic.Int64 // unix nanoseconds

	// Error telemetry (atomic for thread-safety)
	errorsSensor      uint64
	errorsNegotiation uint64
	errorsResource    uint64
	errorsUnknown     uint64

	// Shutdown protection (atomic flag to prevent double-close panic)
	framesClosed atomic.Bool
}

// NewArgusStream creates a new CSI capture stream with fail-fast validation
//
// Validates configuration at construction time:
//   - Sensor index must be non-negative
//   - Capture and display dimensions must be positive
//   - Framerate must be positive
//   - Flip method must be a valid nvvidconv code (0-7)
//
// Returns an error if validation fails or GStreamer is not available.
func NewArgusStream(cfg CaptureConfig) (*ArgusStream, error) {
	if cfg.SensorID < 0 {
		return nil, fmt.Errorf("csiview: invalid sensor index %d (must be >= 0)", cfg.SensorID)
	}
	if cfg.CaptureWidth <= 0 || cfg.CaptureHeight <= 0 {
		return nil, fmt.Errorf(
			"csiview: invalid capture size %dx%d (must be positive)",
			cfg.CaptureWidth, cfg.CaptureHeight,
		)
	}
	if cfg.DisplayWidth <= 0 || cfg.DisplayHeight <= 0 {
		return nil, fmt.Errorf(
			"csiview: invalid display size %dx%d (must be positive)",
			cfg.DisplayWidth, cfg.DisplayHeight,
		)
	}
	if cfg.Framerate <= 0 {
		return nil, fmt.Errorf("csiview: invalid framerate %d (must be positive)", cfg.Framerate)
	}
	if !cfg.FlipMethod.Valid() {
		return nil, fmt.Errorf("csiview: invalid flip method %d (must be 0-7)", cfg.FlipMethod)
	}

	// Fail-fast validation: GStreamer availability
	if err := checkGStreamerAvailable(); err != nil {
		return nil, fmt.Errorf("csiview: GStreamer not available: %w", err)
	}

	s := &ArgusStream{
		cfg:    cfg,
		frames: make(chan Frame, 10), // Buffer 10 frames
	}

	slog.Info("csiview: capture stream created",
		"sensor_id", cfg.SensorID,
		"capture", fmt.Sprintf("%dx%d@%d", cfg.CaptureWidth, cfg.CaptureHeight, cfg.Framerate),
		"display", fmt.Sprintf("%dx%d", cfg.DisplayWidth, cfg.DisplayHeight),
		"flip_method", cfg.FlipMethod.String(),
		"pipeline", cfg.Pipeline(),
	)

	return s, nil
}

// Start initializes the capture graph and returns a read-only channel of frames
//
// This method:
//  1. Creates the GStreamer pipeline
//  2. Wires the appsink callback
//  3. Starts the pipeline in PLAYING state
//  4. Launches background goroutines for frame conversion and bus monitoring
//  5. Returns the frame channel immediately (non-blocking)
func (s *ArgusStream) Start(ctx context.Context) (<-chan Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return nil, fmt.Errorf("csiview: stream already started")
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.started = time.Now()

	slog.Info("csiview: starting capture stream", "sensor_id", s.cfg.SensorID)

	elements, err := argus.CreatePipeline(argus.Config{
		SensorID:      s.cfg.SensorID,
		CaptureWidth:  s.cfg.CaptureWidth,
		CaptureHeight: s.cfg.CaptureHeight,
		DisplayWidth:  s.cfg.DisplayWidth,
		DisplayHeight: s.cfg.DisplayHeight,
		Framerate:     s.cfg.Framerate,
		FlipMethod:    int(s.cfg.FlipMethod),
	})
	if err != nil {
		return nil, fmt.Errorf("csiview: failed to create pipeline: %w", err)
	}
	s.elements = elements

	// Internal frame channel for callbacks (internal argus.Frame avoids an
	// import cycle with this package's Frame)
	internalFrames := make(chan argus.Frame, 10)

	callbackCtx := &argus.CallbackContext{
		FrameChan:     internalFrames,
		FrameCounter:  &s.frameCount,
		BytesRead:     &s.bytesRead,
		FramesDropped: &s.framesDropped,
		Width:         s.cfg.DisplayWidth,
		Height:        s.cfg.DisplayHeight,
		SensorID:      s.cfg.SensorID,
	}

	s.elements.AppSink.SetCallbacks(&app.SinkCallbacks{
		NewSampleFunc: func(sink *app.Sink) gst.FlowReturn {
			return argus.OnNewSample(sink, callbackCtx)
		},
	})

	// Convert internal frames to public frames. The converter is the only
	// sender on s.frames; the channel is never closed while it runs.
	// Capture ctx/cancel locally to avoid nil dereference during shutdown.
	localCtx := s.ctx
	localCancel := s.cancel
	convDone := make(chan struct{})
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(convDone)
		s.convertFrames(localCtx, internalFrames)
	}()

	// Start pipeline
	if err := s.elements.Pipeline.SetState(gst.StatePlaying); err != nil {
		// Unwind the partial start so the stream is back in the
		// not-started state and a later Stop() is a no-op.
		localCancel()
		<-convDone
		if derr := argus.DestroyPipeline(s.elements); derr != nil {
			slog.Error("csiview: failed to destroy pipeline", "error", derr)
		}
		s.elements = nil
		s.cancel = nil
		s.ctx = nil
		return nil, fmt.Errorf("csiview: failed to start pipeline: %w", err)
	}

	// Wait for the pipeline to reach PLAYING state
	bus := s.elements.Pipeline.GetPipelineBus()
	msg := bus.TimedPop(5 * time.Second)
	if msg != nil && msg.Type() == gst.MessageStateChanged {
		_, newState := msg.ParseStateChanged()
		if newState == gst.StatePlaying {
			slog.Info("csiview: pipeline reached PLAYING state")
		}
	}

	// Bus monitoring: a pipeline error or EOS ends the session
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		if err := s.monitorBus(localCtx); err != nil {
			slog.Error("csiview: capture stream ended",
				"error", err,
				"sensor_id", s.cfg.SensorID,
				"uptime", time.Since(s.started),
				"frames_captured", atomic.LoadUint64(&s.frameCount),
			)
			s.failStream(localCancel, convDone)
		}
	}()

	slog.Info("csiview: capture stream started",
		"sensor_id", s.cfg.SensorID,
		"note", "frames will arrive asynchronously once the pipeline reaches PLAYING state",
	)

	return s.frames, nil
}

// convertFrames forwards frames from the callback channel to the public
// frame channel until the context is cancelled or the input closes.
//
// This goroutine is the only sender on s.frames. The channel must not be
// closed while it runs; failStream and Stop both wait for it to exit first.
func (s *ArgusStream) convertFrames(ctx context.Context, in <-chan argus.Frame) {
	for {
		select {
		case <-ctx.Done():
			return

		case internalFrame, ok := <-in:
			if !ok {
				return
			}

			publicFrame := Frame{
				Seq:       internalFrame.Seq,
				Timestamp: internalFrame.Timestamp,
				Width:     internalFrame.Width,
				Height:    internalFrame.Height,
				Data:      internalFrame.Data,
				SensorID:  internalFrame.SensorID,
				TraceID:   internalFrame.TraceID,
			}

			s.lastFrameAt.Store(time.Now().UnixNano())

			// Non-blocking send with drop tracking
			select {
			case s.frames <- publicFrame:
			case <-ctx.Done():
				return
			default:
				atomic.AddUint64(&s.framesDropped, 1)
				slog.Debug("csiview: dropping frame, channel full",
					"seq", publicFrame.Seq,
					"trace_id", publicFrame.TraceID,
				)
			}
		}
	}
}

// failStream ends the capture session after a terminal pipeline failure.
//
// The converter goroutine must have exited before the frame channel closes,
// otherwise its non-blocking send would hit a closed channel. Pipeline
// teardown stays with Stop(), which consumers call once the channel closes.
func (s *ArgusStream) failStream(cancel context.CancelFunc, convDone <-chan struct{}) {
	cancel()
	<-convDone
	s.closeFrames()
}

// monitorBus monitors the GStreamer pipeline bus for messages
//
// Returns an error if the pipeline encounters an error or end-of-stream
// (ends the session - there are no retries).
// Returns nil if the context is cancelled (graceful shutdown).
func (s *ArgusStream) monitorBus(ctx context.Context) error {
	if s.elements == nil || s.elements.Pipeline == nil {
		return fmt.Errorf("pipeline not initialized")
	}

	bus := s.elements.Pipeline.GetPipelineBus()

	for {
		select {
		case <-ctx.Done():
			slog.Debug("csiview: context cancelled, stopping bus monitor")
			return nil

		default:
			// Poll with a short timeout for responsive shutdown
			msg := bus.TimedPop(50 * time.Millisecond)
			if msg == nil {
				continue
			}

			switch msg.Type() {
			case gst.MessageEOS:
				slog.Info("csiview: end of stream received",
					"sensor_id", s.cfg.SensorID,
					"uptime", time.Since(s.started),
					"frames_captured", atomic.LoadUint64(&s.frameCount),
				)
				return fmt.Errorf("end of stream")

			case gst.MessageError:
				gerr := msg.ParseError()

				category := argus.ClassifyPipelineError(gerr)
				switch category {
				case argus.ErrCategorySensor:
					atomic.AddUint64(&s.errorsSensor, 1)
				case argus.ErrCategoryNegotiation:
					atomic.AddUint64(&s.errorsNegotiation, 1)
				case argus.ErrCategoryResource:
					atomic.AddUint64(&s.errorsResource, 1)
				case argus.ErrCategoryUnknown:
					atomic.AddUint64(&s.errorsUnknown, 1)
				}

				slog.Error("csiview: pipeline error",
					"error", gerr.Error(),
					"debug", gerr.DebugString(),
					"category", category.String(),
					"sensor_id", s.cfg.SensorID,
					"uptime", time.Since(s.started),
					"frames_captured", atomic.LoadUint64(&s.frameCount),
				)
				return fmt.Errorf("pipeline error [%s]: %s", category.String(), gerr.Error())

			case gst.MessageStateChanged:
				if msg.Source() == s.elements.Pipeline.GetName() {
					old, new := msg.ParseStateChanged()
					slog.Debug("csiview: pipeline state changed",
						"from", old,
						"to", new,
					)
				}
			}
		}
	}
}

// Stop gracefully shuts down the stream
//
// This method:
//  1. Cancels the context to signal shutdown
//  2. Waits for goroutines to finish (timeout 3s)
//  3. Sets the pipeline to NULL
//  4. Closes the frame channel (exactly once)
//  5. Resets state for potential restart
//
// Idempotent - safe to call multiple times.
func (s *ArgusStream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel == nil {
		slog.Debug("csiview: stream not started, nothing to stop")
		return nil
	}

	slog.Info("csiview: stopping capture stream")

	s.cancel()

	// Wait for goroutines with timeout
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Debug("csiview: goroutines stopped cleanly")
	case <-time.After(3 * time.Second):
		slog.Warn("csiview: stop timeout exceeded, some goroutines may still be running")
	}

	if s.elements != nil {
		if err := argus.DestroyPipeline(s.elements); err != nil {
			slog.Error("csiview: failed to destroy pipeline", "error", err)
		}
		s.elements = nil
	}

	s.closeFrames()

	slog.Info("csiview: capture stream stopped",
		"frames_captured", atomic.LoadUint64(&s.frameCount),
		"uptime", time.Since(s.started),
	)

	// Reset state for potential restart
	s.cancel = nil
	s.ctx = nil
	s.frames = make(chan Frame, 10)
	s.framesClosed.Store(false)

	return nil
}

// closeFrames closes the frame channel exactly once.
// Called from both Stop() and the bus monitor on terminal pipeline failure.
func (s *ArgusStream) closeFrames() {
	if s.framesClosed.CompareAndSwap(false, true) {
		close(s.frames)
		slog.Debug("csiview: frame channel closed")
	}
}

// Stats returns current capture statistics
//
// Thread-safe - uses atomic operations for counters.
func (s *ArgusStream) Stats() CaptureStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	frameCount := atomic.LoadUint64(&s.frameCount)
	framesDropped := atomic.LoadUint64(&s.framesDropped)

	var fpsReal float64
	if !s.started.IsZero() {
		if uptime := time.Since(s.started).Seconds(); uptime > 0 {
			fpsReal = float64(frameCount) / uptime
		}
	}

	var dropRate float64
	if total := frameCount + framesDropped; total > 0 {
		dropRate = (float64(framesDropped) / float64(total)) * 100.0
	}

	var latencyMS int64
	if ns := s.lastFrameAt.Load(); ns > 0 {
		latencyMS = time.Since(time.Unix(0, ns)).Milliseconds()
	}

	return CaptureStats{
		FrameCount:        frameCount,
		FramesDropped:     framesDropped,
		DropRate:          dropRate,
		FPSTarget:         float64(s.cfg.Framerate),
		FPSReal:           fpsReal,
		LatencyMS:         latencyMS,
		SensorID:          s.cfg.SensorID,
		Resolution:        fmt.Sprintf("%dx%d", s.cfg.DisplayWidth, s.cfg.DisplayHeight),
		BytesRead:         atomic.LoadUint64(&s.bytesRead),
		IsRunning:         s.elements != nil && s.cancel != nil,
		ErrorsSensor:      atomic.LoadUint64(&s.errorsSensor),
		ErrorsNegotiation: atomic.LoadUint64(&s.errorsNegotiation),
		ErrorsResource:    atomic.LoadUint64(&s.errorsResource),
		ErrorsUnknown:     atomic.LoadUint64(&s.errorsUnknown),
	}
}

// Warmup measures capture FPS stability over a specified duration
//
// Call after Start() to measure the real sensor rate and verify stability
// before consuming frames. Blocks for the entire duration while collecting
// statistics.
//
// Returns WarmupStats, or an error if:
//   - Stream is not running
//   - Not enough frames received (< 2)
//   - The measured rate is unstable
func (s *ArgusStream) Warmup(ctx context.Context, duration time.Duration) (*WarmupStats, error) {
	s.mu.RLock()
	if s.cancel == nil {
		s.mu.RUnlock()
		return nil, fmt.Errorf("csiview: stream not started")
	}
	s.mu.RUnlock()

	slog.Info("csiview: starting warmup",
		"duration", duration,
		"reason", "measure real FPS and verify stability",
	)

	startTime := time.Now()
	frameTimes := make([]time.Time, 0, 128)

	warmupCtx, cancel := context.WithTimeout(ctx, duration)
	defer cancel()

collect:
	for {
		select {
		case <-warmupCtx.Done():
			break collect

		case frame, ok := <-s.frames:
			if !ok {
				return nil, fmt.Errorf("csiview: stream closed during warmup")
			}

			frameTimes = append(frameTimes, frame.Timestamp)

			slog.Debug("csiview: warmup frame received",
				"seq", frame.Seq,
				"frames_collected", len(frameTimes),
			)
		}
	}

	elapsed := time.Since(startTime)

	if len(frameTimes) < 2 {
		return nil, fmt.Errorf(
			"csiview: not enough frames received during warmup (got %d, need at least 2)",
			len(frameTimes),
		)
	}

	stats := CalculateFPSStats(frameTimes, elapsed)

	slog.Info("csiview: warmup complete",
		"frames", stats.FramesReceived,
		"duration", stats.Duration,
		"fps_mean", fmt.Sprintf("%.2f", stats.FPSMean),
		"fps_stddev", fmt.Sprintf("%.2f", stats.FPSStdDev),
		"fps_range", fmt.Sprintf("%.1f-%.1f", stats.FPSMin, stats.FPSMax),
		"stable", stats.IsStable,
	)

	// Unstable FPS indicates sensor problems or pipeline misconfiguration
	if !stats.IsStable {
		return nil, fmt.Errorf(
			"csiview: warmup failed - sensor FPS unstable (mean=%.2f Hz, stddev=%.2f, threshold=15%%)",
			stats.FPSMean,
			stats.FPSStdDev,
		)
	}

	return stats, nil
}

// checkGStreamerAvailable checks if GStreamer is available
//
// This is a fail-fast validation that runs at construction time.
func checkGStreamerAvailable() error {
	// Initialize GStreamer (safe to call multiple times)
	gst.Init(nil)

	// Create a trivial element to verify GStreamer is working
	elem, err := gst.NewElement("fakesrc")
	if err != nil {
		return fmt.Errorf("GStreamer not available or not properly installed: %w", err)
	}
	elem.SetState(gst.StateNull)

	return nil
}
