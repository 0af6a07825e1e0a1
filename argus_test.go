package csiview

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/visiona/csiview/internal/argus"
)

// TestNewArgusStream_FailFast ensures configuration errors are caught at
// construction time rather than when the pipeline starts.
func TestNewArgusStream_FailFast(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CaptureConfig)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(c *CaptureConfig) {},
		},
		{
			name:    "negative sensor index",
			mutate:  func(c *CaptureConfig) { c.SensorID = -1 },
			wantErr: "invalid sensor index",
		},
		{
			name:    "zero capture width",
			mutate:  func(c *CaptureConfig) { c.CaptureWidth = 0 },
			wantErr: "invalid capture size",
		},
		{
			name:    "negative capture height",
			mutate:  func(c *CaptureConfig) { c.CaptureHeight = -1080 },
			wantErr: "invalid capture size",
		},
		{
			name:    "zero display height",
			mutate:  func(c *CaptureConfig) { c.DisplayHeight = 0 },
			wantErr: "invalid display size",
		},
		{
			name:    "zero framerate",
			mutate:  func(c *CaptureConfig) { c.Framerate = 0 },
			wantErr: "invalid framerate",
		},
		{
			name:    "flip method out of range",
			mutate:  func(c *CaptureConfig) { c.FlipMethod = FlipMethod(8) },
			wantErr: "invalid flip method",
		},
		{
			name:    "negative flip method",
			mutate:  func(c *CaptureConfig) { c.FlipMethod = FlipMethod(-1) },
			wantErr: "invalid flip method",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)

			_, err := NewArgusStream(cfg)

			if tc.wantErr == "" {
				if err != nil {
					// Validation passed; the remaining failure mode is a
					// missing GStreamer runtime.
					t.Skipf("GStreamer not available: %v", err)
				}
				return
			}

			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tc.wantErr)
			}
		})
	}
}

// TestArgusStream_Stop_Idempotent verifies Stop() can be called multiple
// times safely, including before Start().
func TestArgusStream_Stop_Idempotent(t *testing.T) {
	stream, err := NewArgusStream(DefaultConfig())
	if err != nil {
		t.Skipf("GStreamer not available: %v", err)
	}

	if err := stream.Stop(); err != nil {
		t.Errorf("first Stop() on non-started stream failed: %v", err)
	}
	if err := stream.Stop(); err != nil {
		t.Errorf("second Stop() on non-started stream failed: %v", err)
	}
}

func TestArgusStream_WarmupBeforeStart(t *testing.T) {
	stream, err := NewArgusStream(DefaultConfig())
	if err != nil {
		t.Skipf("GStreamer not available: %v", err)
	}

	if _, err := stream.Warmup(context.Background(), time.Second); err == nil {
		t.Error("expected error from Warmup before Start")
	}
}

func TestArgusStream_StatsBeforeStart(t *testing.T) {
	stream, err := NewArgusStream(DefaultConfig())
	if err != nil {
		t.Skipf("GStreamer not available: %v", err)
	}

	stats := stream.Stats()
	if stats.IsRunning {
		t.Error("IsRunning = true before Start")
	}
	if stats.FrameCount != 0 {
		t.Errorf("FrameCount = %d before Start, want 0", stats.FrameCount)
	}
	if stats.FPSTarget != float64(DefaultFramerate) {
		t.Errorf("FPSTarget = %.1f, want %d", stats.FPSTarget, DefaultFramerate)
	}
	if stats.Resolution != "1920x1080" {
		t.Errorf("Resolution = %q, want 1920x1080", stats.Resolution)
	}
}

// TestArgusStream_TerminalFailureClosesFramesOnce verifies the shutdown
// ordering after a terminal pipeline failure: the converter goroutine exits
// before the frame channel closes, so frames still in flight never hit a
// closed channel, and the channel closes exactly once.
func TestArgusStream_TerminalFailureClosesFramesOnce(t *testing.T) {
	s := &ArgusStream{
		cfg:    DefaultConfig(),
		frames: make(chan Frame, 10),
	}

	ctx, cancel := context.WithCancel(context.Background())
	internalFrames := make(chan argus.Frame, 10)
	convDone := make(chan struct{})
	go func() {
		defer close(convDone)
		s.convertFrames(ctx, internalFrames)
	}()

	// Frames buffered when the failure hits.
	for i := 0; i < 10; i++ {
		internalFrames <- argus.Frame{
			Seq:       uint64(i + 1),
			Timestamp: time.Now(),
			SensorID:  0,
		}
	}

	failDone := make(chan struct{})
	go func() {
		defer close(failDone)
		s.failStream(cancel, convDone)
	}()

	// Draining must terminate: the channel closes after the converter
	// has exited, so every send lands before the close.
	received := 0
	for range s.frames {
		received++
	}
	if received > 10 {
		t.Errorf("received %d frames, injected only 10", received)
	}

	select {
	case <-failDone:
	case <-time.After(time.Second):
		t.Fatal("failStream did not return")
	}

	// A second close request must be a no-op.
	s.closeFrames()

	if _, ok := <-s.frames; ok {
		t.Error("frame channel still delivering after close")
	}
}

// TestArgusStream_ConvertFrames_DropsWhenFull verifies the converter never
// blocks on a full frame channel and accounts for the dropped frames.
func TestArgusStream_ConvertFrames_DropsWhenFull(t *testing.T) {
	s := &ArgusStream{
		cfg:    DefaultConfig(),
		frames: make(chan Frame, 1),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	internalFrames := make(chan argus.Frame)
	convDone := make(chan struct{})
	go func() {
		defer close(convDone)
		s.convertFrames(ctx, internalFrames)
	}()

	// Nobody reads s.frames: the first frame fills the buffer, the rest
	// must be dropped without blocking.
	for i := 0; i < 5; i++ {
		internalFrames <- argus.Frame{Seq: uint64(i + 1), Timestamp: time.Now()}
	}
	close(internalFrames)

	select {
	case <-convDone:
	case <-time.After(time.Second):
		t.Fatal("converter blocked on a full frame channel")
	}

	if dropped := atomic.LoadUint64(&s.framesDropped); dropped != 4 {
		t.Errorf("framesDropped = %d, want 4", dropped)
	}
	if frame := <-s.frames; frame.Seq != 1 {
		t.Errorf("buffered frame Seq = %d, want 1", frame.Seq)
	}
}

// TestArgusStream_StartStop exercises a full start/stop cycle against real
// hardware. Requires an attached CSI sensor and the Jetson plugins.
func TestArgusStream_StartStop(t *testing.T) {
	t.Skip("integration test (requires nvarguscamerasrc and a CSI sensor)")

	stream, err := NewArgusStream(DefaultConfig())
	if err != nil {
		t.Fatalf("failed to create stream: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	frames, err := stream.Start(ctx)
	if err != nil {
		t.Fatalf("failed to start stream: %v", err)
	}

	go func() {
		for range frames {
		}
	}()
	time.Sleep(500 * time.Millisecond)

	if err := stream.Stop(); err != nil {
		t.Errorf("first Stop() failed: %v", err)
	}
	if err := stream.Stop(); err != nil {
		t.Errorf("second Stop() failed: %v", err)
	}
}
