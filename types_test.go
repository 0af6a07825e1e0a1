package csiview

import "testing"

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.SensorID != 0 {
		t.Errorf("SensorID = %d, want 0", cfg.SensorID)
	}
	if cfg.CaptureWidth != 1920 || cfg.CaptureHeight != 1080 {
		t.Errorf("capture size = %dx%d, want 1920x1080", cfg.CaptureWidth, cfg.CaptureHeight)
	}
	if cfg.DisplayWidth != 1920 || cfg.DisplayHeight != 1080 {
		t.Errorf("display size = %dx%d, want 1920x1080", cfg.DisplayWidth, cfg.DisplayHeight)
	}
	if cfg.Framerate != 60 {
		t.Errorf("Framerate = %d, want 60", cfg.Framerate)
	}
	if cfg.FlipMethod != FlipNone {
		t.Errorf("FlipMethod = %v, want FlipNone", cfg.FlipMethod)
	}
}

func TestFlipMethod_String(t *testing.T) {
	tests := []struct {
		flip FlipMethod
		want string
	}{
		{FlipNone, "none"},
		{FlipCounterclockwise, "counterclockwise"},
		{FlipRotate180, "rotate-180"},
		{FlipClockwise, "clockwise"},
		{FlipHorizontal, "horizontal"},
		{FlipUpperRightDiagonal, "upper-right-diagonal"},
		{FlipVertical, "vertical"},
		{FlipUpperLeftDiagonal, "upper-left-diagonal"},
		{FlipMethod(8), "invalid"},
		{FlipMethod(-1), "invalid"},
	}

	for _, tc := range tests {
		if got := tc.flip.String(); got != tc.want {
			t.Errorf("FlipMethod(%d).String() = %q, want %q", int(tc.flip), got, tc.want)
		}
	}
}

func TestFlipMethod_Valid(t *testing.T) {
	for flip := FlipNone; flip <= FlipUpperLeftDiagonal; flip++ {
		if !flip.Valid() {
			t.Errorf("FlipMethod(%d).Valid() = false, want true", int(flip))
		}
	}

	for _, flip := range []FlipMethod{-1, 8, 42} {
		if flip.Valid() {
			t.Errorf("FlipMethod(%d).Valid() = true, want false", int(flip))
		}
	}
}
