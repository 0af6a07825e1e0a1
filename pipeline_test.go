package csiview

import (
	"fmt"
	"strings"
	"testing"
)

// TestPipeline_DefaultDescriptor pins the exact descriptor produced by the
// default configuration. Downstream tooling greps this string, so it must
// not drift.
func TestPipeline_DefaultDescriptor(t *testing.T) {
	want := "nvarguscamerasrc sensor-id=0 ! " +
		"video/x-raw(memory:NVMM), width=(int)1920, height=(int)1080, framerate=(fraction)60/1 ! " +
		"nvvidconv flip-method=0 ! " +
		"video/x-raw, width=(int)1920, height=(int)1080, format=(string)BGRx ! " +
		"videoconvert ! " +
		"video/x-raw, format=(string)BGR ! appsink"

	got := DefaultConfig().Pipeline()
	if got != want {
		t.Errorf("default descriptor mismatch:\n got: %s\nwant: %s", got, want)
	}
}

// TestPipeline_Deterministic verifies that identical configs always produce
// byte-identical descriptors.
func TestPipeline_Deterministic(t *testing.T) {
	configs := []CaptureConfig{
		DefaultConfig(),
		{SensorID: 1, CaptureWidth: 1280, CaptureHeight: 720, DisplayWidth: 960, DisplayHeight: 540, Framerate: 30, FlipMethod: FlipRotate180},
		{SensorID: 3, CaptureWidth: 3280, CaptureHeight: 2464, DisplayWidth: 820, DisplayHeight: 616, Framerate: 21, FlipMethod: FlipVertical},
	}

	for i, cfg := range configs {
		first := cfg.Pipeline()
		for run := 0; run < 10; run++ {
			if got := cfg.Pipeline(); got != first {
				t.Fatalf("config %d: descriptor changed between calls:\n%s\n%s", i, first, got)
			}
		}
	}
}

// TestPipeline_StageOrder verifies that every parameter appears exactly once
// and the stages come in the documented order. Distinct values everywhere so
// capture and display dimensions cannot be confused.
func TestPipeline_StageOrder(t *testing.T) {
	cfg := CaptureConfig{
		SensorID:      2,
		CaptureWidth:  1280,
		CaptureHeight: 720,
		DisplayWidth:  960,
		DisplayHeight: 540,
		Framerate:     30,
		FlipMethod:    FlipClockwise,
	}

	descriptor := cfg.Pipeline()

	tokens := []string{
		"nvarguscamerasrc sensor-id=2",
		"video/x-raw(memory:NVMM), width=(int)1280, height=(int)720, framerate=(fraction)30/1",
		"nvvidconv flip-method=3",
		"video/x-raw, width=(int)960, height=(int)540, format=(string)BGRx",
		"videoconvert",
		"video/x-raw, format=(string)BGR",
		"appsink",
	}

	lastIndex := -1
	for _, token := range tokens {
		if n := strings.Count(descriptor, token); n != 1 {
			t.Errorf("token %q appears %d times, want exactly 1 in:\n%s", token, n, descriptor)
			continue
		}
		idx := strings.Index(descriptor, token)
		if idx <= lastIndex {
			t.Errorf("token %q out of order (index %d after %d) in:\n%s", token, idx, lastIndex, descriptor)
		}
		lastIndex = idx
	}
}

// TestPipeline_NoValidation verifies the builder is pure text templating:
// malformed values appear literally instead of failing.
func TestPipeline_NoValidation(t *testing.T) {
	cfg := CaptureConfig{
		SensorID:      -1,
		CaptureWidth:  0,
		CaptureHeight: -480,
		DisplayWidth:  0,
		DisplayHeight: 0,
		Framerate:     0,
		FlipMethod:    FlipMethod(42),
	}

	descriptor := cfg.Pipeline()

	for _, literal := range []string{
		"sensor-id=-1",
		"width=(int)0",
		"height=(int)-480",
		"framerate=(fraction)0/1",
		"flip-method=42",
	} {
		if !strings.Contains(descriptor, literal) {
			t.Errorf("expected literal %q in descriptor:\n%s", literal, descriptor)
		}
	}
}

// TestPipeline_AllFlipMethods verifies every valid flip code lands in the
// nvvidconv stage.
func TestPipeline_AllFlipMethods(t *testing.T) {
	for flip := FlipNone; flip <= FlipUpperLeftDiagonal; flip++ {
		cfg := DefaultConfig()
		cfg.FlipMethod = flip

		want := fmt.Sprintf("nvvidconv flip-method=%d", flip)
		if !strings.Contains(cfg.Pipeline(), want) {
			t.Errorf("flip %s: descriptor missing %q", flip, want)
		}
	}
}
