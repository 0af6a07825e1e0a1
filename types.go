package csiview

import "time"

// Frame represents a single decoded video frame with metadata
type Frame struct {
	// Seq is the monotonic sequence number
	Seq uint64
	// Timestamp is when the frame left the pipeline
	Timestamp time.Time
	// Width in pixels
	Width int
	// Height in pixels
	Height int
	// Data contains interleaved BGR bytes (Width × Height × 3)
	Data []byte
	// SensorID identifies the CSI sensor the frame came from
	SensorID int
	// TraceID is a unique identifier for distributed tracing
	TraceID string
}

// CaptureStats contains current capture statistics
type CaptureStats struct {
	// FrameCount is the total number of frames captured
	FrameCount uint64
	// FramesDropped is the total number of frames dropped (channel full)
	FramesDropped uint64
	// DropRate is the percentage of frames dropped (0-100)
	DropRate float64
	// FPSTarget is the configured framerate
	FPSTarget float64
	// FPSReal is the measured real FPS
	FPSReal float64
	// LatencyMS is the time since last frame in milliseconds
	LatencyMS int64
	// SensorID identifies the CSI sensor
	SensorID int
	// Resolution is the output resolution (e.g., "1920x1080")
	Resolution string
	// BytesRead is the total bytes read from the sensor
	BytesRead uint64
	// IsRunning indicates if the stream is currently running
	IsRunning bool
	// ErrorsSensor counts Argus/sensor acquisition errors
	ErrorsSensor uint64
	// ErrorsNegotiation counts caps/format negotiation errors
	ErrorsNegotiation uint64
	// ErrorsResource counts device busy/permission errors
	ErrorsResource uint64
	// ErrorsUnknown counts unclassified errors
	ErrorsUnknown uint64
}

// ViewerStats contains statistics for a display session
type ViewerStats struct {
	// FramesRendered is the number of frames shown in the window
	FramesRendered uint64
	// FPSReal is the measured display rate
	FPSReal float64
	// Uptime is the time since the loop started
	Uptime time.Duration
	// LastFrameAt is when the most recent frame was rendered
	LastFrameAt time.Time
}

// FlipMethod represents the nvvidconv flip-method codes applied by the
// hardware conversion stage
type FlipMethod int

const (
	// FlipNone applies no transform (identity)
	FlipNone FlipMethod = iota
	// FlipCounterclockwise rotates 90° counter-clockwise
	FlipCounterclockwise
	// FlipRotate180 rotates 180°
	FlipRotate180
	// FlipClockwise rotates 90° clockwise
	FlipClockwise
	// FlipHorizontal mirrors around the vertical axis
	FlipHorizontal
	// FlipUpperRightDiagonal mirrors around the upper-right diagonal
	FlipUpperRightDiagonal
	// FlipVertical mirrors around the horizontal axis
	FlipVertical
	// FlipUpperLeftDiagonal mirrors around the upper-left diagonal
	FlipUpperLeftDiagonal
)

// Valid reports whether f is within the range nvvidconv accepts
func (f FlipMethod) Valid() bool {
	return f >= FlipNone && f <= FlipUpperLeftDiagonal
}

// String returns a human-readable string representation of the flip method
func (f FlipMethod) String() string {
	switch f {
	case FlipNone:
		return "none"
	case FlipCounterclockwise:
		return "counterclockwise"
	case FlipRotate180:
		return "rotate-180"
	case FlipClockwise:
		return "clockwise"
	case FlipHorizontal:
		return "horizontal"
	case FlipUpperRightDiagonal:
		return "upper-right-diagonal"
	case FlipVertical:
		return "vertical"
	case FlipUpperLeftDiagonal:
		return "upper-left-diagonal"
	default:
		return "invalid"
	}
}

// Default capture parameters for a Jetson CSI sensor
const (
	DefaultSensorID      = 0
	DefaultCaptureWidth  = 1920
	DefaultCaptureHeight = 1080
	DefaultDisplayWidth  = 1920
	DefaultDisplayHeight = 1080
	DefaultFramerate     = 60
	DefaultFlipMethod    = FlipNone
)

// CaptureConfig contains the capture parameters for a CSI camera session
type CaptureConfig struct {
	// SensorID is the CSI sensor index (non-negative)
	SensorID int `toml:"sensor_id"`
	// CaptureWidth is the sensor capture width in pixels
	CaptureWidth int `toml:"capture_width"`
	// CaptureHeight is the sensor capture height in pixels
	CaptureHeight int `toml:"capture_height"`
	// DisplayWidth is the scaled output width in pixels
	DisplayWidth int `toml:"display_width"`
	// DisplayHeight is the scaled output height in pixels
	DisplayHeight int `toml:"display_height"`
	// Framerate is the capture rate in frames per second
	Framerate int `toml:"framerate"`
	// FlipMethod selects the hardware rotation/mirror transform
	FlipMethod FlipMethod `toml:"flip_method"`
}

// DefaultConfig returns the default capture configuration: sensor 0,
// 1920x1080 capture and display, 60 fps, no flip.
func DefaultConfig() CaptureConfig {
	return CaptureConfig{
		SensorID:      DefaultSensorID,
		CaptureWidth:  DefaultCaptureWidth,
		CaptureHeight: DefaultCaptureHeight,
		DisplayWidth:  DefaultDisplayWidth,
		DisplayHeight: DefaultDisplayHeight,
		Framerate:     DefaultFramerate,
		FlipMethod:    DefaultFlipMethod,
	}
}

// WarmupStats contains statistics collected during stream warm-up phase
type WarmupStats struct {
	// FramesReceived is the number of frames received during warm-up
	FramesReceived int
	// Duration is the actual warm-up duration
	Duration time.Duration
	// FPSMean is the mean FPS across all frames
	FPSMean float64
	// FPSStdDev is the standard deviation of FPS
	FPSStdDev float64
	// FPSMin is the minimum instantaneous FPS
	FPSMin float64
	// FPSMax is the maximum instantaneous FPS
	FPSMax float64
	// IsStable is true if FPS is stable (stddev < 15% of mean AND jitter < 20%)
	IsStable bool
	// JitterMean is the average inter-frame interval variance in seconds
	JitterMean float64
	// JitterStdDev is the standard deviation of jitter in seconds
	JitterStdDev float64
	// JitterMax is the maximum jitter observed in seconds
	JitterMax float64
}
