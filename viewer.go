package csiview

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"gocv.io/x/gocv"
)

// WindowTitle is the default title of the display window.
const WindowTitle = "CSI Camera"

const (
	keyEscape = 27
	keyQuit   = 'q'

	// keyPollInterval bounds each WaitKey call in milliseconds. It is also
	// the ceiling on the display cadence.
	keyPollInterval = 10
)

// videoSource is the subset of *gocv.VideoCapture the display loop needs.
type videoSource interface {
	IsOpened() bool
	Read(m *gocv.Mat) bool
	Close() error
}

// displayWindow is the subset of *gocv.Window the display loop needs.
type displayWindow interface {
	IMShow(img gocv.Mat)
	WaitKey(delay int) int
	GetWindowProperty(flag gocv.WindowPropertyFlag) float64
	Close() error
}

// Viewer runs the capture/display loop for a single CSI camera session.
//
// The viewer owns its video source and window exclusively for the duration
// of one Show() call; both are released on every exit path.
type Viewer struct {
	cfg   CaptureConfig
	title string

	openSource func(pipeline string) (videoSource, error)
	openWindow func(title string) displayWindow

	framesRendered uint64
	started        time.Time
	lastFrameAt    time.Time
}

// NewViewer creates a viewer for the given capture configuration.
//
// The configuration is not validated here; malformed values surface when the
// capture backend fails to open the descriptor.
func NewViewer(cfg CaptureConfig) *Viewer {
	return &Viewer{
		cfg:        cfg,
		title:      WindowTitle,
		openSource: openGstreamerSource,
		openWindow: openDisplayWindow,
	}
}

// SetTitle overrides the display window title. Must be called before Show().
func (v *Viewer) SetTitle(title string) {
	if title != "" {
		v.title = title
	}
}

// Show opens the camera and displays frames until an exit condition fires:
// a failed frame read, the window being closed by the user, or ESC/'q'.
//
// The pipeline descriptor is printed to stdout before the source is opened.
// Open and read failures are reported and end the session; they never
// propagate as errors. The source and the window are released exactly once
// on every exit path.
func (v *Viewer) Show() {
	pipeline := v.cfg.Pipeline()
	fmt.Println(pipeline)

	source, err := v.openSource(pipeline)
	if source != nil {
		defer source.Close()
	}
	if err != nil {
		slog.Error("csiview: unable to open camera",
			"error", err,
			"sensor_id", v.cfg.SensorID,
		)
		return
	}
	if !source.IsOpened() {
		slog.Error("csiview: unable to open camera",
			"sensor_id", v.cfg.SensorID,
		)
		return
	}

	window := v.openWindow(v.title)
	defer window.Close()

	img := gocv.NewMat()
	defer img.Close()

	v.started = time.Now()
	atomic.StoreUint64(&v.framesRendered, 0)

	for {
		if ok := source.Read(&img); !ok {
			slog.Warn("csiview: failed to read frame from camera",
				"sensor_id", v.cfg.SensorID,
				"frames_rendered", atomic.LoadUint64(&v.framesRendered),
			)
			return
		}

		// Under GTK (the Jetson default HighGUI backend) the visibility
		// property is unreliable; the autosize property goes negative once
		// the user closes the window.
		if window.GetWindowProperty(gocv.WindowPropertyAutosize) < 0 {
			slog.Debug("csiview: window closed by user")
			return
		}

		window.IMShow(img)
		atomic.AddUint64(&v.framesRendered, 1)
		v.lastFrameAt = time.Now()

		// Mask to 8 bits: on 64-bit GTK builds the high bits carry
		// modifier state.
		key := window.WaitKey(keyPollInterval) & 0xff
		if key == keyEscape || key == keyQuit {
			slog.Info("csiview: exit key pressed", "key", key)
			return
		}
	}
}

// Stats returns statistics for the current or most recent display session.
func (v *Viewer) Stats() ViewerStats {
	rendered := atomic.LoadUint64(&v.framesRendered)

	var uptime time.Duration
	var fps float64
	if !v.started.IsZero() {
		uptime = time.Since(v.started)
		if s := uptime.Seconds(); s > 0 {
			fps = float64(rendered) / s
		}
	}

	return ViewerStats{
		FramesRendered: rendered,
		FPSReal:        fps,
		Uptime:         uptime,
		LastFrameAt:    v.lastFrameAt,
	}
}
