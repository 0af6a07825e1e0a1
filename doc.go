// Package csiview displays a Jetson CSI camera feed using a
// hardware-accelerated GStreamer capture pipeline.
//
// # Quick Start
//
// The simplest way to show the camera feed:
//
//	viewer := csiview.NewViewer(csiview.DefaultConfig())
//	viewer.Show()
//
// Show prints the pipeline descriptor to stdout, opens the camera through
// the OpenCV GStreamer backend, and displays frames in a window until the
// user presses ESC or 'q', closes the window, or a frame read fails. The
// video source and the window are released on every exit path.
//
// # Pipeline Descriptor
//
// The capture graph is described by a gst-launch string built from a
// CaptureConfig:
//
//	nvarguscamerasrc sensor-id=0 !
//	video/x-raw(memory:NVMM), width=(int)1920, height=(int)1080, framerate=(fraction)60/1 !
//	nvvidconv flip-method=0 !
//	video/x-raw, width=(int)1920, height=(int)1080, format=(string)BGRx !
//	videoconvert ! video/x-raw, format=(string)BGR ! appsink
//
// CaptureConfig.Pipeline is pure: identical configs produce byte-identical
// descriptors, and malformed values are only surfaced when the backend
// parses the string.
//
// # Headless Capture
//
// For capture without a display window, ArgusStream builds the same graph as
// go-gst elements with an appsink delivering frames on a channel:
//
//	stream, err := csiview.NewArgusStream(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer stream.Stop()
//
//	frames, err := stream.Start(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Recommended: measure sensor stability before consuming frames
//	stats, _ := stream.Warmup(ctx, 5*time.Second)
//	log.Printf("sensor stable: %v, FPS: %.2f", stats.IsStable, stats.FPSMean)
//
//	for frame := range frames {
//	    // frame.Data contains raw BGR bytes, Width x Height pixels
//	}
//
// There is no reconnection layer anywhere: a failed open, a failed read, a
// pipeline error or end-of-stream all end the session. Every failure is a
// reason to stop, not recover.
//
// # Frame Format
//
// Frames are delivered as raw interleaved BGR bytes (Width × Height × 3),
// matching what OpenCV consumers expect.
//
// # Dependencies
//
// The viewer path needs OpenCV built with GStreamer support (gocv). The
// headless path needs the GStreamer 1.x runtime and the NVIDIA Jetson
// plugins (nvarguscamerasrc, nvvidconv) shipped with JetPack.
//
// # Thread Safety
//
// A Viewer is single-threaded: one goroutine owns the source and window for
// the duration of Show. ArgusStream follows the provider contract: Stop is
// idempotent, Stats is safe from any goroutine, and the frame channel is
// closed exactly once.
package csiview
