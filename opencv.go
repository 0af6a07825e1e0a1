package csiview

import (
	"gocv.io/x/gocv"
)

// openGstreamerSource opens a video source from a pipeline descriptor using
// the OpenCV GStreamer backend.
//
// gocv releases the underlying capture itself when the open fails, so a nil
// source is returned alongside the error.
func openGstreamerSource(pipeline string) (videoSource, error) {
	capture, err := gocv.OpenVideoCaptureWithAPI(pipeline, gocv.VideoCaptureGstreamer)
	if err != nil {
		return nil, err
	}
	return capture, nil
}

// openDisplayWindow creates a HighGUI window with the auto-size policy.
func openDisplayWindow(title string) displayWindow {
	window := gocv.NewWindow(title)
	window.SetWindowProperty(gocv.WindowPropertyAutosize, gocv.WindowAutosize)
	return window
}
