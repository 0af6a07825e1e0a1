package csiview

import "fmt"

// Pipeline builds the GStreamer launch descriptor for the capture graph.
//
// Stage order:
//
//	nvarguscamerasrc → NVMM caps (capture size, framerate) → nvvidconv (flip) →
//	BGRx caps (display size) → videoconvert → BGR caps → appsink
//
// The builder is pure and deterministic: identical configs yield
// byte-identical descriptors. It performs no validation; malformed values
// appear literally in the string and surface when the backend parses it.
func (c CaptureConfig) Pipeline() string {
	return fmt.Sprintf(
		"nvarguscamerasrc sensor-id=%d ! "+
			"video/x-raw(memory:NVMM), width=(int)%d, height=(int)%d, framerate=(fraction)%d/1 ! "+
			"nvvidconv flip-method=%d ! "+
			"video/x-raw, width=(int)%d, height=(int)%d, format=(string)BGRx ! "+
			"videoconvert ! "+
			"video/x-raw, format=(string)BGR ! appsink",
		c.SensorID,
		c.CaptureWidth,
		c.CaptureHeight,
		c.Framerate,
		c.FlipMethod,
		c.DisplayWidth,
		c.DisplayHeight,
	)
}
