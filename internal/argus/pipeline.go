package argus

import (
	"fmt"
	"log/slog"

	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"
)

// Config contains configuration for GStreamer pipeline creation
type Config struct {
	SensorID      int
	CaptureWidth  int
	CaptureHeight int
	DisplayWidth  int
	DisplayHeight int
	Framerate     int
	FlipMethod    int
}

// PipelineElements holds references to GStreamer pipeline elements
// These references are needed for monitoring and cleanup
type PipelineElements struct {
	Pipeline  *gst.Pipeline
	AppSink   *app.Sink
	Source    *gst.Element
	Converter *gst.Element // nvvidconv, carries the flip transform
}

// CreatePipeline creates and configures a GStreamer pipeline for CSI capture
//
// Pipeline structure:
//
//	nvarguscamerasrc → capsfilter(NVMM) → nvvidconv → capsfilter(BGRx) →
//	videoconvert → capsfilter(BGR) → appsink
//
// All pads are static, so elements are linked at creation time. The pipeline
// is configured but NOT started (state remains NULL). Caller must call
// pipeline.SetState(gst.StatePlaying) to start.
func CreatePipeline(cfg Config) (*PipelineElements, error) {
	// Initialize GStreamer (safe to call multiple times)
	gst.Init(nil)

	pipeline, err := gst.NewPipeline("")
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline: %w", err)
	}

	source, err := gst.NewElement("nvarguscamerasrc")
	if err != nil {
		return nil, fmt.Errorf("failed to create nvarguscamerasrc: %w", err)
	}
	source.SetProperty("sensor-id", cfg.SensorID)

	// Capture caps: NVMM memory straight from the ISP
	capsCapture, err := gst.NewElement("capsfilter")
	if err != nil {
		return nil, fmt.Errorf("failed to create capture capsfilter: %w", err)
	}
	capsCapture.SetProperty("caps", gst.NewCapsFromString(buildCaptureCaps(cfg)))

	// nvvidconv scales on the ISP and applies the flip transform
	converter, err := gst.NewElement("nvvidconv")
	if err != nil {
		return nil, fmt.Errorf("failed to create nvvidconv: %w", err)
	}
	converter.SetProperty("flip-method", cfg.FlipMethod)

	capsDisplay, err := gst.NewElement("capsfilter")
	if err != nil {
		return nil, fmt.Errorf("failed to create display capsfilter: %w", err)
	}
	capsDisplay.SetProperty("caps", gst.NewCapsFromString(buildDisplayCaps(cfg)))

	// Software conversion BGRx → BGR for the appsink consumer
	videoconvert, err := gst.NewElement("videoconvert")
	if err != nil {
		return nil, fmt.Errorf("failed to create videoconvert: %w", err)
	}

	capsBGR, err := gst.NewElement("capsfilter")
	if err != nil {
		return nil, fmt.Errorf("failed to create BGR capsfilter: %w", err)
	}
	capsBGR.SetProperty("caps", gst.NewCapsFromString("video/x-raw, format=(string)BGR"))

	appsink, err := app.NewAppSink()
	if err != nil {
		return nil, fmt.Errorf("failed to create appsink: %w", err)
	}
	appsink.SetProperty("sync", false)    // No sync with clock (real-time)
	appsink.SetProperty("max-buffers", 1) // Keep only latest frame
	appsink.SetProperty("drop", true)     // Drop old frames
	appsink.SetProperty("qos", true)      // Upstream drop notifications

	pipeline.AddMany(
		source,
		capsCapture,
		converter,
		capsDisplay,
		videoconvert,
		capsBGR,
		appsink.Element,
	)

	if err := gst.ElementLinkMany(
		source,
		capsCapture,
		converter,
		capsDisplay,
		videoconvert,
		capsBGR,
		appsink.Element,
	); err != nil {
		return nil, fmt.Errorf("failed to link pipeline elements: %w", err)
	}

	slog.Debug("argus: pipeline created",
		"sensor_id", cfg.SensorID,
		"capture", fmt.Sprintf("%dx%d@%d", cfg.CaptureWidth, cfg.CaptureHeight, cfg.Framerate),
		"display", fmt.Sprintf("%dx%d", cfg.DisplayWidth, cfg.DisplayHeight),
		"flip_method", cfg.FlipMethod,
	)

	return &PipelineElements{
		Pipeline:  pipeline,
		AppSink:   appsink,
		Source:    source,
		Converter: converter,
	}, nil
}

// DestroyPipeline cleans up GStreamer pipeline resources
//
// Sets pipeline state to NULL and releases all resources.
// Safe to call even if the pipeline is already destroyed.
func DestroyPipeline(elements *PipelineElements) error {
	if elements == nil || elements.Pipeline == nil {
		return nil
	}

	if err := elements.Pipeline.SetState(gst.StateNull); err != nil {
		return fmt.Errorf("failed to set pipeline to NULL: %w", err)
	}

	return nil
}

// buildCaptureCaps builds the caps string for the sensor stage
//
// Format: "video/x-raw(memory:NVMM), width=(int)W, height=(int)H, framerate=(fraction)R/1"
func buildCaptureCaps(cfg Config) string {
	return fmt.Sprintf(
		"video/x-raw(memory:NVMM), width=(int)%d, height=(int)%d, framerate=(fraction)%d/1",
		cfg.CaptureWidth, cfg.CaptureHeight, cfg.Framerate,
	)
}

// buildDisplayCaps builds the caps string for the scaled output stage
//
// Format: "video/x-raw, width=(int)W, height=(int)H, format=(string)BGRx"
func buildDisplayCaps(cfg Config) string {
	return fmt.Sprintf(
		"video/x-raw, width=(int)%d, height=(int)%d, format=(string)BGRx",
		cfg.DisplayWidth, cfg.DisplayHeight,
	)
}
