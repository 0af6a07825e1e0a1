package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	csiview "github.com/visiona/csiview"
)

const version = "v0.1.0"

func main() {
	sensor := flag.Int("sensor", csiview.DefaultSensorID, "CSI sensor index")
	width := flag.Int("width", csiview.DefaultCaptureWidth, "capture width in pixels")
	height := flag.Int("height", csiview.DefaultCaptureHeight, "capture height in pixels")
	displayWidth := flag.Int("display-width", csiview.DefaultDisplayWidth, "display width in pixels")
	displayHeight := flag.Int("display-height", csiview.DefaultDisplayHeight, "display height in pixels")
	fps := flag.Int("fps", csiview.DefaultFramerate, "capture framerate")
	flip := flag.Int("flip", int(csiview.DefaultFlipMethod), "nvvidconv flip method (0-7)")
	title := flag.String("title", csiview.WindowTitle, "display window title")
	configPath := flag.String("config", "", "optional TOML config file")
	headless := flag.Bool("headless", false, "capture without a display window, log stats")
	warmup := flag.Duration("warmup", 0, "measure sensor stability for this duration before headless capture")
	statsInterval := flag.Duration("stats-interval", 10*time.Second, "interval between headless stats reports")
	debug := flag.Bool("debug", false, "enable debug logging")
	showVersion := flag.Bool("version", false, "show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("csiview %s\n", version)
		return
	}

	// Set up logging; stdout stays reserved for the pipeline descriptor
	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	cfg := csiview.DefaultConfig()
	windowTitle := csiview.WindowTitle

	if *configPath != "" {
		fileCfg, err := csiview.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = fileCfg.Capture
		windowTitle = fileCfg.WindowTitle
	}

	// Explicit flags override config file values
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "sensor":
			cfg.SensorID = *sensor
		case "width":
			cfg.CaptureWidth = *width
		case "height":
			cfg.CaptureHeight = *height
		case "display-width":
			cfg.DisplayWidth = *displayWidth
		case "display-height":
			cfg.DisplayHeight = *displayHeight
		case "fps":
			cfg.Framerate = *fps
		case "flip":
			cfg.FlipMethod = csiview.FlipMethod(*flip)
		case "title":
			windowTitle = *title
		}
	})

	if *headless {
		runHeadless(cfg, *warmup, *statsInterval)
		return
	}

	viewer := csiview.NewViewer(cfg)
	viewer.SetTitle(windowTitle)

	// Open and read failures are reported inside Show; the process still
	// exits 0 for those paths.
	viewer.Show()

	stats := viewer.Stats()
	slog.Info("csiview: session ended",
		"frames_rendered", stats.FramesRendered,
		"fps_real", fmt.Sprintf("%.2f", stats.FPSReal),
		"uptime", stats.Uptime,
	)
}

// runHeadless captures frames without a display window until SIGINT/SIGTERM,
// logging periodic statistics.
func runHeadless(cfg csiview.CaptureConfig, warmupFor, statsEvery time.Duration) {
	stream, err := csiview.NewArgusStream(cfg)
	if err != nil {
		log.Fatalf("Failed to create capture stream: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Stop is registered before the error check so a partially started
	// pipeline is still released.
	frames, err := stream.Start(ctx)
	defer stream.Stop()
	if err != nil {
		slog.Error("csiview: unable to start capture", "error", err)
		return
	}

	if warmupFor > 0 {
		stats, err := stream.Warmup(ctx, warmupFor)
		if err != nil {
			slog.Error("csiview: warmup failed", "error", err)
			return
		}
		slog.Info("csiview: warmup complete",
			"fps_mean", fmt.Sprintf("%.2f", stats.FPSMean),
			"stable", stats.IsStable,
		)
	}

	ticker := time.NewTicker(statsEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("csiview: shutting down")
			return

		case <-ticker.C:
			s := stream.Stats()
			slog.Info("csiview: capture stats",
				"frames", s.FrameCount,
				"fps_real", fmt.Sprintf("%.2f", s.FPSReal),
				"dropped", s.FramesDropped,
				"drop_rate", fmt.Sprintf("%.1f%%", s.DropRate),
				"latency_ms", s.LatencyMS,
			)

		case _, ok := <-frames:
			if !ok {
				slog.Warn("csiview: capture stream ended")
				return
			}
		}
	}
}
