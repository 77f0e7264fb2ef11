package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/banshee-data/depthsense/internal/config"
	"github.com/banshee-data/depthsense/internal/device"
	"github.com/banshee-data/depthsense/internal/metrics"
	"github.com/banshee-data/depthsense/internal/pointcloud"
	"github.com/banshee-data/depthsense/internal/session"
	"github.com/banshee-data/depthsense/internal/units"
	"github.com/banshee-data/depthsense/internal/version"
)

var (
	configPath    = flag.String("config", "", "Path to session config JSON (default: "+config.DefaultConfigPath+" if present)")
	listen        = flag.String("listen", ":8090", "Listen address for /debug/ and /metrics")
	fps           = flag.Float64("fps", 0, "Application frame rate; 0 uses the config frame_interval")
	disableDevice = flag.Bool("disable-device", false, "Run without a sensor: every channel stays empty")
	bodies        = flag.Int("bodies", 2, "Number of people in the synthetic scene")
	statsInterval = flag.Duration("stats-interval", 10*time.Second, "How often to log acquisition stats (0 disables)")
	lowThreshold  = flag.String("low", "", "Near point-cloud cutoff, e.g. 500mm or 0.5m (default: config low_threshold_mm)")
	highThreshold = flag.String("high", "", "Far point-cloud cutoff, e.g. 4500mm or 4.5m (default: config high_threshold_mm)")
	showVersion   = flag.Bool("version", false, "Print version and exit")
)

// loadConfig resolves the session config from -config, falling back to
// the defaults file and then to built-in defaults.
func loadConfig(path string) (*config.SessionConfig, error) {
	if path != "" {
		return config.LoadSessionConfig(path)
	}
	if _, err := os.Stat(config.DefaultConfigPath); err == nil {
		return config.LoadSessionConfig(config.DefaultConfigPath)
	}
	return config.DefaultSessionConfig(), nil
}

// frameInterval converts -fps into an interval, falling back to the
// config value.
func frameInterval(fps float64, cfg *config.SessionConfig) time.Duration {
	if fps > 0 {
		return time.Duration(float64(time.Second) / fps)
	}
	return cfg.GetFrameInterval()
}

// thresholds returns the point-cloud window from the config, overridden
// by -low and -high when set.
func thresholds(low, high string, cfg *config.SessionConfig) (units.Millimetres, units.Millimetres, error) {
	lo, hi := cfg.GetLowThreshold(), cfg.GetHighThreshold()
	var err error
	if low != "" {
		if lo, err = units.ParseDepth(low); err != nil {
			return 0, 0, fmt.Errorf("-low: %w", err)
		}
	}
	if high != "" {
		if hi, err = units.ParseDepth(high); err != nil {
			return 0, 0, fmt.Errorf("-high: %w", err)
		}
	}
	if err := pointcloud.Validate(lo, hi); err != nil {
		return 0, 0, err
	}
	return lo, hi, nil
}

func newBoundary(disabled bool, bodies int) device.Boundary {
	if disabled {
		return device.NewDisabled()
	}
	b := device.NewSynthetic()
	b.Bodies = bodies
	return b
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println("depthsense", version.String())
		return
	}
	if *listen == "" {
		log.Fatal("Listen address is required")
	}
	if *bodies < 0 || *bodies > device.MaxUsers {
		log.Fatalf("-bodies must be between 0 and %d", device.MaxUsers)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	low, high, err := thresholds(*lowThreshold, *highThreshold, cfg)
	if err != nil {
		log.Fatalf("invalid point cloud thresholds: %v", err)
	}
	interval := frameInterval(*fps, cfg)
	log.Printf("depthsense %s starting: frame interval %s", version.String(), interval)

	if err := device.InitializeRuntime(nil); err != nil {
		log.Fatalf("failed to initialize device runtime: %v", err)
	}
	defer device.TeardownRuntime()

	registry := prometheus.NewRegistry()
	sessionMetrics, err := metrics.NewSessionMetrics(registry)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}

	opts := append(session.Options(cfg), session.WithFrameInterval(interval), session.WithMetrics(sessionMetrics))
	sess := session.New(newBoundary(*disableDevice, *bodies), opts...)
	if err := sess.ApplyConfig(cfg); err != nil {
		log.Fatalf("failed to apply config: %v", err)
	}
	if err := sess.SetThresholdsPC(low, high); err != nil {
		log.Fatalf("failed to set point cloud thresholds: %v", err)
	}
	log.Printf("point cloud window %.3fm to %.3fm", low.Metres(), high.Metres())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sess.Open(ctx); err != nil {
		log.Fatalf("failed to open device session: %v", err)
	}
	defer sess.Close()

	var wg sync.WaitGroup

	// Application frame loop: pulls every enabled channel once per frame
	// on this goroutine, which owns the session's get operations.
	wg.Add(1)
	go func() {
		defer wg.Done()
		runFrameLoop(ctx, sess, interval, *statsInterval)
		log.Print("frame loop terminated")
	}()

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		mux := http.NewServeMux()
		sess.AttachAdminRoutes(mux)
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{
			ErrorLog:      log.New(os.Stderr, "metrics handler: ", log.LstdFlags),
			ErrorHandling: promhttp.HTTPErrorOnError,
		}))

		server := &http.Server{
			Addr:    *listen,
			Handler: mux,
		}

		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
			if err := server.Close(); err != nil {
				log.Printf("HTTP server force close error: %v", err)
			}
		}
		log.Printf("HTTP server routine stopped")
	}()

	wg.Wait()
	log.Printf("Graceful shutdown complete")
}
