// Command pulse runs the streaming emotion-inference daemon: it reads
// heart-monitor reports from a serial device (or a mock in dev mode), feeds
// them through the inference engine, records emitted results to sqlite, and
// serves the HTTP API.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/banshee-data/pulse.report/internal/api"
	"github.com/banshee-data/pulse.report/internal/config"
	"github.com/banshee-data/pulse.report/internal/db"
	"github.com/banshee-data/pulse.report/internal/emotion"
	"github.com/banshee-data/pulse.report/internal/engine"
	"github.com/banshee-data/pulse.report/internal/monitoring"
	"github.com/banshee-data/pulse.report/internal/serialmux"
	"github.com/banshee-data/pulse.report/internal/version"
)

var (
	devMode    = flag.Bool("dev", false, "Run in dev mode with a mock heart monitor")
	listen     = flag.String("listen", "", "Listen address (overrides config)")
	port       = flag.String("port", "/dev/ttyACM0", "Serial port to use (ignored in dev mode)")
	modelPath  = flag.String("model", "", "Model JSON file (empty uses the built-in default model)")
	configPath = flag.String("config", "", "Pipeline config JSON file")
	migrateDir = flag.String("migrations", "", "Run database migrations from this directory and exit")
)

// mockLine is the report replayed by the dev-mode monitor: HR 72 with
// plausible RR intervals.
const mockLine = "0,72,850;820;830;845;835;825"

func main() {
	flag.Parse()
	log.Printf("pulse %s (%s, built %s)", version.Version, version.GitSHA, version.BuildTime)

	cfg := config.EmptyPipelineConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadPipelineConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}

	listenAddr := cfg.GetListen()
	if *listen != "" {
		listenAddr = *listen
	}

	database, err := db.NewDB(cfg.GetDBPath())
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	if *migrateDir != "" {
		if err := database.MigrateUp(*migrateDir); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
		log.Printf("migrations applied")
		return
	}

	model := emotion.DefaultModel()
	path := cfg.GetModelPath()
	if *modelPath != "" {
		path = *modelPath
	}
	if path != "" {
		model, err = emotion.LoadModelFile(path)
		if err != nil {
			log.Fatalf("failed to load model: %v", err)
		}
	}

	eng, err := engine.New(cfg.EngineConfig(), model)
	if err != nil {
		log.Fatalf("failed to construct engine: %v", err)
	}

	var monitor serialmux.SerialMuxInterface
	if *devMode {
		monitor = serialmux.NewMockSerialMux([]byte(mockLine))
	} else {
		monitor, err = serialmux.NewRealSerialMux(*port, serialmux.DefaultPortOptions())
		if err != nil {
			log.Fatalf("failed to open heart monitor port: %v", err)
		}
	}
	defer monitor.Close()

	if err := monitor.Initialize(); err != nil {
		log.Fatalf("failed to initialize device: %v", err)
	}

	sessionID, err := database.StartSession(model.ModelID, model.Version)
	if err != nil {
		log.Fatalf("failed to start session: %v", err)
	}
	log.Printf("session %s started with model %s/%s", sessionID, model.ModelID, model.Version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Device read loop: parse each report and push it into the window.
	go func() {
		if err := monitor.Monitor(ctx); err != nil && ctx.Err() == nil {
			log.Printf("monitor stopped: %v", err)
			cancel()
		}
	}()

	subID, lines := monitor.Subscribe()
	defer monitor.Unsubscribe(subID)
	go func() {
		for line := range lines {
			if serialmux.IsStatusLine(line) {
				continue
			}
			sample, err := serialmux.ParseSampleLine(line)
			if err != nil {
				monitoring.Warn("unparseable device report", map[string]interface{}{
					"error": err.Error(),
				})
				continue
			}
			eng.Push(sample.HR, sample.RRIntervalsMs, time.Now(), nil)
		}
	}()

	// Inference loop: poll at the step interval and persist emissions.
	go func() {
		ticker := time.NewTicker(eng.Config().StepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for _, result := range eng.ConsumeReady() {
					if err := database.RecordResult(sessionID, result); err != nil {
						log.Printf("failed to record result: %v", err)
						continue
					}
					log.Printf("inference: %s (%.2f)", result.Emotion, result.Confidence)
				}
			}
		}
	}()

	server := api.NewServer(eng, database, sessionID)
	httpServer := &http.Server{
		Addr:    listenAddr,
		Handler: server.ServeMux(),
	}
	go func() {
		log.Printf("listening on %s", listenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server failed: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Printf("shutting down")

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
}
