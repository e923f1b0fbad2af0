package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/judwhite/go-svc"

	"github.com/labelpoint/labeld/internal/auth"
	"github.com/labelpoint/labeld/internal/config"
	"github.com/labelpoint/labeld/internal/server"
	"github.com/labelpoint/labeld/internal/vision"
	"github.com/labelpoint/labeld/internal/worker"
)

// GetEnvConfig returns the current environment configuration
func GetEnvConfig() config.Environment {
	return config.GetEnvironment(config.BuildEnvironment)
}

// Program implements svc.Service interface
type Program struct {
	wg               sync.WaitGroup
	quit             chan struct{}
	ctx              context.Context
	cancel           context.CancelFunc
	httpServer       *http.Server
	wsServer         *server.Server
	jobWorker        *worker.Worker
	authMgr          *auth.Manager
	startTime        time.Time
	printerDiscovery *PrinterDiscovery
}

// Init initializes the service
func (p *Program) Init(_ svc.Environment) error {
	envConfig := GetEnvConfig()

	if err := initLogging(envConfig); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	log.Println("╔════════════════════════════════════════════════════════════╗")
	log.Println("║   🏷️ LABELD - Label Print Service                          ║")
	log.Println("╚════════════════════════════════════════════════════════════╝")
	log.Printf("[INIT] 🚀 Starting service - Environment: %s", envConfig.Name)
	log.Printf("[INIT] 📅 Build: %s %s", config.BuildDate, config.BuildTime)

	return nil
}

// Start starts the service
func (p *Program) Start() error {
	p.quit = make(chan struct{})
	p.startTime = time.Now()
	p.ctx, p.cancel = context.WithCancel(context.Background())
	cfg := GetEnvConfig()

	// Auth manager is bound to the service context for clean shutdown
	p.authMgr = auth.NewManager(p.ctx)

	p.printerDiscovery = NewPrinterDiscovery(30 * time.Second)
	p.printerDiscovery.LogStartupDiagnostics()

	p.wsServer = server.NewServer(server.Config{
		QueueSize:      cfg.QueueCapacity,
		AllowedOrigins: cfg.AllowedOrigins,
	}, p.printerDiscovery, p.authMgr)

	p.jobWorker = worker.NewWorker(
		p.wsServer.JobQueue(),
		p.wsServer,
		worker.Config{
			SerialPort: cfg.SerialPort,
			SerialBaud: cfg.SerialBaud,
			Detector:   vision.NewCVDetector(),
		},
	)
	p.jobWorker.Start()

	// Health handler (closure capturing program state)
	healthHandler := func(w http.ResponseWriter, _ *http.Request) {
		current, capacity := p.wsServer.QueueStatus()
		if capacity == 0 {
			current = 0
		}
		stats := p.jobWorker.Stats()

		var utilization float64
		if capacity > 0 {
			utilization = float64(current) / float64(capacity) * 100
		}

		response := HealthResponse{
			Status: "ok",
			Queue: QueueStatus{
				Current:     current,
				Capacity:    capacity,
				Utilization: utilization,
			},
			Worker: WorkerStatus{
				Running:       stats.IsRunning,
				JobsProcessed: stats.JobsProcessed,
				JobsFailed:    stats.JobsFailed,
			},
			Printers: p.printerDiscovery.GetSummary(),
			Build: BuildInfo{
				Env:  config.BuildEnvironment,
				Date: config.BuildDate,
				Time: config.BuildTime,
			},
			Uptime: int(time.Since(p.startTime).Seconds()),
		}

		if response.Printers.Status == "error" {
			response.Status = "degraded"
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		_ = json.NewEncoder(w).Encode(response)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", p.wsServer.HandleWebSocket) // WS is public; token validates inside per-message
	mux.HandleFunc("/health", healthHandler)          // Health is public for monitoring tools

	p.httpServer = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		log.Println("┌─────────────────────────────────────────────────────────────┐")
		log.Printf("│ 🏷️ LABELD READY - Environment: %-28s│", cfg.Name)
		log.Printf("│ 🔌 WebSocket: ws://%s/ws%-25s│", cfg.ListenAddr, "")
		log.Printf("│ 💚 Health:    http://%s/health%-20s│", cfg.ListenAddr, "")
		log.Printf("│ 🔐 Auth:      %-44v│", p.authMgr.Enabled())
		log.Println("└─────────────────────────────────────────────────────────────┘")

		if err := p.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[HTTP] ❌ Error starting HTTP server: %v", err)
		}
	}()

	return nil
}

// Stop stops the service gracefully
func (p *Program) Stop() error {
	log.Println("[STOP] 🛑 Service shutting down...")

	// 1. Cancel context (stops auth cleanup goroutine)
	p.cancel()

	// 2. Stop job worker
	if p.jobWorker != nil {
		p.jobWorker.Stop()
	}

	// 3. Graceful HTTP shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if p.httpServer != nil {
		if err := p.httpServer.Shutdown(ctx); err != nil {
			log.Printf("[STOP] ⚠️ HTTP shutdown error: %v", err)
		}
	}

	// 4. Shutdown WebSocket server
	if p.wsServer != nil {
		p.wsServer.Shutdown()
	}

	close(p.quit)
	p.wg.Wait()

	uptime := time.Since(p.startTime)
	log.Printf("[STOP] ✅ Service stopped (uptime: %v)", uptime.Round(time.Second))
	return nil
}

func initLogging(envConfig config.Environment) error {
	logPath := envConfig.LogPath(programDataDir())
	logDir := filepath.Dir(logPath)

	if err := os.MkdirAll(logDir, 0750); err != nil {
		return err
	}

	if err := InitLogger(logPath, envConfig.Verbose); err != nil {
		return err
	}

	log.Printf("[INIT] 📁 Log file: %s", logPath)
	return nil
}

// programDataDir resolves the host's service-data root. PROGRAMDATA is set
// on Windows; elsewhere fall back to /var/lib.
func programDataDir() string {
	if dir := os.Getenv("PROGRAMDATA"); dir != "" {
		return dir
	}
	return "/var/lib"
}
