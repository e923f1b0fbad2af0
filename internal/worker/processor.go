// Package worker contains the job processor consuming the daemon's queue.
package worker

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image/png"
	"log"
	"runtime/debug"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/labelpoint/labeld/internal/dialect"
	"github.com/labelpoint/labeld/internal/label"
	"github.com/labelpoint/labeld/internal/render"
	"github.com/labelpoint/labeld/internal/server"
	"github.com/labelpoint/labeld/internal/suggest"
	"github.com/labelpoint/labeld/internal/transport"
	"github.com/labelpoint/labeld/internal/vision"
	workererrors "github.com/labelpoint/labeld/internal/worker/errors"
)

// Config holds worker configuration
type Config struct {
	SerialPort  string // fallback port when no USB printer is attached
	SerialBaud  int
	SendTimeout time.Duration   // per-job transport deadline
	Detector    vision.Detector // calibration strategy, fixed at startup
}

// ClientNotifier interface for sending results back to clients
type ClientNotifier interface {
	NotifyClient(conn *websocket.Conn, response server.Response) error
}

// Worker consumes jobs from the queue: compiles and sends print jobs,
// renders previews, runs calibration frames through the vision engine.
type Worker struct {
	jobQueue      <-chan *server.Job
	notifier      ClientNotifier
	config        Config
	engine        *vision.Engine
	stopChan      chan struct{}
	wg            sync.WaitGroup
	mu            sync.Mutex
	isRunning     bool
	jobsProcessed int64
	jobsFailed    int64
	lastJobTime   time.Time
}

// NewWorker creates a new job worker
func NewWorker(jobQueue <-chan *server.Job, notifier ClientNotifier, config Config) *Worker {
	if config.SendTimeout <= 0 {
		config.SendTimeout = 15 * time.Second
	}
	if config.Detector == nil {
		config.Detector = vision.NewScanDetector()
	}
	return &Worker{
		jobQueue: jobQueue,
		notifier: notifier,
		config:   config,
		engine:   vision.NewEngine(config.Detector),
		stopChan: make(chan struct{}),
	}
}

// Start begins the worker goroutine
func (w *Worker) Start() {
	w.mu.Lock()
	if w.isRunning {
		w.mu.Unlock()
		return
	}
	w.isRunning = true
	w.mu.Unlock()

	w.wg.Add(1)
	go w.run()

	log.Println("[WORKER] ✅ Job worker started and ready")
}

// Stop gracefully stops the worker
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return
	}
	w.isRunning = false
	w.mu.Unlock()

	close(w.stopChan)
	w.wg.Wait()

	log.Printf("[WORKER] 🛑 Job worker stopped (processed: %d, failed: %d)", w.jobsProcessed, w.jobsFailed)
}

// run is the main worker loop
func (w *Worker) run() {
	defer w.wg.Done()

	log.Println("[WORKER] 👂 Waiting for jobs...")

	for {
		select {
		case <-w.stopChan:
			log.Println("[WORKER] 📴 Received stop signal")
			return

		case job, ok := <-w.jobQueue:
			if !ok {
				log.Println("[WORKER] 📴 Job channel closed, exiting")
				return
			}
			w.processJob(job)
		}
	}
}

// processJob handles a single job
func (w *Worker) processJob(job *server.Job) {
	startTime := time.Now()
	log.Printf("[WORKER] 🔄 Processing job: %s (%s)", job.ID, job.Kind)

	result, err := w.execute(job)

	duration := time.Since(startTime)

	w.mu.Lock()
	w.lastJobTime = time.Now()
	if err != nil {
		w.jobsFailed++
	} else {
		w.jobsProcessed++
	}
	w.mu.Unlock()

	var response server.Response
	if err != nil {
		// Full error to the log file, clean message to the UI
		log.Printf("[WORKER] ❌ Job %s FAILED after %v: %v", job.ID, duration, err)

		response = server.Response{
			Type:    "result",
			ID:      job.ID,
			Status:  "error",
			Message: workererrors.ExtractUserFriendlyError(err),
		}
	} else {
		log.Printf("[WORKER] ✅ Job %s completed in %v", job.ID, duration)
		response = server.Response{
			Type:    "result",
			ID:      job.ID,
			Status:  "success",
			Message: fmt.Sprintf("%s completed in %v", job.Kind, duration.Round(time.Millisecond)),
			Result:  result,
		}
	}

	// Notify client (async to not block worker loop)
	if job.ClientConn != nil && w.notifier != nil {
		go func() {
			if err := w.notifier.NotifyClient(job.ClientConn, response); err != nil {
				log.Printf("[WORKER] ⚠️ Failed to notify client for job %s: %v", job.ID, err)
			}
		}()
	}
}

// execute dispatches one job by kind, converting panics to errors.
func (w *Worker) execute(job *server.Job) (result json.RawMessage, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic recovered in job %s: %v", job.ID, r)
			log.Printf("[WORKER] 💥 Panic in job %s: %v\nStack: %s",
				job.ID, r, debug.Stack())
		}
	}()

	switch job.Kind {
	case server.KindPrint:
		return nil, w.executePrint(job)
	case server.KindPreview:
		return w.executePreview(job)
	case server.KindCalibrate:
		return w.executeCalibrate(job)
	default:
		return nil, fmt.Errorf("unknown job kind %q", job.Kind)
	}
}

// printDocument is the payload of print and preview jobs.
type printDocument struct {
	Template *label.Template       `json:"template"`
	Profile  *label.PrinterProfile `json:"profile"`
	Record   label.DataRecord      `json:"record"`
}

// calibrateDocument carries a captured camera frame as base64 PNG.
type calibrateDocument struct {
	Frame   string                `json:"frame"`
	Profile *label.PrinterProfile `json:"profile"`
}

func parsePrintDocument(raw json.RawMessage) (*printDocument, error) {
	var doc printDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse job: %w", err)
	}
	if doc.Template == nil || doc.Profile == nil {
		return nil, fmt.Errorf("parse job: template and profile are required")
	}
	return &doc, nil
}

// checkBarcodes rejects jobs whose barcode payloads cannot produce a valid
// symbol. Advisory suggestions pass through; blocking ones stop the job.
// Elements resolving empty are skipped, matching the compiler: partial
// labels are normal.
func checkBarcodes(doc *printDocument) error {
	for _, el := range doc.Template.EnabledElements() {
		bc, ok := el.(*label.Barcode)
		if !ok {
			continue
		}
		payload := doc.Record.BarcodePayload()
		if payload == "" {
			continue
		}
		res := suggest.SuggestFix(payload, bc.Symbology)
		if !res.Valid && res.Blocking {
			return fmt.Errorf("barcode %q: %s", payload, res.Reason)
		}
	}
	return nil
}

// executePrint compiles the label and sends it over a fresh connection,
// opened per job and closed immediately after.
func (w *Worker) executePrint(job *server.Job) error {
	doc, err := parsePrintDocument(job.Document)
	if err != nil {
		return err
	}
	if err := checkBarcodes(doc); err != nil {
		return err
	}

	data, err := dialect.Compile(doc.Template, doc.Profile, doc.Record)
	if err != nil {
		return fmt.Errorf("compile: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.config.SendTimeout)
	defer cancel()

	m := transport.NewManager(transport.Config{
		SerialPort: w.config.SerialPort,
		BaudRate:   w.config.SerialBaud,
	})
	if err := m.Connect(ctx); err != nil {
		return fmt.Errorf("transport: %w", err)
	}
	defer func() {
		if err := m.Disconnect(); err != nil {
			log.Printf("[WORKER] ⚠️ Error closing connection: %v", err)
		}
	}()

	info := m.Info()
	log.Printf("[WORKER] 🖨️ Job %s -> %s %s (%s, %d bytes)", job.ID, info.Vendor, info.Model, m.Kind(), len(data))

	if err := m.SendRaw(ctx, data); err != nil {
		return fmt.Errorf("transport: %w", err)
	}
	return nil
}

// executePreview renders the label headlessly and returns it as base64 PNG.
func (w *Worker) executePreview(job *server.Job) (json.RawMessage, error) {
	doc, err := parsePrintDocument(job.Document)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := render.WritePNG(&buf, doc.Template, doc.Profile, doc.Record); err != nil {
		return nil, err
	}

	out := struct {
		PNG string `json:"png"`
	}{PNG: base64.StdEncoding.EncodeToString(buf.Bytes())}
	return json.Marshal(out)
}

// executeCalibrate decodes the frame and runs the vision engine. A failed
// match is a successful job with success:false in the result, not an error.
func (w *Worker) executeCalibrate(job *server.Job) (json.RawMessage, error) {
	var doc calibrateDocument
	if err := json.Unmarshal(job.Document, &doc); err != nil {
		return nil, fmt.Errorf("parse job: %w", err)
	}
	if doc.Frame == "" || doc.Profile == nil {
		return nil, fmt.Errorf("parse job: frame and profile are required")
	}

	raw, err := base64.StdEncoding.DecodeString(doc.Frame)
	if err != nil {
		return nil, fmt.Errorf("parse job: frame is not valid base64: %w", err)
	}
	frame, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse job: frame is not a PNG image: %w", err)
	}

	res, err := w.engine.Calibrate(frame, doc.Profile)
	if err != nil {
		return nil, fmt.Errorf("vision: %w", err)
	}
	return json.Marshal(res)
}

// Stats returns current worker statistics
func (w *Worker) Stats() Statistics {
	w.mu.Lock()
	defer w.mu.Unlock()

	return Statistics{
		IsRunning:     w.isRunning,
		JobsProcessed: w.jobsProcessed,
		JobsFailed:    w.jobsFailed,
		LastJobTime:   w.lastJobTime,
	}
}

// Statistics holds worker runtime statistics
type Statistics struct {
	IsRunning     bool      `json:"is_running"`
	JobsProcessed int64     `json:"jobs_processed"`
	JobsFailed    int64     `json:"jobs_failed"`
	LastJobTime   time.Time `json:"last_job_time,omitempty"`
}
