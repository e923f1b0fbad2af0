// Package server handles WebSocket connections and job queueing.
package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"github.com/labelpoint/labeld/internal/printer"
)

// Job kinds accepted over the socket.
const (
	KindPrint     = "print"
	KindPreview   = "preview"
	KindCalibrate = "calibrate"
)

// PrinterLister enumerates attached printers for get_printers and health.
type PrinterLister interface {
	GetPrinters(forceRefresh bool) ([]printer.DetailDTO, error)
	GetSummary() printer.Summary
}

// TokenValidator guards job submission. Implemented by auth.Manager.
type TokenValidator interface {
	Enabled() bool
	ValidateToken(token string) bool
	IsLockedOut(addr string) bool
	RecordFailedAttempt(addr string)
	ClearFailedAttempts(addr string)
}

// Config holds server configuration
type Config struct {
	QueueSize        int
	MaxJobsPerMinute int
	AllowedOrigins   []string
}

// Job represents a queued request: a print, a preview render or a
// calibration run. Document is the kind-specific payload.
type Job struct {
	ID         string          `json:"id"`
	Kind       string          `json:"kind"`
	ClientConn *websocket.Conn `json:"-"`
	ClientAddr string          `json:"-"`
	Document   json.RawMessage `json:"job"`
	ReceivedAt time.Time       `json:"received_at"`
}

// Message represents incoming WebSocket message
type Message struct {
	Type  string          `json:"type"`
	ID    string          `json:"id,omitempty"`
	Token string          `json:"token,omitempty"`
	Job   json.RawMessage `json:"job,omitempty"`
}

// Response represents outgoing WebSocket message
type Response struct {
	Type     string          `json:"type"`
	ID       string          `json:"id,omitempty"`
	Status   string          `json:"status,omitempty"`
	Message  string          `json:"message,omitempty"`
	Current  int             `json:"current,omitempty"`
	Capacity int             `json:"capacity,omitempty"`
	Result   json.RawMessage `json:"result,omitempty"`
}

// Server manages WebSocket connections and the job queue
type Server struct {
	clients          *ClientRegistry
	jobQueue         chan *Job
	queueSize        int
	allowedOrigins   []string
	rateLimiter      *JobRateLimiter
	auth             TokenValidator
	shutdownOnce     sync.Once
	shutdownChan     chan struct{}
	printerDiscovery PrinterLister
}

// NewServer creates a new WebSocket server. auth may be nil to accept all
// submissions.
func NewServer(cfg Config, discovery PrinterLister, auth TokenValidator) *Server {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}
	if cfg.MaxJobsPerMinute <= 0 {
		cfg.MaxJobsPerMinute = 60
	}

	return &Server{
		clients:          NewClientRegistry(),
		jobQueue:         make(chan *Job, cfg.QueueSize),
		queueSize:        cfg.QueueSize,
		allowedOrigins:   cfg.AllowedOrigins,
		rateLimiter:      NewJobRateLimiter(cfg.MaxJobsPerMinute),
		auth:             auth,
		shutdownChan:     make(chan struct{}),
		printerDiscovery: discovery,
	}
}

// QueueStatus returns current and max queue size
func (s *Server) QueueStatus() (current, capacity int) {
	return len(s.jobQueue), cap(s.jobQueue)
}

// JobQueue returns the job queue channel (for worker consumption)
func (s *Server) JobQueue() <-chan *Job {
	return s.jobQueue
}

func (s *Server) acceptOptions() *websocket.AcceptOptions {
	for _, o := range s.allowedOrigins {
		if o == "*" {
			return &websocket.AcceptOptions{InsecureSkipVerify: true}
		}
	}
	return &websocket.AcceptOptions{OriginPatterns: s.allowedOrigins}
}

// HandleWebSocket handles WebSocket connections
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, s.acceptOptions())
	if err != nil {
		log.Printf("[WS] ❌ Error accepting client: %v", err)
		return
	}

	s.clients.Add(conn)
	log.Printf("[WS] ➕ Client connected (total: %d) from %s", s.clients.Count(), r.RemoteAddr)

	ctx := r.Context()
	welcome := Response{
		Type:    "info",
		Status:  "connected",
		Message: "labeld ready",
	}
	_ = wsjson.Write(ctx, conn, welcome)

	s.handleMessages(ctx, conn, r.RemoteAddr)

	s.clients.Remove(conn)
	err = conn.Close(websocket.StatusNormalClosure, "disconnected")
	if err != nil {
		return
	}
	log.Printf("[WS] ➖ Client disconnected (remaining: %d)", s.clients.Count())
}

// handleMessages processes incoming messages from a client
func (s *Server) handleMessages(ctx context.Context, conn *websocket.Conn, addr string) {
	for {
		select {
		case <-s.shutdownChan:
			return
		default:
		}

		var msg Message
		err := wsjson.Read(ctx, conn, &msg)
		if err != nil {
			// Normal closure or context cancelled
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
				ctx.Err() != nil {
				return
			}
			log.Printf("[WS] ⚠️ Error reading message: %v", err)
			return
		}

		s.routeMessage(ctx, conn, addr, &msg)
	}
}

// routeMessage routes message to appropriate handler
func (s *Server) routeMessage(ctx context.Context, conn *websocket.Conn, addr string, msg *Message) {
	switch msg.Type {
	case KindPrint, KindPreview, KindCalibrate:
		s.handleJob(ctx, conn, addr, msg)
	case "status":
		s.handleStatus(ctx, conn)
	case "ping":
		s.handlePing(ctx, conn, msg)
	case "get_printers":
		s.handleGetPrinters(ctx, conn)
	default:
		log.Printf("[WS] ⚠️ Unknown message type: %s", msg.Type)
		s.sendError(ctx, conn, msg.ID, "Unknown message type: "+msg.Type)
	}
}

// handleJob validates and enqueues a print, preview or calibration request
func (s *Server) handleJob(ctx context.Context, conn *websocket.Conn, addr string, msg *Message) {
	jobID := msg.ID
	if jobID == "" {
		jobID = uuid.New().String()
	}

	if !s.authorize(addr, msg.Token) {
		log.Printf("[QUEUE] 🚫 Job %s rejected: invalid token from %s", jobID, addr)
		s.sendError(ctx, conn, jobID, "Invalid or missing token")
		return
	}

	if !s.rateLimiter.Allow(addr) {
		log.Printf("[QUEUE] 🚫 Job %s rejected: rate limit for %s", jobID, addr)
		s.sendError(ctx, conn, jobID, "Too many jobs, slow down")
		return
	}

	if len(msg.Job) == 0 {
		log.Printf("[QUEUE] ❌ Job %s rejected: missing 'job' field", jobID)
		s.sendError(ctx, conn, jobID, "Field 'job' is required for type '"+msg.Type+"'")
		return
	}

	job := &Job{
		ID:         jobID,
		Kind:       msg.Type,
		ClientConn: conn,
		ClientAddr: addr,
		Document:   msg.Job,
		ReceivedAt: time.Now(),
	}

	// Non-blocking enqueue
	select {
	case s.jobQueue <- job:
		current, capacity := s.QueueStatus()
		log.Printf("[QUEUE] 📥 Job queued: %s (%s, queue: %d/%d)", jobID, job.Kind, current, capacity)

		response := Response{
			Type:     "ack",
			ID:       jobID,
			Status:   "queued",
			Current:  current,
			Capacity: capacity,
			Message:  "Job queued",
		}
		_ = wsjson.Write(ctx, conn, response)

	default:
		current, capacity := s.QueueStatus()
		log.Printf("[QUEUE] 🚫 Queue full, rejecting job: %s (%d/%d)", jobID, current, capacity)
		s.sendError(ctx, conn, jobID, "Queue full, please retry in a few seconds")
	}
}

// authorize applies lockout and token checks for one submission.
func (s *Server) authorize(addr, token string) bool {
	if s.auth == nil || !s.auth.Enabled() {
		return true
	}
	if s.auth.IsLockedOut(addr) {
		return false
	}
	if !s.auth.ValidateToken(token) {
		s.auth.RecordFailedAttempt(addr)
		return false
	}
	s.auth.ClearFailedAttempts(addr)
	return true
}

// handleStatus sends queue status
func (s *Server) handleStatus(ctx context.Context, conn *websocket.Conn) {
	current, capacity := s.QueueStatus()

	response := Response{
		Type:     "status",
		Status:   "ok",
		Current:  current,
		Capacity: capacity,
		Message:  formatStatus(current, capacity),
	}
	_ = wsjson.Write(ctx, conn, response)
}

// handlePing responds to ping
func (s *Server) handlePing(ctx context.Context, conn *websocket.Conn, msg *Message) {
	response := Response{
		Type:   "pong",
		ID:     msg.ID,
		Status: "ok",
	}
	_ = wsjson.Write(ctx, conn, response)
}

// handleGetPrinters handles printer enumeration requests
func (s *Server) handleGetPrinters(ctx context.Context, conn *websocket.Conn) {
	printers, err := s.printerDiscovery.GetPrinters(false)
	if err != nil {
		s.sendError(ctx, conn, "", "Failed to enumerate printers: "+err.Error())
		return
	}

	response := struct {
		Type     string              `json:"type"`
		Status   string              `json:"status"`
		Printers []printer.DetailDTO `json:"printers"`
		Summary  printer.Summary     `json:"summary"`
	}{
		Type:     "printers",
		Status:   "ok",
		Printers: printers,
		Summary:  s.printerDiscovery.GetSummary(),
	}

	_ = wsjson.Write(ctx, conn, response)
}

// sendError sends error response to client
func (s *Server) sendError(ctx context.Context, conn *websocket.Conn, id, message string) {
	response := Response{
		Type:    "error",
		ID:      id,
		Status:  "error",
		Message: message,
	}
	_ = wsjson.Write(ctx, conn, response)
}

// NotifyClient sends a result back to a specific client
func (s *Server) NotifyClient(conn *websocket.Conn, response Response) error {
	if conn == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return wsjson.Write(ctx, conn, response)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown() {
	s.shutdownOnce.Do(func() {
		close(s.shutdownChan)

		clientCount := s.clients.Count()
		log.Printf("[WS] 🛑 Shutting down, disconnecting %d clients", clientCount)

		s.clients.ForEach(func(conn *websocket.Conn) {
			err := conn.Close(websocket.StatusGoingAway, "Server shutting down")
			if err != nil {
				return
			}
		})
	})
}

func formatStatus(current, capacity int) string {
	return "Queue: " + strconv.Itoa(current) + "/" + strconv.Itoa(capacity)
}
