package worker

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/labelpoint/labeld/internal/server"
)

// mockSlowNotifier simulates a slow network connection
type mockSlowNotifier struct {
	delay time.Duration
}

func (m *mockSlowNotifier) NotifyClient(_ *websocket.Conn, _ server.Response) error {
	time.Sleep(m.delay)
	return nil
}

// captureNotifier records responses for assertions
type captureNotifier struct {
	mu        sync.Mutex
	responses []server.Response
}

func (c *captureNotifier) NotifyClient(_ *websocket.Conn, response server.Response) error {
	c.mu.Lock()
	c.responses = append(c.responses, response)
	c.mu.Unlock()
	return nil
}

func (c *captureNotifier) last() (server.Response, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.responses) == 0 {
		return server.Response{}, false
	}
	return c.responses[len(c.responses)-1], true
}

func waitForJobs(t *testing.T, w *Worker, count int64) Statistics {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		stats := w.Stats()
		if stats.JobsProcessed+stats.JobsFailed >= count {
			return stats
		}
		if time.Now().After(deadline) {
			t.Fatalf("Timeout waiting for jobs. Processed: %d, Failed: %d", stats.JobsProcessed, stats.JobsFailed)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

const previewDoc = `{
	"template": {
		"size": {"width": 40, "height": 30},
		"elements": [
			{"id": "name", "type": "name", "enabled": true, "order": 0, "x": 2, "y": 2}
		]
	},
	"profile": {
		"vendor": "zebra", "model": "ZD420", "language": "A",
		"dpi": 203, "labelWidthMm": 40, "labelHeightMm": 30,
		"offsetX": 0, "offsetY": 0
	},
	"record": {"name": "Sample"}
}`

func TestWorkerBlockingNotification(t *testing.T) {
	jobCount := 5
	notifier := &mockSlowNotifier{delay: 200 * time.Millisecond}

	jobQueue := make(chan *server.Job, jobCount)
	w := NewWorker(jobQueue, notifier, Config{})

	w.Start()
	defer w.Stop()

	// Dummy connection (only needs to be non-nil)
	dummyConn := &websocket.Conn{}

	for j := 0; j < jobCount; j++ {
		jobQueue <- &server.Job{
			ID:         "test-job",
			Kind:       server.KindPrint,
			ClientConn: dummyConn,
			Document:   json.RawMessage("{}"), // missing template, fails fast but still notifies
			ReceivedAt: time.Now(),
		}
	}

	start := time.Now()
	waitForJobs(t, w, int64(jobCount))
	duration := time.Since(start)

	// Notifications must not serialize the worker loop: 5 jobs at 200ms
	// each would take 1s if they did.
	if duration > 500*time.Millisecond {
		t.Errorf("Expected duration < 500ms (async), got %v", duration)
	} else {
		t.Logf("Non-blocking verified: Duration %v for %d jobs", duration, jobCount)
	}
}

func TestWorkerPreviewJob(t *testing.T) {
	notifier := &captureNotifier{}
	jobQueue := make(chan *server.Job, 1)
	w := NewWorker(jobQueue, notifier, Config{})

	w.Start()
	defer w.Stop()

	jobQueue <- &server.Job{
		ID:         "preview-1",
		Kind:       server.KindPreview,
		ClientConn: &websocket.Conn{},
		Document:   json.RawMessage(previewDoc),
		ReceivedAt: time.Now(),
	}

	stats := waitForJobs(t, w, 1)
	if stats.JobsFailed != 0 {
		t.Fatalf("preview job failed (processed=%d failed=%d)", stats.JobsProcessed, stats.JobsFailed)
	}
	if stats.LastJobTime.IsZero() {
		t.Error("LastJobTime not recorded")
	}

	// Notification is async to the stats update
	deadline := time.Now().Add(2 * time.Second)
	for {
		if resp, ok := notifier.last(); ok {
			if resp.Status != "success" {
				t.Fatalf("response status = %q: %s", resp.Status, resp.Message)
			}
			var out struct {
				PNG string `json:"png"`
			}
			if err := json.Unmarshal(resp.Result, &out); err != nil {
				t.Fatalf("result payload: %v", err)
			}
			if out.PNG == "" {
				t.Error("preview result has no PNG data")
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("no notification received")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestWorkerRejectsBadBarcode(t *testing.T) {
	doc := `{
		"template": {
			"size": {"width": 40, "height": 30},
			"elements": [
				{"id": "bc", "type": "barcode", "barcodeType": "ean13", "enabled": true, "order": 0, "x": 2, "y": 2, "width": 30, "height": 10}
			]
		},
		"profile": {
			"vendor": "zebra", "model": "ZD420", "language": "A",
			"dpi": 203, "labelWidthMm": 40, "labelHeightMm": 30
		},
		"record": {"barcode": "4006381333932"}
	}`

	notifier := &captureNotifier{}
	jobQueue := make(chan *server.Job, 1)
	w := NewWorker(jobQueue, notifier, Config{})

	w.Start()
	defer w.Stop()

	jobQueue <- &server.Job{
		ID:         "print-bad",
		Kind:       server.KindPrint,
		ClientConn: &websocket.Conn{},
		Document:   json.RawMessage(doc),
		ReceivedAt: time.Now(),
	}

	stats := waitForJobs(t, w, 1)
	if stats.JobsFailed != 1 {
		t.Fatalf("expected the job to fail, stats: %+v", stats)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		if resp, ok := notifier.last(); ok {
			if resp.Status != "error" {
				t.Fatalf("response status = %q, want error", resp.Status)
			}
			if !strings.Contains(resp.Message, "BARCODE") {
				t.Errorf("message %q does not identify the barcode problem", resp.Message)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("no notification received")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestCheckBarcodesSkipsEmptyPayload(t *testing.T) {
	// A record carrying neither barcode nor SKU leaves the barcode element
	// empty; the compiler skips it and prints a partial label, so the
	// pre-flight check must not reject the job.
	doc := `{
		"template": {
			"size": {"width": 40, "height": 30},
			"elements": [
				{"id": "name", "type": "name", "enabled": true, "order": 0, "x": 2, "y": 2},
				{"id": "bc", "type": "barcode", "barcodeType": "ean13", "enabled": true, "order": 1, "x": 2, "y": 12, "width": 30, "height": 10}
			]
		},
		"profile": {
			"vendor": "zebra", "model": "ZD420", "language": "A",
			"dpi": 203, "labelWidthMm": 40, "labelHeightMm": 30
		},
		"record": {"name": "Oat Milk 1L"}
	}`

	parsed, err := parsePrintDocument(json.RawMessage(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := checkBarcodes(parsed); err != nil {
		t.Errorf("empty barcode payload rejected: %v", err)
	}

	// A present but broken payload still blocks.
	parsed.Record["barcode"] = "12AB"
	if err := checkBarcodes(parsed); err == nil {
		t.Error("invalid barcode payload accepted")
	}
}
