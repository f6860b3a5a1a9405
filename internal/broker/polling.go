package broker

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/printfarm/dashboard-server/internal/logger"
	"github.com/printfarm/dashboard-server/internal/printer"
)

// PollClient periodically fetches the broker's snapshot endpoint and
// feeds the body through the normalization pipeline. It is the fallback
// path used when no real-time socket is live; once started it keeps
// polling for the rest of the session, with no backoff and no retry
// ceiling.
type PollClient struct {
	apiURL   string
	interval time.Duration
	registry *printer.Registry
	client   *http.Client

	mu        sync.Mutex
	connected bool
	lastError error
	lastSeen  time.Time

	done chan struct{}
}

// NewPollClient creates a new polling client
func NewPollClient(apiURL string, interval time.Duration, reg *printer.Registry) *PollClient {
	return &PollClient{
		apiURL:   apiURL,
		interval: interval,
		registry: reg,
		client:   &http.Client{Timeout: 15 * time.Second},
		done:     make(chan struct{}),
	}
}

// Start begins the polling loop
func (p *PollClient) Start() {
	go p.pollLoop()
}

// Stop stops the polling loop
func (p *PollClient) Stop() {
	close(p.done)
}

// Status returns the current connection status
func (p *PollClient) Status() ConnectionStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	errStr := ""
	if p.lastError != nil {
		errStr = p.lastError.Error()
	}

	return ConnectionStatus{
		Connected: p.connected,
		Polling:   true,
		LastError: errStr,
		LastSeen:  p.lastSeen,
	}
}

// Connected reports whether the last poll reached the broker.
func (p *PollClient) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

func (p *PollClient) pollLoop() {
	// Poll immediately on start
	p.poll()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.done:
			return
		case <-ticker.C:
			p.poll()
		}
	}
}

func (p *PollClient) poll() {
	resp, err := p.client.Get(p.apiURL)
	if err != nil {
		p.setError(err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		p.setError(fmt.Errorf("poll returned %d: %s", resp.StatusCode, string(body)))
		return
	}

	// Successfully reached the broker
	p.mu.Lock()
	p.connected = true
	p.lastError = nil
	p.lastSeen = time.Now()
	p.mu.Unlock()

	var body any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		logger.Warn("failed to parse poll response", zap.Error(err))
		return
	}

	ApplySnapshot(body, p.registry)
}

func (p *PollClient) setError(err error) {
	p.mu.Lock()
	p.connected = false
	p.lastError = err
	p.mu.Unlock()

	logger.Warn("poll failed", zap.Error(err))
}

// ApplySnapshot routes a decoded polling-response body through the
// normalization pipeline. The broker sends either an array of printer
// objects carrying their own id, or an object keyed by printer id.
// Entries for unknown printers are dropped by the registry. Returns the
// number of records actually updated.
func ApplySnapshot(body any, reg *printer.Registry) int {
	updated := 0

	switch t := body.(type) {
	case []any:
		for _, entry := range t {
			m, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			id := entryID(m)
			if id == "" {
				continue
			}
			if reg.Upsert(id, printer.NormalizeValue(m)) {
				updated++
			}
		}
	case map[string]any:
		for id, v := range t {
			if reg.Upsert(id, printer.NormalizeValue(v)) {
				updated++
			}
		}
	}

	return updated
}

func entryID(m map[string]any) string {
	if id, ok := m["id"].(string); ok && id != "" {
		return id
	}
	if id, ok := m["printerId"].(string); ok && id != "" {
		return id
	}
	return ""
}
