package broker

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/printfarm/dashboard-server/internal/config"
	"github.com/printfarm/dashboard-server/internal/logger"
	"github.com/printfarm/dashboard-server/internal/printer"
)

// Manager maintains one real-time connection per printer and falls back
// to HTTP polling when none are live. Each printer's socket cycles
// through connecting/open/closed forever with a fixed reconnect delay;
// there is no retry ceiling and no terminal state within a session.
type Manager struct {
	cfg      *config.Config
	registry *printer.Registry

	// Dialer may be replaced before Start for testing.
	Dialer Dialer

	// OnEvent, when set, receives transport lifecycle events
	// (connected/disconnected per printer, polling started).
	OnEvent func(printerID, event string)

	mu         sync.Mutex
	conns      map[string]Conn
	states     map[string]connState
	connected  int
	pollActive bool
	poll       *PollClient

	done chan struct{}
}

// NewManager creates a transport manager for the configured printer fleet.
func NewManager(cfg *config.Config, reg *printer.Registry) *Manager {
	return &Manager{
		cfg:      cfg,
		registry: reg,
		Dialer:   gorillaDialer{},
		conns:    make(map[string]Conn),
		states:   make(map[string]connState),
		done:     make(chan struct{}),
	}
}

// Start brings up one socket per printer, or goes straight to polling
// when real-time subscriptions are disabled.
func (m *Manager) Start() {
	if !m.cfg.Broker.UseWebSocket {
		m.startPolling()
		return
	}

	for _, p := range m.cfg.Printers {
		go m.runPrinter(p)
	}
}

// Stop closes all sockets and the polling loop.
func (m *Manager) Stop() {
	close(m.done)

	m.mu.Lock()
	defer m.mu.Unlock()

	for id, conn := range m.conns {
		conn.Close()
		delete(m.conns, id)
	}
	if m.pollActive {
		m.poll.Stop()
		m.pollActive = false
	}
}

// Status returns the overall connectivity as shown on the dashboard.
// With live sockets the indicator follows the socket count; otherwise it
// follows the last poll result.
func (m *Manager) Status() ConnectionStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected > 0 {
		return ConnectionStatus{
			Connected:   true,
			LiveSockets: m.connected,
			Polling:     m.pollActive,
		}
	}

	if m.pollActive {
		st := m.poll.Status()
		st.LiveSockets = 0
		return st
	}

	return ConnectionStatus{}
}

// runPrinter is the per-printer connection loop.
func (m *Manager) runPrinter(p config.PrinterConfig) {
	log := logger.WithPrinter(p.ID)
	url := fmt.Sprintf("%s/%s", m.cfg.Broker.WSBaseURL, p.Endpoint)

	for {
		select {
		case <-m.done:
			return
		default:
		}

		// Reconnect only when no live transport exists for this printer.
		m.mu.Lock()
		_, live := m.conns[p.ID]
		m.mu.Unlock()
		if !live {
			m.setState(p.ID, stateConnecting)

			conn, err := m.Dialer.Dial(url)
			if err != nil {
				log.Warn("socket connect failed", zap.String("url", url), zap.Error(err))
				m.handleClosed(p.ID, false)
			} else {
				m.handleOpen(p.ID, conn)
				log.Info("socket connected", zap.String("endpoint", p.Endpoint))

				m.readLoop(p.ID, conn, log)

				log.Info("socket disconnected")
				m.handleClosed(p.ID, true)
			}
		}

		select {
		case <-m.done:
			return
		case <-time.After(m.cfg.Broker.ReconnectDelay()):
		}
	}
}

// readLoop consumes messages until the socket dies. Read errors are
// logged only; the connected count is adjusted once, by the close
// handling in runPrinter, so an error racing a close cannot decrement
// twice.
func (m *Manager) readLoop(id string, conn Conn, log *zap.Logger) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			log.Warn("socket read error", zap.Error(err))
			return
		}

		reading := printer.Normalize(msg)
		if !m.registry.Upsert(id, reading) {
			log.Debug("dropped reading for unknown printer")
		}
	}
}

func (m *Manager) handleOpen(id string, conn Conn) {
	m.mu.Lock()
	m.conns[id] = conn
	m.states[id] = stateOpen
	m.connected++
	m.mu.Unlock()

	m.emit(id, "connected")
}

// handleClosed removes the transport handle and, when this was the last
// live socket, starts the polling fallback. The count is floored at zero
// and only decremented for sockets that actually opened.
func (m *Manager) handleClosed(id string, wasOpen bool) {
	m.mu.Lock()
	delete(m.conns, id)
	m.states[id] = stateClosed

	if wasOpen && m.connected > 0 {
		m.connected--
	}

	startPoll := m.connected == 0 && !m.pollActive
	m.mu.Unlock()

	m.emit(id, "disconnected")

	if startPoll {
		m.startPolling()
	}
}

// startPolling begins the HTTP fallback. Once running it stays running
// for the session, even if sockets come back.
func (m *Manager) startPolling() {
	select {
	case <-m.done:
		return
	default:
	}

	m.mu.Lock()
	if m.pollActive {
		m.mu.Unlock()
		return
	}
	m.poll = NewPollClient(m.cfg.Broker.APIURL, m.cfg.Broker.PollInterval(), m.registry)
	m.pollActive = true
	m.mu.Unlock()

	logger.Info("no live sockets, starting polling fallback",
		zap.String("url", m.cfg.Broker.APIURL),
		zap.Duration("interval", m.cfg.Broker.PollInterval()))

	m.emit("", "polling started")
	m.poll.Start()
}

// State returns the transport state for one printer.
func (m *Manager) State(id string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.states[id]
	if !ok {
		return stateClosed.String()
	}
	return s.String()
}

func (m *Manager) setState(id string, s connState) {
	m.mu.Lock()
	m.states[id] = s
	m.mu.Unlock()
}

func (m *Manager) emit(id, event string) {
	if m.OnEvent != nil {
		m.OnEvent(id, event)
	}
}
