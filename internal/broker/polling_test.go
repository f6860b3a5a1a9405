package broker

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printfarm/dashboard-server/internal/logger"
	"github.com/printfarm/dashboard-server/internal/printer"
)

func init() {
	if err := logger.Init("development"); err != nil {
		panic(err)
	}
}

func newPollTestRegistry() *printer.Registry {
	reg := printer.NewRegistry(printer.NewResolver(50, 500))
	reg.Seed("printer-1", "Impressora 1")
	reg.Seed("printer-2", "Impressora 2")
	return reg
}

func TestPollAppliesArrayBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id": "printer-1", "distance": 12, "timestamp": "T1"},
			{"printerId": "printer-2", "status": "sem sinal"}
		]`))
	}))
	defer srv.Close()

	reg := newPollTestRegistry()
	p := NewPollClient(srv.URL, time.Minute, reg)
	p.poll()

	assert.True(t, p.Connected())

	p1, _ := reg.Get("printer-1")
	assert.Equal(t, printer.StatusPrinting, p1.Status)
	require.NotNil(t, p1.DistanceMm)
	assert.Equal(t, 12.0, *p1.DistanceMm)

	p2, _ := reg.Get("printer-2")
	assert.Equal(t, printer.StatusOffline, p2.Status)
}

func TestPollAppliesMapBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"printer-1": {"distance": 200}, "printer-2": {"status": "imprimindo"}}`))
	}))
	defer srv.Close()

	reg := newPollTestRegistry()
	p := NewPollClient(srv.URL, time.Minute, reg)
	p.poll()

	p1, _ := reg.Get("printer-1")
	assert.Equal(t, printer.StatusOnline, p1.Status)

	p2, _ := reg.Get("printer-2")
	assert.Equal(t, printer.StatusPrinting, p2.Status)
}

func TestPollNonOKMarksDisconnected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	reg := newPollTestRegistry()
	p := NewPollClient(srv.URL, time.Minute, reg)
	p.poll()

	assert.False(t, p.Connected())
	st := p.Status()
	assert.True(t, st.Polling)
	assert.Contains(t, st.LastError, "500")
}

func TestPollTransportErrorMarksDisconnected(t *testing.T) {
	reg := newPollTestRegistry()
	p := NewPollClient("http://127.0.0.1:1/api/printers", time.Minute, reg)
	p.poll()

	assert.False(t, p.Connected())
}

func TestPollRecoversAfterFailure(t *testing.T) {
	fail := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			http.Error(w, "down", http.StatusBadGateway)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	reg := newPollTestRegistry()
	p := NewPollClient(srv.URL, time.Minute, reg)

	p.poll()
	assert.False(t, p.Connected())

	fail = false
	p.poll()
	assert.True(t, p.Connected())
	assert.Empty(t, p.Status().LastError)
}

func TestApplySnapshotUnknownIDsDropped(t *testing.T) {
	reg := newPollTestRegistry()

	updated := ApplySnapshot([]any{
		map[string]any{"id": "printer-1", "distance": 10.0},
		map[string]any{"id": "printer-99", "distance": 10.0},
		map[string]any{"distance": 10.0}, // no id at all
		"not an object",
	}, reg)

	assert.Equal(t, 1, updated)
	assert.Len(t, reg.Snapshot().Printers, 2)
}

func TestApplySnapshotIgnoresScalars(t *testing.T) {
	reg := newPollTestRegistry()
	assert.Zero(t, ApplySnapshot("garbage", reg))
	assert.Zero(t, ApplySnapshot(42.0, reg))
	assert.Zero(t, ApplySnapshot(nil, reg))
}
