package notify

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printfarm/dashboard-server/internal/config"
	"github.com/printfarm/dashboard-server/internal/logger"
	"github.com/printfarm/dashboard-server/internal/printer"
)

func init() {
	if err := logger.Init("development"); err != nil {
		panic(err)
	}
}

func snapWith(status printer.Status) printer.Snapshot {
	return printer.Snapshot{
		Printers: []printer.Printer{
			{ID: "printer-1", Name: "Impressora 1", Status: status},
		},
	}
}

func TestDiscordNotifiesOnStatusChange(t *testing.T) {
	posts := make(chan string, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		posts <- string(body)
	}))
	defer srv.Close()

	n := NewDiscordNotifier(&config.DiscordConfig{
		Enabled:              true,
		WebhookURL:           srv.URL,
		NotifyOnStatusChange: true,
	})

	// First sighting establishes a baseline without notifying.
	n.HandleUpdate(snapWith(printer.StatusOnline))
	select {
	case body := <-posts:
		t.Fatalf("unexpected webhook post on first sighting: %s", body)
	case <-time.After(100 * time.Millisecond):
	}

	n.HandleUpdate(snapWith(printer.StatusOffline))
	select {
	case body := <-posts:
		assert.Contains(t, body, "Impressora 1")
		assert.Contains(t, body, "offline")
	case <-time.After(2 * time.Second):
		t.Fatal("expected webhook post after status change")
	}
}

func TestDiscordSilentOnSameStatus(t *testing.T) {
	posts := make(chan string, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		posts <- "post"
	}))
	defer srv.Close()

	n := NewDiscordNotifier(&config.DiscordConfig{
		Enabled:              true,
		WebhookURL:           srv.URL,
		NotifyOnStatusChange: true,
	})

	n.HandleUpdate(snapWith(printer.StatusOnline))
	n.HandleUpdate(snapWith(printer.StatusOnline))
	n.HandleUpdate(snapWith(printer.StatusOnline))

	select {
	case <-posts:
		t.Fatal("unexpected webhook post for unchanged status")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestDiscordOfflineOnlyMode(t *testing.T) {
	posts := make(chan string, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		posts <- string(body)
	}))
	defer srv.Close()

	n := NewDiscordNotifier(&config.DiscordConfig{
		Enabled:         true,
		WebhookURL:      srv.URL,
		NotifyOnOffline: true,
	})

	n.HandleUpdate(snapWith(printer.StatusOnline))
	n.HandleUpdate(snapWith(printer.StatusPrinting))

	select {
	case body := <-posts:
		t.Fatalf("unexpected webhook post for non-offline transition: %s", body)
	case <-time.After(100 * time.Millisecond):
	}

	n.HandleUpdate(snapWith(printer.StatusOffline))
	select {
	case body := <-posts:
		require.Contains(t, body, "offline")
	case <-time.After(2 * time.Second):
		t.Fatal("expected webhook post for offline transition")
	}
}

func TestDiscordDisabledNeverPosts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("webhook must not be called when disabled")
	}))
	defer srv.Close()

	n := NewDiscordNotifier(&config.DiscordConfig{
		Enabled:              false,
		WebhookURL:           srv.URL,
		NotifyOnStatusChange: true,
	})

	n.HandleUpdate(snapWith(printer.StatusOnline))
	n.HandleUpdate(snapWith(printer.StatusOffline))
	time.Sleep(100 * time.Millisecond)
}
