package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/printfarm/dashboard-server/internal/config"
	"github.com/printfarm/dashboard-server/internal/logger"
	"github.com/printfarm/dashboard-server/internal/printer"
)

// DiscordNotifier posts a webhook message when a printer changes status.
// It subscribes to registry updates and diffs against the last status it
// saw per printer, so repeated readings with the same status stay quiet.
// Delivery is fire-and-forget; a failed post is logged and dropped.
type DiscordNotifier struct {
	cfg    *config.DiscordConfig
	client *http.Client

	mu   sync.Mutex
	seen map[string]printer.Status
}

// NewDiscordNotifier creates a notifier for the given webhook settings.
func NewDiscordNotifier(cfg *config.DiscordConfig) *DiscordNotifier {
	return &DiscordNotifier{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		seen:   make(map[string]printer.Status),
	}
}

// HandleUpdate is registered as a registry listener.
func (n *DiscordNotifier) HandleUpdate(snap printer.Snapshot) {
	if !n.cfg.Enabled || n.cfg.WebhookURL == "" {
		return
	}

	for _, p := range snap.Printers {
		n.mu.Lock()
		prev, known := n.seen[p.ID]
		n.seen[p.ID] = p.Status
		n.mu.Unlock()

		if !known || prev == p.Status {
			continue
		}

		wentOffline := p.Status == printer.StatusOffline
		if n.cfg.NotifyOnStatusChange || (n.cfg.NotifyOnOffline && wentOffline) {
			go n.post(p, prev)
		}
	}
}

func (n *DiscordNotifier) post(p printer.Printer, prev printer.Status) {
	content := fmt.Sprintf("**%s** (%s): %s -> %s", p.Name, p.ID, prev, p.Status)
	if p.Status == printer.StatusOffline {
		content = "⚠️ " + content
	}

	payload, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return
	}

	resp, err := n.client.Post(n.cfg.WebhookURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		logger.Warn("discord webhook post failed", zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		logger.Warn("discord webhook rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("printer_id", p.ID))
	}
}
