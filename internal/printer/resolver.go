package printer

import "strings"

// statusAliases maps known status phrases, Portuguese and English, to a
// canonical value. Matched after lower-casing and trimming.
var statusAliases = map[string]Status{
	"impressora funcionando": StatusOnline,
	"funcionando":            StatusOnline,
	"online":                 StatusOnline,
	"imprimindo":             StatusPrinting,
	"printing":               StatusPrinting,
	"em uso":                 StatusPrinting,
	"ocupada":                StatusPrinting,
	"offline":                StatusOffline,
	"desligada":              StatusOffline,
	"parada":                 StatusOffline,
	"sem sinal":              StatusOffline,
}

// Keyword groups checked by containment when no exact alias matches,
// in priority order: printing, then online, then offline.
var (
	printingKeywords = []string{"imprimindo", "printing", "em uso"}
	onlineKeywords   = []string{"funcionando", "online", "livre"}
	offlineKeywords  = []string{"offline", "desligada", "parada"}
)

// Resolver derives a canonical status from an explicit payload status
// string or, failing that, from the distance reading.
type Resolver struct {
	PrintingThresholdMm float64
	OfflineThresholdMm  float64
}

// NewResolver creates a resolver with the given distance thresholds.
func NewResolver(printingMm, offlineMm float64) *Resolver {
	return &Resolver{
		PrintingThresholdMm: printingMm,
		OfflineThresholdMm:  offlineMm,
	}
}

// Resolve maps an explicit status string to a canonical value, falling
// back to the distance heuristic when the string is absent or unknown.
func (r *Resolver) Resolve(explicit string, distance *float64) Status {
	if s, ok := normalizeStatus(explicit); ok {
		return s
	}
	return r.fromDistance(distance)
}

// normalizeStatus maps a raw status phrase to a canonical value.
func normalizeStatus(raw string) (Status, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", false
	}

	if mapped, ok := statusAliases[s]; ok {
		return mapped, true
	}

	if containsAny(s, printingKeywords) {
		return StatusPrinting, true
	}
	if containsAny(s, onlineKeywords) {
		return StatusOnline, true
	}
	if containsAny(s, offlineKeywords) {
		return StatusOffline, true
	}

	return "", false
}

// fromDistance applies the threshold heuristic. A small distance means
// something is sitting on the bed (printing); a very large one means the
// sensor is reading into empty space (offline).
func (r *Resolver) fromDistance(distance *float64) Status {
	if distance == nil {
		return StatusOffline
	}

	d := *distance
	switch {
	case d > r.OfflineThresholdMm:
		return StatusOffline
	case d < r.PrintingThresholdMm:
		return StatusPrinting
	default:
		return StatusOnline
	}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
