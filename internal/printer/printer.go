package printer

// Status is the canonical printer state. These three values are the only
// ones ever stored or rendered; raw payload strings are mapped onto them
// by the Resolver.
type Status string

const (
	StatusOnline   Status = "online"
	StatusPrinting Status = "printing"
	StatusOffline  Status = "offline"
)

// Printer is the last-known canonical state of one 3D printer. Records
// are seeded at startup and mutated in place; they are never created or
// destroyed afterwards.
type Printer struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Status     Status   `json:"status"`
	DistanceMm *float64 `json:"distance_mm"`
	LastUpdate string   `json:"last_update,omitempty"`
	Progress   *float64 `json:"progress,omitempty"`
}

// Reading is the normalized form of one inbound sensor payload. Absent or
// unusable fields are zero/nil; a Reading never carries an invalid value.
type Reading struct {
	Distance  *float64
	Status    string
	Timestamp string
	Name      string
	Progress  *float64
}
