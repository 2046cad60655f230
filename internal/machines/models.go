package machines

import (
	"time"

	"github.com/EternisAI/syshealth/internal/compliance"
)

// Machine is the latest reported snapshot for one machine.
type Machine struct {
	MachineID              string
	MachineName            *string
	OS                     *string
	OSVersion              *string
	DiskEncrypted          bool
	OSUpToDate             bool
	AntivirusPresent       bool
	InactivitySleepMinutes *int
	HasIssues              bool
	Checks                 compliance.CheckSet
	LastCheck              time.Time
}

// Report is a parsed inbound report. Empty strings mean "not reported".
type Report struct {
	MachineID   string
	MachineName string
	OS          string
	OSVersion   string
	Checks      compliance.CheckSet
}

// Filter narrows List and Export. The zero Filter matches every machine.
type Filter struct {
	OS         string
	OnlyIssues bool
}
