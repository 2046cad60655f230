package dto

import "github.com/EternisAI/syshealth/internal/compliance"

type MachineResponse struct {
	MachineID              string              `json:"machine_id"`
	MachineName            *string             `json:"machine_name"`
	OS                     *string             `json:"os"`
	OSVersion              *string             `json:"os_version"`
	DiskEncrypted          bool                `json:"disk_encrypted"`
	OSUpToDate             bool                `json:"os_up_to_date"`
	AntivirusPresent       bool                `json:"antivirus_present"`
	InactivitySleepMinutes *int                `json:"inactivity_sleep_minutes"`
	HasIssues              bool                `json:"has_issues"`
	LastCheck              string              `json:"last_check"`
	Checks                 compliance.CheckSet `json:"checks"`
}
