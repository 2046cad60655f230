package dto

import "encoding/json"

// ReportRequest is the body of POST /report. machine_id may be a JSON string
// or number; checks is kept raw so that every submitted check is preserved.
type ReportRequest struct {
	MachineID   json.RawMessage `json:"machine_id"`
	MachineName *string         `json:"machine_name"`
	Hostname    *string         `json:"hostname"`
	OS          *string         `json:"os"`
	OSVersion   *string         `json:"os_version"`
	Checks      json.RawMessage `json:"checks"`
}

type ReportResponse struct {
	Status    string `json:"status"`
	MachineID string `json:"machine_id"`
	HasIssues bool   `json:"has_issues"`
}
