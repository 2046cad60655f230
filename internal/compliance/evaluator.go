// Package compliance turns the check-set reported by an agent into normalized
// posture fields and the has_issues verdict.
package compliance

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

const (
	CheckDiskEncrypted          = "disk_encrypted"
	CheckOSUpToDate             = "os_up_to_date"
	CheckAntivirusPresent       = "antivirus_present"
	CheckInactivitySleepMinutes = "inactivity_sleep_minutes"
)

const (
	// MaxInactivityMinutes is the longest idle timeout that still passes.
	MaxInactivityMinutes = 10
	// AssumedInactivityMinutes is used for the verdict when the timeout is
	// missing or unparsable, so missing data always counts as an issue.
	AssumedInactivityMinutes = 999
)

var ErrInvalidCheckSet = errors.New("checks must be a JSON object")

// CheckSet maps check names to reported values. Names the evaluator does not
// know about are kept as-is.
type CheckSet map[string]Value

type Result struct {
	DiskEncrypted          bool
	OSUpToDate             bool
	AntivirusPresent       bool
	InactivitySleepMinutes *int
	HasIssues              bool
}

// Evaluate normalizes the known checks and computes the verdict.
func Evaluate(checks CheckSet) Result {
	res := Result{
		DiskEncrypted:    checks[CheckDiskEncrypted].Truthy(),
		OSUpToDate:       checks[CheckOSUpToDate].Truthy(),
		AntivirusPresent: checks[CheckAntivirusPresent].Truthy(),
	}

	inactivity := AssumedInactivityMinutes
	if minutes, ok := checks[CheckInactivitySleepMinutes].Minutes(); ok {
		res.InactivitySleepMinutes = &minutes
		inactivity = minutes
	}

	res.HasIssues = !res.DiskEncrypted ||
		!res.OSUpToDate ||
		!res.AntivirusPresent ||
		inactivity > MaxInactivityMinutes

	return res
}

// ParseCheckSet decodes an inbound check-set. Missing or null input yields an
// empty set; anything other than a JSON object is rejected.
func ParseCheckSet(data []byte) (CheckSet, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return CheckSet{}, nil
	}
	if data[0] != '{' {
		return nil, ErrInvalidCheckSet
	}

	checks := CheckSet{}
	if err := json.Unmarshal(data, &checks); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCheckSet, err)
	}
	return checks, nil
}

// DecodeStored decodes a check-set read back from storage. Corrupt data
// yields an empty set.
func DecodeStored(data []byte) (CheckSet, error) {
	checks, err := ParseCheckSet(data)
	if err != nil {
		return CheckSet{}, err
	}
	return checks, nil
}

// Encode renders the check-set for storage.
func (c CheckSet) Encode() ([]byte, error) {
	if c == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]Value(c))
}
