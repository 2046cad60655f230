package machines

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/EternisAI/syshealth/internal/compliance"
	"github.com/EternisAI/syshealth/internal/db/sqlc"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

var (
	ErrValidation       = errors.New("validation error")
	ErrMissingMachineID = fmt.Errorf("%w: missing machine_id", ErrValidation)
	ErrStorage          = errors.New("storage error")
	ErrMachineNotFound  = errors.New("machine not found")
)

type Option func(*Registry)

// WithClock overrides the clock used to stamp last_check.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// Registry keeps the latest snapshot of every reporting machine.
type Registry struct {
	queries sqlc.Querier
	now     func() time.Time
}

func NewRegistry(queries sqlc.Querier, opts ...Option) *Registry {
	r := &Registry{
		queries: queries,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Submit evaluates a report and stores it as the machine's current snapshot.
func (r *Registry) Submit(ctx context.Context, report Report) (*Machine, error) {
	m := &Machine{
		MachineID:   report.MachineID,
		MachineName: optionalString(report.MachineName),
		OS:          optionalString(report.OS),
		OSVersion:   optionalString(report.OSVersion),
		Checks:      report.Checks,
		LastCheck:   r.now(),
	}
	return r.Upsert(ctx, m)
}

// Upsert inserts the machine or replaces every column of the existing row in
// a single statement. The normalized posture fields and has_issues are always
// derived from m.Checks; values set on m for them are ignored.
func (r *Registry) Upsert(ctx context.Context, m *Machine) (*Machine, error) {
	if m == nil || strings.TrimSpace(m.MachineID) == "" {
		return nil, ErrMissingMachineID
	}

	checks := m.Checks
	if checks == nil {
		checks = compliance.CheckSet{}
	}
	raw, err := checks.Encode()
	if err != nil {
		return nil, fmt.Errorf("%w: encode checks: %w", ErrValidation, err)
	}

	result := compliance.Evaluate(checks)

	lastCheck := m.LastCheck
	if lastCheck.IsZero() {
		lastCheck = r.now()
	}
	lastCheck = lastCheck.UTC().Truncate(time.Second)

	row, err := r.queries.UpsertMachine(ctx, sqlc.UpsertMachineParams{
		MachineID:              m.MachineID,
		MachineName:            toText(m.MachineName),
		Os:                     toText(m.OS),
		OsVersion:              toText(m.OSVersion),
		DiskEncrypted:          result.DiskEncrypted,
		OsUpToDate:             result.OSUpToDate,
		AntivirusPresent:       result.AntivirusPresent,
		InactivitySleepMinutes: toInt4(result.InactivitySleepMinutes),
		HasIssues:              result.HasIssues,
		RawChecks:              string(raw),
		LastCheck:              pgtype.Timestamp{Time: lastCheck, Valid: true},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: upsert machine %s: %w", ErrStorage, m.MachineID, err)
	}

	stored := fromRow(row)
	slog.Debug("Machine snapshot stored",
		"machine_id", stored.MachineID,
		"has_issues", stored.HasIssues,
		"last_check", stored.LastCheck)

	return stored, nil
}

// Get returns the stored snapshot for one machine.
func (r *Registry) Get(ctx context.Context, machineID string) (*Machine, error) {
	if strings.TrimSpace(machineID) == "" {
		return nil, ErrMissingMachineID
	}

	row, err := r.queries.GetMachine(ctx, machineID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMachineNotFound
		}
		return nil, fmt.Errorf("%w: get machine %s: %w", ErrStorage, machineID, err)
	}
	return fromRow(row), nil
}

// List returns the machines matching f, most recently reported first.
func (r *Registry) List(ctx context.Context, f Filter) ([]Machine, error) {
	rows, err := r.queries.ListMachines(ctx, sqlc.ListMachinesParams{
		Os:         pgtype.Text{String: f.OS, Valid: f.OS != ""},
		OnlyIssues: f.OnlyIssues,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list machines: %w", ErrStorage, err)
	}

	result := make([]Machine, len(rows))
	for i, row := range rows {
		result[i] = *fromRow(row)
	}
	return result, nil
}

// ParseOnlyIssues interprets the only_issues query flag.
func ParseOnlyIssues(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

func fromRow(row sqlc.Machine) *Machine {
	checks, err := compliance.DecodeStored([]byte(row.RawChecks))
	if err != nil {
		slog.Warn("Stored checks are not valid JSON, using empty check-set",
			"machine_id", row.MachineID,
			"error", err)
	}

	m := &Machine{
		MachineID:        row.MachineID,
		MachineName:      fromText(row.MachineName),
		OS:               fromText(row.Os),
		OSVersion:        fromText(row.OsVersion),
		DiskEncrypted:    row.DiskEncrypted,
		OSUpToDate:       row.OsUpToDate,
		AntivirusPresent: row.AntivirusPresent,
		HasIssues:        row.HasIssues,
		Checks:           checks,
		LastCheck:        row.LastCheck.Time.UTC(),
	}
	if row.InactivitySleepMinutes.Valid {
		minutes := int(row.InactivitySleepMinutes.Int32)
		m.InactivitySleepMinutes = &minutes
	}
	return m
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func toText(s *string) pgtype.Text {
	if s == nil || *s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func fromText(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

func toInt4(n *int) pgtype.Int4 {
	if n == nil {
		return pgtype.Int4{}
	}
	return pgtype.Int4{Int32: int32(*n), Valid: true}
}
