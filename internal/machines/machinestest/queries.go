// Package machinestest provides an in-memory sqlc.Querier for tests that
// need a machine registry without PostgreSQL.
package machinestest

import (
	"context"
	"sort"
	"sync"

	"github.com/EternisAI/syshealth/internal/db/sqlc"
	"github.com/jackc/pgx/v5"
)

// Queries mirrors the semantics of the generated machine queries. When Err is
// set every call fails with it.
type Queries struct {
	mu   sync.Mutex
	rows map[string]sqlc.Machine
	Err  error
}

var _ sqlc.Querier = (*Queries)(nil)

func NewQueries() *Queries {
	return &Queries{rows: make(map[string]sqlc.Machine)}
}

func (q *Queries) UpsertMachine(_ context.Context, arg sqlc.UpsertMachineParams) (sqlc.Machine, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.Err != nil {
		return sqlc.Machine{}, q.Err
	}
	row := sqlc.Machine(arg)
	q.rows[arg.MachineID] = row
	return row, nil
}

func (q *Queries) GetMachine(_ context.Context, machineID string) (sqlc.Machine, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.Err != nil {
		return sqlc.Machine{}, q.Err
	}
	row, ok := q.rows[machineID]
	if !ok {
		return sqlc.Machine{}, pgx.ErrNoRows
	}
	return row, nil
}

func (q *Queries) ListMachines(_ context.Context, arg sqlc.ListMachinesParams) ([]sqlc.Machine, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.Err != nil {
		return nil, q.Err
	}
	var out []sqlc.Machine
	for _, row := range q.rows {
		if arg.Os.Valid && (!row.Os.Valid || row.Os.String != arg.Os.String) {
			continue
		}
		if arg.OnlyIssues && !row.HasIssues {
			continue
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastCheck.Time.Equal(out[j].LastCheck.Time) {
			return out[i].LastCheck.Time.After(out[j].LastCheck.Time)
		}
		return out[i].MachineID < out[j].MachineID
	})
	return out, nil
}

// Len returns the number of stored rows.
func (q *Queries) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.rows)
}

// SetRawChecks overwrites the stored raw check-set of a row.
func (q *Queries) SetRawChecks(machineID, raw string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	row, ok := q.rows[machineID]
	if !ok {
		return
	}
	row.RawChecks = raw
	q.rows[machineID] = row
}
