package machines

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// ExportColumns is the fixed column order of the export table.
var ExportColumns = []string{
	"machine_id",
	"machine_name",
	"os",
	"os_version",
	"disk_encrypted",
	"os_up_to_date",
	"antivirus_present",
	"inactivity_sleep_minutes",
	"has_issues",
	"last_check",
}

// Table is a flat projection of machine snapshots. Booleans are rendered as
// 0/1 and missing values as empty cells.
type Table struct {
	Header []string
	Rows   [][]string
}

// Export returns the machines matching f in the same order as List.
func (r *Registry) Export(ctx context.Context, f Filter) (*Table, error) {
	list, err := r.List(ctx, f)
	if err != nil {
		return nil, err
	}

	header := make([]string, len(ExportColumns))
	copy(header, ExportColumns)

	t := &Table{Header: header, Rows: make([][]string, 0, len(list))}
	for _, m := range list {
		t.Rows = append(t.Rows, exportRow(m))
	}
	return t, nil
}

// WriteCSV writes the header followed by every row.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}

func exportRow(m Machine) []string {
	return []string{
		m.MachineID,
		derefString(m.MachineName),
		derefString(m.OS),
		derefString(m.OSVersion),
		boolCell(m.DiskEncrypted),
		boolCell(m.OSUpToDate),
		boolCell(m.AntivirusPresent),
		intCell(m.InactivitySleepMinutes),
		boolCell(m.HasIssues),
		m.LastCheck.UTC().Format(time.RFC3339),
	}
}

func boolCell(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func intCell(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
