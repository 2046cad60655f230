package tests

import (
	"context"
	"encoding/csv"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportScenario(t *testing.T, router *gin.Engine) {
	os := "scenario-os"

	resp := submit(t, router, map[string]any{
		"machine_id": "m1",
		"os":         os,
		"checks":     checks(true, true, true, 5),
	})
	assert.Equal(t, "saved", resp.Status)
	assert.Equal(t, "m1", resp.MachineID)
	assert.False(t, resp.HasIssues)

	resp = submit(t, router, map[string]any{
		"machine_id": "m1",
		"os":         os,
		"checks":     checks(true, true, true, 15),
	})
	assert.True(t, resp.HasIssues)

	got := list(t, router, "?os="+os)
	require.Len(t, got, 1)
	assert.Equal(t, "m1", got[0].MachineID)
	require.NotNil(t, got[0].InactivitySleepMinutes)
	assert.Equal(t, 15, *got[0].InactivitySleepMinutes)
	assert.True(t, got[0].HasIssues)

	rr := doJSON(router, http.MethodGet, "/machines/m1", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(router, http.MethodGet, "/machines/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUpsertIdentity(t *testing.T, router *gin.Engine) {
	os := "identity-os"

	submit(t, router, map[string]any{
		"machine_id":   "identity-1",
		"machine_name": "first-name",
		"os":           os,
		"os_version":   "1.0",
		"checks":       checks(true, true, true, 5),
	})
	submit(t, router, map[string]any{
		"machine_id": "identity-1",
		"hostname":   "second-name",
		"os":         os,
		"checks":     checks("yes", 0, "off", nil),
	})

	got := list(t, router, "?os="+os)
	require.Len(t, got, 1)

	m := got[0]
	require.NotNil(t, m.MachineName)
	assert.Equal(t, "second-name", *m.MachineName)
	assert.Nil(t, m.OSVersion)
	assert.True(t, m.DiskEncrypted)
	assert.False(t, m.OSUpToDate)
	assert.False(t, m.AntivirusPresent)
	assert.Nil(t, m.InactivitySleepMinutes)
	assert.True(t, m.HasIssues)
	assert.Len(t, m.Checks, 3)

	rr := doJSON(router, http.MethodPost, "/report", map[string]any{"checks": checks(true, true, true, 1)})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Len(t, list(t, router, "?os="+os), 1)
}

func TestFilters(t *testing.T, router *gin.Engine) {
	os := "filter-os"

	submit(t, router, map[string]any{"machine_id": "filter-a", "os": os, "checks": checks(true, true, true, 5)})
	submit(t, router, map[string]any{"machine_id": "filter-b", "os": os, "checks": checks(true, true, true, 30)})
	submit(t, router, map[string]any{"machine_id": "filter-c", "os": "filter-other", "checks": checks(false, true, true, 5)})
	submit(t, router, map[string]any{"machine_id": "filter-d", "os": os, "checks": checks(true, true, true, 10)})

	assert.Equal(t, []string{"filter-d", "filter-b", "filter-a"}, ids(list(t, router, "?os="+os)))
	assert.Equal(t, []string{"filter-b"}, ids(list(t, router, "?os="+os+"&only_issues=1")))
	assert.Equal(t, []string{"filter-b"}, ids(list(t, router, "?os="+os+"&only_issues=TRUE")))
	assert.Len(t, list(t, router, "?os="+os+"&only_issues=no"), 3)
	assert.Empty(t, list(t, router, "?os=FILTER-OS"))

	all := list(t, router, "")
	require.NotEmpty(t, all)
	for i := 1; i < len(all); i++ {
		assert.GreaterOrEqual(t, all[i-1].LastCheck, all[i].LastCheck)
	}

	issues := list(t, router, "?only_issues=yes")
	for _, m := range issues {
		assert.True(t, m.HasIssues, m.MachineID)
	}
	assert.Contains(t, ids(issues), "filter-c")
}

func TestExport(t *testing.T, router *gin.Engine) {
	os := "export-os"

	submit(t, router, map[string]any{
		"machine_id":   "export-1",
		"machine_name": "laptop",
		"os":           os,
		"os_version":   "14.4",
		"checks":       checks(true, true, true, 5),
	})
	submit(t, router, map[string]any{
		"machine_id": "export-2",
		"os":         os,
		"checks":     checks(true, false, true, nil),
	})

	req := doJSON(router, http.MethodGet, "/export.csv?os="+os, nil)
	require.Equal(t, http.StatusOK, req.Code)
	assert.True(t, strings.HasPrefix(req.Header().Get("Content-Type"), "text/csv"))
	assert.Contains(t, req.Header().Get("Content-Disposition"), "machines.csv")

	records, err := csv.NewReader(strings.NewReader(req.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{
		"machine_id", "machine_name", "os", "os_version",
		"disk_encrypted", "os_up_to_date", "antivirus_present",
		"inactivity_sleep_minutes", "has_issues", "last_check",
	}, records[0])

	assert.Equal(t, []string{"export-2", "", os, "", "1", "0", "1", "", "1"}, records[1][:9])
	assert.Equal(t, []string{"export-1", "laptop", os, "14.4", "1", "1", "1", "5", "0"}, records[2][:9])

	listed := list(t, router, "?os="+os)
	require.Len(t, listed, 2)
	assert.Equal(t, records[1][9], listed[0].LastCheck)
	assert.True(t, listed[1].DiskEncrypted)
	assert.False(t, listed[1].HasIssues)

	empty := doJSON(router, http.MethodGet, "/export.csv?os=no-such-os", nil)
	require.Equal(t, http.StatusOK, empty.Code)
	records, err = csv.NewReader(strings.NewReader(empty.Body.String())).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestCorruptStoredChecks(t *testing.T, router *gin.Engine, pool *pgxpool.Pool) {
	os := "corrupt-os"

	submit(t, router, map[string]any{"machine_id": "corrupt-1", "os": os, "checks": checks(true, true, true, 5)})

	_, err := pool.Exec(context.Background(), "UPDATE machines SET raw_checks = $1 WHERE machine_id = $2", "{not json", "corrupt-1")
	require.NoError(t, err)

	got := list(t, router, "?os="+os)
	require.Len(t, got, 1)
	assert.NotNil(t, got[0].Checks)
	assert.Empty(t, got[0].Checks)
	assert.True(t, got[0].DiskEncrypted)
	assert.False(t, got[0].HasIssues)
}
