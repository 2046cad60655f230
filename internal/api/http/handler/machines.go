package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/EternisAI/syshealth/internal/api/http/dto"
	"github.com/EternisAI/syshealth/internal/compliance"
	"github.com/EternisAI/syshealth/internal/machines"
	"github.com/EternisAI/syshealth/internal/metrics"
	"github.com/gin-gonic/gin"
)

const exportFilename = "machines.csv"

// MachineRegistry is the part of machines.Registry the HTTP layer uses.
type MachineRegistry interface {
	Submit(ctx context.Context, report machines.Report) (*machines.Machine, error)
	Get(ctx context.Context, machineID string) (*machines.Machine, error)
	List(ctx context.Context, f machines.Filter) ([]machines.Machine, error)
	Export(ctx context.Context, f machines.Filter) (*machines.Table, error)
}

type MachinesHandler struct {
	registry MachineRegistry
	metrics  *metrics.Metrics
}

func NewMachinesHandler(registry MachineRegistry, m *metrics.Metrics) *MachinesHandler {
	return &MachinesHandler{
		registry: registry,
		metrics:  m,
	}
}

// Report stores the submitted checks as the machine's latest snapshot
// POST /report
func (h *MachinesHandler) Report(c *gin.Context) {
	var req dto.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.ReportRejected()
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	report, err := parseReport(req)
	if err != nil {
		h.metrics.ReportRejected()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m, err := h.registry.Submit(c.Request.Context(), report)
	if err != nil {
		if errors.Is(err, machines.ErrValidation) {
			h.metrics.ReportRejected()
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.metrics.StorageError("upsert")
		slog.Error("Failed to store report", "error", err, "machine_id", report.MachineID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store report"})
		return
	}

	h.metrics.ReportStored(m.HasIssues)
	slog.Info("Report stored", "machine_id", m.MachineID, "has_issues", m.HasIssues)

	c.JSON(http.StatusCreated, dto.ReportResponse{
		Status:    "saved",
		MachineID: m.MachineID,
		HasIssues: m.HasIssues,
	})
}

// ListMachines returns the fleet, most recently reported first
// GET /machines?os=&only_issues=
func (h *MachinesHandler) ListMachines(c *gin.Context) {
	list, err := h.registry.List(c.Request.Context(), filterFromQuery(c))
	if err != nil {
		h.metrics.StorageError("list")
		slog.Error("Failed to list machines", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list machines"})
		return
	}

	h.metrics.QueryServed("list")

	responses := make([]dto.MachineResponse, len(list))
	for i, m := range list {
		responses[i] = toMachineResponse(m)
	}
	c.JSON(http.StatusOK, responses)
}

// GetMachine returns one machine's snapshot
// GET /machines/:id
func (h *MachinesHandler) GetMachine(c *gin.Context) {
	machineID := c.Param("id")

	m, err := h.registry.Get(c.Request.Context(), machineID)
	if err != nil {
		switch {
		case errors.Is(err, machines.ErrMachineNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "machine not found"})
		case errors.Is(err, machines.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.metrics.StorageError("get")
			slog.Error("Failed to get machine", "error", err, "machine_id", machineID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get machine"})
		}
		return
	}

	h.metrics.QueryServed("get")
	c.JSON(http.StatusOK, toMachineResponse(*m))
}

// ExportCSV returns the filtered fleet as a CSV download
// GET /export.csv?os=&only_issues=
func (h *MachinesHandler) ExportCSV(c *gin.Context) {
	table, err := h.registry.Export(c.Request.Context(), filterFromQuery(c))
	if err != nil {
		h.metrics.StorageError("export")
		slog.Error("Failed to export machines", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export machines"})
		return
	}

	var buf bytes.Buffer
	if err := table.WriteCSV(&buf); err != nil {
		slog.Error("Failed to render export", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export machines"})
		return
	}

	h.metrics.QueryServed("export")
	c.Header("Content-Disposition", "attachment; filename="+exportFilename)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

func filterFromQuery(c *gin.Context) machines.Filter {
	return machines.Filter{
		OS:         c.Query("os"),
		OnlyIssues: machines.ParseOnlyIssues(c.Query("only_issues")),
	}
}

func parseReport(req dto.ReportRequest) (machines.Report, error) {
	machineID, err := parseMachineID(req.MachineID)
	if err != nil {
		return machines.Report{}, err
	}

	checks, err := compliance.ParseCheckSet(req.Checks)
	if err != nil {
		return machines.Report{}, fmt.Errorf("%w: %w", machines.ErrValidation, err)
	}

	report := machines.Report{
		MachineID: machineID,
		OS:        deref(req.OS),
		OSVersion: deref(req.OSVersion),
		Checks:    checks,
	}
	report.MachineName = deref(req.MachineName)
	if report.MachineName == "" {
		report.MachineName = deref(req.Hostname)
	}
	return report, nil
}

// parseMachineID accepts a non-empty string or a number.
func parseMachineID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", machines.ErrMissingMachineID
	}

	var id string
	switch raw[0] {
	case '"':
		if err := json.Unmarshal(raw, &id); err != nil {
			return "", fmt.Errorf("%w: invalid machine_id", machines.ErrValidation)
		}
	default:
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return "", fmt.Errorf("%w: machine_id must be a string or number", machines.ErrValidation)
		}
		id = n.String()
	}

	if strings.TrimSpace(id) == "" {
		return "", machines.ErrMissingMachineID
	}
	return id, nil
}

func toMachineResponse(m machines.Machine) dto.MachineResponse {
	checks := m.Checks
	if checks == nil {
		checks = compliance.CheckSet{}
	}
	return dto.MachineResponse{
		MachineID:              m.MachineID,
		MachineName:            m.MachineName,
		OS:                     m.OS,
		OSVersion:              m.OSVersion,
		DiskEncrypted:          m.DiskEncrypted,
		OSUpToDate:             m.OSUpToDate,
		AntivirusPresent:       m.AntivirusPresent,
		InactivitySleepMinutes: m.InactivitySleepMinutes,
		HasIssues:              m.HasIssues,
		LastCheck:              m.LastCheck.UTC().Format(time.RFC3339),
		Checks:                 checks,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
