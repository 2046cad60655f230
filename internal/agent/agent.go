package agent

import (
	"context"
	"log/slog"
	"time"
)

type Agent struct {
	collector *Collector
	client    *Client
}

func New(collector *Collector, client *Client) *Agent {
	return &Agent{
		collector: collector,
		client:    client,
	}
}

// ReportOnce collects and sends a single report.
func (a *Agent) ReportOnce(ctx context.Context) error {
	start := time.Now()
	report := a.collector.Collect(ctx)

	slog.Debug("Collected report",
		"machine_id", report.MachineID,
		"os", report.OS,
		"duration", time.Since(start),
	)

	resp, err := a.client.Send(ctx, report)
	if err != nil {
		return err
	}

	slog.Info("Report sent", "machine_id", resp.MachineID, "has_issues", resp.HasIssues)
	return nil
}

// Run reports immediately and then every interval until ctx is cancelled.
// Delivery failures are logged and the next tick tries again.
func (a *Agent) Run(ctx context.Context, interval time.Duration) {
	if err := a.ReportOnce(ctx); err != nil && ctx.Err() == nil {
		slog.Error("Failed to send report", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Agent stopped")
			return
		case <-ticker.C:
			if err := a.ReportOnce(ctx); err != nil && ctx.Err() == nil {
				slog.Error("Failed to send report", "error", err)
			}
		}
	}
}
