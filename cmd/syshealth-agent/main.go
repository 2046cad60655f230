package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/EternisAI/syshealth/internal/agent"
)

var AppVersion string

func usage() {
	fmt.Fprintln(os.Stderr, "usage: syshealth-agent <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  run    report now and then on every interval (default)")
	fmt.Fprintln(os.Stderr, "  once   collect and send a single report")
	fmt.Fprintln(os.Stderr, "  show   collect and print the report without sending it")
}

func main() {
	cmd := "run"
	args := os.Args[1:]
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	InitConfig()

	var err error
	switch cmd {
	case "run":
		err = runLoop(args)
	case "once":
		err = runOnce(args)
	case "show":
		err = runShow(args)
	case "-h", "--help", "help":
		usage()
		return
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		slog.Error("Command failed", "command", cmd, "error", err)
		os.Exit(1)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newAgent() *agent.Agent {
	client := agent.NewClient(config.Server.Url, config.Report.Timeout)
	return agent.New(agent.NewCollector(), client)
}

func runLoop(args []string) error {
	if err := parseServerFlags("run", args); err != nil {
		return err
	}
	if config.Report.Interval <= 0 {
		return fmt.Errorf("report.interval must be positive, got %s", config.Report.Interval)
	}

	slog.Info("Syshealth Agent", "version", AppVersion, "server", config.Server.Url, "interval", config.Report.Interval)

	ctx, stop := signalContext()
	defer stop()

	newAgent().Run(ctx, config.Report.Interval)
	return nil
}

func runOnce(args []string) error {
	if err := parseServerFlags("once", args); err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	return newAgent().ReportOnce(ctx)
}

func runShow(args []string) error {
	if err := parseServerFlags("show", args); err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	report := agent.NewCollector().Collect(ctx)
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
