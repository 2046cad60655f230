package main

import (
	"flag"
	"fmt"
	"time"
)

// parseServerFlags lets command-line flags override the loaded config.
func parseServerFlags(name string, args []string) error {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	server := fs.String("server", config.Server.Url, "Server URL (e.g., http://server:5000)")
	interval := fs.Duration("interval", config.Report.Interval, "Time between reports")
	timeout := fs.Duration("timeout", config.Report.Timeout, "HTTP timeout per request")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if *server == "" {
		return fmt.Errorf("--server is required")
	}

	config.Server.Url = *server
	config.Report.Interval = *interval
	if *timeout > 0 {
		config.Report.Timeout = *timeout
	} else {
		config.Report.Timeout = 15 * time.Second
	}
	return nil
}
