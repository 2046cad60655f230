package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseServerFlags(t *testing.T) {
	config = Config{
		Server: ServerConfig{Url: "http://localhost:5000"},
		Report: ReportConfig{Interval: 30 * time.Minute, Timeout: 15 * time.Second},
	}

	require.NoError(t, parseServerFlags("once", nil))
	assert.Equal(t, "http://localhost:5000", config.Server.Url)
	assert.Equal(t, 30*time.Minute, config.Report.Interval)

	require.NoError(t, parseServerFlags("run", []string{"--server", "http://fleet:8080", "--interval", "5m"}))
	assert.Equal(t, "http://fleet:8080", config.Server.Url)
	assert.Equal(t, 5*time.Minute, config.Report.Interval)
	assert.Equal(t, 15*time.Second, config.Report.Timeout)
}

func TestParseServerFlagsRejectsBadInput(t *testing.T) {
	config = Config{Server: ServerConfig{Url: "http://localhost:5000"}}

	assert.Error(t, parseServerFlags("once", []string{"--server", ""}))
	assert.Error(t, parseServerFlags("once", []string{"extra"}))
	assert.Error(t, parseServerFlags("once", []string{"--nope"}))
}
