package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(url string) *Client {
	return NewClient(url, 5*time.Second, WithBackoff(3, time.Millisecond, 5*time.Millisecond))
}

func sampleReport() Report {
	minutes := 5
	return Report{
		MachineID:   "m1",
		MachineName: "host-1",
		OS:          "Ubuntu",
		OSVersion:   "22.04",
		Checks: Checks{
			DiskEncrypted:          true,
			OSUpToDate:             true,
			AntivirusPresent:       true,
			InactivitySleepMinutes: &minutes,
		},
	}
}

func TestSendReport(t *testing.T) {
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/report", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"status":"saved","machine_id":"m1","has_issues":false}`))
	}))
	defer srv.Close()

	resp, err := testClient(srv.URL+"/").Send(context.Background(), sampleReport())
	require.NoError(t, err)
	assert.Equal(t, "saved", resp.Status)
	assert.Equal(t, "m1", resp.MachineID)
	assert.False(t, resp.HasIssues)

	assert.Equal(t, "m1", received["machine_id"])
	checks, ok := received["checks"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, checks["disk_encrypted"])
	assert.Equal(t, float64(5), checks["inactivity_sleep_minutes"])
}

func TestSendOmitsUnknownInactivity(t *testing.T) {
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"status":"saved","machine_id":"m1","has_issues":true}`))
	}))
	defer srv.Close()

	report := sampleReport()
	report.Checks.InactivitySleepMinutes = nil

	resp, err := testClient(srv.URL).Send(context.Background(), report)
	require.NoError(t, err)
	assert.True(t, resp.HasIssues)

	checks := received["checks"].(map[string]any)
	assert.NotContains(t, checks, "inactivity_sleep_minutes")
}

func TestSendRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"status":"saved","machine_id":"m1","has_issues":false}`))
	}))
	defer srv.Close()

	resp, err := testClient(srv.URL).Send(context.Background(), sampleReport())
	require.NoError(t, err)
	assert.Equal(t, "saved", resp.Status)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSendGivesUpAfterAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Send(context.Background(), sampleReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Equal(t, int32(3), calls.Load())
}

func TestSendDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"missing machine_id"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Send(context.Background(), sampleReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing machine_id")
	assert.Equal(t, int32(1), calls.Load())
}

func TestAgentReportOnce(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"status":"saved","machine_id":"02:42:ac:11:00:02","has_issues":true}`))
	}))
	defer srv.Close()

	a := New(fakeCollector(goosLinux, fakeRunner{}), testClient(srv.URL))
	require.NoError(t, a.ReportOnce(context.Background()))
	assert.Equal(t, int32(1), calls.Load())
}

func TestAgentRunStopsOnCancel(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"status":"saved","machine_id":"m1","has_issues":false}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	a := New(fakeCollector(goosLinux, fakeRunner{}), testClient(srv.URL))

	done := make(chan struct{})
	go func() {
		a.Run(ctx, 10*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return calls.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("agent did not stop")
	}
}
