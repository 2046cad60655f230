package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/EternisAI/syshealth/internal/api/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func doJSON(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func submit(t *testing.T, router *gin.Engine, body map[string]any) dto.ReportResponse {
	t.Helper()
	rr := doJSON(router, http.MethodPost, "/report", body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp dto.ReportResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func list(t *testing.T, router *gin.Engine, query string) []dto.MachineResponse {
	t.Helper()
	rr := doJSON(router, http.MethodGet, "/machines"+query, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp []dto.MachineResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func ids(machines []dto.MachineResponse) []string {
	out := make([]string, len(machines))
	for i, m := range machines {
		out[i] = m.MachineID
	}
	return out
}

func checks(disk, updates, av any, minutes any) map[string]any {
	c := map[string]any{
		"disk_encrypted":    disk,
		"os_up_to_date":     updates,
		"antivirus_present": av,
	}
	if minutes != nil {
		c["inactivity_sleep_minutes"] = minutes
	}
	return c
}
