package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	alarmapp "healthwatch-cloud/internal/alarms/application"
	analyticsapp "healthwatch-cloud/internal/analytics/application"
	remapp "healthwatch-cloud/internal/reminders/application"
	remmemory "healthwatch-cloud/internal/reminders/infrastructure/memory"
	vitals "healthwatch-cloud/internal/vitals/domain"
	vitalsmemory "healthwatch-cloud/internal/vitals/infrastructure/memory"
)

type fixture struct {
	server *httptest.Server
	store  *vitalsmemory.Store
	engine *alarmapp.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := vitalsmemory.NewStore()
	engine := alarmapp.NewEngine(zap.NewNop())
	aggregator := analyticsapp.NewAggregator(store, zap.NewNop())
	reminderService, err := remapp.NewService(remmemory.NewRepository(), nil, zap.NewNop())
	require.NoError(t, err)

	handler, err := NewHandler(store, aggregator, engine, reminderService, zap.NewNop())
	require.NoError(t, err)
	server := httptest.NewServer(NewRouter(handler, nil))
	t.Cleanup(server.Close)
	return &fixture{server: server, store: store, engine: engine}
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHistoryReturnsNewestFirst(t *testing.T) {
	fx := newFixture(t)
	base := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	for i := 0; i < 15; i++ {
		hr := 70 + i
		require.NoError(t, fx.store.AppendReading(context.Background(), vitals.VitalReading{
			DeviceID:  "wristband-7",
			Timestamp: base.Add(time.Duration(i) * time.Second),
			HeartRate: &hr,
		}))
	}

	var body struct {
		Readings []vitals.VitalReading `json:"readings"`
	}
	status := getJSON(t, fx.server.URL+"/api/v1/history", &body)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, body.Readings, 10)
	assert.Equal(t, base.Add(14*time.Second), body.Readings[0].Timestamp)

	status = getJSON(t, fx.server.URL+"/api/v1/history?limit=2", &body)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body.Readings, 2)

	resp, err := http.Get(fx.server.URL + "/api/v1/history?limit=nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReminderLifecycleOverHTTP(t *testing.T) {
	fx := newFixture(t)

	resp, err := http.Post(fx.server.URL+"/api/v1/reminders", "application/json",
		bytes.NewBufferString(`{"medicine":"Dolo-650","time":"02:30 PM"}`))
	require.NoError(t, err)
	var created struct {
		ID        string `json:"id"`
		Medicine  string `json:"medicine"`
		TimeOfDay string `json:"time_of_day"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "14:30", created.TimeOfDay)

	var listed struct {
		Reminders []json.RawMessage `json:"reminders"`
	}
	status := getJSON(t, fx.server.URL+"/api/v1/reminders", &listed)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, listed.Reminders, 1)

	req, err := http.NewRequest(http.MethodDelete, fx.server.URL+"/api/v1/reminders/"+created.ID, nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAddReminderRejectsBadInput(t *testing.T) {
	fx := newFixture(t)

	for _, body := range []string{
		`{"medicine":"","time":"14:30"}`,
		`{"medicine":"Dolo-650","time":"half past two"}`,
		`{not json`,
	} {
		resp, err := http.Post(fx.server.URL+"/api/v1/reminders", "application/json", bytes.NewBufferString(body))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
	}
}

func TestMaintenanceToggle(t *testing.T) {
	fx := newFixture(t)

	req, err := http.NewRequest(http.MethodPut, fx.server.URL+"/api/v1/maintenance",
		bytes.NewBufferString(`{"enabled":true}`))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	var state struct {
		FallActive      bool `json:"fall_active"`
		MaintenanceMode bool `json:"maintenance_mode"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, state.MaintenanceMode)

	status := getJSON(t, fx.server.URL+"/api/v1/maintenance", &state)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, state.MaintenanceMode)
	assert.False(t, state.FallActive)
}

func TestFallResetEndpoint(t *testing.T) {
	fx := newFixture(t)

	var result struct {
		WasActive bool `json:"was_active"`
	}
	resp, err := http.Post(fx.server.URL+"/api/v1/alarms/fall/reset", "application/json", nil)
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	resp.Body.Close()
	assert.False(t, result.WasActive)

	fx.engine.EvaluateReading(context.Background(), vitals.VitalReading{DeviceID: "wristband-7", FallDetected: true})

	resp, err = http.Post(fx.server.URL+"/api/v1/alarms/fall/reset", "application/json", nil)
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	resp.Body.Close()
	assert.True(t, result.WasActive)
	assert.False(t, fx.engine.Snapshot().FallActive)
}

func TestWindowSummaryEndpoint(t *testing.T) {
	fx := newFixture(t)
	hr := 75
	require.NoError(t, fx.store.AppendReading(context.Background(), vitals.VitalReading{
		DeviceID:  "wristband-7",
		Timestamp: time.Now().UTC().Add(-30 * time.Second),
		HeartRate: &hr,
	}))

	var report struct {
		Slots []struct {
			Slot        int `json:"slot"`
			SampleCount int `json:"sample_count"`
		} `json:"slots"`
		TotalRaw int `json:"total_raw"`
	}
	status := getJSON(t, fx.server.URL+"/api/v1/summary/window?window=minute", &report)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, report.Slots, 6)
	assert.Equal(t, 1, report.TotalRaw)

	resp, err := http.Get(fx.server.URL + "/api/v1/summary/window?window=year")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRollingSummaryEndpoint(t *testing.T) {
	fx := newFixture(t)

	var body struct {
		Buckets []json.RawMessage `json:"buckets"`
		Live    struct {
			SampleCount int `json:"sample_count"`
		} `json:"live"`
	}
	status := getJSON(t, fx.server.URL+"/api/v1/summary/rolling", &body)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body.Buckets)
	assert.Equal(t, 0, body.Live.SampleCount)
}

func TestExportEndpoints(t *testing.T) {
	fx := newFixture(t)

	resp, err := http.Get(fx.server.URL + "/api/v1/exports/history.xlsx")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "spreadsheetml")

	resp, err = http.Get(fx.server.URL + "/api/v1/exports/summary.pdf")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
}

func TestHealthz(t *testing.T) {
	fx := newFixture(t)
	var body map[string]string
	status := getJSON(t, fx.server.URL+"/healthz", &body)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}
