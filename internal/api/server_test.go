package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/smazurov/strobed/internal/events"
	"github.com/smazurov/strobed/internal/metrics"
	"github.com/smazurov/strobed/internal/sequence"
	"github.com/smazurov/strobed/internal/strobe"
	"github.com/smazurov/strobed/internal/torch"
	"github.com/smazurov/strobed/internal/updater"
)

// MockUpdateService for testing update routes without GitHub access.
type MockUpdateService struct {
	Enabled bool
	Reason  string
	Info    *updater.UpdateInfo
	Err     error
}

func (m *MockUpdateService) CheckForUpdate(ctx context.Context) (*updater.UpdateInfo, error) {
	return m.Info, m.Err
}

func (m *MockUpdateService) ApplyUpdate(ctx context.Context) error {
	return m.Err
}

func (m *MockUpdateService) Restart(ctx context.Context) error {
	return nil
}

func (m *MockUpdateService) GetStatus(ctx context.Context) *updater.Status {
	return &updater.Status{State: updater.StateIdle, CurrentVersion: "dev"}
}

func (m *MockUpdateService) IsEnabled() bool {
	return m.Enabled
}

func (m *MockUpdateService) DisabledReason() string {
	return m.Reason
}

type testServer struct {
	server *Server
	ts     *httptest.Server
	engine *strobe.Engine
	fake   *torch.Fake
	bus    *events.Bus
	store  *sequence.Store
}

func newTestServer(t *testing.T, withAuth bool, mutate func(*Options)) *testServer {
	t.Helper()

	fake := torch.NewFake()
	bus := events.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	engine := strobe.New(fake, bus, logger, strobe.WithAutoStart(false))
	t.Cleanup(engine.Close)

	store := sequence.NewStore(filepath.Join(t.TempDir(), "sequences.toml"))

	opts := &Options{
		Engine:   engine,
		Torch:    fake,
		Store:    store,
		EventBus: bus,
	}
	if withAuth {
		opts.AuthUsername = "test"
		opts.AuthPassword = "test"
	}
	if mutate != nil {
		mutate(opts)
	}

	server := NewServer(opts)
	ts := httptest.NewServer(server.mux)
	t.Cleanup(ts.Close)

	return &testServer{
		server: server,
		ts:     ts,
		engine: engine,
		fake:   fake,
		bus:    bus,
		store:  store,
	}
}

func (s *testServer) request(t *testing.T, method, path string, body string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	}
	req, err := http.NewRequest(method, s.ts.URL+path, reader)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request %s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	return resp, data
}

func TestHealthEndpointNoAuth(t *testing.T) {
	s := newTestServer(t, true, nil)

	resp, body := s.request(t, http.MethodGet, "/api/health", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 without credentials, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), `"status":"ok"`) {
		t.Errorf("Unexpected health body: %s", body)
	}
}

func TestVersionEndpointNoAuth(t *testing.T) {
	s := newTestServer(t, true, nil)

	resp, body := s.request(t, http.MethodGet, "/api/version", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 without credentials, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), `"version"`) {
		t.Errorf("Unexpected version body: %s", body)
	}
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t, true, nil)

	resp, _ := s.request(t, http.MethodGet, "/api/engine", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("Expected 401 without credentials, got %d", resp.StatusCode)
	}
	if !strings.Contains(resp.Header.Get("WWW-Authenticate"), "Strobed API") {
		t.Errorf("Expected WWW-Authenticate realm, got %q", resp.Header.Get("WWW-Authenticate"))
	}

	req, _ := http.NewRequest(http.MethodGet, s.ts.URL+"/api/engine", nil)
	req.SetBasicAuth("test", "test")
	resp2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Authenticated request failed: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 with credentials, got %d", resp2.StatusCode)
	}

	req2, _ := http.NewRequest(http.MethodGet, s.ts.URL+"/api/engine", nil)
	req2.SetBasicAuth("test", "wrong")
	resp3, err := http.DefaultClient.Do(req2)
	if err != nil {
		t.Fatalf("Request with bad credentials failed: %v", err)
	}
	defer resp3.Body.Close()
	if resp3.StatusCode != http.StatusUnauthorized {
		t.Fatalf("Expected 401 with bad credentials, got %d", resp3.StatusCode)
	}
}

func TestEngineStatus(t *testing.T) {
	s := newTestServer(t, false, nil)

	resp, body := s.request(t, http.MethodGet, "/api/engine", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", resp.StatusCode, body)
	}

	var status struct {
		State     string `json:"state"`
		QueueSize int    `json:"queue_size"`
		TorchOn   bool   `json:"torch_on"`
	}
	if err := json.Unmarshal(body, &status); err != nil {
		t.Fatalf("Failed to decode status: %v", err)
	}
	if status.State != "IDLE" {
		t.Errorf("Expected IDLE, got %s", status.State)
	}
	if status.QueueSize != 0 || status.TorchOn {
		t.Errorf("Expected empty idle engine, got %+v", status)
	}
}

func TestEnqueueEffectAppliesDefaults(t *testing.T) {
	s := newTestServer(t, false, nil)

	resp, body := s.request(t, http.MethodPost, "/api/queue/effect", `{"type":"on","durationMs":200}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", resp.StatusCode, body)
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("Failed to decode enqueue response: %v", err)
	}
	if result.ID == "" {
		t.Error("Expected a generated effect ID")
	}

	waitQueueSize(t, s.engine, 1)
}

func TestEnqueueEffectRejectsUnknownKind(t *testing.T) {
	s := newTestServer(t, false, nil)

	resp, body := s.request(t, http.MethodPost, "/api/queue/effect", `{"type":"BLINK"}`)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("Expected 422, got %d: %s", resp.StatusCode, body)
	}
}

func TestEnqueueBatchAndClear(t *testing.T) {
	s := newTestServer(t, false, nil)

	resp, body := s.request(t, http.MethodPost, "/api/queue/effects",
		`{"effects":[{"type":"ON","durationMs":100},{"type":"OFF","durationMs":100},{"type":"STROBE","durationMs":100,"frequency":20}]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", resp.StatusCode, body)
	}

	var result struct {
		IDs []string `json:"ids"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("Failed to decode batch response: %v", err)
	}
	if len(result.IDs) != 3 {
		t.Fatalf("Expected 3 IDs, got %d", len(result.IDs))
	}

	waitQueueSize(t, s.engine, 3)

	resp, _ = s.request(t, http.MethodDelete, "/api/queue", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 for clear, got %d", resp.StatusCode)
	}
	waitQueueSize(t, s.engine, 0)
}

func TestTorchDirectControl(t *testing.T) {
	s := newTestServer(t, false, nil)

	resp, _ := s.request(t, http.MethodPost, "/api/torch/on", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	waitTorch(t, s.engine, true)

	resp, _ = s.request(t, http.MethodPost, "/api/torch/intensity", `{"intensity":0.2}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	// Default threshold is 0.5, so 0.2 turns the torch off
	waitTorch(t, s.engine, false)

	resp, body := s.request(t, http.MethodGet, "/api/torch", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), `"backend":"fake"`) {
		t.Errorf("Unexpected torch status body: %s", body)
	}
}

func TestIntensityValidation(t *testing.T) {
	s := newTestServer(t, false, nil)

	resp, body := s.request(t, http.MethodPost, "/api/torch/intensity", `{"intensity":1.5}`)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("Expected 422 for out-of-range intensity, got %d: %s", resp.StatusCode, body)
	}
}

func TestSequenceCRUDAndPlay(t *testing.T) {
	s := newTestServer(t, false, nil)

	resp, body := s.request(t, http.MethodPut, "/api/sequences/sos",
		`{"description":"test pattern","effects":[{"type":"ON","durationMs":50},{"type":"OFF","durationMs":50}]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", resp.StatusCode, body)
	}

	resp, body = s.request(t, http.MethodGet, "/api/sequences", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	var list struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(body, &list); err != nil {
		t.Fatalf("Failed to decode list: %v", err)
	}
	if list.Count != 1 {
		t.Fatalf("Expected 1 sequence, got %d", list.Count)
	}

	resp, _ = s.request(t, http.MethodPost, "/api/sequences/sos/play", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 for play, got %d", resp.StatusCode)
	}
	waitEngineState(t, s.engine, strobe.StateRunning)

	resp, _ = s.request(t, http.MethodDelete, "/api/sequences/sos", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 for delete, got %d", resp.StatusCode)
	}

	resp, _ = s.request(t, http.MethodGet, "/api/sequences/sos", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("Expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestPlayUnknownSequence(t *testing.T) {
	s := newTestServer(t, false, nil)

	resp, _ := s.request(t, http.MethodPost, "/api/sequences/missing/play", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", resp.StatusCode)
	}
}

func TestEngineLifecycleRoutes(t *testing.T) {
	s := newTestServer(t, false, nil)

	s.request(t, http.MethodPost, "/api/queue/effect", `{"type":"ON","durationMs":5000}`)
	waitQueueSize(t, s.engine, 1)

	resp, _ := s.request(t, http.MethodPost, "/api/engine/start", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 for start, got %d", resp.StatusCode)
	}
	waitEngineState(t, s.engine, strobe.StateRunning)
	waitTorch(t, s.engine, true)

	resp, _ = s.request(t, http.MethodPost, "/api/engine/pause", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 for pause, got %d", resp.StatusCode)
	}
	waitEngineState(t, s.engine, strobe.StatePaused)
	waitTorch(t, s.engine, false)

	resp, _ = s.request(t, http.MethodPost, "/api/engine/resume", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 for resume, got %d", resp.StatusCode)
	}
	waitEngineState(t, s.engine, strobe.StateRunning)

	resp, _ = s.request(t, http.MethodPost, "/api/engine/stop", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 for stop, got %d", resp.StatusCode)
	}
	waitEngineState(t, s.engine, strobe.StateStopped)
	waitTorch(t, s.engine, false)

	resp, _ = s.request(t, http.MethodPost, "/api/engine/force-off", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 for force-off, got %d", resp.StatusCode)
	}
}

func TestMetricsEndpointNoAuth(t *testing.T) {
	s := newTestServer(t, true, func(opts *Options) {
		recorder := metrics.NewRecorder(nil, opts.EventBus, nil)
		opts.PrometheusHandler = recorder.Handler()
	})

	resp, body := s.request(t, http.MethodGet, "/metrics", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 without credentials, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "strobed_engine_state") {
		t.Errorf("Expected engine state metric in scrape output")
	}
}

func TestUpdateRoutesDisabled(t *testing.T) {
	s := newTestServer(t, false, func(opts *Options) {
		opts.UpdateService = &MockUpdateService{Enabled: false, Reason: "no write permission"}
	})

	resp, body := s.request(t, http.MethodGet, "/api/update/check", "")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("Expected 503, got %d: %s", resp.StatusCode, body)
	}
	if !strings.Contains(string(body), "no write permission") {
		t.Errorf("Expected disabled reason in body, got: %s", body)
	}
}

func TestUpdateCheck(t *testing.T) {
	s := newTestServer(t, false, func(opts *Options) {
		opts.UpdateService = &MockUpdateService{
			Enabled: true,
			Info: &updater.UpdateInfo{
				CurrentVersion:  "1.0.0",
				LatestVersion:   "1.1.0",
				UpdateAvailable: true,
			},
		}
	})

	resp, body := s.request(t, http.MethodGet, "/api/update/check", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", resp.StatusCode, body)
	}

	var check struct {
		LatestVersion   string `json:"latest_version"`
		UpdateAvailable bool   `json:"update_available"`
	}
	if err := json.Unmarshal(body, &check); err != nil {
		t.Fatalf("Failed to decode check response: %v", err)
	}
	if !check.UpdateAvailable || check.LatestVersion != "1.1.0" {
		t.Errorf("Unexpected check result: %+v", check)
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, true, nil)

	req, _ := http.NewRequest(http.MethodOptions, s.ts.URL+"/api/engine", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Preflight request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("Expected 204 for preflight, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("Expected permissive CORS origin, got %q", resp.Header.Get("Access-Control-Allow-Origin"))
	}
}

func waitQueueSize(t *testing.T, e *strobe.Engine, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if e.QueueSize() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for queue size %d, still %d", want, e.QueueSize())
}

func waitTorch(t *testing.T, e *strobe.Engine, want bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if e.TorchOn() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for torch=%v", want)
}

func waitEngineState(t *testing.T, e *strobe.Engine, want strobe.State) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if e.State() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for state %s, still %s", want, e.State())
}
