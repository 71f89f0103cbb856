package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/atlas-desktop/trading-backend/internal/api"
	"github.com/atlas-desktop/trading-backend/internal/batch"
	"github.com/atlas-desktop/trading-backend/internal/persist"
)

func setupTestServer(t *testing.T) (*api.Store, *httptest.Server) {
	store := api.NewStore()
	repo := persist.NewMemoryRepository()
	server := api.NewServer(zap.NewNop(), api.DefaultServerConfig(), store, repo)
	ts := httptest.NewServer(server.Router())
	t.Cleanup(ts.Close)
	return store, ts
}

func TestHealthEndpoint(t *testing.T) {
	_, ts := setupTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	var result map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result["status"] != "healthy" {
		t.Errorf("expected status 'healthy', got %v", result["status"])
	}
}

func TestGetRunNotFound(t *testing.T) {
	_, ts := setupTestServer(t)

	resp, err := http.Get(ts.URL + "/runs/does-not-exist")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestGetRunAndTop(t *testing.T) {
	store, ts := setupTestServer(t)

	report := api.BuildReport("run-1", batch.Filters{MinTrades: 1}, batch.DefaultWeights, 5, 3, nil)
	store.Put("run-1", report)

	resp, err := http.Get(ts.URL + "/runs/run-1")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var got api.RunReport
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Summary.TotalBacktested != 5 || got.Summary.PassedFilters != 3 {
		t.Errorf("unexpected summary: %+v", got.Summary)
	}

	topResp, err := http.Get(ts.URL + "/runs/run-1/top")
	if err != nil {
		t.Fatalf("top request failed: %v", err)
	}
	defer topResp.Body.Close()
	if topResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", topResp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	_, ts := setupTestServer(t)

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestProgressWebSocket(t *testing.T) {
	store, ts := setupTestServer(t)

	wsURL := "ws" + ts.URL[len("http"):] + "/runs/run-2/progress"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	store.Hub("run-2").Publish(api.ProgressFrame{Completed: 1, Total: 10, CurrentStrategy: "s1"})

	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read message failed: %v", err)
	}
	var frame api.ProgressFrame
	if err := json.Unmarshal(msg, &frame); err != nil {
		t.Fatalf("unmarshal frame: %v", err)
	}
	if frame.Completed != 1 || frame.Total != 10 || frame.CurrentStrategy != "s1" {
		t.Errorf("unexpected frame: %+v", frame)
	}
}
