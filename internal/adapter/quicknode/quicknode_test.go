package quicknode

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jinbangyi/apikey-usage-inspector/internal/httpx"
	"github.com/jinbangyi/apikey-usage-inspector/internal/provider"
)

func TestClient_GetUsage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v0/usage/rpc" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("X-Api-Key") != "qn-test-key" {
			t.Errorf("unexpected api key header: %q", r.Header.Get("X-Api-Key"))
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(UsageResponse{
			Data: UsageData{CreditsUsed: 1200, CreditsRemaining: 8800, Limit: 10000},
		})
	}))
	defer server.Close()

	client := NewClient(httpx.New(httpx.Options{}), "qn-test-key")
	client.baseURL = server.URL

	usage, err := client.GetUsage(context.Background())
	if err != nil {
		t.Fatalf("GetUsage failed: %v", err)
	}
	if usage.Data.CreditsUsed != 1200 {
		t.Errorf("expected 1200 credits used, got %d", usage.Data.CreditsUsed)
	}
	if usage.Data.Limit != 10000 {
		t.Errorf("expected limit 10000, got %d", usage.Data.Limit)
	}
}

func TestAdapter_Inspect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(UsageResponse{
			Data: UsageData{CreditsUsed: 2500, Limit: 10000},
		})
	}))
	defer server.Close()

	orig := baseURL
	baseURL = server.URL
	defer func() { baseURL = orig }()

	adapter := New(httpx.New(httpx.Options{}))
	var _ provider.Adapter = adapter

	result := adapter.Inspect(context.Background(), &provider.Session{Provider: "quicknode", Key: "qn-test-key"})
	if result.Status != provider.StatusOK {
		t.Fatalf("expected ok, got %s (%s)", result.Status, result.ErrorDetail)
	}

	byName := make(map[string]float64)
	for _, m := range result.Metrics {
		byName[m.Name] = m.Value
		if m.Labels[provider.LabelKeyType] != "console" {
			t.Errorf("metric %s missing key_type label", m.Name)
		}
	}
	if byName[provider.MetricUsed] != 2500 {
		t.Errorf("expected usage_used 2500, got %v", byName[provider.MetricUsed])
	}
	if byName[provider.MetricRatio] != 0.25 {
		t.Errorf("expected usage_ratio 0.25, got %v", byName[provider.MetricRatio])
	}
}

func TestAdapter_Inspect_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid api key"}`))
	}))
	defer server.Close()

	orig := baseURL
	baseURL = server.URL
	defer func() { baseURL = orig }()

	adapter := New(httpx.New(httpx.Options{}))
	result := adapter.Inspect(context.Background(), &provider.Session{Provider: "quicknode", Key: "bad-key"})
	if result.Status != provider.StatusAuthFailed {
		t.Errorf("expected auth_failed, got %s", result.Status)
	}
	if result.ErrorDetail == "" {
		t.Error("expected error detail for the rejection")
	}
}

func TestAdapter_Inspect_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>maintenance</html>"))
	}))
	defer server.Close()

	orig := baseURL
	baseURL = server.URL
	defer func() { baseURL = orig }()

	adapter := New(httpx.New(httpx.Options{}))
	result := adapter.Inspect(context.Background(), &provider.Session{Provider: "quicknode", Key: "qn-test-key"})
	if result.Status != provider.StatusParseFailed {
		t.Errorf("expected parse_failed, got %s", result.Status)
	}
}

func TestAdapter_Inspect_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	orig := baseURL
	baseURL = server.URL
	defer func() { baseURL = orig }()

	adapter := New(httpx.New(httpx.Options{}))
	result := adapter.Inspect(context.Background(), &provider.Session{Provider: "quicknode", Key: "qn-test-key"})
	if result.Status != provider.StatusNetworkFailed {
		t.Errorf("expected network_failed, got %s", result.Status)
	}
}

func TestAdapter_Inspect_NoKey(t *testing.T) {
	adapter := New(httpx.New(httpx.Options{}))
	result := adapter.Inspect(context.Background(), &provider.Session{Provider: "quicknode"})
	if result.Status != provider.StatusAuthFailed {
		t.Errorf("expected auth_failed, got %s", result.Status)
	}
}
