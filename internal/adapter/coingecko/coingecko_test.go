package coingecko

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jinbangyi/apikey-usage-inspector/internal/httpx"
	"github.com/jinbangyi/apikey-usage-inspector/internal/provider"
)

func TestClient_GetKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/key" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("X-Cg-Pro-Api-Key") != "cg-test-key" {
			t.Errorf("unexpected api key header: %q", r.Header.Get("X-Cg-Pro-Api-Key"))
		}

		json.NewEncoder(w).Encode(KeyResponse{
			Plan:                         "analyst",
			MonthlyCallCredit:            500000,
			CurrentTotalMonthlyCalls:     120000,
			CurrentRemainingMonthlyCalls: 380000,
		})
	}))
	defer server.Close()

	client := NewClient(httpx.New(httpx.Options{}), "cg-test-key")
	client.baseURL = server.URL

	key, err := client.GetKey(context.Background())
	if err != nil {
		t.Fatalf("GetKey failed: %v", err)
	}
	if key.Plan != "analyst" {
		t.Errorf("expected plan analyst, got %q", key.Plan)
	}
	if key.CurrentRemainingMonthlyCalls != 380000 {
		t.Errorf("expected 380000 remaining, got %d", key.CurrentRemainingMonthlyCalls)
	}
}

func TestAdapter_Inspect_MultiKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(KeyResponse{
			Plan:                         "analyst",
			MonthlyCallCredit:            500000,
			CurrentRemainingMonthlyCalls: 400000,
		})
	}))
	defer server.Close()

	orig := baseURL
	baseURL = server.URL
	defer func() { baseURL = orig }()

	adapter := New(httpx.New(httpx.Options{}))
	var _ provider.Adapter = adapter

	sess := &provider.Session{
		Provider: "coingecko",
		Keys:     []string{"cg-key-aaaaaaaaaaaa", "cg-key-bbbbbbbbbbbb"},
	}
	result := adapter.Inspect(context.Background(), sess)
	if result.Status != provider.StatusOK {
		t.Fatalf("expected ok, got %s (%s)", result.Status, result.ErrorDetail)
	}

	// 4 quota metrics per key
	if len(result.Metrics) != 8 {
		t.Fatalf("expected 8 metrics for two keys, got %d", len(result.Metrics))
	}

	keyLabels := make(map[string]bool)
	for _, m := range result.Metrics {
		keyLabels[m.Labels[provider.LabelKey]] = true
		if strings.Contains(m.Labels[provider.LabelKey], "aaaaaaaaaaaa") {
			t.Errorf("key label must be masked, got %q", m.Labels[provider.LabelKey])
		}
		if m.Labels["plan"] != "analyst" {
			t.Errorf("metric %s missing plan label", m.Name)
		}
	}
	if len(keyLabels) != 2 {
		t.Errorf("expected distinct masked labels per key, got %v", keyLabels)
	}
}

func TestAdapter_Inspect_PartialKeyFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Cg-Pro-Api-Key") == "cg-key-revoked-0000" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"invalid key"}`))
			return
		}
		json.NewEncoder(w).Encode(KeyResponse{
			Plan:                         "pro",
			MonthlyCallCredit:            100000,
			CurrentRemainingMonthlyCalls: 90000,
		})
	}))
	defer server.Close()

	orig := baseURL
	baseURL = server.URL
	defer func() { baseURL = orig }()

	adapter := New(httpx.New(httpx.Options{}))
	sess := &provider.Session{
		Provider: "coingecko",
		Keys:     []string{"cg-key-revoked-0000", "cg-key-live-11111111"},
	}
	result := adapter.Inspect(context.Background(), sess)

	// One key still delivered, so the result stays usable.
	if result.Status != provider.StatusOK {
		t.Errorf("expected ok with partial data, got %s", result.Status)
	}
	if len(result.Metrics) != 4 {
		t.Errorf("expected 4 metrics from the surviving key, got %d", len(result.Metrics))
	}
	if result.ErrorDetail == "" {
		t.Error("expected the failed key recorded in error detail")
	}
	if strings.Contains(result.ErrorDetail, "cg-key-revoked-0000") {
		t.Error("error detail must not leak the raw key")
	}
}

func TestAdapter_Inspect_AllKeysFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	orig := baseURL
	baseURL = server.URL
	defer func() { baseURL = orig }()

	adapter := New(httpx.New(httpx.Options{}))
	sess := &provider.Session{Provider: "coingecko", Keys: []string{"cg-key-dead-00000000"}}
	result := adapter.Inspect(context.Background(), sess)
	if result.Status != provider.StatusAuthFailed {
		t.Errorf("expected auth_failed when every key fails, got %s", result.Status)
	}
	if len(result.Metrics) != 0 {
		t.Errorf("expected no metrics, got %d", len(result.Metrics))
	}
}
