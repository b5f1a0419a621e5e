package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pocket-pulse/internal/domain"
)

func newTestServer(t *testing.T) (*httptest.Server, *Client) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(domain.BotStatus{IsRunning: true, CurrentAsset: "EURUSD_otc", Balance: 10000})
	})
	mux.HandleFunc("/market-analysis", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(domain.MarketAnalysis{Trend: domain.TrendUp})
	})
	mux.HandleFunc("/trade-stats", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(domain.TradeStats{Total: 6, Wins: 4, Losses: 2, WinRate: 4.0 / 6.0})
	})
	mux.HandleFunc("/action", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Action string `json:"action"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if req.Action == "frobnicate" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ActionResponse{Status: "error", Message: "unknown action"})
			return
		}
		json.NewEncoder(w).Encode(ActionResponse{Status: "success", Message: "Bot started."})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, New(srv.URL)
}

func TestOverview(t *testing.T) {
	_, client := newTestServer(t)

	overview, err := client.Overview(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !overview.Status.IsRunning || overview.Status.CurrentAsset != "EURUSD_otc" {
		t.Errorf("unexpected status: %+v", overview.Status)
	}
	if overview.Analysis.Trend != domain.TrendUp {
		t.Errorf("unexpected analysis: %+v", overview.Analysis)
	}
	if overview.Trades.Total != 6 {
		t.Errorf("unexpected trades: %+v", overview.Trades)
	}
}

func TestPostAction(t *testing.T) {
	_, client := newTestServer(t)

	resp, err := client.PostAction(context.Background(), "start", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != "success" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestPostActionServerError(t *testing.T) {
	_, client := newTestServer(t)

	_, err := client.PostAction(context.Background(), "frobnicate", nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "unknown action") {
		t.Errorf("server message not surfaced: %v", err)
	}
}

func TestGetJSONNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	client := New(srv.URL)
	if _, err := client.Status(context.Background()); err == nil {
		t.Fatal("expected an error for a 500 response")
	}
}
