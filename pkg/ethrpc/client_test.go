package ethrpc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
)

func TestClient_BlockNumber(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.Method != "eth_blockNumber" {
			t.Errorf("Expected method eth_blockNumber, got %s", req.Method)
		}
		if req.JSONRPC != "2.0" {
			t.Errorf("Expected jsonrpc 2.0, got %s", req.JSONRPC)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  "0x3e8",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())
	height, err := client.BlockNumber(context.Background())
	if err != nil {
		t.Fatalf("BlockNumber failed: %v", err)
	}
	if height != 1000 {
		t.Errorf("Expected height 1000, got %d", height)
	}
}

func TestClient_BlockNumber_RetriesTransientFailure(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      1,
			"result":  "0x10",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())
	height, err := client.BlockNumber(context.Background())
	if err != nil {
		t.Fatalf("BlockNumber failed after retry: %v", err)
	}
	if height != 16 {
		t.Errorf("Expected height 16, got %d", height)
	}
	if calls.Load() != 2 {
		t.Errorf("Expected 2 attempts, got %d", calls.Load())
	}
}

func TestClient_BlockNumber_ExhaustsAttempts(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())
	_, err := client.BlockNumber(context.Background())
	if err == nil {
		t.Fatal("Expected an error after exhausting attempts")
	}
	if calls.Load() != blockNumberAttempts {
		t.Errorf("Expected %d attempts, got %d", blockNumberAttempts, calls.Load())
	}
}

func TestClient_ErrorObjectWithOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// providers return RPC failures with HTTP 200
		json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      1,
			"error":   map[string]any{"code": -32000, "message": "query exceeds block range"},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())
	_, err := client.TransferLogs(context.Background(), "0x2222222222222222222222222222222222222222", 0, 100)
	if err == nil {
		t.Fatal("Expected the error object to surface as an error")
	}
	if !strings.Contains(err.Error(), "query exceeds block range") {
		t.Errorf("Expected provider message in error, got %v", err)
	}
}

func TestClient_TransferLogs(t *testing.T) {
	token := "0x2222222222222222222222222222222222222222"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.Method != "eth_getLogs" {
			t.Errorf("Expected method eth_getLogs, got %s", req.Method)
		}
		if len(req.Params) != 1 {
			t.Fatalf("Expected 1 param, got %d", len(req.Params))
		}
		filter, ok := req.Params[0].(map[string]any)
		if !ok {
			t.Fatalf("Expected filter object, got %T", req.Params[0])
		}
		if filter["fromBlock"] != "0x64" || filter["toBlock"] != "0xc8" {
			t.Errorf("Unexpected block range: %v - %v", filter["fromBlock"], filter["toBlock"])
		}
		if filter["address"] != token {
			t.Errorf("Expected address %s, got %v", token, filter["address"])
		}
		topics, _ := filter["topics"].([]any)
		if len(topics) != 1 || topics[0] != TransferTopic {
			t.Errorf("Expected transfer topic filter, got %v", topics)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result": []map[string]any{
				{
					"address":         token,
					"topics":          []string{TransferTopic},
					"data":            "0x1",
					"blockNumber":     "0x65",
					"transactionHash": "0xtx1",
					"logIndex":        "0x0",
				},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())
	logs, err := client.TransferLogs(context.Background(), token, 100, 200)
	if err != nil {
		t.Fatalf("TransferLogs failed: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("Expected 1 log, got %d", len(logs))
	}
	if logs[0].TransactionHash != "0xtx1" {
		t.Errorf("Expected tx hash 0xtx1, got %s", logs[0].TransactionHash)
	}
}

func TestClient_TransferLogs_EmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      1,
			"result":  []any{},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())
	logs, err := client.TransferLogs(context.Background(), "0x2222222222222222222222222222222222222222", 0, 10)
	if err != nil {
		t.Fatalf("TransferLogs failed: %v", err)
	}
	if len(logs) != 0 {
		t.Errorf("Expected no logs, got %d", len(logs))
	}
}

func TestClient_RequestIDsIncrease(t *testing.T) {
	var ids []int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		ids = append(ids, req.ID)
		json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  "0x1",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())
	for i := 0; i < 3; i++ {
		if _, err := client.BlockNumber(context.Background()); err != nil {
			t.Fatalf("BlockNumber failed: %v", err)
		}
	}

	if len(ids) != 3 {
		t.Fatalf("Expected 3 requests, got %d", len(ids))
	}
	for i := 1; i < len(ids); i++ {
		if ids[i] <= ids[i-1] {
			t.Errorf("Expected strictly increasing request IDs, got %v", ids)
		}
	}
}
