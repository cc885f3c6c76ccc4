package huggingface

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/akolanti/PersonaRAG/internal/rag/llm"
)

func newTestServer(t *testing.T, status int, body string, check func(r *http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func request() llm.Request {
	return llm.Request{
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: "What is karma?"}},
		Temperature: 0.6,
		MaxTokens:   100,
	}
}

func TestComplete_NormalisesChatShape(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"Action and its fruit."}}]}`, func(r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer hf_test" {
			t.Errorf("missing bearer token")
		}
		var body chatRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if body.Model != "test-model" || body.MaxTokens != 100 {
			t.Errorf("unexpected request %+v", body)
		}
	})

	res, err := New("hf_test", srv.URL, "test-model").Complete(context.Background(), request())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text() != "Action and its fruit." || res.Provider != "huggingface" {
		t.Errorf("unexpected completion %+v", res)
	}
}

func TestComplete_LoadingCarriesEstimate(t *testing.T) {
	srv := newTestServer(t, http.StatusServiceUnavailable, `{"error":"Model is currently loading","estimated_time":12.5}`, nil)

	_, err := New("hf_test", srv.URL, "m").Complete(context.Background(), request())
	var loading *llm.LoadingError
	if !errors.As(err, &loading) {
		t.Fatalf("expected loading error, got %v", err)
	}
	if loading.EstimatedWait != 12500*time.Millisecond {
		t.Errorf("unexpected estimate %s", loading.EstimatedWait)
	}
	if !errors.Is(err, llm.ErrModelLoading) {
		t.Error("loading error must match ErrModelLoading")
	}
}

func TestComplete_ErrorFieldWinsOverStatus(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{"error":{"message":"model not supported"}}`, nil)

	_, err := New("hf_test", srv.URL, "m").Complete(context.Background(), request())
	var perr *llm.ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected provider error, got %v", err)
	}
	if perr.Message != "model not supported" || perr.Status != http.StatusOK {
		t.Errorf("unexpected provider error %+v", perr)
	}
}

func TestComplete_NonJSONFailure(t *testing.T) {
	srv := newTestServer(t, http.StatusBadGateway, `upstream down`, nil)
	_, err := New("hf_test", srv.URL, "m").Complete(context.Background(), request())
	var perr *llm.ProviderError
	if !errors.As(err, &perr) || perr.Status != http.StatusBadGateway {
		t.Fatalf("expected provider error with status, got %v", err)
	}
}

func TestConfigured(t *testing.T) {
	if New("", "http://x", "m").Configured() {
		t.Error("provider without key must not be configured")
	}
}
