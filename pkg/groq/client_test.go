package groq

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	t.Setenv("TEST_GROQ_KEY", "sk-test")
	c, err := NewClient(Config{
		BaseURL:     url,
		Model:       "llama-3.3-70b-versatile",
		APIKeyEnv:   "TEST_GROQ_KEY",
		Temperature: 0.3,
		MaxTokens:   1000,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestCompleteSendsModelAndAuth(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "Try Trio for laal maas."}},
			},
		})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	out, err := c.Complete(context.Background(), []Message{{Role: "user", Content: "best curry?"}})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "Try Trio for laal maas." {
		t.Errorf("content = %q", out)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if gotReq.Model != "llama-3.3-70b-versatile" || gotReq.Temperature != 0.3 || gotReq.MaxTokens != 1000 {
		t.Errorf("request = %+v", gotReq)
	}
}

func TestCompleteAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "rate limit reached", "type": "rate_limit_error"},
		})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestNewClientMissingKey(t *testing.T) {
	t.Setenv("TEST_GROQ_EMPTY", "")
	_, err := NewClient(Config{APIKeyEnv: "TEST_GROQ_EMPTY"})
	if err == nil {
		t.Fatal("expected missing key error")
	}
}
