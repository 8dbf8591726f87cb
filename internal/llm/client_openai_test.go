package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestServer(t *testing.T, handler func(t *testing.T, req openAIRequest) string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected authorization header: %s", auth)
		}

		body, _ := io.ReadAll(r.Body)
		var req openAIRequest
		if err := json.Unmarshal(body, &req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}

		content := handler(t, req)
		resp := map[string]interface{}{
			"id":    "chatcmpl-1",
			"model": req.Model,
			"choices": []map[string]interface{}{
				{
					"index":         0,
					"message":       map[string]string{"role": "assistant", "content": content},
					"finish_reason": "stop",
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestOpenAICompleteWithSystem(t *testing.T) {
	srv := newTestServer(t, func(t *testing.T, req openAIRequest) string {
		if len(req.Messages) != 2 {
			t.Fatalf("expected 2 messages, got %d", len(req.Messages))
		}
		if req.Messages[0].Role != "system" || req.Messages[0].Content != "be brief" {
			t.Errorf("unexpected system message: %+v", req.Messages[0])
		}
		if req.Messages[1].Role != "user" {
			t.Errorf("unexpected user role: %s", req.Messages[1].Role)
		}
		return "  a plan  "
	})
	defer srv.Close()

	cfg := DefaultOpenAIConfig("test-key")
	cfg.BaseURL = srv.URL
	client := NewOpenAIClientWithConfig(cfg)

	out, err := client.CompleteWithSystem(context.Background(), "be brief", "plan my day")
	if err != nil {
		t.Fatalf("CompleteWithSystem failed: %v", err)
	}
	if out != "a plan" {
		t.Errorf("expected trimmed completion, got %q", out)
	}
}

func TestOpenAICompleteStructured(t *testing.T) {
	srv := newTestServer(t, func(t *testing.T, req openAIRequest) string {
		if req.ResponseFormat == nil {
			t.Fatal("expected response_format to be set")
		}
		if req.ResponseFormat.Type != "json_schema" {
			t.Errorf("expected json_schema format, got %s", req.ResponseFormat.Type)
		}
		if req.ResponseFormat.JSONSchema.Name != "TaskClassifier" {
			t.Errorf("unexpected schema name: %s", req.ResponseFormat.JSONSchema.Name)
		}
		return `{"task_type":"research"}`
	})
	defer srv.Close()

	cfg := DefaultOpenAIConfig("test-key")
	cfg.BaseURL = srv.URL
	client := NewOpenAIClientWithConfig(cfg)

	schema := EnumObjectSchema("TaskClassifier", "task_type", "goal category", "focus", "research", "motivation")
	out, err := client.CompleteStructured(context.Background(), "classify", "learn Go", schema)
	if err != nil {
		t.Fatalf("CompleteStructured failed: %v", err)
	}
	if out != `{"task_type":"research"}` {
		t.Errorf("unexpected structured output: %q", out)
	}
}

func TestOpenAIMissingKey(t *testing.T) {
	client := NewOpenAIClient("")
	if _, err := client.Complete(context.Background(), "hello"); err == nil {
		t.Error("expected error with no API key")
	}
}

func TestOpenAIAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"boom"}}`))
	}))
	defer srv.Close()

	cfg := DefaultOpenAIConfig("test-key")
	cfg.BaseURL = srv.URL
	client := NewOpenAIClientWithConfig(cfg)

	if _, err := client.Complete(context.Background(), "hello"); err == nil {
		t.Error("expected error on 500 response")
	}
}
