package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kisite/chatbot-gateway/internal/llm"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCompleteSendsSystemAndHistory(t *testing.T) {
	var captured chatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "Olá! Como posso ajudar?"}},
			},
		})
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL, Model: "qwen", Temperature: 0.7, MaxTokens: 500}, testLogger())
	reply, err := client.Complete(context.Background(), "persona", []llm.Message{
		{Role: llm.RoleUser, Content: "oi"},
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if reply != "Olá! Como posso ajudar?" {
		t.Fatalf("unexpected reply %q", reply)
	}

	if captured.Model != "qwen" || captured.MaxTokens != 500 {
		t.Fatalf("unexpected request payload: %+v", captured)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" || captured.Messages[0].Content != "persona" {
		t.Fatalf("expected system message first, got %+v", captured.Messages)
	}
}

func TestCompleteStripsThinkBlocks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "<think>raciocínio interno</think>  Resposta final."}},
			},
		})
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL}, testLogger())
	reply, err := client.Complete(context.Background(), "", []llm.Message{{Role: llm.RoleUser, Content: "oi"}})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if reply != "Resposta final." {
		t.Fatalf("expected think block stripped, got %q", reply)
	}
}

func TestCompleteNon2xxIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusBadGateway)
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL}, testLogger())
	if _, err := client.Complete(context.Background(), "", []llm.Message{{Role: llm.RoleUser, Content: "oi"}}); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

func TestCompleteWithoutBaseURLIsUnavailable(t *testing.T) {
	client := New(Config{}, testLogger())
	_, err := client.Complete(context.Background(), "", nil)
	if !errors.Is(err, llm.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestSanitizeModelReply(t *testing.T) {
	cases := map[string]string{
		"plain answer":                          "plain answer",
		"<think>hmm</think>answer":              "answer",
		"<think reason=\"x\">hmm</think> clean": "clean",
		"```think\ninner\n``` done":             "done",
		"dangling <think> marker":               "dangling  marker",
	}
	for input, expected := range cases {
		if got := sanitizeModelReply(input); got != expected {
			t.Fatalf("sanitize %q: expected %q, got %q", input, expected, got)
		}
	}
}
