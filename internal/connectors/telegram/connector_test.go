package telegram

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kisite/chatbot-gateway/internal/gateway"
)

type fakeGateway struct {
	calls int
	last  gateway.MessageInput
	reply string
}

func (f *fakeGateway) HandleMessage(ctx context.Context, input gateway.MessageInput) (gateway.MessageOutput, error) {
	f.calls++
	f.last = input
	return gateway.MessageOutput{Reply: f.reply}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPollOnceRoutesMessageAndReplies(t *testing.T) {
	var sent sendMessageRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			_ = json.NewEncoder(w).Encode(getUpdatesResponse{
				OK: true,
				Result: []update{{
					UpdateID: 7,
					Message: &message{
						MessageID: 1,
						From:      &user{ID: 42, FirstName: "Maria", LastName: "Silva"},
						Chat:      chat{ID: 42, Type: "private"},
						Text:      "quanto custa",
					},
				}},
			})
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			if err := json.NewDecoder(r.Body).Decode(&sent); err != nil {
				t.Errorf("decode sendMessage: %v", err)
			}
			_ = json.NewEncoder(w).Encode(sendMessageResponse{OK: true})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	gw := &fakeGateway{reply: "O Site Essencial custa R$897."}
	connector := New("test-token", server.URL, 1, gw, testLogger())

	if err := connector.pollOnce(context.Background()); err != nil {
		t.Fatalf("poll once: %v", err)
	}

	if gw.calls != 1 {
		t.Fatalf("expected one gateway call, got %d", gw.calls)
	}
	if gw.last.Connector != "telegram" || gw.last.UserID != "42" || gw.last.DisplayName != "Maria Silva" {
		t.Fatalf("unexpected gateway input: %+v", gw.last)
	}
	if sent.ChatID != 42 || sent.Text != "O Site Essencial custa R$897." {
		t.Fatalf("unexpected outbound message: %+v", sent)
	}
	if connector.offset != 8 {
		t.Fatalf("expected offset advanced to 8, got %d", connector.offset)
	}
}

func TestPollOnceSkipsBotAndEmptyMessages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/sendMessage") {
			t.Error("no reply should be sent")
			return
		}
		_ = json.NewEncoder(w).Encode(getUpdatesResponse{
			OK: true,
			Result: []update{
				{UpdateID: 1, Message: &message{From: &user{IsBot: true}, Chat: chat{ID: 1}, Text: "bot text"}},
				{UpdateID: 2, Message: &message{From: &user{ID: 2}, Chat: chat{ID: 2}, Text: "   "}},
				{UpdateID: 3},
			},
		})
	}))
	defer server.Close()

	gw := &fakeGateway{reply: "nunca"}
	connector := New("test-token", server.URL, 1, gw, testLogger())

	if err := connector.pollOnce(context.Background()); err != nil {
		t.Fatalf("poll once: %v", err)
	}
	if gw.calls != 0 {
		t.Fatalf("expected no gateway calls, got %d", gw.calls)
	}
}
