package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kisite/chatbot-gateway/internal/gateway"
)

type MessageGateway interface {
	HandleMessage(ctx context.Context, input gateway.MessageInput) (gateway.MessageOutput, error)
}

// Connector long-polls the Telegram bot API and routes every inbound text
// message through the chat gateway.
type Connector struct {
	token       string
	apiBase     string
	pollSeconds int
	gateway     MessageGateway
	httpClient  *http.Client
	logger      *slog.Logger
	offset      int64
}

func New(token, apiBase string, pollSeconds int, messageGateway MessageGateway, logger *slog.Logger) *Connector {
	if strings.TrimSpace(apiBase) == "" {
		apiBase = "https://api.telegram.org"
	}
	if pollSeconds < 1 {
		pollSeconds = 25
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Connector{
		token:       strings.TrimSpace(token),
		apiBase:     strings.TrimRight(strings.TrimSpace(apiBase), "/"),
		pollSeconds: pollSeconds,
		gateway:     messageGateway,
		httpClient: &http.Client{
			Timeout: time.Duration(pollSeconds+10) * time.Second,
		},
		logger: logger,
	}
}

func (c *Connector) Name() string {
	return "telegram"
}

func (c *Connector) Start(ctx context.Context) error {
	if c.token == "" {
		c.logger.Info("connector disabled, token missing")
		<-ctx.Done()
		return nil
	}
	if c.gateway == nil {
		c.logger.Info("connector disabled, gateway missing")
		<-ctx.Done()
		return nil
	}

	c.logger.Info("connector started", "api_base", c.apiBase)
	for {
		if ctx.Err() != nil {
			c.logger.Info("connector stopped")
			return nil
		}
		if err := c.pollOnce(ctx); err != nil && ctx.Err() == nil {
			c.logger.Error("poll failed", "error", err)
			select {
			case <-ctx.Done():
				c.logger.Info("connector stopped")
				return nil
			case <-time.After(1500 * time.Millisecond):
			}
		}
	}
}

func (c *Connector) pollOnce(ctx context.Context) error {
	url := fmt.Sprintf("%s/bot%s/getUpdates?timeout=%d&offset=%d", c.apiBase, c.token, c.pollSeconds, c.offset)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	var payload getUpdatesResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return fmt.Errorf("decode getUpdates: %w", err)
	}
	if !payload.OK {
		return fmt.Errorf("telegram getUpdates failed")
	}

	for _, upd := range payload.Result {
		if upd.UpdateID >= c.offset {
			c.offset = upd.UpdateID + 1
		}
		c.handleUpdate(ctx, upd)
	}
	return nil
}

func (c *Connector) handleUpdate(ctx context.Context, upd update) {
	if upd.Message == nil {
		return
	}
	msg := upd.Message
	if msg.From != nil && msg.From.IsBot {
		return
	}
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	userID := strconv.FormatInt(msg.Chat.ID, 10)
	output, err := c.gateway.HandleMessage(ctx, gateway.MessageInput{
		Connector:   "telegram",
		UserID:      userID,
		DisplayName: displayName(msg.From),
		Text:        text,
	})
	if err != nil {
		c.logger.Error("message handling failed", "error", err, "chat_id", msg.Chat.ID)
		return
	}
	if strings.TrimSpace(output.Reply) == "" {
		return
	}
	if err := c.sendMessage(ctx, msg.Chat.ID, output.Reply); err != nil {
		c.logger.Error("send reply failed", "error", err, "chat_id", msg.Chat.ID)
	}
}

func (c *Connector) sendMessage(ctx context.Context, chatID int64, text string) error {
	body, err := json.Marshal(sendMessageRequest{ChatID: chatID, Text: text})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.apiBase, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	var payload sendMessageResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return fmt.Errorf("decode sendMessage: %w", err)
	}
	if !payload.OK {
		return fmt.Errorf("telegram sendMessage failed")
	}
	return nil
}

func displayName(from *user) string {
	if from == nil {
		return ""
	}
	name := strings.TrimSpace(strings.TrimSpace(from.FirstName) + " " + strings.TrimSpace(from.LastName))
	if name != "" {
		return name
	}
	return strings.TrimSpace(from.Username)
}
