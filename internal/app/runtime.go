package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/kisite/chatbot-gateway/internal/config"
	"github.com/kisite/chatbot-gateway/internal/connectors"
	"github.com/kisite/chatbot-gateway/internal/connectors/telegram"
	"github.com/kisite/chatbot-gateway/internal/fallback"
	"github.com/kisite/chatbot-gateway/internal/gateway"
	"github.com/kisite/chatbot-gateway/internal/history"
	"github.com/kisite/chatbot-gateway/internal/httpapi"
	"github.com/kisite/chatbot-gateway/internal/intent"
	"github.com/kisite/chatbot-gateway/internal/knowledge"
	"github.com/kisite/chatbot-gateway/internal/llm/openai"
	"github.com/kisite/chatbot-gateway/internal/store"
	"github.com/kisite/chatbot-gateway/internal/transcript"
)

// Runtime owns every long-lived component of the chatbot gateway process.
type Runtime struct {
	cfg    config.Config
	logger *slog.Logger

	store       *store.Store
	transcripts *transcript.Store
	scheduler   *transcript.Scheduler
	gateway     *gateway.Service
	connectors  []connectors.Connector
	httpServer  *http.Server
}

func New(cfg config.Config, logger *slog.Logger) (*Runtime, error) {
	if logger == nil {
		logger = slog.Default()
	}

	sqlStore, err := store.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	migrateCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := sqlStore.AutoMigrate(migrateCtx); err != nil {
		sqlStore.Close()
		return nil, err
	}

	kb := knowledge.Load(cfg.KnowledgePath, logger.With("component", "knowledge"))

	transcripts, err := transcript.New(cfg.ConversationsDir, cfg.RetentionDays, logger.With("component", "transcripts"))
	if err != nil {
		sqlStore.Close()
		return nil, err
	}
	scheduler, err := transcript.NewScheduler(transcripts, logger.With("component", "sweep-scheduler"))
	if err != nil {
		sqlStore.Close()
		return nil, err
	}

	completer := openai.New(openai.Config{
		BaseURL:     cfg.LLMBaseURL,
		APIKey:      cfg.LLMAPIKey,
		Model:       cfg.LLMModel,
		Temperature: cfg.LLMTemperature,
		MaxTokens:   cfg.LLMMaxTokens,
		Timeout:     time.Duration(cfg.LLMTimeoutSec) * time.Second,
	}, logger.With("component", "llm"))

	fallbackService := fallback.New(kb, history.New(history.DefaultLimit), completer, logger.With("component", "fallback"))
	gatewayService := gateway.New(kb, intent.New(), fallbackService, transcripts, sqlStore, logger.With("component", "gateway"))

	router := httpapi.NewRouter(httpapi.Dependencies{
		Config:        cfg,
		Gateway:       gatewayService,
		Conversations: transcripts,
		Knowledge:     kb,
		Store:         sqlStore,
		Prober:        completer,
		Logger:        logger.With("component", "api"),
		StartedAt:     time.Now(),
	})

	runtime := &Runtime{
		cfg:         cfg,
		logger:      logger,
		store:       sqlStore,
		transcripts: transcripts,
		scheduler:   scheduler,
		gateway:     gatewayService,
		httpServer: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
	runtime.connectors = append(runtime.connectors, telegram.New(
		cfg.TelegramToken,
		cfg.TelegramAPI,
		cfg.TelegramPoll,
		gatewayService,
		logger.With("component", "connector:telegram"),
	))
	return runtime, nil
}

// Transcripts exposes the conversation store for one-shot CLI commands.
func (r *Runtime) Transcripts() *transcript.Store {
	return r.transcripts
}

func (r *Runtime) Close() error {
	if r.store == nil {
		return nil
	}
	return r.store.Close()
}
