package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kisite/chatbot-gateway/internal/app"
	"github.com/kisite/chatbot-gateway/internal/config"
	"github.com/kisite/chatbot-gateway/internal/transcript"
)

const version = "1.0.0"

func NewRoot(logger *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:   "chatbot-gateway",
		Short: "Business chatbot gateway with a keyword FAQ and completion fallback",
	}

	root.AddCommand(newServeCommand(logger))
	root.AddCommand(newSweepCommand(logger))
	root.AddCommand(newVersionCommand())

	return root
}

func newServeCommand(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the chat gateway, HTTP API, connectors and retention scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromEnv()
			runtime, err := app.New(cfg, logger)
			if err != nil {
				return err
			}
			defer runtime.Close()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return runtime.Run(ctx)
		},
	}
}

func newSweepCommand(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Delete transcripts older than the retention threshold and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromEnv()
			store, err := transcript.New(cfg.ConversationsDir, cfg.RetentionDays, logger)
			if err != nil {
				return err
			}
			deleted, err := store.Sweep()
			if err != nil {
				return err
			}
			cmd.Printf("%d conversation(s) deleted\n", deleted)
			return nil
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print CLI version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(version)
		},
	}
}
