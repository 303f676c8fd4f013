package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dealscout/internal/slack"
	"dealscout/worker"

	"github.com/spf13/cobra"
)

// serveCmd runs the scanner on an interval plus the Slack
// interactivity webhook, until interrupted.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the periodic scanner and Slack webhook",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		interval, err := time.ParseDuration(cfg.Scanner.ScanInterval)
		if err != nil {
			return fmt.Errorf("invalid scan_interval %q: %w", cfg.Scanner.ScanInterval, err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		r, pg, err := newRunner(ctx, cfg)
		if err != nil {
			return err
		}
		defer pg.Close()

		ws := []worker.Worker{
			&worker.ScanWorker{
				Runner:   r,
				Request:  runnerRequest(cfg, nil, 0, 0),
				Interval: interval,
			},
		}

		if cfg.Slack.SigningSecret != "" {
			var bot *slack.Bot
			if cfg.Slack.BotToken != "" {
				bot = slack.NewBot(cfg.Slack)
			}
			handler := slack.NewHandler(pg, notifierOrNil(bot), cfg.Slack.SigningSecret)
			ws = append(ws, &worker.WebhookServer{
				Addr:    cfg.Slack.ListenAddr,
				Handler: handler.Router(),
			})
		} else {
			slog.Warn("slack signing secret not set; interactivity webhook disabled")
		}

		// Signal handling for systemd
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			s := <-sigc
			log.Printf("received signal: %s, shutting down", s)
			cancel()
		}()

		slog.Info("service starting",
			"subreddits", len(cfg.Scanner.Subreddits),
			"interval", interval.String(),
			"webhook", cfg.Slack.SigningSecret != "")
		return worker.NewManager(ws...).Start(ctx)
	},
}

// notifierOrNil avoids wrapping a typed nil in the interface.
func notifierOrNil(bot *slack.Bot) slack.StatusNotifier {
	if bot == nil {
		return nil
	}
	return bot
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
