package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yourusername/fetchbot/api"
	"github.com/yourusername/fetchbot/internal/app"
	"github.com/yourusername/fetchbot/internal/domain"
	"github.com/yourusername/fetchbot/internal/infrastructure"
	"github.com/yourusername/fetchbot/pkg/logger"
)

const version = "1.0.0"

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "fetchbot",
		Short: "Telegram bot that downloads video and audio from shared links",
		Long: `A Telegram bot that accepts media links, probes them with yt-dlp,
lets the user pick video or audio, and delivers the converted file.`,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(versionCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the bot",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runBot(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

var probeCmd = &cobra.Command{
	Use:   "probe [url]",
	Short: "Probe a URL and print its metadata without downloading",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runProbe(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("fetchbot %s\n", version)
	},
}

func runBot() error {
	// .env is optional; environment variables win either way.
	_ = godotenv.Load()

	config, err := app.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if config.Telegram.Token == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is not set")
	}

	log, err := logger.New(logger.Config{
		Level:      config.Logging.Level,
		Format:     config.Logging.Format,
		OutputPath: config.Logging.OutputPath,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	log.Info("Starting fetchbot",
		zap.String("version", version),
		zap.String("download_dir", config.Download.Dir),
		zap.String("engine", config.Download.EngineBinary))

	if err := os.MkdirAll(config.Download.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create download directory: %w", err)
	}

	botAPI, err := tgbotapi.NewBotAPI(config.Telegram.Token)
	if err != nil {
		return fmt.Errorf("failed to authorize bot: %w", err)
	}
	log.Info("Authorized", zap.String("username", botAPI.Self.UserName))

	history, err := infrastructure.NewSQLiteHistoryRepository(config.Download.HistoryPath)
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer history.Close()

	engine := infrastructure.NewYTDLPEngine(config.Download.EngineBinary, log)
	transport := infrastructure.NewTelegramTransport(botAPI)
	sessions := app.NewMemorySessionStore()

	orchestrator := app.NewOrchestrator(engine, transport, sessions, history, &config.Download, log)
	bot := infrastructure.NewBot(botAPI, orchestrator, config.Telegram.PollTimeout, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if config.Server.Enabled {
		router := api.SetupRouter(bot, history, version, log)
		srv := &http.Server{
			Addr:    fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port),
			Handler: router,
		}

		go func() {
			log.Info("HTTP server listening", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("HTTP server failed", zap.Error(err))
			}
		}()

		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Warn("HTTP server shutdown failed", zap.Error(err))
			}
		}()
	}

	if err := bot.Run(ctx); err != nil && err != context.Canceled {
		return err
	}

	log.Info("Shutting down")
	return nil
}

func runProbe(url string) error {
	_ = godotenv.Load()

	config, err := app.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	engine := infrastructure.NewYTDLPEngine(config.Download.EngineBinary, logger.NewDefault())

	ctx, cancel := context.WithTimeout(context.Background(), config.Download.ProbeTimeout)
	defer cancel()

	probe, err := engine.Probe(ctx, url)
	if err != nil {
		return err
	}

	profile := domain.ResolveProfile(url)
	fmt.Printf("Title:    %s\n", probe.Title)
	fmt.Printf("ID:       %s\n", probe.ID)
	fmt.Printf("Ext:      %s\n", probe.Ext)
	fmt.Printf("Duration: %s\n", probe.DurationString())
	fmt.Printf("Size:     %.1f MB\n", probe.SizeMB())
	fmt.Printf("Estimate: %.1f s\n", probe.EstimatedFetchSeconds())
	fmt.Printf("Format:   %s\n", profile.FetchFormat(domain.ModalityVideo))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
