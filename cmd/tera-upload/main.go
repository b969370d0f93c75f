// Command tera-upload runs the uploader bot: the single authorized operator
// sends media, each file is archived and answered with a permanent deep link,
// and previously issued links can be retitled in batch via /change_title.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mdkhasimgs/tera-upload/internal/bot"
	"github.com/mdkhasimgs/tera-upload/internal/config"
	"github.com/mdkhasimgs/tera-upload/internal/logging"
	"github.com/mdkhasimgs/tera-upload/internal/store"
	"github.com/mdkhasimgs/tera-upload/internal/telegram"
	"github.com/mdkhasimgs/tera-upload/internal/webhook"
)

var pollFlag bool

var rootCmd = &cobra.Command{
	Use:   "tera-upload",
	Short: "Uploader bot issuing permanent deep links for archived media",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot, receiving updates by webhook (default) or long polling",
	Run:   runServe,
}

var setWebhookCmd = &cobra.Command{
	Use:   "set-webhook",
	Short: "Register WEBHOOK_URL with the Telegram Bot API",
	Run:   runSetWebhook,
}

func init() {
	serveCmd.Flags().BoolVar(&pollFlag, "poll", false, "Use long polling instead of a webhook")
	rootCmd.AddCommand(serveCmd, setWebhookCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// boot loads configuration and constructs the update router shared by both
// delivery modes.
func boot() (*config.Config, *tgbotapi.BotAPI, *bot.Router, func()) {
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("Loaded configuration from .env")
	}
	logging.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	registry, closeRegistry := openRegistry(cfg)

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to the Telegram Bot API")
	}
	log.Info().Str("bot", api.Self.UserName).Msg("Authorized on Telegram")

	client, err := telegram.New(api, cfg.ArchiveChat)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid archive chat configuration")
	}

	gate := bot.NewGate(cfg.OperatorID)
	pipeline := bot.NewPipeline(registry, client, cfg.MainBotUsername, cfg.OperatorID)
	editor := bot.NewEditor(registry, cfg.MainBotUsername)
	router := bot.NewRouter(gate, pipeline, editor, client)

	return cfg, api, router, closeRegistry
}

// openRegistry constructs the configured post registry backend.
func openRegistry(cfg *config.Config) (store.PostRegistry, func()) {
	switch cfg.StoreBackend {
	case config.BackendDynamo:
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load AWS config")
		}
		log.Info().Str("table", cfg.DynamoTable).Msg("Using DynamoDB post registry")
		return store.NewDynamoRegistry(dynamodb.NewFromConfig(awsCfg), cfg.DynamoTable), func() {}

	default:
		registry, err := store.NewSQLiteRegistry(cfg.SQLitePath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.SQLitePath).Msg("Failed to open SQLite post registry")
		}
		log.Info().Str("path", cfg.SQLitePath).Msg("Using SQLite post registry")
		return registry, func() { registry.Close() }
	}
}

func runServe(cmd *cobra.Command, args []string) {
	cfg, api, router, closeRegistry := boot()
	defer closeRegistry()

	if pollFlag {
		servePolling(api, router)
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/", webhook.NewHandler(router, cfg.WebhookSecret))
	mux.HandleFunc("/healthz", webhook.Health)

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Info().Str("addr", addr).Msg("Listening for webhook updates")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal().Err(err).Msg("HTTP server failed")
	}
}

// servePolling consumes updates over long polling. Telegram delivers a chat's
// updates in order on this path, which the title-edit conversation relies on.
func servePolling(api *tgbotapi.BotAPI, router *bot.Router) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	log.Info().Msg("Listening for updates via long polling")
	for update := range api.GetUpdatesChan(u) {
		router.HandleUpdate(context.Background(), update)
	}
}

func runSetWebhook(cmd *cobra.Command, args []string) {
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("Loaded configuration from .env")
	}
	logging.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if cfg.WebhookURL == "" {
		log.Fatal().Msg("WEBHOOK_URL is required to set a webhook")
	}

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to the Telegram Bot API")
	}

	wh, err := tgbotapi.NewWebhook(cfg.WebhookURL)
	if err != nil {
		log.Fatal().Err(err).Str("url", cfg.WebhookURL).Msg("Invalid webhook URL")
	}
	if _, err := api.Request(wh); err != nil {
		log.Fatal().Err(err).Msg("Failed to set webhook")
	}

	info, err := api.GetWebhookInfo()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read webhook info")
	}
	log.Info().Str("url", info.URL).Int("pending", info.PendingUpdateCount).Msg("Webhook set")
}
