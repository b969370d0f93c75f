// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Store backend names accepted in STORE_BACKEND.
const (
	BackendSQLite = "sqlite"
	BackendDynamo = "dynamo"
)

// Config holds all configuration for the uploader bot.
type Config struct {
	// BotToken is the Telegram bot token for this uploader bot.
	BotToken string

	// OperatorID is the Telegram user ID of the single authorized operator.
	OperatorID int64

	// MainBotUsername is the username of the public bot that resolves
	// issued deep links (without the @ prefix).
	MainBotUsername string

	// ArchiveChat is the archive channel target, either "@username" or a
	// numeric chat ID.
	ArchiveChat string

	// WebhookURL is the public URL Telegram delivers updates to.
	WebhookURL string

	// WebhookSecret, when set, must match the X-Telegram-Bot-Api-Secret-Token
	// header on inbound webhook requests.
	WebhookSecret string

	// Port is the HTTP server port for webhook mode.
	Port int

	// StoreBackend selects the post registry backend: "sqlite" or "dynamo".
	StoreBackend string

	// DynamoTable is the DynamoDB table name for the dynamo backend.
	DynamoTable string

	// SQLitePath is the database file path for the sqlite backend.
	SQLitePath string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}

	adminRaw := os.Getenv("ADMIN_ID")
	if adminRaw == "" {
		return nil, fmt.Errorf("ADMIN_ID is required")
	}
	operatorID, err := strconv.ParseInt(adminRaw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_ID: %w", err)
	}

	port := 8080
	if p := os.Getenv("PORT"); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %w", err)
		}
	}

	backend := os.Getenv("STORE_BACKEND")
	if backend == "" {
		backend = BackendSQLite
	}
	if backend != BackendSQLite && backend != BackendDynamo {
		return nil, fmt.Errorf("invalid STORE_BACKEND %q: must be %q or %q", backend, BackendSQLite, BackendDynamo)
	}

	mainBot := os.Getenv("MAIN_BOT_USERNAME")
	if mainBot == "" {
		mainBot = "TERA_CLOUDBOT"
	}

	archive := os.Getenv("UPLOAD_CHANNEL")
	if archive == "" {
		return nil, fmt.Errorf("UPLOAD_CHANNEL is required")
	}

	table := os.Getenv("POSTS_TABLE")
	if table == "" {
		table = "posts"
	}

	dbPath := os.Getenv("SQLITE_PATH")
	if dbPath == "" {
		dbPath = "tera-upload.db"
	}

	return &Config{
		BotToken:        token,
		OperatorID:      operatorID,
		MainBotUsername: mainBot,
		ArchiveChat:     archive,
		WebhookURL:      os.Getenv("WEBHOOK_URL"),
		WebhookSecret:   os.Getenv("WEBHOOK_SECRET"),
		Port:            port,
		StoreBackend:    backend,
		DynamoTable:     table,
		SQLitePath:      dbPath,
	}, nil
}
