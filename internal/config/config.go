package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Config stores service settings: HTTP port, database, Telegram bot,
// dispatch loop, optional Kafka ingestion and the token sweep schedule.
type Config struct {
	Port     int
	DB       DB
	Bot      Bot
	Dispatch Dispatch
	Kafka    Kafka
	Admin    Admin
	Sweep    Sweep
}

// DB stores Postgres connection settings.
type DB struct {
	Host string
	Port string
	User string
	Pass string
	Name string
}

// DSN returns the Postgres connection string.
func (d DB) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		d.User, d.Pass, d.Host, d.Port, d.Name)
}

// Bot stores Telegram bot settings.
type Bot struct {
	Token       string
	APIBase     string
	WebhookURL  string
	SendDelay   time.Duration
	WebhookWait time.Duration
	NotifyWait  time.Duration
}

// Dispatch stores dispatch loop settings.
type Dispatch struct {
	QueueSize int
}

// Kafka stores order-events consumer settings. All fields optional:
// when unset the consumer is not started.
type Kafka struct {
	Brokers []string
	GroupID string
	Topic   string
}

// Admin stores settings of the admin HTTP surface.
type Admin struct {
	Token string
}

// Sweep stores the expired-token sweep schedule.
type Sweep struct {
	CronSpec string
}

// Load reads configuration in order: .env (if present) → environment → flags.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: .env not loaded: %v", err)
	}

	cfg := &Config{
		Port:     envInt("PORT", defaultPort),
		DB:       loadDB(),
		Bot:      loadBot(),
		Dispatch: Dispatch{QueueSize: envInt("DISPATCH_QUEUE_SIZE", defaultDispatch.QueueSize)},
		Kafka:    loadKafka(),
		Admin:    Admin{Token: os.Getenv("ADMIN_TOKEN")},
		Sweep:    Sweep{CronSpec: envStr("TOKEN_SWEEP_CRON", defaultSweep.CronSpec)},
	}

	pflag.IntVarP(&cfg.Port, "port", "p", cfg.Port, "port to listen on")
	pflag.Parse()

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port: %d", cfg.Port)
	}
	if cfg.Bot.Token == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}
	if cfg.Dispatch.QueueSize <= 0 {
		return nil, fmt.Errorf("invalid dispatch queue size: %d", cfg.Dispatch.QueueSize)
	}
	return cfg, nil
}

func loadDB() DB {
	d := DefaultDB()
	d.Host = envStr("DB_HOST", d.Host)
	d.Port = envStr("DB_PORT", d.Port)
	d.User = envStr("DB_USER", d.User)
	d.Pass = envStr("DB_PASS", d.Pass)
	d.Name = envStr("DB_NAME", d.Name)
	return d
}

func loadBot() Bot {
	b := DefaultBot()
	b.Token = os.Getenv("BOT_TOKEN")
	b.APIBase = envStr("BOT_API_BASE", b.APIBase)
	b.WebhookURL = os.Getenv("WEBHOOK_URL")
	b.SendDelay = envDuration("BOT_SEND_DELAY", b.SendDelay)
	b.WebhookWait = envDuration("WEBHOOK_WAIT", b.WebhookWait)
	b.NotifyWait = envDuration("NOTIFY_WAIT", b.NotifyWait)
	return b
}

func loadKafka() Kafka {
	var brokers []string
	if v := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); v != "" {
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}
	return Kafka{
		Brokers: brokers,
		GroupID: os.Getenv("KAFKA_GROUP_ID"),
		Topic:   os.Getenv("KAFKA_ORDERS_TOPIC"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
