package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabasePath  string
	Port          string
	ScrapeTimeout time.Duration
	SweepSchedule string // cron spec for the daily refresh + sweep
	Timezone      string

	// SMTP relay; alerts are log-only when the host is empty
	SMTPHost     string
	SMTPPort     int
	SMTPFrom     string
	SMTPPassword string
}

func LoadConfig() *Config {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	return &Config{
		DatabasePath:  getEnv("DATABASE_PATH", "price_tracker.db"),
		Port:          getEnv("PORT", "8080"),
		ScrapeTimeout: getEnvDuration("SCRAPE_TIMEOUT", 30*time.Second),
		SweepSchedule: getEnv("SWEEP_SCHEDULE", "0 8 * * *"),
		Timezone:      getEnv("TIMEZONE", "Asia/Kolkata"),
		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPPort:      getEnvInt("SMTP_PORT", 587),
		SMTPFrom:      getEnv("SMTP_FROM", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
	}
}

// Mailer builds the configured mail collaborator.
func (c *Config) Mailer() MailSender {
	if c.SMTPHost == "" {
		log.Println("SMTP not configured, alerts will be logged only")
		return LogMailer{}
	}
	return NewSMTPMailer(c.SMTPHost, c.SMTPPort, c.SMTPFrom, c.SMTPPassword)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
