package app

import (
	"fmt"
	"strings"
	"time"

	"homeworkbot/internal/config"
	kit "homeworkbot/internal/transport"
	logx "homeworkbot/pkg/logx"
)

const defaultRetryPeriod = 10 * time.Minute

// StartupFailure is the critical log line written when the bot cannot start.
func StartupFailure(err error) string {
	return fmt.Sprintf("Сбой запуска бота: %v\nПрограмма принудительно остановлена.", err)
}

// mapLogConfig builds the logx config. Log lines never go to the homework
// chat: the Telegram sink stays off without an operator chat, or when the
// operator chat is the homework chat.
func mapLogConfig(cfg *config.Config, creds config.Credentials) logx.Config {
	target := kit.ChatTarget{ChatID: strings.TrimSpace(cfg.Telegram.OperatorChat), ThreadID: cfg.Telegram.ThreadID}
	sink := cfg.Logging.Telegram.Enabled && target.ChatID != "" && target.ChatID != creds.ChatID
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
		Telegram: logx.TelegramConfig{
			Enabled:    sink,
			Target:     target,
			MinLevel:   cfg.Logging.Telegram.MinLevel,
			RatePerSec: cfg.Logging.Telegram.RatePerSec,
		},
	}
}

type durations struct {
	retry   time.Duration
	request time.Duration
	send    time.Duration
	retain  time.Duration
}

func parseDurations(cfg *config.Config) (durations, error) {
	var (
		d   durations
		err error
	)
	if d.retry, err = config.ParseDurationOrDefault("practicum.retry_period", cfg.Practicum.RetryPeriod, defaultRetryPeriod); err != nil {
		return d, err
	}
	if d.request, err = config.ParseDurationField("practicum.request_timeout", cfg.Practicum.RequestTimeout); err != nil {
		return d, err
	}
	if d.send, err = config.ParseDurationField("telegram.send_timeout", cfg.Telegram.SendTimeout); err != nil {
		return d, err
	}
	if d.retain, err = config.ParseDurationField("journal.retention", cfg.Journal.Retention); err != nil {
		return d, err
	}
	return d, nil
}
