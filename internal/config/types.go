package config

// Config is the optional file configuration. Every field has a default, so
// the bot runs with credentials from the environment alone.
type Config struct {
	Practicum PracticumConfig `json:"practicum"`
	Telegram  TelegramConfig  `json:"telegram"`
	Logging   LoggingConfig   `json:"logging"`
	Storage   *StorageConfig  `json:"storage,omitempty"`
	Journal   JournalConfig   `json:"journal"`
	Metrics   MetricsConfig   `json:"metrics"`
}

// PracticumConfig controls the review API poll.
//
// All durations are Go duration strings (e.g. "30s", "10m").
type PracticumConfig struct {
	Endpoint string `json:"endpoint"`
	// RetryPeriod is the fixed pause between two polls.
	RetryPeriod string `json:"retry_period"`
	// RequestTimeout bounds one API call. "0s" or empty means no explicit timeout.
	RequestTimeout string `json:"request_timeout,omitempty"`
}

type TelegramConfig struct {
	// APIURL overrides https://api.telegram.org (self-hosted Bot API server).
	APIURL      string `json:"api_url,omitempty"`
	SendTimeout string `json:"send_timeout,omitempty"`
	// OperatorChat receives mirrored log lines when logging.telegram.enabled is set.
	OperatorChat string `json:"operator_chat,omitempty"`
	ThreadID     int    `json:"thread_id,omitempty"`
}

type LoggingConfig struct {
	Level    string          `json:"level"`
	Console  bool            `json:"console"`
	File     LoggingFile     `json:"file"`
	Telegram LoggingTelegram `json:"telegram"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

type LoggingTelegram struct {
	Enabled    bool   `json:"enabled"`
	MinLevel   string `json:"min_level"`
	RatePerSec int    `json:"rate_per_sec"`
}

// StorageConfig controls the optional delivery journal backend.
//
// Example:
//
//	storage: { driver: sqlite, path: ./data/journal.db }
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // sqlite only
}

type JournalConfig struct {
	// PruneSchedule is a cron spec ("@daily", "0 4 * * *").
	PruneSchedule string `json:"prune_schedule"`
	// Retention is how long journal entries are kept.
	Retention string `json:"retention"`
}

type MetricsConfig struct {
	// Addr enables the Prometheus endpoint when non-empty (e.g. "127.0.0.1:9310").
	Addr string `json:"addr,omitempty"`
	// Token, when set, is required as "Authorization: Bearer <token>".
	Token string `json:"token,omitempty"`
	// Pprof also serves /debug/pprof/ on Addr.
	Pprof bool `json:"pprof,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Practicum: PracticumConfig{
			Endpoint:    "https://practicum.yandex.ru/api/user_api/homework_statuses/",
			RetryPeriod: "10m",
		},
		Logging: LoggingConfig{
			Level:   "debug",
			Console: true,
			File:    LoggingFile{Enabled: false, Path: "./bot.log"},
			Telegram: LoggingTelegram{
				MinLevel:   "error",
				RatePerSec: 1,
			},
		},
		Journal: JournalConfig{
			PruneSchedule: "@daily",
			Retention:     "720h",
		},
	}
}
