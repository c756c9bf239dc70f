package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables.
const (
	EnvPracticumToken = "PRACTICUM_TOKEN"
	EnvTelegramToken  = "TELEGRAM_TOKEN"
	EnvTelegramChatID = "TELEGRAM_CHAT_ID"

	EnvEndpoint    = "HOMEWORK_ENDPOINT"
	EnvRetryPeriod = "HOMEWORK_RETRY_PERIOD"
	EnvLogLevel    = "LOG_LEVEL"
)

// Credentials are the three secrets the bot cannot start without.
type Credentials struct {
	PracticumToken string
	TelegramToken  string
	ChatID         string
}

// MissingEnvError lists every required variable that is unset or blank.
type MissingEnvError struct {
	Names []string
}

func (e *MissingEnvError) Error() string {
	return "missing required environment variables: " + strings.Join(e.Names, ", ")
}

// LoadDotEnv loads KEY=VALUE files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
	}
	return nil
}

// LoadCredentials reads the credentials through getenv (os.Getenv when nil).
func LoadCredentials(getenv func(string) string) (Credentials, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	c := Credentials{
		PracticumToken: strings.TrimSpace(getenv(EnvPracticumToken)),
		TelegramToken:  strings.TrimSpace(getenv(EnvTelegramToken)),
		ChatID:         strings.TrimSpace(getenv(EnvTelegramChatID)),
	}
	var missing []string
	for _, kv := range []struct{ name, val string }{
		{EnvPracticumToken, c.PracticumToken},
		{EnvTelegramToken, c.TelegramToken},
		{EnvTelegramChatID, c.ChatID},
	} {
		if kv.val == "" {
			missing = append(missing, kv.name)
		}
	}
	if len(missing) > 0 {
		return Credentials{}, &MissingEnvError{Names: missing}
	}
	return c, nil
}

// applyEnv overrides selected file values from the environment.
func applyEnv(cfg *Config, getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := strings.TrimSpace(getenv(EnvEndpoint)); v != "" {
		cfg.Practicum.Endpoint = v
	}
	if v := strings.TrimSpace(getenv(EnvRetryPeriod)); v != "" {
		cfg.Practicum.RetryPeriod = v
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = v
	}
}
