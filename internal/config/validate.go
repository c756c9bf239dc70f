package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

var cronParser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

var storageDrivers = map[string]bool{"": true, "none": true, "file": true, "sqlite": true, "sqlite3": true}

// Validate checks values that would otherwise only fail deep inside a component.
func (c *Config) Validate() error {
	if _, err := url.ParseRequestURI(strings.TrimSpace(c.Practicum.Endpoint)); err != nil {
		return fmt.Errorf("practicum.endpoint: %w", err)
	}
	if d, err := ParseDurationField("practicum.retry_period", c.Practicum.RetryPeriod); err != nil {
		return err
	} else if d == 0 {
		return fmt.Errorf("practicum.retry_period must be > 0")
	}
	if _, err := ParseDurationField("practicum.request_timeout", c.Practicum.RequestTimeout); err != nil {
		return err
	}
	if _, err := ParseDurationField("telegram.send_timeout", c.Telegram.SendTimeout); err != nil {
		return err
	}
	if c.Logging.Telegram.Enabled && strings.TrimSpace(c.Telegram.OperatorChat) == "" {
		return fmt.Errorf("logging.telegram.enabled requires telegram.operator_chat")
	}
	if c.Storage != nil {
		if !storageDrivers[strings.ToLower(strings.TrimSpace(c.Storage.Driver))] {
			return fmt.Errorf("storage.driver: unknown driver %q", c.Storage.Driver)
		}
		if _, err := ParseDurationField("storage.busy_timeout", c.Storage.BusyTimeout); err != nil {
			return err
		}
	}
	if _, err := ParseDurationField("journal.retention", c.Journal.Retention); err != nil {
		return err
	}
	if s := strings.TrimSpace(c.Journal.PruneSchedule); s != "" {
		if _, err := cronParser.Parse(s); err != nil {
			return fmt.Errorf("journal.prune_schedule: %w", err)
		}
	}
	return nil
}
