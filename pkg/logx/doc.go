// Package logx is the structured logger used across the bot.
//
// It wraps zerolog and keeps three sinks behind one Logger value:
//   - Console output (short timestamp + file:line caller)
//   - Optional JSON file
//   - Optional Telegram operator chat (min level + token bucket, never blocks)
//
// Logger values are cheap to copy. A Logger obtained from Service follows
// Service.Apply, so a config reload changes levels and sinks without
// re-creating component loggers.
package logx
