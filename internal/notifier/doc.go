// Package notifier delivers messages to the homework chat.
//
// Delivery is synchronous: one call, one send attempt, no queue and no retry.
// The caller decides what a failed send means.
//
// # Error notifications
//
// NotifyError remembers the text of the last error it delivered and skips an
// identical follow-up, so a failure that repeats on every poll interval
// reaches the chat once. ResetError clears the memory after a healthy poll,
// which lets the same failure be reported again if it comes back later.
package notifier
