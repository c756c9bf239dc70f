// Package homework validates review API payloads and turns homework records
// into chat messages.
//
// Validate checks the envelope ({"homeworks": [...], "current_date": N}) and
// only the first element of homeworks. Records after the first are checked by
// Translate when they are reached, so a malformed later record fails the batch
// at that point rather than up front.
package homework
