// Package failure maps errors raised during a poll iteration onto a closed set
// of kinds used for log messages, metric labels and the fatal/continue decision.
package failure

import (
	"context"
	"errors"

	"homeworkbot/internal/config"
	"homeworkbot/internal/homework"
	"homeworkbot/internal/notifier"
	"homeworkbot/internal/practicum"
)

type Kind int

const (
	Unknown Kind = iota
	Configuration
	Transport
	APIUnavailable
	Schema
	Notification
)

func (k Kind) String() string {
	switch k {
	case Configuration:
		return "configuration"
	case Transport:
		return "transport"
	case APIUnavailable:
		return "api_unavailable"
	case Schema:
		return "schema"
	case Notification:
		return "notification"
	default:
		return "unknown"
	}
}

// Fatal reports whether the process must stop instead of retrying.
func (k Kind) Fatal() bool { return k == Configuration }

// Kinds lists every kind, for pre-registering metric label values.
func Kinds() []Kind {
	return []Kind{Unknown, Configuration, Transport, APIUnavailable, Schema, Notification}
}

// Classify returns the kind of err. nil classifies as Unknown.
func Classify(err error) Kind {
	if err == nil {
		return Unknown
	}

	var (
		missingEnv *config.MissingEnvError
		transport  *practicum.TransportError
		status     *practicum.StatusError
		send       *notifier.SendError
	)
	switch {
	case errors.As(err, &missingEnv):
		return Configuration
	case errors.As(err, &send):
		// Checked before the transport error: a send can fail with a
		// context or network error too.
		return Notification
	case errors.As(err, &status):
		return APIUnavailable
	case errors.As(err, &transport):
		return Transport
	case isSchema(err):
		return Schema
	case errors.Is(err, context.DeadlineExceeded):
		return Transport
	default:
		return Unknown
	}
}

func isSchema(err error) bool {
	var (
		shape    *homework.ShapeError
		missing  *homework.MissingFieldError
		mismatch *homework.TypeMismatchError
		noName   *homework.MissingNameError
		noStatus *homework.MissingStatusError
		unknown  *homework.UnknownStatusError
	)
	return errors.As(err, &shape) ||
		errors.As(err, &missing) ||
		errors.As(err, &mismatch) ||
		errors.As(err, &noName) ||
		errors.As(err, &noStatus) ||
		errors.As(err, &unknown)
}
