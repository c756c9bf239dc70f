package failure

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"homeworkbot/internal/config"
	"homeworkbot/internal/homework"
	"homeworkbot/internal/notifier"
	"homeworkbot/internal/practicum"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, Unknown},
		{"missing env", &config.MissingEnvError{Names: []string{"TELEGRAM_TOKEN"}}, Configuration},
		{"transport", &practicum.TransportError{Endpoint: "http://x", Err: errors.New("refused")}, Transport},
		{"status", &practicum.StatusError{Endpoint: "http://x", Code: 503}, APIUnavailable},
		{"wrapped status", fmt.Errorf("poll: %w", &practicum.StatusError{Code: 500}), APIUnavailable},
		{"shape", &homework.ShapeError{}, Schema},
		{"missing field", &homework.MissingFieldError{Field: "current_date"}, Schema},
		{"type mismatch", &homework.TypeMismatchError{Field: "homeworks"}, Schema},
		{"missing name", &homework.MissingNameError{}, Schema},
		{"missing status", &homework.MissingStatusError{Name: "hw"}, Schema},
		{"unknown status", &homework.UnknownStatusError{Status: "lost"}, Schema},
		{"send", &notifier.SendError{Err: context.DeadlineExceeded}, Notification},
		{"deadline", context.DeadlineExceeded, Transport},
		{"other", errors.New("boom"), Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Fatalf("Classify = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOnlyConfigurationIsFatal(t *testing.T) {
	for _, k := range Kinds() {
		if k.Fatal() != (k == Configuration) {
			t.Fatalf("%v.Fatal() = %v", k, k.Fatal())
		}
	}
}
