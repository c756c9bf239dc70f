package practicum

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"homeworkbot/internal/homework"
	logx "homeworkbot/pkg/logx"
)

func TestFetchSendsAuthAndWindow(t *testing.T) {
	var gotAuth, gotFrom string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotFrom = r.URL.Query().Get("from_date")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"homeworks":[],"current_date":1700000100}`))
	}))
	defer srv.Close()

	c, err := New(Config{Endpoint: srv.URL + "/api/user_api/homework_statuses/", Token: "secret"}, logx.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	body, err := c.Fetch(context.Background(), 1700000000)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if gotAuth != "OAuth secret" {
		t.Fatalf("unexpected Authorization header %q", gotAuth)
	}
	if gotFrom != "1700000000" {
		t.Fatalf("unexpected from_date %q", gotFrom)
	}
	resp, err := homework.Validate(body)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if resp.CurrentDate != 1700000100 {
		t.Fatalf("unexpected current_date %d", resp.CurrentDate)
	}
}

func TestFetchNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	endpoint := srv.URL + "/statuses/"
	c, err := New(Config{Endpoint: endpoint, Token: "t"}, logx.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = c.Fetch(context.Background(), 0)
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.Code != http.StatusServiceUnavailable {
		t.Fatalf("unexpected code %d", se.Code)
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("StatusError should match ErrUnavailable")
	}
	if !strings.Contains(err.Error(), endpoint) || !strings.Contains(err.Error(), "503") {
		t.Fatalf("error should name endpoint and code: %q", err.Error())
	}
}

func TestFetchTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	c, err := New(Config{Endpoint: endpoint, Token: "t"}, logx.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = c.Fetch(context.Background(), 0)
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("TransportError should match ErrUnavailable")
	}
}

func TestFetchInvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer srv.Close()

	c, _ := New(Config{Endpoint: srv.URL, Token: "t"}, logx.Nop())
	_, err := c.Fetch(context.Background(), 0)
	var se *homework.ShapeError
	if !errors.As(err, &se) {
		t.Fatalf("expected homework.ShapeError, got %v", err)
	}
}

func TestNewRequiresToken(t *testing.T) {
	if _, err := New(Config{}, logx.Nop()); err == nil {
		t.Fatalf("expected error for empty token")
	}
}
