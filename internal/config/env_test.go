package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadCredentials(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		missing []string
	}{
		{
			name: "all set",
			env:  map[string]string{EnvPracticumToken: "p", EnvTelegramToken: "t", EnvTelegramChatID: "42"},
		},
		{
			name:    "telegram token missing",
			env:     map[string]string{EnvPracticumToken: "p", EnvTelegramChatID: "42"},
			missing: []string{EnvTelegramToken},
		},
		{
			name:    "blank values count as missing",
			env:     map[string]string{EnvPracticumToken: "  ", EnvTelegramToken: "t"},
			missing: []string{EnvPracticumToken, EnvTelegramChatID},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := LoadCredentials(envMap(tt.env))
			if len(tt.missing) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if c.ChatID != "42" || c.PracticumToken != "p" || c.TelegramToken != "t" {
					t.Fatalf("unexpected credentials %+v", c)
				}
				return
			}
			var me *MissingEnvError
			if !errors.As(err, &me) {
				t.Fatalf("expected MissingEnvError, got %v", err)
			}
			if !reflect.DeepEqual(me.Names, tt.missing) {
				t.Fatalf("missing = %v, want %v", me.Names, tt.missing)
			}
		})
	}
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, ".env")
	if err := os.WriteFile(p, []byte("HWB_TEST_A=from_file\nHWB_TEST_B=from_file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HWB_TEST_A", "from_env")
	t.Setenv("HWB_TEST_B", "")
	os.Unsetenv("HWB_TEST_B")

	if err := LoadDotEnv(p, filepath.Join(dir, "absent.env")); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("HWB_TEST_A"); got != "from_env" {
		t.Fatalf("HWB_TEST_A = %q, want from_env", got)
	}
	if got := os.Getenv("HWB_TEST_B"); got != "from_file" {
		t.Fatalf("HWB_TEST_B = %q, want from_file", got)
	}
}
