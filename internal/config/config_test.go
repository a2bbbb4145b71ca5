package config

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr bool
		check   func(*Config) bool
	}{
		{
			name: "loads explicit values",
			envVars: map[string]string{
				"PORT":                  "8080",
				"ENV":                   "production",
				"DATABASE_URL":          "postgres://localhost/test",
				"PROVIDER_TYPE":         "arcface",
				"INSIGHTFACE_TIMEOUT":   "5s",
				"SAME_PERSON_THRESHOLD": "70",
			},
			wantErr: false,
			check: func(c *Config) bool {
				return c.Port == 8080 &&
					c.Environment == "production" &&
					c.DatabaseURL == "postgres://localhost/test" &&
					c.ProviderType == "arcface" &&
					c.InsightFaceTimeout == 5*time.Second &&
					c.SamePersonThreshold == 70
			},
		},
		{
			name:    "uses defaults when optional vars missing",
			envVars: map[string]string{},
			wantErr: false,
			check: func(c *Config) bool {
				return c.Port == 8000 &&
					c.Environment == "development" &&
					c.ProviderType == "insightface" &&
					c.InsightFaceTimeout == 30*time.Second &&
					c.SamePersonThreshold == 65 &&
					c.RateLimitMax == 0 &&
					!c.HasDatabase()
			},
		},
		{
			name: "fails when threshold out of range",
			envVars: map[string]string{
				"SAME_PERSON_THRESHOLD": "120",
			},
			wantErr: true,
		},
		{
			name: "fails when port is not a number",
			envVars: map[string]string{
				"PORT": "eighty",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()

			for k, v := range tt.envVars {
				os.Setenv(k, v)
			}

			cfg, err := Load()

			if tt.wantErr {
				if err == nil {
					t.Errorf("Load() expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Errorf("Load() unexpected error: %v", err)
				return
			}

			if tt.check != nil && !tt.check(cfg) {
				t.Errorf("Load() config check failed, got: %+v", cfg)
			}
		})
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want bool
	}{
		{"development", "development", true},
		{"production", "production", false},
		{"staging", "staging", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{Environment: tt.env}
			if got := c.IsDevelopment(); got != tt.want {
				t.Errorf("IsDevelopment() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfig_IsProduction(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want bool
	}{
		{"production", "production", true},
		{"development", "development", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{Environment: tt.env}
			if got := c.IsProduction(); got != tt.want {
				t.Errorf("IsProduction() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewLoggerWithWriter(t *testing.T) {
	t.Run("production writes json at info", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLoggerWithWriter(&buf, "production")

		logger.Debug("hidden")
		logger.Info("visible", "pairs", 3)

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) != 1 {
			t.Fatalf("expected 1 log line, got %d: %q", len(lines), buf.String())
		}

		var entry map[string]any
		if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
			t.Fatalf("log line is not json: %v", err)
		}
		if entry["msg"] != "visible" || entry["service"] != "face_verification" {
			t.Errorf("unexpected entry: %v", entry)
		}
	})

	t.Run("development writes text at debug", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLoggerWithWriter(&buf, "development")

		logger.Debug("details")

		if !strings.Contains(buf.String(), "msg=details") {
			t.Errorf("expected text debug line, got %q", buf.String())
		}
	})
}
