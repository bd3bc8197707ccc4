package config

import (
	"os"
	"testing"
)

func TestLoad(t *testing.T) {
	cleanup := setEnvs(t, map[string]string{
		"DATABASE_URL":        "postgres://localhost/test",
		"MQTT_BROKER_URL":     "tcp://localhost:1883",
		"SERVICE_TENANT_UUID": "11111111-1111-1111-1111-111111111111",
	})
	defer cleanup()

	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load(Overrides{EnvFile: "nonexistent.env"})
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.HTTPAddr != ":9298" {
			t.Errorf("HTTPAddr = %q, want :9298", cfg.HTTPAddr)
		}
		if cfg.LogLevel != "info" {
			t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
		}
		if cfg.ConfdURL != "http://localhost:9486" {
			t.Errorf("ConfdURL = %q, want http://localhost:9486", cfg.ConfdURL)
		}
		if cfg.MQTTClientID != "call-logd" {
			t.Errorf("MQTTClientID = %q, want call-logd", cfg.MQTTClientID)
		}
	})

	t.Run("cli_overrides_take_priority", func(t *testing.T) {
		cfg, err := Load(Overrides{
			EnvFile:       "nonexistent.env",
			HTTPAddr:      ":9090",
			LogLevel:      "debug",
			DatabaseURL:   "postgres://override/db",
			MQTTBrokerURL: "tcp://override:1883",
			ConfdURL:      "http://confd.override",
		})
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.HTTPAddr != ":9090" {
			t.Errorf("HTTPAddr = %q, want :9090", cfg.HTTPAddr)
		}
		if cfg.DatabaseURL != "postgres://override/db" {
			t.Errorf("DatabaseURL = %q, want override", cfg.DatabaseURL)
		}
		if cfg.ConfdURL != "http://confd.override" {
			t.Errorf("ConfdURL = %q, want override", cfg.ConfdURL)
		}
	})

	t.Run("env_vars_read", func(t *testing.T) {
		cfg, err := Load(Overrides{EnvFile: "nonexistent.env"})
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.DatabaseURL != "postgres://localhost/test" {
			t.Errorf("DatabaseURL = %q, want postgres://localhost/test", cfg.DatabaseURL)
		}
		if cfg.ServiceTenantUUID != "11111111-1111-1111-1111-111111111111" {
			t.Errorf("ServiceTenantUUID = %q, want the seeded uuid", cfg.ServiceTenantUUID)
		}
	})
}

func TestLoadMissingRequired(t *testing.T) {
	cleanup := setEnvs(t, map[string]string{
		"DATABASE_URL":        "postgres://localhost/test",
		"SERVICE_TENANT_UUID": "11111111-1111-1111-1111-111111111111",
	})
	defer cleanup()
	os.Unsetenv("MQTT_BROKER_URL")
	os.Unsetenv("WATCH_DIR")

	_, err := Load(Overrides{EnvFile: "nonexistent.env"})
	if err == nil {
		t.Error("expected error when neither MQTT_BROKER_URL nor WATCH_DIR is set")
	}
}

func TestLoadMissingDatabaseURL(t *testing.T) {
	cleanup := setEnvs(t, map[string]string{
		"MQTT_BROKER_URL":     "tcp://localhost:1883",
		"SERVICE_TENANT_UUID": "11111111-1111-1111-1111-111111111111",
	})
	defer cleanup()
	os.Unsetenv("DATABASE_URL")

	_, err := Load(Overrides{EnvFile: "nonexistent.env"})
	if err == nil {
		t.Error("expected error when DATABASE_URL is missing")
	}
}

func setEnvs(t *testing.T, envs map[string]string) func() {
	t.Helper()
	originals := make(map[string]string)
	unset := make([]string, 0)

	for k, v := range envs {
		if orig, ok := os.LookupEnv(k); ok {
			originals[k] = orig
		} else {
			unset = append(unset, k)
		}
		os.Setenv(k, v)
	}

	return func() {
		for k, v := range originals {
			os.Setenv(k, v)
		}
		for _, k := range unset {
			os.Unsetenv(k)
		}
	}
}
