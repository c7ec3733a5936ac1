package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
jwt:
  secret: s3cret
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.Database.Driver != "postgres" {
		t.Errorf("Database.Driver = %q, want postgres", cfg.Database.Driver)
	}
	if cfg.JWT.Issuer != "chamapay" {
		t.Errorf("JWT.Issuer = %q, want chamapay", cfg.JWT.Issuer)
	}
	if cfg.Transfer.Currency != "KES" {
		t.Errorf("Transfer.Currency = %q, want KES", cfg.Transfer.Currency)
	}
	if cfg.Identifier.CountryCode != "254" || cfg.Identifier.TrunkPrefix != "0" {
		t.Errorf("Identifier = %+v", cfg.Identifier)
	}
	if !reflect.DeepEqual(cfg.Identifier.SubscriberPrefixes, []string{"7", "1"}) {
		t.Errorf("SubscriberPrefixes = %v", cfg.Identifier.SubscriberPrefixes)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Events.QueueSize != 1024 || cfg.Events.Workers != 1 || cfg.Events.PublishTimeout != 5*time.Second {
		t.Errorf("Events = %+v", cfg.Events)
	}
	if cfg.Idempotency.ClaimTTL != time.Minute {
		t.Errorf("Idempotency.ClaimTTL = %v", cfg.Idempotency.ClaimTTL)
	}
}

func TestParseEventsAndIdempotency(t *testing.T) {
	cfg, err := Parse([]byte(`
jwt:
  secret: s3cret
events:
  queue_size: 8
  workers: 0
  publish_timeout: 250ms
idempotency:
  claim_ttl: 30s
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Events.QueueSize != 8 || cfg.Events.PublishTimeout != 250*time.Millisecond {
		t.Errorf("Events = %+v", cfg.Events)
	}
	if cfg.Events.Workers != 1 {
		t.Errorf("Events.Workers = %d, want default 1", cfg.Events.Workers)
	}
	if cfg.Idempotency.ClaimTTL != 30*time.Second {
		t.Errorf("Idempotency.ClaimTTL = %v", cfg.Idempotency.ClaimTTL)
	}
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("PAYMENTS_TEST_SECRET", "from-env")

	cfg, err := Parse([]byte(`
server:
  port: "9090"
  shutdown_timeout: 3s
database:
  driver: memory
jwt:
  secret: ${PAYMENTS_TEST_SECRET}
  ttl: 1h
transfer:
  initial_balance: 100000
  max_amount: 15000000
  max_description_length: 0
identifier:
  subscriber_prefixes: ["7"]
kafka:
  brokers: ["localhost:9092"]
  topic: ""
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.Server.Port != "9090" || cfg.Server.ShutdownTimeout != 3*time.Second {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Database.Driver != "memory" {
		t.Errorf("Database.Driver = %q", cfg.Database.Driver)
	}
	if cfg.JWT.Secret != "from-env" || cfg.JWT.TTL != time.Hour {
		t.Errorf("JWT = %+v", cfg.JWT)
	}
	if cfg.Transfer.InitialBalance != 100000 || cfg.Transfer.MaxAmount != 15000000 {
		t.Errorf("Transfer = %+v", cfg.Transfer)
	}
	if cfg.Transfer.MaxDescriptionLength != 200 {
		t.Errorf("MaxDescriptionLength = %d, want default 200", cfg.Transfer.MaxDescriptionLength)
	}
	if !reflect.DeepEqual(cfg.Identifier.SubscriberPrefixes, []string{"7"}) {
		t.Errorf("SubscriberPrefixes = %v", cfg.Identifier.SubscriberPrefixes)
	}
	if cfg.Kafka.Topic != "payments.transfer_completed" {
		t.Errorf("Kafka.Topic = %q", cfg.Kafka.Topic)
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{name: "missing secret", yaml: "server:\n  port: \"8080\"\n", want: "jwt.secret"},
		{name: "unknown driver", yaml: "jwt:\n  secret: x\ndatabase:\n  driver: sqlite\n", want: "database.driver"},
		{name: "negative opening balance", yaml: "jwt:\n  secret: x\ntransfer:\n  initial_balance: -1\n", want: "initial_balance"},
		{name: "negative max amount", yaml: "jwt:\n  secret: x\ntransfer:\n  max_amount: -1\n", want: "max_amount"},
		{name: "malformed", yaml: "jwt: [", want: "failed to parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("jwt:\n  secret: file-secret\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.JWT.Secret != "file-secret" {
		t.Errorf("JWT.Secret = %q", cfg.JWT.Secret)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
