package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no stray .env
	for _, k := range []string{"HTTP_PORT", "DISPLAY_TZ", "TRAILING_CAP", "LEADING_CAP", "KAFKA_BROKERS", "REDIS_ADDR", "QUERY_TIMEOUT", "EXPOSE_ERRORS"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPPort != "8080" {
		t.Errorf("port: got %q", cfg.HTTPPort)
	}
	if cfg.Location.String() != "Asia/Kolkata" {
		t.Errorf("location: got %v", cfg.Location)
	}
	if cfg.TrailingCap != 30 || cfg.LeadingCap != 60 {
		t.Errorf("caps: got %d/%d", cfg.TrailingCap, cfg.LeadingCap)
	}
	if cfg.QueryTimeout != 10*time.Second {
		t.Errorf("query timeout: got %v", cfg.QueryTimeout)
	}
	if cfg.CacheEnabled() || cfg.IngestEnabled() {
		t.Error("cache and ingestion should be off without addresses")
	}
	if !cfg.ExposeErrors {
		t.Error("errors are exposed by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DISPLAY_TZ", "Europe/Berlin")
	t.Setenv("TRAILING_CAP", "5")
	t.Setenv("LEADING_CAP", "7")
	t.Setenv("QUERY_TIMEOUT", "3")
	t.Setenv("CACHE_TTL", "250ms")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,,")
	t.Setenv("EXPOSE_ERRORS", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Location.String() != "Europe/Berlin" {
		t.Errorf("location: got %v", cfg.Location)
	}
	if cfg.TrailingCap != 5 || cfg.LeadingCap != 7 {
		t.Errorf("caps: got %d/%d", cfg.TrailingCap, cfg.LeadingCap)
	}
	if cfg.QueryTimeout != 3*time.Second || cfg.CacheTTL != 250*time.Millisecond {
		t.Errorf("durations: got %v and %v", cfg.QueryTimeout, cfg.CacheTTL)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Errorf("brokers: got %q", cfg.KafkaBrokers)
	}
	if cfg.ExposeErrors {
		t.Error("EXPOSE_ERRORS=false ignored")
	}
}

func TestLoadRejectsBadZone(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DISPLAY_TZ", "Mars/Olympus_Mons")
	if _, err := Load(); err == nil {
		t.Fatal("expected an error for an unknown zone")
	}
}

func TestLoadPool(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, k := range []string{"DB_MAX_CONNS", "DB_MIN_CONNS", "DB_MAX_CONN_IDLE", "DB_MAX_CONN_LIFETIME", "DB_CONNECT_TIMEOUT"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := PoolConfig{MaxConns: 10, MinConns: 1, MaxConnIdleTime: 5 * time.Minute, MaxConnLifetime: time.Hour, ConnectTimeout: 5 * time.Second}
	if cfg.DBPool != want {
		t.Errorf("pool defaults: got %+v", cfg.DBPool)
	}

	t.Setenv("DB_MAX_CONNS", "40")
	t.Setenv("DB_MIN_CONNS", "4")
	t.Setenv("DB_MAX_CONN_IDLE", "90s")
	if cfg, err = Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPool.MaxConns != 40 || cfg.DBPool.MinConns != 4 || cfg.DBPool.MaxConnIdleTime != 90*time.Second {
		t.Errorf("pool overrides: got %+v", cfg.DBPool)
	}

	t.Setenv("DB_MIN_CONNS", "41")
	if _, err := Load(); err == nil {
		t.Error("expected an error when DB_MIN_CONNS exceeds DB_MAX_CONNS")
	}
	t.Setenv("DB_MIN_CONNS", "")
	t.Setenv("DB_MAX_CONNS", "0")
	if _, err := Load(); err == nil {
		t.Error("expected an error for DB_MAX_CONNS=0")
	}
}
