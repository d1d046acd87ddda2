package config

import (
	"strings"
	"testing"

	"github.com/samirrijal/gridgeo/internal/pkg/geospatial"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("gridgeo-test")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Telemetry.ServiceName != "gridgeo-test" {
		t.Errorf("expected service name gridgeo-test, got %s", cfg.Telemetry.ServiceName)
	}
	if cfg.Temporal.TaskQueue != "position-import" {
		t.Errorf("unexpected task queue %q", cfg.Temporal.TaskQueue)
	}
	if len(cfg.Import.SupportedCRS) != 1 || cfg.Import.SupportedCRS[0].URN != geospatial.WGS84URN {
		t.Fatalf("expected WGS84 default, got %+v", cfg.Import.SupportedCRS)
	}
	if !cfg.CRSCatalog().IsSupportedCRS(geospatial.WGS84Name, geospatial.WGS84URN) {
		t.Error("default catalog must accept WGS84")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("GRIDGEO_DATABASE_HOST", "db.internal")
	t.Setenv("GRIDGEO_SERVER_PORT", "9090")

	cfg, err := Load("gridgeo-test")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("expected db.internal, got %s", cfg.Database.Host)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected 9090, got %d", cfg.Server.Port)
	}
	if !strings.Contains(cfg.Database.DSN(), "@db.internal:5432/gridgeo") {
		t.Errorf("unexpected DSN %s", cfg.Database.DSN())
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{Port: 0, ReadTimeout: 1, WriteTimeout: 1},
		Database: DatabaseConfig{Host: "h", Port: 5432, User: "u", DBName: "d"},
		NATS:     NATSConfig{URL: "nats://x"},
		Valkey:   ValkeyConfig{Addr: "x"},
		Temporal: TemporalConfig{TaskQueue: "q"},
		Import:   ImportConfig{SupportedCRS: []geospatial.CRS{{Name: "WGS84"}}},
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{"server.port", "import.supported_crs[0]"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}
}
