package infrastructure_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/savetree-1/docflow/internal/config"
	"github.com/savetree-1/docflow/internal/infrastructure"
	"github.com/savetree-1/docflow/pkg/database"
	"github.com/savetree-1/docflow/pkg/notify"
	"github.com/savetree-1/docflow/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

func validConfig() *config.Config {
	return &config.Config{
		Database: database.Config{
			Host:            "localhost",
			Port:            5432,
			Name:            "docflow",
			User:            "docflow",
			Password:        "docflow",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: "15m",
			ConnTimeout:     "5s",
		},
		Storage: storage.Config{
			ContainerName:    "document-text",
			ConnectionString: azuriteConnString,
		},
		LogLevel: "debug",
		Version:  "0.1.0",
	}
}

func TestNew(t *testing.T) {
	infra, err := infrastructure.New(validConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer infra.Database.Connection().Close()

	if infra.Lifecycle == nil || infra.Logger == nil || infra.Database == nil || infra.Storage == nil || infra.Notify == nil {
		t.Fatalf("missing system: %+v", infra)
	}
	if !infra.Logger.Enabled(context.Background(), -4) {
		t.Error("debug level not applied to logger")
	}
}

func TestNewRejectsStorage(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.ConnectionString = "garbage"

	if _, err := infrastructure.New(cfg); err == nil {
		t.Error("expected storage init error")
	}
}

func TestNewRejectsRedisURL(t *testing.T) {
	cfg := validConfig()
	cfg.Redis = notify.Config{URL: "redis://%zz"}

	if _, err := infrastructure.New(cfg); err == nil {
		t.Error("expected notify init error")
	}
}

func TestStartWithRedis(t *testing.T) {
	s := miniredis.RunT(t)

	cfg := validConfig()
	cfg.Redis = notify.Config{URL: "redis://" + s.Addr(), Prefix: "docflow"}

	infra, err := infrastructure.New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := infra.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := infra.Notify.Publish(context.Background(), "rules", "reload"); err != nil {
		t.Errorf("publish: %v", err)
	}

	if err := infra.Lifecycle.Shutdown(10 * time.Second); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}
