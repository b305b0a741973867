package api_test

import (
	"testing"
	"time"

	"github.com/savetree-1/docflow/internal/api"
	"github.com/savetree-1/docflow/internal/config"
	"github.com/savetree-1/docflow/internal/infrastructure"
	"github.com/savetree-1/docflow/internal/providers"
	"github.com/savetree-1/docflow/internal/workflow"
	"github.com/savetree-1/docflow/pkg/database"
	"github.com/savetree-1/docflow/pkg/pagination"
	"github.com/savetree-1/docflow/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

func validConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{
		Database: database.Config{
			Host:            "localhost",
			Port:            5432,
			Name:            "docflow",
			User:            "docflow",
			SSLMode:         "disable",
			MaxOpenConns:    5,
			MaxIdleConns:    1,
			ConnMaxLifetime: "15m",
			ConnTimeout:     "5s",
		},
		Storage: storage.Config{
			ContainerName:    "document-text",
			ConnectionString: azuriteConnString,
		},
		API: config.APIConfig{
			BasePath:    "/api",
			MaxTextSize: "1MB",
			Pagination: pagination.Config{
				DefaultPageSize: 20,
				MaxPageSize:     100,
			},
		},
		Providers: config.ProvidersConfig{
			Primary: providers.Config{
				Name:              "local",
				Kind:              providers.KindOllama,
				BaseURL:           "http://localhost:11434/v1",
				Model:             "llama3.1",
				Timeout:           "20s",
				MaxInputChars:     8000,
				RequestsPerMinute: 60,
				Burst:             1,
				Retries:           2,
			},
		},
		Classification: workflow.Config{
			Budget:           "30s",
			TextWindow:       8000,
			SummaryItems:     3,
			SummaryChars:     200,
			HighConfidence:   0.75,
			SecondaryCeiling: 0.65,
			BatchConcurrency: 2,
		},
		LogLevel: "error",
	}
	return cfg
}

func setupInfra(t *testing.T, cfg *config.Config) *infrastructure.Infrastructure {
	t.Helper()
	infra, err := infrastructure.New(cfg)
	if err != nil {
		t.Fatalf("infrastructure.New() error = %v", err)
	}
	t.Cleanup(func() { infra.Lifecycle.Shutdown(time.Second) })
	return infra
}

func TestNewRuntime(t *testing.T) {
	cfg := validConfig(t)
	infra := setupInfra(t, cfg)

	runtime, err := api.NewRuntime(cfg, infra)
	if err != nil {
		t.Fatalf("NewRuntime() error = %v", err)
	}

	if runtime.MaxTextSize != 1024*1024 {
		t.Errorf("MaxTextSize = %d", runtime.MaxTextSize)
	}
	if runtime.HardRules == nil || runtime.HardRules.Len() == 0 {
		t.Error("default hard rules not loaded")
	}
	if runtime.Primary == nil {
		t.Fatal("primary backend missing")
	}
	if runtime.Primary.Provider.Name() != "local" || runtime.Primary.Retries != 2 {
		t.Errorf("primary = %s retries %d", runtime.Primary.Provider.Name(), runtime.Primary.Retries)
	}
	if runtime.Secondary != nil {
		t.Error("secondary backend built without a kind")
	}
	if runtime.Auth == nil {
		t.Error("authenticator missing")
	}
	if runtime.Notify == nil {
		t.Error("notify system missing")
	}
}

func TestNewRuntimeBadHardRules(t *testing.T) {
	cfg := validConfig(t)
	cfg.HardRulesPath = t.TempDir() + "/missing.toml"
	infra := setupInfra(t, cfg)

	if _, err := api.NewRuntime(cfg, infra); err == nil {
		t.Fatal("expected error for missing hard rules file")
	}
}

func TestNewBackend(t *testing.T) {
	infra := setupInfra(t, validConfig(t))

	t.Run("disabled", func(t *testing.T) {
		b, err := api.NewBackend(&providers.Config{}, infra.Logger)
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		if b != nil {
			t.Error("backend built for disabled provider")
		}
	})

	t.Run("timeout carried", func(t *testing.T) {
		cfg := validConfig(t).Providers.Primary
		cfg.Timeout = "7s"

		b, err := api.NewBackend(&cfg, infra.Logger)
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		if b.Timeout != 7*time.Second {
			t.Errorf("Timeout = %v", b.Timeout)
		}
	})

	t.Run("unsupported kind", func(t *testing.T) {
		cfg := validConfig(t).Providers.Primary
		cfg.Kind = "bedrock"

		if _, err := api.NewBackend(&cfg, infra.Logger); err == nil {
			t.Error("expected error for unsupported kind")
		}
	})
}
