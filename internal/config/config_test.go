package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	t.Setenv("PAWCARE_CATALOG_URL", "http://catalog.local")

	yamlContent := `
app:
  name: "pawcare"
catalog:
  base_url: "${PAWCARE_CATALOG_URL}"
api:
  enabled: true
  auth:
    api_keys:
      - key: "k1"
        extra: "e1"
        name: "web"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Catalog.BaseURL != "http://catalog.local" {
		t.Errorf("expected expanded base_url, got %s", cfg.Catalog.BaseURL)
	}
	if cfg.Drafts.Store != "memory" {
		t.Errorf("expected memory store without redis, got %s", cfg.Drafts.Store)
	}
	if cfg.Drafts.TTLDuration() != 24*time.Hour {
		t.Errorf("expected 24h draft ttl, got %s", cfg.Drafts.TTLDuration())
	}
	if !cfg.API.HTTP.Enabled || cfg.API.HTTP.Port != 8080 {
		t.Errorf("expected http enabled on 8080, got %v %d", cfg.API.HTTP.Enabled, cfg.API.HTTP.Port)
	}
	if cfg.Summary.CurrencySymbol != "$" {
		t.Errorf("expected default currency symbol, got %q", cfg.Summary.CurrencySymbol)
	}
	if cfg.Catalog.Timeout() != 10*time.Second {
		t.Errorf("expected 10s catalog timeout, got %s", cfg.Catalog.Timeout())
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestApplyDefaultsPrefersRedis(t *testing.T) {
	cfg := Config{Redis: RedisConfig{Address: "localhost:6379"}}
	cfg.applyDefaults()
	if cfg.Drafts.Store != "redis" {
		t.Errorf("expected redis store, got %s", cfg.Drafts.Store)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid memory config",
			cfg: Config{
				Catalog: CatalogConfig{BaseURL: "http://catalog"},
				Drafts:  DraftsConfig{Store: "memory"},
			},
			wantErr: false,
		},
		{
			name: "missing catalog url",
			cfg: Config{
				Drafts: DraftsConfig{Store: "memory"},
			},
			wantErr: true,
		},
		{
			name: "redis store without address",
			cfg: Config{
				Catalog: CatalogConfig{BaseURL: "http://catalog"},
				Drafts:  DraftsConfig{Store: "redis"},
			},
			wantErr: true,
		},
		{
			name: "unknown store",
			cfg: Config{
				Catalog: CatalogConfig{BaseURL: "http://catalog"},
				Drafts:  DraftsConfig{Store: "etcd"},
			},
			wantErr: true,
		},
		{
			name: "duplicate api key",
			cfg: Config{
				Catalog: CatalogConfig{BaseURL: "http://catalog"},
				Drafts:  DraftsConfig{Store: "memory"},
				API: APIConfig{Auth: APIAuthConfig{Enabled: true, APIKeys: []APIClientKey{
					{Key: "k", Name: "a"},
					{Key: "k", Name: "b"},
				}}},
			},
			wantErr: true,
		},
		{
			name: "keys unchecked while auth is off",
			cfg: Config{
				Catalog: CatalogConfig{BaseURL: "http://catalog"},
				Drafts:  DraftsConfig{Store: "memory"},
				API:     APIConfig{Auth: APIAuthConfig{APIKeys: []APIClientKey{{Name: "unset"}}}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
