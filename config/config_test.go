package config

import (
	"os"
	"path/filepath"
	"testing"
)

// clearEnv unsets the override variables for the duration of the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvRootURL, EnvMetaFile, EnvPort} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	clearEnv(t)

	configFile := writeConfig(t, t.TempDir(), `
root_url: "/app"

meta:
  file: "dist/responsive-images.json"
  watch: true

assets:
  dir: "dist"
  verify: true

server:
  host: "0.0.0.0"
  port: 9090

viewport:
  screen_width: 1280
  pixel_ratio: 2
`)

	cfg, err := Load(configFile)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.RootURL != "/app/" {
		t.Errorf("Expected root_url '/app/', got '%s'", cfg.RootURL)
	}

	if cfg.Meta.File != "dist/responsive-images.json" {
		t.Errorf("Expected meta.file 'dist/responsive-images.json', got '%s'", cfg.Meta.File)
	}

	if !cfg.Meta.Watch {
		t.Error("Expected meta.watch to be true")
	}

	if cfg.Addr() != "0.0.0.0:9090" {
		t.Errorf("Expected addr '0.0.0.0:9090', got '%s'", cfg.Addr())
	}

	if cfg.Viewport.ScreenWidth != 1280 || cfg.Viewport.PixelRatio != 2 {
		t.Errorf("Unexpected viewport: %+v", cfg.Viewport)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	configFile := writeConfig(t, t.TempDir(), `
meta:
  file: "meta.json"
`)

	cfg, err := Load(configFile)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.RootURL != "/" {
		t.Errorf("Expected default root_url '/', got '%s'", cfg.RootURL)
	}
	if cfg.Addr() != "127.0.0.1:8080" {
		t.Errorf("Expected default addr, got '%s'", cfg.Addr())
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	clearEnv(t)

	configFile := writeConfig(t, t.TempDir(), `
root_url: "/"
meta:
  file: "meta.json"
`)

	t.Setenv(EnvRootURL, "https://cdn.example.com/")
	t.Setenv(EnvPort, "3000")

	cfg, err := Load(configFile)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.RootURL != "https://cdn.example.com/" {
		t.Errorf("Expected root_url from env, got '%s'", cfg.RootURL)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("Expected port 3000 from env, got %d", cfg.Server.Port)
	}

	t.Setenv(EnvPort, "eighty")
	if _, err := Load(configFile); err == nil {
		t.Error("Expected error for non-numeric port")
	}
}

func TestLoadConfigDotEnv(t *testing.T) {
	clearEnv(t)

	tmpDir := t.TempDir()
	configFile := writeConfig(t, tmpDir, `
root_url: "/"
`)
	if err := os.WriteFile(filepath.Join(tmpDir, ".env"), []byte("RESPIMG_META_FILE=from-dotenv.json\n"), 0644); err != nil {
		t.Fatalf("Failed to create .env: %v", err)
	}

	cfg, err := Load(configFile)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Meta.File != "from-dotenv.json" {
		t.Errorf("Expected meta.file from .env, got '%s'", cfg.Meta.File)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	clearEnv(t)

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing config file")
	}

	configFile := writeConfig(t, t.TempDir(), "meta: [")
	if _, err := Load(configFile); err == nil {
		t.Error("Expected error for malformed config file")
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name: "valid config",
			config: Config{
				RootURL: "/",
				Meta:    MetaConfig{File: "meta.json"},
			},
			wantErr: false,
		},
		{
			name: "absolute url root",
			config: Config{
				RootURL: "https://cdn.example.com/",
				Meta:    MetaConfig{File: "meta.json"},
			},
			wantErr: false,
		},
		{
			name: "missing meta file",
			config: Config{
				RootURL: "/",
			},
			wantErr: true,
		},
		{
			name: "relative root_url",
			config: Config{
				RootURL: "assets/",
				Meta:    MetaConfig{File: "meta.json"},
			},
			wantErr: true,
		},
		{
			name: "port out of range",
			config: Config{
				RootURL: "/",
				Meta:    MetaConfig{File: "meta.json"},
				Server:  ServerConfig{Port: 70000},
			},
			wantErr: true,
		},
		{
			name: "negative pixel ratio",
			config: Config{
				RootURL:  "/",
				Meta:     MetaConfig{File: "meta.json"},
				Viewport: ViewportConfig{PixelRatio: -1},
			},
			wantErr: true,
		},
		{
			name: "verify without dir",
			config: Config{
				RootURL: "/",
				Meta:    MetaConfig{File: "meta.json"},
				Assets:  AssetsConfig{Verify: true},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
