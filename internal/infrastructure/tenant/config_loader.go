// Package tenant provides multi-tenant registry, per-tenant database pooling,
// and the request-scoped tenant context the rest of the system works through.
package tenant

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/CoursePulse/coursepulse-go/pkg/config"
)

// Config is the per-tenant configuration loaded from the registry plus the
// tenant's own config file. Exactly one of SQLitePath or the Turso pair is
// used; Turso wins when both are set.
type Config struct {
	TenantID          string `koanf:"tenantId"`
	Status            string `koanf:"status"`
	Name              string `koanf:"name"`
	SQLitePath        string `koanf:"sqlitePath"`
	TursoDatabaseURL  string `koanf:"tursoDatabaseUrl"`
	TursoAuthToken    string `koanf:"tursoAuthToken"`
	JWTSecret         string `koanf:"jwtSecret"`
	AdminPasswordHash string `koanf:"adminPasswordHash"`
}

// Registry is the top-level tenant registry file shape
type Registry struct {
	Tenants []string `koanf:"tenants"`
}

// LoadRegistry reads the list of known tenant IDs from the registry file.
// A missing file yields an empty registry, not an error.
func LoadRegistry(path string) (*Registry, error) {
	registry := &Registry{Tenants: []string{}}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return registry, nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load tenant registry %s: %w", path, err)
	}
	if err := k.UnmarshalWithConf("", registry, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tenant registry: %w", err)
	}
	return registry, nil
}

// LoadConfig reads one tenant's configuration, layering the tenant's YAML
// file under COURSEPULSE_TENANT_<ID>_ environment overrides.
func LoadConfig(tenantID string) (*Config, error) {
	cfg := &Config{
		TenantID: tenantID,
		Status:   "active",
	}

	k := koanf.New(".")

	path := filepath.Join(config.TenantConfigDir, tenantID+".yaml")
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load tenant config %s: %w", path, err)
		}
	}

	prefix := "COURSEPULSE_TENANT_" + strings.ToUpper(strings.ReplaceAll(tenantID, "-", "_")) + "_"
	envProvider := env.Provider(prefix, ".", func(s string) string {
		return envKeyToField(strings.TrimPrefix(s, prefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load tenant env overrides: %w", err)
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tenant config for %s: %w", tenantID, err)
	}

	if cfg.SQLitePath == "" && cfg.TursoDatabaseURL == "" {
		cfg.SQLitePath = filepath.Join(config.TenantDataDir, tenantID, "tenant.db")
	}

	return cfg, nil
}

// envKeyToField maps SCREAMING_SNAKE env suffixes to koanf field keys
func envKeyToField(key string) string {
	switch strings.ToUpper(key) {
	case "SQLITE_PATH":
		return "sqlitePath"
	case "TURSO_DATABASE_URL":
		return "tursoDatabaseUrl"
	case "TURSO_AUTH_TOKEN":
		return "tursoAuthToken"
	case "JWT_SECRET":
		return "jwtSecret"
	case "ADMIN_PASSWORD_HASH":
		return "adminPasswordHash"
	case "STATUS":
		return "status"
	case "NAME":
		return "name"
	}
	return strings.ToLower(key)
}
