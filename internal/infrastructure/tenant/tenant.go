package tenant

import (
	"fmt"
	"sync"

	"github.com/CoursePulse/coursepulse-go/internal/infrastructure/observability/logging"
	"github.com/CoursePulse/coursepulse-go/internal/infrastructure/persistence/database"
	"github.com/CoursePulse/coursepulse-go/pkg/config"
)

// Manager owns the tenant registry and the per-tenant connection pools.
// Activation is lazy with a startup pre-activation pass; each tenant's pool
// is opened once and shared by every context created for it.
type Manager struct {
	mu      sync.RWMutex
	tenants map[string]*activeTenant
	logger  *logging.ChanneledLogger
}

type activeTenant struct {
	config *Config
	db     *database.DB
}

// NewManager creates an empty tenant manager
func NewManager(logger *logging.ChanneledLogger) *Manager {
	return &Manager{
		tenants: make(map[string]*activeTenant),
		logger:  logger,
	}
}

// PreActivateAllTenants activates every tenant in the registry so the first
// refresh cycle and the first request never pay activation latency. A tenant
// that fails to activate is logged and skipped; the rest still come up.
func (m *Manager) PreActivateAllTenants() error {
	registry, err := LoadRegistry(config.TenantRegistryPath)
	if err != nil {
		return err
	}

	activated := 0
	for _, tenantID := range registry.Tenants {
		if _, err := m.activate(tenantID); err != nil {
			m.logger.Tenant().Error("Failed to pre-activate tenant",
				"tenantId", tenantID, "error", err.Error())
			continue
		}
		activated++
	}

	m.logger.Tenant().Info("Tenant pre-activation complete",
		"registered", len(registry.Tenants), "activated", activated)
	return nil
}

// ActiveTenantIDs returns the IDs of all activated tenants
func (m *Manager) ActiveTenantIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.tenants))
	for id := range m.tenants {
		ids = append(ids, id)
	}
	return ids
}

// NewContextFromID returns a context for an active tenant, activating it on
// first use.
func (m *Manager) NewContextFromID(tenantID string) (*Context, error) {
	m.mu.RLock()
	active, exists := m.tenants[tenantID]
	m.mu.RUnlock()

	if !exists {
		var err error
		active, err = m.activate(tenantID)
		if err != nil {
			return nil, err
		}
	}

	return &Context{
		TenantID: tenantID,
		Config:   active.config,
		Database: active.db,
		logger:   m.logger,
	}, nil
}

// activate loads a tenant's config, opens its pool, and applies the schema
func (m *Manager) activate(tenantID string) (*activeTenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if active, exists := m.tenants[tenantID]; exists {
		return active, nil
	}

	cfg, err := LoadConfig(tenantID)
	if err != nil {
		return nil, err
	}
	if cfg.Status != "active" {
		return nil, fmt.Errorf("tenant %s is not active (status %s)", tenantID, cfg.Status)
	}

	conn, err := openDatabase(cfg)
	if err != nil {
		return nil, err
	}
	if err := ensureSchema(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ensure schema for tenant %s: %w", tenantID, err)
	}

	active := &activeTenant{
		config: cfg,
		db:     database.New(conn, tenantID, m.logger),
	}
	m.tenants[tenantID] = active

	m.logger.Tenant().Info("Tenant activated", "tenantId", tenantID)
	return active, nil
}

// Close shuts down every tenant connection pool
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for tenantID, active := range m.tenants {
		if err := active.db.Close(); err != nil {
			m.logger.Shutdown().Warn("Failed to close tenant database",
				"tenantId", tenantID, "error", err.Error())
		}
	}
	m.tenants = make(map[string]*activeTenant)
}
