package tenant

import (
	"github.com/CoursePulse/coursepulse-go/internal/domain/repositories"
	"github.com/CoursePulse/coursepulse-go/internal/infrastructure/observability/logging"
	persistence "github.com/CoursePulse/coursepulse-go/internal/infrastructure/persistence/analytics"
	"github.com/CoursePulse/coursepulse-go/internal/infrastructure/persistence/database"
)

// Context carries one tenant's identity, configuration, and database handle
// through a request or refresh cycle. Repositories are created per call; the
// underlying pool is shared and owned by the Manager.
type Context struct {
	TenantID string
	Config   *Config
	Database *database.DB

	logger *logging.ChanneledLogger
}

// StudentRepo returns a student repository bound to this tenant's database
func (ctx *Context) StudentRepo() repositories.StudentRepository {
	return persistence.NewStudentRepository(ctx.Database, ctx.logger)
}

// EventRepo returns an event repository bound to this tenant's database
func (ctx *Context) EventRepo() repositories.EventRepository {
	return persistence.NewEventRepository(ctx.Database, ctx.logger)
}

// MetricRepo returns a cached-metric repository bound to this tenant's database
func (ctx *Context) MetricRepo() repositories.CachedMetricRepository {
	return persistence.NewMetricRepository(ctx.Database, ctx.logger)
}

// Logger returns the shared channeled logger
func (ctx *Context) Logger() *logging.ChanneledLogger {
	return ctx.logger
}
