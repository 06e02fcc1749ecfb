package telemetry

import (
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing
type DBTracingConfig struct {
	Enabled         bool
	SlowQueryThresh time.Duration
	DBSystem        string
	// WithoutVariables excludes query variables from recorded SQL
	WithoutVariables bool
}

// DefaultDBTracingConfig returns default configuration for database tracing
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		Enabled:          false,
		SlowQueryThresh:  200 * time.Millisecond,
		DBSystem:         "postgresql",
		WithoutVariables: true,
	}
}

// RegisterDBTracing registers the otelgorm plugin with the given GORM DB
// instance so queries show up as spans under the surrounding operation
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{
		otelgorm.WithDBName(cfg.DBSystem),
	}
	if cfg.WithoutVariables {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}

	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
	)
	return nil
}
