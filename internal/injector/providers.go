package injector

import (
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/zeusync/behave/internal/core/agent"
	"github.com/zeusync/behave/internal/core/observability/log"
	"github.com/zeusync/behave/internal/core/tasks"
)

// Options carries the values the provider graph is built from.
type Options struct {
	Level      log.Level
	Registerer prometheus.Registerer
	Manager    agent.ManagerConfig
	// PoolLimit caps concurrently running async tasks; zero is unbounded.
	PoolLimit int
}

// Runtime is the assembled simulation runtime.
type Runtime struct {
	Logger  *log.Logger
	Manager *agent.Manager
	Pool    *tasks.Pool
}

var ProviderSet = wire.NewSet(
	wire.FieldsOf(new(Options), "Level", "Registerer", "Manager"),
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	ProvidePool,
	agent.NewMetrics,
	agent.NewManager,
	wire.Struct(new(Runtime), "*"),
)

func ProvideLogger(level log.Level) (*log.Logger, func()) {
	logger := log.New(level)
	return logger, func() { _ = logger.Sync() }
}

func ProvidePool(opts Options, logger log.Log) (*tasks.Pool, func()) {
	pool := tasks.NewPool(opts.PoolLimit, logger)
	return pool, func() { _ = pool.Close() }
}
