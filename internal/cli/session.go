package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ms584/Q-Net/internal/config"
	"github.com/ms584/Q-Net/internal/executor"
	"github.com/ms584/Q-Net/internal/publish"
	"github.com/ms584/Q-Net/internal/store"
	"github.com/ms584/Q-Net/internal/teleport"
)

// SessionOptions are the run-time overrides shared by run and plan.
type SessionOptions struct {
	Database string // overrides store.path
	Publish  bool   // forces MQTT publishing on

	// Executor overrides the configured executor (for testing).
	Executor executor.Executor

	// IDGenerator overrides run ID generation (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDGenerator teleport.IDGenerator
}

// session is a configured runner plus the sinks it owns.
type session struct {
	cfg    *config.Config
	runner *teleport.Runner
	store  *store.Store
	pub    *publish.Publisher
}

// openSession wires the executor, run history and broker publisher
// described by cfg and o. The caller must call close.
func openSession(cfg *config.Config, o SessionOptions) (*session, error) {
	s := &session{cfg: cfg}

	exec := o.Executor
	if exec == nil {
		var err error
		exec, err = cfg.NewExecutor()
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to configure executor", err)
		}
	}

	// The publisher runs before the store so history only holds runs
	// that were also published.
	var sinks []teleport.Sink

	if cfg.MQTT.Enabled || o.Publish {
		pub := publish.New(cfg.PublishConfig())
		if err := pub.Connect(); err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to connect to broker", err)
		}
		slog.Info("connected to broker", "broker", cfg.MQTT.Broker)
		s.pub = pub
		sinks = append(sinks, pub)
	}

	dbPath := cfg.Store.Path
	if o.Database != "" {
		dbPath = o.Database
	}
	if dbPath != "" {
		slog.Info("opening database", "path", dbPath)
		st, err := store.Open(dbPath)
		if err != nil {
			s.close()
			return nil, WrapExitError(ExitCommandError, "failed to open database", err)
		}
		s.store = st
		sinks = append(sinks, st)
	}

	ids := o.IDGenerator
	if ids == nil {
		ids = teleport.UUIDv7Generator{}
	}
	s.runner = teleport.NewRunner(exec,
		teleport.WithIDGenerator(ids),
		teleport.WithLogger(slog.Default()),
		teleport.WithSinks(sinks...),
	)
	return s, nil
}

func (s *session) close() {
	if s.pub != nil {
		s.pub.Close()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			slog.Error("error closing database", "error", err)
		}
	}
}

// signalContext returns a context cancelled on SIGINT/SIGTERM, derived from
// the command's context when it has one (tests).
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
