// Package wire is the composition root for slawatch. New builds the whole
// instance graph from a Config; callers own the returned App and must Close it.
package wire

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	cliadapter "github.com/example/slawatch/internal/adapters/cli"
	kafkaadapter "github.com/example/slawatch/internal/adapters/kafka"
	"github.com/example/slawatch/internal/adapters/sqlite"
	"github.com/example/slawatch/internal/app"
	"github.com/example/slawatch/internal/config"
	"github.com/example/slawatch/internal/core/escalation"
	"github.com/example/slawatch/internal/db"
	"github.com/example/slawatch/internal/logging"
	"github.com/example/slawatch/internal/ports/primary"
	"github.com/example/slawatch/internal/ports/secondary"
)

// App holds every long-lived instance.
type App struct {
	Config *config.Config
	Logger *logrus.Logger
	DB     *sql.DB

	SLAMonitor *app.SLAMonitorServiceImpl
	Scheduler  *app.QueueSchedulerImpl

	QueueRepo    secondary.AssignmentQueueRepository
	ActivityRepo secondary.ActivityLogRepository

	notifier *kafkaadapter.EscalationNotifier
}

// Options tweaks how New builds the graph.
type Options struct {
	// LogOutput receives console log lines. Defaults to os.Stderr.
	LogOutput io.Writer
	// Logger replaces the configured logger entirely.
	Logger *logrus.Logger
}

// New opens the database and builds services from cfg.
func New(cfg *config.Config, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		out := opts.LogOutput
		if out == nil {
			out = os.Stderr
		}
		var err error
		logger, err = logging.New(logging.Options{
			Level:  cfg.Log.Level,
			Dir:    cfg.Log.Dir,
			JSON:   cfg.Log.JSON,
			Stdout: out,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
	}

	dbPath := cfg.DBPath
	if dbPath == "" {
		var err error
		dbPath, err = db.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	database, err := db.Open(dbPath)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Logger: logger, DB: database}

	candidateRepo := sqlite.NewCandidateRepository(database)
	escalationRepo := sqlite.NewEscalationRepository(database)
	activityRepo := sqlite.NewActivityLogRepository(database)
	queueRepo := sqlite.NewAssignmentQueueRepository(database)
	a.QueueRepo = queueRepo
	a.ActivityRepo = activityRepo

	var notifier secondary.EscalationNotifier
	if cfg.Kafka.Broker != "" {
		a.notifier, err = kafkaadapter.NewEscalationNotifier(kafkaadapter.Config{
			Broker: cfg.Kafka.Broker,
			Topic:  cfg.Kafka.Topic,
		})
		if err != nil {
			database.Close()
			return nil, err
		}
		notifier = a.notifier
	}

	rules, err := escalation.DefaultRuleTable(cfg.EscalationThreshold)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.SLAMonitor, err = app.NewSLAMonitorService(candidateRepo, escalationRepo, activityRepo, app.SLAMonitorOptions{
		Rules:         rules,
		TargetRole:    cfg.EscalationTargetRole,
		DedupPending:  cfg.DedupPending,
		StrictResolve: cfg.StrictResolve,
		Notifier:      notifier,
		Logger:        logger,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	resolver := app.NewRoundRobinResolver(queueRepo, cfg.AssigneeRole, cfg.BatchSize, cfg.MaxRetries, logger)
	a.Scheduler = app.NewQueueScheduler(resolver, app.QueueSchedulerOptions{
		Cadence:    cfg.QueueCadence,
		MaxRetries: cfg.MaxRetries,
		Logger:     logger,
	})

	return a, nil
}

// EscalationAdapter returns a CLI adapter for the SLA monitor writing to out.
func (a *App) EscalationAdapter(out io.Writer) *cliadapter.EscalationAdapter {
	return cliadapter.NewEscalationAdapter(a.SLAMonitor, out)
}

// QueueAdapter returns a CLI adapter for the queue scheduler writing to out.
func (a *App) QueueAdapter(out io.Writer) *cliadapter.QueueAdapter {
	return cliadapter.NewQueueAdapter(a.Scheduler, out)
}

// Close stops the scheduler, waits for in-flight drains and releases
// the notifier and database.
func (a *App) Close() error {
	var errs []error
	if a.Scheduler != nil {
		if a.Scheduler.GetStatus().IsRunning {
			_ = a.Scheduler.Stop()
		}
		a.Scheduler.Wait()
	}
	if a.notifier != nil {
		if err := a.notifier.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close notifier: %w", err))
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}
	return errors.Join(errs...)
}

var (
	_ primary.SLAMonitorService = (*app.SLAMonitorServiceImpl)(nil)
	_ primary.QueueScheduler    = (*app.QueueSchedulerImpl)(nil)
)
