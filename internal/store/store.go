// Package store is the run journal: one row per scenario run and one row
// per occ command it executed. SQLite is the default backend; PostgreSQL is
// selected with Driver "postgres".
package store

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/loykin/occaccept/internal/common"
	"github.com/loykin/occaccept/internal/constants"
	"github.com/loykin/occaccept/internal/retry"
	"github.com/loykin/occaccept/internal/store/postgresql"
	"github.com/loykin/occaccept/internal/store/sqlite"
)

const (
	DriverSqlite   = "sqlite"
	DriverPostgres = "postgres"
)

// Run statuses.
const (
	StatusRunning = "running"
	StatusPassed  = "passed"
	StatusFailed  = "failed"
)

// Dialect hides the SQL differences between the backends.
type Dialect interface {
	Placeholder(index int) string
	ConvertTimeToStorage(t time.Time) interface{}
	ConvertTimeFromStorage(val interface{}) string
	Connect(dsn string) (*sql.DB, error)
	EnsureStatements(runs, commands string) []string
	DriverName() string
}

// Run is one scenario execution.
type Run struct {
	ID         string
	Scenario   string
	Feature    string
	Status     string
	Error      string
	StartedAt  string
	FinishedAt string
}

// Command is one occ invocation made by a run.
type Command struct {
	ID       int64
	RunID    string
	Command  string
	ExitCode int
	Stdout   string
	Stderr   string
	RanAt    string
}

// TableNames are the journal table names.
type TableNames struct {
	Runs     string `mapstructure:"runs" yaml:"runs"`
	Commands string `mapstructure:"commands" yaml:"commands"`
}

// Config selects and configures the journal backend.
type Config struct {
	Driver      string            `mapstructure:"driver" yaml:"driver"`
	TablePrefix string            `mapstructure:"table_prefix" yaml:"table_prefix"`
	Tables      TableNames        `mapstructure:"tables" yaml:"tables"`
	SQLite      sqlite.Config     `mapstructure:"sqlite" yaml:"sqlite"`
	Postgres    postgresql.Config `mapstructure:"postgres" yaml:"postgres"`
	// Retry governs re-running statements that hit a busy database.
	Retry retry.Config `mapstructure:"retry" yaml:"retry"`
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ResolveTables applies the prefix and the defaults, and rejects names that
// are not plain SQL identifiers.
func (c Config) ResolveTables() (TableNames, error) {
	fields := []string{strings.TrimSpace(c.TablePrefix), strings.TrimSpace(c.Tables.Runs), strings.TrimSpace(c.Tables.Commands)}
	prefix, runs, commands := fields[0], fields[1], fields[2]
	if prefix != "" {
		if runs == "" {
			runs = prefix + constants.RunsSuffix
		}
		if commands == "" {
			commands = prefix + constants.CommandsSuffix
		}
	}
	if runs == "" {
		runs = constants.DefaultRunsTable
	}
	if commands == "" {
		commands = constants.DefaultCommandsTable
	}
	for _, name := range []string{runs, commands} {
		if !identRe.MatchString(name) {
			return TableNames{}, fmt.Errorf("invalid journal table name %q", name)
		}
	}
	return TableNames{Runs: runs, Commands: commands}, nil
}

// Journal records runs and commands.
type Journal struct {
	db      *sql.DB
	dialect Dialect
	tables  TableNames
	retry   retry.Config
}

// Open connects to the configured backend and creates the tables.
func Open(ctx context.Context, cfg Config) (*Journal, error) {
	tables, err := cfg.ResolveTables()
	if err != nil {
		return nil, err
	}

	var (
		dialect Dialect
		dsn     string
	)
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverSqlite, "sqlite3":
		dialect = sqlite.NewDialect()
		dsn = cfg.SQLite.DSN()
	case DriverPostgres, "postgresql", "pg":
		dialect = postgresql.NewDialect()
		dsn = cfg.Postgres.BuildDSN()
		if dsn == "" {
			return nil, fmt.Errorf("journal: postgres requires dsn or host")
		}
	default:
		return nil, fmt.Errorf("journal: unsupported driver %q", cfg.Driver)
	}

	logger := common.GetLogger().WithStore(dialect.DriverName())
	db, err := dialect.Connect(dsn)
	if err != nil {
		return nil, err
	}
	j := &Journal{db: db, dialect: dialect, tables: tables, retry: cfg.Retry}
	if err := j.ensure(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Info("journal ready", "runs_table", tables.Runs, "commands_table", tables.Commands)
	return j, nil
}

func (j *Journal) ensure(ctx context.Context) error {
	logger := common.GetLogger().WithStore(j.dialect.DriverName())
	for i, q := range j.dialect.EnsureStatements(j.tables.Runs, j.tables.Commands) {
		logger.Debug("executing schema creation statement", "table_index", i+1, "sql", q)
		if _, err := j.db.ExecContext(ctx, q); err != nil {
			logger.Error("failed to create journal table", "error", err, "table_index", i+1)
			return fmt.Errorf("failed to create table %d in journal setup: %w", i+1, err)
		}
	}
	return nil
}

// Tables returns the resolved table names.
func (j *Journal) Tables() TableNames { return j.tables }

// Close closes the database connection.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

func (j *Journal) placeholders(n int) string {
	ph := make([]string, n)
	for i := range ph {
		ph[i] = j.dialect.Placeholder(i + 1)
	}
	return strings.Join(ph, ", ")
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// StartRun inserts a run in the running state.
func (j *Journal) StartRun(ctx context.Context, run Run, startedAt time.Time) error {
	q := fmt.Sprintf("INSERT INTO %s(id, scenario, feature, status, started_at) VALUES(%s)", j.tables.Runs, j.placeholders(5))
	_, err := retry.Do(ctx, j.retry, func() (sql.Result, error) {
		return j.db.ExecContext(ctx, q, run.ID, run.Scenario, run.Feature, StatusRunning, j.dialect.ConvertTimeToStorage(startedAt))
	})
	if err != nil {
		return fmt.Errorf("journal: start run %s: %w", run.ID, err)
	}
	return nil
}

// FinishRun stores the final status of a run.
func (j *Journal) FinishRun(ctx context.Context, id, status, errText string, finishedAt time.Time) error {
	q := fmt.Sprintf("UPDATE %s SET status = %s, error = %s, finished_at = %s WHERE id = %s",
		j.tables.Runs, j.dialect.Placeholder(1), j.dialect.Placeholder(2), j.dialect.Placeholder(3), j.dialect.Placeholder(4))
	res, err := retry.Do(ctx, j.retry, func() (sql.Result, error) {
		return j.db.ExecContext(ctx, q, status, nullable(errText), j.dialect.ConvertTimeToStorage(finishedAt), id)
	})
	if err != nil {
		return fmt.Errorf("journal: finish run %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("journal: run %s not found", id)
	}
	return nil
}

// RecordCommand appends a command to a run.
func (j *Journal) RecordCommand(ctx context.Context, c Command, ranAt time.Time) error {
	q := fmt.Sprintf("INSERT INTO %s(run_id, command, exit_code, stdout, stderr, ran_at) VALUES(%s)", j.tables.Commands, j.placeholders(6))
	_, err := retry.Do(ctx, j.retry, func() (sql.Result, error) {
		return j.db.ExecContext(ctx, q, c.RunID, common.MaskSensitiveData(c.Command), c.ExitCode,
			nullable(c.Stdout), nullable(c.Stderr), j.dialect.ConvertTimeToStorage(ranAt))
	})
	if err != nil {
		return fmt.Errorf("journal: record command for run %s: %w", c.RunID, err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first. limit <= 0 lists all.
func (j *Journal) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	q := fmt.Sprintf("SELECT id, scenario, feature, status, error, started_at, finished_at FROM %s ORDER BY started_at DESC, id DESC", j.tables.Runs)
	args := []interface{}{}
	if limit > 0 {
		q += " LIMIT " + j.dialect.Placeholder(1)
		args = append(args, limit)
	}
	var out []Run
	err := retry.Run(ctx, j.retry, func() error {
		out = out[:0]
		rows, err := j.db.QueryContext(ctx, q, args...)
		if err != nil {
			return err
		}
		defer func() { _ = rows.Close() }()
		for rows.Next() {
			var (
				r                 Run
				errText           sql.NullString
				started, finished interface{}
			)
			if err := rows.Scan(&r.ID, &r.Scenario, &r.Feature, &r.Status, &errText, &started, &finished); err != nil {
				return err
			}
			r.Error = errText.String
			r.StartedAt = j.dialect.ConvertTimeFromStorage(started)
			r.FinishedAt = j.dialect.ConvertTimeFromStorage(finished)
			out = append(out, r)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("journal: list runs: %w", err)
	}
	return out, nil
}

// ListCommands returns the commands of a run in execution order.
func (j *Journal) ListCommands(ctx context.Context, runID string) ([]Command, error) {
	q := fmt.Sprintf("SELECT id, run_id, command, exit_code, stdout, stderr, ran_at FROM %s WHERE run_id = %s ORDER BY id ASC",
		j.tables.Commands, j.dialect.Placeholder(1))
	var out []Command
	err := retry.Run(ctx, j.retry, func() error {
		out = out[:0]
		rows, err := j.db.QueryContext(ctx, q, runID)
		if err != nil {
			return err
		}
		defer func() { _ = rows.Close() }()
		for rows.Next() {
			var (
				c              Command
				stdout, stderr sql.NullString
				ranAt          interface{}
			)
			if err := rows.Scan(&c.ID, &c.RunID, &c.Command, &c.ExitCode, &stdout, &stderr, &ranAt); err != nil {
				return err
			}
			c.Stdout, c.Stderr = stdout.String, stderr.String
			c.RanAt = j.dialect.ConvertTimeFromStorage(ranAt)
			out = append(out, c)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("journal: list commands: %w", err)
	}
	return out, nil
}
