package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/hireloop/portal-api/internal/platform/config"
	"github.com/hireloop/portal-api/internal/platform/logging"
)

const usage = `usage: migrate [-config path] [-dir path] <command>

commands:
  up [N]       apply all or the next N migrations
  down [N]     roll back N migrations (default 1)
  goto V       migrate to version V
  force V      set version V without running migrations (clears dirty)
  version      print the current version
  drop         drop everything in the database`

type command struct {
	action string
	n      int
}

func main() {
	var (
		configPath    = flag.String("config", "", "path to config file (defaults to CONFIG_PATH env or assets/local.yaml)")
		migrationsDir = flag.String("dir", "assets/migrations", "directory containing migration files")
	)
	flag.Usage = func() { fmt.Fprintln(flag.CommandLine.Output(), usage) }
	flag.Parse()

	cmd, err := parseCommand(flag.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(effectiveConfigPath(*configPath))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := logging.New(os.Stderr, cfg.Log)

	if err := run(cmd, *migrationsDir, cfg.Database.DSN(), logger); err != nil {
		logger.Error("migration failed", "action", cmd.action, "error", err)
		os.Exit(1)
	}
	logger.Info("migration completed", "action", cmd.action)
}

func parseCommand(args []string) (command, error) {
	if len(args) == 0 {
		return command{action: "up"}, nil
	}

	cmd := command{action: strings.ToLower(args[0])}
	rest := args[1:]
	switch cmd.action {
	case "up", "down":
		if cmd.action == "down" {
			cmd.n = 1
		}
		if len(rest) == 0 {
			return cmd, nil
		}
	case "goto", "force":
		if len(rest) == 0 {
			return command{}, fmt.Errorf("%s requires a version", cmd.action)
		}
	case "version", "drop":
		if len(rest) != 0 {
			return command{}, fmt.Errorf("%s takes no arguments", cmd.action)
		}
		return cmd, nil
	default:
		return command{}, fmt.Errorf("unsupported command %q", cmd.action)
	}

	if len(rest) > 1 {
		return command{}, fmt.Errorf("%s takes one argument", cmd.action)
	}
	n, err := strconv.Atoi(rest[0])
	if err != nil || n < 0 || (n == 0 && cmd.action != "force") {
		return command{}, fmt.Errorf("%s: invalid number %q", cmd.action, rest[0])
	}
	cmd.n = n
	return cmd, nil
}

func effectiveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		return env
	}
	return "assets/local.yaml"
}

func run(cmd command, dir, dsn string, logger *slog.Logger) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve path for %s: %w", dir, err)
	}

	m, err := migrate.New("file://"+filepath.ToSlash(absDir), dsn)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()
	m.Log = migrateLogger{logger: logger}

	switch cmd.action {
	case "up":
		if cmd.n > 0 {
			err = m.Steps(cmd.n)
		} else {
			err = m.Up()
		}
	case "down":
		err = m.Steps(-cmd.n)
	case "goto":
		err = m.Migrate(uint(cmd.n))
	case "force":
		err = m.Force(cmd.n)
	case "drop":
		err = m.Drop()
	case "version":
		version, dirty, verr := m.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			logger.Info("no migration applied")
			return nil
		}
		if verr != nil {
			return verr
		}
		logger.Info("current version", "version", version, "dirty", dirty)
		return nil
	}

	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no change")
		return nil
	}
	return err
}

// migrateLogger adapts slog to migrate.Logger.
type migrateLogger struct {
	logger *slog.Logger
}

func (l migrateLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l migrateLogger) Verbose() bool {
	return l.logger.Enabled(context.Background(), slog.LevelDebug)
}
