package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/gymtrack/internal/auth"
	"github.com/2beens/gymtrack/internal/db"
	"github.com/2beens/gymtrack/internal/logging"
	"github.com/2beens/gymtrack/internal/program"
	"github.com/2beens/gymtrack/internal/resolver"
	"github.com/2beens/gymtrack/internal/sessions"
	"github.com/2beens/gymtrack/internal/store/local"
	"github.com/2beens/gymtrack/internal/store/remote"
	"github.com/2beens/gymtrack/internal/telemetry/metrics"
)

const usage = `usage: gymtrack [flags] <command> [args]

commands:
  list [day]          list sessions, newest first (optionally only for a day)
  stats               streaks, volume and personal records
  resolve <name>...   show the canonical day / exercise id for legacy names
  sync                push local-only sessions to the remote store
  backup <out.tar.gz> archive the local store directory
  hash-password <pw>  print a bcrypt hash for GYMTRACK_ADMIN_PASSWORD_HASH

flags:
`

func main() {
	dataDir := flag.String("data", "./data", "local store directory")
	programPath := flag.String("program", "", "program TOML file (empty for the built-in one)")
	useRemote := flag.Bool("remote", false, "also use the remote store (GYMTRACK_PG_* env vars)")
	logLevel := flag.String("log-level", "warn", "log level")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	logging.Setup(logging.LoggerSetupParams{
		LogLevel: *logLevel,
	})

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	a, cleanup, err := newApp(ctx, *dataDir, *programPath, *useRemote)
	if err != nil {
		log.Fatalf("init: %s", err)
	}
	defer cleanup()

	if err := a.run(ctx, flag.Args(), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "gymtrack: %s\n", err)
		cleanup()
		os.Exit(1)
	}
}

func newApp(ctx context.Context, dataDir, programPath string, useRemote bool) (*app, func(), error) {
	prog := program.Default()
	if programPath != "" {
		var err error
		if prog, err = program.Load(programPath); err != nil {
			return nil, nil, err
		}
	}
	res := resolver.New(prog)
	metricsManager := metrics.NewTestManager()

	kv, err := local.NewFileKV(dataDir)
	if err != nil {
		return nil, nil, err
	}
	localStore := local.NewStore(kv, res, metricsManager)

	cleanup := func() {}
	var remoteStore *remote.Store
	if useRemote {
		pool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
			DBHost:     envOr("GYMTRACK_PG_HOST", "localhost"),
			DBPort:     envOr("GYMTRACK_PG_PORT", "5432"),
			DBName:     envOr("GYMTRACK_PG_DB", "gymtrack_db"),
			DBUser:     envOr("GYMTRACK_PG_USER", "postgres"),
			DBPassword: os.Getenv("GYMTRACK_POSTGRES_PASS"),
		})
		if err != nil {
			return nil, nil, err
		}
		cleanup = pool.Close
		// the CLI runs as the owner, no login session involved
		remoteStore = remote.NewStore(pool, auth.StaticIdentity(true), res, metricsManager, remote.DefaultRequestTimeout)
	} else {
		remoteStore = remote.NewStore(nil, auth.StaticIdentity(false), res, metricsManager, remote.DefaultRequestTimeout)
	}

	return &app{
		dataDir:  dataDir,
		resolver: res,
		repo:     sessions.NewRepository(localStore, remoteStore, res, metricsManager, 0),
		now:      time.Now,
	}, cleanup, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
