package main

import (
	"context"
	"flag"
	"os"
	"os/exec"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/gymtrack/internal"
	"github.com/2beens/gymtrack/internal/config"
	"github.com/2beens/gymtrack/internal/logging"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config [%s]: %s", *configPath, err)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogFileName:      cfg.LogsPath,
		LogToStdout:      cfg.LogToStdout,
		LogLevel:         cfg.LogLevel,
		LogFormatJSON:    cfg.LogFormatJSON,
		Environment:      cfg.Environment,
		SentryEnabled:    cfg.SentryEnabled,
		SentryDSN:        cfg.SentryDSN,
		SentryServerName: "gymtrack-service",
	})
	log.Warnf("starting gymtrack service in [%s] environment, port %d", cfg.Environment, cfg.Port)

	warnMissingSecrets(cfg)
	honeycombEnabled := honeycombTracingEnabled()
	versionInfo := versionInfo()
	log.Debugf("running version: %s", versionInfo)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, err := internal.NewServer(
		ctx,
		internal.NewServerParams{
			Config:                  cfg,
			VersionInfo:             versionInfo,
			HoneycombTracingEnabled: honeycombEnabled,
		},
	)
	if err != nil {
		log.Fatalf("new server: %s", err)
	}

	server.Serve(cfg.Host, cfg.Port)

	<-ctx.Done()
	log.Warnln("shutdown signal received")
	server.GracefulShutdown()
}

func warnMissingSecrets(cfg *config.Config) {
	if cfg.AdminUsername == "" || cfg.AdminPasswordHash == "" {
		log.Errorln("admin login disabled: set GYMTRACK_ADMIN_USERNAME and GYMTRACK_ADMIN_PASSWORD_HASH")
	}
	if cfg.RedisPassword == "" {
		log.Warnln("redis password not set. use GYMTRACK_REDIS_PASS")
	}
	if !cfg.RemoteDisabled && cfg.PostgresPassword == "" {
		log.Warnln("postgres password not set. use GYMTRACK_POSTGRES_PASS")
	}
}

func honeycombTracingEnabled() bool {
	if os.Getenv("OTEL_SERVICE_NAME") == "" {
		log.Warnln("OTEL_SERVICE_NAME env var not set")
	}
	if os.Getenv("HONEYCOMB_ENABLED") != "true" {
		log.Debugln("honeycomb tracing disabled")
		return false
	}
	if os.Getenv("HONEYCOMB_API_KEY") == "" {
		log.Warnln("HONEYCOMB_API_KEY env var not set")
	}
	return true
}

// versionInfo prefers the vcs revision stamped at build time, and falls back
// to asking git (when run from the project root).
func versionInfo() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" && setting.Value != "" {
				return setting.Value
			}
		}
	}
	out, err := exec.Command("git", "rev-parse", "HEAD").Output()
	if err != nil {
		log.Tracef("version info from git: %s", err)
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}
