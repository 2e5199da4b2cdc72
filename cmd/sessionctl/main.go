// Command sessionctl exercises the session toolkit from the shell: log in
// against the configured boundary, inspect the current identity and tokens,
// patch the profile, and flip UI preferences. Durable state requires
// REDIS_ENABLED=true; otherwise each invocation starts from a clean slate.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/modernstarter/sessionkit/config"
	"github.com/modernstarter/sessionkit/internal/bootstrap"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
	Kit    *bootstrap.Kit
}

func main() {
	if len(os.Args) < 2 {
		if err := printUsage(); err != nil {
			slog.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			slog.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(); err != nil {
			slog.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		slog.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}
	logger := bootstrap.InitLogger(cfg.IsDev)

	kit, err := bootstrap.Build(cfg, bootstrap.BuildOptions{Logger: logger})
	if err != nil {
		logger.ErrorContext(context.Background(), "build toolkit", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal wiring failure to shell scripts
	}
	defer func() {
		if closeErr := kit.Close(); closeErr != nil {
			logger.Warn("toolkit close failed", "error", closeErr)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmdCtx := &commandContext{
		Ctx:    ctx,
		Logger: logger,
		Config: cfg,
		Kit:    kit,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"login": {
			name:        "login",
			description: "Authenticate with email and password and store the token pair",
			run:         runLogin,
		},
		"logout": {
			name:        "logout",
			description: "Drop the stored token pair and reset the session",
			run:         runLogout,
		},
		"whoami": {
			name:        "whoami",
			description: "Validate the stored access token and print the current identity",
			run:         runWhoami,
		},
		"profile-set": {
			name:        "profile-set",
			description: "Patch the signed-in user's profile (name, avatar, email)",
			run:         runProfileSet,
		},
		"token-show": {
			name:        "token-show",
			description: "Inspect the stored tokens and their expiry",
			run:         runTokenShow,
		},
		"theme": {
			name:        "theme",
			description: "Show or set the persisted color mode",
			run:         runTheme,
		},
	}
}

func printUsage() error {
	if err := writef(os.Stdout, "Usage: sessionctl <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(os.Stdout, "Available commands:\n"); err != nil {
		return err
	}
	for _, c := range commands() {
		if err := writef(os.Stdout, "  %-14s %s\n", c.name, c.description); err != nil {
			return err
		}
	}
	return nil
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}
