// Command checkoutctl drives the checkout engine from the shell. Every
// command prints its result as JSON on stdout and logs to stderr.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CristobalNPE/ventesca-sub000/internal/domain/shared"
	"github.com/CristobalNPE/ventesca-sub000/internal/infrastructure/config"
	"github.com/CristobalNPE/ventesca-sub000/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// errUsage marks errors caused by the command line itself
var errUsage = errors.New("usage error")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	global := flag.NewFlagSet("checkoutctl", flag.ContinueOnError)
	global.SetOutput(stderr)
	configPath := global.String("config", "", "Path to a config file (default: ./config.toml)")
	global.Usage = func() { printUsage(stderr) }
	if err := global.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	rest := global.Args()
	if len(rest) == 0 {
		printUsage(stderr)
		return errUsage
	}
	cmd, ok := commands[rest[0]]
	if !ok {
		printUsage(stderr)
		return fmt.Errorf("%w: unknown command %q", errUsage, rest[0])
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	return runCommand(ctx, cfg, rest[0], cmd, rest[1:], stdout, stderr)
}

func runCommand(ctx context.Context, cfg *config.Config, name string, cmd command, args []string, stdout, stderr io.Writer) error {
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := a.Close(closeCtx); err != nil {
			fmt.Fprintln(stderr, "Error during shutdown:", err)
		}
	}()

	ctx, _ = logger.WithRequestID(ctx, a.log, uuid.NewString())

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := cmd.run(ctx, a, fs, args, stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		logger.L(ctx).Debug("Command failed", zap.String("command", name), zap.Error(err))
		return err
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// exitCode maps failures to stable exit codes for scripts
func exitCode(err error) int {
	switch {
	case errors.Is(err, errUsage), errors.Is(err, shared.ErrInvalidInput):
		return 2
	case errors.Is(err, shared.ErrNotFound):
		return 3
	case errors.Is(err, shared.ErrIllegalTransition), errors.Is(err, shared.ErrInvalidState),
		errors.Is(err, shared.ErrInsufficientStock):
		return 4
	case shared.IsRetryable(err):
		return 75 // EX_TEMPFAIL
	default:
		return 1
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: checkoutctl [-config file] <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, name := range commandNames() {
		fmt.Fprintf(w, "  %-16s %s\n", name, commands[name].summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'checkoutctl <command> -h' for the flags of a command.")
}
