package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/brickingsoft/errors"
	"github.com/cloudwego/gopkg/bufiox"
	"github.com/dshulyak/uclock/internal/clock"
	"github.com/dshulyak/uclock/internal/config"
	"github.com/dshulyak/uclock/internal/syserr"
	"github.com/dshulyak/uclock/internal/term"
	"github.com/dshulyak/uclock/loop"
)

func main() {
	envPath := flag.String("env", ".env", "dotenv file with UCLOCK_* variables")
	flag.Parse()

	cfg, err := config.Load(*envPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
	logger, closer, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
	err = run(cfg, logger)
	if err != nil {
		logger.Error("clock failed", "error", err)
	}
	_ = closer.Close()
	os.Exit(exitCode(err))
}

func run(cfg *config.Config, logger *slog.Logger) (err error) {
	stdin := int(os.Stdin.Fd())
	tty, err := term.Open(stdin)
	if err != nil {
		return err
	}
	defer func() {
		_ = clock.Leave(os.Stdout)
		if rerr := tty.Restore(); err == nil {
			err = rerr
		}
	}()

	l, err := loop.Setup(&loop.Params{
		Entries: cfg.Entries,
		Fd:      stdin,
		Period:  cfg.Period,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	defer l.Close()

	screen := clock.New(bufiox.NewDefaultWriter(os.Stdout), tty.Size, clock.Options{
		Offset: cfg.Offset,
		Color:  term.Colors[cfg.Color],
	})
	if err := screen.Refresh(); err != nil {
		return err
	}
	if err := clock.Enter(os.Stdout); err != nil {
		return err
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGWINCH, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go handleSignals(sigs, logger, screen, l, func() {
		_ = clock.Leave(os.Stdout)
		_ = tty.Restore()
		os.Exit(0)
	})

	return l.Run(screen)
}

// handleSignals turns resize into an interrupted wait of the loop, terminate signals
// restore the terminal and exit right away, like the default action would.
func handleSignals(sigs <-chan os.Signal, logger *slog.Logger, screen *clock.Screen, l *loop.Loop, terminate func()) {
	for sig := range sigs {
		switch sig {
		case syscall.SIGWINCH:
			screen.Resize()
			if err := l.Interrupt(); err != nil && !errors.Is(err, loop.ErrNotRunning) {
				logger.Warn("failed to interrupt loop", "error", err)
			}
		default:
			logger.Info("terminating", "signal", sig)
			terminate()
		}
	}
}

func newLogger(cfg *config.Config) (*slog.Logger, io.Closer, error) {
	var (
		out    io.Writer = os.Stderr
		closer io.Closer = io.NopCloser(nil)
	)
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, errors.New("failed to open log file",
				errors.WithMeta("path", cfg.LogFile),
				syserr.Meta(err),
				errors.WithWrap(err))
		}
		out, closer = f, f
	}
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: cfg.LogLevel})), closer, nil
}
