// queue-client is the terminal front end of the queue system: customers join
// a queue and follow their ticket, staff serve their counter and admins
// manage counters, users and reports.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"qms/queue-client/internal/apiclient"
	"qms/queue-client/internal/config"
	"qms/queue-client/internal/credstore"
	"qms/queue-client/internal/notify"
	"qms/queue-client/internal/realtime"
	"qms/queue-client/internal/session"
	"qms/queue-client/internal/telemetry"
	"qms/queue-client/internal/ticketwatch"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const serviceName = "queue-client"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, os.Args[1:])
	stop()
	if err != nil && !errors.Is(err, pflag.ErrHelp) {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// client holds everything the commands share.
type client struct {
	cfg      config.Config
	logger   *zap.Logger
	slot     credstore.Slot
	session  *session.Store
	api      *apiclient.Client
	realtime *realtime.Client
	shutdown func(context.Context) error
}

func newClient(ctx context.Context, cfg config.Config) (*client, error) {
	logger, err := telemetry.NewLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	shutdown := telemetry.Setup(serviceName, logger)

	slot, err := credstore.Open(cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	store := session.NewStore(slot, logger.Named("session"))
	store.RestoreOnLoad(ctx)

	api := apiclient.New(apiclient.Options{
		BaseURL:     cfg.APIURL,
		Credentials: store,
		Logger:      logger.Named("api"),
		Timeout:     cfg.HTTPTimeout,
	})
	rt := realtime.New(realtime.Options{
		BaseURL:        cfg.APIURL,
		Path:           cfg.WSPath,
		Credentials:    store,
		ReconnectDelay: cfg.ReconnectDelay,
		Logger:         logger.Named("realtime"),
	})

	logger.Info("client started",
		zap.String("api_url", cfg.APIURL),
		zap.String("credential_backend", cfg.CredentialBackend),
		zap.String("notify_provider", cfg.NotifyProvider),
	)
	return &client{
		cfg:      cfg,
		logger:   logger,
		slot:     slot,
		session:  store,
		api:      api,
		realtime: rt,
		shutdown: shutdown,
	}, nil
}

// watcher builds a ticket watcher whose notifications ask prompter for
// permission the first time they fire.
func (c *client) watcher(prompter notify.Prompter) *ticketwatch.Watcher {
	provider := notify.NewProvider(c.cfg, c.logger.Named("notify"))
	gate := notify.NewGate(provider, notify.ParsePermission(c.cfg.NotifyPermission), prompter, c.logger.Named("notify"))
	return ticketwatch.NewWatcher(c.api, c.realtime, gate, c.cfg.PollInterval, c.logger.Named("ticketwatch"))
}

func (c *client) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.shutdown(ctx); err != nil {
		c.logger.Warn("telemetry shutdown", zap.Error(err))
	}
	if closer, ok := c.slot.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			c.logger.Warn("close credential store", zap.Error(err))
		}
	}
	_ = c.logger.Sync()
}

func run(ctx context.Context, args []string) error {
	name, rest := splitCommand(args)
	if name == "help" {
		printUsage(os.Stdout)
		return nil
	}
	cmd, ok := lookupCommand(name)
	if !ok {
		printUsage(os.Stderr)
		return fmt.Errorf("unknown command %q", name)
	}

	flags := pflag.NewFlagSet(serviceName+" "+name, pflag.ContinueOnError)
	exec := cmd.setup(flags)
	if err := flags.Parse(rest); err != nil {
		return err
	}

	c, err := newClient(ctx, config.Load())
	if err != nil {
		return err
	}
	defer c.Close()
	return exec(ctx, c, flags.Args())
}

// splitCommand picks the subcommand; anything else starts the interactive UI.
func splitCommand(args []string) (string, []string) {
	if len(args) == 0 || len(args[0]) == 0 || args[0][0] == '-' {
		return "ui", args
	}
	return args[0], args[1:]
}
