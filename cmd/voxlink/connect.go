package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/opd-ai/voxlink"
	"github.com/opd-ai/voxlink/config"
	"github.com/opd-ai/voxlink/logging"
	"github.com/opd-ai/voxlink/metrics"
	"github.com/opd-ai/voxlink/voice"
)

type connectFlags struct {
	host     string
	port     uint16
	user     string
	password string
	send     string
}

func newConnectCommand(g *globalFlags) *cobra.Command {
	var f connectFlags

	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Connect to a server and stay connected until interrupted",
		Example: `  voxlink connect --host mumble.example.org --user alice
  voxlink connect -c voxlink.yaml --send greeting.opus`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(g)
			if err != nil {
				return err
			}
			applyConnectFlags(cmd, &f, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runConnect(ctx, cfg, f.send)
		},
	}

	cmd.Flags().StringVar(&f.host, "host", "", "server host (overrides server.host)")
	cmd.Flags().Uint16Var(&f.port, "port", 0, "server port (overrides server.port)")
	cmd.Flags().StringVarP(&f.user, "user", "u", "", "username (overrides server.username)")
	cmd.Flags().StringVarP(&f.password, "password", "p", "", "password (overrides server.password)")
	cmd.Flags().StringVar(&f.send, "send", "", "Ogg Opus file to transmit once connected")
	return cmd
}

// applyConnectFlags copies explicitly given flags over cfg.
func applyConnectFlags(cmd *cobra.Command, f *connectFlags, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Server.Host = f.host
	}
	if flags.Changed("port") {
		cfg.Server.Port = f.port
	}
	if flags.Changed("user") {
		cfg.Server.Username = f.user
	}
	if flags.Changed("password") {
		cfg.Server.Password = f.password
	}
}

func runConnect(ctx context.Context, cfg *config.Config, sendPath string) error {
	closeLog, err := logging.Setup(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog.Close()

	if cfg.Metrics.Enabled {
		shutdown, err := serveMetrics(cfg.Metrics.Listen)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	client, err := voxlink.New(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	conn := client.Connection()
	conn.PacketReceived.Subscribe(func(desc string) {
		logrus.WithField("function", "connect").Info(desc)
	})
	conn.AudioReceived.Subscribe(func(f *voice.Frame) {
		logrus.WithField("function", "connect").Debug(f.String())
	})
	conn.ConnectionFailed.Subscribe(func(reason string) {
		cancel(errors.New(reason))
	})

	if err := client.Connect(ctx); err != nil {
		return err
	}

	if sendPath != "" {
		if err := sendFile(ctx, client, sendPath); err != nil {
			return fmt.Errorf("send %s: %w", sendPath, err)
		}
	}

	<-ctx.Done()
	if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, context.Canceled) {
		return cause
	}
	logrus.WithField("function", "connect").Info("Interrupted, disconnecting")
	return nil
}

// serveMetrics installs the Prometheus bridge and serves /metrics on addr.
func serveMetrics(addr string) (func(), error) {
	shutdownProvider, err := metrics.InitProvider()
	if err != nil {
		return nil, fmt.Errorf("metrics provider: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithFields(logrus.Fields{
				"function": "serveMetrics",
				"listen":   addr,
				"error":    err.Error(),
			}).Error("Metrics server stopped")
		}
	}()
	logrus.WithFields(logrus.Fields{
		"function": "serveMetrics",
		"listen":   addr,
	}).Info("Serving metrics")

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
		shutdownProvider(ctx)
	}, nil
}
