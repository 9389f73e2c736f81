package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/joebot/discordbridge/internal/bridge"
	"github.com/joebot/discordbridge/internal/bus"
	"github.com/joebot/discordbridge/internal/channel"
	"github.com/joebot/discordbridge/internal/cli"
	"github.com/joebot/discordbridge/internal/config"
	"github.com/joebot/discordbridge/internal/logging"
	"github.com/joebot/discordbridge/internal/watch"
)

func newRunCommand(opts *rootOptions) *cobra.Command {
	var headless bool

	cmd := &cobra.Command{
		Use:     "run",
		Aliases: []string{"r"},
		Short:   "Start the bridge",
		Long: "Start the bridge. The err side is an interactive console unless --headless is set,\n" +
			"in which case messages for err are logged. Send SIGHUP to reload the bridge config.",
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := opts.settings()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runBridge(cfg, headless)
		},
	}
	cmd.Flags().BoolVar(&headless, "headless", false, "log err side deliveries instead of opening the console")
	return cmd
}

func runBridge(cfg *config.Config, headless bool) error {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logPath := cfg.LogPath()
	if !headless {
		logPath = cfg.ConsoleLogPath()
	}
	closeLog, err := logging.Setup(level, logPath, !headless)
	if err != nil {
		return err
	}
	defer closeLog()

	path := cfg.BridgeConfigPath()
	bridgeCfg, err := bridge.LoadFile(path)
	if err != nil {
		return err
	}
	slog.Info("Loaded bridge config", "path", path, "rules", bridgeCfg.RuleCount(), "keys", bridgeCfg.Destinations().Len())
	warnOverrides(bridgeCfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	msgBus := bus.NewMessageBus()
	msgBus.SetMaxLength(bridge.SideDiscord, cfg.Discord.MaxMessageLength)

	router := bridge.NewRouter(bridgeCfg, msgBus)
	router.SetSelf(bridge.SideErr, cfg.Err.Identity)

	var errSide channel.Channel = channel.NewConsole(cfg.Err, msgBus)
	if headless {
		errSide = channel.NewLogSink()
	}
	channels := []channel.Channel{errSide}
	if cfg.Discord.Enabled {
		channels = append(channels, channel.NewDiscord(cfg.Discord, msgBus, router))
	}
	for _, ch := range channels {
		channel.Register(msgBus, ch)
	}

	if headless {
		fmt.Println()
		fmt.Println(cli.Title("Bridge"))
		fmt.Println()
		for _, ch := range channels {
			fmt.Println("  " + cli.OkStyle.Render("✓") + " " + ch.Name() + cli.DimStyle.Render(" ("+string(ch.Side())+" side)"))
		}
		fmt.Println()
		fmt.Println(cli.DimStyle.Render("  Press Ctrl+C to stop, send SIGHUP to reload " + path))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		msgBus.DispatchOutbound(gctx)
		return nil
	})
	g.Go(func() error {
		router.Run(gctx, msgBus)
		return nil
	})
	g.Go(func() error {
		watchReload(gctx, router, path)
		return nil
	})
	g.Go(func() error {
		watch.NewService(path, cfg.Bridge.PollInterval, func(_ context.Context, p string) {
			reload(router, p)
		}).Run(gctx)
		return nil
	})
	for _, ch := range channels {
		g.Go(func() error {
			err := ch.Start(gctx)
			if gctx.Err() != nil {
				return nil
			}
			if err != nil {
				return fmt.Errorf("%s channel: %w", ch.Name(), err)
			}
			// The operator closed the console.
			return errConsoleClosed
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		for _, ch := range channels {
			if err := ch.Stop(); err != nil {
				slog.Warn("Channel stop error", "channel", ch.Name(), "err", err)
			}
		}
		msgBus.Close()
		return nil
	})

	err = g.Wait()
	if headless {
		fmt.Println("\n  Shutting down...")
	}
	if errors.Is(err, errConsoleClosed) {
		return nil
	}
	return err
}

var errConsoleClosed = errors.New("console closed")

// watchReload reloads the bridge config on SIGHUP. A config that fails to
// load is logged and the running table is kept.
func watchReload(ctx context.Context, router *bridge.Router, path string) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			reload(router, path)
		}
	}
}

func reload(router *bridge.Router, path string) bool {
	next, err := bridge.LoadFile(path)
	if err != nil {
		slog.Error("Bridge config reload failed, keeping the previous rules", "path", path, "err", err)
		return false
	}
	prev := router.Swap(next)
	slog.Info("Reloaded bridge config", "path", path,
		"rules", next.RuleCount(), "keys", next.Destinations().Len(),
		"previous_keys", prev.Destinations().Len())
	warnOverrides(next)
	return true
}

func warnOverrides(cfg *bridge.Config) {
	for _, key := range cfg.Destinations().Overrides() {
		slog.Warn("Routing key declared more than once, the last rule wins", "key", key)
	}
}
