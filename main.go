package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"istat/bar"
	"istat/blocks"
	"istat/clicks"
	"istat/config"
	"istat/dispatch"
	"istat/ipc"
	"istat/logging"
	"istat/report"
	"istat/shell"
	"istat/signals"
	"istat/theme"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "istat: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath, socketPath string
	cmd := &cobra.Command{
		Use:           "istat",
		Short:         "A status line generator for i3bar and swaybar",
		Version:       report.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configPath, socketPath, os.Stdin, os.Stdout)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file, without or with its extension (default $XDG_CONFIG_HOME/istat/config)")
	cmd.Flags().StringVar(&socketPath, "socket", "", "path of the ipc socket (default $I3SOCK.istat or $SWAYSOCK.istat)")
	return cmd
}

// run starts the bar and blocks until it shuts down. A clean shutdown
// returns nil.
func run(parent context.Context, configPath, socketPath string, stdin io.Reader, stdout io.Writer) error {
	logging.InitFromEnv()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	sock, err := cfg.ResolveSocket(socketPath)
	if err != nil {
		return err
	}
	table, err := signals.NewTable(cfg.Items)
	if err != nil {
		return err
	}
	items, err := blocks.BuildItems(cfg)
	if err != nil {
		return err
	}
	if err := report.Init(cfg.SentryDSN); err != nil {
		logging.WarnLog.Printf("sentry disabled: %v", err)
	}
	defer report.Flush()

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	shared := config.NewShared(cfg)
	b := bar.New(len(cfg.Items))
	disp := dispatch.New(len(cfg.Items))
	router := actionRouter{items: cfg.Items, next: disp}

	printer := bar.NewPrinter(stdout, b, shared)
	if err := printer.Start(blocks.DefaultHeader()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	srv, err := ipc.Listen(sock, ipc.Runtime{
		Config:     shared,
		Bar:        b,
		Dispatcher: disp,
		Clicks:     router,
		Shutdown:   cancel,
	})
	if err != nil {
		return err
	}

	sup := blocks.NewSupervisor(shared, disp)
	for i, item := range items {
		sup.Spawn(ctx, i, cfg.Items[i].DisplayName(), item)
	}

	go clicks.Read(stdin, router)
	go signals.NewRouter(table, disp, cancel).Run(ctx)
	if w, err := config.NewWatcher(cfg); err != nil {
		logging.WarnLog.Printf("config watcher disabled: %v", err)
	} else {
		go w.Run(ctx, func(t theme.Theme) {
			shared.SetTheme(t)
			disp.ManualRefresh()
		})
	}

	errs := make(chan error, 2)
	go func() { errs <- srv.Serve(ctx) }()
	go func() { errs <- printer.Run(ctx, sup.Updates(), disp.Refresh()) }()

	var first error
	for range 2 {
		if err := <-errs; err != nil && first == nil {
			first = err
			cancel()
		}
	}
	logging.InfoLog.Print("shut down")
	return first
}

// actionRouter runs the commands configured for a click. A click that
// matched an action is consumed, anything else goes on to the item.
type actionRouter struct {
	items []config.Item
	next  clicks.Router
	spawn func(string)
}

func (r actionRouter) RouteClick(idx int, c clicks.Click) error {
	if idx >= 0 && idx < len(r.items) {
		cmds := r.items[idx].Actions.For(c.Button).Commands(c)
		if len(cmds) > 0 {
			spawn := r.spawn
			if spawn == nil {
				spawn = shell.Spawn
			}
			for _, cmd := range cmds {
				spawn(cmd)
			}
			return nil
		}
	}
	return r.next.RouteClick(idx, c)
}
