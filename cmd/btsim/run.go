package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/zeusync/behave/internal/core/agent"
	"github.com/zeusync/behave/internal/core/bt"
	"github.com/zeusync/behave/internal/core/observability/log"
	"github.com/zeusync/behave/internal/injector"
)

type runOptions struct {
	ticks       uint64
	interval    time.Duration
	seed        int64
	agents      int
	concurrency int
	poolLimit   int
	metricsAddr string
	watchAddr   string
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Build agents from a tree config and drive them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runSimulation(ctx, cmd, args[0], opts)
		},
	}

	flags := cmd.Flags()
	flags.Uint64Var(&opts.ticks, "ticks", 10, "number of ticks to run, 0 runs until interrupted")
	flags.DurationVar(&opts.interval, "interval", 100*time.Millisecond, "time between ticks, 0 ticks as fast as possible")
	flags.Int64Var(&opts.seed, "seed", 0, "selector shuffle seed, overrides the config seed")
	flags.IntVar(&opts.agents, "agents", 1, "number of agents built from the config")
	flags.IntVar(&opts.concurrency, "concurrency", 0, "agents stepped at once, 0 steps all")
	flags.IntVar(&opts.poolLimit, "pool-limit", 0, "async tasks running at once, 0 is unbounded")
	flags.StringVar(&opts.metricsAddr, "metrics", "", "serve prometheus metrics on this address")
	flags.StringVar(&opts.watchAddr, "watch", "", "serve a websocket tick feed on this address at /ws")
	return cmd
}

func runSimulation(ctx context.Context, cmd *cobra.Command, path string, opts *runOptions) error {
	if opts.agents < 1 {
		return fmt.Errorf("--agents must be at least 1, got %d", opts.agents)
	}
	level, err := logLevel(cmd)
	if err != nil {
		return err
	}

	cfg, err := bt.LoadFile(path)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = &opts.seed
	}

	registry := prometheus.NewRegistry()
	rt, cleanup, err := injector.InitializeRuntime(injector.Options{
		Level:      level,
		Registerer: registry,
		Manager:    agent.ManagerConfig{Concurrency: opts.concurrency},
		PoolLimit:  opts.poolLimit,
	})
	if err != nil {
		return err
	}
	defer cleanup()
	logger := rt.Logger.With(log.String("config", path))

	for i := range opts.agents {
		agentCfg := *cfg
		if cfg.Seed != nil {
			// agents share the tree shape but not the shuffle sequence
			seed := *cfg.Seed + int64(i)
			agentCfg.Seed = &seed
		}
		tree, err := agentCfg.Build(bt.BuildOptions{Scheduler: rt.Pool, Logger: rt.Logger})
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		a := agent.New(fmt.Sprintf("%s-%d", tree.GetName(), i), tree, agent.WithLogger(rt.Logger))
		if err := rt.Manager.Add(a); err != nil {
			return err
		}
	}

	if opts.metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		shutdown, err := serve(opts.metricsAddr, mux, logger)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	var hub *watchHub
	if opts.watchAddr != "" {
		hub = newWatchHub(logger)
		mux := http.NewServeMux()
		mux.Handle("/ws", hub)
		shutdown, err := serve(opts.watchAddr, mux, logger)
		if err != nil {
			return err
		}
		defer shutdown()
		defer hub.closeAll()
	}

	if hub != nil {
		sub := rt.Manager.Decisions().Subscribe(func(d agent.Decision) error {
			hub.publish(frameFor(d))
			return nil
		})
		defer sub.Cancel()
	}

	driver := agent.NewDriver(rt.Manager,
		agent.WithInterval(opts.interval),
		agent.WithMaxTicks(opts.ticks),
		agent.WithDriverLogger(logger),
		agent.OnTick(func(tick uint64, err error) {
			if err == nil && tick%100 == 0 {
				logger.Debug("simulation progress", log.Uint64("tick", tick))
			}
		}),
	)

	logger.Info("simulation started",
		log.Int("agents", opts.agents),
		log.Uint64("ticks", opts.ticks),
		log.Duration("interval", opts.interval),
	)
	ran := driver.Run(ctx)
	logger.Info("simulation finished", log.Uint64("ticks", ran))

	out := cmd.OutOrStdout()
	for _, a := range rt.Manager.Agents() {
		fmt.Fprintf(out, "%s ticks=%d", a.Name(), a.Tree().Ticks())
		if last, ok := a.Last(); ok {
			for _, b := range last.Branches {
				fmt.Fprintf(out, " %s=%s", b.Name, b.State)
			}
		}
		fmt.Fprintln(out)
	}
	return nil
}

func frameFor(d agent.Decision) TickFrame {
	frame := TickFrame{
		Tick:     d.Record.Tick,
		Agent:    d.Agent.Name(),
		Branches: d.Record.Branches,
		Keys:     d.Agent.BlackboardKeys(),
	}
	if d.Err != nil {
		frame.Error = d.Err.Error()
	} else {
		frame.State = d.Record.State.String()
	}
	return frame
}

// serve listens on addr and returns a func that shuts the server down.
func serve(addr string, handler http.Handler, logger log.Log) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server stopped", log.String("addr", addr), log.Error(err))
		}
	}()
	logger.Info("http server listening", log.String("addr", ln.Addr().String()))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
