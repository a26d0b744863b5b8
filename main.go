package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dripcompounder/agents"
	"dripcompounder/config"
	"dripcompounder/metrics"
	"dripcompounder/utils"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

type Server struct {
	quit           chan os.Signal
	agents         []agents.Agent
	interval       time.Duration
	metrics        *metrics.Metrics
	metricsAddress string
	logger         *logrus.Entry
}

// NewServer builds the enabled agents in execution order: garden, then faucet.
func NewServer(cfg *config.Config, backend utils.ChainBackend, logger *logrus.Logger, m *metrics.Metrics) (*Server, error) {
	var list []agents.Agent
	if cfg.CompoundGarden {
		garden, err := agents.NewGardenCompounder(cfg, backend, logger, m)
		if err != nil {
			return nil, err
		}
		list = append(list, garden)
	}
	if cfg.CompoundFaucet {
		faucet, err := agents.NewFaucetCompounder(cfg, backend, logger, m)
		if err != nil {
			return nil, err
		}
		list = append(list, faucet)
	}

	quitChan := make(chan os.Signal, 1)
	signal.Notify(quitChan, syscall.SIGTERM)
	signal.Notify(quitChan, syscall.SIGINT)
	return &Server{
		quit:           quitChan,
		agents:         list,
		interval:       cfg.PollInterval,
		metrics:        m,
		metricsAddress: cfg.MetricsAddress,
		logger:         logrus.NewEntry(logger),
	}, nil
}

func (s *Server) NotifyQuitSignal(ctx context.Context, cancel context.CancelFunc) {
	select {
	case sig := <-s.quit:
		s.logger.Infof("Caught sig: %+v", sig)
		cancel()
	case <-ctx.Done():
	}
}

// Run executes the agents until ctx is cancelled or a quit signal arrives.
func (s *Server) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer signal.Stop(s.quit)
	go s.NotifyQuitSignal(ctx, cancel)

	if s.metricsAddress != "" && s.metrics != nil {
		go s.metrics.Serve(ctx, s.metricsAddress, s.logger)
	}
	executeAgents(ctx, s.agents, s.interval)
}

// executeAgents runs every agent once per cycle, in order, on the calling
// goroutine, pausing interval between cycles.
func executeAgents(ctx context.Context, list []agents.Agent, interval time.Duration) {
	if len(list) == 0 {
		return
	}
	for {
		for _, a := range list {
			if ctx.Err() != nil {
				return
			}
			a.Execute(ctx)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
	}
}

func main() {
	fs := config.NewFlagSet()
	cfg, err := config.Load(fs, os.Args[1:])
	if err != nil {
		switch {
		case errors.Is(err, pflag.ErrHelp):
			os.Exit(0)
		case errors.Is(err, config.ErrMissingCredentials):
			fs.Usage()
			os.Exit(2)
		}
		logrus.Fatalf("Could not load configuration: %v", err)
	}

	logger := utils.NewLogger(cfg.LogLevel, cfg.LogFile)
	if !cfg.CompoundGarden && !cfg.CompoundFaucet {
		logger.Info("Neither garden nor faucet compounding is enabled, nothing to do")
		return
	}

	ctx := context.Background()
	client, err := utils.DialChain(ctx, cfg.RPCHost)
	if err != nil {
		logger.Fatalf("Could not connect to chain: %v", err)
	}
	defer client.Close()

	s, err := NewServer(cfg, client, logger, metrics.New())
	if err != nil {
		logger.Fatalf("Could not create agents: %v", err)
	}
	s.Run(ctx)
	logger.Info("Server stopped gracefully!")
}
