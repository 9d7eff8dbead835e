package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/ykhdr/dict-attack/common/amqp"
	"github.com/ykhdr/dict-attack/common/amqp/publisher"
	"github.com/ykhdr/dict-attack/common/consul"
	"github.com/ykhdr/dict-attack/common/store/mongo"
	"github.com/ykhdr/dict-attack/config"
	"github.com/ykhdr/dict-attack/internal/attack"
	"github.com/ykhdr/dict-attack/internal/digest"
	"github.com/ykhdr/dict-attack/internal/results"
	"github.com/ykhdr/dict-attack/internal/server"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

type crackOptions struct {
	*rootOptions
	algorithm     string
	workers       int
	batchSize     int
	queueCapacity int
	progress      string
	statusAddr    string
	dedup         bool
}

func newCrackCommand(root *rootOptions) *cobra.Command {
	opts := &crackOptions{rootOptions: root}
	cmd := &cobra.Command{
		Use:   "crack <targets> <dictionary> [output]",
		Short: "Run a dictionary attack against a targets file",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, args)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.algorithm, "algorithm", "a", digest.DefaultAlgorithm, "digest algorithm of the target hashes")
	f.IntVarP(&opts.workers, "workers", "w", 0, "worker goroutines (default: number of CPUs)")
	f.IntVar(&opts.batchSize, "batch-size", 0, "candidates per batch (default: chosen from dictionary size)")
	f.IntVar(&opts.queueCapacity, "queue-capacity", 0, "batches waiting for a worker (default: 4 per worker)")
	f.StringVar(&opts.progress, "progress", string(config.ProgressAuto), "progress line: auto, always or never")
	f.StringVar(&opts.statusAddr, "status-addr", "", "serve /api/progress on this address while the attack runs")
	f.BoolVar(&opts.dedup, "dedup", false, "drop repeated dictionary words")
	return cmd
}

// applyFlags lets explicitly set flags override the config file.
func (o *crackOptions) applyFlags(cmd *cobra.Command, cfg *config.AttackConfig) {
	f := cmd.Flags()
	if f.Changed("algorithm") {
		cfg.Algorithm = o.algorithm
	}
	if f.Changed("workers") {
		cfg.Workers = o.workers
	}
	if f.Changed("batch-size") {
		cfg.BatchSize = o.batchSize
	}
	if f.Changed("queue-capacity") {
		cfg.QueueCapacity = o.queueCapacity
	}
	if f.Changed("progress") {
		if cfg.Progress == nil {
			cfg.Progress = &config.ProgressConfig{}
		}
		cfg.Progress.Mode = o.progress
	}
	if f.Changed("status-addr") {
		if cfg.Status == nil {
			cfg.Status = &config.StatusConfig{}
		}
		cfg.Status.Addr = o.statusAddr
	}
	if f.Changed("dedup") {
		cfg.Dedup = o.dedup
	}
}

func (o *crackOptions) run(cmd *cobra.Command, args []string) error {
	cfg, err := config.InitializeConfig(o.configPath)
	if err != nil {
		return err
	}
	o.applyFlags(cmd, cfg)

	alg, err := digest.ParseAlgorithm(cfg.Algorithm)
	if err != nil {
		return err
	}
	mode := config.ProgressAuto
	if cfg.Progress != nil {
		if mode, err = config.ParseProgressMode(cfg.Progress.Mode); err != nil {
			return err
		}
	}
	out := cmd.OutOrStdout()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outputPath := "out.txt"
	if cfg.Output != nil && cfg.Output.File != "" {
		outputPath = cfg.Output.File
	}
	if len(args) > 2 {
		outputPath = args[2]
	}
	sinks, closeSinks, err := openSinks(ctx, cfg, outputPath)
	if err != nil {
		return err
	}
	defer closeSinks()

	svc := attack.NewService(attack.Options{
		Algorithm:    alg,
		Engine:       cfg.EngineConfig(),
		Progress:     cfg.ProgressConfig(),
		ShowProgress: showProgress(mode, out),
		Dedup:        cfg.Dedup,
		Out:          out,
		Sinks:        sinks,
	})
	req := attack.Request{TargetsPath: args[0], DictionaryPath: args[1]}

	if cfg.Status == nil || cfg.Status.Addr == "" {
		_, err = svc.Run(ctx, req)
		return err
	}

	var consulClient consul.Client
	if cfg.Status.ConsulConfig.Enabled() {
		if consulClient, err = consul.NewClient(cfg.Status.ConsulConfig); err != nil {
			return err
		}
	}
	srv := server.NewServer(cfg.Status.Addr, svc, consulClient)
	group, gCtx := errgroup.WithContext(ctx)
	srvCtx, stopSrv := context.WithCancel(gCtx)
	group.Go(func() error {
		return srv.Start(srvCtx)
	})
	group.Go(func() error {
		defer stopSrv()
		_, err := svc.Run(gCtx, req)
		return err
	})
	return group.Wait()
}

func showProgress(mode config.ProgressMode, out io.Writer) bool {
	switch mode {
	case config.ProgressAlways:
		return true
	case config.ProgressNever:
		return false
	}
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func openSinks(ctx context.Context, cfg *config.AttackConfig, outputPath string) (results.Sink, func(), error) {
	sinks := results.MultiSink{results.NewFileSink(outputPath)}
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.MongoDBConfig.Enabled() {
		client, coll, err := mongo.Open(ctx, cfg.MongoDBConfig)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Warn().Err(err).Msg("failed to disconnect from MongoDB")
			}
		})
		sinks = append(sinks, results.NewMongoSink(coll))
	}

	if cfg.AmqpConfig.Enabled() {
		sink, closeAmqp, err := openAmqpSink(ctx, cfg.AmqpConfig)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, closeAmqp)
		sinks = append(sinks, sink)
	}
	return sinks, closeAll, nil
}

func openAmqpSink(ctx context.Context, cfg *amqp.Config) (results.Sink, func(), error) {
	conn, err := amqp.Dial(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel(ctx)
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	pubCfg := cfg.PublisherConfig.ToPublisherConfig()
	if pubCfg.Exchange != "" {
		if err = ch.ExchangeDeclare(pubCfg.Exchange, "topic"); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return nil, nil, errors.Wrap(err, "failed to prepare results exchange")
		}
	}
	closeFn := func() {
		if err := ch.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close amqp channel")
		}
		if err := conn.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close amqp connection")
		}
	}
	return results.NewAmqpSink(publisher.New[results.Summary](ch, pubCfg)), closeFn, nil
}
