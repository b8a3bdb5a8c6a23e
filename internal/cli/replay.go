package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"journeyboard/internal/boardconfig"
	"journeyboard/internal/engine"
	"journeyboard/internal/platform/logging"
	"journeyboard/internal/platform/otel"
	"journeyboard/internal/replay"
	"journeyboard/internal/storage"
)

const otelShutdownTimeout = 5 * time.Second

func runReplay(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, fs, err := parseConfig("replay", args, stderr, func(fs *flag.FlagSet, c *Config) {
		bindBoard(fs, c)
		bindStore(fs, c)
		bindGame(fs, c)
	})
	if err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return usageError("replay needs at least one script")
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	shutdown, err := otel.Setup(ctx, otel.Config{
		Enabled:     cfg.OTelEnabled,
		Endpoint:    cfg.OTelEndpoint,
		ServiceName: "journeyboard",
	})
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), otelShutdownTimeout)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			logger.Warn("tracing shutdown", zap.Error(err))
		}
	}()

	board, err := boardconfig.Load(cfg.BoardPath)
	if err != nil {
		return err
	}
	reg, err := cfg.registry()
	if err != nil {
		return err
	}
	scripts := make([]replay.Script, 0, fs.NArg())
	for _, path := range fs.Args() {
		s, err := replay.LoadScript(path)
		if err != nil {
			return err
		}
		scripts = append(scripts, s)
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = storage.CloseIfSupported(store) }()

	runner := replay.NewRunner(board, reg, engine.GameConfig{
		StartingCoins:         cfg.StartingCoins,
		StartingTempKnowledge: cfg.StartingTempKnowledge,
		SealOrder:             cfg.SealOrder,
		ObjectiveOrder:        cfg.ObjectiveOrder,
		Logger:                logger,
	}, store)
	results, err := runner.RunBatch(ctx, scripts, cfg.Workers)
	if err != nil {
		return err
	}
	printResults(stdout, results)
	return nil
}

func openStore(ctx context.Context, cfg Config) (storage.Store, error) {
	store, err := storage.NewStore(cfg.Store, cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("init %s store: %w", cfg.Store, err)
	}
	return store, nil
}

func printResults(w io.Writer, results []replay.Result) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "script\tplayer\timmediate\tdeferred\tbonus\ttotal\tsnapshot")
	for _, res := range results {
		for _, e := range res.Scores {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
				res.Script, e.PlayerID, e.ImmediateVP, e.DeferredVP, e.BonusVP, e.Total, res.SnapshotID)
		}
	}
	_ = tw.Flush()
}
