package replay

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"journeyboard/internal/engine"
	"journeyboard/internal/storage"
)

const tracerName = "journeyboard/internal/replay"

var (
	ErrStepFailed    = errors.New("replay step failed")
	ErrScoreMismatch = errors.New("replay score mismatch")
)

// Result summarizes one replayed script.
type Result struct {
	Script     string              `json:"script"`
	GameID     string              `json:"game_id"`
	SnapshotID string              `json:"snapshot_id,omitempty"`
	Steps      int                 `json:"steps"`
	Events     int                 `json:"events"`
	Scores     []engine.ScoreEntry `json:"scores"`
}

// Runner replays scripts against one board configuration.
type Runner struct {
	board  *engine.PlayerBoard
	rules  *engine.RuleRegistry
	base   engine.GameConfig
	store  storage.Store
	logger *zap.Logger
	tracer trace.Tracer
}

// NewRunner returns a runner that builds every game from base. Finished
// games are saved to store when it is non-nil.
func NewRunner(board *engine.PlayerBoard, rules *engine.RuleRegistry, base engine.GameConfig, store storage.Store) *Runner {
	logger := base.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		board:  board,
		rules:  rules,
		base:   base,
		store:  store,
		logger: logger.Named("replay"),
		tracer: otel.Tracer(tracerName),
	}
}

// Run plays s to the end, finalizes the game and checks the expected totals.
func (r *Runner) Run(ctx context.Context, s Script) (res Result, err error) {
	ctx, span := r.tracer.Start(ctx, "replay.Run", trace.WithAttributes(
		attribute.String("replay.script", s.Name),
		attribute.Int("replay.steps", len(s.Steps)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	g, err := engine.NewGame(r.board, s.Players, s.config(r.base), r.rules)
	if err != nil {
		return Result{}, fmt.Errorf("setup: %w", err)
	}
	span.SetAttributes(attribute.String("game.id", g.ID))
	res = Result{Script: s.Name, GameID: g.ID}

	for i, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		events, err := g.Apply(step.Player, step.Action)
		switch {
		case step.ExpectRejected && err == nil:
			return Result{}, fmt.Errorf("%w: step %d (%s %s) was accepted", ErrStepFailed, i, step.Player, step.Action.Type)
		case step.ExpectRejected:
			r.logger.Debug("step rejected as expected", zap.Int("step", i), zap.Error(err))
		case err != nil:
			return Result{}, fmt.Errorf("%w: step %d (%s %s): %w", ErrStepFailed, i, step.Player, step.Action.Type, err)
		}
		res.Steps++
		res.Events += len(events)
	}

	end := g.EndGame()
	res.Events += len(end)
	res.Scores = g.State.Scores
	span.AddEvent("finalized", trace.WithAttributes(attribute.Int("replay.events", res.Events)))

	if err := checkExpect(s.Expect, res.Scores); err != nil {
		return Result{}, err
	}

	if r.store != nil {
		snap, err := g.Snapshot()
		if err != nil {
			return Result{}, err
		}
		rec, err := r.store.SaveSnapshot(ctx, storage.Record{Label: s.Name, Snapshot: snap})
		if err != nil {
			return Result{}, fmt.Errorf("save snapshot: %w", err)
		}
		res.SnapshotID = rec.ID
	}

	r.logger.Info("script replayed",
		zap.String("script", s.Name),
		zap.String("game", g.ID),
		zap.Int("steps", res.Steps),
		zap.Int("events", res.Events),
	)
	return res, nil
}

func checkExpect(expect map[string]int, scores []engine.ScoreEntry) error {
	totals := make(map[string]int, len(scores))
	for _, e := range scores {
		totals[e.PlayerID] = e.Total
	}
	for player, want := range expect {
		got, ok := totals[player]
		if !ok {
			return fmt.Errorf("%w: no score for player %s", ErrScoreMismatch, player)
		}
		if got != want {
			return fmt.Errorf("%w: player %s scored %d, want %d", ErrScoreMismatch, player, got, want)
		}
	}
	return nil
}
