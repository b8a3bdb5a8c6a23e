package engine

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Game wires one board configuration, its state and the rule components
// together. A Game is not safe for concurrent use; run separate games in
// separate goroutines instead.
type Game struct {
	ID     string       `json:"id"`
	Board  *PlayerBoard `json:"-"`
	State  *BoardState  `json:"state"`
	Phase  GamePhase    `json:"phase"`
	Config GameConfig   `json:"-"`

	validator *Validator
	resolver  *Resolver
	tracker   *Tracker
	scorer    *Scorer
	logger    *zap.Logger
}

// NewGame validates board and seats players. Any configuration error aborts
// setup.
func NewGame(board *PlayerBoard, players []string, config GameConfig, rules *RuleRegistry) (*Game, error) {
	if len(players) == 0 {
		return nil, fmt.Errorf("%w: no players", ErrInvalidAction)
	}
	seen := make(map[string]bool)
	for _, id := range players {
		if id == "" || seen[id] {
			return nil, fmt.Errorf("%w: player id %q empty or duplicated", ErrInvalidAction, id)
		}
		seen[id] = true
	}
	g, err := newGame(uuid.NewString(), board, config, rules)
	if err != nil {
		return nil, err
	}
	g.State = NewBoardState(board, players, config.StartingCoins)
	for _, p := range g.State.Players {
		p.TempKnowledge = config.StartingTempKnowledge
	}

	for _, row := range config.AutoUnlockRows {
		if _, ok := board.Row(row); !ok {
			return nil, fmt.Errorf("%w: auto-unlock row %d", ErrUnknownSlotReference, row)
		}
		for _, p := range g.State.Players {
			p.unlockRow(row)
		}
	}
	for _, row := range board.WorkerRows {
		if !row.HasStartingSpecialSeal {
			continue
		}
		first := row.SealSlots[0].SlotIndex
		for _, s := range row.SealSlots[1:] {
			first = min(first, s.SlotIndex)
		}
		for _, p := range g.State.Players {
			p.Seals = append(p.Seals, Seal{Row: row.RowIndex, Slot: first, Color: SealSpecial})
		}
	}

	g.Phase = PhasePlaying
	g.logger.Info("game created", zap.String("game", g.ID),
		zap.String("board", board.BoardID), zap.Strings("players", players))
	return g, nil
}

func newGame(id string, board *PlayerBoard, config GameConfig, rules *RuleRegistry) (*Game, error) {
	if board == nil {
		return nil, fmt.Errorf("%w: nil board", ErrInvalidBoard)
	}
	if err := board.Validate(); err != nil {
		return nil, err
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("game", id))
	sealRule, err := rules.New(config.SealOrder, board)
	if err != nil {
		return nil, fmt.Errorf("seal order: %w", err)
	}
	objectiveRule, err := rules.New(config.ObjectiveOrder, board)
	if err != nil {
		return nil, fmt.Errorf("objective order: %w", err)
	}
	resolver := NewResolver(board, logger)
	return &Game{
		ID:        id,
		Board:     board,
		Phase:     PhaseSetup,
		Config:    config,
		validator: NewValidator(board, sealRule, objectiveRule, logger),
		resolver:  resolver,
		tracker:   NewTracker(board),
		scorer:    NewScorer(resolver, logger),
		logger:    logger,
	}, nil
}

// Apply is the single entry point for player actions.
func (g *Game) Apply(playerID string, action Action) ([]Event, error) {
	if g.Phase == PhaseGameOver {
		return nil, ErrGameOver
	}
	if g.Phase != PhasePlaying {
		return nil, ErrWrongPhase
	}
	if _, err := g.State.Player(playerID); err != nil {
		return nil, err
	}
	if action.Type != ActionChoose && len(g.State.PendingFor(playerID)) > 0 {
		return nil, ErrChoicePending
	}

	switch action.Type {
	case ActionPlaceSeal:
		return g.applyPlaceSeal(playerID, action)
	case ActionClaimObjective:
		return g.applyClaimObjective(playerID, action)
	case ActionReserveObjective:
		return g.applyReserveObjective(playerID, action)
	case ActionRevealTent:
		return g.applyReveal(playerID, action.Index, SourceTent)
	case ActionRevealStamp:
		return g.applyReveal(playerID, action.Index, SourceStamp)
	case ActionReactivateTent:
		return g.applyReactivateTent(playerID, action)
	case ActionChoose:
		return g.applyChoose(playerID, action)
	case ActionResearchSpecimen:
		return g.applyResearchSpecimen(playerID, action)
	case ActionAdjustCoins:
		return g.applyAdjustCoins(playerID, action)
	default:
		return nil, ErrInvalidAction
	}
}

func (g *Game) applyPlaceSeal(playerID string, action Action) ([]Event, error) {
	q, err := g.validator.CommitSeal(g.State, playerID, action.Row, action.Slot, action.Color)
	if err != nil {
		return nil, err
	}
	p, _ := g.State.Player(playerID)
	placed := p.Seals[len(p.Seals)-1]
	events := []Event{
		{Type: EventSealPlaced, Player: playerID, Data: map[string]interface{}{
			"row": placed.Row, "slot": placed.Slot, "color": string(placed.Color),
			"base": q.Base, "modifier": q.Modifier, "cost": q.Cost,
		}},
	}

	row, _ := g.Board.Row(action.Row)
	slot, _ := row.Slot(action.Slot)
	if slot.RewardAction != nil {
		outcomes := g.resolver.Resolve(g.State, playerID, []Effect{*slot.RewardAction}, FilterAll, sealSource(action.Row, action.Slot))
		events = append(events, outcomeEvents(playerID, outcomes)...)
	}
	if slot.DistinctionTrigger != "" {
		p.Distinctions[slot.DistinctionTrigger]++
		events = append(events, Event{Type: EventDistinctionTriggered, Player: playerID, Data: map[string]interface{}{
			"tier": string(slot.DistinctionTrigger), "count": p.Distinctions[slot.DistinctionTrigger],
		}})
		events = append(events, g.awardBonuses(g.tracker.EvaluateTier(g.State, slot.DistinctionTrigger))...)
	}
	return events, nil
}

func (g *Game) applyClaimObjective(playerID string, action Action) ([]Event, error) {
	var reserveSlot string
	if action.Token != "" {
		var ok bool
		if reserveSlot, ok = g.State.ReservedSlotOf(playerID, action.Token); !ok {
			return nil, fmt.Errorf("%w: tile %s is not in reserve", ErrInvalidAction, action.Token)
		}
	}
	q, err := g.validator.CommitObjective(g.State, playerID, action.SlotID)
	if err != nil {
		return nil, err
	}
	data := map[string]interface{}{
		"base": q.Base, "modifier": q.Modifier, "cost": q.Cost,
	}
	if reserveSlot != "" {
		p, _ := g.State.Player(playerID)
		delete(p.Reserve, reserveSlot)
		data["tile"] = action.Token
		data["from_reserve"] = reserveSlot
	}
	slot, _ := g.Board.Objective(action.SlotID)
	data["slot_id"] = slot.SlotID
	data["tier"] = string(slot.Type)
	events := []Event{{Type: EventObjectiveClaimed, Player: playerID, Data: data}}
	src := Source{Kind: SourceObjectiveSlot, Ref: slot.SlotID}
	outcomes := g.resolver.Resolve(g.State, playerID, slot.RewardAction, FilterAll, src)
	events = append(events, outcomeEvents(playerID, outcomes)...)
	events = append(events, g.awardBonuses(g.tracker.EvaluateSlot(g.State, slot.SlotID))...)
	return events, nil
}

// applyReserveObjective puts an objective tile into the lowest free reserve
// slot.
func (g *Game) applyReserveObjective(playerID string, action Action) ([]Event, error) {
	if action.Token == "" {
		return nil, fmt.Errorf("%w: reserve needs a tile id", ErrInvalidAction)
	}
	if _, ok := g.State.ReservedSlotOf(playerID, action.Token); ok {
		return nil, fmt.Errorf("%w: tile %s is already reserved", ErrInvalidAction, action.Token)
	}
	p, _ := g.State.Player(playerID)
	for _, slot := range g.Board.Reserve() {
		if _, taken := p.Reserve[slot.SlotID]; taken {
			continue
		}
		p.Reserve[slot.SlotID] = action.Token
		return []Event{
			{Type: EventObjectiveReserved, Player: playerID, Data: map[string]interface{}{
				"slot_id": slot.SlotID, "tile": action.Token,
			}},
		}, nil
	}
	return nil, fmt.Errorf("%w: %d slots", ErrReserveFull, len(g.Board.ReserveSlots))
}

func (g *Game) awardBonuses(fired []FiredBonus) []Event {
	var events []Event
	for _, f := range fired {
		events = append(events, Event{Type: EventBonusFired, Player: f.Player, Data: map[string]interface{}{
			"bonus_id": f.BonusID, "reward": f.Reward.String(),
		}})
		g.logger.Debug("pair bonus fired", zap.String("player", f.Player), zap.String("bonus", f.BonusID))
		src := Source{Kind: SourcePairBonus, Ref: f.BonusID}
		outcomes := g.resolver.Resolve(g.State, f.Player, []Effect{f.Reward}, FilterAll, src)
		events = append(events, outcomeEvents(f.Player, outcomes)...)
	}
	return events
}

func (g *Game) applyReveal(playerID string, index int, kind SourceKind) ([]Event, error) {
	p, _ := g.State.Player(playerID)
	var (
		slot     RevealSlot
		ok       bool
		revealed *[]int
	)
	if kind == SourceTent {
		slot, ok = g.Board.Tent(index)
		revealed = &p.TentsRevealed
	} else {
		slot, ok = g.Board.Stamp(index)
		revealed = &p.StampsRevealed
	}
	if !ok {
		return nil, fmt.Errorf("%w: no %s slot %d", ErrInvalidAction, kind, index)
	}
	if slices.Contains(*revealed, index) {
		return nil, fmt.Errorf("%w: %s slot %d", ErrAlreadyRevealed, kind, index)
	}
	*revealed = append(*revealed, index)

	events := []Event{
		{Type: EventSlotRevealed, Player: playerID, Data: map[string]interface{}{
			"kind": string(kind), "index": index, "empty": slot.RevealedAction == nil,
		}},
	}
	if slot.RevealedAction != nil {
		src := Source{Kind: kind, Ref: fmt.Sprint(index)}
		outcomes := g.resolver.Resolve(g.State, playerID, []Effect{*slot.RevealedAction}, FilterAll, src)
		events = append(events, outcomeEvents(playerID, outcomes)...)
	}
	return events, nil
}

func (g *Game) applyReactivateTent(playerID string, action Action) ([]Event, error) {
	p, _ := g.State.Player(playerID)
	if p.TentReactivations == 0 {
		return nil, fmt.Errorf("%w: tent reactivation", ErrNoCredit)
	}
	slot, ok := g.Board.Tent(action.Index)
	if !ok {
		return nil, fmt.Errorf("%w: no tent slot %d", ErrInvalidAction, action.Index)
	}
	if !slices.Contains(p.TentsRevealed, action.Index) {
		return nil, fmt.Errorf("%w: tent slot %d is not revealed", ErrInvalidAction, action.Index)
	}
	if slot.RevealedAction == nil {
		return nil, fmt.Errorf("%w: tent slot %d is empty", ErrInvalidAction, action.Index)
	}
	p.TentReactivations--

	events := []Event{
		{Type: EventSlotRevealed, Player: playerID, Data: map[string]interface{}{
			"kind": string(SourceTent), "index": action.Index, "reactivated": true,
		}},
	}
	src := Source{Kind: SourceTent, Ref: fmt.Sprint(action.Index)}
	outcomes := g.resolver.Resolve(g.State, playerID, []Effect{*slot.RevealedAction}, FilterAll, src)
	return append(events, outcomeEvents(playerID, outcomes)...), nil
}

func (g *Game) applyChoose(playerID string, action Action) ([]Event, error) {
	choiceID := action.ChoiceID
	if choiceID == 0 {
		pending := g.State.PendingFor(playerID)
		if len(pending) == 0 {
			return nil, ErrNoPendingChoice
		}
		choiceID = pending[0].ID
	}
	outcomes, err := g.resolver.ResolveChoice(g.State, playerID, choiceID, action.Index, FilterAll)
	if err != nil {
		return nil, err
	}
	events := []Event{
		{Type: EventChoiceResolved, Player: playerID, Data: map[string]interface{}{
			"choice_id": choiceID, "index": action.Index, "option": outcomes[0].Effect.String(),
		}},
	}
	return append(events, outcomeEvents(playerID, outcomes)...), nil
}

func (g *Game) applyResearchSpecimen(playerID string, action Action) ([]Event, error) {
	p, _ := g.State.Player(playerID)
	if p.ResearchCredits == 0 {
		return nil, fmt.Errorf("%w: specimen research", ErrNoCredit)
	}
	if !g.Board.HasSpecimen(action.Token) {
		return nil, fmt.Errorf("%w: %q is not on the specimen grid", ErrInvalidAction, action.Token)
	}
	if slices.Contains(p.Specimens, action.Token) {
		return nil, fmt.Errorf("%w: %s already researched", ErrInvalidAction, action.Token)
	}
	p.ResearchCredits--
	p.Specimens = append(p.Specimens, action.Token)
	return []Event{
		{Type: EventSpecimenResearched, Player: playerID, Data: map[string]interface{}{"token": action.Token}},
	}, nil
}

func (g *Game) applyAdjustCoins(playerID string, action Action) ([]Event, error) {
	if err := g.State.AdjustCoins(playerID, action.Amount); err != nil {
		return nil, err
	}
	p, _ := g.State.Player(playerID)
	return []Event{
		{Type: EventCoinsAdjusted, Player: playerID, Data: map[string]interface{}{
			"amount": action.Amount, "coins": p.Coins,
		}},
	}, nil
}

// QuoteSeal reports the cost of a seal placement without placing it.
func (g *Game) QuoteSeal(playerID string, row, slot int) (Quote, error) {
	return g.validator.QuoteSeal(g.State, playerID, row, slot)
}

// QuoteObjective reports the cost of an objective claim without claiming.
func (g *Game) QuoteObjective(playerID, slotID string) (Quote, error) {
	return g.validator.QuoteObjective(g.State, playerID, slotID)
}

// EffectiveCost applies the player's standing modifiers for kind to base.
func (g *Game) EffectiveCost(playerID string, kind Kind, base int) int {
	return g.State.EffectiveCost(playerID, kind, base)
}

// PendingChoices returns the choices playerID must resolve before acting.
func (g *Game) PendingChoices(playerID string) []PendingChoice {
	return g.State.PendingFor(playerID)
}

// Player returns the state of one player.
func (g *Game) Player(id string) (*PlayerState, error) {
	return g.State.Player(id)
}

// Finalize settles deferred effects and ends the game. Choices still
// pending are forfeited. Calling it again returns the same scores.
func (g *Game) Finalize() []ScoreEntry {
	if len(g.State.Pending) > 0 {
		g.logger.Warn("forfeiting unresolved choices", zap.Int("count", len(g.State.Pending)))
		g.State.Pending = nil
	}
	scores := g.scorer.Finalize(g.State)
	g.Phase = PhaseGameOver
	return scores
}

// EndGame finalizes and reports the result as a game_over event.
func (g *Game) EndGame() []Event {
	scores := g.Finalize()
	return []Event{{Type: EventGameOver, Data: map[string]interface{}{"scores": scores}}}
}
