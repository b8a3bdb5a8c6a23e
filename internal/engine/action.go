package engine

// ActionType identifies player actions sent to Game.Apply.
type ActionType string

const (
	ActionPlaceSeal        ActionType = "place_seal"
	ActionClaimObjective   ActionType = "claim_objective"
	ActionReserveObjective ActionType = "reserve_objective"
	ActionRevealTent       ActionType = "reveal_tent"
	ActionRevealStamp      ActionType = "reveal_stamp"
	ActionReactivateTent   ActionType = "reactivate_tent"
	ActionChoose           ActionType = "choose"
	ActionResearchSpecimen ActionType = "research_specimen"
	ActionAdjustCoins      ActionType = "adjust_coins"
)

// Action is a player's action input.
type Action struct {
	Type ActionType `json:"type"`
	// Params depend on Type:
	// place_seal: Row, Slot, Color
	// claim_objective: SlotID, optional Token naming a reserved tile
	// reserve_objective: Token (objective tile id)
	// reveal_tent, reveal_stamp, reactivate_tent: Index
	// choose: ChoiceID, Index
	// research_specimen: Token
	// adjust_coins: Amount (negative to spend)
	Row      int       `json:"row,omitempty"`
	Slot     int       `json:"slot,omitempty"`
	Color    SealColor `json:"color,omitempty"`
	SlotID   string    `json:"slot_id,omitempty"`
	Index    int       `json:"index,omitempty"`
	ChoiceID int       `json:"choice_id,omitempty"`
	Token    string    `json:"token,omitempty"`
	Amount   int       `json:"amount,omitempty"`
}

// EventType identifies events emitted by the engine.
type EventType string

const (
	EventSealPlaced           EventType = "seal_placed"
	EventObjectiveClaimed     EventType = "objective_claimed"
	EventObjectiveReserved    EventType = "objective_reserved"
	EventEffectApplied        EventType = "effect_applied"
	EventEffectDeferred       EventType = "effect_deferred"
	EventModifierRegistered   EventType = "modifier_registered"
	EventChoicePending        EventType = "choice_pending"
	EventChoiceResolved       EventType = "choice_resolved"
	EventEffectFailed         EventType = "effect_failed"
	EventEffectSkipped        EventType = "effect_skipped"
	EventBonusFired           EventType = "bonus_fired"
	EventDistinctionTriggered EventType = "distinction_triggered"
	EventSlotRevealed         EventType = "slot_revealed"
	EventCoinsAdjusted        EventType = "coins_adjusted"
	EventSpecimenResearched   EventType = "specimen_researched"
	EventGameOver             EventType = "game_over"
)

// Event is emitted by the engine after state changes.
type Event struct {
	Type   EventType   `json:"type"`
	Player string      `json:"player,omitempty"`
	Data   interface{} `json:"data,omitempty"`
}

// outcomeEvents translates resolver outcomes into events for player.
func outcomeEvents(player string, outcomes []Outcome) []Event {
	events := make([]Event, 0, len(outcomes))
	for _, o := range outcomes {
		data := map[string]interface{}{"effect": o.Effect.String()}
		var typ EventType
		switch {
		case o.Err != nil:
			typ = EventEffectFailed
			data["error"] = o.Err.Error()
		case o.Skipped:
			typ = EventEffectSkipped
			data["timing"] = string(o.Timing)
		case o.Choice != nil:
			typ = EventChoicePending
			data["choice_id"] = o.Choice.ID
			opts := make([]string, len(o.Choice.Options))
			for i, opt := range o.Choice.Options {
				opts[i] = opt.String()
			}
			data["options"] = opts
		case o.Modifier != nil:
			typ = EventModifierRegistered
			data["kind"] = string(o.Modifier.Kind)
			data["delta"] = o.Modifier.Delta
		case o.Deferred:
			typ = EventEffectDeferred
		default:
			typ = EventEffectApplied
			data["delta"] = o.Delta
		}
		events = append(events, Event{Type: typ, Player: player, Data: data})
	}
	return events
}
