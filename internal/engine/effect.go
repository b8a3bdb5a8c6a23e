package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Kind identifies an effect variant. The set is closed: ParseEffect rejects
// anything not listed here.
type Kind string

const (
	KindGainVP            Kind = "GAIN_VP"
	KindGainCoins         Kind = "GAIN_COINS"
	KindGainTempKnowledge Kind = "GAIN_TEMP_KNOWLEDGE"
	KindAdvanceTheory     Kind = "ADVANCE_THEORY"

	KindNavigate       Kind = "NAVIGATE"
	KindExplore        Kind = "EXPLORE"
	KindAcademy        Kind = "ACADEMY"
	KindCorrespondence Kind = "CORRESPONDENCE"
	KindPlaceSeal      Kind = "PLACE_SEAL"
	KindPlaceObjective Kind = "PLACE_OBJECTIVE"

	KindChoice Kind = "CHOICE"

	KindUnlockWorker5    Kind = "OBJECTIVE_UNLOCK_WORKER_5"
	KindReactivateTent   Kind = "OBJECTIVE_REACTIVATE_TENT"
	KindResearchSpecimen Kind = "OBJECTIVE_RESEARCH_SPECIMEN"
)

type kindClass int

const (
	classGain kindClass = iota + 1
	classAction
	classChoice
	classObjective
)

var kindClasses = map[Kind]kindClass{
	KindGainVP:            classGain,
	KindGainCoins:         classGain,
	KindGainTempKnowledge: classGain,
	KindAdvanceTheory:     classGain,
	KindNavigate:          classAction,
	KindExplore:           classAction,
	KindAcademy:           classAction,
	KindCorrespondence:    classAction,
	KindPlaceSeal:         classAction,
	KindPlaceObjective:    classAction,
	KindChoice:            classChoice,
	KindUnlockWorker5:     classObjective,
	KindReactivateTent:    classObjective,
	KindResearchSpecimen:  classObjective,
}

// Valid reports whether k is a known effect kind.
func (k Kind) Valid() bool {
	_, ok := kindClasses[k]
	return ok
}

// IsAction reports whether k names an action whose cost can be modified.
func (k Kind) IsAction() bool {
	return kindClasses[k] == classAction
}

// Timing is when an effect's consequence applies.
type Timing string

const (
	TimingImmediate Timing = "IMMEDIATE"
	TimingPassive   Timing = "PASSIVE"
	TimingEndgame   Timing = "ENDGAME"
)

func (t Timing) valid() bool {
	switch t {
	case TimingImmediate, TimingPassive, TimingEndgame:
		return true
	}
	return false
}

// MaxEffectDepth bounds CHOICE nesting at parse and resolution time.
const MaxEffectDepth = 8

// Effect is the interpreted unit of the board configuration.
type Effect struct {
	Kind         Kind     `json:"type"`
	Value        *int     `json:"value,omitempty"`
	CostModifier *int     `json:"cost_modifier,omitempty"`
	Timing       Timing   `json:"timing,omitempty"`
	Options      []Effect `json:"options,omitempty"`
	ChoiceSource string   `json:"choice_source,omitempty"`
}

// Int returns a pointer to v, for building effects in code.
func Int(v int) *int { return &v }

// Amount returns the effect's magnitude. Actions and unlocks default to 1.
func (e Effect) Amount() int {
	if e.Value != nil {
		return *e.Value
	}
	if kindClasses[e.Kind] == classGain {
		return 0
	}
	return 1
}

// EffectiveTiming returns the timing the resolver dispatches on.
func (e Effect) EffectiveTiming() Timing {
	if e.Timing != "" {
		return e.Timing
	}
	if e.CostModifier != nil {
		return TimingPassive
	}
	return TimingImmediate
}

func (e Effect) String() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Value != nil {
		fmt.Fprintf(&b, " %d", *e.Value)
	}
	if e.CostModifier != nil {
		fmt.Fprintf(&b, " cost%+d", *e.CostModifier)
	}
	if e.Kind == KindChoice {
		parts := make([]string, len(e.Options))
		for i, o := range e.Options {
			parts[i] = o.String()
		}
		fmt.Fprintf(&b, " [%s]", strings.Join(parts, " | "))
	}
	if t := e.EffectiveTiming(); t != TimingImmediate {
		b.WriteString(" " + string(t))
	}
	return b.String()
}

// Validate checks the structural rules for e and its options.
func (e Effect) Validate() error {
	return e.validate(0)
}

func (e Effect) validate(depth int) error {
	if depth >= MaxEffectDepth {
		return fmt.Errorf("%w: nesting deeper than %d", ErrMalformedEffect, MaxEffectDepth)
	}
	class, ok := kindClasses[e.Kind]
	if !ok {
		return fmt.Errorf("%w: unknown type %q", ErrMalformedEffect, e.Kind)
	}
	if e.Timing != "" && !e.Timing.valid() {
		return fmt.Errorf("%w: %s has unknown timing %q", ErrMalformedEffect, e.Kind, e.Timing)
	}
	if e.Value != nil && *e.Value < 0 {
		return fmt.Errorf("%w: %s value must not be negative", ErrMalformedEffect, e.Kind)
	}
	if class != classChoice && len(e.Options) > 0 {
		return fmt.Errorf("%w: %s cannot carry options", ErrMalformedEffect, e.Kind)
	}
	if e.CostModifier != nil {
		if class != classAction {
			return fmt.Errorf("%w: %s cannot carry a cost modifier", ErrMalformedEffect, e.Kind)
		}
		if e.EffectiveTiming() != TimingPassive {
			return fmt.Errorf("%w: cost modifier on %s must be passive", ErrMalformedEffect, e.Kind)
		}
	} else if e.EffectiveTiming() == TimingPassive {
		return fmt.Errorf("%w: passive %s needs a cost modifier", ErrMalformedEffect, e.Kind)
	}

	switch class {
	case classGain:
		if e.Value == nil {
			return fmt.Errorf("%w: %s requires a value", ErrMalformedEffect, e.Kind)
		}
	case classChoice:
		if len(e.Options) < 2 {
			return fmt.Errorf("%w: CHOICE needs at least 2 options, got %d", ErrMalformedEffect, len(e.Options))
		}
		if e.Value != nil {
			return fmt.Errorf("%w: CHOICE cannot carry a value", ErrMalformedEffect)
		}
		if e.EffectiveTiming() != TimingImmediate {
			return fmt.Errorf("%w: CHOICE must be immediate", ErrMalformedEffect)
		}
		for i, o := range e.Options {
			if err := o.validate(depth + 1); err != nil {
				return fmt.Errorf("option %d: %w", i, err)
			}
		}
	}
	return nil
}

type rawEffect struct {
	Type         string            `json:"type"`
	Value        json.RawMessage   `json:"value"`
	CostModifier json.RawMessage   `json:"cost_modifier"`
	Timing       string            `json:"timing"`
	Options      []json.RawMessage `json:"options"`
	ChoiceSource string            `json:"choice_source"`
}

// ParseEffect decodes a single effect object. An empty object or null
// decodes to nil: a slot with nothing to apply.
func ParseEffect(raw []byte) (*Effect, error) {
	if isEmptyEffect(raw) {
		return nil, nil
	}
	e, err := parseEffect(raw, 0)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ParseEffects decodes an effect list. A single object is accepted as a
// one-element list; empty objects are dropped.
func ParseEffects(raw []byte) ([]Effect, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] != '[' {
		e, err := ParseEffect(trimmed)
		if err != nil || e == nil {
			return nil, err
		}
		return []Effect{*e}, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEffect, err)
	}
	out := make([]Effect, 0, len(items))
	for i, item := range items {
		if isEmptyEffect(item) {
			continue
		}
		e, err := parseEffect(item, 0)
		if err != nil {
			return nil, fmt.Errorf("effect %d: %w", i, err)
		}
		out = append(out, e)
	}
	return out, nil
}

func parseEffect(raw []byte, depth int) (Effect, error) {
	if depth >= MaxEffectDepth {
		return Effect{}, fmt.Errorf("%w: nesting deeper than %d", ErrMalformedEffect, MaxEffectDepth)
	}
	var r rawEffect
	if err := json.Unmarshal(raw, &r); err != nil {
		return Effect{}, fmt.Errorf("%w: %v", ErrMalformedEffect, err)
	}
	if r.Type == "" {
		return Effect{}, fmt.Errorf("%w: missing type", ErrMalformedEffect)
	}
	e := Effect{
		Kind:         Kind(r.Type),
		Timing:       Timing(r.Timing),
		ChoiceSource: r.ChoiceSource,
	}
	var err error
	if e.Value, err = parseInt(r.Value, "value"); err != nil {
		return Effect{}, err
	}
	if e.CostModifier, err = parseInt(r.CostModifier, "cost_modifier"); err != nil {
		return Effect{}, err
	}
	for i, o := range r.Options {
		opt, err := parseEffect(o, depth+1)
		if err != nil {
			return Effect{}, fmt.Errorf("option %d: %w", i, err)
		}
		e.Options = append(e.Options, opt)
	}
	if err := e.validate(depth); err != nil {
		return Effect{}, err
	}
	if e.Timing == "" {
		e.Timing = e.EffectiveTiming()
	}
	return e, nil
}

func parseInt(raw json.RawMessage, field string) (*int, error) {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("%w: %s must be an integer, got %s", ErrMalformedEffect, field, raw)
	}
	return &n, nil
}

func isEmptyEffect(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return true
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &m); err != nil {
		return false
	}
	return len(m) == 0
}
