package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"journeyboard/internal/engine"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1

	TypeSnapshot = "game_snapshot"
)

var ErrVersionMismatch = errors.New("record version mismatch")

// Envelope wraps every stored payload with its type and versions.
type Envelope struct {
	Type          string          `json:"type"`
	SchemaVersion int             `json:"schema_version"`
	CodecVersion  int             `json:"codec_version"`
	Payload       json.RawMessage `json:"payload,omitempty"`
}

// NewEnvelope creates an envelope at the current versions with a
// JSON-encoded payload.
func NewEnvelope(typ string, payload interface{}) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		Type:          typ,
		SchemaVersion: CurrentSchemaVersion,
		CodecVersion:  CurrentCodecVersion,
		Payload:       data,
	}, nil
}

func EncodeSnapshot(s engine.Snapshot) ([]byte, error) {
	env, err := NewEnvelope(TypeSnapshot, s)
	if err != nil {
		return nil, err
	}
	return json.Marshal(env)
}

func DecodeSnapshot(data []byte) (engine.Snapshot, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return engine.Snapshot{}, err
	}
	if env.Type != TypeSnapshot {
		return engine.Snapshot{}, fmt.Errorf("unexpected payload type %q", env.Type)
	}
	if err := checkVersion(env); err != nil {
		return engine.Snapshot{}, err
	}
	var snap engine.Snapshot
	if err := json.Unmarshal(env.Payload, &snap); err != nil {
		return engine.Snapshot{}, err
	}
	return snap, nil
}

func checkVersion(env Envelope) error {
	if env.SchemaVersion != CurrentSchemaVersion || env.CodecVersion != CurrentCodecVersion {
		return fmt.Errorf("%w: schema=%d codec=%d", ErrVersionMismatch, env.SchemaVersion, env.CodecVersion)
	}
	return nil
}
