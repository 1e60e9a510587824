package behavior

import (
	"fmt"

	"github.com/goccy/go-json"
)

// SchemaVersion is the version written into every persisted envelope.
// Envelopes carrying any other version are ignored on read.
const SchemaVersion = 1

// envelope wraps the persisted snapshot with its schema version.
type envelope struct {
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

func encodeSnapshot(snap Snapshot) ([]byte, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return json.Marshal(envelope{Version: SchemaVersion, Data: data})
}

func decodeSnapshot(raw []byte) (Snapshot, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return EmptySnapshot(), fmt.Errorf("decode envelope: %w", err)
	}
	if env.Version != SchemaVersion {
		return EmptySnapshot(), fmt.Errorf("unsupported schema version %d", env.Version)
	}

	var snap Snapshot
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &snap); err != nil {
			return EmptySnapshot(), fmt.Errorf("decode snapshot: %w", err)
		}
	}
	snap.fillNil()
	return snap, nil
}
