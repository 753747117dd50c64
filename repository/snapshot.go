package repository

import (
	"encoding/json"
	"fmt"

	"mifoto-print/models"
)

// snapshotVersion is stored with every snapshot so older rows can be migrated on read.
const snapshotVersion = 1

type snapshot struct {
	Version int          `json:"version"`
	Order   models.Order `json:"order"`
}

// EncodeSnapshot serializes order for storage. Rendered compositions are not included.
func EncodeSnapshot(order models.Order) ([]byte, error) {
	data, err := json.Marshal(snapshot{Version: snapshotVersion, Order: order})
	if err != nil {
		return nil, fmt.Errorf("failed to encode order snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot is the inverse of EncodeSnapshot.
func DecodeSnapshot(data []byte) (models.Order, error) {
	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return models.Order{}, fmt.Errorf("failed to decode order snapshot: %w", err)
	}
	if s.Version != snapshotVersion {
		return models.Order{}, fmt.Errorf("unsupported order snapshot version %d", s.Version)
	}
	return s.Order, nil
}
