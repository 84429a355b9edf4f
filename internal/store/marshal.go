package store

import (
	"encoding/json"
	"fmt"

	"github.com/ms584/Q-Net/internal/ir"
)

// marshalCircuit converts a circuit to canonical JSON TEXT for storage.
func marshalCircuit(c *ir.Circuit) (string, error) {
	data, err := ir.MarshalCanonical(c.IR())
	if err != nil {
		return "", fmt.Errorf("marshal circuit: %w", err)
	}
	return string(data), nil
}

// marshalCounts converts counts to canonical JSON TEXT for storage.
func marshalCounts(c ir.Counts) (string, error) {
	data, err := ir.MarshalCanonical(c.IR())
	if err != nil {
		return "", fmt.Errorf("marshal counts: %w", err)
	}
	return string(data), nil
}

func unmarshalCircuit(data string) (*ir.Circuit, error) {
	var c ir.Circuit
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return nil, fmt.Errorf("unmarshal circuit: %w", err)
	}
	return &c, nil
}

func unmarshalCounts(data string) (ir.Counts, error) {
	c := ir.Counts{}
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return nil, fmt.Errorf("unmarshal counts: %w", err)
	}
	return c, nil
}
