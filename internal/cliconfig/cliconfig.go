// Package cliconfig loads the JSON manifest the plc-verify CLI reads to
// describe a chain of operation files to validate.
package cliconfig

import (
	"encoding/json"
	"fmt"
	"os"
)

// Manifest describes one operation-history validation run.
type Manifest struct {
	// BinaryDidHex is the expected 15-byte binary DID, hex-encoded.
	BinaryDidHex string `json:"binaryDidHex"`
	// OperationFiles lists CBOR operation files, genesis first.
	OperationFiles []string `json:"operationFiles"`
	// KeyIndices has exactly len(OperationFiles)+1 entries: one per
	// genesis/pairwise step plus one for the final signature check.
	KeyIndices []int `json:"keyIndices"`
	// FinalMessageHex and FinalSigHex authorize the terminal off-chain
	// action (e.g. a transaction hash) against the chain's last
	// rotation keys.
	FinalMessageHex string `json:"finalMessageHex"`
	FinalSigHex     string `json:"finalSigHex"`
}

// Load reads and validates a Manifest from path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cliconfig: read %s: %w", path, err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("cliconfig: parse %s: %w", path, err)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("cliconfig: %s: %w", path, err)
	}
	return &m, nil
}

func (m *Manifest) validate() error {
	if len(m.OperationFiles) == 0 {
		return fmt.Errorf("operationFiles must be non-empty")
	}
	if len(m.KeyIndices) != len(m.OperationFiles)+1 {
		return fmt.Errorf("keyIndices must have len(operationFiles)+1 entries, got %d for %d files",
			len(m.KeyIndices), len(m.OperationFiles))
	}
	if m.BinaryDidHex == "" {
		return fmt.Errorf("binaryDidHex is required")
	}
	if m.FinalMessageHex == "" {
		return fmt.Errorf("finalMessageHex is required")
	}
	if m.FinalSigHex == "" {
		return fmt.Errorf("finalSigHex is required")
	}
	return nil
}
