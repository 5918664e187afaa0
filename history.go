package plcvalidate

import "github.com/primal-host/ckb-plc-verify/internal/plcerr"

// ValidateOperationHistory validates a full chain: genesis, each
// pairwise update, and the final off-chain authorization signature.
//
// history must be non-empty; indices must have exactly len(history)+1
// entries. indices[0] verifies the genesis self-signature, indices[i]
// (1 <= i < n) verifies history[i] against history[i-1]'s rotation
// keys, and indices[n] verifies finalSig against history[n-1]'s
// rotation keys. Any step's error short-circuits the call.
func ValidateOperationHistory(binaryDid [15]byte, history [][]byte, indices []int, msg, finalSig []byte) *plcerr.Error {
	n := len(history)
	if n == 0 || len(indices) != n+1 {
		return plcerr.New("plcvalidate.ValidateOperationHistory", plcerr.CodeInvalidHistory)
	}

	if err := ValidateGenesisOperation(history[0], binaryDid, indices[0]); err != nil {
		return err
	}

	for i := 1; i < n; i++ {
		if err := Validate2Operations(history[i-1], history[i], indices[i]); err != nil {
			return err
		}
	}

	return ValidateFinalOperation(history[n-1], finalSig, msg, indices[n])
}
