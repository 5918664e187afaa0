package plcvalidate

import (
	"github.com/primal-host/ckb-plc-verify/internal/plcerr"
	"github.com/primal-host/ckb-plc-verify/internal/plcop"
)

// ValidateFinalOperation verifies finalSig over msg using the rotation
// key at keyIndex taken from the last operation in a history. This is
// how the on-chain layer binds a transaction to the holder of a PLC key.
func ValidateFinalOperation(lastBuf, finalSig, msg []byte, keyIndex int) *plcerr.Error {
	op, err := plcop.New(lastBuf)
	if err != nil {
		return err
	}
	if err := op.Validate(); err != nil {
		return err
	}

	keys, err := op.RotationKeysForClass()
	if err != nil {
		return err
	}
	if keyIndex < 0 || keyIndex >= len(keys) {
		return plcerr.New("plcvalidate.ValidateFinalOperation", plcerr.CodeInvalidKeyIndex)
	}
	return keys[keyIndex].Verify(msg, finalSig)
}
