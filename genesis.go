package plcvalidate

import (
	"github.com/primal-host/ckb-plc-verify/internal/plcerr"
	"github.com/primal-host/ckb-plc-verify/internal/plcop"
)

// ValidateGenesisOperation checks that buf is a well-formed, self-signed
// genesis operation whose derived binary DID equals binaryDid.
func ValidateGenesisOperation(buf []byte, binaryDid [15]byte, keyIndex int) *plcerr.Error {
	op, err := plcop.New(buf)
	if err != nil {
		return err
	}
	if err := op.Validate(); err != nil {
		return err
	}

	_, isNull, err := op.Prev()
	if err != nil {
		return err
	}
	if !isNull {
		return plcerr.New("plcvalidate.ValidateGenesisOperation", plcerr.CodeNotGenesisOperation)
	}

	keys, err := op.RotationKeysForClass()
	if err != nil {
		return err
	}
	if err := op.VerifySignature(keys, keyIndex); err != nil {
		return err
	}

	derived, err := op.BinaryDid()
	if err != nil {
		return err
	}
	if derived != binaryDid {
		return plcerr.New("plcvalidate.ValidateGenesisOperation", plcerr.CodeDidMismatched)
	}
	return nil
}
