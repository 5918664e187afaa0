// Package plcvalidate composes the leaf components (CBOR codec,
// did:key parsing, ECDSA verification, the Operation object) into the
// genesis/pair/final/history validators a hosting on-chain validator
// calls directly.
package plcvalidate

import (
	"github.com/primal-host/ckb-plc-verify/internal/plcerr"
	"github.com/primal-host/ckb-plc-verify/internal/plcop"
)

// Validate2Operations checks that curBuf is a valid successor to
// prevBuf: curBuf's prev field must equal prevBuf's CID, and curBuf must
// be signed by the key at keyIndex among prevBuf's rotation keys.
func Validate2Operations(prevBuf, curBuf []byte, keyIndex int) *plcerr.Error {
	prev, err := plcop.New(prevBuf)
	if err != nil {
		return err
	}
	if err := prev.Validate(); err != nil {
		return err
	}
	cur, err := plcop.New(curBuf)
	if err != nil {
		return err
	}
	if err := cur.Validate(); err != nil {
		return err
	}

	prevCid, err := prev.GenerateCID()
	if err != nil {
		return err
	}

	curPrev, isNull, err := cur.Prev()
	if err != nil {
		return err
	}
	if isNull {
		return plcerr.New("plcvalidate.Validate2Operations", plcerr.CodeMissingPrevField)
	}
	if curPrev != prevCid {
		return plcerr.New("plcvalidate.Validate2Operations", plcerr.CodeInvalidPrev)
	}

	prevKeys, err := prev.RotationKeysForClass()
	if err != nil {
		return err
	}

	return cur.VerifySignature(prevKeys, keyIndex)
}
