package plcop

import (
	"crypto/sha256"
	"encoding/base32"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"

	"github.com/primal-host/ckb-plc-verify/internal/cborval"
	"github.com/primal-host/ckb-plc-verify/internal/plcerr"
)

// binaryDidEncoding is RFC 4648 base32 in lowercase with no padding, the
// form did:plc: identifiers and CID multibase strings both use.
var binaryDidEncoding = base32.NewEncoding("abcdefghijklmnopqrstuvwxyz234567").WithPadding(base32.NoPadding)

// encodeSigned re-encodes the full root map (including "sig") to
// canonical CBOR. CID and binary-DID derivation both hash this form.
func (op *Operation) encodeSigned() ([]byte, *plcerr.Error) {
	enc, err := cborval.Encode(op.root)
	if err != nil {
		return nil, plcerr.Wrap("plcop.encodeSigned", plcerr.CodeInvalidCbor, err)
	}
	return enc, nil
}

// GenerateCID re-encodes the operation to DAG-CBOR, hashes it with
// SHA-256, and renders the CIDv1/dag-cbor/sha2-256 multibase string
// ("b" + base32-lowercase, no padding).
func (op *Operation) GenerateCID() (string, *plcerr.Error) {
	raw, err := op.encodeSigned()
	if err != nil {
		return "", err
	}
	mh, mherr := multihash.Sum(raw, multihash.SHA2_256, -1)
	if mherr != nil {
		return "", plcerr.Wrap("plcop.GenerateCID", plcerr.CodeInvalidCbor, mherr)
	}
	c := cid.NewCidV1(cid.DagCBOR, mh)
	return c.String(), nil
}

// BinaryDid derives the 15-byte binary DID: the first 15 bytes of
// SHA-256 over the DAG-CBOR re-encode of the operation (the genesis
// operation, by convention of the caller).
func (op *Operation) BinaryDid() ([15]byte, *plcerr.Error) {
	var out [15]byte
	raw, err := op.encodeSigned()
	if err != nil {
		return out, err
	}
	sum := sha256.Sum256(raw)
	copy(out[:], sum[:15])
	return out, nil
}

// BinaryDidString renders a 15-byte binary DID as "did:plc:<base32>".
func BinaryDidString(binaryDid [15]byte) string {
	return "did:plc:" + binaryDidEncoding.EncodeToString(binaryDid[:])
}
