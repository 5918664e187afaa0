// Package didkey parses did:key: strings into curve-tagged compressed
// public keys and verifies ECDSA signatures over them.
package didkey

import (
	"strings"

	"github.com/bluesky-social/indigo/atproto/atcrypto"
	"github.com/mr-tron/base58"

	"github.com/primal-host/ckb-plc-verify/internal/plcerr"
)

// Curve identifies which elliptic curve a PublicKey was decoded for.
type Curve uint8

const (
	CurveSecp256k1 Curve = iota
	CurveP256
)

const prefix = "did:key:"

var (
	tagSecp256k1 = [2]byte{0xE7, 0x01}
	tagP256      = [2]byte{0x80, 0x24}
)

// PublicKey wraps the curve tag and the parsed verification key.
type PublicKey struct {
	Curve  Curve
	Point  [33]byte
	crypto atcrypto.PublicKey
}

// Parse decodes a did:key: string into a PublicKey. Only the base58btc
// multibase selector ('z') is accepted; the decoded payload must be a
// known two-byte multicodec tag followed by exactly 33 bytes.
func Parse(didKey string) (PublicKey, *plcerr.Error) {
	if !strings.HasPrefix(didKey, prefix) {
		return PublicKey{}, plcerr.New("didkey.Parse", plcerr.CodeInvalidKey)
	}
	mb := didKey[len(prefix):]
	if len(mb) == 0 || mb[0] != 'z' {
		return PublicKey{}, plcerr.New("didkey.Parse", plcerr.CodeInvalidKey)
	}
	raw, err := base58.Decode(mb[1:])
	if err != nil {
		return PublicKey{}, plcerr.Wrap("didkey.Parse", plcerr.CodeInvalidKey, err)
	}
	if len(raw) != 35 {
		return PublicKey{}, plcerr.New("didkey.Parse", plcerr.CodeInvalidKey)
	}
	var tag [2]byte
	copy(tag[:], raw[:2])
	point := raw[2:]
	if len(point) != 33 {
		return PublicKey{}, plcerr.New("didkey.Parse", plcerr.CodeInvalidKey)
	}

	var pk PublicKey
	copy(pk.Point[:], point)

	switch tag {
	case tagSecp256k1:
		pk.Curve = CurveSecp256k1
		cryptoKey, perr := atcrypto.ParsePublicBytesK256(point)
		if perr != nil {
			return PublicKey{}, plcerr.Wrap("didkey.Parse", plcerr.CodeInvalidKey, perr)
		}
		pk.crypto = cryptoKey
	case tagP256:
		pk.Curve = CurveP256
		cryptoKey, perr := atcrypto.ParsePublicBytesP256(point)
		if perr != nil {
			return PublicKey{}, plcerr.Wrap("didkey.Parse", plcerr.CodeInvalidKey, perr)
		}
		pk.crypto = cryptoKey
	default:
		return PublicKey{}, plcerr.New("didkey.Parse", plcerr.CodeInvalidKey)
	}

	return pk, nil
}

// fixedSigLen is the r||s byte length of a non-DER ECDSA signature over
// either secp256k1 or P-256 (both 32-byte field elements).
const fixedSigLen = 64

// Verify checks sig over msg using the key's curve and compressed point.
// It returns InvalidSignature when sig is not a well-formed fixed-size
// r||s signature, and VerifySignatureFailed when a well-formed signature
// is mathematically rejected. Verification is delegated entirely to the
// curve library's HashAndVerify; this function adds no low-s/high-s
// check of its own, so whether a high-s signature passes is decided by
// that library method.
func (pk PublicKey) Verify(msg, sig []byte) *plcerr.Error {
	if pk.crypto == nil {
		return plcerr.New("didkey.Verify", plcerr.CodeInvalidKey)
	}
	if len(sig) != fixedSigLen {
		return plcerr.New("didkey.Verify", plcerr.CodeInvalidSignature)
	}
	if err := pk.crypto.HashAndVerify(msg, sig); err != nil {
		return plcerr.Wrap("didkey.Verify", plcerr.CodeVerifySignatureFailed, err)
	}
	return nil
}
