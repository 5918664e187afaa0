// Package plctest builds and signs small did:plc operation chains for
// use by the rest of this module's tests. No real-world .cbor fixtures
// ship with this repository, so tests synthesize their own using real
// atcrypto keys and the same canonical-CBOR encoder the core uses.
package plctest

import (
	"encoding/base64"
	"fmt"

	"github.com/bluesky-social/indigo/atproto/atcrypto"

	"github.com/primal-host/ckb-plc-verify/internal/cborval"
)

// Key is a generated rotation key together with its did:key: form.
type Key struct {
	Private atcrypto.PrivateKey
	DIDKey  string
}

// NewK256Key generates a fresh secp256k1 rotation key.
func NewK256Key() (Key, error) {
	priv, err := atcrypto.GeneratePrivateKeyK256()
	if err != nil {
		return Key{}, fmt.Errorf("plctest: generate k256 key: %w", err)
	}
	return keyFromPrivate(priv)
}

// NewP256Key generates a fresh NIST P-256 rotation key.
func NewP256Key() (Key, error) {
	priv, err := atcrypto.GeneratePrivateKeyP256()
	if err != nil {
		return Key{}, fmt.Errorf("plctest: generate p256 key: %w", err)
	}
	return keyFromPrivate(priv)
}

func keyFromPrivate(priv atcrypto.PrivateKey) (Key, error) {
	pub, err := priv.PublicKey()
	if err != nil {
		return Key{}, fmt.Errorf("plctest: derive public key: %w", err)
	}
	return Key{Private: priv, DIDKey: pub.DIDKey()}, nil
}

func text(s string) cborval.Value { return cborval.Value{Kind: cborval.KindText, Text: s} }

func null() cborval.Value { return cborval.Value{Kind: cborval.KindNull} }

func array(items []string) cborval.Value {
	arr := make([]cborval.Value, len(items))
	for i, s := range items {
		arr[i] = text(s)
	}
	return cborval.Value{Kind: cborval.KindArray, Arr: arr}
}

func mapOf(entries ...cborval.Entry) cborval.Value {
	return cborval.Value{Kind: cborval.KindMap, Map: entries}
}

// CanonicalFields describes the contents of a canonical plc_operation.
type CanonicalFields struct {
	RotationKeys []string
	AlsoKnownAs  []string
	PDSEndpoint  string
	Prev         *string // nil means genesis
}

// BuildCanonical constructs the unsigned canonical-form map in the key
// order §3 names: type, rotationKeys, verificationMethods, alsoKnownAs,
// services, prev.
func BuildCanonical(f CanonicalFields) cborval.Value {
	atprotoKey := ""
	if len(f.RotationKeys) > 0 {
		atprotoKey = f.RotationKeys[0]
	}
	prevVal := null()
	if f.Prev != nil {
		prevVal = text(*f.Prev)
	}
	return mapOf(
		cborval.Entry{Key: text("type"), Val: text("plc_operation")},
		cborval.Entry{Key: text("rotationKeys"), Val: array(f.RotationKeys)},
		cborval.Entry{Key: text("verificationMethods"), Val: mapOf(
			cborval.Entry{Key: text("atproto"), Val: text(atprotoKey)},
		)},
		cborval.Entry{Key: text("alsoKnownAs"), Val: array(f.AlsoKnownAs)},
		cborval.Entry{Key: text("services"), Val: mapOf(
			cborval.Entry{Key: text("atproto_pds"), Val: mapOf(
				cborval.Entry{Key: text("type"), Val: text("AtprotoPersonalDataServer")},
				cborval.Entry{Key: text("endpoint"), Val: text(f.PDSEndpoint)},
			)},
		)},
		cborval.Entry{Key: text("prev"), Val: prevVal},
	)
}

// LegacyFields describes the contents of a legacy create operation.
type LegacyFields struct {
	SigningKey  string
	RecoveryKey string
	Handle      string
	PDSEndpoint string
	Prev        *string
}

// BuildLegacy constructs the unsigned legacy-form map in the key order
// §3 names: type, signingKey, recoveryKey, handle, service, prev.
func BuildLegacy(f LegacyFields) cborval.Value {
	prevVal := null()
	if f.Prev != nil {
		prevVal = text(*f.Prev)
	}
	return mapOf(
		cborval.Entry{Key: text("type"), Val: text("create")},
		cborval.Entry{Key: text("signingKey"), Val: text(f.SigningKey)},
		cborval.Entry{Key: text("recoveryKey"), Val: text(f.RecoveryKey)},
		cborval.Entry{Key: text("handle"), Val: text(f.Handle)},
		cborval.Entry{Key: text("service"), Val: text(f.PDSEndpoint)},
		cborval.Entry{Key: text("prev"), Val: prevVal},
	)
}

// BuildTombstone constructs an unsigned tombstone map: type, prev.
func BuildTombstone(prev string) cborval.Value {
	return mapOf(
		cborval.Entry{Key: text("type"), Val: text("plc_tombstone")},
		cborval.Entry{Key: text("prev"), Val: text(prev)},
	)
}

// Sign encodes unsigned, signs it with priv, and returns the final
// CBOR bytes with a "sig" entry appended in base64url-no-pad form.
func Sign(unsigned cborval.Value, priv atcrypto.PrivateKey) ([]byte, error) {
	msg, err := cborval.Encode(unsigned)
	if err != nil {
		return nil, fmt.Errorf("plctest: encode unsigned: %w", err)
	}
	sig, err := priv.HashAndSign(msg)
	if err != nil {
		return nil, fmt.Errorf("plctest: sign: %w", err)
	}
	sigText := base64.RawURLEncoding.EncodeToString(sig)

	signed := cborval.Value{Kind: cborval.KindMap, Map: append(append([]cborval.Entry{}, unsigned.Map...), cborval.Entry{
		Key: text("sig"), Val: text(sigText),
	})}
	out, err := cborval.Encode(signed)
	if err != nil {
		return nil, fmt.Errorf("plctest: encode signed: %w", err)
	}
	return out, nil
}
