// Package plcop provides a typed view over a decoded PLC operation CBOR
// map: classification, field extraction, the unsigned projection used
// for signing, and CID/binary-DID derivation.
package plcop

import (
	"encoding/base64"
	"strings"

	"github.com/primal-host/ckb-plc-verify/internal/cborval"
	"github.com/primal-host/ckb-plc-verify/internal/didkey"
	"github.com/primal-host/ckb-plc-verify/internal/plcerr"
)

// Kind classifies an Operation by its "type" field.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindCanonical
	KindLegacy
	KindTombstone
)

const (
	typeCanonical = "plc_operation"
	typeLegacy    = "create"
	typeTombstone = "plc_tombstone"
)

var requiredKeys = map[Kind][]string{
	KindCanonical: {"type", "rotationKeys", "verificationMethods", "alsoKnownAs", "services", "prev", "sig"},
	KindLegacy:    {"type", "signingKey", "recoveryKey", "handle", "service", "prev", "sig"},
	KindTombstone: {"type", "prev", "sig"},
}

// Operation is a typed view over a decoded CBOR map.
type Operation struct {
	root cborval.Value
	kind Kind
}

// New decodes buf and checks the structural invariants every Operation
// must satisfy regardless of class: the root is a Map and every key is
// text. It does not classify or check the class-specific required key
// set — call Validate for that.
func New(buf []byte) (*Operation, *plcerr.Error) {
	root, err := cborval.Decode(buf)
	if err != nil {
		return nil, plcerr.Wrap("plcop.New", plcerr.CodeInvalidCbor, err)
	}
	if root.Kind != cborval.KindMap {
		return nil, plcerr.New("plcop.New", plcerr.CodeInvalidOperation)
	}
	for _, e := range root.Map {
		if e.Key.Kind != cborval.KindText {
			return nil, plcerr.New("plcop.New", plcerr.CodeInvalidOperation)
		}
	}
	return &Operation{root: root}, nil
}

// Validate classifies the operation by its "type" field and requires
// that every key named for that class (§3) is present. Unknown
// top-level keys beyond the required set are ignored.
//
// Tombstones classify (IsTombstone reports true) but never pass
// Validate: this follows the stricter of two behaviors seen in the
// source tree, under which only the canonical and legacy key sets are
// accepted as valid operations and a tombstone is therefore never a
// valid genesis, successor, or standalone operation — only a terminal
// marker a caller may recognize via IsTombstone before ever calling
// Validate.
func (op *Operation) Validate() *plcerr.Error {
	typeVal, ok := op.root.Field("type")
	if !ok {
		return plcerr.New("plcop.Validate", plcerr.CodeInvalidOperation)
	}
	typeStr, ok := typeVal.AsText()
	if !ok {
		return plcerr.New("plcop.Validate", plcerr.CodeInvalidOperation)
	}

	switch typeStr {
	case typeCanonical:
		op.kind = KindCanonical
	case typeLegacy:
		op.kind = KindLegacy
	case typeTombstone:
		op.kind = KindTombstone
		return plcerr.New("plcop.Validate", plcerr.CodeInvalidOperation)
	default:
		return plcerr.New("plcop.Validate", plcerr.CodeInvalidOperation)
	}

	for _, k := range requiredKeys[op.kind] {
		if !op.root.HasField(k) {
			return plcerr.New("plcop.Validate", plcerr.CodeInvalidOperation)
		}
	}

	return nil
}

// IsOperation reports whether the operation classified as canonical.
func (op *Operation) IsOperation() bool { return op.kind == KindCanonical }

// IsLegacy reports whether the operation classified as legacy (create).
func (op *Operation) IsLegacy() bool { return op.kind == KindLegacy }

// IsTombstone reports whether the operation classified as a tombstone.
func (op *Operation) IsTombstone() bool { return op.kind == KindTombstone }

// RotationKeys returns the parsed canonical rotationKeys array.
func (op *Operation) RotationKeys() ([]didkey.PublicKey, *plcerr.Error) {
	v, ok := op.root.Field("rotationKeys")
	if !ok || v.Kind != cborval.KindArray {
		return nil, plcerr.New("plcop.RotationKeys", plcerr.CodeRotationKeysDecodeError)
	}
	keys := make([]didkey.PublicKey, 0, len(v.Arr))
	for _, item := range v.Arr {
		text, ok := item.AsText()
		if !ok {
			return nil, plcerr.New("plcop.RotationKeys", plcerr.CodeInvalidKey)
		}
		pk, err := didkey.Parse(text)
		if err != nil {
			return nil, err
		}
		keys = append(keys, pk)
	}
	return keys, nil
}

// LegacyRotationKeys returns [parse(signingKey), parse(recoveryKey)].
func (op *Operation) LegacyRotationKeys() ([]didkey.PublicKey, *plcerr.Error) {
	signing, err := op.legacyKeyField("signingKey")
	if err != nil {
		return nil, err
	}
	recovery, err := op.legacyKeyField("recoveryKey")
	if err != nil {
		return nil, err
	}
	return []didkey.PublicKey{signing, recovery}, nil
}

func (op *Operation) legacyKeyField(name string) (didkey.PublicKey, *plcerr.Error) {
	v, ok := op.root.Field(name)
	if !ok {
		return didkey.PublicKey{}, plcerr.New("plcop.legacyKeyField", plcerr.CodeRotationKeysDecodeError)
	}
	text, ok := v.AsText()
	if !ok {
		return didkey.PublicKey{}, plcerr.New("plcop.legacyKeyField", plcerr.CodeRotationKeysDecodeError)
	}
	return didkey.Parse(text)
}

// RotationKeysForClass returns the rotation keys appropriate for the
// operation's classified kind (legacy concatenation or canonical list).
func (op *Operation) RotationKeysForClass() ([]didkey.PublicKey, *plcerr.Error) {
	if op.IsLegacy() {
		return op.LegacyRotationKeys()
	}
	return op.RotationKeys()
}

// Signature extracts and decodes the "sig" field: base64url, no padding.
// A trailing '=' is a hard rejection distinct from other malformed
// input.
func (op *Operation) Signature() ([]byte, *plcerr.Error) {
	v, ok := op.root.Field("sig")
	if !ok {
		return nil, plcerr.New("plcop.Signature", plcerr.CodeInvalidSignature)
	}
	text, ok := v.AsText()
	if !ok {
		return nil, plcerr.New("plcop.Signature", plcerr.CodeInvalidSignature)
	}
	if strings.HasSuffix(text, "=") {
		return nil, plcerr.New("plcop.Signature", plcerr.CodeInvalidSignaturePadding)
	}
	sig, err := base64.RawURLEncoding.DecodeString(text)
	if err != nil {
		return nil, plcerr.Wrap("plcop.Signature", plcerr.CodeInvalidSignature, err)
	}
	return sig, nil
}

// Prev returns the predecessor's CID string and false, or "" and true
// when prev is null (only valid for a genesis operation).
func (op *Operation) Prev() (cidStr string, isNull bool, perr *plcerr.Error) {
	v, ok := op.root.Field("prev")
	if !ok {
		return "", false, plcerr.New("plcop.Prev", plcerr.CodeInvalidOperation)
	}
	switch v.Kind {
	case cborval.KindText:
		return v.Text, false, nil
	case cborval.KindNull:
		return "", true, nil
	default:
		return "", false, plcerr.New("plcop.Prev", plcerr.CodeInvalidOperation)
	}
}

// UnsignedProjection clones the root map dropping the "sig" entry,
// preserving the order of the remaining entries.
func (op *Operation) UnsignedProjection() cborval.Value {
	out := cborval.Value{Kind: cborval.KindMap, Map: make([]cborval.Entry, 0, len(op.root.Map))}
	for _, e := range op.root.Map {
		if e.Key.Kind == cborval.KindText && e.Key.Text == "sig" {
			continue
		}
		out.Map = append(out.Map, e)
	}
	return out
}

// encodeUnsigned re-encodes the unsigned projection to canonical CBOR.
func (op *Operation) encodeUnsigned() ([]byte, *plcerr.Error) {
	enc, err := cborval.Encode(op.UnsignedProjection())
	if err != nil {
		return nil, plcerr.Wrap("plcop.encodeUnsigned", plcerr.CodeInvalidCbor, err)
	}
	return enc, nil
}

// VerifySignature builds the unsigned projection, re-encodes it, and
// verifies the operation's own signature against pubkeys[keyIndex].
func (op *Operation) VerifySignature(pubkeys []didkey.PublicKey, keyIndex int) *plcerr.Error {
	if keyIndex < 0 || keyIndex >= len(pubkeys) {
		return plcerr.New("plcop.VerifySignature", plcerr.CodeInvalidKeyIndex)
	}
	msg, err := op.encodeUnsigned()
	if err != nil {
		return err
	}
	sig, err := op.Signature()
	if err != nil {
		return err
	}
	return pubkeys[keyIndex].Verify(msg, sig)
}
