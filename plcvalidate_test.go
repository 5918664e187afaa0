package plcvalidate_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	plcvalidate "github.com/primal-host/ckb-plc-verify"
	"github.com/primal-host/ckb-plc-verify/internal/cborval"
	"github.com/primal-host/ckb-plc-verify/internal/plcerr"
	"github.com/primal-host/ckb-plc-verify/internal/plcop"
	"github.com/primal-host/ckb-plc-verify/internal/plctest"
)

func mustKey(t *testing.T) plctest.Key {
	t.Helper()
	k, err := plctest.NewK256Key()
	require.NoError(t, err)
	return k
}

func mustCID(t *testing.T, buf []byte) string {
	t.Helper()
	op, err := plcop.New(buf)
	require.Nil(t, err)
	cid, cerr := op.GenerateCID()
	require.Nil(t, cerr)
	return cid
}

func buildGenesis(t *testing.T, key plctest.Key) []byte {
	t.Helper()
	unsigned := plctest.BuildCanonical(plctest.CanonicalFields{
		RotationKeys: []string{key.DIDKey},
		AlsoKnownAs:  []string{"at://alice.example"},
		PDSEndpoint:  "https://pds.example",
	})
	buf, err := plctest.Sign(unsigned, key.Private)
	require.NoError(t, err)
	return buf
}

func buildUpdateHandle(t *testing.T, prevBuf []byte, signer plctest.Key, rotationKeys []string, handle string) []byte {
	t.Helper()
	prevCID := mustCID(t, prevBuf)
	unsigned := plctest.BuildCanonical(plctest.CanonicalFields{
		RotationKeys: rotationKeys,
		AlsoKnownAs:  []string{"at://" + handle},
		PDSEndpoint:  "https://pds.example",
		Prev:         &prevCID,
	})
	buf, err := plctest.Sign(unsigned, signer.Private)
	require.NoError(t, err)
	return buf
}

// Scenario 1: a genesis -> handle-update pair validates with key index 0.
func TestScenario1PairValidates(t *testing.T) {
	key := mustKey(t)
	genesis := buildGenesis(t, key)
	update := buildUpdateHandle(t, genesis, key, []string{key.DIDKey}, "alice2.example")

	err := plcvalidate.Validate2Operations(genesis, update, 0)
	require.Nil(t, err)
}

// Scenario 2: after a rotation, the new key signs at a non-zero index.
func TestScenario2KeyIndexAfterRotation(t *testing.T) {
	oldKey := mustKey(t)
	newKey := mustKey(t)

	genesis := buildGenesis(t, oldKey)
	rotated := buildUpdateHandle(t, genesis, oldKey, []string{oldKey.DIDKey, newKey.DIDKey}, "alice-r.example")

	prevCID := mustCID(t, rotated)
	unsigned := plctest.BuildCanonical(plctest.CanonicalFields{
		RotationKeys: []string{oldKey.DIDKey, newKey.DIDKey},
		AlsoKnownAs:  []string{"at://alice-final.example"},
		PDSEndpoint:  "https://pds.example",
		Prev:         &prevCID,
	})
	next, err := plctest.Sign(unsigned, newKey.Private)
	require.NoError(t, err)

	verr := plcvalidate.Validate2Operations(rotated, next, 1)
	require.Nil(t, verr)
}

// Scenario 3: a tombstone cannot be a pairwise successor.
func TestScenario3TombstoneRejectedAsSuccessor(t *testing.T) {
	key := mustKey(t)
	genesis := buildGenesis(t, key)
	prevCID := mustCID(t, genesis)
	unsigned := plctest.BuildTombstone(prevCID)
	tomb, err := plctest.Sign(unsigned, key.Private)
	require.NoError(t, err)

	verr := plcvalidate.Validate2Operations(genesis, tomb, 0)
	require.NotNil(t, verr)
	require.Equal(t, plcerr.CodeInvalidOperation, verr.Code)
}

// Scenario 4: genesis validation against correct/wrong DID, and rejection
// of a non-genesis operation.
func TestScenario4GenesisChecks(t *testing.T) {
	key := mustKey(t)
	genesis := buildGenesis(t, key)
	op, err := plcop.New(genesis)
	require.Nil(t, err)
	binaryDid, derr := op.BinaryDid()
	require.Nil(t, derr)

	require.Nil(t, plcvalidate.ValidateGenesisOperation(genesis, binaryDid, 0))

	var wrongDid [15]byte
	verr := plcvalidate.ValidateGenesisOperation(genesis, wrongDid, 0)
	require.NotNil(t, verr)
	require.Equal(t, plcerr.CodeDidMismatched, verr.Code)

	update := buildUpdateHandle(t, genesis, key, []string{key.DIDKey}, "alice2.example")
	verr = plcvalidate.ValidateGenesisOperation(update, binaryDid, 0)
	require.NotNil(t, verr)
	require.Equal(t, plcerr.CodeNotGenesisOperation, verr.Code)
}

// Scenario 5: a tampered successor signature fails verification; a
// tampered predecessor changes its CID and breaks the prev link.
func TestScenario5TamperedSignatures(t *testing.T) {
	key := mustKey(t)
	genesis := buildGenesis(t, key)
	update := buildUpdateHandle(t, genesis, key, []string{key.DIDKey}, "alice2.example")

	tamperedUpdate := tamperSig(t, update)
	verr := plcvalidate.Validate2Operations(genesis, tamperedUpdate, 0)
	require.NotNil(t, verr)
	require.Equal(t, plcerr.CodeVerifySignatureFailed, verr.Code)

	tamperedGenesis := tamperSig(t, genesis)
	verr = plcvalidate.Validate2Operations(tamperedGenesis, update, 0)
	require.NotNil(t, verr)
	require.Equal(t, plcerr.CodeInvalidPrev, verr.Code)
}

// Scenario 6: signature padding and malformed base64 are distinct errors.
func TestScenario6SignatureEncodingErrors(t *testing.T) {
	key := mustKey(t)
	genesis := buildGenesis(t, key)
	update := buildUpdateHandle(t, genesis, key, []string{key.DIDKey}, "alice2.example")

	padded := replaceSigText(t, update, func(s string) string { return s + "=" })
	verr := plcvalidate.Validate2Operations(genesis, padded, 0)
	require.NotNil(t, verr)
	require.Equal(t, plcerr.CodeInvalidSignaturePadding, verr.Code)

	garbage := replaceSigText(t, update, func(string) string { return "not-base64url!!**" })
	verr = plcvalidate.Validate2Operations(genesis, garbage, 0)
	require.NotNil(t, verr)
	require.Equal(t, plcerr.CodeInvalidSignature, verr.Code)
}

// Scenario 7: an out-of-range key index is rejected.
func TestScenario7KeyIndexOutOfRange(t *testing.T) {
	key := mustKey(t)
	genesis := buildGenesis(t, key)
	update := buildUpdateHandle(t, genesis, key, []string{key.DIDKey}, "alice2.example")

	verr := plcvalidate.Validate2Operations(genesis, update, 99)
	require.NotNil(t, verr)
	require.Equal(t, plcerr.CodeInvalidKeyIndex, verr.Code)
}

// Scenario 8: empty history and mismatched indices length are rejected.
func TestScenario8InvalidHistoryShape(t *testing.T) {
	verr := plcvalidate.ValidateOperationHistory([15]byte{}, nil, nil, nil, nil)
	require.NotNil(t, verr)
	require.Equal(t, plcerr.CodeInvalidHistory, verr.Code)

	key := mustKey(t)
	genesis := buildGenesis(t, key)
	verr = plcvalidate.ValidateOperationHistory([15]byte{}, [][]byte{genesis}, []int{0}, nil, nil)
	require.NotNil(t, verr)
	require.Equal(t, plcerr.CodeInvalidHistory, verr.Code)
}

// Scenario 10: legacy genesis and legacy pairwise update both validate.
func TestScenario10LegacyChain(t *testing.T) {
	signing := mustKey(t)
	recovery := mustKey(t)

	unsigned := plctest.BuildLegacy(plctest.LegacyFields{
		SigningKey:  signing.DIDKey,
		RecoveryKey: recovery.DIDKey,
		Handle:      "at://legacy.example",
		PDSEndpoint: "https://pds.example",
	})
	genesis, err := plctest.Sign(unsigned, signing.Private)
	require.NoError(t, err)

	op, operr := plcop.New(genesis)
	require.Nil(t, operr)
	require.Nil(t, op.Validate())
	require.True(t, op.IsLegacy())
	binaryDid, derr := op.BinaryDid()
	require.Nil(t, derr)

	require.Nil(t, plcvalidate.ValidateGenesisOperation(genesis, binaryDid, 0))

	prevCID := mustCID(t, genesis)
	nextUnsigned := plctest.BuildLegacy(plctest.LegacyFields{
		SigningKey:  signing.DIDKey,
		RecoveryKey: recovery.DIDKey,
		Handle:      "at://legacy2.example",
		PDSEndpoint: "https://pds.example",
		Prev:        &prevCID,
	})
	next, err := plctest.Sign(nextUnsigned, recovery.Private)
	require.NoError(t, err)

	// Legacy rotation keys are [signingKey, recoveryKey]; recovery is index 1.
	verr := plcvalidate.Validate2Operations(genesis, next, 1)
	require.Nil(t, verr)
}

func TestFullHistoryOrchestration(t *testing.T) {
	key := mustKey(t)
	genesis := buildGenesis(t, key)
	update := buildUpdateHandle(t, genesis, key, []string{key.DIDKey}, "alice2.example")

	op, err := plcop.New(genesis)
	require.Nil(t, err)
	binaryDid, derr := op.BinaryDid()
	require.Nil(t, derr)

	msg := []byte("transaction-hash")
	sig, serr := key.Private.HashAndSign(msg)
	require.NoError(t, serr)

	verr := plcvalidate.ValidateOperationHistory(binaryDid, [][]byte{genesis, update}, []int{0, 0, 0}, msg, sig)
	require.Nil(t, verr)
}

// tamperSig flips the first character of the sig's base64url text,
// producing a well-formed but cryptographically wrong signature.
func tamperSig(t *testing.T, buf []byte) []byte {
	t.Helper()
	return replaceSigText(t, buf, func(s string) string {
		if strings.HasPrefix(s, "A") {
			return "B" + s[1:]
		}
		return "A" + s[1:]
	})
}

// replaceSigText decodes buf, rewrites the "sig" entry's text through
// transform, and re-encodes — used to inject padding or garbage into an
// otherwise-valid signed operation without resigning it.
func replaceSigText(t *testing.T, buf []byte, transform func(string) string) []byte {
	t.Helper()
	root, derr := cborval.Decode(buf)
	require.Nil(t, derr)
	require.Equal(t, cborval.KindMap, root.Kind)

	out := make([]cborval.Entry, len(root.Map))
	for i, e := range root.Map {
		if e.Key.Kind == cborval.KindText && e.Key.Text == "sig" {
			e.Val = cborval.Value{Kind: cborval.KindText, Text: transform(e.Val.Text)}
		}
		out[i] = e
	}
	root.Map = out

	encoded, eerr := cborval.Encode(root)
	require.Nil(t, eerr)
	return encoded
}
