package didkey_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/primal-host/ckb-plc-verify/internal/didkey"
	"github.com/primal-host/ckb-plc-verify/internal/plcerr"
	"github.com/primal-host/ckb-plc-verify/internal/plctest"
)

func TestParseRejectsMissingPrefix(t *testing.T) {
	_, err := didkey.Parse("z6Mk...")
	require.NotNil(t, err)
	require.Equal(t, plcerr.CodeInvalidKey, err.Code)
}

func TestParseRejectsNonBase58btcSelector(t *testing.T) {
	_, err := didkey.Parse("did:key:mNotBase58btc")
	require.NotNil(t, err)
	require.Equal(t, plcerr.CodeInvalidKey, err.Code)
}

func TestParseAndVerifyK256(t *testing.T) {
	key, err := plctest.NewK256Key()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(key.DIDKey, "did:key:z"))

	pk, perr := didkey.Parse(key.DIDKey)
	require.Nil(t, perr)
	require.Equal(t, didkey.CurveSecp256k1, pk.Curve)

	msg := []byte("hello plc")
	sig, serr := key.Private.HashAndSign(msg)
	require.NoError(t, serr)

	require.Nil(t, pk.Verify(msg, sig))
	require.NotNil(t, pk.Verify([]byte("tampered"), sig))
}

func TestParseAndVerifyP256(t *testing.T) {
	key, err := plctest.NewP256Key()
	require.NoError(t, err)

	pk, perr := didkey.Parse(key.DIDKey)
	require.Nil(t, perr)
	require.Equal(t, didkey.CurveP256, pk.Curve)

	msg := []byte("hello plc p256")
	sig, serr := key.Private.HashAndSign(msg)
	require.NoError(t, serr)
	require.Nil(t, pk.Verify(msg, sig))
}

func TestVerifyRejectsMalformedSignatureLength(t *testing.T) {
	key, err := plctest.NewK256Key()
	require.NoError(t, err)
	pk, perr := didkey.Parse(key.DIDKey)
	require.Nil(t, perr)

	perr = pk.Verify([]byte("msg"), []byte("not-64-bytes"))
	require.NotNil(t, perr)
	require.Equal(t, plcerr.CodeInvalidSignature, perr.Code)
}
