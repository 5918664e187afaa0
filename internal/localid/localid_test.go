package localid_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/primal-host/ckb-plc-verify/internal/localid"
	"github.com/primal-host/ckb-plc-verify/internal/plcerr"
)

func TestParseRejectsWrongMethod(t *testing.T) {
	_, err := localid.Parse("did:invalid:abc123")
	require.NotNil(t, err)
	require.Equal(t, plcerr.CodeInvalidDidFormat, err.Code)
}

func TestParseRejectsBadBase32(t *testing.T) {
	_, err := localid.Parse("did:plc:invalid_base32")
	require.NotNil(t, err)
	require.Equal(t, plcerr.CodeInvalidDidFormat, err.Code)
}

func TestParseRoundTrip(t *testing.T) {
	raw := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}
	encoded := "did:plc:" + encodeForTest(raw)
	got, err := localid.Parse(encoded)
	require.Nil(t, err)
	require.Equal(t, raw, got)
}

func encodeForTest(raw []byte) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz234567"
	var out []byte
	bits := 0
	val := 0
	for _, b := range raw {
		val = (val << 8) | int(b)
		bits += 8
		for bits >= 5 {
			out = append(out, alphabet[(val>>(bits-5))&0x1f])
			bits -= 5
		}
	}
	if bits > 0 {
		out = append(out, alphabet[(val<<(5-bits))&0x1f])
	}
	return string(out)
}
