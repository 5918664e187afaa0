// Package localid decodes did:plc: identifier strings back into their
// 15 raw binary-DID bytes.
package localid

import (
	"encoding/base32"
	"strings"

	"github.com/primal-host/ckb-plc-verify/internal/plcerr"
)

const prefix = "did:plc:"

var encoding = base32.NewEncoding("abcdefghijklmnopqrstuvwxyz234567").WithPadding(base32.NoPadding)

// Parse requires text prefixed with "did:plc:" and decodes the suffix as
// RFC 4648 base32, lowercase, no padding. Any deviation is
// InvalidDidFormat. The returned slice is not re-truncated; callers
// compare it against the 15-byte binary DID derived at genesis.
func Parse(text string) ([]byte, *plcerr.Error) {
	if !strings.HasPrefix(text, prefix) {
		return nil, plcerr.New("localid.Parse", plcerr.CodeInvalidDidFormat)
	}
	suffix := text[len(prefix):]
	decoded, err := encoding.DecodeString(suffix)
	if err != nil {
		return nil, plcerr.Wrap("localid.Parse", plcerr.CodeInvalidDidFormat, err)
	}
	return decoded, nil
}
