package plcvalidate

import (
	"io"

	"github.com/primal-host/ckb-plc-verify/internal/cborval"
	"github.com/primal-host/ckb-plc-verify/internal/localid"
	"github.com/primal-host/ckb-plc-verify/internal/plcerr"
)

// ParseLocalID decodes a did:plc:<base32> string back into its 15 raw
// binary-DID bytes.
func ParseLocalID(text string) ([]byte, *plcerr.Error) {
	return localid.Parse(text)
}

// ValidateCBORFormat confirms that stream carries a single well-formed
// CBOR item, without interpreting it.
func ValidateCBORFormat(stream io.Reader) *plcerr.Error {
	return cborval.ValidateFormat(stream)
}
