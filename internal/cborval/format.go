package cborval

import (
	"io"

	"github.com/primal-host/ckb-plc-verify/internal/plcerr"
)

// ValidateFormat pulls stream fully into memory and runs a single CBOR
// decode over it to assert well-formedness, without interpreting the
// result. It is used by an outer layer that carries the operation
// document as an opaque payload and must accept it structurally before
// further processing.
func ValidateFormat(stream io.Reader) *plcerr.Error {
	buf, err := io.ReadAll(stream)
	if err != nil {
		return plcerr.Wrap("cborval.ValidateFormat", plcerr.CodeReaderError, err)
	}
	if _, derr := Decode(buf); derr != nil {
		return plcerr.Wrap("cborval.ValidateFormat", plcerr.CodeInvalidCbor, derr)
	}
	return nil
}
