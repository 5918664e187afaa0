// Package plcerr defines the flat error taxonomy shared by every
// component of the did:plc verification core. Every fallible exported
// function of the core (the root package and internal/cborval, didkey,
// localid and plcop) returns a *plcerr.Error (or nil) so that a hosting
// validator can recover a stable discriminant with errors.As instead of
// string-matching messages.
package plcerr

import "fmt"

// Code is a stable, flat error discriminant. The hosting on-chain
// validator maps it to an 8-bit exit code via ExitCode.
type Code uint8

const (
	// Structural
	CodeInvalidOperation Code = iota
	CodeInvalidCbor
	CodeInvalidDidFormat
	CodeInvalidHistory
	CodeMissingPrevField
	CodeNotGenesisOperation

	// Keys
	CodeRotationKeysDecodeError
	CodeInvalidKey
	CodeInvalidKeyIndex

	// Signatures
	CodeInvalidSignature
	CodeInvalidSignaturePadding
	CodeVerifySignatureFailed

	// Link integrity
	CodeInvalidPrev
	CodeDidMismatched

	// Transport
	CodeReaderError
	CodeMoleculeError
)

var codeNames = map[Code]string{
	CodeInvalidOperation:        "InvalidOperation",
	CodeInvalidCbor:             "InvalidCbor",
	CodeInvalidDidFormat:        "InvalidDidFormat",
	CodeInvalidHistory:          "InvalidHistory",
	CodeMissingPrevField:        "MissingPrevField",
	CodeNotGenesisOperation:     "NotGenesisOperation",
	CodeRotationKeysDecodeError: "RotationKeysDecodeError",
	CodeInvalidKey:              "InvalidKey",
	CodeInvalidKeyIndex:         "InvalidKeyIndex",
	CodeInvalidSignature:        "InvalidSignature",
	CodeInvalidSignaturePadding: "InvalidSignaturePadding",
	CodeVerifySignatureFailed:   "VerifySignatureFailed",
	CodeInvalidPrev:             "InvalidPrev",
	CodeDidMismatched:           "DidMismatched",
	CodeReaderError:             "ReaderError",
	CodeMoleculeError:           "MoleculeError",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Code(%d)", uint8(c))
}

// ExitCode is the 8-bit value the hosting validator surfaces on script
// failure. The mapping is a direct cast: Code already fits in a byte and
// the original CKB script returns the enum discriminant as-is.
func (c Code) ExitCode() uint8 { return uint8(c) }

// Error is the structured error value returned by every fallible
// exported function of the verification core.
type Error struct {
	Code Code
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error with no wrapped cause.
func New(op string, code Code) *Error {
	return &Error{Op: op, Code: code}
}

// Wrap builds an Error around an underlying cause.
func Wrap(op string, code Code, err error) *Error {
	return &Error{Op: op, Code: code, Err: err}
}
