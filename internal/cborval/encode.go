package cborval

import (
	"bytes"

	cbg "github.com/whyrusleeping/cbor-gen"

	"github.com/primal-host/ckb-plc-verify/internal/plcerr"
)

// Encode walks v in its stored order and writes the canonical CBOR byte
// stream for it. Map entries are written key-then-value in insertion
// order. Every header is written in its shortest form, so re-encoding a
// decoded-then-unmodified Value is byte-identical to its source buffer
// when that source also used shortest-form headers (as canonical
// DAG-CBOR does); a longer header accepted by Decode re-encodes shorter.
func Encode(v Value) ([]byte, *plcerr.Error) {
	var buf bytes.Buffer
	cw := cbg.NewCborWriter(&buf)
	if err := writeValue(cw, v); err != nil {
		return nil, plcerr.Wrap("cborval.Encode", plcerr.CodeInvalidCbor, err)
	}
	return buf.Bytes(), nil
}

func writeValue(cw *cbg.CborWriter, v Value) error {
	switch v.Kind {
	case KindUint:
		return cw.WriteMajorTypeHeader(cbg.MajUnsignedInt, v.Uint)
	case KindNegInt:
		return cw.WriteMajorTypeHeader(cbg.MajNegativeInt, v.Uint)
	case KindBytes:
		if err := cw.WriteMajorTypeHeader(cbg.MajByteString, uint64(len(v.Bytes))); err != nil {
			return err
		}
		_, err := cw.Write(v.Bytes)
		return err
	case KindText:
		if err := cw.WriteMajorTypeHeader(cbg.MajTextString, uint64(len(v.Text))); err != nil {
			return err
		}
		_, err := cw.Write([]byte(v.Text))
		return err
	case KindArray:
		if err := cw.WriteMajorTypeHeader(cbg.MajArray, uint64(len(v.Arr))); err != nil {
			return err
		}
		for _, item := range v.Arr {
			if err := writeValue(cw, item); err != nil {
				return err
			}
		}
		return nil
	case KindMap:
		if err := cw.WriteMajorTypeHeader(cbg.MajMap, uint64(len(v.Map))); err != nil {
			return err
		}
		for _, e := range v.Map {
			if err := writeValue(cw, e.Key); err != nil {
				return err
			}
			if err := writeValue(cw, e.Val); err != nil {
				return err
			}
		}
		return nil
	case KindBool:
		arg := uint64(simpleNo)
		if v.Bool {
			arg = simpleYes
		}
		return cw.WriteMajorTypeHeader(cbg.MajOther, arg)
	case KindNull:
		return cw.WriteMajorTypeHeader(cbg.MajOther, simpleNull)
	case KindUndefined:
		return cw.WriteMajorTypeHeader(cbg.MajOther, simpleUnd)
	default:
		return errUnknownKind
	}
}

var errUnknownKind = plcerr.New("cborval.writeValue", plcerr.CodeInvalidCbor)
