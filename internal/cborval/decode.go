package cborval

import (
	"encoding/binary"

	"github.com/primal-host/ckb-plc-verify/internal/plcerr"
)

const maxDepth = 256

const (
	majUint    = 0
	majNegInt  = 1
	majBytes   = 2
	majText    = 3
	majArray   = 4
	majMap     = 5
	majTag     = 6
	majSimple  = 7
	simpleNo   = 20
	simpleYes  = 21
	simpleNull = 22
	simpleUnd  = 23
)

type decoder struct {
	buf []byte
	pos int
}

// Decode parses buf as a single RFC 8949 CBOR item into a Value. The
// entire buffer must be consumed by exactly one item; trailing bytes are
// rejected. Map entries keep their source order. Indefinite-length items
// are rejected. Nesting deeper than 256 containers is rejected.
func Decode(buf []byte) (Value, *plcerr.Error) {
	d := &decoder{buf: buf}
	v, err := d.decodeItem(0)
	if err != nil {
		return Value{}, err
	}
	if d.pos != len(d.buf) {
		return Value{}, plcerr.New("cborval.Decode", plcerr.CodeInvalidCbor)
	}
	return v, nil
}

func (d *decoder) need(n int) *plcerr.Error {
	if d.pos+n > len(d.buf) {
		return plcerr.New("cborval.decode", plcerr.CodeInvalidCbor)
	}
	return nil
}

// needLen validates a CBOR-declared length against the bytes actually
// remaining in the buffer, entirely in uint64 arithmetic. Comparing the
// raw declared length against len(d.buf) before ever narrowing it to int
// matters: a declared length near math.MaxUint64 wraps negative under a
// naive int(arg) conversion, which would make an out-of-bounds length
// look in-bounds and crash a later make([]byte, arg) instead of
// returning a clean error.
func (d *decoder) needLen(n uint64) *plcerr.Error {
	remaining := uint64(len(d.buf) - d.pos)
	if n > remaining {
		return plcerr.New("cborval.decode", plcerr.CodeInvalidCbor)
	}
	return nil
}

// readHeader reads the initial byte and returns the major type and the
// decoded argument (length/value), consuming any follow-on bytes.
func (d *decoder) readHeader() (byte, uint64, *plcerr.Error) {
	if err := d.need(1); err != nil {
		return 0, 0, err
	}
	ib := d.buf[d.pos]
	d.pos++
	major := ib >> 5
	info := ib & 0x1f

	switch {
	case info < 24:
		return major, uint64(info), nil
	case info == 24:
		if err := d.need(1); err != nil {
			return 0, 0, err
		}
		v := uint64(d.buf[d.pos])
		d.pos++
		return major, v, nil
	case info == 25:
		if err := d.need(2); err != nil {
			return 0, 0, err
		}
		v := uint64(binary.BigEndian.Uint16(d.buf[d.pos:]))
		d.pos += 2
		return major, v, nil
	case info == 26:
		if err := d.need(4); err != nil {
			return 0, 0, err
		}
		v := uint64(binary.BigEndian.Uint32(d.buf[d.pos:]))
		d.pos += 4
		return major, v, nil
	case info == 27:
		if err := d.need(8); err != nil {
			return 0, 0, err
		}
		v := binary.BigEndian.Uint64(d.buf[d.pos:])
		d.pos += 8
		return major, v, nil
	default:
		// 28-30 reserved, 31 indefinite-length: both unsupported.
		return 0, 0, plcerr.New("cborval.readHeader", plcerr.CodeInvalidCbor)
	}
}

// capHint clamps an untrusted declared element count to at most the
// number of elements the remaining buffer could possibly hold, so a
// pre-allocation never sizes a slice off a raw attacker-supplied count.
func capHint(declared uint64, remaining int) int {
	if remaining < 0 {
		return 0
	}
	if declared > uint64(remaining) {
		return remaining
	}
	return int(declared)
}

func (d *decoder) decodeItem(depth int) (Value, *plcerr.Error) {
	if depth > maxDepth {
		return Value{}, plcerr.New("cborval.decodeItem", plcerr.CodeInvalidCbor)
	}
	start := d.pos
	major, arg, err := d.readHeader()
	if err != nil {
		return Value{}, err
	}
	switch major {
	case majUint:
		return Value{Kind: KindUint, Uint: arg}, nil
	case majNegInt:
		return Value{Kind: KindNegInt, Uint: arg}, nil
	case majBytes:
		if err := d.needLen(arg); err != nil {
			return Value{}, err
		}
		n := int(arg)
		b := make([]byte, n)
		copy(b, d.buf[d.pos:d.pos+n])
		d.pos += n
		return Value{Kind: KindBytes, Bytes: b}, nil
	case majText:
		if err := d.needLen(arg); err != nil {
			return Value{}, err
		}
		n := int(arg)
		s := string(d.buf[d.pos : d.pos+n])
		d.pos += n
		return Value{Kind: KindText, Text: s}, nil
	case majArray:
		// Each array element is at least one byte on the wire, so the
		// number of bytes left in the buffer is always a safe, tight
		// upper bound on the element count — regardless of what the
		// untrusted header claims.
		arr := make([]Value, 0, capHint(arg, len(d.buf)-d.pos))
		for i := uint64(0); i < arg; i++ {
			item, err := d.decodeItem(depth + 1)
			if err != nil {
				return Value{}, err
			}
			arr = append(arr, item)
		}
		return Value{Kind: KindArray, Arr: arr}, nil
	case majMap:
		// Each map entry is at least two bytes (a key item plus a value
		// item), so halve the same remaining-bytes bound.
		entries := make([]Entry, 0, capHint(arg, (len(d.buf)-d.pos)/2))
		for i := uint64(0); i < arg; i++ {
			k, err := d.decodeItem(depth + 1)
			if err != nil {
				return Value{}, err
			}
			v, err := d.decodeItem(depth + 1)
			if err != nil {
				return Value{}, err
			}
			entries = append(entries, Entry{Key: k, Val: v})
		}
		return Value{Kind: KindMap, Map: entries}, nil
	case majTag:
		// Tags are not part of the value model this core operates on;
		// PLC operations never carry them.
		return Value{}, plcerr.New("cborval.decodeItem", plcerr.CodeInvalidCbor)
	case majSimple:
		// false/true/null/undefined only occur in the one-byte form; a
		// longer header here is a float or an extended simple value.
		if d.buf[start]&0x1f >= 24 {
			return Value{}, plcerr.New("cborval.decodeItem", plcerr.CodeInvalidCbor)
		}
		switch arg {
		case simpleNo:
			return Value{Kind: KindBool, Bool: false}, nil
		case simpleYes:
			return Value{Kind: KindBool, Bool: true}, nil
		case simpleNull:
			return Value{Kind: KindNull}, nil
		case simpleUnd:
			return Value{Kind: KindUndefined}, nil
		default:
			// Floats and other simple values are not part of the value
			// model; operations never carry them.
			return Value{}, plcerr.New("cborval.decodeItem", plcerr.CodeInvalidCbor)
		}
	default:
		return Value{}, plcerr.New("cborval.decodeItem", plcerr.CodeInvalidCbor)
	}
}
