package ptpwire

import (
	"encoding/binary"

	"github.com/defiant-labs/ptpfs/ptperr"
)

// ByteOrder selects the integer encoding used on the wire. PTP carries
// a byte-order tag on the session for a future big-endian transport;
// every peer observed in practice is little-endian.
type ByteOrder uint8

const (
	LittleEndian ByteOrder = iota
	BigEndian
)

// cursor is a bounds-checked reader over a borrowed byte slice. Every
// primitive read verifies there is enough remaining data before
// touching it; an overrun returns ptperr.CodeTruncated rather than
// panicking or reading garbage.
type cursor struct {
	buf []byte
	pos int
	ord ByteOrder
}

func newCursor(buf []byte, ord ByteOrder) *cursor {
	return &cursor{buf: buf, ord: ord}
}

func (c *cursor) remaining() int {
	return len(c.buf) - c.pos
}

func (c *cursor) truncated(op string) error {
	return ptperr.New(op, ptperr.CodeTruncated, "unexpected end of data")
}

func (c *cursor) u8(op string) (uint8, error) {
	if c.remaining() < 1 {
		return 0, c.truncated(op)
	}
	v := c.buf[c.pos]
	c.pos++
	return v, nil
}

func (c *cursor) order() binary.ByteOrder {
	if c.ord == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func (c *cursor) u16(op string) (uint16, error) {
	if c.remaining() < 2 {
		return 0, c.truncated(op)
	}
	v := c.order().Uint16(c.buf[c.pos:])
	c.pos += 2
	return v, nil
}

func (c *cursor) u32(op string) (uint32, error) {
	if c.remaining() < 4 {
		return 0, c.truncated(op)
	}
	v := c.order().Uint32(c.buf[c.pos:])
	c.pos += 4
	return v, nil
}

func (c *cursor) u64(op string) (uint64, error) {
	if c.remaining() < 8 {
		return 0, c.truncated(op)
	}
	v := c.order().Uint64(c.buf[c.pos:])
	c.pos += 8
	return v, nil
}

func (c *cursor) bytes(op string, n int) ([]byte, error) {
	if n < 0 || c.remaining() < n {
		return nil, c.truncated(op)
	}
	v := c.buf[c.pos : c.pos+n]
	c.pos += n
	return v, nil
}

// writer is a growable little/big-endian buffer for pack routines.
type writer struct {
	buf []byte
	ord ByteOrder
}

func newWriter(ord ByteOrder) *writer {
	return &writer{ord: ord}
}

func (w *writer) order() binary.ByteOrder {
	if w.ord == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func (w *writer) putU8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *writer) putU16(v uint16) {
	var tmp [2]byte
	w.order().PutUint16(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
}

func (w *writer) putU32(v uint32) {
	var tmp [4]byte
	w.order().PutUint32(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
}

func (w *writer) putU64(v uint64) {
	var tmp [8]byte
	w.order().PutUint64(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
}

func (w *writer) putBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

func (w *writer) bytes() []byte {
	return w.buf
}
