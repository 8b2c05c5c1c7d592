package ptpwire

// PackU32Array packs a u32 count followed by count u32 elements to its
// wire form. Used for StorageID/object-handle list command payloads
// that have no surrounding dataset wrapper.
func PackU32Array(vals []uint32) []byte {
	w := newWriter(LittleEndian)
	packU32Array(w, vals)
	return w.bytes()
}

// UnpackU32Array unpacks a u32-count-prefixed u32 array, as returned in
// the data phase of GetStorageIDs and GetObjectHandles.
func UnpackU32Array(data []byte) ([]uint32, error) {
	c := newCursor(data, LittleEndian)
	return unpackU32Array(c, "UnpackU32Array")
}

// packU16Array writes a u32 count followed by count u16 elements. An
// empty slice still emits its zero-length prefix.
func packU16Array(w *writer, vals []uint16) {
	w.putU32(uint32(len(vals)))
	for _, v := range vals {
		w.putU16(v)
	}
}

func unpackU16Array(c *cursor, op string) ([]uint16, error) {
	count, err := c.u32(op)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return []uint16{}, nil
	}
	if uint64(count) > uint64(c.remaining()/2) {
		return nil, c.truncated(op)
	}
	out := make([]uint16, count)
	for i := range out {
		v, err := c.u16(op)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// packU32Array writes a u32 count followed by count u32 elements
// (used for object-handle and storage-ID lists).
func packU32Array(w *writer, vals []uint32) {
	w.putU32(uint32(len(vals)))
	for _, v := range vals {
		w.putU32(v)
	}
}

func unpackU32Array(c *cursor, op string) ([]uint32, error) {
	count, err := c.u32(op)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return []uint32{}, nil
	}
	if uint64(count) > uint64(c.remaining()/4) {
		return nil, c.truncated(op)
	}
	out := make([]uint32, count)
	for i := range out {
		v, err := c.u32(op)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
