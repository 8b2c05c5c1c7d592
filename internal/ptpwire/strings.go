package ptpwire

import "unicode/utf16"

// packString writes a PTP string: a u8 character count (including a
// trailing NUL when the string is non-empty) followed by that many
// UCS-2 code units. An empty string packs as a single zero byte.
func packString(w *writer, s string) {
	if s == "" {
		w.putU8(0)
		return
	}

	units := utf16.Encode([]rune(s))
	units = append(units, 0) // trailing NUL

	if len(units) > 255 {
		units = units[:254]
		units = append(units, 0)
	}

	w.putU8(uint8(len(units)))
	for _, u := range units {
		w.putU16(u)
	}
}

// unpackString reads a PTP string and returns it as UTF-8 with any
// trailing NUL trimmed. Code units with no UTF-8 representation are
// replaced with the Unicode replacement character.
func unpackString(c *cursor, op string) (string, error) {
	count, err := c.u8(op)
	if err != nil {
		return "", err
	}
	if count == 0 {
		return "", nil
	}

	units := make([]uint16, count)
	for i := 0; i < int(count); i++ {
		u, err := c.u16(op)
		if err != nil {
			return "", err
		}
		units[i] = u
	}

	// Trim a single trailing NUL code unit, matching how packString
	// appends it.
	if units[len(units)-1] == 0 {
		units = units[:len(units)-1]
	}

	runes := utf16.Decode(units)
	return string(runes), nil
}
