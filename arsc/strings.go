package arsc

import (
	"unicode/utf16"
)

const (
	stringPoolHeaderSize = 28
	stringPoolUTF8       = 0x0100
)

// parseStringPool decodes every string of a ResStringPool chunk. Style spans
// are ignored.
func parseStringPool(chunk []byte) ([]string, error) {
	h, err := readChunkHeader(chunk, 0)
	if err != nil {
		return nil, err
	}
	if h.HeaderSize < stringPoolHeaderSize {
		return nil, formatErr("string pool header too small (%d)", h.HeaderSize)
	}
	count := int(le.Uint32(chunk[8:]))
	flags := le.Uint32(chunk[16:])
	stringsStart := int(le.Uint32(chunk[20:]))

	if count < 0 || count > (len(chunk)-int(h.HeaderSize))/4 {
		return nil, formatErr("string pool offsets (%d strings) out of bounds", count)
	}
	if count > 0 && stringsStart >= len(chunk) {
		return nil, formatErr("string pool data start %d out of bounds", stringsStart)
	}

	out := make([]string, count)
	for i := 0; i < count; i++ {
		pos := stringsStart + int(le.Uint32(chunk[int(h.HeaderSize)+i*4:]))
		var s string
		var err error
		if flags&stringPoolUTF8 != 0 {
			s, err = decodeUTF8At(chunk, pos)
		} else {
			s, err = decodeUTF16At(chunk, pos)
		}
		if err != nil {
			return nil, formatErr("string %d: %v", i, err)
		}
		out[i] = s
	}
	return out, nil
}

func decodeUTF8At(b []byte, pos int) (string, error) {
	// UTF-16 length first, then the encoded byte length.
	_, pos, err := readLength8(b, pos)
	if err != nil {
		return "", err
	}
	n, pos, err := readLength8(b, pos)
	if err != nil {
		return "", err
	}
	if pos+n > len(b) {
		return "", formatErr("utf-8 string of %d bytes at %d out of bounds", n, pos)
	}
	return string(b[pos : pos+n]), nil
}

func readLength8(b []byte, pos int) (int, int, error) {
	if pos >= len(b) {
		return 0, 0, formatErr("string length at %d out of bounds", pos)
	}
	n := int(b[pos])
	if n&0x80 == 0 {
		return n, pos + 1, nil
	}
	if pos+1 >= len(b) {
		return 0, 0, formatErr("string length at %d out of bounds", pos)
	}
	return (n&0x7f)<<8 | int(b[pos+1]), pos + 2, nil
}

func decodeUTF16At(b []byte, pos int) (string, error) {
	if pos+2 > len(b) {
		return "", formatErr("string length at %d out of bounds", pos)
	}
	n := int(le.Uint16(b[pos:]))
	pos += 2
	if n&0x8000 != 0 {
		if pos+2 > len(b) {
			return "", formatErr("string length at %d out of bounds", pos)
		}
		n = (n&0x7fff)<<16 | int(le.Uint16(b[pos:]))
		pos += 2
	}
	if pos+n*2 > len(b) {
		return "", formatErr("utf-16 string of %d units at %d out of bounds", n, pos)
	}
	units := make([]uint16, n)
	for i := range units {
		units[i] = le.Uint16(b[pos+i*2:])
	}
	return string(utf16.Decode(units)), nil
}

// decodeUTF16Z decodes a fixed-size, NUL-terminated UTF-16 field.
func decodeUTF16Z(b []byte) string {
	units := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		u := le.Uint16(b[i:])
		if u == 0 {
			break
		}
		units = append(units, u)
	}
	return string(utf16.Decode(units))
}
