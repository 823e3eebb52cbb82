package proto

import "encoding/binary"

// KeyPayload encodes a MsgKey event.
//
// Layout (little-endian):
//   - u16: key code (hal.KeyCode)
//   - u8: press flag (0/1)
//   - u32: rune (0 when the key has no text)
func KeyPayload(code uint16, press bool, r rune) []byte {
	buf := make([]byte, 7)
	binary.LittleEndian.PutUint16(buf[0:2], code)
	if press {
		buf[2] = 1
	}
	binary.LittleEndian.PutUint32(buf[3:7], uint32(r))
	return buf
}

func DecodeKeyPayload(b []byte) (code uint16, press bool, r rune, ok bool) {
	if len(b) != 7 {
		return 0, false, 0, false
	}
	code = binary.LittleEndian.Uint16(b[0:2])
	press = b[2] != 0
	r = rune(binary.LittleEndian.Uint32(b[3:7]))
	return code, press, r, true
}
