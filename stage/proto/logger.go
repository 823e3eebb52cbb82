package proto

// LogLevel tags a MsgLogLine.
type LogLevel uint8

const (
	LogInfo LogLevel = iota
	LogWarn
	LogError
)

func (l LogLevel) String() string {
	switch l {
	case LogWarn:
		return "warn"
	case LogError:
		return "error"
	default:
		return "info"
	}
}

// LogLinePayload encodes a MsgLogLine payload.
//
// Layout:
//   - u8: level
//   - bytes: UTF-8 text without a trailing newline
//
// Delivery is best-effort; callers may drop on overflow.
func LogLinePayload(level LogLevel, b []byte) []byte {
	buf := make([]byte, 1+len(b))
	buf[0] = uint8(level)
	copy(buf[1:], b)
	return buf
}

func DecodeLogLinePayload(b []byte) (level LogLevel, line []byte, ok bool) {
	if len(b) < 1 {
		return 0, nil, false
	}
	return LogLevel(b[0]), b[1:], true
}
