package proto

// Kind identifies the message type carried in kernel.Message.Kind.
type Kind uint16

const (
	MsgLogLine Kind = iota + 1
	MsgError
	MsgAssetLoad
	MsgAssetLoaded
	MsgAssetFailed
	MsgKey
	MsgShutdown
)

// ErrCode is a generic error category for MsgError and MsgAssetFailed.
type ErrCode uint16

const (
	ErrUnknown ErrCode = iota
	ErrBadMessage
	ErrNotFound
	ErrBusy
	ErrTooLarge
	ErrUnsupported
	ErrDecode
	ErrInternal
)

func (c ErrCode) String() string {
	switch c {
	case ErrUnknown:
		return "unknown"
	case ErrBadMessage:
		return "bad_message"
	case ErrNotFound:
		return "not_found"
	case ErrBusy:
		return "busy"
	case ErrTooLarge:
		return "too_large"
	case ErrUnsupported:
		return "unsupported"
	case ErrDecode:
		return "decode"
	case ErrInternal:
		return "internal"
	default:
		return "unknown"
	}
}

func (k Kind) String() string {
	switch k {
	case MsgLogLine:
		return "log_line"
	case MsgError:
		return "error"
	case MsgAssetLoad:
		return "asset_load"
	case MsgAssetLoaded:
		return "asset_loaded"
	case MsgAssetFailed:
		return "asset_failed"
	case MsgKey:
		return "key"
	case MsgShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}
