package logger

import (
	"fmt"
	"unicode/utf8"

	"frost/stage/kernel"
	"frost/stage/proto"
)

// Log sends an info line to the logger service.
//
// The call is best-effort: it may drop on queue full.
func Log(ctx *kernel.Context, logCap kernel.Capability, line string) kernel.SendResult {
	return send(ctx, logCap, proto.LogInfo, line)
}

func Infof(ctx *kernel.Context, logCap kernel.Capability, format string, args ...any) kernel.SendResult {
	return send(ctx, logCap, proto.LogInfo, fmt.Sprintf(format, args...))
}

func Warnf(ctx *kernel.Context, logCap kernel.Capability, format string, args ...any) kernel.SendResult {
	return send(ctx, logCap, proto.LogWarn, fmt.Sprintf(format, args...))
}

func Errorf(ctx *kernel.Context, logCap kernel.Capability, format string, args ...any) kernel.SendResult {
	return send(ctx, logCap, proto.LogError, fmt.Sprintf(format, args...))
}

// Post logs from outside a task, e.g. from a loader goroutine.
func Post(k *kernel.Kernel, logCap kernel.Capability, level proto.LogLevel, line string) kernel.SendResult {
	if k == nil {
		return kernel.SendErrInvalidFromCap
	}
	return k.Post(logCap, uint16(proto.MsgLogLine), proto.LogLinePayload(level, clip(line)))
}

func send(ctx *kernel.Context, logCap kernel.Capability, level proto.LogLevel, line string) kernel.SendResult {
	if ctx == nil {
		return kernel.SendErrInvalidFromCap
	}
	return ctx.SendToCapResult(logCap, uint16(proto.MsgLogLine), proto.LogLinePayload(level, clip(line)), kernel.Capability{})
}

// clip fits line into one message without splitting a UTF-8 sequence.
func clip(line string) []byte {
	n := kernel.MaxMessageBytes - 1
	if len(line) <= n {
		return []byte(line)
	}
	for n > 0 && !utf8.RuneStart(line[n]) {
		n--
	}
	return []byte(line[:n])
}
