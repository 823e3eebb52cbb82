package logger

import (
	"frost/hal"
	"frost/stage/kernel"
	"frost/stage/proto"
)

// Service drains MsgLogLine messages into the host logger. Warn and error lines
// are prefixed so the host can highlight them.
type Service struct {
	log hal.Logger
	ep  kernel.Capability

	buf []byte
}

func New(log hal.Logger, ep kernel.Capability) *Service {
	return &Service{log: log, ep: ep}
}

func (s *Service) Step(ctx *kernel.Context) {
	for {
		msg, ok := ctx.Recv(s.ep)
		if !ok {
			return
		}
		if s.log == nil || msg.Kind != uint16(proto.MsgLogLine) {
			continue
		}
		level, line, ok := proto.DecodeLogLinePayload(msg.Payload())
		if !ok {
			continue
		}
		s.buf = s.buf[:0]
		switch level {
		case proto.LogWarn:
			s.buf = append(s.buf, "warn: "...)
		case proto.LogError:
			s.buf = append(s.buf, "error: "...)
		}
		s.buf = append(s.buf, line...)
		s.log.WriteLineBytes(s.buf)
	}
}
