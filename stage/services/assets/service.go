package assets

import (
	"frost/stage/kernel"
	"frost/stage/proto"
)

// Service is the kernel task in front of a Loader. It accepts MsgAssetLoad
// requests; the transferred capability, if any, receives the completion.
type Service struct {
	ep     kernel.Capability
	loader *Loader
}

// NewService serves requests arriving on ep with loader.
func NewService(ep kernel.Capability, loader *Loader) *Service {
	return &Service{ep: ep, loader: loader}
}

// Step submits every pending request to the loader.
func (s *Service) Step(ctx *kernel.Context) {
	for {
		msg, ok := ctx.Recv(s.ep)
		if !ok {
			return
		}
		switch proto.Kind(msg.Kind) {
		case proto.MsgAssetLoad:
			s.handleLoad(ctx, msg)
		case proto.MsgShutdown:
			ctx.Exit()
			return
		}
	}
}

func (s *Service) handleLoad(ctx *kernel.Context, msg kernel.Message) {
	reply := msg.Cap
	id, kind, path, ok := proto.DecodeAssetLoadPayload(msg.Payload())
	if !ok {
		if reply.Valid() {
			ctx.SendToCapResult(reply, uint16(proto.MsgError),
				proto.ErrorPayload(proto.ErrBadMessage, proto.MsgAssetLoad, nil), kernel.Capability{})
		}
		return
	}

	err := s.loader.Submit(Request{ID: id, Kind: kind, Path: path, Reply: reply})
	if err == nil {
		return
	}
	if !reply.Valid() {
		reply = s.loader.notify
	}
	if reply.Valid() {
		ctx.SendToCapResult(reply, uint16(proto.MsgAssetFailed),
			proto.AssetFailedPayload(id, kind, errCode(err), err.Error()), kernel.Capability{})
	}
}
