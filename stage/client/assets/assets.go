package assets

import (
	"fmt"

	"frost/stage/kernel"
	"frost/stage/proto"
)

// Load asks the asset service to load path. The completion (MsgAssetLoaded or
// MsgAssetFailed) is sent to reply.
func Load(
	ctx *kernel.Context,
	svcCap kernel.Capability,
	reply kernel.Capability,
	requestID uint32,
	kind proto.AssetKind,
	path string,
) error {
	if ctx == nil {
		return fmt.Errorf("asset load: nil context")
	}
	if len(path) > kernel.MaxMessageBytes-7 {
		return fmt.Errorf("asset load %q: path too long", path)
	}
	res := ctx.SendToCapResult(svcCap, uint16(proto.MsgAssetLoad), proto.AssetLoadPayload(requestID, kind, path), reply)
	if res != kernel.SendOK {
		return fmt.Errorf("asset load %q: %s", path, res)
	}
	return nil
}

// Completion is a decoded asset notification.
type Completion struct {
	ID     uint32
	Kind   proto.AssetKind
	Gen    uint32
	Failed bool
	Code   proto.ErrCode
	Detail string
}

// DecodeCompletion interprets a MsgAssetLoaded or MsgAssetFailed message.
func DecodeCompletion(msg kernel.Message) (Completion, bool) {
	switch proto.Kind(msg.Kind) {
	case proto.MsgAssetLoaded:
		id, kind, gen, ok := proto.DecodeAssetLoadedPayload(msg.Payload())
		return Completion{ID: id, Kind: kind, Gen: gen}, ok
	case proto.MsgAssetFailed:
		id, kind, code, detail, ok := proto.DecodeAssetFailedPayload(msg.Payload())
		return Completion{ID: id, Kind: kind, Failed: true, Code: code, Detail: detail}, ok
	default:
		return Completion{}, false
	}
}
