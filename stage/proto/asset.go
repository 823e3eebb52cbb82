package proto

import "encoding/binary"

// AssetKind selects how an asset file is decoded.
type AssetKind uint8

const (
	AssetUnknown AssetKind = iota
	AssetTexture
	AssetHeightMap
	AssetModel
)

func (k AssetKind) String() string {
	switch k {
	case AssetTexture:
		return "texture"
	case AssetHeightMap:
		return "heightmap"
	case AssetModel:
		return "model"
	default:
		return "unknown"
	}
}

// AssetLoadPayload encodes a MsgAssetLoad request.
//
// Layout (little-endian):
//   - u32: request id
//   - u8: asset kind
//   - u16: path length
//   - bytes: path (UTF-8, relative to the asset root)
func AssetLoadPayload(requestID uint32, kind AssetKind, path string) []byte {
	p := []byte(path)
	buf := make([]byte, 7+len(p))
	binary.LittleEndian.PutUint32(buf[0:4], requestID)
	buf[4] = uint8(kind)
	binary.LittleEndian.PutUint16(buf[5:7], uint16(len(p)))
	copy(buf[7:], p)
	return buf
}

func DecodeAssetLoadPayload(b []byte) (requestID uint32, kind AssetKind, path string, ok bool) {
	if len(b) < 7 {
		return 0, 0, "", false
	}
	requestID = binary.LittleEndian.Uint32(b[0:4])
	kind = AssetKind(b[4])
	pathLen := int(binary.LittleEndian.Uint16(b[5:7]))
	if 7+pathLen != len(b) {
		return 0, 0, "", false
	}
	return requestID, kind, string(b[7:]), true
}

// AssetLoadedPayload encodes a MsgAssetLoaded notification. The decoded asset
// itself is published through the loader's result table, keyed by request id.
//
// Layout (little-endian):
//   - u32: request id
//   - u8: asset kind
//   - u32: generation (incremented on every reload of the same request)
func AssetLoadedPayload(requestID uint32, kind AssetKind, gen uint32) []byte {
	buf := make([]byte, 9)
	binary.LittleEndian.PutUint32(buf[0:4], requestID)
	buf[4] = uint8(kind)
	binary.LittleEndian.PutUint32(buf[5:9], gen)
	return buf
}

func DecodeAssetLoadedPayload(b []byte) (requestID uint32, kind AssetKind, gen uint32, ok bool) {
	if len(b) != 9 {
		return 0, 0, 0, false
	}
	return binary.LittleEndian.Uint32(b[0:4]), AssetKind(b[4]), binary.LittleEndian.Uint32(b[5:9]), true
}

// AssetFailedPayload encodes a MsgAssetFailed notification.
//
// Layout (little-endian):
//   - u32: request id
//   - u8: asset kind
//   - u16: error code
//   - bytes: detail (UTF-8, truncated to fit a message)
func AssetFailedPayload(requestID uint32, kind AssetKind, code ErrCode, detail string) []byte {
	d := []byte(detail)
	if len(d) > maxDetail {
		d = d[:maxDetail]
	}
	buf := make([]byte, 7+len(d))
	binary.LittleEndian.PutUint32(buf[0:4], requestID)
	buf[4] = uint8(kind)
	binary.LittleEndian.PutUint16(buf[5:7], uint16(code))
	copy(buf[7:], d)
	return buf
}

func DecodeAssetFailedPayload(b []byte) (requestID uint32, kind AssetKind, code ErrCode, detail string, ok bool) {
	if len(b) < 7 {
		return 0, 0, 0, "", false
	}
	requestID = binary.LittleEndian.Uint32(b[0:4])
	kind = AssetKind(b[4])
	code = ErrCode(binary.LittleEndian.Uint16(b[5:7]))
	return requestID, kind, code, string(b[7:]), true
}

// maxDetail keeps AssetFailedPayload within kernel.MaxMessageBytes.
const maxDetail = 240
