package proto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetLoadRejectsInconsistentLength(t *testing.T) {
	b := AssetLoadPayload(42, AssetModel, "models/cat.glb")
	id, kind, path, ok := DecodeAssetLoadPayload(b)
	require.True(t, ok)
	assert.Equal(t, uint32(42), id)
	assert.Equal(t, AssetModel, kind)
	assert.Equal(t, "models/cat.glb", path)

	_, _, _, ok = DecodeAssetLoadPayload(b[:len(b)-1])
	assert.False(t, ok)
	_, _, _, ok = DecodeAssetLoadPayload(b[:3])
	assert.False(t, ok)
}

func TestAssetFailedTruncatesDetail(t *testing.T) {
	b := AssetFailedPayload(7, AssetTexture, ErrDecode, strings.Repeat("x", 1000))
	assert.LessOrEqual(t, len(b), 256)

	id, kind, code, detail, ok := DecodeAssetFailedPayload(b)
	require.True(t, ok)
	assert.Equal(t, uint32(7), id)
	assert.Equal(t, AssetTexture, kind)
	assert.Equal(t, ErrDecode, code)
	assert.Len(t, detail, maxDetail)
}

func TestShortPayloadsRejected(t *testing.T) {
	_, _, _, ok := DecodeErrorPayload([]byte{1, 2})
	assert.False(t, ok)
	_, _, ok = DecodeLogLinePayload(nil)
	assert.False(t, ok)
	_, _, _, ok = DecodeKeyPayload([]byte{1})
	assert.False(t, ok)
	_, _, _, ok = DecodeAssetLoadedPayload(make([]byte, 8))
	assert.False(t, ok)
}

func TestKeyPayloadKeepsRune(t *testing.T) {
	code, press, r, ok := DecodeKeyPayload(KeyPayload(3, true, 'é'))
	require.True(t, ok)
	assert.Equal(t, uint16(3), code)
	assert.True(t, press)
	assert.Equal(t, 'é', r)
}

func TestKindNames(t *testing.T) {
	assert.Equal(t, "asset_loaded", MsgAssetLoaded.String())
	assert.Equal(t, "unknown", Kind(999).String())
	assert.Equal(t, "not_found", ErrNotFound.String())
	assert.Equal(t, "warn", LogWarn.String())
}
