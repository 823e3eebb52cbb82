package assets

import (
	"context"
	"image/color"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	assetclient "frost/stage/client/assets"
	"frost/stage/kernel"
	"frost/stage/proto"
)

// inbox is a kernel task that records asset completions.
type inbox struct {
	ep kernel.Capability

	mu   sync.Mutex
	got  []assetclient.Completion
	errs int
}

func (b *inbox) Step(ctx *kernel.Context) {
	for {
		msg, ok := ctx.Recv(b.ep)
		if !ok {
			return
		}
		b.mu.Lock()
		if c, ok := assetclient.DecodeCompletion(msg); ok {
			b.got = append(b.got, c)
		} else if proto.Kind(msg.Kind) == proto.MsgError {
			b.errs++
		}
		b.mu.Unlock()
	}
}

func (b *inbox) completions() []assetclient.Completion {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]assetclient.Completion(nil), b.got...)
}

func newInbox(k *kernel.Kernel) (*inbox, kernel.Capability) {
	ep := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	b := &inbox{ep: ep.Restrict(kernel.RightRecv)}
	k.AddTask(b)
	return b, ep.Restrict(kernel.RightSend)
}

// pump runs kernel frames until cond holds or the deadline passes.
func pump(t *testing.T, k *kernel.Kernel, cond func() bool) {
	t.Helper()
	require.Eventually(t, func() bool {
		k.RunFrame()
		return cond()
	}, 5*time.Second, 5*time.Millisecond)
}

func testFS(t *testing.T) fstest.MapFS {
	return fstest.MapFS{
		"snow.png":   {Data: pngBytes(t, 8, 8, color.White)},
		"height.png": {Data: pngBytes(t, 8, 8, color.Gray{Y: 128})},
		"notes.txt":  {Data: []byte("just text")},
	}
}

func TestLoadAllPublishesResults(t *testing.T) {
	k := kernel.New()
	box, notify := newInbox(k)
	l := NewLoader(testFS(t), k, notify, kernel.Capability{}, Options{Workers: 2})
	defer l.Close()

	err := l.LoadAll(context.Background(), []Request{
		{ID: 1, Kind: proto.AssetTexture, Path: "snow.png"},
		{ID: 2, Kind: proto.AssetHeightMap, Path: "height.png"},
		{ID: 3, Kind: proto.AssetTexture, Path: "missing.png"},
		{ID: 4, Kind: proto.AssetTexture, Path: "notes.txt"},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, l.Table().Len())

	res, ok := l.Table().Get(1)
	require.True(t, ok)
	require.NoError(t, res.Err)
	assert.Equal(t, 8, res.Texture.W)
	assert.Equal(t, uint32(1), res.Gen)

	k.RunFrame()
	byID := map[uint32]assetclient.Completion{}
	for _, c := range box.completions() {
		byID[c.ID] = c
	}
	require.Len(t, byID, 4)
	assert.False(t, byID[1].Failed)
	assert.False(t, byID[2].Failed)
	assert.True(t, byID[3].Failed)
	assert.Equal(t, proto.ErrNotFound, byID[3].Code)
	assert.True(t, byID[4].Failed)
	assert.Equal(t, proto.ErrUnsupported, byID[4].Code)
}

func TestMalformedModelFailsWithoutCrashing(t *testing.T) {
	fsys := testFS(t)
	fsys["broken.gltf"] = &fstest.MapFile{Data: []byte(triangleJSON("data:application/octet-stream;base64,AAAAAA==", -1, ""))}

	k := kernel.New()
	box, notify := newInbox(k)
	l := NewLoader(fsys, k, notify, kernel.Capability{}, Options{})
	l.Start(context.Background())
	defer l.Close()

	require.NoError(t, l.Submit(Request{ID: 7, Kind: proto.AssetModel, Path: "broken.gltf"}))
	pump(t, k, func() bool { return len(box.completions()) == 1 })

	c := box.completions()[0]
	assert.Equal(t, uint32(7), c.ID)
	assert.True(t, c.Failed)
	res, ok := l.Table().Get(7)
	require.True(t, ok)
	assert.ErrorIs(t, res.Err, errBadGLTF)
	assert.Nil(t, res.Model)
}

func TestLoadRejectsEscapingPaths(t *testing.T) {
	l := NewLoader(testFS(t), nil, kernel.Capability{}, kernel.Capability{}, Options{})
	res := l.Load(context.Background(), Request{ID: 1, Kind: proto.AssetTexture, Path: "../../etc/passwd"})
	assert.ErrorIs(t, res.Err, os.ErrNotExist)

	res = l.Load(context.Background(), Request{ID: 2, Kind: proto.AssetTexture, Path: ""})
	assert.ErrorIs(t, res.Err, os.ErrInvalid)

	res = l.Load(context.Background(), Request{ID: 3, Kind: proto.AssetUnknown, Path: "snow.png"})
	assert.ErrorIs(t, res.Err, ErrUnsupported)
}

func TestServiceRoutesReplyToRequester(t *testing.T) {
	k := kernel.New()
	_, fallback := newInbox(k)
	box, reply := newInbox(k)

	svcEP := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	l := NewLoader(testFS(t), k, fallback, kernel.Capability{}, Options{})
	l.Start(context.Background())
	defer l.Close()
	k.AddTask(NewService(svcEP.Restrict(kernel.RightRecv), l))
	k.AddTask(&requester{svc: svcEP.Restrict(kernel.RightSend), reply: reply})

	pump(t, k, func() bool { return len(box.completions()) == 1 })
	c := box.completions()[0]
	assert.Equal(t, uint32(9), c.ID)
	assert.Equal(t, proto.AssetTexture, c.Kind)
	assert.False(t, c.Failed)

	res, ok := l.Table().Get(9)
	require.True(t, ok)
	assert.NotNil(t, res.Texture)
}

type requester struct {
	svc, reply kernel.Capability
	sent       bool
}

func (r *requester) Step(ctx *kernel.Context) {
	if !r.sent {
		r.sent = true
		if err := assetclient.Load(ctx, r.svc, r.reply, 9, proto.AssetTexture, "snow.png"); err != nil {
			panic(err)
		}
	}
	ctx.Exit()
}

func TestServiceAnswersMalformedRequests(t *testing.T) {
	k := kernel.New()
	box, reply := newInbox(k)
	svcEP := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	l := NewLoader(testFS(t), k, reply, kernel.Capability{}, Options{})
	defer l.Close()
	k.AddTask(NewService(svcEP.Restrict(kernel.RightRecv), l))
	k.AddTask(&rawSender{svc: svcEP.Restrict(kernel.RightSend), reply: reply})

	k.RunFrame()
	k.RunFrame()
	box.mu.Lock()
	defer box.mu.Unlock()
	assert.Equal(t, 1, box.errs)
}

type rawSender struct{ svc, reply kernel.Capability }

func (s *rawSender) Step(ctx *kernel.Context) {
	ctx.SendToCapResult(s.svc, uint16(proto.MsgAssetLoad), []byte{1, 2}, s.reply)
	ctx.Exit()
}

func TestSubmitAfterClose(t *testing.T) {
	l := NewLoader(testFS(t), nil, kernel.Capability{}, kernel.Capability{}, Options{})
	l.Start(context.Background())
	require.NoError(t, l.Close())
	assert.ErrorIs(t, l.Submit(Request{ID: 1}), ErrClosed)
}

func TestSubmitReportsFullQueue(t *testing.T) {
	l := NewLoader(testFS(t), nil, kernel.Capability{}, kernel.Capability{}, Options{Queue: 1})
	// Not started: nothing drains the queue.
	require.NoError(t, l.Submit(Request{ID: 1}))
	assert.ErrorIs(t, l.Submit(Request{ID: 2}), ErrBusy)
}

func TestWatchReloadsChangedTexture(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "snow.png")
	require.NoError(t, os.WriteFile(file, pngBytes(t, 4, 4, color.White), 0o644))

	k := kernel.New()
	box, notify := newInbox(k)
	l := NewLoader(os.DirFS(dir), k, notify, kernel.Capability{}, Options{})
	l.Start(context.Background())
	defer l.Close()
	require.NoError(t, l.Watch(dir))

	require.NoError(t, l.LoadAll(context.Background(), []Request{{ID: 5, Kind: proto.AssetTexture, Path: "snow.png"}}))
	require.NoError(t, os.WriteFile(file, pngBytes(t, 2, 2, color.Black), 0o644))

	pump(t, k, func() bool {
		res, _ := l.Table().Get(5)
		return res.Gen >= 2 && res.Texture != nil && res.Texture.W == 2
	})
	last := box.completions()
	require.NotEmpty(t, last)
	assert.GreaterOrEqual(t, last[len(last)-1].Gen, uint32(2))
}
