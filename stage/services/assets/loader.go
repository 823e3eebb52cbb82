// Package assets loads textures, height maps and glTF models off the render thread.
//
// Loads run on goroutines. A finished load is stored in the loader's Table and
// announced to the requester's endpoint with MsgAssetLoaded or MsgAssetFailed;
// the requester then reads the decoded asset from the Table during its own step.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	logclient "frost/stage/client/logger"
	"frost/stage/gfx"
	"frost/stage/kernel"
	"frost/stage/proto"
)

var (
	ErrBusy   = errors.New("assets: load queue full")
	ErrClosed = errors.New("assets: loader closed")

	errDecodePanic = errors.New("assets: decoder panic")
)

// Request names one asset to load.
type Request struct {
	ID   uint32
	Kind proto.AssetKind
	Path string // slash-separated, relative to the asset root
	// Reply receives the completion message. The zero value uses the loader default.
	Reply kernel.Capability
}

// Result is a finished load. Exactly one of Texture, Model or Err is set.
type Result struct {
	Request
	// Gen counts completions of the same request id, starting at 1.
	Gen     uint32
	Texture *gfx.Texture
	Model   *Model
	Err     error
}

// Table holds the latest result per request id. It is safe for concurrent use.
type Table struct {
	mu sync.Mutex
	m  map[uint32]Result
}

func (t *Table) put(r Result) Result {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.m == nil {
		t.m = map[uint32]Result{}
	}
	r.Gen = t.m[r.ID].Gen + 1
	t.m[r.ID] = r
	return r
}

// Get returns the latest result for id.
func (t *Table) Get(id uint32) (Result, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.m[id]
	return r, ok
}

// Len returns the number of request ids with a result.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.m)
}

// Options tune a Loader. Zero fields take defaults.
type Options struct {
	// MaxTextureSize bounds the longer edge of decoded textures.
	MaxTextureSize int
	// Workers limits concurrent decodes.
	Workers int
	// Queue is the number of submitted but not yet started loads.
	Queue int
}

func (o Options) withDefaults() Options {
	if o.MaxTextureSize <= 0 {
		o.MaxTextureSize = 512
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.Queue <= 0 {
		o.Queue = 64
	}
	return o
}

// Loader decodes assets from an fs.FS and reports completions through the kernel.
type Loader struct {
	fsys   fs.FS
	k      *kernel.Kernel
	notify kernel.Capability
	logCap kernel.Capability
	opts   Options
	table  Table

	reqs   chan Request
	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	closed  bool
	watcher *watcher
}

// NewLoader creates a loader. notify is the default completion endpoint; logCap
// may be the zero capability to disable logging.
func NewLoader(fsys fs.FS, k *kernel.Kernel, notify, logCap kernel.Capability, opts Options) *Loader {
	opts = opts.withDefaults()
	return &Loader{
		fsys:   fsys,
		k:      k,
		notify: notify,
		logCap: logCap,
		opts:   opts,
		reqs:   make(chan Request, opts.Queue),
	}
}

// Table returns the results published so far.
func (l *Loader) Table() *Table { return &l.table }

// Start runs the dispatcher until ctx is cancelled or Close is called.
func (l *Loader) Start(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.done != nil || l.closed {
		return
	}
	ctx, l.cancel = context.WithCancel(ctx)
	l.done = make(chan struct{})
	go l.dispatch(ctx)
}

func (l *Loader) dispatch(ctx context.Context) {
	defer close(l.done)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.opts.Workers)
	defer g.Wait()
	for {
		select {
		case <-gctx.Done():
			return
		case req := <-l.reqs:
			g.Go(func() error {
				l.publish(gctx, l.Load(gctx, req))
				return nil
			})
		}
	}
}

// Submit queues a request without blocking.
func (l *Loader) Submit(req Request) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	select {
	case l.reqs <- req:
		return nil
	default:
		return ErrBusy
	}
}

// Load decodes one asset synchronously. It does not touch the Table. A decoder
// panic becomes a failed result.
func (l *Loader) Load(ctx context.Context, req Request) (res Result) {
	res = Result{Request: req}
	defer func() {
		if p := recover(); p != nil {
			res.Texture, res.Model = nil, nil
			res.Err = fmt.Errorf("load %s %q: %w: %v", req.Kind, req.Path, errDecodePanic, p)
		}
	}()
	res.Texture, res.Model, res.Err = l.decode(ctx, req)
	if res.Err != nil {
		res.Err = fmt.Errorf("load %s %q: %w", req.Kind, req.Path, res.Err)
	}
	return res
}

func (l *Loader) decode(ctx context.Context, req Request) (*gfx.Texture, *Model, error) {
	name, err := cleanPath(req.Path)
	if err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if l.fsys == nil {
		return nil, nil, fs.ErrNotExist
	}
	data, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	switch req.Kind {
	case proto.AssetTexture:
		t, err := DecodeTexture(data, l.opts.MaxTextureSize)
		return t, nil, err
	case proto.AssetHeightMap:
		t, err := DecodeHeightMap(data, l.opts.MaxTextureSize)
		return t, nil, err
	case proto.AssetModel:
		m, err := DecodeModel(data, l.fsys, name, l.opts.MaxTextureSize)
		return nil, m, err
	default:
		return nil, nil, fmt.Errorf("%w: asset kind %d", ErrUnsupported, req.Kind)
	}
}

func cleanPath(p string) (string, error) {
	p = strings.TrimPrefix(path.Clean("/"+strings.ReplaceAll(p, "\\", "/")), "/")
	if p == "" || !fs.ValidPath(p) {
		return "", fmt.Errorf("%w: invalid path", fs.ErrInvalid)
	}
	return p, nil
}

// LoadAll loads reqs concurrently, publishing each result. It returns when every
// load has finished or ctx is cancelled.
func (l *Loader) LoadAll(ctx context.Context, reqs []Request) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.opts.Workers)
	for _, req := range reqs {
		g.Go(func() error {
			l.publish(gctx, l.Load(gctx, req))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// publish stores res and notifies the requester.
func (l *Loader) publish(ctx context.Context, res Result) {
	if errors.Is(res.Err, context.Canceled) {
		return
	}
	res = l.table.put(res)
	if res.Err == nil && (res.Kind == proto.AssetTexture || res.Kind == proto.AssetHeightMap) {
		l.track(res.Request)
	}

	to := res.Reply
	if !to.Valid() {
		to = l.notify
	}
	if l.k == nil || !to.Valid() {
		return
	}

	var kind proto.Kind
	var payload []byte
	if res.Err != nil {
		kind = proto.MsgAssetFailed
		payload = proto.AssetFailedPayload(res.ID, res.Kind, errCode(res.Err), res.Err.Error())
		if l.logCap.Valid() {
			logclient.Post(l.k, l.logCap, proto.LogWarn, res.Err.Error())
		}
	} else {
		kind = proto.MsgAssetLoaded
		payload = proto.AssetLoadedPayload(res.ID, res.Kind, res.Gen)
	}

	// The receiver drains its mailbox once per frame; back off while it is full.
	for attempt := 0; ; attempt++ {
		r := l.k.Post(to, uint16(kind), payload)
		if r != kernel.SendErrQueueFull || attempt >= 100 {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func errCode(err error) proto.ErrCode {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return proto.ErrNotFound
	case errors.Is(err, ErrUnsupported):
		return proto.ErrUnsupported
	case errors.Is(err, ErrTooLarge):
		return proto.ErrTooLarge
	case errors.Is(err, ErrBusy):
		return proto.ErrBusy
	case errors.Is(err, fs.ErrInvalid):
		return proto.ErrBadMessage
	default:
		return proto.ErrDecode
	}
}

// Close stops the dispatcher and the file watcher and waits for in-flight loads.
func (l *Loader) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	cancel, done, w := l.cancel, l.done, l.watcher
	l.mu.Unlock()

	var err error
	if w != nil {
		err = w.close()
	}
	if cancel != nil {
		cancel()
		<-done
	}
	return err
}
