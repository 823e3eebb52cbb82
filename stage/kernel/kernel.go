// Package kernel is the cooperative scheduler that drives the viewer.
//
// Every task runs on the caller's goroutine (the render thread). A task does a
// small amount of work in Step and then blocks, either until the next frame tick
// or until a message arrives on one of its endpoints. Messages may be posted
// from other goroutines; everything else is single-threaded.
package kernel

import "sync"

const (
	maxTasks     = 32
	maxEndpoints = 32
	mailboxSlots = 16

	// maxStepsPerFrame bounds RunFrame so a task that never blocks cannot stall the host.
	maxStepsPerFrame = 256
)

type TaskID uint8

// Rights define which operations are allowed for a capability.
type Rights uint8

const (
	RightSend Rights = 1 << iota
	RightRecv
)

// Endpoint identifies an IPC destination.
type Endpoint uint8

// Capability grants access to an IPC endpoint.
//
// It is opaque by construction (no exported fields) and may be transferred via IPC.
type Capability struct {
	ep     Endpoint
	rights Rights
}

func (c Capability) valid() bool {
	return c.rights != 0
}

func (c Capability) Valid() bool { return c.valid() }

func (c Capability) canSend() bool { return c.rights&RightSend != 0 }
func (c Capability) canRecv() bool { return c.rights&RightRecv != 0 }

// Restrict returns a capability with a reduced set of rights.
func (c Capability) Restrict(rights Rights) Capability {
	if !c.valid() {
		return Capability{}
	}
	r := c.rights & rights
	if r == 0 {
		return Capability{}
	}
	return Capability{ep: c.ep, rights: r}
}

// Message is a fixed-size IPC envelope.
type Message struct {
	From Endpoint
	To   Endpoint
	Kind uint16
	Len  uint16
	Data [MaxMessageBytes]byte
	Cap  Capability
}

// Payload returns the valid portion of Data.
func (m *Message) Payload() []byte {
	n := int(m.Len)
	if n > MaxMessageBytes {
		n = MaxMessageBytes
	}
	return m.Data[:n]
}

// MaxMessageBytes is the maximum payload size for IPC messages.
//
// Larger transfers should use shared tables + notify messages, not mailbox copies.
const MaxMessageBytes = 256

// SendResult describes the outcome of a send attempt.
type SendResult uint8

const (
	SendOK SendResult = iota
	SendErrInvalidFromCap
	SendErrInvalidToCap
	SendErrFromNoSendRight
	SendErrToNoSendRight
	SendErrNoEndpoint
	SendErrPayloadTooLarge
	SendErrQueueFull
)

func (r SendResult) String() string {
	switch r {
	case SendOK:
		return "ok"
	case SendErrInvalidFromCap:
		return "invalid from capability"
	case SendErrInvalidToCap:
		return "invalid to capability"
	case SendErrFromNoSendRight:
		return "from capability has no send right"
	case SendErrToNoSendRight:
		return "to capability has no send right"
	case SendErrNoEndpoint:
		return "no such endpoint"
	case SendErrPayloadTooLarge:
		return "payload too large"
	case SendErrQueueFull:
		return "queue full"
	default:
		return "unknown"
	}
}

// Task is a cooperative unit of execution.
type Task interface {
	Step(*Context)
}

type endpointState struct {
	q        mailbox
	waitMask uint32
}

type taskState struct {
	task     Task
	runnable bool
	dead     bool
}

// Kernel is a minimal cooperative scheduler plus IPC router and frame clock.
type Kernel struct {
	// mu guards endpoints, task run state and the clock. It is never held while a
	// task steps, so tasks may send to themselves.
	mu sync.Mutex

	endpoints     [maxEndpoints]endpointState
	endpointCount Endpoint

	tasks     [maxTasks]taskState
	taskCount TaskID

	rr TaskID

	tickWaitMask uint32

	now    uint64 // milliseconds since start, as reported by the last Tick
	frames uint64

	panicFn func(PanicInfo)
}

// New creates a kernel instance.
func New() *Kernel {
	return &Kernel{}
}

// NewEndpoint allocates a new endpoint and returns a capability for it.
func (k *Kernel) NewEndpoint(rights Rights) Capability {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.endpointCount >= maxEndpoints {
		return Capability{}
	}
	ep := k.endpointCount
	k.endpointCount++
	return Capability{ep: ep, rights: rights}
}

// AddTask registers a task and returns its ID. ok is false when the task table is full.
func (k *Kernel) AddTask(t Task) (id TaskID, ok bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.taskCount >= maxTasks || t == nil {
		return 0, false
	}
	id = k.taskCount
	k.taskCount++
	k.tasks[id] = taskState{task: t, runnable: true}
	return id, true
}

// Cancel stops scheduling a task. It is safe to call from any goroutine.
func (k *Kernel) Cancel(id TaskID) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if id >= k.taskCount {
		return
	}
	k.kill(id)
}

// Alive reports whether a task is still scheduled.
func (k *Kernel) Alive(id TaskID) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return id < k.taskCount && !k.tasks[id].dead
}

// Now returns the frame clock in milliseconds since start.
func (k *Kernel) Now() uint64 {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.now
}

// Frames returns the number of Tick calls so far.
func (k *Kernel) Frames() uint64 {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.frames
}

// Step runs at most one runnable task step. It reports whether a task ran.
func (k *Kernel) Step() bool {
	k.mu.Lock()
	if k.taskCount == 0 {
		k.mu.Unlock()
		return false
	}

	var (
		id    TaskID
		task  Task
		found bool
	)
	for i := TaskID(0); i < k.taskCount; i++ {
		cand := (k.rr + i) % k.taskCount
		st := &k.tasks[cand]
		if st.task == nil || st.dead || !st.runnable {
			continue
		}
		id, task, found = cand, st.task, true
		k.rr = (cand + 1) % k.taskCount
		break
	}
	k.mu.Unlock()
	if !found {
		return false
	}

	ctx := &Context{k: k, taskID: id}
	if !k.runStep(task, ctx) {
		return true
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	st := &k.tasks[id]
	switch {
	case ctx.exit:
		k.kill(id)
	case ctx.blockOnTick:
		st.runnable = false
		k.tickWaitMask |= 1 << id
	case ctx.blocked:
		// Skip blocking if a message raced in while the task was stepping.
		if k.endpoints[ctx.blockOn].q.len() > 0 {
			return true
		}
		st.runnable = false
		k.endpoints[ctx.blockOn].waitMask |= 1 << id
	}
	return true
}

// runStep steps a task, converting a panic into a dead task. It reports whether
// the task returned normally.
func (k *Kernel) runStep(t Task, ctx *Context) (ok bool) {
	defer func() {
		v := recover()
		if v == nil {
			return
		}
		ok = false
		k.mu.Lock()
		k.kill(ctx.taskID)
		fn := k.panicFn
		k.mu.Unlock()
		if fn != nil {
			fn(PanicInfo{TaskID: ctx.taskID, Value: v, Stack: captureStack()})
		}
	}()
	t.Step(ctx)
	return true
}

// Tick advances the frame clock to now (milliseconds since start) and wakes tasks
// blocked via Context.BlockOnTick. A clock that goes backwards is held in place.
func (k *Kernel) Tick(now uint64) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if now > k.now {
		k.now = now
	}
	k.frames++

	wait := k.tickWaitMask
	if wait == 0 {
		return
	}
	for tid := TaskID(0); tid < k.taskCount; tid++ {
		if wait&(1<<tid) == 0 || k.tasks[tid].dead {
			continue
		}
		k.tasks[tid].runnable = true
	}
	k.tickWaitMask = 0
}

// RunFrame steps tasks until none is runnable or the per-frame budget is spent.
// It returns the number of steps taken.
func (k *Kernel) RunFrame() int {
	n := 0
	for n < maxStepsPerFrame && k.Step() {
		n++
	}
	return n
}

// Post sends a message from outside any task, e.g. from a loader goroutine.
func (k *Kernel) Post(toCap Capability, kind uint16, payload []byte) SendResult {
	if !toCap.valid() {
		return SendErrInvalidToCap
	}
	if !toCap.canSend() {
		return SendErrToNoSendRight
	}
	return k.send(0, toCap.ep, kind, payload, Capability{})
}

func (k *Kernel) kill(id TaskID) {
	st := &k.tasks[id]
	st.dead = true
	st.runnable = false
	k.tickWaitMask &^= 1 << id
	for i := Endpoint(0); i < k.endpointCount; i++ {
		k.endpoints[i].waitMask &^= 1 << id
	}
}

func (k *Kernel) send(from Endpoint, to Endpoint, kind uint16, payload []byte, xfer Capability) SendResult {
	if len(payload) > MaxMessageBytes {
		return SendErrPayloadTooLarge
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	if to >= k.endpointCount {
		return SendErrNoEndpoint
	}

	var msg Message
	msg.From = from
	msg.To = to
	msg.Kind = kind
	msg.Len = uint16(len(payload))
	copy(msg.Data[:], payload)
	msg.Cap = xfer

	ep := &k.endpoints[to]
	if !ep.q.push(msg) {
		return SendErrQueueFull
	}

	wait := ep.waitMask
	if wait == 0 {
		return SendOK
	}
	for tid := TaskID(0); tid < k.taskCount; tid++ {
		if wait&(1<<tid) == 0 {
			continue
		}
		if !k.tasks[tid].dead {
			k.tasks[tid].runnable = true
		}
		ep.waitMask &^= 1 << tid
	}
	return SendOK
}

func (k *Kernel) recv(to Endpoint) (Message, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if to >= k.endpointCount {
		return Message{}, false
	}
	return k.endpoints[to].q.pop()
}
