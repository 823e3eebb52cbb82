package kernel

import "runtime/debug"

// PanicInfo contains details about a recovered task panic.
type PanicInfo struct {
	TaskID TaskID
	Value  any
	Stack  []byte
}

// SetPanicHandler installs the handler called after a task panics.
//
// The panicking task is cancelled; the remaining tasks keep running. The handler
// runs on the render thread and must not panic.
func (k *Kernel) SetPanicHandler(fn func(PanicInfo)) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.panicFn = fn
}

func captureStack() []byte {
	return debug.Stack()
}
