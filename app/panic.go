package app

import (
	"fmt"
	"strings"

	"frost/stage/kernel"
)

// onPanic reports a crashed task. The kernel has already cancelled the task;
// the viewer keeps running and shows the failure on the status line.
func (s *Session) onPanic(info kernel.PanicInfo) {
	if l := s.h.Logger(); l != nil {
		l.WriteLineString(fmt.Sprintf("error: task %d panicked: %v", info.TaskID, info.Value))
		for _, line := range strings.Split(string(info.Stack), "\n") {
			if line == "" {
				continue
			}
			l.WriteLineString(line)
		}
	}
	s.panel.SetStatus(fmt.Sprintf("task %d panicked: %v", info.TaskID, info.Value))
}
