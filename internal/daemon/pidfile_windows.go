//go:build windows

package daemon

import (
	"fmt"
	"os"
	"syscall"
)

// Alive reports whether the recorded process currently exists. FindProcess
// always succeeds on Windows, so liveness is probed with a zero signal.
func (f Pidfile) Alive() (int, bool) {
	pid, err := f.PID()
	if err != nil {
		return 0, false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return pid, false
	}
	return pid, proc.Signal(syscall.Signal(0)) == nil
}

// Kill delivers sig to the recorded process. Only os.Kill is reliably
// supported on Windows.
func (f Pidfile) Kill(sig syscall.Signal) error {
	pid, err := f.PID()
	if err != nil {
		return fmt.Errorf("read pid file: %w", err)
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("find process %d: %w", pid, err)
	}
	return proc.Signal(sig)
}
