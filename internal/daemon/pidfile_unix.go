//go:build !windows

package daemon

import (
	"fmt"
	"syscall"
)

// Alive reports whether the recorded process currently exists.
func (f Pidfile) Alive() (int, bool) {
	pid, err := f.PID()
	if err != nil {
		return 0, false
	}
	// kill(pid, 0) probes for existence without delivering a signal.
	return pid, syscall.Kill(pid, 0) == nil
}

// Kill delivers sig to the recorded process.
func (f Pidfile) Kill(sig syscall.Signal) error {
	pid, err := f.PID()
	if err != nil {
		return fmt.Errorf("read pid file: %w", err)
	}
	return syscall.Kill(pid, sig)
}
