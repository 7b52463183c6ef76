//go:build !windows

package cmd

import (
	"os"
	"os/exec"
	"syscall"
)

// setDaemonAttrs puts the child in its own session so it survives the
// parent's terminal going away.
func setDaemonAttrs(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}

// shutdownSignals lists the signals that trigger graceful shutdown.
func shutdownSignals() []os.Signal {
	return []os.Signal{syscall.SIGINT, syscall.SIGTERM}
}

func sigTERM() syscall.Signal { return syscall.SIGTERM }

func sigKILL() syscall.Signal { return syscall.SIGKILL }
