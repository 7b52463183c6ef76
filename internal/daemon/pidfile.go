// Package daemon tracks a background process through a pid file on disk.
package daemon

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Pidfile records and inspects the pid of a detached process.
type Pidfile struct {
	path string
}

func New(path string) Pidfile {
	return Pidfile{path: path}
}

// Path returns the pid file location on disk.
func (f Pidfile) Path() string { return f.path }

// Write records pid in the file, replacing any previous content.
func (f Pidfile) Write(pid int) error {
	return os.WriteFile(f.path, []byte(strconv.Itoa(pid)+"\n"), 0o644)
}

// PID returns the recorded pid, or an error if the file is absent or garbled.
func (f Pidfile) PID() (int, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return 0, fmt.Errorf("pid file %s: %w", f.path, err)
	}
	return pid, nil
}

// Clear removes the pid file.
func (f Pidfile) Clear() error {
	return os.Remove(f.path)
}
