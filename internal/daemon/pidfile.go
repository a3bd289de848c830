// Package daemon implements the daemon lifecycle: pid-file
// bookkeeping, singleton enforcement, and the absent/running status
// machine for the long-lived query-server process per index.
package daemon

import (
	"encoding/json"
	"fmt"
	"os"
	"syscall"
)

// PIDInfo is the JSON body of a pid file.
type PIDInfo struct {
	PID       int    `json:"pid"`
	RootPath  string `json:"root_path"`
	StartedAt string `json:"started_at"`
}

// WritePID writes info to path, creating or truncating it.
func WritePID(path string, info PIDInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("daemon: encode pid file: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("daemon: write pid file: %w", err)
	}
	return nil
}

// ReadPID reads and parses the pid file at path. A missing file returns
// (nil, nil): absence is the normal "no daemon" state, not an error.
func ReadPID(path string) (*PIDInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("daemon: read pid file: %w", err)
	}
	var info PIDInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("daemon: parse pid file: %w", err)
	}
	return &info, nil
}

// RemovePID deletes the pid file at path. Missing is not an error.
func RemovePID(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("daemon: remove pid file: %w", err)
	}
	return nil
}

// IsAlive reports whether a process with the given pid is running, using
// signal 0 (no-op delivery, just existence/permission check) the way a
// Unix process supervisor probes liveness without affecting the target.
func IsAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
