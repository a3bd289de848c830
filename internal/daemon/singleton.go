package daemon

import (
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/gofrs/flock"
)

// Singleton enforces the one-owner-per-index rule: a server process must
// win both a socket bind and a
// file lock before it may serve, so two racing `daemon start` invocations
// for the same index can't both end up listening.
type Singleton struct {
	socketPath string
	lockPath   string
	lock       *flock.Flock
}

// NewSingleton builds a Singleton for one index's socket and pid-adjacent
// lock file (conventionally socketPath+".lock").
func NewSingleton(socketPath, lockPath string) *Singleton {
	return &Singleton{socketPath: socketPath, lockPath: lockPath}
}

// Acquire attempts to become the singleton owner. Returns (true, nil) if
// this process won and should proceed to serve; (false, nil) if another
// process already owns the index (the caller should exit 0, not error);
// (false, err) on a genuine I/O failure.
func (s *Singleton) Acquire() (bool, error) {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil && isAddrInUse(err) && !canDial(s.socketPath) {
		// Nothing answers on the socket: it is a stale file left by an
		// unclean exit, not a live owner.
		_ = os.Remove(s.socketPath)
		listener, err = net.Listen("unix", s.socketPath)
	}
	if err != nil {
		if isAddrInUse(err) {
			return false, nil
		}
		return false, fmt.Errorf("daemon: bind socket: %w", err)
	}
	listener.Close()

	s.lock = flock.New(s.lockPath)
	locked, err := s.lock.TryLock()
	if err != nil {
		return false, fmt.Errorf("daemon: acquire lock: %w", err)
	}
	if !locked {
		return false, nil
	}
	return true, nil
}

// Release drops the file lock, called on shutdown after the socket itself
// has been closed and removed.
func (s *Singleton) Release() error {
	if s.lock == nil {
		return nil
	}
	return s.lock.Unlock()
}

func isAddrInUse(err error) bool {
	if err == nil {
		return false
	}
	if opErr, ok := err.(*net.OpError); ok {
		if sysErr, ok := opErr.Err.(*os.SyscallError); ok {
			return strings.Contains(sysErr.Err.Error(), "address already in use")
		}
	}
	return strings.Contains(err.Error(), "address already in use")
}
