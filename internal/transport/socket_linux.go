//go:build linux

package transport

import (
	"fmt"
	"sync/atomic"
	"syscall"

	"golang.org/x/sys/unix"
)

// reusePortFallback holds the most recent SO_REUSEPORT fallback
// explanation, or nil if the last setSocketOptions call didn't need one.
var reusePortFallback atomic.Pointer[string]

// ReusePortFallbackWarning returns why the most recent listener fell
// back to SO_REUSEADDR-only, or "" if SO_REUSEPORT was set successfully.
func ReusePortFallbackWarning() string {
	if p := reusePortFallback.Load(); p != nil {
		return *p
	}
	return ""
}

// setSocketOptions configures platform-specific socket options for Linux.
// Sets SO_REUSEADDR and SO_REUSEPORT (kernel 3.9+) so the resolver's
// listener can coexist with another resolver already bound to port 53,
// and so a restart can rebind before the old socket leaves TIME_WAIT.
func setSocketOptions(fd uintptr) error {
	if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return fmt.Errorf("failed to set SO_REUSEADDR: %w", err)
	}

	if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1); err != nil {
		// Kernels older than 3.9 don't have SO_REUSEPORT; fall back to
		// SO_REUSEADDR alone.
		if err != unix.ENOPROTOOPT {
			return fmt.Errorf("failed to set SO_REUSEPORT: %w", err)
		}
		msg := fmt.Sprintf("SO_REUSEPORT unavailable on kernel %s, falling back to SO_REUSEADDR only", getKernelVersion())
		reusePortFallback.Store(&msg)
	}

	return nil
}

// getKernelVersion returns the running kernel release string, used in
// startup logs to explain a SO_REUSEPORT fallback.
func getKernelVersion() string {
	var uname unix.Utsname
	if err := unix.Uname(&uname); err != nil {
		return "unknown"
	}

	release := make([]byte, 0, 65)
	for _, b := range uname.Release {
		if b == 0 {
			break
		}
		release = append(release, byte(b))
	}

	return string(release)
}

// platformControl is called by net.ListenConfig during socket creation.
func platformControl(_, _ string, c syscall.RawConn) error {
	var sockoptErr error
	err := c.Control(func(fd uintptr) {
		sockoptErr = setSocketOptions(fd)
	})
	if err != nil {
		return fmt.Errorf("raw conn control failed: %w", err)
	}
	return sockoptErr
}

// PlatformControl is the public entry point used by the transport's
// listener constructors to install setSocketOptions via net.ListenConfig.
func PlatformControl(network, address string, c syscall.RawConn) error {
	return platformControl(network, address, c)
}
