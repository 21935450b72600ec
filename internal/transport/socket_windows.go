//go:build windows

package transport

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/windows"
)

// setSocketOptions configures platform-specific socket options for
// Windows. Windows has no SO_REUSEPORT; SO_REUSEADDR there already
// permits multiple binds to the same port, so it alone covers restart
// rebinding.
func setSocketOptions(fd uintptr) error {
	if err := windows.SetsockoptInt(windows.Handle(fd), windows.SOL_SOCKET, windows.SO_REUSEADDR, 1); err != nil {
		return fmt.Errorf("failed to set SO_REUSEADDR: %w", err)
	}
	return nil
}

// ReusePortFallbackWarning always returns "": Windows has no SO_REUSEPORT
// to fall back from, so setSocketOptions never needs this warning.
func ReusePortFallbackWarning() string {
	return ""
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
