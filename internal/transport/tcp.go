package transport

import (
	"context"
	"fmt"
	"net"

	"github.com/hearthdns/hearth/internal/errors"
	"github.com/hearthdns/hearth/internal/wire"
)

// ListenTCP binds a TCP listener at addr with the same socket options as
// ListenUDP, so the resolver's TCP front end can rebind quickly too.
func ListenTCP(ctx context.Context, addr string) (net.Listener, error) {
	lc := net.ListenConfig{Control: PlatformControl}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, &errors.NetworkError{Operation: "listen tcp", Err: err, Details: fmt.Sprintf("bind %s", addr)}
	}
	return ln, nil
}

// DialTCP connects to an upstream nameserver over TCP, used as the retry
// transport after a UDP response arrives with TC=1.
func DialTCP(ctx context.Context, addr string) (net.Conn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, &errors.NetworkError{Operation: "dial tcp", Err: err, Details: fmt.Sprintf("to %s", addr)}
	}
	return conn, nil
}

// QueryTCP sends a length-prefixed query over conn and reads back the
// matching length-prefixed response.
func QueryTCP(ctx context.Context, conn net.Conn, query []byte) ([]byte, error) {
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return nil, &errors.NetworkError{Operation: "set tcp deadline", Err: err}
		}
	}
	if err := wire.WriteTCPMessage(conn, query); err != nil {
		return nil, &errors.NetworkError{Operation: "write tcp query", Err: err}
	}
	resp, err := wire.ReadTCPMessage(conn)
	if err != nil {
		return nil, &errors.NetworkError{Operation: "read tcp response", Err: err}
	}
	return resp, nil
}
