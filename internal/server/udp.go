package server

import (
	"context"
	"net"

	"github.com/hearthdns/hearth/internal/transport"
	"github.com/hearthdns/hearth/internal/wire"
)

// serveUDP runs the UDP front-end loop: receive a datagram, answer it on
// its own goroutine, repeat until ctx is cancelled.
func (s *Server) serveUDP(ctx context.Context, conn *transport.UDPConn) {
	// Closing the socket on cancellation unblocks a pending Receive.
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		packet, addr, err := conn.Receive(ctx)
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				s.Logger.Warn("udp receive failed", "error", err)
				continue
			}
		}

		go s.handleUDP(ctx, conn, packet, addr)
	}
}

func (s *Server) handleUDP(ctx context.Context, conn *transport.UDPConn, packet []byte, addr net.Addr) {
	resp := s.answer(ctx, packet)
	if resp == nil {
		return // malformed query with no recoverable ID: drop silently per spec
	}
	encoded, err := wire.EncodeForUDP(resp)
	if err != nil {
		s.Logger.Error("encode udp response failed", "error", err)
		return
	}
	if err := conn.Send(ctx, encoded, addr); err != nil {
		s.Logger.Warn("udp send failed", "error", err, "dest", addr)
	}
}
