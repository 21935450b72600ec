package server

import (
	"context"
	"net"

	"github.com/hearthdns/hearth/internal/wire"
)

// serveTCP runs the TCP front-end loop: accept connections and hand each
// to its own goroutine, repeat until ctx is cancelled.
func (s *Server) serveTCP(ctx context.Context, ln net.Listener) {
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				s.Logger.Warn("tcp accept failed", "error", err)
				continue
			}
		}
		go s.handleTCP(ctx, conn)
	}
}

// handleTCP answers every length-prefixed query on one connection until
// the client closes it or a framing error occurs. Responses on one
// connection are emitted in the order their queries arrived, which
// falls out naturally from handling them serially here.
func (s *Server) handleTCP(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	for {
		raw, err := wire.ReadTCPMessage(conn)
		if err != nil {
			return
		}
		resp := s.answer(ctx, raw)
		if resp == nil {
			return
		}
		encoded, err := wire.EncodeMessage(resp)
		if err != nil {
			s.Logger.Error("encode tcp response failed", "error", err)
			return
		}
		if err := wire.WriteTCPMessage(conn, encoded); err != nil {
			s.Logger.Warn("tcp write failed", "error", err)
			return
		}
	}
}
