// Package server implements the UDP/TCP front end: decode an inbound
// datagram or stream message, hand the question to the local-then-
// recursive resolver, encode the answer, and send it back.
package server

import (
	"context"
	"log/slog"

	"github.com/hearthdns/hearth/internal/cache"
	"github.com/hearthdns/hearth/internal/config"
	"github.com/hearthdns/hearth/internal/protocol"
	"github.com/hearthdns/hearth/internal/resolver"
	"github.com/hearthdns/hearth/internal/transport"
	"github.com/hearthdns/hearth/internal/wire"
	"github.com/hearthdns/hearth/internal/zone"
)

// Server ties the zone store, cache, and resolvers to the network.
type Server struct {
	Config    config.Config
	Store     *zone.Store
	Cache     *cache.Cache
	Local     *resolver.Local
	Recursive *resolver.Recursive
	Logger    *slog.Logger
}

// New builds a Server around store and c; the store is filled by Reload,
// which the caller runs before serving.
func New(cfg config.Config, store *zone.Store, c *cache.Cache, logger *slog.Logger) *Server {
	local := &resolver.Local{Store: store, Cache: c}
	recursive := resolver.NewRecursive(store, c)
	return &Server{
		Config:    cfg,
		Store:     store,
		Cache:     c,
		Local:     local,
		Recursive: recursive,
		Logger:    logger,
	}
}

// ListenAndServe binds the UDP and TCP listeners and serves until ctx is
// cancelled or a listener fails to bind.
func (s *Server) ListenAndServe(ctx context.Context) error {
	udpConn, err := transport.ListenUDP(ctx, s.Config.ListenAddress())
	if err != nil {
		return err
	}
	defer udpConn.Close()

	tcpLn, err := transport.ListenTCP(ctx, s.Config.ListenAddress())
	if err != nil {
		return err
	}
	defer tcpLn.Close()

	s.Logger.Info("listening", "address", s.Config.ListenAddress())
	if warning := transport.ReusePortFallbackWarning(); warning != "" {
		s.Logger.Warn("socket option fallback", "reason", warning)
	}

	go s.serveTCP(ctx, tcpLn)
	s.serveUDP(ctx, udpConn)
	return nil
}

// answer decodes raw, resolves its question, and returns the encoded-
// ready response message. It returns nil only when raw is malformed
// beyond recovering even a header ID, in which case it is dropped silently.
func (s *Server) answer(ctx context.Context, raw []byte) *wire.Message {
	query, err := wire.ParseMessage(raw)
	if err != nil {
		if len(raw) >= 2 {
			return s.formatErrorResponse(raw)
		}
		return nil
	}

	resp := &wire.Message{
		Header:    query.Header,
		Questions: query.Questions,
	}
	resp.Header.SetFlag(protocol.FlagQR, true)
	resp.Header.SetFlag(protocol.FlagRA, true)
	resp.Header.SetFlag(protocol.FlagAA, false)

	if len(query.Questions) != 1 {
		resp.Header.SetRCode(protocol.RCodeFormatError)
		return resp
	}
	q := query.Questions[0]

	if q.Class != protocol.ClassIN {
		resp.Header.SetRCode(protocol.RCodeNotImplemented)
		return resp
	}

	local := s.Local.Resolve(q.Name, q.Type, q.Class)
	if local.Code != resolver.NoLocalAnswer {
		applyAnswer(resp, local)
		return resp
	}

	if !query.Header.RD() {
		resp.Header.SetRCode(protocol.RCodeSuccess)
		return resp
	}

	rec := s.Recursive.Resolve(ctx, q.Name, q.Type, q.Class)
	applyAnswer(resp, rec)
	return resp
}

func applyAnswer(resp *wire.Message, ans resolver.Answer) {
	resp.Header.SetFlag(protocol.FlagAA, ans.Authoritative)
	resp.Header.SetRCode(ans.RCode())
	resp.Answers = ans.Answers
	resp.Authority = ans.Authority
}

// formatErrorResponse builds the best-effort RCODE=1 response when the
// question section fails to parse but a 2-byte ID is still recoverable.
func (s *Server) formatErrorResponse(raw []byte) *wire.Message {
	resp := &wire.Message{Header: wire.Header{ID: uint16(raw[0])<<8 | uint16(raw[1])}}
	resp.Header.SetFlag(protocol.FlagQR, true)
	resp.Header.SetRCode(protocol.RCodeFormatError)
	return resp
}
