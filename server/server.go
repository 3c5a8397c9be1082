// Package server hosts the request dispatcher of the auction service: a
// sequential UDP worker for short queries and a goroutine per accepted
// TCP connection for bulk exchanges, both backed by the shared store.
package server

import (
	"fmt"
	"net"

	"github.com/go-co-op/gocron/v2"
	log "github.com/sirupsen/logrus"

	auction "github.com/dfarias/goauction"
	"github.com/dfarias/goauction/pkg/transport"
	"github.com/dfarias/goauction/store"
)

// A handlerFunc decodes the remainder of a request (opcode already
// consumed), consults the store and returns the encoded response.
type handlerFunc func(s *Server, src auction.MessageSource) []byte

type handlerEntry struct {
	tcp bool
	fn  handlerFunc
}

type Server struct {
	cfg      Config
	st       *store.Store
	handlers map[string]handlerEntry

	udp   *transport.UDPServer
	tcp   *transport.TCPServer
	sched gocron.Scheduler

	quit chan struct{}
}

// New opens the store and registers the command handlers. Sockets are not
// bound until Run.
func New(cfg Config) (*Server, error) {
	st, err := store.Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	s := &Server{
		cfg:      cfg,
		st:       st,
		handlers: map[string]handlerEntry{},
		quit:     make(chan struct{}),
	}
	s.register("LIN", false, handleLogin)
	s.register("LOU", false, handleLogout)
	s.register("UNR", false, handleUnregister)
	s.register("LMA", false, handleListUserAuctions)
	s.register("LMB", false, handleListUserBids)
	s.register("LST", false, handleListAllAuctions)
	s.register("SRC", false, handleShowRecord)
	s.register("OPA", true, handleOpenAuction)
	s.register("CLS", true, handleCloseAuction)
	s.register("SAS", true, handleShowAsset)
	s.register("BID", true, handleBid)
	return s, nil
}

func (s *Server) register(opcode string, tcp bool, fn handlerFunc) {
	s.handlers[opcode] = handlerEntry{tcp: tcp, fn: fn}
}

// Store exposes the backing store, mainly for tests and tooling.
func (s *Server) Store() *store.Store {
	return s.st
}

// Run binds both sockets and serves until Shutdown. The UDP worker
// processes one datagram at a time; every accepted TCP connection gets its
// own goroutine for exactly one request/response exchange.
func (s *Server) Run() error {
	udp, err := transport.ListenUDP(s.cfg.Port)
	if err != nil {
		return fmt.Errorf("udp setup: %w", err)
	}
	s.udp = udp
	tcp, err := transport.ListenTCP(s.cfg.Port)
	if err != nil {
		udp.Close()
		return fmt.Errorf("tcp setup: %w", err)
	}
	s.tcp = tcp
	s.verbosef("Listening on port %s", s.cfg.Port)

	if s.cfg.SweepInterval > 0 {
		if err := s.startSweeper(s.cfg.SweepInterval); err != nil {
			log.Warnf("[SWEEP] scheduler unavailable, relying on lazy ending: %v", err)
		}
	}

	go s.serveUDP()
	s.serveTCP()
	return nil
}

// Shutdown closes both listeners and stops the sweeper. In-flight TCP
// exchanges run to completion.
func (s *Server) Shutdown() {
	close(s.quit)
	if s.udp != nil {
		s.udp.Close()
	}
	if s.tcp != nil {
		s.tcp.Close()
	}
	s.stopSweeper()
}

func (s *Server) closing() bool {
	select {
	case <-s.quit:
		return true
	default:
		return false
	}
}

func (s *Server) serveUDP() {
	s.verbosef("UDP server started")
	for {
		data, addr, err := s.udp.Receive()
		if err != nil {
			if err == transport.ErrOversizeDatagram {
				s.udp.Send(addr, auction.ErrorResponse())
				continue
			}
			if s.closing() {
				return
			}
			log.Errorf("[UDP] receive: %v", err)
			continue
		}
		s.verbosef("Request received from: %v (UDP)", addr)
		response := s.dispatch(auction.NewStreamSource(data), false)
		if err := s.udp.Send(addr, response); err != nil {
			log.Errorf("[UDP] send to %v: %v", addr, err)
		}
	}
}

func (s *Server) serveTCP() {
	s.verbosef("TCP server started")
	for {
		conn, err := s.tcp.Accept()
		if err != nil {
			if s.closing() {
				return
			}
			log.Errorf("[TCP] accept: %v", err)
			continue
		}
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	s.verbosef("Request received from: %v (TCP)", conn.RemoteAddr())
	response := s.dispatch(auction.NewTCPSource(conn), true)
	if err := transport.Reply(conn, response); err != nil {
		s.verbosef("Session ended prematurely: %v", err)
	}
}

// dispatch reads the 3-letter opcode and hands the rest of the message to
// the matching handler. Unknown opcodes, transport mismatches and decode
// failures all answer with the error sentinel; the server never crashes on
// a client error.
func (s *Server) dispatch(src auction.MessageSource, overTCP bool) []byte {
	opcode := make([]byte, 3)
	for i := range opcode {
		b, err := src.ReadByte()
		if err != nil {
			return auction.ErrorResponse()
		}
		opcode[i] = b
	}
	entry, ok := s.handlers[string(opcode)]
	if !ok || entry.tcp != overTCP {
		log.Debugf("[DISPATCH] no %s handler on this transport", opcode)
		return auction.ErrorResponse()
	}
	return entry.fn(s, src)
}

// verbosef emits the -v diagnostics mandated by the CLI contract.
func (s *Server) verbosef(format string, args ...any) {
	if s.cfg.Verbose {
		log.Infof("[LOG] "+format, args...)
	}
}

func (s *Server) logResult(uid, kind, status string) {
	s.verbosef("From: %s Request: %s Result: %s", uid, kind, status)
}
