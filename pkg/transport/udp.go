package transport

import (
	"net"

	log "github.com/sirupsen/logrus"
)

// UDPClient is the client-side datagram endpoint. One socket serves the
// whole session; every exchange is a single send followed by a single
// timed receive.
type UDPClient struct {
	conn *net.UDPConn
}

func NewUDPClient(hostname, port string) (*UDPClient, error) {
	raddr, err := net.ResolveUDPAddr("udp4", net.JoinHostPort(hostname, port))
	if err != nil {
		return nil, err
	}
	conn, err := net.DialUDP("udp4", nil, raddr)
	if err != nil {
		return nil, err
	}
	return &UDPClient{conn: conn}, nil
}

// Exchange sends one request datagram and returns the reply datagram.
// Reception uses a buffer one byte larger than the cap so an oversize
// reply is detected rather than silently truncated.
func (c *UDPClient) Exchange(request []byte) ([]byte, error) {
	if len(request) > MaxClientDatagram {
		return nil, ErrOversizeDatagram
	}
	n, err := c.conn.Write(request)
	if err != nil {
		return nil, err
	}
	if n != len(request) {
		return nil, ErrPartialWrite
	}
	if err := c.conn.SetReadDeadline(deadline()); err != nil {
		return nil, err
	}
	reply := make([]byte, MaxClientDatagram+1)
	n, err = c.conn.Read(reply)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return nil, ErrTimeout
		}
		return nil, err
	}
	if n > MaxClientDatagram {
		return nil, ErrOversizeDatagram
	}
	return reply[:n], nil
}

func (c *UDPClient) Close() error {
	return c.conn.Close()
}

// UDPServer is the server-side datagram endpoint.
type UDPServer struct {
	conn *net.UDPConn
}

func ListenUDP(port string) (*UDPServer, error) {
	laddr, err := net.ResolveUDPAddr("udp4", net.JoinHostPort("", port))
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp4", laddr)
	if err != nil {
		return nil, err
	}
	log.Debugf("[UDP] listening on %v", conn.LocalAddr())
	return &UDPServer{conn: conn}, nil
}

// Addr returns the bound address.
func (s *UDPServer) Addr() net.Addr {
	return s.conn.LocalAddr()
}

// Receive blocks for the next request datagram. An oversize datagram still
// returns the sender address together with ErrOversizeDatagram so the
// caller can answer with the error sentinel.
func (s *UDPServer) Receive() ([]byte, *net.UDPAddr, error) {
	buf := make([]byte, MaxRequestDatagram+1)
	n, addr, err := s.conn.ReadFromUDP(buf)
	if err != nil {
		return nil, nil, err
	}
	if n > MaxRequestDatagram {
		return nil, addr, ErrOversizeDatagram
	}
	return buf[:n], addr, nil
}

// Send answers one request with a single reply datagram.
func (s *UDPServer) Send(addr *net.UDPAddr, reply []byte) error {
	n, err := s.conn.WriteToUDP(reply, addr)
	if err != nil {
		return err
	}
	if n != len(reply) {
		return ErrPartialWrite
	}
	return nil
}

func (s *UDPServer) Close() error {
	return s.conn.Close()
}
