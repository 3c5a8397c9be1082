package transport

import (
	"net"
	"time"

	log "github.com/sirupsen/logrus"
)

func deadline() time.Time {
	return time.Now().Add(RecvTimeout)
}

// writeChunks sends the whole message in TCPChunkSize slices.
func writeChunks(conn net.Conn, data []byte) error {
	for len(data) > 0 {
		chunk := data
		if len(chunk) > TCPChunkSize {
			chunk = chunk[:TCPChunkSize]
		}
		n, err := conn.Write(chunk)
		if err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

// TCPClient is a single-request connection: write everything, half-close,
// then read the reply until the server closes.
type TCPClient struct {
	conn *net.TCPConn
}

func NewTCPClient(hostname, port string) (*TCPClient, error) {
	raddr, err := net.ResolveTCPAddr("tcp4", net.JoinHostPort(hostname, port))
	if err != nil {
		return nil, err
	}
	conn, err := net.DialTCP("tcp4", nil, raddr)
	if err != nil {
		return nil, err
	}
	return &TCPClient{conn: conn}, nil
}

// Send writes the whole request and half-closes the connection so the
// server sees EOF after the last byte.
func (c *TCPClient) Send(request []byte) error {
	if err := writeChunks(c.conn, request); err != nil {
		return err
	}
	return c.conn.CloseWrite()
}

// Conn exposes the read side for the response decoder.
func (c *TCPClient) Conn() net.Conn {
	return c.conn
}

func (c *TCPClient) Close() error {
	return c.conn.Close()
}

// TCPServer accepts one connection per request.
type TCPServer struct {
	ln *net.TCPListener
}

func ListenTCP(port string) (*TCPServer, error) {
	laddr, err := net.ResolveTCPAddr("tcp4", net.JoinHostPort("", port))
	if err != nil {
		return nil, err
	}
	ln, err := net.ListenTCP("tcp4", laddr)
	if err != nil {
		return nil, err
	}
	log.Debugf("[TCP] listening on %v", ln.Addr())
	return &TCPServer{ln: ln}, nil
}

// Addr returns the bound address.
func (s *TCPServer) Addr() net.Addr {
	return s.ln.Addr()
}

// Accept returns the next connection with its receive timeout armed, so a
// silent client cannot pin a worker.
func (s *TCPServer) Accept() (*net.TCPConn, error) {
	conn, err := s.ln.AcceptTCP()
	if err != nil {
		return nil, err
	}
	if err := conn.SetReadDeadline(deadline()); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// Reply writes the response and closes the connection.
func Reply(conn net.Conn, response []byte) error {
	defer conn.Close()
	return writeChunks(conn, response)
}

func (s *TCPServer) Close() error {
	return s.ln.Close()
}
