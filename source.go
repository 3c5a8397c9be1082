package auction

import (
	"io"

	"github.com/dfarias/goauction/internal/deque"
)

// A MessageSource supplies the decoder with one byte at a time and accepts
// a single byte of pushback. Two implementations exist: a cursor over an
// already received datagram, and a buffered reader over a TCP stream.
type MessageSource interface {
	ReadByte() (byte, error)
	UnreadByte() error
}

// StreamSource is a MessageSource over a fully buffered message (a UDP
// datagram, or any in-memory encoding).
type StreamSource struct {
	data []byte
	pos  int
}

func NewStreamSource(data []byte) *StreamSource {
	return &StreamSource{data: data}
}

func (s *StreamSource) ReadByte() (byte, error) {
	if s.pos >= len(s.data) {
		return 0, io.EOF
	}
	b := s.data[s.pos]
	s.pos++
	return b, nil
}

func (s *StreamSource) UnreadByte() error {
	if s.pos == 0 {
		return io.ErrShortBuffer
	}
	s.pos--
	return nil
}

const tcpFillSize = 128

// TCPSource is a MessageSource over a TCP stream. Bytes are pulled from
// the connection in small chunks into a deque so the decoder can push a
// byte back after overshooting a token boundary.
type TCPSource struct {
	conn io.Reader
	buf  *deque.Deque
	last byte
}

func NewTCPSource(conn io.Reader) *TCPSource {
	return &TCPSource{conn: conn, buf: deque.New()}
}

func (s *TCPSource) fill() error {
	chunk := make([]byte, tcpFillSize)
	n, err := s.conn.Read(chunk)
	if n <= 0 {
		if err == nil {
			err = io.EOF
		}
		return err
	}
	for _, b := range chunk[:n] {
		s.buf.PushBack(b)
	}
	return nil
}

func (s *TCPSource) ReadByte() (byte, error) {
	if s.buf.Len() == 0 {
		if err := s.fill(); err != nil {
			return 0, err
		}
	}
	b, _ := s.buf.PopFront()
	s.last = b
	return b, nil
}

func (s *TCPSource) UnreadByte() error {
	s.buf.PushFront(s.last)
	return nil
}
